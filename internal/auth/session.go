/*
 * ImKitchen - Self-Hosted Meal Planning Application
 * Copyright (C) 2025 RGH Software
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("auth: invalid or expired session token")

// Claims is the subset of a session token the rest of the system reads.
type Claims struct {
	UserID  string
	Email   string
	IsAdmin bool
}

type tokenClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and parses HS256 session tokens. One secret and
// expiry serve both the web session and API-token uses — there is no
// separate refresh-token flow here.
type SessionIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewSessionIssuer builds an issuer. expiry of zero defaults to 24h.
func NewSessionIssuer(secret []byte, expiry time.Duration) *SessionIssuer {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &SessionIssuer{secret: secret, expiry: expiry, now: time.Now}
}

// Issue signs a new session token for claims.
func (s *SessionIssuer) Issue(claims Claims) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	})
	return token.SignedString(s.secret)
}

// Parse validates tokenString and returns its claims.
func (s *SessionIssuer) Parse(tokenString string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: claims.Subject, Email: claims.Email, IsAdmin: claims.IsAdmin}, nil
}
