// Package events defines the closed set of event payloads the core
// appends and projects. Names and shapes are schema contracts: new
// optional fields must default on decode when absent from an older
// stored event.
package events

import "time"

const (
	UserRegistered                     = "UserRegistered"
	UserRegistrationSucceeded          = "UserRegistrationSucceeded"
	UserRegistrationFailed             = "UserRegistrationFailed"
	UserLoggedIn                       = "UserLoggedIn"
	UserProfileUpdated                 = "UserProfileUpdated"
	UserSuspended                      = "UserSuspended"
	UserActivated                      = "UserActivated"
	UserPremiumBypassToggled           = "UserPremiumBypassToggled"
	UserPromotedToAdmin                = "UserPromotedToAdmin"
	UserDemotedFromAdmin               = "UserDemotedFromAdmin"
	UserMealPlanningPreferencesUpdated = "UserMealPlanningPreferencesUpdated"
)

// UserRegisteredPayload starts a user stream in status=pending.
type UserRegisteredPayload struct {
	Email          string `msgpack:"email"`
	HashedPassword string `msgpack:"hashed_password"`
	FirstName      string `msgpack:"first_name,omitempty"`
	LastName       string `msgpack:"last_name,omitempty"`
}

// UserRegistrationSucceededPayload gates the pending user into active.
type UserRegistrationSucceededPayload struct{}

// UserRegistrationFailedPayload records why registration was rejected
// (most commonly email-uniqueness, decided against the user_emails guard
// table before this event is appended).
type UserRegistrationFailedPayload struct {
	Reason string `msgpack:"reason"`
}

type UserLoggedInPayload struct {
	At time.Time `msgpack:"at"`
}

type UserProfileUpdatedPayload struct {
	FirstName string `msgpack:"first_name,omitempty"`
	LastName  string `msgpack:"last_name,omitempty"`
}

type UserSuspendedPayload struct {
	Reason string `msgpack:"reason,omitempty"`
}

type UserActivatedPayload struct{}

type UserPremiumBypassToggledPayload struct {
	Enabled bool `msgpack:"enabled"`
}

type UserPromotedToAdminPayload struct{}

type UserDemotedFromAdminPayload struct{}

// UserMealPlanningPreferencesUpdatedPayload mirrors the PUT
// /profile/meal-planning-preferences contract but is
// validated again here so a directly-issued command cannot bypass the
// HTTP binding tags.
type UserMealPlanningPreferencesUpdatedPayload struct {
	MaxPrepTimeWeeknight    int      `msgpack:"max_prep_time_weeknight"`
	MaxPrepTimeWeekend      int      `msgpack:"max_prep_time_weekend"`
	AvoidConsecutiveComplex bool     `msgpack:"avoid_consecutive_complex"`
	CuisineVarietyWeight    float64  `msgpack:"cuisine_variety_weight"`
	DietaryRestrictions     []string `msgpack:"dietary_restrictions,omitempty"`
}
