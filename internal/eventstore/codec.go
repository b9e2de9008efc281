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

package eventstore

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodePayload serializes an event payload to the stable binary wire
// format. msgpack's struct-tag encoding is versionable: new optional
// fields added to a payload struct decode to their zero value when absent
// from an older stored event, keeping every payload a stable schema
// contract without a general-purpose JSON envelope.
func EncodePayload(v interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("eventstore: encode payload: %w", err)
	}
	return data, nil
}

// DecodePayload deserializes a stored payload into v. Any failure is
// wrapped in ErrDecode — decode errors are fatal and must
// propagate, never be swallowed.
func DecodePayload(data []byte, v interface{}) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
