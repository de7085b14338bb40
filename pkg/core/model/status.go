// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// Status specifies the lifecycle status enum of a data product
// version. Although this enum is numeric, it is (de)serialized as a
// string for readability in the adapter layer. It communicates the
// overall status of the data product, not its deployment state.
type Status int

// Valid values for the Status enum.
const (
	StatusInvalid Status = iota // zero value is invalid

	StatusDraft     // not yet ready for consumption
	StatusPublished // discoverable and consumable
	StatusRetired   // kept for historical addressing only
)

// ErrUnknownStatus indicates that a given string may not be parsed
// as a valid/known status. The invalid string itself is not encoded
// in the error because the caller of ParseStatus already knows it.
var ErrUnknownStatus = errors.New("unknown status")

// StatusError indicates an invalid status value, containing the
// invalid value as an integer.
type StatusError int

// Error implements the error interface, returning a string
// representation of the StatusError.
func (e StatusError) Error() string {
	return fmt.Sprintf("invalid status: %d", int(e))
}

// Validate returns nil if the Status value is valid. For invalid
// values, an instance of the StatusError will be returned.
func (s Status) Validate() error {
	switch s {
	case StatusDraft, StatusPublished, StatusRetired:
		return nil
	default:
		return StatusError(s)
	}
}

// String converts the Status enum to a string, helping to serialize
// it for transmission to web clients. An invalid status causes a
// panic.
func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusPublished:
		return "published"
	case StatusRetired:
		return "retired"
	default:
		panic(StatusError(s))
	}
}

// ParseStatus parses the given string and returns a Status, helping
// to deserialize it when reading a REST API request or a database
// row. For invalid strings, StatusInvalid and ErrUnknownStatus will
// be returned.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "draft":
		return StatusDraft, nil
	case "published":
		return StatusPublished, nil
	case "retired":
		return StatusRetired, nil
	default:
		return StatusInvalid, ErrUnknownStatus
	}
}
