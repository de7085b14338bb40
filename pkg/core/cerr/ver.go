// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import "fmt"

// MalformedVersionError indicates that a string could not be parsed
// as a version of the form v<major>.<minor>. It records the offending
// string and a short reason. This error is internal to the registry;
// version strings are generated by the versioning engine, so a parse
// failure indicates a corrupted row rather than a client mistake and
// must not be surfaced with a 4xx status.
type MalformedVersionError struct {
	Value  string
	Reason string
}

// MalformedVersion creates a *MalformedVersionError for the value
// version string, explaining the parse failure with the reason string.
func MalformedVersion(value, reason string) *MalformedVersionError {
	return &MalformedVersionError{Value: value, Reason: reason}
}

// Error returns a string representation of the mve error instance.
func (mve *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version %q: %s", mve.Value, mve.Reason)
}

// InvalidUpdateError indicates an update which cannot be applied to a
// data product: a non-updatable metadata field was changed or a schema
// which was asked to be removed is not present in the current version.
// The versioning engine returns this error with no side effects; the
// adapters layer reports it with a 400 status code since the client
// can correct and resubmit the request.
type InvalidUpdateError struct {
	Reason string
}

// InvalidUpdate creates an *InvalidUpdateError with the given reason.
func InvalidUpdate(format string, args ...any) *InvalidUpdateError {
	return &InvalidUpdateError{Reason: fmt.Sprintf(format, args...)}
}

// Error returns a string representation of the iue error instance.
func (iue *InvalidUpdateError) Error() string {
	return iue.Reason
}
