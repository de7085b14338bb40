// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models of the data-product metadata
// registry. This layer may not depend on outter layers, while all
// other layers may depend on it.
package model

import (
	"strconv"
	"strings"

	"github.com/momeni/dpreg/pkg/core/cerr"
)

// Version represents a data product version, consisting of two
// components. First component indicates the major version.
// Incrementing it represents backward-incompatible changes such as
// removed columns or changed column types. Second component is the
// minor version which represents backward compatible changes such as
// added columns or updated descriptions.
//
// No patch component is considered because the registry only tracks
// metadata snapshots which are visible in the API level; there is no
// notion of an invisible implementation change for a data product.
type Version struct {
	Major uint
	Minor uint
}

// ParseVersion parses a version string like v1.0 and returns its
// Version instance. The string must begin with a literal v, followed
// by a non-negative major number, a dot, and a non-negative minor
// number. Any surplus or missing input fails with an instance of
// *cerr.MalformedVersionError.
func ParseVersion(s string) (Version, error) {
	rest, found := strings.CutPrefix(s, "v")
	if !found {
		return Version{}, cerr.MalformedVersion(s, "missing v prefix")
	}
	major, minor, found := strings.Cut(rest, ".")
	if !found {
		return Version{}, cerr.MalformedVersion(s, "missing dot")
	}
	mj, err := strconv.ParseUint(major, 10, strconv.IntSize-1)
	if err != nil {
		return Version{}, cerr.MalformedVersion(s, "non-numeric major")
	}
	mn, err := strconv.ParseUint(minor, 10, strconv.IntSize-1)
	if err != nil {
		return Version{}, cerr.MalformedVersion(s, "non-numeric minor")
	}
	return Version{Major: uint(mj), Minor: uint(mn)}, nil
}

// String returns the v version as a string like v1.0, so it can be
// serialized for transmission to web clients or stored in a database
// row. Parsing and formatting a valid version string round-trips.
func (v Version) String() string {
	return "v" + strconv.FormatUint(uint64(v.Major), 10) +
		"." + strconv.FormatUint(uint64(v.Minor), 10)
}

// MarshalText implements encoding.TextMarshaler interface and
// serializes v as its string representation.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText deserializes text as a version string and fills the
// v Version instance. In case of errors, v will be left unchanged.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// IncrementMajor returns the next major version, resetting the minor
// component. A major version increment communicates that consumers of
// the data product may have to update their code.
func (v Version) IncrementMajor() Version {
	return Version{Major: v.Major + 1}
}

// IncrementMinor returns the next minor version within the same major
// series.
func (v Version) IncrementMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// Compare returns -1, 0, or 1 if v is ordered before, equal to, or
// after the o version. Ordering is lexicographic over the
// (major, minor) pair.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major < o.Major:
		return -1
	case v.Major > o.Major:
		return 1
	case v.Minor < o.Minor:
		return -1
	case v.Minor > o.Minor:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether v is the zero value which is not a valid
// assigned version. The initial version of a data product is v1.0,
// so v0.x never occurs in a persisted row.
func (v Version) IsZero() bool {
	return v == Version{}
}
