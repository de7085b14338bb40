// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// NamePattern constrains externally visible short names: data product
// names, table names, and column names.
var NamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ColumnTypePattern is the grammar of column data types, matching the
// analytical engine types the registry describes (case-sensitive).
var ColumnTypePattern = regexp.MustCompile(
	`^(u?(tiny|small|big|)int)$` +
		`|^float$|^double$` +
		`|^decimal\(\d{1,2},\s?\d{1,2}\)$` +
		`|^char\(\d{1,3}\)$|^varchar\(\d{0,5}\)$|^varchar$` +
		`|^string$|^boolean$|^date$|^timestamp$`,
)

// Column describes one column of a table schema.
type Column struct {
	Name        string // matches NamePattern
	Type        string // matches ColumnTypePattern
	Description string // free text, feeds the data catalogue
}

// Validate checks the column name and type against their grammars.
// The description is free text and is not checked.
func (c Column) Validate() error {
	if !NamePattern.MatchString(c.Name) {
		return fmt.Errorf("invalid column name: %q", c.Name)
	}
	if !ColumnTypePattern.MatchString(c.Type) {
		return fmt.Errorf(
			"invalid type %q for column %q", c.Type, c.Name,
		)
	}
	return nil
}

// Schema models a table definition which is bound to exactly one
// data product version. Schemas are not shared across versions; the
// versioning engine copies them forward with fresh identifiers, so
// the immutability of committed versions is structural rather than
// advisory.
type Schema struct {
	ID uuid.UUID // zero until persisted

	Name             string   // table name, unique within its version
	TableDescription string   // free text
	Columns          []Column // ordered as registered
}

// Copy returns a deep copy of the s schema with a zero identifier,
// so it can be attached to a new version and persisted as a fresh
// row.
func (s *Schema) Copy() *Schema {
	columns := make([]Column, len(s.Columns))
	copy(columns, s.Columns)
	return &Schema{
		Name:             s.Name,
		TableDescription: s.TableDescription,
		Columns:          columns,
	}
}

// Validate checks the schema name and all of its columns against
// their grammars.
func (s *Schema) Validate() error {
	if !NamePattern.MatchString(s.Name) {
		return fmt.Errorf("invalid table name: %q", s.Name)
	}
	for _, c := range s.Columns {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
