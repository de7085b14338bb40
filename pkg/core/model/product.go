// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Tags is a set of additional key to value annotations on a data
// product version. Keys are unique per version.
type Tags map[string]string

// Equal reports whether t and o contain the same key/value pairs.
func (t Tags) Equal(o Tags) bool {
	return maps.Equal(t, o)
}

// Clone returns a copy of t, so a new version can be mutated without
// updating the tags of the version it was derived from.
func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}

// Metadata contains the client-updatable descriptive attributes of a
// data product version. Changing any of these produces a new minor
// version; they never require consumers to update their code.
type Metadata struct {
	Description           string
	Domain                string
	Owner                 string // unique identifier of the owning user
	OwnerDisplayName      string
	Maintainer            *string // secondary party, optional
	MaintainerDisplayName *string
	Email                 string // point of contact
	Status                Status
	RetentionPeriod       int // days, non-negative
	DpiaRequired          bool
	Tags                  Tags
}

// Operational contains the attributes which are generated by the data
// platform itself. Clients cannot write them; the versioning engine
// carries them forward unchanged.
type Operational struct {
	DpiaLocation    *string
	LastUpdated     *time.Time
	CreationDate    *time.Time
	StorageLocation *string
	RowCount        *int64
}

// ProductVersion is one immutable snapshot of a data product: its
// metadata and the table schemas which are in force at that version.
// The owning product keeps a head pointer to exactly one version;
// prior versions remain addressable forever and are never mutated
// after commit.
type ProductVersion struct {
	ID        uuid.UUID // zero until persisted
	ProductID uuid.UUID // owning product, zero until persisted

	// Name duplicates the owning product name, so the database can
	// enforce (name, version) uniqueness at the version level and
	// reject concurrent head advances without pessimistic locks.
	Name    string
	Version Version

	Metadata
	Operational

	Schemas []*Schema // ordered by name
}

// ExternalID returns the identifier which clients use to address the
// data product, like dp:my_product. Clients address products, not
// historical versions.
func (pv *ProductVersion) ExternalID() string {
	return "dp:" + pv.Name
}

// VersionedExternalID returns the informational identifier of this
// specific snapshot, like dp:my_product:v1.2.
func (pv *ProductVersion) VersionedExternalID() string {
	return "dp:" + pv.Name + ":" + pv.Version.String()
}

// SchemaExternalID returns the identifier of the table schema with
// the given name under this product, like dp:my_product:my_table.
func (pv *ProductVersion) SchemaExternalID(table string) string {
	return "dp:" + pv.Name + ":" + table
}

// Schema returns the schema with the given table name, or nil if this
// version holds no such schema.
func (pv *ProductVersion) Schema(table string) *Schema {
	for _, s := range pv.Schemas {
		if s.Name == table {
			return s
		}
	}
	return nil
}

// SchemaNames returns the table names of this version, in schema
// order.
func (pv *ProductVersion) SchemaNames() []string {
	names := make([]string, 0, len(pv.Schemas))
	for _, s := range pv.Schemas {
		names = append(names, s.Name)
	}
	return names
}

// NextMajor derives a new unpersisted version with an incremented
// major component. All metadata and operational attributes are
// inherited; schemas are not copied, so the versioning engine can
// decide which schemas survive.
func (pv *ProductVersion) NextMajor() *ProductVersion {
	next := pv.clone()
	next.Version = pv.Version.IncrementMajor()
	return next
}

// NextMinor derives a new unpersisted version with an incremented
// minor component, inheriting all metadata and operational attributes
// and no schemas.
func (pv *ProductVersion) NextMinor() *ProductVersion {
	next := pv.clone()
	next.Version = pv.Version.IncrementMinor()
	return next
}

// clone copies pv without identifiers and without schemas. The tags
// mapping is cloned too, keeping the committed version immutable.
func (pv *ProductVersion) clone() *ProductVersion {
	next := &ProductVersion{
		Name:        pv.Name,
		Version:     pv.Version,
		Metadata:    pv.Metadata,
		Operational: pv.Operational,
	}
	next.Tags = pv.Tags.Clone()
	return next
}

// Validate checks the product name, the metadata attributes, and all
// held schemas against their grammars.
func (pv *ProductVersion) Validate() error {
	if !NamePattern.MatchString(pv.Name) {
		return fmt.Errorf("invalid data product name: %q", pv.Name)
	}
	if err := pv.Status.Validate(); err != nil {
		return err
	}
	if pv.RetentionPeriod < 0 {
		return fmt.Errorf(
			"negative retention period: %d", pv.RetentionPeriod,
		)
	}
	for _, s := range pv.Schemas {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
