// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package versionuc

import (
	"github.com/momeni/dpreg/pkg/core/model"
)

// UpdateKind classifies a proposed change to a data product or one of
// its schemas. Kinds form a lattice ordered as
// NotAllowed > MajorUpdate > MinorUpdate > Unchanged; independent
// signals are combined by taking their maximum.
type UpdateKind int

// Valid values for the UpdateKind enum, in lattice order.
const (
	Unchanged   UpdateKind = iota // effective diff is empty
	MinorUpdate                   // backward compatible change
	MajorUpdate                   // consumers may have to update code
	NotAllowed                    // a non-updatable field was changed
)

// Max returns the greater of the k and o kinds.
func (k UpdateKind) Max(o UpdateKind) UpdateKind {
	if o > k {
		return o
	}
	return k
}

// String converts the UpdateKind enum to a string for log records.
func (k UpdateKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case MinorUpdate:
		return "minor"
	case MajorUpdate:
		return "major"
	case NotAllowed:
		return "not-allowed"
	default:
		return "unknown"
	}
}

// Metadata keys which clients may update, named as they appear on the
// wire. Any other differing key classifies the update as NotAllowed.
// Metadata changes are never major on their own.
var updatableMetadataFields = map[string]struct{}{
	"description":                      {},
	"email":                            {},
	"dataProductOwner":                 {},
	"dataProductOwnerDisplayName":      {},
	"domain":                           {},
	"status":                           {},
	"dpiaRequired":                     {},
	"retentionPeriod":                  {},
	"dataProductMaintainer":            {},
	"dataProductMaintainerDisplayName": {},
	"tags":                             {},
}

// The only non-column schema field whose change is backward
// compatible.
const tableDescriptionField = "tableDescription"

// MetadataChanges computes the wire-named metadata keys whose values
// differ between the current version and the proposed (name, meta)
// pair. Primary and foreign keys do not take part in the comparison,
// and two nil optional values are not a change.
func MetadataChanges(
	current *model.ProductVersion, name string, meta model.Metadata,
) []string {
	var changed []string
	add := func(field string, differs bool) {
		if differs {
			changed = append(changed, field)
		}
	}
	add("name", name != current.Name)
	add("description", meta.Description != current.Description)
	add("domain", meta.Domain != current.Domain)
	add("dataProductOwner", meta.Owner != current.Owner)
	add(
		"dataProductOwnerDisplayName",
		meta.OwnerDisplayName != current.OwnerDisplayName,
	)
	add(
		"dataProductMaintainer",
		!strPtrEqual(meta.Maintainer, current.Maintainer),
	)
	add(
		"dataProductMaintainerDisplayName",
		!strPtrEqual(
			meta.MaintainerDisplayName, current.MaintainerDisplayName,
		),
	)
	add("email", meta.Email != current.Email)
	add("status", meta.Status != current.Status)
	add(
		"retentionPeriod",
		meta.RetentionPeriod != current.RetentionPeriod,
	)
	add("dpiaRequired", meta.DpiaRequired != current.DpiaRequired)
	add("tags", !meta.Tags.Equal(current.Tags))
	return changed
}

// ClassifyMetadata folds a set of changed metadata keys into an
// UpdateKind: any key outside the updatable set yields NotAllowed,
// a non-empty difference yields MinorUpdate, and an empty difference
// yields Unchanged.
func ClassifyMetadata(changed []string) (UpdateKind, []string) {
	kind := Unchanged
	var forbidden []string
	for _, field := range changed {
		if _, ok := updatableMetadataFields[field]; !ok {
			forbidden = append(forbidden, field)
			kind = kind.Max(NotAllowed)
			continue
		}
		kind = kind.Max(MinorUpdate)
	}
	return kind, forbidden
}

// ColumnChanges records the per-column differences between two schema
// snapshots, matched by column name.
type ColumnChanges struct {
	Added               []string // present in new only; minor
	Removed             []string // present in old only; major
	TypesChanged        []string // retained, type differs; major
	DescriptionsChanged []string // retained, description differs; minor
}

// Kind folds the recorded column differences into an UpdateKind.
func (cc ColumnChanges) Kind() UpdateKind {
	kind := Unchanged
	if len(cc.Added) > 0 || len(cc.DescriptionsChanged) > 0 {
		kind = kind.Max(MinorUpdate)
	}
	if len(cc.Removed) > 0 || len(cc.TypesChanged) > 0 {
		kind = kind.Max(MajorUpdate)
	}
	return kind
}

// DiffColumns compares two ordered column lists, matching columns by
// name. Input order is preserved in the reported change lists.
func DiffColumns(old, new []model.Column) ColumnChanges {
	var cc ColumnChanges
	newByName := make(map[string]model.Column, len(new))
	for _, c := range new {
		newByName[c.Name] = c
	}
	oldByName := make(map[string]model.Column, len(old))
	for _, c := range old {
		oldByName[c.Name] = c
		n, retained := newByName[c.Name]
		if !retained {
			cc.Removed = append(cc.Removed, c.Name)
			continue
		}
		if n.Type != c.Type {
			cc.TypesChanged = append(cc.TypesChanged, c.Name)
		}
		if n.Description != c.Description {
			cc.DescriptionsChanged = append(
				cc.DescriptionsChanged, c.Name,
			)
		}
	}
	for _, c := range new {
		if _, ok := oldByName[c.Name]; !ok {
			cc.Added = append(cc.Added, c.Name)
		}
	}
	return cc
}

// SchemaChanges records the complete difference between two snapshots
// of one table schema.
type SchemaChanges struct {
	Columns   ColumnChanges
	NonColumn []string // changed non-column fields, wire-named
}

// ClassifySchema diffs two snapshots of the same table schema and
// reports the update kind along with the detected changes. The only
// non-column field whose change is backward compatible is the table
// description; any other non-column difference is major. If both a
// major column signal and a minor non-column signal are present, the
// major signal wins.
func ClassifySchema(old, new *model.Schema) (UpdateKind, SchemaChanges) {
	changes := SchemaChanges{
		Columns: DiffColumns(old.Columns, new.Columns),
	}
	kind := changes.Columns.Kind()
	if new.TableDescription != old.TableDescription {
		changes.NonColumn = append(
			changes.NonColumn, tableDescriptionField,
		)
		kind = kind.Max(MinorUpdate)
	}
	if new.Name != old.Name {
		changes.NonColumn = append(changes.NonColumn, "name")
		kind = kind.Max(MajorUpdate)
	}
	return kind, changes
}

// strPtrEqual compares two optional strings; two nil values are equal.
func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
