// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package versionuc contains the semantic versioning engine of the
// registry. Given the currently persisted version of a data product
// and a proposed modification, it classifies the change as unchanged,
// backward compatible (minor), backward incompatible (major), or
// forbidden, and derives the next immutable version with untouched
// schemas carried forward. Carrying schemas forward makes every
// version self-contained: a consumer fetching a product at any point
// sees exactly the schemas which were in force.
//
// The engine never talks to the database. Returned versions carry no
// identifiers; the caller persists them atomically and re-points the
// product head.
package versionuc

import (
	"fmt"
	"sort"

	"github.com/momeni/dpreg/pkg/core/cerr"
	"github.com/momeni/dpreg/pkg/core/model"
)

// Service applies proposed updates to one loaded data product
// version. Each returned version is a fresh unpersisted object; the
// current version is never mutated.
type Service struct {
	current *model.ProductVersion
}

// New instantiates a versioning service over the current version.
// The version must have been loaded from the metadata store already,
// so its version number is set; otherwise there is nothing to derive
// the next version number from.
func New(current *model.ProductVersion) (*Service, error) {
	if current.Version.IsZero() {
		return nil, cerr.InvalidUpdate(
			"current metadata must have a version set",
		)
	}
	return &Service{current: current}, nil
}

// RemoveSchemas derives a new version which no longer contains the
// given table schemas. If any named schema is not present in the
// current version, it fails with *cerr.InvalidUpdateError and no
// side effects. Removing a schema always breaks consumers, so the
// major component is incremented and every surviving schema is copied
// forward. An empty set is a no-op returning the current version.
func (s *Service) RemoveSchemas(tables ...string) (
	*model.ProductVersion, error,
) {
	if len(tables) == 0 {
		return s.current, nil
	}
	remove := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		remove[t] = struct{}{}
	}
	var unknown []string
	for t := range remove {
		if s.current.Schema(t) == nil {
			unknown = append(unknown, t)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, cerr.InvalidUpdate(
			"invalid schemas found in schema list: %v", unknown,
		)
	}
	next := s.current.NextMajor()
	for _, schema := range s.current.Schemas {
		if _, gone := remove[schema.Name]; !gone {
			next.Schemas = append(next.Schemas, schema.Copy())
		}
	}
	return next, nil
}

// UpdateMetadata derives a new version whose updatable metadata
// attributes are replaced by the meta argument, with the product
// addressed as name. A differing name (or any other non-updatable
// key) fails with *cerr.InvalidUpdateError. An empty effective diff
// returns the current version unchanged, so no new row is written.
// Otherwise the minor component is incremented and all schemas are
// copied forward; metadata updates never bump the major component.
func (s *Service) UpdateMetadata(name string, meta model.Metadata) (
	*model.ProductVersion, error,
) {
	changed := MetadataChanges(s.current, name, meta)
	kind, forbidden := ClassifyMetadata(changed)
	switch kind {
	case NotAllowed:
		return nil, cerr.InvalidUpdate(
			"non-updatable metadata field(s) changed: %v", forbidden,
		)
	case Unchanged:
		return s.current, nil
	}
	next := s.current.NextMinor()
	next.Metadata = meta
	next.Tags = meta.Tags.Clone()
	for _, schema := range s.current.Schemas {
		next.Schemas = append(next.Schemas, schema.Copy())
	}
	return next, nil
}

// UpdateSchema derives a new version in which the table schema named
// table is replaced by the proposed snapshot. The target must exist
// in the current version. An unchanged snapshot returns the current
// version; a backward compatible change increments the minor
// component and a breaking change increments the major component.
// The untouched schemas are copied forward verbatim in both cases.
// The detected changes are returned so callers can log or surface
// them.
func (s *Service) UpdateSchema(table string, proposed *model.Schema) (
	*model.ProductVersion, SchemaChanges, error,
) {
	target := s.current.Schema(table)
	if target == nil {
		return nil, SchemaChanges{}, cerr.NotFound(fmt.Errorf(
			"no schema named %q in version %s",
			table, s.current.Version,
		))
	}
	next := proposed.Copy()
	next.Name = table
	kind, changes := ClassifySchema(target, next)
	if kind == Unchanged {
		return s.current, changes, nil
	}
	var derived *model.ProductVersion
	if kind == MajorUpdate {
		derived = s.current.NextMajor()
	} else {
		derived = s.current.NextMinor()
	}
	for _, schema := range s.current.Schemas {
		if schema.Name == table {
			derived.Schemas = append(derived.Schemas, next)
		} else {
			derived.Schemas = append(derived.Schemas, schema.Copy())
		}
	}
	return derived, changes, nil
}
