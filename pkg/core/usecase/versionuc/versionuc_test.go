// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package versionuc_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/momeni/dpreg/pkg/core/cerr"
	"github.com/momeni/dpreg/pkg/core/model"
	"github.com/momeni/dpreg/pkg/core/usecase/versionuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// current returns a persisted-looking version at v1.0 with two
// schemas, table1 and table2.
func current() *model.ProductVersion {
	return &model.ProductVersion{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Name:      "abc",
		Version:   model.Version{Major: 1, Minor: 0},
		Metadata: model.Metadata{
			Domain: "test",
			Status: model.StatusDraft,
		},
		Schemas: []*model.Schema{
			{
				ID:   uuid.New(),
				Name: "table1",
				Columns: []model.Column{
					{Name: "foo", Type: "string", Description: "abc"},
				},
			},
			{
				ID:   uuid.New(),
				Name: "table2",
				Columns: []model.Column{
					{Name: "bar", Type: "int", Description: ""},
				},
			},
		},
	}
}

func service(t *testing.T, cur *model.ProductVersion) *versionuc.Service {
	svc, err := versionuc.New(cur)
	require.NoError(t, err, "instantiating versioning service")
	return svc
}

func schemaNames(v *model.ProductVersion) []string {
	names := make([]string, 0, len(v.Schemas))
	for _, s := range v.Schemas {
		names = append(names, s.Name)
	}
	return names
}

func TestRemoveSchemas(t *testing.T) {
	svc := service(t, current())
	next, err := svc.RemoveSchemas("table1")
	require.NoError(t, err)
	assert.True(t, next.ID == uuid.Nil, "derived version must be unpersisted")
	assert.Equal(t, "v2.0", next.Version.String())
	assert.Equal(t, "abc", next.Name)
	assert.Equal(t, []string{"table2"}, schemaNames(next))
	for _, s := range next.Schemas {
		assert.True(t, s.ID == uuid.Nil, "schemas must be copied fresh")
	}
}

func TestRemoveSchemasEmptySetIsNoOp(t *testing.T) {
	cur := current()
	svc := service(t, cur)
	next, err := svc.RemoveSchemas()
	require.NoError(t, err)
	assert.Same(t, cur, next, "empty set must not derive a new version")
}

func TestRemoveSchemasUnknownName(t *testing.T) {
	svc := service(t, current())
	_, err := svc.RemoveSchemas("table1", "table3")
	var iue *cerr.InvalidUpdateError
	require.ErrorAs(t, err, &iue)
	assert.Contains(t, err.Error(), "table3")
}

func TestMinorMetadataUpdate(t *testing.T) {
	cur := current()
	svc := service(t, cur)
	meta := cur.Metadata
	meta.Domain = "test2"
	next, err := svc.UpdateMetadata("abc", meta)
	require.NoError(t, err)
	assert.NotSame(t, cur, next)
	assert.True(t, next.ID == uuid.Nil)
	assert.Equal(t, "v1.1", next.Version.String())
	assert.Equal(t, "abc", next.Name)
	assert.Equal(t, "test2", next.Domain)
	assert.Equal(t, []string{"table1", "table2"}, schemaNames(next))
	for _, s := range next.Schemas {
		assert.True(t, s.ID == uuid.Nil, "schemas must be copied fresh")
	}
	assert.Equal(t, "test", cur.Domain, "current version must stay intact")
}

func TestNoopMetadataUpdate(t *testing.T) {
	cur := current()
	svc := service(t, cur)
	next, err := svc.UpdateMetadata("abc", cur.Metadata)
	require.NoError(t, err)
	assert.Same(t, cur, next, "empty diff must not derive a new version")
}

func TestMinorSchemaUpdate(t *testing.T) {
	cur := current()
	svc := service(t, cur)
	proposed := &model.Schema{
		Name:             "table1",
		TableDescription: "new description",
		Columns: []model.Column{
			{Name: "foo", Type: "string", Description: "abc"},
		},
	}
	next, changes, err := svc.UpdateSchema("table1", proposed)
	require.NoError(t, err)
	assert.Equal(t, "v1.1", next.Version.String())
	assert.Equal(t, []string{"tableDescription"}, changes.NonColumn)
	assert.Equal(
		t, "new description", next.Schema("table1").TableDescription,
	)
	assert.Equal(t, "", next.Schema("table2").TableDescription)
}

func TestMajorSchemaUpdate(t *testing.T) {
	cur := current()
	svc := service(t, cur)
	proposed := &model.Schema{
		Columns: []model.Column{
			{Name: "food", Type: "string", Description: "nom nom"},
		},
	}
	next, changes, err := svc.UpdateSchema("table1", proposed)
	require.NoError(t, err)
	assert.Equal(t, "v2.0", next.Version.String())
	assert.Equal(t, []string{"foo"}, changes.Columns.Removed)
	assert.Equal(t, []string{"food"}, changes.Columns.Added)
	assert.Equal(
		t,
		[]model.Column{
			{Name: "food", Type: "string", Description: "nom nom"},
		},
		next.Schema("table1").Columns,
	)
}

func TestUnchangedSchema(t *testing.T) {
	cur := current()
	svc := service(t, cur)
	proposed := &model.Schema{
		Columns: []model.Column{
			{Name: "foo", Type: "string", Description: "abc"},
		},
	}
	next, _, err := svc.UpdateSchema("table1", proposed)
	require.NoError(t, err)
	assert.Same(t, cur, next, "unchanged snapshot must not derive a new version")
}

func TestUpdateSchemaMissingTarget(t *testing.T) {
	svc := service(t, current())
	_, _, err := svc.UpdateSchema("table3", &model.Schema{})
	var ce *cerr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 404, ce.HTTPStatusCode)
}

func TestCannotUpdateName(t *testing.T) {
	cur := current()
	svc := service(t, cur)
	_, err := svc.UpdateMetadata("new_name", cur.Metadata)
	var iue *cerr.InvalidUpdateError
	require.ErrorAs(t, err, &iue)
	assert.Contains(t, err.Error(), "name")
}

func TestCannotUpdateWithoutAVersion(t *testing.T) {
	_, err := versionuc.New(&model.ProductVersion{Name: "new_product"})
	var iue *cerr.InvalidUpdateError
	require.ErrorAs(t, err, &iue)
}

func TestClassifyMetadataForbiddenWins(t *testing.T) {
	kind, forbidden := versionuc.ClassifyMetadata(
		[]string{"description", "name", "domain"},
	)
	assert.Equal(t, versionuc.NotAllowed, kind)
	assert.Equal(t, []string{"name"}, forbidden)
}

func TestDiffColumns(t *testing.T) {
	old := []model.Column{
		{Name: "a", Type: "int", Description: "x"},
		{Name: "b", Type: "string", Description: "y"},
		{Name: "c", Type: "date", Description: "z"},
	}
	new := []model.Column{
		{Name: "a", Type: "bigint", Description: "x"},
		{Name: "b", Type: "string", Description: "y2"},
		{Name: "d", Type: "boolean", Description: ""},
	}
	cc := versionuc.DiffColumns(old, new)
	assert.Equal(t, []string{"d"}, cc.Added)
	assert.Equal(t, []string{"c"}, cc.Removed)
	assert.Equal(t, []string{"a"}, cc.TypesChanged)
	assert.Equal(t, []string{"b"}, cc.DescriptionsChanged)
	assert.Equal(t, versionuc.MajorUpdate, cc.Kind())
}
