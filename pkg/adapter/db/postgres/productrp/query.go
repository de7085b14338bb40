// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package productrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/dpreg/pkg/adapter/db/postgres"
	"github.com/momeni/dpreg/pkg/core/cerr"
	"github.com/momeni/dpreg/pkg/core/model"
	"gorm.io/gorm"
)

type gProduct struct {
	ID               uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Name             string
	CurrentVersionID uuid.UUID `gorm:"type:uuid"`
}

func (gp *gProduct) TableName() string {
	return "products"
}

type gVersion struct {
	ID                    uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	ProductID             uuid.UUID `gorm:"type:uuid"`
	Name                  string
	Major                 uint
	Minor                 uint
	Description           string
	Domain                string
	Owner                 string
	OwnerDisplayName      string
	Maintainer            *string
	MaintainerDisplayName *string
	Email                 string
	Status                string
	RetentionPeriod       int
	DpiaRequired          bool
	Tags                  model.Tags `gorm:"serializer:json"`
	DpiaLocation          *string
	LastUpdated           *time.Time
	CreationDate          *time.Time
	StorageLocation       *string
	RowCount              *int64
}

func (gv *gVersion) TableName() string {
	return "product_versions"
}

func newGVersion(v *model.ProductVersion) *gVersion {
	return &gVersion{
		ID:                    uuid.New(),
		ProductID:             v.ProductID,
		Name:                  v.Name,
		Major:                 v.Version.Major,
		Minor:                 v.Version.Minor,
		Description:           v.Description,
		Domain:                v.Domain,
		Owner:                 v.Owner,
		OwnerDisplayName:      v.OwnerDisplayName,
		Maintainer:            v.Maintainer,
		MaintainerDisplayName: v.MaintainerDisplayName,
		Email:                 v.Email,
		Status:                v.Metadata.Status.String(),
		RetentionPeriod:       v.RetentionPeriod,
		DpiaRequired:          v.DpiaRequired,
		Tags:                  v.Tags,
		DpiaLocation:          v.DpiaLocation,
		LastUpdated:           v.LastUpdated,
		CreationDate:          v.CreationDate,
		StorageLocation:       v.StorageLocation,
		RowCount:              v.RowCount,
	}
}

func (gv *gVersion) Model(schemas []gSchema) (*model.ProductVersion, error) {
	status, err := model.ParseStatus(gv.Status)
	if err != nil {
		return nil, fmt.Errorf("status %q: %w", gv.Status, err)
	}
	v := &model.ProductVersion{
		ID:        gv.ID,
		ProductID: gv.ProductID,
		Name:      gv.Name,
		Version:   model.Version{Major: gv.Major, Minor: gv.Minor},
		Metadata: model.Metadata{
			Description:           gv.Description,
			Domain:                gv.Domain,
			Owner:                 gv.Owner,
			OwnerDisplayName:      gv.OwnerDisplayName,
			Maintainer:            gv.Maintainer,
			MaintainerDisplayName: gv.MaintainerDisplayName,
			Email:                 gv.Email,
			Status:                status,
			RetentionPeriod:       gv.RetentionPeriod,
			DpiaRequired:          gv.DpiaRequired,
			Tags:                  gv.Tags,
		},
		Operational: model.Operational{
			DpiaLocation:    gv.DpiaLocation,
			LastUpdated:     gv.LastUpdated,
			CreationDate:    gv.CreationDate,
			StorageLocation: gv.StorageLocation,
			RowCount:        gv.RowCount,
		},
	}
	for i := range schemas {
		v.Schemas = append(v.Schemas, schemas[i].Model())
	}
	return v, nil
}

type gSchema struct {
	ID               uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	VersionID        uuid.UUID `gorm:"type:uuid"`
	Name             string
	TableDescription string
	Columns          []model.Column `gorm:"serializer:json"`
}

func (gs *gSchema) TableName() string {
	return "product_schemas"
}

func newGSchema(versionID uuid.UUID, s *model.Schema) *gSchema {
	return &gSchema{
		ID:               uuid.New(),
		VersionID:        versionID,
		Name:             s.Name,
		TableDescription: s.TableDescription,
		Columns:          s.Columns,
	}
}

func (gs *gSchema) Model() *model.Schema {
	return &model.Schema{
		ID:               gs.ID,
		Name:             gs.Name,
		TableDescription: gs.TableDescription,
		Columns:          gs.Columns,
	}
}

// CreateProduct inserts the product row together with its initial
// version snapshot and schemas. The products.current_version_id
// foreign key is deferred, so the product row (pointing at the not
// yet inserted version) can be inserted first; the surrounding
// transaction settles the reference at commit time.
func CreateProduct[Q postgres.Queryer](ctx context.Context, q Q, v *model.ProductVersion) (*model.ProductVersion, error) {
	gdb := q.GORM(ctx)
	now := time.Now().UTC()
	v.Operational.CreationDate = &now
	v.Operational.LastUpdated = &now
	gv := newGVersion(v)
	gp := &gProduct{
		ID:               uuid.New(),
		Name:             v.Name,
		CurrentVersionID: gv.ID,
	}
	gv.ProductID = gp.ID
	if err := gdb.Create(gp).Error; err != nil {
		return nil, wrapError(
			err, "A data product with this name already exists",
		)
	}
	if err := gdb.Create(gv).Error; err != nil {
		return nil, fmt.Errorf("inserting version: %w", err)
	}
	gss, err := createSchemas(gdb, gv.ID, v.Schemas)
	if err != nil {
		return nil, err
	}
	return gv.Model(gss)
}

// AdvanceHead inserts v as a new version snapshot of the existing
// product named v.Name and re-points the product head at it. The
// (name, major, minor) uniqueness of version rows turns a concurrent
// advance from the same head into a conflict error for the loser.
func AdvanceHead[Q postgres.Queryer](ctx context.Context, q Q, v *model.ProductVersion) (*model.ProductVersion, error) {
	gdb := q.GORM(ctx)
	var gp gProduct
	err := gdb.Where("name=?", v.Name).Take(&gp).Error
	if err != nil {
		return nil, notFoundOr(err, "data product not found")
	}
	now := time.Now().UTC()
	v.Operational.LastUpdated = &now
	gv := newGVersion(v)
	gv.ProductID = gp.ID
	if err := gdb.Create(gv).Error; err != nil {
		return nil, wrapError(
			err, "This version of the data product already exists",
		)
	}
	gss, err := createSchemas(gdb, gv.ID, v.Schemas)
	if err != nil {
		return nil, err
	}
	tt := gdb.Model(&gProduct{}).Where("id=?", gp.ID).
		Update("current_version_id", gv.ID)
	if err := tt.Error; err != nil {
		return nil, fmt.Errorf("re-pointing head: %w", err)
	}
	if n := tt.RowsAffected; n != 1 {
		return nil, fmt.Errorf("expected one head row, but got %d", n)
	}
	return gv.Model(gss)
}

func createSchemas(gdb *gorm.DB, versionID uuid.UUID, schemas []*model.Schema) ([]gSchema, error) {
	gss := make([]gSchema, 0, len(schemas))
	for _, s := range schemas {
		gs := newGSchema(versionID, s)
		if err := gdb.Create(gs).Error; err != nil {
			return nil, wrapError(
				err, "A schema with this name already exists",
			)
		}
		gss = append(gss, *gs)
	}
	return gss, nil
}

// FetchByNameAndVersion loads one specific version snapshot.
func FetchByNameAndVersion[Q postgres.Queryer](ctx context.Context, q Q, name string, version model.Version) (*model.ProductVersion, error) {
	gdb := q.GORM(ctx)
	var gv gVersion
	err := gdb.Where(
		"name=? AND major=? AND minor=?",
		name, version.Major, version.Minor,
	).Take(&gv).Error
	if err != nil {
		return nil, notFoundOr(err, "data product not found")
	}
	return loadVersion(gdb, &gv)
}

// FetchLatest loads the version snapshot currently pointed to by the
// head of the product with the given name.
func FetchLatest[Q postgres.Queryer](ctx context.Context, q Q, name string) (*model.ProductVersion, error) {
	gdb := q.GORM(ctx)
	var gp gProduct
	err := gdb.Where("name=?", name).Take(&gp).Error
	if err != nil {
		return nil, notFoundOr(err, "data product not found")
	}
	var gv gVersion
	err = gdb.Where("id=?", gp.CurrentVersionID).Take(&gv).Error
	if err != nil {
		return nil, fmt.Errorf("loading head version: %w", err)
	}
	return loadVersion(gdb, &gv)
}

// ListLatest loads the head version snapshot of every product,
// ordered by product name.
func ListLatest[Q postgres.Queryer](ctx context.Context, q Q) ([]*model.ProductVersion, error) {
	gdb := q.GORM(ctx)
	var gvs []gVersion
	err := gdb.Model(&gVersion{}).Joins(
		"JOIN products ON products.current_version_id=product_versions.id",
	).Order("product_versions.name").Find(&gvs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	versions := make([]*model.ProductVersion, 0, len(gvs))
	for i := range gvs {
		v, err := loadVersion(gdb, &gvs[i])
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// CreateSchema inserts one table schema bound to the current version
// of the named product.
func CreateSchema[Q postgres.Queryer](ctx context.Context, q Q, productName string, s *model.Schema) (*model.Schema, error) {
	gdb := q.GORM(ctx)
	var gp gProduct
	err := gdb.Where("name=?", productName).Take(&gp).Error
	if err != nil {
		return nil, notFoundOr(err, "data product not found")
	}
	gs := newGSchema(gp.CurrentVersionID, s)
	if err := gdb.Create(gs).Error; err != nil {
		return nil, wrapError(
			err, "A schema with this name already exists",
		)
	}
	return gs.Model(), nil
}

// FetchSchema loads the table schema with the given name from the
// current version of the named product.
func FetchSchema[Q postgres.Queryer](ctx context.Context, q Q, productName, tableName string) (*model.Schema, error) {
	gdb := q.GORM(ctx)
	var gp gProduct
	err := gdb.Where("name=?", productName).Take(&gp).Error
	if err != nil {
		return nil, notFoundOr(err, "data product not found")
	}
	var gs gSchema
	err = gdb.Where(
		"version_id=? AND name=?", gp.CurrentVersionID, tableName,
	).Take(&gs).Error
	if err != nil {
		return nil, notFoundOr(err, "schema not found")
	}
	return gs.Model(), nil
}

func loadVersion(gdb *gorm.DB, gv *gVersion) (*model.ProductVersion, error) {
	var gss []gSchema
	err := gdb.Where("version_id=?", gv.ID).Order("name").
		Find(&gss).Error
	if err != nil {
		return nil, fmt.Errorf("loading schemas: %w", err)
	}
	return gv.Model(gss)
}

// wrapError maps a unique constraint violation to a conflict error
// with the given message, wrapping other errors as internal errors.
func wrapError(err error, uniqueMsg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
		return cerr.Conflict(errors.New(uniqueMsg))
	}
	return fmt.Errorf("query: %w", err)
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cerr.NotFound(errors.New(msg))
	}
	return fmt.Errorf("query: %w", err)
}
