// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package productuc contains the data products use case: registering
// a product with its initial version, discovering products, and
// submitting metadata or schema updates which the versioning engine
// turns into new immutable versions. Every operation acquires one
// connection and runs all of its reads and writes in one database
// transaction, so a failed update leaves no partial state and the
// head pointer never references a version produced by another
// request.
package productuc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/momeni/dpreg/pkg/core/cerr"
	"github.com/momeni/dpreg/pkg/core/log"
	"github.com/momeni/dpreg/pkg/core/model"
	"github.com/momeni/dpreg/pkg/core/repo"
	"github.com/momeni/dpreg/pkg/core/usecase/versionuc"
)

// UseCase represents the data products use case. It holds a database
// connection pool and the data products repository instance (to be
// guided with the pool's connections and transactions).
type UseCase struct {
	pool repo.Pool
	dprp repo.DataProducts
}

// New instantiates a data products use case.
func New(p repo.Pool, r repo.DataProducts) *UseCase {
	return &UseCase{pool: p, dprp: r}
}

// tx runs the handler in one transaction on one acquired connection.
func (uc *UseCase) tx(
	ctx context.Context,
	handler func(ctx context.Context, q repo.DataProductsTxQueryer) error,
) error {
	return uc.pool.Conn(
		ctx, func(ctx context.Context, c repo.Conn) error {
			return c.Tx(
				ctx, func(ctx context.Context, tx repo.Tx) error {
					return handler(ctx, uc.dprp.Tx(tx))
				},
			)
		},
	)
}

// Create registers a new data product described by the v version,
// assigning the initial v1.0 version number. The persisted version
// with its identifiers is returned. A duplicate product name causes
// a conflict error.
func (uc *UseCase) Create(
	ctx context.Context, v *model.ProductVersion,
) (created *model.ProductVersion, err error) {
	if err := v.Validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	v.Version = model.Version{Major: 1, Minor: 0}
	err = uc.tx(
		ctx, func(ctx context.Context, q repo.DataProductsTxQueryer) error {
			created, err = q.CreateProduct(ctx, v)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "registered data product",
		slog.String("name", created.Name),
		slog.String("version", created.Version.String()),
	)
	return created, nil
}

// List returns the head version of every registered data product,
// ordered by product name.
func (uc *UseCase) List(ctx context.Context) (
	versions []*model.ProductVersion, err error,
) {
	err = uc.tx(
		ctx, func(ctx context.Context, q repo.DataProductsTxQueryer) error {
			versions, err = q.ListLatest(ctx)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// Get returns the head version of the named data product.
func (uc *UseCase) Get(ctx context.Context, name string) (
	v *model.ProductVersion, err error,
) {
	err = uc.tx(
		ctx, func(ctx context.Context, q repo.DataProductsTxQueryer) error {
			v, err = q.FetchLatest(ctx, name)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateMetadata replaces the updatable metadata attributes of the
// named product with meta, deriving and persisting a new minor
// version. The rename argument, if non-nil, asks for a product name
// change which is always rejected as an invalid update. An update
// with an empty effective diff returns the current head without
// writing a new row.
func (uc *UseCase) UpdateMetadata(
	ctx context.Context,
	name string, rename *string, meta model.Metadata,
) (head *model.ProductVersion, err error) {
	err = uc.tx(
		ctx, func(ctx context.Context, q repo.DataProductsTxQueryer) error {
			current, err := q.FetchLatest(ctx, name)
			if err != nil {
				return err
			}
			svc, err := versionuc.New(current)
			if err != nil {
				return badUpdate(err)
			}
			newName := current.Name
			if rename != nil {
				newName = *rename
			}
			next, err := svc.UpdateMetadata(newName, meta)
			if err != nil {
				return badUpdate(err)
			}
			if next == current {
				log.Debug(
					ctx, "metadata unchanged, version kept",
					slog.String("name", name),
				)
				head = current
				return nil
			}
			head, err = q.AdvanceHead(ctx, next)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return head, nil
}

// CreateSchema registers one table schema under the current version
// of the named product. The persisted schema with its identifier is
// returned. A duplicate table name in the current version causes a
// conflict error.
func (uc *UseCase) CreateSchema(
	ctx context.Context, name string, s *model.Schema,
) (created *model.Schema, err error) {
	if err := s.Validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	err = uc.tx(
		ctx, func(ctx context.Context, q repo.DataProductsTxQueryer) error {
			created, err = q.CreateSchema(ctx, name, s)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetSchema returns the named table schema from the current version
// of the named product.
func (uc *UseCase) GetSchema(
	ctx context.Context, name, table string,
) (s *model.Schema, err error) {
	err = uc.tx(
		ctx, func(ctx context.Context, q repo.DataProductsTxQueryer) error {
			s, err = q.FetchSchema(ctx, name, table)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSchema replaces the named table schema with the proposed
// snapshot, deriving and persisting a new version whose component
// bump reflects the classified change. The new head version is
// returned, so callers can serialize the updated schema together
// with its product. An unchanged snapshot returns the current head
// without writing a new row.
func (uc *UseCase) UpdateSchema(
	ctx context.Context,
	name, table string, proposed *model.Schema,
) (head *model.ProductVersion, err error) {
	if err := proposed.Validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	err = uc.tx(
		ctx, func(ctx context.Context, q repo.DataProductsTxQueryer) error {
			current, err := q.FetchLatest(ctx, name)
			if err != nil {
				return err
			}
			svc, err := versionuc.New(current)
			if err != nil {
				return badUpdate(err)
			}
			next, changes, err := svc.UpdateSchema(table, proposed)
			if err != nil {
				return badUpdate(err)
			}
			if next == current {
				log.Debug(
					ctx, "schema unchanged, version kept",
					slog.String("name", name),
					slog.String("table", table),
				)
				head = current
				return nil
			}
			log.Info(
				ctx, "classified schema update",
				slog.String("name", name),
				slog.String("table", table),
				slog.String("version", next.Version.String()),
				slog.Any("added", changes.Columns.Added),
				slog.Any("removed", changes.Columns.Removed),
				slog.Any("types_changed", changes.Columns.TypesChanged),
			)
			head, err = q.AdvanceHead(ctx, next)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return head, nil
}

// RemoveSchema drops the named table schema from the named product,
// deriving and persisting a new major version which carries every
// other schema forward.
func (uc *UseCase) RemoveSchema(
	ctx context.Context, name, table string,
) (head *model.ProductVersion, err error) {
	err = uc.tx(
		ctx, func(ctx context.Context, q repo.DataProductsTxQueryer) error {
			current, err := q.FetchLatest(ctx, name)
			if err != nil {
				return err
			}
			svc, err := versionuc.New(current)
			if err != nil {
				return badUpdate(err)
			}
			next, err := svc.RemoveSchemas(table)
			if err != nil {
				return badUpdate(err)
			}
			log.Info(
				ctx, "removed schema",
				slog.String("name", name),
				slog.String("table", table),
				slog.String("version", next.Version.String()),
			)
			head, err = q.AdvanceHead(ctx, next)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return head, nil
}

// badUpdate maps engine errors to client-facing categorized errors.
// Invalid updates become bad requests; errors which are already
// categorized (such as a not-found schema target) pass through.
func badUpdate(err error) error {
	var iue *cerr.InvalidUpdateError
	if errors.As(err, &iue) {
		return cerr.BadRequest(err)
	}
	return err
}
