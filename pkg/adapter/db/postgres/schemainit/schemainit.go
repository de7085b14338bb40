// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemainit creates the registry tables in an empty database.
// Each instance of Initializer wraps and uses a single transaction of
// the target database, but the caller is responsible to commit that
// transaction in order to finalize the initialization results.
package schemainit

import (
	"context"
	"fmt"

	"github.com/momeni/dpreg/pkg/core/repo"
)

// Initializer provides the database schema initialization logic.
type Initializer struct {
	tx repo.Tx // target database transaction
}

// New creates a new Initializer instance, wrapping the given tx
// database transaction.
func New(tx repo.Tx) *Initializer {
	return &Initializer{
		tx: tx,
	}
}

// The head pointer and the version rows reference each other, so the
// products.current_version_id foreign key is deferred and the tables
// are created before the cross-table constraints are added. All
// statements are idempotent and may be replayed on a database which
// was initialized before.
const ddl = `
CREATE TABLE IF NOT EXISTS product_versions (
    id uuid PRIMARY KEY,
    product_id uuid NOT NULL,
    name varchar(100) NOT NULL,
    major bigint NOT NULL,
    minor bigint NOT NULL,
    description text NOT NULL DEFAULT '',
    domain varchar(100) NOT NULL DEFAULT '',
    owner varchar(100) NOT NULL DEFAULT '',
    owner_display_name varchar(200) NOT NULL DEFAULT '',
    maintainer varchar(100),
    maintainer_display_name varchar(200),
    email varchar(200) NOT NULL DEFAULT '',
    status varchar(20) NOT NULL,
    retention_period integer NOT NULL DEFAULT 0,
    dpia_required boolean NOT NULL DEFAULT false,
    tags jsonb,
    dpia_location text,
    last_updated timestamptz,
    creation_date timestamptz,
    storage_location text,
    row_count bigint,
    UNIQUE (name, major, minor)
);
CREATE TABLE IF NOT EXISTS products (
    id uuid PRIMARY KEY,
    name varchar(100) NOT NULL UNIQUE,
    current_version_id uuid NOT NULL
        REFERENCES product_versions (id)
        DEFERRABLE INITIALLY DEFERRED
);
CREATE TABLE IF NOT EXISTS product_schemas (
    id uuid PRIMARY KEY,
    version_id uuid NOT NULL REFERENCES product_versions (id),
    name varchar(100) NOT NULL,
    table_description text NOT NULL DEFAULT '',
    columns jsonb NOT NULL,
    UNIQUE (version_id, name)
);
ALTER TABLE product_versions
    DROP CONSTRAINT IF EXISTS product_versions_product_id_fkey,
    ADD CONSTRAINT product_versions_product_id_fkey
        FOREIGN KEY (product_id) REFERENCES products (id)
        DEFERRABLE INITIALLY DEFERRED;
`

// InitSchema creates the products, product_versions, and
// product_schemas tables with their uniqueness and foreign key
// constraints.
func (si *Initializer) InitSchema(ctx context.Context) error {
	if _, err := si.tx.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating registry tables: %w", err)
	}
	return nil
}
