// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package productrp is the PostgreSQL repository of data products,
// their version snapshots, and their table schemas.
package productrp

import (
	"context"

	"github.com/momeni/dpreg/pkg/adapter/db/postgres"
	"github.com/momeni/dpreg/pkg/core/model"
	"github.com/momeni/dpreg/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (products *Repo) Conn(c repo.Conn) repo.DataProductsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) CreateProduct(ctx context.Context, v *model.ProductVersion) (*model.ProductVersion, error) {
	return CreateProduct(ctx, cq.Conn, v)
}

func (cq connQueryer) AdvanceHead(ctx context.Context, v *model.ProductVersion) (*model.ProductVersion, error) {
	return AdvanceHead(ctx, cq.Conn, v)
}

func (cq connQueryer) FetchByNameAndVersion(ctx context.Context, name string, version model.Version) (*model.ProductVersion, error) {
	return FetchByNameAndVersion(ctx, cq.Conn, name, version)
}

func (cq connQueryer) FetchLatest(ctx context.Context, name string) (*model.ProductVersion, error) {
	return FetchLatest(ctx, cq.Conn, name)
}

func (cq connQueryer) ListLatest(ctx context.Context) ([]*model.ProductVersion, error) {
	return ListLatest(ctx, cq.Conn)
}

func (cq connQueryer) CreateSchema(ctx context.Context, productName string, s *model.Schema) (*model.Schema, error) {
	return CreateSchema(ctx, cq.Conn, productName, s)
}

func (cq connQueryer) FetchSchema(ctx context.Context, productName, tableName string) (*model.Schema, error) {
	return FetchSchema(ctx, cq.Conn, productName, tableName)
}

type txQueryer struct {
	*postgres.Tx
}

func (products *Repo) Tx(tx repo.Tx) repo.DataProductsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) CreateProduct(ctx context.Context, v *model.ProductVersion) (*model.ProductVersion, error) {
	return CreateProduct(ctx, tq.Tx, v)
}

func (tq txQueryer) AdvanceHead(ctx context.Context, v *model.ProductVersion) (*model.ProductVersion, error) {
	return AdvanceHead(ctx, tq.Tx, v)
}

func (tq txQueryer) FetchByNameAndVersion(ctx context.Context, name string, version model.Version) (*model.ProductVersion, error) {
	return FetchByNameAndVersion(ctx, tq.Tx, name, version)
}

func (tq txQueryer) FetchLatest(ctx context.Context, name string) (*model.ProductVersion, error) {
	return FetchLatest(ctx, tq.Tx, name)
}

func (tq txQueryer) ListLatest(ctx context.Context) ([]*model.ProductVersion, error) {
	return ListLatest(ctx, tq.Tx)
}

func (tq txQueryer) CreateSchema(ctx context.Context, productName string, s *model.Schema) (*model.Schema, error) {
	return CreateSchema(ctx, tq.Tx, productName, s)
}

func (tq txQueryer) FetchSchema(ctx context.Context, productName, tableName string) (*model.Schema, error) {
	return FetchSchema(ctx, tq.Tx, productName, tableName)
}
