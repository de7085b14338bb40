// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/dpreg/pkg/core/model"
)

// DataProductsConnQueryer is the interface of the data products
// repository when its operations run on a standalone connection.
type DataProductsConnQueryer interface {
	DataProductsQueryer
}

// DataProductsTxQueryer is the interface of the data products
// repository when its operations run in an ongoing transaction, so
// a multi-statement operation (such as advancing the head pointer)
// commits or rolls back atomically.
type DataProductsTxQueryer interface {
	DataProductsQueryer
}

// DataProductsQueryer is the metadata store contract. Implementations
// map uniqueness violations to *cerr.Error with a conflict status and
// absent targets to *cerr.Error with a not-found status.
type DataProductsQueryer interface {
	// CreateProduct persists the initial version of a new data
	// product and creates the product head pointing at it. The
	// returned version carries the assigned identifiers. A product
	// with the same name must not exist yet.
	CreateProduct(ctx context.Context, v *model.ProductVersion) (*model.ProductVersion, error)

	// AdvanceHead persists v as a sibling version of the product
	// named v.Name and re-points the product head at it. Concurrent
	// advances produce the same (name, version) pair; exactly one
	// transaction commits and the other observes a conflict error.
	AdvanceHead(ctx context.Context, v *model.ProductVersion) (*model.ProductVersion, error)

	// FetchByNameAndVersion loads one specific version snapshot.
	FetchByNameAndVersion(ctx context.Context, name string, version model.Version) (*model.ProductVersion, error)

	// FetchLatest loads the version currently pointed to by the head
	// of the product with the given name.
	FetchLatest(ctx context.Context, name string) (*model.ProductVersion, error)

	// ListLatest loads the head version of every product, ordered by
	// product name.
	ListLatest(ctx context.Context) ([]*model.ProductVersion, error)

	// CreateSchema persists one table schema bound to the current
	// version of the named product. A schema with the same name must
	// not exist in that version yet.
	CreateSchema(ctx context.Context, productName string, s *model.Schema) (*model.Schema, error)

	// FetchSchema loads the table schema with the given name from the
	// current version of the named product.
	FetchSchema(ctx context.Context, productName, tableName string) (*model.Schema, error)
}

// DataProducts is the data products repository which can operate on
// connections or transactions.
type DataProducts interface {
	Conn(Conn) DataProductsConnQueryer
	Tx(Tx) DataProductsTxQueryer
}
