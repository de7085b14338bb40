// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/momeni/dpreg/pkg/adapter/db/postgres/productrp"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/middleware"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/productsrs"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/schemasrs"
	"github.com/momeni/dpreg/pkg/core/repo"
	"github.com/momeni/dpreg/pkg/core/usecase/productuc"
)

// Register instantiates the data products repository and use case,
// handing the p connections pool to the use case instance, so it may
// acquire/release connections and transactions on demand. These
// connections/transactions will be passed to the repository later in
// order to run relevant queries on them and accomplish the use cases.
// The repository package is named like productrp and each resource
// package is named like productsrs; resources adapt the use case
// interfaces with the REST APIs and are registered as request
// handlers using the e gin-gonic engine instance. Creation requests
// on the data products surface opt into the shared idempotency cache,
// so network-level retries of a registration do not conflict with
// themselves.
func Register(e *gin.Engine, p repo.Pool) {
	productsRepo := productrp.New()
	products := productuc.New(p, productsRepo)
	idem := middleware.NewIdempotency()

	r := e.Group("/")
	productsrs.Register(r, products, idem)
	schemasrs.Register(r, products)
}
