// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemasrs realizes the table schemas resource, allowing
// schemas to be registered under the current version of a data
// product, fetched, updated (advancing the product version), and
// removed (advancing the major version).
package schemasrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/productsrs"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dpreg/pkg/core/usecase/productuc"
)

type resource struct {
	products *productuc.UseCase
}

// Register instantiates a resource adapting the data products use
// case instance with the schema REST APIs including:
//  1. POST request to /schemas/:id
//     in order to register a table schema under the current version.
//  2. GET request to /schemas/:id
//     in order to fetch a table schema from the current version.
//  3. PUT request to /schemas/:id
//     in order to replace a table schema, advancing the version by a
//     minor or major component as the change classifier decides.
//  4. DELETE request to /schemas/:id
//     in order to remove a table schema, advancing the major version.
func Register(r *gin.RouterGroup, products *productuc.UseCase) {
	rs := &resource{products: products}
	r.POST("schemas/:id", rs.CreateSchema)
	r.GET("schemas/:id", rs.GetSchema)
	r.PUT("schemas/:id", rs.UpdateSchema)
	r.DELETE("schemas/:id", rs.RemoveSchema)
}

func (rs *resource) CreateSchema(c *gin.Context) {
	id := c.Param("id")
	name, table := serdser.ParseSchemaID(c, id)
	if name == "" {
		return
	}
	s := rs.DserSchemaReq(c, table)
	if s == nil {
		return
	}
	created, err := rs.products.CreateSchema(c, name, s)
	if err != nil {
		serdser.SerErr(c, missingTarget(
			err, "id %s references a data product that does not exist",
			id,
		))
		return
	}
	c.JSON(http.StatusOK, NewSchemaRead(id, created))
}

func (rs *resource) GetSchema(c *gin.Context) {
	id := c.Param("id")
	name, table := serdser.ParseSchemaID(c, id)
	if name == "" {
		return
	}
	s, err := rs.products.GetSchema(c, name, table)
	if err != nil {
		serdser.SerErr(c, missingTarget(
			err, "id %s references a schema version that does not exist",
			id,
		))
		return
	}
	c.JSON(http.StatusOK, NewSchemaRead(id, s))
}

func (rs *resource) UpdateSchema(c *gin.Context) {
	id := c.Param("id")
	name, table := serdser.ParseSchemaID(c, id)
	if name == "" {
		return
	}
	proposed := rs.DserSchemaReq(c, table)
	if proposed == nil {
		return
	}
	head, err := rs.products.UpdateSchema(c, name, table, proposed)
	if err != nil {
		serdser.SerErr(c, missingTarget(
			err,
			"id %s references a data product version that does not exist",
			id,
		))
		return
	}
	updated := head.Schema(table)
	c.JSON(http.StatusOK, &SchemaReadWithDataProduct{
		SchemaRead:  *NewSchemaRead(id, updated),
		DataProduct: productsrs.NewProductRead(head),
	})
}

func (rs *resource) RemoveSchema(c *gin.Context) {
	id := c.Param("id")
	name, table := serdser.ParseSchemaID(c, id)
	if name == "" {
		return
	}
	head, err := rs.products.RemoveSchema(c, name, table)
	if err != nil {
		serdser.SerErr(c, missingTarget(
			err,
			"id %s references a data product version that does not exist",
			id,
		))
		return
	}
	c.JSON(http.StatusOK, productsrs.NewProductRead(head))
}
