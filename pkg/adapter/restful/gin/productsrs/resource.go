// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package productsrs realizes the data products resource, allowing
// the registration, discovery, and metadata update REST APIs to be
// accepted and delegated to the data products use case respectively.
package productsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/middleware"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dpreg/pkg/core/usecase/productuc"
)

type resource struct {
	products *productuc.UseCase
}

// Register instantiates a resource adapting the data products use
// case instance with the relevant REST APIs including:
//  1. GET request to /data-products/
//     in order to list the current version of all data products.
//  2. POST request to /data-products/
//     in order to register a new data product at version v1.0;
//     repeated identical requests are replayed by the idem cache.
//  3. GET request to /data-products/:id
//     in order to fetch the current version of one data product.
//  4. PUT request to /data-products/:id
//     in order to update the product metadata as a new minor version.
func Register(
	r *gin.RouterGroup,
	products *productuc.UseCase,
	idem *middleware.Idempotency,
) {
	rs := &resource{products: products}
	r.GET("data-products/", rs.ListProducts)
	r.POST("data-products/", idem.Handler(), rs.CreateProduct)
	r.GET("data-products/:id", rs.GetProduct)
	r.PUT("data-products/:id", rs.UpdateProduct)
}

func (rs *resource) ListProducts(c *gin.Context) {
	versions, err := rs.products.List(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	reads := make([]*ProductRead, 0, len(versions))
	for _, v := range versions {
		reads = append(reads, NewProductRead(v))
	}
	c.JSON(http.StatusOK, reads)
}

func (rs *resource) CreateProduct(c *gin.Context) {
	v := rs.DserCreateProductReq(c)
	if v == nil {
		return
	}
	created, err := rs.products.Create(c, v)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProductRead(created))
}

func (rs *resource) GetProduct(c *gin.Context) {
	id := c.Param("id")
	name := serdser.ParseProductID(c, id)
	if name == "" {
		return
	}
	v, err := rs.products.Get(c, name)
	if err != nil {
		serdser.SerErr(c, missingProduct(err, id))
		return
	}
	c.JSON(http.StatusOK, NewProductRead(v))
}

func (rs *resource) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	name := serdser.ParseProductID(c, id)
	if name == "" {
		return
	}
	req := rs.DserUpdateProductReq(c)
	if req == nil {
		return
	}
	head, err := rs.products.UpdateMetadata(c, name, req.Name, req.Metadata())
	if err != nil {
		serdser.SerErr(c, missingProduct(err, id))
		return
	}
	c.JSON(http.StatusOK, NewProductRead(head))
}
