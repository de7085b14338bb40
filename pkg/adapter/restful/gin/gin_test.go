// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/goccy/go-json"
	"github.com/momeni/dpreg/internal/test/dbcontainer"
	"github.com/momeni/dpreg/pkg/adapter/db/postgres"
	"github.com/momeni/dpreg/pkg/adapter/db/postgres/schemainit"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/routes"
	"github.com/momeni/dpreg/pkg/core/repo"
	"github.com/stretchr/testify/suite"
)

type IntegrationGinTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pg   *sqltestutil.PostgresContainer
	Pool *postgres.Pool
	Gin  *gin.Engine
}

func TestIntegrationGinTestSuite(t *testing.T) {
	ctx := context.Background()
	pg, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &IntegrationGinTestSuite{
		Ctx:  ctx,
		Pg:   pg,
		Pool: pool,
	})
}

func (igts *IntegrationGinTestSuite) SetupSuite() {
	err := igts.Pool.Conn(
		igts.Ctx, func(ctx context.Context, c repo.Conn) error {
			return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
				return schemainit.New(tx).InitSchema(ctx)
			})
		},
	)
	igts.Require().NoError(err, "failed to create registry tables")

	igts.Gin = gin.New(gin.Logger(), gin.Recovery())
	igts.Require().NotNil(igts.Gin, "cannot instantiate Gin engine")
	routes.Register(igts.Gin, igts.Pool)
}

type productResp struct {
	Detail      string
	ID          string
	Name        string
	Version     string
	Description string
	Status      string
	Tags        map[string]string
	Schemas     []struct {
		ID string
	}
}

type schemaResp struct {
	Detail           string
	ID               string
	TableDescription string
	Columns          []struct {
		Name, Type, Description string
	}
	DataProduct *productResp
}

func productPayload(name string) map[string]any {
	return map[string]any{
		"name":                        name,
		"description":                 "a data product for testing",
		"domain":                      "hmpps",
		"dataProductOwner":            "jane.doe@justice.example",
		"dataProductOwnerDisplayName": "Jane Doe",
		"email":                       "jane.doe@justice.example",
		"status":                      "draft",
		"retentionPeriod":             3000,
		"dpiaRequired":                false,
		"tags":                        map[string]string{},
	}
}

func schemaPayload(columns ...map[string]string) map[string]any {
	return map[string]any{
		"tableDescription": "a table for testing",
		"columns":          columns,
	}
}

func column(name, typ string) map[string]string {
	return map[string]string{
		"name":        name,
		"type":        typ,
		"description": "the " + name + " column",
	}
}

func (igts *IntegrationGinTestSuite) send(
	method, path string, payload any, res any,
) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload == nil {
		body = bytes.NewReader(nil)
	} else {
		b, err := json.Marshal(payload)
		igts.Require().NoError(err, "cannot marshal request payload")
		body = bytes.NewReader(b)
	}
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, body)
	igts.Require().NoError(err, "cannot create request")
	req.Header.Add("Content-Type", "application/json")
	igts.Gin.ServeHTTP(w, req)
	if res != nil {
		b := w.Body.Bytes()
		igts.Require().NoError(
			json.Unmarshal(b, res), "body is not json: %s", b,
		)
	}
	return w
}

func (igts *IntegrationGinTestSuite) createProduct(
	name string,
) *productResp {
	res := &productResp{}
	w := igts.send(
		http.MethodPost, "/data-products/", productPayload(name), res,
	)
	igts.Require().Equal(200, w.Code, "creating product: %s", name)
	return res
}

func (igts *IntegrationGinTestSuite) createSchema(
	id string, payload map[string]any,
) *schemaResp {
	res := &schemaResp{}
	w := igts.send(http.MethodPost, "/schemas/"+id, payload, res)
	igts.Require().Equal(200, w.Code, "creating schema: %s", id)
	return res
}

func (igts *IntegrationGinTestSuite) TestCreateInitialProduct() {
	res := igts.createProduct("hmpps_use_of_force")
	igts.Equal("dp:hmpps_use_of_force", res.ID)
	igts.Equal("v1.0", res.Version)
	igts.Empty(res.Schemas)
}

func (igts *IntegrationGinTestSuite) TestInvalidID() {
	res := &productResp{}
	w := igts.send(
		http.MethodGet, "/data-products/hmpps_use_of_the_force",
		nil, res,
	)
	igts.Equal(400, w.Code)
	igts.Equal("Invalid id: hmpps_use_of_the_force", res.Detail)
}

func (igts *IntegrationGinTestSuite) TestMissingProduct() {
	res := &productResp{}
	w := igts.send(
		http.MethodGet, "/data-products/dp:unknown", nil, res,
	)
	igts.Equal(404, w.Code)
	igts.Equal("Data product does not exist with id dp:unknown", res.Detail)
}

func (igts *IntegrationGinTestSuite) TestIdempotentReplay() {
	first := &productResp{}
	w := igts.send(
		http.MethodPost, "/data-products/",
		productPayload("idem_product"), first,
	)
	igts.Require().Equal(200, w.Code)
	igts.Empty(w.Header().Get("idempotent-replayed"))

	second := &productResp{}
	w = igts.send(
		http.MethodPost, "/data-products/",
		productPayload("idem_product"), second,
	)
	igts.Equal(200, w.Code)
	igts.Equal("true", w.Header().Get("idempotent-replayed"))
	igts.Equal(first.ID, second.ID)
	igts.Equal(first.Version, second.Version)
}

func (igts *IntegrationGinTestSuite) TestMinorSchemaUpdate() {
	igts.createProduct("minor_update_product")
	id := "dp:minor_update_product:events"
	igts.createSchema(id, schemaPayload(
		column("id", "bigint"), column("name", "string"),
	))

	res := &schemaResp{}
	w := igts.send(http.MethodPut, "/schemas/"+id, schemaPayload(
		column("id", "bigint"),
		column("name", "string"),
		column("extra", "string"),
	), res)
	igts.Equal(200, w.Code)
	igts.Len(res.Columns, 3)
	igts.Require().NotNil(res.DataProduct, "missing nested product")
	igts.Equal("v1.1", res.DataProduct.Version)
}

func (igts *IntegrationGinTestSuite) TestMajorSchemaUpdate() {
	igts.createProduct("major_update_product")
	id := "dp:major_update_product:events"
	igts.createSchema(id, schemaPayload(
		column("id", "bigint"), column("name", "string"),
	))

	res := &schemaResp{}
	w := igts.send(http.MethodPut, "/schemas/"+id, schemaPayload(
		column("id", "bigint"),
	), res)
	igts.Equal(200, w.Code)
	igts.Len(res.Columns, 1)
	igts.Require().NotNil(res.DataProduct, "missing nested product")
	igts.Equal("v2.0", res.DataProduct.Version)
}

func (igts *IntegrationGinTestSuite) TestForbiddenMetadataUpdate() {
	igts.createProduct("meta_product")
	payload := productPayload("meta_product_renamed")
	res := &productResp{}
	w := igts.send(
		http.MethodPut, "/data-products/dp:meta_product", payload, res,
	)
	igts.Equal(400, w.Code)
	igts.Contains(res.Detail, "non-updatable metadata field")
}

func (igts *IntegrationGinTestSuite) TestMinorMetadataUpdate() {
	igts.createProduct("desc_product")
	payload := productPayload("desc_product")
	payload["description"] = "an updated description"
	res := &productResp{}
	w := igts.send(
		http.MethodPut, "/data-products/dp:desc_product", payload, res,
	)
	igts.Equal(200, w.Code)
	igts.Equal("v1.1", res.Version)
	igts.Equal("an updated description", res.Description)

	// repeating the same update has an empty effective diff
	w = igts.send(
		http.MethodPut, "/data-products/dp:desc_product", payload, res,
	)
	igts.Equal(200, w.Code)
	igts.Equal("v1.1", res.Version)
}

func (igts *IntegrationGinTestSuite) TestDuplicateSchema() {
	igts.createProduct("dup_schema_product")
	id := "dp:dup_schema_product:events"
	payload := schemaPayload(column("id", "bigint"))
	igts.createSchema(id, payload)

	res := &schemaResp{}
	w := igts.send(http.MethodPost, "/schemas/"+id, payload, res)
	igts.Equal(409, w.Code)
	igts.Equal("A schema with this name already exists", res.Detail)
}

func (igts *IntegrationGinTestSuite) TestRemoveSchema() {
	igts.createProduct("remove_schema_product")
	igts.createSchema(
		"dp:remove_schema_product:events",
		schemaPayload(column("id", "bigint")),
	)
	igts.createSchema(
		"dp:remove_schema_product:reports",
		schemaPayload(column("id", "bigint")),
	)

	res := &productResp{}
	w := igts.send(
		http.MethodDelete, "/schemas/dp:remove_schema_product:events",
		nil, res,
	)
	igts.Equal(200, w.Code)
	igts.Equal("v2.0", res.Version)
	igts.Require().Len(res.Schemas, 1)
	igts.Equal("dp:remove_schema_product:reports", res.Schemas[0].ID)
}

func (igts *IntegrationGinTestSuite) TestGetSchema() {
	igts.createProduct("get_schema_product")
	id := "dp:get_schema_product:events"
	igts.createSchema(id, schemaPayload(column("id", "bigint")))

	res := &schemaResp{}
	w := igts.send(http.MethodGet, "/schemas/"+id, nil, res)
	igts.Equal(200, w.Code)
	igts.Equal(id, res.ID)
	igts.Require().Len(res.Columns, 1)
	igts.Equal("bigint", res.Columns[0].Type)

	w = igts.send(
		http.MethodGet, "/schemas/dp:get_schema_product:unknown",
		nil, res,
	)
	igts.Equal(404, w.Code)
}

func (igts *IntegrationGinTestSuite) TestUnknownPayloadField() {
	payload := productPayload("unknown_field_product")
	payload["s3Location"] = "s3://bucket/key"
	res := &productResp{}
	w := igts.send(http.MethodPost, "/data-products/", payload, res)
	igts.Equal(400, w.Code)
	igts.Contains(res.Detail, "unknown field")
}

func (igts *IntegrationGinTestSuite) TestDuplicateProduct() {
	igts.createProduct("dup_product")
	// a differing payload misses the idempotency cache and reaches
	// the unique name constraint
	payload := productPayload("dup_product")
	payload["description"] = "a differing registration"
	res := &productResp{}
	w := igts.send(http.MethodPost, "/data-products/", payload, res)
	igts.Equal(409, w.Code)
	igts.Equal(
		"A data product with this name already exists", res.Detail,
	)
}
