package serdser_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/serdser"
	"github.com/stretchr/testify/assert"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestParseProductID(t *testing.T) {
	c, w := testContext()
	name := serdser.ParseProductID(c, "dp:my_product")
	assert.Equal(t, "my_product", name)
	assert.Equal(t, 200, w.Code)
}

func TestParseProductIDMalformed(t *testing.T) {
	for _, id := range []string{
		"my_product", "dp:", "dp:My-Product", "dp:my product",
		"dp:my_product:table",
	} {
		t.Run(id, func(t *testing.T) {
			c, w := testContext()
			name := serdser.ParseProductID(c, id)
			assert.Empty(t, name)
			assert.Equal(t, 400, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid id: "+id)
		})
	}
}

func TestParseSchemaID(t *testing.T) {
	c, w := testContext()
	name, table := serdser.ParseSchemaID(c, "dp:my_product:my_table")
	assert.Equal(t, "my_product", name)
	assert.Equal(t, "my_table", table)
	assert.Equal(t, 200, w.Code)
}

func TestParseSchemaIDMalformed(t *testing.T) {
	for _, id := range []string{
		"my_product:my_table", "dp:my_product", "dp::my_table",
		"dp:my_product:", "dp:my_product:My-Table",
	} {
		t.Run(id, func(t *testing.T) {
			c, w := testContext()
			name, table := serdser.ParseSchemaID(c, id)
			assert.Empty(t, name)
			assert.Empty(t, table)
			assert.Equal(t, 400, w.Code)
		})
	}
}
