package serdser

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dpreg/pkg/core/model"
)

// ParseProductID extracts the product name from an external
// identifier like dp:my_product. A malformed identifier is answered
// with a 400 response and an empty name is returned.
func ParseProductID(c *gin.Context, id string) string {
	name, ok := strings.CutPrefix(id, "dp:")
	if !ok || !model.NamePattern.MatchString(name) {
		invalidID(c, id)
		return ""
	}
	return name
}

// ParseSchemaID extracts the product and table names from an external
// identifier like dp:my_product:my_table. A malformed identifier is
// answered with a 400 response and empty names are returned.
func ParseSchemaID(c *gin.Context, id string) (name, table string) {
	rest, ok := strings.CutPrefix(id, "dp:")
	if !ok {
		invalidID(c, id)
		return "", ""
	}
	name, table, ok = strings.Cut(rest, ":")
	if !ok || !model.NamePattern.MatchString(name) ||
		!model.NamePattern.MatchString(table) {
		invalidID(c, id)
		return "", ""
	}
	return name, table
}

func invalidID(c *gin.Context, id string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"detail": fmt.Sprintf("Invalid id: %s", id),
	})
}
