package schemasrs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/productsrs"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dpreg/pkg/core/cerr"
	"github.com/momeni/dpreg/pkg/core/model"
)

type columnReq struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
}

type schemaReq struct {
	TableDescription string      `json:"tableDescription" binding:"required"`
	Columns          []columnReq `json:"columns" binding:"required,dive"`
}

// DserSchemaReq binds a schema payload, attaching the table name
// taken from the external identifier in the request path. The name
// and column grammars are enforced by the use case layer.
func (rs *resource) DserSchemaReq(c *gin.Context, table string) *model.Schema {
	req := &schemaReq{}
	if ok := serdser.BindJSON(c, req); !ok {
		return nil
	}
	columns := make([]model.Column, 0, len(req.Columns))
	for _, col := range req.Columns {
		columns = append(columns, model.Column{
			Name:        col.Name,
			Type:        col.Type,
			Description: col.Description,
		})
	}
	return &model.Schema{
		Name:             table,
		TableDescription: req.TableDescription,
		Columns:          columns,
	}
}

// ColumnRead is the wire representation of one schema column.
type ColumnRead struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// SchemaRead is the wire representation of one table schema.
type SchemaRead struct {
	ID               string       `json:"id"`
	TableDescription string       `json:"tableDescription"`
	Columns          []ColumnRead `json:"columns"`
}

// SchemaReadWithDataProduct extends SchemaRead with the data product
// which the schema now belongs to, as reported after schema updates.
type SchemaReadWithDataProduct struct {
	SchemaRead
	DataProduct *productsrs.ProductRead `json:"dataProduct"`
}

// NewSchemaRead serializes the given schema under its external
// identifier.
func NewSchemaRead(id string, s *model.Schema) *SchemaRead {
	columns := make([]ColumnRead, 0, len(s.Columns))
	for _, col := range s.Columns {
		columns = append(columns, ColumnRead(col))
	}
	return &SchemaRead{
		ID:               id,
		TableDescription: s.TableDescription,
		Columns:          columns,
	}
}

// missingTarget rewrites a not-found error, so the response reports
// the external identifier which the client asked for.
func missingTarget(err error, format, id string) error {
	var ce *cerr.Error
	if errors.As(err, &ce) && ce.HTTPStatusCode == http.StatusNotFound {
		return cerr.NotFound(fmt.Errorf(format, id))
	}
	return err
}
