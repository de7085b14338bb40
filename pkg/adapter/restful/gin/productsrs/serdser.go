package productsrs

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dpreg/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dpreg/pkg/core/cerr"
	"github.com/momeni/dpreg/pkg/core/model"
)

type productCreateReq struct {
	Name                  string            `json:"name" binding:"required"`
	Description           string            `json:"description" binding:"required"`
	Domain                string            `json:"domain" binding:"required"`
	Owner                 string            `json:"dataProductOwner" binding:"required"`
	OwnerDisplayName      string            `json:"dataProductOwnerDisplayName" binding:"required"`
	Maintainer            *string           `json:"dataProductMaintainer"`
	MaintainerDisplayName *string           `json:"dataProductMaintainerDisplayName"`
	Email                 string            `json:"email" binding:"required"`
	Status                string            `json:"status" binding:"required,oneof=draft published retired"`
	RetentionPeriod       int               `json:"retentionPeriod" binding:"gte=0"`
	DpiaRequired          *bool             `json:"dpiaRequired" binding:"required"`
	Tags                  map[string]string `json:"tags"`
}

// productUpdateReq accepts the same attributes as productCreateReq,
// but the name is optional; a present differing name is classified by
// the versioning engine as a forbidden update.
type productUpdateReq struct {
	Name                  *string           `json:"name"`
	Description           string            `json:"description" binding:"required"`
	Domain                string            `json:"domain" binding:"required"`
	Owner                 string            `json:"dataProductOwner" binding:"required"`
	OwnerDisplayName      string            `json:"dataProductOwnerDisplayName" binding:"required"`
	Maintainer            *string           `json:"dataProductMaintainer"`
	MaintainerDisplayName *string           `json:"dataProductMaintainerDisplayName"`
	Email                 string            `json:"email" binding:"required"`
	Status                string            `json:"status" binding:"required,oneof=draft published retired"`
	RetentionPeriod       int               `json:"retentionPeriod" binding:"gte=0"`
	DpiaRequired          *bool             `json:"dpiaRequired" binding:"required"`
	Tags                  map[string]string `json:"tags"`
}

func (req *productUpdateReq) Metadata() model.Metadata {
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		panic(err) // unreachable, the oneof binding guards it
	}
	return model.Metadata{
		Description:           req.Description,
		Domain:                req.Domain,
		Owner:                 req.Owner,
		OwnerDisplayName:      req.OwnerDisplayName,
		Maintainer:            req.Maintainer,
		MaintainerDisplayName: req.MaintainerDisplayName,
		Email:                 req.Email,
		Status:                status,
		RetentionPeriod:       req.RetentionPeriod,
		DpiaRequired:          *req.DpiaRequired,
		Tags:                  req.Tags,
	}
}

func (rs *resource) DserCreateProductReq(c *gin.Context) *model.ProductVersion {
	req := &productCreateReq{}
	if ok := serdser.BindJSON(c, req); !ok {
		return nil
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		panic(err) // unreachable, the oneof binding guards it
	}
	return &model.ProductVersion{
		Name: req.Name,
		Metadata: model.Metadata{
			Description:           req.Description,
			Domain:                req.Domain,
			Owner:                 req.Owner,
			OwnerDisplayName:      req.OwnerDisplayName,
			Maintainer:            req.Maintainer,
			MaintainerDisplayName: req.MaintainerDisplayName,
			Email:                 req.Email,
			Status:                status,
			RetentionPeriod:       req.RetentionPeriod,
			DpiaRequired:          *req.DpiaRequired,
			Tags:                  req.Tags,
		},
	}
}

func (rs *resource) DserUpdateProductReq(c *gin.Context) *productUpdateReq {
	req := &productUpdateReq{}
	if ok := serdser.BindJSON(c, req); !ok {
		return nil
	}
	return req
}

// SchemaID carries the external identifier of one table schema inside
// a serialized data product.
type SchemaID struct {
	ID string `json:"id"`
}

// ProductRead is the wire representation of the current version of a
// data product.
type ProductRead struct {
	ID                    string            `json:"id"`
	Name                  string            `json:"name"`
	Version               string            `json:"version"`
	Description           string            `json:"description"`
	Domain                string            `json:"domain"`
	Owner                 string            `json:"dataProductOwner"`
	OwnerDisplayName      string            `json:"dataProductOwnerDisplayName"`
	Maintainer            *string           `json:"dataProductMaintainer,omitempty"`
	MaintainerDisplayName *string           `json:"dataProductMaintainerDisplayName,omitempty"`
	Email                 string            `json:"email"`
	Status                string            `json:"status"`
	RetentionPeriod       int               `json:"retentionPeriod"`
	DpiaRequired          bool              `json:"dpiaRequired"`
	Tags                  map[string]string `json:"tags"`
	Schemas               []SchemaID        `json:"schemas"`
	DpiaLocation          *string           `json:"dpiaLocation,omitempty"`
	LastUpdated           *time.Time        `json:"lastUpdated,omitempty"`
	CreationDate          *time.Time        `json:"creationDate,omitempty"`
	StorageLocation       *string           `json:"storageLocation,omitempty"`
	RowCount              *int64            `json:"rowCount,omitempty"`
}

// NewProductRead serializes the given version snapshot, addressing
// the owning product by its external identifier.
func NewProductRead(v *model.ProductVersion) *ProductRead {
	tags := v.Tags
	if tags == nil {
		tags = model.Tags{}
	}
	schemas := make([]SchemaID, 0, len(v.Schemas))
	for _, s := range v.Schemas {
		schemas = append(schemas, SchemaID{
			ID: v.SchemaExternalID(s.Name),
		})
	}
	return &ProductRead{
		ID:                    v.ExternalID(),
		Name:                  v.Name,
		Version:               v.Version.String(),
		Description:           v.Description,
		Domain:                v.Domain,
		Owner:                 v.Owner,
		OwnerDisplayName:      v.OwnerDisplayName,
		Maintainer:            v.Maintainer,
		MaintainerDisplayName: v.MaintainerDisplayName,
		Email:                 v.Email,
		Status:                v.Metadata.Status.String(),
		RetentionPeriod:       v.RetentionPeriod,
		DpiaRequired:          v.DpiaRequired,
		Tags:                  tags,
		Schemas:               schemas,
		DpiaLocation:          v.DpiaLocation,
		LastUpdated:           v.LastUpdated,
		CreationDate:          v.CreationDate,
		StorageLocation:       v.StorageLocation,
		RowCount:              v.RowCount,
	}
}

// missingProduct rewrites a not-found error, so the response reports
// the external identifier which the client asked for.
func missingProduct(err error, id string) error {
	var ce *cerr.Error
	if errors.As(err, &ce) && ce.HTTPStatusCode == http.StatusNotFound {
		return cerr.NotFound(fmt.Errorf(
			"Data product does not exist with id %s", id,
		))
	}
	return err
}
