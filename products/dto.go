// Package products, as part of the catalog module.
// Request and response shapes for the product endpoints.
package products

import (
	"encoding/json"

	"github.com/user/bazaar-go/pagination"
)

// CreateProductRequest is the body for POST /products.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Slug        string          `json:"slug" validate:"required"`
	Description *string         `json:"description"`
	TypeID      *int            `json:"type_id"`
	ShopID      int             `json:"shop_id" validate:"required,gt=0"`
	Price       float64         `json:"price" validate:"gte=0"`
	SalePrice   *float64        `json:"sale_price" validate:"omitempty,gte=0"`
	SKU         *string         `json:"sku"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	InStock     *bool           `json:"in_stock"`
	Status      string          `json:"status" validate:"omitempty,oneof=publish draft"`
	ProductType *string         `json:"product_type"`
	Unit        *string         `json:"unit"`
	Image       json.RawMessage `json:"image"`
	Gallery     json.RawMessage `json:"gallery"`
}

// ProductPaginator is one page of products plus navigation metadata.
type ProductPaginator struct {
	Data []Product `json:"data"`
	pagination.Paginator
}

// ListParams carries the parsed query parameters of a list endpoint into the
// service layer.
type ListParams struct {
	Page    int
	Limit   int
	Search  map[string]string
	BaseURL string
}
