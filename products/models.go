// Package products, as part of the catalog module.
// This file defines the product data model.
package products

import (
	"encoding/json"
	"time"
)

// Product represents one catalog item as stored and served. Image and Gallery
// are opaque JSON documents owned by the storefront.
type Product struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  *string         `json:"description,omitempty"`
	TypeID       *int            `json:"type_id,omitempty"`
	ShopID       int             `json:"shop_id"`
	Price        float64         `json:"price"`
	SalePrice    *float64        `json:"sale_price,omitempty"`
	MinPrice     *float64        `json:"min_price,omitempty"`
	MaxPrice     *float64        `json:"max_price,omitempty"`
	SKU          *string         `json:"sku,omitempty"`
	Quantity     int             `json:"quantity"`
	SoldQuantity int             `json:"sold_quantity"`
	Ratings      float64         `json:"ratings"`
	InStock      bool            `json:"in_stock"`
	Status       string          `json:"status"`
	ProductType  *string         `json:"product_type,omitempty"`
	Unit         *string         `json:"unit,omitempty"`
	Image        json.RawMessage `json:"image,omitempty"`
	Gallery      json.RawMessage `json:"gallery,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ProductDetail is a product together with up to twenty other products of the
// same type, served by the slug endpoint.
type ProductDetail struct {
	Product
	RelatedProducts []Product `json:"related_products"`
}
