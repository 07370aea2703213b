// Package categories, as part of the catalog module.
// This file defines the category data model.
package categories

import (
	"encoding/json"
	"time"

	"github.com/user/bazaar-go/pagination"
)

// Category is one node of the category tree. ParentID is nil for roots.
type Category struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Type      *string         `json:"type,omitempty"`
	Icon      *string         `json:"icon,omitempty"`
	Image     json.RawMessage `json:"image,omitempty"`
	Details   *string         `json:"details,omitempty"`
	ParentID  *int            `json:"parent_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CategoryView is a category served with its immediate tree neighborhood.
type CategoryView struct {
	Category
	Parent   *Category  `json:"parent"`
	Children []Category `json:"children"`
}

// CreateCategoryRequest is the body for POST /categories.
type CreateCategoryRequest struct {
	Name     string          `json:"name" validate:"required"`
	Slug     string          `json:"slug" validate:"required"`
	Type     *string         `json:"type"`
	Icon     *string         `json:"icon"`
	Image    json.RawMessage `json:"image"`
	Details  *string         `json:"details"`
	ParentID *int            `json:"parent_id"`
}

// UpdateCategoryRequest is the body for PUT /categories/{id}. The whole row
// is replaced, matching the storefront's edit form.
type UpdateCategoryRequest struct {
	Name     string          `json:"name" validate:"required"`
	Slug     string          `json:"slug" validate:"required"`
	Type     *string         `json:"type"`
	Icon     *string         `json:"icon"`
	Image    json.RawMessage `json:"image"`
	Details  *string         `json:"details"`
	ParentID *int            `json:"parent_id"`
}

// CategoryPaginator is one page of categories plus navigation metadata.
type CategoryPaginator struct {
	Data []CategoryView `json:"data"`
	pagination.Paginator
}

// ListParams carries the parsed query parameters of the list endpoint.
type ListParams struct {
	Page    int
	Limit   int
	Search  map[string]string
	BaseURL string
	// RootsOnly restricts the listing to categories without a parent.
	RootsOnly bool
}
