// Package products, as part of the catalog module.
// Controller layer for the product endpoints.
package products

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/auth"
	"github.com/user/bazaar-go/pagination"
	"github.com/user/bazaar-go/validate"
)

const defaultPageSize = 15

// Handlers wraps the ProductService to provide HTTP handlers.
type Handlers struct {
	service *ProductService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *ProductService) *Handlers {
	return &Handlers{service: service}
}

func listParams(r *http.Request) ListParams {
	page, limit := pagination.PageParams(r, defaultPageSize)
	return ListParams{
		Page:    page,
		Limit:   limit,
		Search:  pagination.ParseSearch(r.URL.Query().Get("search")),
		BaseURL: r.URL.Path,
	}
}

// HandleCreate godoc
// @Summary Create a product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productBody body products.CreateProductRequest true "Product to create"
// @Success 201 {object} products.Product "Product created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or unknown type"
// @Failure 409 {object} apperror.ErrorResponse "Slug already exists"
// @Router /products [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		product, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, product)
	}
}

// HandleList godoc
// @Summary List products
// @Description Paginated listing with `search=key:value;key:value` filters (shop_id, name, status).
// @Tags Products
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Filter expression"
// @Success 200 {object} products.ProductPaginator "One page of products"
// @Router /products [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.service.List(r.Context(), listParams(r))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandlePopular godoc
// @Summary Popular products
// @Description Published products ranked by rating, optionally narrowed by type slug.
// @Tags Products
// @Produce json
// @Param limit query int false "Maximum results (default 10)"
// @Param type_slug query string false "Type slug"
// @Success 200 {array} products.Product "Ranked products"
// @Router /products/popular [get]
func (h *Handlers) HandlePopular() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		data, err := h.service.Popular(r.Context(), limit, r.URL.Query().Get("type_slug"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, data)
	}
}

// HandleBestSelling godoc
// @Summary Best-selling products
// @Description Published products ranked by units sold, optionally narrowed by type slug.
// @Tags Products
// @Produce json
// @Param limit query int false "Maximum results (default 10)"
// @Param type_slug query string false "Type slug"
// @Success 200 {array} products.Product "Ranked products"
// @Router /products/best-selling [get]
func (h *Handlers) HandleBestSelling() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		data, err := h.service.BestSelling(r.Context(), limit, r.URL.Query().Get("type_slug"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, data)
	}
}

// HandleLowStock godoc
// @Summary Products running out of stock
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} products.ProductPaginator "One page of low-stock products"
// @Router /products/stock [get]
func (h *Handlers) HandleLowStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.service.LowStock(r.Context(), listParams(r))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleDrafts godoc
// @Summary Draft products
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} products.ProductPaginator "One page of draft products"
// @Router /products/draft [get]
func (h *Handlers) HandleDrafts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.service.Drafts(r.Context(), listParams(r))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleGetBySlug godoc
// @Summary Get a product by slug
// @Description Returns the product plus up to twenty related products of the same type.
// @Tags Products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} products.ProductDetail "Product with related products"
// @Failure 404 {object} apperror.ErrorResponse "Product not found"
// @Router /products/{slug} [get]
func (h *Handlers) HandleGetBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, detail)
	}
}

// HandleDelete godoc
// @Summary Delete a product
// @Tags Products
// @Security BearerAuth
// @Param id path int true "Product id"
// @Success 204 "Product deleted"
// @Failure 404 {object} apperror.ErrorResponse "Product not found"
// @Router /products/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("product id must be an integer", nil))
			return
		}

		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
