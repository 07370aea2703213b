// Package categories, as part of the catalog module.
// Controller layer for the category endpoints.
package categories

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

// Handlers wraps the CategoryService to provide HTTP handlers.
type Handlers struct {
	service *CategoryService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *CategoryService) *Handlers {
	return &Handlers{service: service}
}

// HandleCreate godoc
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param categoryBody body categories.CreateCategoryRequest true "Category to create"
// @Success 201 {object} categories.Category "Category created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or unknown parent"
// @Failure 409 {object} apperror.ErrorResponse "Slug already exists"
// @Router /categories [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		category, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, category)
	}
}

// HandleList godoc
// @Summary List categories
// @Description Paginated listing with parent and children attached. `parent=null` restricts to roots.
// @Tags Categories
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Filter expression (name, type)"
// @Param parent query string false "Pass `null` to list only root categories"
// @Success 200 {object} categories.CategoryPaginator "One page of categories"
// @Router /categories [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit := pagination.PageParams(r, defaultPageSize)
		params := ListParams{
			Page:      page,
			Limit:     limit,
			Search:    pagination.ParseSearch(r.URL.Query().Get("search")),
			BaseURL:   r.URL.Path,
			RootsOnly: r.URL.Query().Get("parent") == "null",
		}

		result, err := h.service.List(r.Context(), params)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, result)
	}
}

// HandleGet godoc
// @Summary Get a category
// @Description Looks up by numeric id or by slug, returning parent and children too.
// @Tags Categories
// @Produce json
// @Param idOrSlug path string true "Category id or slug"
// @Success 200 {object} categories.CategoryView "Category with its neighborhood"
// @Failure 404 {object} apperror.ErrorResponse "Category not found"
// @Router /categories/{idOrSlug} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.service.GetByIDOrSlug(r.Context(), chi.URLParam(r, "idOrSlug"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, view)
	}
}

// HandleUpdate godoc
// @Summary Update a category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category id"
// @Param categoryBody body categories.UpdateCategoryRequest true "Replacement values"
// @Success 200 {object} categories.Category "Updated category"
// @Failure 404 {object} apperror.ErrorResponse "Category not found"
// @Failure 409 {object} apperror.ErrorResponse "Slug already exists"
// @Router /categories/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("category id must be an integer", nil))
			return
		}

		var req UpdateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		category, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, category)
	}
}

// HandleDelete godoc
// @Summary Delete a category
// @Description Children of the deleted category become roots.
// @Tags Categories
// @Security BearerAuth
// @Param id path int true "Category id"
// @Success 204 "Category deleted"
// @Failure 404 {object} apperror.ErrorResponse "Category not found"
// @Router /categories/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("category id must be an integer", nil))
			return
		}

		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
