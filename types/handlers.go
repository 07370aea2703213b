// Package types, as part of the catalog module.
// Controller layer for the type endpoints.
package types

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

// Handlers wraps the TypeService to provide HTTP handlers.
type Handlers struct {
	service *TypeService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *TypeService) *Handlers {
	return &Handlers{service: service}
}

// HandleList godoc
// @Summary List types
// @Description All types, optionally narrowed by a free-text match on name and slug.
// @Tags Types
// @Produce json
// @Param text query string false "Free-text match"
// @Param search query string false "Filter expression (language)"
// @Success 200 {array} types.Type "All matching types"
// @Router /types [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.service.List(r.Context(),
			r.URL.Query().Get("text"),
			pagination.ParseSearch(r.URL.Query().Get("search")))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, data)
	}
}

// HandleGetBySlug godoc
// @Summary Get a type by slug
// @Description Returns the type together with its published products.
// @Tags Types
// @Produce json
// @Param slug path string true "Type slug"
// @Success 200 {object} types.TypeDetail "Type with products"
// @Failure 404 {object} apperror.ErrorResponse "Type not found"
// @Router /types/{slug} [get]
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

// HandleCreate godoc
// @Summary Create a type
// @Tags Types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param typeBody body types.CreateTypeRequest true "Type to create"
// @Success 201 {object} types.Type "Type created"
// @Failure 409 {object} apperror.ErrorResponse "Slug already exists"
// @Router /types [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTypeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		t, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, t)
	}
}

// HandleUpdate godoc
// @Summary Update a type
// @Tags Types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Type id"
// @Param typeBody body types.UpdateTypeRequest true "Replacement values"
// @Success 200 {object} types.Type "Updated type"
// @Failure 404 {object} apperror.ErrorResponse "Type not found"
// @Failure 409 {object} apperror.ErrorResponse "Slug already exists"
// @Router /types/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("type id must be an integer", nil))
			return
		}

		var req UpdateTypeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(CreateTypeRequest(req)); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		t, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, t)
	}
}

// HandleDelete godoc
// @Summary Delete a type
// @Description Products of the deleted type keep their rows with the type reference cleared.
// @Tags Types
// @Security BearerAuth
// @Param id path int true "Type id"
// @Success 204 "Type deleted"
// @Failure 404 {object} apperror.ErrorResponse "Type not found"
// @Router /types/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("type id must be an integer", nil))
			return
		}

		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
