// Package users, as part of the account-administration module.
// Controller layer for the user and profile endpoints.
package users

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

// Handlers wraps the UserService to provide HTTP handlers.
type Handlers struct {
	service *UserService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *UserService) *Handlers {
	return &Handlers{service: service}
}

func listParams(r *http.Request) ListParams {
	page, limit := pagination.PageParams(r, defaultPageSize)
	return ListParams{
		Page:    page,
		Limit:   limit,
		Text:    r.URL.Query().Get("text"),
		BaseURL: r.URL.Path,
	}
}

// HandleList godoc
// @Summary List accounts
// @Description Paginated listing; `text` fuzzy-matches account names.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param text query string false "Fuzzy name match"
// @Success 200 {object} users.UserPaginator "One page of accounts"
// @Router /users [get]
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

// HandleGet godoc
// @Summary Get an account
// @Description Returns the account with its profile attached when one exists.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account id"
// @Success 200 {object} users.UserView "Account with profile"
// @Failure 404 {object} apperror.ErrorResponse "Account not found"
// @Router /users/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("user id must be an integer", nil))
			return
		}

		user, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleUpdateProfile godoc
// @Summary Update an account's profile
// @Description Renames the account and upserts its profile in one transaction.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account id"
// @Param profileBody body users.UpdateProfileRequest true "Name and profile fields"
// @Success 200 {object} users.UserView "Updated account"
// @Failure 404 {object} apperror.ErrorResponse "Account not found"
// @Router /profiles/{id} [put]
func (h *Handlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("user id must be an integer", nil))
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		user, err := h.service.UpdateProfile(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleDeleteProfile godoc
// @Summary Delete an account's profile
// @Description Removes the profile row only; the account remains.
// @Tags Users
// @Security BearerAuth
// @Param id path int true "Account id"
// @Success 204 "Profile deleted"
// @Failure 404 {object} apperror.ErrorResponse "Profile not found"
// @Router /profiles/{id} [delete]
func (h *Handlers) HandleDeleteProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("user id must be an integer", nil))
			return
		}

		if err := h.service.DeleteProfile(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleBlock godoc
// @Summary Block an account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blockBody body users.BlockUserRequest true "Account to block"
// @Success 200 {object} users.UserView "Blocked account"
// @Failure 404 {object} apperror.ErrorResponse "Account not found"
// @Router /users/block-user [post]
func (h *Handlers) HandleBlock() http.HandlerFunc {
	return h.handleSetActive(false)
}

// HandleUnblock godoc
// @Summary Unblock an account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blockBody body users.BlockUserRequest true "Account to unblock"
// @Success 200 {object} users.UserView "Unblocked account"
// @Failure 404 {object} apperror.ErrorResponse "Account not found"
// @Router /users/unblock-user [post]
func (h *Handlers) HandleUnblock() http.HandlerFunc {
	return h.handleSetActive(true)
}

func (h *Handlers) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlockUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		user, err := h.service.SetActive(r.Context(), req.ID, active)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleAdmins godoc
// @Summary List administrator accounts
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} users.UserPaginator "One page of administrators"
// @Router /admin/list [get]
func (h *Handlers) HandleAdmins() http.HandlerFunc {
	return h.handlePermissionList(permissionSuperAdmin)
}

// HandleVendors godoc
// @Summary List store-owner accounts
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} users.UserPaginator "One page of store owners"
// @Router /vendors/list [get]
func (h *Handlers) HandleVendors() http.HandlerFunc {
	return h.handlePermissionList(permissionStoreOwner)
}

// HandleCustomers godoc
// @Summary List customer accounts
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} users.UserPaginator "One page of customers"
// @Router /customers/list [get]
func (h *Handlers) HandleCustomers() http.HandlerFunc {
	return h.handlePermissionList(permissionCustomer)
}

func (h *Handlers) handlePermissionList(permission string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.service.ListByPermission(r.Context(), listParams(r), permission)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}
