// Package auth, as part of the authentication module.
// This file, `handlers.go`, handles HTTP requests related to authentication.
// It is the controller layer: it decodes and validates request bodies, calls
// the service, and writes responses. The response helpers at the bottom are
// exported because every other feature package renders through them.
package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/validate"
)

// Handlers wraps the AuthService to provide HTTP handlers.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary Register a new account
// @Description Creates an account with a Customer role and returns a session token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Account registration details"
// @Success 201 {object} auth.AuthResponse "Account created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or weak password"
// @Failure 409 {object} apperror.ErrorResponse "Email already exists"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, err)
			return
		}

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary Account login
// @Description Authenticates by email and password and returns a session token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.AuthResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, err)
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleChangePassword godoc
// @Summary Change password
// @Description Replaces the authenticated account's credential after verifying the old password.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param changePasswordBody body auth.ChangePasswordRequest true "Old and new password"
// @Success 200 {boolean} boolean "Password changed"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or weak password"
// @Failure 401 {object} apperror.ErrorResponse "Invalid old password"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/change-password [post]
func (h *Handlers) HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, err)
			return
		}

		if err := h.service.ChangePassword(r.Context(), userID, req); err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, true)
	}
}

// HandleMe godoc
// @Summary Current account
// @Description Returns the authenticated account, credential excluded.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.User "Current account"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok {
			WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		user, err := h.service.Me(r.Context(), userID)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, user)
	}
}

// HandleSendOtp godoc
// @Summary Send a one-time passcode
// @Description Creates a passcode challenge for the phone number. The code travels by SMS only.
// @Tags Auth
// @Accept json
// @Produce json
// @Param otpBody body auth.OtpRequest true "Phone number in international format"
// @Success 201 {object} auth.OtpResponse "Challenge created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid phone number"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/otp [post]
func (h *Handlers) HandleSendOtp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OtpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, err)
			return
		}

		challenge, err := h.service.SendOtp(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusCreated, OtpResponse{
			ID:          challenge.ID.String(),
			PhoneNumber: challenge.PhoneNumber,
			Verified:    false,
		})
	}
}

// HandleVerifyOtp godoc
// @Summary Verify a one-time passcode
// @Description Consumes a live challenge. A wrong or expired code yields false, not an error.
// @Tags Auth
// @Accept json
// @Produce json
// @Param verifyOtpBody body auth.VerifyOtpRequest true "Challenge id, code and phone number"
// @Success 200 {boolean} boolean "Verification outcome"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/verify-otp [post]
func (h *Handlers) HandleVerifyOtp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyOtpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, err)
			return
		}

		verified, err := h.service.VerifyOtp(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, verified)
	}
}

// WriteJSON serializes `data` to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError renders any error through the uniform apperror envelope. Errors
// that are not AppErrors are wrapped as internal errors first, so every failed
// request produces the same response shape.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred: "+err.Error(), err)
	}

	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse(r.URL.Path, r.Method))
}
