// Package auth provides authentication and authorization functionality.
// This file, `dto.go` (Data Transfer Object), defines structures used for
// transferring data in API requests and responses related to authentication.
// The `validate` tags are enforced at the boundary by the validate package, so
// the service layer only ever sees well-formed input.
package auth

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required" example:"John Doe"`
	Email    string `json:"email" validate:"required,email" example:"john@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"Str0ngPass"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"john@example.com"`
	Password string `json:"password" validate:"required" example:"Str0ngPass"`
}

// ChangePasswordRequest carries a password change for the authenticated account.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// AuthResponse is returned on successful registration or login. Role is the
// first granted permission, kept positional to preserve the response shape the
// storefront expects.
type AuthResponse struct {
	Token       string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Permissions []string `json:"permissions" example:"Customer"`
	Role        string   `json:"role" example:"Customer"`
	Name        string   `json:"name" example:"John Doe"`
}

// OtpRequest asks for a one-time passcode to be sent to a phone number in
// international format.
type OtpRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164basic" example:"+15551234567"`
}

// VerifyOtpRequest submits a passcode for verification.
type VerifyOtpRequest struct {
	OtpID       string `json:"otp_id" validate:"required"`
	Code        string `json:"code" validate:"required" example:"123456"`
	PhoneNumber string `json:"phone_number" validate:"required,e164basic" example:"+15551234567"`
}

// OtpResponse acknowledges a created challenge. The generated code is never
// part of this payload.
type OtpResponse struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Verified    bool   `json:"verified" example:"false"`
}
