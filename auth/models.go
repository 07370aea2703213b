// Package auth, as part of the authentication module.
// This file, `models.go`, defines the entities of the authentication domain.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// Permission labels granted to an account. The first element of an account's
// permission list is conventionally treated as its primary role in responses.
const (
	PermissionSuperAdmin = "Super admin"
	PermissionStoreOwner = "Store owner"
	PermissionStaff      = "Staff"
	PermissionCustomer   = "Customer"
)

// User represents an account in the system.
// The `json:"-"` tag on HashedPassword keeps the credential out of every API
// response; it is never stored or logged in plaintext.
type User struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Permissions    []string  `json:"permissions"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// OTPChallenge represents one pending phone-verification attempt. The code is
// generated server-side and only ever leaves the process through the SMS
// channel, never through the API.
type OTPChallenge struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"-"`
	PhoneNumber string    `json:"phone_number"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}
