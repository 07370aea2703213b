// Package users, as part of the account-administration module.
// This file defines the served account and profile shapes.
package users

import (
	"time"

	"github.com/user/bazaar-go/pagination"
)

// Avatar groups the three stored avatar references into the shape the
// storefront renders.
type Avatar struct {
	ID        *string `json:"id,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	Original  *string `json:"original,omitempty"`
}

// Profile is the optional extended record attached to an account.
type Profile struct {
	ID                 int     `json:"id"`
	Bio                *string `json:"bio,omitempty"`
	Contact            *string `json:"contact,omitempty"`
	Avatar             *Avatar `json:"avatar,omitempty"`
	NotificationEmail  *string `json:"notification_email,omitempty"`
	NotificationEnable bool    `json:"notification_enable"`
}

// UserView is an account as served by the administration endpoints. The
// credential never appears here.
type UserView struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	Profile     *Profile  `json:"profile,omitempty"`
}

// UserPaginator is one page of accounts plus navigation metadata.
type UserPaginator struct {
	Data []UserView `json:"data"`
	pagination.Paginator
}

// UpdateProfileRequest is the body for PUT /profiles/{id}: a new display name
// plus the profile fields to upsert.
type UpdateProfileRequest struct {
	Name               string  `json:"name" validate:"required"`
	Bio                *string `json:"bio"`
	Contact            *string `json:"contact"`
	Avatar             *Avatar `json:"avatar"`
	NotificationEmail  *string `json:"notification_email" validate:"omitempty,email"`
	NotificationEnable *bool   `json:"notification_enable"`
}

// BlockUserRequest is the body for the block/unblock endpoints.
type BlockUserRequest struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// ListParams carries the parsed query parameters of the list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	Text    string
	BaseURL string
}
