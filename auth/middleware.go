// Package auth, as part of the authentication module.
// This file defines the JWT authentication middleware. It verifies the token
// from the Authorization header and stores the account id and permission list
// in the request context for downstream handlers.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/config"
)

// ContextKey is a type used for context keys to avoid collisions with keys
// defined by other packages.
type ContextKey string

const (
	// UserIDKey is the key under which the authenticated account id is stored.
	UserIDKey ContextKey = "userID"
	// PermissionsKey is the key under which the granted permissions are stored.
	PermissionsKey ContextKey = "permissions"
)

// JWTMiddleware creates a middleware that rejects requests without a valid
// Bearer token. The returned middleware conforms to the standard
// `func(next http.Handler) http.Handler` pattern chi expects.
func JWTMiddleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			tokenString := parts[1]
			claims := &CustomClaims{}

			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil {
				WriteError(w, r, apperror.NewAuthError(fmt.Sprintf("Invalid token: %v", err), err))
				return
			}
			if !token.Valid {
				WriteError(w, r, apperror.NewAuthError("Invalid token", nil))
				return
			}

			userID, err := strconv.Atoi(claims.Subject)
			if err != nil || userID == 0 {
				WriteError(w, r, apperror.NewAuthError("Invalid token: subject claim is missing or invalid", nil))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, PermissionsKey, claims.Permissions)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission creates a middleware that, stacked after JWTMiddleware,
// rejects requests whose token lacks the given permission label.
func RequirePermission(permission string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			permissions, ok := GetPermissionsFromContext(r.Context())
			if !ok {
				WriteError(w, r, apperror.NewAuthError("authentication required", nil))
				return
			}
			for _, p := range permissions {
				if p == permission {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, r, apperror.NewUnauthorizedError("insufficient permissions", nil))
		})
	}
}

// GetUserIDFromContext retrieves the account id set by the middleware.
// Returns 0 and false if it is not present.
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// GetPermissionsFromContext retrieves the permission list set by the middleware.
func GetPermissionsFromContext(ctx context.Context) ([]string, bool) {
	permissions, ok := ctx.Value(PermissionsKey).([]string)
	return permissions, ok
}
