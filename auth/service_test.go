package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bazaar-go/config"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(nil, config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenDuration: time.Hour,
	})

	tokenString, err := svc.generateToken(42, []string{PermissionStoreOwner, PermissionStaff})
	require.NoError(t, err)

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, []string{PermissionStoreOwner, PermissionStaff}, claims.Permissions)
	assert.Equal(t, "bazaar", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateToken_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(nil, config.AuthConfig{JWTSecret: "right", TokenDuration: time.Hour})
	tokenString, err := svc.generateToken(7, []string{PermissionCustomer})
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	assert.Error(t, err)
}

func TestGenerateOtpCode(t *testing.T) {
	t.Parallel()

	// The code must always be exactly six digits with no leading zero.
	for i := 0; i < 500; i++ {
		code, err := generateOtpCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestRoleOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", roleOf(nil))
	assert.Equal(t, PermissionCustomer, roleOf([]string{PermissionCustomer}))
	assert.Equal(t, PermissionSuperAdmin, roleOf([]string{PermissionSuperAdmin, PermissionStaff}))
}
