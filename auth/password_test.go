package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword(hash, "Sup3rSecret!")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "Sup3rSecret?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	second, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)

	// Fresh random salt per hash means two hashes of the same password never
	// coincide.
	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_RejectsMalformedHash(t *testing.T) {
	t.Parallel()

	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$not-a-version$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		ok, err := VerifyPassword(encoded, "whatever")
		assert.ErrorIs(t, err, ErrInvalidHash, "encoded=%q", encoded)
		assert.False(t, ok)
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid with digit", "Abcde1", ""},
		{"valid with symbol", "Abcde!", ""},
		{"too short", "Ab1", "password must be at least 6 characters"},
		{"no uppercase", "abcde1", "password is too weak"},
		{"no lowercase", "ABCDE1", "password is too weak"},
		{"letters only", "Abcdef", "password is too weak"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckPasswordPolicy(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
