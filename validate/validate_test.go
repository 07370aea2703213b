package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bazaar-go/apperror"
)

type sampleDTO struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Phone string `validate:"omitempty,e164basic"`
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()

	err := Struct(sampleDTO{Name: "Jane", Email: "jane@example.com", Phone: "+15551234567"})
	assert.NoError(t, err)
}

func TestStruct_CollectsFieldDetails(t *testing.T) {
	t.Parallel()

	err := Struct(sampleDTO{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, "validation failed", appErr.Message)
	assert.Contains(t, appErr.Details, "name is required")
	assert.Contains(t, appErr.Details, "email must be a valid email address")
}

func TestE164Basic(t *testing.T) {
	t.Parallel()

	valid := []string{"+15551234567", "+4915123456789", "+12", "+999999999999999"}
	for _, phone := range valid {
		assert.NoError(t, Struct(sampleDTO{Name: "x", Email: "x@example.com", Phone: phone}), phone)
	}

	invalid := []string{
		"15551234567",      // missing plus
		"+05551234567",     // leading zero
		"+1555123456a",     // non-digit
		"+1 555 123 4567",  // spaces
		"+9999999999999999", // too long
		"+1",                // too short
	}
	for _, phone := range invalid {
		err := Struct(sampleDTO{Name: "x", Email: "x@example.com", Phone: phone})
		assert.True(t, apperror.IsValidationError(err), phone)
	}
}

func TestStruct_NonStructInput(t *testing.T) {
	t.Parallel()

	err := Struct("not a struct")
	require.Error(t, err)
	assert.False(t, apperror.IsValidationError(err))
}
