// Package validate wires go-playground/validator into the request pipeline.
// DTOs carry `validate` struct tags; Struct() turns any violations into a
// single apperror ValidationError whose Details list the offending fields, so
// handlers pass only already-validated, strongly-typed inputs to the services.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/bazaar-go/apperror"
)

// A single validator instance caches struct metadata, so it is shared
// package-wide.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// e164basic mirrors the original phone rule: +, leading non-zero digit,
	// then 1-14 further digits.
	_ = val.RegisterValidation("e164basic", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) < 3 || len(s) > 16 || s[0] != '+' {
			return false
		}
		if s[1] < '1' || s[1] > '9' {
			return false
		}
		for _, r := range s[2:] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})

	return val
}

// Struct validates a DTO and converts any violations to an apperror
// ValidationError carrying field-level details.
func Struct(dto interface{}) error {
	err := v.Struct(dto)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: the DTO itself is not a struct. A programming
		// error, not a client one.
		return apperror.NewInternalError("validation failed", err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}

	return apperror.NewValidationError("validation failed", nil).WithDetails(details...)
}

// describe renders one field violation as a human-readable message.
func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "e164basic":
		return fmt.Sprintf("%s must be an international phone number like +15551234567", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
