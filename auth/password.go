// Package auth, as part of the authentication module.
// This file implements credential hashing with argon2id and the password
// complexity policy applied at registration and password change.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// argon2id cost parameters. Memory-hard by construction; these bound the
// worst-case latency of a hash or verify call.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// ErrInvalidHash is returned when a stored credential cannot be parsed as a
// PHC-formatted argon2id hash.
var ErrInvalidHash = errors.New("invalid argon2id hash encoding")

// HashPassword derives an argon2id hash from the password with a fresh random
// salt and returns it in PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash), which embeds everything needed
// for later verification.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// VerifyPassword re-derives the key from the candidate password using the
// parameters and salt embedded in the stored hash and compares in constant
// time. It returns true only on an exact match.
func VerifyPassword(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}

	var memory uint32
	var timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

// CheckPasswordPolicy enforces the complexity policy: at least 6 characters,
// one uppercase letter, one lowercase letter, and one digit or symbol. The
// returned error message matches the one the storefront already displays.
func CheckPasswordPolicy(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	var hasUpper, hasLower, hasDigitOrSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasDigitOrSymbol = true
		}
	}

	if !hasUpper || !hasLower || !hasDigitOrSymbol {
		return errors.New("password is too weak")
	}
	return nil
}
