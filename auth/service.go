// Package auth is responsible for handling authentication and authorization
// logic: account registration, credential verification, session-token issuance
// (JWT), and the phone one-time-passcode challenge/response cycle.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/config"
)

const (
	// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
	pgUniqueViolation = "23505"

	// otpTTL is the fixed expiry horizon of a passcode challenge.
	otpTTL = 10 * time.Minute

	// invalidCredentials is the single message used for every login failure
	// cause (unknown email, missing credential, wrong password), so the
	// response never reveals which one occurred.
	invalidCredentials = "invalid credentials"
)

// AuthService provides authentication-related services. Dependencies are
// injected via the constructor; the service itself holds no mutable state.
type AuthService struct {
	dbPool     *pgxpool.Pool
	authConfig config.AuthConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(dbPool *pgxpool.Pool, authConfig config.AuthConfig) *AuthService {
	return &AuthService{
		dbPool:     dbPool,
		authConfig: authConfig,
	}
}

// CustomClaims defines the session-token payload: the account identifier in
// the registered Subject claim plus the granted permission labels.
type CustomClaims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// roleOf maps a permission list to the "primary role" the storefront expects.
// The convention is positional: the first granted permission is the role.
func roleOf(permissions []string) string {
	if len(permissions) == 0 {
		return ""
	}
	return permissions[0]
}

// Register creates a new account with a Customer permission set and an
// argon2id credential, then issues a session token for it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := CheckPasswordPolicy(req.Password); err != nil {
		return nil, apperror.NewValidationError(err.Error(), nil)
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Name: req.Name,
		// Emails are stored lowercase so uniqueness is case-insensitive.
		Email:          strings.ToLower(req.Email),
		HashedPassword: hashedPassword,
		Permissions:    []string{PermissionCustomer},
	}

	if err := s.createUser(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	token, err := s.generateToken(user.ID, user.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{
		Token:       token,
		Permissions: user.Permissions,
		Role:        roleOf(user.Permissions),
		Name:        user.Name,
	}, nil
}

// Login authenticates an account by password and issues a session token.
// Every failure cause produces the same AuthError message.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError(invalidCredentials, nil)
		}
		log.Printf("Database error in Login when fetching user: %v", err)
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	// Accounts created through flows that never set a password have no
	// credential; they cannot log in this way.
	if user.HashedPassword == "" {
		return nil, apperror.NewAuthError(invalidCredentials, nil)
	}

	ok, err := VerifyPassword(user.HashedPassword, req.Password)
	if err != nil || !ok {
		return nil, apperror.NewAuthError(invalidCredentials, nil)
	}

	token, err := s.generateToken(user.ID, user.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{
		Token:       token,
		Permissions: user.Permissions,
		Role:        roleOf(user.Permissions),
		Name:        user.Name,
	}, nil
}

// ChangePassword verifies the old password and replaces the credential hash
// wholesale. The new password is subject to the same policy as registration.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, req ChangePasswordRequest) error {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewAuthError("user not found", nil)
		}
		return apperror.NewDatabaseError("failed to get user", err)
	}

	if user.HashedPassword == "" {
		return apperror.NewAuthError("user not found", nil)
	}

	ok, err := VerifyPassword(user.HashedPassword, req.OldPassword)
	if err != nil || !ok {
		return apperror.NewAuthError("invalid old password", nil)
	}

	if err := CheckPasswordPolicy(req.NewPassword); err != nil {
		return apperror.NewValidationError(err.Error(), nil)
	}

	newHash, err := HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tag, err := s.dbPool.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, newHash, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewAuthError("user not found", nil)
	}
	return nil
}

// Me returns the authenticated account, credential excluded.
func (s *AuthService) Me(ctx context.Context, userID int) (*User, error) {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}

// SendOtp creates a passcode challenge for the phone number with a 10-minute
// expiry. The code never leaves through the API; only the challenge id and
// phone number are returned. Earlier live challenges for the same number are
// left untouched so a resend does not invalidate an SMS still in flight.
func (s *AuthService) SendOtp(ctx context.Context, req OtpRequest) (*OTPChallenge, error) {
	code, err := generateOtpCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate passcode: %w", err)
	}

	challenge := &OTPChallenge{
		ID:          uuid.New(),
		Code:        code,
		PhoneNumber: req.PhoneNumber,
		ExpiresAt:   time.Now().Add(otpTTL),
	}

	query := `INSERT INTO otps (id, code, phone_number, expires_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at`
	err = s.dbPool.QueryRow(ctx, query,
		challenge.ID, challenge.Code, challenge.PhoneNumber, challenge.ExpiresAt,
	).Scan(&challenge.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create otp challenge", err)
	}

	// TODO: deliver the code through the SMS gateway once one is provisioned.

	return challenge, nil
}

// VerifyOtp consumes a live challenge matching the phone number and code.
// The lookup and the consumption are a single DELETE, so when two calls race
// on the same challenge exactly one observes a deleted row and returns true.
// A wrong, already-consumed or expired code is a business outcome (false),
// never an error.
func (s *AuthService) VerifyOtp(ctx context.Context, req VerifyOtpRequest) (bool, error) {
	query := `DELETE FROM otps
	          WHERE code = $1 AND phone_number = $2 AND expires_at > now()`
	tag, err := s.dbPool.Exec(ctx, query, req.Code, req.PhoneNumber)
	if err != nil {
		return false, apperror.NewDatabaseError("failed to verify otp", err)
	}
	return tag.RowsAffected() > 0, nil
}

// generateOtpCode draws a uniformly random 6-digit code from
// [100000, 999999]: exactly six digits, never a leading zero. crypto/rand is
// used so codes are not predictable from previous ones.
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// generateToken mints a signed session token for the account. This is the only
// place in the application that mints tokens; validity is fully determined by
// signature and expiry, nothing is persisted server-side.
func (s *AuthService) generateToken(userID int, permissions []string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.authConfig.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "bazaar",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// --- Database helpers ---
// These keep the SQL for the auth domain in one place, in the same style as
// the other feature packages.

func (s *AuthService) createUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (name, email, password, permissions)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, is_active, created_at`
	return s.dbPool.QueryRow(ctx, query,
		user.Name, user.Email, user.HashedPassword, user.Permissions,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt)
}

func (s *AuthService) getUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	var password *string
	query := `SELECT id, name, email, password, permissions, is_active, created_at
	          FROM users WHERE email = $1`
	err := s.dbPool.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&user.ID, &user.Name, &user.Email, &password,
		&user.Permissions, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if password != nil {
		user.HashedPassword = *password
	}
	return &user, nil
}

func (s *AuthService) getUserByID(ctx context.Context, userID int) (*User, error) {
	var user User
	var password *string
	query := `SELECT id, name, email, password, permissions, is_active, created_at
	          FROM users WHERE id = $1`
	err := s.dbPool.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &password,
		&user.Permissions, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if password != nil {
		user.HashedPassword = *password
	}
	return &user, nil
}
