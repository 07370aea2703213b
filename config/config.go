// Package config provides configuration management for the bazaar application.
// It handles loading and validation of configuration values from environment
// variables, with support for required variables, default values, and
// collective error reporting: every problem found during startup is gathered
// into a single fatal error instead of failing one variable at a time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig represents configuration for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret     string        // Secret key for signing session tokens
	TokenDuration time.Duration // Expiry horizon for session tokens
}

// AWSConfig holds credentials and targets for the AWS-backed services
// (S3 object storage and SES outbound mail).
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO).
	// Empty means the regular AWS endpoint.
	Endpoint string
}

// UploadConfig holds the file-upload safety policy.
type UploadConfig struct {
	MaxFileSize       int64 // bytes
	MaxFileNameLength int
	UploadTimeout     time.Duration
}

// EmailConfig holds outbound email settings.
type EmailConfig struct {
	DefaultFrom string
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port string // Port for the HTTP server
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB     *PoolConfig
	Auth   *AuthConfig
	AWS    *AWSConfig
	Upload *UploadConfig
	Email  *EmailConfig
	Server *ServerConfig
}

// getRequiredEnv fetches a required environment variable, appending to the
// errors slice when it is not set. This promotes a "fail fast" approach for
// critical missing configuration.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv fetches an optional environment variable with a default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt fetches an optional environment variable parsed as an int.
// Uses defaultValue if not set; appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvInt64 is the int64 variant, used for byte sizes.
func getOptionalEnvInt64(key string, defaultValue int64, errors *[]string) int64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration fetches an optional environment variable parsed as a
// time.Duration ("15m", "1h30s"). Uses defaultValue if not set; appends an
// error if parsing fails.
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the connection pool size within reasonable bounds.
func clampPoolSize(size int, varName string, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5, clamping to 5", varName, size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig creates and returns an AppConfig by reading and validating
// environment variables. It collects all errors encountered during loading and
// returns a single aggregated error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Database configuration
	dbUser := getRequiredEnv("DB_USER", &errors)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errors)
	dbName := getRequiredEnv("DB_NAME", &errors)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errors)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), "DB_POOL_SIZE", &errors)

	dbConfig := &PoolConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxSize:  poolSize,
	}

	// Auth configuration
	authConfig := &AuthConfig{
		JWTSecret:     getRequiredEnv("JWT_SECRET", &errors),
		TokenDuration: getOptionalEnvDuration("JWT_TOKEN_DURATION", 24*time.Hour, &errors),
	}

	// AWS configuration (S3 uploads + SES email)
	awsConfig := &AWSConfig{
		Region:          getRequiredEnv("AWS_REGION", &errors),
		AccessKeyID:     getRequiredEnv("AWS_ACCESS_KEY_ID", &errors),
		SecretAccessKey: getRequiredEnv("AWS_SECRET_ACCESS_KEY", &errors),
		Bucket:          getRequiredEnv("AWS_S3_BUCKET", &errors),
		Endpoint:        getOptionalEnv("AWS_S3_ENDPOINT", ""),
	}

	// Upload policy
	uploadConfig := &UploadConfig{
		MaxFileSize:       getOptionalEnvInt64("UPLOAD_MAX_FILE_SIZE", 10*1024*1024, &errors),
		MaxFileNameLength: getOptionalEnvInt("UPLOAD_MAX_FILENAME_LENGTH", 100, &errors),
		UploadTimeout:     getOptionalEnvDuration("UPLOAD_TIMEOUT", 30*time.Second, &errors),
	}

	// Outbound email
	emailConfig := &EmailConfig{
		DefaultFrom: getRequiredEnv("DEFAULT_FROM_EMAIL", &errors),
	}

	// Server configuration
	serverConfig := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		DB:     dbConfig,
		Auth:   authConfig,
		AWS:    awsConfig,
		Upload: uploadConfig,
		Email:  emailConfig,
		Server: serverConfig,
	}, nil
}
