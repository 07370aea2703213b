package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets every variable LoadConfig refuses to start without.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "bazaar")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "bazaar")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA_TEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "aws-secret")
	t.Setenv("AWS_S3_BUCKET", "bazaar-uploads")
	t.Setenv("DEFAULT_FROM_EMAIL", "noreply@example.com")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 10, cfg.DB.MaxSize)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, 100, cfg.Upload.MaxFileNameLength)
	assert.Equal(t, 30*time.Second, cfg.Upload.UploadTimeout)
	assert.Equal(t, "noreply@example.com", cfg.Email.DefaultFrom)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.AWS.Endpoint)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("JWT_TOKEN_DURATION", "30m")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "1048576")
	t.Setenv("AWS_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("PORT", "3000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenDuration)
	assert.Equal(t, int64(1048576), cfg.Upload.MaxFileSize)
	assert.Equal(t, "http://localhost:9000", cfg.AWS.Endpoint)
	assert.Equal(t, "3000", cfg.Server.Port)
}

func TestLoadConfig_CollectsAllMissingVariables(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv registered the restore; unset to simulate absence.
	os.Unsetenv("DB_USER")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("AWS_S3_BUCKET")

	_, err := LoadConfig()
	require.Error(t, err)

	// Every missing variable is reported at once, not just the first.
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "AWS_S3_BUCKET")
}

func TestLoadConfig_ClampsPoolSize(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_POOL_SIZE", "2")

	// Clamping is reported as a configuration error so the operator notices.
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_POOL_SIZE")
}

func TestLoadConfig_RejectsBadDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_TOKEN_DURATION", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_TOKEN_DURATION")
}
