package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCredentials(t *testing.T) {
	creds, err := ParseCredentials(`{"endpoint":"localhost:9000","access_key":"a","secret_key":"b","bucket":"media","use_ssl":true}`)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", creds.Endpoint)
	assert.Equal(t, "media", creds.Bucket)
	assert.True(t, creds.UseSSL)
}

func TestParseCredentialsMissingFields(t *testing.T) {
	_, err := ParseCredentials(`{"endpoint":"localhost:9000"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessKey")
	assert.Contains(t, err.Error(), "Bucket")

	_, err = ParseCredentials(`not json`)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_URL", MemoryDSN)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("DEBUG_DIAGNOSTICS", "true")
	t.Setenv("STORAGE_DRIVER", "s3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Database.InMemory())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.DebugDiagnostics)
	assert.Equal(t, "s3", cfg.Storage.Driver)
}

func TestValidateReportsMissing(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Driver: "minio"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg = &Config{Database: DatabaseConfig{DSN: "x"}, Auth: AuthConfig{JWTSecret: "y"}, Storage: StorageConfig{Driver: "ftp"}}
	assert.Error(t, cfg.Validate())
}
