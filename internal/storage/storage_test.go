package storage

import (
	"context"
	"encoding/json"
	"testing"

	"newsdesk/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	cfg := config.StorageConfig{Endpoint: "localhost:9000", Bucket: "media"}
	assert.Equal(t, "http://localhost:9000/media/uploads/a.png", publicURL(cfg, "uploads/a.png"))

	cfg.UseSSL = true
	assert.Equal(t, "https://localhost:9000/media/k", publicURL(cfg, "k"))

	cfg.Endpoint = "https://nyc3.digitaloceanspaces.com/"
	assert.Equal(t, "https://nyc3.digitaloceanspaces.com/media/k", publicURL(cfg, "k"))

	cfg.PublicBaseURL = "https://cdn.news.test/"
	assert.Equal(t, "https://cdn.news.test/k", publicURL(cfg, "k"))
}

func TestPublicReadPolicy(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(publicReadPolicy("media")), &doc))
	stmts := doc["Statement"].([]any)
	require.Len(t, stmts, 1)
	stmt := stmts[0].(map[string]any)
	assert.Equal(t, "Allow", stmt["Effect"])
	assert.Equal(t, []any{"arn:aws:s3:::media/*"}, stmt["Resource"])
}

func TestNewPicksDriver(t *testing.T) {
	ctx := context.Background()
	base := config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "media", Region: "us-east-1"}

	base.Driver = "minio"
	s, err := New(ctx, base)
	require.NoError(t, err)
	assert.IsType(t, &MinIO{}, s)

	base.Driver = "s3"
	s, err = New(ctx, base)
	require.NoError(t, err)
	assert.IsType(t, &S3{}, s)
	assert.Equal(t, "http://localhost:9000/media/x", s.URL("x"))

	base.Driver = "ftp"
	_, err = New(ctx, base)
	assert.Error(t, err)

	_, err = New(ctx, config.StorageConfig{})
	assert.Error(t, err)
}
