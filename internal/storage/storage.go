// Package storage writes media objects to an S3-compatible bucket.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"newsdesk/config"
)

type Storage interface {
	// Put uploads body under key and returns its public URL.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
	// MakePublic grants anonymous read on the bucket.
	MakePublic(ctx context.Context) error
	SetCORS(ctx context.Context, origins []string) error
}

// New picks the driver named in cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("storage is not configured")
	}
	switch cfg.Driver {
	case "", "minio":
		return NewMinIO(cfg)
	case "s3":
		return NewS3(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func publicURL(cfg config.StorageConfig, key string) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + key
	}
	return endpointURL(cfg) + "/" + cfg.Bucket + "/" + key
}

// endpointURL adds a scheme to bare host:port endpoints.
func endpointURL(cfg config.StorageConfig) string {
	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}
	return strings.TrimRight(endpoint, "/")
}

func publicReadPolicy(bucket string) string {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Sid":       "PublicRead",
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{"arn:aws:s3:::" + bucket + "/*"},
			},
		},
	}
	raw, _ := json.Marshal(policy)
	return string(raw)
}

var corsMethods = []string{"GET", "HEAD", "PUT", "POST"}

const corsMaxAge = 3600
