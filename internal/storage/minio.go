package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"newsdesk/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/cors"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIO struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewMinIO(cfg config.StorageConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinIO{client: client, cfg: cfg}, nil
}

func (m *MinIO) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{Region: m.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.cfg.Bucket, err)
	}
	return nil
}

func (m *MinIO) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return "", err
	}
	_, err := m.client.PutObject(ctx, m.cfg.Bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"uploaded-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return m.URL(key), nil
}

func (m *MinIO) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.cfg.Bucket, key, minio.RemoveObjectOptions{GovernanceBypass: true})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (m *MinIO) URL(key string) string {
	return publicURL(m.cfg, key)
}

func (m *MinIO) MakePublic(ctx context.Context) error {
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}
	return m.client.SetBucketPolicy(ctx, m.cfg.Bucket, publicReadPolicy(m.cfg.Bucket))
}

func (m *MinIO) SetCORS(ctx context.Context, origins []string) error {
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}
	return m.client.SetBucketCors(ctx, m.cfg.Bucket, cors.NewConfig([]cors.Rule{
		{
			AllowedOrigin: origins,
			AllowedMethod: corsMethods,
			AllowedHeader: []string{"*"},
			MaxAgeSeconds: corsMaxAge,
		},
	}))
}
