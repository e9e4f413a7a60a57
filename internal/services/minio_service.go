package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStore keeps menu item images in one bucket, addressed by object key.
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	EnsureBucket(ctx context.Context) error
}

type minioImageStore struct {
	client *minio.Client
	bucket string
}

func NewMinioImageStore(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (ImageStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		// A fixed region lets presigning work without a bucket location lookup.
		Region: "us-east-1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &minioImageStore{client: client, bucket: bucket}, nil
}

func (m *minioImageStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (m *minioImageStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioImageStore) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *minioImageStore) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
