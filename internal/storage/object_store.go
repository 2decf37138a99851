package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore talks to MinIO/S3-compatible object storage. Uploads never pass
// through the application server: clients PUT directly against presigned
// URLs issued here.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

// PresignPut issues a time-boxed, single-object write credential. The signed
// Content-Type header pins the upload to the declared type.
func (m *MinioStore) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	u, err := m.client.PresignHeader(ctx, http.MethodPut, m.bucket, key, expiry, url.Values{}, headers)
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return u.String(), nil
}

// Copy duplicates an object server-side. Used by rename: copy to the new
// key, then delete the old one.
func (m *MinioStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: m.bucket, Object: srcKey},
	)
	if err != nil {
		return fmt.Errorf("copy object: %w", err)
	}
	return nil
}

// Delete removes an object.
func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// ObjectURL derives the public URL of a stored object for listings.
func (m *MinioStore) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", m.client.EndpointURL(), m.bucket, key)
}
