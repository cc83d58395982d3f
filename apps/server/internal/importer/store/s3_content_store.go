package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tilsley/bindle/apps/server/internal/importer/upload"
)

// ErrEmptyPayload is returned when a zero-byte upload is attempted; the
// content store never persists empty objects.
var ErrEmptyPayload = errors.New("content store rejects empty payloads")

// S3Client captures the subset of the AWS SDK client used by S3ContentStore.
// The narrow interface keeps tests on a lightweight fake.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Compile-time check: *S3ContentStore implements upload.ContentStore.
var _ upload.ContentStore = (*S3ContentStore)(nil)

// S3ContentStore stores file content in an S3-compatible bucket and derives
// public content URLs from a configured base.
type S3ContentStore struct {
	client    S3Client
	bucket    string
	publicURL string
}

// NewS3ContentStore creates a content store backed by S3. publicURL is the
// externally reachable base under which bucket keys resolve.
func NewS3ContentStore(client S3Client, bucket, publicURL string) *S3ContentStore {
	return &S3ContentStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Put uploads the payload and returns its durable reference.
func (s *S3ContentStore) Put(ctx context.Context, key string, data []byte, contentType string) (upload.PutResult, error) {
	if len(data) == 0 {
		return upload.PutResult{}, ErrEmptyPayload
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return upload.PutResult{}, fmt.Errorf("put object %q: %w", key, err)
	}

	return upload.PutResult{Key: key, URL: s.publicURL + "/" + key}, nil
}
