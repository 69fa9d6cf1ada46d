// Package reports handles medical report uploads: file bytes go to S3,
// metadata rows go to Postgres.
package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sehatnabha/telecare/pkg/logging"
)

// S3API is the subset of the S3 client used by ObjectStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ObjectStore writes report files to an S3 bucket.
type ObjectStore struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewObjectStore creates the store. If bucket is empty, uploads fail fast
// so misconfiguration never silently drops patient files.
func NewObjectStore(s3Client S3API, bucket string, logger *logging.Logger) *ObjectStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &ObjectStore{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled reports whether the store has a bucket and client configured.
func (s *ObjectStore) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Put uploads the file bytes under the given object key.
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if !s.Enabled() {
		return fmt.Errorf("reports: object store not configured")
	}
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("reports: s3 put %s: %w", key, err)
	}
	s.logger.Info("report uploaded to s3", "s3_key", key, "bytes", len(data))
	return nil
}

// Delete removes the object. Missing keys are not an error.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return fmt.Errorf("reports: object store not configured")
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("reports: s3 delete %s: %w", key, err)
	}
	return nil
}
