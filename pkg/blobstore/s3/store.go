// Package s3 provides an S3-backed blob store.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/cryptoolstore/internal/telemetry"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
)

// Config holds configuration for the S3 blob store.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region is the AWS region (optional, uses SDK default if empty).
	Region string `mapstructure:"region" yaml:"region,omitempty"`

	// Endpoint is the S3 endpoint URL (optional, for S3-compatible services).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// KeyPrefix is prepended to all blob keys. Should end with "/" if non-empty.
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`

	// ForcePathStyle forces path-style addressing (required for Localstack/MinIO).
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style,omitempty"`

	// AccessKeyID and SecretAccessKey select static credentials. When empty
	// the SDK default credential chain is used.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`

	// TempDir is where uploads are staged before being sent to the bucket.
	// Defaults to the system temporary directory.
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir,omitempty"`
}

// Store is an S3-backed implementation of blobstore.Store.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	tempDir   string
	closed    bool
	mu        sync.RWMutex
}

// New creates a new S3 blob store with an existing client.
func New(client *s3.Client, config Config) (*Store, error) {
	tmp := config.TempDir
	if tmp == "" {
		tmp = filepath.Join(os.TempDir(), "cryptoolstore-uploads")
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return nil, fmt.Errorf("create upload staging directory: %w", err)
	}
	return &Store{
		client:    client,
		bucket:    config.Bucket,
		keyPrefix: config.KeyPrefix,
		tempDir:   tmp,
	}, nil
}

// NewFromConfig creates a new S3 blob store by creating an S3 client from config.
func NewFromConfig(ctx context.Context, config Config) (*Store, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if config.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
		})
	}
	if config.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return New(s3.NewFromConfig(awsCfg, s3Opts...), config)
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return blobstore.ErrStoreClosed
	}
	return nil
}

// fullKey validates key and prepends the configured prefix.
func (s *Store) fullKey(key string) (string, error) {
	clean, err := blobstore.CleanKey(key)
	if err != nil {
		return "", err
	}
	return s.keyPrefix + clean, nil
}

// TempDir returns the local staging directory.
func (s *Store) TempDir() string {
	return s.tempDir
}

// Commit uploads the staged file as a single PutObject. S3 replaces the
// object atomically, so readers see either the old or the new content.
func (s *Store) Commit(ctx context.Context, key, tempPath string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	fk, err := s.fullKey(key)
	if err != nil {
		return err
	}
	s.annotate(ctx, fk)

	f, err := os.Open(tempPath)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat staged file: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(fk),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

// Open streams the object body.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	if err := s.checkOpen(); err != nil {
		return nil, 0, err
	}
	fk, err := s.fullKey(key)
	if err != nil {
		return nil, 0, err
	}
	s.annotate(ctx, fk)

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fk),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, 0, blobstore.ErrNotFound
		}
		return nil, 0, fmt.Errorf("s3 get object: %w", err)
	}
	return resp.Body, aws.ToInt64(resp.ContentLength), nil
}

// Stat returns the object size using HeadObject.
func (s *Store) Stat(ctx context.Context, key string) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	fk, err := s.fullKey(key)
	if err != nil {
		return 0, err
	}
	s.annotate(ctx, fk)

	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fk),
	})
	if err != nil {
		if isNotFoundError(err) {
			return 0, blobstore.ErrNotFound
		}
		return 0, fmt.Errorf("s3 head object: %w", err)
	}
	return aws.ToInt64(resp.ContentLength), nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	fk, err := s.fullKey(key)
	if err != nil {
		return err
	}
	s.annotate(ctx, fk)

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fk),
	})
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("s3 delete object: %w", err)
	}
	return nil
}

// annotate tags the span in ctx with the bucket and full object key.
func (s *Store) annotate(ctx context.Context, fullKey string) {
	telemetry.SetAttributes(ctx, telemetry.Bucket(s.bucket), telemetry.StorageKey(fullKey))
}

// HealthCheck verifies the S3 bucket is accessible.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("S3 health check failed: %w", err)
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// isNotFoundError checks if an error is an S3 not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}

	// HeadObject surfaces a bare 404 without a typed error.
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "NotFound") ||
		strings.Contains(errStr, "StatusCode: 404")
}

// Ensure Store implements blobstore.Store.
var _ blobstore.Store = (*Store)(nil)
