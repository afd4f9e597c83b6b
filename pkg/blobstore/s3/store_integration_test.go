//go:build integration

package s3_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	s3store "github.com/marmos91/cryptoolstore/pkg/blobstore/s3"
)

// startLocalstack returns an S3 endpoint, either from LOCALSTACK_ENDPOINT or
// from a fresh container.
func startLocalstack(t *testing.T) string {
	t.Helper()
	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		return endpoint
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "localstack/localstack:3.0",
			ExposedPorts: []string{"4566/tcp"},
			Env: map[string]string{
				"SERVICES":              "s3",
				"DEFAULT_REGION":        "us-east-1",
				"EAGER_SERVICE_LOADING": "1",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("4566/tcp"),
				wait.ForHTTP("/_localstack/health").
					WithPort("4566/tcp").
					WithStartupTimeout(60*time.Second),
			),
		},
		Started: true,
	})
	require.NoError(t, err, "start localstack")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4566")
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func newStore(t *testing.T) *s3store.Store {
	t.Helper()
	ctx := context.Background()
	endpoint := startLocalstack(t)

	cfg := s3store.Config{
		Bucket:          "cryptoolstore-test",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		KeyPrefix:       "it/",
		ForcePathStyle:  true,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		TempDir:         t.TempDir(),
	}
	store, err := s3store.NewFromConfig(ctx, cfg)
	require.NoError(t, err)

	// The bucket is created out of band since the store never creates one.
	client := awss3.New(awss3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test", "test", ""),
	})
	_, _ = client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)})

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.HealthCheck(ctx))

	key := blobstore.SourceKey(7, 2)
	tmp := filepath.Join(store.TempDir(), "upload")
	require.NoError(t, os.WriteFile(tmp, []byte("zip bytes"), 0o644))

	require.NoError(t, store.Commit(ctx, key, tmp))

	size, err := store.Stat(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 9, size)

	rc, n, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.EqualValues(t, 9, n)
	assert.Equal(t, "zip bytes", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Stat(ctx, key)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, _, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.NoError(t, store.Delete(ctx, key))
}
