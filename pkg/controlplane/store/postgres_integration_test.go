//go:build integration

package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// createPostgresStore starts a throwaway PostgreSQL container and opens a
// store on it.
func createPostgresStore(t *testing.T) *GORMStore {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("cryptoolstore"),
		postgres.WithUsername("cryptoolstore"),
		postgres.WithPassword("cryptoolstore"),
		testcontainers.WithWaitStrategyAndDeadline(2*time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	store, err := New(&Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:     host,
			Port:     portNum,
			Database: "cryptoolstore",
			User:     "cryptoolstore",
			Password: "cryptoolstore",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPostgresStore(t *testing.T) {
	store := createPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, store.Healthcheck(ctx))
	require.NoError(t, store.CreateDeveloper(ctx, &models.Developer{Username: "alice"}, "secret"))
	assert.ErrorIs(t, store.CreateDeveloper(ctx, &models.Developer{Username: "alice"}, "x"), models.ErrDuplicateDeveloper)
	assert.NoError(t, store.CheckDeveloperPassword(ctx, "alice", "secret"))

	p := &models.Plugin{Username: "alice", Name: "Enigma"}
	require.NoError(t, store.CreatePlugin(ctx, p))
	require.NoError(t, store.CreateSource(ctx, &models.Source{PluginID: p.ID, PluginVersion: 1}))
	require.NoError(t, store.UpdateSourcePublishState(ctx, p.ID, 1, models.PublishRelease))

	list, err := store.GetPublishedPlugins(ctx, models.PublishBeta)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Enigma", list[0].Plugin.Name)

	require.NoError(t, store.DeletePlugin(ctx, p.ID))
	_, err = store.GetSource(ctx, p.ID, 1)
	assert.ErrorIs(t, err, models.ErrSourceNotFound)
}
