package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// createTestStore creates a file-backed SQLite store in a temp dir.
func createTestStore(t *testing.T) *GORMStore {
	t.Helper()
	store, err := New(&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "store.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNew(t *testing.T) {
	t.Run("default config uses sqlite", func(t *testing.T) {
		config := &Config{}
		config.ApplyDefaults()
		assert.Equal(t, DatabaseTypeSQLite, config.Type)
		assert.Contains(t, config.SQLite.Path, "cryptoolstore")
	})

	t.Run("invalid config returns error", func(t *testing.T) {
		_, err := New(&Config{Type: "invalid"})
		assert.Error(t, err)
	})

	t.Run("in-memory store", func(t *testing.T) {
		store, err := New(&Config{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: ":memory:"}})
		require.NoError(t, err)
		defer store.Close()
		assert.NoError(t, store.Healthcheck(context.Background()))
	})

	t.Run("postgres defaults", func(t *testing.T) {
		config := &Config{Type: DatabaseTypePostgres}
		config.ApplyDefaults()
		assert.Equal(t, 5432, config.Postgres.Port)
		assert.Equal(t, "disable", config.Postgres.SSLMode)
		assert.Error(t, config.Validate(), "host is required")
	})
}

func TestDeveloperOperations(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	t.Run("create lowercases username", func(t *testing.T) {
		dev := &models.Developer{Username: "Alice", Firstname: "Alice", Email: "alice@example.com"}
		require.NoError(t, store.CreateDeveloper(ctx, dev, "secret"))
		assert.Equal(t, "alice", dev.Username)
		assert.NotEqual(t, "secret", dev.PasswordHash)
	})

	t.Run("duplicate fails", func(t *testing.T) {
		err := store.CreateDeveloper(ctx, &models.Developer{Username: "ALICE"}, "other")
		assert.ErrorIs(t, err, models.ErrDuplicateDeveloper)
	})

	t.Run("empty password refused", func(t *testing.T) {
		err := store.CreateDeveloper(ctx, &models.Developer{Username: "nopw"}, "")
		assert.ErrorIs(t, err, ErrPasswordEmpty)
	})

	t.Run("check password", func(t *testing.T) {
		assert.NoError(t, store.CheckDeveloperPassword(ctx, "alice", "secret"))
		assert.NoError(t, store.CheckDeveloperPassword(ctx, "ALICE", "secret"))
		assert.ErrorIs(t, store.CheckDeveloperPassword(ctx, "alice", "wrong"), models.ErrInvalidCredentials)
		assert.ErrorIs(t, store.CheckDeveloperPassword(ctx, "nobody", "secret"), models.ErrInvalidCredentials)
	})

	t.Run("update no admin keeps flag", func(t *testing.T) {
		err := store.UpdateDeveloperNoAdmin(ctx, &models.Developer{Username: "alice", Lastname: "Liddell", IsAdmin: true})
		require.NoError(t, err)

		dev, err := store.GetDeveloper(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Liddell", dev.Lastname)
		assert.False(t, dev.IsAdmin)
		assert.Empty(t, dev.Firstname, "profile fields are replaced, not merged")
	})

	t.Run("update sets admin flag", func(t *testing.T) {
		require.NoError(t, store.UpdateDeveloper(ctx, &models.Developer{Username: "alice", IsAdmin: true}))
		dev, err := store.GetDeveloper(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, dev.IsAdmin)

		require.NoError(t, store.UpdateDeveloper(ctx, &models.Developer{Username: "alice", IsAdmin: false}))
		dev, err = store.GetDeveloper(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, dev.IsAdmin)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, store.UpdateDeveloperPassword(ctx, "alice", "newsecret"))
		assert.NoError(t, store.CheckDeveloperPassword(ctx, "alice", "newsecret"))
		assert.Error(t, store.CheckDeveloperPassword(ctx, "alice", "secret"))
	})

	t.Run("update missing", func(t *testing.T) {
		err := store.UpdateDeveloper(ctx, &models.Developer{Username: "ghost"})
		assert.ErrorIs(t, err, models.ErrDeveloperNotFound)
	})

	t.Run("list and delete", func(t *testing.T) {
		require.NoError(t, store.CreateDeveloper(ctx, &models.Developer{Username: "bob"}, "pw"))
		devs, err := store.GetDevelopers(ctx)
		require.NoError(t, err)
		require.Len(t, devs, 2)
		assert.Equal(t, "alice", devs[0].Username)

		require.NoError(t, store.DeleteDeveloper(ctx, "bob"))
		assert.ErrorIs(t, store.DeleteDeveloper(ctx, "bob"), models.ErrDeveloperNotFound)
	})
}

func TestEnsureAdminDeveloper(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	pw, err := store.EnsureAdminDeveloper(ctx, "admin", "")
	require.NoError(t, err)
	assert.NotEmpty(t, pw)
	assert.NoError(t, store.CheckDeveloperPassword(ctx, "admin", pw))

	dev, err := store.GetDeveloper(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, dev.IsAdmin)

	pw, err = store.EnsureAdminDeveloper(ctx, "admin", "ignored")
	require.NoError(t, err)
	assert.Empty(t, pw)
}

func TestPluginAndSourceOperations(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	p := &models.Plugin{Username: "Alice", Name: "Enigma", Icon: []byte{1, 2, 3}}
	require.NoError(t, store.CreatePlugin(ctx, p))
	require.NotZero(t, p.ID)
	assert.Equal(t, "alice", p.Username)

	other := &models.Plugin{Username: "bob", Name: "Caesar"}
	require.NoError(t, store.CreatePlugin(ctx, other))

	t.Run("list by owner", func(t *testing.T) {
		mine, err := store.GetPlugins(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "Enigma", mine[0].Name)

		all, err := store.GetPlugins(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("update keeps owner", func(t *testing.T) {
		require.NoError(t, store.UpdatePlugin(ctx, &models.Plugin{ID: p.ID, Username: "mallory", Name: "Enigma II"}))
		got, err := store.GetPlugin(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Enigma II", got.Name)
		assert.Equal(t, "alice", got.Username)
		assert.Empty(t, got.Icon)
	})

	t.Run("create source forces initial states", func(t *testing.T) {
		src := &models.Source{
			PluginID:      p.ID,
			PluginVersion: 1,
			PublishState:  models.PublishRelease,
			ZipFileName:   "../../etc/passwd",
		}
		require.NoError(t, store.CreateSource(ctx, src))

		got, err := store.GetSource(ctx, p.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, models.NotPublished, got.PublishState)
		assert.Equal(t, models.BuildCreated, got.BuildState)
		assert.Empty(t, got.ZipFileName)

		err = store.CreateSource(ctx, &models.Source{PluginID: p.ID, PluginVersion: 1})
		assert.ErrorIs(t, err, models.ErrDuplicateSource)

		err = store.CreateSource(ctx, &models.Source{PluginID: 9999, PluginVersion: 1})
		assert.ErrorIs(t, err, models.ErrPluginNotFound)
	})

	t.Run("upload and assembly bookkeeping", func(t *testing.T) {
		at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, store.UpdateSourceUpload(ctx, p.ID, 1, "source/Source-1-1.zip", "Uploaded by alice", at))
		require.NoError(t, store.UpdateSourceAssembly(ctx, p.ID, 1, "assemblies/Assembly-1-1.zip"))

		got, err := store.GetSource(ctx, p.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "source/Source-1-1.zip", got.ZipFileName)
		assert.Equal(t, "assemblies/Assembly-1-1.zip", got.AssemblyFileName)
		assert.Equal(t, models.BuildUploaded, got.BuildState)
		assert.Equal(t, "Uploaded by alice", got.BuildLog)
		require.NotNil(t, got.UploadDate)
		assert.True(t, at.Equal(*got.UploadDate))

		uploaded, err := store.GetSourcesByBuildState(ctx, models.BuildUploaded)
		require.NoError(t, err)
		assert.Len(t, uploaded, 1)
	})

	t.Run("update source build fields only", func(t *testing.T) {
		err := store.UpdateSource(ctx, &models.Source{
			PluginID: p.ID, PluginVersion: 1,
			BuildVersion: 7, BuildState: models.BuildSuccess, BuildLog: "ok",
			ZipFileName: "evil", PublishState: models.PublishRelease,
		})
		require.NoError(t, err)

		got, err := store.GetSource(ctx, p.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, int32(7), got.BuildVersion)
		assert.Equal(t, models.BuildSuccess, got.BuildState)
		assert.Equal(t, "source/Source-1-1.zip", got.ZipFileName)
		assert.Equal(t, models.NotPublished, got.PublishState)

		err = store.UpdateSource(ctx, &models.Source{PluginID: p.ID, PluginVersion: 42})
		assert.ErrorIs(t, err, models.ErrSourceNotFound)
	})

	t.Run("delete plugin cascades sources", func(t *testing.T) {
		require.NoError(t, store.CreateSource(ctx, &models.Source{PluginID: other.ID, PluginVersion: 1}))
		require.NoError(t, store.DeletePlugin(ctx, other.ID))

		srcs, err := store.GetSources(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, srcs)
		assert.ErrorIs(t, store.DeletePlugin(ctx, other.ID), models.ErrPluginNotFound)
	})
}

func TestPublishedPlugins(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	newPlugin := func(name string, states ...models.PublishState) int32 {
		p := &models.Plugin{Username: "alice", Name: name}
		require.NoError(t, store.CreatePlugin(ctx, p))
		for i, ps := range states {
			v := int32(i + 1)
			require.NoError(t, store.CreateSource(ctx, &models.Source{PluginID: p.ID, PluginVersion: v}))
			require.NoError(t, store.UpdateSourcePublishState(ctx, p.ID, v, ps))
		}
		return p.ID
	}

	release := newPlugin("release", models.PublishDeveloper, models.PublishRelease)
	beta := newPlugin("beta", models.PublishBeta, models.NotPublished)
	hidden := newPlugin("hidden", models.NotPublished)

	t.Run("developer sees every published tier", func(t *testing.T) {
		list, err := store.GetPublishedPlugins(ctx, models.PublishDeveloper)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, release, list[0].Plugin.ID)
		assert.Equal(t, int32(2), list[0].Source.PluginVersion)
		assert.Equal(t, beta, list[1].Plugin.ID)
		assert.Equal(t, int32(1), list[1].Source.PluginVersion, "newest visible version wins")
	})

	t.Run("release sees releases only", func(t *testing.T) {
		list, err := store.GetPublishedPlugins(ctx, models.PublishRelease)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, release, list[0].Plugin.ID)
	})

	t.Run("single plugin", func(t *testing.T) {
		ps, err := store.GetPublishedPlugin(ctx, beta, models.PublishNightly)
		require.NoError(t, err)
		assert.Equal(t, "beta", ps.Plugin.Name)

		_, err = store.GetPublishedPlugin(ctx, beta, models.PublishRelease)
		assert.ErrorIs(t, err, models.ErrPluginNotFound)

		_, err = store.GetPublishedPlugin(ctx, hidden, models.PublishDeveloper)
		assert.ErrorIs(t, err, models.ErrPluginNotFound)
	})

	t.Run("not published is not a listing tier", func(t *testing.T) {
		_, err := store.GetPublishedPlugins(ctx, models.NotPublished)
		assert.ErrorIs(t, err, models.ErrInvalidPublishState)
	})
}

func TestResourceOperations(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	r := &models.Resource{Username: "alice", Name: "wordlist", Description: "english"}
	require.NoError(t, store.CreateResource(ctx, r))
	require.NotZero(t, r.ID)

	t.Run("update", func(t *testing.T) {
		require.NoError(t, store.UpdateResource(ctx, &models.Resource{ID: r.ID, Name: "words", Username: "bob"}))
		got, err := store.GetResource(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "words", got.Name)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("data versions", func(t *testing.T) {
		require.NoError(t, store.CreateResourceData(ctx, &models.ResourceData{ResourceID: r.ID, ResourceVersion: 1}))
		require.NoError(t, store.CreateResourceData(ctx, &models.ResourceData{ResourceID: r.ID, ResourceVersion: 2}))
		assert.ErrorIs(t,
			store.CreateResourceData(ctx, &models.ResourceData{ResourceID: r.ID, ResourceVersion: 2}),
			models.ErrDuplicateResourceData)
		assert.ErrorIs(t,
			store.CreateResourceData(ctx, &models.ResourceData{ResourceID: 999, ResourceVersion: 1}),
			models.ErrResourceNotFound)

		require.NoError(t, store.UpdateResourceDataUpload(ctx, r.ID, 1, "resourcedata/ResourceData-1-1.bin", time.Now()))
		rd, err := store.GetResourceData(ctx, r.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "resourcedata/ResourceData-1-1.bin", rd.DataFilename)

		require.NoError(t, store.UpdateResourceData(ctx, &models.ResourceData{ResourceID: r.ID, ResourceVersion: 2}))

		list, err := store.GetResourceDatas(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int32(1), list[0].ResourceVersion)
	})

	t.Run("published", func(t *testing.T) {
		require.NoError(t, store.UpdateResourceDataPublishState(ctx, r.ID, 1, models.PublishBeta))

		list, err := store.GetPublishedResources(ctx, models.PublishNightly)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int32(1), list[0].ResourceData.ResourceVersion)

		_, err = store.GetPublishedResource(ctx, r.ID, models.PublishRelease)
		assert.ErrorIs(t, err, models.ErrResourceNotFound)
	})

	t.Run("delete cascades data", func(t *testing.T) {
		require.NoError(t, store.DeleteResourceData(ctx, r.ID, 2))
		assert.ErrorIs(t, store.DeleteResourceData(ctx, r.ID, 2), models.ErrResourceDataNotFound)

		require.NoError(t, store.DeleteResource(ctx, r.ID))
		list, err := store.GetResourceDatas(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestPostgresDSN(t *testing.T) {
	c := &PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "store", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=store sslmode=require", c.DSN())
}
