// Package store provides the persistence layer of the plugin store.
//
// It manages developer accounts, plugins with their versioned sources, and
// resources with their versioned data. Blob contents (source zips,
// assemblies, resource data files) live in a blobstore; rows here only
// record their canonical names.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL
package store

import (
	"context"
	"time"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// DeveloperStore manages developer accounts.
type DeveloperStore interface {
	// CheckDeveloperPassword verifies a username/password pair.
	// Returns models.ErrInvalidCredentials for an unknown user or a wrong
	// password; the two cases are indistinguishable to the caller.
	CheckDeveloperPassword(ctx context.Context, username, password string) error

	// GetDeveloper returns a developer by username.
	// Returns models.ErrDeveloperNotFound if the developer doesn't exist.
	GetDeveloper(ctx context.Context, username string) (*models.Developer, error)

	// GetDevelopers returns all developers ordered by username.
	GetDevelopers(ctx context.Context) ([]*models.Developer, error)

	// CreateDeveloper stores a new developer with a bcrypt hash of password.
	// Returns models.ErrDuplicateDeveloper if the username is taken.
	CreateDeveloper(ctx context.Context, dev *models.Developer, password string) error

	// UpdateDeveloper updates profile fields and the admin flag.
	// Returns models.ErrDeveloperNotFound if the developer doesn't exist.
	UpdateDeveloper(ctx context.Context, dev *models.Developer) error

	// UpdateDeveloperNoAdmin updates profile fields, leaving the admin flag
	// untouched.
	UpdateDeveloperNoAdmin(ctx context.Context, dev *models.Developer) error

	// UpdateDeveloperPassword replaces the password hash.
	UpdateDeveloperPassword(ctx context.Context, username, password string) error

	// DeleteDeveloper removes a developer.
	// Returns models.ErrDeveloperNotFound if the developer doesn't exist.
	DeleteDeveloper(ctx context.Context, username string) error

	// EnsureAdminDeveloper creates an admin account named username if it
	// does not exist yet. An empty password is replaced by a generated one.
	// Returns the password that was set, or "" if the account already
	// existed.
	EnsureAdminDeveloper(ctx context.Context, username, password string) (string, error)
}

// PluginStore manages plugins and their published views.
type PluginStore interface {
	// CreatePlugin stores p and sets its generated ID.
	CreatePlugin(ctx context.Context, p *models.Plugin) error

	// UpdatePlugin updates the descriptive fields and icon. The owner is
	// never changed.
	UpdatePlugin(ctx context.Context, p *models.Plugin) error

	// DeletePlugin removes a plugin and all of its sources.
	DeletePlugin(ctx context.Context, id int32) error

	// GetPlugin returns a plugin by ID.
	// Returns models.ErrPluginNotFound if it doesn't exist.
	GetPlugin(ctx context.Context, id int32) (*models.Plugin, error)

	// GetPlugins returns the plugins owned by username, or all plugins when
	// username is empty.
	GetPlugins(ctx context.Context, username string) ([]*models.Plugin, error)

	// GetPublishedPlugins returns every plugin that has a source visible at
	// ps, paired with its newest such source.
	GetPublishedPlugins(ctx context.Context, ps models.PublishState) ([]*models.PluginAndSource, error)

	// GetPublishedPlugin is GetPublishedPlugins restricted to one plugin.
	// Returns models.ErrPluginNotFound if no visible source exists.
	GetPublishedPlugin(ctx context.Context, id int32, ps models.PublishState) (*models.PluginAndSource, error)
}

// SourceStore manages plugin sources.
type SourceStore interface {
	// CreateSource stores a new source in state CREATED and NOTPUBLISHED.
	// Returns models.ErrPluginNotFound if the plugin doesn't exist and
	// models.ErrDuplicateSource if the version is taken.
	CreateSource(ctx context.Context, s *models.Source) error

	// UpdateSource updates the build fields (version, state, log, date).
	UpdateSource(ctx context.Context, s *models.Source) error

	// UpdateSourceUpload records a committed source zip: file name, state
	// UPLOADED, build log and upload date.
	UpdateSourceUpload(ctx context.Context, pluginID, version int32, zipFileName, buildLog string, at time.Time) error

	// UpdateSourceAssembly records a committed assembly zip.
	UpdateSourceAssembly(ctx context.Context, pluginID, version int32, assemblyFileName string) error

	// UpdateSourcePublishState changes the visibility of a source.
	UpdateSourcePublishState(ctx context.Context, pluginID, version int32, ps models.PublishState) error

	// DeleteSource removes a source.
	DeleteSource(ctx context.Context, pluginID, version int32) error

	// GetSource returns one source.
	// Returns models.ErrSourceNotFound if it doesn't exist.
	GetSource(ctx context.Context, pluginID, version int32) (*models.Source, error)

	// GetSources returns the sources of a plugin ordered by version.
	GetSources(ctx context.Context, pluginID int32) ([]*models.Source, error)

	// GetSourcesByBuildState returns all sources in state bs.
	GetSourcesByBuildState(ctx context.Context, bs models.BuildState) ([]*models.Source, error)
}

// ResourceStore manages resources and their published views.
type ResourceStore interface {
	CreateResource(ctx context.Context, r *models.Resource) error
	UpdateResource(ctx context.Context, r *models.Resource) error

	// DeleteResource removes a resource and all of its data versions.
	DeleteResource(ctx context.Context, id int32) error

	// GetResource returns a resource by ID.
	// Returns models.ErrResourceNotFound if it doesn't exist.
	GetResource(ctx context.Context, id int32) (*models.Resource, error)

	// GetResources returns the resources owned by username, or all when
	// username is empty.
	GetResources(ctx context.Context, username string) ([]*models.Resource, error)

	GetPublishedResources(ctx context.Context, ps models.PublishState) ([]*models.ResourceAndResourceData, error)

	// Returns models.ErrResourceNotFound if no visible data version exists.
	GetPublishedResource(ctx context.Context, id int32, ps models.PublishState) (*models.ResourceAndResourceData, error)
}

// ResourceDataStore manages resource data versions.
type ResourceDataStore interface {
	// CreateResourceData stores a new NOTPUBLISHED data version.
	// Returns models.ErrResourceNotFound if the resource doesn't exist and
	// models.ErrDuplicateResourceData if the version is taken.
	CreateResourceData(ctx context.Context, rd *models.ResourceData) error

	// UpdateResourceData refreshes the upload date of a data version.
	UpdateResourceData(ctx context.Context, rd *models.ResourceData) error

	// UpdateResourceDataUpload records a committed data file.
	UpdateResourceDataUpload(ctx context.Context, resourceID, version int32, dataFilename string, at time.Time) error

	UpdateResourceDataPublishState(ctx context.Context, resourceID, version int32, ps models.PublishState) error
	DeleteResourceData(ctx context.Context, resourceID, version int32) error

	// GetResourceData returns one data version.
	// Returns models.ErrResourceDataNotFound if it doesn't exist.
	GetResourceData(ctx context.Context, resourceID, version int32) (*models.ResourceData, error)

	// GetResourceDatas returns the data versions of a resource ordered by
	// version.
	GetResourceDatas(ctx context.Context, resourceID int32) ([]*models.ResourceData, error)
}

// Store is the full persistence interface.
//
// Thread Safety: Implementations must be safe for concurrent use from multiple
// goroutines.
type Store interface {
	DeveloperStore
	PluginStore
	SourceStore
	ResourceStore
	ResourceDataStore

	// Healthcheck verifies the database is reachable.
	Healthcheck(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}
