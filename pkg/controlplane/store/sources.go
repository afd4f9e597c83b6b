package store

import (
	"context"
	"time"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// ============================================
// SOURCE OPERATIONS
// ============================================

const sourceKey = "plugin_id = ? AND plugin_version = ?"

func (s *GORMStore) CreateSource(ctx context.Context, src *models.Source) error {
	if _, err := s.GetPlugin(ctx, src.PluginID); err != nil {
		return err
	}

	src.ZipFileName = ""
	src.AssemblyFileName = ""
	src.BuildState = models.BuildCreated
	src.PublishState = models.NotPublished
	src.UploadDate = nil
	src.BuildDate = nil

	return create(s.db, ctx, src, models.ErrDuplicateSource)
}

func (s *GORMStore) UpdateSource(ctx context.Context, src *models.Source) error {
	if !src.BuildState.Valid() {
		return models.ErrInvalidBuildState
	}
	return updateWhere[models.Source](s.db, ctx, src, models.ErrSourceNotFound,
		[]string{"BuildVersion", "BuildState", "BuildLog", "BuildDate"},
		sourceKey, src.PluginID, src.PluginVersion)
}

func (s *GORMStore) UpdateSourceUpload(ctx context.Context, pluginID, version int32, zipFileName, buildLog string, at time.Time) error {
	values := map[string]any{
		"zip_file_name": zipFileName,
		"build_state":   models.BuildUploaded,
		"build_log":     buildLog,
		"upload_date":   at,
	}
	return updateWhere[models.Source](s.db, ctx, values, models.ErrSourceNotFound,
		[]string{"zip_file_name", "build_state", "build_log", "upload_date"},
		sourceKey, pluginID, version)
}

func (s *GORMStore) UpdateSourceAssembly(ctx context.Context, pluginID, version int32, assemblyFileName string) error {
	return updateWhere[models.Source](s.db, ctx, map[string]any{"assembly_file_name": assemblyFileName},
		models.ErrSourceNotFound, []string{"assembly_file_name"},
		sourceKey, pluginID, version)
}

func (s *GORMStore) UpdateSourcePublishState(ctx context.Context, pluginID, version int32, ps models.PublishState) error {
	if !ps.Valid() {
		return models.ErrInvalidPublishState
	}
	return updateWhere[models.Source](s.db, ctx, map[string]any{"publish_state": ps},
		models.ErrSourceNotFound, []string{"publish_state"},
		sourceKey, pluginID, version)
}

func (s *GORMStore) DeleteSource(ctx context.Context, pluginID, version int32) error {
	return deleteWhere[models.Source](s.db, ctx, models.ErrSourceNotFound, sourceKey, pluginID, version)
}

func (s *GORMStore) GetSource(ctx context.Context, pluginID, version int32) (*models.Source, error) {
	return getWhere[models.Source](s.db, ctx, models.ErrSourceNotFound, sourceKey, pluginID, version)
}

func (s *GORMStore) GetSources(ctx context.Context, pluginID int32) ([]*models.Source, error) {
	return listWhere[models.Source](s.db, ctx, "plugin_version ASC", "plugin_id = ?", pluginID)
}

func (s *GORMStore) GetSourcesByBuildState(ctx context.Context, bs models.BuildState) ([]*models.Source, error) {
	if !bs.Valid() {
		return nil, models.ErrInvalidBuildState
	}
	return listWhere[models.Source](s.db, ctx, "plugin_id ASC, plugin_version ASC", "build_state = ?", bs)
}
