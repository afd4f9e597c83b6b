package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// ============================================================================
// Resolvers
// ============================================================================

func (s *Session) pluginTarget(ctx context.Context, id int32) (*target, error) {
	p, err := s.deps.Store.GetPlugin(ctx, id)
	if err != nil {
		return nil, err
	}
	return &target{owner: p.Username, plugin: p}, nil
}

func (s *Session) resolveUpdatePlugin(ctx context.Context, m *message.UpdatePlugin) (*target, error) {
	return s.pluginTarget(ctx, m.Plugin.ID)
}

func (s *Session) resolveDeletePlugin(ctx context.Context, m *message.DeletePlugin) (*target, error) {
	return s.pluginTarget(ctx, m.Plugin.ID)
}

func (s *Session) resolveRequestPlugin(ctx context.Context, m *message.RequestPlugin) (*target, error) {
	return s.pluginTarget(ctx, m.ID)
}

// ============================================================================
// Handlers
// ============================================================================

// handleRequestPluginList lists plugins. Developers only see their own;
// admins may name an owner or pass "*" for all plugins.
func (s *Session) handleRequestPluginList(ctx context.Context, m *message.RequestPluginList, _ *target) (message.Message, error) {
	username := models.NormalizeUsername(m.Username)
	switch {
	case !s.admin:
		username = s.username
	case username == "*":
		username = ""
	}

	plugins, err := s.deps.Store.GetPlugins(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list plugins of %q: %w", username, err)
	}

	list := make([]message.Plugin, 0, len(plugins))
	for _, p := range plugins {
		list = append(list, message.FromPlugin(*p))
	}
	return &message.ResponsePluginList{
		AllowedToViewList: true,
		Message:           "Response plugin list",
		Plugins:           list,
	}, nil
}

func (s *Session) handleCreateNewPlugin(ctx context.Context, m *message.CreateNewPlugin, _ *target) (message.Message, error) {
	if len(m.Plugin.Icon) > s.cfg.MaxIconSize {
		return &message.ResponsePluginModification{Message: s.iconTooLarge()}, nil
	}

	p := m.Plugin.Model()
	p.ID = 0
	p.Username = s.username
	if err := s.deps.Store.CreatePlugin(ctx, &p); err != nil {
		return nil, fmt.Errorf("create plugin: %w", err)
	}

	logger.InfoCtx(ctx, "Created plugin", logger.KeyPluginID, p.ID)
	return &message.ResponsePluginModification{
		ModifiedPlugin: true,
		Message:        fmt.Sprintf("Created new plugin: %d", p.ID),
	}, nil
}

// handleUpdatePlugin updates the descriptive fields. The owner never
// changes.
func (s *Session) handleUpdatePlugin(ctx context.Context, m *message.UpdatePlugin, t *target) (message.Message, error) {
	if len(m.Plugin.Icon) > s.cfg.MaxIconSize {
		return &message.ResponsePluginModification{Message: s.iconTooLarge()}, nil
	}

	p := m.Plugin.Model()
	p.Username = t.plugin.Username
	err := s.deps.Store.UpdatePlugin(ctx, &p)
	if errors.Is(err, models.ErrPluginNotFound) {
		return &message.ResponsePluginModification{Message: msgPluginMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update plugin %d: %w", p.ID, err)
	}

	logger.InfoCtx(ctx, "Updated plugin", logger.KeyPluginID, p.ID)
	return &message.ResponsePluginModification{
		ModifiedPlugin: true,
		Message:        fmt.Sprintf("Updated plugin: %d", p.ID),
	}, nil
}

// handleDeletePlugin removes a plugin with all of its sources and their
// files.
func (s *Session) handleDeletePlugin(ctx context.Context, _ *message.DeletePlugin, t *target) (message.Message, error) {
	id := t.plugin.ID

	sources, err := s.deps.Store.GetSources(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list sources of plugin %d: %w", id, err)
	}

	err = s.deps.Store.DeletePlugin(ctx, id)
	if errors.Is(err, models.ErrPluginNotFound) {
		return &message.ResponsePluginModification{Message: msgPluginMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete plugin %d: %w", id, err)
	}

	for _, src := range sources {
		s.deleteSourceBlobs(ctx, src)
	}

	logger.InfoCtx(ctx, "Deleted plugin", logger.KeyPluginID, id, "sources", len(sources))
	return &message.ResponsePluginModification{
		ModifiedPlugin: true,
		Message:        fmt.Sprintf("Deleted plugin: %d", id),
	}, nil
}

func (s *Session) handleRequestPlugin(_ context.Context, _ *message.RequestPlugin, t *target) (message.Message, error) {
	return &message.ResponsePlugin{
		PluginExists: true,
		Message:      "Plugin exists",
		Plugin:       message.FromPlugin(*t.plugin),
	}, nil
}

func (s *Session) handleRequestPublishedPluginList(ctx context.Context, m *message.RequestPublishedPluginList, _ *target) (message.Message, error) {
	if !m.PublishState.IsPublished() {
		return &message.ResponsePublishedPluginList{Message: msgNotAuthorized}, nil
	}

	rows, err := s.deps.Store.GetPublishedPlugins(ctx, m.PublishState)
	if err != nil {
		return nil, fmt.Errorf("list published plugins at %s: %w", m.PublishState, err)
	}

	list := make([]message.PluginAndSource, 0, len(rows))
	for _, row := range rows {
		row.FileSize = s.blobSize(ctx, row.Source.AssemblyFileName, blobstore.AssemblyKey(row.Source.PluginID, row.Source.PluginVersion))
		list = append(list, message.FromPluginAndSource(*row))
	}
	return &message.ResponsePublishedPluginList{
		AllowedToViewList: true,
		Message:           "Response published plugin list",
		PluginsAndSources: list,
	}, nil
}

func (s *Session) handleRequestPublishedPlugin(ctx context.Context, m *message.RequestPublishedPlugin, _ *target) (message.Message, error) {
	if !m.PublishState.IsPublished() {
		return &message.ResponsePublishedPlugin{Message: msgNotAuthorized}, nil
	}

	row, err := s.deps.Store.GetPublishedPlugin(ctx, m.ID, m.PublishState)
	if errors.Is(err, models.ErrPluginNotFound) {
		return &message.ResponsePublishedPlugin{Message: msgPluginMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get published plugin %d at %s: %w", m.ID, m.PublishState, err)
	}

	row.FileSize = s.blobSize(ctx, row.Source.AssemblyFileName, blobstore.AssemblyKey(row.Source.PluginID, row.Source.PluginVersion))
	return &message.ResponsePublishedPlugin{
		PluginAndSourceExists: true,
		Message:               "Published plugin exists",
		PluginAndSource:       message.FromPluginAndSource(*row),
	}, nil
}

func (s *Session) iconTooLarge() string {
	return fmt.Sprintf("Icon file size > %d byte not allowed!", s.cfg.MaxIconSize)
}

// blobSize returns the size of the blob at key, or 0 when no file has
// been recorded or the blob is missing.
func (s *Session) blobSize(ctx context.Context, recorded, key string) int64 {
	if recorded == "" {
		return 0
	}
	size, err := s.deps.Blobs.Stat(ctx, key)
	if err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			logger.WarnCtx(ctx, "Failed to stat blob", logger.KeyKey, key, logger.Err(err))
		}
		return 0
	}
	return size
}

// deleteBlob removes a blob after its row is gone. Failures leave an
// orphan file and are only logged.
func (s *Session) deleteBlob(ctx context.Context, key string) {
	if err := s.deps.Blobs.Delete(ctx, key); err != nil {
		logger.WarnCtx(ctx, "Failed to delete blob", logger.KeyKey, key, logger.Err(err))
	}
}

func (s *Session) deleteSourceBlobs(ctx context.Context, src *models.Source) {
	s.deleteBlob(ctx, blobstore.SourceKey(src.PluginID, src.PluginVersion))
	s.deleteBlob(ctx, blobstore.AssemblyKey(src.PluginID, src.PluginVersion))
}
