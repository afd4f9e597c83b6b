package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// allPlugins is the plugin ID of a source list request that selects by
// build state instead.
const allPlugins = -1

// ============================================================================
// Resolvers
// ============================================================================

// sourceTarget loads a source and the plugin that owns it.
func (s *Session) sourceTarget(ctx context.Context, pluginID, version int32) (*target, error) {
	src, err := s.deps.Store.GetSource(ctx, pluginID, version)
	if err != nil {
		return nil, err
	}
	p, err := s.deps.Store.GetPlugin(ctx, pluginID)
	if err != nil {
		return nil, err
	}
	return &target{
		owner:     p.Username,
		published: src.PublishState.IsPublished(),
		plugin:    p,
		source:    src,
	}, nil
}

// resolveRequestSourceList targets the plugin, or nobody when listing by
// build state so that only admins pass.
func (s *Session) resolveRequestSourceList(ctx context.Context, m *message.RequestSourceList) (*target, error) {
	if m.PluginID == allPlugins {
		return &target{}, nil
	}
	return s.pluginTarget(ctx, m.PluginID)
}

func (s *Session) resolveCreateNewSource(ctx context.Context, m *message.CreateNewSource) (*target, error) {
	return s.pluginTarget(ctx, m.Source.PluginID)
}

func (s *Session) resolveUpdateSource(ctx context.Context, m *message.UpdateSource) (*target, error) {
	return s.sourceTarget(ctx, m.Source.PluginID, m.Source.PluginVersion)
}

func (s *Session) resolveDeleteSource(ctx context.Context, m *message.DeleteSource) (*target, error) {
	return s.sourceTarget(ctx, m.Source.PluginID, m.Source.PluginVersion)
}

func (s *Session) resolveRequestSource(ctx context.Context, m *message.RequestSource) (*target, error) {
	return s.sourceTarget(ctx, m.PluginID, m.PluginVersion)
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Session) handleRequestSourceList(ctx context.Context, m *message.RequestSourceList, _ *target) (message.Message, error) {
	var (
		sources []*models.Source
		err     error
	)
	switch {
	case m.PluginID != allPlugins:
		sources, err = s.deps.Store.GetSources(ctx, m.PluginID)
	case m.BuildState != "":
		bs, perr := models.ParseBuildState(m.BuildState)
		if perr != nil {
			return &message.ResponseSourceList{Message: fmt.Sprintf("Invalid build state: %s", m.BuildState)}, nil
		}
		sources, err = s.deps.Store.GetSourcesByBuildState(ctx, bs)
	default:
		return &message.ResponseSourceList{Message: "No plugin or buildstate given"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	list := make([]message.Source, 0, len(sources))
	for _, src := range sources {
		list = append(list, message.FromSource(*src))
	}
	return &message.ResponseSourceList{
		AllowedToViewList: true,
		Message:           "Response source list",
		SourceList:        list,
	}, nil
}

func (s *Session) handleCreateNewSource(ctx context.Context, m *message.CreateNewSource, _ *target) (message.Message, error) {
	src := m.Source.Model()

	err := s.deps.Store.CreateSource(ctx, &src)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDuplicateSource):
		return &message.ResponseSourceModification{
			Message: fmt.Sprintf("Source %d-%d already exists", src.PluginID, src.PluginVersion),
		}, nil
	case errors.Is(err, models.ErrPluginNotFound):
		return &message.ResponseSourceModification{Message: msgPluginMissing}, nil
	default:
		return nil, fmt.Errorf("create source %d-%d: %w", src.PluginID, src.PluginVersion, err)
	}

	logger.InfoCtx(ctx, "Created source",
		logger.KeyPluginID, src.PluginID,
		logger.KeyPluginVersion, src.PluginVersion)
	return &message.ResponseSourceModification{
		ModifiedSource: true,
		Message:        fmt.Sprintf("Created new source: %d-%d", src.PluginID, src.PluginVersion),
	}, nil
}

// handleUpdateSource updates the build fields of a source.
func (s *Session) handleUpdateSource(ctx context.Context, m *message.UpdateSource, t *target) (message.Message, error) {
	src := m.Source.Model()
	src.PluginID = t.source.PluginID
	src.PluginVersion = t.source.PluginVersion
	if !src.BuildState.Valid() {
		return &message.ResponseSourceModification{Message: fmt.Sprintf("Invalid build state: %d", uint32(src.BuildState))}, nil
	}

	err := s.deps.Store.UpdateSource(ctx, &src)
	if errors.Is(err, models.ErrSourceNotFound) {
		return &message.ResponseSourceModification{Message: msgSourceMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update source %d-%d: %w", src.PluginID, src.PluginVersion, err)
	}

	logger.InfoCtx(ctx, "Updated source",
		logger.KeyPluginID, src.PluginID,
		logger.KeyPluginVersion, src.PluginVersion,
		logger.KeyBuildState, src.BuildState.String())
	return &message.ResponseSourceModification{
		ModifiedSource: true,
		Message:        fmt.Sprintf("Updated source: %d-%d", src.PluginID, src.PluginVersion),
	}, nil
}

// handleDeleteSource removes a source and its zip and assembly files.
func (s *Session) handleDeleteSource(ctx context.Context, _ *message.DeleteSource, t *target) (message.Message, error) {
	src := t.source

	err := s.deps.Store.DeleteSource(ctx, src.PluginID, src.PluginVersion)
	if errors.Is(err, models.ErrSourceNotFound) {
		return &message.ResponseSourceModification{Message: msgSourceMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete source %d-%d: %w", src.PluginID, src.PluginVersion, err)
	}
	s.deleteSourceBlobs(ctx, src)

	logger.InfoCtx(ctx, "Deleted source",
		logger.KeyPluginID, src.PluginID,
		logger.KeyPluginVersion, src.PluginVersion)
	return &message.ResponseSourceModification{
		ModifiedSource: true,
		Message:        fmt.Sprintf("Deleted source: %d-%d", src.PluginID, src.PluginVersion),
	}, nil
}

func (s *Session) handleRequestSource(_ context.Context, _ *message.RequestSource, t *target) (message.Message, error) {
	return &message.ResponseSource{
		SourceExists: true,
		Message:      "Source exists",
		Source:       message.FromSource(*t.source),
	}, nil
}

func (s *Session) handleUpdateSourcePublishState(ctx context.Context, m *message.UpdateSourcePublishState, _ *target) (message.Message, error) {
	pid, ver, ps := m.Source.PluginID, m.Source.PluginVersion, m.Source.PublishState
	if !ps.Valid() {
		return &message.ResponseSourceModification{Message: fmt.Sprintf("Invalid publish state: %d", uint32(ps))}, nil
	}

	err := s.deps.Store.UpdateSourcePublishState(ctx, pid, ver, ps)
	if errors.Is(err, models.ErrSourceNotFound) {
		return &message.ResponseSourceModification{Message: msgSourceMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update publish state of source %d-%d: %w", pid, ver, err)
	}

	logger.InfoCtx(ctx, "Updated source publish state",
		logger.KeyPluginID, pid,
		logger.KeyPluginVersion, ver,
		logger.KeyPublishState, ps.String())
	return &message.ResponseSourceModification{
		ModifiedSource: true,
		Message:        fmt.Sprintf("Updated publish state of source %d-%d to %s", pid, ver, ps),
	}, nil
}
