package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// ============================================
// PLUGIN OPERATIONS
// ============================================

var pluginFields = []string{
	"Name", "ShortDescription", "LongDescription",
	"Authornames", "Authorinstitutes", "Authoremails", "Icon",
}

func (s *GORMStore) CreatePlugin(ctx context.Context, p *models.Plugin) error {
	p.ID = 0
	p.Username = models.NormalizeUsername(p.Username)
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *GORMStore) UpdatePlugin(ctx context.Context, p *models.Plugin) error {
	return updateWhere[models.Plugin](s.db, ctx, p, models.ErrPluginNotFound, pluginFields, "id = ?", p.ID)
}

func (s *GORMStore) DeletePlugin(ctx context.Context, id int32) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plugin_id = ?", id).Delete(&models.Source{}).Error; err != nil {
			return err
		}
		return deleteWhere[models.Plugin](tx, ctx, models.ErrPluginNotFound, "id = ?", id)
	})
}

func (s *GORMStore) GetPlugin(ctx context.Context, id int32) (*models.Plugin, error) {
	return getWhere[models.Plugin](s.db, ctx, models.ErrPluginNotFound, "id = ?", id)
}

func (s *GORMStore) GetPlugins(ctx context.Context, username string) ([]*models.Plugin, error) {
	if username == "" {
		return listWhere[models.Plugin](s.db, ctx, "id ASC", "")
	}
	return listWhere[models.Plugin](s.db, ctx, "id ASC", "username = ?", models.NormalizeUsername(username))
}

func (s *GORMStore) GetPublishedPlugins(ctx context.Context, ps models.PublishState) ([]*models.PluginAndSource, error) {
	return s.publishedPlugins(ctx, ps, nil)
}

func (s *GORMStore) GetPublishedPlugin(ctx context.Context, id int32, ps models.PublishState) (*models.PluginAndSource, error) {
	list, err := s.publishedPlugins(ctx, ps, &id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, models.ErrPluginNotFound
	}
	return list[0], nil
}

// publishedPlugins pairs each plugin with its newest source visible at ps.
// Sources are scanned newest first per plugin, so the first one seen wins.
func (s *GORMStore) publishedPlugins(ctx context.Context, ps models.PublishState, id *int32) ([]*models.PluginAndSource, error) {
	if !ps.IsPublished() {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidPublishState, ps)
	}

	q := s.db.WithContext(ctx).
		Where("publish_state IN ?", ps.VisibleStates()).
		Order("plugin_id ASC, plugin_version DESC")
	if id != nil {
		q = q.Where("plugin_id = ?", *id)
	}

	var sources []models.Source
	if err := q.Find(&sources).Error; err != nil {
		return nil, err
	}

	newest := make(map[int32]models.Source)
	ids := make([]int32, 0)
	for _, src := range sources {
		if _, seen := newest[src.PluginID]; seen {
			continue
		}
		newest[src.PluginID] = src
		ids = append(ids, src.PluginID)
	}
	if len(ids) == 0 {
		return []*models.PluginAndSource{}, nil
	}

	var plugins []models.Plugin
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&plugins).Error; err != nil {
		return nil, err
	}

	result := make([]*models.PluginAndSource, 0, len(plugins))
	for _, p := range plugins {
		result = append(result, &models.PluginAndSource{Plugin: p, Source: newest[p.ID]})
	}
	return result, nil
}
