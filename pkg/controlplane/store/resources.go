package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// ============================================
// RESOURCE OPERATIONS
// ============================================

func (s *GORMStore) CreateResource(ctx context.Context, r *models.Resource) error {
	r.ID = 0
	r.Username = models.NormalizeUsername(r.Username)
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GORMStore) UpdateResource(ctx context.Context, r *models.Resource) error {
	return updateWhere[models.Resource](s.db, ctx, r, models.ErrResourceNotFound,
		[]string{"Name", "Description"}, "id = ?", r.ID)
}

func (s *GORMStore) DeleteResource(ctx context.Context, id int32) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ?", id).Delete(&models.ResourceData{}).Error; err != nil {
			return err
		}
		return deleteWhere[models.Resource](tx, ctx, models.ErrResourceNotFound, "id = ?", id)
	})
}

func (s *GORMStore) GetResource(ctx context.Context, id int32) (*models.Resource, error) {
	return getWhere[models.Resource](s.db, ctx, models.ErrResourceNotFound, "id = ?", id)
}

func (s *GORMStore) GetResources(ctx context.Context, username string) ([]*models.Resource, error) {
	if username == "" {
		return listWhere[models.Resource](s.db, ctx, "id ASC", "")
	}
	return listWhere[models.Resource](s.db, ctx, "id ASC", "username = ?", models.NormalizeUsername(username))
}

func (s *GORMStore) GetPublishedResources(ctx context.Context, ps models.PublishState) ([]*models.ResourceAndResourceData, error) {
	return s.publishedResources(ctx, ps, nil)
}

func (s *GORMStore) GetPublishedResource(ctx context.Context, id int32, ps models.PublishState) (*models.ResourceAndResourceData, error) {
	list, err := s.publishedResources(ctx, ps, &id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, models.ErrResourceNotFound
	}
	return list[0], nil
}

// publishedResources pairs each resource with its newest data version
// visible at ps.
func (s *GORMStore) publishedResources(ctx context.Context, ps models.PublishState, id *int32) ([]*models.ResourceAndResourceData, error) {
	if !ps.IsPublished() {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidPublishState, ps)
	}

	q := s.db.WithContext(ctx).
		Where("publish_state IN ?", ps.VisibleStates()).
		Order("resource_id ASC, resource_version DESC")
	if id != nil {
		q = q.Where("resource_id = ?", *id)
	}

	var datas []models.ResourceData
	if err := q.Find(&datas).Error; err != nil {
		return nil, err
	}

	newest := make(map[int32]models.ResourceData)
	ids := make([]int32, 0)
	for _, rd := range datas {
		if _, seen := newest[rd.ResourceID]; seen {
			continue
		}
		newest[rd.ResourceID] = rd
		ids = append(ids, rd.ResourceID)
	}
	if len(ids) == 0 {
		return []*models.ResourceAndResourceData{}, nil
	}

	var resources []models.Resource
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&resources).Error; err != nil {
		return nil, err
	}

	result := make([]*models.ResourceAndResourceData, 0, len(resources))
	for _, r := range resources {
		result = append(result, &models.ResourceAndResourceData{Resource: r, ResourceData: newest[r.ID]})
	}
	return result, nil
}

// ============================================
// RESOURCE DATA OPERATIONS
// ============================================

const resourceDataKey = "resource_id = ? AND resource_version = ?"

func (s *GORMStore) CreateResourceData(ctx context.Context, rd *models.ResourceData) error {
	if _, err := s.GetResource(ctx, rd.ResourceID); err != nil {
		return err
	}

	now := time.Now()
	rd.DataFilename = ""
	rd.UploadDate = &now
	rd.PublishState = models.NotPublished

	return create(s.db, ctx, rd, models.ErrDuplicateResourceData)
}

func (s *GORMStore) UpdateResourceData(ctx context.Context, rd *models.ResourceData) error {
	return updateWhere[models.ResourceData](s.db, ctx, map[string]any{"upload_date": time.Now()},
		models.ErrResourceDataNotFound, []string{"upload_date"},
		resourceDataKey, rd.ResourceID, rd.ResourceVersion)
}

func (s *GORMStore) UpdateResourceDataUpload(ctx context.Context, resourceID, version int32, dataFilename string, at time.Time) error {
	values := map[string]any{"data_filename": dataFilename, "upload_date": at}
	return updateWhere[models.ResourceData](s.db, ctx, values, models.ErrResourceDataNotFound,
		[]string{"data_filename", "upload_date"},
		resourceDataKey, resourceID, version)
}

func (s *GORMStore) UpdateResourceDataPublishState(ctx context.Context, resourceID, version int32, ps models.PublishState) error {
	if !ps.Valid() {
		return models.ErrInvalidPublishState
	}
	return updateWhere[models.ResourceData](s.db, ctx, map[string]any{"publish_state": ps},
		models.ErrResourceDataNotFound, []string{"publish_state"},
		resourceDataKey, resourceID, version)
}

func (s *GORMStore) DeleteResourceData(ctx context.Context, resourceID, version int32) error {
	return deleteWhere[models.ResourceData](s.db, ctx, models.ErrResourceDataNotFound, resourceDataKey, resourceID, version)
}

func (s *GORMStore) GetResourceData(ctx context.Context, resourceID, version int32) (*models.ResourceData, error) {
	return getWhere[models.ResourceData](s.db, ctx, models.ErrResourceDataNotFound, resourceDataKey, resourceID, version)
}

func (s *GORMStore) GetResourceDatas(ctx context.Context, resourceID int32) ([]*models.ResourceData, error) {
	return listWhere[models.ResourceData](s.db, ctx, "resource_version ASC", "resource_id = ?", resourceID)
}
