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

// resourceDataTarget loads a data version and the resource that owns it.
func (s *Session) resourceDataTarget(ctx context.Context, resourceID, version int32) (*target, error) {
	rd, err := s.deps.Store.GetResourceData(ctx, resourceID, version)
	if err != nil {
		return nil, err
	}
	r, err := s.deps.Store.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return &target{
		owner:        r.Username,
		published:    rd.PublishState.IsPublished(),
		resource:     r,
		resourceData: rd,
	}, nil
}

func (s *Session) resolveRequestResourceDataList(ctx context.Context, m *message.RequestResourceDataList) (*target, error) {
	return s.resourceTarget(ctx, m.ResourceID)
}

func (s *Session) resolveCreateNewResourceData(ctx context.Context, m *message.CreateNewResourceData) (*target, error) {
	return s.resourceTarget(ctx, m.ResourceData.ResourceID)
}

func (s *Session) resolveUpdateResourceData(ctx context.Context, m *message.UpdateResourceData) (*target, error) {
	return s.resourceDataTarget(ctx, m.ResourceData.ResourceID, m.ResourceData.ResourceVersion)
}

func (s *Session) resolveDeleteResourceData(ctx context.Context, m *message.DeleteResourceData) (*target, error) {
	return s.resourceDataTarget(ctx, m.ResourceData.ResourceID, m.ResourceData.ResourceVersion)
}

func (s *Session) resolveRequestResourceData(ctx context.Context, m *message.RequestResourceData) (*target, error) {
	return s.resourceDataTarget(ctx, m.ResourceID, m.ResourceVersion)
}

func (s *Session) handleRequestResourceDataList(ctx context.Context, _ *message.RequestResourceDataList, t *target) (message.Message, error) {
	datas, err := s.deps.Store.GetResourceDatas(ctx, t.resource.ID)
	if err != nil {
		return nil, fmt.Errorf("list data of resource %d: %w", t.resource.ID, err)
	}

	list := make([]message.ResourceData, 0, len(datas))
	for _, rd := range datas {
		list = append(list, message.FromResourceData(*rd))
	}
	return &message.ResponseResourceDataList{
		AllowedToViewList: true,
		Message:           "Response resource data list",
		ResourceDataList:  list,
	}, nil
}

func (s *Session) handleCreateNewResourceData(ctx context.Context, m *message.CreateNewResourceData, _ *target) (message.Message, error) {
	rd := m.ResourceData.Model()

	err := s.deps.Store.CreateResourceData(ctx, &rd)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDuplicateResourceData):
		return &message.ResponseResourceDataModification{
			Message: fmt.Sprintf("Resource data %d-%d already exists", rd.ResourceID, rd.ResourceVersion),
		}, nil
	case errors.Is(err, models.ErrResourceNotFound):
		return &message.ResponseResourceDataModification{Message: msgResourceMissing}, nil
	default:
		return nil, fmt.Errorf("create resource data %d-%d: %w", rd.ResourceID, rd.ResourceVersion, err)
	}

	logger.InfoCtx(ctx, "Created resource data",
		logger.KeyResourceID, rd.ResourceID,
		logger.KeyResourceVersion, rd.ResourceVersion)
	return &message.ResponseResourceDataModification{
		ModifiedResourceData: true,
		Message:              fmt.Sprintf("Created new resource data: %d-%d", rd.ResourceID, rd.ResourceVersion),
	}, nil
}

func (s *Session) handleUpdateResourceData(ctx context.Context, m *message.UpdateResourceData, t *target) (message.Message, error) {
	rd := m.ResourceData.Model()
	rd.ResourceID = t.resourceData.ResourceID
	rd.ResourceVersion = t.resourceData.ResourceVersion

	err := s.deps.Store.UpdateResourceData(ctx, &rd)
	if errors.Is(err, models.ErrResourceDataNotFound) {
		return &message.ResponseResourceDataModification{Message: msgResourceDataMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update resource data %d-%d: %w", rd.ResourceID, rd.ResourceVersion, err)
	}

	logger.InfoCtx(ctx, "Updated resource data",
		logger.KeyResourceID, rd.ResourceID,
		logger.KeyResourceVersion, rd.ResourceVersion)
	return &message.ResponseResourceDataModification{
		ModifiedResourceData: true,
		Message:              fmt.Sprintf("Updated resource data: %d-%d", rd.ResourceID, rd.ResourceVersion),
	}, nil
}

// handleDeleteResourceData removes a data version and its file.
func (s *Session) handleDeleteResourceData(ctx context.Context, _ *message.DeleteResourceData, t *target) (message.Message, error) {
	rd := t.resourceData

	err := s.deps.Store.DeleteResourceData(ctx, rd.ResourceID, rd.ResourceVersion)
	if errors.Is(err, models.ErrResourceDataNotFound) {
		return &message.ResponseResourceDataModification{Message: msgResourceDataMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete resource data %d-%d: %w", rd.ResourceID, rd.ResourceVersion, err)
	}
	s.deleteBlob(ctx, blobstore.ResourceDataKey(rd.ResourceID, rd.ResourceVersion))

	logger.InfoCtx(ctx, "Deleted resource data",
		logger.KeyResourceID, rd.ResourceID,
		logger.KeyResourceVersion, rd.ResourceVersion)
	return &message.ResponseResourceDataModification{
		ModifiedResourceData: true,
		Message:              fmt.Sprintf("Deleted resource data: %d-%d", rd.ResourceID, rd.ResourceVersion),
	}, nil
}

func (s *Session) handleRequestResourceData(_ context.Context, _ *message.RequestResourceData, t *target) (message.Message, error) {
	return &message.ResponseResourceData{
		ResourceDataExists: true,
		Message:            "Resource data exists",
		ResourceData:       message.FromResourceData(*t.resourceData),
	}, nil
}

func (s *Session) handleUpdateResourceDataPublishState(ctx context.Context, m *message.UpdateResourceDataPublishState, _ *target) (message.Message, error) {
	rid, ver, ps := m.ResourceData.ResourceID, m.ResourceData.ResourceVersion, m.ResourceData.PublishState
	if !ps.Valid() {
		return &message.ResponseResourceDataModification{Message: fmt.Sprintf("Invalid publish state: %d", uint32(ps))}, nil
	}

	err := s.deps.Store.UpdateResourceDataPublishState(ctx, rid, ver, ps)
	if errors.Is(err, models.ErrResourceDataNotFound) {
		return &message.ResponseResourceDataModification{Message: msgResourceDataMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update publish state of resource data %d-%d: %w", rid, ver, err)
	}

	logger.InfoCtx(ctx, "Updated resource data publish state",
		logger.KeyResourceID, rid,
		logger.KeyResourceVersion, ver,
		logger.KeyPublishState, ps.String())
	return &message.ResponseResourceDataModification{
		ModifiedResourceData: true,
		Message:              fmt.Sprintf("Updated publish state of resource data %d-%d to %s", rid, ver, ps),
	}, nil
}
