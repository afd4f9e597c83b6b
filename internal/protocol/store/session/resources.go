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

func (s *Session) resourceTarget(ctx context.Context, id int32) (*target, error) {
	r, err := s.deps.Store.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	return &target{owner: r.Username, resource: r}, nil
}

func (s *Session) resolveUpdateResource(ctx context.Context, m *message.UpdateResource) (*target, error) {
	return s.resourceTarget(ctx, m.Resource.ID)
}

func (s *Session) resolveDeleteResource(ctx context.Context, m *message.DeleteResource) (*target, error) {
	return s.resourceTarget(ctx, m.Resource.ID)
}

func (s *Session) resolveRequestResource(ctx context.Context, m *message.RequestResource) (*target, error) {
	return s.resourceTarget(ctx, m.ID)
}

// handleRequestResourceList mirrors handleRequestPluginList.
func (s *Session) handleRequestResourceList(ctx context.Context, m *message.RequestResourceList, _ *target) (message.Message, error) {
	username := models.NormalizeUsername(m.Username)
	switch {
	case !s.admin:
		username = s.username
	case username == "*":
		username = ""
	}

	resources, err := s.deps.Store.GetResources(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list resources of %q: %w", username, err)
	}

	list := make([]message.Resource, 0, len(resources))
	for _, r := range resources {
		list = append(list, message.FromResource(*r))
	}
	return &message.ResponseResourceList{
		AllowedToViewList: true,
		Message:           "Response resource list",
		Resources:         list,
	}, nil
}

func (s *Session) handleCreateNewResource(ctx context.Context, m *message.CreateNewResource, _ *target) (message.Message, error) {
	r := m.Resource.Model()
	r.ID = 0
	r.Username = s.username
	if err := s.deps.Store.CreateResource(ctx, &r); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	logger.InfoCtx(ctx, "Created resource", logger.KeyResourceID, r.ID)
	return &message.ResponseResourceModification{
		ModifiedResource: true,
		Message:          fmt.Sprintf("Created new resource: %d", r.ID),
	}, nil
}

func (s *Session) handleUpdateResource(ctx context.Context, m *message.UpdateResource, t *target) (message.Message, error) {
	r := m.Resource.Model()
	r.Username = t.resource.Username

	err := s.deps.Store.UpdateResource(ctx, &r)
	if errors.Is(err, models.ErrResourceNotFound) {
		return &message.ResponseResourceModification{Message: msgResourceMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update resource %d: %w", r.ID, err)
	}

	logger.InfoCtx(ctx, "Updated resource", logger.KeyResourceID, r.ID)
	return &message.ResponseResourceModification{
		ModifiedResource: true,
		Message:          fmt.Sprintf("Updated resource: %d", r.ID),
	}, nil
}

// handleDeleteResource removes a resource with all of its data versions
// and their files.
func (s *Session) handleDeleteResource(ctx context.Context, _ *message.DeleteResource, t *target) (message.Message, error) {
	id := t.resource.ID

	datas, err := s.deps.Store.GetResourceDatas(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list data of resource %d: %w", id, err)
	}

	err = s.deps.Store.DeleteResource(ctx, id)
	if errors.Is(err, models.ErrResourceNotFound) {
		return &message.ResponseResourceModification{Message: msgResourceMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete resource %d: %w", id, err)
	}

	for _, rd := range datas {
		s.deleteBlob(ctx, blobstore.ResourceDataKey(rd.ResourceID, rd.ResourceVersion))
	}

	logger.InfoCtx(ctx, "Deleted resource", logger.KeyResourceID, id, "versions", len(datas))
	return &message.ResponseResourceModification{
		ModifiedResource: true,
		Message:          fmt.Sprintf("Deleted resource: %d", id),
	}, nil
}

func (s *Session) handleRequestResource(_ context.Context, _ *message.RequestResource, t *target) (message.Message, error) {
	return &message.ResponseResource{
		ResourceExists: true,
		Message:        "Resource exists",
		Resource:       message.FromResource(*t.resource),
	}, nil
}

func (s *Session) handleRequestPublishedResourceList(ctx context.Context, m *message.RequestPublishedResourceList, _ *target) (message.Message, error) {
	if !m.PublishState.IsPublished() {
		return &message.ResponsePublishedResourceList{Message: msgNotAuthorized}, nil
	}

	rows, err := s.deps.Store.GetPublishedResources(ctx, m.PublishState)
	if err != nil {
		return nil, fmt.Errorf("list published resources at %s: %w", m.PublishState, err)
	}

	list := make([]message.ResourceAndResourceData, 0, len(rows))
	for _, row := range rows {
		rd := row.ResourceData
		row.FileSize = s.blobSize(ctx, rd.DataFilename, blobstore.ResourceDataKey(rd.ResourceID, rd.ResourceVersion))
		list = append(list, message.FromResourceAndResourceData(*row))
	}
	return &message.ResponsePublishedResourceList{
		AllowedToViewList:         true,
		Message:                   "Response published resource list",
		ResourcesAndResourceDatas: list,
	}, nil
}

func (s *Session) handleRequestPublishedResource(ctx context.Context, m *message.RequestPublishedResource, _ *target) (message.Message, error) {
	if !m.PublishState.IsPublished() {
		return &message.ResponsePublishedResource{Message: msgNotAuthorized}, nil
	}

	row, err := s.deps.Store.GetPublishedResource(ctx, m.ID, m.PublishState)
	if errors.Is(err, models.ErrResourceNotFound) {
		return &message.ResponsePublishedResource{Message: msgResourceMissing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get published resource %d at %s: %w", m.ID, m.PublishState, err)
	}

	rd := row.ResourceData
	row.FileSize = s.blobSize(ctx, rd.DataFilename, blobstore.ResourceDataKey(rd.ResourceID, rd.ResourceVersion))
	return &message.ResponsePublishedResource{
		ResourceAndResourceDataExists: true,
		Message:                       "Published resource exists",
		ResourceAndResourceData:       message.FromResourceAndResourceData(*row),
	}, nil
}
