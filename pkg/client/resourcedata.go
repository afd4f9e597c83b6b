package client

import (
	"context"

	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// ListResourceData returns the data versions of a resource.
func (c *Client) ListResourceData(ctx context.Context, resourceID int32) ([]message.ResourceData, error) {
	resp, err := call[*message.ResponseResourceDataList](ctx, c, &message.RequestResourceDataList{ResourceID: resourceID})
	if err != nil {
		return nil, err
	}
	if err := refused("list resource data", resp.AllowedToViewList, resp.Message); err != nil {
		return nil, err
	}
	return resp.ResourceDataList, nil
}

// GetResourceData returns one data version.
func (c *Client) GetResourceData(ctx context.Context, resourceID, version int32) (*message.ResourceData, error) {
	resp, err := call[*message.ResponseResourceData](ctx, c, &message.RequestResourceData{ResourceID: resourceID, ResourceVersion: version})
	if err != nil {
		return nil, err
	}
	if err := refused("get resource data", resp.ResourceDataExists, resp.Message); err != nil {
		return nil, err
	}
	return &resp.ResourceData, nil
}

// CreateResourceData creates a data version of a resource owned by the caller.
func (c *Client) CreateResourceData(ctx context.Context, rd message.ResourceData) error {
	return c.modifyResourceData(ctx, "create resource data", &message.CreateNewResourceData{ResourceData: rd})
}

// UpdateResourceData updates a data version.
func (c *Client) UpdateResourceData(ctx context.Context, rd message.ResourceData) error {
	return c.modifyResourceData(ctx, "update resource data", &message.UpdateResourceData{ResourceData: rd})
}

// DeleteResourceData deletes a data version and its file.
func (c *Client) DeleteResourceData(ctx context.Context, resourceID, version int32) error {
	return c.modifyResourceData(ctx, "delete resource data", &message.DeleteResourceData{
		ResourceData: message.ResourceData{ResourceID: resourceID, ResourceVersion: version},
	})
}

// UpdateResourceDataPublishState changes the publish state of a data
// version. Admin only.
func (c *Client) UpdateResourceDataPublishState(ctx context.Context, rd message.ResourceData) error {
	return c.modifyResourceData(ctx, "update resource data publish state", &message.UpdateResourceDataPublishState{ResourceData: rd})
}

func (c *Client) modifyResourceData(ctx context.Context, op string, req message.Message) error {
	resp, err := call[*message.ResponseResourceDataModification](ctx, c, req)
	if err != nil {
		return err
	}
	return refused(op, resp.ModifiedResourceData, resp.Message)
}
