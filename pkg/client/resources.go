package client

import (
	"context"
	"fmt"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// ListResources returns the resources of username, or of everyone with
// AllDevelopers.
func (c *Client) ListResources(ctx context.Context, username string) ([]message.Resource, error) {
	resp, err := call[*message.ResponseResourceList](ctx, c, &message.RequestResourceList{Username: username})
	if err != nil {
		return nil, err
	}
	if err := refused("list resources", resp.AllowedToViewList, resp.Message); err != nil {
		return nil, err
	}
	return resp.Resources, nil
}

// GetResource returns one resource owned by the caller.
func (c *Client) GetResource(ctx context.Context, id int32) (*message.Resource, error) {
	resp, err := call[*message.ResponseResource](ctx, c, &message.RequestResource{ID: id})
	if err != nil {
		return nil, err
	}
	if err := refused("get resource", resp.ResourceExists, resp.Message); err != nil {
		return nil, err
	}
	return &resp.Resource, nil
}

// CreateResource creates a resource owned by the caller and returns its id.
func (c *Client) CreateResource(ctx context.Context, r message.Resource) (int32, error) {
	resp, err := c.modifyResource(ctx, "create resource", &message.CreateNewResource{Resource: r})
	if err != nil {
		return 0, err
	}
	var id int32
	if _, err := fmt.Sscanf(resp.Message, "Created new resource: %d", &id); err != nil {
		return 0, fmt.Errorf("%w: cannot read resource id from %q", ErrUnexpectedReply, resp.Message)
	}
	return id, nil
}

// UpdateResource updates a resource owned by the caller.
func (c *Client) UpdateResource(ctx context.Context, r message.Resource) error {
	_, err := c.modifyResource(ctx, "update resource", &message.UpdateResource{Resource: r})
	return err
}

// DeleteResource deletes a resource with its data versions and files.
func (c *Client) DeleteResource(ctx context.Context, id int32) error {
	_, err := c.modifyResource(ctx, "delete resource", &message.DeleteResource{Resource: message.Resource{ID: id}})
	return err
}

func (c *Client) modifyResource(ctx context.Context, op string, req message.Message) (*message.ResponseResourceModification, error) {
	resp, err := call[*message.ResponseResourceModification](ctx, c, req)
	if err != nil {
		return nil, err
	}
	return resp, refused(op, resp.ModifiedResource, resp.Message)
}

// ListPublishedResources returns every resource with data published at
// state or higher. No login is needed.
func (c *Client) ListPublishedResources(ctx context.Context, state models.PublishState) ([]message.ResourceAndResourceData, error) {
	resp, err := call[*message.ResponsePublishedResourceList](ctx, c, &message.RequestPublishedResourceList{PublishState: state})
	if err != nil {
		return nil, err
	}
	if err := refused("list published resources", resp.AllowedToViewList, resp.Message); err != nil {
		return nil, err
	}
	return resp.ResourcesAndResourceDatas, nil
}

// GetPublishedResource returns one published resource with its newest
// data version at state or higher.
func (c *Client) GetPublishedResource(ctx context.Context, id int32, state models.PublishState) (*message.ResourceAndResourceData, error) {
	resp, err := call[*message.ResponsePublishedResource](ctx, c, &message.RequestPublishedResource{ID: id, PublishState: state})
	if err != nil {
		return nil, err
	}
	if err := refused("get published resource", resp.ResourceAndResourceDataExists, resp.Message); err != nil {
		return nil, err
	}
	return &resp.ResourceAndResourceData, nil
}
