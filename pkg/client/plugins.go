package client

import (
	"context"
	"fmt"

	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// AllDevelopers lists the objects of every developer. Admin only.
const AllDevelopers = "*"

// ListPlugins returns the plugins of username, or of everyone with
// AllDevelopers.
func (c *Client) ListPlugins(ctx context.Context, username string) ([]message.Plugin, error) {
	resp, err := call[*message.ResponsePluginList](ctx, c, &message.RequestPluginList{Username: username})
	if err != nil {
		return nil, err
	}
	if err := refused("list plugins", resp.AllowedToViewList, resp.Message); err != nil {
		return nil, err
	}
	return resp.Plugins, nil
}

// GetPlugin returns one plugin owned by the caller.
func (c *Client) GetPlugin(ctx context.Context, id int32) (*message.Plugin, error) {
	resp, err := call[*message.ResponsePlugin](ctx, c, &message.RequestPlugin{ID: id})
	if err != nil {
		return nil, err
	}
	if err := refused("get plugin", resp.PluginExists, resp.Message); err != nil {
		return nil, err
	}
	return &resp.Plugin, nil
}

// CreatePlugin creates a plugin owned by the caller and returns its id.
func (c *Client) CreatePlugin(ctx context.Context, p message.Plugin) (int32, error) {
	resp, err := c.modifyPlugin(ctx, "create plugin", &message.CreateNewPlugin{Plugin: p})
	if err != nil {
		return 0, err
	}
	var id int32
	if _, err := fmt.Sscanf(resp.Message, "Created new plugin: %d", &id); err != nil {
		return 0, fmt.Errorf("%w: cannot read plugin id from %q", ErrUnexpectedReply, resp.Message)
	}
	return id, nil
}

// UpdatePlugin updates a plugin owned by the caller.
func (c *Client) UpdatePlugin(ctx context.Context, p message.Plugin) error {
	_, err := c.modifyPlugin(ctx, "update plugin", &message.UpdatePlugin{Plugin: p})
	return err
}

// DeletePlugin deletes a plugin with its sources and their files.
func (c *Client) DeletePlugin(ctx context.Context, id int32) error {
	_, err := c.modifyPlugin(ctx, "delete plugin", &message.DeletePlugin{Plugin: message.Plugin{ID: id}})
	return err
}

func (c *Client) modifyPlugin(ctx context.Context, op string, req message.Message) (*message.ResponsePluginModification, error) {
	resp, err := call[*message.ResponsePluginModification](ctx, c, req)
	if err != nil {
		return nil, err
	}
	return resp, refused(op, resp.ModifiedPlugin, resp.Message)
}

// ListPublishedPlugins returns every plugin with a source published at
// state or higher, paired with that source. No login is needed.
func (c *Client) ListPublishedPlugins(ctx context.Context, state models.PublishState) ([]message.PluginAndSource, error) {
	resp, err := call[*message.ResponsePublishedPluginList](ctx, c, &message.RequestPublishedPluginList{PublishState: state})
	if err != nil {
		return nil, err
	}
	if err := refused("list published plugins", resp.AllowedToViewList, resp.Message); err != nil {
		return nil, err
	}
	return resp.PluginsAndSources, nil
}

// GetPublishedPlugin returns one published plugin with its newest source
// at state or higher.
func (c *Client) GetPublishedPlugin(ctx context.Context, id int32, state models.PublishState) (*message.PluginAndSource, error) {
	resp, err := call[*message.ResponsePublishedPlugin](ctx, c, &message.RequestPublishedPlugin{ID: id, PublishState: state})
	if err != nil {
		return nil, err
	}
	if err := refused("get published plugin", resp.PluginAndSourceExists, resp.Message); err != nil {
		return nil, err
	}
	return &resp.PluginAndSource, nil
}
