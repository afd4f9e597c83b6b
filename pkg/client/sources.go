package client

import (
	"context"

	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// ListSources returns the sources of a plugin owned by the caller.
func (c *Client) ListSources(ctx context.Context, pluginID int32) ([]message.Source, error) {
	return c.listSources(ctx, &message.RequestSourceList{PluginID: pluginID})
}

// ListSourcesByBuildState returns the sources of every plugin in the given
// build state. Admin only.
func (c *Client) ListSourcesByBuildState(ctx context.Context, state string) ([]message.Source, error) {
	return c.listSources(ctx, &message.RequestSourceList{PluginID: -1, BuildState: state})
}

func (c *Client) listSources(ctx context.Context, req *message.RequestSourceList) ([]message.Source, error) {
	resp, err := call[*message.ResponseSourceList](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if err := refused("list sources", resp.AllowedToViewList, resp.Message); err != nil {
		return nil, err
	}
	return resp.SourceList, nil
}

// GetSource returns one source version.
func (c *Client) GetSource(ctx context.Context, pluginID, version int32) (*message.Source, error) {
	resp, err := call[*message.ResponseSource](ctx, c, &message.RequestSource{PluginID: pluginID, PluginVersion: version})
	if err != nil {
		return nil, err
	}
	if err := refused("get source", resp.SourceExists, resp.Message); err != nil {
		return nil, err
	}
	return &resp.Source, nil
}

// CreateSource creates a source version of a plugin owned by the caller.
func (c *Client) CreateSource(ctx context.Context, s message.Source) error {
	return c.modifySource(ctx, "create source", &message.CreateNewSource{Source: s})
}

// UpdateSource updates a source. Build fields are only honoured for admins.
func (c *Client) UpdateSource(ctx context.Context, s message.Source) error {
	return c.modifySource(ctx, "update source", &message.UpdateSource{Source: s})
}

// DeleteSource deletes a source version and its files.
func (c *Client) DeleteSource(ctx context.Context, pluginID, version int32) error {
	return c.modifySource(ctx, "delete source", &message.DeleteSource{Source: message.Source{PluginID: pluginID, PluginVersion: version}})
}

// UpdateSourcePublishState changes the publish state of a source. Admin only.
func (c *Client) UpdateSourcePublishState(ctx context.Context, s message.Source) error {
	return c.modifySource(ctx, "update source publish state", &message.UpdateSourcePublishState{Source: s})
}

func (c *Client) modifySource(ctx context.Context, op string, req message.Message) error {
	resp, err := call[*message.ResponseSourceModification](ctx, c, req)
	if err != nil {
		return err
	}
	return refused(op, resp.ModifiedSource, resp.Message)
}
