package client

import (
	"context"

	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// ListDevelopers returns all developers. Admin only.
func (c *Client) ListDevelopers(ctx context.Context) ([]message.Developer, error) {
	resp, err := call[*message.ResponseDeveloperList](ctx, c, &message.RequestDeveloperList{})
	if err != nil {
		return nil, err
	}
	if err := refused("list developers", resp.AllowedToViewList, resp.Message); err != nil {
		return nil, err
	}
	return resp.DeveloperList, nil
}

// GetDeveloper returns one developer. Admin only.
func (c *Client) GetDeveloper(ctx context.Context, username string) (*message.Developer, error) {
	resp, err := call[*message.ResponseDeveloper](ctx, c, &message.RequestDeveloper{Username: username})
	if err != nil {
		return nil, err
	}
	if err := refused("get developer", resp.DeveloperExists, resp.Message); err != nil {
		return nil, err
	}
	return &resp.Developer, nil
}

// CreateDeveloper creates an account. Admin only.
func (c *Client) CreateDeveloper(ctx context.Context, d message.Developer) error {
	return c.modifyDeveloper(ctx, "create developer", &message.CreateNewDeveloper{Developer: d})
}

// UpdateDeveloper updates an account. Developers may update themselves
// except for the admin flag. An empty password keeps the current one.
func (c *Client) UpdateDeveloper(ctx context.Context, d message.Developer) error {
	return c.modifyDeveloper(ctx, "update developer", &message.UpdateDeveloper{Developer: d})
}

// DeleteDeveloper removes an account. Admin only.
func (c *Client) DeleteDeveloper(ctx context.Context, username string) error {
	return c.modifyDeveloper(ctx, "delete developer", &message.DeleteDeveloper{Developer: message.Developer{Username: username}})
}

func (c *Client) modifyDeveloper(ctx context.Context, op string, req message.Message) error {
	resp, err := call[*message.ResponseDeveloperModification](ctx, c, req)
	if err != nil {
		return err
	}
	return refused(op, resp.ModifiedDeveloper, resp.Message)
}
