package api

import (
	"context"
	"fmt"
)

// --- Provider Methods ---

func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	data, err := c.get(ctx, "/Providers/GetCompleteProviders")
	if err != nil {
		return nil, err
	}
	return decode[[]Provider](data)
}

func (c *Client) CreateProvider(ctx context.Context, p Provider) (*MessageResponse, error) {
	data, err := c.post(ctx, "/Providers/CreateProvider", p)
	if err != nil {
		return nil, err
	}
	return c.confirm(data)
}

func (c *Client) UpdateProvider(ctx context.Context, p Provider) (*MessageResponse, error) {
	data, err := c.put(ctx, "/Providers/UpdateProvider", p)
	if err != nil {
		return nil, err
	}
	return c.confirm(data)
}

func (c *Client) DeleteProvider(ctx context.Context, id int) (*MessageResponse, error) {
	data, err := c.del(ctx, fmt.Sprintf("/Providers/DeleteProvider/%d", id))
	if err != nil {
		return nil, err
	}
	return c.confirm(data)
}
