package api

import "context"

// --- Country Directory Methods ---

func (c *Client) ListCountries(ctx context.Context) ([]Country, error) {
	data, err := c.get(ctx, "/Countries/GetCountries")
	if err != nil {
		return nil, err
	}
	return decode[[]Country](data)
}

// SyncCountries asks the backend to refresh its country table from the
// external directory.
func (c *Client) SyncCountries(ctx context.Context) (*MessageResponse, error) {
	data, err := c.post(ctx, "/Countries/SyncCountriesList", map[string]any{})
	if err != nil {
		return nil, err
	}
	return c.confirm(data)
}
