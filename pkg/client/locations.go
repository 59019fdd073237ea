package client

import (
	"context"
	"net/http"
	"net/url"

	"timetrack/pkg/domain"
)

type CreateLocationInput struct {
	Name         string   `json:"name"`
	Address      string   `json:"address,omitempty"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	RadiusMeters *int     `json:"radius_meters,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

type UpdateLocationInput struct {
	Name         *string  `json:"name,omitempty"`
	Address      *string  `json:"address,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *int     `json:"radius_meters,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// Locations lists active locations.
func (c *Client) Locations(ctx context.Context) ([]domain.Location, error) {
	var out []domain.Location
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/locations"}, &out)
	return out, err
}

// AllLocations includes deactivated ones; admin only.
func (c *Client) AllLocations(ctx context.Context) ([]domain.Location, error) {
	var out []domain.Location
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/locations/all"}, &out)
	return out, err
}

func (c *Client) GetLocation(ctx context.Context, id string) (domain.Location, error) {
	var out domain.Location
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/locations/" + url.PathEscape(id)}, &out)
	return out, err
}

func (c *Client) CreateLocation(ctx context.Context, in CreateLocationInput) (domain.Location, error) {
	var out domain.Location
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/locations", body: in}, &out)
	return out, err
}

func (c *Client) UpdateLocation(ctx context.Context, id string, in UpdateLocationInput) (domain.Location, error) {
	var out domain.Location
	_, err := c.do(ctx, request{method: http.MethodPut, path: "/locations/" + url.PathEscape(id), body: in}, &out)
	return out, err
}

func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/locations/" + url.PathEscape(id)}, nil)
	return err
}
