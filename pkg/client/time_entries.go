package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"timetrack/pkg/domain"
)

type ClockInInput struct {
	LocationID string   `json:"location_id"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

type ClockOutInput struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

func (c *Client) ClockIn(ctx context.Context, in ClockInInput) (domain.TimeEntry, error) {
	var out domain.TimeEntry
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/time-entries/clock-in", body: in}, &out)
	return out, err
}

func (c *Client) ClockOut(ctx context.Context, in ClockOutInput) (domain.TimeEntry, error) {
	var out domain.TimeEntry
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/time-entries/clock-out", body: in}, &out)
	return out, err
}

func (c *Client) MyEntries(ctx context.Context, skip, limit int) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/time-entries/my-entries", query: pageQuery(skip, limit)}, &out)
	return out, err
}

// MyActiveEntry returns nil, nil when the user is not clocked in.
func (c *Client) MyActiveEntry(ctx context.Context) (*domain.TimeEntry, error) {
	var out domain.TimeEntry
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/time-entries/my-active"}, &out)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ActiveEmployees(ctx context.Context) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/time-entries/active-employees"}, &out)
	return out, err
}

func (c *Client) UpdateTimeEntryNotes(ctx context.Context, id string, notes string) (domain.TimeEntry, error) {
	var out domain.TimeEntry
	_, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/time-entries/" + url.PathEscape(id),
		body:   map[string]string{"notes": notes},
	}, &out)
	return out, err
}

// Timesheet is a downloaded XLSX export.
type Timesheet struct {
	Filename string
	Content  []byte
}

// ExportTimesheet downloads the workbook for the inclusive day range.
func (c *Client) ExportTimesheet(ctx context.Context, from, to string) (Timesheet, error) {
	r := request{
		method: http.MethodGet,
		path:   "/time-entries/export",
		query:  url.Values{"from": {from}, "to": {to}},
	}
	resp, err := c.send(ctx, r)
	if err != nil {
		return Timesheet{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		var env envelope
		decodeErr := json.Unmarshal(raw, &env)
		return Timesheet{}, c.apiError(r, resp.StatusCode, env, decodeErr)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return Timesheet{}, fmt.Errorf("read timesheet: %w", err)
	}
	filename := fmt.Sprintf("timesheet_%s_%s.xlsx", from, to)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return Timesheet{Filename: filename, Content: content}, nil
}
