package client

import (
	"context"
	"net/http"
	"net/url"

	"timetrack/pkg/domain"
)

type CreateVacationInput struct {
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	VacationType domain.VacationType `json:"vacation_type,omitempty"`
	Reason       string              `json:"reason"`
	Notes        *string             `json:"notes,omitempty"`
}

type UpdateVacationInput struct {
	StartDate    *string              `json:"start_date,omitempty"`
	EndDate      *string              `json:"end_date,omitempty"`
	VacationType *domain.VacationType `json:"vacation_type,omitempty"`
	Reason       *string              `json:"reason,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
}

func vacationPath(id string, suffix string) string {
	return "/vacation-requests/" + url.PathEscape(id) + suffix
}

func (c *Client) MyVacationRequests(ctx context.Context, skip, limit int) ([]domain.VacationRequest, error) {
	var out []domain.VacationRequest
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/vacation-requests/my-requests", query: pageQuery(skip, limit)}, &out)
	return out, err
}

func (c *Client) PendingVacationRequests(ctx context.Context, skip, limit int) ([]domain.VacationRequest, error) {
	var out []domain.VacationRequest
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/vacation-requests/pending", query: pageQuery(skip, limit)}, &out)
	return out, err
}

func (c *Client) GetVacationRequest(ctx context.Context, id string) (domain.VacationRequest, error) {
	var out domain.VacationRequest
	_, err := c.do(ctx, request{method: http.MethodGet, path: vacationPath(id, "")}, &out)
	return out, err
}

func (c *Client) CreateVacationRequest(ctx context.Context, in CreateVacationInput) (domain.VacationRequest, error) {
	var out domain.VacationRequest
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/vacation-requests", body: in}, &out)
	return out, err
}

func (c *Client) UpdateVacationRequest(ctx context.Context, id string, in UpdateVacationInput) (domain.VacationRequest, error) {
	var out domain.VacationRequest
	_, err := c.do(ctx, request{method: http.MethodPut, path: vacationPath(id, ""), body: in}, &out)
	return out, err
}

func (c *Client) ApproveVacationRequest(ctx context.Context, id string) (domain.VacationRequest, error) {
	var out domain.VacationRequest
	_, err := c.do(ctx, request{method: http.MethodPut, path: vacationPath(id, "/approve")}, &out)
	return out, err
}

func (c *Client) RejectVacationRequest(ctx context.Context, id, reason string) (domain.VacationRequest, error) {
	var out domain.VacationRequest
	_, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   vacationPath(id, "/reject"),
		body:   map[string]string{"rejection_reason": reason},
	}, &out)
	return out, err
}

// CancelVacationRequest withdraws the caller's own pending request.
func (c *Client) CancelVacationRequest(ctx context.Context, id string) (domain.VacationRequest, error) {
	var out domain.VacationRequest
	_, err := c.do(ctx, request{method: http.MethodDelete, path: vacationPath(id, "")}, &out)
	return out, err
}

func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	var out []domain.Notification
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/notifications"}, &out)
	return out, err
}
