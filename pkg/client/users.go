package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"timetrack/pkg/domain"
)

type CreateUserInput struct {
	Email    string      `json:"email"`
	Username string      `json:"username"`
	FullName string      `json:"full_name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
}

type UpdateUserInput struct {
	Email    *string      `json:"email,omitempty"`
	Username *string      `json:"username,omitempty"`
	FullName *string      `json:"full_name,omitempty"`
	Role     *domain.Role `json:"role,omitempty"`
	IsActive *bool        `json:"is_active,omitempty"`
	Password *string      `json:"password,omitempty"`
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out domain.User
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/users/me"}, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, *Page, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if pageSize > 0 {
		q.Set("page_size", fmt.Sprint(pageSize))
	}
	var out []domain.User
	meta, err := c.do(ctx, request{method: http.MethodGet, path: "/users", query: q}, &out)
	return out, meta, err
}

func (c *Client) GetUser(ctx context.Context, id string) (domain.User, error) {
	var out domain.User
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/users/" + url.PathEscape(id)}, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	var out domain.User
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/users", body: in}, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (domain.User, error) {
	var out domain.User
	_, err := c.do(ctx, request{method: http.MethodPut, path: "/users/" + url.PathEscape(id), body: in}, &out)
	return out, err
}

// DeleteUser deactivates the account; users are never hard-deleted.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/users/" + url.PathEscape(id)}, nil)
	return err
}
