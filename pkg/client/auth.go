package client

import (
	"context"
	"net/http"
	"time"

	"timetrack/pkg/domain"
)

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        domain.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

// Login exchanges credentials for a token. It does not store the token;
// bad credentials come back as an APIError with status 401.
func (c *Client) Login(ctx context.Context, email, password, otpCode string) (LoginResult, error) {
	var out LoginResult
	_, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      loginRequest{Email: email, Password: password, OTPCode: otpCode},
		anonymous: true,
	}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", anonymous: true}, nil)
	return err
}

type TOTPSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

func (c *Client) SetupTOTP(ctx context.Context) (TOTPSetup, error) {
	var out TOTPSetup
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/totp/setup"}, &out)
	return out, err
}

func (c *Client) EnableTOTP(ctx context.Context, code string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/totp/enable",
		body:   map[string]string{"code": code},
	}, nil)
	return err
}
