package api

import (
	"context"
	"strings"
	"time"

	"github.com/hyeonlog/jangteo/internal/core/auth"
	"github.com/hyeonlog/jangteo/internal/core/market"
)

// SignupForm is the payload for registering a new member.
type SignupForm struct {
	Username string
	Password string
	Nickname string
}

// Validate checks the form before any network call is made. Uniqueness
// and format rules stay server-side and surface as field errors.
func (f SignupForm) Validate() error {
	var fields FieldErrors
	if strings.TrimSpace(f.Username) == "" {
		fields = append(fields, FieldError{Field: "username", Code: "required", Message: "username is required"})
	}
	if f.Password == "" {
		fields = append(fields, FieldError{Field: "password", Code: "required", Message: "password is required"})
	}
	if strings.TrimSpace(f.Nickname) == "" {
		fields = append(fields, FieldError{Field: "nickname", Code: "required", Message: "nickname is required"})
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

// Signup registers a new member account. The caller still has to log in
// afterwards; registration does not issue tokens.
func (c *Client) Signup(ctx context.Context, f SignupForm) (market.Member, error) {
	if err := f.Validate(); err != nil {
		return market.Member{}, err
	}

	body := map[string]string{
		"username": f.Username,
		"password": f.Password,
		"nickname": f.Nickname,
	}
	var m market.Member
	if err := c.postJSON(ctx, "/api/v1/members", body, &m); err != nil {
		return market.Member{}, err
	}
	return m, nil
}

// loginResponse is the token pair issued at login.
type loginResponse struct {
	APIKey      string `json:"apiKey"`
	AccessToken string `json:"accessToken"`
}

// Login authenticates and returns the issued credentials. The caller is
// responsible for persisting them.
func (c *Client) Login(ctx context.Context, username, password string) (auth.Credentials, error) {
	var fields FieldErrors
	if username == "" {
		fields = append(fields, FieldError{Field: "username", Code: "required", Message: "username is required"})
	}
	if password == "" {
		fields = append(fields, FieldError{Field: "password", Code: "required", Message: "password is required"})
	}
	if len(fields) > 0 {
		return auth.Credentials{}, fields
	}

	body := map[string]string{"username": username, "password": password}
	var resp loginResponse
	if err := c.postJSON(ctx, "/api/v1/members/login", body, &resp); err != nil {
		return auth.Credentials{}, err
	}

	return auth.Credentials{
		AccessToken: resp.AccessToken,
		APIKey:      resp.APIKey,
		Username:    username,
		SavedAt:     time.Now(),
	}, nil
}

// Logout invalidates the server-side session. Local credentials are
// cleared by the caller regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.delete(ctx, "/api/v1/members/logout", nil)
}

// Me returns the authenticated member's profile.
func (c *Client) Me(ctx context.Context) (market.Member, error) {
	var m market.Member
	if err := c.get(ctx, "/api/v1/members/me", nil, &m); err != nil {
		return market.Member{}, err
	}
	return m, nil
}
