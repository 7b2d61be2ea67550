package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/memberportal/core/session"
)

// ErrNoToken is returned when a login or registration response carries no token.
var ErrNoToken = errors.New("apiclient: auth response has no token")

// AuthService wraps the authentication endpoints.
type AuthService struct {
	c *Client
}

type authResponse struct {
	User        *User  `json:"user"`
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
}

func (r authResponse) token() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Login exchanges credentials for a user and bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	return s.authenticate(ctx, "auth/login", body)
}

// Register creates an account and returns the signed-in user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*session.User, string, error) {
	return s.authenticate(ctx, "auth/register", in)
}

// Me returns the user the current token belongs to.
func (s *AuthService) Me(ctx context.Context) (*session.User, error) {
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "auth/me", nil, nil, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User.SessionUser(), nil
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, errors.Join(ErrDecodeResponse, err)
	}
	return u.SessionUser(), nil
}

func (s *AuthService) authenticate(ctx context.Context, path string, body any) (*session.User, string, error) {
	var resp authResponse
	if err := s.c.Do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, "", err
	}
	if resp.token() == "" {
		return nil, "", ErrNoToken
	}
	if resp.User == nil {
		return nil, "", errors.Join(ErrDecodeResponse, errors.New("missing user"))
	}
	return resp.User.SessionUser(), resp.token(), nil
}
