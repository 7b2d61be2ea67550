package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/memberportal/core/logger"
)

const maxErrorBody = 64 << 10

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the current bearer token; an empty token sends no
// Authorization header. *session.Holder satisfies it.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the portal REST API.
type Client struct {
	baseURL        *url.URL
	http           Doer
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	userAgent      string
	logger         *slog.Logger

	Auth         *AuthService
	Publications *PublicationService
	News         *NewsService
	Events       *EventService
	Members      *MemberService
	Payments     *PaymentService
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bindServices()
	return c, nil
}

// With returns a copy of c with opts applied. The transport is shared.
func (c *Client) With(opts ...Option) *Client {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	cp.bindServices()
	return &cp
}

func (c *Client) bindServices() {
	c.Auth = &AuthService{c: c}
	c.Publications = &PublicationService{newResource[Publication, PublicationInput](c, "publications")}
	c.News = &NewsService{newResource[News, NewsInput](c, "news")}
	c.Events = &EventService{newResource[Event, EventInput](c, "events")}
	c.Members = &MemberService{r: newResource[Member, MemberUpdate](c, "members")}
	c.Payments = &PaymentService{r: newResource[Payment, PaymentInput](c, "payments")}
}

// Do sends a JSON request to path and decodes a 2xx body into out.
// out may be nil. Non-2xx responses return *Error.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "api request failed",
			logger.Method(method), logger.URL(req.URL.Redacted()), logger.Error(err))
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.DebugContext(ctx, "api request",
		logger.Method(method),
		logger.URL(req.URL.Redacted()),
		logger.StatusCode(resp.StatusCode),
		logger.Elapsed(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := readError(resp, method, path)
		if apiErr.Status == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(raw), out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL.JoinPath(strings.Split(strings.Trim(path, "/"), "/")...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Join(ErrEncodeRequest, err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func readError(resp *http.Response, method, path string) *Error {
	apiErr := &Error{Status: resp.StatusCode, Method: method, Path: path}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}

// unwrapData returns the "data" member of an envelope object, or raw unchanged.
func unwrapData(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var env map[string]json.RawMessage
	if json.Unmarshal(trimmed, &env) != nil {
		return raw
	}
	if _, entity := env["id"]; entity {
		return raw
	}
	if data, ok := env["data"]; ok {
		return data
	}
	return raw
}
