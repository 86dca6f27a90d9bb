package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/api"
	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/netx"
)

// TokenPeeker decodes token claims without verifying them.
type TokenPeeker interface {
	PeekClaims(raw string) (*auth.Claims, error)
}

type HTTPClient struct {
	baseURL string
	hc      *http.Client
	peeker  TokenPeeker
	now     func() time.Time
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

// WithTokenPeeker enables the pre-flight expiry check on outbound tokens.
func WithTokenPeeker(p TokenPeeker) Option {
	return func(c *HTTPClient) { c.peeker = p }
}

func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) { c.now = now }
}

// NewHTTPClient builds a client for the backend rooted at baseURL, e.g.
// "http://localhost:8080".
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server endpoint %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server endpoint %q: scheme and host required", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Host returns the host part of the configured endpoint.
func (c *HTTPClient) Host() string {
	u, _ := url.Parse(c.baseURL)
	return u.Hostname()
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*api.SignInResponse, error) {
	var resp api.SignInResponse
	req := api.SignInRequest{Username: username, Password: password}

	if err := netx.DoJSON(ctx, c.hc, http.MethodPost, c.baseURL+api.PathSignIn, nil, req, &resp); err != nil {
		return nil, c.mapError(err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: sign-in response without token", ErrUnavailable)
	}
	return &resp, nil
}

// Logout tells the backend the session is over. The backend keeps no
// session state, so the response carries no information beyond reachability.
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	err := netx.DoJSON(ctx, c.hc, http.MethodPost, c.baseURL+api.PathSignOut, c.authHeader(token), nil, nil)
	if err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *HTTPClient) VerifySession(ctx context.Context, token string) (*api.SessionResponse, error) {
	if token == "" || c.expired(token) {
		return nil, ErrUnauthorized
	}

	var resp api.SessionResponse
	err := netx.DoJSON(ctx, c.hc, http.MethodGet, c.baseURL+api.PathSession, c.authHeader(token), nil, &resp)
	if err != nil {
		return nil, c.mapError(err)
	}
	return &resp, nil
}

// authHeader returns the bearer header, omitting tokens that are already
// known to be expired.
func (c *HTTPClient) authHeader(token string) http.Header {
	if token == "" || c.expired(token) {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", common.BearerPrefix+token)
	return h
}

func (c *HTTPClient) expired(token string) bool {
	if c.peeker == nil {
		return false
	}
	claims, err := c.peeker.PeekClaims(token)
	if err != nil {
		return false
	}
	return claims.Expired(c.now())
}

func (c *HTTPClient) mapError(err error) error {
	var se *netx.StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %s", ErrUnauthorized, se.Status)
		}
		// Anything else is a protocol failure from the caller's point of view.
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	// Transport errors, including context deadline and cancellation.
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
