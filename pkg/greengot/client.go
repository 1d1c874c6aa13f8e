package greengot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultBaseURL is the production mobile API host.
	DefaultBaseURL = "https://api.green-got.com"

	// UserAgent identifies this client to the API on every request.
	UserAgent = "github.com/yurifrl/greenqif"

	// AppVersion is the mobile app version we impersonate. The version gate
	// compares it against the server-declared minimum before anything else
	// runs.
	AppVersion = "1.7.3"

	// DefaultPageSize is the transaction page size requested from the API.
	DefaultPageSize = 50

	// DefaultTimeout bounds every HTTP call; the API has been seen hanging
	// on stalled connections.
	DefaultTimeout = 30 * time.Second
)

// Doer issues a single HTTP request. *http.Client satisfies it; tests swap
// in whatever they need.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Green-Got mobile API on behalf of one registered
// device. All calls are sequential and blocking.
type Client struct {
	baseURL  string
	deviceID string
	token    string
	pageSize int
	http     Doer
	logger   *log.Logger

	signinBackoff    time.Duration
	signinMaxRetries int
}

// Option adjusts a Client at construction time.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithDoer replaces the HTTP transport.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithPageSize sets the transaction page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithSigninRetryLimit bounds the rate-limit retry loop. Zero keeps the
// default of retrying until the server stops answering 429.
func WithSigninRetryLimit(n int) Option {
	return func(c *Client) { c.signinMaxRetries = n }
}

// New builds a client for the given device identity. Token may be empty
// until the signin flow has run.
func New(deviceID, token string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		deviceID:      deviceID,
		token:         token,
		pageSize:      DefaultPageSize,
		http:          &http.Client{Timeout: DefaultTimeout},
		logger:        logger,
		signinBackoff: signinBackoffTotal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeviceID returns the device identity this client was built with.
func (c *Client) DeviceID() string { return c.deviceID }

// Token returns the current session token, empty before signin.
func (c *Client) Token() string { return c.token }

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}

	req.Header.Set("X-Mobile-Unique-Id", c.deviceID)
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do runs the request and returns the status code plus the full body.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response from %s: %w", req.URL.Path, err)
	}
	return resp.StatusCode, body, nil
}

// authGet performs an authenticated GET. A 401 always surfaces as
// ErrReauthRequired, never as a parsed body.
func (c *Client) authGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		c.logger.Warn("request was unauthorized", "path", path)
		return nil, ErrReauthRequired
	default:
		return nil, &RequestError{StatusCode: status, Body: string(body)}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.authGet(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// UserInfo fetches the profile of the signed-in user. Used as a sanity
// check that the session token still works before paging the history.
func (c *Client) UserInfo(ctx context.Context) (map[string]any, error) {
	var info map[string]any
	if err := c.getJSON(ctx, "/user", nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}
