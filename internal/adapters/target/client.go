// Package target provides the HTTP client that performs the hello-world call
// against the target server.
package target

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/benchkit/invoker/internal/core"
	"github.com/benchkit/invoker/internal/domain/model"
)

// DefaultHelloPath is the web script path invoked for every record.
const DefaultHelloPath = "/service/sample/helloworld"

// Options configures the target client.
type Options struct {
	// BaseURL is the scheme://host[:port] of the target server.
	BaseURL string
	// HelloPath overrides DefaultHelloPath.
	HelloPath string
	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client
	// TokenSource switches authentication from per-user basic auth to OAuth2
	// bearer tokens (client-credentials flow, shared across users).
	TokenSource oauth2.TokenSource
	Logger      *slog.Logger
}

// Client performs authenticated GETs against the hello-world web script. It
// implements core.TargetCaller.
type Client struct {
	baseURL     *url.URL
	helloPath   string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
}

var _ core.TargetCaller = (*Client)(nil)

// New creates a target client from the given options.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("target base URL is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse target base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("target base URL %q must include scheme and host", opts.BaseURL)
	}

	helloPath := opts.HelloPath
	if helloPath == "" {
		helloPath = DefaultHelloPath
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     base,
		helloPath:   helloPath,
		httpClient:  httpClient,
		tokenSource: opts.TokenSource,
		logger:      logger,
	}, nil
}

// Invoke performs one GET with the record's message as the single URL-encoded
// query parameter, authenticated as the given user. The returned status carries
// the HTTP status code and reason phrase; callers treat anything but 200 as a
// failed invocation.
func (c *Client) Invoke(
	ctx context.Context,
	user *model.User,
	message string,
) (core.CallStatus, error) {
	if user == nil {
		return core.CallStatus{}, errors.New("user is required")
	}

	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + c.helloPath
	q := url.Values{}
	q.Set("message", message)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return core.CallStatus{}, fmt.Errorf("build target request: %w", err)
	}
	if authErr := c.authenticate(req, user); authErr != nil {
		return core.CallStatus{}, authErr
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.CallStatus{}, fmt.Errorf("call target: %w", err)
	}
	defer func() {
		// Drain so the connection can be reused; close failure is best-effort.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	return core.CallStatus{
		Code:   resp.StatusCode,
		Status: http.StatusText(resp.StatusCode),
	}, nil
}

// authenticate attaches credentials: a shared bearer token when a token source
// is configured, otherwise basic auth as the record's user.
func (c *Client) authenticate(req *http.Request, user *model.User) error {
	if c.tokenSource != nil {
		token, err := c.tokenSource.Token()
		if err != nil {
			return fmt.Errorf("fetch target token: %w", err)
		}
		token.SetAuthHeader(req)
		return nil
	}
	req.SetBasicAuth(user.Username, user.Password)
	return nil
}
