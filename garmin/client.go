// Package garmin is a client for the Garmin Connect private REST API.
//
// The client issues single-shot authenticated requests through a
// SessionProvider and classifies failures into a small set of typed
// errors. It performs no retries, no backoff, and no schema validation:
// JSON responses are returned as raw messages for the caller to
// interpret, binary downloads as raw bytes.
//
// A Client instance is not safe for concurrent use; use one instance per
// goroutine or serialize access externally.
package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/go-resty/resty/v2"
)

// backend selects which logical backend a request targets. Uploads and
// activity downloads go through the upload backend, everything else
// through the connect backend. Both resolve to connectapi.<domain> in
// production but stay independently overridable.
type backend int

const (
	backendConnect backend = iota
	backendUpload
)

// Client talks to the Garmin Connect API on behalf of one account.
type Client struct {
	provider SessionProvider
	connect  *resty.Client
	upload   *resty.Client
	creds    Credentials
	tokenDir string
	logger   *slog.Logger

	displayName string
	fullName    string
	unitSystem  string
}

// Option configures a Client.
type Option func(*Client)

// WithDomain switches the Garmin domain, e.g. "garmin.cn" for accounts in
// China. The default is "garmin.com".
func WithDomain(domain string) Option {
	return func(c *Client) {
		if c.provider == nil {
			c.provider = NewSSOProvider(domain)
		}
		c.connect.SetBaseURL("https://connectapi." + domain)
		c.upload.SetBaseURL("https://connectapi." + domain)
	}
}

// WithSessionProvider replaces the built-in SSO provider.
func WithSessionProvider(p SessionProvider) Option {
	return func(c *Client) { c.provider = p }
}

// WithBaseURL points both backends at u. Intended for tests against stub
// servers.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.connect.SetBaseURL(u)
		c.upload.SetBaseURL(u)
	}
}

// WithUploadBaseURL overrides only the upload/download backend.
func WithUploadBaseURL(u string) Option {
	return func(c *Client) { c.upload.SetBaseURL(u) }
}

// WithTokenDir sets the directory session state is loaded from and dumped
// to during Login.
func WithTokenDir(dir string) Option {
	return func(c *Client) { c.tokenDir = dir }
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// providerTransport adapts the SessionProvider's authenticated-request
// primitive to http.RoundTripper so resty can use it.
type providerTransport struct {
	c *Client
}

func (t providerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.c.provider.Do(req)
}

// New creates a client for the given credentials. No network traffic
// happens until Login or the first request.
func New(creds Credentials, opts ...Option) (*Client, error) {
	c := &Client{
		creds:  creds,
		logger: slog.Default(),
	}

	httpClient := &http.Client{Transport: providerTransport{c}}
	c.connect = resty.NewWithClient(httpClient).SetBaseURL("https://connectapi.garmin.com")
	c.upload = resty.NewWithClient(httpClient).SetBaseURL("https://connectapi.garmin.com")
	c.connect.SetHeader("accept", "application/json")

	for _, opt := range opts {
		opt(c)
	}
	if c.provider == nil {
		c.provider = NewSSOProvider("garmin.com")
	}
	if c.tokenDir == "" {
		dir, err := DefaultTokenDir()
		if err != nil {
			return nil, err
		}
		c.tokenDir = dir
	}
	return c, nil
}

// Login establishes a session. A session blob previously dumped to the
// token directory is resumed if it is still usable, otherwise a fresh
// credential login runs. On success the profile is fetched (several
// endpoint paths embed the display name) and the session is persisted.
func (c *Client) Login(ctx context.Context) error {
	resumed := false
	if sess, err := c.provider.LoadSession(c.tokenDir); err == nil {
		if _, err := c.provider.Resume(ctx, sess); err == nil {
			resumed = true
			c.logger.Debug("resumed stored session", "token_dir", c.tokenDir)
		} else {
			c.logger.Debug("stored session unusable", "error", err)
		}
	} else if !os.IsNotExist(err) {
		c.logger.Debug("failed to read stored session", "error", err)
	}

	if !resumed {
		if _, err := c.provider.Login(ctx, c.creds); err != nil {
			return err
		}
		c.logger.Info("logged in with credentials")
	}

	if err := c.loadProfile(ctx); err != nil {
		// A resumed session can still be rejected remotely. Fall back to
		// one credential login before giving up.
		var authErr *AuthenticationError
		if !resumed || !errors.As(err, &authErr) {
			return err
		}
		c.logger.Debug("resumed session rejected, logging in with credentials", "reason", authErr.Reason)
		if _, err := c.provider.Login(ctx, c.creds); err != nil {
			return err
		}
		if err := c.loadProfile(ctx); err != nil {
			return err
		}
	}

	if err := c.provider.DumpSession(c.tokenDir); err != nil {
		c.logger.Warn("failed to persist session", "error", err)
	}
	return nil
}

// DumpSession persists the current session state under dir.
func (c *Client) DumpSession(dir string) error {
	return c.provider.DumpSession(dir)
}

// DisplayName returns the account's display name, set during Login.
func (c *Client) DisplayName() string { return c.displayName }

// FullName returns the account's full name, set during Login.
func (c *Client) FullName() string { return c.fullName }

// UnitSystem returns the account's measurement system, set during Login.
func (c *Client) UnitSystem() string { return c.unitSystem }

// loadProfile fetches the social profile and user settings the endpoint
// catalog depends on.
func (c *Client) loadProfile(ctx context.Context) error {
	profile, err := c.api(ctx, http.MethodGet, pathSocialProfile, nil, nil)
	if err != nil {
		return err
	}
	var p struct {
		DisplayName string `json:"displayName"`
		FullName    string `json:"fullName"`
	}
	if err := json.Unmarshal(profile, &p); err != nil {
		return &DecodeError{Path: pathSocialProfile, Size: len(profile)}
	}
	c.displayName = p.DisplayName
	c.fullName = p.FullName

	settings, err := c.api(ctx, http.MethodGet, pathUserSettings, nil, nil)
	if err != nil {
		return err
	}
	var s struct {
		UserData struct {
			MeasurementSystem string `json:"measurementSystem"`
		} `json:"userData"`
	}
	if err := json.Unmarshal(settings, &s); err != nil {
		return &DecodeError{Path: pathUserSettings, Size: len(settings)}
	}
	c.unitSystem = s.UserData.MeasurementSystem
	return nil
}

func (c *Client) rest(b backend) *resty.Client {
	if b == backendUpload {
		return c.upload
	}
	return c.connect
}

// do issues a single request through the session provider and normalizes
// the outcome. It never retries.
func (c *Client) do(ctx context.Context, b backend, method, path string, params url.Values, body any) (*resty.Response, error) {
	rc := c.rest(b)
	req := rc.R().SetContext(ctx)
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}
	if body != nil {
		req.SetHeader("content-type", "application/json").SetBody(body)
	}

	c.logger.Debug("request", "method", method, "path", path)

	resp, err := req.Execute(method, path)
	if err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		return nil, &ConnectionError{URL: rc.BaseURL + path, Err: err}
	}

	c.logger.Debug("response", "path", path, "status", resp.StatusCode(), "bytes", len(resp.Body()))

	if err := statusError(path, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// statusError classifies a non-2xx response.
func statusError(path string, resp *resty.Response) error {
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &AuthenticationError{Status: code, Reason: "session rejected by remote service"}
	case code == http.StatusTooManyRequests:
		return &RateLimitError{Status: code}
	default:
		return &APIError{Status: code, Path: path, Body: resp.Body()}
	}
}

// api issues a JSON request and returns the decoded body as-is: objects
// stay objects, arrays stay arrays, scalars stay scalars. An empty body
// yields nil.
func (c *Client) api(ctx context.Context, method, path string, params url.Values, body any) (json.RawMessage, error) {
	resp, err := c.do(ctx, backendConnect, method, path, params, body)
	if err != nil {
		return nil, err
	}
	data := bytes.TrimSpace(resp.Body())
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &DecodeError{Path: path, Size: len(data)}
	}
	return json.RawMessage(data), nil
}

// download issues a GET for raw bytes. No JSON decoding happens on this
// path; the response body is returned unmodified.
func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, backendUpload, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// ConnectAPI is the generic escape hatch: it requests any relative path
// on the connect backend and returns the JSON body untouched.
func (c *Client) ConnectAPI(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, path, params, nil)
}
