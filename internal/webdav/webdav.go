// Package webdav stores and fetches the backup document on a WebDAV server.
// Sync is a whole-document overwrite; there is no conflict handling.
package webdav

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// CheckTimeout bounds the connectivity check.
const CheckTimeout = 5 * time.Second

var (
	ErrNoURL       = errors.New("WebDAV URL is not configured")
	ErrFetchFailed = errors.New("WebDAV fetch failed")
)

// Result reports the outcome of a check or save in a form suitable for
// showing to the user.
type Result struct {
	Success bool
	Message string
	Err     error // transport failure, if any
}

// Config is the endpoint and credentials of the remote backup file.
type Config struct {
	URL      string
	Username string
	Password string
}

// Client performs WebDAV requests with Basic authentication.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a new WebDAV client. hc may be nil.
func NewClient(cfg Config, hc *http.Client, log logrus.FieldLogger) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{cfg: cfg, httpClient: hc, log: log}
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	return req, nil
}

// Check sends OPTIONS to the configured URL. A 2xx or 401 answer counts as
// reachable: the server exists even if the credentials are wrong.
func (c *Client) Check(ctx context.Context) Result {
	if c.cfg.URL == "" {
		return Result{Success: false, Message: "URL is empty"}
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodOptions, nil)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("WebDAV check failed")
		return Result{Success: false, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if (resp.StatusCode >= 200 && resp.StatusCode < 300) || resp.StatusCode == http.StatusUnauthorized {
		return Result{Success: true}
	}
	return Result{Success: false, Message: fmt.Sprintf("Status: %d", resp.StatusCode)}
}

// Save uploads document with PUT. Any 2xx answer (typically 200, 201 or
// 204) is a success.
func (c *Client) Save(ctx context.Context, document []byte) Result {
	if c.cfg.URL == "" {
		return Result{Success: false, Message: "URL not configured"}
	}

	req, err := c.newRequest(ctx, http.MethodPut, bytes.NewReader(document))
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("WebDAV save failed")
		return Result{Success: false, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Success: true}
	}
	return Result{Success: false, Message: fmt.Sprintf("Save Failed: %d", resp.StatusCode)}
}

// Fetch downloads the remote backup document.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	if c.cfg.URL == "" {
		return nil, ErrNoURL
	}

	req, err := c.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	return body, nil
}
