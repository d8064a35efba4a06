// Package linkcheck probes bookmark URLs and sorts them into healthy, dead
// and unreachable.
package linkcheck

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/bmai/internal/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 10
	DefaultTimeout     = 10 * time.Second
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   *model.Node
	Status     Status
	StatusCode int    // 0 if the connection failed
	Error      string // reason for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// Options tune a check run. Zero values fall back to the defaults.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// ExcludeDomains lists hosts (and their subdomains) where a 404 likely
	// means "private" rather than gone.
	ExcludeDomains []string
	OnProgress     ProgressFunc
	HTTPClient     *http.Client
	Log            logrus.FieldLogger
}

// Check probes every bookmark URL concurrently. Results keep the order of
// bookmarks. A cancelled context stops outstanding requests; their results
// come back as Unreachable.
func Check(ctx context.Context, bookmarks []*model.Node, opts Options) []Result {
	if len(bookmarks) == 0 {
		return nil
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	exclude := make(map[string]bool, len(opts.ExcludeDomains))
	for _, domain := range opts.ExcludeDomains {
		exclude[strings.ToLower(domain)] = true
	}

	results := make([]Result, len(bookmarks))
	var mu sync.Mutex
	completed := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, b := range bookmarks {
		g.Go(func() error {
			results[i] = checkURL(ctx, client, opts.Timeout, b, exclude)
			log.WithFields(logrus.Fields{
				"url":    b.URL,
				"status": results[i].Status,
				"code":   results[i].StatusCode,
			}).Debug("checked link")

			if opts.OnProgress != nil {
				mu.Lock()
				completed++
				opts.OnProgress(completed, len(bookmarks))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// checkURL checks a single URL, trying HEAD before GET.
func checkURL(ctx context.Context, client *http.Client, timeout time.Duration, b *model.Node, exclude map[string]bool) Result {
	result := Result{Bookmark: b}

	resp, err := do(ctx, client, timeout, http.MethodHead, b.URL)
	if err != nil {
		// some servers don't support HEAD
		resp, err = do(ctx, client, timeout, http.MethodGet, b.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isExcludedDomain(b.URL, exclude) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}
	return result
}

func do(ctx context.Context, client *http.Client, timeout time.Duration, method, rawURL string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody releases the request context once the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// Partition splits results by status.
func Partition(results []Result) (healthy, dead, unreachable []Result) {
	for _, r := range results {
		switch r.Status {
		case Healthy:
			healthy = append(healthy, r)
		case Dead:
			dead = append(dead, r)
		default:
			unreachable = append(unreachable, r)
		}
	}
	return healthy, dead, unreachable
}

// isExcludedDomain matches the URL's host against the exclude list,
// including subdomains ("api.github.com" matches "github.com").
func isExcludedDomain(rawURL string, exclude map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if exclude[host] {
		return true
	}
	for domain := range exclude {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
