// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests with the fixed SitemapGen identity,
// a per-request timeout and a bounded redirect chain.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/sitemapgen/core"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRedirects is the number of redirects followed before giving up.
	DefaultMaxRedirects = 3

	maxBodyBytes = 6 * 1024 * 1024
)

// Options controls HTTP fetching behaviour.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
}

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// New creates an HTTPFetcher with the default identity, timeout and redirect cap.
func New() *HTTPFetcher {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an HTTPFetcher, filling unset options with defaults.
func NewWithOptions(opts Options) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = core.DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    NewClient(opts.Timeout, opts.MaxRedirects),
		userAgent: opts.UserAgent,
	}
}

// NewClient returns an http.Client that gives up after timeout and
// refuses to follow more than maxRedirects redirects.
// Non-positive values select the package defaults.
func NewClient(timeout time.Duration, maxRedirects int) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// Fetch retrieves the HTML content of the given URL.
// Any status outside 2xx is reported as an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &core.FetchResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}
