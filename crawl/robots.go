package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/gaurav-prasanna/sitemapgen/core"
	"github.com/gaurav-prasanna/sitemapgen/core/fetch"
)

// RobotsFilter decides whether a discovered link may enter the sitemap.
type RobotsFilter interface {
	Allowed(ctx context.Context, target *url.URL) bool
}

// RobotsAgent evaluates robots.txt groups with a per-host cache.
// It is safe for concurrent use.
type RobotsAgent struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration

	mu    sync.RWMutex
	cache map[string]robotsEntry
}

type robotsEntry struct {
	fetched time.Time
	rules   *robotstxt.RobotsData
}

// NewRobotsAgent builds an agent that matches groups for userAgent.
// A nil client selects one with the default fetch timeout and redirect cap.
func NewRobotsAgent(userAgent string, client *http.Client) *RobotsAgent {
	if client == nil {
		client = fetch.NewClient(fetch.DefaultTimeout, fetch.DefaultMaxRedirects)
	}
	if userAgent == "" {
		userAgent = core.DefaultUserAgent
	}
	return &RobotsAgent{
		client:    client,
		userAgent: userAgent,
		ttl:       30 * time.Minute,
		cache:     make(map[string]robotsEntry),
	}
}

// Allowed reports whether target may be crawled. Missing or unreadable
// robots.txt files allow everything.
func (a *RobotsAgent) Allowed(ctx context.Context, target *url.URL) bool {
	if target == nil || !target.IsAbs() {
		return false
	}

	rules, err := a.rules(ctx, target)
	if err != nil {
		return true
	}

	group := rules.FindGroup(a.userAgent)
	if group == nil {
		return true
	}
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

func (a *RobotsAgent) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	a.mu.RLock()
	entry, ok := a.cache[host]
	a.mu.RUnlock()
	if ok && time.Since(entry.fetched) < a.ttl {
		return entry.rules, nil
	}

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	// robotstxt treats 5xx as "disallow all"; a broken server should not block the crawl.
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("robots returned status %d", resp.StatusCode)
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	a.mu.Lock()
	a.cache[host] = robotsEntry{fetched: time.Now(), rules: data}
	a.mu.Unlock()

	return data, nil
}
