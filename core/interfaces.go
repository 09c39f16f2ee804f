// Package core defines the shared types and pipeline interfaces for SitemapGen.
// Each stage of the crawl-and-build pipeline is a small, testable interface.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultUserAgent identifies SitemapGen on every outbound request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; SitemapGenerator/1.0)"

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// ChangeFreq is the sitemap protocol hint on how often a page changes.
type ChangeFreq string

// Supported change frequencies.
const (
	ChangeAlways  ChangeFreq = "always"
	ChangeHourly  ChangeFreq = "hourly"
	ChangeDaily   ChangeFreq = "daily"
	ChangeWeekly  ChangeFreq = "weekly"
	ChangeMonthly ChangeFreq = "monthly"
	ChangeYearly  ChangeFreq = "yearly"
	ChangeNever   ChangeFreq = "never"
)

var changeFreqs = []ChangeFreq{
	ChangeAlways, ChangeHourly, ChangeDaily, ChangeWeekly,
	ChangeMonthly, ChangeYearly, ChangeNever,
}

// Valid reports whether f is one of the sitemap 0.9 change frequencies.
func (f ChangeFreq) Valid() bool {
	for _, c := range changeFreqs {
		if f == c {
			return true
		}
	}
	return false
}

// ParseChangeFreq converts user input into a ChangeFreq.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseChangeFreq(s string) (ChangeFreq, error) {
	f := ChangeFreq(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown change frequency %q", s)
	}
	return f, nil
}

// Entry is a single <url> element of the generated sitemap.
type Entry struct {
	Loc          string     `json:"loc"`
	LastModified time.Time  `json:"lastmod"`
	ChangeFreq   ChangeFreq `json:"changefreq"`
	Priority     string     `json:"priority"` // one decimal, e.g. "0.5"
}

// LastModDate returns the W3C date form used in <lastmod>.
func (e Entry) LastModDate() string {
	return e.LastModified.Format("2006-01-02")
}

// Sitemap is the result of one crawl, ready to be rendered.
type Sitemap struct {
	RunID        string    `json:"run_id"`
	BaseURL      string    `json:"base_url"`
	GeneratedAt  time.Time `json:"generated_at"`
	PagesFetched int       `json:"pages_fetched"`
	Entries      []Entry   `json:"entries"`
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// LinkExtractor pulls absolute link targets out of a page's markup.
// pageURL is the URL the markup was fetched from and anchors relative links.
type LinkExtractor interface {
	Extract(html string, pageURL string) []string
}

// Renderer converts a crawled Sitemap into a final output format.
type Renderer interface {
	Render(sitemap Sitemap) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".xml", ".pdf").
	Extension() string
}
