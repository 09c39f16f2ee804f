// Package validate checks, normalizes and probes the URLs SitemapGen is
// asked to crawl.
package validate

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gaurav-prasanna/sitemapgen/core"
	"github.com/gaurav-prasanna/sitemapgen/core/fetch"
)

// DefaultProbeTimeout bounds robots.txt retrieval.
const DefaultProbeTimeout = 30 * time.Second

// maxRobotsBytes caps how much of a robots.txt body is read.
const maxRobotsBytes = 1 << 20

const (
	maxHostLength  = 253
	maxLabelLength = 63
)

var (
	schemePrefix = regexp.MustCompile(`^https?://`)
	labelChars   = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// IsValidURL reports whether rawURL is an absolute http(s) URL whose host
// is an IP literal or a domain name with a top-level domain.
func IsValidURL(rawURL string) bool {
	if strings.TrimSpace(rawURL) == "" {
		return false
	}
	if strings.ContainsAny(rawURL, " \t\r\n") {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	if parsed.Host == "" || parsed.Opaque != "" {
		return false
	}

	return isValidHost(parsed.Hostname())
}

func isValidHost(host string) bool {
	if host == "" {
		return false
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}
	return isValidDomain(host)
}

func isValidDomain(domain string) bool {
	if len(domain) > maxHostLength {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) < 1 || len(label) > maxLabelLength {
			return false
		}
		if !labelChars.MatchString(label) {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return true
}

// NormalizeURL cleans user input into a canonical crawl root.
//
// Surrounding whitespace is trimmed, https:// is assumed when no http(s)
// scheme is given, and a trailing slash is removed from any path other
// than "/". Ports other than 80 and 443 are kept, as are the query and
// fragment. Input that cannot be parsed is returned trimmed and prefixed.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !schemePrefix.MatchString(rawURL) {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := parsed.EscapedPath()
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}

	host := parsed.Hostname()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := parsed.Port(); port != "" && port != "80" && port != "443" {
		host = net.JoinHostPort(parsed.Hostname(), port)
	}

	var b strings.Builder
	b.WriteString(parsed.Scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if parsed.RawQuery != "" || parsed.ForceQuery {
		b.WriteString("?")
		b.WriteString(parsed.RawQuery)
	}
	if parsed.Fragment != "" {
		b.WriteString("#")
		b.WriteString(parsed.EscapedFragment())
	}
	return b.String()
}

// Validator performs the network-backed checks: reachability probing and
// robots.txt policy evaluation.
type Validator struct {
	userAgent string
	robots    *http.Client
}

// New creates a Validator that identifies itself with userAgent.
// An empty userAgent selects core.DefaultUserAgent.
func New(userAgent string) *Validator {
	if userAgent == "" {
		userAgent = core.DefaultUserAgent
	}
	return &Validator{
		userAgent: userAgent,
		robots:    fetch.NewClient(DefaultProbeTimeout, fetch.DefaultMaxRedirects),
	}
}

// IsURLAccessible issues a HEAD request and reports whether the final
// response status is in [200, 400). Invalid URLs and transport failures
// report false.
func (v *Validator) IsURLAccessible(ctx context.Context, rawURL string, timeout time.Duration) bool {
	if !IsValidURL(rawURL) {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := fetch.NewClient(timeout, fetch.DefaultMaxRedirects).Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// IsAllowedByRobots reports whether the host's robots.txt permits userAgent
// to fetch rawURL. An empty userAgent means "*".
//
// If robots.txt cannot be retrieved the URL is allowed.
func (v *Validator) IsAllowedByRobots(ctx context.Context, rawURL string, userAgent string) bool {
	if userAgent == "" {
		userAgent = "*"
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return true
	}

	robotsURL := parsed.Scheme + "://" + parsed.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.robots.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return true
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return true
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}
	for _, prefix := range disallowedPrefixes(string(body), userAgent) {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// disallowedPrefixes collects the Disallow values that apply to the
// wildcard agent or to userAgent, tracking the most recent User-agent line.
// Lines may be of any length.
func disallowedPrefixes(body string, userAgent string) []string {
	var (
		current  string
		prefixes []string
	)

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "User-agent:"):
			current = strings.TrimSpace(strings.TrimPrefix(line, "User-agent:"))
		case strings.HasPrefix(line, "Disallow:"):
			if current != "*" && current != userAgent {
				continue
			}
			if p := strings.TrimSpace(strings.TrimPrefix(line, "Disallow:")); p != "" {
				prefixes = append(prefixes, p)
			}
		}
	}
	return prefixes
}
