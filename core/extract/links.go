// Package extract implements the LinkExtractor interface.
//
// Two strategies share one resolution routine:
//   - PatternExtractor scans raw markup for href="..." / href='...' text
//     without building a document tree. It tolerates broken markup and may
//     report hrefs found in inert places such as comments or <link> tags.
//   - HTMLExtractor parses the document and only reads <a href> attributes.
package extract

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	hrefPattern  = regexp.MustCompile(`href=["']([^"'>]+)["']`)
	absolutePath = regexp.MustCompile(`^https?://`)
)

// PatternExtractor finds link targets with a regular expression.
type PatternExtractor struct{}

// NewPatternExtractor creates a PatternExtractor.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract returns the absolute form of every href found in html, in
// first-seen order and without duplicates.
func (e *PatternExtractor) Extract(html string, pageURL string) []string {
	matches := hrefPattern.FindAllStringSubmatch(html, -1)
	raw := make([]string, 0, len(matches))
	for _, m := range matches {
		raw = append(raw, m[1])
	}
	return resolveAll(raw, pageURL)
}

// resolveAll resolves each raw href against pageURL, dropping the ones
// that are not navigable and any repeats.
func resolveAll(raw []string, pageURL string) []string {
	seen := make(map[string]struct{}, len(raw))
	links := make([]string, 0, len(raw))
	for _, href := range raw {
		abs, ok := ResolveAbsolute(href, pageURL)
		if !ok {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	}
	return links
}

// ResolveAbsolute turns a raw href found on pageURL into an absolute URL.
// It reports false for fragment-only, javascript: and mailto: links.
//
// Relative paths are joined to the directory of pageURL's path verbatim;
// dot segments are not collapsed.
func ResolveAbsolute(rawLink string, pageURL string) (string, bool) {
	if absolutePath.MatchString(rawLink) {
		return rawLink, true
	}
	if strings.HasPrefix(rawLink, "#") ||
		strings.HasPrefix(rawLink, "javascript:") ||
		strings.HasPrefix(rawLink, "mailto:") {
		return "", false
	}

	scheme, host, path := "https", "", ""
	if page, err := url.Parse(pageURL); err == nil {
		if page.Scheme != "" {
			scheme = page.Scheme
		}
		host = page.Host
		path = page.EscapedPath()
	}

	switch {
	case strings.HasPrefix(rawLink, "//"):
		return scheme + ":" + rawLink, true
	case strings.HasPrefix(rawLink, "/"):
		return scheme + "://" + host + rawLink, true
	}

	return scheme + "://" + host + directory(path) + "/" + rawLink, true
}

// directory drops the last segment of a URL path. The result never ends
// in a slash; the root directory is the empty string. A path ending in a
// slash has an empty last segment, so "/docs/" is its own directory.
func directory(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return ""
	}
	return path[:i]
}
