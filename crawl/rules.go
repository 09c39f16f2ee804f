// Package crawl: URL filtering rules.
// Decides which discovered links belong in the sitemap and how they are keyed.
package crawl

import (
	"net/url"
	"strings"
)

// excludedExtensions are path suffixes that never appear in the sitemap.
var excludedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".css", ".js", ".pdf", ".zip", ".rar",
}

// IsInternal reports whether rawURL's host is exactly host.
// Scheme and port are not compared.
func IsInternal(rawURL string, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Hostname() == host
}

// IsExcludedAsset reports whether rawURL's path ends, case-insensitively,
// in one of the excluded file extensions.
func IsExcludedAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, ext := range excludedExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// StripFragment removes everything from the first '#'.
func StripFragment(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
