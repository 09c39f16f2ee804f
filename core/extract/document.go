package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLExtractor reads link targets from the parsed document tree.
// Only <a href> attributes are considered, so hrefs inside comments,
// scripts or <link> elements are ignored.
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTMLExtractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract parses html and returns the absolute form of every anchor
// target, in document order and without duplicates. Markup that cannot be
// parsed yields no links.
func (e *HTMLExtractor) Extract(html string, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var raw []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		raw = append(raw, href)
	})

	return resolveAll(raw, pageURL)
}
