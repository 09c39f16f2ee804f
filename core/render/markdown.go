// Package render provides output renderers for the SitemapGen pipeline.
// This file implements the Markdown report: the crawl is first laid out
// as an HTML listing, then converted with html-to-markdown.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/gaurav-prasanna/sitemapgen/core"
)

var reportTemplate = template.Must(template.New("report").Parse(`<html><body>
<h1>Sitemap for {{.BaseURL}}</h1>
<p>Generated {{.Generated}}: {{.Count}} URLs from {{.Pages}} fetched pages.</p>
<ol>
{{range .Entries}}<li><a href="{{.Loc}}">{{.Loc}}</a> (priority <strong>{{.Priority}}</strong>, {{.ChangeFreq}}, last modified <code>{{.LastModDate}}</code>)</li>
{{end}}</ol>
</body></html>`))

// MarkdownRenderer writes a human-readable listing of the sitemap.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the Markdown report.
func (r *MarkdownRenderer) Render(sitemap core.Sitemap) ([]byte, error) {
	html, err := renderHTMLReport(sitemap)
	if err != nil {
		return nil, err
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return []byte(markdown), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func renderHTMLReport(sitemap core.Sitemap) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, map[string]any{
		"BaseURL":   sitemap.BaseURL,
		"Generated": sitemap.GeneratedAt.Format("2006-01-02"),
		"Count":     len(sitemap.Entries),
		"Pages":     sitemap.PagesFetched,
		"Entries":   sitemap.Entries,
	})
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}
