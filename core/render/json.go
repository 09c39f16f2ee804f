// Package render: JSON renderer.
// Produces a machine-readable report of a crawl: run metadata plus every
// sitemap entry with its date already in sitemap form.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/sitemapgen/core"
)

// JSONRenderer produces the JSON crawl report.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// jsonEntry mirrors core.Entry with lastmod as a date string.
type jsonEntry struct {
	Loc        string `json:"loc"`
	LastMod    string `json:"lastmod"`
	ChangeFreq string `json:"changefreq"`
	Priority   string `json:"priority"`
}

// jsonReport is the complete JSON output for one crawl.
type jsonReport struct {
	RunID        string      `json:"run_id"`
	BaseURL      string      `json:"base_url"`
	GeneratedAt  string      `json:"generated_at"` // ISO8601
	PagesFetched int         `json:"pages_fetched"`
	URLCount     int         `json:"url_count"`
	Entries      []jsonEntry `json:"entries"`
}

// Render converts the sitemap into the JSON report.
func (r *JSONRenderer) Render(sitemap core.Sitemap) ([]byte, error) {
	report := jsonReport{
		RunID:        sitemap.RunID,
		BaseURL:      sitemap.BaseURL,
		GeneratedAt:  sitemap.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		PagesFetched: sitemap.PagesFetched,
		URLCount:     len(sitemap.Entries),
		Entries:      make([]jsonEntry, 0, len(sitemap.Entries)),
	}
	for _, e := range sitemap.Entries {
		report.Entries = append(report.Entries, jsonEntry{
			Loc:        e.Loc,
			LastMod:    e.LastModDate(),
			ChangeFreq: string(e.ChangeFreq),
			Priority:   e.Priority,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
