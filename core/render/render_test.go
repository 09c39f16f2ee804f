package render

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/sitemapgen/core"
)

var generated = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleSitemap() core.Sitemap {
	return core.Sitemap{
		RunID:        "run-1",
		BaseURL:      "https://a.test",
		GeneratedAt:  generated,
		PagesFetched: 2,
		Entries: []core.Entry{
			{Loc: "https://a.test", LastModified: generated, ChangeFreq: core.ChangeWeekly, Priority: "1.0"},
			{Loc: "https://a.test/search?q=a&b=<c>", LastModified: generated, ChangeFreq: core.ChangeWeekly, Priority: "0.5"},
			{Loc: "https://a.test/about", LastModified: generated, ChangeFreq: core.ChangeWeekly, Priority: "0.4"},
		},
	}
}

func TestSerializeXML(t *testing.T) {
	entries := sampleSitemap().Entries[:1]

	got, err := SerializeXML(entries)
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://a.test</loc>
    <lastmod>2026-03-14</lastmod>
    <changefreq>weekly</changefreq>
    <priority>1.0</priority>
  </url>
</urlset>
`
	assert.Equal(t, want, string(got))
}

func TestSerializeXML_EscapesAndKeepsOrder(t *testing.T) {
	got, err := NewXMLRenderer().Render(sampleSitemap())
	require.NoError(t, err)

	assert.Contains(t, string(got), "<loc>https://a.test/search?q=a&amp;b=&lt;c&gt;</loc>")

	var parsed struct {
		XMLName xml.Name
		URLs    []struct {
			Loc        string `xml:"loc"`
			LastMod    string `xml:"lastmod"`
			ChangeFreq string `xml:"changefreq"`
			Priority   string `xml:"priority"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(got, &parsed))
	assert.Equal(t, SitemapNamespace, parsed.XMLName.Space)
	assert.Equal(t, "urlset", parsed.XMLName.Local)
	require.Len(t, parsed.URLs, 3)
	assert.Equal(t, "https://a.test", parsed.URLs[0].Loc)
	assert.Equal(t, "https://a.test/search?q=a&b=<c>", parsed.URLs[1].Loc)
	assert.Equal(t, "https://a.test/about", parsed.URLs[2].Loc)
	assert.Equal(t, "0.4", parsed.URLs[2].Priority)
}

func TestJSONRenderer(t *testing.T) {
	got, err := NewJSONRenderer().Render(sampleSitemap())
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal(got, &report))
	assert.Equal(t, "https://a.test", report["base_url"])
	assert.Equal(t, float64(3), report["url_count"])
	assert.Equal(t, "2026-03-14T09:30:00Z", report["generated_at"])

	entries := report["entries"].([]any)
	first := entries[0].(map[string]any)
	assert.Equal(t, "2026-03-14", first["lastmod"])
	assert.Equal(t, "1.0", first["priority"])
}

func TestMarkdownRenderer(t *testing.T) {
	got, err := NewMarkdownRenderer().Render(sampleSitemap())
	require.NoError(t, err)

	md := string(got)
	assert.Contains(t, md, "# Sitemap for https://a.test")
	assert.Contains(t, md, "(https://a.test/about)")
	assert.Contains(t, md, "**0.4**")
	assert.Contains(t, md, "3 URLs from 2 fetched pages")
}

func TestPDFRenderer(t *testing.T) {
	s := sampleSitemap()
	s.Entries = append(s.Entries, core.Entry{
		Loc:          "https://a.test/" + string(bytes.Repeat([]byte("very-long-path/"), 20)),
		LastModified: generated,
		ChangeFreq:   core.ChangeDaily,
		Priority:     "0.3",
	})

	got, err := NewPDFRenderer().Render(s)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, []byte("%PDF-")))
	assert.Equal(t, ".pdf", NewPDFRenderer().Extension())
}
