// Package render: sitemap XML serializer.
// Emits the sitemaps.org 0.9 urlset document consumed by search engines.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/gaurav-prasanna/sitemapgen/core"
)

// SitemapNamespace is the sitemap protocol 0.9 namespace.
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// urlset is the root element of a sitemap document.
type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []urlElt `xml:"url"`
}

// urlElt is one <url>; field order fixes the child element order.
type urlElt struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// XMLRenderer renders the sitemap document.
type XMLRenderer struct{}

// NewXMLRenderer creates an XMLRenderer.
func NewXMLRenderer() *XMLRenderer {
	return &XMLRenderer{}
}

// Render serializes the sitemap's entries.
func (r *XMLRenderer) Render(sitemap core.Sitemap) ([]byte, error) {
	return SerializeXML(sitemap.Entries)
}

// Extension returns the file extension for sitemap output.
func (r *XMLRenderer) Extension() string {
	return ".xml"
}

// SerializeXML renders entries, in order, as a urlset document with
// two-space indentation.
func SerializeXML(entries []core.Entry) ([]byte, error) {
	doc := urlset{
		Xmlns: SitemapNamespace,
		URLs:  make([]urlElt, 0, len(entries)),
	}
	for _, e := range entries {
		doc.URLs = append(doc.URLs, urlElt{
			Loc:        e.Loc,
			LastMod:    e.LastModDate(),
			ChangeFreq: string(e.ChangeFreq),
			Priority:   e.Priority,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
