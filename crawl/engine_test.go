package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/sitemapgen/core"
	"github.com/gaurav-prasanna/sitemapgen/core/extract"
	"github.com/gaurav-prasanna/sitemapgen/crawl"
)

// siteFetcher serves pages from a map; unknown URLs fail like a dead host.
type siteFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (f *siteFetcher) Fetch(_ context.Context, u string) (*core.FetchResult, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, u)
	f.mu.Unlock()

	html, ok := f.pages[u]
	if !ok {
		return nil, fmt.Errorf("dial tcp: lookup %s: no such host", u)
	}
	return &core.FetchResult{URL: u, StatusCode: 200, HTML: html}, nil
}

func links(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

var fixedDate = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newEngine(f core.Fetcher, opts ...crawl.EngineOption) *crawl.Engine {
	opts = append([]crawl.EngineOption{crawl.WithClock(func() time.Time { return fixedDate })}, opts...)
	return crawl.NewEngine(f, extract.NewPatternExtractor(), opts...)
}

func options(depth int) crawl.Options {
	o := crawl.DefaultOptions()
	o.MaxDepth = depth
	return o
}

type entryView struct {
	Loc      string
	Priority string
}

func view(s *core.Sitemap) []entryView {
	out := make([]entryView, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, entryView{e.Loc, e.Priority})
	}
	return out
}

func TestEngine_EndToEnd(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":       links("/page2", "https://other.test/x", "/img.png"),
		"https://a.test/page2": links("/"),
	}}

	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", options(2))
	require.NoError(t, err)

	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/page2", "0.5"},
		{"https://a.test/", "0.4"},
	}, view(sitemap))
	assert.Equal(t, 2, sitemap.PagesFetched)
	assert.NotEmpty(t, sitemap.RunID)

	for _, e := range sitemap.Entries {
		assert.NotContains(t, e.Loc, "other.test")
		assert.NotContains(t, e.Loc, "img.png")
		assert.Equal(t, core.ChangeWeekly, e.ChangeFreq)
		assert.Equal(t, "2026-10-18", e.LastModDate())
	}
}

func TestEngine_Generate(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test": links("/page2"),
	}}

	doc, err := newEngine(f).Generate(context.Background(), "https://a.test/", options(1))
	require.NoError(t, err)

	xml := string(doc)
	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, xml, "<loc>https://a.test</loc>")
	assert.Contains(t, xml, "<loc>https://a.test/page2</loc>")
	assert.Contains(t, xml, "<lastmod>2026-10-18</lastmod>")
	assert.Less(t, strings.Index(xml, "<loc>https://a.test</loc>"), strings.Index(xml, "<loc>https://a.test/page2</loc>"))
}

func TestEngine_RootPriorityIgnoresConfiguredPriority(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{"https://a.test": links("/a")}}

	opts := options(1)
	opts.Priority = 0.2
	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", opts)
	require.NoError(t, err)

	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/a", "0.2"},
	}, view(sitemap))
}

func TestEngine_RespectsDepth(t *testing.T) {
	// A chain a.test -> /1 -> /2 -> /3 -> /4.
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":   links("/1"),
		"https://a.test/1": links("/2"),
		"https://a.test/2": links("/3"),
		"https://a.test/3": links("/4"),
	}}

	tests := []struct {
		depth int
		want  []string
	}{
		{1, []string{"https://a.test", "https://a.test/1"}},
		{2, []string{"https://a.test", "https://a.test/1", "https://a.test/2"}},
		{3, []string{"https://a.test", "https://a.test/1", "https://a.test/2", "https://a.test/3"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth %d", tt.depth), func(t *testing.T) {
			f.fetched = nil
			sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", options(tt.depth))
			require.NoError(t, err)

			var locs []string
			for _, e := range sitemap.Entries {
				locs = append(locs, e.Loc)
			}
			assert.Equal(t, tt.want, locs)
			assert.Len(t, f.fetched, tt.depth)
		})
	}
}

func TestEngine_PriorityDecay(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":   links("/1"),
		"https://a.test/1": links("/2"),
		"https://a.test/2": links("/3"),
		"https://a.test/3": links("/4"),
		"https://a.test/4": links("/5"),
		"https://a.test/5": links("/6"),
		"https://a.test/6": links("/7"),
	}}

	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", options(7))
	require.NoError(t, err)

	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/1", "0.5"},
		{"https://a.test/2", "0.4"},
		{"https://a.test/3", "0.3"},
		{"https://a.test/4", "0.2"},
		{"https://a.test/5", "0.1"},
		{"https://a.test/6", "0.1"},
		{"https://a.test/7", "0.1"},
	}, view(sitemap))
}

func TestEngine_FragmentDedup(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":         links("/doc#intro", "/doc#usage", "/doc", "/doc?v=2"),
		"https://a.test/doc":     links("/doc#again"),
		"https://a.test/doc?v=2": links(),
	}}

	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", options(3))
	require.NoError(t, err)

	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/doc", "0.5"},
		{"https://a.test/doc?v=2", "0.5"},
	}, view(sitemap))

	// /doc is fetched once even though it was reached through three fragments.
	count := 0
	for _, u := range f.fetched {
		if strings.HasPrefix(u, "https://a.test/doc#") || u == "https://a.test/doc" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEngine_FiltersExternalAndAssets(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test": links(
			"http://a.test/plain-http",
			"https://a.test:8443/other-port",
			"https://www.a.test/sub",
			"https://other.test/x",
			"/photo.JPG", "/style.css", "/app.js", "/doc.pdf", "/a.zip", "/b.rar", "/c.jpeg", "/d.gif", "/e.png",
			"/image.png?size=2",
			"/page.html",
			"mailto:x@a.test",
			"#top",
		),
	}}

	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", options(1))
	require.NoError(t, err)

	var locs []string
	for _, e := range sitemap.Entries {
		locs = append(locs, e.Loc)
	}
	assert.Equal(t, []string{
		"https://a.test",
		"http://a.test/plain-http",
		"https://a.test:8443/other-port",
		"https://a.test/page.html",
	}, locs)
}

func TestEngine_FetchFailuresDoNotAbort(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":       links("/dead", "/alive"),
		"https://a.test/alive": links("/deeper"),
	}}

	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", options(3))
	require.NoError(t, err)

	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/dead", "0.5"},
		{"https://a.test/alive", "0.5"},
		{"https://a.test/deeper", "0.4"},
	}, view(sitemap))
}

func TestEngine_UnreachableRoot(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{}}

	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", options(3))
	require.NoError(t, err)
	assert.Equal(t, []entryView{{"https://a.test", "1.0"}}, view(sitemap))
}

func TestEngine_DepthFirstOrderMatchesRecursion(t *testing.T) {
	// /b is linked from the root and from /a. Depth-first reaches it
	// through /a first, so it takes /a's lower priority.
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":   links("/a", "/b"),
		"https://a.test/a": links("/b", "/c"),
		"https://a.test/b": links("/d"),
	}}

	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", options(3))
	require.NoError(t, err)

	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/a", "0.5"},
		{"https://a.test/b", "0.4"},
		{"https://a.test/d", "0.3"},
		{"https://a.test/c", "0.4"},
	}, view(sitemap))
}

func TestEngine_BreadthFirst(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":   links("/a", "/b"),
		"https://a.test/a": links("/b", "/c"),
		"https://a.test/b": links("/d"),
	}}

	opts := options(3)
	opts.Order = crawl.BreadthFirst
	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", opts)
	require.NoError(t, err)

	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/a", "0.5"},
		{"https://a.test/b", "0.5"},
		{"https://a.test/c", "0.4"},
		{"https://a.test/d", "0.4"},
	}, view(sitemap))
}

func TestEngine_MaxPages(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":   links("/a", "/b"),
		"https://a.test/a": links("/c"),
		"https://a.test/b": links("/d"),
	}}

	opts := options(5)
	opts.MaxPages = 2
	sitemap, err := newEngine(f).Crawl(context.Background(), "https://a.test", opts)
	require.NoError(t, err)

	assert.Equal(t, 2, sitemap.PagesFetched)
	assert.Len(t, f.fetched, 2)
	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/a", "0.5"},
		{"https://a.test/c", "0.4"},
		{"https://a.test/b", "0.5"},
	}, view(sitemap))
}

func TestEngine_InvalidInput(t *testing.T) {
	e := newEngine(&siteFetcher{})

	for _, bad := range []string{"", "not a url", "ftp://a.test", "https://localhost"} {
		_, err := e.Generate(context.Background(), bad, options(2))
		assert.ErrorIs(t, err, crawl.ErrInvalidURL, bad)
	}

	cases := map[string]func(*crawl.Options){
		"zero depth":     func(o *crawl.Options) { o.MaxDepth = 0 },
		"low priority":   func(o *crawl.Options) { o.Priority = 0.05 },
		"high priority":  func(o *crawl.Options) { o.Priority = 1.5 },
		"bad changefreq": func(o *crawl.Options) { o.ChangeFreq = "sometimes" },
		"bad order":      func(o *crawl.Options) { o.Order = "random" },
		"negative pages": func(o *crawl.Options) { o.MaxPages = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			opts := options(2)
			mutate(&opts)
			_, err := e.Crawl(context.Background(), "https://a.test", opts)
			assert.ErrorIs(t, err, crawl.ErrInvalidOptions)
		})
	}
}

func TestEngine_ContextCancelled(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{"https://a.test": links("/a")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(f).Crawl(ctx, "https://a.test", options(2))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEngine_Idempotent(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":   links("/a", "/b"),
		"https://a.test/a": links("/b", "/c"),
	}}
	e := newEngine(f)

	first, err := e.Generate(context.Background(), "https://a.test", options(3))
	require.NoError(t, err)
	second, err := e.Generate(context.Background(), "https://a.test", options(3))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestEngine_ConcurrentCallsAreIsolated(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test":    links("/a1", "/a2"),
		"https://b.test":    links("/b1"),
		"https://b.test/b1": links("/b2"),
	}}
	e := newEngine(f)

	var wg sync.WaitGroup
	results := make([]*core.Sitemap, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			base := "https://a.test"
			if i%2 == 1 {
				base = "https://b.test"
			}
			s, err := e.Crawl(context.Background(), base, options(3))
			if err == nil {
				results[i] = s
			}
		}(i)
	}
	wg.Wait()

	for i, s := range results {
		require.NotNil(t, s)
		require.Len(t, s.Entries, 3)
		if i%2 == 0 {
			assert.Equal(t, "https://a.test/a2", s.Entries[2].Loc)
		} else {
			assert.Equal(t, "https://b.test/b2", s.Entries[2].Loc)
		}
	}
}

type denyPrefix string

func (d denyPrefix) Allowed(_ context.Context, target *url.URL) bool {
	return !strings.HasPrefix(target.Path, string(d))
}

func TestEngine_RobotsFilter(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{
		"https://a.test": links("/public", "/private/x"),
	}}

	sitemap, err := newEngine(f, crawl.WithRobots(denyPrefix("/private"))).
		Crawl(context.Background(), "https://a.test", options(2))
	require.NoError(t, err)

	assert.Equal(t, []entryView{
		{"https://a.test", "1.0"},
		{"https://a.test/public", "0.5"},
	}, view(sitemap))
}

func TestCalculatePriority(t *testing.T) {
	assert.Equal(t, "0.5", crawl.CalculatePriority(0.5, 1))
	assert.Equal(t, "0.4", crawl.CalculatePriority(0.5, 2))
	assert.Equal(t, "0.3", crawl.CalculatePriority(0.5, 3))
	assert.Equal(t, "0.1", crawl.CalculatePriority(0.5, 5))
	assert.Equal(t, "0.1", crawl.CalculatePriority(0.5, 6))
	assert.Equal(t, "0.1", crawl.CalculatePriority(0.5, 60))
	assert.Equal(t, "1.0", crawl.CalculatePriority(1.0, 1))
	assert.Equal(t, "0.7", crawl.CalculatePriority(0.8, 2))

	prev := 2.0
	for depth := 1; depth <= 15; depth++ {
		var p float64
		_, err := fmt.Sscanf(crawl.CalculatePriority(0.9, depth), "%g", &p)
		require.NoError(t, err)
		assert.LessOrEqual(t, p, prev)
		assert.GreaterOrEqual(t, p, 0.1)
		prev = p
	}
}
