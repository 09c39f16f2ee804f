// Package crawl builds a sitemap by walking a site's internal links.
// Starting at a base URL it fetches pages up to a depth bound, keeps the
// links that stay on the base host and are not static assets, and records
// each one once with a priority that decays with link distance from the root.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gaurav-prasanna/sitemapgen/core"
	"github.com/gaurav-prasanna/sitemapgen/core/render"
	"github.com/gaurav-prasanna/sitemapgen/core/validate"
	"github.com/gaurav-prasanna/sitemapgen/logging"
)

// RootPriority is the priority of the base URL, whatever the configured priority.
const RootPriority = "1.0"

const (
	minPriority = 0.1
	maxPriority = 1.0
	decayStep   = 0.1
)

var (
	// ErrInvalidURL is returned when the base URL fails validation.
	ErrInvalidURL = errors.New("invalid base URL")
	// ErrInvalidOptions is returned when crawl options are out of range.
	ErrInvalidOptions = errors.New("invalid crawl options")
)

// Options are the per-call crawl parameters.
type Options struct {
	MaxDepth   int
	ChangeFreq core.ChangeFreq
	Priority   float64
	// MaxPages caps the number of pages fetched. Zero means no cap.
	MaxPages int
	Order    Order
}

// DefaultOptions returns the options used when the caller sets nothing.
func DefaultOptions() Options {
	return Options{
		MaxDepth:   3,
		ChangeFreq: core.ChangeWeekly,
		Priority:   0.5,
		Order:      DepthFirst,
	}
}

// Validate checks that every option is in range.
func (o Options) Validate() error {
	if o.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be > 0 (got %d)", ErrInvalidOptions, o.MaxDepth)
	}
	if !o.ChangeFreq.Valid() {
		return fmt.Errorf("%w: unknown change frequency %q", ErrInvalidOptions, o.ChangeFreq)
	}
	if math.IsNaN(o.Priority) || o.Priority < minPriority || o.Priority > maxPriority {
		return fmt.Errorf("%w: priority must be within [0.1, 1.0] (got %v)", ErrInvalidOptions, o.Priority)
	}
	if o.MaxPages < 0 {
		return fmt.Errorf("%w: max pages must be >= 0 (got %d)", ErrInvalidOptions, o.MaxPages)
	}
	if _, err := ParseOrder(string(o.Order)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// CalculatePriority returns base lowered by 0.1 per level below the first,
// never below 0.1, formatted to one decimal.
func CalculatePriority(base float64, depth int) string {
	p := math.Max(minPriority, base-float64(depth-1)*decayStep)
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// Engine crawls sites and produces sitemaps. An Engine holds no crawl
// state, so one value may serve concurrent calls.
type Engine struct {
	fetcher   core.Fetcher
	extractor core.LinkExtractor
	robots    RobotsFilter
	logger    logging.Logger
	now       func() time.Time
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithRobots drops links the filter disallows.
func WithRobots(filter RobotsFilter) EngineOption {
	return func(e *Engine) { e.robots = filter }
}

// WithLogger sets the logger used for crawl progress.
func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithClock replaces time.Now as the source of the generation date.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine fetching with fetcher and reading links with extractor.
func NewEngine(fetcher core.Fetcher, extractor core.LinkExtractor, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logging.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// state is everything one crawl mutates. It is created per call and never shared.
type state struct {
	runID   string
	base    string
	host    string
	opts    Options
	date    time.Time
	pages   int
	visited map[string]struct{}
	seen    map[string]struct{}
	entries []core.Entry
}

// add records rawURL unless an entry with the same fragment-less URL exists.
func (s *state) add(rawURL string, priority string) {
	loc := StripFragment(rawURL)
	if _, ok := s.seen[loc]; ok {
		return
	}
	s.seen[loc] = struct{}{}
	s.entries = append(s.entries, core.Entry{
		Loc:          loc,
		LastModified: s.date,
		ChangeFreq:   s.opts.ChangeFreq,
		Priority:     priority,
	})
}

// Generate crawls baseURL and returns the sitemap XML document.
func (e *Engine) Generate(ctx context.Context, baseURL string, opts Options) ([]byte, error) {
	sitemap, err := e.Crawl(ctx, baseURL, opts)
	if err != nil {
		return nil, err
	}
	return render.SerializeXML(sitemap.Entries)
}

// Crawl walks the site under baseURL and returns the collected entries.
//
// The base URL is always the first entry, at priority 1.0. A page that
// cannot be fetched contributes no links; the crawl carries on elsewhere.
// The only errors are invalid input and context cancellation.
func (e *Engine) Crawl(ctx context.Context, baseURL string, opts Options) (*core.Sitemap, error) {
	if !validate.IsValidURL(baseURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	if opts.Order == "" {
		opts.Order = DepthFirst
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	order, _ := ParseOrder(string(opts.Order))
	opts.Order = order

	base := strings.TrimRight(baseURL, "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	st := &state{
		runID:   uuid.NewString(),
		base:    base,
		host:    parsed.Hostname(),
		opts:    opts,
		date:    e.now(),
		visited: make(map[string]struct{}),
		seen:    make(map[string]struct{}),
	}
	log := e.logger.WithFields(logging.Fields{"run_id": st.runID, "base_url": base})
	log.WithFields(logging.Fields{
		"max_depth": opts.MaxDepth,
		"order":     opts.Order,
		"max_pages": opts.MaxPages,
	}).Info("crawl started")
	started := time.Now()

	st.add(base, RootPriority)

	frontier := NewFrontier(opts.Order)
	if root := e.visit(ctx, st, base, 1); root != nil {
		frontier.Push(root)
	}

	for frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("crawl cancelled")
			return nil, fmt.Errorf("crawling %s: %w", base, err)
		}

		current := frontier.Current()
		link, ok := current.pop()
		if !ok {
			frontier.Drop()
			continue
		}
		if !e.keep(ctx, st, link) {
			continue
		}

		st.add(link, CalculatePriority(opts.Priority, current.depth))

		if child := e.visit(ctx, st, link, current.depth+1); child != nil {
			frontier.Push(child)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("crawling %s: %w", base, err)
	}

	log.WithFields(logging.Fields{
		"entries":  len(st.entries),
		"pages":    st.pages,
		"duration": time.Since(started).String(),
	}).Info("crawl finished")

	return &core.Sitemap{
		RunID:        st.runID,
		BaseURL:      base,
		GeneratedAt:  st.date,
		PagesFetched: st.pages,
		Entries:      st.entries,
	}, nil
}

// visit fetches pageURL at depth and returns the frame of its links, or
// nil when the page is past the depth bound, already visited, over the
// page cap, or could not be fetched. Pages are keyed and fetched without
// their fragment.
func (e *Engine) visit(ctx context.Context, st *state, pageURL string, depth int) *frame {
	if depth > st.opts.MaxDepth {
		return nil
	}
	key := StripFragment(pageURL)
	if _, ok := st.visited[key]; ok {
		return nil
	}
	if st.opts.MaxPages > 0 && st.pages >= st.opts.MaxPages {
		return nil
	}
	st.visited[key] = struct{}{}
	st.pages++

	result, err := e.fetcher.Fetch(ctx, key)
	if err != nil {
		e.logger.WithFields(logging.Fields{
			"run_id": st.runID,
			"url":    key,
			"depth":  depth,
		}).WithError(err).Debug("fetch failed, skipping page")
		return nil
	}

	links := e.extractor.Extract(result.HTML, key)
	e.logger.WithFields(logging.Fields{
		"run_id": st.runID,
		"url":    key,
		"depth":  depth,
		"links":  len(links),
	}).Debug("page fetched")

	return &frame{depth: depth, links: links}
}

// keep applies the sitemap membership rules to a discovered link.
func (e *Engine) keep(ctx context.Context, st *state, link string) bool {
	if !IsInternal(link, st.host) || IsExcludedAsset(link) {
		return false
	}
	if e.robots == nil {
		return true
	}
	target, err := url.Parse(link)
	if err != nil {
		return false
	}
	return e.robots.Allowed(ctx, target)
}
