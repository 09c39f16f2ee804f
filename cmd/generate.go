// Package cmd: generate command.
// This is the main command that orchestrates a sitemap run:
// validate → crawl → render → write.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/sitemapgen/config"
	"github.com/gaurav-prasanna/sitemapgen/core"
	"github.com/gaurav-prasanna/sitemapgen/core/extract"
	"github.com/gaurav-prasanna/sitemapgen/core/fetch"
	"github.com/gaurav-prasanna/sitemapgen/core/output"
	"github.com/gaurav-prasanna/sitemapgen/core/render"
	"github.com/gaurav-prasanna/sitemapgen/core/validate"
	"github.com/gaurav-prasanna/sitemapgen/crawl"
	"github.com/gaurav-prasanna/sitemapgen/logging"
)

// Flag variables.
var (
	flagDepth         int
	flagChangeFreq    string
	flagPriority      float64
	flagMaxPages      int
	flagOrder         string
	flagParseHTML     bool
	flagRespectRobots bool
	flagJSON          bool
	flagMarkdown      bool
	flagPDF           bool
	flagOutputDir     string
	flagStdout        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <url>",
	Short: "Crawl a site and write its sitemap.xml",
	Long: `Generate crawls the site under the given URL, following links that stay on
the same host up to --depth levels, and writes sitemap.xml. Reports in JSON,
Markdown or PDF can be written alongside it.

Examples:
  sitemapgen generate https://example.com
  sitemapgen generate https://example.com --depth 5 --changefreq daily --priority 0.8
  sitemapgen generate https://example.com --json --pdf --output_dir ./out
  sitemapgen generate https://example.com --stdout > sitemap.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	defaults := crawl.DefaultOptions()

	// Crawl flags.
	generateCmd.Flags().IntVar(&flagDepth, "depth", defaults.MaxDepth, "Maximum crawl depth (root is depth 1)")
	generateCmd.Flags().StringVar(&flagChangeFreq, "changefreq", string(defaults.ChangeFreq), "Change frequency for every entry")
	generateCmd.Flags().Float64Var(&flagPriority, "priority", defaults.Priority, "Base priority for first-level links, 0.1 to 1.0")
	generateCmd.Flags().IntVar(&flagMaxPages, "max_pages", 0, "Stop fetching after this many pages (0 = no limit)")
	generateCmd.Flags().StringVar(&flagOrder, "order", string(defaults.Order), "Traversal order: depth-first or breadth-first")
	generateCmd.Flags().BoolVar(&flagParseHTML, "parse_html", false, "Read links with an HTML parser instead of the href pattern")
	generateCmd.Flags().BoolVar(&flagRespectRobots, "respect_robots", false, "Skip links disallowed by robots.txt")

	// Report flags.
	generateCmd.Flags().BoolVar(&flagJSON, "json", false, "Also write a JSON report")
	generateCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Also write a Markdown report")
	generateCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Also write a PDF report")

	// Output flags.
	generateCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	generateCmd.Flags().BoolVar(&flagStdout, "stdout", false, "Print the sitemap XML instead of writing sitemap.xml")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.CrawlOptions()
	if err != nil {
		return err
	}

	baseURL := validate.NormalizeURL(args[0])
	if !validate.IsValidURL(baseURL) {
		return fmt.Errorf("invalid URL: %s (must be http or https with a host, e.g. https://example.com)", args[0])
	}

	engine := buildEngine(cfg, logger)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	sitemap, err := engine.Crawl(ctx, baseURL, opts)
	if err != nil {
		return err
	}

	return writeOutputs(cmd, cfg, *sitemap, logger)
}

// applyGenerateFlags copies the flags the user set onto cfg, so that
// unset flags never mask config file or environment values.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("depth") {
		cfg.Crawl.MaxDepth = flagDepth
	}
	if flags.Changed("changefreq") {
		cfg.Crawl.ChangeFreq = flagChangeFreq
	}
	if flags.Changed("priority") {
		cfg.Crawl.Priority = flagPriority
	}
	if flags.Changed("max_pages") {
		cfg.Crawl.MaxPages = flagMaxPages
	}
	if flags.Changed("order") {
		cfg.Crawl.Order = flagOrder
	}
	if flags.Changed("parse_html") {
		cfg.Crawl.ParseHTML = flagParseHTML
	}
	if flags.Changed("respect_robots") {
		cfg.Crawl.RespectRobots = flagRespectRobots
	}
	if flags.Changed("json") {
		cfg.Output.JSON = flagJSON
	}
	if flags.Changed("markdown") {
		cfg.Output.Markdown = flagMarkdown
	}
	if flags.Changed("pdf") {
		cfg.Output.PDF = flagPDF
	}
	if flags.Changed("output_dir") {
		cfg.Output.Dir = flagOutputDir
	}
	if flags.Changed("stdout") {
		cfg.Output.Stdout = flagStdout
	}
}

// buildEngine wires the fetcher, link extractor and optional robots
// filter selected by cfg.
func buildEngine(cfg *config.Config, logger logging.Logger) *crawl.Engine {
	fetcher := fetch.NewWithOptions(fetch.Options{
		UserAgent:    cfg.HTTP.UserAgent,
		Timeout:      cfg.HTTP.Timeout.Duration,
		MaxRedirects: cfg.HTTP.MaxRedirects,
	})

	var extractor core.LinkExtractor = extract.NewPatternExtractor()
	if cfg.Crawl.ParseHTML {
		extractor = extract.NewHTMLExtractor()
	}

	engineOpts := []crawl.EngineOption{crawl.WithLogger(logger)}
	if cfg.Crawl.RespectRobots {
		client := fetch.NewClient(cfg.HTTP.Timeout.Duration, cfg.HTTP.MaxRedirects)
		engineOpts = append(engineOpts, crawl.WithRobots(crawl.NewRobotsAgent(cfg.HTTP.UserAgent, client)))
	}
	return crawl.NewEngine(fetcher, extractor, engineOpts...)
}

// selectRenderers returns the renderers for the requested outputs,
// sitemap XML first.
func selectRenderers(cfg *config.Config) []core.Renderer {
	renderers := []core.Renderer{render.NewXMLRenderer()}
	if cfg.Output.JSON {
		renderers = append(renderers, render.NewJSONRenderer())
	}
	if cfg.Output.Markdown {
		renderers = append(renderers, render.NewMarkdownRenderer())
	}
	if cfg.Output.PDF {
		renderers = append(renderers, render.NewPDFRenderer())
	}
	return renderers
}

// writeOutputs renders the sitemap and any reports. With --stdout the XML
// goes to the command's stdout and only reports touch the disk.
func writeOutputs(cmd *cobra.Command, cfg *config.Config, sitemap core.Sitemap, logger logging.Logger) error {
	var writer *output.Writer
	for _, renderer := range selectRenderers(cfg) {
		data, err := renderer.Render(sitemap)
		if err != nil {
			return fmt.Errorf("render %s: %w", renderer.Extension(), err)
		}

		if cfg.Output.Stdout && renderer.Extension() == ".xml" {
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return fmt.Errorf("writing sitemap to stdout: %w", err)
			}
			continue
		}

		if writer == nil {
			writer, err = output.New(cfg.Output.Dir)
			if err != nil {
				return fmt.Errorf("initializing output writer: %w", err)
			}
		}
		path, err := writer.Write(data, renderer.Extension())
		if err != nil {
			return err
		}
		logger.WithFields(logging.Fields{
			"path":    path,
			"run_id":  sitemap.RunID,
			"entries": len(sitemap.Entries),
		}).Info("output written")
		if !cfg.Output.Stdout {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
		}
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
