// Package config loads SitemapGen settings.
//
// Values are layered: Default(), then an optional YAML file, then
// SITEMAPGEN_* environment variables (optionally read from .env files),
// and finally whatever CLI flags the user set explicitly.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/sitemapgen/core"
	"github.com/gaurav-prasanna/sitemapgen/core/fetch"
	"github.com/gaurav-prasanna/sitemapgen/crawl"
	"github.com/gaurav-prasanna/sitemapgen/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SITEMAPGEN_"

// Config captures everything the CLI needs to run a crawl.
type Config struct {
	Crawl   CrawlConfig   `yaml:"crawl"`
	HTTP    HTTPConfig    `yaml:"http"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// CrawlConfig controls traversal and the generated entries.
type CrawlConfig struct {
	MaxDepth      int     `yaml:"max_depth"`
	ChangeFreq    string  `yaml:"change_freq"`
	Priority      float64 `yaml:"priority"`
	MaxPages      int     `yaml:"max_pages"`
	Order         string  `yaml:"order"`
	ParseHTML     bool    `yaml:"parse_html"`
	RespectRobots bool    `yaml:"respect_robots"`
}

// HTTPConfig controls outbound requests. A zero MaxRedirects selects
// the fetcher default.
type HTTPConfig struct {
	UserAgent    string   `yaml:"user_agent"`
	Timeout      Duration `yaml:"timeout"`
	MaxRedirects int      `yaml:"max_redirects"`
}

// OutputConfig selects where results go and which reports accompany sitemap.xml.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Stdout   bool   `yaml:"stdout"`
	JSON     bool   `yaml:"json"`
	Markdown bool   `yaml:"markdown"`
	PDF      bool   `yaml:"pdf"`
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Structured bool   `yaml:"structured"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	opts := crawl.DefaultOptions()
	return Config{
		Crawl: CrawlConfig{
			MaxDepth:   opts.MaxDepth,
			ChangeFreq: string(opts.ChangeFreq),
			Priority:   opts.Priority,
			Order:      string(opts.Order),
		},
		HTTP: HTTPConfig{
			UserAgent:    core.DefaultUserAgent,
			Timeout:      DurationFrom(fetch.DefaultTimeout),
			MaxRedirects: fetch.DefaultMaxRedirects,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads, merges, and validates configuration from a YAML file.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return &cfg, nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()

	return LoadFromReader(fh)
}

// LoadFromReader decodes configuration from an arbitrary reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalise()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv loads .env files from the working directory into the process
// environment. Missing files are skipped.
func LoadEnv(logger logging.Logger) {
	files := []string{".env", ".env.local"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if len(loaded) > 0 && logger != nil {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

// ApplyEnv overrides fields from SITEMAPGEN_* environment variables.
// Values that do not parse are reported as errors.
func (c *Config) ApplyEnv() error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	num("MAX_DEPTH", &c.Crawl.MaxDepth)
	str("CHANGE_FREQ", &c.Crawl.ChangeFreq)
	if v, ok := os.LookupEnv(EnvPrefix + "PRIORITY"); ok {
		p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPRIORITY: %w", EnvPrefix, err))
		} else {
			c.Crawl.Priority = p
		}
	}
	num("MAX_PAGES", &c.Crawl.MaxPages)
	str("ORDER", &c.Crawl.Order)
	flag("PARSE_HTML", &c.Crawl.ParseHTML)
	flag("RESPECT_ROBOTS", &c.Crawl.RespectRobots)
	str("USER_AGENT", &c.HTTP.UserAgent)
	if v, ok := os.LookupEnv(EnvPrefix + "TIMEOUT"); ok {
		if err := c.HTTP.Timeout.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err))
		}
	}
	str("OUTPUT_DIR", &c.Output.Dir)
	str("LOG_LEVEL", &c.Logging.Level)
	flag("LOG_JSON", &c.Logging.Structured)

	c.normalise()
	return errors.Join(errs...)
}

// Validate enforces required invariants for the configuration.
func (c Config) Validate() error {
	if _, err := c.CrawlOptions(); err != nil {
		return err
	}
	if c.HTTP.UserAgent == "" {
		return errors.New("http.user_agent must be set")
	}
	if c.HTTP.Timeout.Duration <= 0 {
		return fmt.Errorf("http.timeout must be > 0 (got %s)", c.HTTP.Timeout.Duration)
	}
	if c.HTTP.MaxRedirects < 0 {
		return fmt.Errorf("http.max_redirects must be >= 0 (got %d)", c.HTTP.MaxRedirects)
	}
	return nil
}

// CrawlOptions converts the crawl section into engine options.
func (c Config) CrawlOptions() (crawl.Options, error) {
	freq, err := core.ParseChangeFreq(c.Crawl.ChangeFreq)
	if err != nil {
		return crawl.Options{}, fmt.Errorf("crawl.change_freq: %w", err)
	}
	order, err := crawl.ParseOrder(c.Crawl.Order)
	if err != nil {
		return crawl.Options{}, fmt.Errorf("crawl.order: %w", err)
	}
	opts := crawl.Options{
		MaxDepth:   c.Crawl.MaxDepth,
		ChangeFreq: freq,
		Priority:   c.Crawl.Priority,
		MaxPages:   c.Crawl.MaxPages,
		Order:      order,
	}
	if err := opts.Validate(); err != nil {
		return crawl.Options{}, err
	}
	return opts, nil
}

func (c *Config) normalise() {
	c.Crawl.ChangeFreq = strings.ToLower(strings.TrimSpace(c.Crawl.ChangeFreq))
	c.Crawl.Order = strings.ToLower(strings.TrimSpace(c.Crawl.Order))
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}
