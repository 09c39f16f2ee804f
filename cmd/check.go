// Package cmd: check command.
// Runs the URL validator against a single URL without crawling.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/sitemapgen/core/validate"
	"github.com/gaurav-prasanna/sitemapgen/logging"
)

var (
	flagCheckTimeout   time.Duration
	flagCheckUserAgent string
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Validate a URL and probe its reachability and robots.txt policy",
	Long: `Check normalizes the URL, reports whether it is a valid http(s) URL,
sends a HEAD request to see if it is reachable, and asks the host's
robots.txt whether the given user agent may fetch it.

Examples:
  sitemapgen check https://example.com/docs/
  sitemapgen check https://example.com --user_agent Googlebot --timeout 5s`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&flagCheckTimeout, "timeout", 10*time.Second, "Timeout for the HEAD probe")
	checkCmd.Flags().StringVar(&flagCheckUserAgent, "user_agent", "*", "User agent whose robots.txt rules apply")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	raw := args[0]
	normalized := validate.NormalizeURL(raw)
	valid := validate.IsValidURL(normalized)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "URL:        %s\n", raw)
	fmt.Fprintf(out, "Normalized: %s\n", normalized)
	fmt.Fprintf(out, "Valid:      %t\n", valid)
	if !valid {
		return fmt.Errorf("invalid URL: %s", raw)
	}

	v := validate.New(cfg.HTTP.UserAgent)
	ctx := commandContext(cmd)

	accessible := v.IsURLAccessible(ctx, normalized, flagCheckTimeout)
	allowed := v.IsAllowedByRobots(ctx, normalized, flagCheckUserAgent)
	fmt.Fprintf(out, "Accessible: %t\n", accessible)
	fmt.Fprintf(out, "Robots:     %s\n", verdict(allowed))

	logger.WithFields(logging.Fields{
		"url":        normalized,
		"accessible": accessible,
		"allowed":    allowed,
		"user_agent": flagCheckUserAgent,
	}).Debug("check finished")
	return nil
}

func verdict(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "disallowed"
}
