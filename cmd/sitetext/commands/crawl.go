package commands

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sitetext/internal/crawler"
	"github.com/jmylchreest/sitetext/internal/extract"
	"github.com/jmylchreest/sitetext/internal/logger"
	"github.com/jmylchreest/sitetext/internal/report"
	"github.com/jmylchreest/sitetext/internal/store"
	"github.com/jmylchreest/sitetext/pkg/fetcher"
)

const defaultTextsDir = "Data/texts"

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl a site and save the text of its pages and PDFs",
	Long: `Crawl walks the site depth-first from the seed URL, following only links
that start with the base URL, and writes one text file per page or PDF.

The first document written under a name wins; pages with almost no text
are not written. Interrupting the crawl keeps what was already saved.

Examples:
  sitetext crawl
  sitetext crawl --base-url "https://example.edu/" --seed "https://example.edu/docs/"
  sitetext crawl --max-pages 20 --delay 500ms -o /tmp/texts`,
	PreRunE: bindFlags,
	RunE:    runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	addCrawlFlags(crawlCmd.Flags())
}

func addCrawlFlags(flags *pflag.FlagSet) {
	defaults := crawler.DefaultConfig()

	flags.String("base-url", defaults.BaseURL, "only URLs starting with this string are crawled")
	flags.String("seed", "", "URL to start from (default: base URL)")
	flags.StringP("texts-dir", "o", defaultTextsDir, "folder for extracted text files")
	flags.Int("max-pages", defaults.MaxPages, "max distinct URLs to visit")
	flags.Duration("delay", defaults.Delay, "pause between requests")
	flags.Duration("html-timeout", defaults.HTMLTimeout, "timeout for HTML pages")
	flags.Duration("pdf-timeout", defaults.PDFTimeout, "timeout for PDF downloads")
	flags.String("user-agent", "", "User-Agent header (default: desktop Chrome)")
	flags.StringToString("header", nil, "extra request header, e.g. Accept-Language=es-MX (repeatable)")
	flags.String("max-body-size", "0", "max response size (e.g., 50MB, 0=no limit)")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	section, err := crawlSite(ctx)
	if section != nil {
		if reportErr := emitReport(cmd, report.Report{Crawl: section}); reportErr != nil {
			return reportErr
		}
	}
	return err
}

// crawlSite builds a crawler from viper settings and runs it. The section
// is nil only when the crawl could not start.
func crawlSite(ctx context.Context) (*report.Crawl, error) {
	cfg, err := crawlConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return nil, err
	}

	maxBody, err := parseSize(viper.GetString("max-body-size"))
	if err != nil {
		logger.Error("invalid max-body-size", "value", viper.GetString("max-body-size"), "error", err)
		return nil, err
	}

	dir := viper.GetString("texts-dir")
	writer, err := store.NewWriter(afero.NewOsFs(), dir, store.DefaultMinLength)
	if err != nil {
		return nil, err
	}

	f := fetcher.NewStatic(fetcher.StaticConfig{
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.HTMLTimeout,
		MaxBodySize: maxBody,
	})
	defer f.Close()

	seed := viper.GetString("seed")
	if seed == "" {
		seed = cfg.BaseURL
	}

	logInfo("Crawling %s into %s (max %s pages)", seed, dir, humanize.Comma(int64(cfg.MaxPages)))

	c := crawler.New(f, writer, &extract.PDFExtractor{}, cfg)
	sum, err := c.Crawl(ctx, seed)

	section := report.FromCrawl(seed, dir, sum)
	section.Interrupted = err != nil
	return section, err
}

// crawlConfig reads crawler settings from viper and validates them.
func crawlConfig() (crawler.Config, error) {
	cfg := crawler.DefaultConfig()
	cfg.BaseURL = viper.GetString("base-url")
	cfg.MaxPages = viper.GetInt("max-pages")
	cfg.Delay = viper.GetDuration("delay")
	cfg.HTMLTimeout = viper.GetDuration("html-timeout")
	cfg.PDFTimeout = viper.GetDuration("pdf-timeout")
	cfg.UserAgent = viper.GetString("user-agent")
	// viper may lower-case map keys; send canonical header names.
	for k, v := range viper.GetStringMapString("header") {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[http.CanonicalHeaderKey(k)] = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parseSize parses a human size such as "10MB". Empty or "0" means no limit.
func parseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	if n > math.MaxInt {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int(n), nil
}
