// Package report renders end-of-run summaries as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/sitetext/internal/cleanrun"
	"github.com/jmylchreest/sitetext/internal/crawler"
)

// Format represents report format types.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", s)
	}
}

// Report is the outcome of one CLI invocation. Steps that did not run
// are nil.
type Report struct {
	Crawl *Crawl `json:"crawl,omitempty" yaml:"crawl,omitempty"`
	Clean *Clean `json:"clean,omitempty" yaml:"clean,omitempty"`
}

// Crawl summarizes a crawl.
type Crawl struct {
	Seed        string `json:"seed" yaml:"seed"`
	OutputDir   string `json:"output_dir" yaml:"output_dir"`
	Visited     int    `json:"visited" yaml:"visited"`
	Saved       int    `json:"saved" yaml:"saved"`
	Existing    int    `json:"existing" yaml:"existing"`
	TooShort    int    `json:"too_short" yaml:"too_short"`
	FetchErrors int    `json:"fetch_errors" yaml:"fetch_errors"`
	PDFErrors   int    `json:"pdf_errors" yaml:"pdf_errors"`
	DurationMS  int64  `json:"duration_ms" yaml:"duration_ms"`
	Interrupted bool   `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
}

// Clean summarizes a cleaning run.
type Clean struct {
	InputDir    string `json:"input_dir" yaml:"input_dir"`
	OutputDir   string `json:"output_dir" yaml:"output_dir"`
	Cleaner     string `json:"cleaner" yaml:"cleaner"`
	Files       int    `json:"files" yaml:"files"`
	Written     int    `json:"written" yaml:"written"`
	Skipped     int    `json:"skipped" yaml:"skipped"`
	Failed      int    `json:"failed" yaml:"failed"`
	InputBytes  int64  `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int64  `json:"output_bytes" yaml:"output_bytes"`
	DurationMS  int64  `json:"duration_ms" yaml:"duration_ms"`
}

// FromCrawl builds a crawl section from a crawler summary.
func FromCrawl(seed, dir string, s crawler.Summary) *Crawl {
	return &Crawl{
		Seed:        seed,
		OutputDir:   dir,
		Visited:     s.Visited,
		Saved:       s.Saved,
		Existing:    s.Existing,
		TooShort:    s.TooShort,
		FetchErrors: s.FetchErrors,
		PDFErrors:   s.PDFErrors,
		DurationMS:  s.Duration.Milliseconds(),
	}
}

// FromClean builds a clean section from a cleaning summary.
func FromClean(in, out, cleanerName string, s cleanrun.Summary) *Clean {
	return &Clean{
		InputDir:    in,
		OutputDir:   out,
		Cleaner:     cleanerName,
		Files:       s.Files,
		Written:     s.Written,
		Skipped:     s.Skipped,
		Failed:      s.Failed,
		InputBytes:  s.InputBytes,
		OutputBytes: s.OutputBytes,
		DurationMS:  s.Duration.Milliseconds(),
	}
}

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, r.String())
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// String returns a human-readable summary.
func (r Report) String() string {
	var sb strings.Builder

	if c := r.Crawl; c != nil {
		status := "Crawled"
		if c.Interrupted {
			status = "Crawl interrupted after"
		}
		sb.WriteString(fmt.Sprintf("%s %s URLs from %s in %v\n",
			status, humanize.Comma(int64(c.Visited)), c.Seed, millis(c.DurationMS)))
		sb.WriteString(fmt.Sprintf("  saved %s documents to %s\n", humanize.Comma(int64(c.Saved)), c.OutputDir))
		sb.WriteString(fmt.Sprintf("  skipped %s existing, %s too short\n",
			humanize.Comma(int64(c.Existing)), humanize.Comma(int64(c.TooShort))))
		if c.FetchErrors > 0 || c.PDFErrors > 0 {
			sb.WriteString(fmt.Sprintf("  errors: %s fetch, %s pdf\n",
				humanize.Comma(int64(c.FetchErrors)), humanize.Comma(int64(c.PDFErrors))))
		}
	}

	if c := r.Clean; c != nil {
		sb.WriteString(fmt.Sprintf("Cleaned %s of %s files from %s with %s in %v\n",
			humanize.Comma(int64(c.Written)), humanize.Comma(int64(c.Files)),
			c.InputDir, c.Cleaner, millis(c.DurationMS)))
		sb.WriteString(fmt.Sprintf("  wrote %s to %s (read %s)\n",
			humanize.Bytes(uint64(c.OutputBytes)), c.OutputDir, humanize.Bytes(uint64(c.InputBytes))))
		if c.Skipped > 0 || c.Failed > 0 {
			sb.WriteString(fmt.Sprintf("  skipped %s too short, %s failed\n",
				humanize.Comma(int64(c.Skipped)), humanize.Comma(int64(c.Failed))))
		}
	}

	return sb.String()
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
