package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/sitetext/internal/extract"
	"github.com/jmylchreest/sitetext/internal/logger"
	"github.com/jmylchreest/sitetext/internal/store"
	"github.com/jmylchreest/sitetext/pkg/fetcher"
)

// DocumentWriter persists extracted documents.
type DocumentWriter interface {
	Save(doc store.Document) (string, error)
}

// PDFTextExtractor pulls text out of a PDF body.
type PDFTextExtractor interface {
	Text(body []byte) (string, error)
}

// Summary reports what a crawl did.
type Summary struct {
	Visited     int
	Saved       int
	Existing    int // documents skipped because the name was taken
	TooShort    int // documents skipped for lack of text
	FetchErrors int
	PDFErrors   int
	Duration    time.Duration
}

// Crawler performs a bounded depth-first walk of one site.
type Crawler struct {
	fetcher fetcher.Fetcher
	writer  DocumentWriter
	pdf     PDFTextExtractor
	links   LinkFilter
	config  Config
}

// New creates a new Crawler. The config should already be validated.
func New(f fetcher.Fetcher, w DocumentWriter, pdf PDFTextExtractor, cfg Config) *Crawler {
	return &Crawler{
		fetcher: f,
		writer:  w,
		pdf:     pdf,
		links:   LinkFilter{BaseURL: cfg.BaseURL},
		config:  cfg,
	}
}

// Crawl walks the site starting at seed. Per-page failures are logged and
// skipped; the only error returned is ctx's, after which the documents
// already written remain in place.
func (c *Crawler) Crawl(ctx context.Context, seed string) (Summary, error) {
	start := time.Now()
	var sum Summary

	logger.Debug("crawler starting",
		"seed", seed,
		"base_url", c.config.BaseURL,
		"max_pages", c.config.MaxPages,
		"delay", c.config.Delay)

	frontier := NewFrontier(c.config.MaxPages)
	frontier.Push(seed)

	requests := 0
	var err error
	for !frontier.Full() {
		if err = ctx.Err(); err != nil {
			break
		}

		next, ok := frontier.Pop()
		if !ok {
			break
		}
		pageURL, ok := frontier.Claim(next)
		if !ok {
			continue
		}

		if requests > 0 {
			if err = sleep(ctx, c.config.Delay); err != nil {
				break
			}
		}
		requests++

		kind := KindOf(pageURL)
		logger.Info("visiting",
			"url", pageURL,
			"kind", kind,
			"visited", frontier.Visited(),
			"pending", frontier.Len())

		switch kind {
		case KindPDF:
			c.processPDF(ctx, pageURL, &sum)
		default:
			frontier.Push(unvisited(frontier, c.processHTML(ctx, pageURL, &sum))...)
		}
	}

	sum.Visited = frontier.Visited()
	sum.Duration = time.Since(start)

	if err != nil {
		logger.Warn("crawl interrupted", "visited", sum.Visited, "error", err)
		return sum, fmt.Errorf("crawl interrupted: %w", err)
	}
	logger.Info("crawl complete",
		"visited", sum.Visited,
		"saved", sum.Saved,
		"duration", sum.Duration.Round(time.Millisecond))
	return sum, nil
}

// processHTML fetches and persists a page and returns its followable links.
func (c *Crawler) processHTML(ctx context.Context, pageURL string, sum *Summary) []string {
	content, err := c.fetcher.Fetch(ctx, pageURL, c.fetchOptions(c.config.HTMLTimeout))
	if err != nil {
		logger.Warn("fetch failed", "url", pageURL, "error", err)
		sum.FetchErrors++
		return nil
	}

	doc, err := extract.ParseHTML(content.Body)
	if err != nil {
		logger.Warn("parse failed", "url", pageURL, "error", err)
		sum.FetchErrors++
		return nil
	}

	c.save(pageURL, extract.VisibleText(doc), sum)

	links := c.links.ExtractLinks(doc, pageURL)
	logger.Debug("links extracted", "url", pageURL, "count", len(links))
	return links
}

// processPDF downloads and persists a PDF. PDFs are leaves.
func (c *Crawler) processPDF(ctx context.Context, pdfURL string, sum *Summary) {
	logger.Info("processing pdf", "url", pdfURL)

	content, err := c.fetcher.Fetch(ctx, pdfURL, c.fetchOptions(c.config.PDFTimeout))
	if err != nil {
		logger.Warn("pdf download failed", "url", pdfURL, "error", err)
		sum.FetchErrors++
		return
	}

	text, err := c.pdf.Text(content.Body)
	if err != nil {
		logger.Error("pdf extraction failed", "url", pdfURL, "error", err)
		sum.PDFErrors++
		return
	}

	c.save(pdfURL, text, sum)
}

func (c *Crawler) fetchOptions(timeout time.Duration) fetcher.Options {
	return fetcher.Options{
		UserAgent: c.config.UserAgent,
		Timeout:   timeout,
		Headers:   c.config.Headers,
	}
}

// unvisited drops links to pages already claimed, so back-links to the
// site root do not pile up on the stack. Claim still rejects duplicates
// pushed before their first visit.
func unvisited(f *Frontier, links []string) []string {
	fresh := links[:0]
	for _, link := range links {
		if !f.IsVisited(link) {
			fresh = append(fresh, link)
		}
	}
	return fresh
}

func (c *Crawler) save(pageURL, text string, sum *Summary) {
	name := DocumentName(c.config.BaseURL, pageURL)
	path, err := c.writer.Save(store.Document{Name: name, Text: text})
	switch {
	case err == nil:
		sum.Saved++
		logger.Info("saved", "path", path)
	case errors.Is(err, store.ErrExists):
		sum.Existing++
		logger.Debug("document already exists, skipped", "name", name, "url", pageURL)
	case errors.Is(err, store.ErrTooShort):
		sum.TooShort++
		logger.Debug("document too short, skipped", "url", pageURL)
	default:
		logger.Error("write failed", "name", name, "error", err)
	}
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
