// Package cleanrun applies a cleaner to every crawled document in a folder.
package cleanrun

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/jmylchreest/sitetext/internal/logger"
	"github.com/jmylchreest/sitetext/pkg/cleaner"
)

// DefaultMinLength is the shortest cleaned text, in characters, worth
// writing. Output must be strictly longer.
const DefaultMinLength = 30

// ErrInputNotFound indicates the input folder does not exist.
var ErrInputNotFound = errors.New("input folder not found")

// Options tunes a run.
type Options struct {
	// MinLength overrides DefaultMinLength when positive.
	MinLength int
}

// Summary reports what a run did.
type Summary struct {
	Files       int // .txt files found
	Written     int
	Skipped     int // cleaned text too short
	Failed      int
	InputBytes  int64
	OutputBytes int64
	Duration    time.Duration
}

// Run cleans every .txt file in in and writes results under the same
// name in out, which is created if needed. It returns out.
func Run(ctx context.Context, fsys afero.Fs, in, out string, c cleaner.Cleaner, opts Options) (string, Summary, error) {
	start := time.Now()
	var sum Summary

	minLength := opts.MinLength
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	if err := fsys.MkdirAll(out, 0o755); err != nil {
		return out, sum, fmt.Errorf("create output directory %s: %w", out, err)
	}

	names, err := listText(fsys, in)
	if err != nil {
		return out, sum, err
	}
	sum.Files = len(names)
	logger.Info("cleaning", "files", len(names), "input", in, "cleaner", c.Name())

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			sum.Duration = time.Since(start)
			return out, sum, fmt.Errorf("clean interrupted: %w", err)
		}

		src := filepath.Join(in, name)
		raw, err := afero.ReadFile(fsys, src)
		if err != nil {
			logger.Warn("read failed", "path", src, "error", err)
			sum.Failed++
			continue
		}
		sum.InputBytes += int64(len(raw))

		cleaned, err := c.Clean(strings.ToValidUTF8(string(raw), ""))
		if err != nil {
			logger.Warn("clean failed", "path", src, "error", err)
			sum.Failed++
			continue
		}

		if utf8.RuneCountInString(strings.TrimSpace(cleaned)) <= minLength {
			logger.Debug("cleaned text too short, skipped", "path", src)
			sum.Skipped++
			continue
		}

		dst := filepath.Join(out, name)
		if err := afero.WriteFile(fsys, dst, []byte(cleaned), 0o644); err != nil {
			logger.Error("write failed", "path", dst, "error", err)
			sum.Failed++
			continue
		}
		sum.Written++
		sum.OutputBytes += int64(len(cleaned))
	}

	sum.Duration = time.Since(start)
	logger.Info("cleaning complete",
		"written", sum.Written,
		"skipped", sum.Skipped,
		"output", out,
		"duration", sum.Duration.Round(time.Millisecond))
	return out, sum, nil
}

// listText returns, in name order, the names of the .txt files directly in dir.
func listText(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, dir)
		}
		return nil, fmt.Errorf("read input directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
