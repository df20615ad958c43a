package lines

import (
	"html"
	"regexp"
	"strings"
	"time"
)

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	blankRun     = regexp.MustCompile(`\n{3,}`)
)

// Cleaner drops navigation, code and layout noise from extracted text
// one line at a time. It implements cleaner.Cleaner.
type Cleaner struct {
	rules *RuleSet
}

// New creates a cleaner over rules. A nil RuleSet uses Default().
func New(rules *RuleSet) *Cleaner {
	if rules == nil {
		rules = Default()
	}
	return &Cleaner{rules: rules}
}

// Name returns the cleaner type.
func (c *Cleaner) Name() string {
	return "lines"
}

// Clean returns the cleaned form of text. It never fails; the error is
// there to satisfy cleaner.Cleaner.
func (c *Cleaner) Clean(text string) (string, error) {
	return c.CleanWithStats(text).Content, nil
}

// CleanWithStats cleans text and reports what each stage did.
func (c *Cleaner) CleanWithStats(text string) *Result {
	start := time.Now()
	stats := NewStats()
	stats.InputBytes = len(text)
	result := &Result{Stats: stats}

	if text == "" {
		stats.Duration = time.Since(start)
		return result
	}

	text = html.UnescapeString(text)
	stats.CommentsRemoved = len(blockComment.FindAllStringIndex(text, -1))
	text = blockComment.ReplaceAllString(text, "")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		stats.LinesIn++

		d := c.rules.classify(newCandidate(stripped))
		if !d.Keep {
			stats.Dropped[d.Reason]++
			continue
		}
		kept = append(kept, stripped)
	}

	merged, merges := mergeFragments(kept)
	stats.LinesKept = len(kept)
	stats.Merges = merges

	out := strings.Join(merged, "\n")
	result.Content = blankRun.ReplaceAllString(out, "\n\n")

	stats.OutputBytes = len(result.Content)
	stats.Duration = time.Since(start)
	return result
}
