package cleaner

import (
	"fmt"
	"strings"
)

// ChainCleaner runs stages in order, feeding each one the previous output.
// The CLI builds one from repeated --rules files, so a site-wide table can
// run before a section-specific one.
type ChainCleaner struct {
	stages []Cleaner
}

// NewChain returns a cleaner running stages in the order given.
//
//	c := cleaner.NewChain(
//	    lines.New(lines.MustCompile(siteRules)),
//	    lines.New(lines.MustCompile(pdfRules)),
//	)
func NewChain(stages ...Cleaner) *ChainCleaner {
	return &ChainCleaner{stages: stages}
}

// Clean runs every stage. The first failing stage aborts the run and its
// error is wrapped with the stage position and name.
func (c *ChainCleaner) Clean(text string) (string, error) {
	for i, stage := range c.stages {
		out, err := stage.Clean(text)
		if err != nil {
			return "", fmt.Errorf("stage %d (%s): %w", i+1, stage.Name(), err)
		}
		text = out
	}
	return text, nil
}

// Name lists the stage names, e.g. "chain(lines->lines)".
func (c *ChainCleaner) Name() string {
	names := make([]string, 0, len(c.stages))
	for _, stage := range c.stages {
		names = append(names, stage.Name())
	}
	return "chain(" + strings.Join(names, "->") + ")"
}
