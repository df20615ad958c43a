package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sitetext/internal/cleanrun"
	"github.com/jmylchreest/sitetext/internal/logger"
	"github.com/jmylchreest/sitetext/internal/report"
	"github.com/jmylchreest/sitetext/pkg/cleaner"
	"github.com/jmylchreest/sitetext/pkg/cleaner/lines"
)

const defaultCleanDir = "Data/Clean_Text"

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean crawled text files for indexing",
	Long: `Clean reads every .txt file in the texts folder, drops navigation, code
and layout noise line by line, re-joins split sentences, and writes the
result under the same name in the clean folder. Files left with 30
characters or less are not written.

Rule tables default to the ones tuned for the university site. Pass
--rules to load replacements from YAML; keys absent from the file keep
their defaults. Repeating --rules chains the tables, each file running
over the previous one's output:

  blacklist: ["Inicio", "Contacto"]
  code_indicators: ["{", "var "]
  code_lines: ["}", "});"]
  noise_markers: ["==> picture"]
  footer_phrase: "Universidad de Sonora"
  page_header_pattern: '^\d+\s*\|\s*Proyecto curricular'

Examples:
  sitetext clean
  sitetext clean --texts-dir /tmp/texts --clean-dir /tmp/clean --rules rules.yaml
  sitetext clean --rules site.yaml --rules pdf.yaml --stats`,
	PreRunE: bindFlags,
	RunE:    runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	flags := cleanCmd.Flags()
	flags.StringP("texts-dir", "i", defaultTextsDir, "folder with crawled text files")
	addCleanFlags(flags)
}

func addCleanFlags(flags *pflag.FlagSet) {
	flags.String("clean-dir", defaultCleanDir, "folder for cleaned text files")
	flags.StringSlice("rules", nil, "YAML file with rule tables (repeatable, applied in order)")
	flags.Bool("raw", false, "copy text through without cleaning")
	flags.Bool("stats", false, "log per-file and total cleaning stats")
}

func runClean(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	section, err := cleanTexts(ctx)
	if section != nil {
		if reportErr := emitReport(cmd, report.Report{Clean: section}); reportErr != nil {
			return reportErr
		}
	}
	return err
}

// cleanTexts builds the cleaner from viper settings and runs it over the
// texts folder. The section is nil when nothing was cleaned.
func cleanTexts(ctx context.Context) (*report.Clean, error) {
	c, tracked, err := buildCleaner()
	if err != nil {
		logger.Error("failed to load rules", "error", err)
		return nil, err
	}

	in := viper.GetString("texts-dir")
	out := viper.GetString("clean-dir")
	logInfo("Cleaning %s into %s with %s", in, out, c.Name())

	out, sum, err := cleanrun.Run(ctx, afero.NewOsFs(), in, out, c, cleanrun.Options{})
	if errors.Is(err, cleanrun.ErrInputNotFound) {
		return nil, fmt.Errorf("%w (run `sitetext crawl` first)", err)
	}
	for _, sc := range tracked {
		logInfo("Totals for %s rules:\n%s", sc.label, strings.TrimSuffix(sc.total.String(), "\n"))
	}
	return report.FromClean(in, out, c.Name(), sum), err
}

// buildCleaner assembles the cleaner from viper settings: one lines stage
// per --rules file (or the defaults), chained when there is more than one.
// With --stats every stage is wrapped and returned so totals can be logged.
func buildCleaner() (cleaner.Cleaner, []*statsCleaner, error) {
	if viper.GetBool("raw") {
		return cleaner.NewNoop(), nil, nil
	}

	paths := viper.GetStringSlice("rules")
	if len(paths) == 0 {
		paths = []string{""}
	}

	var (
		stages  []cleaner.Cleaner
		tracked []*statsCleaner
	)
	for _, path := range paths {
		rs, err := loadRuleSet(path)
		if err != nil {
			return nil, nil, err
		}
		c := lines.New(rs)
		if !viper.GetBool("stats") {
			stages = append(stages, c)
			continue
		}
		label := path
		if label == "" {
			label = "default"
		}
		sc := newStatsCleaner(c, label)
		stages = append(stages, sc)
		tracked = append(tracked, sc)
	}

	if len(stages) == 1 {
		return stages[0], tracked, nil
	}
	return cleaner.NewChain(stages...), tracked, nil
}

// loadRuleSet compiles the rules in path, or the defaults for "".
func loadRuleSet(path string) (*lines.RuleSet, error) {
	rules := lines.DefaultRules()
	if path != "" {
		var err error
		if rules, err = lines.LoadRulesFile(path); err != nil {
			return nil, err
		}
	}
	return lines.Compile(rules)
}

// statsCleaner logs what a line cleaner did to each document and keeps a
// running total across the run.
type statsCleaner struct {
	*lines.Cleaner
	label string
	total *lines.Stats
}

func newStatsCleaner(c *lines.Cleaner, label string) *statsCleaner {
	return &statsCleaner{Cleaner: c, label: label, total: lines.NewStats()}
}

func (s *statsCleaner) Clean(text string) (string, error) {
	result := s.CleanWithStats(text)
	st := result.Stats
	s.total.Add(st)
	logger.Info("cleaned",
		"rules", s.label,
		"lines_in", st.LinesIn,
		"lines_kept", st.LinesKept,
		"dropped", st.TotalDropped(),
		"merges", st.Merges,
		"reduction", fmt.Sprintf("%.1f%%", st.ReductionPercent()))
	for _, reason := range lines.Reasons {
		if n := st.Dropped[reason]; n > 0 {
			logger.Debug("dropped lines", "reason", reason, "count", n)
		}
	}
	return result.Content, nil
}
