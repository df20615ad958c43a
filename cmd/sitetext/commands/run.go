package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/sitetext/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl, then clean",
	Long: `Run performs crawl followed by clean, passing the crawl output folder to
the cleaner. An interrupted crawl skips the clean step; rerun
"sitetext clean" to process what was saved.

Examples:
  sitetext run --max-pages 100
  sitetext run --texts-dir /tmp/texts --clean-dir /tmp/clean`,
	PreRunE: bindFlags,
	RunE:    runAll,
}

func init() {
	rootCmd.AddCommand(runCmd)
	flags := runCmd.Flags()
	addCrawlFlags(flags)
	addCleanFlags(flags)
}

func runAll(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var r report.Report
	var err error
	r.Crawl, err = crawlSite(ctx)
	if err == nil {
		r.Clean, err = cleanTexts(ctx)
	}

	if r.Crawl != nil {
		if reportErr := emitReport(cmd, r); reportErr != nil {
			return reportErr
		}
	}
	return err
}
