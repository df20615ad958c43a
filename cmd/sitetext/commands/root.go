// Package commands implements the CLI commands for sitetext.
package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sitetext/internal/logger"
	"github.com/jmylchreest/sitetext/internal/report"
)

var rootCmd = &cobra.Command{
	Use:   "sitetext",
	Short: "Crawl a website into plain text and clean it for indexing",
	Long: `Sitetext walks one website depth-first, saves the visible text of every
HTML page and PDF it reaches, then strips navigation, embedded code and
layout noise so the result can be chunked and indexed.

Examples:
  # Crawl the default site into Data/texts
  sitetext crawl

  # Crawl another site with a smaller page budget
  sitetext crawl --base-url "https://example.edu/" --max-pages 50

  # Clean previously crawled text with custom rule tables
  sitetext clean --rules rules.yaml

  # Crawl and clean in one go
  sitetext run`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ./.sitetext.yaml or $HOME/.sitetext.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.Bool("json", false, "log as JSON")
	flags.String("report", "", "print a run report to stdout: text, json, yaml (default: text summary on stderr)")
}

func initConfig() {
	_ = viper.BindPFlags(rootCmd.PersistentFlags())

	// A missing .env is fine; anything else is worth a line on stderr.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".sitetext")
		viper.SetConfigType("yaml")
	}

	// SITETEXT_MAX_PAGES and friends
	viper.SetEnvPrefix("SITETEXT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// bindFlags binds a command's local flags to viper keys of the same name.
// Commands share flag names, so binding happens when the command runs.
func bindFlags(cmd *cobra.Command, _ []string) error {
	var err error
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if bindErr := viper.BindPFlag(f.Name, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("json"),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// emitReport prints the run report. Without --report the text form goes
// to stderr unless quiet mode is on.
func emitReport(cmd *cobra.Command, r report.Report) error {
	value := viper.GetString("report")
	if value == "" {
		if viper.GetBool("quiet") {
			return nil
		}
		return report.Write(cmd.ErrOrStderr(), report.FormatText, r)
	}

	format, err := report.ParseFormat(value)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), format, r)
}

// logInfo prints a progress line to stderr unless quiet mode is on.
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
