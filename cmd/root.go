package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/fluidreport/internal/config"
	"github.com/KaramelBytes/fluidreport/internal/logging"
)

var (
	// Global flags
	cfgFile      string
	flagLogLevel string
	flagLogFmt   string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "fluidreport",
	Short: "Generate fluid dynamics lab reports from experiment data",
	Long: `fluidreport turns a table of fluid dynamics measurements into a Word
report with descriptive statistics, five relationship plots and the
accompanying narrative. Reports can be mailed to a supervisor or produced
through a small HTTP upload form.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.fluidreport/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFmt, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flagLogFmt
	}
	slog.SetDefault(logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}))
}

// currentConfig returns the loaded configuration or the defaults when no
// command initialization ran (tests calling helpers directly).
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
