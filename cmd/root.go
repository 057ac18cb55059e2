package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/vincentngwk/GIT-ML-DS/internal/config"
	"github.com/vincentngwk/GIT-ML-DS/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "edaapp",
	Short: "The EDA App: upload a CSV and get an automatic profiling report",
	Long: `The EDA App serves a single-page data exploration tool. Upload a CSV (or
use a generated example dataset) and it shows the table followed by an
automatically generated profiling report. The same profiler is available
from the command line.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.eda/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = defaults()
	}
	cfg = c
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger.InitLoggerTo(os.Stderr, level)
}

// defaults mirrors the config package defaults for when loading fails.
func defaults() *cfgpkg.Global {
	return &cfgpkg.Global{
		ListenAddr:       ":8501",
		MaxUploadMB:      200,
		LogLevel:         "info",
		SessionTTLMin:    60,
		MaxRows:          100000,
		TableMaxRows:     1000,
		SampleRows:       10,
		Explorative:      true,
		OutlierThreshold: 3.5,
		HistogramBins:    10,
		ExampleCSVURL:    cfgpkg.DefaultExampleCSVURL,
	}
}

// currentConfig returns the loaded configuration, loading it on demand when
// a command runs without cobra initialization.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}
