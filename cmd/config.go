package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	cfgpkg "github.com/vincentngwk/GIT-ML-DS/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		if c.BasePath != "" {
			fmt.Fprintf(out, "base_path: %s\n", c.BasePath)
		}
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "session_ttl_min: %d\n", c.SessionTTLMin)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "table_max_rows: %d\n", c.TableMaxRows)
		fmt.Fprintf(out, "sample_rows: %d\n", c.SampleRows)
		fmt.Fprintf(out, "explorative: %t\n", c.Explorative)
		fmt.Fprintf(out, "outlier_threshold: %.2f\n", c.OutlierThreshold)
		fmt.Fprintf(out, "histogram_bins: %d\n", c.HistogramBins)
		if c.ExampleSeed != 0 {
			fmt.Fprintf(out, "example_seed: %d\n", c.ExampleSeed)
		}
		fmt.Fprintf(out, "example_csv_url: %s\n", c.ExampleCSVURL)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		if err := setKey(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setKey(c *cfgpkg.Global, key, val string) error {
	var err error
	switch key {
	case "listen_addr":
		c.ListenAddr = val
	case "base_path":
		c.BasePath = val
	case "example_csv_url":
		c.ExampleCSVURL = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "max_upload_mb":
		c.MaxUploadMB, err = cast.ToIntE(val)
	case "session_ttl_min":
		c.SessionTTLMin, err = cast.ToIntE(val)
	case "max_rows":
		c.MaxRows, err = cast.ToIntE(val)
	case "table_max_rows":
		c.TableMaxRows, err = cast.ToIntE(val)
	case "sample_rows":
		c.SampleRows, err = cast.ToIntE(val)
	case "histogram_bins":
		c.HistogramBins, err = cast.ToIntE(val)
	case "explorative":
		c.Explorative, err = cast.ToBoolE(val)
	case "outlier_threshold":
		c.OutlierThreshold, err = cast.ToFloat64E(val)
	case "example_seed":
		c.ExampleSeed, err = cast.ToUint64E(val)
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
