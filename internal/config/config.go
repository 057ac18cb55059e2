package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultExampleCSVURL points at the sample CSV linked from the upload panel.
const DefaultExampleCSVURL = "http://archive.ics.uci.edu/ml/machine-learning-databases/00601/ai4i2020.csv"

// Global configuration structure.
type Global struct {
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	BasePath    string `mapstructure:"base_path" yaml:"base_path"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	// Sessions
	SessionTTLMin int `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`

	// Profiling
	MaxRows          int     `mapstructure:"max_rows" yaml:"max_rows"`
	TableMaxRows     int     `mapstructure:"table_max_rows" yaml:"table_max_rows"`
	SampleRows       int     `mapstructure:"sample_rows" yaml:"sample_rows"`
	Explorative      bool    `mapstructure:"explorative" yaml:"explorative"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	HistogramBins    int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`

	// Example dataset
	ExampleSeed   uint64 `mapstructure:"example_seed" yaml:"example_seed"`
	ExampleCSVURL string `mapstructure:"example_csv_url" yaml:"example_csv_url"`
}

// Keys lists every setting name accepted by "config set".
var Keys = []string{
	"listen_addr", "base_path", "max_upload_mb", "log_level", "session_ttl_min",
	"max_rows", "table_max_rows", "sample_rows", "explorative", "outlier_threshold",
	"histogram_bins", "example_seed", "example_csv_url",
}

// Path returns the config file used when cfgFile is empty: ~/.eda/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".eda", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.eda/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EDA")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("base_path", "")
	v.SetDefault("max_upload_mb", 200)
	v.SetDefault("log_level", "info")
	v.SetDefault("session_ttl_min", 60)
	v.SetDefault("max_rows", 100000)
	v.SetDefault("table_max_rows", 1000)
	v.SetDefault("sample_rows", 10)
	v.SetDefault("explorative", true)
	v.SetDefault("outlier_threshold", 3.5)
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("example_seed", 0)
	v.SetDefault("example_csv_url", DefaultExampleCSVURL)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".eda"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, c.Validate()
}

// Validate rejects settings the server cannot run with.
func (c *Global) Validate() error {
	switch {
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	case c.MaxRows < 0:
		return fmt.Errorf("max_rows must not be negative, got %d", c.MaxRows)
	case c.TableMaxRows < 0:
		return fmt.Errorf("table_max_rows must not be negative, got %d", c.TableMaxRows)
	case c.HistogramBins < 0:
		return fmt.Errorf("histogram_bins must not be negative, got %d", c.HistogramBins)
	}
	return nil
}
