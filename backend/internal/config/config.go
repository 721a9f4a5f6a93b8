// Package config holds the settings shared by the CLI and the HTTP server.
//
// Values start from Default and are overlaid by an optional YAML file;
// command line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/csvops"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/sheetio"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Reshape ReshapeConfig `yaml:"reshape"`
	Export  ExportConfig  `yaml:"export"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

type ReshapeConfig struct {
	ResourceColumn     string `yaml:"resource_column"`
	AmountColumn       string `yaml:"amount_column"`
	TrimSpaces         bool   `yaml:"trim_spaces"`
	KeyCaseInsensitive bool   `yaml:"key_case_insensitive"`
	Summary            bool   `yaml:"summary"`
	SummaryOrder       string `yaml:"summary_order"` // first_seen | identifier
}

type ExportConfig struct {
	Filename     string `yaml:"filename"`
	LongSheet    string `yaml:"long_sheet"`
	SummarySheet string `yaml:"summary_sheet"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			MaxUploadBytes:  32 << 20,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Reshape: ReshapeConfig{
			ResourceColumn: csvops.DefaultResourceColumn,
			AmountColumn:   csvops.DefaultAmountColumn,
			Summary:        true,
			SummaryOrder:   string(csvops.SortFirstSeen),
		},
		Export: ExportConfig{
			Filename:     sheetio.DefaultFilename,
			LongSheet:    sheetio.DefaultLongSheet,
			SummarySheet: sheetio.DefaultSummarySheet,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "resource_formatter",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q is not one of json, console", c.Logging.Format)
	}
	if strings.TrimSpace(c.Reshape.ResourceColumn) == "" || strings.TrimSpace(c.Reshape.AmountColumn) == "" {
		return fmt.Errorf("reshape.resource_column and reshape.amount_column are required")
	}
	if c.Reshape.ResourceColumn == c.Reshape.AmountColumn {
		return fmt.Errorf("reshape.resource_column and reshape.amount_column must differ")
	}
	switch csvops.SortMode(c.Reshape.SummaryOrder) {
	case csvops.SortFirstSeen, csvops.SortIdentifier:
	default:
		return fmt.Errorf("reshape.summary_order %q is not one of first_seen, identifier", c.Reshape.SummaryOrder)
	}
	if strings.TrimSpace(c.Export.Filename) == "" {
		return fmt.Errorf("export.filename is required")
	}
	if c.Export.LongSheet == "" || c.Export.SummarySheet == "" || c.Export.LongSheet == c.Export.SummarySheet {
		return fmt.Errorf("export.long_sheet and export.summary_sheet must be set and differ")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path)
	}
	return nil
}

// ReshapeOptions converts the reshape section for csvops.
func (c *Config) ReshapeOptions() csvops.ReshapeOptions {
	opts := csvops.ReshapeOptions{
		ResourceColumn: c.Reshape.ResourceColumn,
		AmountColumn:   c.Reshape.AmountColumn,
	}
	opts.TrimSpaces = c.Reshape.TrimSpaces
	opts.KeyCaseInsensitive = c.Reshape.KeyCaseInsensitive
	return opts
}

// SummarySort returns nil when the first-appearance order is kept.
func (c *Config) SummarySort() *csvops.SummarySortOptions {
	if csvops.SortMode(c.Reshape.SummaryOrder) == csvops.SortIdentifier {
		return &csvops.SummarySortOptions{Mode: csvops.SortIdentifier, Order: csvops.OrderAsc}
	}
	return nil
}
