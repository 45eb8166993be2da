package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/datamorph/internal/models"
)

// Supported export formats
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatHTML  = "html"
)

// DefaultFilename is the suggested name for the CSV download.
const DefaultFilename = "datamorph.json_normalized.csv"

// Config represents the complete configuration for datamorph
type Config struct {
	Flatten  FlattenConfig  `yaml:"flatten"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Export   ExportConfig   `yaml:"export"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Display  DisplayConfig  `yaml:"display"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// FlattenConfig controls how nested objects become columns
type FlattenConfig struct {
	Separator string `yaml:"separator"`
	// MaxLevel limits how deep objects are descended; negative means unlimited.
	MaxLevel int `yaml:"max_level"`
}

// AnalysisConfig controls the schema report
type AnalysisConfig struct {
	NullPolicy models.NullPolicy `yaml:"null_policy"`
}

// ExportConfig controls serialization of the display table
type ExportConfig struct {
	Format    string `yaml:"format"`
	Delimiter string `yaml:"delimiter"`
	Filename  string `yaml:"filename"`
}

// SQLiteConfig controls loading the table into SQLite
type SQLiteConfig struct {
	Table string `yaml:"table"`
}

// DisplayConfig controls terminal rendering
type DisplayConfig struct {
	Color        bool `yaml:"color"`
	MaxCellWidth int  `yaml:"max_cell_width"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	SeqURL string `yaml:"seq_url"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Flatten: FlattenConfig{
			Separator: ".",
			MaxLevel:  -1,
		},
		Analysis: AnalysisConfig{
			NullPolicy: models.NullPolicyMerged,
		},
		Export: ExportConfig{
			Format:    FormatTable,
			Delimiter: ",",
			Filename:  DefaultFilename,
		},
		SQLite: SQLiteConfig{
			Table: "records",
		},
		Display: DisplayConfig{
			Color:        true,
			MaxCellWidth: 40,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Export.Format = strings.ToLower(cfg.Export.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".datamorph.yml", ".datamorph.yaml", "datamorph.yml", "datamorph.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that enumerated settings hold known values
func (c *Config) Validate() error {
	if c.Flatten.Separator == "" {
		return fmt.Errorf("flatten.separator must not be empty")
	}

	switch c.Analysis.NullPolicy {
	case models.NullPolicyMerged, models.NullPolicyAbsent:
	default:
		return fmt.Errorf("unknown null policy %q (want %q or %q)", c.Analysis.NullPolicy, models.NullPolicyMerged, models.NullPolicyAbsent)
	}

	switch strings.ToLower(c.Export.Format) {
	case FormatTable, FormatCSV, FormatTSV, FormatHTML:
	default:
		return fmt.Errorf("unknown export format %q", c.Export.Format)
	}

	if len([]rune(c.Export.Delimiter)) != 1 {
		return fmt.Errorf("export.delimiter must be a single character, got %q", c.Export.Delimiter)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	if c.Display.MaxCellWidth < 0 {
		return fmt.Errorf("display.max_cell_width must not be negative")
	}

	return nil
}

// Delimiter returns the export delimiter as a rune
func (c *Config) Delimiter() rune {
	r := []rune(c.Export.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// CLIOverrides carries flag values that take precedence over the config file.
// Nil pointers and empty strings mean the flag was not set.
type CLIOverrides struct {
	Format     string
	MaxLevel   *int
	NullPolicy string
	Table      string
	NoColor    bool
	Debug      bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Format != "" {
		cfg.Export.Format = strings.ToLower(cli.Format)
	}
	if cli.MaxLevel != nil {
		cfg.Flatten.MaxLevel = *cli.MaxLevel
	}
	if cli.NullPolicy != "" {
		cfg.Analysis.NullPolicy = models.NullPolicy(cli.NullPolicy)
	}
	if cli.Table != "" {
		cfg.SQLite.Table = cli.Table
	}
	if cli.NoColor {
		cfg.Display.Color = false
	}
	if cli.Debug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
