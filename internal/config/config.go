package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Parser  ParserConfig  `yaml:"parser" envconfig:"PARSER"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	// ProblemLog overrides the default problem-file log location in the
	// user's home directory.
	ProblemLog string `yaml:"problem_log" envconfig:"PROBLEM_LOG"`
}

// ParserConfig contains parsing behavior configuration
type ParserConfig struct {
	// IgnoreTooManySnapshots accepts snapshot sections with more than two
	// values per device in the standard view.
	IgnoreTooManySnapshots bool `yaml:"ignore_too_many_snapshots" envconfig:"IGNORE_TOO_MANY_SNAPSHOTS"`
}

// DefaultConfig returns the built-in configuration values.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/evedata.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "reports",
		},
	}
}

// Load loads configuration in ascending precedence: built-in defaults, the
// evedata.yaml config file if present, then EVE_-prefixed environment
// variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	if err := loadFromFile(configFilePath(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from file: %w", err)
	}
	if err := envconfig.Process("EVE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("EVE_CONFIG_FILE"); path != "" {
		return path
	}
	return "evedata.yaml"
}

// loadFromFile overlays configuration from a YAML file onto cfg. Keys absent
// from the file keep their current values; a missing file changes nothing.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "", "console", "file", "both":
	default:
		return fmt.Errorf("unknown logging output %q", c.Logging.Output)
	}
	return nil
}

// ReportPath resolves a report file name inside the reports directory.
func (c *Config) ReportPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.ReportsDir, name)
}
