package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"statpipe/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input  InputConfig
	Output OutputConfig
}

// InputConfig holds dataset source settings
type InputConfig struct {
	Path             string // CSV or XLSX source file
	Sheet            string // sheet name for XLSX sources
	Delimiter        rune
	DecimalMark      rune
	MissingSentinels []string
}

// OutputConfig holds report destinations
type OutputConfig struct {
	ReportPath string // "-" writes the textual report to stdout
	ChartsPath string // xlsx chart workbook, empty disables
	HTMLPath   string // HTML report, empty disables
}

// Load reads configuration from environment variables, honoring an optional
// .env file, and validates it.
func Load() (*Config, error) {
	// .env is optional: absence is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Input: InputConfig{
			Path:        os.Getenv("DATASET_PATH"),
			Sheet:       getEnv("DATASET_SHEET", "Sheet1"),
			Delimiter:   singleRune(getEnv("DELIMITER", ",")),
			DecimalMark: singleRune(getEnv("DECIMAL_MARK", ".")),
		},
		Output: OutputConfig{
			ReportPath: getEnv("OUTPUT_REPORT", "-"),
			ChartsPath: os.Getenv("OUTPUT_CHARTS"),
			HTMLPath:   os.Getenv("OUTPUT_HTML"),
		},
	}

	// Sentinels are semicolon-separated so a comma delimiter stays usable
	if raw := os.Getenv("MISSING_SENTINELS"); raw != "" {
		cfg.Input.MissingSentinels = strings.Split(raw, ";")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// Validate checks the configuration for usable values
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return errors.New(errors.CodeBadConfig, "DATASET_PATH is required")
	}
	if c.Input.DecimalMark != '.' && c.Input.DecimalMark != ',' {
		return errors.New(errors.CodeBadConfig,
			fmt.Sprintf("DECIMAL_MARK must be '.' or ',', got %q", string(c.Input.DecimalMark)))
	}
	if c.Input.Delimiter == c.Input.DecimalMark {
		return errors.New(errors.CodeBadConfig, "DELIMITER and DECIMAL_MARK must differ")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func singleRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
