package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config represents the complete analysis configuration
type Config struct {
	Analysis AnalysisConfig
	Loader   LoaderConfig
	Output   OutputConfig
}

// AnalysisConfig holds the statistical decision settings
type AnalysisConfig struct {
	// SignificanceLevel is alpha for both the global MCAR test and the
	// per-covariate decision rule.
	SignificanceLevel float64

	// BesselCorrection selects the small-sample skewness branch.
	BesselCorrection bool

	// TargetColumns are the columns whose missingness mechanism is tested.
	TargetColumns []string
}

// LoaderConfig holds table ingestion settings
type LoaderConfig struct {
	// ExcludedRows are literal 0-based data-row ordinals to drop, for
	// known-bad records.
	ExcludedRows []int

	// MissingMarkers are raw tokens treated as the missing marker.
	MissingMarkers []string
}

// OutputConfig holds report rendering settings
type OutputConfig struct {
	HistogramBins int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Analysis: AnalysisConfig{
			SignificanceLevel: getEnvFloatOrDefault("GOMISS_ALPHA", 0.05),
			BesselCorrection:  getEnvBoolOrDefault("GOMISS_BESSEL", false),
			TargetColumns:     getEnvListOrDefault("GOMISS_TARGETS", nil),
		},
		Loader: LoaderConfig{
			ExcludedRows:   nil,
			MissingMarkers: getEnvListOrDefault("GOMISS_MISSING_MARKERS", DefaultMissingMarkers()),
		},
		Output: OutputConfig{
			HistogramBins: getEnvIntOrDefault("GOMISS_HISTOGRAM_BINS", 10),
		},
	}

	rows, err := parseRowList(os.Getenv("GOMISS_EXCLUDED_ROWS"))
	if err != nil {
		return nil, fmt.Errorf("failed to load loader configuration: %w", err)
	}
	cfg.Loader.ExcludedRows = rows

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// DefaultMissingMarkers returns the raw tokens recognized as missing
func DefaultMissingMarkers() []string {
	return []string{"", "na", "n/a", "nan", "null"}
}

func validateConfig(cfg *Config) error {
	if cfg.Analysis.SignificanceLevel <= 0 || cfg.Analysis.SignificanceLevel >= 1 {
		return fmt.Errorf("significance level must be in (0, 1), got %g", cfg.Analysis.SignificanceLevel)
	}
	if cfg.Output.HistogramBins < 1 {
		return fmt.Errorf("histogram bins must be positive, got %d", cfg.Output.HistogramBins)
	}
	for _, row := range cfg.Loader.ExcludedRows {
		if row < 0 {
			return fmt.Errorf("excluded row ordinal must be non-negative, got %d", row)
		}
	}
	return nil
}

func parseRowList(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	rows := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid row ordinal %q", part)
		}
		rows = append(rows, n)
	}
	return rows, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}
