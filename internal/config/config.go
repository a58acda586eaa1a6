// Package config holds the settings of a conversion run.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Config holds all run settings, populated from environment variables.
// It is built once at startup and passed down explicitly.
type Config struct {
	InputDir  string
	OutputDir string

	// Input naming: files matching InputGlob named <x>_<VarToken><index>.nc
	// hold the variable <VarPrefix><index>.
	InputGlob string
	VarToken  string
	VarPrefix string

	// Output naming: <OutputPrefix>_<time label><OutputExt>.
	OutputPrefix string
	OutputExt    string

	LatVar  string
	LonVar  string
	TimeVar string

	// Strict fails the run when a file lacks its expected variable instead
	// of skipping the file.
	Strict      bool
	Concurrency int

	LogLevel        string
	LogFormat       string
	MetricsTextfile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	strict, err := parseBool("STRICT", false)
	if err != nil {
		return nil, err
	}
	concurrency, err := parseInt("CONCURRENCY", runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputDir:        envOrDefault("INPUT_DIR", "./02_IPED_Clim"),
		OutputDir:       envOrDefault("OUTPUT_DIR", "./02_IPED_Clim_yearly"),
		InputGlob:       envOrDefault("INPUT_GLOB", "IPEDClim_BIO*.nc"),
		VarToken:        envOrDefault("VAR_TOKEN", "BIO"),
		VarPrefix:       envOrDefault("VAR_PREFIX", "bio"),
		OutputPrefix:    envOrDefault("OUTPUT_PREFIX", "IPEDClim"),
		OutputExt:       envOrDefault("OUTPUT_EXT", ".tif"),
		LatVar:          envOrDefault("LAT_VAR", "lat"),
		LonVar:          envOrDefault("LON_VAR", "lon"),
		TimeVar:         envOrDefault("TIME_VAR", "year"),
		Strict:          strict,
		Concurrency:     concurrency,
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that may also have been changed by flags.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("INPUT_DIR is required")
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if c.VarToken == "" {
		return errors.New("VAR_TOKEN is required")
	}
	if !strings.HasPrefix(c.OutputExt, ".") {
		return fmt.Errorf("OUTPUT_EXT %q must start with a dot", c.OutputExt)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("CONCURRENCY must be positive, got %d", c.Concurrency)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}
