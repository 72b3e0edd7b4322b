// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "path/filepath"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Paths   PathsConfig
	Input   InputConfig
	Match   MatchConfig
	Dates   DatesConfig
	Logging LoggingConfig
}

// PathsConfig holds where exports are read from and written to.
type PathsConfig struct {
	// InputDir is the directory scanned for exports
	InputDir string `env:"PATHS_INPUT_DIR" envAlt:"INPUT_DIR" default:"check and fix headers and format"`

	// OutputDir receives normalized files (default: <InputDir>/check_headers_output)
	OutputDir string `env:"PATHS_OUTPUT_DIR" envAlt:"OUTPUT_DIR"`

	// OutputPrefix is prepended to each normalized file name (default: corrected_)
	OutputPrefix string `env:"OUTPUT_FILE_PREFIX" default:"corrected_"`

	// CodesFile is the file name written by the codes command, inside OutputDir
	CodesFile string `env:"CODES_OUTPUT_FILE" default:"unique_voucher_codes.csv"`
}

// InputConfig holds settings for reading exports.
type InputConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"INPUT_MAX_FILE_SIZE" default:"104857600"`

	// MissingTokens are cell values read as missing. The empty cell is always missing.
	MissingTokens []string `env:"MISSING_VALUE_TOKENS" default:"N/A,NA,NaN,null,#N/A,#N/A N/A,#NA,-1.#IND,-1.#QNAN,-NaN,-nan,1.#IND,1.#QNAN,<NA>,NULL,None,n/a,nan"`
}

// MatchConfig holds header matching settings.
type MatchConfig struct {
	// Cutoff is the minimum similarity for a fuzzy header match (default: 0.6)
	Cutoff float64 `env:"FUZZY_MATCH_CUTOFF" default:"0.6"`

	// Scorer is the similarity function: gestalt or levenshtein (default: gestalt)
	Scorer string `env:"FUZZY_SCORER" default:"gestalt"`
}

// DatesConfig holds date resolution settings.
type DatesConfig struct {
	// TieBreak is the convention used when day-first and month-first parse
	// equally well: day-first, month-first or empty (default: empty, read as day-first)
	TieBreak string `env:"DATE_TIE_BREAK"`

	// TwoDigitYearPivot moves 2-digit years more than this many years in the future back a century (default: 20)
	TwoDigitYearPivot int `env:"DATE_TWO_DIGIT_YEAR_PIVOT" default:"20"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ResolvedOutputDir returns OutputDir, or the default location under InputDir
// when it is not set.
func (c *PathsConfig) ResolvedOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return filepath.Join(c.InputDir, "check_headers_output")
}

// CodesPath returns the full path of the unique codes file.
func (c *PathsConfig) CodesPath() string {
	return filepath.Join(c.ResolvedOutputDir(), c.CodesFile)
}
