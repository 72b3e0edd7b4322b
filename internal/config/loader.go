package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/redemptions/internal/core"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Paths validation
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		errs = append(errs, "PATHS_INPUT_DIR must not be empty")
	}
	if c.Paths.CodesFile == "" || filepath.Base(c.Paths.CodesFile) != c.Paths.CodesFile {
		errs = append(errs, fmt.Sprintf("CODES_OUTPUT_FILE (%q) must be a plain file name", c.Paths.CodesFile))
	}

	// Input validation
	if c.Input.MaxFileSize <= 0 {
		errs = append(errs, "INPUT_MAX_FILE_SIZE must be positive")
	}

	// Match validation
	if c.Match.Cutoff < 0 || c.Match.Cutoff > 1 {
		errs = append(errs, fmt.Sprintf("FUZZY_MATCH_CUTOFF (%g) must be between 0 and 1", c.Match.Cutoff))
	}
	if _, err := core.ScorerByName(c.Match.Scorer); err != nil {
		errs = append(errs, fmt.Sprintf("FUZZY_SCORER (%q) must be one of: %s, %s",
			c.Match.Scorer, core.ScorerGestalt, core.ScorerLevenshtein))
	}

	// Dates validation
	if _, err := core.ParseDateOrder(c.Dates.TieBreak); err != nil {
		errs = append(errs, fmt.Sprintf("DATE_TIE_BREAK (%q) must be one of: day-first, month-first, or unset", c.Dates.TieBreak))
	}
	if c.Dates.TwoDigitYearPivot < 0 || c.Dates.TwoDigitYearPivot > 99 {
		errs = append(errs, fmt.Sprintf("DATE_TWO_DIGIT_YEAR_PIVOT (%d) must be 0-99", c.Dates.TwoDigitYearPivot))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// PipelineOptions converts the match and date settings into pipeline options.
// Call it on a validated config.
func (c *Config) PipelineOptions() (core.Options, error) {
	scorer, err := core.ScorerByName(c.Match.Scorer)
	if err != nil {
		return core.Options{}, err
	}
	tieBreak, err := core.ParseDateOrder(c.Dates.TieBreak)
	if err != nil {
		return core.Options{}, err
	}

	opts := core.DefaultOptions()
	opts.FuzzyCutoff = c.Match.Cutoff
	opts.Scorer = scorer
	opts.DateTieBreak = tieBreak
	opts.TwoDigitYearPivot = c.Dates.TwoDigitYearPivot
	opts.MissingTokens = c.Input.MissingTokens
	return opts, nil
}

// String returns a readable representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Paths: {InputDir: %q, OutputDir: %q, OutputPrefix: %q}, ",
		c.Paths.InputDir, c.Paths.ResolvedOutputDir(), c.Paths.OutputPrefix))
	b.WriteString(fmt.Sprintf("Input: {MaxFileSize: %d, MissingTokens: %d}, ",
		c.Input.MaxFileSize, len(c.Input.MissingTokens)))
	b.WriteString(fmt.Sprintf("Match: {Cutoff: %g, Scorer: %q}, ", c.Match.Cutoff, c.Match.Scorer))
	b.WriteString(fmt.Sprintf("Dates: {TieBreak: %q, TwoDigitYearPivot: %d}, ",
		c.Dates.TieBreak, c.Dates.TwoDigitYearPivot))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
