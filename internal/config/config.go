// Package config provides configuration management for the relocation console.
// Configurations are loaded from TOML files with XDG-compliant paths.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Warehouse  WarehouseConfig  `toml:"warehouse"`
	Relocation RelocationConfig `toml:"relocation"`
	Display    DisplayConfig    `toml:"display"`
	Logging    LoggingConfig    `toml:"logging"`
	Database   DatabaseConfig   `toml:"database"`
}

// WarehouseConfig identifies the site and where its inventory comes from.
type WarehouseConfig struct {
	Name         string `toml:"name"`
	PalletPrefix string `toml:"pallet_prefix"`

	// SnapshotFile is an optional TOML inventory snapshot. When empty the
	// built-in demo catalog is used.
	SnapshotFile string `toml:"snapshot_file"`
}

// RelocationConfig tunes the relocation engine and its undo offer.
type RelocationConfig struct {
	UndoWindowSeconds int `toml:"undo_window_seconds"`
	ApplyLatencyMS    int `toml:"apply_latency_ms"`
	SuggestionLimit   int `toml:"suggestion_limit"`
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme     ColorScheme `toml:"color_scheme"`
	ShowSuggestions bool        `toml:"show_suggestions"`
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeGreenPhosphor ColorScheme = "green_phosphor"
	ColorSchemeAmber         ColorScheme = "amber"
	ColorSchemeWhite         ColorScheme = "white"
)

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level"`
	File  string   `toml:"file"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DatabaseConfig selects the backing store. An empty path keeps inventory in memory.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// InMemory reports whether no SQLite file is configured.
func (d *DatabaseConfig) InMemory() bool {
	return strings.TrimSpace(d.Path) == ""
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Warehouse.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("warehouse: %w", err))
	}

	if err := c.Relocation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("relocation: %w", err))
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the warehouse configuration is valid.
func (w *WarehouseConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(w.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}

	prefix := strings.TrimSpace(w.PalletPrefix)
	if prefix == "" {
		errs = append(errs, errors.New("pallet_prefix is required"))
	} else if strings.ContainsAny(prefix, " \t") {
		errs = append(errs, fmt.Errorf("pallet_prefix must not contain whitespace: %q", w.PalletPrefix))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the relocation configuration is valid.
func (r *RelocationConfig) Validate() error {
	var errs []error

	if r.UndoWindowSeconds < 0 {
		errs = append(errs, errors.New("undo_window_seconds must be non-negative"))
	}

	if r.ApplyLatencyMS < 0 || r.ApplyLatencyMS > 10000 {
		errs = append(errs, errors.New("apply_latency_ms must be between 0 and 10000"))
	}

	if r.SuggestionLimit < 0 {
		errs = append(errs, errors.New("suggestion_limit must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the display configuration is valid.
func (d *DisplayConfig) Validate() error {
	validSchemes := map[ColorScheme]bool{
		ColorSchemeGreenPhosphor: true,
		ColorSchemeAmber:         true,
		ColorSchemeWhite:         true,
	}

	if !validSchemes[d.ColorScheme] && d.ColorScheme != "" {
		return fmt.Errorf("invalid color_scheme: %s", d.ColorScheme)
	}

	return nil
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}

	if !validLevels[l.Level] && l.Level != "" {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Warehouse: WarehouseConfig{
			Name:         "ICT Distribution Center",
			PalletPrefix: "PAL-",
		},
		Relocation: RelocationConfig{
			UndoWindowSeconds: 30,
			ApplyLatencyMS:    300,
			SuggestionLimit:   3,
		},
		Display: DisplayConfig{
			ColorScheme:     ColorSchemeGreenPhosphor,
			ShowSuggestions: true,
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "logs/relocator.log",
		},
		Database: DatabaseConfig{
			Path: "",
		},
	}
}

// UndoWindow returns how long a completed batch may be undone from the console.
func (r *RelocationConfig) UndoWindow() time.Duration {
	return time.Duration(r.UndoWindowSeconds) * time.Second
}

// ApplyLatency returns the simulated backend latency for an apply.
func (r *RelocationConfig) ApplyLatency() time.Duration {
	return time.Duration(r.ApplyLatencyMS) * time.Millisecond
}
