package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultConfigFileName is the standard configuration file name.
	DefaultConfigFileName = "config.toml"

	// XDGConfigSubdir is the subdirectory under XDG_CONFIG_HOME for the relocator.
	XDGConfigSubdir = "wmsreloc"
)

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading config from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load resolves configuration in order of precedence:
// 1. Explicit path (if provided)
// 2. XDG config path (~/.config/wmsreloc/config.toml)
// 3. Current working directory (./config.toml)
// 4. Default configuration (if createDefault is true)
//
// Returns the loaded configuration and the path it was loaded from. The path
// is empty when an in-memory default could not be written to disk.
func Load(explicitPath string, createDefault bool) (*Config, string, error) {
	if explicitPath != "" {
		cfg, err := loadFromFile(explicitPath)
		if err != nil {
			return nil, "", &LoadError{Path: explicitPath, Err: err}
		}
		return cfg, explicitPath, nil
	}

	xdgPath := xdgConfigPath()
	cwdPath := filepath.Join(".", DefaultConfigFileName)

	for _, candidate := range []string{xdgPath, cwdPath} {
		if candidate == "" || !fileExists(candidate) {
			continue
		}
		cfg, err := loadFromFile(candidate)
		if err != nil {
			return nil, "", &LoadError{Path: candidate, Err: err}
		}
		return cfg, candidate, nil
	}

	if !createDefault {
		return nil, "", fmt.Errorf("no configuration file found; searched: %s, %s", xdgPath, cwdPath)
	}

	cfg := Default()

	target := cwdPath
	if xdgPath != "" {
		if err := os.MkdirAll(filepath.Dir(xdgPath), 0750); err == nil {
			target = xdgPath
		}
	}

	if err := Save(cfg, target); err != nil {
		return cfg, "", nil
	}

	return cfg, target, nil
}

// loadFromFile reads a TOML file over the defaults, so keys missing from the
// file keep their default values.
func loadFromFile(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys: %v", undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Save writes a configuration to a TOML file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	header := `# Warehouse relocation console configuration
#
# This file was auto-generated. Edit as needed.
# Leave [database].path empty to keep inventory in memory.

`
	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding TOML: %w", err)
	}

	return nil
}

// xdgConfigPath returns the XDG-compliant config file path.
// Returns empty string if XDG_CONFIG_HOME is not set and HOME is not available.
func xdgConfigPath() string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig != "" {
		return filepath.Join(xdgConfig, XDGConfigSubdir, DefaultConfigFileName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", XDGConfigSubdir, DefaultConfigFileName)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDataDir creates the data directory for the database if needed.
// Returns the path to the database file, or "" when the store is in memory.
func EnsureDataDir(cfg *Config) (string, error) {
	if cfg.Database.InMemory() {
		return "", nil
	}
	dbPath := cfg.Database.Path

	if filepath.IsAbs(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
		return dbPath, nil
	}

	// Relative paths live under the XDG data directory when one is available
	xdgData := os.Getenv("XDG_DATA_HOME")
	if xdgData == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			xdgData = filepath.Join(home, ".local", "share")
		}
	}

	if xdgData != "" {
		dataDir := filepath.Join(xdgData, XDGConfigSubdir)
		if err := os.MkdirAll(dataDir, 0750); err != nil {
			return dbPath, nil
		}
		return filepath.Join(dataDir, dbPath), nil
	}

	return dbPath, nil
}

// EnsureLogDir creates the log directory if needed.
// Returns the absolute path to the log file.
func EnsureLogDir(cfg *Config) (string, error) {
	logPath := cfg.Logging.File

	// If empty, disable file logging
	if logPath == "" {
		return "", nil
	}

	// If absolute path, use as-is
	if filepath.IsAbs(logPath) {
		dir := filepath.Dir(logPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("creating log directory: %w", err)
		}
		return logPath, nil
	}

	// Ensure relative log directory exists
	dir := filepath.Dir(logPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("creating log directory: %w", err)
		}
	}

	return logPath, nil
}
