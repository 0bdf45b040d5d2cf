// Package paths resolves the fsort data directory layout and normalizes
// directory keys used by the categorization cache.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// HomeEnvVar overrides the data directory location.
	HomeEnvVar = "FSORT_HOME"
	// DefaultHome is the data directory name under the user's home directory.
	DefaultHome = ".fsort"

	databaseFile  = "fsort.db"
	whitelistFile = "whitelists.toml"
	configFile    = "config.json"
	logsDir       = "logs"
	logFile       = "fsort.log"
)

// GetHome returns the fsort data directory.
// FSORT_HOME takes precedence; otherwise ~/.fsort is used.
func GetHome() (string, error) {
	if env := os.Getenv(HomeEnvVar); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultHome), nil
}

// EnsureHome creates the data directory if needed and returns it.
func EnsureHome(dataDir string) (string, error) {
	if dataDir == "" {
		var err error
		dataDir, err = GetHome()
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dataDir, nil
}

// DatabasePath returns the categorization cache database path.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, databaseFile)
}

// WhitelistPath returns the named whitelist file path.
func WhitelistPath(dataDir string) string {
	return filepath.Join(dataDir, whitelistFile)
}

// ConfigPath returns the config file path.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFile)
}

// LogPath returns the log file path, creating the logs directory.
func LogPath(dataDir string) (string, error) {
	dir := filepath.Join(dataDir, logsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, logFile), nil
}

// CleanDir normalizes a directory key: cleaned, without a trailing separator.
// Relative paths are made absolute so the same directory always maps to the
// same cache key.
func CleanDir(dir string) string {
	if dir == "" {
		return dir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Clean(dir)
}

// IsWithinDir reports whether dir equals parent or is one of its descendants.
// The comparison respects separator boundaries: /a/bc is not within /a/b.
func IsWithinDir(dir, parent string) bool {
	dir = filepath.Clean(dir)
	parent = filepath.Clean(parent)
	if dir == parent {
		return true
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(dir, prefix)
}

// NormalizePath converts backslashes to forward slashes for display.
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}
