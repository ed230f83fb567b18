package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Output defaults
	DefaultOutputDir = "./docs"

	// Concurrency defaults
	DefaultWorkers  = 5
	DefaultTimeout  = 30 * time.Second
	DefaultMaxDepth = 0 // unbounded

	// Cache defaults. Blob content is addressed by SHA and immutable,
	// so a long TTL is safe.
	DefaultCacheEnabled = true
	DefaultCacheTTL     = 7 * 24 * time.Hour

	// GitHub defaults
	DefaultMaxRetries = 3

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// EnvToken is the environment variable consulted when no token is
// configured explicitly.
const EnvToken = "GITHUB_TOKEN"

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repolens"
	}
	return filepath.Join(home, ".repolens")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}
