package config

import "time"

// Config represents the application configuration
type Config struct {
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	GitHub      GitHubConfig      `mapstructure:"github" yaml:"github"`
	Extract     ExtractConfig     `mapstructure:"extract" yaml:"extract"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Directory    string `mapstructure:"directory" yaml:"directory"`
	Flat         bool   `mapstructure:"flat" yaml:"flat"`
	JSONMetadata bool   `mapstructure:"json_metadata" yaml:"json_metadata"`
	Overwrite    bool   `mapstructure:"overwrite" yaml:"overwrite"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	Workers int           `mapstructure:"workers" yaml:"workers"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// MaxDepth caps tree recursion. 0 means unbounded, which matches
	// the upstream API contract but leaves very deep repositories
	// unguarded; set a positive cap for untrusted inputs.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

// CacheConfig contains blob cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// GitHubConfig contains API client settings
type GitHubConfig struct {
	Token      string `mapstructure:"token" yaml:"token"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// ExtractConfig contains extractor dispatch settings
type ExtractConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration and normalizes invalid values
// back to defaults.
func (c *Config) Validate() error {
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	if c.Concurrency.MaxDepth < 0 {
		c.Concurrency.MaxDepth = DefaultMaxDepth
	}
	if c.Concurrency.Timeout < time.Second {
		c.Concurrency.Timeout = DefaultTimeout
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.GitHub.MaxRetries < 0 {
		c.GitHub.MaxRetries = DefaultMaxRetries
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}
