// Package config resolves the ambient knobs this sync engine leaves to
// "implementation-chosen defaults": transfer concurrency, log level and
// format, and bucket-listing retry bounds. Per-invocation sync options
// (del, dryRun, relocations, filters, commandInput, flatten) are not
// config-file material — they vary per call and are carried by
// syncengine.Options instead.
package config

// Config is the top-level configuration structure, decoded from an
// optional TOML file and then overridden by S3SYNC_* environment
// variables.
type Config struct {
	Transfers TransfersConfig `toml:"transfers"`
	Logging   LoggingConfig   `toml:"logging"`
	Listing   ListingConfig   `toml:"listing"`
}

// TransfersConfig controls the transfer manager's concurrency bound.
type TransfersConfig struct {
	MaxConcurrentTransfers int `toml:"max_concurrent_transfers"`
}

// LoggingConfig controls the default slog level and handler format before
// CLI flags are applied.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// ListingConfig bounds the bucket-listing retry policy (spec §4.3a).
type ListingConfig struct {
	RetryBaseBackoffMS int `toml:"retry_base_backoff_ms"`
	RetryMaxAttempts   int `toml:"retry_max_attempts"`
}
