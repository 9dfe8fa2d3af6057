package config

import (
	"errors"
	"fmt"
)

// Validation range constants.
const (
	minTransferWorkers = 1
	maxTransferWorkers = 256
	minRetryAttempts   = 1
	maxRetryAttempts   = 20
	minRetryBackoffMS  = 1
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks all configuration values and accumulates every error
// found rather than stopping at the first, so a bad config file reports
// everything wrong with it in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateTransfers(&cfg.Transfers)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateListing(&cfg.Listing)...)

	return errors.Join(errs...)
}

func validateTransfers(cfg *TransfersConfig) []error {
	var errs []error

	if cfg.MaxConcurrentTransfers < minTransferWorkers || cfg.MaxConcurrentTransfers > maxTransferWorkers {
		errs = append(errs, fmt.Errorf("transfers.max_concurrent_transfers must be between %d and %d, got %d",
			minTransferWorkers, maxTransferWorkers, cfg.MaxConcurrentTransfers))
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []error {
	var errs []error

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("logging.log_level must be one of debug, info, warn, error, got %q", cfg.LogLevel))
	}

	if !validLogFormats[cfg.LogFormat] {
		errs = append(errs, fmt.Errorf("logging.log_format must be one of text, json, got %q", cfg.LogFormat))
	}

	return errs
}

func validateListing(cfg *ListingConfig) []error {
	var errs []error

	if cfg.RetryMaxAttempts < minRetryAttempts || cfg.RetryMaxAttempts > maxRetryAttempts {
		errs = append(errs, fmt.Errorf("listing.retry_max_attempts must be between %d and %d, got %d",
			minRetryAttempts, maxRetryAttempts, cfg.RetryMaxAttempts))
	}

	if cfg.RetryBaseBackoffMS < minRetryBackoffMS {
		errs = append(errs, fmt.Errorf("listing.retry_base_backoff_ms must be at least %d, got %d",
			minRetryBackoffMS, cfg.RetryBaseBackoffMS))
	}

	return errs
}
