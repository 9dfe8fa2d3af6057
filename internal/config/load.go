package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, starting from DefaultConfig and
// overlaying whatever keys the file sets. Unknown keys are rejected, the
// same posture the teacher's config loader takes, so a typo'd key fails
// loudly instead of silently being ignored.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("loading config file", slog.String("path", path))

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: %s: unknown key %q", path, undecoded[0].String())
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault reads path if it exists, otherwise returns DefaultConfig.
// This supports running with zero configuration.
func LoadOrDefault(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("config file not found, using defaults", slog.String("path", path))

		return DefaultConfig(), nil
	}

	return Load(path, logger)
}

// Resolve applies the full four-layer precedence chain: defaults < config
// file < environment variables < CLI overrides. cliMaxConcurrentTransfers,
// cliLogLevel, and cliLogFormat are applied last when non-zero; callers
// that have no CLI override for a field pass its zero value.
func Resolve(configPath string, env EnvOverrides, cliMaxConcurrentTransfers int, cliLogLevel, cliLogFormat string, logger *slog.Logger) (*Config, error) {
	path := configPath
	if env.ConfigPath != "" && path == "" {
		path = env.ConfigPath
	}

	cfg, err := LoadOrDefault(path, logger)
	if err != nil {
		return nil, err
	}

	env.Apply(cfg)

	if cliMaxConcurrentTransfers > 0 {
		cfg.Transfers.MaxConcurrentTransfers = cliMaxConcurrentTransfers
	}

	if cliLogLevel != "" {
		cfg.Logging.LogLevel = cliLogLevel
	}

	if cliLogFormat != "" {
		cfg.Logging.LogFormat = cliLogFormat
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: resolved configuration invalid: %w", err)
	}

	return cfg, nil
}
