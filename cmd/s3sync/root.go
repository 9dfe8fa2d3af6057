package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeanbmar/s3sync/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath             string
	flagMaxConcurrentTransfers int
	flagJSON                   bool
	flagVerbose                bool
	flagDebug                  bool
	flagQuiet                  bool
)

// cliContextKey is the context key for the resolved CLIContext.
type cliContextKey struct{}

// CLIContext bundles resolved config and logger, created once in
// PersistentPreRunE so subcommands never resolve config themselves.
type CLIContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

func cliContextFrom(ctx context.Context) *CLIContext {
	cc, _ := ctx.Value(cliContextKey{}).(*CLIContext)

	return cc
}

func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("BUG: CLIContext not found in context — PersistentPreRunE did not run")
	}

	return cc
}

// newRootCmd builds the fully-assembled root command with every subcommand
// registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "s3sync",
		Short:         "Bidirectional sync between a local tree and an object-store bucket",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().IntVar(&flagMaxConcurrentTransfers, "max-concurrent-transfers", 0, "bound on in-flight transfers (0 = use config)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show detailed output")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.MarkFlagsMutuallyExclusive("verbose", "debug", "quiet")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newEmptyBucketCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the four-layer
// override chain and stores the result in the command's context.
func loadConfig(cmd *cobra.Command) error {
	logger := buildLogger(nil)

	env := config.ReadEnvOverrides()

	cliLogLevel := ""

	switch {
	case flagDebug:
		cliLogLevel = "debug"
	case flagVerbose:
		cliLogLevel = "info"
	case flagQuiet:
		cliLogLevel = "error"
	}

	cliLogFormat := ""
	if flagJSON {
		cliLogFormat = "json"
	}

	cfg, err := config.Resolve(flagConfigPath, env, flagMaxConcurrentTransfers, cliLogLevel, cliLogFormat, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	finalLogger := buildLogger(cfg)
	cc := &CLIContext{Cfg: cfg, Logger: finalLogger}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config.
// Pass nil for pre-config bootstrap. CLI flags always win over the
// config-file log level because loadConfig folds them into cfg before this
// is called a second time with the final config.
func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo

	if cfg != nil {
		switch cfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg != nil && cfg.Logging.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
