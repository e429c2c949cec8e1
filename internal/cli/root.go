// Package cli defines the command-line interface of minutes_linker.
package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"minutes_linker/internal/app"
	"minutes_linker/internal/config"
	"minutes_linker/internal/logging"
	"minutes_linker/internal/repositories"
	"minutes_linker/internal/tracker"
)

const defaultConfigPath = "config.yaml"

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	LogLevel   string
	Token      string
}

// Execute builds the root command and runs it with args.
func Execute(ctx context.Context, args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, slog.LevelInfo)
	}
	rootCmd := newRootCommand(&Options{ConfigPath: defaultConfigPath}, logger)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "minutes_linker",
		Short:         "Link GitHub issues to the meeting minutes where they were discussed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			if opts.LogLevel != "" {
				cfg.LogLevel = opts.LogLevel
			}
			if opts.Token != "" {
				cfg.GitHub.Token = opts.Token
			}

			level := logging.ParseLevel(cfg.LogLevel)
			logger = logging.NewLogger(os.Stderr, level)
			ctx := context.WithValue(cmd.Context(), loggerKey{}, logger)
			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
			logger.Debug("configuration loaded", "path", opts.ConfigPath, "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", defaultConfigPath, "Path to the yaml configuration file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "GitHub token (defaults to M2G_TOKEN)")

	cmd.AddCommand(
		newManualCommand(),
		newIRCBotCommand(),
	)
	return cmd
}

type (
	loggerKey struct{}
	configKey struct{}
)

// LoggerFromContext extracts the command logger or falls back to a default one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, slog.LevelInfo)
}

func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.Default()
}

// newDeps wires the GitHub, minutes and ownership clients shared by every engine.
func newDeps(cfg *config.Config, logger *slog.Logger) (app.Deps, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout()}
	if cfg.GitHub.Token == "" {
		logger.Warn("no GitHub token configured, only dry runs will succeed")
	}
	gh, err := tracker.NewClient(httpClient, cfg.GitHub.Token, cfg.GitHub.APIURL, logger)
	if err != nil {
		return app.Deps{}, err
	}
	return app.Deps{
		Tracker:      gh,
		Loader:       app.NewLoader(httpClient, cfg.Minutes.UserAgent, cfg.Minutes.RespectRobots, logger),
		Repositories: repositories.NewFetcher(httpClient, cfg.Groups.BaseURL, logger),
		MinutesHost:  cfg.Minutes.Host,
		Logger:       logger,
	}, nil
}
