package cli

import (
	"context"
	"slices"
	"time"

	envparse "github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"minutes_linker/internal/app"
	"minutes_linker/internal/config"
	"minutes_linker/internal/db"
)

// manualEnv holds the manual command defaults sourced from M2G_* variables.
type manualEnv struct {
	Channel string `env:"M2G_CHANNEL"`
	Date    string `env:"M2G_DATE"`
	File    string `env:"M2G_FILE"`
}

type manualFlags struct {
	channel      string
	date         string
	dryRun       bool
	file         string
	url          string
	groups       string
	rateLimit    float64
	transcript   bool
	noOwnership  bool
	repositories []string
}

func newManualCommand() *cobra.Command {
	var f manualFlags
	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Link the issues mentioned in one set of minutes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)
			cfg := configFromContext(ctx)

			var envVars manualEnv
			if err := envparse.Parse(&envVars); err != nil {
				return err
			}
			args, err := f.engineArgs(cmd, cfg, envVars)
			if err != nil {
				return err
			}

			deps, err := newDeps(cfg, logger)
			if err != nil {
				return err
			}

			var journal app.Journal
			if cfg.DB.Connection != "" {
				mongo, err := db.NewMongoDB(ctx, cfg.DB, logger)
				if err != nil {
					return err
				}
				defer func() {
					closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = mongo.Close(closeCtx)
				}()
				journal = mongo
			}

			_, err = app.NewRunner(deps, journal, cfg.Workers()).Run(ctx, args)
			return err
		},
	}

	f.bind(cmd)
	return cmd
}

func (f *manualFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.channel, "channel", "c", "", "IRC channel of the meeting (M2G_CHANNEL)")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Date of the meeting, YYYY-MM-DD (M2G_DATE, default today)")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Do not post anything to GitHub")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read the minutes from a local file (M2G_FILE)")
	cmd.Flags().StringVarP(&f.url, "url", "u", "", "URL of the minutes, instead of the one derived from channel and date")
	cmd.Flags().StringVarP(&f.groups, "groups", "g", "", "Comma separated groups owning the repositories (default wg/<channel>)")
	cmd.Flags().Float64Var(&f.rateLimit, "rate-limit", 0, "Seconds between two GitHub operations (default from configuration)")
	cmd.Flags().BoolVarP(&f.transcript, "transcript", "t", false, "Include the transcript of the discussion in comments")
	cmd.Flags().BoolVar(&f.noOwnership, "no-ownership", false, "Comment on issues of any repository")
	cmd.Flags().StringArrayVar(&f.repositories, "repo", nil, "Additional [org/]repo to accept, repeatable")
}

func (f *manualFlags) engineArgs(cmd *cobra.Command, cfg *config.Config, envVars manualEnv) (config.EngineArgs, error) {
	channel := f.channel
	if !cmd.Flags().Changed("channel") {
		channel = envVars.Channel
	}
	file := f.file
	if !cmd.Flags().Changed("file") {
		file = envVars.File
	}
	dateStr := f.date
	if !cmd.Flags().Changed("date") {
		dateStr = envVars.Date
	}

	date := config.Today()
	if dateStr != "" {
		var err error
		if date, err = config.ParseDate(dateStr); err != nil {
			return config.EngineArgs{}, err
		}
	}

	args := cfg.NewEngineArgs(channel, date)
	args.DryRun = f.dryRun
	args.URL = f.url
	args.File = file
	args.Groups = f.groups
	args.CheckOwnership = !f.noOwnership
	args.Repositories = slices.Concat(args.Repositories, f.repositories)
	if cmd.Flags().Changed("transcript") {
		args.Transcript = f.transcript
	}
	if cmd.Flags().Changed("rate-limit") {
		args.RateLimit = f.rateLimit
	}
	return args, args.Validate()
}
