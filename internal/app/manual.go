package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"minutes_linker/internal/config"
	"minutes_linker/internal/logging"
	"minutes_linker/internal/models"
)

// Journal records outcomes for later inspection.
type Journal interface {
	SaveOutcome(ctx context.Context, rec *models.OutcomeRecord) error
	RunSummary(ctx context.Context, runID string) (map[string]int, error)
}

// Summary counts outcomes per kind.
type Summary map[models.OutcomeKind]int

func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Runner is the batch front end: one engine run, outcomes reported to the log and the journal.
type Runner struct {
	deps    Deps
	journal Journal
	workers int
	logger  *slog.Logger
}

// NewRunner builds a runner; journal may be nil.
func NewRunner(deps Deps, journal Journal, workers int) *Runner {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Runner{
		deps:    deps,
		journal: journal,
		workers: workers,
		logger:  deps.Logger,
	}
}

func (r *Runner) Run(ctx context.Context, args config.EngineArgs) (Summary, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run", runID)
	deps := r.deps
	deps.Logger = logger

	logger.Info("linking issues to minutes", "channel", args.Channel, "date", args.Date.Format(config.DateLayout), "dry_run", args.DryRun)
	engine, err := NewEngine(ctx, args, deps)
	if err != nil {
		return nil, err
	}

	summary := make(Summary)
	var g errgroup.Group
	g.SetLimit(r.workers)
	for outcome := range engine.Run(ctx) {
		summary[outcome.Kind]++

		g.Go(func() error {
			r.report(ctx, logger, runID, engine.URL(), outcome)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("run finished",
		"created", summary[models.OutcomeCreated],
		"duplicates", summary[models.OutcomeDuplicate],
		"faked", summary[models.OutcomeFaked],
		"not_owned", summary[models.OutcomeNotOwned],
		"errors", summary[models.OutcomeError])
	if r.journal != nil {
		if stored, err := r.journal.RunSummary(ctx, runID); err != nil {
			logger.Warn("failed reading run summary from journal", "error", err)
		} else {
			logger.Debug("journal summary", "kinds", stored)
		}
	}
	return summary, ctx.Err()
}

func (r *Runner) report(ctx context.Context, logger *slog.Logger, runID, minutesURL string, o models.Outcome) {
	switch o.Kind {
	case models.OutcomeCreated, models.OutcomeDuplicate:
		logger.Debug("outcome", "kind", o.Kind, "issue", o.Issue, "comment", o.Comment)
	case models.OutcomeFaked, models.OutcomeNotOwned:
		logger.Debug("outcome", "kind", o.Kind, "issue", o.Issue)
	case models.OutcomeError:
		logger.Error("could not process issue", "issue", o.Issue, "error", o.Err)
	}

	if r.journal == nil {
		return
	}
	if err := r.journal.SaveOutcome(ctx, models.NewOutcomeRecord(runID, minutesURL, o, time.Now())); err != nil {
		logger.Warn("failed journaling outcome", "issue", o.Issue, "error", err)
	}
}
