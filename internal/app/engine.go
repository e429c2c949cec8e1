package app

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"minutes_linker/internal/config"
	"minutes_linker/internal/fragment"
	"minutes_linker/internal/links"
	"minutes_linker/internal/logging"
	"minutes_linker/internal/models"
	"minutes_linker/internal/ratelimit"
	"minutes_linker/internal/repositories"
)

const transcriptSection = "\n\n<details><summary><i>View the transcript</i></summary>\n\n%FRAGMENT%\n----\n</details>"

// IssueTracker is the part of GitHub the engine needs.
type IssueTracker interface {
	FindComment(ctx context.Context, issue models.Issue, link string, since time.Time) (*models.Comment, error)
	CreateComment(ctx context.Context, issue models.Issue, body string) (*models.Comment, error)
}

type MinutesLoader interface {
	Load(ctx context.Context, minutesURL, file string) (string, error)
}

// Deps are the collaborators shared by every engine of a process.
type Deps struct {
	Tracker      IssueTracker
	Loader       MinutesLoader
	Repositories repositories.Source
	MinutesHost  string
	Logger       *slog.Logger
}

// Engine locates mentions of GitHub issues in one set of minutes and comments
// each issue with a link to the part of the minutes where it was discussed.
type Engine struct {
	url            string
	dom            *goquery.Document
	tracker        IssueTracker
	limiter        *ratelimit.Limiter
	owned          []models.Repository
	checkOwnership bool
	minDate        time.Time
	template       string
	transcript     bool
	dryRun         bool
	logger         *slog.Logger
}

type reference struct {
	issue    models.Issue
	link     string
	fragment models.Fragment
}

// NewEngine loads the minutes and, when ownership is checked, the owned
// repositories. Any failure here is fatal to the run.
func NewEngine(ctx context.Context, args config.EngineArgs, deps Deps) (*Engine, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	url := args.MinutesURL(deps.MinutesHost)
	logger.Debug("minutes URL", "url", url)

	raw, err := deps.Loader.Load(ctx, url, args.File)
	if err != nil {
		return nil, err
	}
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}

	var owned []models.Repository
	if args.CheckOwnership {
		owned, err = deps.Repositories.Repositories(ctx, args.GroupList())
		if err != nil {
			return nil, err
		}
		extra, err := args.ExtraRepositories()
		if err != nil {
			return nil, err
		}
		owned = slices.Concat(owned, extra)
		logger.Debug("owned repositories", "groups", args.GroupList(), "count", len(owned))
	}

	template := args.Template
	if template == "" {
		template = defaultTemplate(args.Channel, args.Date)
	}
	if args.Transcript && !strings.Contains(template, "%FRAGMENT%") {
		template += transcriptSection
	}

	return &Engine{
		url:            url,
		dom:            dom,
		tracker:        deps.Tracker,
		limiter:        ratelimit.New(ratelimit.Seconds(args.RateLimit)),
		owned:          owned,
		checkOwnership: args.CheckOwnership,
		minDate:        args.MinDate(),
		template:       template,
		transcript:     args.Transcript,
		dryRun:         args.DryRun,
		logger:         logger,
	}, nil
}

func defaultTemplate(channel string, date time.Time) string {
	return fmt.Sprintf("This was discussed during the [%s meeting on %s](%%URL%%).",
		strings.TrimPrefix(channel, "#"), date.Format("02 January 2006"))
}

func (e *Engine) URL() string {
	return e.url
}

// Run yields one outcome per issue reference, in document order. Nothing is
// sent to GitHub for references the consumer does not ask for, and the
// sequence ends early when ctx is cancelled.
func (e *Engine) Run(ctx context.Context) iter.Seq[models.Outcome] {
	return func(yield func(models.Outcome) bool) {
		for ref := range e.references() {
			if err := e.limiter.Wait(ctx); err != nil {
				e.logger.Warn("run interrupted", "error", err)
				return
			}
			if !yield(e.process(ctx, ref)) {
				return
			}
		}
	}
}

// references yields the issue links of the minutes that have a fragment to point to.
func (e *Engine) references() iter.Seq[reference] {
	return func(yield func(reference) bool) {
		for _, a := range e.dom.Find("a[href]").EachIter() {
			href, _ := a.Attr("href")
			issue, ok := links.ParseIssue(href)
			if !ok {
				continue
			}
			frag, ok := fragment.Resolve(a.Get(0), e.transcript)
			if !ok {
				e.logger.Debug("no fragment to link to", "issue", issue.URL)
				continue
			}
			link := links.DeepLink(e.url, frag.ID)
			e.logger.Debug("issue referenced", "issue", issue.URL, "link", link)
			if !yield(reference{issue: issue, link: link, fragment: frag}) {
				return
			}
		}
	}
}

func (e *Engine) process(ctx context.Context, ref reference) models.Outcome {
	logger := e.logger.With("issue", ref.issue.String())

	if e.checkOwnership && !repositories.Owns(ref.issue, e.owned) {
		logger.Info("skipping, repository not owned")
		return models.NotOwned(ref.issue)
	}

	existing, err := e.tracker.FindComment(ctx, ref.issue, ref.link, e.minDate)
	if err != nil {
		logger.Error("failed looking for existing comments", "error", err)
		return models.Failed(ref.issue, err)
	}
	if existing != nil {
		logger.Info("skipping, link to minutes already there", "comment", existing.URL)
		return models.Duplicate(ref.issue, existing.URL)
	}

	message := e.message(ref)
	logger.Debug("comment message", "message", message)
	if e.dryRun {
		logger.Info("comment posted (not really, running in dry mode)")
		return models.Faked(ref.issue)
	}

	comment, err := e.tracker.CreateComment(ctx, ref.issue, message)
	if err != nil {
		logger.Error("failed posting comment", "error", err)
		return models.Failed(ref.issue, err)
	}
	logger.Info("comment posted", "comment", comment.URL)
	return models.Created(ref.issue, comment.URL)
}

func (e *Engine) message(ref reference) string {
	return strings.NewReplacer(
		"%URL%", ref.link,
		"%FRAGMENT%", ref.fragment.Excerpt,
	).Replace(e.template)
}
