package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"minutes_linker/internal/models"
)

const minutesHTML = `<html><body>
<h1 id="title">Decentralized Identifier WG</h1>
<h3 id="item1">1. Widgets</h3>
<p>alice: see <a href="https://github.com/w3c/did/issues/5">issue 5</a></p>
<p>@bob: agreed</p>
<h3 id="item2">2. Gadgets</h3>
<p>carol: and <a href="https://github.com/w3c/did/pull/7">PR 7</a>
also <a href="https://github.com/other/repo/issues/9">elsewhere</a>
<a href="https://example.org/not/an/issue">noise</a></p>
</body></html>`

const minutesURL = "https://www.w3.org/2024/03/05-did-minutes.html"

type call struct {
	op    string
	issue string
	body  string
	since time.Time
	at    time.Time
}

type fakeTracker struct {
	mu       sync.Mutex
	calls    []call
	existing map[string]string
	failFind map[string]error
	failPost map[string]error
}

func (f *fakeTracker) FindComment(_ context.Context, issue models.Issue, link string, since time.Time) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "find", issue: issue.String(), body: link, since: since, at: time.Now()})
	if err := f.failFind[issue.String()]; err != nil {
		return nil, err
	}
	if url, ok := f.existing[issue.String()]; ok {
		return &models.Comment{ID: 1, URL: url, Body: link}, nil
	}
	return nil, nil
}

func (f *fakeTracker) CreateComment(_ context.Context, issue models.Issue, body string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "create", issue: issue.String(), body: body, at: time.Now()})
	if err := f.failPost[issue.String()]; err != nil {
		return nil, err
	}
	return &models.Comment{ID: 2, URL: issue.URL + "#issuecomment-2", Body: body}, nil
}

func (f *fakeTracker) ops(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakeLoader struct {
	html string
	err  error
	urls []string
}

func (f *fakeLoader) Load(_ context.Context, minutesURL, _ string) (string, error) {
	f.urls = append(f.urls, minutesURL)
	return f.html, f.err
}

type fakeRepositories struct {
	repos  []models.Repository
	err    error
	groups [][]string
}

func (f *fakeRepositories) Repositories(_ context.Context, groups []string) ([]models.Repository, error) {
	f.groups = append(f.groups, groups)
	return f.repos, f.err
}

func ownedDID() *fakeRepositories {
	return &fakeRepositories{repos: []models.Repository{
		{Name: "did", Owner: models.Owner{Login: "w3c"}},
	}}
}

type sent struct {
	kind   string
	target string
	text   string
}

type fakeChat struct {
	mu   sync.Mutex
	nick string
	sent []sent
}

func (f *fakeChat) record(kind, target, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{kind: kind, target: target, text: text})
	return nil
}

func (f *fakeChat) Privmsg(target, message string) error { return f.record("privmsg", target, message) }
func (f *fakeChat) Action(target, message string) error { return f.record("action", target, message) }
func (f *fakeChat) Join(channel string) error { return f.record("join", channel, "") }
func (f *fakeChat) Part(channel string) error { return f.record("part", channel, "") }
func (f *fakeChat) CurrentNick() string { return f.nick }

func (f *fakeChat) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if s.text != "" {
			out = append(out, s.text)
		}
	}
	return out
}

type fakeJournal struct {
	mu      sync.Mutex
	records []*models.OutcomeRecord
	failing bool
}

func (f *fakeJournal) SaveOutcome(_ context.Context, rec *models.OutcomeRecord) error {
	if f.failing {
		return errors.New("journal down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeJournal) RunSummary(_ context.Context, runID string) (map[string]int, error) {
	if f.failing {
		return nil, fmt.Errorf("journal down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for _, r := range f.records {
		if r.RunID == runID {
			out[r.Kind]++
		}
	}
	return out, nil
}
