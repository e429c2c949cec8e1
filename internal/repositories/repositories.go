// Package repositories decides which GitHub repositories a group is responsible for.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"minutes_linker/internal/models"
)

// DefaultBaseURL serves <group>/repositories.json for every W3C group.
const DefaultBaseURL = "https://w3c.github.io/groups/"

// Owns reports whether issue lives in one of repos. Comparison is exact.
func Owns(issue models.Issue, repos []models.Repository) bool {
	return slices.ContainsFunc(repos, func(r models.Repository) bool {
		return r.Contains(issue)
	})
}

// Source provides the repositories owned by a list of groups.
type Source interface {
	Repositories(ctx context.Context, groups []string) ([]models.Repository, error)
}

type Fetcher struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func NewFetcher(client *http.Client, baseURL string, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, baseURL: baseURL, logger: logger}
}

func (f *Fetcher) Repositories(ctx context.Context, groups []string) ([]models.Repository, error) {
	var all []models.Repository
	for _, group := range groups {
		repos, err := f.fetch(ctx, group)
		if err != nil {
			return nil, err
		}
		f.logger.Debug("fetched group repositories", "group", group, "count", len(repos))
		all = append(all, repos...)
	}
	return all, nil
}

func (f *Fetcher) fetch(ctx context.Context, group string) ([]models.Repository, error) {
	url := f.baseURL + strings.Trim(group, "/") + "/repositories.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch repositories of %s: %w", group, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch repositories of %s: HTTP %d from %s", group, resp.StatusCode, url)
	}
	var repos []models.Repository
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decode repositories of %s: %w", group, err)
	}
	return repos, nil
}

// Cached memoizes another Source per group list.
type Cached struct {
	source Source
	cache  *cache.Cache
}

func NewCached(source Source, ttl time.Duration) *Cached {
	return &Cached{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (c *Cached) Repositories(ctx context.Context, groups []string) ([]models.Repository, error) {
	key := strings.Join(groups, ",")
	if repos, ok := c.cache.Get(key); ok {
		return repos.([]models.Repository), nil
	}
	repos, err := c.source.Repositories(ctx, groups)
	if err != nil {
		return nil, err
	}
	// shared by concurrent callers: appending must never write into the cached array
	repos = slices.Clip(repos)
	c.cache.SetDefault(key, repos)
	return repos, nil
}
