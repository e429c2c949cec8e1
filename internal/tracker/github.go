// Package tracker talks to the GitHub issues API.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v71/github"

	"minutes_linker/internal/models"
)

// MaxComments is the size of the single page of comments inspected for
// duplicates, the largest page GitHub serves. The cutoff date is expected to
// leave fewer comments than that.
const MaxComments = 100

type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient builds a client authenticated with token. An empty apiURL targets api.github.com.
func NewClient(httpClient *http.Client, token, apiURL string, logger *slog.Logger) (*Client, error) {
	gh := github.NewClient(httpClient)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	if apiURL != "" {
		var err error
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		gh, err = gh.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("github api url %q: %w", apiURL, err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{gh: gh, logger: logger}, nil
}

// FindComment returns the first comment posted on issue since the given time
// whose body contains link, or nil.
func (c *Client) FindComment(ctx context.Context, issue models.Issue, link string, since time.Time) (*models.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		Since:       &since,
		ListOptions: github.ListOptions{PerPage: MaxComments},
	}
	comments, _, err := c.gh.Issues.ListComments(ctx, issue.Owner, issue.Repo, int(issue.ID), opts)
	if err != nil {
		return nil, fmt.Errorf("list comments of %s: %w", issue, err)
	}
	c.logger.Debug("listed comments", "issue", issue.String(), "count", len(comments))
	for _, comment := range comments {
		if strings.Contains(comment.GetBody(), link) {
			return toComment(comment), nil
		}
	}
	return nil, nil
}

func (c *Client) CreateComment(ctx context.Context, issue models.Issue, body string) (*models.Comment, error) {
	comment, _, err := c.gh.Issues.CreateComment(ctx, issue.Owner, issue.Repo, int(issue.ID), &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return nil, fmt.Errorf("comment on %s: %w", issue, err)
	}
	return toComment(comment), nil
}

func toComment(c *github.IssueComment) *models.Comment {
	return &models.Comment{
		ID:   c.GetID(),
		URL:  c.GetHTMLURL(),
		Body: c.GetBody(),
	}
}
