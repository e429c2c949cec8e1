package links

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"minutes_linker/internal/models"
)

// DefaultOwner is assumed for repository slugs given without an organization.
const DefaultOwner = "w3c"

var reIssue = regexp.MustCompile(`//github\.com/([^/]+)/([^/]+)/(issues|pull|#)/([0-9]+)$`)

// ParseIssue recognizes links to GitHub issues and pull requests.
// Most links in minutes are not issues, so a mismatch is not an error.
func ParseIssue(href string) (models.Issue, bool) {
	m := reIssue.FindStringSubmatch(href)
	if m == nil {
		return models.Issue{}, false
	}
	id, err := strconv.ParseUint(m[4], 10, 64)
	if err != nil || id == 0 || id > math.MaxInt {
		return models.Issue{}, false
	}
	return models.Issue{
		URL:   href,
		Owner: m[1],
		Repo:  m[2],
		ID:    id,
	}, true
}

// MinutesURL is where the minutes of channel for the given day are published on host.
func MinutesURL(host string, date time.Time, channel string) string {
	return fmt.Sprintf("https://%s/%04d/%02d/%02d-%s-minutes.html",
		host, date.Year(), int(date.Month()), date.Day(), strings.TrimPrefix(channel, "#"))
}

func DeepLink(minutesURL, fragmentID string) string {
	return minutesURL + "#" + fragmentID
}

// ParseRepository accepts "org/repo" or a bare "repo" owned by DefaultOwner.
func ParseRepository(slug string) (models.Repository, error) {
	slug = strings.TrimSpace(slug)
	org, name, found := strings.Cut(slug, "/")
	if !found {
		org, name = DefaultOwner, slug
	}
	if org == "" || name == "" || strings.Contains(name, "/") {
		return models.Repository{}, fmt.Errorf("invalid repository %q, expected [org/]repo", slug)
	}
	return models.Repository{Name: name, Owner: models.Owner{Login: org}}, nil
}

// DefaultGroups derives the ownership group of an IRC channel.
func DefaultGroups(channel string) []string {
	return []string{"wg/" + strings.TrimPrefix(channel, "#")}
}

func SplitGroups(groups string) []string {
	var out []string
	for _, g := range strings.Split(groups, ",") {
		if g = strings.Trim(strings.TrimSpace(g), "/"); g != "" {
			out = append(out, g)
		}
	}
	return out
}
