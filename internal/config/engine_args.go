package config

import (
	"errors"
	"time"

	"minutes_linker/internal/links"
	"minutes_linker/internal/models"
)

// EngineArgs describes one run of the engine over one set of minutes.
type EngineArgs struct {
	Channel        string
	Date           time.Time
	DryRun         bool
	URL            string
	File           string
	Groups         string
	RateLimit      float64
	Transcript     bool
	CheckOwnership bool
	Repositories   []string
	Template       string
}

// NewEngineArgs fills the run defaults from the configuration.
func (c *Config) NewEngineArgs(channel string, date time.Time) EngineArgs {
	return EngineArgs{
		Channel:        channel,
		Date:           date,
		RateLimit:      c.Logic.RateLimit,
		Transcript:     c.Logic.Transcript,
		CheckOwnership: true,
		Repositories:   c.Logic.Repositories,
		Template:       c.Logic.MessageTemplate,
	}
}

func (a EngineArgs) Validate() error {
	if a.Channel == "" {
		return errors.New("channel is required")
	}
	if a.Date.IsZero() {
		return errors.New("date is required")
	}
	return ValidateRateLimit(a.RateLimit)
}

// MinutesURL is the explicit URL when given, else the canonical location on host.
func (a EngineArgs) MinutesURL(host string) string {
	if a.URL != "" {
		return a.URL
	}
	return links.MinutesURL(host, a.Date, a.Channel)
}

func (a EngineArgs) GroupList() []string {
	if groups := links.SplitGroups(a.Groups); len(groups) > 0 {
		return groups
	}
	return links.DefaultGroups(a.Channel)
}

func (a EngineArgs) ExtraRepositories() ([]models.Repository, error) {
	var repos []models.Repository
	for _, slug := range a.Repositories {
		r, err := links.ParseRepository(slug)
		if err != nil {
			return nil, err
		}
		repos = append(repos, r)
	}
	return repos, nil
}

// MinDate is the day before the minutes, comments older than that are ignored.
func (a EngineArgs) MinDate() time.Time {
	y, m, d := a.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func Today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
