package models

import (
	"fmt"
	"time"
)

type Issue struct {
	URL   string
	Owner string
	Repo  string
	ID    uint64
}

func (i Issue) String() string {
	return fmt.Sprintf("%s/%s#%d", i.Owner, i.Repo, i.ID)
}

// Fragment is a heading id of the minutes together with the transcript it introduces.
type Fragment struct {
	ID      string
	Excerpt string
}

type Owner struct {
	Login string `json:"login"`
}

// Repository mirrors an entry of a group's repositories.json.
type Repository struct {
	Name  string `json:"name"`
	Owner Owner  `json:"owner"`
}

func (r Repository) Contains(issue Issue) bool {
	return issue.Owner == r.Owner.Login && issue.Repo == r.Name
}

func (r Repository) String() string {
	return r.Owner.Login + "/" + r.Name
}

type Comment struct {
	ID   int64
	URL  string
	Body string
}

type OutcomeRecord struct {
	RunID      string `bson:"run_id"`
	MinutesURL string `bson:"minutes_url"`
	Issue      string `bson:"issue"`
	Kind       string `bson:"kind"`
	Comment    string `bson:"comment,omitempty"`
	Error      string `bson:"error,omitempty"`
	Timestamp  int64  `bson:"timestamp"`
}

func NewOutcomeRecord(runID, minutesURL string, o Outcome, at time.Time) *OutcomeRecord {
	rec := &OutcomeRecord{
		RunID:      runID,
		MinutesURL: minutesURL,
		Issue:      o.Issue,
		Kind:       o.Kind.String(),
		Comment:    o.Comment,
		Timestamp:  at.Unix(),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return rec
}
