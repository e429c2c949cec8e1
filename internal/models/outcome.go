package models

type OutcomeKind int

const (
	// OutcomeCreated: a comment was posted, Comment holds its URL.
	OutcomeCreated OutcomeKind = iota + 1
	// OutcomeDuplicate: a comment linking to the same place already exists, Comment holds its URL.
	OutcomeDuplicate
	// OutcomeFaked: the comment would have been posted (dry run).
	OutcomeFaked
	// OutcomeNotOwned: the issue belongs to a repository outside the ownership list.
	OutcomeNotOwned
	// OutcomeError: a GitHub call failed, Err holds the cause.
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFaked:
		return "faked"
	case OutcomeNotOwned:
		return "not_owned"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is what happened to one issue reference found in the minutes.
// Values are only built through the constructors below.
type Outcome struct {
	Kind    OutcomeKind
	Issue   string
	Comment string
	Err     error
}

func Created(issue Issue, commentURL string) Outcome {
	return Outcome{Kind: OutcomeCreated, Issue: issue.URL, Comment: commentURL}
}

func Duplicate(issue Issue, commentURL string) Outcome {
	return Outcome{Kind: OutcomeDuplicate, Issue: issue.URL, Comment: commentURL}
}

func Faked(issue Issue) Outcome {
	return Outcome{Kind: OutcomeFaked, Issue: issue.URL}
}

func NotOwned(issue Issue) Outcome {
	return Outcome{Kind: OutcomeNotOwned, Issue: issue.URL}
}

func Failed(issue Issue, err error) Outcome {
	return Outcome{Kind: OutcomeError, Issue: issue.URL, Err: err}
}
