package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minutes_linker/internal/models"
)

func TestRunnerSummarizesAndJournals(t *testing.T) {
	journal := &fakeJournal{}
	tracker := &fakeTracker{existing: map[string]string{
		"w3c/did#7": "https://github.com/w3c/did/pull/7#issuecomment-1",
	}}
	runner := NewRunner(testDeps(tracker, ownedDID()), journal, 2)

	summary, err := runner.Run(context.Background(), testArgs())
	require.NoError(t, err)
	assert.Equal(t, Summary{
		models.OutcomeCreated:   1,
		models.OutcomeDuplicate: 1,
		models.OutcomeNotOwned:  1,
	}, summary)
	assert.Equal(t, 3, summary.Total())

	require.Len(t, journal.records, 3)
	runID := journal.records[0].RunID
	assert.NotEmpty(t, runID)
	for _, rec := range journal.records {
		assert.Equal(t, runID, rec.RunID)
		assert.Equal(t, minutesURL, rec.MinutesURL)
	}
	stored, err := journal.RunSummary(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"created": 1, "duplicate": 1, "not_owned": 1}, stored)
}

func TestRunnerJournalFailuresAreNotFatal(t *testing.T) {
	runner := NewRunner(testDeps(&fakeTracker{}, ownedDID()), &fakeJournal{failing: true}, -1)

	summary, err := runner.Run(context.Background(), testArgs())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total())
}

func TestRunnerWithoutJournal(t *testing.T) {
	args := testArgs()
	args.DryRun = true
	summary, err := NewRunner(testDeps(&fakeTracker{}, ownedDID()), nil, 1).Run(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, 2, summary[models.OutcomeFaked])
}

func TestRunnerFatalError(t *testing.T) {
	deps := testDeps(&fakeTracker{}, ownedDID())
	deps.Loader = &fakeLoader{err: &LoadError{Source: minutesURL, StatusCode: 404}}

	summary, err := NewRunner(deps, &fakeJournal{}, 1).Run(context.Background(), testArgs())
	assert.Nil(t, summary)
	assert.True(t, IsNotFound(err))
}
