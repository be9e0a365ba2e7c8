package reporting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/netfabric/pkg/reporting"
)

func mustReport(scenario, runID string, start time.Time) *reporting.ScenarioReport {
	return &reporting.ScenarioReport{
		RunID:     runID,
		Scenario:  scenario,
		StartTime: start,
		EndTime:   start.Add(time.Second),
		Duration:  "1s",
		Status:    reporting.StatusCompleted,
	}
}

func TestStorageRetentionIsPerScenario(t *testing.T) {
	dir := t.TempDir()
	storage, err := reporting.NewStorage(dir, 2, nil)
	require.NoError(t, err)

	base := time.Now()
	for i := 0; i < 3; i++ {
		_, err := storage.SaveReport(mustReport("alpha", "alpha-run", base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := storage.SaveReport(mustReport("beta", "beta-run", base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	alpha := storage.ListScenario("alpha")
	beta := storage.ListScenario("beta")
	assert.Len(t, alpha, 2, "alpha's backlog should be trimmed to keepLastN independently of beta")
	assert.Len(t, beta, 2, "beta's backlog should be trimmed to keepLastN independently of alpha")

	all, err := storage.ListReports()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStorageListScenarioNewestFirst(t *testing.T) {
	dir := t.TempDir()
	storage, err := reporting.NewStorage(dir, 0, nil)
	require.NoError(t, err)

	base := time.Now()
	_, err = storage.SaveReport(mustReport("alpha", "run-1", base))
	require.NoError(t, err)
	_, err = storage.SaveReport(mustReport("alpha", "run-2", base.Add(time.Minute)))
	require.NoError(t, err)

	entries := storage.ListScenario("alpha")
	require.Len(t, entries, 2)
	assert.Equal(t, "run-2", entries[0].RunID)
	assert.Equal(t, "run-1", entries[1].RunID)
}

func TestStorageRebuildsIndexFromDisk(t *testing.T) {
	dir := t.TempDir()

	first, err := reporting.NewStorage(dir, 0, nil)
	require.NoError(t, err)
	_, err = first.SaveReport(mustReport("alpha", "run-1", time.Now()))
	require.NoError(t, err)

	second, err := reporting.NewStorage(dir, 0, nil)
	require.NoError(t, err)
	entries := second.ListScenario("alpha")
	require.Len(t, entries, 1)
	assert.Equal(t, "run-1", entries[0].RunID)
}

func TestStorageFindReportByRunID(t *testing.T) {
	dir := t.TempDir()
	storage, err := reporting.NewStorage(dir, 0, nil)
	require.NoError(t, err)

	_, err = storage.SaveReport(mustReport("alpha", "run-1", time.Now()))
	require.NoError(t, err)

	r, err := storage.FindReportByRunID("run-1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", r.Scenario)

	_, err = storage.FindReportByRunID("missing")
	assert.Error(t, err)
}
