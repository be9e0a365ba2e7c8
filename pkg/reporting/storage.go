package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Storage persists ScenarioReport values produced by cmd/netfabric-demo
// runs and keeps an in-memory index of them keyed by Scenario, so that
// retention is enforced per scenario rather than across the directory
// as a whole: a long-running "unreliable-partial-success" suite and a
// one-off "happy-path" smoke run each keep their own keepLastN history
// instead of competing for the same global slot count.
type Storage struct {
	outputDir string
	keepLastN int
	logger    *Logger

	mu    sync.Mutex
	byRun map[string]*scenarioIndex
}

// scenarioIndex holds one scenario's reports, sorted newest-first by
// StartTime. It is built from disk once, at construction time, and
// then maintained in memory, so ListReports and cleanup never re-walk
// the output directory once Storage is warm.
type scenarioIndex struct {
	entries []ReportSummary
}

func (idx *scenarioIndex) insert(s ReportSummary) {
	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].StartTime.Before(s.StartTime) || idx.entries[i].StartTime.Equal(s.StartTime)
	})
	idx.entries = append(idx.entries, ReportSummary{})
	copy(idx.entries[i+1:], idx.entries[i:])
	idx.entries[i] = s
}

// NewStorage builds a Storage rooted at outputDir, creating it if
// absent, and indexes any reports already present by scanning the
// directory once.
func NewStorage(outputDir string, keepLastN int, logger *Logger) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("reporting: create output directory: %w", err)
	}
	s := &Storage{
		outputDir: outputDir,
		keepLastN: keepLastN,
		logger:    logger,
		byRun:     make(map[string]*scenarioIndex),
	}
	if err := s.rebuildIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) rebuildIndex() error {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return fmt.Errorf("reporting: read output directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.outputDir, entry.Name())
		r, err := s.LoadReport(path)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to index report", Str("path", path), Err(err))
			}
			continue
		}
		s.indexLocked(summaryOf(r, path))
	}
	return nil
}

func summaryOf(r *ScenarioReport, path string) ReportSummary {
	return ReportSummary{
		RunID:     r.RunID,
		Scenario:  r.Scenario,
		StartTime: r.StartTime,
		Status:    r.Status,
		Filepath:  path,
	}
}

// indexLocked inserts summary into its scenario bucket. Callers hold
// s.mu, or are NewStorage's single-goroutine construction path.
func (s *Storage) indexLocked(summary ReportSummary) {
	idx, ok := s.byRun[summary.Scenario]
	if !ok {
		idx = &scenarioIndex{}
		s.byRun[summary.Scenario] = idx
	}
	idx.insert(summary)
}

// SaveReport writes r as run-<timestamp>-<runID>.json, indexes it under
// its Scenario, and, if keepLastN is set, prunes that scenario's older
// reports down to that count.
func (s *Storage) SaveReport(r *ScenarioReport) (string, error) {
	filename := fmt.Sprintf("run-%s-%s.json", r.StartTime.Format("20060102-150405"), r.RunID)
	path := filepath.Join(s.outputDir, filename)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("reporting: marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("reporting: write report file: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("scenario report saved", Str("path", path))
	}

	s.mu.Lock()
	s.indexLocked(summaryOf(r, path))
	var stale []ReportSummary
	if s.keepLastN > 0 {
		stale = s.trimLocked(r.Scenario)
	}
	s.mu.Unlock()

	for _, summary := range stale {
		s.deleteFile(summary.Filepath)
	}

	return path, nil
}

// trimLocked drops entries beyond keepLastN for scenario and returns
// the ones it removed, so the caller can delete their files outside
// the lock. Callers hold s.mu.
func (s *Storage) trimLocked(scenario string) []ReportSummary {
	idx, ok := s.byRun[scenario]
	if !ok || len(idx.entries) <= s.keepLastN {
		return nil
	}
	stale := append([]ReportSummary(nil), idx.entries[s.keepLastN:]...)
	idx.entries = idx.entries[:s.keepLastN]
	return stale
}

func (s *Storage) deleteFile(path string) {
	if err := os.Remove(path); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to delete old report", Str("path", path), Err(err))
		}
		return
	}
	if s.logger != nil {
		s.logger.Debug("deleted old report", Str("path", path))
	}
}

// LoadReport reads a ScenarioReport from the given file path.
func (s *Storage) LoadReport(path string) (*ScenarioReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reporting: read report file: %w", err)
	}
	var r ScenarioReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("reporting: unmarshal report: %w", err)
	}
	return &r, nil
}

// ListReports returns every indexed report across all scenarios,
// newest first. The index is already sorted per scenario, so this only
// needs to merge the per-scenario runs rather than touch disk.
func (s *Storage) ListReports() ([]ReportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]ReportSummary, 0)
	for _, idx := range s.byRun {
		all = append(all, idx.entries...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartTime.After(all[j].StartTime)
	})
	return all, nil
}

// ListScenario returns the indexed reports for a single scenario,
// newest first — the view trimLocked's retention actually acts on, and
// the one a CLI "show history for this scenario" flag wants without
// paying for every other scenario's entries.
func (s *Storage) ListScenario(scenario string) []ReportSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byRun[scenario]
	if !ok {
		return nil
	}
	out := make([]ReportSummary, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// FindReportByRunID returns the report whose RunID matches runID.
func (s *Storage) FindReportByRunID(runID string) (*ScenarioReport, error) {
	summaries, err := s.ListReports()
	if err != nil {
		return nil, err
	}
	for _, summary := range summaries {
		if summary.RunID == runID {
			return s.LoadReport(summary.Filepath)
		}
	}
	return nil, fmt.Errorf("reporting: no report found for run id %q", runID)
}

// OutputDir returns the directory reports are stored under.
func (s *Storage) OutputDir() string {
	return s.outputDir
}
