// Package progress tracks which (year, month) units of a crawl are done and where to resume.
package progress

import (
	"slices"
	"sync"
	"time"

	"case-scraper/pkg/models"
)

// Tracker holds the in-memory checkpoint and flushes it to its Store after every mutation.
// A mutation whose save fails is rolled back, so memory never claims progress the store lacks.
type Tracker struct {
	store Store
	state models.ProgressState
	now   func() time.Time
	mu    sync.RWMutex
}

// NewTracker loads the saved state from store
func NewTracker(store Store) (*Tracker, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Tracker{store: store, state: state, now: time.Now}, nil
}

// State returns a copy of the current checkpoint
func (t *Tracker) State() models.ProgressState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Clone()
}

// update applies fn to a copy of the state, stamps it, and commits it only if the save succeeds
func (t *Tracker) update(fn func(s *models.ProgressState)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.state.Clone()
	fn(&next)
	ts := t.now().Format(models.TimestampLayout)
	next.LastUpdated = &ts

	if err := t.store.Save(next); err != nil {
		return err
	}
	t.state = next
	return nil
}

// MarkMonthComplete records month as done within year, making year the current year
func (t *Tracker) MarkMonthComplete(year int, month string) error {
	return t.update(func(s *models.ProgressState) {
		addMonth(s, year, month)
	})
}

// addMonth appends month to the current year's months, dropping months left over
// from a different current year first
func addMonth(s *models.ProgressState, year int, month string) {
	if s.CurrentYear == nil || *s.CurrentYear != year {
		y := year
		s.CurrentYear = &y
		s.CompletedMonths = []string{}
	}
	if !slices.Contains(s.CompletedMonths, month) {
		s.CompletedMonths = append(s.CompletedMonths, month)
	}
}

// MarkYearComplete records year as done and clears the current-year state
func (t *Tracker) MarkYearComplete(year int) error {
	return t.update(func(s *models.ProgressState) {
		if !slices.Contains(s.CompletedYears, year) {
			s.CompletedYears = append(s.CompletedYears, year)
			slices.Sort(s.CompletedYears)
		}
		s.CurrentYear = nil
		s.CompletedMonths = []string{}
	})
}

// RecordMonth marks month complete for year and adds its case count in a single flush
func (t *Tracker) RecordMonth(year int, month string, cases int) error {
	return t.update(func(s *models.ProgressState) {
		addMonth(s, year, month)
		s.TotalCasesScraped += cases
	})
}

// Reset replaces the checkpoint with the empty state
func (t *Tracker) Reset() error {
	return t.update(func(s *models.ProgressState) {
		*s = models.NewProgressState()
	})
}

// IsYearComplete reports whether year is in the completed set
func (t *Tracker) IsYearComplete(year int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Contains(t.state.CompletedYears, year)
}

// IsMonthComplete reports whether month is done for year; months only count for the current year
func (t *Tracker) IsMonthComplete(year int, month string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.CurrentYear != nil && *t.state.CurrentYear == year &&
		slices.Contains(t.state.CompletedMonths, month)
}

// ResumePoint returns the first year in [startYear, endYear] not yet complete, paired
// with the first month. ok is false when every year in range is complete.
func (t *Tracker) ResumePoint(startYear, endYear int) (year int, month string, ok bool) {
	for y := startYear; y <= endYear; y++ {
		if !t.IsYearComplete(y) {
			return y, models.Months[0], true
		}
	}
	return 0, "", false
}
