package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/fredview/internal/fred"
	"github.com/five82/fredview/internal/table"
)

// NoDataMessage is shown when a fetch succeeds with zero rows.
const NoDataMessage = "No data available for the selected date range."

// Query identifies what the dashboard asked for.
type Query struct {
	SeriesID string
	Range    fred.DateRange
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Query               Query
	Table               *table.Table // transformed, never nil after the first Update
	HasData             bool         // a fetch has succeeded at least once
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// NoData reports a successful fetch that produced no rows.
func (s Snapshot) NoData() bool {
	return s.HasData && s.LastError == nil && s.Table.IsEmpty()
}

// IsOffline returns true when the API has failed for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the outcome of a refresh for q. When err is non-nil and the
// query is unchanged, the previous table is kept and the error recorded. A
// failed refresh for a new query clears the table so stale data for another
// series or range is never shown.
func (s *Store) Update(q Query, tbl *table.Table, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sameQuery := s.snapshot.Query == q
	s.snapshot.Query = q
	s.snapshot.LastUpdated = time.Now()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		if !sameQuery || s.snapshot.Table == nil {
			s.snapshot.Table = table.Empty()
			s.snapshot.HasData = false
		}
		return
	}

	s.snapshot.Table = tbl.Clone()
	s.snapshot.HasData = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.Table != nil {
		snap.Table = s.snapshot.Table.Clone()
	} else {
		snap.Table = table.Empty()
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
