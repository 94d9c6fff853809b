package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/fredview/internal/fred"
	"github.com/five82/fredview/internal/table"
)

func gdpTable(t *testing.T, values ...float64) *table.Table {
	t.Helper()
	dates := make([]time.Time, len(values))
	for i := range values {
		dates[i] = time.Date(2020, time.Month(1+3*i), 1, 0, 0, 0, 0, time.UTC)
	}
	tbl, err := table.New(dates, table.NumericColumn("value", values))
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tbl
}

var gdp = Query{
	SeriesID: "GDPC1",
	Range:    fred.DateRange{Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
}

func TestStore_ZeroValueSnapshot(t *testing.T) {
	var s Store
	snap := s.Snapshot()
	if snap.Table == nil || !snap.Table.IsEmpty() {
		t.Fatalf("zero snapshot table = %v, want empty", snap.Table)
	}
	if snap.HasData || snap.NoData() {
		t.Fatalf("zero snapshot HasData=%v NoData=%v, want false/false", snap.HasData, snap.NoData())
	}
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Update(gdp, gdpTable(t, 100, 101), nil)

	snap := s.Snapshot()
	if !snap.HasData || snap.Table.Len() != 2 {
		t.Fatalf("snapshot rows = %d HasData=%v, want 2/true", snap.Table.Len(), snap.HasData)
	}
	if snap.Query != gdp {
		t.Fatalf("Query = %+v, want %+v", snap.Query, gdp)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Table.Column("value").Floats[0] = 999
	snap2 := s.Snapshot()
	if got := snap2.Table.Column("value").Floats[0]; got != 100 {
		t.Fatalf("Snapshot should clone table; got %v want 100", got)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(gdp, gdpTable(t, 100, 101), nil)

	origErr := errors.New("boom")
	s.Update(gdp, nil, origErr)

	snap := s.Snapshot()
	if snap.Table.Len() != 2 || !snap.HasData {
		t.Fatalf("table changed on error: rows=%d HasData=%v", snap.Table.Len(), snap.HasData)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if snap.NoData() {
		t.Fatalf("NoData() = true while an error is recorded")
	}
}

func TestStore_UpdateErrorForNewQueryClearsTable(t *testing.T) {
	var s Store
	s.Update(gdp, gdpTable(t, 100, 101), nil)

	other := Query{SeriesID: "UNRATE", Range: gdp.Range}
	s.Update(other, nil, errors.New("404"))

	snap := s.Snapshot()
	if !snap.Table.IsEmpty() || snap.HasData {
		t.Fatalf("stale table kept for new query: rows=%d HasData=%v", snap.Table.Len(), snap.HasData)
	}
	if snap.Query.SeriesID != "UNRATE" {
		t.Fatalf("Query.SeriesID = %q, want UNRATE", snap.Query.SeriesID)
	}
}

func TestStore_NoData(t *testing.T) {
	var s Store
	s.Update(gdp, table.Empty(), nil)
	if !s.Snapshot().NoData() {
		t.Fatalf("NoData() = false after successful empty fetch")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	s.Update(gdp, nil, errors.New("fail 1"))
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("failures=%d offline=%v, want 1/false", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(gdp, nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("failures=%d offline=%v, want 2/true", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(gdp, gdpTable(t, 1), nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("failures=%d offline=%v after success, want 0/false", snap.ConsecutiveFailures, snap.IsOffline())
	}
}
