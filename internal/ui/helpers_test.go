package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/five82/fredview/internal/fred"
	"github.com/five82/fredview/internal/table"
)

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"refused", &fred.RequestError{Kind: fred.ErrTransport, Err: errors.New("dial tcp: connection refused")}, "OFFLINE"},
		{"dns", &fred.RequestError{Kind: fred.ErrTransport, Err: errors.New("lookup api: no such host")}, "HOST NOT FOUND"},
		{"other transport", &fred.RequestError{Kind: fred.ErrTransport, Err: errors.New("EOF")}, "NETWORK ERROR"},
		{"deadline", &fred.RequestError{Kind: fred.ErrTransport, Err: context.DeadlineExceeded}, "TIMEOUT"},
		{"http status", &fred.RequestError{Kind: fred.ErrHTTP, StatusCode: 429}, "HTTP 429"},
		{"wrapped http", fmt.Errorf("refresh: %w", fred.ErrHTTP), "HTTP ERROR"},
		{"decode", &fred.RequestError{Kind: fred.ErrDecode}, "BAD RESPONSE"},
		{"unknown", errors.New("boom"), "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyConnectionError(tt.err); got != tt.want {
				t.Fatalf("classifyConnectionError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShiftYears(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)
	first := date(2019, 10, 1)

	tests := []struct {
		name       string
		in         fred.DateRange
		start, end int
		want       fred.DateRange
		wantErr    bool
	}{
		{"start back", fred.DateRange{Start: date(2020, 1, 1)}, -1, 0, fred.DateRange{Start: date(2019, 1, 1)}, false},
		{"open start anchors at first date", fred.DateRange{}, 1, 0, fred.DateRange{Start: date(2020, 10, 1)}, false},
		{"open end anchors at today", fred.DateRange{Start: date(2020, 1, 1)}, 0, -1, fred.DateRange{Start: date(2020, 1, 1), End: date(2023, 6, 15)}, false},
		{"end reaching today reopens", fred.DateRange{Start: date(2020, 1, 1), End: date(2023, 6, 15)}, 0, 1, fred.DateRange{Start: date(2020, 1, 1)}, false},
		{"start past end", fred.DateRange{Start: date(2020, 1, 1), End: date(2020, 6, 1)}, 1, 0, fred.DateRange{}, true},
		{"start in future", fred.DateRange{Start: date(2024, 1, 1)}, 1, 0, fred.DateRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shiftYears(tt.in, tt.start, tt.end, first, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("shiftYears() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("shiftYears() error = %v", err)
			}
			if !got.Start.Equal(tt.want.Start) || !got.End.Equal(tt.want.End) {
				t.Fatalf("shiftYears() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestShiftYears_OpenStartWithoutData(t *testing.T) {
	if _, err := shiftYears(fred.DateRange{}, -1, 0, time.Time{}, time.Now()); err == nil {
		t.Fatalf("expected error moving an open start with no data loaded")
	}
}

func TestTableRows_Aligned(t *testing.T) {
	tbl, err := table.New(
		[]time.Time{date(2020, 4, 1), date(2020, 7, 1)},
		table.NumericColumn("value", []float64{101, 103.5}),
		table.TextColumn("note", []string{"", "revised"}),
	)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}

	header := tableHeader(tbl)
	rows := tableRows(tbl)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	want := dateColumnWidth + 2*TableColumnWidth
	for _, line := range append([]string{header}, rows...) {
		if len(line) != want {
			t.Fatalf("line %q has width %d, want %d", line, len(line), want)
		}
	}
	if !strings.HasSuffix(rows[0], "-") || !strings.HasSuffix(rows[1], "revised") {
		t.Fatalf("rows = %q", rows)
	}
	if !strings.Contains(rows[1], "103.50") {
		t.Fatalf("row 1 = %q, want formatted value", rows[1])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("series/observations", 10); got != "series/..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
	if got := truncateMiddle("/home/user/.local/state/fredview/fredview.log", 20); len([]rune(got)) != 20 || !strings.HasSuffix(got, "view.log") {
		t.Fatalf("truncateMiddle = %q", got)
	}
}
