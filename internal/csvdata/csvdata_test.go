package csvdata

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/fredview/internal/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	dates := []time.Time{
		time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	tbl, err := table.New(dates,
		table.NumericColumn("value", []float64{101, 105.5}),
		table.NumericColumn("value_growth_rate", []float64{1, math.NaN()}),
		table.TextColumn("note", []string{"advance", ""}),
	)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tbl
}

func TestDefaultName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := DefaultName("gdpc1", now); got != "GDPC1_data_20240309_140507.csv" {
		t.Fatalf("DefaultName = %q", got)
	}
	if got := DefaultName(" ", now); !strings.HasPrefix(got, "SERIES_data_") {
		t.Fatalf("DefaultName(empty) = %q", got)
	}
}

func TestWrite_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleTable(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "date,value,value_growth_rate,note\n" +
		"2020-04-01,101,1,advance\n" +
		"2020-07-01,105.5,,\n"
	if buf.String() != want {
		t.Fatalf("Write =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestExport_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "csv")
	src := sampleTable(t)

	path, err := Export(dir, "gdp", "GDPC1", src)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(path) != "gdp.csv" {
		t.Fatalf("path = %q, want suffix gdp.csv", path)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Equal(src) {
		t.Fatalf("round trip mismatch: columns %v rows %d", got.ColumnNames(), got.Len())
	}
}

func TestExport_DefaultName(t *testing.T) {
	dir := t.TempDir()
	path, err := Export(dir, "", "GDPC1", sampleTable(t))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "GDPC1_data_") || !strings.HasSuffix(base, ".csv") {
		t.Fatalf("default file name = %q", base)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Stat: %v", err)
	}
}

func TestRead_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "empty file"},
		{"no date column", "value\n1\n", "first column"},
		{"bad date", "date,value\n01/02/2020,1\n", "invalid date"},
		{"duplicate date", "date,value\n2020-01-01,1\n2020-01-01,2\n", "duplicate date"},
		{"ragged row", "date,value\n2020-01-01\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.body))
			if err == nil {
				t.Fatalf("Read returned nil error, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Read error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestRead_ValueColumnAlwaysNumeric(t *testing.T) {
	tbl, err := Read(strings.NewReader("date,value,realtime_start\n2020-01-01,.,2024-01-01\n2020-04-01,3,2024-01-01\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	value := tbl.Column("value")
	if value.Kind != table.Numeric || !math.IsNaN(value.Floats[0]) || value.Floats[1] != 3 {
		t.Fatalf("value column = %+v", value)
	}
	if rt := tbl.Column("realtime_start"); rt.Kind != table.Text {
		t.Fatalf("realtime_start kind = %v, want text", rt.Kind)
	}
}
