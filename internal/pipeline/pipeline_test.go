package pipeline

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/five82/fredview/internal/table"
)

func day(s string) time.Time {
	d, err := table.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustTable(t *testing.T, dates []string, cols ...table.Column) *table.Table {
	t.Helper()
	idx := make([]time.Time, len(dates))
	for i, s := range dates {
		idx[i] = day(s)
	}
	tbl, err := table.New(idx, cols...)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tbl
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestNew_CopiesInput(t *testing.T) {
	src := mustTable(t, []string{"2020-01-01"}, table.NumericColumn("value", []float64{1}))
	p := New(src, nil)
	p.DropColumns("value")

	if !src.HasColumn("value") {
		t.Fatalf("pipeline mutated its input table")
	}
}

func TestNew_NilTableStartsEmpty(t *testing.T) {
	out := New(nil, nil).FillMissing().GrowthRate("", "").Extract()
	if !out.IsEmpty() {
		t.Fatalf("rows = %d, want 0", out.Len())
	}
}

func TestFillMissing_ForwardFills(t *testing.T) {
	nan := math.NaN()
	src := mustTable(t,
		[]string{"2020-01-01", "2020-02-01", "2020-03-01", "2020-04-01"},
		table.NumericColumn("value", []float64{nan, 1, nan, 3}),
		table.TextColumn("note", []string{"a", "", "", "b"}),
	)
	out := New(src, nil).FillMissing().Extract()

	value := out.Column("value")
	if !math.IsNaN(value.Floats[0]) {
		t.Fatalf("leading gap filled with %v, want NaN", value.Floats[0])
	}
	if value.Floats[2] != 1 {
		t.Fatalf("value[2] = %v, want 1", value.Floats[2])
	}
	note := out.Column("note")
	if got := strings.Join(note.Texts, ","); got != "a,a,a,b" {
		t.Fatalf("note = %q, want a,a,a,b", got)
	}
}

func TestFillMissing_Idempotent(t *testing.T) {
	nan := math.NaN()
	src := mustTable(t,
		[]string{"2020-01-01", "2020-02-01", "2020-03-01"},
		table.NumericColumn("value", []float64{nan, 2, nan}),
	)
	once := New(src, nil).FillMissing().Extract()
	twice := New(src, nil).FillMissing().FillMissing().Extract()
	if !once.Equal(twice) {
		t.Fatalf("FillMissing applied twice differs from once")
	}
}

func TestFillMissing_NothingMissingLogsSkip(t *testing.T) {
	logger, buf := captureLogger()
	src := mustTable(t, []string{"2020-01-01"}, table.NumericColumn("value", []float64{1}))
	out := New(src, logger).FillMissing().Extract()

	if !out.Equal(src) {
		t.Fatalf("table changed without missing values")
	}
	if !strings.Contains(buf.String(), "no missing values") {
		t.Fatalf("expected skip log, got %q", buf.String())
	}
}

func TestDropColumns(t *testing.T) {
	src := mustTable(t, []string{"2020-01-01"},
		table.NumericColumn("value", []float64{1}),
		table.TextColumn("realtime_start", []string{"2024-01-01"}),
		table.TextColumn("realtime_end", []string{"2024-01-01"}),
	)

	t.Run("defaults", func(t *testing.T) {
		out := New(src, nil).DropColumns().Extract()
		if got := strings.Join(out.ColumnNames(), ","); got != "value" {
			t.Fatalf("columns = %q, want value", got)
		}
	})

	t.Run("named", func(t *testing.T) {
		out := New(src, nil).DropColumns("realtime_end").Extract()
		if got := strings.Join(out.ColumnNames(), ","); got != "value,realtime_start" {
			t.Fatalf("columns = %q, want value,realtime_start", got)
		}
	})

	t.Run("absent is no-op", func(t *testing.T) {
		logger, buf := captureLogger()
		p := New(src, logger).DropColumns("missing", "other")
		out := p.Extract()
		if !out.Equal(src) {
			t.Fatalf("dropping absent columns changed the table")
		}
		if p.Err() != nil {
			t.Fatalf("Err = %v, want nil", p.Err())
		}
		if !strings.Contains(buf.String(), "columns=missing,other") {
			t.Fatalf("expected info log naming absent columns, got %q", buf.String())
		}
	})
}

func TestCoerceNumeric(t *testing.T) {
	src := mustTable(t,
		[]string{"2020-01-01", "2020-02-01", "2020-03-01", "2020-04-01"},
		table.TextColumn("value", []string{"1.5", " 2 ", ".", ""}),
	)
	p := New(src, nil).CoerceNumeric("")
	out := p.Extract()

	col := out.Column("value")
	if col.Kind != table.Numeric {
		t.Fatalf("kind = %v, want numeric", col.Kind)
	}
	if col.Floats[0] != 1.5 || col.Floats[1] != 2 {
		t.Fatalf("values = %v, want [1.5 2 NaN NaN]", col.Floats)
	}
	if !math.IsNaN(col.Floats[2]) || !math.IsNaN(col.Floats[3]) {
		t.Fatalf("unparsable cells = %v, want NaN", col.Floats[2:])
	}
	if p.Err() != nil {
		t.Fatalf("Err = %v, want nil", p.Err())
	}
}

func TestCoerceNumeric_MissingColumnWarns(t *testing.T) {
	logger, buf := captureLogger()
	src := mustTable(t, []string{"2020-01-01"}, table.TextColumn("other", []string{"x"}))
	p := New(src, logger).CoerceNumeric("value")

	if !p.Extract().Equal(src) {
		t.Fatalf("table changed for missing column")
	}
	if !errors.Is(p.Err(), ErrDataShape) {
		t.Fatalf("Err = %v, want ErrDataShape", p.Err())
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestGrowthRate_Formula(t *testing.T) {
	values := []float64{100, 110, 99, 99}
	src := mustTable(t,
		[]string{"2020-01-01", "2020-04-01", "2020-07-01", "2020-10-01"},
		table.NumericColumn("value", values),
	)
	out := New(src, nil).GrowthRate("value", "").Extract()

	if out.Len() != len(values)-1 {
		t.Fatalf("rows = %d, want %d", out.Len(), len(values)-1)
	}
	if !out.Date(0).Equal(day("2020-04-01")) {
		t.Fatalf("first date = %v, want 2020-04-01", out.Date(0))
	}
	growth := out.Column("value_growth_rate")
	if growth == nil {
		t.Fatalf("missing value_growth_rate column, have %v", out.ColumnNames())
	}
	for i := 1; i < len(values); i++ {
		want := (values[i] - values[i-1]) / values[i-1] * 100
		if got := growth.Floats[i-1]; math.Abs(got-want) > 1e-9 {
			t.Fatalf("growth[%d] = %v, want %v", i-1, got, want)
		}
	}
}

func TestGrowthRate_MissingNeighboursAreNaN(t *testing.T) {
	nan := math.NaN()
	src := mustTable(t,
		[]string{"2020-01-01", "2020-02-01", "2020-03-01", "2020-04-01"},
		table.NumericColumn("value", []float64{1, nan, 2, 0}),
	)
	out := New(src, nil).GrowthRate("value", "g").Extract()
	g := out.Column("g").Floats
	if !math.IsNaN(g[0]) || !math.IsNaN(g[1]) {
		t.Fatalf("growth next to gap = %v, want NaN", g[:2])
	}
	if g[2] != -100 {
		t.Fatalf("growth[2] = %v, want -100", g[2])
	}
}

func TestGrowthRate_ZeroPredecessorIsNaN(t *testing.T) {
	src := mustTable(t,
		[]string{"2020-01-01", "2020-02-01", "2020-03-01"},
		table.NumericColumn("value", []float64{0, 5, 10}),
	)
	g := New(src, nil).GrowthRate("value", "g").Extract().Column("g").Floats
	if !math.IsNaN(g[0]) || math.IsInf(g[0], 0) {
		t.Fatalf("growth after zero = %v, want NaN", g[0])
	}
	if g[1] != 100 {
		t.Fatalf("growth[1] = %v, want 100", g[1])
	}
}

func TestGrowthRate_ZeroRows(t *testing.T) {
	out := New(table.Empty(), nil).GrowthRate("value", "").Extract()
	if out.Len() != 0 {
		t.Fatalf("rows = %d, want 0", out.Len())
	}
	if !out.HasColumn("value_growth_rate") {
		t.Fatalf("growth column missing on empty table")
	}
}

func TestGrowthRate_MissingColumnLogsError(t *testing.T) {
	logger, buf := captureLogger()
	src := mustTable(t, []string{"2020-01-01", "2020-02-01"}, table.NumericColumn("value", []float64{1, 2}))
	p := New(src, logger).GrowthRate("price", "")

	if !p.Extract().Equal(src) {
		t.Fatalf("table changed for missing column")
	}
	if !errors.Is(p.Err(), ErrDataShape) {
		t.Fatalf("Err = %v, want ErrDataShape", p.Err())
	}
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "column=price") {
		t.Fatalf("expected error log naming column, got %q", buf.String())
	}
}

func TestGrowthRate_TextColumnRejected(t *testing.T) {
	src := mustTable(t, []string{"2020-01-01", "2020-02-01"}, table.TextColumn("value", []string{"1", "2"}))
	p := New(src, nil).GrowthRate("value", "")
	if !errors.Is(p.Err(), ErrDataShape) {
		t.Fatalf("Err = %v, want ErrDataShape", p.Err())
	}
	if p.Extract().Len() != 2 {
		t.Fatalf("rows changed for rejected column")
	}
}

func TestExtract_Repeatable(t *testing.T) {
	src := mustTable(t, []string{"2020-01-01"}, table.NumericColumn("value", []float64{1}))
	p := New(src, nil)
	first := p.Extract()
	first.Column("value").Floats[0] = 42
	second := p.Extract()
	if second.Column("value").Floats[0] != 1 {
		t.Fatalf("Extract shares storage with the pipeline")
	}
}

func TestFullChain_GDPScenario(t *testing.T) {
	src := mustTable(t,
		[]string{"2020-01-01", "2020-04-01"},
		table.TextColumn("realtime_start", []string{"2024-01-01", "2024-01-01"}),
		table.TextColumn("realtime_end", []string{"2024-01-01", "2024-01-01"}),
		table.TextColumn("value", []string{"100.0", "101.0"}),
	)
	p := New(src, nil).
		FillMissing().
		DropColumns().
		CoerceNumeric("value").
		GrowthRate("value", "")
	out := p.Extract()

	if p.Err() != nil {
		t.Fatalf("Err = %v, want nil", p.Err())
	}
	if out.Len() != 1 {
		t.Fatalf("rows = %d, want 1", out.Len())
	}
	if !out.Date(0).Equal(day("2020-04-01")) {
		t.Fatalf("date = %v, want 2020-04-01", out.Date(0))
	}
	if got := out.Column("value_growth_rate").Floats[0]; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("growth = %v, want 1.0", got)
	}
	if got := strings.Join(out.ColumnNames(), ","); got != "value,value_growth_rate" {
		t.Fatalf("columns = %q, want value,value_growth_rate", got)
	}
}
