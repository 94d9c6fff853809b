package fred

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/five82/fredview/internal/table"
)

// Realtime column names carried over from the raw records.
const (
	ColumnRealtimeStart = "realtime_start"
	ColumnRealtimeEnd   = "realtime_end"
)

// DecodeObservations converts records into a table in input order. Rows whose
// value is not a finite number, whose date does not parse, or whose date
// repeats an earlier row are dropped; the drop count is returned.
func DecodeObservations(records []Observation) (*table.Table, int) {
	dates := make([]time.Time, 0, len(records))
	values := make([]float64, 0, len(records))
	starts := make([]string, 0, len(records))
	ends := make([]string, 0, len(records))
	seen := make(map[time.Time]struct{}, len(records))
	hasRealtime := false

	for _, rec := range records {
		date, err := table.ParseDate(strings.TrimSpace(rec.Date))
		if err != nil {
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		value, ok := parseValue(rec.Value)
		if !ok {
			continue
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
		values = append(values, value)
		starts = append(starts, rec.RealtimeStart)
		ends = append(ends, rec.RealtimeEnd)
		if rec.RealtimeStart != "" || rec.RealtimeEnd != "" {
			hasRealtime = true
		}
	}

	columns := []table.Column{table.NumericColumn(table.ValueColumn, values)}
	if hasRealtime {
		columns = append(columns,
			table.TextColumn(ColumnRealtimeStart, starts),
			table.TextColumn(ColumnRealtimeEnd, ends),
		)
	}
	// Dates are unique and every column matches, so New cannot fail here.
	tbl, err := table.New(dates, columns...)
	if err != nil {
		return table.Empty(), len(records)
	}
	return tbl, len(records) - tbl.Len()
}

func parseValue(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
