// Package chart turns a transformed observation table into chart series and
// renders them as terminal sparklines.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/five82/fredview/internal/table"
)

// Chart is a titled set of series sharing one date axis.
type Chart struct {
	Title  string
	XAxis  string
	Series []Series
}

// Series is one trace.
type Series struct {
	Name   string
	Column string
	Points []Point
	Color  string
}

// Point is one observation; NaN values are gaps.
type Point struct {
	Date  time.Time
	Value float64
}

var defaultColors = []string{"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6"}

// knownLabels names the value trace for series the dashboard is usually
// pointed at.
var knownLabels = map[string]string{
	"GDPC1":    "Real GDP (Billions)",
	"GDP":      "GDP (Billions)",
	"UNRATE":   "Unemployment Rate (%)",
	"CPIAUCSL": "CPI (Index 1982-1984=100)",
	"FEDFUNDS": "Federal Funds Rate (%)",
}

// ValueLabel returns the legend for the value trace of seriesID.
func ValueLabel(seriesID string) string {
	id := strings.ToUpper(strings.TrimSpace(seriesID))
	if label, ok := knownLabels[id]; ok {
		return label
	}
	if id == "" {
		return "Value"
	}
	return id
}

// GrowthLabel is the legend for every growth-rate trace.
const GrowthLabel = "Growth Rate (%)"

// Build creates a chart with a value trace and, when present, a growth-rate
// trace. It returns nil for an empty table.
func Build(seriesID string, tbl *table.Table) *Chart {
	if tbl.IsEmpty() {
		return nil
	}
	c := &Chart{
		Title: fmt.Sprintf("%s and Growth Rate", ValueLabel(seriesID)),
		XAxis: "Date",
	}
	if s, ok := buildSeries(tbl, table.ValueColumn, ValueLabel(seriesID)); ok {
		c.Series = append(c.Series, s)
	}
	if s, ok := buildSeries(tbl, table.ValueColumn+"_growth_rate", GrowthLabel); ok {
		c.Series = append(c.Series, s)
	}
	for i := range c.Series {
		c.Series[i].Color = defaultColors[i%len(defaultColors)]
	}
	return c
}

func buildSeries(tbl *table.Table, column, name string) (Series, bool) {
	col := tbl.Column(column)
	if col == nil || col.Kind != table.Numeric {
		return Series{}, false
	}
	points := make([]Point, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		points = append(points, Point{Date: tbl.Date(i), Value: col.Floats[i]})
	}
	return Series{Name: name, Column: column, Points: points}, true
}

// Values returns the series values in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Bounds returns the smallest and largest non-NaN value. ok is false when
// every value is NaN.
func Bounds(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}
