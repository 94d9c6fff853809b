// Package pipeline chains table transformations for charting: gap filling,
// column pruning, numeric coercion and period-over-period growth.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/five82/fredview/internal/table"
)

// ErrDataShape marks an operation skipped because its column is missing.
var ErrDataShape = errors.New("data shape error")

// DefaultDroppedColumns are the bookkeeping columns FRED attaches to every
// observation.
var DefaultDroppedColumns = []string{"realtime_start", "realtime_end"}

// Pipeline owns a private copy of a table and mutates it through chained
// calls. Every operation returns the receiver.
type Pipeline struct {
	tbl    *table.Table
	logger *slog.Logger
	errs   []error
}

// New copies tbl into a fresh pipeline. A nil table starts empty.
func New(tbl *table.Table, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		tbl:    tbl.Clone(),
		logger: logger.With("component", "pipeline"),
	}
}

// FillMissing forward-fills every column: a missing cell takes the nearest
// earlier non-missing value of its column. Leading gaps stay missing.
func (p *Pipeline) FillMissing() *Pipeline {
	filled := 0
	for _, col := range p.tbl.Columns() {
		filled += forwardFill(col)
	}
	if filled == 0 {
		p.logger.Info("no missing values to fill, skipping forward fill")
		return p
	}
	p.logger.Info("filled missing values", "cells", filled)
	return p
}

func forwardFill(col *table.Column) int {
	filled := 0
	switch col.Kind {
	case table.Text:
		last := ""
		for i, v := range col.Texts {
			if v != "" {
				last = v
				continue
			}
			if last != "" {
				col.Texts[i] = last
				filled++
			}
		}
	default:
		last := math.NaN()
		for i, v := range col.Floats {
			if !math.IsNaN(v) {
				last = v
				continue
			}
			if !math.IsNaN(last) {
				col.Floats[i] = last
				filled++
			}
		}
	}
	return filled
}

// DropColumns removes the named columns. With no names it drops
// DefaultDroppedColumns. Absent names are not an error.
func (p *Pipeline) DropColumns(names ...string) *Pipeline {
	if len(names) == 0 {
		names = DefaultDroppedColumns
	}
	var removed, absent []string
	for _, name := range names {
		if p.tbl.RemoveColumn(name) {
			removed = append(removed, name)
		} else {
			absent = append(absent, name)
		}
	}
	if len(absent) > 0 {
		p.logger.Info("columns not found, skipping removal", "columns", strings.Join(absent, ","))
	}
	if len(removed) > 0 {
		p.logger.Info("removed columns", "columns", strings.Join(removed, ","))
	}
	return p
}

// CoerceNumeric parses a text column as float64; unparsable cells become
// missing. An empty name means the value column. Numeric columns are left
// alone.
func (p *Pipeline) CoerceNumeric(column string) *Pipeline {
	if column == "" {
		column = table.ValueColumn
	}
	col := p.tbl.Column(column)
	if col == nil {
		p.shapeError(slog.LevelWarn, "column not found for numeric conversion", column)
		return p
	}
	if col.Kind == table.Numeric {
		p.logger.Debug("column already numeric", "column", column)
		return p
	}

	values := make([]float64, len(col.Texts))
	invalid := 0
	for i, raw := range col.Texts {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsInf(v, 0) {
			v = math.NaN()
		}
		if math.IsNaN(v) && raw != "" {
			invalid++
		}
		values[i] = v
	}
	// Same length and name as the column it replaces.
	_ = p.tbl.SetColumn(table.NumericColumn(column, values))
	p.logger.Info("column conversion successful", "column", column, "invalid", invalid)
	return p
}

// GrowthRate adds output = (v[i]-v[i-1]) / v[i-1] * 100 and drops the first
// row, which has no predecessor. An empty output name becomes
// "{column}_growth_rate". Missing or zero predecessors yield NaN.
func (p *Pipeline) GrowthRate(column, output string) *Pipeline {
	if column == "" {
		column = table.ValueColumn
	}
	col := p.tbl.Column(column)
	if col == nil {
		p.shapeError(slog.LevelError, "column not found, could not calculate growth rate", column)
		return p
	}
	if col.Kind != table.Numeric {
		p.shapeError(slog.LevelError, "column is not numeric, could not calculate growth rate", column)
		return p
	}
	if output == "" {
		output = column + "_growth_rate"
	}

	rates := make([]float64, len(col.Floats))
	if len(rates) > 0 {
		rates[0] = math.NaN()
	}
	for i := 1; i < len(col.Floats); i++ {
		rates[i] = percentChange(col.Floats[i-1], col.Floats[i])
	}
	_ = p.tbl.SetColumn(table.NumericColumn(output, rates))
	p.tbl.DropLeading(1)
	p.logger.Info("calculated growth rate", "column", column, "output", output, "rows", p.tbl.Len())
	return p
}

func percentChange(prev, cur float64) float64 {
	if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
		return math.NaN()
	}
	return (cur - prev) / prev * 100
}

// Extract returns a copy of the current table. It can be called repeatedly.
func (p *Pipeline) Extract() *table.Table {
	p.logger.Debug("returning transformed table", "rows", p.tbl.Len())
	return p.tbl.Clone()
}

// Err reports the data shape problems met so far, or nil.
func (p *Pipeline) Err() error {
	return errors.Join(p.errs...)
}

func (p *Pipeline) shapeError(level slog.Level, msg, column string) {
	err := fmt.Errorf("%w: column %q not usable", ErrDataShape, column)
	p.errs = append(p.errs, err)
	p.logger.Log(context.Background(), level, msg, "column", column)
}
