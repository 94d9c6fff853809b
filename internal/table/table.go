// Package table holds the date-indexed observation table shared by the FRED
// client, the transform pipeline, CSV helpers and the dashboard.
package table

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// DateLayout is the wire and CSV format for observation dates.
const DateLayout = "2006-01-02"

// ValueColumn is the numeric column every decoded table carries.
const ValueColumn = "value"

// Kind distinguishes numeric from text columns.
type Kind int

const (
	Numeric Kind = iota
	Text
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a named column. Numeric columns use Floats with NaN as missing;
// text columns use Texts with "" as missing.
type Column struct {
	Name   string
	Kind   Kind
	Floats []float64
	Texts  []string
}

// NumericColumn builds a numeric column.
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Floats: values}
}

// TextColumn builds a text column.
func TextColumn(name string, values []string) Column {
	return Column{Name: name, Kind: Text, Texts: values}
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == Text {
		return len(c.Texts)
	}
	return len(c.Floats)
}

// Missing reports whether row i holds no value.
func (c *Column) Missing(i int) bool {
	if c.Kind == Text {
		return c.Texts[i] == ""
	}
	return math.IsNaN(c.Floats[i])
}

// Format renders row i for display; missing cells render as "".
func (c *Column) Format(i int) string {
	if c.Missing(i) {
		return ""
	}
	if c.Kind == Text {
		return c.Texts[i]
	}
	return fmt.Sprintf("%.2f", c.Floats[i])
}

func (c *Column) clone() *Column {
	dup := &Column{Name: c.Name, Kind: c.Kind}
	if c.Floats != nil {
		dup.Floats = slices.Clone(c.Floats)
	}
	if c.Texts != nil {
		dup.Texts = slices.Clone(c.Texts)
	}
	return dup
}

func (c *Column) slice(from int) {
	if c.Kind == Text {
		c.Texts = slices.Clone(c.Texts[from:])
		return
	}
	c.Floats = slices.Clone(c.Floats[from:])
}

// Table is a set of equally sized columns indexed by unique dates. Row order
// is insertion order.
type Table struct {
	dates   []time.Time
	columns []*Column
}

// Empty returns a table with no rows and an empty numeric value column.
func Empty() *Table {
	return &Table{columns: []*Column{{Name: ValueColumn, Kind: Numeric, Floats: []float64{}}}}
}

// New builds a table from dates and columns. Dates must be unique and every
// column must match the date count.
func New(dates []time.Time, columns ...Column) (*Table, error) {
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		if _, dup := seen[d]; dup {
			return nil, fmt.Errorf("duplicate date %s", d.Format(DateLayout))
		}
		seen[d] = struct{}{}
	}
	t := &Table{dates: slices.Clone(dates)}
	if t.dates == nil {
		t.dates = []time.Time{}
	}
	for _, col := range columns {
		if err := t.SetColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.dates)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Dates returns a copy of the row index.
func (t *Table) Dates() []time.Time {
	if t == nil {
		return nil
	}
	return slices.Clone(t.dates)
}

// Date returns the date of row i.
func (t *Table) Date(i int) time.Time {
	return t.dates[i]
}

// ColumnNames lists columns in insertion order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		names = append(names, c.Name)
	}
	return names
}

// Column returns the named column for in-place edits, or nil.
func (t *Table) Column(name string) *Column {
	if t == nil {
		return nil
	}
	for _, c := range t.columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// HasColumn reports whether name exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// Columns returns the live columns in order.
func (t *Table) Columns() []*Column {
	if t == nil {
		return nil
	}
	return slices.Clone(t.columns)
}

// SetColumn replaces a column of the same name or appends a new one.
func (t *Table) SetColumn(col Column) error {
	if col.Name == "" {
		return fmt.Errorf("column name is empty")
	}
	if col.Kind == Numeric && col.Floats == nil {
		col.Floats = []float64{}
	}
	if col.Kind == Text && col.Texts == nil {
		col.Texts = []string{}
	}
	if col.Len() != len(t.dates) {
		return fmt.Errorf("column %q has %d rows, table has %d", col.Name, col.Len(), len(t.dates))
	}
	stored := col
	for i, c := range t.columns {
		if c.Name == col.Name {
			t.columns[i] = &stored
			return nil
		}
	}
	t.columns = append(t.columns, &stored)
	return nil
}

// RemoveColumn deletes name and reports whether it existed.
func (t *Table) RemoveColumn(name string) bool {
	for i, c := range t.columns {
		if c.Name == name {
			t.columns = slices.Delete(t.columns, i, i+1)
			return true
		}
	}
	return false
}

// DropLeading removes the first n rows from every column.
func (t *Table) DropLeading(n int) {
	if n <= 0 {
		return
	}
	if n > len(t.dates) {
		n = len(t.dates)
	}
	t.dates = slices.Clone(t.dates[n:])
	for _, c := range t.columns {
		c.slice(n)
	}
}

// Between returns a copy holding only the rows dated within [start, end].
// Zero bounds are open.
func (t *Table) Between(start, end time.Time) *Table {
	if t == nil {
		return Empty()
	}
	keep := make([]int, 0, len(t.dates))
	for i, d := range t.dates {
		if !start.IsZero() && d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		keep = append(keep, i)
	}

	out := &Table{dates: make([]time.Time, 0, len(keep)), columns: make([]*Column, 0, len(t.columns))}
	for _, i := range keep {
		out.dates = append(out.dates, t.dates[i])
	}
	for _, c := range t.columns {
		col := &Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == Text {
			col.Texts = make([]string, 0, len(keep))
			for _, i := range keep {
				col.Texts = append(col.Texts, c.Texts[i])
			}
		} else {
			col.Floats = make([]float64, 0, len(keep))
			for _, i := range keep {
				col.Floats = append(col.Floats, c.Floats[i])
			}
		}
		out.columns = append(out.columns, col)
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return Empty()
	}
	dup := &Table{dates: slices.Clone(t.dates), columns: make([]*Column, 0, len(t.columns))}
	if dup.dates == nil {
		dup.dates = []time.Time{}
	}
	for _, c := range t.columns {
		dup.columns = append(dup.columns, c.clone())
	}
	return dup
}

// Equal compares two tables cell by cell, treating NaN as equal to NaN.
func (t *Table) Equal(other *Table) bool {
	if t.Len() != other.Len() || len(t.columns) != len(other.columns) {
		return false
	}
	for i := range t.dates {
		if !t.dates[i].Equal(other.dates[i]) {
			return false
		}
	}
	for i, c := range t.columns {
		o := other.columns[i]
		if c.Name != o.Name || c.Kind != o.Kind {
			return false
		}
		if c.Kind == Text {
			if !slices.Equal(c.Texts, o.Texts) {
				return false
			}
			continue
		}
		for j := range c.Floats {
			a, b := c.Floats[j], o.Floats[j]
			if math.IsNaN(a) && math.IsNaN(b) {
				continue
			}
			if a != b {
				return false
			}
		}
	}
	return true
}

// ParseDate parses a YYYY-MM-DD observation date in UTC.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
