// Package csvdata writes observation tables to CSV files and reads them back
// into the same date-indexed shape the FRED client produces.
package csvdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/five82/fredview/internal/table"
)

// DateColumn is the header of the index column.
const DateColumn = "date"

const timestampLayout = "20060102_150405"

// DefaultName builds "<SERIES>_data_<timestamp>.csv".
func DefaultName(seriesID string, now time.Time) string {
	series := strings.ToUpper(strings.TrimSpace(seriesID))
	if series == "" {
		series = "SERIES"
	}
	return fmt.Sprintf("%s_data_%s.csv", series, now.Format(timestampLayout))
}

// Export writes tbl to dir/name and returns the written path. An empty name
// uses DefaultName; a name without a .csv suffix gets one.
func Export(dir, name, seriesID string, tbl *table.Table) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName(seriesID, time.Now())
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		name += ".csv"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	if err := Write(file, tbl); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close csv: %w", err)
	}
	return path, nil
}

// Write encodes tbl with a date column followed by every table column.
// Missing cells are empty.
func Write(w io.Writer, tbl *table.Table) error {
	writer := csv.NewWriter(w)
	cols := tbl.Columns()

	header := make([]string, 0, len(cols)+1)
	header = append(header, DateColumn)
	for _, c := range cols {
		header = append(header, c.Name)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for i := 0; i < tbl.Len(); i++ {
		row[0] = tbl.Date(i).Format(table.DateLayout)
		for j, c := range cols {
			row[j+1] = formatCell(c, i)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatCell(c *table.Column, i int) string {
	if c.Missing(i) {
		return ""
	}
	if c.Kind == table.Text {
		return c.Texts[i]
	}
	return strconv.FormatFloat(c.Floats[i], 'f', -1, 64)
}

// Load reads a CSV written by Export.
func Load(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	return Read(file)
}

// Read decodes a CSV whose first column holds unique YYYY-MM-DD dates. A
// column becomes numeric when every non-empty cell parses as a float and
// text otherwise; the value column is always numeric.
func Read(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv header: empty file")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) == 0 || !strings.EqualFold(strings.TrimSpace(header[0]), DateColumn) {
		return nil, fmt.Errorf("first column must be %q", DateColumn)
	}
	names := make([]string, len(header)-1)
	for i, h := range header[1:] {
		names[i] = strings.TrimSpace(h)
	}

	var dates []time.Time
	cells := make([][]string, len(names))
	seen := make(map[time.Time]int)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		d, err := table.ParseDate(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, record[0])
		}
		if first, dup := seen[d]; dup {
			return nil, fmt.Errorf("line %d: duplicate date %s (first seen on line %d)", line, record[0], first)
		}
		seen[d] = line
		dates = append(dates, d)
		for j := range names {
			cells[j] = append(cells[j], strings.TrimSpace(record[j+1]))
		}
	}

	cols := make([]table.Column, len(names))
	for j, name := range names {
		cols[j] = buildColumn(name, cells[j], len(dates))
	}
	tbl, err := table.New(dates, cols...)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	return tbl, nil
}

func buildColumn(name string, raw []string, rows int) table.Column {
	if raw == nil {
		raw = make([]string, rows)
	}
	values := make([]float64, len(raw))
	numeric := true
	for i, s := range raw {
		if s == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(v, 0) {
			numeric = false
			values[i] = math.NaN()
			continue
		}
		values[i] = v
	}
	if numeric || name == table.ValueColumn {
		return table.NumericColumn(name, values)
	}
	return table.TextColumn(name, raw)
}
