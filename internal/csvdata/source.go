package csvdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/five82/fredview/internal/table"
)

// Source serves a saved date,value CSV in place of the FRED API so the
// dashboard can run offline. The file is re-read on every fetch.
type Source struct {
	Path string
}

// FetchSeries loads the file and keeps the rows inside the
// observation_start / observation_end params. seriesID only labels errors.
// Like the FRED client it always returns a non-nil table.
func (s Source) FetchSeries(ctx context.Context, seriesID string, params url.Values) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return table.Empty(), err
	}
	start, err := paramDate(params, "observation_start")
	if err != nil {
		return table.Empty(), err
	}
	end, err := paramDate(params, "observation_end")
	if err != nil {
		return table.Empty(), err
	}

	tbl, err := Load(s.Path)
	if err != nil {
		return table.Empty(), fmt.Errorf("%s from %s: %w", seriesID, s.Path, err)
	}
	return tbl.Between(start, end), nil
}

func paramDate(params url.Values, key string) (time.Time, error) {
	raw := params.Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := table.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
