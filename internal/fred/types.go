package fred

import (
	"net/url"
	"time"

	"github.com/five82/fredview/internal/table"
)

// ObservationsResponse mirrors the payload returned by series/observations.
type ObservationsResponse struct {
	RealtimeStart    string        `json:"realtime_start"`
	RealtimeEnd      string        `json:"realtime_end"`
	ObservationStart string        `json:"observation_start"`
	ObservationEnd   string        `json:"observation_end"`
	Units            string        `json:"units"`
	OutputType       int           `json:"output_type"`
	FileType         string        `json:"file_type"`
	OrderBy          string        `json:"order_by"`
	SortOrder        string        `json:"sort_order"`
	Count            int           `json:"count"`
	Offset           int           `json:"offset"`
	Limit            int           `json:"limit"`
	Observations     []Observation `json:"observations"`
}

// Observation is one raw record. Value is "." when FRED has no data for the
// date.
type Observation struct {
	RealtimeStart string `json:"realtime_start"`
	RealtimeEnd   string `json:"realtime_end"`
	Date          string `json:"date"`
	Value         string `json:"value"`
}

// DateRange bounds a series request. Zero times are left out.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Params renders the range as observation_start / observation_end.
func (r DateRange) Params() url.Values {
	values := url.Values{}
	if !r.Start.IsZero() {
		values.Set("observation_start", r.Start.Format(table.DateLayout))
	}
	if !r.End.IsZero() {
		values.Set("observation_end", r.End.Format(table.DateLayout))
	}
	return values
}
