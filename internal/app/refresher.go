package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/five82/fredview/internal/fred"
	"github.com/five82/fredview/internal/logging"
	"github.com/five82/fredview/internal/pipeline"
	"github.com/five82/fredview/internal/state"
	"github.com/five82/fredview/internal/table"
)

// Refresher fetches the current query, runs the transform chain and publishes
// the result to the store. Refreshes never overlap.
type Refresher struct {
	fetcher fred.SeriesFetcher
	store   *state.Store
	logger  *slog.Logger

	queryMu sync.RWMutex
	query   state.Query

	refreshMu sync.Mutex
}

// NewRefresher builds a Refresher starting at q.
func NewRefresher(fetcher fred.SeriesFetcher, store *state.Store, q state.Query, logger *slog.Logger) *Refresher {
	return &Refresher{
		fetcher: fetcher,
		store:   store,
		logger:  logging.OrDiscard(logger).With("component", "refresh"),
		query:   q,
	}
}

// Query returns the query the next refresh will use.
func (r *Refresher) Query() state.Query {
	r.queryMu.RLock()
	defer r.queryMu.RUnlock()
	return r.query
}

// SetQuery changes the series or range for subsequent refreshes.
func (r *Refresher) SetQuery(q state.Query) {
	r.queryMu.Lock()
	r.query = q
	r.queryMu.Unlock()
}

// Refresh runs one fetch and transform cycle. The returned error is the
// classified fetch error, already recorded in the store.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	q := r.Query()
	raw, err := r.fetcher.FetchSeries(ctx, q.SeriesID, q.Range.Params())
	if err != nil {
		r.store.Update(q, nil, err)
		return err
	}

	out := Transform(raw, r.logger)
	if out.IsEmpty() {
		r.logger.Info("no data available for the selected date range", "series_id", q.SeriesID)
	}
	r.store.Update(q, out, nil)
	return nil
}

// Transform applies the dashboard chain: forward fill, drop FRED bookkeeping
// columns, coerce values and add the growth rate.
func Transform(raw *table.Table, logger *slog.Logger) *table.Table {
	p := pipeline.New(raw, logger).
		FillMissing().
		DropColumns().
		CoerceNumeric(table.ValueColumn).
		GrowthRate(table.ValueColumn, "")
	if err := p.Err(); err != nil {
		logging.OrDiscard(logger).Warn("transform incomplete", "error", err)
	}
	return p.Extract()
}
