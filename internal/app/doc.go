// Package app provides the orchestration layer for fredview.
//
// # Overview
//
// This package wires together configuration, logging, the FRED client, the
// transform pipeline, shared state and the UI. It is the composition root:
// everything is built here and handed down explicitly.
//
// # Components
//
//   - app.go: Run, headless mode (-once, -export) and query resolution
//   - refresher.go: Refresher, one fetch → transform → store cycle
//   - poller.go: background refresh loop with exponential backoff
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        TOML + .env + FRED_KEY
//	       ├─────> logging.New()        tint/JSON, file when the TUI runs
//	       ├─────> newFetcher()         FRED client, or csvdata.Source for -csv
//	       ├─────> state.Store{}        shared with the UI
//	       ├─────> Refresher.Refresh()  first fetch before the UI draws
//	       ├─────> StartPoller()        background updates
//	       └─────> ui.Run()             blocks until quit
//
// # Transform Chain
//
// Every refresh runs FillMissing → DropColumns → CoerceNumeric("value") →
// GrowthRate("value"), so the store holds a table with value and
// value_growth_rate columns and one row fewer than the fetch returned.
//
// # Query Resolution
//
// Series id and date range come from, in order of precedence: the -series
// flag, the last values saved in prefs by the dashboard, then config.
//
// # Offline Mode
//
// With -csv the refresher reads a saved date,value file through
// csvdata.Source. The observation range still applies and no API key is
// required. The transform chain runs as usual.
//
// # Backoff
//
// The poller waits poll_interval between refreshes. Each consecutive failure
// doubles the wait up to maxBackoff; a success resets it. The FRED client
// itself never retries.
package app
