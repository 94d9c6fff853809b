// Package state provides thread-safe state shared by the refresh loop and the
// dashboard.
//
// # Overview
//
// The Store holds the latest transformed observation table together with the
// query that produced it (series id and date range), the last refresh error
// and a consecutive failure count. The poller and manual refreshes write; the
// UI reads snapshots on its own tick.
//
//	Producer (Refresher):          Consumer (UI):
//	┌────────────────┐            ┌─────────────────┐
//	│ FetchSeries()  │            │                 │
//	│ pipeline       │            │                 │
//	│      ↓         │            │                 │
//	│ store.Update() │───────────→│ store.Snapshot()│
//	└────────────────┘  (mutex)   └─────────────────┘
//
// # Update Semantics
//
//	store.Update(q, tbl, nil)   // replace table, clear error, reset failures
//	store.Update(q, nil, err)   // keep table for the same query, record err
//
// A failure for a different query clears the table, so the dashboard never
// labels old data with a new series id.
//
// Snapshot.NoData distinguishes "the request worked but the range is empty"
// from "the request failed", which the UI renders differently.
//
// Snapshots deep-copy the table; callers may mutate what they get.
package state
