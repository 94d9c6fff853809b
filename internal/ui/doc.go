// Package ui provides the fredview terminal dashboard.
//
// # Architecture Overview
//
// The dashboard is a Bubble Tea program (Model/Init/Update/View). It never
// talks to FRED directly: the background poller and the r key both go through
// a Refresher, which writes into state.Store. The model copies the store's
// snapshot on every tick and renders from that copy.
//
// # Package Structure
//
//   - app.go: Model, message handling, commands and Run
//   - header.go: status line, command bar, error classification
//   - panes.go: layout, chart/table/log panes and the titled box frame
//   - modal.go: Modal interface and the series id prompt
//   - help.go: keyboard shortcut overlay
//   - keys.go: key bindings (bubbles/key)
//   - theme.go: colour palettes and lipgloss styles
//   - style_helpers.go: BgStyle, gap-free backgrounds for styled segments
//
// # Panes
//
//   - Chart: value and growth-rate traces as sparklines with min/max/last
//     captions, from chart.Build
//   - Data: every row of the transformed table in a scrollable viewport
//   - Logs: tail of the log file, coloured by level, following the end until
//     the user scrolls up
//
// An empty result shows "No data available for the selected date range."; a
// failed fetch shows the classified reason (TIMEOUT, HTTP 400, ...).
//
// # Query Changes
//
// [ and ] move the start year, { and } the end year, / opens the series
// prompt. Each change updates the Refresher's query, is saved to prefs and
// triggers a refresh. A change made while a refresh is running is queued so
// the latest query is always fetched.
//
// # Key Bindings
//
//	r        Refresh now
//	/        Change series
//	[ ]      Start year earlier/later
//	{ }      End year earlier/later
//	x        Export the table as CSV
//	tab      Cycle focus (chart, data, logs)
//	j/k      Scroll focused pane
//	T        Cycle theme (persisted)
//	h/?      Toggle help
//	e        Quit (also ctrl+c)
//
// # Themes
//
// Nightfox (default), Kanagawa and Slate. The choice is stored in
// ~/.config/fredview/prefs.toml.
package ui
