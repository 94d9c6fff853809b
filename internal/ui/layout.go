package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the command bar drops
	// its hints and the panes stack vertically.
	LayoutCompactWidth = 100

	// LayoutLogHintWidth is the minimum width to show the log file path in
	// the header.
	LayoutLogHintWidth = 140
)

// Pane sizes.
const (
	// ChartHeight is the chart box height including borders.
	ChartHeight = 8

	// TableColumnWidth is the width of each numeric column in the data pane.
	TableColumnWidth = 20
)

// Log display limits.
const (
	// LogTailLines is how many lines of the log file the log pane keeps.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is how often the dashboard re-reads the store and the
	// log file.
	DefaultUIInterval = time.Second

	// StatusMessageTTL is how long a transient status message stays visible.
	StatusMessageTTL = 5 * time.Second
)
