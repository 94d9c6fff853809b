// Package logtail reads the tail of fredview's own log file for the
// dashboard's log pane.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory stays O(maxLines) regardless of file size. Lines come back oldest
// first. A missing file yields nil, nil; the dashboard simply shows an empty
// pane until the first line is written.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//
// # Levels
//
// ParseLevel recognises both handler formats the logging package writes:
// tint's abbreviated levels (DBG, INF, WRN, ERR) and the JSON "level" field.
// The UI colours lines by the result; anything it cannot classify is shown
// unstyled.
package logtail
