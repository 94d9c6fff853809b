package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fredview/internal/fred"
	"github.com/five82/fredview/internal/table"
)

// renderHeader renders the status line: series, range, last update and
// connection state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	q := m.query()
	parts := []string{
		bg.Render("fredview", styles.Logo),
		bg.Render(q.SeriesID, styles.AccentText.Bold(true)),
		bg.Render(formatRange(q.Range), styles.Text),
		m.renderStatus(styles, bg),
	}

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts,
			bg.Render("updated", styles.FaintText)+bg.Space()+
				bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
	}

	if m.width >= LayoutLogHintWidth && m.logFile != "" {
		parts = append(parts,
			bg.Render("logs", styles.FaintText)+bg.Space()+
				bg.Render(truncateMiddle(m.logFile, 50), styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderStatus renders the connection badge.
func (m Model) renderStatus(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case m.refreshing:
		return bg.Render("REFRESHING", styles.WarningText.Bold(true))
	case snap.LastError != nil:
		status := bg.Render(classifyConnectionError(snap.LastError), styles.DangerText)
		if snap.IsOffline() {
			status += bg.Space() + bg.Render(fmt.Sprintf("(%d failures)", snap.ConsecutiveFailures), styles.WarningText)
		}
		return status
	case !snap.HasData:
		return bg.Render("CONNECTING", styles.MutedText)
	case snap.NoData():
		return bg.Render("NO DATA", styles.WarningText)
	default:
		return bg.Render(fmt.Sprintf("OK %d rows", snap.Table.Len()), styles.SuccessText)
	}
}

// classifyConnectionError maps a fetch failure to a short status label.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case errors.Is(err, fred.ErrTransport):
		switch {
		case strings.Contains(msg, "connection refused"):
			return "OFFLINE"
		case strings.Contains(msg, "no such host"):
			return "HOST NOT FOUND"
		default:
			return "NETWORK ERROR"
		}
	case errors.Is(err, fred.ErrHTTP):
		var reqErr *fred.RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
			return fmt.Sprintf("HTTP %d", reqErr.StatusCode)
		}
		return "HTTP ERROR"
	case errors.Is(err, fred.ErrDecode):
		return "BAD RESPONSE"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"r", "Refresh"},
		{"/", "Series"},
		{"[ ]", "Start"},
		{"{ }", "End"},
		{"x", "Export"},
		{"Tab", "Focus"},
		{"?", "More"},
	}
	if m.width < LayoutCompactWidth {
		commands = []cmd{{"r", "Refresh"}, {"/", "Series"}, {"?", "More"}}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.statusMsg != "" {
		style := ternaryStyle(m.statusErr, styles.DangerText, styles.InfoText)
		segments = append(segments, bg.Render(truncate(m.statusMsg, 60), style))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// formatRange renders a date range with open ends spelled out.
func formatRange(r fred.DateRange) string {
	start, end := "earliest", "latest"
	if !r.Start.IsZero() {
		start = r.Start.Format(table.DateLayout)
	}
	if !r.End.IsZero() {
		end = r.End.Format(table.DateLayout)
	}
	return start + " to " + end
}

func ternaryStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}
