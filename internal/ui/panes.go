package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fredview/internal/chart"
	"github.com/five82/fredview/internal/logtail"
	"github.com/five82/fredview/internal/state"
	"github.com/five82/fredview/internal/table"
)

// focusPane identifies the pane that receives scroll keys.
type focusPane int

const (
	focusChart focusPane = iota
	focusTable
	focusLogs
	paneCount
)

const dateColumnWidth = 12

// paneSizes holds outer box dimensions, borders included.
type paneSizes struct {
	chartW, chartH int
	tableW, tableH int
	logW, logH     int
	stacked        bool
}

// layout splits the space under the header and command bar: chart on top,
// data table and logs side by side below it (stacked on narrow terminals).
func (m Model) layout() paneSizes {
	body := max(m.height-2, ChartHeight+6)
	lower := body - ChartHeight

	s := paneSizes{chartW: m.width, chartH: ChartHeight}
	if m.width < LayoutCompactWidth {
		s.stacked = true
		s.tableW, s.logW = m.width, m.width
		s.tableH = lower / 2
		s.logH = lower - s.tableH
		return s
	}
	s.tableW = m.width / 2
	s.logW = m.width - s.tableW
	s.tableH, s.logH = lower, lower
	return s
}

// resizeViewports applies the layout to the scrollable panes and re-renders
// their content.
func (m *Model) resizeViewports() {
	s := m.layout()
	m.tableViewport.Width = max(s.tableW-2, 1)
	m.tableViewport.Height = max(s.tableH-3, 1) // borders + column header
	m.logViewport.Width = max(s.logW-2, 1)
	m.logViewport.Height = max(s.logH-2, 1)
	m.updateTableViewport()
	m.updateLogViewport()
}

// paneBg returns the background for a pane.
func (m Model) paneBg(focused bool) string {
	if focused {
		return m.theme.FocusBg
	}
	return m.theme.SurfaceAlt
}

// renderBody renders the three panes.
func (m Model) renderBody() string {
	s := m.layout()
	chartBox := m.renderChartPane(s.chartW, s.chartH)
	tableBox := m.renderTablePane(s.tableW, s.tableH)
	logBox := m.renderLogPane(s.logW, s.logH)

	var lower string
	if s.stacked {
		lower = tableBox + "\n" + logBox
	} else {
		lower = lipgloss.JoinHorizontal(lipgloss.Top, tableBox, logBox)
	}
	return chartBox + "\n" + lower
}

// --- Chart pane ---

func (m Model) renderChartPane(width, height int) string {
	focused := m.focus == focusChart
	inner := width - 2
	styles := m.theme.Styles().WithBackground(m.paneBg(focused))

	c := chart.Build(m.query().SeriesID, m.snapshot.Table)
	if c == nil {
		return m.renderTitledBox("Chart", m.emptyMessage(styles), width, height, focused)
	}

	bgColor := lipgloss.Color(m.paneBg(focused))
	var lines []string
	for i, series := range c.Series {
		if i > 0 {
			lines = append(lines, "")
		}
		traceStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.TraceColor(i, series.Color))).
			Background(bgColor)
		lines = append(lines,
			traceStyle.Bold(true).Render(truncate(chart.Caption(series), inner)),
			traceStyle.Render(chart.Sparkline(series.Values(), inner)),
		)
	}
	dates := m.snapshot.Table.Dates()
	axis := fmt.Sprintf("%s %s to %s", c.XAxis,
		dates[0].Format(table.DateLayout), dates[len(dates)-1].Format(table.DateLayout))
	lines = append(lines, styles.FaintText.Render(truncate(axis, inner)))

	return m.renderTitledBox(c.Title, strings.Join(lines, "\n"), width, height, focused)
}

// emptyMessage explains why there is nothing to chart.
func (m Model) emptyMessage(styles Styles) string {
	snap := m.snapshot
	switch {
	case snap.LastError != nil:
		return styles.DangerText.Render("Fetch failed: "+classifyConnectionError(snap.LastError)) + "\n" +
			styles.MutedText.Render(truncate(snap.LastError.Error(), max(m.width-4, 10)))
	case snap.NoData():
		return styles.MutedText.Render(state.NoDataMessage)
	default:
		return styles.MutedText.Render("Waiting for data...")
	}
}

// --- Table pane ---

func (m Model) renderTablePane(width, height int) string {
	focused := m.focus == focusTable
	styles := m.theme.Styles()
	title := fmt.Sprintf("Data (%d rows)", m.snapshot.Table.Len())

	header := styles.TableHeader.Width(max(width-2, 1)).Render(tableHeader(m.snapshot.Table))
	return m.renderTitledBox(title, header+"\n"+m.tableViewport.View(), width, height, focused)
}

// updateTableViewport re-renders the table rows into the viewport.
func (m *Model) updateTableViewport() {
	tbl := m.snapshot.Table
	if tbl.IsEmpty() {
		m.tableViewport.SetContent("")
		return
	}
	m.tableViewport.SetContent(strings.Join(tableRows(tbl), "\n"))
}

// tableHeader lays out column names to line up with tableRows.
func tableHeader(tbl *table.Table) string {
	var b strings.Builder
	b.WriteString(padRight("date", dateColumnWidth))
	for _, name := range tbl.ColumnNames() {
		b.WriteString(padLeft(truncate(name, TableColumnWidth-1), TableColumnWidth))
	}
	return b.String()
}

// tableRows renders one line per row; missing cells show as a dash.
func tableRows(tbl *table.Table) []string {
	cols := tbl.Columns()
	rows := make([]string, tbl.Len())
	for i := range rows {
		var b strings.Builder
		b.WriteString(padRight(tbl.Date(i).Format(table.DateLayout), dateColumnWidth))
		for _, c := range cols {
			b.WriteString(padLeft(ternary(c.Missing(i), "-", c.Format(i)), TableColumnWidth))
		}
		rows[i] = b.String()
	}
	return rows
}

// --- Log pane ---

func (m Model) renderLogPane(width, height int) string {
	focused := m.focus == focusLogs
	title := "Logs"
	if m.logFile == "" {
		title = "Logs (stderr)"
	} else if !m.logViewport.AtBottom() {
		title = "Logs (paused)"
	}
	return m.renderTitledBox(title, m.logViewport.View(), width, height, focused)
}

// updateLogViewport colours the tail by level and keeps following the end
// unless the user scrolled up.
func (m *Model) updateLogViewport() {
	styles := m.theme.Styles()
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0

	width := m.logViewport.Width
	lines := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		lines[i] = styles.LevelStyle(logtail.ParseLevel(line)).Render(truncate(line, width))
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	if follow {
		m.logViewport.GotoBottom()
	}
}

// focusedViewport returns the scrollable pane that has focus, or nil when
// the chart is focused.
func (m *Model) focusedViewport() *viewport.Model {
	switch m.focus {
	case focusTable:
		return &m.tableViewport
	case focusLogs:
		return &m.logViewport
	default:
		return nil
	}
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// Focused boxes use BorderFocus and FocusBg.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr := ternary(focused, m.theme.BorderFocus, m.theme.Border)
	bgColorStr := m.paneBg(focused)
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 1)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().
		Width(innerWidth).
		MaxWidth(innerWidth).
		Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}
