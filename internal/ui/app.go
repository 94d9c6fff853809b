package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/fredview/internal/csvdata"
	"github.com/five82/fredview/internal/fred"
	"github.com/five82/fredview/internal/logging"
	"github.com/five82/fredview/internal/logtail"
	"github.com/five82/fredview/internal/prefs"
	"github.com/five82/fredview/internal/state"
	"github.com/five82/fredview/internal/table"
)

// Refresher is the part of the refresh loop the dashboard drives.
type Refresher interface {
	Refresh(ctx context.Context) error
	Query() state.Query
	SetQuery(q state.Query)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Refresher Refresher
	Store     *state.Store
	Logger    *slog.Logger
	LogFile   string // tailed by the log pane; empty disables it
	ExportDir string
	ThemeName string
	PrefsPath string
	PollTick  time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	refresher Refresher
	store     *state.Store
	logger    *slog.Logger
	logFile   string
	exportDir string
	prefsPath string
	pollTick  time.Duration
	now       func() time.Time

	// UI state
	keys   keyMap
	theme  Theme
	width  int
	height int
	ready  bool
	focus  focusPane

	// Data state
	snapshot       state.Snapshot
	refreshing     bool
	pendingRefresh bool

	// Transient message in the command bar
	statusMsg string
	statusErr bool
	statusAt  time.Time

	tableViewport viewport.Model
	logViewport   viewport.Model
	logLines      []string

	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:       ctx,
		refresher: opts.Refresher,
		store:     opts.Store,
		logger:    logging.OrDiscard(opts.Logger),
		logFile:   opts.LogFile,
		exportDir: opts.ExportDir,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		now:       time.Now,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		snapshot:  state.Snapshot{Table: table.Empty()},
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if cmd := readLogsCmd(m.logFile); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.tableViewport = viewport.New(0, 0)
			m.logViewport = viewport.New(0, 0)
			m.ready = true
		}
		m.resizeViewports()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		if m.snapshot.Table == nil {
			m.snapshot.Table = table.Empty()
		}
		m.updateTableViewport()
		return m, nil

	case logLinesMsg:
		m.logLines = msg
		m.updateLogViewport()
		return m, nil

	case logErrorMsg:
		m.logger.Debug("log tail failed", "file", m.logFile, "error", msg.err)
		return m, nil

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			m.setStatus("refresh failed: "+classifyConnectionError(msg.err), true)
		}
		cmds := []tea.Cmd{}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		if m.pendingRefresh {
			m.pendingRefresh = false
			var cmd tea.Cmd
			m, cmd = m.startRefresh()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case exportDoneMsg:
		if msg.err != nil {
			m.logger.Error("csv export failed", "series_id", msg.seriesID, "error", msg.err)
			m.setStatus("export failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.logger.Info("csv exported", "series_id", msg.seriesID, "path", msg.path)
		m.setStatus("exported "+msg.path, false)
		return m, nil
	}

	if m.modal != nil {
		// Cursor blink and other input messages.
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.focus = (m.focus + 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.startRefresh()

	case key.Matches(msg, m.keys.StartEarlier):
		return m.shiftRange(-1, 0)

	case key.Matches(msg, m.keys.StartLater):
		return m.shiftRange(1, 0)

	case key.Matches(msg, m.keys.EndEarlier):
		return m.shiftRange(0, -1)

	case key.Matches(msg, m.keys.EndLater):
		return m.shiftRange(0, 1)

	case key.Matches(msg, m.keys.Series):
		m.modal = newSeriesModal(m.query().SeriesID)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Export):
		return m.startExport()
	}

	vp := m.focusedViewport()
	if vp == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		vp.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		vp.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		vp.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		vp.HalfPageUp()
	}
	return m, nil
}

// updateModal forwards a key to the open modal and applies its result when
// it closes.
func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	next, cmd, done := m.modal.Update(msg, m.keys)
	if !done {
		m.modal = next
		return m, cmd
	}
	m.modal = nil

	sm, ok := next.(seriesModal)
	if !ok {
		return m, nil
	}
	id, ok := sm.SeriesID()
	if !ok {
		return m, nil
	}
	q := m.query()
	if id == q.SeriesID {
		return m, nil
	}
	q.SeriesID = id
	return m.applyQuery(q)
}

// query returns what the dashboard is currently asking for.
func (m Model) query() state.Query {
	if m.refresher != nil {
		return m.refresher.Query()
	}
	return m.snapshot.Query
}

// shiftRange moves the start and/or end year and refetches.
func (m Model) shiftRange(startYears, endYears int) (tea.Model, tea.Cmd) {
	q := m.query()
	var first time.Time
	if dates := m.snapshot.Table.Dates(); len(dates) > 0 {
		first = dates[0]
	}
	r, err := shiftYears(q.Range, startYears, endYears, first, m.now())
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	q.Range = r
	return m.applyQuery(q)
}

// applyQuery switches the refresher to q, remembers it in prefs and fetches.
func (m Model) applyQuery(q state.Query) (tea.Model, tea.Cmd) {
	if m.refresher == nil {
		return m, nil
	}
	m.refresher.SetQuery(q)
	m.savePrefs(func(p *prefs.Prefs) {
		p.SeriesID = q.SeriesID
		p.ObservationStart = formatDate(q.Range.Start)
		p.ObservationEnd = formatDate(q.Range.End)
	})
	m.logger.Info("query changed", "series_id", q.SeriesID, "range", formatRange(q.Range))
	return m.startRefresh()
}

// startRefresh runs one refresh in the background. A request made while one
// is running is queued so the latest query always gets fetched.
func (m Model) startRefresh() (Model, tea.Cmd) {
	if m.refresher == nil {
		return m, nil
	}
	if m.refreshing {
		m.pendingRefresh = true
		return m, nil
	}
	m.refreshing = true
	return m, refreshCmd(m.ctx, m.refresher)
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	tbl := m.snapshot.Table
	if tbl.IsEmpty() {
		m.setStatus("nothing to export", true)
		return m, nil
	}
	return m, exportCmd(m.exportDir, m.snapshot.Query.SeriesID, tbl)
}

// savePrefs loads the stored prefs, applies edit and writes them back so
// fields the edit does not touch survive.
func (m Model) savePrefs(edit func(p *prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Load(m.prefsPath)
	edit(&p)
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusAt = m.now()
}

// handleTick processes the polling tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if cmd := readLogsCmd(m.logFile); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.statusMsg != "" && now.Sub(m.statusAt) > StatusMessageTTL {
		m.statusMsg = ""
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// shiftYears moves range bounds by whole years. An open start is anchored
// at first, the earliest loaded date; an open end at today. An end moved to
// today or later becomes open again.
func shiftYears(r fred.DateRange, startYears, endYears int, first, now time.Time) (fred.DateRange, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if startYears != 0 {
		base := r.Start
		if base.IsZero() {
			if first.IsZero() {
				return r, errors.New("no start date to move")
			}
			base = first
		}
		r.Start = base.AddDate(startYears, 0, 0)
	}

	if endYears != 0 {
		base := r.End
		if base.IsZero() {
			base = today
		}
		end := base.AddDate(endYears, 0, 0)
		if !end.Before(today) {
			end = time.Time{}
		}
		r.End = end
	}

	end := r.End
	if end.IsZero() {
		end = today
	}
	if r.Start.After(end) {
		return r, errors.New("start must be on or before end")
	}
	return r, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(table.DateLayout)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logLinesMsg []string

type logErrorMsg struct{ err error }

type refreshDoneMsg struct{ err error }

type exportDoneMsg struct {
	seriesID string
	path     string
	err      error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logLinesMsg(lines)
	}
}

func refreshCmd(ctx context.Context, r Refresher) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: r.Refresh(ctx)}
	}
}

func exportCmd(dir, seriesID string, tbl *table.Table) tea.Cmd {
	return func() tea.Msg {
		path, err := csvdata.Export(dir, "", seriesID, tbl)
		return exportDoneMsg{seriesID: seriesID, path: path, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
