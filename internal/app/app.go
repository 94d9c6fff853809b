package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/five82/fredview/internal/config"
	"github.com/five82/fredview/internal/csvdata"
	"github.com/five82/fredview/internal/fred"
	"github.com/five82/fredview/internal/logging"
	"github.com/five82/fredview/internal/prefs"
	"github.com/five82/fredview/internal/state"
	"github.com/five82/fredview/internal/table"
	"github.com/five82/fredview/internal/ui"
)

// Options configure the fredview application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/fredview/prefs.toml
	SeriesID   string        // overrides prefs and config
	CSVPath    string        // serve this CSV instead of calling FRED
	Once       bool          // fetch, print the table and exit
	Export     bool          // fetch, write a CSV to the export dir and exit
	PollEvery  time.Duration // overrides poll_interval when positive
	Version    string
	Stdout     io.Writer
	Stderr     io.Writer
}

// Run boots fredview until the context is cancelled or the user quits. In
// headless mode it performs a single refresh instead of starting the TUI.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}
	userPrefs := prefs.Load(opts.PrefsPath)
	headless := opts.Once || opts.Export

	logger, closeLog := newLogger(cfg, opts, headless)
	defer func() { _ = closeLog() }()

	fetcher, closeFetcher, err := newFetcher(cfg, opts, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeFetcher() }()

	store := &state.Store{}
	query := initialQuery(cfg, userPrefs, opts.SeriesID)
	refresher := NewRefresher(fetcher, store, query, logger)

	if headless {
		return runHeadless(ctx, refresher, store, cfg, opts)
	}

	// Populate the store before the UI draws its first frame.
	_ = refresher.Refresh(ctx)
	StartPoller(ctx, refresher, cfg.PollInterval, logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Refresher: refresher,
		Store:     store,
		Logger:    logger,
		LogFile:   cfg.LogFile,
		ExportDir: cfg.ExportDir,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	})
}

// newLogger logs to stderr in headless mode and to the log file otherwise.
// The TUI owns the terminal, so when the file cannot be opened it logs
// nowhere rather than over the dashboard.
func newLogger(cfg config.Config, opts Options, headless bool) (*slog.Logger, func() error) {
	logOpts := logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Version: opts.Version,
		Stderr:  opts.Stderr,
	}
	if !headless {
		logOpts.File = cfg.LogFile
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil && !headless {
		return logging.Discard(), closeLog
	}
	return logger, closeLog
}

// newFetcher returns the FRED client, or a csvdata.Source when a CSV path is
// given. The CSV source needs no API key.
func newFetcher(cfg config.Config, opts Options, logger *slog.Logger) (fred.SeriesFetcher, func() error, error) {
	if strings.TrimSpace(opts.CSVPath) != "" {
		path, err := config.ExpandPath(opts.CSVPath)
		if err != nil {
			return nil, nil, fmt.Errorf("csv path: %w", err)
		}
		logger.Info("serving series from csv", "path", path)
		return csvdata.Source{Path: path}, func() error { return nil }, nil
	}

	client, err := fred.NewClient(fred.Options{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		UserAgent: userAgent(opts.Version),
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init fred client: %w", err)
	}
	return client, client.Close, nil
}

func userAgent(version string) string {
	if strings.TrimSpace(version) == "" {
		return ""
	}
	return "fredview/" + version
}

// initialQuery resolves the series and range: flag, then saved prefs, then
// config.
func initialQuery(cfg config.Config, p prefs.Prefs, seriesFlag string) state.Query {
	q := state.Query{
		SeriesID: cfg.SeriesID,
		Range:    fred.DateRange{Start: cfg.ObservationStart, End: cfg.ObservationEnd},
	}
	if p.SeriesID != "" {
		q.SeriesID = p.SeriesID
	}
	if d, err := table.ParseDate(p.ObservationStart); err == nil {
		q.Range.Start = d
	}
	if d, err := table.ParseDate(p.ObservationEnd); err == nil && !d.Before(q.Range.Start) {
		q.Range.End = d
	}
	// A saved start past the configured end would be rejected by FRED on
	// every poll.
	if !q.Range.End.IsZero() && q.Range.Start.After(q.Range.End) {
		q.Range.Start = cfg.ObservationStart
	}
	if s := strings.ToUpper(strings.TrimSpace(seriesFlag)); s != "" {
		q.SeriesID = s
	}
	return q
}

func runHeadless(ctx context.Context, r *Refresher, store *state.Store, cfg config.Config, opts Options) error {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if err := r.Refresh(ctx); err != nil {
		return fmt.Errorf("fetch %s: %w", r.Query().SeriesID, err)
	}
	snap := store.Snapshot()

	if opts.Once {
		fmt.Fprintln(stdout, describeQuery(snap.Query))
		if snap.Table.IsEmpty() {
			fmt.Fprintln(stdout, state.NoDataMessage)
		} else {
			fmt.Fprintln(stdout, renderTable(snap.Table))
		}
	}
	if opts.Export {
		if snap.Table.IsEmpty() {
			return fmt.Errorf("export %s: %s", snap.Query.SeriesID, state.NoDataMessage)
		}
		path, err := csvdata.Export(cfg.ExportDir, "", snap.Query.SeriesID, snap.Table)
		if err != nil {
			return fmt.Errorf("export %s: %w", snap.Query.SeriesID, err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", path)
	}
	return nil
}

func describeQuery(q state.Query) string {
	end := "latest"
	if !q.Range.End.IsZero() {
		end = q.Range.End.Format(table.DateLayout)
	}
	start := "earliest"
	if !q.Range.Start.IsZero() {
		start = q.Range.Start.Format(table.DateLayout)
	}
	return fmt.Sprintf("%s %s to %s", q.SeriesID, start, end)
}

func renderTable(tbl *table.Table) string {
	cols := tbl.Columns()
	headers := make([]string, 0, len(cols)+1)
	headers = append(headers, csvdata.DateColumn)
	for _, c := range cols {
		headers = append(headers, c.Name)
	}

	rows := make([][]string, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		row := make([]string, 0, len(cols)+1)
		row = append(row, tbl.Date(i).Format(table.DateLayout))
		for _, c := range cols {
			row = append(row, c.Format(i))
		}
		rows = append(rows, row)
	}

	right := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	left := lipgloss.NewStyle().Padding(0, 1)
	return ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 || row == ltable.HeaderRow {
				return left
			}
			return right
		}).
		String()
}
