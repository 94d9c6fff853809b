package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/fredview/internal/app"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/fredview/config.toml)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	series := flag.String("series", "", "FRED series id, e.g. GDPC1 (optional, overrides prefs and config)")
	csvPath := flag.String("csv", "", "serve a saved date,value CSV instead of the FRED API (no key needed)")
	poll := flag.Duration("poll", 0, "refresh interval, e.g. 15m (optional, defaults to poll_interval)")
	once := flag.Bool("once", false, "fetch once, print the transformed table and exit")
	export := flag.Bool("export", false, "fetch once, write a CSV to export_dir and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("fredview", version)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		SeriesID:   *series,
		CSVPath:    *csvPath,
		Once:       *once,
		Export:     *export,
		Version:    version,
	}
	if *poll > 0 {
		opts.PollEvery = *poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "fredview: %v\n", err)
		return 1
	}
	return 0
}
