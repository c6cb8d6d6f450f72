package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"punchclock/internal/auth"
	"punchclock/internal/cli"
	"punchclock/internal/config"
	"punchclock/internal/db"
	"punchclock/internal/remote"
	"punchclock/internal/repository"
	"punchclock/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	timerRepo := repository.NewSQLiteTimerStateRepo(database)
	logRepo := repository.NewSQLiteLogEntryRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Credentials double as the bearer-token source for the API client.
	sessions := auth.NewFileStore(cfg.SessionFile)

	debug := os.Getenv("PUNCHCLOCK_DEBUG") != ""

	var callObserver remote.Observer = remote.NoopObserver{}
	var trackerObserver tracker.Observer = tracker.NoopObserver{}
	if debug {
		callObserver = remote.NewLogObserver(os.Stderr)
		trackerObserver = tracker.NewLogObserver(os.Stderr)
	}

	store := remote.NewClient(remote.Config{
		BaseURL:    cfg.API.BaseURL,
		TimeoutMs:  cfg.API.TimeoutMs,
		MaxRetries: cfg.API.MaxRetries,
	}, sessions, callObserver)

	tr := tracker.New(timerRepo, logRepo, store, uow, trackerObserver, tracker.Config{
		Scope: cfg.Scope,
	})
	breaks := tracker.NewBreakTracker(timerRepo, cfg.Scope)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	pollInterval := time.Duration(cfg.Poll.IntervalSeconds) * time.Second

	app := &cli.App{
		Tracker: tr,
		Breaks:  breaks,
		Poller: &tracker.Poller{
			Log:      logger,
			Logs:     logRepo,
			Store:    store,
			Interval: pollInterval,
		},
		Resubmitter: &tracker.Resubmitter{
			Log:      logger,
			Logs:     logRepo,
			Store:    store,
			Interval: pollInterval,
		},
		Logs:     logRepo,
		Store:    store,
		Sessions: sessions,
	}

	// Detect interactive terminal for form-based entrypoints.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
