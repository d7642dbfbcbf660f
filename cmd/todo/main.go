package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/agalitsyn/todo/internal/app"
	"github.com/agalitsyn/todo/internal/model"
	"github.com/agalitsyn/todo/internal/storage/sqlite"
	"github.com/agalitsyn/todo/internal/tasks"
	"github.com/agalitsyn/todo/internal/view"
	"github.com/agalitsyn/todo/pkg/slogtools"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	slogtools.SetupGlobalLogger(cfg.Log.Level, os.Stderr)

	if cfg.Debug {
		slog.Debug("running with config")
		fmt.Fprintln(os.Stderr, cfg.String())
	}

	var archive model.TaskArchive
	if cfg.Data.Archive != "" {
		db, err := sqlite.Open(cfg.Data.Archive)
		if err != nil {
			slogtools.Fatal("could not open archive", "path", cfg.Data.Archive, "err", err)
		}
		defer db.Close()
		archive = sqlite.NewTaskArchiveStorage(db)
	}

	manager := tasks.NewManager(tasks.Config{
		SnapshotPath: cfg.Data.Snapshot,
		Archive:      archive,
		Logger:       slog.Default(),
	})
	if out := manager.Load(); out.Status == tasks.OutcomeFailed {
		slogtools.Fatal("could not load tasks", "path", cfg.Data.Snapshot, "err", out.Err)
	}

	c := &cli{
		shell:   app.NewShell(manager),
		archive: archive,
		table:   view.Table{Color: !cfg.NoColor && !color.NoColor},
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	if err := c.run(ctx, cfg.Args); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "todo:", err)
		}
		os.Exit(1)
	}
}
