package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/agalitsyn/todo/internal/app"
	"github.com/agalitsyn/todo/internal/model"
	"github.com/agalitsyn/todo/internal/storage/sqlite"
	"github.com/agalitsyn/todo/internal/tasks"
	"github.com/agalitsyn/todo/pkg/slogtools"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	slogtools.SetupGlobalLogger(cfg.Log.Level, os.Stdout)

	if cfg.Debug {
		slog.Debug("running with config")
		fmt.Fprintln(os.Stdout, cfg.String())
	}

	if cfg.Token.IsEmpty() {
		slogtools.Fatal("token is required")
	}
	if cfg.OwnerID == 0 {
		slogtools.Fatal("owner id is required")
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
	} else {
		slog.Info("loaded tasks", "path", cfg.Data.Snapshot, "result", out.String())
	}

	bot, err := app.NewBot(
		app.BotConfig{
			UpdateTimeout: cfg.UpdateTimeout,
			OwnerID:       cfg.OwnerID,
			Autosave:      cfg.Autosave,
			ExportPath:    cfg.Data.Export,
		},
		cfg.Token.Unmask(),
		app.NewShell(manager),
		archive,
		slog.Default(),
	)
	if err != nil {
		slogtools.Fatal("could not init bot", "err", err)
	}
	bot.SetDebug(cfg.Debug)
	slog.Info("authorized", "account", bot.GetSelf().UserName, "owner", cfg.OwnerID)

	bot.Start(ctx)

	if cfg.Autosave {
		if err := manager.Save(); err != nil {
			slog.Error("could not save tasks on shutdown", "err", err)
		}
	}
}
