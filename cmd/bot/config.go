package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/agalitsyn/todo/internal/app"
	"github.com/agalitsyn/todo/internal/tasks"
	"github.com/agalitsyn/todo/pkg/flagtools"
	"github.com/agalitsyn/todo/pkg/secret"
	"github.com/agalitsyn/todo/pkg/slogtools"
	"github.com/agalitsyn/todo/version"
)

const EnvPrefix = "TODO_BOT"

type Config struct {
	Debug bool

	Log struct {
		Level slog.Level
	}

	Token   secret.String
	OwnerID int64

	Data struct {
		Snapshot string
		Archive  string
		Export   string
	}

	Autosave      bool
	UpdateTimeout int
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "info", "Log level (debug | info | warn | error).")
	token := flag.String("token", "", "Telegram bot token.")
	flag.Int64Var(&cfg.OwnerID, "owner-id", 0, "Telegram user id the bot answers to.")
	flag.StringVar(&cfg.Data.Snapshot, "data", tasks.DefaultSnapshotPath, "Snapshot file.")
	flag.StringVar(&cfg.Data.Archive, "archive", "", "SQLite file for deleted tasks, empty disables history.")
	flag.StringVar(&cfg.Data.Export, "export", app.DefaultExportPath, "Default CSV file for /export and /import.")
	flag.BoolVar(&cfg.Autosave, "autosave", true, "Save the snapshot after every change.")
	flag.IntVar(&cfg.UpdateTimeout, "update-timeout", 60, "Long polling timeout in seconds.")

	flagtools.Prefix = EnvPrefix
	flagtools.Parse()
	flag.Parse()

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	slogLevel := slogtools.ParseLogLevel(*logLevel)
	cfg.Log.Level = slogLevel
	if slogLevel == slog.LevelDebug {
		cfg.Debug = true
	}

	cfg.Token = secret.NewString(*token)

	return cfg
}
