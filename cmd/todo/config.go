package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/agalitsyn/todo/internal/tasks"
	"github.com/agalitsyn/todo/pkg/flagtools"
	"github.com/agalitsyn/todo/pkg/slogtools"
	"github.com/agalitsyn/todo/version"
)

const EnvPrefix = "TODO"

type Config struct {
	Debug bool

	Log struct {
		Level slog.Level
	}

	Data struct {
		Snapshot string
		Archive  string
	}

	NoColor bool

	// Args is the command and its arguments.
	Args []string
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

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command> [args]\n\n%s\nFlags:\n", os.Args[0], commandsUsage)
		flag.PrintDefaults()
	}

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "warn", "Log level (debug | info | warn | error).")
	flag.StringVar(&cfg.Data.Snapshot, "data", tasks.DefaultSnapshotPath, "Snapshot file.")
	flag.StringVar(&cfg.Data.Archive, "archive", "", "SQLite file for deleted tasks, empty disables history.")
	flag.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")

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

	cfg.Args = flag.Args()
	return cfg
}
