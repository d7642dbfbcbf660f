package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agalitsyn/todo/internal/app"
	"github.com/agalitsyn/todo/internal/model"
	"github.com/agalitsyn/todo/internal/view"
	"github.com/agalitsyn/todo/version"
)

const commandsUsage = `Commands:
  list [all|completed|pending] [-sort key]  show tasks, key is one of position, description,
                                            deadline, created, modified, status ("-" reverses)
  add [-days N] <description>               add a task, optionally due in N days
  edit [-days N] [-no-deadline] <#> <description>
  delete <#>                                delete a task
  done <#>                                  mark a task completed
  export <path>                             write tasks to a CSV file (".csv" is added if missing)
  import <path>                             append tasks from a CSV file
  history [-limit N]                        recently deleted tasks
  version                                   show version
`

var errUsage = errors.New("usage")

type cli struct {
	shell   *app.Shell
	archive model.TaskArchive
	table   view.Table
	stdout  io.Writer
	stderr  io.Writer
	now     func() time.Time
}

func (c *cli) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.list(nil)
	}

	name, rest := args[0], args[1:]
	switch name {
	case "list", "ls":
		return c.list(rest)
	case "add":
		return c.add(rest)
	case "edit":
		return c.edit(rest)
	case "delete", "rm":
		return c.rowCommand(rest, func(i int) (app.View, error) { return c.shell.Delete(ctx, i) })
	case "done":
		return c.rowCommand(rest, c.shell.Complete)
	case "export":
		return c.export(rest)
	case "import":
		return c.importCSV(rest)
	case "history":
		return c.history(ctx, rest)
	case "version":
		_, err := fmt.Fprintln(c.stdout, version.String())
		return err
	case "help":
		_, err := fmt.Fprint(c.stdout, commandsUsage)
		return err
	default:
		fmt.Fprintf(c.stderr, "unknown command %q\n\n%s", name, commandsUsage)
		return errUsage
	}
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return fmt.Errorf("%s: %w", fs.Name(), err)
	}
	return nil
}

func (c *cli) list(args []string) error {
	fs := c.flagSet("list")
	sortKey := fs.String("sort", "position", "Sort key.")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	// the view name may come before the flags
	filterName := ""
	if fs.NArg() > 0 {
		filterName = fs.Arg(0)
		if err := c.parse(fs, fs.Args()[1:]); err != nil {
			return err
		}
		if fs.NArg() > 0 {
			return fmt.Errorf("list: unexpected arguments %q", fs.Args())
		}
	}

	f, err := model.ParseTaskFilter(filterName)
	if err != nil {
		return err
	}
	key, err := app.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}

	c.shell.SetFilter(f)
	return c.render(c.shell.SetSort(key))
}

func (c *cli) add(args []string) error {
	fs := c.flagSet("add")
	days := fs.String("days", "", "Deadline in days from now.")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	deadline, err := app.DeadlineInDays(*days, c.clock())
	if err != nil {
		return err
	}
	v, err := c.shell.Add(strings.Join(fs.Args(), " "), deadline)
	if err != nil {
		return err
	}
	return c.saveAndRender(v)
}

func (c *cli) edit(args []string) error {
	fs := c.flagSet("edit")
	days := fs.String("days", "", "New deadline in days from now, the current one is kept if empty.")
	noDeadline := fs.Bool("no-deadline", false, "Remove the deadline.")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("edit: %w", app.ErrNoSelection)
	}

	index, err := app.ParseRowNumber(fs.Arg(0))
	if err != nil {
		return err
	}

	var deadline *time.Time
	switch {
	case *noDeadline:
		deadline = &time.Time{}
	case *days != "":
		d, err := app.DeadlineInDays(*days, c.clock())
		if err != nil {
			return err
		}
		deadline = &d
	}

	v, err := c.shell.Edit(index, strings.Join(fs.Args()[1:], " "), deadline)
	if err != nil {
		return err
	}
	return c.saveAndRender(v)
}

func (c *cli) rowCommand(args []string, fn func(int) (app.View, error)) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one row number: %w", app.ErrNoSelection)
	}
	index, err := app.ParseRowNumber(args[0])
	if err != nil {
		return err
	}
	v, err := fn(index)
	if err != nil {
		return fmt.Errorf("row %d: %w", index+1, err)
	}
	return c.saveAndRender(v)
}

func (c *cli) export(args []string) error {
	if len(args) != 1 {
		return errors.New("export: expected a file path")
	}
	path, out := c.shell.Export(args[0])
	if !out.OK() {
		return out.Err
	}
	_, err := fmt.Fprintf(c.stdout, "Exported %s to %s\n", out, path)
	return err
}

func (c *cli) importCSV(args []string) error {
	if len(args) != 1 {
		return errors.New("import: expected a file path")
	}
	v, out := c.shell.Import(args[0])
	// rows read before a failure are kept, so save either way
	if out.Count > 0 {
		if err := c.shell.Save(); err != nil {
			return err
		}
	}
	if !out.OK() {
		return fmt.Errorf("import stopped after %d tasks: %w", out.Count, out.Err)
	}
	if _, err := fmt.Fprintf(c.stdout, "Imported %s from %s\n", out, args[0]); err != nil {
		return err
	}
	return c.render(v)
}

func (c *cli) history(ctx context.Context, args []string) error {
	fs := c.flagSet("history")
	limit := fs.Int("limit", 10, "Number of tasks to show, 0 shows all.")
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if c.archive == nil {
		return errors.New("history is not enabled, set -archive")
	}

	states, err := c.archive.ListArchived(ctx, *limit)
	if err != nil {
		return fmt.Errorf("could not read history: %w", err)
	}
	_, err = fmt.Fprintln(c.stdout, strings.TrimRight(view.History(states, c.clock()), "\n"))
	return err
}

func (c *cli) saveAndRender(v app.View) error {
	if err := c.shell.Save(); err != nil {
		return err
	}
	return c.render(v)
}

func (c *cli) render(v app.View) error {
	t := c.table
	if t.Now == nil {
		t.Now = c.clock
	}
	return t.Render(c.stdout, v.Rows, view.Caption(v.Filter, len(v.Rows), v.Total))
}
