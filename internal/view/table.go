// Package view renders task rows for terminals and chat messages.
package view

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agalitsyn/todo/internal/model"
)

const (
	DisplayLayout = "02/01/2006 15:04"
	noDeadline    = "No Deadline"
	noValue       = "-"
	maxDescWidth  = 48
)

// Row is a task together with its position in the collection.
type Row struct {
	Index int
	Task  *model.Task
}

// Number is the 1-based row number shown to users.
func (r Row) Number() int {
	return r.Index + 1
}

var columns = []string{"#", "description", "deadline", "completed", "created", "modified", "completed date", "deleted"}

var title = cases.Title(language.English)

type Table struct {
	Color bool
	Now   func() time.Time
}

func (t Table) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Render writes rows as an aligned table, with a summary line below.
func (t Table) Render(w io.Writer, rows []Row, caption string) error {
	now := t.now()

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = title.String(c)
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = rowCells(r, now)
	}

	widths := make([]int, len(columns))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	bold := t.paint(color.Bold)
	if _, err := fmt.Fprintln(w, joinPadded(header, widths, func(_ int, s string) string { return bold(s) })); err != nil {
		return err
	}

	for i, row := range cells {
		paint := t.rowPaint(rows[i].Task, now)
		line := joinPadded(row, widths, func(col int, s string) string {
			if col == 0 {
				return s
			}
			return paint(s)
		})
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if caption != "" {
		if _, err := fmt.Fprintln(w, t.paint(color.Faint)(caption)); err != nil {
			return err
		}
	}
	return nil
}

func (t Table) rowPaint(task *model.Task, now time.Time) func(string) string {
	switch {
	case task.Completed():
		return t.paint(color.FgGreen)
	case task.Overdue(now):
		return t.paint(color.FgRed)
	default:
		return func(s string) string { return s }
	}
}

func (t Table) paint(attrs ...color.Attribute) func(string) string {
	if !t.Color {
		return func(s string) string { return s }
	}
	c := color.New(attrs...)
	c.EnableColor()
	return func(s string) string { return c.Sprint(s) }
}

func rowCells(r Row, now time.Time) []string {
	task := r.Task
	completed := "Not Done"
	if task.Completed() {
		completed = "Done"
	}
	return []string{
		fmt.Sprintf("%d", r.Number()),
		truncate(task.Description(), maxDescWidth),
		Deadline(task, now),
		completed,
		task.CreatedAt().Format(DisplayLayout),
		task.ModifiedAt().Format(DisplayLayout),
		formatOptional(task.CompletedAt()),
		formatOptional(task.DeletedAt()),
	}
}

// Deadline formats the deadline with a relative hint, like "03/05/2024 10:00 (2 days from now)".
func Deadline(task *model.Task, now time.Time) string {
	if !task.HasDeadline() {
		return noDeadline
	}
	d := task.Deadline()
	return fmt.Sprintf("%s (%s)", d.Format(DisplayLayout), humanize.RelTime(d, now, "ago", "from now"))
}

func formatOptional(t time.Time) string {
	if t.IsZero() {
		return noValue
	}
	return t.Format(DisplayLayout)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func joinPadded(cells []string, widths []int, decorate func(col int, s string) string) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		pad := widths[i] - utf8.RuneCountInString(c)
		if i == len(cells)-1 {
			pad = 0
		}
		b.WriteString(decorate(i, c))
		b.WriteString(strings.Repeat(" ", pad))
	}
	return b.String()
}

// Plain renders rows as a compact list, used for chat messages.
func Plain(rows []Row, now time.Time) string {
	if len(rows) == 0 {
		return "No tasks."
	}
	var b strings.Builder
	for _, r := range rows {
		mark := "⬜"
		if r.Task.Completed() {
			mark = "✅"
		} else if r.Task.Overdue(now) {
			mark = "🔴"
		}
		fmt.Fprintf(&b, "%d. %s %s", r.Number(), mark, r.Task.Description())
		if r.Task.HasDeadline() {
			fmt.Fprintf(&b, " (due %s)", humanize.RelTime(r.Task.Deadline(), now, "ago", "from now"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Caption summarises a view, like "Pending: 3 of 5 tasks".
func Caption(filter model.TaskFilter, shown, total int) string {
	return fmt.Sprintf("%s: %d of %d tasks", title.String(filter.String()), shown, total)
}
