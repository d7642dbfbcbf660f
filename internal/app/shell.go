package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agalitsyn/todo/internal/model"
	"github.com/agalitsyn/todo/internal/tasks"
	"github.com/agalitsyn/todo/internal/view"
)

var (
	ErrEmptyDescription = errors.New("task description is empty")
	ErrNoSelection      = errors.New("no task selected")
	ErrInvalidDays      = errors.New("invalid number of days")
	ErrUnknownSortKey   = errors.New("unknown sort key")
)

type View struct {
	Filter model.TaskFilter
	Sort   SortKey
	Rows   []view.Row
	Total  int
}

type SortKey struct {
	Field string
	Desc  bool
}

var sortFields = []string{"position", "description", "deadline", "created", "modified", "status"}

// ParseSortKey accepts a field name, "-" prefix reverses the order.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	var key SortKey
	if strings.HasPrefix(s, "-") {
		key.Desc = true
		s = s[1:]
	}
	if s == "" {
		s = "position"
	}
	for _, f := range sortFields {
		if f == s {
			key.Field = s
			return key, nil
		}
	}
	return SortKey{}, fmt.Errorf("%w: %q (use one of %s)", ErrUnknownSortKey, s, strings.Join(sortFields, ", "))
}

func (k SortKey) String() string {
	field := k.Field
	if field == "" {
		field = "position"
	}
	if k.Desc {
		return "-" + field
	}
	return field
}

func (k SortKey) less(a, b view.Row) bool {
	switch k.Field {
	case "description":
		return strings.ToLower(a.Task.Description()) < strings.ToLower(b.Task.Description())
	case "deadline":
		// tasks without deadline go last
		ad, bd := a.Task.Deadline(), b.Task.Deadline()
		if ad.IsZero() || bd.IsZero() {
			return !ad.IsZero() && bd.IsZero()
		}
		return ad.Before(bd)
	case "created":
		return a.Task.CreatedAt().Before(b.Task.CreatedAt())
	case "modified":
		return a.Task.ModifiedAt().Before(b.Task.ModifiedAt())
	case "status":
		return !a.Task.Completed() && b.Task.Completed()
	default:
		return a.Index < b.Index
	}
}

// Shell holds presentation rules on top of the manager: input validation,
// current view and sort order. Every action answers with a freshly built view.
type Shell struct {
	manager *tasks.Manager
	filter  model.TaskFilter
	sort    SortKey
}

func NewShell(manager *tasks.Manager) *Shell {
	return &Shell{manager: manager}
}

func (s *Shell) Manager() *tasks.Manager {
	return s.manager
}

func (s *Shell) SetFilter(f model.TaskFilter) View {
	s.filter = f
	return s.View()
}

func (s *Shell) SetSort(k SortKey) View {
	s.sort = k
	return s.View()
}

func (s *Shell) View() View {
	all := s.manager.All()
	rows := make([]view.Row, 0, len(all))
	for i, t := range all {
		if s.filter.Match(t) {
			rows = append(rows, view.Row{Index: i, Task: t})
		}
	}

	key := s.sort
	sort.SliceStable(rows, func(i, j int) bool {
		if key.Desc {
			return key.less(rows[j], rows[i])
		}
		return key.less(rows[i], rows[j])
	})

	return View{Filter: s.filter, Sort: s.sort, Rows: rows, Total: len(all)}
}

// Add keeps the description as typed; blank input is rejected.
func (s *Shell) Add(description string, deadline time.Time) (View, error) {
	if strings.TrimSpace(description) == "" {
		return s.View(), ErrEmptyDescription
	}
	s.manager.Add(model.NewTask(description, deadline))
	return s.View(), nil
}

// Edit changes the description; the deadline is kept unless newDeadline is given.
func (s *Shell) Edit(index int, description string, newDeadline *time.Time) (View, error) {
	task, ok := s.manager.Get(index)
	if !ok {
		return s.View(), ErrNoSelection
	}
	if strings.TrimSpace(description) == "" {
		return s.View(), ErrEmptyDescription
	}
	deadline := task.Deadline()
	if newDeadline != nil {
		deadline = *newDeadline
	}
	s.manager.Update(index, description, deadline)
	return s.View(), nil
}

func (s *Shell) Delete(ctx context.Context, index int) (View, error) {
	if !s.manager.Delete(ctx, index) {
		return s.View(), ErrNoSelection
	}
	return s.View(), nil
}

func (s *Shell) Complete(index int) (View, error) {
	if !s.manager.MarkComplete(index) {
		return s.View(), ErrNoSelection
	}
	return s.View(), nil
}

func (s *Shell) Save() error {
	return s.manager.Save()
}

func (s *Shell) Load() (View, tasks.Outcome) {
	out := s.manager.Load()
	return s.View(), out
}

// Export writes to path, adding ".csv" when the name lacks it, and returns the path used.
func (s *Shell) Export(path string) (string, tasks.Outcome) {
	path = CSVPath(path)
	return path, s.manager.ExportCSV(path)
}

func (s *Shell) Import(path string) (View, tasks.Outcome) {
	out := s.manager.ImportCSV(path)
	return s.View(), out
}

// DeadlineInDays turns the "days from now" answer into a deadline.
// Empty input means no deadline.
func DeadlineInDays(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}
	days, err := strconv.Atoi(input)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDays, input)
	}
	return now.AddDate(0, 0, days), nil
}

// ParseRowNumber converts a 1-based row number typed by the user into an index.
func ParseRowNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a row number", ErrNoSelection, s)
	}
	return n - 1, nil
}

// CSVPath appends ".csv" unless the file name already ends with it, in any case.
func CSVPath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return path
	}
	return path + ".csv"
}
