package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateTimeLayout is dd-MM-yyyy HH:mm:ss, used by CSV interchange.
const DateTimeLayout = "02-01-2006 15:04:05"

const (
	csvNoDeadline   = "No Deadline"
	csvNoCompletion = "-"
	csvYes          = "Yes"
	csvNo           = "No"
)

// Now is the clock used for every timestamp on a task.
var Now = time.Now

// Task is a single to-do item. Zero time values mean "absent".
type Task struct {
	id          string
	description string
	deadline    time.Time
	completed   bool

	createdAt   time.Time
	modifiedAt  time.Time
	completedAt time.Time
	deletedAt   time.Time
}

func NewTask(description string, deadline time.Time) *Task {
	return RestoreTask(description, deadline, false, Now())
}

// RestoreTask rebuilds a task from interchange data. Modification time starts at
// createdAt and completion/deletion times are absent, even for completed tasks.
func RestoreTask(description string, deadline time.Time, completed bool, createdAt time.Time) *Task {
	return &Task{
		id:          uuid.NewString(),
		description: description,
		deadline:    deadline,
		completed:   completed,
		createdAt:   createdAt,
		modifiedAt:  createdAt,
	}
}

func (t *Task) ID() string             { return t.id }
func (t *Task) Description() string    { return t.description }
func (t *Task) Deadline() time.Time    { return t.deadline }
func (t *Task) HasDeadline() bool      { return !t.deadline.IsZero() }
func (t *Task) Completed() bool        { return t.completed }
func (t *Task) CreatedAt() time.Time   { return t.createdAt }
func (t *Task) ModifiedAt() time.Time  { return t.modifiedAt }
func (t *Task) CompletedAt() time.Time { return t.completedAt }
func (t *Task) DeletedAt() time.Time   { return t.deletedAt }

// Overdue reports a pending task whose deadline has passed.
func (t *Task) Overdue(now time.Time) bool {
	return !t.completed && t.HasDeadline() && t.deadline.Before(now)
}

// SetDescription does not validate text, callers do.
func (t *Task) SetDescription(description string) {
	t.description = description
	t.touch()
}

func (t *Task) SetDeadline(deadline time.Time) {
	t.deadline = deadline
	t.touch()
}

func (t *Task) SetCompleted(completed bool) {
	t.completed = completed
	if completed {
		t.completedAt = Now()
	} else {
		t.completedAt = time.Time{}
	}
	t.touch()
}

// SetDeletedAt only records the time; removal is up to the owner of the task.
func (t *Task) SetDeletedAt(deletedAt time.Time) {
	t.deletedAt = deletedAt
	t.touch()
}

// touch moves modifiedAt strictly forward, even when the clock did not.
func (t *Task) touch() {
	now := Now()
	if !now.After(t.modifiedAt) {
		now = t.modifiedAt.Add(time.Nanosecond)
	}
	t.modifiedAt = now
}

// CSV returns the task as one interchange line, without trailing newline.
func (t *Task) CSV() string {
	deadline := csvNoDeadline
	if t.HasDeadline() {
		deadline = t.deadline.Format(DateTimeLayout)
	}
	completedAt := csvNoCompletion
	if !t.completedAt.IsZero() {
		completedAt = t.completedAt.Format(DateTimeLayout)
	}
	completed := csvNo
	if t.completed {
		completed = csvYes
	}

	return fmt.Sprintf(`"%s",%s,%s,%s,%s`,
		strings.ReplaceAll(t.description, `"`, `""`),
		deadline,
		completed,
		t.createdAt.Format(DateTimeLayout),
		completedAt,
	)
}

func (t *Task) String() string {
	return t.description
}

// TaskState is the plain data form of a task, used by snapshot and archive storage.
type TaskState struct {
	ID          string
	Description string
	Deadline    time.Time
	Completed   bool
	CreatedAt   time.Time
	ModifiedAt  time.Time
	CompletedAt time.Time
	DeletedAt   time.Time
}

func (t *Task) State() TaskState {
	return TaskState{
		ID:          t.id,
		Description: t.description,
		Deadline:    t.deadline,
		Completed:   t.completed,
		CreatedAt:   t.createdAt,
		ModifiedAt:  t.modifiedAt,
		CompletedAt: t.completedAt,
		DeletedAt:   t.deletedAt,
	}
}

// TaskFromState keeps every field as stored. Missing id gets a fresh one.
func TaskFromState(s TaskState) *Task {
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Task{
		id:          id,
		description: s.Description,
		deadline:    s.Deadline,
		completed:   s.Completed,
		createdAt:   s.CreatedAt,
		modifiedAt:  s.ModifiedAt,
		completedAt: s.CompletedAt,
		deletedAt:   s.DeletedAt,
	}
}

type TaskFilter int

const (
	FilterAll TaskFilter = iota
	FilterCompleted
	FilterPending
)

func (f TaskFilter) String() string {
	switch f {
	case FilterCompleted:
		return "completed"
	case FilterPending:
		return "pending"
	default:
		return "all"
	}
}

func (f TaskFilter) Match(t *Task) bool {
	switch f {
	case FilterCompleted:
		return t.completed
	case FilterPending:
		return !t.completed
	default:
		return true
	}
}

func ParseTaskFilter(s string) (TaskFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "pending", "incomplete", "todo":
		return FilterPending, nil
	default:
		return FilterAll, fmt.Errorf("unknown view %q", s)
	}
}
