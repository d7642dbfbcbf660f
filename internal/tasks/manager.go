package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/agalitsyn/todo/internal/model"
	"github.com/agalitsyn/todo/internal/storage/csvfile"
	"github.com/agalitsyn/todo/internal/storage/snapshot"
)

const DefaultSnapshotPath = "todo.ser"

type Config struct {
	// SnapshotPath is where Save and Load keep the collection. Defaults to DefaultSnapshotPath.
	SnapshotPath string
	// Archive receives deleted tasks. Optional.
	Archive model.TaskArchive
	Logger  *slog.Logger
}

// Manager owns the ordered task collection. It is not safe for concurrent use.
//
// Index based operations ignore out of range indexes and report false.
// Tasks are shared: slices returned by Manager are copies, the tasks in them are not.
type Manager struct {
	tasks        []*model.Task
	snapshotPath string
	archive      model.TaskArchive
	log          *slog.Logger
}

func NewManager(cfg Config) *Manager {
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = DefaultSnapshotPath
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		snapshotPath: cfg.SnapshotPath,
		archive:      cfg.Archive,
		log:          cfg.Logger,
	}
}

func (m *Manager) SnapshotPath() string {
	return m.snapshotPath
}

func (m *Manager) isValidIndex(i int) bool {
	return i >= 0 && i < len(m.tasks)
}

func (m *Manager) Add(task *model.Task) {
	m.tasks = append(m.tasks, task)
}

// Delete stamps the deletion time, hands the task to the archive if there is
// one and removes it. Archive errors are logged only.
func (m *Manager) Delete(ctx context.Context, i int) bool {
	if !m.isValidIndex(i) {
		return false
	}

	task := m.tasks[i]
	task.SetDeletedAt(model.Now())

	if m.archive != nil {
		if err := m.archive.ArchiveTask(ctx, task); err != nil {
			m.log.Error("could not archive deleted task", "id", task.ID(), "err", err)
		}
	}

	m.tasks = slices.Delete(m.tasks, i, i+1)
	return true
}

func (m *Manager) MarkComplete(i int) bool {
	if !m.isValidIndex(i) {
		return false
	}
	m.tasks[i].SetCompleted(true)
	return true
}

func (m *Manager) Update(i int, description string, deadline time.Time) bool {
	if !m.isValidIndex(i) {
		return false
	}
	task := m.tasks[i]
	task.SetDescription(description)
	task.SetDeadline(deadline)
	return true
}

func (m *Manager) Get(i int) (*model.Task, bool) {
	if !m.isValidIndex(i) {
		return nil, false
	}
	return m.tasks[i], true
}

func (m *Manager) Len() int {
	return len(m.tasks)
}

func (m *Manager) All() []*model.Task {
	out := make([]*model.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

func (m *Manager) Completed() []*model.Task {
	return m.Filter(model.FilterCompleted)
}

func (m *Manager) Incomplete() []*model.Task {
	return m.Filter(model.FilterPending)
}

func (m *Manager) Filter(f model.TaskFilter) []*model.Task {
	out := make([]*model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Save overwrites the snapshot with the whole collection.
func (m *Manager) Save() error {
	states := make([]model.TaskState, len(m.tasks))
	for i, t := range m.tasks {
		states[i] = t.State()
	}
	if err := snapshot.WriteFile(m.snapshotPath, states); err != nil {
		return fmt.Errorf("could not save tasks to %s: %w", m.snapshotPath, err)
	}
	m.log.Debug("saved tasks", "path", m.snapshotPath, "count", len(states))
	return nil
}

// Load replaces the collection with the snapshot. A missing snapshot is
// skipped; an unreadable one leaves the collection as it was.
func (m *Manager) Load() Outcome {
	states, err := snapshot.ReadFile(m.snapshotPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.log.Debug("no snapshot to load", "path", m.snapshotPath)
			return Outcome{Status: OutcomeSkipped}
		}
		m.log.Error("could not load tasks", "path", m.snapshotPath, "err", err)
		return failed(0, err)
	}

	loaded := make([]*model.Task, len(states))
	for i, st := range states {
		loaded[i] = model.TaskFromState(st)
	}
	m.tasks = loaded

	m.log.Debug("loaded tasks", "path", m.snapshotPath, "count", len(loaded))
	return Outcome{Status: OutcomeOK, Count: len(loaded)}
}

func (m *Manager) ExportCSV(path string) Outcome {
	err := m.exportCSV(path)
	if err != nil {
		m.log.Error("could not export tasks", "path", path, "err", err)
		return failed(0, err)
	}
	m.log.Info("exported tasks", "path", path, "count", len(m.tasks))
	return Outcome{Status: OutcomeOK, Count: len(m.tasks)}
}

func (m *Manager) exportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csvfile.Write(f, m.tasks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportCSV appends the tasks found in path. Rows read before a failure stay appended.
func (m *Manager) ImportCSV(path string) Outcome {
	f, err := os.Open(path)
	if err != nil {
		m.log.Error("could not import tasks", "path", path, "err", err)
		return failed(0, err)
	}
	defer f.Close()

	stats, err := csvfile.Read(f, func(t *model.Task) {
		m.tasks = append(m.tasks, t)
	})
	if err != nil {
		m.log.Error("could not import tasks", "path", path, "imported", stats.Imported, "err", err)
		out := failed(stats.Imported, err)
		out.Skipped = stats.Skipped
		return out
	}

	if stats.Skipped > 0 {
		m.log.Warn("skipped short csv rows", "path", path, "count", stats.Skipped)
	}
	m.log.Info("imported tasks", "path", path, "count", stats.Imported)
	return Outcome{Status: OutcomeOK, Count: stats.Imported, Skipped: stats.Skipped}
}
