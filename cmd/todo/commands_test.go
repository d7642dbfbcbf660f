package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalitsyn/todo/internal/app"
	"github.com/agalitsyn/todo/internal/storage/sqlite"
	"github.com/agalitsyn/todo/internal/tasks"
)

var cliNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testCLI struct {
	*cli
	stdout, stderr *bytes.Buffer
	snapshot       string
}

func newTestCLI(t *testing.T, withArchive bool) *testCLI {
	t.Helper()
	dir := t.TempDir()

	cfg := tasks.Config{
		SnapshotPath: filepath.Join(dir, "todo.ser"),
		Logger:       slog.New(slog.DiscardHandler),
	}
	var tc testCLI
	tc.stdout, tc.stderr = &bytes.Buffer{}, &bytes.Buffer{}
	tc.snapshot = cfg.SnapshotPath
	tc.cli = &cli{
		stdout: tc.stdout,
		stderr: tc.stderr,
		now:    func() time.Time { return cliNow },
	}
	if withArchive {
		db, err := sqlite.Open(filepath.Join(dir, "archive.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		archive := sqlite.NewTaskArchiveStorage(db)
		cfg.Archive = archive
		tc.archive = archive
	}
	tc.shell = app.NewShell(tasks.NewManager(cfg))
	return &tc
}

// reload simulates the next process run on the same snapshot.
func (tc *testCLI) reload(t *testing.T) {
	t.Helper()
	m := tasks.NewManager(tasks.Config{
		SnapshotPath: tc.snapshot,
		Archive:      tc.archive,
		Logger:       slog.New(slog.DiscardHandler),
	})
	require.True(t, m.Load().OK())
	tc.shell = app.NewShell(m)
	tc.stdout.Reset()
}

func TestCLIAddPersists(t *testing.T) {
	tc := newTestCLI(t, false)
	ctx := context.Background()

	require.NoError(t, tc.run(ctx, []string{"add", "-days", "2", "Buy", "milk"}))
	assert.Contains(t, tc.stdout.String(), "Buy milk")
	assert.Contains(t, tc.stdout.String(), "All: 1 of 1 tasks")

	tc.reload(t)
	require.NoError(t, tc.run(ctx, []string{"list"}))
	out := tc.stdout.String()
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "03/05/2024 12:00 (2 days from now)")
}

func TestCLIEditDoneList(t *testing.T) {
	tc := newTestCLI(t, false)
	ctx := context.Background()
	require.NoError(t, tc.run(ctx, []string{"add", "Buy milk"}))
	require.NoError(t, tc.run(ctx, []string{"add", "Call mom"}))

	require.NoError(t, tc.run(ctx, []string{"edit", "-days", "1", "1", "Buy", "oat", "milk"}))
	task, _ := tc.shell.Manager().Get(0)
	assert.Equal(t, "Buy oat milk", task.Description())
	assert.Equal(t, cliNow.AddDate(0, 0, 1), task.Deadline())

	require.NoError(t, tc.run(ctx, []string{"edit", "-no-deadline", "1", "Buy oat milk"}))
	assert.False(t, task.HasDeadline())

	require.NoError(t, tc.run(ctx, []string{"done", "2"}))
	tc.stdout.Reset()
	require.NoError(t, tc.run(ctx, []string{"list", "completed", "-sort", "-created"}))
	out := tc.stdout.String()
	assert.Contains(t, out, "Call mom")
	assert.NotContains(t, out, "Buy oat milk")
	assert.Contains(t, out, "Completed: 1 of 2 tasks")
}

func TestCLIErrors(t *testing.T) {
	tc := newTestCLI(t, false)
	ctx := context.Background()

	assert.ErrorIs(t, tc.run(ctx, []string{"add"}), app.ErrEmptyDescription)
	assert.ErrorIs(t, tc.run(ctx, []string{"add", "-days", "soon", "x"}), app.ErrInvalidDays)
	assert.ErrorIs(t, tc.run(ctx, []string{"done", "1"}), app.ErrNoSelection)
	assert.ErrorIs(t, tc.run(ctx, []string{"delete"}), app.ErrNoSelection)
	assert.ErrorIs(t, tc.run(ctx, []string{"edit"}), app.ErrNoSelection)
	assert.ErrorIs(t, tc.run(ctx, []string{"list", "-sort", "priority"}), app.ErrUnknownSortKey)
	assert.Error(t, tc.run(ctx, []string{"list", "someday"}))
	assert.Error(t, tc.run(ctx, []string{"history"}))

	assert.ErrorIs(t, tc.run(ctx, []string{"frobnicate"}), errUsage)
	assert.Contains(t, tc.stderr.String(), `unknown command "frobnicate"`)
}

func TestCLIDeleteArchives(t *testing.T) {
	tc := newTestCLI(t, true)
	ctx := context.Background()
	require.NoError(t, tc.run(ctx, []string{"add", "Old chore"}))
	require.NoError(t, tc.run(ctx, []string{"add", "Keep me"}))

	require.NoError(t, tc.run(ctx, []string{"delete", "1"}))
	assert.Equal(t, 1, tc.shell.Manager().Len())

	tc.stdout.Reset()
	require.NoError(t, tc.run(ctx, []string{"history", "-limit", "5"}))
	assert.Contains(t, tc.stdout.String(), "- Old chore [pending] deleted")

	tc.reload(t)
	require.Equal(t, 1, tc.shell.Manager().Len())
	task, _ := tc.shell.Manager().Get(0)
	assert.Equal(t, "Keep me", task.Description())
}

func TestCLIExportImport(t *testing.T) {
	tc := newTestCLI(t, false)
	ctx := context.Background()
	require.NoError(t, tc.run(ctx, []string{"add", "Ship it"}))

	path := filepath.Join(t.TempDir(), "tasks.csv")
	tc.stdout.Reset()
	require.NoError(t, tc.run(ctx, []string{"export", path}))
	assert.Equal(t, "Exported 1 tasks to "+path+"\n", tc.stdout.String())

	bare := filepath.Join(t.TempDir(), "backup")
	tc.stdout.Reset()
	require.NoError(t, tc.run(ctx, []string{"export", bare}))
	assert.Equal(t, "Exported 1 tasks to "+bare+".csv\n", tc.stdout.String())
	_, err := os.Stat(bare + ".csv")
	require.NoError(t, err)

	require.NoError(t, tc.run(ctx, []string{"import", path}))
	assert.Equal(t, 2, tc.shell.Manager().Len())

	tc.reload(t)
	assert.Equal(t, 2, tc.shell.Manager().Len())

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("header\n\"A\",No Deadline,No,01-01-2024 10:00:00,-\n\"B\",tomorrow,No,01-01-2024 10:00:00,-\n"), 0o600))
	err = tc.run(ctx, []string{"import", bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import stopped after 1 tasks")

	tc.reload(t)
	assert.Equal(t, 3, tc.shell.Manager().Len())
}

func TestCLIVersion(t *testing.T) {
	tc := newTestCLI(t, false)
	require.NoError(t, tc.run(context.Background(), []string{"version"}))
	assert.NotEmpty(t, tc.stdout.String())
}
