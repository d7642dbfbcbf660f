package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalitsyn/todo/internal/model"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixtureRows() []Row {
	pending := model.RestoreTask("Buy milk", now.Add(48*time.Hour), false, now.Add(-time.Hour))
	done := model.RestoreTask("Write report", time.Time{}, true, now.Add(-2*time.Hour))
	late := model.RestoreTask("Pay rent", now.Add(-24*time.Hour), false, now.Add(-72*time.Hour))
	return []Row{{Index: 0, Task: pending}, {Index: 1, Task: done}, {Index: 2, Task: late}}
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Now: func() time.Time { return now }}

	err := tbl.Render(&buf, fixtureRows(), "All: 3 of 3 tasks")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.True(t, strings.HasPrefix(lines[0], "#  Description"))
	assert.Contains(t, lines[0], "Completed Date")
	assert.Contains(t, lines[1], "Buy milk")
	assert.Contains(t, lines[1], "03/05/2024 12:00 (2 days from now)")
	assert.Contains(t, lines[1], "Not Done")
	assert.Contains(t, lines[2], "No Deadline")
	assert.Contains(t, lines[2], "Done")
	assert.Contains(t, lines[3], "1 day ago")
	assert.Equal(t, "All: 3 of 3 tasks", lines[4])
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestTableRenderAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Now: func() time.Time { return now }}
	require.NoError(t, tbl.Render(&buf, fixtureRows(), ""))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	col := strings.Index(lines[0], "Deadline")
	require.Positive(t, col)
	for _, l := range lines[1:] {
		r := []rune(l)
		assert.Equal(t, ' ', r[col-1], l)
		assert.NotEqual(t, ' ', r[col], l)
	}
}

func TestTableRenderColor(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Color: true, Now: func() time.Time { return now }}
	require.NoError(t, tbl.Render(&buf, fixtureRows(), ""))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestPlain(t *testing.T) {
	out := Plain(fixtureRows(), now)
	assert.Equal(t, "1. ⬜ Buy milk (due 2 days from now)\n2. ✅ Write report\n3. 🔴 Pay rent (due 1 day ago)\n", out)
	assert.Equal(t, "No tasks.", Plain(nil, now))
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "Pending: 2 of 5 tasks", Caption(model.FilterPending, 2, 5))
}

func TestHistory(t *testing.T) {
	assert.Equal(t, "No deleted tasks.", History(nil, now))

	out := History([]model.TaskState{
		{Description: "Old chore", Completed: true, DeletedAt: now.Add(-3 * time.Hour)},
	}, now)
	assert.True(t, strings.HasPrefix(out, "- Old chore [done] deleted 3 hours ago"))
}
