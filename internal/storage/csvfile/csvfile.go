// Package csvfile reads and writes the CSV interchange format.
//
// The reader splits on every comma and does not understand quoting, so a
// description with an embedded comma shifts the remaining fields.
package csvfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agalitsyn/todo/internal/model"
)

const Header = "Description,Deadline,Completed,Created,CompletionDate"

const (
	noDeadline = "No Deadline"
	minFields  = 4
	maxLineLen = 1 << 20
)

// RowError reports a row that stopped the import.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

type ReadStats struct {
	Imported int
	Skipped  int
}

func Write(w io.Writer, tasks []*model.Task) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return err
	}
	for _, t := range tasks {
		if _, err := fmt.Fprintln(bw, t.CSV()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read discards the first line and hands every parsed task to fn in file order.
// Rows with fewer than four fields are skipped. A bad date stops reading; tasks
// passed to fn before that are not taken back.
func Read(r io.Reader, fn func(*model.Task)) (ReadStats, error) {
	var stats ReadStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLen)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		if lineNum == 1 {
			continue
		}

		task, ok, err := ParseLine(sc.Text())
		if err != nil {
			return stats, &RowError{Line: lineNum, Err: err}
		}
		if !ok {
			stats.Skipped++
			continue
		}
		fn(task)
		stats.Imported++
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("could not read csv: %w", err)
	}
	return stats, nil
}

// ParseLine returns ok=false for rows with too few fields.
func ParseLine(line string) (*model.Task, bool, error) {
	parts := splitFields(line)
	if len(parts) < minFields {
		return nil, false, nil
	}

	description := strings.ReplaceAll(parts[0], `"`, "")

	var deadline time.Time
	if parts[1] != noDeadline {
		d, err := time.ParseInLocation(model.DateTimeLayout, parts[1], time.Local)
		if err != nil {
			return nil, false, fmt.Errorf("could not parse deadline: %w", err)
		}
		deadline = d
	}

	created, err := time.ParseInLocation(model.DateTimeLayout, parts[3], time.Local)
	if err != nil {
		return nil, false, fmt.Errorf("could not parse creation date: %w", err)
	}

	completed := strings.EqualFold(parts[2], "Yes")

	return model.RestoreTask(description, deadline, completed, created), true, nil
}

// splitFields splits on commas and drops trailing empty fields, so "a,b,," has two fields.
func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
