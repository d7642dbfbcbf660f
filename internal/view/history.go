package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/agalitsyn/todo/internal/model"
)

// History lists archived tasks, most recently deleted first as given.
func History(states []model.TaskState, now time.Time) string {
	if len(states) == 0 {
		return "No deleted tasks."
	}
	var b strings.Builder
	for _, st := range states {
		status := "pending"
		if st.Completed {
			status = "done"
		}
		fmt.Fprintf(&b, "- %s [%s] deleted %s", st.Description, status, humanize.RelTime(st.DeletedAt, now, "ago", "from now"))
		if !st.DeletedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", st.DeletedAt.Local().Format(DisplayLayout))
		}
		b.WriteString("\n")
	}
	return b.String()
}
