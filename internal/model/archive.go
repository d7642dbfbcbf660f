package model

import "context"

// TaskArchive keeps deleted tasks together with their deletion time.
type TaskArchive interface {
	ArchiveTask(ctx context.Context, task *Task) error
	ListArchived(ctx context.Context, limit int) ([]TaskState, error)
}
