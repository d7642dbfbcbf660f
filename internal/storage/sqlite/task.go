package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sqlitedb "github.com/agalitsyn/sqlite"

	"github.com/agalitsyn/todo/internal/model"
	"github.com/agalitsyn/todo/internal/storage/sqlite/migrations"
)

type TaskArchiveStorage struct {
	db *sql.DB
}

func NewTaskArchiveStorage(db *sql.DB) *TaskArchiveStorage {
	return &TaskArchiveStorage{db: db}
}

// Open connects to the database file and applies migrations.
func Open(path string) (*sql.DB, error) {
	db, err := sqlitedb.Connect(path)
	if err != nil {
		return nil, err
	}
	if err := sqlitedb.MigrateUp(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate database: %w", err)
	}
	return db, nil
}

func (s *TaskArchiveStorage) ArchiveTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT OR REPLACE INTO archived_tasks (id, description, deadline, completed, created_at, modified_at, completed_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	st := task.State()
	deletedAt := st.DeletedAt
	if deletedAt.IsZero() {
		deletedAt = st.ModifiedAt
	}

	_, err := s.db.ExecContext(ctx, query,
		st.ID,
		st.Description,
		nullTime(st.Deadline),
		st.Completed,
		dbTime(st.CreatedAt),
		dbTime(st.ModifiedAt),
		nullTime(st.CompletedAt),
		dbTime(deletedAt),
	)
	if err != nil {
		return fmt.Errorf("could not archive task: %w", err)
	}
	return nil
}

// ListArchived returns the most recently deleted tasks first. Limit <= 0 means all.
func (s *TaskArchiveStorage) ListArchived(ctx context.Context, limit int) ([]model.TaskState, error) {
	query := `
		SELECT id, description, deadline, completed, created_at, modified_at, completed_at, deleted_at
		FROM archived_tasks
		ORDER BY deleted_at DESC, id ASC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list archived tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.TaskState
	for rows.Next() {
		var st model.TaskState
		var deadline, completedAt sql.NullTime

		err := rows.Scan(
			&st.ID,
			&st.Description,
			&deadline,
			&st.Completed,
			&st.CreatedAt,
			&st.ModifiedAt,
			&completedAt,
			&st.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan archived task: %w", err)
		}

		if deadline.Valid {
			st.Deadline = deadline.Time
		}
		if completedAt.Valid {
			st.CompletedAt = completedAt.Time
		}

		tasks = append(tasks, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate archived tasks: %w", err)
	}

	return tasks, nil
}

func (s *TaskArchiveStorage) CountArchived(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM archived_tasks`
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("could not count archived tasks: %w", err)
	}
	return count, nil
}

// dbTime drops the monotonic reading and stores UTC, so deleted_at sorts as text.
func dbTime(t time.Time) time.Time {
	return t.Round(0).UTC()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dbTime(t), Valid: true}
}
