package db

import (
	"database/sql"
	"fmt"

	"github.com/dori/nightlist/internal/model"
)

// TaskBackend stores the task list in the tasks table.
// It satisfies store.Backend.
type TaskBackend struct {
	db *DB
}

// NewTaskBackend returns a task backend over db
func NewTaskBackend(db *DB) *TaskBackend {
	return &TaskBackend{db: db}
}

// Location returns the database path
func (b *TaskBackend) Location() string {
	return b.db.Path()
}

// Load returns all tasks in list order
func (b *TaskBackend) Load() ([]model.Task, error) {
	rows, err := b.db.Query(`SELECT text, completed FROM tasks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		var completed int
		if err := rows.Scan(&t.Text, &completed); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Save replaces the table contents with tasks in one transaction
func (b *TaskBackend) Save(tasks []model.Task) error {
	return b.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO tasks (position, text, completed) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range tasks {
			completed := 0
			if t.Completed {
				completed = 1
			}
			if _, err := stmt.Exec(i, t.Text, completed); err != nil {
				return fmt.Errorf("failed to insert task %d: %w", i, err)
			}
		}
		return nil
	})
}
