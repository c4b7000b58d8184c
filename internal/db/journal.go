package db

import (
	"time"

	"github.com/dori/nightlist/internal/model"
	"github.com/google/uuid"
)

// Record appends an event to the activity journal.
// DB satisfies store.Journal.
func (db *DB) Record(kind model.EventKind, text string) error {
	_, err := db.Exec(`
		INSERT INTO events (id, kind, text, created_at) VALUES (?, ?, ?, ?)
	`, uuid.New().String(), string(kind), text, time.Now())
	return err
}

// RecentEvents returns up to limit events, newest first.
// The table is append-only so rowid follows insertion order.
func (db *DB) RecentEvents(limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT id, kind, text, created_at
		FROM events
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Text, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = model.EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns how many events of each kind were recorded
func (db *DB) CountEvents() (map[model.EventKind]int, error) {
	rows, err := db.Query(`SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[model.EventKind(kind)] = n
	}
	return counts, rows.Err()
}
