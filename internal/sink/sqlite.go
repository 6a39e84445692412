package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"eventsim/internal/eventlog"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	insert_id   TEXT PRIMARY KEY,
	event       TEXT NOT NULL,
	distinct_id TEXT NOT NULL,
	time        TEXT NOT NULL,
	properties  TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_user ON events(distinct_id);
CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);

CREATE TABLE IF NOT EXISTS users (
	distinct_id TEXT PRIMARY KEY,
	properties  TEXT
);
`

// WriteSQLite replaces the database at path with the given events and users.
// User records are keyed by their distinct_id field; the remaining fields are
// stored as JSON.
func WriteSQLite(ctx context.Context, path string, events []eventlog.Event, users []map[string]any) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	evStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO events (insert_id, event, distinct_id, time, properties) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer evStmt.Close()

	for _, e := range events {
		props, err := json.Marshal(e.Properties)
		if err != nil {
			return fmt.Errorf("failed to marshal properties of %s: %w", e.InsertID, err)
		}
		if _, err := evStmt.ExecContext(ctx, e.InsertID, e.Event, e.DistinctID, e.Time, string(props)); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.InsertID, err)
		}
	}

	userStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO users (distinct_id, properties) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare user insert: %w", err)
	}
	defer userStmt.Close()

	for _, u := range users {
		id, _ := u[eventlog.FieldDistinctID].(string)
		if id == "" {
			return fmt.Errorf("user record without %s", eventlog.FieldDistinctID)
		}
		rest := make(map[string]any, len(u))
		for k, v := range u {
			if k != eventlog.FieldDistinctID {
				rest[k] = v
			}
		}
		props, err := json.Marshal(rest)
		if err != nil {
			return fmt.Errorf("failed to marshal user %s: %w", id, err)
		}
		if _, err := userStmt.ExecContext(ctx, id, string(props)); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
