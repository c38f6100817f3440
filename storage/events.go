// Package storage provides the persistent presence event store.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"                      // SQLite driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver

	"github.com/FlapTrack/flaptrack-go/models"
)

// timestampLayout is the stored timestamp format. Fixed-width UTC so that
// lexicographic comparison in SQL matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Config holds event store connection settings.
type Config struct {
	SQLitePath    string
	TursoDatabase string
	TursoToken    string
}

// EventStore wraps the events database. Single writer assumed: one ingestion
// path appends at a time; concurrent readers may observe the last fully
// committed snapshot.
type EventStore struct {
	Conn     *sql.DB
	UseTurso bool
}

// NewEventStore opens the event database, preferring Turso when credentials
// are configured and falling back to local SQLite.
func NewEventStore(config Config) (*EventStore, error) {
	var conn *sql.DB
	var err error
	var useTurso bool

	if config.TursoDatabase != "" && config.TursoToken != "" {
		connStr := config.TursoDatabase + "?authToken=" + config.TursoToken
		conn, err = sql.Open("libsql", connStr)
		if err == nil {
			if pingErr := conn.Ping(); pingErr == nil {
				useTurso = true
			} else {
				conn.Close()
				conn = nil
			}
		}
	}

	if conn == nil {
		dbDir := filepath.Dir(config.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}

		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
		useTurso = false
	}

	store := &EventStore{Conn: conn, UseTurso: useTurso}
	if err := store.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *EventStore) ensureSchema() error {
	// seq preserves insertion order so timestamp ties stay stable on read
	schema := `CREATE TABLE IF NOT EXISTS presence_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		direction TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		prey INTEGER NOT NULL DEFAULT 0,
		raw_text TEXT NOT NULL DEFAULT '',
		image_ref TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_presence_events_timestamp ON presence_events(timestamp);`

	if _, err := s.Conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create events schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *EventStore) Close() error {
	if s.Conn != nil {
		return s.Conn.Close()
	}
	return nil
}

// GetConnectionInfo returns a string describing the database connection.
func (s *EventStore) GetConnectionInfo() string {
	if s.UseTurso {
		return "Turso"
	}
	return "SQLite"
}

// LoadEvents returns the full event list, time-ascending with insertion-order
// tie break. A malformed stored timestamp fails the whole load; it is never
// coerced or dropped.
func (s *EventStore) LoadEvents() ([]models.PresenceEvent, error) {
	return s.queryEvents(
		`SELECT id, timestamp, direction, confidence, prey, raw_text, image_ref
		 FROM presence_events ORDER BY timestamp ASC, seq ASC`)
}

// GetEventsByDateRange returns events with start <= timestamp <= end, ordered
// like LoadEvents. Duplicate ids cannot occur; the id column is unique.
func (s *EventStore) GetEventsByDateRange(start, end time.Time) ([]models.PresenceEvent, error) {
	return s.queryEvents(
		`SELECT id, timestamp, direction, confidence, prey, raw_text, image_ref
		 FROM presence_events WHERE timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC, seq ASC`,
		start.UTC().Format(timestampLayout), end.UTC().Format(timestampLayout))
}

func (s *EventStore) queryEvents(query string, args ...any) ([]models.PresenceEvent, error) {
	rows, err := s.Conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.PresenceEvent
	for rows.Next() {
		var ev models.PresenceEvent
		var ts string
		var prey int
		if err := rows.Scan(&ev.ID, &ts, &ev.Direction, &ev.Confidence, &prey, &ev.RawText, &ev.ImageRef); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		parsed, err := time.Parse(timestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("unparsable timestamp for event %s: %w", ev.ID, err)
		}
		ev.Timestamp = parsed
		ev.Prey = prey != 0
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event row iteration failed: %w", err)
	}
	return events, nil
}

// AppendEvent inserts one new event at the end of the sequence.
func (s *EventStore) AppendEvent(ev models.PresenceEvent) error {
	_, err := s.Conn.Exec(
		`INSERT INTO presence_events (id, timestamp, direction, confidence, prey, raw_text, image_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Timestamp.UTC().Format(timestampLayout), string(ev.Direction),
		ev.Confidence, boolToInt(ev.Prey), ev.RawText, ev.ImageRef)
	if err != nil {
		return fmt.Errorf("failed to append event %s: %w", ev.ID, err)
	}
	return nil
}

// SaveEvents atomically replaces the whole stored event list with the given
// sequence, in order. Readers see either the prior snapshot or the new one.
func (s *EventStore) SaveEvents(events []models.PresenceEvent) error {
	tx, err := s.Conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM presence_events`); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO presence_events (id, timestamp, direction, confidence, prey, raw_text, image_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		_, err := stmt.Exec(ev.ID, ev.Timestamp.UTC().Format(timestampLayout), string(ev.Direction),
			ev.Confidence, boolToInt(ev.Prey), ev.RawText, ev.ImageRef)
		if err != nil {
			return fmt.Errorf("failed to insert event %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// ReplaceEvents overwrites the classification fields of existing events in a
// single transaction. Ids, timestamps and sequence positions stay untouched;
// this is the rescan correction path.
func (s *EventStore) ReplaceEvents(events []models.PresenceEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.Conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`UPDATE presence_events SET direction = ?, confidence = ?, prey = ?, raw_text = ?
		 WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		res, err := stmt.Exec(string(ev.Direction), ev.Confidence, boolToInt(ev.Prey), ev.RawText, ev.ID)
		if err != nil {
			return fmt.Errorf("failed to update event %s: %w", ev.ID, err)
		}
		affected, err := res.RowsAffected()
		if err == nil && affected == 0 {
			return fmt.Errorf("event %s not found for replace", ev.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
