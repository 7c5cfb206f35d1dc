// Package transcript records serial session traffic in a local sqlite
// database for later inspection. Recording is opt-in; the console works
// without a store.
package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// Direction of a transcript entry relative to the host
type Direction string

const (
	DirectionTX     Direction = "tx"     // command sent to the device
	DirectionRX     Direction = "rx"     // response read from the device
	DirectionStatus Direction = "status" // lifecycle note (connected, dropped, ...)
)

// Session is one recorded serial session
type Session struct {
	ID        string
	Device    string
	BaudRate  int
	StartedAt time.Time
	EndedAt   *time.Time
}

// Entry is one line of recorded traffic
type Entry struct {
	SessionID string
	Seq       int64
	At        time.Time
	Direction Direction
	Payload   string
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the transcript database at path
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	device     TEXT NOT NULL,
	baud_rate  INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at   INTEGER
);
CREATE TABLE IF NOT EXISTS entries (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
	at         INTEGER NOT NULL,
	direction  TEXT NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_session_idx ON entries(session_id, seq);
`)
	if err != nil {
		return fmt.Errorf("migrate transcript schema: %w", err)
	}
	return nil
}

// BeginSession records the start of a session and returns its id
func (s *Store) BeginSession(ctx context.Context, device string, baudRate int) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions(session_id, device, baud_rate, started_at) VALUES (?, ?, ?, ?)
`, id, device, baudRate, ts(time.Now()))
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return id, nil
}

// EndSession stamps the session's end time; ending twice keeps the first stamp
func (s *Store) EndSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE sessions SET ended_at = ? WHERE session_id = ? AND ended_at IS NULL
`, ts(time.Now()), sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := s.session(ctx, sessionID); err != nil {
			return err
		}
	}
	return nil
}

// Append records one line of traffic
func (s *Store) Append(ctx context.Context, sessionID string, direction Direction, payload string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO entries(session_id, at, direction, payload) VALUES (?, ?, ?, ?)
`, sessionID, ts(time.Now()), string(direction), payload)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// Sessions lists recorded sessions, most recent first
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, device, baud_rate, started_at, ended_at
FROM sessions ORDER BY started_at DESC, session_id
`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess    Session
			started int64
			ended   sql.NullInt64
		)
		if err := rows.Scan(&sess.ID, &sess.Device, &sess.BaudRate, &started, &ended); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt = fromTS(started)
		if ended.Valid {
			t := fromTS(ended.Int64)
			sess.EndedAt = &t
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Entries returns a session's traffic in order; ErrNotFound for unknown ids
func (s *Store) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	if _, err := s.session(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT seq, at, direction, payload FROM entries WHERE session_id = ? ORDER BY seq
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry Entry
			at    int64
			dir   string
		)
		if err := rows.Scan(&entry.Seq, &at, &dir, &entry.Payload); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.SessionID = sessionID
		entry.At = fromTS(at)
		entry.Direction = Direction(dir)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) session(ctx context.Context, sessionID string) (Session, error) {
	var (
		sess    Session
		started int64
		ended   sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT session_id, device, baud_rate, started_at, ended_at FROM sessions WHERE session_id = ?
`, sessionID).Scan(&sess.ID, &sess.Device, &sess.BaudRate, &started, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	sess.StartedAt = fromTS(started)
	if ended.Valid {
		t := fromTS(ended.Int64)
		sess.EndedAt = &t
	}
	return sess, nil
}

// Timestamps stored as unix milliseconds
func ts(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromTS(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
