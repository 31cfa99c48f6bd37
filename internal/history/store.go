// Package history keeps a local SQLite log of fetched transcripts.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver

	"tubetext/internal/domain"
	"tubetext/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_url TEXT NOT NULL,
	video_id TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	segment_count INTEGER NOT NULL DEFAULT 0,
	word_count INTEGER NOT NULL DEFAULT 0,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transcripts_created_at ON transcripts(created_at);
CREATE INDEX IF NOT EXISTS idx_transcripts_video_id ON transcripts(video_id);
`

const busyTimeout = 5 * time.Second

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("history store is closed")

// Store implements ports.History on SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the database file and its parent directory when missing.
// The special path ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("history: create directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
			path, busyTimeout.Milliseconds())
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open failed: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, entry ports.HistoryEntry) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO transcripts (video_url, video_id, mode, language, source, segment_count, word_count, elapsed_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.VideoURL, entry.VideoID, string(entry.Mode), entry.Language, entry.Source,
		entry.SegmentCount, entry.WordCount, entry.Elapsed.Milliseconds(), createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("history: save transcript: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]ports.HistoryEntry, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT video_url, video_id, mode, language, source, segment_count, word_count, elapsed_ms, created_at
	FROM transcripts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list transcripts: %w", err)
	}
	defer rows.Close()

	var entries []ports.HistoryEntry
	for rows.Next() {
		var (
			entry     ports.HistoryEntry
			mode      string
			elapsedMS int64
			createdAt int64
		)
		if err := rows.Scan(&entry.VideoURL, &entry.VideoID, &mode, &entry.Language, &entry.Source,
			&entry.SegmentCount, &entry.WordCount, &elapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan transcript: %w", err)
		}
		entry.Mode = domain.Mode(mode)
		entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		entry.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate transcripts: %w", err)
	}
	return entries, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
