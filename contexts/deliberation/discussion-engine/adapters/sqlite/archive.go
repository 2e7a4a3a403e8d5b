// Package sqlite provides the SQLite-backed cold-storage archive for
// finished discussion transcripts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"agora/contexts/deliberation/discussion-engine/ports"
)

// Store persists archived transcripts in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the archive database and ensures its schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping archive db: %w", err)
	}
	if err := ensureSchema(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure archive schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func ensureSchema(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS archived_sessions (
		  session_id  TEXT PRIMARY KEY,
		  title       TEXT NOT NULL,
		  turn_mode   TEXT NOT NULL,
		  entry_count INTEGER NOT NULL,
		  archived_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS archived_utterances (
		  session_id       TEXT NOT NULL,
		  seq              INTEGER NOT NULL,
		  turn_number      INTEGER NOT NULL,
		  round_number     INTEGER NOT NULL,
		  participant_id   TEXT NOT NULL,
		  participant_name TEXT NOT NULL,
		  content          TEXT NOT NULL,
		  interrupt        INTEGER NOT NULL,
		  created_at       INTEGER NOT NULL,
		  PRIMARY KEY (session_id, seq),
		  FOREIGN KEY (session_id) REFERENCES archived_sessions (session_id)
		);
	`)
	return err
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveArchivedTranscript writes the record atomically. Re-saving an already
// archived session is a no-op.
func (s *Store) SaveArchivedTranscript(ctx context.Context, record ports.ArchiveRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("archive storage is not configured")
	}
	if strings.TrimSpace(record.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO archived_sessions (session_id, title, turn_mode, entry_count, archived_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.SessionID,
		record.Title,
		record.TurnMode,
		len(record.Entries),
		toMillis(record.ArchivedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("insert archived session: %w", err)
	}

	for seq, entry := range record.Entries {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO archived_utterances (
			   session_id, seq, turn_number, round_number,
			   participant_id, participant_name, content, interrupt, created_at
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.SessionID,
			seq,
			entry.TurnNumber,
			entry.RoundNumber,
			entry.ParticipantID,
			entry.ParticipantName,
			entry.Content,
			boolToInt(entry.Interrupt),
			toMillis(entry.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert archived utterance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// HasArchivedTranscript reports whether the session is already archived.
func (s *Store) HasArchivedTranscript(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("archive storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM archived_sessions WHERE session_id = ?`,
		sessionID,
	)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup archived session: %w", err)
	}
	return true, nil
}

// GetArchivedTranscript reads back one archived record.
func (s *Store) GetArchivedTranscript(ctx context.Context, sessionID string) (ports.ArchiveRecord, error) {
	if err := ctx.Err(); err != nil {
		return ports.ArchiveRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return ports.ArchiveRecord{}, fmt.Errorf("archive storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT session_id, title, turn_mode, archived_at
		   FROM archived_sessions
		  WHERE session_id = ?`,
		sessionID,
	)
	var record ports.ArchiveRecord
	var archivedAt int64
	if err := row.Scan(&record.SessionID, &record.Title, &record.TurnMode, &archivedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ArchiveRecord{}, fmt.Errorf("archived session %s not found", sessionID)
		}
		return ports.ArchiveRecord{}, fmt.Errorf("get archived session: %w", err)
	}
	record.ArchivedAt = fromMillis(archivedAt)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT turn_number, round_number, participant_id, participant_name,
		        content, interrupt, created_at
		   FROM archived_utterances
		  WHERE session_id = ?
		  ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return ports.ArchiveRecord{}, fmt.Errorf("list archived utterances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry ports.ArchiveEntry
		var interrupt int
		var createdAt int64
		if err := rows.Scan(
			&entry.TurnNumber,
			&entry.RoundNumber,
			&entry.ParticipantID,
			&entry.ParticipantName,
			&entry.Content,
			&interrupt,
			&createdAt,
		); err != nil {
			return ports.ArchiveRecord{}, fmt.Errorf("scan archived utterance: %w", err)
		}
		entry.Interrupt = interrupt != 0
		entry.CreatedAt = fromMillis(createdAt)
		record.Entries = append(record.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return ports.ArchiveRecord{}, fmt.Errorf("iterate archived utterances: %w", err)
	}
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
