package transcriptcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vidscribe/internal/transcription"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump when the schema changes;
// stale databases are rejected rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible version.
var ErrSchemaMismatch = errors.New("transcript cache schema mismatch")

// Store persists transcripts keyed by media fingerprint, backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create cache schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read cache schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'vidscribe cache clear')",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// Get returns the cached transcript for a fingerprint and model size, or
// (nil, false) on a miss. Corrupt payloads count as misses.
func (s *Store) Get(ctx context.Context, fingerprint, modelSize string) (*transcription.Transcript, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM transcripts WHERE fingerprint = ? AND model_size = ?",
		fingerprint, modelSize,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}

	var transcript transcription.Transcript
	if err := json.Unmarshal([]byte(payload), &transcript); err != nil {
		// Treat corrupt rows as misses so the entry gets regenerated.
		_ = s.Delete(ctx, fingerprint)
		return nil, false, nil
	}
	return &transcript, true, nil
}

// Put stores or replaces the transcript for a fingerprint.
func (s *Store) Put(ctx context.Context, fingerprint, modelSize string, transcript *transcription.Transcript) error {
	if transcript == nil {
		return errors.New("cache put: nil transcript")
	}
	payload, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("cache put: encode transcript: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcripts (fingerprint, model_size, language, payload, created_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(fingerprint) DO UPDATE SET
             model_size = excluded.model_size,
             language = excluded.language,
             payload = excluded.payload,
             created_at = excluded.created_at`,
		fingerprint, modelSize, transcript.Language, string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (s *Store) Delete(ctx context.Context, fingerprint string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transcripts WHERE fingerprint = ?", fingerprint); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Clear removes every cached transcript.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transcripts")
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return n, nil
}

// Stats summarizes cache contents for CLI display.
type Stats struct {
	Entries   int64
	Languages map[string]int64
}

// Stats reports entry counts grouped by language.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Languages: map[string]int64{}}
	rows, err := s.db.QueryContext(ctx, "SELECT language, COUNT(1) FROM transcripts GROUP BY language")
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang string
		var count int64
		if err := rows.Scan(&lang, &count); err != nil {
			return Stats{}, fmt.Errorf("cache stats: %w", err)
		}
		stats.Languages[lang] = count
		stats.Entries += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}
