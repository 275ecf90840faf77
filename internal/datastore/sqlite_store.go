package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/models"
)

// SQLiteStateStore persists per-URL check state in a local SQLite database.
// Every Put is a single-statement upsert, so records are atomic per URL.
type SQLiteStateStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// DefaultDBPath returns the default state database location under the
// user's XDG data directory.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "site-differ", "state.db")
}

// NewSQLiteStateStore opens (creating if necessary) the state database at
// the configured path, or at DefaultDBPath when no path is configured, and
// ensures the schema exists.
func NewSQLiteStateStore(cfg config.StorageConfig, logger zerolog.Logger) (*SQLiteStateStore, error) {
	dbPath := cfg.SQLiteDBPath
	if dbPath == "" {
		dbPath = DefaultDBPath()
	}

	componentLogger := logger.With().Str("component", "SQLiteStateStore").Logger()
	componentLogger.Info().Str("db_path", dbPath).Msg("Initializing state database connection")

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		componentLogger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create state database directory")
		return nil, fmt.Errorf("failed to create state database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dbPath)
	if err != nil {
		componentLogger.Error().Err(err).Str("db_path", dbPath).Msg("Failed to open state database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dbPath, err)
	}

	store := &SQLiteStateStore{
		db:     dbInstance,
		logger: componentLogger,
	}

	if err := store.initSchema(); err != nil {
		_ = store.Close()
		componentLogger.Error().Err(err).Msg("Failed to initialize database schema")
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the url_states table if it doesn't already exist.
func (s *SQLiteStateStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS url_states (
		url TEXT PRIMARY KEY,
		last_fingerprint TEXT NOT NULL DEFAULT '',
		normalized_text TEXT NOT NULL DEFAULT '',
		etag TEXT NOT NULL DEFAULT '',
		last_modified TEXT NOT NULL DEFAULT '',
		last_checked_at DATETIME,
		last_changed_at DATETIME,
		last_notified_at DATETIME,
		consecutive_failures INTEGER NOT NULL DEFAULT 0,
		last_error TEXT NOT NULL DEFAULT ''
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	s.logger.Debug().Msg("Schema initialized (url_states table ensured)")
	return nil
}

// Get returns the stored state for a URL. The bool reports whether a record
// exists; a missing record is not an error.
func (s *SQLiteStateStore) Get(ctx context.Context, url string) (models.URLState, bool, error) {
	query := `SELECT url, last_fingerprint, normalized_text, etag, last_modified,
		last_checked_at, last_changed_at, last_notified_at, consecutive_failures, last_error
		FROM url_states WHERE url = ?`

	var state models.URLState
	var lastCheckedAt, lastChangedAt, lastNotifiedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, url).Scan(
		&state.URL,
		&state.LastFingerprint,
		&state.NormalizedText,
		&state.ETag,
		&state.LastModified,
		&lastCheckedAt,
		&lastChangedAt,
		&lastNotifiedAt,
		&state.ConsecutiveFailures,
		&state.LastError,
	)
	if err == sql.ErrNoRows {
		return models.URLState{URL: url}, false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("url", url).Msg("Failed to query URL state")
		return models.URLState{}, false, fmt.Errorf("failed to query state for %s: %w", url, err)
	}

	if lastCheckedAt.Valid {
		state.LastCheckedAt = lastCheckedAt.Time.UTC()
	}
	if lastChangedAt.Valid {
		state.LastChangedAt = lastChangedAt.Time.UTC()
	}
	if lastNotifiedAt.Valid {
		state.LastNotifiedAt = lastNotifiedAt.Time.UTC()
	}

	return state, true, nil
}

// Put upserts the record keyed by state.URL.
func (s *SQLiteStateStore) Put(ctx context.Context, state models.URLState) error {
	query := `INSERT INTO url_states (url, last_fingerprint, normalized_text, etag, last_modified,
		last_checked_at, last_changed_at, last_notified_at, consecutive_failures, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			last_fingerprint = excluded.last_fingerprint,
			normalized_text = excluded.normalized_text,
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			last_checked_at = excluded.last_checked_at,
			last_changed_at = excluded.last_changed_at,
			last_notified_at = excluded.last_notified_at,
			consecutive_failures = excluded.consecutive_failures,
			last_error = excluded.last_error`

	_, err := s.db.ExecContext(ctx, query,
		state.URL,
		state.LastFingerprint,
		state.NormalizedText,
		state.ETag,
		state.LastModified,
		nullableTime(state.LastCheckedAt),
		nullableTime(state.LastChangedAt),
		nullableTime(state.LastNotifiedAt),
		state.ConsecutiveFailures,
		state.LastError,
	)
	if err != nil {
		s.logger.Error().Err(err).Str("url", state.URL).Msg("Failed to upsert URL state")
		return fmt.Errorf("failed to upsert state for %s: %w", state.URL, err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// nullableTime maps the zero time to NULL so absent timestamps round-trip.
func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
