package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rohmanhakim/coffee-indicators/pkg/fileutil"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
)`

// SQLiteStore is a persistent ByteStore. Entries carry an absolute expiry
// timestamp in unix seconds; 0 marks an entry that never expires.
// Expired rows are invisible to reads and removed by DeleteExpired.
type SQLiteStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// OpenSQLiteStore opens (creating if needed) the database at path and ensures the schema.
func OpenSQLiteStore(ctx context.Context, path string, clock clockwork.Clock) (*SQLiteStore, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if err := fileutil.EnsureParentDir(path); err != nil {
		return nil, &CacheError{
			Message: err.Error(),
			Cause:   ErrCauseConnectFailure,
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &CacheError{
			Message: fmt.Sprintf("open %s: %v", path, err),
			Cause:   ErrCauseConnectFailure,
		}
	}
	// a single connection keeps ":memory:" databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, &CacheError{
			Message: fmt.Sprintf("create schema in %s: %v", path, err),
			Cause:   ErrCauseConnectFailure,
		}
	}
	return &SQLiteStore{db: db, clock: clock}, nil
}

func (s *SQLiteStore) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	now := s.clock.Now().Unix()

	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM cache_entries WHERE key = ? AND (expires_at = 0 OR expires_at > ?)",
		key, now,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, readError(key, err)
	}
	return data, true, nil
}

func (s *SQLiteStore) SetBytes(ctx context.Context, key string, data []byte, ttlSeconds uint64) error {
	var expiresAt int64
	if ttlSeconds > 0 {
		expiresAt = s.clock.Now().Unix() + int64(min(ttlSeconds, MaxTTLSeconds))
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache_entries (key, data, expires_at) VALUES (?, ?, ?)",
		key, data, expiresAt,
	)
	if err != nil {
		return writeError(key, err)
	}
	return nil
}

// DeleteExpired removes all rows whose expiry has passed.
// Returns the number of rows deleted.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	now := s.clock.Now().Unix()

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at != 0 AND expires_at <= ?",
		now,
	)
	if err != nil {
		return 0, writeError("", fmt.Errorf("delete expired: %w", err))
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, writeError("", fmt.Errorf("rows affected: %w", err))
	}
	return deleted, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
