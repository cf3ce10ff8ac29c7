package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cristianoliveira/flightdeck/internal/logging"
	_ "modernc.org/sqlite"
)

const sessionSchemaSQL = `
CREATE TABLE IF NOT EXISTS session_values (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);`

// SQLiteStore keeps the session as key/value rows in a SQLite database.
type SQLiteStore struct {
	mu  sync.Mutex
	db  *sql.DB
	log logging.Logger
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
func NewSQLiteStore(dbPath string, log logging.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite session: db path cannot be empty")
	}
	if log == nil {
		log = logging.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite session: create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite session: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite session: set busy timeout: %w", err)
	}
	if _, err := db.Exec(sessionSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite session: create schema: %w", err)
	}
	if err := os.Chmod(dbPath, 0o600); err != nil {
		log.Warn("restrict session db permissions", "path", dbPath, "error", err)
	}
	return &SQLiteStore{db: db, log: log}, nil
}

// Close closes the underlying SQLite connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Get() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT key, value FROM session_values WHERE key IN (?, ?)`, KeyAccessToken, KeyRole)
	if err != nil {
		s.log.Warn("read session", "error", err)
		return Session{}
	}
	defer rows.Close()

	var out Session
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			s.log.Warn("scan session row", "error", err)
			return Session{}
		}
		switch key {
		case KeyAccessToken:
			out.Credential = value
		case KeyRole:
			out.Role = value
		}
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("iterate session rows", "error", err)
		return Session{}
	}
	return out
}

func (s *SQLiteStore) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(map[string]string{KeyAccessToken: sess.Credential, KeyRole: sess.Role}); err != nil {
		s.log.Error("write session", "error", err)
		return
	}
	s.log.Debug("session saved", "role", sess.Role, "has_credential", sess.HasCredential())
}

// write upserts non-empty values and deletes keys whose value is empty, in one transaction.
func (s *SQLiteStore) write(values map[string]string) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		if value == "" {
			if _, err := tx.ExecContext(ctx, `DELETE FROM session_values WHERE key = ?`, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			continue
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO session_values (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value,
	updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`, key, value)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM session_values`); err != nil {
		s.log.Error("clear session", "error", err)
		return
	}
	s.log.Debug("session cleared")
}
