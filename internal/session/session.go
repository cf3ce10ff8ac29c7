// Package session persists the signed-in user's credential and role between runs.
//
// A Store never fails its caller: when the backing storage is unavailable the
// operations degrade to no-ops and problems are reported through the logger.
package session

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cristianoliveira/flightdeck/internal/logging"
)

// Persisted keys.
const (
	KeyAccessToken = "accessToken"
	KeyRole        = "role"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Session is the persisted sign-in state. Empty fields are absent.
type Session struct {
	Credential string
	Role       string
}

// HasCredential reports whether a credential is present.
func (s Session) HasCredential() bool {
	return s.Credential != ""
}

// Store persists a Session.
type Store interface {
	Get() Session
	Set(Session)
	Clear()
}

// Options selects and locates the persistent backend.
type Options struct {
	Backend  string
	StateDir string
	Logger   logging.Logger
}

// Open returns the configured Store. If the state directory cannot be used the
// returned store is Unavailable. The sqlite store implements io.Closer.
func Open(opts Options) Store {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("component", "session")

	if opts.StateDir == "" {
		log.Warn("no state directory; session will not persist")
		return Unavailable()
	}
	if err := os.MkdirAll(opts.StateDir, 0o700); err != nil {
		log.Warn("state directory unavailable; session will not persist", "dir", opts.StateDir, "error", err)
		return Unavailable()
	}

	switch opts.Backend {
	case BackendSQLite:
		store, err := NewSQLiteStore(filepath.Join(opts.StateDir, "session.db"), log)
		if err != nil {
			log.Warn("sqlite session store unavailable", "error", err)
			return Unavailable()
		}
		return store
	default:
		return NewFileStore(filepath.Join(opts.StateDir, "session.toml"), log)
	}
}

// Close releases the store's resources when it holds any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MemoryStore keeps the session in memory. Useful for tests and one-shot commands.
type MemoryStore struct {
	mu      sync.RWMutex
	session Session
}

// NewMemoryStore returns a MemoryStore seeded with initial.
func NewMemoryStore(initial Session) *MemoryStore {
	return &MemoryStore{session: initial}
}

func (m *MemoryStore) Get() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *MemoryStore) Set(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
}

type unavailableStore struct{}

// Unavailable returns a Store whose operations do nothing; Get returns the empty Session.
func Unavailable() Store { return unavailableStore{} }

func (unavailableStore) Get() Session { return Session{} }
func (unavailableStore) Set(Session)  {}
func (unavailableStore) Clear()       {}
