package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/pelletier/go-toml/v2"
)

type fileDocument struct {
	AccessToken string `toml:"accessToken,omitempty"`
	Role        string `toml:"role,omitempty"`
}

// FileStore keeps the session in a TOML document readable only by the owner.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  logging.Logger
}

// NewFileStore returns a FileStore backed by path. The file is created on first Set.
func NewFileStore(path string, log logging.Logger) *FileStore {
	if log == nil {
		log = logging.Nop()
	}
	return &FileStore{path: path, log: log}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get() Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Warn("read session file", "path", f.path, "error", err)
		}
		return Session{}
	}
	var doc fileDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		f.log.Warn("parse session file", "path", f.path, "error", err)
		return Session{}
	}
	return Session{Credential: doc.AccessToken, Role: doc.Role}
}

func (f *FileStore) Set(s Session) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := toml.Marshal(fileDocument{AccessToken: s.Credential, Role: s.Role})
	if err != nil {
		f.log.Error("encode session", "error", err)
		return
	}
	if err := writeFileAtomic(f.path, data); err != nil {
		f.log.Error("write session file", "path", f.path, "error", err)
		return
	}
	f.log.Debug("session saved", "role", s.Role, "has_credential", s.HasCredential())
}

func (f *FileStore) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.log.Error("remove session file", "path", f.path, "error", err)
		return
	}
	f.log.Debug("session cleared")
}

// writeFileAtomic writes data to a temp file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
