package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	assert.Equal(t, Session{}, s.Get(), "fresh store is empty")

	s.Set(Session{Credential: "tok-1", Role: "admin"})
	got := s.Get()
	assert.Equal(t, "tok-1", got.Credential)
	assert.Equal(t, "admin", got.Role)
	assert.True(t, got.HasCredential())

	s.Set(Session{Credential: "tok-1", Role: ""})
	assert.Equal(t, Session{Credential: "tok-1"}, s.Get(), "empty role is absent")

	s.Clear()
	assert.Equal(t, Session{}, s.Get())
	assert.False(t, s.Get().HasCredential())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.toml")
	exerciseStore(t, NewFileStore(path, nil))
}

func TestFileStorePermissionsAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	NewFileStore(path, nil).Set(Session{Credential: "tok-2", Role: "user"})

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "accessToken")
	assert.Contains(t, string(data), "role")

	reopened := NewFileStore(path, nil)
	assert.Equal(t, Session{Credential: "tok-2", Role: "user"}, reopened.Get())
}

func TestFileStoreCorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0o600))

	assert.Equal(t, Session{}, NewFileStore(path, nil).Get())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	s.Set(Session{Credential: "tok-3", Role: "admin"})
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, Session{Credential: "tok-3", Role: "admin"}, reopened.Get())
}

func TestNewSQLiteStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("  ", nil)
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(Session{}))

	seeded := NewMemoryStore(Session{Credential: "seed", Role: "user"})
	assert.Equal(t, "seed", seeded.Get().Credential)
}

func TestUnavailableStoreIsNoop(t *testing.T) {
	s := Unavailable()
	s.Set(Session{Credential: "tok", Role: "admin"})
	assert.Equal(t, Session{}, s.Get())
	s.Clear()
	assert.NoError(t, Close(s))
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	fileStore := Open(Options{Backend: BackendFile, StateDir: dir})
	require.IsType(t, &FileStore{}, fileStore)
	assert.Equal(t, filepath.Join(dir, "session.toml"), fileStore.(*FileStore).Path())

	sqliteStore := Open(Options{Backend: BackendSQLite, StateDir: dir})
	require.IsType(t, &SQLiteStore{}, sqliteStore)
	assert.NoError(t, Close(sqliteStore))

	assert.IsType(t, &FileStore{}, Open(Options{Backend: "unknown", StateDir: dir}))
}

func TestOpenFallsBackToUnavailable(t *testing.T) {
	assert.Equal(t, Unavailable(), Open(Options{}))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	assert.Equal(t, Unavailable(), Open(Options{StateDir: filepath.Join(blocker, "state")}))
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := signed(t, jwt.MapClaims{
		"sub":   "u-1",
		"id":    "65f0c",
		"email": "ops@example.com",
		"role":  "admin",
		"exp":   exp.Unix(),
		"iat":   exp.Add(-time.Hour).Unix(),
	})

	c, ok := ParseClaims(tok)
	require.True(t, ok)
	assert.Equal(t, "u-1", c.Subject)
	assert.Equal(t, "65f0c", c.UserID)
	assert.Equal(t, "ops@example.com", c.Email)
	assert.Equal(t, "admin", c.Role)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(exp.Add(-time.Minute)))
	assert.True(t, c.Expired(exp))
}

func TestParseClaimsOpaqueCredential(t *testing.T) {
	_, ok := ParseClaims("")
	assert.False(t, ok)
	_, ok = ParseClaims("opaque-token")
	assert.False(t, ok)
}

func TestClaimsWithoutExpiryNeverExpire(t *testing.T) {
	c, ok := ParseClaims(signed(t, jwt.MapClaims{"role": "user"}))
	require.True(t, ok)
	assert.False(t, c.Expired(time.Now()))
}
