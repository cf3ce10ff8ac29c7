package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cristianoliveira/flightdeck/internal/api"
	"github.com/cristianoliveira/flightdeck/internal/config"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/cristianoliveira/flightdeck/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flightServer is a minimal flight service. Updates are accepted only with the admin token.
type flightServer struct {
	mu          sync.Mutex
	auth        []string
	status      map[string]string
	rejectLogin bool
}

func (s *flightServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/users/login":
		s.mu.Lock()
		reject := s.rejectLogin
		s.mu.Unlock()
		if reject {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"admin-token","role":"admin"}}`))
	case "/api/flights":
		if r.URL.Query().Get("status") != "" {
			_, _ = w.Write([]byte(`{"success":true,"data":{"flights":[],"pagination":{"totalFlights":0,"totalPages":0,"currentPage":1}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"flights":[{"flightNumber":"PK-101","status":"Delayed"}],"pagination":{"totalFlights":1,"totalPages":1,"currentPage":1}}}`))
	case "/api/flights/update":
		if r.Header.Get("Authorization") != "Bearer admin-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Unauthorized"}`))
			return
		}
		var body api.StatusUpdate
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.status[body.FlightNumber] = body.Status
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true,"message":"Flight status updated"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T) (*appClient, *flightServer) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))

	fs := &flightServer{status: map[string]string{}}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)

	config.Load()
	config.Set("api_base_url", srv.URL+"/api")

	c := &appClient{}
	t.Cleanup(func() { _ = c.Close() })
	return c, fs
}

func TestAppClientListFlights(t *testing.T) {
	c, _ := newTestClient(t)

	v, err := c.ListFlights(context.Background(), livequery.DefaultFilter(10))
	require.NoError(t, err)
	require.Len(t, v.Result.Flights, 1)
	assert.Equal(t, "PK-101", v.Result.Flights[0].FlightNumber)
	assert.False(t, v.State.Loading)
}

func TestAppClientLoginPersistsSessionForUpdates(t *testing.T) {
	c, fs := newTestClient(t)
	ctx := context.Background()

	_, err := c.SetStatus(ctx, "PK-101", domain.StatusCancelled)
	require.ErrorIs(t, err, workflow.ErrForbidden)

	res, err := c.Login(ctx, api.Credentials{Email: "ops@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.Role)

	s, err := c.Session()
	require.NoError(t, err)
	assert.Equal(t, "admin-token", s.Credential)

	st, err := c.SetStatus(ctx, "PK-101", domain.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, "Flight status updated", st.Message)
	assert.Equal(t, domain.StatusCancelled, fs.status["PK-101"])

	require.NoError(t, c.SignOut())
	s, err = c.Session()
	require.NoError(t, err)
	assert.False(t, s.HasCredential())
}

func TestAppClientLoginClearsPreviousError(t *testing.T) {
	c, fs := newTestClient(t)
	ctx := context.Background()
	creds := api.Credentials{Email: "ops@example.com", Password: "pw"}

	fs.rejectLogin = true
	_, err := c.Login(ctx, creds)
	require.Error(t, err)
	assert.NotEmpty(t, c.auth.State().Error)

	fs.mu.Lock()
	fs.rejectLogin = false
	fs.mu.Unlock()
	_, err = c.Login(ctx, creds)
	require.NoError(t, err)
	assert.Empty(t, c.auth.State().Error)
}

func TestAppClientInvalidBaseURL(t *testing.T) {
	c, _ := newTestClient(t)
	config.Set("api_base_url", "not a url")

	_, err := c.ListFlights(context.Background(), livequery.DefaultFilter(10))
	require.Error(t, err)
}

func TestAppClientVersion(t *testing.T) {
	assert.NotEmpty(t, (&appClient{}).Version())
}
