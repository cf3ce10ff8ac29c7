package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/cristianoliveira/flightdeck/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

func recordingServer(t *testing.T, status int, response string) (*httptest.Server, *[]captured) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		reqs = append(reqs, captured{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestDoBeforeConfigure(t *testing.T) {
	g := New(session.NewMemoryStore(session.Session{}))
	err := g.Do(context.Background(), http.MethodGet, "/flights", nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestConfigureRejectsRelativeURL(t *testing.T) {
	g := New(nil)
	assert.Error(t, g.Configure("/api"))
	assert.Error(t, g.Configure("::bad"))
	assert.Empty(t, g.BaseURL())
}

func TestCredentialReadAtDispatch(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, `{}`)
	store := session.NewMemoryStore(session.Session{})
	g := New(store)
	require.NoError(t, g.Configure(srv.URL+"/api"))

	ctx := context.Background()
	require.NoError(t, g.Do(ctx, http.MethodGet, "/flights", nil, nil, nil))
	store.Set(session.Session{Credential: "tok-1", Role: "admin"})
	require.NoError(t, g.Do(ctx, http.MethodGet, "/flights", nil, nil, nil))
	store.Clear()
	require.NoError(t, g.Do(ctx, http.MethodGet, "/flights", nil, nil, nil))

	require.Len(t, *reqs, 3)
	assert.Empty(t, (*reqs)[0].header.Get("Authorization"))
	assert.Equal(t, "Bearer tok-1", (*reqs)[1].header.Get("Authorization"))
	assert.Empty(t, (*reqs)[2].header.Get("Authorization"))
	assert.Equal(t, "/api/flights", (*reqs)[1].path)
}

func TestConfigureIsIdempotent(t *testing.T) {
	first, firstReqs := recordingServer(t, http.StatusOK, `{}`)
	second, secondReqs := recordingServer(t, http.StatusOK, `{}`)
	g := New(session.NewMemoryStore(session.Session{Credential: "tok"}))

	require.NoError(t, g.Configure(first.URL))
	client := g.client
	require.NoError(t, g.Configure(second.URL+"/"))
	require.NoError(t, g.Configure(second.URL))

	assert.Same(t, client, g.client, "interceptor installed once")
	ct, ok := g.client.Transport.(*credentialTransport)
	require.True(t, ok)
	_, nested := ct.next.(*credentialTransport)
	assert.False(t, nested)

	require.NoError(t, g.Do(context.Background(), http.MethodGet, "/flights", nil, nil, nil))
	assert.Empty(t, *firstReqs)
	require.Len(t, *secondReqs, 1)
	assert.Equal(t, []string{"Bearer tok"}, (*secondReqs)[0].header.Values("Authorization"))
	assert.Equal(t, second.URL, g.BaseURL())
}

func TestDoEncodesQueryBodyAndDecodes(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, `{"success":true,"message":"ok"}`)
	g := New(nil)
	require.NoError(t, g.Configure(srv.URL))

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	body := map[string]string{"flightNumber": "PK-101", "status": "Cancelled"}
	q := url.Values{"page": {"2"}}
	require.NoError(t, g.Do(context.Background(), http.MethodPut, "/flights/update", q, body, &out))

	assert.True(t, out.Success)
	assert.Equal(t, "ok", out.Message)

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "2", req.query.Get("page"))
	assert.Equal(t, "application/json", req.header.Get("Content-Type"))
	assert.NotEmpty(t, req.header.Get(HeaderRequestID))
	var sent map[string]string
	require.NoError(t, json.Unmarshal(req.body, &sent))
	assert.Equal(t, body, sent)
}

func TestInterceptorStampsRequestID(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, ``)
	g := New(nil)
	require.NoError(t, g.Configure(srv.URL))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/flights", nil)
	require.NoError(t, err)
	resp, err := g.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, req.Header.Get(HeaderRequestID), "caller's request is not mutated")

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/flights", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "req-1")
	resp, err = g.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, *reqs, 2)
	assert.NotEmpty(t, (*reqs)[0].header.Get(HeaderRequestID))
	assert.Equal(t, []string{"req-1"}, (*reqs)[1].header.Values(HeaderRequestID))
}

func TestDoWithoutBodyHasNoContentType(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, ``)
	g := New(nil)
	require.NoError(t, g.Configure(srv.URL))

	require.NoError(t, g.Do(context.Background(), http.MethodGet, "/flights", nil, nil, nil))
	assert.Empty(t, (*reqs)[0].header.Get("Content-Type"))
}

func TestNon2xxReturnsHTTPError(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusNotFound, `{"success":false,"message":"not found"}`)
	g := New(nil)
	require.NoError(t, g.Configure(srv.URL))

	err := g.Do(context.Background(), http.MethodGet, "/flights", nil, nil, nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.JSONEq(t, `{"success":false,"message":"not found"}`, string(httpErr.Body))
	assert.Equal(t, "request failed with status code 404", err.Error())
}

func TestTransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection refused")
	g := New(nil, WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	})))
	require.NoError(t, g.Configure("http://flights.invalid"))

	err := g.Do(context.Background(), http.MethodGet, "/flights", nil, nil, nil)
	assert.ErrorIs(t, err, boom)
	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
