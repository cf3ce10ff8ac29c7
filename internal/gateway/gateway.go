// Package gateway is the single HTTP entry point to the flights API.
//
// Every request goes through a credential interceptor that reads the session
// store at dispatch time, so a sign-in or sign-out is picked up by the next
// request without reconfiguring anything.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/cristianoliveira/flightdeck/internal/session"
	"github.com/google/uuid"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// ErrNotConfigured is returned by Do before Configure has succeeded.
var ErrNotConfigured = errors.New("gateway: base url not configured")

// CredentialSource supplies the session read before each request.
type CredentialSource interface {
	Get() session.Session
}

// HTTPError is a response the server answered with a non-2xx status.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithTransport sets the transport the interceptor wraps. Defaults to http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(g *Gateway) { g.base = rt }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// Gateway issues JSON requests against a configurable base URL.
type Gateway struct {
	mu      sync.RWMutex
	baseURL *url.URL
	client  *http.Client
	base    http.RoundTripper
	creds   CredentialSource
	log     logging.Logger
}

// New returns an unconfigured Gateway reading credentials from creds.
func New(creds CredentialSource, opts ...Option) *Gateway {
	if creds == nil {
		creds = session.Unavailable()
	}
	g := &Gateway{creds: creds, log: logging.Nop(), base: http.DefaultTransport}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("component", "gateway")
	return g
}

// Configure sets the base URL. It may be called any number of times; the
// credential interceptor is installed on the first call only.
func (g *Gateway) Configure(baseURL string) error {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return fmt.Errorf("gateway: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gateway: base url %q must be absolute", baseURL)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.baseURL = u
	if g.client == nil {
		g.client = &http.Client{Transport: &credentialTransport{next: g.base, creds: g.creds}}
	}
	g.log.Debug("configured", "base_url", u.String())
	return nil
}

// BaseURL returns the configured base URL, or "" before Configure.
func (g *Gateway) BaseURL() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.baseURL == nil {
		return ""
	}
	return g.baseURL.String()
}

// Do sends method path?query with body encoded as JSON (when non-nil) and decodes
// a 2xx response into out (when non-nil). Non-2xx responses yield *HTTPError.
// Transport errors are returned unchanged. There are no retries.
func (g *Gateway) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	g.mu.RLock()
	base, client := g.baseURL, g.client
	g.mu.RUnlock()
	if base == nil || client == nil {
		return ErrNotConfigured
	}

	target := base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		g.log.Warn("request failed", "method", method, "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read response body: %w", err)
	}
	g.log.Debug("request settled",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID(resp),
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: raw}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

// requestID is the id the interceptor stamped on the request that produced resp.
func requestID(resp *http.Response) string {
	if resp.Request == nil {
		return ""
	}
	return resp.Request.Header.Get(HeaderRequestID)
}

// credentialTransport attaches the current credential and a request id.
type credentialTransport struct {
	next  http.RoundTripper
	creds CredentialSource
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get(HeaderRequestID) == "" {
		r.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if cred := t.creds.Get().Credential; cred != "" {
		r.Header.Set("Authorization", "Bearer "+cred)
	} else {
		r.Header.Del("Authorization")
	}
	return t.next.RoundTrip(r)
}
