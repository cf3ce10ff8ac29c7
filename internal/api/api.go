// Package api maps the flights backend endpoints onto typed calls.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/gateway"
)

// ErrUnsuccessful marks a 2xx response whose body reports success:false.
// It is always joined with a *gateway.HTTPError carrying the body.
var ErrUnsuccessful = errors.New("server reported failure")

// Doer is the request primitive the client needs; *gateway.Gateway implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

// Client calls the flights API.
type Client struct {
	doer Doer
}

// New returns a Client sending requests through doer.
func New(doer Doer) *Client {
	return &Client{doer: doer}
}

// ListQuery is the server-side query for one page of flights.
// Empty categorical fields and an empty search are omitted.
type ListQuery struct {
	Search     string
	Status     string
	Airline    string
	FlightType string
	Page       int
	Limit      int
}

// Values encodes the query string. page and limit are always sent.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("search", q.Search)
	set("status", q.Status)
	set("airline", q.Airline)
	set("flightType", q.FlightType)
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	return v
}

// Credentials are the login and registration payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the data returned by a successful login.
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// RegisteredUser is the user returned by a successful registration.
type RegisteredUser struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterResult is the body of a successful registration.
type RegisterResult struct {
	User    RegisteredUser
	Message string
}

// StatusUpdate asks the server to change one flight's status.
type StatusUpdate struct {
	FlightNumber string `json:"flightNumber"`
	Status       string `json:"status"`
}

// envelope is the shape shared by every response body.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	User    json.RawMessage `json:"user"`
}

// call performs the request and rejects success:false bodies.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any) (envelope, error) {
	var raw json.RawMessage
	if err := c.doer.Do(ctx, method, path, query, body, &raw); err != nil {
		return envelope{}, err
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return envelope{}, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	if env.Success != nil && !*env.Success {
		return env, fmt.Errorf("%w: %w", ErrUnsuccessful, &gateway.HTTPError{Status: http.StatusOK, Body: raw})
	}
	return env, nil
}

// ListFlights fetches one page of flights.
func (c *Client) ListFlights(ctx context.Context, q ListQuery) (domain.ListResult, error) {
	env, err := c.call(ctx, http.MethodGet, "/flights", q.Values(), nil)
	if err != nil {
		return domain.ListResult{}, err
	}
	result := domain.EmptyListResult()
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return domain.ListResult{}, fmt.Errorf("decode flights: %w", err)
		}
	}
	if result.Flights == nil {
		result.Flights = []domain.Flight{}
	}
	return result, nil
}

// UpdateFlightStatus changes a flight's status and returns the server message.
func (c *Client) UpdateFlightStatus(ctx context.Context, u StatusUpdate) (string, error) {
	env, err := c.call(ctx, http.MethodPut, "/flights/update", nil, u)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Login exchanges credentials for a bearer token and role.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	env, err := c.call(ctx, http.MethodPost, "/users/login", nil, creds)
	if err != nil {
		return LoginResult{}, err
	}
	var res LoginResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &res); err != nil {
			return LoginResult{}, fmt.Errorf("decode login: %w", err)
		}
	}
	return res, nil
}

// Register creates an account. The server does not sign the user in.
func (c *Client) Register(ctx context.Context, creds Credentials) (RegisterResult, error) {
	env, err := c.call(ctx, http.MethodPost, "/users/register", nil, creds)
	if err != nil {
		return RegisterResult{}, err
	}
	res := RegisterResult{Message: env.Message}
	if len(env.User) > 0 {
		if err := json.Unmarshal(env.User, &res.User); err != nil {
			return RegisterResult{}, fmt.Errorf("decode registered user: %w", err)
		}
	}
	return res, nil
}
