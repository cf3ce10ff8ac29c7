package store

import (
	"context"
	"sync"

	"github.com/cristianoliveira/flightdeck/internal/api"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/cristianoliveira/flightdeck/internal/session"
)

// Fallback messages used when a failure carries no text of its own.
const (
	FallbackLogin    = "An error occurred while logging in"
	FallbackRegister = "An error occurred while signing up"
)

// AuthAPI is the part of the API the auth slice calls.
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error)
	Register(ctx context.Context, creds api.Credentials) (api.RegisterResult, error)
}

// AuthSlice tracks who is signed in. It is seeded from the session store and
// writes back to it when a login or registration succeeds.
type AuthSlice struct {
	mu         sync.RWMutex
	credential string
	role       string

	sessions  session.Store
	lifecycle *Lifecycle
	login     *Operation[api.Credentials, api.LoginResult]
	register  *Operation[api.Credentials, api.RegisterResult]
}

// NewAuthSlice returns an AuthSlice seeded from sessions.
func NewAuthSlice(client AuthAPI, sessions session.Store, log logging.Logger) *AuthSlice {
	if sessions == nil {
		sessions = session.Unavailable()
	}
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("component", "auth")

	seed := sessions.Get()
	a := &AuthSlice{
		credential: seed.Credential,
		role:       seed.Role,
		sessions:   sessions,
		lifecycle:  NewLifecycle(),
	}
	a.login = &Operation[api.Credentials, api.LoginResult]{
		Name:      "auth/login",
		Fallback:  FallbackLogin,
		Lifecycle: a.lifecycle,
		Call: func(ctx context.Context, c api.Credentials) (api.LoginResult, error) {
			return client.Login(ctx, c)
		},
		OnFulfilled: a.loggedIn,
		Log:         log,
	}
	a.register = &Operation[api.Credentials, api.RegisterResult]{
		Name:      "auth/register",
		Fallback:  FallbackRegister,
		Lifecycle: a.lifecycle,
		Call: func(ctx context.Context, c api.Credentials) (api.RegisterResult, error) {
			return client.Register(ctx, c)
		},
		OnFulfilled: a.registered,
		Log:         log,
	}
	return a
}

func (a *AuthSlice) loggedIn(res api.LoginResult) {
	a.mu.Lock()
	a.credential = res.Token
	a.role = res.Role
	a.mu.Unlock()
	a.sessions.Set(session.Session{Credential: res.Token, Role: res.Role})
}

// registered stores the role only; registration does not sign the user in.
func (a *AuthSlice) registered(res api.RegisterResult) {
	a.mu.Lock()
	a.role = res.User.Role
	a.mu.Unlock()
	current := a.sessions.Get()
	current.Role = res.User.Role
	a.sessions.Set(current)
}

// Login dispatches a login request.
func (a *AuthSlice) Login(ctx context.Context, creds api.Credentials) Outcome[api.LoginResult] {
	return a.login.Dispatch(ctx, creds)
}

// Register dispatches a registration request.
func (a *AuthSlice) Register(ctx context.Context, creds api.Credentials) Outcome[api.RegisterResult] {
	return a.register.Dispatch(ctx, creds)
}

// SignOut forgets the credential and role, in memory and in the session store.
func (a *AuthSlice) SignOut() {
	a.mu.Lock()
	a.credential = ""
	a.role = ""
	a.mu.Unlock()
	a.sessions.Clear()
}

// Credential returns the current bearer credential, or "".
func (a *AuthSlice) Credential() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.credential
}

// Role returns the current role, or "".
func (a *AuthSlice) Role() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.role
}

// SignedIn reports whether a credential is held.
func (a *AuthSlice) SignedIn() bool { return a.Credential() != "" }

// IsAdmin reports whether the current role may change flight status.
func (a *AuthSlice) IsAdmin() bool { return a.Role() == domain.RoleAdmin }

// State returns the lifecycle state.
func (a *AuthSlice) State() State { return a.lifecycle.Snapshot() }

// ResetError clears the last error.
func (a *AuthSlice) ResetError() { a.lifecycle.ResetError() }
