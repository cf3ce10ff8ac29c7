package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cristianoliveira/flightdeck/internal/api"
	"github.com/cristianoliveira/flightdeck/internal/config"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/gateway"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/cristianoliveira/flightdeck/internal/push"
	"github.com/cristianoliveira/flightdeck/internal/session"
	"github.com/cristianoliveira/flightdeck/internal/settings"
	"github.com/cristianoliveira/flightdeck/internal/store"
	"github.com/cristianoliveira/flightdeck/internal/tui/app"
	"github.com/cristianoliveira/flightdeck/internal/version"
	"github.com/cristianoliveira/flightdeck/internal/workflow"
)

// appClient builds the component graph from configuration on first use, after
// setup has loaded config and flags.
type appClient struct {
	once sync.Once
	err  error

	log      logging.Logger
	sessions session.Store
	gateway  *gateway.Gateway
	auth     *store.AuthSlice
	flights  *store.FlightSlice
}

var coreClient = &appClient{}

func (c *appClient) init() error {
	c.once.Do(func() {
		c.log = logging.GetGlobal()
		c.sessions = session.Open(session.Options{
			Backend:  config.Get("session_backend", session.BackendFile),
			StateDir: config.Get("state_dir", ""),
			Logger:   c.log,
		})
		c.gateway = gateway.New(c.sessions, gateway.WithLogger(c.log))
		if err := c.gateway.Configure(config.Get("api_base_url", "")); err != nil {
			c.err = err
			return
		}
		client := api.New(c.gateway)
		c.auth = store.NewAuthSlice(client, c.sessions, c.log)
		c.flights = store.NewFlightSlice(client, c.log)
	})
	return c.err
}

func (c *appClient) Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
	if err := c.init(); err != nil {
		return api.LoginResult{}, err
	}
	c.auth.ResetError()
	out := c.auth.Login(ctx, creds)
	if !out.Fulfilled() {
		return api.LoginResult{}, errors.New(out.Message)
	}
	return out.Value, nil
}

func (c *appClient) Register(ctx context.Context, creds api.Credentials) (api.RegisterResult, error) {
	if err := c.init(); err != nil {
		return api.RegisterResult{}, err
	}
	c.auth.ResetError()
	out := c.auth.Register(ctx, creds)
	if !out.Fulfilled() {
		return api.RegisterResult{}, errors.New(out.Message)
	}
	return out.Value, nil
}

func (c *appClient) SignOut() error {
	if err := c.init(); err != nil {
		return err
	}
	c.auth.SignOut()
	return nil
}

func (c *appClient) Session() (session.Session, error) {
	if err := c.init(); err != nil {
		return session.Session{}, err
	}
	return c.sessions.Get(), nil
}

// ListFlights runs one controller fetch for f.
func (c *appClient) ListFlights(ctx context.Context, f livequery.Filter) (livequery.View, error) {
	if err := c.init(); err != nil {
		return livequery.View{}, err
	}
	ctrl := livequery.New(c.flights, f, c.log)
	ctrl.Start().Run(ctx)
	v := ctrl.Snapshot()
	if v.State.Error != "" {
		return v, errors.New(v.State.Error)
	}
	return v, nil
}

// Watch fetches f, then refetches on every push frame until ctx ends or the
// push channel closes. onView sees every applied result.
func (c *appClient) Watch(ctx context.Context, f livequery.Filter, onView func(livequery.View)) error {
	if err := c.init(); err != nil {
		return err
	}
	ctrl := livequery.New(c.flights, f, c.log)
	ch, err := push.Dial(ctx, config.Get("push_url", ""), c.log)
	if err != nil {
		return fmt.Errorf("live updates unavailable: %w", err)
	}
	defer ch.Close()
	feed := app.NewFeed(ctx, ch, ctrl)

	apply := func(fetch *livequery.Fetch) {
		if fetch.Run(ctx) {
			onView(ctrl.Snapshot())
		}
	}
	apply(ctrl.Start())
	for {
		select {
		case fetch := <-feed.Fetches():
			apply(fetch)
		case <-feed.Done():
			return feed.Err()
		case <-ctx.Done():
			return nil
		}
	}
}

// SetStatus runs the status workflow for one flight.
func (c *appClient) SetStatus(ctx context.Context, flightNumber, status string) (workflow.State, error) {
	if err := c.init(); err != nil {
		return workflow.State{}, err
	}
	editor := workflow.NewEditor(c.flights, c.auth.Role, c.log)
	if err := editor.Open(domain.Flight{FlightNumber: flightNumber}); err != nil {
		return editor.State(), err
	}
	if err := editor.ChangeDraftStatus(status); err != nil {
		return editor.State(), err
	}
	st, err := editor.Submit(ctx)
	if err != nil {
		return st, err
	}
	if st.Phase != workflow.Closed {
		return st, errors.New(st.Error)
	}
	return st, nil
}

// RunTUI runs the dashboard. signedOut reports that the user signed out from it.
func (c *appClient) RunTUI(ctx context.Context) (signedOut bool, err error) {
	if err := c.init(); err != nil {
		return false, err
	}
	flights := c.flights
	prefsPath := settings.Path()
	initial := livequery.DefaultFilter(config.GetInt("default_page_size", 10))
	if prefsPath != "" {
		if prefs, err := settings.Load(prefsPath); err != nil {
			c.log.Warn("ignoring dashboard settings", "path", prefsPath, "error", err)
		} else {
			initial = prefs.Filter()
		}
	}
	ctrl := livequery.New(flights, initial, c.log)

	tui := app.NewDefaultClient(app.Options{
		Controller: ctrl,
		Auth:       c.auth,
		Editor:     workflow.NewEditor(flights, c.auth.Role, c.log),
		PushURL:    config.Get("push_url", ""),
		Logger:     c.log,
	})
	model, err := tui.CreateModel(ctx)
	if err != nil {
		return false, err
	}
	if err := tui.RunProgram(model); err != nil {
		return false, err
	}
	if prefsPath != "" {
		if err := settings.Save(prefsPath, settings.FromFilter(ctrl.Filter())); err != nil {
			c.log.Warn("dashboard settings not saved", "path", prefsPath, "error", err)
		}
	}
	return model.SignedOut(), nil
}

func (c *appClient) Version() string {
	return version.String()
}

// Close releases the session store.
func (c *appClient) Close() error {
	if c.sessions == nil {
		return nil
	}
	return session.Close(c.sessions)
}
