package app

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/cristianoliveira/flightdeck/internal/push"
	"github.com/cristianoliveira/flightdeck/internal/store"
	"github.com/cristianoliveira/flightdeck/internal/tui/state"
	"github.com/cristianoliveira/flightdeck/internal/workflow"
)

// DialFunc opens the push channel.
type DialFunc func(ctx context.Context, url string, log logging.Logger) (*push.Channel, error)

// Client defines dependencies needed by the tui command.
type Client interface {
	CreateModel(ctx context.Context) (*state.Model, error)
	RunProgram(model *state.Model) error
}

// Options are the components the dashboard is built from.
type Options struct {
	Controller *livequery.Controller
	Auth       *store.AuthSlice
	Editor     *workflow.Editor
	PushURL    string
	Logger     logging.Logger
	Runner     ProgramRunner
	Dial       DialFunc
}

// DefaultClient builds the dashboard and runs it with a ProgramRunner.
type DefaultClient struct {
	opts Options

	// teardown ends the live feed started by CreateModel.
	teardown func()
}

// NewDefaultClient creates a default TUI client.
// A nil Runner uses DefaultProgramRunner and a nil Dial uses push.Dial.
func NewDefaultClient(opts Options) *DefaultClient {
	if opts.Runner == nil {
		opts.Runner = NewDefaultProgramRunner()
	}
	if opts.Dial == nil {
		opts.Dial = push.Dial
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &DefaultClient{opts: opts}
}

// CreateModel connects the push channel, once, and builds the model.
// Without a push connection the dashboard still works and shows offline.
func (d *DefaultClient) CreateModel(ctx context.Context) (*state.Model, error) {
	if d.opts.Controller == nil || d.opts.Auth == nil || d.opts.Editor == nil {
		return nil, fmt.Errorf("tui: controller, auth and editor are required")
	}
	deps := state.Deps{
		Controller: d.opts.Controller,
		Auth:       d.opts.Auth,
		Editor:     d.opts.Editor,
		Logger:     d.opts.Logger,
	}
	if d.opts.PushURL != "" {
		ch, err := d.opts.Dial(ctx, d.opts.PushURL, d.opts.Logger)
		if err != nil {
			d.opts.Logger.Warn("live updates unavailable", "error", err)
		} else {
			liveCtx, cancel := context.WithCancel(ctx)
			deps.Live = NewFeed(liveCtx, ch, d.opts.Controller)
			d.teardown = func() {
				cancel()
				if err := ch.Close(); err != nil {
					d.opts.Logger.Debug("closing push channel", "error", err)
				}
			}
		}
	}
	return state.NewModel(ctx, deps), nil
}

// RunProgram starts the bubbletea program using the configured ProgramRunner.
// The push channel is closed when the program exits, however it exits.
func (d *DefaultClient) RunProgram(model *state.Model) error {
	defer d.Close()
	if _, err := d.opts.Runner.Run(model); err != nil {
		colors.Error(fmt.Sprintf("Error running TUI: %v", err))
		return err
	}
	return nil
}

// Close ends the live feed, if any. Safe to call more than once.
func (d *DefaultClient) Close() {
	if d.teardown != nil {
		d.teardown()
		d.teardown = nil
	}
}
