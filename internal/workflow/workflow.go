// Package workflow implements the flight status editor: open on a flight,
// pick a new status, submit, and close once the server accepts the change.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cristianoliveira/flightdeck/internal/api"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/cristianoliveira/flightdeck/internal/store"
)

var (
	// ErrNotOpen is returned when the editor has no flight open.
	ErrNotOpen = errors.New("status editor is not open")
	// ErrForbidden is returned when the current role may not edit flights.
	ErrForbidden = errors.New("only admins can change flight status")
	// ErrSubmitting is returned while a submission is in flight.
	ErrSubmitting = errors.New("a status update is already in progress")
	// ErrInvalidStatus is returned for a status outside domain.StatusOptions.
	ErrInvalidStatus = errors.New("invalid flight status")
)

// Phase is the editor's position in its lifecycle.
type Phase int

const (
	Closed Phase = iota
	Open
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// State is a snapshot of the editor.
type State struct {
	Phase  Phase
	Flight domain.Flight
	Draft  string
	Error  string
	// Message is the server's reply to the last accepted update.
	Message string
}

// Updater is the flight slice as seen by the editor.
type Updater interface {
	UpdateStatus(ctx context.Context, u api.StatusUpdate) store.Outcome[string]
	ResetError()
}

// CanEdit reports whether role may change flight status.
func CanEdit(role string) bool {
	return role == domain.RoleAdmin
}

// Editor is the status-change workflow. One flight at a time.
type Editor struct {
	mu    sync.Mutex
	state State
	// epoch changes on every Open and Close so a late submission result can
	// tell that the editor moved on.
	epoch uint64

	flights Updater
	role    func() string
	log     logging.Logger
}

// NewEditor returns a closed editor. role is consulted on every Open.
func NewEditor(flights Updater, role func() string, log logging.Logger) *Editor {
	if log == nil {
		log = logging.Nop()
	}
	return &Editor{flights: flights, role: role, log: log.With("component", "workflow")}
}

// Open starts editing f with its current status as the draft.
func (e *Editor) Open(f domain.Flight) error {
	if !CanEdit(e.role()) {
		return ErrForbidden
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Phase == Submitting {
		return ErrSubmitting
	}
	e.epoch++
	e.state = State{Phase: Open, Flight: f, Draft: f.Status}
	return nil
}

// ChangeDraftStatus sets the status that Submit will send.
func (e *Editor) ChangeDraftStatus(v string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state.Phase {
	case Closed:
		return ErrNotOpen
	case Submitting:
		return ErrSubmitting
	}
	if !domain.IsStatus(v) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	e.state.Draft = v
	return nil
}

// CycleDraftStatus moves the draft to the next status option.
func (e *Editor) CycleDraftStatus() error {
	e.mu.Lock()
	draft := e.state.Draft
	e.mu.Unlock()
	return e.ChangeDraftStatus(domain.NextOption(domain.StatusOptions, draft))
}

// Submission is a started submit; Run sends it.
type Submission struct {
	Update api.StatusUpdate
	epoch  uint64
	e      *Editor
}

// Begin clears the previous error and moves the editor to Submitting.
func (e *Editor) Begin() (*Submission, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state.Phase {
	case Closed:
		return nil, ErrNotOpen
	case Submitting:
		return nil, ErrSubmitting
	}
	e.flights.ResetError()
	e.state.Error = ""
	e.state.Phase = Submitting
	u := api.StatusUpdate{FlightNumber: e.state.Flight.FlightNumber, Status: e.state.Draft}
	e.log.Info("status update submitted", "flight_number", u.FlightNumber, "status", u.Status)
	return &Submission{Update: u, epoch: e.epoch, e: e}, nil
}

// Run dispatches the update and applies the outcome: accepted closes the
// editor, rejected keeps it open with the error. If the editor was closed or
// reopened meanwhile, the outcome is not applied to it.
func (s *Submission) Run(ctx context.Context) State {
	out := s.e.flights.UpdateStatus(ctx, s.Update)

	e := s.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.epoch != e.epoch {
		e.log.Debug("submission outlived its editor", "flight_number", s.Update.FlightNumber)
		return e.state
	}
	if out.Fulfilled() {
		e.epoch++
		e.state = State{Phase: Closed, Message: out.Value}
		e.log.Info("status updated", "flight_number", s.Update.FlightNumber, "status", s.Update.Status)
		return e.state
	}
	e.state.Phase = Open
	e.state.Error = out.Message
	e.log.Warn("status update rejected", "flight_number", s.Update.FlightNumber, "message", out.Message)
	return e.state
}

// Submit is Begin followed by Run.
func (e *Editor) Submit(ctx context.Context) (State, error) {
	s, err := e.Begin()
	if err != nil {
		return e.State(), err
	}
	return s.Run(ctx), nil
}

// Close abandons the edit. A submission still in flight no longer affects the editor.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	e.state = State{Phase: Closed}
}

// State returns a snapshot.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
