package store

import (
	"context"
	"sync"

	"github.com/cristianoliveira/flightdeck/internal/api"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/logging"
)

// Fallback messages for the flight operations.
const (
	FallbackList   = "Failed to get flights"
	FallbackUpdate = "Failed to update flight"
)

// FlightAPI is the part of the API the flight slice calls.
type FlightAPI interface {
	ListFlights(ctx context.Context, q api.ListQuery) (domain.ListResult, error)
	UpdateFlightStatus(ctx context.Context, u api.StatusUpdate) (string, error)
}

// FlightSlice holds the current page of flights. Listing and updating share one
// lifecycle, so an update failure shows wherever list errors show.
type FlightSlice struct {
	mu     sync.RWMutex
	result domain.ListResult

	lifecycle *Lifecycle
	list      *Operation[api.ListQuery, domain.ListResult]
	update    *Operation[api.StatusUpdate, string]
}

// NewFlightSlice returns a FlightSlice holding an empty result.
func NewFlightSlice(client FlightAPI, log logging.Logger) *FlightSlice {
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("component", "flights")

	f := &FlightSlice{result: domain.EmptyListResult(), lifecycle: NewLifecycle()}
	f.list = &Operation[api.ListQuery, domain.ListResult]{
		Name:        "flight/get",
		Fallback:    FallbackList,
		Lifecycle:   f.lifecycle,
		Call:        client.ListFlights,
		OnFulfilled: f.replace,
		Log:         log,
	}
	f.update = &Operation[api.StatusUpdate, string]{
		Name:      "flight/update",
		Fallback:  FallbackUpdate,
		Lifecycle: f.lifecycle,
		Call:      client.UpdateFlightStatus,
		Log:       log,
	}
	return f
}

func (f *FlightSlice) replace(res domain.ListResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = res
}

// ListOperation exposes the list operation for callers that settle it themselves.
func (f *FlightSlice) ListOperation() *Operation[api.ListQuery, domain.ListResult] {
	return f.list
}

// Fetch dispatches a list request and applies its result.
func (f *FlightSlice) Fetch(ctx context.Context, q api.ListQuery) Outcome[domain.ListResult] {
	return f.list.Dispatch(ctx, q)
}

// UpdateStatus dispatches a status change. The list is not patched.
func (f *FlightSlice) UpdateStatus(ctx context.Context, u api.StatusUpdate) Outcome[string] {
	return f.update.Dispatch(ctx, u)
}

// Result returns the latest applied list result.
func (f *FlightSlice) Result() domain.ListResult {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.result
}

// State returns the lifecycle state.
func (f *FlightSlice) State() State { return f.lifecycle.Snapshot() }

// ResetError clears the last error.
func (f *FlightSlice) ResetError() { f.lifecycle.ResetError() }
