// Package store holds the client-side state slices: a request lifecycle shared
// by each slice's operations, and the auth and flight slices built on it.
package store

import (
	"context"
	"sync"

	"github.com/cristianoliveira/flightdeck/internal/logging"
)

// State is the observable lifecycle of a slice.
// Error is only cleared by ResetError; starting a request leaves it alone.
type State struct {
	Loading bool
	Error   string
}

// Lifecycle is the mutex-guarded State shared by one slice's operations.
type Lifecycle struct {
	mu    sync.RWMutex
	state State
}

// NewLifecycle returns an idle lifecycle.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// Begin marks a request as pending.
func (l *Lifecycle) Begin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Loading = true
}

// Settle marks the pending request as settled. A non-empty errMsg is recorded.
func (l *Lifecycle) Settle(errMsg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Loading = false
	if errMsg != "" {
		l.state.Error = errMsg
	}
}

// ResetError clears the recorded error without touching Loading.
func (l *Lifecycle) ResetError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Error = ""
}

// Snapshot returns a copy of the current state.
func (l *Lifecycle) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Outcome is a settled request: either Value or a normalized Message with the cause.
type Outcome[Out any] struct {
	Value   Out
	Err     error
	Message string
}

// Fulfilled reports whether the request succeeded.
func (o Outcome[Out]) Fulfilled() bool { return o.Err == nil }

// Operation binds a request function to a slice's lifecycle.
//
// Dispatch runs the three phases in one call. Callers that must decide whether
// a result still applies (see livequery) call Begin, Run and Settle themselves.
type Operation[In, Out any] struct {
	Name      string
	Fallback  string
	Lifecycle *Lifecycle
	Call      func(ctx context.Context, in In) (Out, error)
	// OnFulfilled runs during Settle for successful outcomes, before Loading clears.
	OnFulfilled func(Out)
	Log         logging.Logger
}

func (op *Operation[In, Out]) logger() logging.Logger {
	if op.Log == nil {
		return logging.Nop()
	}
	return op.Log
}

// Dispatch begins, runs and settles one request.
func (op *Operation[In, Out]) Dispatch(ctx context.Context, in In) Outcome[Out] {
	op.Begin()
	out := op.Run(ctx, in)
	op.Settle(out)
	return out
}

// Begin marks the lifecycle pending.
func (op *Operation[In, Out]) Begin() {
	op.Lifecycle.Begin()
	op.logger().Debug("pending", "operation", op.Name)
}

// Run performs the request without touching any state.
func (op *Operation[In, Out]) Run(ctx context.Context, in In) Outcome[Out] {
	v, err := op.Call(ctx, in)
	if err != nil {
		return Outcome[Out]{Err: err, Message: NormalizeError(err, op.Fallback)}
	}
	return Outcome[Out]{Value: v}
}

// Settle applies out to the slice.
func (op *Operation[In, Out]) Settle(out Outcome[Out]) {
	if out.Fulfilled() {
		if op.OnFulfilled != nil {
			op.OnFulfilled(out.Value)
		}
		op.Lifecycle.Settle("")
		op.logger().Debug("fulfilled", "operation", op.Name)
		return
	}
	op.Lifecycle.Settle(out.Message)
	op.logger().Warn("rejected", "operation", op.Name, "message", out.Message, "error", out.Err)
}
