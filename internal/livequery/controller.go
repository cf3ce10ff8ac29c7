// Package livequery keeps the flight list in step with the dashboard filter.
//
// Every filter change issues one fetch stamped with a generation number. Only
// the fetch with the latest generation may update the flight slice; results of
// superseded fetches are dropped on arrival. The filter is also mirrored into a
// reference cell so push invalidations, which fire from another goroutine,
// always re-query with the current filter.
package livequery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/cristianoliveira/flightdeck/internal/store"
)

// ErrInvalidLimit is returned for a page size outside domain.PageSizes.
var ErrInvalidLimit = errors.New("unsupported page size")

// View is a consistent snapshot for rendering.
type View struct {
	Filter  Filter
	Result  domain.ListResult
	State   store.State
	CanNext bool
	CanPrev bool
}

// Fetch is an issued request. The caller runs it, in a tea.Cmd or a goroutine.
type Fetch struct {
	Generation uint64
	Filter     Filter
	c          *Controller
}

// Run performs the request and applies the result if no newer fetch was issued
// in the meantime. It reports whether the result was applied.
func (f *Fetch) Run(ctx context.Context) bool {
	return f.c.run(ctx, f)
}

// Controller owns the filter and the generation counter.
type Controller struct {
	mu      sync.Mutex
	filter  Filter
	cell    atomic.Pointer[Filter]
	issued  uint64
	applied uint64

	flights *store.FlightSlice
	log     logging.Logger
}

// New returns a controller over flights starting at initial (normalized).
// No fetch is issued until Start.
func New(flights *store.FlightSlice, initial Filter, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	initial = initial.normalize()
	if !domain.IsPageSize(initial.Limit) {
		initial.Limit = domain.PageSizes[0]
	}
	c := &Controller{filter: initial, flights: flights, log: log.With("component", "livequery")}
	c.mirror()
	return c
}

// mirror copies the filter into the reference cell. Callers hold mu.
func (c *Controller) mirror() {
	f := c.filter
	c.cell.Store(&f)
}

// issue stamps a fetch for the current filter. Callers hold mu.
func (c *Controller) issue(reason string) *Fetch {
	c.issued++
	f := &Fetch{Generation: c.issued, Filter: c.filter, c: c}
	c.flights.ResetError()
	c.flights.ListOperation().Begin()
	c.log.Debug("fetch issued", "generation", f.Generation, "reason", reason,
		"page", f.Filter.Page, "limit", f.Filter.Limit)
	return f
}

func (c *Controller) run(ctx context.Context, f *Fetch) bool {
	op := c.flights.ListOperation()
	out := op.Run(ctx, f.Filter.Query())

	c.mu.Lock()
	defer c.mu.Unlock()
	if f.Generation != c.issued {
		c.log.Debug("fetch superseded", "generation", f.Generation, "latest", c.issued)
		return false
	}
	op.Settle(out)
	c.applied = f.Generation
	return true
}

// Start issues the initial fetch.
func (c *Controller) Start() *Fetch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issue("start")
}

// Invalidate re-fetches with whatever filter the reference cell holds now.
// Safe to call from any goroutine; it always issues exactly one fetch.
func (c *Controller) Invalidate() *Fetch {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.issue("invalidate")
	f.Filter = *c.cell.Load()
	return f
}

// Refresh is a manual Invalidate.
func (c *Controller) Refresh() *Fetch {
	return c.Invalidate()
}

// Edit applies fn to a copy of the filter and issues one fetch if anything changed.
// A change to any field other than Page resets Page to 1.
func (c *Controller) Edit(fn func(*Filter)) (*Fetch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.filter
	fn(&next)
	next = next.normalize()
	if !domain.IsPageSize(next.Limit) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, next.Limit)
	}
	if !sameSelection(next, c.filter) {
		next.Page = 1
	}
	if next == c.filter {
		return nil, nil
	}
	c.filter = next
	c.mirror()
	return c.issue("filter"), nil
}

func (c *Controller) edit(fn func(*Filter)) *Fetch {
	f, _ := c.Edit(fn)
	return f
}

// SetSearch sets the search text, lower-cased.
func (c *Controller) SetSearch(s string) *Fetch {
	return c.edit(func(f *Filter) { f.Search = s })
}

// SetStatus sets the status filter; domain.OptionAll clears it.
func (c *Controller) SetStatus(v string) *Fetch {
	return c.edit(func(f *Filter) { f.Status = v })
}

// SetAirline sets the airline filter; domain.OptionAll clears it.
func (c *Controller) SetAirline(v string) *Fetch {
	return c.edit(func(f *Filter) { f.Airline = v })
}

// SetFlightType sets the flight type filter; domain.OptionAll clears it.
func (c *Controller) SetFlightType(v string) *Fetch {
	return c.edit(func(f *Filter) { f.FlightType = v })
}

// SetLimit sets the page size and returns to page 1.
func (c *Controller) SetLimit(n int) (*Fetch, error) {
	return c.Edit(func(f *Filter) { f.Limit = n })
}

// canNext reports whether a page after the requested one exists. Callers hold mu.
// Both the last applied result and the requested page are checked, so repeated
// NextPage calls before a fetch settles stop at the last page.
func (c *Controller) canNext(res domain.ListResult) bool {
	return res.HasNextPage() && c.filter.Page < res.Pagination.TotalPages
}

// NextPage advances one page unless the requested page is already the last.
func (c *Controller) NextPage() *Fetch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canNext(c.flights.Result()) {
		return nil
	}
	c.filter.Page++
	c.mirror()
	return c.issue("next page")
}

// PreviousPage goes back one page unless already on the first.
func (c *Controller) PreviousPage() *Fetch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filter.Page <= 1 {
		return nil
	}
	c.filter.Page--
	c.mirror()
	return c.issue("previous page")
}

// Filter returns the current filter.
func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Snapshot returns the filter, the last applied result and the lifecycle state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.flights.Result()
	return View{
		Filter:  c.filter,
		Result:  res,
		State:   c.flights.State(),
		CanNext: c.canNext(res),
		CanPrev: c.filter.Page > 1,
	}
}

// Generations returns the latest issued and latest applied generation.
func (c *Controller) Generations() (issued, applied uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issued, c.applied
}
