package livequery

import (
	"strings"

	"github.com/cristianoliveira/flightdeck/internal/api"
	"github.com/cristianoliveira/flightdeck/internal/domain"
)

// Filter is the dashboard query. Categorical fields hold "" for All.
type Filter struct {
	Search     string
	Status     string
	Airline    string
	FlightType string
	Page       int
	Limit      int
}

// DefaultFilter is the first page with no filters. An unsupported limit becomes 10.
func DefaultFilter(limit int) Filter {
	if !domain.IsPageSize(limit) {
		limit = domain.PageSizes[0]
	}
	return Filter{Page: 1, Limit: limit}
}

// Query converts the filter to the API query.
func (f Filter) Query() api.ListQuery {
	return api.ListQuery{
		Search:     f.Search,
		Status:     f.Status,
		Airline:    f.Airline,
		FlightType: f.FlightType,
		Page:       f.Page,
		Limit:      f.Limit,
	}
}

// normalize lower-cases search and maps the All choice to "".
func (f Filter) normalize() Filter {
	f.Search = strings.ToLower(f.Search)
	f.Status = domain.FilterValue(f.Status)
	f.Airline = domain.FilterValue(f.Airline)
	f.FlightType = domain.FilterValue(f.FlightType)
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

// sameSelection reports whether a and b differ at most in Page.
func sameSelection(a, b Filter) bool {
	a.Page, b.Page = 0, 0
	return a == b
}
