// Package domain provides the flight records, list results and the option sets the
// dashboard filters and edits them with.
package domain

import "time"

// RoleAdmin is the role allowed to change flight status.
const RoleAdmin = "admin"

// Flight is a single flight record as reported by the server.
// Timestamps are kept as the ISO strings the server sends.
type Flight struct {
	ID                     string `json:"_id"`
	FlightNumber           string `json:"flightNumber"`
	Origin                 string `json:"origin"`
	Destination            string `json:"destination"`
	ScheduledDepartureTime string `json:"scheduledDepartureTime"`
	Status                 string `json:"status"`
	Airline                string `json:"airline"`
	FlightType             string `json:"flightType"`
	CreatedAt              string `json:"createdAt"`
	UpdatedAt              string `json:"updatedAt"`
}

// ScheduledDeparture parses ScheduledDepartureTime. ok is false when it is empty or malformed.
func (f Flight) ScheduledDeparture() (t time.Time, ok bool) {
	if f.ScheduledDepartureTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, f.ScheduledDepartureTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Pagination describes the page a ListResult belongs to.
type Pagination struct {
	TotalFlights int `json:"totalFlights"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// ListResult is one page of flights. It is always replaced as a whole.
type ListResult struct {
	Flights    []Flight   `json:"flights"`
	Pagination Pagination `json:"pagination"`
}

// EmptyListResult is the result shown before the first fetch settles.
func EmptyListResult() ListResult {
	return ListResult{Flights: []Flight{}, Pagination: Pagination{CurrentPage: 1}}
}

// HasNextPage reports whether the server has pages after the current one.
func (r ListResult) HasNextPage() bool {
	return r.Pagination.CurrentPage < r.Pagination.TotalPages
}
