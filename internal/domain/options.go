package domain

import "slices"

// OptionAll is the selector entry meaning "no filter on this dimension".
const OptionAll = "All"

// Flight status values.
const (
	StatusDelayed   = "Delayed"
	StatusOnTime    = "On Time"
	StatusCancelled = "Cancelled"
	StatusInFlight  = "In-flight"
	StatusScheduled = "Scheduled/En Route"
)

var (
	// StatusFilterOptions are the choices offered by the status filter.
	StatusFilterOptions = []string{StatusDelayed, StatusCancelled, StatusInFlight, StatusScheduled, OptionAll}
	// StatusOptions are the values a flight's status can be changed to.
	StatusOptions = []string{StatusDelayed, StatusOnTime, StatusCancelled, StatusInFlight, StatusScheduled}
	// AirlineOptions are the choices offered by the airline filter.
	AirlineOptions = []string{"PIA", "Emirates", "Qatar Airlines", "Air India", OptionAll}
	// FlightTypeOptions are the choices offered by the flight type filter.
	FlightTypeOptions = []string{"Private", "Commercial", "Military", OptionAll}
	// PageSizes are the supported page sizes.
	PageSizes = []int{10, 25, 50, 75, 100}
)

// FilterValue maps a selector choice to the value sent to the server.
// OptionAll becomes the empty string so the query omits the dimension.
func FilterValue(choice string) string {
	if choice == OptionAll {
		return ""
	}
	return choice
}

// NextOption returns the option following current in options, wrapping around.
// An empty current is treated as OptionAll.
func NextOption(options []string, current string) string {
	if len(options) == 0 {
		return current
	}
	if current == "" {
		current = OptionAll
	}
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}

// IsStatus reports whether v is a status a flight can be set to.
func IsStatus(v string) bool {
	return slices.Contains(StatusOptions, v)
}

// IsPageSize reports whether n is a supported page size.
func IsPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// NextPageSize returns the page size after n, wrapping around.
func NextPageSize(n int) int {
	i := slices.Index(PageSizes, n)
	return PageSizes[(i+1)%len(PageSizes)]
}
