package cmd

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/flightdeck/internal/config"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/spf13/cobra"
)

// filterFlags are the list filters shared by list and watch.
type filterFlags struct {
	search     string
	status     string
	airline    string
	flightType string
	page       int
	limit      int
}

func registerFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringVar(&f.search, "search", "", "Search flights (case-insensitive)")
	cmd.Flags().StringVar(&f.status, "status", "", "Filter by status: "+strings.Join(domain.StatusFilterOptions, ", "))
	cmd.Flags().StringVar(&f.airline, "airline", "", "Filter by airline: "+strings.Join(domain.AirlineOptions, ", "))
	cmd.Flags().StringVar(&f.flightType, "type", "", "Filter by flight type: "+strings.Join(domain.FlightTypeOptions, ", "))
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Page size: 10, 25, 50, 75, 100 (default from config)")
}

// filter validates the flags and builds the query filter.
func (f filterFlags) filter() (livequery.Filter, error) {
	out := livequery.DefaultFilter(config.GetInt("default_page_size", 10))
	if f.limit != 0 {
		if !domain.IsPageSize(f.limit) {
			return out, fmt.Errorf("invalid --limit %d: must be one of 10, 25, 50, 75, 100", f.limit)
		}
		out.Limit = f.limit
	}
	if f.page < 1 {
		return out, fmt.Errorf("invalid --page %d: must be at least 1", f.page)
	}
	out.Page = f.page
	out.Search = f.search

	status, err := matchOption("status", f.status, domain.StatusFilterOptions)
	if err != nil {
		return out, err
	}
	airline, err := matchOption("airline", f.airline, domain.AirlineOptions)
	if err != nil {
		return out, err
	}
	flightType, err := matchOption("type", f.flightType, domain.FlightTypeOptions)
	if err != nil {
		return out, err
	}
	out.Status = domain.FilterValue(status)
	out.Airline = domain.FilterValue(airline)
	out.FlightType = domain.FilterValue(flightType)
	return out, nil
}

// matchOption returns the option equal to v ignoring case. Empty v matches nothing and is allowed.
func matchOption(name, v string, options []string) (string, error) {
	if v == "" {
		return "", nil
	}
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid --%s %q: must be one of: %s", name, v, strings.Join(options, ", "))
}
