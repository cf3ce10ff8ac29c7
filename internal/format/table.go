package format

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/cristianoliveira/flightdeck/internal/domain"
)

// TableConfig holds configuration for table formatting.
type TableConfig struct {
	ShowHeaders bool
	// HeaderColor is an ANSI sequence; empty disables coloring.
	HeaderColor string
	// ShowFooter appends "page X/Y, N flights".
	ShowFooter bool
}

// DefaultTableConfig returns the configuration used by `flightdeck list`.
func DefaultTableConfig() *TableConfig {
	return &TableConfig{
		ShowHeaders: true,
		HeaderColor: colors.Blue,
		ShowFooter:  true,
	}
}

// TableColumn represents a column in a table.
type TableColumn struct {
	Name      string
	Width     int
	Alignment string
	Extractor func(domain.Flight) string
}

// DefaultColumns are the columns shown for each flight.
func DefaultColumns() []TableColumn {
	return []TableColumn{
		{Name: "FLIGHT", Width: 10, Extractor: func(f domain.Flight) string { return f.FlightNumber }},
		{Name: "ORIGIN", Width: 12, Extractor: func(f domain.Flight) string { return f.Origin }},
		{Name: "DESTINATION", Width: 12, Extractor: func(f domain.Flight) string { return f.Destination }},
		{Name: "DEPARTURE", Width: 16, Extractor: departure},
		{Name: "STATUS", Width: 18, Extractor: func(f domain.Flight) string { return f.Status }},
		{Name: "AIRLINE", Width: 14, Extractor: func(f domain.Flight) string { return f.Airline }},
		{Name: "TYPE", Width: 10, Extractor: func(f domain.Flight) string { return f.FlightType }},
	}
}

func departure(f domain.Flight) string {
	t, ok := f.ScheduledDeparture()
	if !ok {
		return f.ScheduledDepartureTime
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// TableFormatter prints flights as an aligned table.
type TableFormatter struct {
	config  *TableConfig
	columns []TableColumn
}

// NewTableFormatter returns a TableFormatter with the default columns.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{config: DefaultTableConfig(), columns: DefaultColumns()}
}

// WithConfig replaces the table configuration.
func (f *TableFormatter) WithConfig(cfg *TableConfig) *TableFormatter {
	f.config = cfg
	return f
}

// WithColumns appends columns.
func (f *TableFormatter) WithColumns(columns ...TableColumn) *TableFormatter {
	f.columns = append(f.columns, columns...)
	return f
}

// FormatFlights writes the header, one row per flight and the footer.
func (f *TableFormatter) FormatFlights(result domain.ListResult, writer io.Writer) error {
	if len(result.Flights) == 0 {
		_, err := fmt.Fprintln(writer, "No flights found")
		return err
	}
	if f.config.ShowHeaders {
		if err := f.writeLine(writer, f.names(), true); err != nil {
			return err
		}
		if err := f.writeLine(writer, f.separators(), true); err != nil {
			return err
		}
	}
	for _, flight := range result.Flights {
		values := make([]string, len(f.columns))
		for i, col := range f.columns {
			values[i] = col.Extractor(flight)
		}
		if err := f.writeLine(writer, values, false); err != nil {
			return err
		}
	}
	if f.config.ShowFooter {
		p := result.Pagination
		_, err := fmt.Fprintf(writer, "\npage %d/%d, %d flights\n", p.CurrentPage, max(p.TotalPages, 1), p.TotalFlights)
		return err
	}
	return nil
}

func (f *TableFormatter) names() []string {
	out := make([]string, len(f.columns))
	for i, col := range f.columns {
		out[i] = col.Name
	}
	return out
}

func (f *TableFormatter) separators() []string {
	out := make([]string, len(f.columns))
	for i, col := range f.columns {
		out[i] = makeSeparator(col.Width)
	}
	return out
}

func (f *TableFormatter) writeLine(writer io.Writer, values []string, header bool) error {
	cells := make([]string, len(f.columns))
	for i, col := range f.columns {
		cells[i] = formatString(truncateString(values[i], col.Width), col.Width, col.Alignment)
	}
	line := strings.TrimRight(strings.Join(cells, "  "), " ")
	if header && f.config.HeaderColor != "" {
		line = f.config.HeaderColor + line + colors.Reset
	}
	_, err := fmt.Fprintln(writer, line)
	return err
}

// formatString pads s to width with the given alignment (left, right, center).
func formatString(s string, width int, alignment string) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	switch alignment {
	case "right":
		return strings.Repeat(" ", width-n) + s
	case "center":
		left := (width - n) / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
	default:
		return s + strings.Repeat(" ", width-n)
	}
}

// truncateString shortens s to width runes, ending in "..." when cut.
func truncateString(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	if width < 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// makeSeparator creates a separator line of the specified width.
func makeSeparator(width int) string {
	return strings.Repeat("-", width)
}
