// Package render turns dashboard state into styled strings.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/cristianoliveira/flightdeck/internal/domain"
)

const (
	flightWidth      = 10
	routeWidth       = 12
	departureWidth   = 16
	statusWidth      = 18
	airlineWidth     = 14
	typeWidth        = 10
	columnGap        = "  "
	defaultWidth     = 80
	placeholderValue = "All"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Cyan)))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Blue)))
	selectedRow  = lipgloss.NewStyle().Background(lipgloss.Color(ansiColorNumber(colors.Blue))).Foreground(lipgloss.Color("0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Red)))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Green)))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow)))
	modalStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// HeaderState defines the inputs for the title bar.
type HeaderState struct {
	Role  string
	Live  bool
	Width int
}

// Header renders the title, the signed-in role and the live-update indicator.
func Header(state HeaderState) string {
	role := state.Role
	if role == "" {
		role = "signed out"
	}
	live := successStyle.Render("● live")
	if !state.Live {
		live = mutedStyle.Render("○ offline")
	}
	left := titleStyle.Render("Flight Management System")
	right := fmt.Sprintf("%s  %s", mutedStyle.Render(role), live)
	gap := width(state.Width) - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// FilterState defines the inputs for the filter bar.
type FilterState struct {
	SearchView string
	Searching  bool
	Status     string
	Airline    string
	FlightType string
	Limit      int
}

// FilterBar renders the search box and the current filter selections.
func FilterBar(state FilterState) string {
	search := state.SearchView
	if !state.Searching && search == "" {
		search = mutedStyle.Render("/ to search")
	}
	parts := []string{
		search,
		labelStyle.Render("status:") + " " + orAll(state.Status),
		labelStyle.Render("airline:") + " " + orAll(state.Airline),
		labelStyle.Render("type:") + " " + orAll(state.FlightType),
		labelStyle.Render("limit:") + " " + fmt.Sprint(state.Limit),
	}
	return strings.Join(parts, "   ")
}

func orAll(v string) string {
	if v == "" {
		return placeholderValue
	}
	return v
}

// TableHeader renders the column titles.
func TableHeader() string {
	return headerStyle.Render(columns("FLIGHT", "ORIGIN", "DESTINATION", "DEPARTURE", "STATUS", "AIRLINE", "TYPE"))
}

// RowState defines the inputs needed to render a flight row.
type RowState struct {
	Flight   domain.Flight
	Selected bool
}

// Row renders a single flight.
func Row(state RowState) string {
	f := state.Flight
	line := columns(f.FlightNumber, f.Origin, f.Destination, Departure(f), f.Status, f.Airline, f.FlightType)
	if state.Selected {
		return selectedRow.Render(line)
	}
	return lipgloss.NewStyle().Foreground(statusColor(f.Status)).Render(line)
}

// Departure formats the scheduled departure, or returns the raw value if it does not parse.
func Departure(f domain.Flight) string {
	t, ok := f.ScheduledDeparture()
	if !ok {
		return f.ScheduledDepartureTime
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func columns(flight, origin, destination, departure, status, airline, kind string) string {
	cells := []string{
		pad(flight, flightWidth),
		pad(origin, routeWidth),
		pad(destination, routeWidth),
		pad(departure, departureWidth),
		pad(status, statusWidth),
		pad(airline, airlineWidth),
		pad(kind, typeWidth),
	}
	return strings.TrimRight(strings.Join(cells, columnGap), " ")
}

func statusColor(status string) lipgloss.Color {
	switch status {
	case domain.StatusDelayed:
		return lipgloss.Color(ansiColorNumber(colors.Yellow))
	case domain.StatusCancelled:
		return lipgloss.Color(ansiColorNumber(colors.Red))
	case domain.StatusOnTime, domain.StatusInFlight:
		return lipgloss.Color(ansiColorNumber(colors.Green))
	default:
		return lipgloss.Color("")
	}
}

// Empty renders the placeholder shown when a page has no flights.
func Empty(loading bool) string {
	if loading {
		return mutedStyle.Render("Loading flights...")
	}
	return mutedStyle.Render("No flights found")
}

// PaginationState defines the inputs for the pagination line.
type PaginationState struct {
	Page         int
	TotalPages   int
	TotalFlights int
	CanNext      bool
	CanPrev      bool
}

// Pagination renders "page X of Y" with the previous/next affordances.
func Pagination(state PaginationState) string {
	prev := mutedStyle.Render("‹ p")
	if state.CanPrev {
		prev = "‹ p"
	}
	next := mutedStyle.Render("n ›")
	if state.CanNext {
		next = "n ›"
	}
	total := state.TotalPages
	if total < 1 {
		total = 1
	}
	return fmt.Sprintf("%s  page %d of %d (%d flights)  %s", prev, state.Page, total, state.TotalFlights, next)
}

// ModalState defines the inputs for the status editor.
type ModalState struct {
	FlightNumber string
	Draft        string
	Submitting   bool
	Error        string
}

// Modal renders the status editor box.
func Modal(state ModalState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Update Flight %s Status\n\n", successStyle.Render(state.FlightNumber))
	for _, s := range domain.StatusOptions {
		marker := "  "
		if s == state.Draft {
			marker = "> "
		}
		b.WriteString(marker + s + "\n")
	}
	b.WriteString("\n")
	if state.Submitting {
		b.WriteString(mutedStyle.Render("Loading"))
	} else {
		b.WriteString(mutedStyle.Render("s/tab: change  enter: update  esc: close"))
	}
	if state.Error != "" {
		b.WriteString("\n" + errorStyle.Render(state.Error))
	}
	return modalStyle.Render(b.String())
}

// StatusLine renders a transient message; errors are red.
func StatusLine(msg string, isError bool) string {
	if msg == "" {
		return ""
	}
	if isError {
		return errorStyle.Render(msg)
	}
	return successStyle.Render(msg)
}

// FooterState defines the inputs needed to render footer help text.
type FooterState struct {
	Searching bool
	Editing   bool
	Admin     bool
}

// Footer renders the footer with help text.
func Footer(state FooterState) string {
	var help []string
	switch {
	case state.Searching:
		help = append(help, "type to search", "enter/esc: done")
	case state.Editing:
		help = append(help, "s/tab: status", "enter: update", "esc: close")
	default:
		help = append(help, "j/k: move", "/: search", "s/a/t: filters", "l: limit", "n/p: page", "r: refresh")
		if state.Admin {
			help = append(help, "u: update status")
		}
		help = append(help, "L: sign out", "q: quit")
	}
	return mutedStyle.Render(strings.Join(help, "  |  "))
}

func width(w int) int {
	if w <= 0 {
		return defaultWidth
	}
	return w
}

// pad left-aligns s in width runes, truncating with "..." when needed.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
