// Package state is the bubbletea model for the flights dashboard.
package state

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/cristianoliveira/flightdeck/internal/store"
	"github.com/cristianoliveira/flightdeck/internal/tui/render"
	"github.com/cristianoliveira/flightdeck/internal/workflow"
)

const (
	defaultViewportWidth  = 80
	defaultViewportHeight = 24
	// Lines used by everything except the table rows.
	chromeLines = 9
)

// Deps are the components the dashboard drives.
type Deps struct {
	Controller *livequery.Controller
	Auth       *store.AuthSlice
	Editor     *workflow.Editor
	// Live is optional; without it the dashboard only refreshes on demand.
	Live   LiveFeed
	Logger logging.Logger
}

// Model represents the TUI model for bubbletea.
type Model struct {
	ctx  context.Context
	deps Deps
	keys KeyMap
	log  logging.Logger

	search    textinput.Model
	searching bool
	spinner   spinner.Model

	cursor int
	width  int
	height int

	live          bool
	statusMessage string
	statusIsError bool
	signedOut     bool
}

// NewModel creates the dashboard model. ctx bounds every request it issues.
func NewModel(ctx context.Context, deps Deps) *Model {
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	search := textinput.New()
	search.Placeholder = "Search Flights"
	search.Prompt = "/ "
	search.CharLimit = 64
	search.SetValue(deps.Controller.Filter().Search)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:     ctx,
		deps:    deps,
		keys:    DefaultKeyMap(),
		log:     log.With("component", "tui"),
		search:  search,
		spinner: sp,
		width:   defaultViewportWidth,
		height:  defaultViewportHeight,
		live:    deps.Live != nil,
	}
}

// Init issues the first fetch and starts listening for invalidations.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.runFetch(m.deps.Controller.Start())}
	if m.deps.Live != nil {
		cmds = append(cmds, waitForInvalidation(m.deps.Live))
	}
	return tea.Batch(cmds...)
}

// SignedOut reports whether the program ended through sign-out.
func (m *Model) SignedOut() bool { return m.signedOut }

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case FetchSettledMsg:
		m.clampCursor()
		return m, nil
	case InvalidatedMsg:
		if m.deps.Live == nil {
			return m, m.runFetch(msg.Fetch)
		}
		return m, tea.Batch(m.runFetch(msg.Fetch), waitForInvalidation(m.deps.Live))
	case LiveClosedMsg:
		m.live = false
		if msg.Err != nil {
			m.setStatus("live updates stopped: "+msg.Err.Error(), true)
		} else {
			m.setStatus("live updates stopped", true)
		}
		return m, nil
	case SubmitSettledMsg:
		if msg.State.Phase == workflow.Closed && msg.State.Message != "" {
			m.setStatus(msg.State.Message, false)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.deps.Editor.State().Phase != workflow.Closed {
		return m.handleEditorKey(msg)
	}

	c := m.deps.Controller
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(c.Snapshot().Result.Flights)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Status):
		return m, m.runFetch(c.SetStatus(domain.NextOption(domain.StatusFilterOptions, c.Filter().Status)))
	case key.Matches(msg, m.keys.Airline):
		return m, m.runFetch(c.SetAirline(domain.NextOption(domain.AirlineOptions, c.Filter().Airline)))
	case key.Matches(msg, m.keys.FlightType):
		return m, m.runFetch(c.SetFlightType(domain.NextOption(domain.FlightTypeOptions, c.Filter().FlightType)))
	case key.Matches(msg, m.keys.Limit):
		f, err := c.SetLimit(domain.NextPageSize(c.Filter().Limit))
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		return m, m.runFetch(f)
	case key.Matches(msg, m.keys.NextPage):
		return m, m.runFetch(c.NextPage())
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.runFetch(c.PreviousPage())
	case key.Matches(msg, m.keys.Refresh):
		return m, m.runFetch(c.Refresh())
	case key.Matches(msg, m.keys.Update):
		m.openEditor()
	case key.Matches(msg, m.keys.SignOut):
		m.deps.Auth.SignOut()
		m.signedOut = true
		m.log.Info("signed out from dashboard")
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if fetch := m.deps.Controller.SetSearch(m.search.Value()); fetch != nil {
		m.cursor = 0
		return m, tea.Batch(cmd, m.runFetch(fetch))
	}
	return m, cmd
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.deps.Editor
	switch {
	case key.Matches(msg, m.keys.Close):
		e.Close()
	case key.Matches(msg, m.keys.CycleDraft):
		_ = e.CycleDraftStatus()
	case key.Matches(msg, m.keys.Submit):
		sub, err := e.Begin()
		if err != nil {
			return m, nil
		}
		ctx := m.ctx
		return m, func() tea.Msg { return SubmitSettledMsg{State: sub.Run(ctx)} }
	}
	return m, nil
}

func (m *Model) openEditor() {
	if !workflow.CanEdit(m.deps.Auth.Role()) {
		m.setStatus(workflow.ErrForbidden.Error(), true)
		return
	}
	flights := m.deps.Controller.Snapshot().Result.Flights
	if m.cursor < 0 || m.cursor >= len(flights) {
		return
	}
	if err := m.deps.Editor.Open(flights[m.cursor]); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("", false)
}

// runFetch wraps an issued fetch as a command. A nil fetch (a no-op write) yields no command.
func (m *Model) runFetch(f *livequery.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return FetchSettledMsg{Generation: f.Generation, Applied: f.Run(ctx)}
	}
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMessage = msg
	m.statusIsError = isError
}

func (m *Model) clampCursor() {
	n := len(m.deps.Controller.Snapshot().Result.Flights)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the TUI.
func (m *Model) View() string {
	v := m.deps.Controller.Snapshot()
	var s strings.Builder

	s.WriteString(render.Header(render.HeaderState{Role: m.deps.Auth.Role(), Live: m.live, Width: m.width}))
	s.WriteString("\n\n")

	searchView := m.search.Value()
	if m.searching {
		searchView = m.search.View()
	} else if searchView != "" {
		searchView = "search: " + searchView
	}
	s.WriteString(render.FilterBar(render.FilterState{
		SearchView: searchView,
		Searching:  m.searching,
		Status:     v.Filter.Status,
		Airline:    v.Filter.Airline,
		FlightType: v.Filter.FlightType,
		Limit:      v.Filter.Limit,
	}))
	s.WriteString("\n\n")

	if ed := m.deps.Editor.State(); ed.Phase != workflow.Closed {
		s.WriteString(render.Modal(render.ModalState{
			FlightNumber: ed.Flight.FlightNumber,
			Draft:        ed.Draft,
			Submitting:   ed.Phase == workflow.Submitting,
			Error:        ed.Error,
		}))
		s.WriteString("\n")
	} else {
		m.renderTable(&s, v)
	}

	s.WriteString("\n")
	s.WriteString(render.Pagination(render.PaginationState{
		Page:         v.Filter.Page,
		TotalPages:   v.Result.Pagination.TotalPages,
		TotalFlights: v.Result.Pagination.TotalFlights,
		CanNext:      v.CanNext,
		CanPrev:      v.CanPrev,
	}))
	if v.State.Loading {
		s.WriteString("  " + m.spinner.View())
	}
	s.WriteString("\n")

	// The slice error belongs to the modal while it is open.
	if v.State.Error != "" && m.deps.Editor.State().Phase == workflow.Closed {
		s.WriteString(render.StatusLine(v.State.Error, true) + "\n")
	} else if m.statusMessage != "" {
		s.WriteString(render.StatusLine(m.statusMessage, m.statusIsError) + "\n")
	}
	s.WriteString(render.Footer(render.FooterState{
		Searching: m.searching,
		Editing:   m.deps.Editor.State().Phase != workflow.Closed,
		Admin:     m.deps.Auth.IsAdmin(),
	}))
	return s.String()
}

func (m *Model) renderTable(s *strings.Builder, v livequery.View) {
	s.WriteString(render.TableHeader())
	s.WriteString("\n")
	flights := v.Result.Flights
	if len(flights) == 0 {
		s.WriteString(render.Empty(v.State.Loading))
		s.WriteString("\n")
		return
	}
	rows := m.height - chromeLines
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(flights) && i < start+rows; i++ {
		s.WriteString(render.Row(render.RowState{Flight: flights[i], Selected: i == m.cursor}))
		s.WriteString("\n")
	}
}
