package state

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the dashboard key bindings.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Search     key.Binding
	Status     key.Binding
	Airline    key.Binding
	FlightType key.Binding
	Limit      key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Refresh    key.Binding
	Update     key.Binding
	Submit     key.Binding
	CycleDraft key.Binding
	Close      key.Binding
	SignOut    key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Status:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		Airline:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "airline filter")),
		FlightType: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type filter")),
		Limit:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "page size")),
		NextPage:   key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "previous page")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Update:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update status")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "update")),
		CycleDraft: key.NewBinding(key.WithKeys("s", "tab"), key.WithHelp("s", "change status")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		SignOut:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
