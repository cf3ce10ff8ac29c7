package state

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/cristianoliveira/flightdeck/internal/workflow"
)

// FetchSettledMsg is sent when a list fetch returns, applied or not.
type FetchSettledMsg struct {
	Generation uint64
	Applied    bool
}

// InvalidatedMsg carries the fetch a push invalidation issued.
type InvalidatedMsg struct {
	Fetch *livequery.Fetch
}

// LiveClosedMsg is sent once when the push channel ends.
type LiveClosedMsg struct {
	Err error
}

// SubmitSettledMsg is sent when a status update returns.
type SubmitSettledMsg struct {
	State workflow.State
}

// LiveFeed delivers fetches issued by push invalidations.
type LiveFeed interface {
	Fetches() <-chan *livequery.Fetch
	Done() <-chan struct{}
	Err() error
}

// waitForInvalidation blocks until the feed issues a fetch or closes.
func waitForInvalidation(feed LiveFeed) tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-feed.Fetches():
			return InvalidatedMsg{Fetch: f}
		case <-feed.Done():
			return LiveClosedMsg{Err: feed.Err()}
		}
	}
}
