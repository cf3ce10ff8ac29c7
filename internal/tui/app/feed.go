package app

import (
	"context"

	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/cristianoliveira/flightdeck/internal/push"
)

// Feed turns push invalidations into controller fetches for the dashboard.
// It implements state.LiveFeed.
type Feed struct {
	fetches chan *livequery.Fetch
	channel *push.Channel
}

// NewFeed registers on ch and starts reading it until ctx ends. Each frame
// issues exactly one controller fetch with the filter current at that moment.
func NewFeed(ctx context.Context, ch *push.Channel, ctrl *livequery.Controller) *Feed {
	f := &Feed{fetches: make(chan *livequery.Fetch, 8), channel: ch}
	ch.OnInvalidate(func() {
		fetch := ctrl.Invalidate()
		select {
		case f.fetches <- fetch:
		case <-ctx.Done():
		}
	})
	go func() { _ = ch.Run(ctx) }()
	return f
}

func (f *Feed) Fetches() <-chan *livequery.Fetch { return f.fetches }
func (f *Feed) Done() <-chan struct{}            { return f.channel.Done() }
func (f *Feed) Err() error                       { return f.channel.Err() }
