package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/cristianoliveira/flightdeck/internal/format"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/spf13/cobra"
)

type watchClient interface {
	Watch(ctx context.Context, f livequery.Filter, onView func(livequery.View)) error
}

const watchCommandLong = `Print a page of flights and reprint it whenever the server reports a change.

USAGE:
    flightdeck watch [OPTIONS]

Accepts the same filter options as list. Stops on Ctrl-C or when the server
closes the live connection.`

// watchNow is replaced in tests.
var watchNow = time.Now

// NewWatchCmd creates the watch command with explicit dependencies.
func NewWatchCmd(client watchClient) *cobra.Command {
	if client == nil {
		panic("NewWatchCmd: client dependency cannot be nil")
	}

	var filters filterFlags

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow flights as they change",
		Long:  watchCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.filter()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			formatter := format.NewTableFormatter()
			err = client.Watch(ctx, f, func(v livequery.View) {
				fmt.Fprintf(out, "\nupdated %s\n", watchNow().Format("15:04:05"))
				if err := formatter.FormatFlights(v.Result, out); err != nil {
					colors.Error(fmt.Sprintf("watch: %v", err))
				}
			})
			if err != nil {
				return fmt.Errorf("live updates stopped: %w", err)
			}
			return nil
		},
	}

	registerFilterFlags(watchCmd, &filters)

	return watchCmd
}

func init() {
	RootCmd.AddCommand(NewWatchCmd(coreClient))
}
