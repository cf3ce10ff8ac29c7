package cmd

import (
	"context"

	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/spf13/cobra"
)

type tuiClient interface {
	RunTUI(ctx context.Context) (signedOut bool, err error)
}

const tuiCommandLong = `Interactive dashboard for flights.

USAGE:
    flightdeck tui

KEY BINDINGS:
    j/k, up/down    Move the cursor
    /               Search (enter to keep, esc to clear)
    s / a / t       Cycle status, airline, flight type filters
    l               Cycle page size
    n / p           Next / previous page
    r               Refresh
    u               Update the selected flight's status (admin)
    s / tab         Change the draft status (in the editor)
    enter           Submit the status change
    esc             Close the status editor
    L               Sign out
    q               Quit`

// NewTUICmd creates the tui command with explicit dependencies.
func NewTUICmd(client tuiClient) *cobra.Command {
	if client == nil {
		panic("NewTUICmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive dashboard (default)",
		Long:  tuiCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), client)
		},
	}
}

func runTUI(ctx context.Context, client tuiClient) error {
	signedOut, err := client.RunTUI(ctx)
	if err != nil {
		return err
	}
	if signedOut {
		colors.Info("Signed out")
	}
	return nil
}

func init() {
	RootCmd.AddCommand(NewTUICmd(coreClient))
	RootCmd.Args = cobra.NoArgs
	RootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), coreClient)
	}
}
