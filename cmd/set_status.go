package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/workflow"
	"github.com/spf13/cobra"
)

type setStatusClient interface {
	SetStatus(ctx context.Context, flightNumber, status string) (workflow.State, error)
}

var setStatusCommandLong = `Change the status of a flight. Requires an admin session.

USAGE:
    flightdeck set-status <flight-number> <status>

STATUS:
    ` + strings.Join(domain.StatusOptions, ", ")

// NewSetStatusCmd creates the set-status command with explicit dependencies.
func NewSetStatusCmd(client setStatusClient) *cobra.Command {
	if client == nil {
		panic("NewSetStatusCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "set-status <flight-number> <status>",
		Short: "Change the status of a flight",
		Long:  setStatusCommandLong,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := matchOption("status", args[1], domain.StatusOptions)
			if err != nil {
				return err
			}
			st, err := client.SetStatus(cmd.Context(), args[0], status)
			if err != nil {
				return fmt.Errorf("set-status %s: %w", args[0], err)
			}
			msg := st.Message
			if msg == "" {
				msg = fmt.Sprintf("Flight %s is now %s", args[0], status)
			}
			colors.Success(msg)
			return nil
		},
	}
}

func init() {
	RootCmd.AddCommand(NewSetStatusCmd(coreClient))
}
