package cmd

import (
	"context"

	"github.com/cristianoliveira/flightdeck/internal/format"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
	"github.com/spf13/cobra"
)

type listClient interface {
	ListFlights(ctx context.Context, f livequery.Filter) (livequery.View, error)
}

const listCommandLong = `List one page of flights.

USAGE:
    flightdeck list [OPTIONS]

OPTIONS:
    --search <text>      Search flights (case-insensitive)
    --status <status>    Delayed, Cancelled, In-flight, Scheduled/En Route, All
    --airline <name>     PIA, Emirates, Qatar Airlines, Air India, All
    --type <type>        Private, Commercial, Military, All
    --page <n>           Page number (default 1)
    --limit <n>          Page size: 10, 25, 50, 75, 100
    --format=<format>    Output format: table (default), json
    -h, --help           Show this help`

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(client listClient) *cobra.Command {
	if client == nil {
		panic("NewListCmd: client dependency cannot be nil")
	}

	var filters filterFlags
	var listFormat string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List flights with filters",
		Long:  listCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatterType, err := format.ParseFormatterType(listFormat)
			if err != nil {
				return err
			}
			f, err := filters.filter()
			if err != nil {
				return err
			}
			view, err := client.ListFlights(cmd.Context(), f)
			if err != nil {
				return err
			}
			return format.NewFormatter(formatterType).FormatFlights(view.Result, cmd.OutOrStdout())
		},
	}

	registerFilterFlags(listCmd, &filters)
	listCmd.Flags().StringVar(&listFormat, "format", string(format.FormatterTypeTable), "Output format: table, json")

	return listCmd
}

func init() {
	RootCmd.AddCommand(NewListCmd(coreClient))
}
