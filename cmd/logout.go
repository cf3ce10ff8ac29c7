package cmd

import (
	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/spf13/cobra"
)

type logoutClient interface {
	SignOut() error
}

// NewLogoutCmd creates the logout command with explicit dependencies.
func NewLogoutCmd(client logoutClient) *cobra.Command {
	if client == nil {
		panic("NewLogoutCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Long:  `Forget the stored credential and role.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.SignOut(); err != nil {
				return err
			}
			colors.Success("Signed out")
			return nil
		},
	}
}

func init() {
	RootCmd.AddCommand(NewLogoutCmd(coreClient))
}
