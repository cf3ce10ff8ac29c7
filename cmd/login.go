package cmd

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/flightdeck/internal/api"
	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/spf13/cobra"
)

type loginClient interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error)
}

type registerClient interface {
	Register(ctx context.Context, creds api.Credentials) (api.RegisterResult, error)
}

// NewLoginCmd creates the login command with explicit dependencies.
func NewLoginCmd(client loginClient, p prompter) *cobra.Command {
	if client == nil {
		panic("NewLoginCmd: client dependency cannot be nil")
	}

	var email, password string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in and store the session for later commands.

USAGE:
    flightdeck login [--email <email>] [--password <password>]

Missing values are prompted for. The password prompt does not echo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, pw, err := credentials(p, email, password)
			if err != nil {
				return err
			}
			res, err := client.Login(cmd.Context(), api.Credentials{Email: e, Password: pw})
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			colors.Success(fmt.Sprintf("Signed in as %s (%s)", e, res.Role))
			return nil
		},
	}
	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")
	return loginCmd
}

// NewRegisterCmd creates the register command with explicit dependencies.
func NewRegisterCmd(client registerClient, p prompter) *cobra.Command {
	if client == nil {
		panic("NewRegisterCmd: client dependency cannot be nil")
	}

	var email, password string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. The account role is stored; run login to get a session.

USAGE:
    flightdeck register [--email <email>] [--password <password>]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, pw, err := credentials(p, email, password)
			if err != nil {
				return err
			}
			res, err := client.Register(cmd.Context(), api.Credentials{Email: e, Password: pw})
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}
			msg := res.Message
			if msg == "" {
				msg = "Account created"
			}
			colors.Success(fmt.Sprintf("%s: %s (%s)", msg, res.User.Email, res.User.Role))
			return nil
		},
	}
	registerCmd.Flags().StringVar(&email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&password, "password", "", "Account password")
	return registerCmd
}

func init() {
	RootCmd.AddCommand(NewLoginCmd(coreClient, defaultPrompter))
	RootCmd.AddCommand(NewRegisterCmd(coreClient, defaultPrompter))
}
