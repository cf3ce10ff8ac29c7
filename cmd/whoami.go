package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/cristianoliveira/flightdeck/internal/session"
	"github.com/spf13/cobra"
)

type whoamiClient interface {
	Session() (session.Session, error)
}

// whoamiNow is replaced in tests.
var whoamiNow = time.Now

// NewWhoamiCmd creates the whoami command with explicit dependencies.
func NewWhoamiCmd(client whoamiClient) *cobra.Command {
	if client == nil {
		panic("NewWhoamiCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Long: `Show the stored role and whether a credential is present.
JWT credentials are decoded, not verified, to show their claims.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := client.Session()
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), s, whoamiNow())
			return nil
		},
	}
}

func printSession(w io.Writer, s session.Session, now time.Time) {
	if !s.HasCredential() {
		fmt.Fprintln(w, "Not signed in")
		if s.Role != "" {
			fmt.Fprintf(w, "Role:    %s\n", s.Role)
		}
		return
	}
	fmt.Fprintln(w, "Signed in")
	fmt.Fprintf(w, "Role:    %s\n", orDash(s.Role))

	claims, ok := session.ParseClaims(s.Credential)
	if !ok {
		fmt.Fprintln(w, "Token:   opaque")
		return
	}
	if claims.Email != "" {
		fmt.Fprintf(w, "Email:   %s\n", claims.Email)
	}
	if id := claims.UserID; id != "" {
		fmt.Fprintf(w, "User:    %s\n", id)
	} else if claims.Subject != "" {
		fmt.Fprintf(w, "User:    %s\n", claims.Subject)
	}
	if !claims.ExpiresAt.IsZero() {
		state := "valid"
		if claims.Expired(now) {
			state = "expired"
		}
		fmt.Fprintf(w, "Expires: %s (%s)\n", claims.ExpiresAt.UTC().Format(time.RFC3339), state)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	RootCmd.AddCommand(NewWhoamiCmd(coreClient))
}
