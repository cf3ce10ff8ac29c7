// Package cmd holds the flightdeck command line.
package cmd

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/flightdeck/internal/colors"
	"github.com/cristianoliveira/flightdeck/internal/config"
	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/cristianoliveira/flightdeck/internal/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command. Without a subcommand it opens the dashboard.
var RootCmd = &cobra.Command{
	Use:               "flightdeck",
	Short:             "Terminal dashboard for the flight status service",
	Long:              `Terminal dashboard for the flight status service.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := coreClient.Close(); err != nil {
			colors.Debug(fmt.Sprintf("closing session store: %v", err))
		}
		_ = logging.ShutdownGlobal()
	},
}

var (
	flagAPIURL  string
	flagPushURL string
	flagDebug   bool
	flagQuiet   bool
)

// Execute runs the root command. main prints the returned error.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			fmt.Fprint(cmd.OutOrStdout(), cmd.Long+"\n")
			return
		}
		printHelpText(cmd)
	})

	RootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL (overrides api_base_url)")
	RootCmd.PersistentFlags().StringVar(&flagPushURL, "push-url", "", "Push websocket URL (overrides push_url)")
	RootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Print debug output")
	RootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "Only print warnings and errors")
}

// setup loads configuration, applies flag overrides and starts the file logger.
func setup(cmd *cobra.Command, args []string) error {
	config.Load()
	if flagAPIURL != "" {
		config.Set("api_base_url", strings.TrimRight(flagAPIURL, "/"))
	}
	if flagPushURL != "" {
		config.Set("push_url", flagPushURL)
	}
	if flagDebug {
		config.Set("debug", "true")
	}
	if flagQuiet {
		config.Set("quiet", "true")
	}
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))

	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("file logging disabled: %v", err))
	}
	logging.GetGlobal().Debug("command started", "command", cmd.CommandPath())
	return nil
}

func printHelpText(cmd *cobra.Command) {
	commandOrder := []string{
		"tui",
		"list",
		"watch",
		"set-status",
		"login",
		"register",
		"logout",
		"whoami",
		"help",
		"version",
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-28s %s", found.Use, found.Short))
	}

	helpText := fmt.Sprintf(`flightdeck %s

Terminal dashboard for the flight status service.

USAGE:
    flightdeck [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --api-url <url>     API base URL
    --push-url <url>    Push websocket URL
    --debug             Print debug output
    --quiet             Only print warnings and errors
    -h, --help          Show help message
`, version.String(), strings.Join(cmdLines, "\n"))
	fmt.Fprint(cmd.OutOrStdout(), helpText)
}
