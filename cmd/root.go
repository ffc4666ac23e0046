// Package cmd holds the root command shared by the notify-stream binary.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/config"
	clierrors "github.com/leasedesk/notify-stream/internal/errors"
	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/version"
	"github.com/spf13/cobra"
)

var (
	debugFlag bool
	quietFlag bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "notify-stream",
	Short:         "Live tenant notifications in your terminal.",
	Long:          `Live tenant notifications in your terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return Setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.ShutdownGlobal()
	},
}

// Execute runs the root command. Errors are reported once, here.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		clierrors.NewDefaultCLIHandler().Report(err)
		_ = logging.ShutdownGlobal()
	}
	return err
}

// Setup loads configuration, applies the global flags and starts the global
// logger. Commands run it through the root's persistent pre-run.
func Setup() error {
	config.Load()
	if debugFlag {
		config.Set("debug", "true")
	}
	if quietFlag {
		config.Set("quiet", "true")
	}
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))

	if err := logging.InitGlobal(); err != nil {
		// Console output still works without the log file.
		colors.Warning(fmt.Sprintf("logging disabled: %v", err))
	}
	return nil
}

func init() {
	RootCmd.Version = version.String()

	// Hide the completion command
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != RootCmd {
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(cmd.Long))
			return
		}
		printHelpText(cmd.OutOrStdout(), cmd)
	})

	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug output and log at debug level")
	RootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Only print errors and warnings")
}

var commandOrder = []string{
	"follow",
	"list",
	"mark-read",
	"status",
	"tui",
	"version",
}

func printHelpText(w io.Writer, cmd *cobra.Command) {
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
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Use, found.Short))
	}

	fmt.Fprintf(w, `notify-stream %s

Live tenant notifications in your terminal.

USAGE:
    notify-stream [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --debug         Print debug output and log at debug level
    --quiet         Only print errors and warnings
    -h, --help      Show help message

Configuration is read from $XDG_CONFIG_HOME/notify-stream/config.toml and
%s* environment variables.
`, version.String(), strings.Join(cmdLines, "\n"), config.EnvPrefix)
}
