package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// OsExit is swapped out by tests.
var OsExit = os.Exit

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates the root command for the unithost application
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "unithost",
		Short:   "Unit host - load, inspect and tune loadable units",
		Version: Version,
		Long: `Unit host loads the built-in units, applies parameter overrides and
keeps them running until interrupted. While running, parameters can be read
and written over HTTP.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.SetVersionTemplate(PrintVersion() + "\n")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewInfoCommand())

	return cmd
}

// PrintVersion prints version information
func PrintVersion() string {
	return fmt.Sprintf("unithost v%s (commit: %s, built on: %s)", Version, Commit, Date)
}
