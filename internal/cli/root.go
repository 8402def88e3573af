// Package cli implements the ResetDopa command-line interface using Cobra.
// Each subcommand maps to one engine operation (today, complete, urge, ...).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/resetdopa/engine/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "resetdopa",
	Short: "ResetDopa: 30-day digital habit reset engine",
	Long: `ResetDopa tracks a 30-day program of small daily tasks, streaks,
and urge logging, all stored locally on your machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDaemon builds the full runtime for one-shot commands.
func openDaemon() (*daemon.Daemon, error) {
	return daemon.New()
}
