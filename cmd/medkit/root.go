// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/medkit/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "medkit",
		Short: "A home medicine cabinet inventory",
		Long: TitleStyle.Render("medkit") + SubtitleStyle.Render(" - A home medicine cabinet inventory") + `

medkit keeps track of pill and drop packages: what you have, how much is
left, and when it expires. Consuming from a package is refused once it is
expired or empty.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Add a package:   medkit add --variant pills --title aspirin --expires 2026-11-17 --capacity 20
  2. Take from it:    medkit take 1 2
  3. Check on things: medkit report

` + SubtitleStyle.Render("Examples:") + `
  medkit list                List every package
  medkit list --expired      List expired packages
  medkit remove aspirin      Remove the package titled "aspirin"
  medkit export -o inv.toml  Export the inventory as TOML
  medkit config show         Show current configuration`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&app.flags.configFile, "config", "", "config file (default is $HOME/.config/medkit/config.cue)")
	flags.StringVar(&app.flags.envFile, "env-file", "", "dotenv file with MEDKIT_* overrides")
	flags.StringVar(&app.flags.dataPath, "data", "", "inventory file (overrides storage.path)")
	flags.StringVar(&app.flags.backend, "backend", "", "storage backend: json or sqlite (overrides storage.backend)")

	rootCmd.AddCommand(
		newAddCommand(app),
		newListCommand(app),
		newEditCommand(app),
		newRemoveCommand(app),
		newTakeCommand(app),
		newReportCommand(app),
		newExportCommand(app),
		newImportCommand(app),
		newConfigCommand(app),
		newIssuesCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
