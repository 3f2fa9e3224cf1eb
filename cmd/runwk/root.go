// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/runwk/runwk/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// settingsFile allows specifying a custom settings file
	settingsFile string
	// projectRoot bounds the configuration walk-up
	projectRoot string
)

// newRootCommand builds the root command and its subcommand tree.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "runwk",
		Short: "Resolve Rust runnables into build-system commands",
		Long: TitleStyle.Render("runwk") + SubtitleStyle.Render(" - Resolve Rust runnables into build-system commands") + `

runwk turns a located Rust code element (a test, benchmark, binary,
doc-test, or standalone script) plus layered project configuration
into the exact command a build system would run: cargo, bazel, rustc,
or cargo-script.

Configuration lives in '.runwk.json' or '.runwk.cue' files that layer
from the workspace down to a single function. More specific scopes win.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'runwk config init' in your project directory
  2. Point runwk at a file: runwk resolve src/main.rs
  3. Inspect a decision with: runwk resolve src/lib.rs -t my_test --explain

` + SubtitleStyle.Render("Examples:") + `
  runwk resolve src/main.rs                Synthesize the run command
  runwk resolve src/lib.rs -t my_test      Synthesize a test command
  runwk strategies                         List available strategies
  runwk config show                        Show effective configuration`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			installLogHandler(verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default is the platform config dir)")
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project-root", "", "upper boundary for configuration discovery")

	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newStrategiesCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// installLogHandler routes log/slog through charmbracelet/log so resolver
// debug traces share the CLI's styling. Debug level requires --verbose.
func installLogHandler(verboseMode bool) {
	level := log.WarnLevel
	if verboseMode {
		level = log.DebugLevel
	}
	slog.SetDefault(slog.New(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Level:           level,
	})))
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the application and runs the root command. This is called
// by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
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
