// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newStrategiesCommand creates the `runwk strategies` command.
func newStrategiesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List registered framework strategies",
		Long: `List every registered framework strategy with the command family it
serves. Layer configuration refers to strategies by these names, e.g.
{"frameworks": {"test": "cargo-nextest"}}.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStrategies(app)
		},
	}
}

// runStrategies prints the registry contents in name order.
func runStrategies(app *App) error {
	fmt.Fprintln(app.stdout, TitleStyle.Render("Strategies"))
	fmt.Fprintln(app.stdout)

	width := 0
	for _, name := range app.Registry.Names() {
		if len(name) > width {
			width = len(name)
		}
	}

	for _, s := range app.Registry.All() {
		name := fmt.Sprintf("%-*s", width, s.Name())
		fmt.Fprintf(app.stdout, "  %s  %s\n", CmdStyle.Render(name), SubtitleStyle.Render(string(s.Kind())))
	}

	return nil
}
