// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/runwk/runwk/internal/config"
	"github.com/runwk/runwk/internal/issue"
	"github.com/runwk/runwk/pkg/runnable"
)

// newConfigCommand creates the `runwk config` command tree. Subcommands
// that read configuration use the App's providers.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage runwk configuration",
		Long: `Manage runwk configuration.

Tool settings are stored in:
  - Linux: ~/.config/runwk/settings.cue
  - macOS: ~/Library/Application Support/runwk/settings.cue
  - Windows: %APPDATA%\runwk\settings.cue

Project configuration is collected from .runwk.json, runwk.json, and
.runwk.cue files between the working directory and the project root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show settings and the project configuration stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter project configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return initProjectConfig(app, force)
		},
	}
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing project configuration")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a settings value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setSettingsValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective settings as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSettings(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateSettingsCUE(s))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	settings, err := app.loadSettings(ctx)
	if err != nil {
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, headerStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	// Derive the settings path from the platform settings directory since
	// the provider does not cache resolved paths.
	settingsPath := settingsFile
	if settingsPath == "" {
		if dir, dirErr := config.SettingsDir(); dirErr == nil {
			settingsPath = filepath.Join(dir, config.SettingsFileName+"."+config.SettingsFileExt)
		}
	}
	if settingsPath != "" && fileExistsCheck(settingsPath) {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Settings file"), settingsPath)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Settings file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("default_build_system"), renderSettingValue(settings.DefaultBuildSystem))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("channel"), renderSettingValue(settings.Channel))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("project_root"), renderSettingValue(settings.ProjectRoot))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(app.stdout, "  color_scheme: %s\n", valueStyle.Render(settings.UI.ColorScheme))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", settings.UI.Verbose)))

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	cfg, err := app.loadProject(ctx, cwd, settings)
	if err != nil {
		issueID, _ := classifyConfigLoadError(err, verbose)
		if rendered, renderErr := issue.Get(issueID).Render("dark"); renderErr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return err
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("layers"))
	if len(cfg.Layers) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, layer := range cfg.Layers {
			fmt.Fprintf(app.stdout, "  - %s\n", valueStyle.Render(layer.Scope.String()))
		}
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("overrides"))
	if cfg.Overrides.Len() == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, o := range cfg.Overrides.All() {
			fmt.Fprintf(app.stdout, "  - %s\n", valueStyle.Render(describeOverride(&o)))
		}
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("linked_projects"))
	if len(cfg.LinkedProjects) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, link := range cfg.LinkedProjects {
			fmt.Fprintf(app.stdout, "  - %s\n", valueStyle.Render(link))
		}
	}

	printEffectiveConfig(app, cfg.Resolve(runnable.ScopeContext{}))
	return nil
}

// printEffectiveConfig renders the workspace-scope merge, the baseline
// every runnable inherits before crate, module, file, and function layers
// refine it.
func printEffectiveConfig(app *App, merged config.LayerConfig) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("effective (workspace scope)"))
	fmt.Fprintf(app.stdout, "  build_system: %s\n", renderSettingValue(string(merged.BuildSystem)))
	fmt.Fprintf(app.stdout, "  channel: %s\n", renderSettingValue(merged.Channel))

	if len(merged.Strategies) > 0 {
		kinds := make([]string, 0, len(merged.Strategies))
		for kind := range merged.Strategies {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		fmt.Fprintf(app.stdout, "  strategies:\n")
		for _, kind := range kinds {
			fmt.Fprintf(app.stdout, "    %s: %s\n", kind, valueStyle.Render(merged.Strategies[runnable.FrameworkKind(kind)]))
		}
	}

	if len(merged.Args) > 0 {
		buckets := make([]string, 0, len(merged.Args))
		for bucket := range merged.Args {
			buckets = append(buckets, string(bucket))
		}
		sort.Strings(buckets)
		fmt.Fprintf(app.stdout, "  args:\n")
		for _, bucket := range buckets {
			args := merged.Args[config.ArgBucket(bucket)]
			fmt.Fprintf(app.stdout, "    %s: %s\n", bucket, valueStyle.Render(fmt.Sprintf("%v", args)))
		}
	}

	if len(merged.Env) > 0 {
		fmt.Fprintf(app.stdout, "  env:\n")
		for _, key := range merged.EnvKeys() {
			fmt.Fprintf(app.stdout, "    %s: %s\n", key, valueStyle.Render(merged.Env[key]))
		}
	}
}

func initProjectConfig(app *App, force bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}

	path, err := config.WriteStarter(cwd, force)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintf(app.stdout, "  1. Edit %s to match your build system and strategies\n", config.StarterFileName)
	fmt.Fprintln(app.stdout, "  2. Run 'runwk config show' to inspect the merged stack")
	fmt.Fprintln(app.stdout, "  3. Run 'runwk resolve <file> --explain' to trace a resolution")

	return nil
}

func showConfigPath(app *App) error {
	settingsDir, err := config.SettingsDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Settings directory: %s\n", settingsDir)
	fmt.Fprintf(app.stdout, "Settings file: %s\n", filepath.Join(settingsDir, config.SettingsFileName+"."+config.SettingsFileExt))
	fmt.Fprintf(app.stdout, "Project files: %s (walked up to the project root)\n", projectFileNamesForDisplay())
	fmt.Fprintf(app.stdout, "Overrides file: %s\n", config.OverridesFileName)

	return nil
}

// projectFileNamesForDisplay lists the per-directory project config file
// names in lookup order.
func projectFileNamesForDisplay() string {
	return ".runwk.json, runwk.json, " + config.StarterFileName
}

func setSettingsValue(ctx context.Context, app *App, key, value string) error {
	settings, err := app.loadSettings(ctx)
	if err != nil {
		return err
	}

	switch key {
	case "default_build_system":
		if _, err := config.ParseBuildSystem(value); err != nil {
			return err
		}
		settings.DefaultBuildSystem = value

	case "channel":
		settings.Channel = value

	case "project_root":
		settings.ProjectRoot = value

	case "ui.verbose":
		settings.UI.Verbose = value == "true" || value == "1"

	case "ui.color_scheme":
		settings.UI.ColorScheme = value

	default:
		return fmt.Errorf("unknown settings key: %s\nValid keys: default_build_system, channel, project_root, ui.verbose, ui.color_scheme", key)
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// renderSettingValue renders a settings value, or a muted placeholder when
// it is unset.
func renderSettingValue(v string) string {
	if v == "" {
		return SubtitleStyle.Render("(not set)")
	}
	return SuccessStyle.Render(v)
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
