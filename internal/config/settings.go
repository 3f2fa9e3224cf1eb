// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/runwk/runwk/internal/issue"
	"github.com/runwk/runwk/pkg/cueutil"
)

const (
	// AppName is the application name used for config directories.
	AppName = "runwk"
	// SettingsFileName is the name of the settings file (without
	// extension).
	SettingsFileName = "settings"
	// SettingsFileExt is the settings file extension.
	SettingsFileExt = "cue"
)

//go:embed settings_schema.cue
var settingsSchema string

type (
	// Settings are tool-level preferences, separate from project
	// configuration: they shape CLI behavior and supply cross-project
	// defaults rather than per-scope command synthesis.
	Settings struct {
		// DefaultBuildSystem, when set, contributes an implicit
		// workspace layer so bare projects resolve without a config
		// file. Empty means no contribution.
		DefaultBuildSystem string `mapstructure:"default_build_system"`
		// Channel is a default toolchain channel for cargo commands.
		Channel string `mapstructure:"channel"`
		// ProjectRoot overrides the RUNWK_PROJECT_ROOT walk-up boundary.
		ProjectRoot string `mapstructure:"project_root"`
		// UI holds presentation preferences.
		UI UISettings `mapstructure:"ui"`
	}

	// UISettings control CLI output.
	UISettings struct {
		ColorScheme string `mapstructure:"color_scheme"`
		Verbose     bool   `mapstructure:"verbose"`
	}
)

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		UI: UISettings{
			ColorScheme: "auto",
			Verbose:     false,
		},
	}
}

// SettingsDir returns the runwk settings directory using platform
// conventions: %APPDATA% on Windows, ~/Library/Application Support on
// macOS, $XDG_CONFIG_HOME (default ~/.config) elsewhere.
func SettingsDir() (string, error) {
	if settingsDirOverride != "" {
		return settingsDirOverride, nil
	}

	var dir string

	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default:
		dir = os.Getenv("XDG_CONFIG_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			dir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(dir, AppName), nil
}

// loadSettingsWithOptions performs option-driven settings loading without
// mutating package state. Callers that want caching can wrap it.
func loadSettingsWithOptions(ctx context.Context, opts SettingsOptions) (*Settings, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load settings canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("default_build_system", defaults.DefaultBuildSystem)
	v.SetDefault("channel", defaults.Channel)
	v.SetDefault("project_root", defaults.ProjectRoot)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	resolvedPath := ""

	if opts.SettingsFilePath != "" {
		if !fileExists(opts.SettingsFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(opts.SettingsFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'runwk config init' to create project configuration").
				Wrap(fmt.Errorf("settings file not found: %s", opts.SettingsFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.SettingsFilePath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(opts.SettingsFilePath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				Wrap(err).
				BuildError()
		}
		resolvedPath = opts.SettingsFilePath
	} else {
		dir, err := settingsDirWithOverride(opts.SettingsDirPath)
		if err != nil {
			return nil, "", err
		}

		path := filepath.Join(dir, SettingsFileName+"."+SettingsFileExt)
		if fileExists(path) {
			if err := loadCUEIntoViper(v, path); err != nil {
				return nil, "", issue.NewErrorContext().
					WithOperation("load settings").
					WithResource(path).
					WithSuggestion("Check that the file contains valid CUE syntax").
					Wrap(err).
					BuildError()
			}
			resolvedPath = path
		}
		// No settings file means defaults, not an error.
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", fmt.Errorf("failed to parse settings: %w", err)
	}

	if _, err := ParseBuildSystem(s.DefaultBuildSystem); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate settings").
			WithResource(resolvedPath).
			WithSuggestion("Set default_build_system to cargo, bazel, or rustc").
			Wrap(err).
			BuildError()
	}

	return &s, resolvedPath, nil
}

// settingsDirWithOverride resolves the settings directory, honoring
// explicit provider options before platform defaults.
func settingsDirWithOverride(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return SettingsDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Settings
// schema, and merges its contents into Viper.
//
// This uses manual CUE parsing instead of cueutil.ParseAndDecode because
// settings decode to map[string]any for Viper integration, use
// Concrete(false) since fields are optional, and merge into Viper's config
// map rather than returning a struct.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(settingsSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile settings schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Settings"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var settingsMap map[string]any
	if err := unified.Decode(&settingsMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(settingsMap); err != nil {
		return fmt.Errorf("failed to merge settings: %w", err)
	}

	return nil
}

// EnsureSettingsDir creates the settings directory if it doesn't exist.
func EnsureSettingsDir() error {
	dir, err := SettingsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// SaveSettings writes the settings to the platform settings file.
func SaveSettings(s *Settings) error {
	if err := EnsureSettingsDir(); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	dir, err := SettingsDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, SettingsFileName+"."+SettingsFileExt)
	if err := os.WriteFile(path, []byte(GenerateSettingsCUE(s)), 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// GenerateSettingsCUE generates a CUE representation of the settings.
func GenerateSettingsCUE(s *Settings) string {
	var sb strings.Builder

	sb.WriteString("// runwk settings file.\n\n")

	if s.DefaultBuildSystem != "" {
		sb.WriteString(fmt.Sprintf("default_build_system: %q\n", s.DefaultBuildSystem))
	}
	if s.Channel != "" {
		sb.WriteString(fmt.Sprintf("channel: %q\n", s.Channel))
	}
	if s.ProjectRoot != "" {
		sb.WriteString(fmt.Sprintf("project_root: %q\n", s.ProjectRoot))
	}

	sb.WriteString("\nui: {\n")
	sb.WriteString(fmt.Sprintf("\tcolor_scheme: %q\n", s.UI.ColorScheme))
	sb.WriteString(fmt.Sprintf("\tverbose: %v\n", s.UI.Verbose))
	sb.WriteString("}\n")

	return sb.String()
}
