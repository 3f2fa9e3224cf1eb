// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/runwk/runwk/internal/config"
	"github.com/runwk/runwk/internal/strategy"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: command handlers receive an App reference and
	// reach tool settings, project configuration, and the strategy registry
	// through it.
	App struct {
		Settings config.SettingsProvider
		Project  ProjectLoader
		Registry *strategy.Registry
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp. Tests supply
	// fakes to isolate handler behavior.
	Dependencies struct {
		Settings config.SettingsProvider
		Project  ProjectLoader
		Registry *strategy.Registry
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ProjectLoader loads layered project configuration for a directory.
	ProjectLoader interface {
		Load(ctx context.Context, startDir string, opts config.LoadOptions) (*config.Config, error)
	}

	projectLoaderFunc func(ctx context.Context, startDir string, opts config.LoadOptions) (*config.Config, error)
)

// Load implements ProjectLoader.
func (f projectLoaderFunc) Load(ctx context.Context, startDir string, opts config.LoadOptions) (*config.Config, error) {
	return f(ctx, startDir, opts)
}

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Settings == nil {
		deps.Settings = config.NewSettingsProvider()
	}
	if deps.Project == nil {
		deps.Project = projectLoaderFunc(config.Load)
	}
	if deps.Registry == nil {
		reg, err := strategy.DefaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to build strategy registry: %w", err)
		}
		deps.Registry = reg
	}

	return &App{
		Settings: deps.Settings,
		Project:  deps.Project,
		Registry: deps.Registry,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

// loadSettings returns the effective tool settings. A broken settings file
// warns and falls back to defaults so resolution stays operational; an
// explicit --settings path that fails to load is surfaced as an error.
func (a *App) loadSettings(ctx context.Context) (*config.Settings, error) {
	s, err := a.Settings.Load(ctx, config.SettingsOptions{SettingsFilePath: settingsFile})
	if err != nil {
		if settingsFile != "" {
			return nil, err
		}
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return config.DefaultSettings(), nil
	}
	return s, nil
}

// loadProject loads the layered configuration governing startDir, folding
// in the implicit workspace layer the tool settings contribute. The
// implicit layer loads first, so any configured workspace layer wins ties.
func (a *App) loadProject(ctx context.Context, startDir string, s *config.Settings) (*config.Config, error) {
	cfg, err := a.Project.Load(ctx, startDir, config.LoadOptions{ProjectRoot: effectiveProjectRoot(s)})
	if err != nil {
		return nil, err
	}

	defaultBuildSystem, err := config.ParseBuildSystem(s.DefaultBuildSystem)
	if err != nil {
		return nil, err
	}
	if defaultBuildSystem == "" && s.Channel == "" {
		return cfg, nil
	}

	withDefaults := &config.Config{}
	withDefaults.AddLayer(config.WorkspaceScope(), config.LayerConfig{
		BuildSystem: defaultBuildSystem,
		Channel:     s.Channel,
	})
	withDefaults.Merge(cfg)
	return withDefaults, nil
}

// effectiveProjectRoot resolves the configuration walk-up boundary: the
// --project-root flag wins, then the settings value. The loader falls back
// to RUNWK_PROJECT_ROOT and the home directory when both are empty.
func effectiveProjectRoot(s *config.Settings) string {
	if projectRoot != "" {
		return projectRoot
	}
	return s.ProjectRoot
}
