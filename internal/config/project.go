// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/runwk/runwk/internal/issue"
	"github.com/runwk/runwk/pkg/runnable"
)

// Project config file names checked per directory, in priority order. At
// most one of these loads per directory.
var projectFileNames = []string{".runwk.json", "runwk.json", ".runwk.cue"}

// OverridesFileName is the legacy flat-format file collected alongside the
// layered files.
const OverridesFileName = ".runwk-overrides.json"

// ProjectRootEnv bounds the walk-up config discovery when set.
const ProjectRootEnv = "RUNWK_PROJECT_ROOT"

type (
	// Config is the full project configuration for one resolution
	// session: scope-matched layers, identity-keyed overrides, and the
	// linked projects used for working-directory resolution. Loaded once,
	// read-only afterwards.
	Config struct {
		Layers         []ConfigLayer
		Overrides      OverrideSet
		LinkedProjects []string
	}

	// LoadOptions control project config discovery.
	LoadOptions struct {
		// ProjectRoot bounds the upward walk. Empty falls back to
		// RUNWK_PROJECT_ROOT, then the user's home directory.
		ProjectRoot string
	}
)

// AddLayer appends a layer. Later layers win specificity ties.
func (c *Config) AddLayer(scope Scope, lc LayerConfig) {
	c.Layers = append(c.Layers, ConfigLayer{Scope: scope, Config: lc})
}

// Merge folds other into c: layers append in load order, overrides merge
// by identity, and the root-most linked project list wins.
func (c *Config) Merge(other *Config) {
	c.Layers = append(c.Layers, other.Layers...)
	c.Overrides.Merge(other.Overrides)
	if len(c.LinkedProjects) == 0 {
		c.LinkedProjects = other.LinkedProjects
	}
}

// Matching returns the layers that accept scope, stably sorted ascending
// by specificity. Ties keep load order so the last loaded layer wins.
func (c *Config) Matching(scope runnable.ScopeContext) []ConfigLayer {
	var matched []ConfigLayer
	for _, layer := range c.Layers {
		if layer.Scope.Matches(scope) {
			matched = append(matched, layer)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Scope.Specificity() < matched[j].Scope.Specificity()
	})
	return matched
}

// Resolve merges every layer matching scope into one effective
// configuration, least specific first.
func (c *Config) Resolve(scope runnable.ScopeContext) LayerConfig {
	merged := NewLayerConfig()
	for _, layer := range c.Matching(scope) {
		merged.Apply(layer.Config)
	}
	return merged
}

// Load walks up from startDir collecting project configuration files and
// merges them root-most first, so files closer to the code win. Both the
// layered formats (.runwk.json, runwk.json, .runwk.cue) and the legacy
// flat format (.runwk-overrides.json) contribute. A missing configuration
// is not an error: resolution against an empty Config fails later with
// its own diagnostics.
func Load(ctx context.Context, startDir string, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load project config canceled: %w", ctx.Err())
	default:
	}

	dirs, err := configSearchDirs(startDir, opts)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	for _, dir := range dirs {
		for _, name := range projectFileNames {
			path := filepath.Join(dir, name)
			if !fileExists(path) {
				continue
			}
			loaded, err := loadProjectFile(path)
			if err != nil {
				return nil, issue.NewErrorContext().
					WithOperation("load project configuration").
					WithResource(path).
					WithSuggestion("Check the file for syntax errors").
					WithSuggestion("Run 'runwk config init --force' to regenerate a starting point").
					Wrap(err).
					BuildError()
			}
			cfg.Merge(loaded)
			break
		}

		overridesPath := filepath.Join(dir, OverridesFileName)
		if fileExists(overridesPath) {
			loaded, err := loadOverridesFile(overridesPath)
			if err != nil {
				return nil, issue.NewErrorContext().
					WithOperation("load override configuration").
					WithResource(overridesPath).
					WithSuggestion("Check the file for syntax errors").
					Wrap(err).
					BuildError()
			}
			cfg.Merge(loaded)
		}
	}

	return cfg, nil
}

// configSearchDirs lists the directories to check for config files,
// root-most first. The walk starts at startDir and stops at the project
// root boundary (options, then RUNWK_PROJECT_ROOT, then $HOME) or the
// filesystem root.
func configSearchDirs(startDir string, opts LoadOptions) ([]string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start directory: %w", err)
	}

	boundary := opts.ProjectRoot
	if boundary == "" {
		boundary = os.Getenv(ProjectRootEnv)
	}
	if boundary == "" {
		if home, err := os.UserHomeDir(); err == nil {
			boundary = home
		}
	}
	if boundary != "" {
		if b, err := filepath.Abs(boundary); err == nil {
			boundary = b
		}
	}

	var dirs []string
	dir := abs
	for {
		dirs = append(dirs, dir)
		if dir == boundary {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Reverse so the root-most directory loads first (lowest priority).
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs, nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
