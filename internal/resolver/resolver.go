// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/runwk/runwk/internal/config"
	"github.com/runwk/runwk/internal/manifest"
	"github.com/runwk/runwk/internal/strategy"
	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

type (
	// Resolver synthesizes concrete commands from located runnables and
	// layered configuration. It holds no per-call state: every Resolve is
	// a pure function of its inputs and read-only filesystem state, so a
	// single resolver is safe for concurrent use.
	Resolver struct {
		cfg           *config.Config
		registry      *strategy.Registry
		logger        *slog.Logger
		workspaceRoot string
	}

	// Options adjust resolver construction.
	Options struct {
		// WorkspaceRoot bounds bazel BUILD discovery and the manifest
		// fallback walk. Empty walks to the filesystem root.
		WorkspaceRoot string
		// Logger receives debug traces. Nil uses slog.Default().
		Logger *slog.Logger
	}

	// Explanation captures the intermediate steps behind one resolution
	// for display: the layers that matched, the merged configuration, the
	// strategy picked, and the override that applied.
	Explanation struct {
		Layers   []config.ConfigLayer
		Merged   config.LayerConfig
		FileType runnable.FileType
		Strategy string
		Override *config.Override
		Command  *command.Command
	}
)

// New creates a resolver over cfg dispatching through registry.
func New(cfg *config.Config, registry *strategy.Registry, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cfg:           cfg,
		registry:      registry,
		logger:        logger,
		workspaceRoot: opts.WorkspaceRoot,
	}
}

// Resolve synthesizes the command for the runnable kind at scope. The
// matching configuration layers decide the build system, strategy, and
// extra arguments; an identity-matched override applies last and wins
// field by field.
func (r *Resolver) Resolve(scope runnable.ScopeContext, kind runnable.RunnableKind) (*command.Command, error) {
	return r.resolve(scope, kind, kind.Framework())
}

// ResolveBuild synthesizes the compile-only command for the target owning
// the scoped file, dispatching through the Build strategy slot instead of
// the slot a runnable kind maps to.
func (r *Resolver) ResolveBuild(scope runnable.ScopeContext) (*command.Command, error) {
	return r.resolve(scope, runnable.NewBinary(""), runnable.FrameworkBuild)
}

func (r *Resolver) resolve(scope runnable.ScopeContext, kind runnable.RunnableKind, frameworkKind runnable.FrameworkKind) (*command.Command, error) {
	merged := r.cfg.Resolve(scope)

	buildSystem, err := merged.RequireBuildSystem()
	if err != nil {
		return nil, err
	}

	var fileType runnable.FileType
	if scope.FilePath != "" {
		fileType = runnable.DetectFileType(scope.FilePath)
	}

	name, err := strategyName(merged, fileType, frameworkKind)
	if err != nil {
		return nil, err
	}
	strat, err := r.registry.Get(name)
	if err != nil {
		return nil, err
	}

	identity := scope.Identity()
	identity.FileType = fileType
	override := r.cfg.Overrides.Find(identity)

	r.logger.Debug("resolving command",
		"build_system", buildSystem,
		"strategy", name,
		"file", scope.FilePath,
		"override", override != nil)

	ctx := strategy.CommandContext{
		FilePath:      scope.FilePath,
		CrateName:     scope.CrateName,
		PackageName:   scope.CrateName,
		ModulePath:    scope.ModulePath,
		FunctionName:  scope.FunctionName,
		Kind:          kind,
		Channel:       merged.Channel,
		WorkspaceRoot: r.workspaceRoot,
		WorkingDir:    r.workingDir(scope.FilePath),
	}
	if override != nil {
		if override.Channel != "" {
			ctx.Channel = override.Channel
		}
		ctx.Subcommand = override.Subcommand
	}

	cmd, err := strat.Build(ctx)
	if err != nil {
		return nil, err
	}

	applyArgs(cmd, merged, frameworkKind, override)
	applyEnv(cmd, merged, override)
	if override != nil && override.Command != "" {
		cmd.Program = override.Command
	}

	return cmd, nil
}

// ResolveRunnable resolves a parsed runnable against the crate it lives
// in, assembling the scope context from the runnable's own location
// fields.
func (r *Resolver) ResolveRunnable(run runnable.Runnable, crateName string) (*command.Command, error) {
	return r.Resolve(run.ScopeContext(crateName), run.Kind)
}

// Explain resolves like Resolve while keeping the intermediate steps.
// The explanation is populated even when resolution fails, so callers
// can show which layers matched before the failing step.
func (r *Resolver) Explain(scope runnable.ScopeContext, kind runnable.RunnableKind) (*Explanation, error) {
	return r.explain(scope, kind, kind.Framework())
}

// ExplainBuild is Explain for the Build strategy slot.
func (r *Resolver) ExplainBuild(scope runnable.ScopeContext) (*Explanation, error) {
	return r.explain(scope, runnable.NewBinary(""), runnable.FrameworkBuild)
}

func (r *Resolver) explain(scope runnable.ScopeContext, kind runnable.RunnableKind, frameworkKind runnable.FrameworkKind) (*Explanation, error) {
	ex := &Explanation{
		Layers: r.cfg.Matching(scope),
		Merged: r.cfg.Resolve(scope),
	}
	if scope.FilePath != "" {
		ex.FileType = runnable.DetectFileType(scope.FilePath)
	}
	if name, err := strategyName(ex.Merged, ex.FileType, frameworkKind); err == nil {
		ex.Strategy = name
	}

	identity := scope.Identity()
	identity.FileType = ex.FileType
	ex.Override = r.cfg.Overrides.Find(identity)

	cmd, err := r.resolve(scope, kind, frameworkKind)
	if err != nil {
		return ex, err
	}
	ex.Command = cmd
	return ex, nil
}

// strategyName picks the registered strategy for the framework slot.
// Single-file scripts hijack the Test and Binary slots: only the script
// strategies can run them, whatever the layers configure.
func strategyName(merged config.LayerConfig, fileType runnable.FileType, kind runnable.FrameworkKind) (string, error) {
	if fileType == runnable.FileTypeSingleFileScript {
		switch kind {
		case runnable.FrameworkTest:
			return "cargo-script-test", nil
		case runnable.FrameworkBinary:
			return "cargo-script-run", nil
		}
	}
	return merged.StrategyName(kind)
}

// workingDir resolves where a command runs: the first linked project
// whose directory contains the file, else the directory of the nearest
// Cargo.toml above the file. Empty leaves the caller's directory in
// effect.
func (r *Resolver) workingDir(filePath string) string {
	if filePath == "" {
		return ""
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return ""
	}

	// Linked projects are manifest paths; relative entries resolve
	// against the caller's directory.
	for _, project := range r.cfg.LinkedProjects {
		manifestPath, err := filepath.Abs(project)
		if err != nil {
			continue
		}
		dir := filepath.Dir(manifestPath)
		if containsPath(dir, abs) {
			return dir
		}
	}

	if path, ok := manifest.Nearest(abs, r.workspaceRoot); ok {
		return filepath.Dir(path)
	}
	return ""
}

// applyArgs splices the effective extra arguments into cmd ahead of any
// "--" separator and appends test-binary arguments after one. A
// force-replacing override discards the layer contribution first.
func applyArgs(cmd *command.Command, merged config.LayerConfig, kind runnable.FrameworkKind, override *config.Override) {
	args := merged.ArgsFor(kind)
	testBinary := merged.TestBinaryArgs()

	if override != nil {
		if override.ForceReplaceArgs {
			args = slices.Clone(override.ExtraArgs)
			testBinary = slices.Clone(override.ExtraTestBinaryArgs)
		} else {
			args = append(args, override.ExtraArgs...)
			testBinary = append(testBinary, override.ExtraTestBinaryArgs...)
		}
	}

	cmd.Splice(args...)

	if kind == runnable.FrameworkTest && len(testBinary) > 0 {
		cmd.EnsureSeparator()
		cmd.Append(testBinary...)
	}
}

// applyEnv appends environment pairs: merged layer env in sorted key
// order, then override env. Later pairs win on apply, so the override
// keeps the last word; a force-replacing override drops the layer env
// entirely.
func applyEnv(cmd *command.Command, merged config.LayerConfig, override *config.Override) {
	if override == nil || !override.ForceReplaceEnv {
		for _, key := range merged.EnvKeys() {
			cmd.SetEnv(key, merged.Env[key])
		}
	}
	if override != nil {
		for _, key := range slices.Sorted(maps.Keys(override.Env)) {
			cmd.SetEnv(key, override.Env[key])
		}
	}
}

// containsPath reports whether path lies inside dir (or equals it).
func containsPath(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
