// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"path/filepath"

	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

// Cargo strategies share one argument order: channel, subcommand phrase,
// --package, target flag, kind-specific filter. Keeping the order fixed
// makes commands comparable across kinds.

// CargoTestStrategy runs tests through `cargo test`.
type CargoTestStrategy struct{}

// NewCargoTestStrategy returns the default test strategy.
func NewCargoTestStrategy() *CargoTestStrategy { return &CargoTestStrategy{} }

// Name implements Strategy.
func (s *CargoTestStrategy) Name() string { return "cargo-test" }

// Kind implements Strategy.
func (s *CargoTestStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkTest }

// Build implements Strategy.
func (s *CargoTestStrategy) Build(ctx CommandContext) (*command.Command, error) {
	args := prelude(ctx, "test")
	if ctx.PackageName != "" {
		args = append(args, "--package", ctx.PackageName)
	}
	args = append(args, deriveTargetFlag(ctx.FilePath, ctx.PackageName).args()...)

	switch ctx.Kind.Kind {
	case runnable.KindDocTest:
		// Doc tests routed here instead of cargo-doctest still need the
		// --doc selector; the filter format is shared.
		args = append(args, "--doc", "--", docTestFilter(ctx.Kind))
	case runnable.KindTest:
		args = append(args, "--", testFilter(ctx), "--exact")
	case runnable.KindModuleTests:
		if ctx.Kind.ModuleName != "" {
			args = append(args, "--", moduleTestsFilter(ctx))
		}
	default:
		// File-level runs carry no filter unless a function name was
		// resolved for them.
		if ctx.FunctionName != "" {
			args = append(args, "--", joinPath(ctx.ModulePath, ctx.FunctionName), "--exact")
		}
	}
	return newCommand(command.ToolCargo, ctx, args), nil
}

// CargoNextestStrategy runs tests through `cargo nextest run`. Nextest
// does its own exact matching, so no `--` separator or --exact flag is
// emitted.
type CargoNextestStrategy struct{}

// NewCargoNextestStrategy returns the nextest strategy.
func NewCargoNextestStrategy() *CargoNextestStrategy { return &CargoNextestStrategy{} }

// Name implements Strategy.
func (s *CargoNextestStrategy) Name() string { return "cargo-nextest" }

// Kind implements Strategy.
func (s *CargoNextestStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkTest }

// Build implements Strategy.
func (s *CargoNextestStrategy) Build(ctx CommandContext) (*command.Command, error) {
	args := prelude(ctx, "nextest", "run")
	if ctx.PackageName != "" {
		args = append(args, "--package", ctx.PackageName)
	}
	args = append(args, deriveTargetFlag(ctx.FilePath, ctx.PackageName).args()...)

	switch ctx.Kind.Kind {
	case runnable.KindTest:
		args = append(args, testFilter(ctx))
	case runnable.KindModuleTests:
		if ctx.Kind.ModuleName != "" {
			args = append(args, moduleTestsFilter(ctx))
		}
	}
	return newCommand(command.ToolCargo, ctx, args), nil
}

// CargoRunStrategy executes binaries through `cargo run`.
type CargoRunStrategy struct{}

// NewCargoRunStrategy returns the run strategy.
func NewCargoRunStrategy() *CargoRunStrategy { return &CargoRunStrategy{} }

// Name implements Strategy.
func (s *CargoRunStrategy) Name() string { return "cargo-run" }

// Kind implements Strategy.
func (s *CargoRunStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBinary }

// Build implements Strategy.
func (s *CargoRunStrategy) Build(ctx CommandContext) (*command.Command, error) {
	args := prelude(ctx, "run")
	if ctx.PackageName != "" {
		args = append(args, "--package", ctx.PackageName)
	}
	if ctx.Kind.Kind == runnable.KindBinary {
		args = append(args, runTarget(ctx)...)
	}
	return newCommand(command.ToolCargo, ctx, args), nil
}

// runTarget picks the selector for a Binary runnable. An explicit bin
// name wins; otherwise the file location decides: examples get
// --example, the canonical main entry point runs the package's root
// binary, and any other file runs the binary named after its stem.
func runTarget(ctx CommandContext) []string {
	if ctx.Kind.BinName != "" {
		return []string{"--bin", ctx.Kind.BinName}
	}
	p := filepath.ToSlash(ctx.FilePath)
	switch {
	case p == "":
		return nil
	case underDir(p, "examples"):
		return []string{"--example", fileStem(p)}
	case endsWithPath(p, "src/main.rs"):
		if ctx.PackageName == "" {
			return nil
		}
		return []string{"--bin", ctx.PackageName}
	default:
		return []string{"--bin", fileStem(p)}
	}
}

// CargoBenchStrategy runs benchmarks through `cargo bench`. The bench
// target is selected by the target flag; the benchmark function name is
// passed after "--" as a harness filter so the two never collide.
type CargoBenchStrategy struct{}

// NewCargoBenchStrategy returns the bench strategy.
func NewCargoBenchStrategy() *CargoBenchStrategy { return &CargoBenchStrategy{} }

// Name implements Strategy.
func (s *CargoBenchStrategy) Name() string { return "cargo-bench" }

// Kind implements Strategy.
func (s *CargoBenchStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBenchmark }

// Build implements Strategy.
func (s *CargoBenchStrategy) Build(ctx CommandContext) (*command.Command, error) {
	args := prelude(ctx, "bench")
	if ctx.PackageName != "" {
		args = append(args, "--package", ctx.PackageName)
	}
	args = append(args, deriveTargetFlag(ctx.FilePath, ctx.PackageName).args()...)

	name := ctx.Kind.BenchName
	if name == "" {
		name = ctx.FunctionName
	}
	if name != "" {
		args = append(args, "--", name)
	}
	return newCommand(command.ToolCargo, ctx, args), nil
}

// CargoDocTestStrategy runs doc tests through `cargo test --doc`.
type CargoDocTestStrategy struct{}

// NewCargoDocTestStrategy returns the doc-test strategy.
func NewCargoDocTestStrategy() *CargoDocTestStrategy { return &CargoDocTestStrategy{} }

// Name implements Strategy.
func (s *CargoDocTestStrategy) Name() string { return "cargo-doctest" }

// Kind implements Strategy.
func (s *CargoDocTestStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkDocTest }

// Build implements Strategy.
func (s *CargoDocTestStrategy) Build(ctx CommandContext) (*command.Command, error) {
	args := prelude(ctx, "test")
	if ctx.PackageName != "" {
		args = append(args, "--package", ctx.PackageName)
	}
	args = append(args, "--doc")
	if ctx.Kind.Kind == runnable.KindDocTest {
		args = append(args, "--", docTestFilter(ctx.Kind))
	}
	return newCommand(command.ToolCargo, ctx, args), nil
}

// CargoBuildStrategy compiles without running through `cargo build`.
// It emits the derived target flag so the build covers exactly the
// compilation target owning the file.
type CargoBuildStrategy struct{}

// NewCargoBuildStrategy returns the build strategy.
func NewCargoBuildStrategy() *CargoBuildStrategy { return &CargoBuildStrategy{} }

// Name implements Strategy.
func (s *CargoBuildStrategy) Name() string { return "cargo-build" }

// Kind implements Strategy.
func (s *CargoBuildStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBuild }

// Build implements Strategy.
func (s *CargoBuildStrategy) Build(ctx CommandContext) (*command.Command, error) {
	args := prelude(ctx, "build")
	if ctx.PackageName != "" {
		args = append(args, "--package", ctx.PackageName)
	}
	args = append(args, deriveTargetFlag(ctx.FilePath, ctx.PackageName).args()...)
	return newCommand(command.ToolCargo, ctx, args), nil
}
