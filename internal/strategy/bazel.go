// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/runwk/runwk/internal/bazel"
	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

// Bazel strategies resolve a target label through the build-graph finder
// before emitting anything. A file with no owning label is a hard error;
// guessing a label would run the wrong target. The finder is shared so
// all strategies hit one BUILD-file cache.

// ErrNoTarget is the sentinel error wrapped by NoTargetError.
var ErrNoTarget = errors.New("no matching target")

// NoTargetError is returned when a BUILD file was found but none of its
// rules claim the source file for the wanted kind.
type NoTargetError struct {
	// Kind is the lowercase target family looked for: test, binary, build.
	Kind string
	// File is the source file no rule claimed.
	File string
}

// Error implements the error interface.
func (e *NoTargetError) Error() string {
	return fmt.Sprintf("No %s target found for %s", e.Kind, e.File)
}

// Unwrap returns ErrNoTarget so callers can use errors.Is for programmatic
// detection.
func (e *NoTargetError) Unwrap() error { return ErrNoTarget }

// BazelTestStrategy runs tests through `bazel test`.
type BazelTestStrategy struct {
	finder *bazel.Finder
}

// NewBazelTestStrategy returns a test strategy backed by finder.
func NewBazelTestStrategy(finder *bazel.Finder) *BazelTestStrategy {
	return &BazelTestStrategy{finder: finder}
}

// Name implements Strategy.
func (s *BazelTestStrategy) Name() string { return "bazel-test" }

// Kind implements Strategy.
func (s *BazelTestStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkTest }

// Build implements Strategy.
func (s *BazelTestStrategy) Build(ctx CommandContext) (*command.Command, error) {
	if ctx.FilePath == "" {
		return nil, errors.New("No file path provided")
	}
	label, err := s.testLabel(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved bazel test target", "file", ctx.FilePath, "label", label)

	args := []string{"test", label}
	if ctx.FunctionName != "" {
		args = append(args, "--test_filter="+ctx.FunctionName)
	}
	return newCommand(command.ToolBazel, ctx, args), nil
}

// testLabel picks the label to test: the doc-test rule when the runnable
// is a doc test and one exists, then the test target owning the file,
// then the suite claiming it from a tests/ directory.
func (s *BazelTestStrategy) testLabel(ctx CommandContext) (string, error) {
	if ctx.Kind.Kind == runnable.KindDocTest {
		target, err := s.finder.FindDocTestTarget(ctx.FilePath, ctx.WorkspaceRoot)
		if err != nil {
			return "", err
		}
		if target != nil {
			return target.Label, nil
		}
	}

	target, err := s.finder.FindRunnableTarget(ctx.FilePath, ctx.WorkspaceRoot, bazel.KindTest)
	if err != nil {
		return "", err
	}
	if target == nil {
		target, err = s.finder.FindIntegrationTestTarget(ctx.FilePath, ctx.WorkspaceRoot)
		if err != nil {
			return "", err
		}
	}
	if target == nil {
		return "", &NoTargetError{Kind: "test", File: ctx.FilePath}
	}
	return target.Label, nil
}

// BazelRunStrategy executes binaries through `bazel run`.
type BazelRunStrategy struct {
	finder *bazel.Finder
}

// NewBazelRunStrategy returns a run strategy backed by finder.
func NewBazelRunStrategy(finder *bazel.Finder) *BazelRunStrategy {
	return &BazelRunStrategy{finder: finder}
}

// Name implements Strategy.
func (s *BazelRunStrategy) Name() string { return "bazel-run" }

// Kind implements Strategy.
func (s *BazelRunStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBinary }

// Build implements Strategy.
func (s *BazelRunStrategy) Build(ctx CommandContext) (*command.Command, error) {
	if ctx.FilePath == "" {
		return nil, errors.New("No file path provided")
	}
	target, err := s.finder.FindRunnableTarget(ctx.FilePath, ctx.WorkspaceRoot, bazel.KindBinary)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &NoTargetError{Kind: "binary", File: ctx.FilePath}
	}
	return newCommand(command.ToolBazel, ctx, []string{"run", target.Label}), nil
}

// BazelBenchStrategy runs benchmarks through `bazel run`. The label is
// derived from the benchmark name by the `//:<name>_bench` naming
// convention; no BUILD lookup happens.
type BazelBenchStrategy struct{}

// NewBazelBenchStrategy returns the bench strategy.
func NewBazelBenchStrategy() *BazelBenchStrategy { return &BazelBenchStrategy{} }

// Name implements Strategy.
func (s *BazelBenchStrategy) Name() string { return "bazel-bench" }

// Kind implements Strategy.
func (s *BazelBenchStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBenchmark }

// Build implements Strategy.
func (s *BazelBenchStrategy) Build(ctx CommandContext) (*command.Command, error) {
	args := []string{"run"}
	if ctx.FunctionName != "" {
		args = append(args, fmt.Sprintf("//:%s_bench", ctx.FunctionName))
	}
	return newCommand(command.ToolBazel, ctx, args), nil
}

// BazelBuildStrategy compiles through `bazel build`. Unlike test and
// run, any target owning the file qualifies, including libraries and
// build scripts.
type BazelBuildStrategy struct {
	finder *bazel.Finder
}

// NewBazelBuildStrategy returns a build strategy backed by finder.
func NewBazelBuildStrategy(finder *bazel.Finder) *BazelBuildStrategy {
	return &BazelBuildStrategy{finder: finder}
}

// Name implements Strategy.
func (s *BazelBuildStrategy) Name() string { return "bazel-build" }

// Kind implements Strategy.
func (s *BazelBuildStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBuild }

// Build implements Strategy.
func (s *BazelBuildStrategy) Build(ctx CommandContext) (*command.Command, error) {
	if ctx.FilePath == "" {
		return nil, errors.New("No file path provided")
	}
	target, err := s.finder.FindBuildTarget(ctx.FilePath, ctx.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &NoTargetError{Kind: "build", File: ctx.FilePath}
	}
	return newCommand(command.ToolBazel, ctx, []string{"build", target.Label}), nil
}
