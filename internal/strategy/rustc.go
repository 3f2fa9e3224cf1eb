// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

// Rustc strategies serve standalone files with no manifest at all. They
// compile into the system temp directory and execute the result, so the
// emitted command is a shell pipeline rather than a single exec.

// RustcRunStrategy compiles and runs a standalone file.
type RustcRunStrategy struct{}

// NewRustcRunStrategy returns the rustc run strategy.
func NewRustcRunStrategy() *RustcRunStrategy { return &RustcRunStrategy{} }

// Name implements Strategy.
func (s *RustcRunStrategy) Name() string { return "rustc-run" }

// Kind implements Strategy.
func (s *RustcRunStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBinary }

// Build implements Strategy.
func (s *RustcRunStrategy) Build(ctx CommandContext) (*command.Command, error) {
	if ctx.FilePath == "" {
		return nil, errors.New("No file path provided for rustc-run")
	}
	out := filepath.Join(os.TempDir(), fileStem(ctx.FilePath))
	script := compileAndRun([]string{ctx.FilePath, "-o", out, "-O"}, out, nil)
	return newCommand(command.ToolShell, ctx, []string{"-c", script}), nil
}

// RustcTestStrategy compiles a standalone file with the built-in test
// harness and runs the produced binary.
type RustcTestStrategy struct{}

// NewRustcTestStrategy returns the rustc test strategy.
func NewRustcTestStrategy() *RustcTestStrategy { return &RustcTestStrategy{} }

// Name implements Strategy.
func (s *RustcTestStrategy) Name() string { return "rustc-test" }

// Kind implements Strategy.
func (s *RustcTestStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkTest }

// Build implements Strategy.
func (s *RustcTestStrategy) Build(ctx CommandContext) (*command.Command, error) {
	if ctx.FilePath == "" {
		return nil, errors.New("No file path provided for rustc-test")
	}
	out := filepath.Join(os.TempDir(), fileStem(ctx.FilePath)+"_test")

	var harnessArgs []string
	if ctx.Kind.Kind == runnable.KindTest {
		harnessArgs = []string{joinPath(ctx.ModulePath, ctx.Kind.TestName), "--exact"}
	}
	script := compileAndRun([]string{"--test", ctx.FilePath, "-o", out}, out, harnessArgs)
	return newCommand(command.ToolShell, ctx, []string{"-c", script}), nil
}

// compileAndRun composes the `rustc ... && <out> [args]` pipeline.
func compileAndRun(compileArgs []string, out string, runArgs []string) string {
	script := "rustc " + strings.Join(compileArgs, " ") + " && " + out
	if len(runArgs) > 0 {
		script += " " + strings.Join(runArgs, " ")
	}
	return script
}
