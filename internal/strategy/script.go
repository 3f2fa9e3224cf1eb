// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"errors"

	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

// Script strategies serve single-file cargo scripts. The nightly
// toolchain selector and -Zscript flag are part of the strategy shape,
// not configuration: scripts declare their own dependencies inline and
// only nightly cargo understands them.

// ScriptRunStrategy executes a cargo script file.
type ScriptRunStrategy struct{}

// NewScriptRunStrategy returns the script run strategy.
func NewScriptRunStrategy() *ScriptRunStrategy { return &ScriptRunStrategy{} }

// Name implements Strategy.
func (s *ScriptRunStrategy) Name() string { return "cargo-script-run" }

// Kind implements Strategy.
func (s *ScriptRunStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBinary }

// Build implements Strategy.
func (s *ScriptRunStrategy) Build(ctx CommandContext) (*command.Command, error) {
	if ctx.FilePath == "" {
		return nil, errors.New("No file path provided")
	}
	args := []string{"+nightly", "-Zscript", ctx.FilePath}
	return newCommand(command.ToolScript, ctx, args), nil
}

// ScriptTestStrategy runs the tests embedded in a cargo script file.
type ScriptTestStrategy struct{}

// NewScriptTestStrategy returns the script test strategy.
func NewScriptTestStrategy() *ScriptTestStrategy { return &ScriptTestStrategy{} }

// Name implements Strategy.
func (s *ScriptTestStrategy) Name() string { return "cargo-script-test" }

// Kind implements Strategy.
func (s *ScriptTestStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkTest }

// Build implements Strategy.
func (s *ScriptTestStrategy) Build(ctx CommandContext) (*command.Command, error) {
	if ctx.FilePath == "" {
		return nil, errors.New("No file path provided")
	}
	args := []string{"+nightly", "-Zscript", "--test", ctx.FilePath, "--"}

	switch ctx.Kind.Kind {
	case runnable.KindTest:
		args = append(args, joinPath(ctx.ModulePath, ctx.Kind.TestName), "--exact")
	case runnable.KindModuleTests:
		args = append(args, ctx.Kind.ModuleName)
	}
	return newCommand(command.ToolScript, ctx, args), nil
}
