// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"strings"

	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

type (
	// CommandContext is the single input a strategy builds from: the
	// resolved location of the runnable plus the configuration values
	// that change a command's leading tokens. The resolver fills it;
	// strategies never read configuration themselves.
	CommandContext struct {
		// FilePath locates the source file. Strategies inspect only its
		// shape (directory segments, stem), never its contents.
		FilePath string
		// CrateName and PackageName identify the containing crate. They
		// are usually the same string; PackageName is what cargo
		// selectors use.
		CrateName   string
		PackageName string
		// ModulePath is the ::-joined module path of the runnable.
		ModulePath string
		// FunctionName is the function-level name when the runnable has
		// one (test, benchmark, or doc-test owner).
		FunctionName string
		// Kind is the runnable variant being resolved.
		Kind runnable.RunnableKind
		// Channel selects a toolchain; cargo strategies prefix the
		// invocation with "+<channel>".
		Channel string
		// Subcommand, when set, replaces a cargo strategy's default
		// subcommand phrase. Multi-word phrases split on whitespace.
		Subcommand string
		// WorkspaceRoot bounds BUILD file discovery for bazel
		// strategies. Empty walks to the filesystem root.
		WorkspaceRoot string
		// WorkingDir is stamped on the built command.
		WorkingDir string
	}

	// Strategy synthesizes the base command for one tool family.
	Strategy interface {
		// Build synthesizes the command for ctx.
		Build(ctx CommandContext) (*command.Command, error)
		// Name is the registry key the strategy is dispatched by.
		Name() string
		// Kind declares which framework slot the strategy serves. It is
		// informational; dispatch happens by name.
		Kind() runnable.FrameworkKind
	}
)

// prelude assembles the leading cargo arguments: the optional
// "+<channel>" selector followed by the subcommand phrase. A configured
// override subcommand replaces the default phrase wholesale.
func prelude(ctx CommandContext, phrase ...string) []string {
	var args []string
	if ctx.Channel != "" {
		args = append(args, "+"+ctx.Channel)
	}
	if ctx.Subcommand != "" {
		return append(args, strings.Fields(ctx.Subcommand)...)
	}
	return append(args, phrase...)
}

// newCommand builds a command and stamps the resolved working directory
// on it.
func newCommand(tool command.Tool, ctx CommandContext, args []string) *command.Command {
	cmd := command.New(tool, args...)
	cmd.Dir = ctx.WorkingDir
	return cmd
}
