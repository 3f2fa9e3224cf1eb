// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

// Dev-server strategies start long-running watchers for web and app
// frameworks. All serve the Binary slot; none take a channel or target
// flags. Three shapes cover them: a cargo-leptos watcher, a fixed cargo
// subcommand phrase, and a standalone tool run through the shell.

// LeptosStrategy starts `cargo leptos watch`, the only dev server that
// honors --package.
type LeptosStrategy struct {
	name string
}

// NewCargoLeptosStrategy returns the watcher under its cargo-prefixed
// name.
func NewCargoLeptosStrategy() *LeptosStrategy { return &LeptosStrategy{name: "cargo-leptos"} }

// NewLeptosWatchStrategy returns the same watcher under its historic
// name, kept so existing configurations keep resolving.
func NewLeptosWatchStrategy() *LeptosStrategy { return &LeptosStrategy{name: "leptos-watch"} }

// Name implements Strategy.
func (s *LeptosStrategy) Name() string { return s.name }

// Kind implements Strategy.
func (s *LeptosStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBinary }

// Build implements Strategy.
func (s *LeptosStrategy) Build(ctx CommandContext) (*command.Command, error) {
	args := []string{"leptos", "watch"}
	if ctx.PackageName != "" {
		args = append(args, "--package", ctx.PackageName)
	}
	return newCommand(command.ToolCargo, ctx, args), nil
}

// CargoToolStrategy runs a fixed cargo subcommand phrase, covering the
// tauri and shuttle dev loops.
type CargoToolStrategy struct {
	name   string
	phrase []string
}

// NewCargoTauriStrategy returns the tauri dev-loop strategy.
func NewCargoTauriStrategy() *CargoToolStrategy {
	return &CargoToolStrategy{name: "cargo-tauri", phrase: []string{"tauri", "dev"}}
}

// NewCargoShuttleStrategy returns the shuttle local-run strategy.
func NewCargoShuttleStrategy() *CargoToolStrategy {
	return &CargoToolStrategy{name: "cargo-shuttle", phrase: []string{"shuttle", "run"}}
}

// Name implements Strategy.
func (s *CargoToolStrategy) Name() string { return s.name }

// Kind implements Strategy.
func (s *CargoToolStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBinary }

// Build implements Strategy.
func (s *CargoToolStrategy) Build(ctx CommandContext) (*command.Command, error) {
	return newCommand(command.ToolCargo, ctx, s.phrase), nil
}

// ShellToolStrategy runs a standalone dev tool through the shell,
// covering trunk and dioxus.
type ShellToolStrategy struct {
	name   string
	script string
}

// NewTrunkServeStrategy returns the trunk dev-server strategy.
func NewTrunkServeStrategy() *ShellToolStrategy {
	return &ShellToolStrategy{name: "trunk-serve", script: "trunk serve --open"}
}

// NewDxServeStrategy returns the dioxus dev-server strategy.
func NewDxServeStrategy() *ShellToolStrategy {
	return &ShellToolStrategy{name: "dx-serve", script: "dx serve"}
}

// Name implements Strategy.
func (s *ShellToolStrategy) Name() string { return s.name }

// Kind implements Strategy.
func (s *ShellToolStrategy) Kind() runnable.FrameworkKind { return runnable.FrameworkBinary }

// Build implements Strategy.
func (s *ShellToolStrategy) Build(ctx CommandContext) (*command.Command, error) {
	return newCommand(command.ToolShell, ctx, []string{"-c", s.script}), nil
}
