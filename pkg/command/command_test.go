// SPDX-License-Identifier: MPL-2.0

package command

import (
	"reflect"
	"testing"
)

func TestCommand_Splice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		extra []string
		want  []string
	}{
		{
			name:  "inserts before the separator",
			args:  []string{"test", "--lib", "--", "tests::it_works", "--exact"},
			extra: []string{"--release"},
			want:  []string{"test", "--lib", "--release", "--", "tests::it_works", "--exact"},
		},
		{
			name:  "appends when no separator",
			args:  []string{"run", "--bin", "tool"},
			extra: []string{"--quiet"},
			want:  []string{"run", "--bin", "tool", "--quiet"},
		},
		{
			name:  "no extra args is a no-op",
			args:  []string{"test", "--", "x"},
			extra: nil,
			want:  []string{"test", "--", "x"},
		},
		{
			name:  "only the first separator counts",
			args:  []string{"test", "--", "a", "--", "b"},
			extra: []string{"--offline"},
			want:  []string{"test", "--offline", "--", "a", "--", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := New(ToolCargo, tt.args...)
			cmd.Splice(tt.extra...)
			if !reflect.DeepEqual(cmd.Args, tt.want) {
				t.Errorf("Splice() args = %v, want %v", cmd.Args, tt.want)
			}
		})
	}
}

func TestCommand_EnsureSeparator(t *testing.T) {
	t.Parallel()

	cmd := New(ToolCargo, "test", "--lib")
	cmd.EnsureSeparator().EnsureSeparator()

	want := []string{"test", "--lib", "--"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("EnsureSeparator() args = %v, want %v", cmd.Args, want)
	}
}

func TestCommand_Environ(t *testing.T) {
	t.Parallel()

	cmd := New(ToolCargo, "test")
	cmd.SetEnv("RUST_LOG", "info").SetEnv("RUST_BACKTRACE", "1").SetEnv("RUST_LOG", "debug")

	want := []string{"RUST_LOG=debug", "RUST_BACKTRACE=1"}
	if got := cmd.Environ(); !reflect.DeepEqual(got, want) {
		t.Errorf("Environ() = %v, want %v", got, want)
	}
}

func TestCommand_ShellString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  *Command
		want string
	}{
		{
			name: "plain words stay unquoted",
			cmd:  New(ToolCargo, "test", "--package", "demo", "--lib"),
			want: "cargo test --package demo --lib",
		},
		{
			name: "shell pipeline is quoted as one word",
			cmd:  New(ToolShell, "-c", "rustc main.rs -o /tmp/main && /tmp/main"),
			want: "sh -c 'rustc main.rs -o /tmp/main && /tmp/main'",
		},
		{
			name: "script tool renders through cargo",
			cmd:  New(ToolScript, "+nightly", "-Zscript", "tool.rs"),
			want: "cargo +nightly -Zscript tool.rs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cmd.ShellString(); got != tt.want {
				t.Errorf("ShellString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommand_ProgramOverride(t *testing.T) {
	t.Parallel()

	cmd := New(ToolCargo, "build", "--release")
	cmd.Program = "cross"

	want := []string{"cross", "build", "--release"}
	if got := cmd.Argv(); !reflect.DeepEqual(got, want) {
		t.Errorf("Argv() = %v, want %v", got, want)
	}
	if got := cmd.ShellString(); got != "cross build --release" {
		t.Errorf("ShellString() = %q, want %q", got, "cross build --release")
	}
}

func TestTool_Program(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tool Tool
		want string
	}{
		{ToolCargo, "cargo"},
		{ToolBazel, "bazel"},
		{ToolRustc, "rustc"},
		{ToolShell, "sh"},
		{ToolScript, "cargo"},
	}

	for _, tt := range tests {
		if got := tt.tool.Program(); got != tt.want {
			t.Errorf("Program(%q) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}
