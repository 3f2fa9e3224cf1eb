// SPDX-License-Identifier: MPL-2.0

package command

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Tool identifies the tool family a command belongs to. The tag is
// kept separate from the program name so callers can tell a plain
// cargo invocation apart from a cargo script one.
type Tool string

const (
	// ToolCargo runs through the cargo binary.
	ToolCargo Tool = "cargo"
	// ToolBazel runs through the bazel binary.
	ToolBazel Tool = "bazel"
	// ToolRustc compiles with rustc directly.
	ToolRustc Tool = "rustc"
	// ToolShell runs a shell pipeline via sh -c.
	ToolShell Tool = "shell"
	// ToolScript runs a cargo single file script.
	ToolScript Tool = "script"
)

// Program returns the executable invoked for this tool family.
func (t Tool) Program() string {
	switch t {
	case ToolBazel:
		return "bazel"
	case ToolRustc:
		return "rustc"
	case ToolShell:
		return "sh"
	default:
		return "cargo"
	}
}

// EnvVar is one environment assignment. Env lists keep insertion
// order and may hold duplicate keys; the later entry wins on apply.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Command is a fully resolved invocation. It is a plain value: build
// it up, render it, hand it to an executor.
type Command struct {
	Tool Tool     `json:"tool"`
	Args []string `json:"args"`
	Dir  string   `json:"dir,omitempty"`
	Env  []EnvVar `json:"env,omitempty"`

	// Program, when set, replaces the tool family's default executable
	// (an override swapping "cargo" for "cross", say). The Tool tag
	// still records the command's family.
	Program string `json:"program,omitempty"`
}

// New builds a command for the given tool family.
func New(tool Tool, args ...string) *Command {
	return &Command{Tool: tool, Args: args}
}

// Append adds arguments at the end of the argument list.
func (c *Command) Append(args ...string) *Command {
	c.Args = append(c.Args, args...)
	return c
}

// Splice inserts arguments immediately before the first "--"
// separator, or appends them when no separator is present. Harness
// filters after "--" stay last this way.
func (c *Command) Splice(args ...string) *Command {
	if len(args) == 0 {
		return c
	}
	for i, a := range c.Args {
		if a == "--" {
			rest := append([]string{}, c.Args[i:]...)
			c.Args = append(append(c.Args[:i:i], args...), rest...)
			return c
		}
	}
	c.Args = append(c.Args, args...)
	return c
}

// EnsureSeparator appends "--" unless the argument list already
// contains one.
func (c *Command) EnsureSeparator() *Command {
	for _, a := range c.Args {
		if a == "--" {
			return c
		}
	}
	c.Args = append(c.Args, "--")
	return c
}

// SetEnv appends one environment assignment.
func (c *Command) SetEnv(key, value string) *Command {
	c.Env = append(c.Env, EnvVar{Key: key, Value: value})
	return c
}

// Argv returns the full argument vector including the program.
func (c *Command) Argv() []string {
	program := c.Program
	if program == "" {
		program = c.Tool.Program()
	}
	return append([]string{program}, c.Args...)
}

// Environ flattens the env pairs to KEY=VALUE form, later duplicates
// overriding earlier ones.
func (c *Command) Environ() []string {
	if len(c.Env) == 0 {
		return nil
	}
	seen := make(map[string]int, len(c.Env))
	out := make([]string, 0, len(c.Env))
	for _, ev := range c.Env {
		entry := ev.Key + "=" + ev.Value
		if i, ok := seen[ev.Key]; ok {
			out[i] = entry
			continue
		}
		seen[ev.Key] = len(out)
		out = append(out, entry)
	}
	return out
}

// ShellString renders the command for display, quoting each word the
// way a POSIX shell needs it.
func (c *Command) ShellString() string {
	var sb strings.Builder
	for i, word := range c.Argv() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		quoted, err := syntax.Quote(word, syntax.LangPOSIX)
		if err != nil {
			quoted = word
		}
		sb.WriteString(quoted)
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (c *Command) String() string {
	return c.ShellString()
}
