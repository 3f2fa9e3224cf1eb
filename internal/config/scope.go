// SPDX-License-Identifier: MPL-2.0

package config

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/runwk/runwk/pkg/runnable"
)

// Scope kinds, least to most specific.
const (
	ScopeWorkspace ScopeKind = "workspace"
	ScopeCrate     ScopeKind = "crate"
	ScopeModule    ScopeKind = "module"
	ScopeFile      ScopeKind = "file"
	ScopeFunction  ScopeKind = "function"
)

type (
	// ScopeKind names one level of the configuration hierarchy.
	ScopeKind string

	// Scope pairs a hierarchy level with the pattern a ScopeContext must
	// satisfy at that level. Workspace scopes ignore the pattern and match
	// every context.
	Scope struct {
		Kind    ScopeKind `json:"kind"`
		Pattern string    `json:"pattern,omitempty"`
	}
)

// WorkspaceScope matches every scope context.
func WorkspaceScope() Scope { return Scope{Kind: ScopeWorkspace} }

// CrateScope matches contexts inside the named crate.
func CrateScope(name string) Scope { return Scope{Kind: ScopeCrate, Pattern: name} }

// ModuleScope matches the module path exactly or any of its submodules.
func ModuleScope(path string) Scope { return Scope{Kind: ScopeModule, Pattern: path} }

// FileScope matches a file path exactly, by whole-segment suffix, or by
// glob when the pattern carries metacharacters.
func FileScope(pattern string) Scope { return Scope{Kind: ScopeFile, Pattern: pattern} }

// FunctionScope matches a function name, optionally module-qualified as
// "module::path::fn".
func FunctionScope(name string) Scope { return Scope{Kind: ScopeFunction, Pattern: name} }

// Specificity returns the merge rank of this scope. Matching layers are
// folded in ascending rank, so more specific scopes win field-level
// conflicts. Module ranks below file: a file pattern pins down real code
// locations more tightly than a module path that can span files.
func (s Scope) Specificity() int {
	switch s.Kind {
	case ScopeCrate:
		return 1
	case ScopeModule:
		return 2
	case ScopeFile:
		return 3
	case ScopeFunction:
		return 4
	default:
		return 0
	}
}

// String renders the scope for display: the kind alone for workspace
// scopes, "kind pattern" otherwise.
func (s Scope) String() string {
	if s.Pattern == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + " " + s.Pattern
}

// Matches reports whether ctx satisfies this scope.
func (s Scope) Matches(ctx runnable.ScopeContext) bool {
	switch s.Kind {
	case ScopeWorkspace:
		return true
	case ScopeCrate:
		return ctx.CrateName != "" && ctx.CrateName == s.Pattern
	case ScopeModule:
		if ctx.ModulePath == "" {
			return false
		}
		return ctx.ModulePath == s.Pattern || strings.HasPrefix(ctx.ModulePath, s.Pattern+"::")
	case ScopeFile:
		return ctx.FilePath != "" && matchFilePattern(s.Pattern, ctx.FilePath)
	case ScopeFunction:
		if ctx.FunctionName == "" {
			return false
		}
		if ctx.FunctionName == s.Pattern {
			return true
		}
		if strings.Contains(s.Pattern, "::") && ctx.ModulePath != "" {
			return ctx.ModulePath+"::"+ctx.FunctionName == s.Pattern
		}
		return false
	default:
		return false
	}
}

// matchFilePattern matches a configured file pattern against a context
// path: glob when the pattern carries metacharacters, otherwise exact or
// whole-segment suffix equality. Relative glob patterns float, so
// "examples/demo_*.rs" still matches an absolute context path.
func matchFilePattern(pattern, path string) bool {
	pattern = filepath.ToSlash(pattern)
	path = filepath.ToSlash(path)

	if strings.ContainsAny(pattern, "*?[") {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
		if strings.HasPrefix(pattern, "/") || strings.HasPrefix(pattern, "**") {
			return false
		}
		ok, err := doublestar.Match("**/"+pattern, path)
		return err == nil && ok
	}

	return path == pattern || isSegmentSuffix(pattern, path)
}

// isSegmentSuffix reports whether suffix matches whole trailing path
// segments of full ("src/lib.rs" suffixes "/home/u/p/src/lib.rs" but
// "ib.rs" does not).
func isSegmentSuffix(suffix, full string) bool {
	if !strings.HasSuffix(full, suffix) {
		return false
	}
	rest := strings.TrimSuffix(full, suffix)
	return rest == "" || strings.HasSuffix(rest, "/")
}
