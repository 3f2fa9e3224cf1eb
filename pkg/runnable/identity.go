// SPDX-License-Identifier: MPL-2.0

package runnable

import (
	"path/filepath"
	"strings"
)

type (
	// ScopeContext is the hierarchical address of a runnable used for
	// configuration matching: crate, module, file, function. Fields are
	// optional; an empty string means "not known". Values are never
	// mutated after construction.
	ScopeContext struct {
		CrateName    string
		ModulePath   string
		FilePath     string
		FunctionName string
	}

	// FunctionIdentity is the exact-match key for identity-keyed
	// overrides. Unlike ScopeContext matching, identity matching compares
	// every populated field for equality; an unset field is a wildcard.
	FunctionIdentity struct {
		Package      string   `json:"package,omitempty"`
		ModulePath   string   `json:"module_path,omitempty"`
		FilePath     string   `json:"file_path,omitempty"`
		FunctionName string   `json:"function_name,omitempty"`
		FileType     FileType `json:"file_type,omitempty"`
	}
)

// WithCrate returns a copy of the context with the crate name set.
func (c ScopeContext) WithCrate(name string) ScopeContext {
	c.CrateName = name
	return c
}

// WithModule returns a copy of the context with the module path set.
func (c ScopeContext) WithModule(path string) ScopeContext {
	c.ModulePath = path
	return c
}

// WithFile returns a copy of the context with the file path set.
func (c ScopeContext) WithFile(path string) ScopeContext {
	c.FilePath = path
	return c
}

// WithFunction returns a copy of the context with the function name set.
func (c ScopeContext) WithFunction(name string) ScopeContext {
	c.FunctionName = name
	return c
}

// Identity converts the context into the equivalent identity key.
func (c ScopeContext) Identity() FunctionIdentity {
	return FunctionIdentity{
		Package:      c.CrateName,
		ModulePath:   c.ModulePath,
		FilePath:     c.FilePath,
		FunctionName: c.FunctionName,
	}
}

// Matches reports whether every populated field of the receiver matches the
// corresponding field of other. A populated field on the receiver that is
// absent on other never matches; file paths compare with relative/absolute
// suffix tolerance.
func (id FunctionIdentity) Matches(other FunctionIdentity) bool {
	if id.Package != "" && id.Package != other.Package {
		return false
	}
	if id.ModulePath != "" && id.ModulePath != other.ModulePath {
		return false
	}
	if id.FilePath != "" {
		if other.FilePath == "" || !pathsMatch(id.FilePath, other.FilePath) {
			return false
		}
	}
	if id.FunctionName != "" && id.FunctionName != other.FunctionName {
		return false
	}
	if id.FileType != "" && id.FileType != other.FileType {
		return false
	}
	return true
}

// IsZero reports whether no field of the identity is populated.
func (id FunctionIdentity) IsZero() bool {
	return id == FunctionIdentity{}
}

// pathsMatch compares two paths, treating a relative path as matching an
// absolute one when it is a whole-segment suffix of it.
func pathsMatch(a, b string) bool {
	a, b = filepath.ToSlash(a), filepath.ToSlash(b)
	if a == b {
		return true
	}
	if filepath.IsAbs(a) && !filepath.IsAbs(b) {
		return isPathSuffix(b, a)
	}
	if filepath.IsAbs(b) && !filepath.IsAbs(a) {
		return isPathSuffix(a, b)
	}
	return false
}

// isPathSuffix reports whether suffix matches the trailing path segments of
// full ("src/lib.rs" matches "/work/demo/src/lib.rs" but not "x/lib.rs").
func isPathSuffix(suffix, full string) bool {
	if !strings.HasSuffix(full, suffix) {
		return false
	}
	rest := strings.TrimSuffix(full, suffix)
	return rest == "" || strings.HasSuffix(rest, "/")
}
