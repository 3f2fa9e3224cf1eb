// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"path/filepath"
	"strings"

	"github.com/runwk/runwk/pkg/runnable"
)

// Filter helpers produce the positional test-name argument passed to the
// test harness after "--". Tests living in bench files are compiled into
// the bench target, whose module tree does not include the
// benches::<file> prefix the locator reports, so that prefix is stripped
// before filtering.

// joinPath joins a module path and a function name with "::". An empty
// module yields the bare name.
func joinPath(module, name string) string {
	if module == "" {
		return name
	}
	return module + "::" + name
}

// inBenchesDir reports whether the file lives under a benches directory.
func inBenchesDir(path string) bool {
	return underDir(filepath.ToSlash(path), "benches")
}

// stripBenchPrefix removes the leading benches::<file> segments from a
// module path. It reports false when the path does not carry that
// prefix.
func stripBenchPrefix(module string) (string, bool) {
	parts := strings.Split(module, "::")
	if len(parts) > 2 && parts[0] == "benches" {
		return strings.Join(parts[2:], "::"), true
	}
	return "", false
}

// testFilter builds the exact-match filter for a single test function.
// In bench files an unstrippable module path is dropped entirely: the
// harness inside the bench target knows nothing of the locator's module
// naming.
func testFilter(ctx CommandContext) string {
	name := ctx.Kind.TestName
	if !inBenchesDir(ctx.FilePath) {
		return joinPath(ctx.ModulePath, name)
	}
	if short, ok := stripBenchPrefix(ctx.ModulePath); ok && short != "" {
		return joinPath(short, name)
	}
	return name
}

// moduleTestsFilter builds the prefix filter for all tests in a module.
// Unlike testFilter it keeps an unstrippable module name: a bare module
// filter is still a useful prefix match.
func moduleTestsFilter(ctx CommandContext) string {
	module := ctx.Kind.ModuleName
	if module == "" || !inBenchesDir(ctx.FilePath) {
		return module
	}
	if short, ok := stripBenchPrefix(module); ok {
		return short
	}
	return module
}

// docTestFilter names the doc test to run: the owning item, optionally
// narrowed to one method.
func docTestFilter(kind runnable.RunnableKind) string {
	if kind.MethodName != "" {
		return kind.OwnerName + "::" + kind.MethodName
	}
	return kind.OwnerName
}
