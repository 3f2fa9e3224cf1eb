// SPDX-License-Identifier: MPL-2.0

// Package bazel resolves the build-graph targets declared in BUILD files.
// It parses BUILD / BUILD.bazel files as Starlark syntax trees, extracts
// the rust rule declarations, and answers which target owns a given source
// file so strategies can emit fully qualified labels. Parses are memoized
// per BUILD file and invalidated by modification time.
package bazel
