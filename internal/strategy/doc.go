// SPDX-License-Identifier: MPL-2.0

// Package strategy turns a located runnable plus its merged configuration
// into a concrete build-tool invocation. Each Strategy knows the command
// shape of one tool family (cargo, bazel, rustc, cargo script, or a
// standalone dev server) and is registered under a fixed name; dispatch is
// purely by that name, so new build tools plug in without touching the
// resolver.
package strategy
