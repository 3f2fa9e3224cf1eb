// SPDX-License-Identifier: MPL-2.0

// Package resolver orchestrates command synthesis: it merges the
// configuration layers matching a runnable's scope, picks the framework
// strategy for its kind, resolves the working directory through linked
// projects, and folds the merged arguments, override tweaks, and
// environment into the strategy's base command. Each resolution is a pure
// function of its inputs plus read-only filesystem state.
package resolver
