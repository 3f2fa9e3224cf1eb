// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for runwk.
//
// This package implements the Cobra command hierarchy for the runwk CLI:
// the root command, the resolve pipeline that turns a located Rust
// runnable into a printable command, configuration inspection and
// generation, and strategy listing.
package cmd
