// SPDX-License-Identifier: MPL-2.0

// Package command defines the executable command value produced by
// resolution: a tool family, ordered arguments, an optional working
// directory and ordered environment pairs. It renders commands for
// display with POSIX quoting but never executes them.
package command
