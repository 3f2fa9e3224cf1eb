// SPDX-License-Identifier: MPL-2.0

// Package runnable defines the value types that describe "what to run": a
// located code element (test, benchmark, binary entry point, doc test, or
// whole-file script), the scope context it lives in, and the identity keys
// used to match configuration against it.
//
// These types are the contract with source-analysis collaborators: a parser
// produces a Runnable plus a module path, and everything in this repository
// consumes them read-only. The package is a leaf dependency and imports only
// the standard library.
package runnable
