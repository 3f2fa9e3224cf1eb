// SPDX-License-Identifier: MPL-2.0

// Package issue centralizes user-facing failure reporting: a catalog of
// known issues with Markdown-formatted remediation steps, and the
// ActionableError type that carries operation, resource and suggestion
// context across package boundaries.
package issue
