// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"
)

// BuildSystem selects which build tool family resolution targets.
type BuildSystem string

const (
	// BuildSystemCargo resolves commands through cargo.
	BuildSystemCargo BuildSystem = "cargo"
	// BuildSystemBazel resolves commands through bazel.
	BuildSystemBazel BuildSystem = "bazel"
	// BuildSystemRustc compiles directly with rustc.
	BuildSystemRustc BuildSystem = "rustc"
)

// ParseBuildSystem normalizes a configured build system name. Matching is
// case-insensitive so files written as "Cargo" keep working. The empty
// string maps to the zero value: absence is legal in a layer and means
// "inherit".
func ParseBuildSystem(s string) (BuildSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "cargo":
		return BuildSystemCargo, nil
	case "bazel":
		return BuildSystemBazel, nil
	case "rustc":
		return BuildSystemRustc, nil
	default:
		return "", fmt.Errorf("unknown build system %q (valid: cargo, bazel, rustc)", s)
	}
}

func (b BuildSystem) String() string { return string(b) }
