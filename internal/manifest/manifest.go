// SPDX-License-Identifier: MPL-2.0

// Package manifest reads Cargo.toml files: locating the manifest that
// governs a source file and extracting the package name for configuration
// scoping and working-directory resolution.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the cargo manifest file name.
const FileName = "Cargo.toml"

type (
	// Manifest is the subset of Cargo.toml resolution cares about.
	Manifest struct {
		Package   *Package   `toml:"package"`
		Workspace *Workspace `toml:"workspace"`
	}

	// Package is the [package] section.
	Package struct {
		Name string `toml:"name"`
	}

	// Workspace is the [workspace] section. Presence without a [package]
	// section marks a workspace-only manifest.
	Workspace struct {
		Members []string `toml:"members"`
	}
)

// Nearest returns the closest Cargo.toml at or above start. Start may be a
// file or a directory. The walk stops at boundary when it is non-empty; a
// start outside the boundary finds nothing.
func Nearest(start, boundary string) (string, bool) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	dir := abs
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	if boundary != "" {
		if b, err := filepath.Abs(boundary); err == nil {
			boundary = b
		}
	}

	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
		if boundary != "" && (dir == boundary || !isWithin(boundary, dir)) {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load parses a Cargo.toml file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &m, nil
}

// PackageName returns the [package] name declared in the manifest at path.
// Workspace-only manifests have no package name.
func PackageName(path string) (string, error) {
	m, err := Load(path)
	if err != nil {
		return "", err
	}
	if m.Package == nil || m.Package.Name == "" {
		return "", fmt.Errorf("%s has no [package] section: %s", FileName, path)
	}
	return m.Package.Name, nil
}

// IsWorkspaceRoot reports whether the manifest at path declares a
// [workspace] section without a package of its own.
func IsWorkspaceRoot(path string) bool {
	m, err := Load(path)
	if err != nil {
		return false
	}
	return m.Workspace != nil && m.Package == nil
}

// isWithin reports whether path is inside root (or equals it).
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
