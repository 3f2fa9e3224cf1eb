// SPDX-License-Identifier: MPL-2.0

package runnable

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// File type classifications for a source file.
const (
	// FileTypeCargoProject marks a file that lives under a Cargo.toml.
	FileTypeCargoProject FileType = "cargo_project"
	// FileTypeStandalone marks a bare file outside any package.
	FileTypeStandalone FileType = "standalone"
	// FileTypeSingleFileScript marks a file carrying the cargo script
	// shebang on its first line.
	FileTypeSingleFileScript FileType = "single_file_script"
)

// ScriptShebangPrefix is the first-line marker of a single-file script.
const ScriptShebangPrefix = "#!/usr/bin/env -S cargo +nightly -Zscript"

// FileType classifies how a source file relates to the surrounding build
// layout. It decides whether script strategies take over resolution.
type FileType string

// DetectFileType classifies path. Files under a Cargo.toml ancestor are
// project files; otherwise the first line decides between a single-file
// script and a plain standalone file. Unreadable files classify as
// standalone rather than erroring, since detection is advisory.
func DetectFileType(path string) FileType {
	if hasManifestAncestor(path) {
		return FileTypeCargoProject
	}
	if hasScriptShebang(path) {
		return FileTypeSingleFileScript
	}
	return FileTypeStandalone
}

func hasManifestAncestor(path string) bool {
	dir := filepath.Dir(path)
	for {
		if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

func hasScriptShebang(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false
	}
	return strings.HasPrefix(scanner.Text(), ScriptShebangPrefix)
}
