// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"path/filepath"
	"strings"
)

// targetFlag is a cargo target selector derived from a file path. The
// zero value means the path maps to no selector; args() then emits
// nothing, so an invalid flag/value pairing cannot be constructed.
type targetFlag struct {
	flag  string
	value string
}

func (t targetFlag) args() []string {
	switch {
	case t.flag == "":
		return nil
	case t.value == "":
		return []string{t.flag}
	default:
		return []string{t.flag, t.value}
	}
}

// deriveTargetFlag maps a source file path to the cargo target flag that
// selects its compilation target. Directory checks accept the directory
// anywhere in the path, so both workspace-relative and absolute paths
// resolve the same way. src/main.rs needs the package name as the binary
// name; without one no flag is derived.
func deriveTargetFlag(filePath, packageName string) targetFlag {
	p := filepath.ToSlash(filePath)
	switch {
	case p == "":
		return targetFlag{}
	case underDir(p, "benches"):
		return targetFlag{flag: "--bench", value: fileStem(p)}
	case underDir(p, "examples"):
		return targetFlag{flag: "--example", value: fileStem(p)}
	case underDir(p, "src/bin"):
		return targetFlag{flag: "--bin", value: fileStem(p)}
	case endsWithPath(p, "src/main.rs"):
		if packageName == "" {
			return targetFlag{}
		}
		return targetFlag{flag: "--bin", value: packageName}
	case endsWithPath(p, "src/lib.rs"):
		return targetFlag{flag: "--lib"}
	}
	return targetFlag{}
}

// underDir reports whether path has dir as a directory component,
// whether path is relative to it or contains it deeper in.
func underDir(path, dir string) bool {
	return strings.HasPrefix(path, dir+"/") || strings.Contains(path, "/"+dir+"/")
}

// endsWithPath reports whether path ends with suffix on a path-segment
// boundary.
func endsWithPath(path, suffix string) bool {
	return path == suffix || strings.HasSuffix(path, "/"+suffix)
}

// fileStem returns the file name without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
