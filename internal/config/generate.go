// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StarterFileName is the file written by `runwk config init`.
const StarterFileName = ".runwk.cue"

// GenerateProjectCUE renders a starter layered project configuration.
func GenerateProjectCUE() string {
	var sb strings.Builder

	sb.WriteString("// runwk project configuration.\n")
	sb.WriteString("// Layers match by scope; more specific scopes win merges.\n\n")

	sb.WriteString("build_system: \"cargo\"\n\n")

	sb.WriteString("frameworks: {\n")
	sb.WriteString("\ttest:      \"cargo-test\"\n")
	sb.WriteString("\tbinary:    \"cargo-run\"\n")
	sb.WriteString("\tbenchmark: \"cargo-bench\"\n")
	sb.WriteString("\tdoctest:   \"cargo-doctest\"\n")
	sb.WriteString("\tbuild:     \"cargo-build\"\n")
	sb.WriteString("}\n\n")

	sb.WriteString("// args: {\n")
	sb.WriteString("//\tall:  [\"--quiet\"]\n")
	sb.WriteString("//\ttest: [\"--no-fail-fast\"]\n")
	sb.WriteString("//\ttest_binary: [\"--test-threads=1\"]\n")
	sb.WriteString("// }\n\n")

	sb.WriteString("// env: {\n")
	sb.WriteString("//\tRUST_LOG: \"debug\"\n")
	sb.WriteString("// }\n\n")

	sb.WriteString("// crates: \"my-crate\": frameworks: test: \"cargo-nextest\"\n")
	sb.WriteString("// modules: \"tests::slow\": args: test_binary: [\"--ignored\"]\n")
	sb.WriteString("// files: \"benches/*.rs\": args: all: [\"--profile=bench\"]\n")

	return sb.String()
}

// WriteStarter creates a starter project configuration in dir. Existing
// files are preserved unless force is set.
func WriteStarter(dir string, force bool) (string, error) {
	path := filepath.Join(dir, StarterFileName)

	if !force {
		for _, name := range projectFileNames {
			existing := filepath.Join(dir, name)
			if fileExists(existing) {
				return "", fmt.Errorf("project configuration already exists: %s", existing)
			}
		}
	}

	if err := os.WriteFile(path, []byte(GenerateProjectCUE()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
