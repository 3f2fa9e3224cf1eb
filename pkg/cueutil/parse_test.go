// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

// Simple test schema for parsing tests
const testSchema = `
#TestConfig: {
	name:        string
	count:       int
	enabled:     bool
	description?: string
}
`

// TestConfig is a simple struct for testing generic parsing
type TestConfig struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Run("valid config parses successfully", func(t *testing.T) {
		data := []byte(`
name: "example"
count: 42
enabled: true
`)
		result, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.Name != "example" {
			t.Errorf("expected name='example', got %q", result.Value.Name)
		}
		if result.Value.Count != 42 {
			t.Errorf("expected count=42, got %d", result.Value.Count)
		}
		if !result.Value.Enabled {
			t.Error("expected enabled=true")
		}
	})

	t.Run("optional field can be omitted", func(t *testing.T) {
		data := []byte(`
name: "minimal"
count: 1
enabled: false
`)
		result, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.Description != "" {
			t.Errorf("expected empty description, got %q", result.Value.Description)
		}
	})

	t.Run("type mismatch returns error", func(t *testing.T) {
		data := []byte(`
name: "bad"
count: "not a number"
enabled: true
`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err == nil {
			t.Error("expected error for type mismatch")
		}
	})

	t.Run("invalid CUE syntax returns error", func(t *testing.T) {
		data := []byte(`name: "unterminated`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err == nil {
			t.Error("expected error for invalid syntax")
		}
	})

	t.Run("missing schema definition returns error", func(t *testing.T) {
		data := []byte(`name: "x"`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#Missing")
		if err == nil {
			t.Error("expected error for missing schema definition")
		}
	})
}

// Tests for layered-config-style schemas with optional fields
func TestParseProjectStyleSchema(t *testing.T) {
	projectSchema := `
#Layer: {
	build_system?: "cargo" | "bazel" | "rustc"
	env?: {[string]: string}
}

#Project: {
	build_system?: "cargo" | "bazel" | "rustc"
	crates?: {[string]: #Layer}
}
`

	type Layer struct {
		BuildSystem string            `json:"build_system,omitempty"`
		Env         map[string]string `json:"env,omitempty"`
	}
	type Project struct {
		BuildSystem string           `json:"build_system,omitempty"`
		Crates      map[string]Layer `json:"crates,omitempty"`
	}

	t.Run("full project parses successfully", func(t *testing.T) {
		data := []byte(`
build_system: "cargo"
crates: "demo": {
	build_system: "bazel"
	env: RUST_LOG: "debug"
}
`)
		result, err := ParseAndDecode[Project]([]byte(projectSchema), data, "#Project", WithConcrete(false))
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.BuildSystem != "cargo" {
			t.Errorf("expected build_system='cargo', got %q", result.Value.BuildSystem)
		}
		if got := result.Value.Crates["demo"].Env["RUST_LOG"]; got != "debug" {
			t.Errorf("expected env RUST_LOG='debug', got %q", got)
		}
	})

	t.Run("empty project parses with WithConcrete(false)", func(t *testing.T) {
		data := []byte(`{}`)
		result, err := ParseAndDecode[Project](
			[]byte(projectSchema),
			data,
			"#Project",
			WithConcrete(false),
		)
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.BuildSystem != "" {
			t.Errorf("expected empty build_system, got %q", result.Value.BuildSystem)
		}
	})

	t.Run("invalid enum value returns error", func(t *testing.T) {
		data := []byte(`
build_system: "make"
`)
		_, err := ParseAndDecode[Project]([]byte(projectSchema), data, "#Project", WithConcrete(false))
		if err == nil {
			t.Error("expected error for invalid enum value")
		}
	})
}

// File size limit enforcement tests
func TestFileSizeLimit(t *testing.T) {
	t.Run("file within limit parses", func(t *testing.T) {
		data := []byte(`
name: "small"
count: 1
enabled: true
`)
		_, err := ParseAndDecode[TestConfig](
			[]byte(testSchema),
			data,
			"#TestConfig",
			WithMaxFileSize(1024),
		)
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
	})

	t.Run("file exceeding limit is rejected", func(t *testing.T) {
		big := `name: "` + strings.Repeat("x", 2048) + `"`
		_, err := ParseAndDecode[TestConfig](
			[]byte(testSchema),
			[]byte(big),
			"#TestConfig",
			WithMaxFileSize(1024),
		)
		if err == nil {
			t.Fatal("expected error for oversized file")
		}
		if !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("expected size error, got: %v", err)
		}
	})

	t.Run("filename appears in size error", func(t *testing.T) {
		big := `name: "` + strings.Repeat("x", 2048) + `"`
		_, err := ParseAndDecode[TestConfig](
			[]byte(testSchema),
			[]byte(big),
			"#TestConfig",
			WithMaxFileSize(1024),
			WithFilename("project.cue"),
		)
		if err == nil {
			t.Fatal("expected error for oversized file")
		}
		if !strings.Contains(err.Error(), "project.cue") {
			t.Errorf("expected filename in error, got: %v", err)
		}
	})
}

func TestParseAndDecodeString(t *testing.T) {
	data := []byte(`
name: "via-string"
count: 7
enabled: false
`)
	result, err := ParseAndDecodeString[TestConfig](testSchema, data, "#TestConfig")
	if err != nil {
		t.Fatalf("ParseAndDecodeString failed: %v", err)
	}

	if result.Value.Name != "via-string" {
		t.Errorf("expected name='via-string', got %q", result.Value.Name)
	}
}
