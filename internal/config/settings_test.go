// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	if s.UI.ColorScheme != "auto" {
		t.Errorf("UI.ColorScheme = %q, want %q", s.UI.ColorScheme, "auto")
	}
	if s.UI.Verbose {
		t.Error("UI.Verbose = true, want false")
	}
	if s.DefaultBuildSystem != "" {
		t.Errorf("DefaultBuildSystem = %q, want empty", s.DefaultBuildSystem)
	}
}

func TestSettingsProvider_DefaultsWhenMissing(t *testing.T) {
	t.Parallel()

	p := NewSettingsProvider()
	s, err := p.Load(context.Background(), SettingsOptions{SettingsDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.UI.ColorScheme != "auto" {
		t.Errorf("UI.ColorScheme = %q, want %q", s.UI.ColorScheme, "auto")
	}
}

func TestSettingsProvider_LoadFromDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, SettingsFileName+"."+SettingsFileExt, `
default_build_system: "cargo"
channel:              "nightly"

ui: {
	color_scheme: "dark"
	verbose:      true
}
`)

	p := NewSettingsProvider()
	s, err := p.Load(context.Background(), SettingsOptions{SettingsDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.DefaultBuildSystem != "cargo" {
		t.Errorf("DefaultBuildSystem = %q, want %q", s.DefaultBuildSystem, "cargo")
	}
	if s.Channel != "nightly" {
		t.Errorf("Channel = %q, want %q", s.Channel, "nightly")
	}
	if s.UI.ColorScheme != "dark" {
		t.Errorf("UI.ColorScheme = %q, want %q", s.UI.ColorScheme, "dark")
	}
	if !s.UI.Verbose {
		t.Error("UI.Verbose = false, want true")
	}
}

func TestSettingsProvider_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "custom.cue", `channel: "beta"`)

	p := NewSettingsProvider()
	s, err := p.Load(context.Background(), SettingsOptions{SettingsFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Channel != "beta" {
		t.Errorf("Channel = %q, want %q", s.Channel, "beta")
	}
	// Unset fields keep their defaults.
	if s.UI.ColorScheme != "auto" {
		t.Errorf("UI.ColorScheme = %q, want %q", s.UI.ColorScheme, "auto")
	}
}

func TestSettingsProvider_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.cue")

	p := NewSettingsProvider()
	_, err := p.Load(context.Background(), SettingsOptions{SettingsFilePath: path})
	if err == nil {
		t.Fatal("Load() error = nil, want not-found error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("Load() error = %q, want it to name %q", err.Error(), path)
	}
}

func TestSettingsProvider_SchemaRejectsBadValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, SettingsFileName+"."+SettingsFileExt, `ui: color_scheme: "purple"`)

	p := NewSettingsProvider()
	if _, err := p.Load(context.Background(), SettingsOptions{SettingsDirPath: dir}); err == nil {
		t.Fatal("Load() error = nil, want schema validation error")
	}
}

func TestSettingsProvider_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewSettingsProvider()
	if _, err := p.Load(ctx, SettingsOptions{SettingsDirPath: t.TempDir()}); err == nil {
		t.Fatal("Load() error = nil with canceled context, want error")
	}
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	SetSettingsDirOverride(t.TempDir())
	t.Cleanup(Reset)

	saved := &Settings{
		DefaultBuildSystem: "bazel",
		Channel:            "nightly",
		UI:                 UISettings{ColorScheme: "dark", Verbose: true},
	}
	if err := SaveSettings(saved); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	p := NewSettingsProvider()
	loaded, err := p.Load(context.Background(), SettingsOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.DefaultBuildSystem != saved.DefaultBuildSystem {
		t.Errorf("DefaultBuildSystem = %q, want %q", loaded.DefaultBuildSystem, saved.DefaultBuildSystem)
	}
	if loaded.Channel != saved.Channel {
		t.Errorf("Channel = %q, want %q", loaded.Channel, saved.Channel)
	}
	if loaded.UI != saved.UI {
		t.Errorf("UI = %+v, want %+v", loaded.UI, saved.UI)
	}
}

func TestSettingsDir_Override(t *testing.T) {
	SetSettingsDirOverride("/custom/settings")
	t.Cleanup(Reset)

	dir, err := SettingsDir()
	if err != nil {
		t.Fatalf("SettingsDir() error = %v", err)
	}
	if dir != "/custom/settings" {
		t.Errorf("SettingsDir() = %q, want %q", dir, "/custom/settings")
	}
}

func TestGenerateSettingsCUE(t *testing.T) {
	t.Parallel()

	out := GenerateSettingsCUE(&Settings{
		DefaultBuildSystem: "cargo",
		UI:                 UISettings{ColorScheme: "auto"},
	})

	for _, want := range []string{
		`default_build_system: "cargo"`,
		`color_scheme: "auto"`,
		`verbose: false`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateSettingsCUE() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "channel:") {
		t.Error("GenerateSettingsCUE() emitted an unset channel")
	}
}
