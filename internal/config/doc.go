// SPDX-License-Identifier: MPL-2.0

// Package config models the layered project configuration that drives
// command resolution: scope-matched layers, identity-keyed overrides, and
// the loaders that read them from disk.
//
// Project configuration lives next to the code it configures. Walking up
// from a source file, runwk collects .runwk.json, runwk.json, or .runwk.cue
// files (one per directory, in that priority) until it reaches the project
// root (RUNWK_PROJECT_ROOT or $HOME). Root-most files load first, so more
// local files win field-level merges. A legacy flat format,
// .runwk-overrides.json, is normalized into the same layer/override model
// by an independent adapter.
//
// Tool-level settings (UI, default channel, project root) are separate from
// project configuration and load from ~/.config/runwk/settings.cue (or the
// XDG/platform equivalent) through Viper with CUE schema validation.
package config
