// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/runwk/runwk/pkg/runnable"
)

type (
	// overridesFile is the legacy flat format (.runwk-overrides.json):
	// workspace-wide defaults plus a list of identity-keyed overrides.
	// It normalizes into the same Config model as the layered format so
	// format concerns never reach the resolution algorithm.
	overridesFile struct {
		Command             string            `json:"command,omitempty"`
		Subcommand          string            `json:"subcommand,omitempty"`
		Channel             string            `json:"channel,omitempty"`
		ExtraArgs           []string          `json:"extra_args,omitempty"`
		Env                 map[string]string `json:"env,omitempty"`
		ExtraTestBinaryArgs []string          `json:"extra_test_binary_args,omitempty"`
		LinkedProjects      []string          `json:"linked_projects,omitempty"`
		Overrides           []overrideDecl    `json:"overrides,omitempty"`
	}

	// overrideDecl is one flat-format override entry.
	overrideDecl struct {
		Match               runnable.FunctionIdentity `json:"match"`
		Command             string                    `json:"command,omitempty"`
		Subcommand          string                    `json:"subcommand,omitempty"`
		Channel             string                    `json:"channel,omitempty"`
		ExtraArgs           []string                  `json:"extra_args,omitempty"`
		ExtraTestBinaryArgs []string                  `json:"extra_test_binary_args,omitempty"`
		Env                 map[string]string         `json:"env,omitempty"`
		ForceReplaceArgs    bool                      `json:"force_replace_args,omitempty"`
		ForceReplaceEnv     bool                      `json:"force_replace_env,omitempty"`
	}
)

// loadOverridesFile reads one legacy flat-format file.
func loadOverridesFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var of overridesFile
	if err := json.Unmarshal(data, &of); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file: %w", err)
	}

	return of.toConfig(), nil
}

// toConfig normalizes the flat format: file-wide defaults become a
// workspace layer (args into the "all" bucket), a default command or
// subcommand becomes a catch-all override so specific entries keep
// winning lookups, and each entry becomes an Override.
func (of *overridesFile) toConfig() *Config {
	cfg := &Config{LinkedProjects: of.LinkedProjects}

	ws := NewLayerConfig()
	ws.Channel = of.Channel
	setArgs(ws.Args, BucketAll, of.ExtraArgs)
	setArgs(ws.Args, BucketTestBinary, of.ExtraTestBinaryArgs)
	for k, v := range of.Env {
		ws.Env[k] = v
	}
	if !ws.IsZero() {
		cfg.AddLayer(WorkspaceScope(), ws)
	}

	for _, decl := range of.Overrides {
		cfg.Overrides.Add(Override{
			Identity:            decl.Match,
			Command:             decl.Command,
			Subcommand:          decl.Subcommand,
			Channel:             decl.Channel,
			ExtraArgs:           decl.ExtraArgs,
			ExtraTestBinaryArgs: decl.ExtraTestBinaryArgs,
			Env:                 decl.Env,
			ForceReplaceArgs:    decl.ForceReplaceArgs,
			ForceReplaceEnv:     decl.ForceReplaceEnv,
		})
	}

	if of.Command != "" || of.Subcommand != "" {
		cfg.Overrides.Add(Override{
			Command:    of.Command,
			Subcommand: of.Subcommand,
		})
	}

	return cfg
}
