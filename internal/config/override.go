// SPDX-License-Identifier: MPL-2.0

package config

import (
	"slices"

	"github.com/runwk/runwk/pkg/runnable"
)

type (
	// Override is a fine-grained, identity-keyed configuration tweak. It
	// applies after the layered merge, making it the most specific input
	// to resolution. Nil slices and maps mean "field not set"; an empty
	// non-nil value is a deliberate "set to nothing".
	Override struct {
		// Identity selects which runnables the override applies to.
		// Unset identity fields are wildcards during lookup.
		Identity runnable.FunctionIdentity `json:"match"`

		// Command replaces the executable (rarely used; e.g. "cross").
		Command string `json:"command,omitempty"`
		// Subcommand replaces the strategy's subcommand.
		Subcommand string `json:"subcommand,omitempty"`
		// Channel replaces the toolchain channel.
		Channel string `json:"channel,omitempty"`

		// ExtraArgs are appended to (or, under ForceReplaceArgs, replace)
		// the merged layer arguments.
		ExtraArgs []string `json:"extra_args,omitempty"`
		// ExtraTestBinaryArgs follow the "--" separator on test commands.
		ExtraTestBinaryArgs []string `json:"extra_test_binary_args,omitempty"`
		// Env merges key-wise over layer env, or replaces it wholesale
		// under ForceReplaceEnv.
		Env map[string]string `json:"env,omitempty"`

		// ForceReplaceArgs discards previously merged arguments (both
		// regular and test-binary) instead of appending.
		ForceReplaceArgs bool `json:"force_replace_args,omitempty"`
		// ForceReplaceEnv discards previously merged env instead of
		// overlaying it.
		ForceReplaceEnv bool `json:"force_replace_env,omitempty"`
	}

	// OverrideSet holds overrides in load order. Adding an override whose
	// identity equals an existing entry merges the two; lookups return
	// the first stored override whose identity matches.
	OverrideSet struct {
		entries []Override
	}
)

// Add inserts o, merging into an existing entry with the same identity.
// Same-identity merges append args with de-duplication and overlay env
// key-wise, unless the incoming force flags request wholesale
// replacement of that field group.
func (s *OverrideSet) Add(o Override) {
	for i := range s.entries {
		if s.entries[i].Identity == o.Identity {
			mergeOverride(&s.entries[i], o)
			return
		}
	}
	s.entries = append(s.entries, o)
}

// Merge folds every entry of other into s in order.
func (s *OverrideSet) Merge(other OverrideSet) {
	for _, o := range other.entries {
		s.Add(o)
	}
}

// Find returns the first override whose identity matches id, or nil.
func (s *OverrideSet) Find(id runnable.FunctionIdentity) *Override {
	for i := range s.entries {
		if s.entries[i].Identity.Matches(id) {
			return &s.entries[i]
		}
	}
	return nil
}

// All returns the stored overrides in load order.
func (s *OverrideSet) All() []Override {
	return slices.Clone(s.entries)
}

// Len reports the number of stored overrides.
func (s *OverrideSet) Len() int { return len(s.entries) }

func mergeOverride(dst *Override, src Override) {
	if src.Command != "" {
		dst.Command = src.Command
	}
	if src.Subcommand != "" {
		dst.Subcommand = src.Subcommand
	}
	if src.Channel != "" {
		dst.Channel = src.Channel
	}

	if src.ExtraArgs != nil {
		if src.ForceReplaceArgs || dst.ExtraArgs == nil {
			dst.ExtraArgs = slices.Clone(src.ExtraArgs)
		} else {
			dst.ExtraArgs = appendUnique(dst.ExtraArgs, src.ExtraArgs)
		}
	}
	if src.ExtraTestBinaryArgs != nil {
		if src.ForceReplaceArgs || dst.ExtraTestBinaryArgs == nil {
			dst.ExtraTestBinaryArgs = slices.Clone(src.ExtraTestBinaryArgs)
		} else {
			dst.ExtraTestBinaryArgs = appendUnique(dst.ExtraTestBinaryArgs, src.ExtraTestBinaryArgs)
		}
	}
	if src.Env != nil {
		if src.ForceReplaceEnv || dst.Env == nil {
			dst.Env = make(map[string]string, len(src.Env))
		}
		for k, v := range src.Env {
			dst.Env[k] = v
		}
	}

	// Once a source forces replacement the merged override keeps forcing
	// it when applied to resolved commands.
	dst.ForceReplaceArgs = dst.ForceReplaceArgs || src.ForceReplaceArgs
	dst.ForceReplaceEnv = dst.ForceReplaceEnv || src.ForceReplaceEnv
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
