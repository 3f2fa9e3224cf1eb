// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// SettingsOptions defines explicit settings loading inputs.
type SettingsOptions struct {
	// SettingsFilePath forces loading from a specific file when set.
	SettingsFilePath string
	// SettingsDirPath overrides the settings directory lookup when set.
	SettingsDirPath string
}

// SettingsProvider loads tool settings from explicit options.
type SettingsProvider interface {
	Load(ctx context.Context, opts SettingsOptions) (*Settings, error)
}

type fileSettingsProvider struct{}

// NewSettingsProvider creates a settings provider backed by the platform
// settings file.
func NewSettingsProvider() SettingsProvider {
	return &fileSettingsProvider{}
}

// Load reads settings from the requested source.
func (p *fileSettingsProvider) Load(ctx context.Context, opts SettingsOptions) (*Settings, error) {
	s, _, err := loadSettingsWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return s, nil
}
