// SPDX-License-Identifier: MPL-2.0

package config

// settingsDirOverride allows tests to override the settings directory.
// This is necessary because os.UserHomeDir() doesn't reliably respect
// the HOME environment variable on all platforms (e.g., macOS in CI).
var settingsDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	settingsDirOverride = ""
}

// SetSettingsDirOverride sets a custom settings directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms.
func SetSettingsDirOverride(dir string) {
	settingsDirOverride = dir
}
