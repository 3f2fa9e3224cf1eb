// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/runwk/runwk/internal/config"
	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

// fakeSettingsProvider returns fixed settings regardless of options.
type fakeSettingsProvider struct {
	settings *config.Settings
	err      error
}

func (f *fakeSettingsProvider) Load(_ context.Context, _ config.SettingsOptions) (*config.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

// newTestApp builds an App with a fixed project configuration and buffer
// writers, bypassing the filesystem providers.
func newTestApp(t *testing.T, cfg *config.Config, settings *config.Settings) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	if settings == nil {
		settings = config.DefaultSettings()
	}
	var stdout, stderr bytes.Buffer
	app, err := NewApp(Dependencies{
		Settings: &fakeSettingsProvider{settings: settings},
		Project: projectLoaderFunc(func(_ context.Context, _ string, _ config.LoadOptions) (*config.Config, error) {
			return cfg, nil
		}),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	return app, &stdout, &stderr
}

// runCLI executes the root command with args, restoring package-level flag
// state afterwards. Callers must not run in parallel: flag values live in
// package vars shared across command trees.
func runCLI(t *testing.T, app *App, args ...string) error {
	t.Helper()

	origVerbose, origSettings, origRoot := verbose, settingsFile, projectRoot
	t.Cleanup(func() {
		verbose, settingsFile, projectRoot = origVerbose, origSettings, origRoot
	})

	rootCmd := newRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	return rootCmd.ExecuteContext(context.Background())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// newCrate creates a crate directory holding a Cargo.toml and the given
// source files, returning the crate root.
func newCrate(t *testing.T, name string, files ...string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "Cargo.toml", "[package]\nname = \""+name+"\"\n")
	for _, f := range files {
		writeFile(t, root, f, "// test fixture\n")
	}
	return root
}

// cargoLayer is a workspace-level layer selecting cargo with the default
// strategy in every framework slot.
func cargoLayer() config.LayerConfig {
	return config.LayerConfig{
		BuildSystem: config.BuildSystemCargo,
		Strategies: map[runnable.FrameworkKind]string{
			runnable.FrameworkTest:      "cargo-test",
			runnable.FrameworkBinary:    "cargo-run",
			runnable.FrameworkBenchmark: "cargo-bench",
			runnable.FrameworkDocTest:   "cargo-doctest",
			runnable.FrameworkBuild:     "cargo-build",
		},
	}
}

func cargoConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AddLayer(config.WorkspaceScope(), cargoLayer())
	return cfg
}

func TestSelectorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   resolveFlagValues
		want    runnable.RunnableKind
		wantErr bool
	}{
		{
			name:  "no selector defaults to binary",
			flags: resolveFlagValues{},
			want:  runnable.NewBinary(""),
		},
		{
			name:  "test selector",
			flags: resolveFlagValues{test: "it_works"},
			want:  runnable.NewTest("it_works"),
		},
		{
			name:  "module tests selector",
			flags: resolveFlagValues{moduleTests: "api"},
			want:  runnable.NewModuleTests("api"),
		},
		{
			name:  "bench selector",
			flags: resolveFlagValues{bench: "large_inputs"},
			want:  runnable.NewBenchmark("large_inputs"),
		},
		{
			name:  "bin selector",
			flags: resolveFlagValues{bin: "server"},
			want:  runnable.NewBinary("server"),
		},
		{
			name:  "doctest owner only",
			flags: resolveFlagValues{doctest: "Client"},
			want:  runnable.NewDocTest("Client", ""),
		},
		{
			name:  "doctest owner and method split at last separator",
			flags: resolveFlagValues{doctest: "api::Client::get"},
			want:  runnable.NewDocTest("api::Client", "get"),
		},
		{
			name:    "two selectors conflict",
			flags:   resolveFlagValues{test: "a", bench: "b"},
			wantErr: true,
		},
		{
			name:    "build conflicts with selector",
			flags:   resolveFlagValues{test: "a", build: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := selectorKind(&tt.flags)
			if tt.wantErr {
				if err == nil {
					t.Fatal("selectorKind() error = nil, want conflict error")
				}
				return
			}
			if err != nil {
				t.Fatalf("selectorKind() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("selectorKind() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveTarget_SelectorScope(t *testing.T) {
	t.Parallel()

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")

	flags := &resolveFlagValues{file: lib, module: "tests", test: "it_works"}
	scope, kind, err := resolveTarget(flags, root)
	if err != nil {
		t.Fatalf("resolveTarget() error = %v", err)
	}

	if kind.Kind != runnable.KindTest {
		t.Errorf("resolveTarget() kind = %v, want %v", kind.Kind, runnable.KindTest)
	}
	if scope.CrateName != "demo" {
		t.Errorf("resolveTarget() crate = %q, want %q (inferred from Cargo.toml)", scope.CrateName, "demo")
	}
	if scope.ModulePath != "tests" {
		t.Errorf("resolveTarget() module = %q, want %q", scope.ModulePath, "tests")
	}
	if scope.FunctionName != "it_works" {
		t.Errorf("resolveTarget() function = %q, want %q", scope.FunctionName, "it_works")
	}
}

func TestResolveTarget_ExplicitPackageWins(t *testing.T) {
	t.Parallel()

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")

	flags := &resolveFlagValues{file: lib, pkg: "other", test: "it_works"}
	scope, _, err := resolveTarget(flags, root)
	if err != nil {
		t.Fatalf("resolveTarget() error = %v", err)
	}
	if scope.CrateName != "other" {
		t.Errorf("resolveTarget() crate = %q, want %q", scope.CrateName, "other")
	}
}

func TestResolveTarget_RunnableExcludesSelectors(t *testing.T) {
	t.Parallel()

	flags := &resolveFlagValues{runnablePath: "target.json", test: "it_works"}
	_, _, err := resolveTarget(flags, "")
	if err == nil || !strings.Contains(err.Error(), "--runnable cannot be combined") {
		t.Errorf("resolveTarget() error = %v, want combination error", err)
	}
}

func TestLoadRunnable(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		run := runnable.Runnable{
			Label:      "test it_works",
			Kind:       runnable.NewTest("it_works"),
			ModulePath: "tests",
			FilePath:   "src/lib.rs",
		}
		data, err := json.Marshal(run)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		path := writeFile(t, t.TempDir(), "runnable.json", string(data))

		got, err := loadRunnable(path)
		if err != nil {
			t.Fatalf("loadRunnable() error = %v", err)
		}
		if got.Kind.Kind != runnable.KindTest || got.Kind.TestName != "it_works" {
			t.Errorf("loadRunnable() kind = %+v, want test it_works", got.Kind)
		}
		if got.ModulePath != "tests" {
			t.Errorf("loadRunnable() module = %q, want %q", got.ModulePath, "tests")
		}
	})

	t.Run("missing kind", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "runnable.json", `{"module_path":"tests"}`)
		_, err := loadRunnable(path)
		if err == nil || !strings.Contains(err.Error(), "missing a kind") {
			t.Errorf("loadRunnable() error = %v, want missing-kind error", err)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "runnable.json", `{not json`)
		_, err := loadRunnable(path)
		if err == nil || !strings.Contains(err.Error(), "failed to parse runnable") {
			t.Errorf("loadRunnable() error = %v, want parse error", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := loadRunnable(filepath.Join(t.TempDir(), "absent.json"))
		if err == nil || !strings.Contains(err.Error(), "failed to read runnable") {
			t.Errorf("loadRunnable() error = %v, want read error", err)
		}
	})
}

func TestInferPackage(t *testing.T) {
	t.Parallel()

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")

	if got := inferPackage(lib, root); got != "demo" {
		t.Errorf("inferPackage() = %q, want %q", got, "demo")
	}
	if got := inferPackage("", root); got != "" {
		t.Errorf("inferPackage(empty) = %q, want empty", got)
	}

	bare := filepath.Join(t.TempDir(), "loose.rs")
	if err := os.WriteFile(bare, []byte("fn main() {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got := inferPackage(bare, filepath.Dir(bare)); got != "" {
		t.Errorf("inferPackage(no manifest) = %q, want empty", got)
	}
}

func TestShellLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  *command.Command
		want string
	}{
		{
			name: "plain command",
			cmd:  command.New(command.ToolCargo, "test", "--package", "demo"),
			want: "cargo test --package demo",
		},
		{
			name: "env prefix quotes values with spaces",
			cmd: command.New(command.ToolCargo, "run").
				SetEnv("RUST_LOG", "debug,hyper=info").
				SetEnv("GREETING", "hello world"),
			want: "RUST_LOG=debug,hyper=info GREETING='hello world' cargo run",
		},
		{
			name: "argument quoting",
			cmd:  command.New(command.ToolBazel, "test", "//pkg:unit tests"),
			want: "bazel test '//pkg:unit tests'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := shellLine(tt.cmd); got != tt.want {
				t.Errorf("shellLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeOverride(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		override config.Override
		want     string
	}{
		{
			name:     "empty identity",
			override: config.Override{},
			want:     "matches everything",
		},
		{
			name: "package and function",
			override: config.Override{Identity: runnable.FunctionIdentity{
				Package:      "demo",
				FunctionName: "it_works",
			}},
			want: "package demo, function it_works",
		},
		{
			name: "file type",
			override: config.Override{Identity: runnable.FunctionIdentity{
				FileType: runnable.FileTypeSingleFileScript,
			}},
			want: "file type single_file_script",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := describeOverride(&tt.override); got != tt.want {
				t.Errorf("describeOverride() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunResolve_PrintsCommand(t *testing.T) {
	// Not parallel: runCLI mutates package-level flag vars.

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")
	app, stdout, _ := newTestApp(t, cargoConfig(), nil)

	err := runCLI(t, app, "resolve", lib, "-m", "tests", "-t", "it_works", "--project-root", root)
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	want := "cargo test --package demo --lib -- tests::it_works --exact\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunResolve_FileFlagAndArgumentConflict(t *testing.T) {
	// Not parallel: runCLI mutates package-level flag vars.

	app, _, _ := newTestApp(t, cargoConfig(), nil)

	err := runCLI(t, app, "resolve", "src/a.rs", "--file", "src/b.rs")
	if err == nil || !strings.Contains(err.Error(), "file given both as argument") {
		t.Errorf("resolve error = %v, want conflict error", err)
	}
}

func TestRunResolve_BuildSelector(t *testing.T) {
	// Not parallel: runCLI mutates package-level flag vars.

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")
	app, stdout, _ := newTestApp(t, cargoConfig(), nil)

	err := runCLI(t, app, "resolve", lib, "--build", "--project-root", root)
	if err != nil {
		t.Fatalf("resolve --build error = %v", err)
	}

	want := "cargo build --package demo --lib\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunResolve_JSONOutput(t *testing.T) {
	// Not parallel: runCLI mutates package-level flag vars.

	root := newCrate(t, "demo", "src/main.rs")
	main := filepath.Join(root, "src/main.rs")
	app, stdout, _ := newTestApp(t, cargoConfig(), nil)

	err := runCLI(t, app, "resolve", main, "--json", "--project-root", root)
	if err != nil {
		t.Fatalf("resolve --json error = %v", err)
	}

	var got command.Command
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal(stdout) error = %v", err)
	}
	if got.Tool != command.ToolCargo {
		t.Errorf("json tool = %v, want %v", got.Tool, command.ToolCargo)
	}
	wantArgs := []string{"run", "--package", "demo", "--bin", "demo"}
	if len(got.Args) != len(wantArgs) {
		t.Fatalf("json args = %v, want %v", got.Args, wantArgs)
	}
	for i := range wantArgs {
		if got.Args[i] != wantArgs[i] {
			t.Errorf("json args[%d] = %q, want %q", i, got.Args[i], wantArgs[i])
		}
	}
}

func TestRunResolve_RunnableJSON(t *testing.T) {
	// Not parallel: runCLI mutates package-level flag vars.

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")

	run := runnable.Runnable{
		Label:      "test it_works",
		Kind:       runnable.NewTest("it_works"),
		ModulePath: "tests",
		FilePath:   lib,
	}
	data, err := json.Marshal(run)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	path := writeFile(t, t.TempDir(), "runnable.json", string(data))

	app, stdout, _ := newTestApp(t, cargoConfig(), nil)
	if err := runCLI(t, app, "resolve", "--runnable", path, "--project-root", root); err != nil {
		t.Fatalf("resolve --runnable error = %v", err)
	}

	want := "cargo test --package demo --lib -- tests::it_works --exact\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunResolve_Explain(t *testing.T) {
	// Not parallel: runCLI mutates package-level flag vars.

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")

	cfg := cargoConfig()
	cfg.Overrides.Add(config.Override{
		Identity: runnable.FunctionIdentity{FunctionName: "it_works"},
		Channel:  "nightly",
	})
	app, stdout, _ := newTestApp(t, cfg, nil)

	err := runCLI(t, app, "resolve", lib, "-t", "it_works", "--explain", "--project-root", root)
	if err != nil {
		t.Fatalf("resolve --explain error = %v", err)
	}

	out := stdout.String()
	for _, token := range []string{
		"Resolution",
		"Layers (merge order):",
		"1. workspace",
		"Build system: cargo",
		"Strategy: cargo-test",
		"Override: function it_works",
		"Command:",
		"+nightly",
	} {
		if !strings.Contains(out, token) {
			t.Errorf("explain output missing %q in:\n%s", token, out)
		}
	}
}

func TestRunResolve_NoBuildSystemExitsWithCode(t *testing.T) {
	// Not parallel: runCLI mutates package-level flag vars.

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")

	cfg := &config.Config{}
	cfg.AddLayer(config.WorkspaceScope(), config.LayerConfig{
		Strategies: map[runnable.FrameworkKind]string{runnable.FrameworkTest: "cargo-test"},
	})
	app, _, stderr := newTestApp(t, cfg, nil)

	err := runCLI(t, app, "resolve", lib, "-t", "it_works", "--project-root", root)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("resolve error = %v, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	if !strings.Contains(stderr.String(), "No build system specified") {
		t.Errorf("stderr = %q, want build system diagnostic", stderr.String())
	}
}

func TestRunResolve_SettingsDefaultBuildSystem(t *testing.T) {
	// Not parallel: runCLI mutates package-level flag vars.

	root := newCrate(t, "demo", "src/lib.rs")
	lib := filepath.Join(root, "src/lib.rs")

	// No build system in any layer; the settings default fills the gap.
	cfg := &config.Config{}
	cfg.AddLayer(config.WorkspaceScope(), config.LayerConfig{
		Strategies: map[runnable.FrameworkKind]string{runnable.FrameworkTest: "cargo-test"},
	})
	settings := config.DefaultSettings()
	settings.DefaultBuildSystem = "cargo"
	settings.Channel = "nightly"
	app, stdout, _ := newTestApp(t, cfg, settings)

	err := runCLI(t, app, "resolve", lib, "-t", "it_works", "--project-root", root)
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	want := "cargo +nightly test --package demo --lib -- it_works --exact\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}
