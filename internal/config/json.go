// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/runwk/runwk/pkg/cueutil"
	"github.com/runwk/runwk/pkg/runnable"
)

//go:embed project_schema.cue
var projectSchema string

type (
	// projectFile is the on-disk layered format. Top-level build_system,
	// channel, frameworks, args, and env are workspace defaults; the
	// crates/modules/files/functions maps contribute scoped layers.
	//
	// encoding/json is used directly (rather than Viper) because env maps
	// are case-sensitive: RUST_LOG must survive the round trip.
	projectFile struct {
		Version        string               `json:"version,omitempty"`
		LinkedProjects []string             `json:"linked_projects,omitempty"`
		BuildSystem    string               `json:"build_system,omitempty"`
		Channel        string               `json:"channel,omitempty"`
		Frameworks     *frameworkDecls      `json:"frameworks,omitempty"`
		Args           *argDecls            `json:"args,omitempty"`
		Env            map[string]string    `json:"env,omitempty"`
		Workspace      *layerDecl           `json:"workspace,omitempty"`
		Crates         map[string]layerDecl `json:"crates,omitempty"`
		Modules        map[string]layerDecl `json:"modules,omitempty"`
		Files          map[string]layerDecl `json:"files,omitempty"`
		Functions      map[string]layerDecl `json:"functions,omitempty"`
	}

	// layerDecl is one scoped layer's on-disk shape.
	layerDecl struct {
		BuildSystem string            `json:"build_system,omitempty"`
		Channel     string            `json:"channel,omitempty"`
		Frameworks  *frameworkDecls   `json:"frameworks,omitempty"`
		Args        *argDecls         `json:"args,omitempty"`
		Env         map[string]string `json:"env,omitempty"`
	}

	// frameworkDecls maps framework kinds to strategy names.
	frameworkDecls struct {
		Test      string `json:"test,omitempty"`
		Binary    string `json:"binary,omitempty"`
		Benchmark string `json:"benchmark,omitempty"`
		Doctest   string `json:"doctest,omitempty"`
		Build     string `json:"build,omitempty"`
	}

	// argDecls holds the per-bucket argument lists.
	argDecls struct {
		All        []string `json:"all,omitempty"`
		Test       []string `json:"test,omitempty"`
		Binary     []string `json:"binary,omitempty"`
		Benchmark  []string `json:"benchmark,omitempty"`
		Build      []string `json:"build,omitempty"`
		TestBinary []string `json:"test_binary,omitempty"`
	}
)

// loadProjectFile reads one layered config file. JSON files decode
// directly; .cue files validate against the embedded schema first.
func loadProjectFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var pf projectFile
	if strings.HasSuffix(path, ".cue") {
		result, err := cueutil.ParseAndDecodeString[projectFile](
			projectSchema, data, "#Project",
			cueutil.WithConcrete(false),
			cueutil.WithFilename(path),
		)
		if err != nil {
			return nil, err
		}
		pf = *result.Value
	} else {
		if err := json.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return pf.toConfig()
}

// toConfig normalizes the on-disk shape into layers. Scoped maps emit in
// sorted key order so a file's contribution order is deterministic.
func (pf *projectFile) toConfig() (*Config, error) {
	cfg := &Config{LinkedProjects: pf.LinkedProjects}

	workspace := layerDecl{
		BuildSystem: pf.BuildSystem,
		Channel:     pf.Channel,
		Frameworks:  pf.Frameworks,
		Args:        pf.Args,
		Env:         pf.Env,
	}
	wsConfig, err := workspace.toLayerConfig()
	if err != nil {
		return nil, err
	}
	if pf.Workspace != nil {
		// Nested workspace section kept for older files; it merges over
		// the top-level defaults.
		nested, err := pf.Workspace.toLayerConfig()
		if err != nil {
			return nil, err
		}
		wsConfig.Apply(nested)
	}
	if !wsConfig.IsZero() {
		cfg.AddLayer(WorkspaceScope(), wsConfig)
	}

	if err := addScopedLayers(cfg, pf.Crates, CrateScope); err != nil {
		return nil, err
	}
	if err := addScopedLayers(cfg, pf.Modules, ModuleScope); err != nil {
		return nil, err
	}
	if err := addScopedLayers(cfg, pf.Files, FileScope); err != nil {
		return nil, err
	}
	if err := addScopedLayers(cfg, pf.Functions, FunctionScope); err != nil {
		return nil, err
	}

	return cfg, nil
}

func addScopedLayers(cfg *Config, decls map[string]layerDecl, scope func(string) Scope) error {
	keys := make([]string, 0, len(decls))
	for k := range decls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		decl := decls[key]
		lc, err := decl.toLayerConfig()
		if err != nil {
			return err
		}
		cfg.AddLayer(scope(key), lc)
	}
	return nil
}

func (ld *layerDecl) toLayerConfig() (LayerConfig, error) {
	lc := NewLayerConfig()

	bs, err := ParseBuildSystem(ld.BuildSystem)
	if err != nil {
		return lc, err
	}
	lc.BuildSystem = bs
	lc.Channel = ld.Channel

	if ld.Frameworks != nil {
		setStrategy(lc.Strategies, runnable.FrameworkTest, ld.Frameworks.Test)
		setStrategy(lc.Strategies, runnable.FrameworkBinary, ld.Frameworks.Binary)
		setStrategy(lc.Strategies, runnable.FrameworkBenchmark, ld.Frameworks.Benchmark)
		setStrategy(lc.Strategies, runnable.FrameworkDocTest, ld.Frameworks.Doctest)
		setStrategy(lc.Strategies, runnable.FrameworkBuild, ld.Frameworks.Build)
	}
	if ld.Args != nil {
		setArgs(lc.Args, BucketAll, ld.Args.All)
		setArgs(lc.Args, BucketTest, ld.Args.Test)
		setArgs(lc.Args, BucketBinary, ld.Args.Binary)
		setArgs(lc.Args, BucketBenchmark, ld.Args.Benchmark)
		setArgs(lc.Args, BucketBuild, ld.Args.Build)
		setArgs(lc.Args, BucketTestBinary, ld.Args.TestBinary)
	}
	for k, v := range ld.Env {
		lc.Env[k] = v
	}

	return lc, nil
}

func setStrategy(m map[runnable.FrameworkKind]string, kind runnable.FrameworkKind, name string) {
	if name != "" {
		m[kind] = name
	}
}

func setArgs(m map[ArgBucket][]string, bucket ArgBucket, args []string) {
	if len(args) > 0 {
		m[bucket] = append(m[bucket], args...)
	}
}
