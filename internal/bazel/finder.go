// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

// buildCacheSize bounds the per-process BUILD parse memo. Resolution
// sessions touch a handful of BUILD files; the bound only matters for
// long-lived server use.
const buildCacheSize = 128

// ErrNoBuildFile is returned when the walk above a source file reaches the
// workspace root without finding BUILD.bazel or BUILD.
var ErrNoBuildFile = errors.New("No BUILD file found")

type (
	// Finder locates the targets that own source files. It is safe for
	// concurrent use; parsed BUILD files are memoized and invalidated by
	// modification time.
	Finder struct {
		cache *lru.Cache[string, buildCacheEntry]
	}

	buildCacheEntry struct {
		modTime time.Time
		size    int64
		targets []Target
	}
)

// NewFinder creates a target finder with an empty parse cache.
func NewFinder() (*Finder, error) {
	cache, err := lru.New[string, buildCacheEntry](buildCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create BUILD cache: %w", err)
	}
	return &Finder{cache: cache}, nil
}

// FindBuildFile walks up from file's directory looking for BUILD.bazel or
// BUILD, stopping after workspaceRoot.
func (f *Finder) FindBuildFile(file, workspaceRoot string) (string, error) {
	dir := filepath.Dir(file)
	for {
		for _, name := range []string{"BUILD.bazel", "BUILD"} {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		if dir == workspaceRoot {
			return "", ErrNoBuildFile
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoBuildFile
		}
		dir = parent
	}
}

// TargetsInBuildFile parses a BUILD file and returns every known target it
// declares, labeled with the owning package path.
func (f *Finder) TargetsInBuildFile(buildFile string) ([]Target, error) {
	info, err := os.Stat(buildFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read BUILD file: %w", err)
	}

	if entry, ok := f.cache.Get(buildFile); ok {
		if entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			return slices.Clone(entry.targets), nil
		}
	}

	data, err := os.ReadFile(buildFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read BUILD file: %w", err)
	}

	rules, err := parseBuildFile(buildFile, data)
	if err != nil {
		return nil, err
	}

	pkg := packagePath(buildFile)
	targets := make([]Target, 0, len(rules))
	for _, r := range rules {
		ri := knownRules[r.typ]
		targets = append(targets, Target{
			Name:     r.name,
			Label:    pkg + ":" + r.name,
			Kind:     ri.kind,
			Sources:  r.srcs,
			Excludes: r.excludes,
			CrateRef: r.crateRef,
			TestOnly: ri.testOnly,
		})
	}
	slog.Debug("parsed BUILD file", "path", buildFile, "targets", len(targets))

	f.cache.Add(buildFile, buildCacheEntry{
		modTime: info.ModTime(),
		size:    info.Size(),
		targets: targets,
	})
	return slices.Clone(targets), nil
}

// TargetsForFile returns the targets that own file: rules whose srcs
// include it, plus rules whose crate back-reference names a library or
// binary that does. The latter surfaces rust_test and rust_doc_test rules
// that declare `crate = ":lib"` without repeating the sources.
func (f *Finder) TargetsForFile(file, workspaceRoot string) ([]Target, error) {
	buildFile, err := f.FindBuildFile(file, workspaceRoot)
	if err != nil {
		return nil, err
	}

	all, err := f.TargetsInBuildFile(buildFile)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(filepath.Dir(buildFile), file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("file %s is not under the BUILD directory %s", file, filepath.Dir(buildFile))
	}
	rel = filepath.ToSlash(rel)

	var matched []Target
	containers := make(map[string]bool)
	for _, t := range all {
		if t.ownsFile(rel) {
			matched = append(matched, t)
			if t.Kind == KindLibrary || t.Kind == KindBinary {
				containers[t.Name] = true
			}
		}
	}

	for _, t := range all {
		ref := strings.TrimPrefix(t.CrateRef, ":")
		if ref == "" || !containers[ref] {
			continue
		}
		already := slices.ContainsFunc(matched, func(m Target) bool { return m.Name == t.Name })
		if !already {
			matched = append(matched, t)
		}
	}

	slog.Debug("matched targets for file", "file", rel, "build_file", buildFile, "count", len(matched))
	return matched, nil
}

// FindRunnableTarget returns the best runnable target owning file,
// optionally restricted to one kind. No owning target is not an error:
// the caller decides whether a missing target is fatal.
func (f *Finder) FindRunnableTarget(file, workspaceRoot string, kind TargetKind) (*Target, error) {
	targets, err := f.TargetsForFile(file, workspaceRoot)
	if err != nil {
		return nil, err
	}

	var candidates []Target
	for _, t := range targets {
		if !t.Kind.IsRunnable() {
			continue
		}
		if kind != "" && t.Kind != kind {
			continue
		}
		candidates = append(candidates, t)
	}
	return bestTarget(candidates), nil
}

// FindBuildTarget returns the best target of any kind owning file.
// Build commands accept libraries and build scripts, so no runnable
// filter applies here.
func (f *Finder) FindBuildTarget(file, workspaceRoot string) (*Target, error) {
	targets, err := f.TargetsForFile(file, workspaceRoot)
	if err != nil {
		return nil, err
	}
	return bestTarget(targets), nil
}

// FindIntegrationTestTarget returns the TestSuite target owning a file
// under a tests/ directory, or nil so callers can fall back to a default
// label.
func (f *Finder) FindIntegrationTestTarget(file, workspaceRoot string) (*Target, error) {
	if !hasPathSegment(file, "tests") {
		return nil, nil
	}

	targets, err := f.TargetsForFile(file, workspaceRoot)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if t.Kind == KindTestSuite {
			return &t, nil
		}
	}
	return nil, nil
}

// FindDocTestTarget returns the DocTest target whose crate reference
// names the library owning file, or nil when the file has no library or
// the library has no doc-test rule.
func (f *Finder) FindDocTestTarget(file, workspaceRoot string) (*Target, error) {
	targets, err := f.TargetsForFile(file, workspaceRoot)
	if err != nil {
		return nil, err
	}

	var lib *Target
	for _, t := range targets {
		if t.Kind == KindLibrary {
			lib = &t
			break
		}
	}
	if lib == nil {
		return nil, nil
	}

	buildFile, err := f.FindBuildFile(file, workspaceRoot)
	if err != nil {
		return nil, err
	}
	all, err := f.TargetsInBuildFile(buildFile)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.Kind == KindDocTest && strings.TrimPrefix(t.CrateRef, ":") == lib.Name {
			return &t, nil
		}
	}
	return nil, nil
}

// ownsFile reports whether the target's srcs claim the path (relative to
// the BUILD directory): exact entries match literally, glob entries match
// through doublestar, and exclude patterns veto.
func (t Target) ownsFile(rel string) bool {
	for _, pattern := range t.Excludes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return false
		}
	}
	for _, src := range t.Sources {
		if !strings.ContainsAny(src, "*?[") {
			if src == rel {
				return true
			}
			continue
		}
		if ok, err := doublestar.Match(src, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// bestTarget picks the highest-priority target: Test before TestSuite
// before DocTest before Benchmark before Binary before Library. Equal
// ranks keep declaration order.
func bestTarget(targets []Target) *Target {
	var best *Target
	for i := range targets {
		if best == nil || targets[i].Kind.rank() < best.Kind.rank() {
			best = &targets[i]
		}
	}
	return best
}

// packagePath derives the "//path/from/root" package prefix for a BUILD
// file by locating the enclosing MODULE.bazel or WORKSPACE marker. A
// BUILD file in the workspace root maps to exactly "//".
func packagePath(buildFile string) string {
	pkgDir := filepath.Dir(buildFile)

	root := ""
	for dir := pkgDir; ; {
		if fileInDir(dir, "MODULE.bazel") || fileInDir(dir, "WORKSPACE") {
			root = dir
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if root == "" {
		return "//"
	}

	rel, err := filepath.Rel(root, pkgDir)
	if err != nil || rel == "." {
		return "//"
	}
	return "//" + filepath.ToSlash(rel)
}

func fileInDir(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}

func hasPathSegment(path, segment string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(path), "/"), segment)
}
