// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/runwk/runwk/pkg/runnable"
)

// Argument buckets a layer can contribute to. Kind buckets share names
// with runnable.FrameworkKind values; the two extra buckets cover
// arguments for every command ("all") and arguments passed to the
// compiled test binary after "--" ("test-binary").
const (
	BucketAll        ArgBucket = "all"
	BucketTest       ArgBucket = "Test"
	BucketBinary     ArgBucket = "Binary"
	BucketBenchmark  ArgBucket = "Benchmark"
	BucketBuild      ArgBucket = "Build"
	BucketTestBinary ArgBucket = "test-binary"
)

// ErrNoBuildSystem is returned when no matching layer names a build system.
var ErrNoBuildSystem = errors.New("No build system specified")

// ErrNoFrameworkStrategy is the sentinel error wrapped by NoStrategyError.
var ErrNoFrameworkStrategy = errors.New("no framework strategy configured")

type (
	// ArgBucket names one argument list slot in a layer.
	ArgBucket string

	// LayerConfig is one layer's contribution to the effective
	// configuration. Every field is optional; zero values mean "inherit
	// from a less specific layer".
	LayerConfig struct {
		// BuildSystem selects the tool family. Last matching layer that
		// sets it wins.
		BuildSystem BuildSystem
		// Channel is the toolchain channel cargo strategies prefix as
		// "+<channel>". Last set wins.
		Channel string
		// Strategies maps a framework kind to a registered strategy
		// name. Per-kind last set wins.
		Strategies map[runnable.FrameworkKind]string
		// Args holds per-bucket argument lists. Buckets append across
		// layers in merge order.
		Args map[ArgBucket][]string
		// Env merges key-wise; a later layer's value replaces an
		// earlier one per key.
		Env map[string]string
	}

	// ConfigLayer pairs a scope matcher with the configuration it
	// contributes when the scope matches.
	ConfigLayer struct {
		Scope  Scope
		Config LayerConfig
	}

	// NoStrategyError is returned when the merged configuration maps no
	// strategy name to a framework kind.
	NoStrategyError struct {
		Kind runnable.FrameworkKind
	}
)

// Error implements the error interface.
func (e *NoStrategyError) Error() string {
	return fmt.Sprintf("No framework strategy for %s", e.Kind)
}

// Unwrap returns ErrNoFrameworkStrategy so callers can use errors.Is for
// programmatic detection.
func (e *NoStrategyError) Unwrap() error { return ErrNoFrameworkStrategy }

// NewLayerConfig returns an empty layer configuration with allocated maps.
func NewLayerConfig() LayerConfig {
	return LayerConfig{
		Strategies: make(map[runnable.FrameworkKind]string),
		Args:       make(map[ArgBucket][]string),
		Env:        make(map[string]string),
	}
}

// IsZero reports whether the layer contributes nothing.
func (lc LayerConfig) IsZero() bool {
	return lc.BuildSystem == "" && lc.Channel == "" &&
		len(lc.Strategies) == 0 && len(lc.Args) == 0 && len(lc.Env) == 0
}

// Apply folds other into lc using field-level merge: build system,
// channel, and per-kind strategy names replace; argument buckets append;
// env merges key-wise.
func (lc *LayerConfig) Apply(other LayerConfig) {
	if other.BuildSystem != "" {
		lc.BuildSystem = other.BuildSystem
	}
	if other.Channel != "" {
		lc.Channel = other.Channel
	}
	for kind, name := range other.Strategies {
		if lc.Strategies == nil {
			lc.Strategies = make(map[runnable.FrameworkKind]string)
		}
		lc.Strategies[kind] = name
	}
	for bucket, args := range other.Args {
		if lc.Args == nil {
			lc.Args = make(map[ArgBucket][]string)
		}
		lc.Args[bucket] = append(lc.Args[bucket], args...)
	}
	for key, value := range other.Env {
		if lc.Env == nil {
			lc.Env = make(map[string]string)
		}
		lc.Env[key] = value
	}
}

// RequireBuildSystem returns the merged build system selection, or the
// configuration error every caller surfaces verbatim when no matching
// layer supplied one.
func (lc LayerConfig) RequireBuildSystem() (BuildSystem, error) {
	if lc.BuildSystem == "" {
		return "", ErrNoBuildSystem
	}
	return lc.BuildSystem, nil
}

// StrategyName returns the strategy configured for kind.
func (lc LayerConfig) StrategyName(kind runnable.FrameworkKind) (string, error) {
	if name, ok := lc.Strategies[kind]; ok && name != "" {
		return name, nil
	}
	return "", &NoStrategyError{Kind: kind}
}

// ArgsFor returns the extra arguments to splice into a command of the
// given kind: the "all" bucket first, then the kind bucket. Doc tests
// have no kind bucket and receive only "all" arguments.
func (lc LayerConfig) ArgsFor(kind runnable.FrameworkKind) []string {
	var args []string
	args = append(args, lc.Args[BucketAll]...)
	if bucket, ok := bucketFor(kind); ok {
		args = append(args, lc.Args[bucket]...)
	}
	return args
}

// TestBinaryArgs returns the arguments appended after "--" for test
// commands.
func (lc LayerConfig) TestBinaryArgs() []string {
	return slices.Clone(lc.Args[BucketTestBinary])
}

// EnvKeys returns the merged env keys in sorted order so commands carry
// environment pairs deterministically.
func (lc LayerConfig) EnvKeys() []string {
	keys := make([]string, 0, len(lc.Env))
	for k := range lc.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func bucketFor(kind runnable.FrameworkKind) (ArgBucket, bool) {
	switch kind {
	case runnable.FrameworkTest:
		return BucketTest, true
	case runnable.FrameworkBinary:
		return BucketBinary, true
	case runnable.FrameworkBenchmark:
		return BucketBenchmark, true
	case runnable.FrameworkBuild:
		return BucketBuild, true
	default:
		return "", false
	}
}
