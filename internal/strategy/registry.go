// SPDX-License-Identifier: MPL-2.0

package strategy

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/runwk/runwk/internal/bazel"
)

// ErrUnknownStrategy is the sentinel error wrapped by UnknownStrategyError.
var ErrUnknownStrategy = errors.New("unknown strategy")

type (
	// Registry maps strategy names to implementations.
	Registry struct {
		strategies map[string]Strategy
	}

	// UnknownStrategyError is returned when a configured strategy name has
	// no registration.
	UnknownStrategyError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("Unknown strategy: %s", e.Name)
}

// Unwrap returns ErrUnknownStrategy so callers can use errors.Is for
// programmatic detection.
func (e *UnknownStrategyError) Unwrap() error { return ErrUnknownStrategy }

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds s under its name, replacing any earlier registration of
// the same name.
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get returns the strategy registered under name.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, &UnknownStrategyError{Name: name}
	}
	return s, nil
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.strategies[name]
	return ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.strategies))
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int { return len(r.strategies) }

// All yields the registered strategies in name order.
func (r *Registry) All() []Strategy {
	out := make([]Strategy, 0, len(r.strategies))
	for _, name := range r.Names() {
		out = append(out, r.strategies[name])
	}
	return out
}

// DefaultRegistry builds a registry with every built-in strategy. The
// bazel strategies share one finder so BUILD parses are cached across
// them.
func DefaultRegistry() (*Registry, error) {
	finder, err := bazel.NewFinder()
	if err != nil {
		return nil, err
	}

	r := NewRegistry()

	// cargo project strategies
	r.Register(NewCargoTestStrategy())
	r.Register(NewCargoNextestStrategy())
	r.Register(NewCargoRunStrategy())
	r.Register(NewCargoBenchStrategy())
	r.Register(NewCargoDocTestStrategy())
	r.Register(NewCargoBuildStrategy())

	// bazel workspace strategies
	r.Register(NewBazelTestStrategy(finder))
	r.Register(NewBazelRunStrategy(finder))
	r.Register(NewBazelBenchStrategy())
	r.Register(NewBazelBuildStrategy(finder))

	// dev servers
	r.Register(NewLeptosWatchStrategy())
	r.Register(NewCargoLeptosStrategy())
	r.Register(NewTrunkServeStrategy())
	r.Register(NewDxServeStrategy())
	r.Register(NewCargoTauriStrategy())
	r.Register(NewCargoShuttleStrategy())

	// standalone files and single-file scripts
	r.Register(NewRustcRunStrategy())
	r.Register(NewRustcTestStrategy())
	r.Register(NewScriptRunStrategy())
	r.Register(NewScriptTestStrategy())

	return r, nil
}
