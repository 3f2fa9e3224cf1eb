// SPDX-License-Identifier: MPL-2.0

package runnable

import "fmt"

// Kind tags for the RunnableKind variant set.
const (
	KindTest             Kind = "test"
	KindModuleTests      Kind = "module_tests"
	KindBinary           Kind = "binary"
	KindBenchmark        Kind = "benchmark"
	KindDocTest          Kind = "doc_test"
	KindStandalone       Kind = "standalone"
	KindSingleFileScript Kind = "single_file_script"
)

// Framework kinds select which strategy slot a runnable uses.
const (
	FrameworkTest      FrameworkKind = "Test"
	FrameworkBinary    FrameworkKind = "Binary"
	FrameworkBenchmark FrameworkKind = "Benchmark"
	FrameworkDocTest   FrameworkKind = "DocTest"
	FrameworkBuild     FrameworkKind = "Build"
)

type (
	// Kind identifies which RunnableKind variant is populated.
	Kind string

	// FrameworkKind is the coarse command family a runnable resolves
	// through. Every Kind maps to exactly one FrameworkKind.
	FrameworkKind string

	// RunnableKind is the tagged variant describing a runnable element.
	// Only the fields belonging to the active Kind carry meaning; use the
	// constructors rather than building values by hand.
	RunnableKind struct {
		Kind Kind `json:"kind"`

		// TestName is the test function name (KindTest).
		TestName string `json:"test_name,omitempty"`
		// ModuleName is the `::`-joined module path of a whole-module
		// test run (KindModuleTests).
		ModuleName string `json:"module_name,omitempty"`
		// BinName is the explicit binary target name (KindBinary). Empty
		// means "derive from the file location".
		BinName string `json:"bin_name,omitempty"`
		// BenchName is the benchmark function name (KindBenchmark).
		BenchName string `json:"bench_name,omitempty"`
		// OwnerName is the struct/module owning a doc test (KindDocTest).
		OwnerName string `json:"owner_name,omitempty"`
		// MethodName is the method of a doc test, empty for type-level
		// doc tests (KindDocTest).
		MethodName string `json:"method_name,omitempty"`
		// Shebang is the interpreter line of a single-file script
		// (KindSingleFileScript).
		Shebang string `json:"shebang,omitempty"`
		// HasTests reports whether a standalone file contains tests
		// (KindStandalone).
		HasTests bool `json:"has_tests,omitempty"`
	}

	// Position is a zero-based location in a source file.
	Position struct {
		Line   uint32 `json:"line"`
		Column uint32 `json:"column"`
	}

	// TextRange is the source span a runnable covers.
	TextRange struct {
		Start Position `json:"start"`
		End   Position `json:"end"`
	}

	// Runnable is a concrete executable unit of source code as produced by
	// a source-analysis collaborator. This engine never inspects source
	// text; it trusts the module path and span handed to it.
	Runnable struct {
		Label      string       `json:"label"`
		Kind       RunnableKind `json:"kind"`
		ModulePath string       `json:"module_path"`
		FilePath   string       `json:"file_path"`
		Scope      TextRange    `json:"scope"`
	}
)

// NewTest builds the runnable kind for a single test function.
func NewTest(name string) RunnableKind {
	return RunnableKind{Kind: KindTest, TestName: name}
}

// NewModuleTests builds the runnable kind for all tests in a module.
func NewModuleTests(moduleName string) RunnableKind {
	return RunnableKind{Kind: KindModuleTests, ModuleName: moduleName}
}

// NewBinary builds the runnable kind for a binary entry point. binName may
// be empty, in which case strategies derive the target from the file path.
func NewBinary(binName string) RunnableKind {
	return RunnableKind{Kind: KindBinary, BinName: binName}
}

// NewBenchmark builds the runnable kind for a benchmark function.
func NewBenchmark(name string) RunnableKind {
	return RunnableKind{Kind: KindBenchmark, BenchName: name}
}

// NewDocTest builds the runnable kind for a doc test. methodName is empty
// for type- and module-level doc tests.
func NewDocTest(ownerName, methodName string) RunnableKind {
	return RunnableKind{Kind: KindDocTest, OwnerName: ownerName, MethodName: methodName}
}

// NewStandalone builds the runnable kind for a file outside any package.
func NewStandalone(hasTests bool) RunnableKind {
	return RunnableKind{Kind: KindStandalone, HasTests: hasTests}
}

// NewSingleFileScript builds the runnable kind for a shebang script file.
func NewSingleFileScript(shebang string) RunnableKind {
	return RunnableKind{Kind: KindSingleFileScript, Shebang: shebang}
}

// ScopeContext assembles the configuration-matching scope for the
// runnable inside crateName: the runnable's own module and file location
// plus the function-level name its kind carries.
func (r Runnable) ScopeContext(crateName string) ScopeContext {
	scope := ScopeContext{
		CrateName:  crateName,
		ModulePath: r.ModulePath,
		FilePath:   r.FilePath,
	}
	if name, ok := r.Kind.FunctionName(); ok {
		scope.FunctionName = name
	}
	return scope
}

// FunctionName returns the function-level name carried by the kind, if any.
// Doc tests yield "owner::method" when a method is present.
func (k RunnableKind) FunctionName() (string, bool) {
	switch k.Kind {
	case KindTest:
		return k.TestName, true
	case KindDocTest:
		if k.MethodName != "" {
			return fmt.Sprintf("%s::%s", k.OwnerName, k.MethodName), true
		}
		return k.OwnerName, true
	case KindBenchmark:
		return k.BenchName, true
	case KindBinary:
		return k.BinName, k.BinName != ""
	case KindModuleTests:
		return k.ModuleName, true
	default:
		return "", false
	}
}

// Framework maps the runnable kind to its strategy slot. Standalone files
// and single-file scripts resolve through the Binary slot; whole-module
// runs resolve through Test.
func (k RunnableKind) Framework() FrameworkKind {
	switch k.Kind {
	case KindTest, KindModuleTests:
		return FrameworkTest
	case KindBenchmark:
		return FrameworkBenchmark
	case KindDocTest:
		return FrameworkDocTest
	default:
		return FrameworkBinary
	}
}

// String returns the framework kind name as used in error messages.
func (f FrameworkKind) String() string { return string(f) }
