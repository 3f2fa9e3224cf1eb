// SPDX-License-Identifier: MPL-2.0

package bazel

// Target kinds produced by the rust rules runwk understands.
const (
	KindLibrary     TargetKind = "Library"
	KindBinary      TargetKind = "Binary"
	KindTest        TargetKind = "Test"
	KindTestSuite   TargetKind = "TestSuite"
	KindDocTest     TargetKind = "DocTest"
	KindBenchmark   TargetKind = "Benchmark"
	KindBuildScript TargetKind = "BuildScript"
)

type (
	// TargetKind classifies a build rule by what running it does.
	TargetKind string

	// Target is one rule declared in a BUILD file, reduced to the fields
	// target resolution needs.
	Target struct {
		// Name is the rule's name attribute.
		Name string
		// Label is the fully qualified label, "//package:name".
		Label string
		// Kind classifies the rule.
		Kind TargetKind
		// Sources holds the srcs entries: literal paths and glob
		// patterns, relative to the BUILD file's directory.
		Sources []string
		// Excludes holds glob exclude patterns; a file matching one is
		// not owned by this target.
		Excludes []string
		// CrateRef is the crate back-reference (":lib") test and
		// doc-test rules use instead of repeating srcs.
		CrateRef string
		// TestOnly marks rules that only ever run under test.
		TestOnly bool
	}
)

// IsRunnable reports whether targets of this kind can be invoked directly.
func (k TargetKind) IsRunnable() bool {
	switch k {
	case KindBinary, KindTest, KindTestSuite, KindDocTest, KindBenchmark:
		return true
	default:
		return false
	}
}

// rank orders kinds for best-target selection; lower ranks win.
func (k TargetKind) rank() int {
	switch k {
	case KindTest:
		return 0
	case KindTestSuite:
		return 1
	case KindDocTest:
		return 2
	case KindBenchmark:
		return 3
	case KindBinary:
		return 4
	case KindLibrary:
		return 5
	default:
		return 6
	}
}

// ruleInfo maps a BUILD rule name to the target kind it declares.
type ruleInfo struct {
	kind     TargetKind
	testOnly bool
}

// knownRules are the rules_rust declarations target resolution models.
// Everything else in a BUILD file (load statements, toolchains, unrelated
// rules) is ignored.
var knownRules = map[string]ruleInfo{
	"rust_binary":         {kind: KindBinary},
	"rust_library":        {kind: KindLibrary},
	"rust_proc_macro":     {kind: KindLibrary},
	"rust_shared_library": {kind: KindLibrary},
	"rust_static_library": {kind: KindLibrary},
	"rust_test":           {kind: KindTest, testOnly: true},
	"rust_test_suite":     {kind: KindTestSuite, testOnly: true},
	"rust_doc_test":       {kind: KindDocTest, testOnly: true},
	"rust_benchmark":      {kind: KindBenchmark},
	"rust_bench":          {kind: KindBenchmark},
	"cargo_build_script":  {kind: KindBuildScript},
}
