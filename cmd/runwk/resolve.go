// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"

	"github.com/runwk/runwk/internal/config"
	"github.com/runwk/runwk/internal/manifest"
	"github.com/runwk/runwk/internal/resolver"
	"github.com/runwk/runwk/pkg/command"
	"github.com/runwk/runwk/pkg/runnable"
)

// resolveFlagValues holds the flag state of one `runwk resolve` invocation.
type resolveFlagValues struct {
	file         string
	pkg          string
	module       string
	test         string
	moduleTests  string
	bin          string
	bench        string
	doctest      string
	build        bool
	runnablePath string
	jsonOut      bool
	explain      bool
}

// newResolveCommand creates the `runwk resolve` command.
func newResolveCommand(app *App) *cobra.Command {
	flags := &resolveFlagValues{}

	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Resolve a runnable into its build-system command",
		Long: `Resolve a located code element into the exact command that runs it.

The element is addressed by a source file plus one selector flag. Without
a selector, the file resolves as a binary run (src/main.rs, src/bin/*,
examples/*, or a single-file script). Layered configuration decides the
build system and strategy; identity-matched overrides apply last.

Source analyzers can hand over a full runnable as JSON via --runnable
instead of spelling out flags.

Examples:
  runwk resolve src/main.rs                      Run command for a binary
  runwk resolve src/lib.rs -t parses_empty       Test command for one test
  runwk resolve src/lib.rs --module-tests api    All tests in module api
  runwk resolve benches/perf.rs --bench large    Benchmark command
  runwk resolve src/lib.rs --doctest Client::get Doc-test command
  runwk resolve src/main.rs --build              Compile-only command
  runwk resolve --runnable target.json --json    Full command as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if flags.file != "" && flags.file != args[0] {
					return fmt.Errorf("file given both as argument (%s) and --file (%s)", args[0], flags.file)
				}
				flags.file = args[0]
			}
			return runResolve(cmd, app, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "source file containing the runnable")
	cmd.Flags().StringVarP(&flags.pkg, "package", "p", "", "crate name (default: nearest Cargo.toml package)")
	cmd.Flags().StringVarP(&flags.module, "module", "m", "", "module path of the runnable, :: separated")
	cmd.Flags().StringVarP(&flags.test, "test", "t", "", "resolve a single test function")
	cmd.Flags().StringVar(&flags.moduleTests, "module-tests", "", "resolve all tests in a module")
	cmd.Flags().StringVar(&flags.bin, "bin", "", "resolve a binary target by name")
	cmd.Flags().StringVar(&flags.bench, "bench", "", "resolve a benchmark function")
	cmd.Flags().StringVar(&flags.doctest, "doctest", "", "resolve a doc test (OWNER or OWNER::METHOD)")
	cmd.Flags().BoolVar(&flags.build, "build", false, "resolve the compile-only command for the target")
	cmd.Flags().StringVar(&flags.runnablePath, "runnable", "", "read the runnable from a JSON file (- for stdin)")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "emit the command as JSON")
	cmd.Flags().BoolVar(&flags.explain, "explain", false, "show the layers, strategy, and override behind the decision")

	return cmd
}

// runResolve loads settings and project configuration, assembles the
// target from flags, and prints the synthesized command.
func runResolve(cmd *cobra.Command, app *App, flags *resolveFlagValues) error {
	ctx := cmd.Context()

	settings, err := app.loadSettings(ctx)
	if err != nil {
		return err
	}
	boundary := effectiveProjectRoot(settings)

	scope, kind, err := resolveTarget(flags, boundary)
	if err != nil {
		return err
	}

	startDir := "."
	if scope.FilePath != "" {
		startDir = filepath.Dir(scope.FilePath)
	}
	cfg, err := app.loadProject(ctx, startDir, settings)
	if err != nil {
		issueID, styled := classifyConfigLoadError(err, verbose)
		renderServiceError(app.stderr, newServiceError(err, issueID, styled))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	res := resolver.New(cfg, app.Registry, resolver.Options{WorkspaceRoot: boundary})

	if flags.explain {
		return runResolveExplain(cmd, app, res, scope, kind, flags.build)
	}

	var out *command.Command
	if flags.build {
		out, err = res.ResolveBuild(scope)
	} else {
		out, err = res.Resolve(scope, kind)
	}
	if err != nil {
		issueID, styled := classifyResolutionError(err, verbose)
		renderServiceError(app.stderr, newServiceError(err, issueID, styled))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	if flags.jsonOut {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode command: %w", err)
		}
		fmt.Fprintln(app.stdout, string(data))
		return nil
	}

	fmt.Fprintln(app.stdout, shellLine(out))
	return nil
}

// runResolveExplain resolves while keeping intermediate steps and renders
// them. The trace is printed even when resolution fails, so the user sees
// which layers matched before the failing step.
func runResolveExplain(cmd *cobra.Command, app *App, res *resolver.Resolver, scope runnable.ScopeContext, kind runnable.RunnableKind, build bool) error {
	var (
		ex  *resolver.Explanation
		err error
	)
	if build {
		ex, err = res.ExplainBuild(scope)
	} else {
		ex, err = res.Explain(scope, kind)
	}

	renderExplain(app.stdout, ex)

	if err != nil {
		issueID, styled := classifyResolutionError(err, verbose)
		renderServiceError(app.stderr, newServiceError(err, issueID, styled))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}
	return nil
}

// resolveTarget assembles the scope and runnable kind from the flag set,
// either from an explicit runnable JSON document or from selector flags.
// boundary caps the package-inference manifest walk.
func resolveTarget(flags *resolveFlagValues, boundary string) (runnable.ScopeContext, runnable.RunnableKind, error) {
	if flags.runnablePath != "" {
		if flags.file != "" || flags.module != "" || hasSelector(flags) {
			return runnable.ScopeContext{}, runnable.RunnableKind{}, fmt.Errorf("--runnable cannot be combined with location or selector flags")
		}
		run, err := loadRunnable(flags.runnablePath)
		if err != nil {
			return runnable.ScopeContext{}, runnable.RunnableKind{}, err
		}
		pkg := flags.pkg
		if pkg == "" {
			pkg = inferPackage(run.FilePath, boundary)
		}
		return run.ScopeContext(pkg), run.Kind, nil
	}

	kind, err := selectorKind(flags)
	if err != nil {
		return runnable.ScopeContext{}, runnable.RunnableKind{}, err
	}

	pkg := flags.pkg
	if pkg == "" {
		pkg = inferPackage(flags.file, boundary)
	}

	run := runnable.Runnable{
		Kind:       kind,
		ModulePath: flags.module,
		FilePath:   flags.file,
	}
	return run.ScopeContext(pkg), kind, nil
}

// selectorKind derives the runnable kind from the selector flags. At most
// one selector may be set; none selects a binary run derived from the
// file location.
func selectorKind(flags *resolveFlagValues) (runnable.RunnableKind, error) {
	var kinds []runnable.RunnableKind
	if flags.test != "" {
		kinds = append(kinds, runnable.NewTest(flags.test))
	}
	if flags.moduleTests != "" {
		kinds = append(kinds, runnable.NewModuleTests(flags.moduleTests))
	}
	if flags.bench != "" {
		kinds = append(kinds, runnable.NewBenchmark(flags.bench))
	}
	if flags.doctest != "" {
		owner, method := flags.doctest, ""
		if i := strings.LastIndex(flags.doctest, "::"); i >= 0 {
			owner, method = flags.doctest[:i], flags.doctest[i+2:]
		}
		kinds = append(kinds, runnable.NewDocTest(owner, method))
	}
	if flags.bin != "" {
		kinds = append(kinds, runnable.NewBinary(flags.bin))
	}

	if len(kinds) > 1 || (flags.build && len(kinds) > 0) {
		return runnable.RunnableKind{}, fmt.Errorf("at most one of --test, --module-tests, --bin, --bench, --doctest, --build may be set")
	}
	if len(kinds) == 1 {
		return kinds[0], nil
	}
	return runnable.NewBinary(""), nil
}

// hasSelector reports whether any runnable-kind selector flag is set.
func hasSelector(flags *resolveFlagValues) bool {
	return flags.test != "" || flags.moduleTests != "" || flags.bin != "" ||
		flags.bench != "" || flags.doctest != "" || flags.build
}

// loadRunnable reads a Runnable JSON document produced by a source
// analyzer. "-" reads standard input.
func loadRunnable(path string) (runnable.Runnable, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return runnable.Runnable{}, fmt.Errorf("failed to read runnable: %w", err)
	}

	var run runnable.Runnable
	if err := json.Unmarshal(data, &run); err != nil {
		return runnable.Runnable{}, fmt.Errorf("failed to parse runnable: %w", err)
	}
	if run.Kind.Kind == "" {
		return runnable.Runnable{}, fmt.Errorf("runnable is missing a kind")
	}
	return run, nil
}

// inferPackage derives the crate name from the nearest Cargo.toml above
// file. Inference is best effort: resolution works without a package, the
// synthesized command just omits --package.
func inferPackage(file, boundary string) string {
	if file == "" {
		return ""
	}
	manifestPath, ok := manifest.Nearest(file, boundary)
	if !ok {
		return ""
	}
	name, err := manifest.PackageName(manifestPath)
	if err != nil {
		return ""
	}
	return name
}

// shellLine renders the command as one copy-pasteable POSIX shell line
// with environment assignments prefixed.
func shellLine(cmd *command.Command) string {
	var sb strings.Builder
	for _, kv := range cmd.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		quoted, err := syntax.Quote(value, syntax.LangPOSIX)
		if err != nil {
			quoted = value
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(quoted)
		sb.WriteByte(' ')
	}
	sb.WriteString(cmd.ShellString())
	return sb.String()
}

// renderExplain prints the resolution trace: matched layers in merge
// order, the effective selections, the override that applied, and the
// final command.
func renderExplain(w io.Writer, ex *resolver.Explanation) {
	fmt.Fprintln(w, TitleStyle.Render("Resolution"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, VerboseHighlightStyle.Render("  Layers (merge order):"))
	if len(ex.Layers) == 0 {
		fmt.Fprintln(w, "    (none)")
	}
	for i, layer := range ex.Layers {
		fmt.Fprintf(w, "    %d. %s\n", i+1, layer.Scope)
	}
	fmt.Fprintln(w)

	if ex.Merged.BuildSystem != "" {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Build system:"), ex.Merged.BuildSystem)
	}
	if ex.Merged.Channel != "" {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Channel:"), ex.Merged.Channel)
	}
	if ex.FileType != "" {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("File type:"), ex.FileType)
	}
	if ex.Strategy != "" {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Strategy:"), ex.Strategy)
	}
	if ex.Override != nil {
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Override:"), describeOverride(ex.Override))
	}

	if len(ex.Merged.Env) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, VerboseHighlightStyle.Render("  Environment:"))
		for _, k := range ex.Merged.EnvKeys() {
			fmt.Fprintf(w, "    %s=%s\n", k, ex.Merged.Env[k])
		}
	}

	if ex.Command != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Command:"), CmdStyle.Render(shellLine(ex.Command)))
		if ex.Command.Dir != "" {
			fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("WorkDir:"), ex.Command.Dir)
		}
	}

	fmt.Fprintln(w)
}

// describeOverride summarizes the identity fields an override matched on.
func describeOverride(o *config.Override) string {
	var parts []string
	id := o.Identity
	if id.Package != "" {
		parts = append(parts, "package "+id.Package)
	}
	if id.ModulePath != "" {
		parts = append(parts, "module "+id.ModulePath)
	}
	if id.FilePath != "" {
		parts = append(parts, "file "+id.FilePath)
	}
	if id.FunctionName != "" {
		parts = append(parts, "function "+id.FunctionName)
	}
	if id.FileType != "" {
		parts = append(parts, "file type "+string(id.FileType))
	}
	if len(parts) == 0 {
		return "matches everything"
	}
	return strings.Join(parts, ", ")
}
