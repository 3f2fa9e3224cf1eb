// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ConfigParseErrorId
	NoBuildSystemId
	StrategyNotFoundId
	BuildFileNotFoundId
	TargetNotFoundId
	ManifestNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // links into the runwk docs
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not read a runwk configuration file for this project.

## Search locations (walking up from the current directory):
1. .runwk.json
2. runwk.json
3. .runwk.cue

The walk stops at RUNWK_PROJECT_ROOT (when set) or your home directory.

## Things you can try:
- Create a starter configuration:
~~~
$ runwk config init
~~~

- Inspect what would be loaded:
~~~
$ runwk config show
~~~

- Check directory permissions along the search path`,
	}

	configParseErrorIssue = &Issue{
		id: ConfigParseErrorId,
		mdMsg: `
# Failed to parse configuration!

A runwk configuration file was found but could not be parsed.

## Common issues:
- Invalid JSON (trailing commas, missing quotes)
- Invalid CUE syntax in .runwk.cue
- Unknown scope kinds (valid: workspace, crate, module, file, function)
- Strategy maps keyed by something other than Test, Binary, Benchmark,
  DocTest or Build

## Things you can try:
- Check the error message above for the offending file
- Regenerate a known-good starting point:
~~~
$ runwk config init --force
~~~

## Example layer:
~~~json
{
  "layers": [
    {
      "scope": {"kind": "workspace"},
      "build_system": "cargo",
      "extra_args": {"all": ["--quiet"]}
    }
  ]
}
~~~`,
	}

	noBuildSystemIssue = &Issue{
		id: NoBuildSystemId,
		mdMsg: `
# No build system specified!

Resolution merged every matching configuration layer and none of them
named a build system.

## Things you can try:
- Declare one in a workspace-scope layer:
~~~json
{
  "layers": [
    {"scope": {"kind": "workspace"}, "build_system": "cargo"}
  ]
}
~~~

- Valid build systems: cargo, bazel, rustc
- Check which layers matched:
~~~
$ runwk resolve --explain <file>
~~~`,
	}

	strategyNotFoundIssue = &Issue{
		id: StrategyNotFoundId,
		mdMsg: `
# No strategy for this runnable!

The merged configuration does not map the runnable's framework kind to
a command strategy, or names a strategy that is not registered.

## Things you can try:
- List the registered strategies:
~~~
$ runwk strategies
~~~

- Map each framework kind you use:
~~~json
{
  "scope": {"kind": "workspace"},
  "build_system": "cargo",
  "strategies": {"Test": "cargo-nextest", "Binary": "cargo-run"}
}
~~~

- Check the strategy name for typos (names are exact, e.g. cargo-test)`,
	}

	buildFileNotFoundIssue = &Issue{
		id: BuildFileNotFoundId,
		mdMsg: `
# No BUILD file found!

The bazel strategies walk up from the source file looking for
BUILD.bazel or BUILD, stopping at the workspace root, and found
neither.

## Things you can try:
- Add a BUILD.bazel next to (or above) the source file:
~~~python
rust_test(
    name = "unit_tests",
    srcs = glob(["src/**/*.rs"]),
)
~~~

- Check that MODULE.bazel or WORKSPACE marks your workspace root
- Switch the layer's build system to cargo if this tree is not a bazel
  workspace`,
	}

	targetNotFoundIssue = &Issue{
		id: TargetNotFoundId,
		mdMsg: `
# No matching bazel target!

A BUILD file was found but none of its rust targets list the source
file in their srcs.

## Things you can try:
- Check the target's srcs globs cover the file (globs use bazel
  semantics: * stays in one directory, ** crosses directories)
- For integration tests, keep the file under a tests/ directory and
  declare a rust_test_suite
- Inspect the targets runwk can see:
~~~
$ runwk resolve --explain <file>
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No Cargo.toml found!

The working directory for cargo commands comes from the nearest
enclosing Cargo.toml, and the walk up from the source file found none.

## Things you can try:
- Run inside a cargo project, or create one:
~~~
$ cargo init
~~~

- Single files can still run without a project through the rustc or
  cargo script strategies:
~~~json
{"scope": {"kind": "workspace"}, "build_system": "rustc"}
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		configParseErrorIssue.Id():  configParseErrorIssue,
		noBuildSystemIssue.Id():     noBuildSystemIssue,
		strategyNotFoundIssue.Id():  strategyNotFoundIssue,
		buildFileNotFoundIssue.Id(): buildFileNotFoundIssue,
		targetNotFoundIssue.Id():    targetNotFoundIssue,
		manifestNotFoundIssue.Id():  manifestNotFoundIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
