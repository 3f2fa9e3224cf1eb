// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"fmt"

	"go.starlark.net/syntax"
)

// rule is one known rule call extracted from a BUILD file.
type rule struct {
	typ      string
	name     string
	srcs     []string
	excludes []string
	crateRef string
}

// parseBuildFile extracts the known rule declarations from BUILD file
// source. The file is parsed as a Starlark syntax tree only; nothing is
// evaluated, so macros and load statements are skipped rather than
// expanded.
func parseBuildFile(path string, src []byte) ([]rule, error) {
	opts := &syntax.FileOptions{}
	file, err := opts.Parse(path, src, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse BUILD file: %w", err)
	}

	var rules []rule
	syntax.Walk(file, func(n syntax.Node) bool {
		if n == nil {
			return false
		}
		call, ok := n.(*syntax.CallExpr)
		if !ok {
			return true
		}
		if r, ok := extractRule(call); ok {
			rules = append(rules, r)
		}
		return true
	})

	return rules, nil
}

// extractRule converts a call expression into a rule when it invokes a
// known rule with a name attribute.
func extractRule(call *syntax.CallExpr) (rule, bool) {
	fn, ok := call.Fn.(*syntax.Ident)
	if !ok {
		return rule{}, false
	}
	if _, known := knownRules[fn.Name]; !known {
		return rule{}, false
	}

	r := rule{typ: fn.Name}
	for _, arg := range call.Args {
		key, value, ok := keywordArg(arg)
		if !ok {
			continue
		}
		switch key {
		case "name":
			r.name, _ = stringValue(value)
		case "srcs":
			r.srcs, r.excludes = collectSources(value)
		case "crate":
			r.crateRef, _ = stringValue(value)
		}
	}

	if r.name == "" {
		return rule{}, false
	}
	return r, true
}

// keywordArg unpacks a `key = value` call argument.
func keywordArg(arg syntax.Expr) (string, syntax.Expr, bool) {
	bin, ok := arg.(*syntax.BinaryExpr)
	if !ok || bin.Op != syntax.EQ {
		return "", nil, false
	}
	ident, ok := bin.X.(*syntax.Ident)
	if !ok {
		return "", nil, false
	}
	return ident.Name, bin.Y, true
}

// collectSources gathers source patterns from a srcs value: a string
// list, a glob([...], exclude = [...]) call, or a `+` concatenation of
// those.
func collectSources(expr syntax.Expr) (includes, excludes []string) {
	switch e := expr.(type) {
	case *syntax.ListExpr:
		includes = append(includes, stringList(e)...)
	case *syntax.CallExpr:
		if fn, ok := e.Fn.(*syntax.Ident); ok && fn.Name == "glob" {
			inc, exc := globArgs(e)
			includes = append(includes, inc...)
			excludes = append(excludes, exc...)
		}
	case *syntax.BinaryExpr:
		if e.Op == syntax.PLUS {
			inc, exc := collectSources(e.X)
			includes = append(includes, inc...)
			excludes = append(excludes, exc...)
			inc, exc = collectSources(e.Y)
			includes = append(includes, inc...)
			excludes = append(excludes, exc...)
		}
	}
	return includes, excludes
}

// globArgs reads glob(include, exclude = [...]) arguments. The include
// list is usually positional but the keyword form works too.
func globArgs(call *syntax.CallExpr) (includes, excludes []string) {
	for _, arg := range call.Args {
		if key, value, ok := keywordArg(arg); ok {
			list, isList := value.(*syntax.ListExpr)
			if !isList {
				continue
			}
			switch key {
			case "include":
				includes = append(includes, stringList(list)...)
			case "exclude":
				excludes = append(excludes, stringList(list)...)
			}
			continue
		}
		if list, ok := arg.(*syntax.ListExpr); ok {
			includes = append(includes, stringList(list)...)
		}
	}
	return includes, excludes
}

func stringList(list *syntax.ListExpr) []string {
	var out []string
	for _, item := range list.List {
		if s, ok := stringValue(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringValue(expr syntax.Expr) (string, bool) {
	lit, ok := expr.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return "", false
	}
	s, ok := lit.Value.(string)
	return s, ok
}
