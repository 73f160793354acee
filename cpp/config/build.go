// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bazelbuild/bazel-gazelle/rule"
	bzl "github.com/bazelbuild/buildtools/build"

	"github.com/EngFlow/ccpp/cpp/include"
)

var ErrRuleNotFound = errors.New("rule not found")

// LoadBuildFile extracts the preprocessor configuration of a cc_* rule from a
// Bazel BUILD file. pkg is the slash-separated, repo-root-relative directory of
// the BUILD file. If ruleName is empty the first cc_* rule is used.
//
// Include directories are returned relative to the repository root.
func LoadBuildFile(buildFile, pkg, ruleName string) (Config, error) {
	data, err := os.ReadFile(buildFile)
	if err != nil {
		return Config{}, err
	}
	f, err := rule.LoadData(buildFile, pkg, data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", buildFile, err)
	}
	r := findRule(f, ruleName)
	if r == nil {
		return Config{}, fmt.Errorf("%w: no cc_* rule named %q in %s", ErrRuleNotFound, ruleName, buildFile)
	}
	return ruleConfig(r, pkg), nil
}

func findRule(f *rule.File, name string) *rule.Rule {
	for _, r := range f.Rules {
		if !strings.HasPrefix(r.Kind(), "cc_") {
			continue
		}
		if name == "" || r.Name() == name {
			return r
		}
	}
	return nil
}

func ruleConfig(r *rule.Rule, pkg string) Config {
	var c Config
	c.Defines = append(stringList(r.Attr("defines")), stringList(r.Attr("local_defines"))...)
	for _, dir := range stringList(r.Attr("includes")) {
		c.IncludePaths = append(c.IncludePaths, path.Join(pkg, dir))
	}
	c.parseCopts(stringList(r.Attr("copts")))

	stripIncludePrefix := r.AttrString("strip_include_prefix")
	includePrefix := r.AttrString("include_prefix")
	if stripIncludePrefix != "" || includePrefix != "" {
		if stripIncludePrefix != "" {
			stripIncludePrefix = path.Clean(stripIncludePrefix)
		}
		if includePrefix != "" {
			includePrefix = path.Clean(includePrefix)
		}
		c.VirtualIncludes = append(c.VirtualIncludes, include.VirtualInclude{
			Package:            pkg,
			StripIncludePrefix: stripIncludePrefix,
			IncludePrefix:      includePrefix,
		})
	}
	return c
}

// parseCopts picks the preprocessor flags out of compiler options. Both the
// joined (-DFOO) and the separate (-D FOO) spelling are accepted.
func (c *Config) parseCopts(copts []string) {
	flags := []struct {
		name   string
		target *[]string
	}{
		{"-iquote", &c.QuoteIncludePaths},
		{"-isystem", &c.IncludePaths},
		{"-D", &c.Defines},
		{"-U", &c.Undefines},
		{"-I", &c.IncludePaths},
		{"-F", &c.FrameworkPaths},
	}
	for i := 0; i < len(copts); i++ {
		opt := copts[i]
		for _, flag := range flags {
			if !strings.HasPrefix(opt, flag.name) {
				continue
			}
			value := opt[len(flag.name):]
			if value == "" && i+1 < len(copts) {
				i++
				value = copts[i]
			}
			if value != "" {
				*flag.target = append(*flag.target, value)
			}
			break
		}
	}
}

// stringList evaluates a list attribute. Besides plain lists of strings it
// accepts concatenations (a + b) and select() expressions, of which only the
// default condition is taken.
func stringList(expr bzl.Expr) []string {
	switch expr := expr.(type) {
	case *bzl.ListExpr:
		var values []string
		for _, item := range expr.List {
			if s, ok := item.(*bzl.StringExpr); ok {
				values = append(values, s.Value)
			}
		}
		return values
	case *bzl.BinaryExpr:
		if expr.Op != "+" {
			return nil
		}
		return append(stringList(expr.X), stringList(expr.Y)...)
	case *bzl.CallExpr:
		if ident, ok := expr.X.(*bzl.Ident); !ok || ident.Name != "select" || len(expr.List) == 0 {
			return nil
		}
		dict, ok := expr.List[0].(*bzl.DictExpr)
		if !ok {
			return nil
		}
		for _, kv := range dict.List {
			if key, ok := kv.Key.(*bzl.StringExpr); ok && key.Value == "//conditions:default" {
				return stringList(kv.Value)
			}
		}
	}
	return nil
}
