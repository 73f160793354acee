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

// Package config assembles preprocessor options from environment variables,
// Bazel BUILD files and command line flags.
package config

import (
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/EngFlow/ccpp/cpp"
	"github.com/EngFlow/ccpp/cpp/include"
	"github.com/EngFlow/ccpp/cpp/platform"
)

// Environment variables read by FromEnv. Path lists use the OS path list
// separator, define lists are comma separated.
const (
	EnvIncludePath      = "CCPP_INCLUDE_PATH"
	EnvQuoteIncludePath = "CCPP_QUOTE_INCLUDE_PATH"
	EnvFrameworkPath    = "CCPP_FRAMEWORK_PATH"
	EnvDefines          = "CCPP_DEFINES"
	EnvUndefines        = "CCPP_UNDEFINES"
	EnvPlatform         = "CCPP_PLATFORM"
	EnvMaxIncludeDepth  = "CCPP_MAX_INCLUDE_DEPTH"
	EnvDebug            = "CCPP_DEBUG"
)

type Config struct {
	IncludePaths      []string
	QuoteIncludePaths []string
	FrameworkPaths    []string
	Defines           []string
	Undefines         []string
	// "os/arch", see platform.Parse.
	Platform        string
	MaxIncludeDepth int
	Debug           bool
	// Headers of cc_library targets using include_prefix or
	// strip_include_prefix. Target is left nil.
	VirtualIncludes []include.VirtualInclude
}

func FromEnv() Config {
	return Config{
		IncludePaths:      splitPaths(env.Str(EnvIncludePath)),
		QuoteIncludePaths: splitPaths(env.Str(EnvQuoteIncludePath)),
		FrameworkPaths:    splitPaths(env.Str(EnvFrameworkPath)),
		Defines:           splitList(env.Str(EnvDefines)),
		Undefines:         splitList(env.Str(EnvUndefines)),
		Platform:          env.Str(EnvPlatform),
		MaxIncludeDepth:   env.Int(EnvMaxIncludeDepth, 0),
		Debug:             env.Bool(EnvDebug),
	}
}

func splitPaths(value string) []string {
	var paths []string
	for _, path := range filepath.SplitList(value) {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Merge returns c extended by other: lists are appended, scalars set in other
// take precedence.
func (c Config) Merge(other Config) Config {
	merged := Config{
		IncludePaths:      concat(c.IncludePaths, other.IncludePaths),
		QuoteIncludePaths: concat(c.QuoteIncludePaths, other.QuoteIncludePaths),
		FrameworkPaths:    concat(c.FrameworkPaths, other.FrameworkPaths),
		Defines:           concat(c.Defines, other.Defines),
		Undefines:         concat(c.Undefines, other.Undefines),
		Platform:          c.Platform,
		MaxIncludeDepth:   c.MaxIncludeDepth,
		Debug:             c.Debug || other.Debug,
		VirtualIncludes:   concat(c.VirtualIncludes, other.VirtualIncludes),
	}
	if other.Platform != "" {
		merged.Platform = other.Platform
	}
	if other.MaxIncludeDepth != 0 {
		merged.MaxIncludeDepth = other.MaxIncludeDepth
	}
	return merged
}

func concat[T any](a, b []T) []T {
	if len(a)+len(b) == 0 {
		return nil
	}
	return append(append(make([]T, 0, len(a)+len(b)), a...), b...)
}

// Options converts the configuration into preprocessor options. Virtual
// includes are served from the repository at root and searched before the
// include paths; the remaining paths are searched on disk.
func (c Config) Options(root string) (cpp.Options, error) {
	options := cpp.Options{
		IncludePaths:      c.IncludePaths,
		QuoteIncludePaths: c.QuoteIncludePaths,
		FrameworkPaths:    c.FrameworkPaths,
		Defines:           c.Defines,
		Undefines:         c.Undefines,
		MaxIncludeDepth:   c.MaxIncludeDepth,
		Debug:             c.Debug,
	}
	if c.Platform != "" {
		p, err := platform.Parse(c.Platform)
		if err != nil {
			return options, err
		}
		options.Platform = p
	}
	if len(c.VirtualIncludes) > 0 {
		fs, err := include.NewFileSystem(c.QuoteIncludePaths, c.IncludePaths, c.FrameworkPaths)
		if err != nil {
			return options, err
		}
		repo, err := include.NewFileSystem(nil, []string{root}, nil)
		if err != nil {
			return options, err
		}
		var chain include.Chain
		for _, v := range c.VirtualIncludes {
			v.Target = repo
			chain = append(chain, &v)
		}
		options.Resolver = append(chain, fs)
	}
	return options, nil
}
