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

// Package cpp preprocesses C and C++ source files: it follows #include
// directives, evaluates conditional compilation and substitutes macros,
// producing a single flat token stream.
//
// A Preprocessor owns all the state of a run (macro table, include guards,
// diagnostics). Independent runs need independent Preprocessor values and may
// then proceed concurrently.
package cpp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/EngFlow/ccpp/cpp/diag"
	"github.com/EngFlow/ccpp/cpp/expand"
	"github.com/EngFlow/ccpp/cpp/include"
	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/EngFlow/ccpp/cpp/macro"
	"github.com/EngFlow/ccpp/cpp/platform"
	"github.com/EngFlow/ccpp/internal/collections"
)

var (
	ErrIncludeDepthExceeded = errors.New("#include nested too deeply")
	ErrRecursiveInclude     = errors.New("file includes itself")
	ErrMalformedInclude     = errors.New("#include expects \"FILENAME\" or <FILENAME>")
	ErrMacroNameMissing     = errors.New("macro name missing")
	ErrUnknownDirective     = errors.New("unknown preprocessing directive")
	ErrErrorDirective       = errors.New("#error")
	ErrWarningDirective     = errors.New("#warning")
)

const (
	DefaultMaxIncludeDepth   = 200
	DefaultMaxExpansionDepth = expand.DefaultMaxDepth
)

type Options struct {
	// Consulted for #include. If nil, the include paths below are searched on
	// disk.
	Resolver          include.Resolver
	IncludePaths      []string
	QuoteIncludePaths []string
	FrameworkPaths    []string
	// Command line definitions: NAME, NAME=VALUE or NAME(PARAMS)=BODY.
	Defines []string
	// Names undefined after Defines and the platform macros are installed.
	Undefines []string
	// Target whose predefined macros are installed. The zero value installs none.
	Platform platform.Platform

	// Levels of nested #include; the main file including a header is level 1.
	MaxIncludeDepth   int
	MaxExpansionDepth int
	// Line number of the first line of the main file.
	StartLine int
	// Echo diagnostics to the standard logger.
	Debug bool
}

func (o *Options) setDefaults() {
	if o.MaxIncludeDepth <= 0 {
		o.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	if o.MaxExpansionDepth <= 0 {
		o.MaxExpansionDepth = DefaultMaxExpansionDepth
	}
	if o.StartLine <= 0 {
		o.StartLine = lexer.CursorInit.Line
	}
}

type Preprocessor struct {
	options     Options
	resolver    include.Resolver
	diagnostics *diag.Collector

	// State of the current run.
	main   string
	macros *macro.Table
	// Files fully processed, never included again.
	done collections.Set[string]
	// Files currently being processed, outermost first.
	active  []string
	counter int
	output  []lexer.Token
}

// New validates the options and creates a Preprocessor. Malformed -D
// definitions and invalid include directory patterns are reported here.
func New(options Options) (*Preprocessor, error) {
	options.setDefaults()
	p := &Preprocessor{options: options, resolver: options.Resolver}
	if p.resolver == nil {
		fs, err := include.NewFileSystem(options.QuoteIncludePaths, options.IncludePaths, options.FrameworkPaths)
		if err != nil {
			return nil, err
		}
		p.resolver = fs
	}
	if _, err := macro.ParseDefines(options.Defines); err != nil {
		return nil, err
	}
	for _, name := range options.Undefines {
		if !macro.IsIdentifier(name) {
			return nil, fmt.Errorf("%w %q", macro.ErrInvalidName, name)
		}
	}
	p.reset()
	return p, nil
}

// reset prepares the state for a new run.
func (p *Preprocessor) reset() {
	p.diagnostics = &diag.Collector{Debug: p.options.Debug}
	p.macros = macro.NewTable()
	for _, name := range builtinNames {
		p.macros.Define(&macro.Macro{Name: name, Builtin: true, Location: lexer.CursorEOF})
	}
	if p.options.Platform != (platform.Platform{}) {
		p.options.Platform.Define(p.macros)
	}
	// validated by New
	macros, _ := macro.ParseDefines(p.options.Defines)
	for _, m := range macros {
		p.macros.Define(m)
	}
	for _, name := range p.options.Undefines {
		p.macros.Undef(name)
	}
	p.done = collections.Set[string]{}
	p.active = nil
	p.counter = 0
	p.output = nil
}

// Preprocess reads the main file through the resolver and preprocesses it.
//
// Malformed constructs are reported as diagnostics and skipped. The returned
// error is reserved for conditions that abort the whole run: an unreadable main
// file, or include and macro nesting beyond the configured limits.
func (p *Preprocessor) Preprocess(path string) (*lexer.TokenStream, error) {
	data, err := p.resolver.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.PreprocessSource(path, data)
}

// PreprocessSource preprocesses source code of the main file. The path
// is used to resolve quoted includes and in diagnostics, it need not exist.
func (p *Preprocessor) PreprocessSource(path string, source []byte) (*lexer.TokenStream, error) {
	p.reset()
	p.main = path
	if err := p.processFile(path, source, p.options.StartLine); err != nil {
		return nil, err
	}
	return lexer.NewTokenStream(lexer.MergeStringLiterals(p.output)), nil
}

// Macros returns a copy of the macro table as left by the last run.
func (p *Preprocessor) Macros() *macro.Table {
	return p.macros.Clone()
}

// Headers returns the files included by the last run, sorted. Only headers
// that were processed to the end are listed.
func (p *Preprocessor) Headers() []string {
	return p.done.Diff(collections.SetOf(p.main)).SortedValues(strings.Compare)
}

// Close releases the resources of the resolver, such as memory-mapped
// headers, see include.Close. This includes a resolver passed in Options.
// Tokens and macros of finished runs stay valid.
func (p *Preprocessor) Close() error {
	return include.Close(p.resolver)
}

// Diagnostics returns the problems found during the last run.
func (p *Preprocessor) Diagnostics() []diag.Diagnostic {
	return p.diagnostics.All()
}

// Err combines the errors (not warnings) found during the last run, nil if
// there were none.
func (p *Preprocessor) Err() error {
	return p.diagnostics.Err()
}

func (p *Preprocessor) report(severity diag.Severity, path string, location lexer.Cursor, err error) {
	p.diagnostics.Report(diag.Diagnostic{Severity: severity, Path: path, Location: location, Err: err})
}

func (p *Preprocessor) emit(tokens ...lexer.Token) {
	p.output = append(p.output, tokens...)
}
