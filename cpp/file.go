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

package cpp

import (
	"slices"
	"strconv"

	"github.com/EngFlow/ccpp/cpp/cond"
	"github.com/EngFlow/ccpp/cpp/diag"
	"github.com/EngFlow/ccpp/cpp/expand"
	"github.com/EngFlow/ccpp/cpp/lexer"
)

// file is the state of processing a single source file.
type file struct {
	*Preprocessor
	path   string
	stream *lexer.TokenStream
	conds  cond.Stack
	// Expands text lines.
	text *expand.Expander
	// Expands #if conditions, where the operand of defined stays intact.
	condition *expand.Expander
}

func (p *Preprocessor) processFile(path string, source []byte, firstLine int) error {
	p.active = append(p.active, path)
	defer func() { p.active = p.active[:len(p.active)-1] }()

	f := &file{Preprocessor: p, path: path, stream: lexer.Tokenize(source, firstLine)}
	config := expand.Config{Path: path, MaxDepth: p.options.MaxExpansionDepth, Builtins: f.builtins()}
	f.text = expand.New(p.macros, p.diagnostics, config)
	config.PreserveDefined = true
	f.condition = expand.New(p.macros, p.diagnostics, config)
	return f.run()
}

func (f *file) run() error {
	for !f.stream.AtEOF() {
		if directive := f.stream.Peek(); directive.Type.IsPreprocessorDirective() {
			f.stream.Next()
			if err := f.directive(directive, f.readLine()); err != nil {
				return err
			}
			continue
		}
		text := f.readText()
		if !f.conds.IsActive() {
			continue
		}
		expanded, err := f.text.ExpandTokens(text, false)
		if err != nil {
			return err
		}
		f.emit(expanded...)
	}
	for _, frame := range f.conds.Unclosed() {
		f.report(diag.Error, f.path, frame.Location, cond.ErrUnterminatedCondition)
	}
	return nil
}

// readLine consumes the rest of a directive line, returning it without the
// terminating newline.
func (f *file) readLine() []lexer.Token {
	start := f.stream.Pos()
	for token := f.stream.Peek(); token.Type != lexer.TokenType_EOF && token.Type != lexer.TokenType_Newline; token = f.stream.Peek() {
		f.stream.Next()
	}
	line := f.stream.Tokens()[start:f.stream.Pos()]
	if f.stream.Peek().Type == lexer.TokenType_Newline {
		f.stream.Next()
	}
	return line
}

// readText consumes the lines up to the next directive. They are expanded
// together so that a macro invocation may span several lines.
func (f *file) readText() []lexer.Token {
	start := f.stream.Pos()
	for token := f.stream.Peek(); token.Type != lexer.TokenType_EOF && !token.Type.IsPreprocessorDirective(); token = f.stream.Peek() {
		f.stream.Next()
	}
	return f.stream.Tokens()[start:f.stream.Pos()]
}

var builtinNames = []string{"__FILE__", "__LINE__", "__COUNTER__", "__has_include", "__has_include_next"}

// builtins computes the dynamic macros. __has_include is replaced before
// expansion, it is only in the table so that #ifdef __has_include holds.
func (f *file) builtins() map[string]expand.Builtin {
	return map[string]expand.Builtin{
		"__FILE__": func(at lexer.Token) lexer.Token {
			return lexer.Token{Type: lexer.TokenType_LiteralString, Location: at.Location, Content: strconv.Quote(f.path)}
		},
		"__LINE__": func(at lexer.Token) lexer.Token {
			return lexer.Token{Type: lexer.TokenType_LiteralInteger, Location: at.Location, Content: strconv.Itoa(at.Location.Line)}
		},
		"__COUNTER__": func(at lexer.Token) lexer.Token {
			value := f.counter
			f.counter++
			return lexer.Token{Type: lexer.TokenType_LiteralInteger, Location: at.Location, Content: strconv.Itoa(value)}
		},
	}
}

// ordinary converts a directive line to ordinary tokens for expansion.
func ordinary(line []lexer.Token) []lexer.Token {
	result := slices.Clone(line)
	for i, token := range result {
		result[i] = token.Ordinary().Operator()
	}
	return result
}
