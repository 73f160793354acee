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

// Package expand substitutes macros in a token sequence.
//
// Expansion walks an explicit stack of frames instead of recursing: the input
// is the bottom frame and every macro replacement is pushed as a new frame
// which is rescanned before scanning continues below it. Each frame carries
// the names of the macros that produced it; such a name found inside the frame
// is not expanded again, which is what stops #define A A+1 from recursing.
package expand

import (
	"errors"

	"github.com/EngFlow/ccpp/cpp/diag"
	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/EngFlow/ccpp/cpp/macro"
	"github.com/EngFlow/ccpp/internal/collections"
)

var (
	ErrUnterminatedInvocation = errors.New("unterminated macro invocation")
	ErrExpansionTooDeep       = errors.New("macro expansion too deep")
	ErrTooManyArguments       = errors.New("too many macro arguments")
	ErrTooFewArguments        = errors.New("too few macro arguments")
	ErrInvalidPaste           = errors.New("pasting does not give a valid token")
)

const DefaultMaxDepth = 1024

// Builtin computes the replacement of a builtin macro, e.g. __LINE__, from the
// token naming it.
type Builtin func(invocation lexer.Token) lexer.Token

type Config struct {
	// File being expanded, used in diagnostics.
	Path string
	// Limit of nested expansions, DefaultMaxDepth if zero.
	MaxDepth int
	// Replacements of macros marked as builtin in the table.
	Builtins map[string]Builtin
	// Leave the operand of 'defined' unexpanded, as required in #if lines.
	PreserveDefined bool
}

// Expander substitutes macros of a table. It reads the table but never
// modifies it.
type Expander struct {
	macros   *macro.Table
	reporter diag.Reporter
	config   Config
}

func New(macros *macro.Table, reporter diag.Reporter, config Config) *Expander {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if reporter == nil {
		reporter = diag.Discard
	}
	return &Expander{macros: macros, reporter: reporter, config: config}
}

// Expand substitutes all macros found in the stream, starting at its cursor.
// In one-shot mode only the first identifier is resolved and the tokens
// following it (and its arguments) are copied unchanged.
//
// Malformed invocations are reported and copied unchanged. The only returned
// error is ErrExpansionTooDeep.
func (e *Expander) Expand(input *lexer.TokenStream, oneShot bool) (*lexer.TokenStream, error) {
	tokens, err := e.ExpandTokens(input.Tokens()[input.Pos():], oneShot)
	if err != nil {
		return nil, err
	}
	input.Seek(input.Len())
	return lexer.NewTokenStream(tokens), nil
}

// ExpandTokens is Expand working on a slice.
func (e *Expander) ExpandTokens(tokens []lexer.Token, oneShot bool) ([]lexer.Token, error) {
	return e.expand(tokens, oneShot, 0, collections.Set[string]{})
}

func (e *Expander) report(at lexer.Token, err error) {
	e.reporter.Report(diag.Diagnostic{Severity: diag.Error, Path: e.config.Path, Location: at.Location, Err: err})
}

type frame struct {
	tokens []lexer.Token
	pos    int
	// Macro the frame was produced by, empty for the input.
	name string
	// Names that must not be expanded within the frame.
	excluded collections.Set[string]
}

// expansion is the state of one Expand call.
type expansion struct {
	*Expander
	// frames[0] is the input, it's never popped.
	frames []*frame
	// Nesting level of argument pre-expansion.
	depth  int
	output []lexer.Token
}

func (e *Expander) expand(tokens []lexer.Token, oneShot bool, depth int, excluded collections.Set[string]) ([]lexer.Token, error) {
	if depth > e.config.MaxDepth {
		return nil, ErrExpansionTooDeep
	}
	x := &expansion{
		Expander: e,
		frames:   []*frame{{tokens: tokens, excluded: excluded}},
		depth:    depth,
		output:   make([]lexer.Token, 0, len(tokens)),
	}

	resolved := false
	for {
		x.popExhausted()
		if oneShot && resolved && len(x.frames) == 1 {
			input := x.frames[0]
			x.output = append(x.output, input.tokens[input.pos:]...)
			return x.result(), nil
		}

		token, from, ok := x.next()
		if !ok {
			return x.result(), nil
		}
		if !token.Type.IsIdentifierLike() {
			x.output = append(x.output, token)
			continue
		}
		if from == x.frames[0] {
			resolved = true
		}
		if err := x.resolve(token, from); err != nil {
			return nil, err
		}
	}
}

// result returns the output. NoExpand marks only matter while arguments are
// substituted, they are cleared once the outermost expansion completes.
func (x *expansion) result() []lexer.Token {
	if x.depth == 0 {
		for i := range x.output {
			x.output[i].NoExpand = false
		}
	}
	return x.output
}

// resolve handles a single identifier read from the given frame.
func (x *expansion) resolve(token lexer.Token, from *frame) error {
	if x.config.PreserveDefined && token.Content == "defined" {
		x.output = append(x.output, token)
		x.copyDefinedOperand()
		return nil
	}

	m, ok := x.macros.Lookup(token.Content)
	if !ok || token.NoExpand {
		x.output = append(x.output, token)
		return nil
	}
	if from.excluded.Contains(token.Content) {
		// arguments are rescanned in frames that no longer exclude the name
		token.NoExpand = true
		x.output = append(x.output, token)
		return nil
	}

	switch {
	case m.Builtin:
		if builtin, ok := x.config.Builtins[m.Name]; ok {
			x.output = append(x.output, builtin(token))
		} else {
			x.output = append(x.output, token)
		}
		return nil

	case !m.IsFunction:
		body, err := x.substitute(m, nil, token, from.excluded)
		if err != nil {
			return err
		}
		return x.push(m, body, from)

	default:
		saved := x.snapshot()
		// a function-like macro name without an argument list is not an invocation
		if !x.consumeParenthesis() {
			x.output = append(x.output, token)
			return nil
		}
		args, ok := x.collectArguments(m)
		if !ok {
			x.report(token, ErrUnterminatedInvocation)
			x.restore(saved)
			x.output = append(x.output, token)
			return nil
		}
		args = x.checkArguments(m, token, args)
		body, err := x.substitute(m, args, token, from.excluded)
		if err != nil {
			return err
		}
		return x.push(m, body, from)
	}
}

func (x *expansion) push(m *macro.Macro, tokens []lexer.Token, from *frame) error {
	if x.depth+len(x.frames) > x.config.MaxDepth {
		return ErrExpansionTooDeep
	}
	x.frames = append(x.frames, &frame{tokens: tokens, name: m.Name, excluded: from.excluded.With(m.Name)})
	return nil
}

func (x *expansion) popExhausted() {
	for len(x.frames) > 1 {
		top := x.frames[len(x.frames)-1]
		if top.pos < len(top.tokens) {
			return
		}
		x.frames = x.frames[:len(x.frames)-1]
	}
}

// next returns the next unread token together with the frame it belongs to.
func (x *expansion) next() (lexer.Token, *frame, bool) {
	x.popExhausted()
	top := x.frames[len(x.frames)-1]
	if top.pos >= len(top.tokens) {
		return lexer.Token{}, nil, false
	}
	token := top.tokens[top.pos]
	top.pos++
	return token, top, true
}

// consumeParenthesis looks past whitespace, across frame boundaries, for an
// opening parenthesis. Only if one is found is anything consumed.
func (x *expansion) consumeParenthesis() bool {
	for level := len(x.frames) - 1; level >= 0; level-- {
		f := x.frames[level]
		for pos := f.pos; pos < len(f.tokens); pos++ {
			token := f.tokens[pos]
			if token.Type.IsSpace() {
				continue
			}
			if token.Type != lexer.TokenType_ParenthesisLeft {
				return false
			}
			x.frames = x.frames[:level+1]
			f.pos = pos + 1
			return true
		}
	}
	return false
}

// copyDefinedOperand copies the operand following 'defined', either NAME or
// (NAME), without expanding it.
func (x *expansion) copyDefinedOperand() {
	saved := x.snapshot()
	token, ok := x.nextSignificant()
	switch {
	case ok && token.Type.IsIdentifierLike():
		x.output = append(x.output, token)
		return
	case ok && token.Type == lexer.TokenType_ParenthesisLeft:
		name, nameOk := x.nextSignificant()
		closing, closingOk := x.nextSignificant()
		if nameOk && closingOk && name.Type.IsIdentifierLike() && closing.Type == lexer.TokenType_ParenthesisRight {
			x.output = append(x.output, token, name, closing)
			return
		}
	}
	// malformed, leave it to the evaluator
	x.restore(saved)
}

func (x *expansion) nextSignificant() (lexer.Token, bool) {
	for {
		token, _, ok := x.next()
		if !ok || !token.Type.IsSpace() {
			return token, ok
		}
	}
}

type snapshot struct {
	frames    []*frame
	positions []int
}

func (x *expansion) snapshot() snapshot {
	s := snapshot{frames: append([]*frame(nil), x.frames...), positions: make([]int, len(x.frames))}
	for i, f := range x.frames {
		s.positions[i] = f.pos
	}
	return s
}

func (x *expansion) restore(s snapshot) {
	x.frames = s.frames
	for i, f := range x.frames {
		f.pos = s.positions[i]
	}
}

// relocate returns a copy of the tokens reported at the given location.
func relocate(tokens []lexer.Token, location lexer.Cursor) []lexer.Token {
	result := make([]lexer.Token, len(tokens))
	for i, token := range tokens {
		token.Location = location
		result[i] = token
	}
	return result
}
