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
	"fmt"
	"slices"
	"strings"

	"github.com/EngFlow/ccpp/cpp/diag"
	"github.com/EngFlow/ccpp/cpp/expr"
	"github.com/EngFlow/ccpp/cpp/include"
	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/EngFlow/ccpp/cpp/macro"
)

// directive handles a single directive line. Conditional directives are
// tracked in inactive regions too, everything else only in active ones.
func (f *file) directive(directive lexer.Token, line []lexer.Token) error {
	switch directive.Type {
	case lexer.TokenType_PreprocessorIf:
		return f.pushIf(directive, func() (bool, error) { return f.evaluate(directive, line) })
	case lexer.TokenType_PreprocessorIfdef:
		return f.pushIf(directive, func() (bool, error) { return f.isDefined(directive, line), nil })
	case lexer.TokenType_PreprocessorIfndef:
		return f.pushIf(directive, func() (bool, error) { return !f.isDefined(directive, line), nil })
	case lexer.TokenType_PreprocessorElif:
		return f.pushElif(directive, func() (bool, error) { return f.evaluate(directive, line) })
	case lexer.TokenType_PreprocessorElifdef:
		return f.pushElif(directive, func() (bool, error) { return f.isDefined(directive, line), nil })
	case lexer.TokenType_PreprocessorElifndef:
		return f.pushElif(directive, func() (bool, error) { return !f.isDefined(directive, line), nil })
	case lexer.TokenType_PreprocessorElse:
		if err := f.conds.PushElse(); err != nil {
			f.report(diag.Error, f.path, directive.Location, err)
		}
		return nil
	case lexer.TokenType_PreprocessorEndif:
		if err := f.conds.PopEndif(); err != nil {
			f.report(diag.Error, f.path, directive.Location, err)
		}
		return nil
	}

	if !f.conds.IsActive() {
		return nil
	}
	switch directive.Type {
	case lexer.TokenType_PreprocessorDefine:
		m, err := macro.ParseDefinition(line)
		if err != nil {
			f.report(diag.Error, f.path, directive.Location, err)
		}
		if m != nil {
			f.macros.Define(m)
		}
	case lexer.TokenType_PreprocessorUndef:
		if name, ok := f.macroName(directive, line); ok {
			f.macros.Undef(name)
		}
	case lexer.TokenType_PreprocessorInclude:
		return f.include(directive, line, false)
	case lexer.TokenType_PreprocessorIncludeNext:
		return f.include(directive, line, true)
	case lexer.TokenType_PreprocessorPragma:
		if words := lexer.Contents(lexer.Significant(line)); len(words) > 0 && words[0] == "once" {
			f.done.Add(f.path)
		}
	case lexer.TokenType_PreprocessorError:
		f.report(diag.Error, f.path, directive.Location, fmt.Errorf("%w: %s", ErrErrorDirective, lexer.Join(lexer.TrimSpace(line))))
	case lexer.TokenType_PreprocessorWarning:
		f.report(diag.Warning, f.path, directive.Location, fmt.Errorf("%w: %s", ErrWarningDirective, lexer.Join(lexer.TrimSpace(line))))
	case lexer.TokenType_PreprocessorLine, lexer.TokenType_PreprocessorNull:
		// line control is not tracked
	case lexer.TokenType_PreprocessorUnknown:
		f.report(diag.Warning, f.path, directive.Location, fmt.Errorf("%w %s", ErrUnknownDirective, strings.TrimSpace(directive.Content)))
	}
	return nil
}

func (f *file) pushIf(directive lexer.Token, condition func() (bool, error)) error {
	value := false
	if f.conds.IsActive() {
		var err error
		if value, err = condition(); err != nil {
			return err
		}
	}
	f.conds.PushIf(value, directive.Location)
	return nil
}

func (f *file) pushElif(directive lexer.Token, condition func() (bool, error)) error {
	value := false
	if f.conds.NeedsCondition() {
		var err error
		if value, err = condition(); err != nil {
			return err
		}
	}
	if err := f.conds.PushElif(value); err != nil {
		f.report(diag.Error, f.path, directive.Location, err)
	}
	return nil
}

// macroName returns the name operand of #ifdef, #ifndef and #undef.
func (f *file) macroName(directive lexer.Token, line []lexer.Token) (string, bool) {
	operands := lexer.Significant(line)
	if len(operands) == 0 || !operands[0].Type.IsIdentifierLike() {
		f.report(diag.Error, f.path, directive.Location, ErrMacroNameMissing)
		return "", false
	}
	if len(operands) > 1 {
		f.report(diag.Warning, f.path, operands[1].Location, fmt.Errorf("extra tokens at end of %s directive", strings.TrimSpace(directive.Content)))
	}
	return operands[0].Content, true
}

func (f *file) isDefined(directive lexer.Token, line []lexer.Token) bool {
	name, ok := f.macroName(directive, line)
	return ok && f.macros.IsDefined(name)
}

// evaluate computes the condition of #if or #elif. Malformed expressions are
// reported and evaluate to false.
func (f *file) evaluate(directive lexer.Token, line []lexer.Token) (bool, error) {
	tokens := f.replaceHasInclude(ordinary(line))
	expanded, err := f.condition.ExpandTokens(tokens, false)
	if err != nil {
		return false, err
	}
	value, err := expr.Evaluate(expanded, f.macros.IsDefined)
	if err != nil {
		f.report(diag.Error, f.path, directive.Location, err)
	}
	return value != 0, nil
}

// replaceHasInclude substitutes __has_include(...) and __has_include_next(...)
// with 1 or 0 before the line is macro-expanded.
func (f *file) replaceHasInclude(tokens []lexer.Token) []lexer.Token {
	var result []lexer.Token
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if !token.Type.IsIdentifierLike() || (token.Content != "__has_include" && token.Content != "__has_include_next") {
			result = append(result, token)
			continue
		}
		value := "0"
		end, operand, ok := parenthesized(tokens, i+1)
		if !ok {
			f.report(diag.Error, f.path, token.Location, fmt.Errorf("%s requires a parenthesized header name", token.Content))
			end = i
		} else if spec, quoted, ok := includeSpec(operand); !ok {
			f.report(diag.Error, f.path, token.Location, ErrMalformedInclude)
		} else if _, found := f.resolve(spec, quoted, token.Content == "__has_include_next"); found {
			value = "1"
		}
		result = append(result, lexer.Token{Type: lexer.TokenType_LiteralInteger, Location: token.Location, Content: value})
		i = end
	}
	return result
}

// parenthesized returns the tokens between a '(' found at or after start and
// its matching ')', together with the index of the ')'.
func parenthesized(tokens []lexer.Token, start int) (int, []lexer.Token, bool) {
	for start < len(tokens) && tokens[start].Type.IsSpace() {
		start++
	}
	if start >= len(tokens) || tokens[start].Type != lexer.TokenType_ParenthesisLeft {
		return 0, nil, false
	}
	depth := 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].Type {
		case lexer.TokenType_ParenthesisLeft:
			depth++
		case lexer.TokenType_ParenthesisRight:
			depth--
			if depth == 0 {
				return i, tokens[start+1 : i], true
			}
		}
	}
	return 0, nil, false
}

// includeSpec extracts the header name from the operand of #include or
// __has_include: "name" (quoted), <name> as a single token or <name> spelled
// with separate tokens, as produced by macro expansion.
func includeSpec(tokens []lexer.Token) (string, bool, bool) {
	tokens = lexer.TrimSpace(tokens)
	if len(tokens) == 0 {
		return "", false, false
	}
	first := tokens[0]
	switch {
	case first.Type == lexer.TokenType_LiteralString && strings.HasPrefix(first.Content, `"`) && len(first.Content) >= 2:
		return first.Content[1 : len(first.Content)-1], true, true
	case first.Type == lexer.TokenType_PreprocessorSystemPath:
		return first.Content[1 : len(first.Content)-1], false, true
	case first.Type == lexer.TokenType_OperatorLess:
		end := slices.IndexFunc(tokens, func(t lexer.Token) bool { return t.Type == lexer.TokenType_OperatorGreater })
		if end < 0 {
			return "", false, false
		}
		return lexer.Join(tokens[1:end]), false, true
	default:
		return "", false, false
	}
}

// resolve looks up a header for the current file. For include_next the
// search continues after the directory the current file was found in.
func (f *file) resolve(spec string, quoted, next bool) (string, bool) {
	if next {
		if resolver, ok := f.resolver.(include.NextResolver); ok && len(f.active) > 1 {
			return resolver.ResolveNext(spec, f.path)
		}
		// as in the main file, include_next falls back to #include
	}
	return f.resolver.Resolve(spec, quoted, f.path)
}

func (f *file) include(directive lexer.Token, line []lexer.Token, next bool) error {
	spec, quoted, ok := includeSpec(line)
	if !ok {
		// computed include, e.g. #include CONFIG_HEADER
		expanded, err := f.text.ExpandTokens(ordinary(line), true)
		if err != nil {
			return err
		}
		if spec, quoted, ok = includeSpec(expanded); !ok {
			f.report(diag.Error, f.path, directive.Location, ErrMalformedInclude)
			return nil
		}
	}

	path, found := f.resolve(spec, quoted, next)
	switch {
	case !found:
		f.report(diag.Error, f.path, directive.Location, fmt.Errorf("%w: %s", include.ErrNotFound, spec))
		return nil
	case f.done.Contains(path):
		return nil
	case slices.Contains(f.active, path):
		f.report(diag.Error, f.path, directive.Location, fmt.Errorf("%w: %s", ErrRecursiveInclude, path))
		return nil
	}

	if len(f.active) > f.options.MaxIncludeDepth {
		return fmt.Errorf("%s:%v: %w", f.path, directive.Location, ErrIncludeDepthExceeded)
	}
	data, err := f.resolver.Read(path)
	if err != nil {
		f.report(diag.Error, f.path, directive.Location, err)
		return nil
	}
	f.emit(lexer.Token{Type: lexer.TokenType_IncludeBegin, Location: directive.Location, Content: path})
	if err := f.processFile(path, data, lexer.CursorInit.Line); err != nil {
		return err
	}
	f.emit(lexer.Token{Type: lexer.TokenType_IncludeEnd, Location: directive.Location, Content: path})
	f.done.Add(path)
	return nil
}
