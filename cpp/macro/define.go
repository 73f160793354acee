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

package macro

import (
	"errors"
	"fmt"
	"slices"

	"github.com/EngFlow/ccpp/cpp/lexer"
)

var (
	ErrMissingName               = errors.New("macro name missing")
	ErrInvalidName               = errors.New("invalid macro name")
	ErrMalformedParameters       = errors.New("malformed macro parameter list")
	ErrDuplicateParameter        = errors.New("duplicate macro parameter")
	ErrMisplacedEllipsis         = errors.New("'...' must be the last macro parameter")
	ErrPasteAtEdge               = errors.New("'##' cannot appear at either end of a macro replacement list")
	ErrStringizeWithoutParameter = errors.New("'#' is not followed by a macro parameter")
)

// ParseDefinition builds a macro from the tokens of a #define line following
// the directive name, not including the terminating newline.
//
// A nil macro means the definition is unusable (missing name, malformed
// parameter list) and must not be installed. A non-nil macro returned together
// with an error is a best-effort reading of a malformed replacement list, e.g.
// with a '##' at its edge dropped; it should be installed and the error
// reported.
func ParseDefinition(line []lexer.Token) (*Macro, error) {
	stream := lexer.NewTokenStream(slices.Clone(line))
	skipWhitespace(stream)

	nameToken := stream.Next()
	switch {
	case nameToken.Type == lexer.TokenType_PreprocessorDefined:
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, nameToken.Content)
	case !nameToken.Type.IsIdentifierLike():
		return nil, ErrMissingName
	}

	m := &Macro{Name: nameToken.Content, Location: nameToken.Location}
	// Only a parenthesis immediately following the name opens a parameter list.
	if stream.Peek().Type == lexer.TokenType_ParenthesisLeft {
		stream.Next()
		m.IsFunction = true
		if err := parseParameters(stream, m); err != nil {
			return nil, fmt.Errorf("macro %s: %w", m.Name, err)
		}
	}

	body, err := parseBody(stream.Tokens()[stream.Pos():], m)
	m.Body = body
	if err != nil {
		return m, fmt.Errorf("macro %s: %w", m.Name, err)
	}
	return m, nil
}

func skipWhitespace(stream *lexer.TokenStream) {
	for stream.Peek().Type.IsSpace() {
		stream.Next()
	}
}

func parseParameters(stream *lexer.TokenStream, m *Macro) error {
	skipWhitespace(stream)
	if stream.Peek().Type == lexer.TokenType_ParenthesisRight {
		stream.Next()
		return nil
	}

	addParameter := func(name string) error {
		if slices.Contains(m.Parameters, name) {
			return fmt.Errorf("%w: %s", ErrDuplicateParameter, name)
		}
		m.Parameters = append(m.Parameters, name)
		return nil
	}

	for {
		skipWhitespace(stream)
		token := stream.Next()
		switch {
		case token.Type == lexer.TokenType_Ellipsis:
			m.IsVariadic = true
			if err := addParameter(VariadicParameter); err != nil {
				return err
			}
		case token.Type.IsIdentifierLike():
			if err := addParameter(token.Content); err != nil {
				return err
			}
			skipWhitespace(stream)
			// GNU named variadic parameter: args...
			if stream.Peek().Type == lexer.TokenType_Ellipsis {
				stream.Next()
				m.IsVariadic = true
			}
		default:
			return fmt.Errorf("%w: unexpected %v", ErrMalformedParameters, token.Type)
		}

		skipWhitespace(stream)
		separator := stream.Next()
		switch {
		case separator.Type == lexer.TokenType_ParenthesisRight:
			return nil
		case separator.Type == lexer.TokenType_Comma && m.IsVariadic:
			return ErrMisplacedEllipsis
		case separator.Type == lexer.TokenType_Comma:
			continue
		default:
			return fmt.Errorf("%w: expected ',' or ')', got %v", ErrMalformedParameters, separator.Type)
		}
	}
}

func parseBody(tokens []lexer.Token, m *Macro) ([]lexer.Token, error) {
	var errs []error
	body := collapseWhitespace(tokens)
	body, errs = resolveStringize(body, m, errs)
	body, errs = tightenPaste(body, errs)
	return body, errors.Join(errs...)
}

// collapseWhitespace converts the tokens to their ordinary kinds, trims the
// whitespace at both ends and replaces each inner whitespace run with a single
// space.
func collapseWhitespace(tokens []lexer.Token) []lexer.Token {
	body := make([]lexer.Token, 0, len(tokens))
	for _, token := range lexer.TrimSpace(tokens) {
		if token.Type.IsSpace() {
			if last := len(body) - 1; last >= 0 && body[last].Type == lexer.TokenType_Whitespace {
				continue
			}
			token = lexer.Token{Type: lexer.TokenType_Whitespace, Location: token.Location, Content: " "}
		}
		body = append(body, token.Ordinary())
	}
	return body
}

// resolveStringize keeps '#' as an operator only when a parameter follows it,
// dropping the whitespace in between. Object-like macros have no operands for
// '#', so there it is always a plain punctuator.
func resolveStringize(body []lexer.Token, m *Macro, errs []error) ([]lexer.Token, []error) {
	result := make([]lexer.Token, 0, len(body))
	for i := 0; i < len(body); i++ {
		token := body[i]
		if token.Type != lexer.TokenType_PreprocessorStringize {
			result = append(result, token)
			continue
		}
		if !m.IsFunction {
			result = append(result, token.Operator())
			continue
		}

		operand := i + 1
		if operand < len(body) && body[operand].Type == lexer.TokenType_Whitespace {
			operand++
		}
		if operand < len(body) && body[operand].Type.IsIdentifierLike() && m.ParameterIndex(body[operand].Content) >= 0 {
			result = append(result, token, body[operand])
			i = operand
			continue
		}
		errs = append(errs, fmt.Errorf("%w at %v", ErrStringizeWithoutParameter, token.Location))
		result = append(result, token.Operator())
	}
	return result, errs
}

// tightenPaste removes the whitespace around '##' and drops the operators at
// either end of the body, which have nothing to paste with.
func tightenPaste(body []lexer.Token, errs []error) ([]lexer.Token, []error) {
	result := make([]lexer.Token, 0, len(body))
	afterPaste := false
	for _, token := range body {
		switch {
		case token.Type == lexer.TokenType_PreprocessorPaste:
			if last := len(result) - 1; last >= 0 && result[last].Type == lexer.TokenType_Whitespace {
				result = result[:last]
			}
			afterPaste = true
		case token.Type == lexer.TokenType_Whitespace && afterPaste:
			continue
		default:
			afterPaste = false
		}
		result = append(result, token)
	}

	for len(result) > 0 && result[0].Type == lexer.TokenType_PreprocessorPaste {
		errs = append(errs, fmt.Errorf("%w at %v", ErrPasteAtEdge, result[0].Location))
		result = result[1:]
	}
	for len(result) > 0 && result[len(result)-1].Type == lexer.TokenType_PreprocessorPaste {
		errs = append(errs, fmt.Errorf("%w at %v", ErrPasteAtEdge, result[len(result)-1].Location))
		result = result[:len(result)-1]
	}
	return result, errs
}
