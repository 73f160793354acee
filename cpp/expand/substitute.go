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

package expand

import (
	"fmt"
	"strings"

	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/EngFlow/ccpp/cpp/macro"
	"github.com/EngFlow/ccpp/internal/collections"
)

// substitute produces the replacement of a single invocation: parameters are
// replaced with their arguments, then '#' and '##' are applied. Arguments are
// macro-expanded before substitution unless they are an operand of '#' or
// '##'. All produced tokens are reported at the location of the invocation.
func (x *expansion) substitute(m *macro.Macro, args [][]lexer.Token, invocation lexer.Token, excluded collections.Set[string]) ([]lexer.Token, error) {
	expanded := make(map[int][]lexer.Token)
	expandedArgument := func(index int) ([]lexer.Token, error) {
		if tokens, ok := expanded[index]; ok {
			return tokens, nil
		}
		tokens, err := x.Expander.expand(lexer.TrimSpace(args[index]), false, x.depth+len(x.frames), excluded)
		if err != nil {
			return nil, err
		}
		expanded[index] = tokens
		return tokens, nil
	}

	body := m.Body
	out := make([]lexer.Token, 0, len(body))
	// Start of the last operand in out. Operands may expand to nothing, in
	// which case '##' has nothing to paste with on that side.
	operandStart := 0
	for i := 0; i < len(body); i++ {
		token := body[i]
		switch {
		case token.Type == lexer.TokenType_PreprocessorPaste && i+1 < len(body):
			i++
			rhs, isVariadic := operand(m, args, body, &i, invocation)
			out, operandStart = x.paste(out, operandStart, rhs, isVariadic, invocation)

		case token.Type == lexer.TokenType_PreprocessorStringize:
			operandStart = len(out)
			out = append(out, stringizeOperand(m, args, body, &i, invocation))

		case token.Type.IsIdentifierLike() && m.ParameterIndex(token.Content) >= 0:
			index := m.ParameterIndex(token.Content)
			operandStart = len(out)
			if i+1 < len(body) && body[i+1].Type == lexer.TokenType_PreprocessorPaste {
				out = append(out, lexer.TrimSpace(args[index])...)
				continue
			}
			tokens, err := expandedArgument(index)
			if err != nil {
				return nil, err
			}
			out = append(out, tokens...)

		default:
			operandStart = len(out)
			out = append(out, token.Operator())
		}
	}
	return relocate(out, invocation.Location), nil
}

// operand returns the right operand of '##' found at body[*i], advancing *i
// past it. It also reports whether the operand is the variadic parameter.
func operand(m *macro.Macro, args [][]lexer.Token, body []lexer.Token, i *int, invocation lexer.Token) ([]lexer.Token, bool) {
	token := body[*i]
	switch {
	case token.Type == lexer.TokenType_PreprocessorStringize:
		return []lexer.Token{stringizeOperand(m, args, body, i, invocation)}, false
	case token.Type.IsIdentifierLike() && m.ParameterIndex(token.Content) >= 0:
		index := m.ParameterIndex(token.Content)
		return lexer.TrimSpace(args[index]), m.IsVariadic && index == len(m.Parameters)-1
	default:
		return []lexer.Token{token.Operator()}, false
	}
}

// stringizeOperand applies '#' found at body[*i] to the parameter following
// it, advancing *i past the parameter.
func stringizeOperand(m *macro.Macro, args [][]lexer.Token, body []lexer.Token, i *int, invocation lexer.Token) lexer.Token {
	if *i+1 < len(body) {
		if index := m.ParameterIndex(body[*i+1].Content); index >= 0 && body[*i+1].Type.IsIdentifierLike() {
			*i++
			return Stringize(args[index], invocation.Location)
		}
	}
	return body[*i].Operator()
}

// paste concatenates the last token of the left operand, out[operandStart:],
// with the first token of the right operand. It returns the new output and the
// start of the operand that is now last.
func (x *expansion) paste(out []lexer.Token, operandStart int, rhs []lexer.Token, rhsIsVariadic bool, invocation lexer.Token) ([]lexer.Token, int) {
	leftEmpty := operandStart >= len(out)
	lastIsComma := !leftEmpty && out[len(out)-1].Type == lexer.TokenType_Comma
	switch {
	case leftEmpty:
		start := len(out)
		return append(out, rhs...), start
	case len(rhs) == 0 && rhsIsVariadic && lastIsComma:
		// GNU: the comma in ', ## __VA_ARGS__' disappears with empty variadic arguments
		out = out[:len(out)-1]
		return out, len(out)
	case len(rhs) == 0:
		return out, operandStart
	case rhsIsVariadic && lastIsComma:
		start := len(out)
		return append(out, rhs...), start
	}

	lhs := out[len(out)-1]
	pasted, err := pasteTokens(lhs, rhs[0])
	if err != nil {
		x.report(invocation, fmt.Errorf("%w: %q and %q", err, lhs.Content, rhs[0].Content))
	}
	out = append(out[:len(out)-1], pasted...)
	start := len(out) - len(pasted)
	return append(out, rhs[1:]...), start
}

// pasteTokens joins the contents of two tokens. The result must form a single
// token, or both tokens must be of the same kind. Otherwise the tokens are
// returned unchanged together with ErrInvalidPaste.
func pasteTokens(lhs, rhs lexer.Token) ([]lexer.Token, error) {
	content := lhs.Content + rhs.Content
	if tokens := lexer.Retokenize(content, lhs.Location); len(tokens) == 1 {
		return tokens, nil
	}
	if lhs.Type == rhs.Type {
		return []lexer.Token{{Type: lhs.Type, Location: lhs.Location, Content: content}}, nil
	}
	return []lexer.Token{lhs, rhs}, ErrInvalidPaste
}

// Stringize converts the tokens into a single string literal. Whitespace runs
// become a single space, and quotes and backslashes of string and character
// literals are escaped.
func Stringize(tokens []lexer.Token, location lexer.Cursor) lexer.Token {
	var sb strings.Builder
	sb.WriteByte('"')
	pendingSpace := false
	for _, token := range lexer.TrimSpace(tokens) {
		switch token.Type {
		case lexer.TokenType_Whitespace, lexer.TokenType_Newline:
			pendingSpace = true
			continue
		case lexer.TokenType_IncludeBegin, lexer.TokenType_IncludeEnd:
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		switch token.Type {
		case lexer.TokenType_LiteralString, lexer.TokenType_LiteralChar:
			for i := 0; i < len(token.Content); i++ {
				if char := token.Content[i]; char == '"' || char == '\\' {
					sb.WriteByte('\\')
				}
				sb.WriteByte(token.Content[i])
			}
		default:
			sb.WriteString(token.Content)
		}
	}
	sb.WriteByte('"')
	return lexer.Token{Type: lexer.TokenType_LiteralString, Location: location, Content: sb.String()}
}
