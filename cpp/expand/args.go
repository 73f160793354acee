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

	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/EngFlow/ccpp/cpp/macro"
)

// collectArguments reads the arguments of an invocation whose opening
// parenthesis was already consumed, up to the matching closing parenthesis.
// Commas nested in parentheses never separate arguments, neither do the commas
// absorbed by the variadic parameter. Newlines inside the invocation become
// plain whitespace.
func (x *expansion) collectArguments(m *macro.Macro) ([][]lexer.Token, bool) {
	var args [][]lexer.Token
	var current []lexer.Token
	depth := 0
	for {
		token, _, ok := x.next()
		if !ok {
			return nil, false
		}
		switch token.Type {
		case lexer.TokenType_ParenthesisLeft:
			depth++
		case lexer.TokenType_ParenthesisRight:
			if depth == 0 {
				return append(args, current), true
			}
			depth--
		case lexer.TokenType_Comma:
			variadicTail := m.IsVariadic && len(args) >= len(m.Parameters)-1
			if depth == 0 && !variadicTail {
				args = append(args, current)
				current = nil
				continue
			}
		case lexer.TokenType_Newline:
			token = lexer.Token{Type: lexer.TokenType_Whitespace, Location: token.Location, Content: " "}
		}
		current = append(current, token)
	}
}

// checkArguments matches the number of arguments with the parameters. Missing
// arguments are empty, superfluous ones are dropped.
func (x *expansion) checkArguments(m *macro.Macro, invocation lexer.Token, args [][]lexer.Token) [][]lexer.Token {
	expected := len(m.Parameters)
	switch {
	case expected == 0:
		// F() passes a single empty argument
		if len(args) > 1 || len(lexer.TrimSpace(args[0])) > 0 {
			x.report(invocation, fmt.Errorf("%w: %s takes no arguments", ErrTooManyArguments, m.Name))
		}
		return nil
	case len(args) > expected:
		x.report(invocation, fmt.Errorf("%w: %s takes %d, got %d", ErrTooManyArguments, m.Name, expected, len(args)))
		return args[:expected]
	case len(args) < expected:
		// the variadic arguments may be omitted entirely
		if !m.IsVariadic || len(args) < expected-1 {
			x.report(invocation, fmt.Errorf("%w: %s takes %d, got %d", ErrTooFewArguments, m.Name, expected, len(args)))
		}
		for len(args) < expected {
			args = append(args, nil)
		}
	}
	return args
}
