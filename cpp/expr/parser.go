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

package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/EngFlow/ccpp/cpp/lexer"
)

type (
	parseRule struct {
		precedence   precedence
		prefixParser prefixParseFn
		infixParser  infixParseFn
	}
	prefixParseFn func(p *parser, token lexer.Token) (Expr, error)
	infixParseFn  func(p *parser, token lexer.Token, left Expr) (Expr, error)
	precedence    int
)

const (
	precedenceLowest         precedence = iota
	precedenceTernary                   // ?:
	precedenceOr                        // ||
	precedenceAnd                       // &&
	precedenceBitOr                     // |
	precedenceBitXor                    // ^
	precedenceBitAnd                    // &
	precedenceEquality                  // ==, !=
	precedenceRelational                // <, <=, >, >=
	precedenceShift                     // <<, >>
	precedenceAdditive                  // +, -
	precedenceMultiplicative            // *, /, %
	precedenceUnary                     // !, ~, -, + (prefix)
	precedenceApply                     // (
)

// parseRules maps operator tokens to their precedence and parser functions.
// This is initialized in init() to avoid cyclic reference errors at package init time.
var parseRules map[lexer.TokenType]parseRule

func init() {
	binary := func(level precedence) parseRule {
		return parseRule{precedence: level, infixParser: parseBinaryOperator}
	}
	parseRules = map[lexer.TokenType]parseRule{
		lexer.TokenType_ParenthesisLeft:        {precedence: precedenceApply, prefixParser: parseParenthesis, infixParser: parseApply},
		lexer.TokenType_Question:               {precedence: precedenceTernary, infixParser: parseConditional},
		lexer.TokenType_OperatorLogicalNot:     {precedence: precedenceUnary, prefixParser: parseUnaryOperator},
		lexer.TokenType_OperatorBitNot:         {precedence: precedenceUnary, prefixParser: parseUnaryOperator},
		lexer.TokenType_OperatorPlus:           {precedence: precedenceAdditive, prefixParser: parseUnaryOperator, infixParser: parseBinaryOperator},
		lexer.TokenType_OperatorMinus:          {precedence: precedenceAdditive, prefixParser: parseUnaryOperator, infixParser: parseBinaryOperator},
		lexer.TokenType_OperatorLogicalOr:      binary(precedenceOr),
		lexer.TokenType_OperatorLogicalAnd:     binary(precedenceAnd),
		lexer.TokenType_OperatorBitOr:          binary(precedenceBitOr),
		lexer.TokenType_OperatorBitXor:         binary(precedenceBitXor),
		lexer.TokenType_OperatorBitAnd:         binary(precedenceBitAnd),
		lexer.TokenType_OperatorEqual:          binary(precedenceEquality),
		lexer.TokenType_OperatorNotEqual:       binary(precedenceEquality),
		lexer.TokenType_OperatorLess:           binary(precedenceRelational),
		lexer.TokenType_OperatorLessOrEqual:    binary(precedenceRelational),
		lexer.TokenType_OperatorGreater:        binary(precedenceRelational),
		lexer.TokenType_OperatorGreaterOrEqual: binary(precedenceRelational),
		lexer.TokenType_OperatorShiftLeft:      binary(precedenceShift),
		lexer.TokenType_OperatorShiftRight:     binary(precedenceShift),
		lexer.TokenType_OperatorStar:           binary(precedenceMultiplicative),
		lexer.TokenType_OperatorSlash:          binary(precedenceMultiplicative),
		lexer.TokenType_OperatorPercent:        binary(precedenceMultiplicative),
	}
}

type parser struct {
	stream *lexer.TokenStream
}

// Parse builds the expression tree of a macro-expanded #if line.
func Parse(tokens []lexer.Token) (Expr, error) {
	p := &parser{stream: lexer.NewTokenStream(lexer.Significant(tokens))}
	if p.stream.AtEOF() {
		return nil, ErrMissingExpression
	}
	expr, err := p.parseExprPrecedence(precedenceLowest)
	if err != nil {
		return nil, err
	}
	if token := p.stream.Peek(); token.Type != lexer.TokenType_EOF {
		return nil, fmt.Errorf("%w: unexpected %q at %v", ErrSyntax, token.Content, token.Location)
	}
	return expr, nil
}

// Evaluate parses and evaluates a macro-expanded #if line. A syntax error
// evaluates to 0. Errors found while evaluating, like division by zero, are
// returned together with the value computed regardless.
func Evaluate(tokens []lexer.Token, isDefined func(name string) bool) (int64, error) {
	expr, err := Parse(tokens)
	if err != nil {
		return 0, err
	}
	ctx := &Context{IsDefined: isDefined}
	value := expr.Eval(ctx)
	return value, errors.Join(ctx.Errors...)
}

// parseExprPrecedence implements Pratt parsing for expressions.
// minPrecedence controls operator binding (precedence climbing).
func (p *parser) parseExprPrecedence(minPrecedence precedence) (Expr, error) {
	token := p.stream.Next()
	if token.Type == lexer.TokenType_EOF {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}

	parsePrefix := parseValue
	if rule, exists := parseRules[token.Type]; exists && rule.prefixParser != nil {
		parsePrefix = rule.prefixParser
	}
	result, err := parsePrefix(p, token)
	if err != nil {
		return nil, err
	}

	for {
		token := p.stream.Peek()
		rule, exists := parseRules[token.Type]
		if !exists || rule.infixParser == nil || rule.precedence < minPrecedence {
			return result, nil // current operator binds less – stop and return
		}
		p.stream.Next()
		result, err = rule.infixParser(p, token, result)
		if err != nil {
			return nil, err
		}
	}
}

func parseBinaryOperator(p *parser, token lexer.Token, lhs Expr) (Expr, error) {
	rhs, err := p.parseExprPrecedence(parseRules[token.Type].precedence + 1)
	if err != nil {
		return nil, err
	}
	return Binary{Op: token.Content, L: lhs, R: rhs}, nil
}

func parseConditional(p *parser, _ lexer.Token, cond Expr) (Expr, error) {
	then, err := p.parseExprPrecedence(precedenceLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectNext(lexer.TokenType_Colon); err != nil {
		return nil, err
	}
	// right associative: a ? b : c ? d : e
	otherwise, err := p.parseExprPrecedence(precedenceTernary)
	if err != nil {
		return nil, err
	}
	return Conditional{Cond: cond, Then: then, Else: otherwise}, nil
}

// parseApply collects the arguments of a function-like identifier as written.
func parseApply(p *parser, _ lexer.Token, lhs Expr) (Expr, error) {
	ident, ok := lhs.(Ident)
	if !ok {
		return nil, fmt.Errorf("%w: called object %v is not an identifier", ErrSyntax, lhs)
	}

	var args []string
	var current []lexer.Token
	depth := 0
	for {
		token := p.stream.Next()
		switch {
		case token.Type == lexer.TokenType_EOF:
			return nil, fmt.Errorf("%w: unexpected end of input in arguments of %s", ErrSyntax, ident)
		case token.Type == lexer.TokenType_ParenthesisLeft:
			depth++
		case token.Type == lexer.TokenType_ParenthesisRight && depth == 0:
			if len(current) > 0 || len(args) > 0 {
				args = append(args, joinArgument(current))
			}
			return Apply{Name: ident, Args: args}, nil
		case token.Type == lexer.TokenType_ParenthesisRight:
			depth--
		case token.Type == lexer.TokenType_Comma && depth == 0:
			args = append(args, joinArgument(current))
			current = nil
			continue
		}
		current = append(current, token)
	}
}

func joinArgument(tokens []lexer.Token) string {
	var sb strings.Builder
	for _, token := range tokens {
		sb.WriteString(token.Content)
	}
	return sb.String()
}

func parseUnaryOperator(p *parser, token lexer.Token) (Expr, error) {
	inner, err := p.parseExprPrecedence(precedenceUnary)
	if err != nil {
		return nil, err
	}
	return Unary{Op: token.Content, X: inner}, nil
}

func parseParenthesis(p *parser, _ lexer.Token) (Expr, error) {
	expr, err := p.parseExprPrecedence(precedenceLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectNext(lexer.TokenType_ParenthesisRight); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseValue handles literals and identifiers, including the defined operator.
func parseValue(p *parser, token lexer.Token) (Expr, error) {
	switch {
	case token.Type == lexer.TokenType_LiteralInteger || token.Type == lexer.TokenType_LiteralFloat:
		value, err := parseIntLiteral(token.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, token.Content)
		}
		return Constant(value), nil
	case token.Type == lexer.TokenType_LiteralChar:
		value, err := parseCharLiteral(token.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, token.Content)
		}
		return Constant(value), nil
	case token.Content == "defined" && token.Type.IsIdentifierLike():
		return p.parseDefined()
	case token.Content == "true" && token.Type.IsIdentifierLike():
		return Constant(1), nil
	case token.Content == "false" && token.Type.IsIdentifierLike():
		return Constant(0), nil
	case token.Type.IsIdentifierLike():
		return Ident(token.Content), nil
	default:
		return nil, fmt.Errorf("%w: unexpected %q at %v", ErrSyntax, token.Content, token.Location)
	}
}

// parseDefined parses the operand of defined, either NAME or (NAME).
func (p *parser) parseDefined() (Expr, error) {
	parenthesized := p.stream.Peek().Type == lexer.TokenType_ParenthesisLeft
	if parenthesized {
		p.stream.Next()
	}
	name := p.stream.Next()
	if !name.Type.IsIdentifierLike() {
		return nil, fmt.Errorf("%w: 'defined' requires an identifier, got %q", ErrSyntax, name.Content)
	}
	if parenthesized {
		if err := p.expectNext(lexer.TokenType_ParenthesisRight); err != nil {
			return nil, err
		}
	}
	return Defined{Name: Ident(name.Content)}, nil
}

// Check if the next token is of the expected type, returning error otherwise.
func (p *parser) expectNext(expected lexer.TokenType) error {
	token := p.stream.Next()
	if token.Type == lexer.TokenType_EOF {
		return fmt.Errorf("%w: expected %v but reached end of input", ErrSyntax, expected)
	}
	if token.Type != expected {
		return fmt.Errorf("%w: expected %v but found %q", ErrSyntax, expected, token.Content)
	}
	return nil
}
