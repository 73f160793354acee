// Copyright 2025 EngFlow Inc. All rights reserved.
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

// Package lexer provides a lexical analyzer for the C/C++ source code. It breaks the input into a sequence of tokens,
// which can then be processed by the preprocessor.
//
// Lexer classifies tokens into several types (for e.g., easier filtering whitespace or dispatching directives) and
// tracks their location in the source code (for accurate error reporting). It never fails: bytes that cannot start
// any token are skipped.
//
// Lines starting with '#' switch the lexer into directive mode until the end of the line. Directive mode produces its
// own token types (e.g. TokenType_PreprocessorIdentifier instead of TokenType_Identifier), so the preprocessor can
// dispatch on the token type alone.
package lexer

import (
	"iter"
	"slices"
)

// Lexer breaks the input C/C++ source code into a sequence of tokens.
type Lexer struct {
	data   []byte
	offset int
	lines  lineTable

	// Only whitespace has been seen since the last newline.
	atLineStart bool
	// Directive of the current line, TokenType_EOF in ordinary mode.
	directive TokenType
	// No token other than whitespace has been produced after the directive name.
	atDirectiveStart bool
}

func NewLexer(sourceCode []byte) *Lexer {
	return NewLexerAt(sourceCode, CursorInit.Line)
}

// NewLexerAt creates a Lexer reporting locations relative to the given first line.
func NewLexerAt(sourceCode []byte, firstLine int) *Lexer {
	data, lines := splice(sourceCode, firstLine)
	return &Lexer{data: data, lines: lines, atLineStart: true}
}

func (lx *Lexer) token(tokenType TokenType, length int) Token {
	token := Token{Type: tokenType, Location: lx.lines.cursorAt(lx.offset), Content: string(lx.data[lx.offset : lx.offset+length])}
	lx.offset += length
	return token
}

// Return the next token extracted from the beginning of the input data left to process. If no more tokens are left,
// returns TokenEOF.
func (lx *Lexer) NextToken() Token {
	for lx.offset < len(lx.data) {
		if token, ok := lx.scan(); ok {
			lx.updateMode(token)
			return token
		}
	}
	return TokenEOF
}

// scan produces a single token or reports that the input was skipped.
func (lx *Lexer) scan() (Token, bool) {
	data := lx.data[lx.offset:]
	switch charClasses[data[0]] {
	case classNewline:
		return lx.token(TokenType_Newline, 1), true
	case classSpace:
		return lx.token(TokenType_Whitespace, extractWhitespace(data)), true
	case classLetter:
		return lx.scanWord(data), true
	case classDigit:
		length, tokenType := extractNumber(data)
		return lx.token(tokenType, length), true
	case classDot:
		if len(data) > 1 && charClasses[data[1]] == classDigit {
			length, tokenType := extractNumber(data)
			return lx.token(tokenType, length), true
		}
		return lx.scanPunctuator(data), true
	case classDoubleQuote:
		return lx.token(TokenType_LiteralString, extractQuoted(data, '"')), true
	case classSingleQuote:
		return lx.token(TokenType_LiteralChar, extractQuoted(data, '\'')), true
	case classSlash:
		switch {
		case len(data) > 1 && data[1] == '/':
			// single-line comments are dropped entirely
			lx.offset += extractSingleLineComment(data)
			return Token{}, false
		case len(data) > 1 && data[1] == '*':
			token := lx.token(TokenType_Whitespace, extractMultiLineComment(data))
			token.Content = " "
			return token, true
		}
		return lx.scanPunctuator(data), true
	case classPunctuator:
		if lx.atLineStart && data[0] == '#' {
			return lx.scanDirective(data), true
		}
		if data[0] == '<' && lx.atDirectiveStart && (lx.directive == TokenType_PreprocessorInclude || lx.directive == TokenType_PreprocessorIncludeNext) {
			if length := extractSystemPath(data); length > 0 {
				return lx.token(TokenType_PreprocessorSystemPath, length), true
			}
		}
		return lx.scanPunctuator(data), true
	default:
		lx.offset++
		return Token{}, false
	}
}

func (lx *Lexer) scanWord(data []byte) Token {
	length := extractIdentifier(data)
	word := string(data[:length])
	if length < len(data) {
		switch {
		case data[length] == '"' && rawStringPrefixes.Contains(word):
			return lx.token(TokenType_LiteralString, length+extractRawString(data[length:]))
		case data[length] == '"' && encodingPrefixes.Contains(word):
			return lx.token(TokenType_LiteralString, length+extractQuoted(data[length:], '"'))
		case data[length] == '\'' && encodingPrefixes.Contains(word):
			return lx.token(TokenType_LiteralChar, length+extractQuoted(data[length:], '\''))
		}
	}

	switch {
	case lx.directive == TokenType_EOF && keywords.Contains(word):
		return lx.token(TokenType_Keyword, length)
	case lx.directive == TokenType_EOF:
		return lx.token(TokenType_Identifier, length)
	case word == "defined":
		return lx.token(TokenType_PreprocessorDefined, length)
	default:
		return lx.token(TokenType_PreprocessorIdentifier, length)
	}
}

func (lx *Lexer) scanPunctuator(data []byte) Token {
	length, tokenType := extractPunctuator(data)
	if lx.directive != TokenType_EOF {
		switch tokenType {
		case TokenType_Hash:
			tokenType = TokenType_PreprocessorStringize
		case TokenType_HashHash:
			tokenType = TokenType_PreprocessorPaste
		}
	}
	return lx.token(tokenType, length)
}

// scanDirective produces the directive token: '#', optional whitespace and the
// directive name. Whitespace is only consumed if a name follows.
func (lx *Lexer) scanDirective(data []byte) Token {
	nameStart := 1
	for nameStart < len(data) && charClasses[data[nameStart]] == classSpace {
		nameStart++
	}

	if nameStart < len(data) && charClasses[data[nameStart]] == classLetter {
		nameLength := extractIdentifier(data[nameStart:])
		name := string(data[nameStart : nameStart+nameLength])
		tokenType, known := directives[name]
		if !known {
			tokenType = TokenType_PreprocessorUnknown
		}
		return lx.token(tokenType, nameStart+nameLength)
	}

	rest := data[nameStart:]
	if len(rest) == 0 || rest[0] == '\n' || (len(rest) > 1 && rest[0] == '/' && rest[1] == '/') {
		return lx.token(TokenType_PreprocessorNull, 1)
	}
	return lx.token(TokenType_PreprocessorUnknown, 1)
}

func (lx *Lexer) updateMode(token Token) {
	switch {
	case token.Type == TokenType_Newline:
		lx.atLineStart = true
		lx.directive = TokenType_EOF
		lx.atDirectiveStart = false
	case token.Type == TokenType_Whitespace:
		// mode unchanged
	case token.Type.IsPreprocessorDirective():
		lx.atLineStart = false
		lx.directive = token.Type
		lx.atDirectiveStart = true
	default:
		lx.atLineStart = false
		lx.atDirectiveStart = false
	}
}

// Return a sequence of all tokens extracted from the input data, not including the final TokenEOF.
func (lx *Lexer) AllTokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			token := lx.NextToken()
			if token.Type == TokenType_EOF || !yield(token) {
				return
			}
		}
	}
}

// Tokenize converts the source code into a TokenStream. Line numbers of the
// produced tokens start at firstLine.
func Tokenize(sourceCode []byte, firstLine int) *TokenStream {
	var tokens []Token
	for token := range NewLexerAt(sourceCode, firstLine).AllTokens() {
		tokens = append(tokens, token)
	}
	return NewTokenStream(tokens)
}

// Retokenize splits text produced by joining token contents, e.g. by token
// pasting. The text is never treated as a directive line and every produced
// token is reported at the given location.
func Retokenize(text string, location Cursor) []Token {
	lx := NewLexer([]byte(text))
	lx.atLineStart = false
	tokens := slices.Collect(lx.AllTokens())
	for i := range tokens {
		tokens[i].Location = location
	}
	return tokens
}
