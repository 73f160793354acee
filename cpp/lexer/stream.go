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

package lexer

import (
	"iter"
	"slices"
	"strings"

	"github.com/EngFlow/ccpp/internal/collections"
)

// TokenStream is an ordered sequence of tokens with a cursor. The last token is
// always TokenEOF, so looking ahead never runs past the end of the stream.
type TokenStream struct {
	tokens []Token
	cursor int
}

// NewTokenStream creates a stream over the given tokens, appending the
// terminating TokenEOF if the tokens don't end with it.
func NewTokenStream(tokens []Token) *TokenStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenType_EOF {
		tokens = append(tokens, TokenEOF)
	}
	return &TokenStream{tokens: tokens}
}

// Return the next token without consuming it.
func (s *TokenStream) Peek() Token {
	return s.tokens[s.cursor]
}

// Return the next token and consume it. At the end of the stream TokenEOF is
// returned and the cursor does not move.
func (s *TokenStream) Next() Token {
	token := s.tokens[s.cursor]
	if s.cursor < len(s.tokens)-1 {
		s.cursor++
	}
	return token
}

// Move the cursor one token back.
func (s *TokenStream) Prev() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// Pos returns the index of the token Peek would return.
func (s *TokenStream) Pos() int { return s.cursor }

// Seek moves the cursor to the given index, clamped to the stream bounds.
func (s *TokenStream) Seek(pos int) {
	s.cursor = min(max(pos, 0), len(s.tokens)-1)
}

func (s *TokenStream) AtEOF() bool { return s.tokens[s.cursor].Type == TokenType_EOF }

// Len returns the number of tokens, not counting the terminating TokenEOF.
func (s *TokenStream) Len() int { return len(s.tokens) - 1 }

// Tokens returns all tokens of the stream, not including the terminating TokenEOF.
func (s *TokenStream) Tokens() []Token { return s.tokens[:len(s.tokens)-1] }

// All returns a sequence of all tokens, not including the terminating TokenEOF.
func (s *TokenStream) All() iter.Seq[Token] { return slices.Values(s.Tokens()) }

// Join concatenates the contents of the tokens, reconstructing the text they
// were produced from (apart from comments, continuations and markers).
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, token := range tokens {
		if token.Type == TokenType_IncludeBegin || token.Type == TokenType_IncludeEnd {
			continue
		}
		sb.WriteString(token.Content)
	}
	return sb.String()
}

// Significant returns the tokens that are neither whitespace, newlines nor include markers.
func Significant(tokens []Token) []Token {
	return collections.FilterSlice(tokens, func(token Token) bool {
		switch token.Type {
		case TokenType_Whitespace, TokenType_Newline, TokenType_IncludeBegin, TokenType_IncludeEnd, TokenType_EOF:
			return false
		}
		return true
	})
}

// Contents returns the contents of the tokens.
func Contents(tokens []Token) []string {
	return collections.MapSlice(tokens, func(token Token) string { return token.Content })
}

// TrimSpace removes whitespace and newline tokens at both ends.
func TrimSpace(tokens []Token) []Token {
	start, end := 0, len(tokens)
	for start < end && tokens[start].Type.IsSpace() {
		start++
	}
	for end > start && tokens[end-1].Type.IsSpace() {
		end--
	}
	return tokens[start:end]
}
