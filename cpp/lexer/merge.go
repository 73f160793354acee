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
	"strings"
)

// MergeStringLiterals concatenates string literals separated only by
// whitespace or line breaks into a single literal, e.g. "a" "b" becomes "ab".
// It runs over the fully expanded token stream, so literals produced by macros
// are merged as well. Raw string literals are never merged, and include
// markers separate literals of different files.
func MergeStringLiterals(tokens []Token) []Token {
	result := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if !isMergeableString(token) {
			result = append(result, token)
			continue
		}

		next := i + 1
		for next < len(tokens) && tokens[next].Type.IsSpace() {
			next++
		}
		for next < len(tokens) && isMergeableString(tokens[next]) {
			token.Content = concatStrings(token.Content, tokens[next].Content)
			i = next
			next++
			for next < len(tokens) && tokens[next].Type.IsSpace() {
				next++
			}
		}
		result = append(result, token)
	}
	return result
}

func isMergeableString(token Token) bool {
	if token.Type != TokenType_LiteralString {
		return false
	}
	quote := strings.IndexByte(token.Content, '"')
	prefix := token.Content[:max(quote, 0)]
	return quote >= 0 && !strings.HasSuffix(prefix, "R") && len(token.Content) >= quote+2 && strings.HasSuffix(token.Content, `"`)
}

// concatStrings joins two quoted literals, keeping the encoding prefix of the
// left one or, if it has none, of the right one.
func concatStrings(left, right string) string {
	leftQuote := strings.IndexByte(left, '"')
	rightQuote := strings.IndexByte(right, '"')
	prefix := left[:leftQuote]
	if prefix == "" {
		prefix = right[:rightQuote]
	}
	return prefix + left[leftQuote:len(left)-1] + right[rightQuote+1:]
}
