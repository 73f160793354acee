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

package lexer

import (
	"bytes"
)

// Every extract function receives the input left to scan, starting with the
// first byte of the token, and returns the length of the token. Input never
// contains line continuations, they are removed before scanning.

// applicable for tokens where one character class is repeated one or more times (like in regex "[abc]+")
func extractRepeated(data []byte, expected charClass) int {
	end := 1
	for end < len(data) && charClasses[data[end]] == expected {
		end++
	}
	return end
}

func extractWhitespace(data []byte) int {
	return extractRepeated(data, classSpace)
}

func extractIdentifier(data []byte) int {
	end := 1
	for end < len(data) && isIdentifierChar(data[end]) {
		end++
	}
	return end
}

// extractSingleLineComment returns the length of the comment, not including
// the terminating newline.
func extractSingleLineComment(data []byte) int {
	if newlineIndex := bytes.IndexByte(data, '\n'); newlineIndex >= 0 {
		return newlineIndex
	}
	return len(data)
}

// extractMultiLineComment returns the length of the comment. An unterminated
// comment runs to the end of the input.
func extractMultiLineComment(data []byte) int {
	if endIndex := bytes.Index(data[2:], []byte("*/")); endIndex >= 0 {
		return endIndex + 4
	}
	return len(data)
}

// extractQuoted scans a string or character literal up to the matching
// unescaped quote. Literals must fit in one line: an unterminated literal ends
// before the newline.
func extractQuoted(data []byte, quote byte) int {
	for i := 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			if i+1 < len(data) && data[i+1] != '\n' {
				i++
			}
		case '\n':
			return i
		case quote:
			return i + 1
		}
	}
	return len(data)
}

// extractRawString scans a raw string literal R"delimiter(...)delimiter",
// starting at the opening double quote. Raw strings may span multiple lines.
func extractRawString(data []byte) int {
	start := bytes.IndexByte(data, '(')
	if start < 0 || bytes.IndexByte(data[:start], '\n') >= 0 {
		return extractQuoted(data, '"')
	}

	customDelimiterName := data[1:start]
	endDelimiter := make([]byte, 0, len(customDelimiterName)+len(`)"`))
	endDelimiter = append(endDelimiter, ')')
	endDelimiter = append(endDelimiter, customDelimiterName...)
	endDelimiter = append(endDelimiter, '"')

	endIndex := bytes.Index(data[start:], endDelimiter)
	if endIndex < 0 {
		return len(data)
	}
	return start + endIndex + len(endDelimiter)
}

// extractNumber scans an integer or floating literal. A literal starting with
// a dot must be followed by a digit, the caller checks that. The returned type
// is TokenType_LiteralFloat when the literal contains a fraction, an exponent
// or a floating suffix.
func extractNumber(data []byte) (int, TokenType) {
	tokenType := TokenType_LiteralInteger
	end := 0
	isDigit := func(char byte) bool { return charClasses[char] == classDigit }
	exponents := "eE"

	switch {
	case len(data) > 2 && data[0] == '0' && (data[1] == 'x' || data[1] == 'X') && (isHexDigit(data[2]) || data[2] == '.'):
		end = 2
		isDigit = isHexDigit
		exponents = "pP"
	case len(data) > 2 && data[0] == '0' && (data[1] == 'b' || data[1] == 'B') && (data[2] == '0' || data[2] == '1'):
		end = 2
		isDigit = func(char byte) bool { return char == '0' || char == '1' }
		exponents = ""
	}

	for end < len(data) && isDigit(data[end]) {
		end++
	}
	if end < len(data) && data[end] == '.' {
		tokenType = TokenType_LiteralFloat
		end++
		for end < len(data) && isDigit(data[end]) {
			end++
		}
	}
	if end < len(data) && exponents != "" && bytes.IndexByte([]byte(exponents), data[end]) >= 0 {
		exponentEnd := end + 1
		if exponentEnd < len(data) && (data[exponentEnd] == '+' || data[exponentEnd] == '-') {
			exponentEnd++
		}
		if exponentEnd < len(data) && charClasses[data[exponentEnd]] == classDigit {
			tokenType = TokenType_LiteralFloat
			end = exponentEnd
			for end < len(data) && charClasses[data[end]] == classDigit {
				end++
			}
		}
	}

	// Suffixes and any other identifier characters glued to the literal stay a
	// part of it (e.g. 10ULL, 1.0f, 123_km).
	suffixStart := end
	for end < len(data) && isIdentifierChar(data[end]) {
		end++
	}
	if tokenType == TokenType_LiteralInteger && isDigit(data[0]) && exponents == "eE" && isFloatingSuffix(data[suffixStart:end]) {
		tokenType = TokenType_LiteralFloat
	}
	return end, tokenType
}

// isFloatingSuffix reports whether a decimal literal suffix makes the literal
// floating: 'f' or 'F' anywhere, or 'l'/'L' without an unsigned marker.
func isFloatingSuffix(suffix []byte) bool {
	if bytes.ContainsAny(suffix, "fF") {
		return true
	}
	return bytes.ContainsAny(suffix, "lL") && !bytes.ContainsAny(suffix, "uU")
}

func extractPunctuator(data []byte) (int, TokenType) {
	for _, p := range punctuators {
		if bytes.HasPrefix(data, []byte(p.spelling)) {
			return len(p.spelling), p.tokenType
		}
	}
	return 0, TokenType_EOF
}

// extractSystemPath scans <path> of an include directive. It returns 0 if the
// closing bracket is missing on the same line.
func extractSystemPath(data []byte) int {
	for i := 1; i < len(data); i++ {
		switch data[i] {
		case '>':
			return i + 1
		case '\n':
			return 0
		}
	}
	return 0
}
