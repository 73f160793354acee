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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStream(t *testing.T) {
	stream := Tokenize([]byte("a + b"), 1)
	require.Equal(t, 5, stream.Len())

	assert.Equal(t, "a", stream.Peek().Content)
	assert.Equal(t, "a", stream.Next().Content)
	assert.Equal(t, " ", stream.Next().Content)
	assert.Equal(t, 2, stream.Pos())

	stream.Prev()
	assert.Equal(t, " ", stream.Peek().Content)

	stream.Seek(100)
	assert.True(t, stream.AtEOF())
	assert.Equal(t, TokenEOF, stream.Next())
	assert.Equal(t, TokenEOF, stream.Next(), "cursor must stay on the terminating token")

	stream.Seek(-1)
	assert.Equal(t, 0, stream.Pos())
}

func TestEmptyTokenStream(t *testing.T) {
	stream := NewTokenStream(nil)
	assert.True(t, stream.AtEOF())
	assert.Equal(t, 0, stream.Len())
	assert.Empty(t, stream.Tokens())
	stream.Prev()
	assert.Equal(t, TokenEOF, stream.Peek())
}

func TestTokenHelpers(t *testing.T) {
	tokens := Tokenize([]byte(" \n a  b \n"), 1).Tokens()

	assert.Equal(t, " \n a  b \n", Join(tokens))
	assert.Equal(t, []string{"a", "b"}, Contents(Significant(tokens)))
	assert.Equal(t, "a  b", Join(TrimSpace(tokens)))
	assert.Empty(t, TrimSpace(Tokenize([]byte(" \n "), 1).Tokens()))
}

func TestJoinSkipsIncludeMarkers(t *testing.T) {
	tokens := []Token{
		{Type: TokenType_IncludeBegin, Content: "a.h"},
		{Type: TokenType_Identifier, Content: "x"},
		{Type: TokenType_IncludeEnd, Content: "a.h"},
	}
	assert.Equal(t, "x", Join(tokens))
	assert.Equal(t, []string{"x"}, Contents(Significant(tokens)))
}

func TestMergeStringLiterals(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{
			input:    `"a" "b"`,
			expected: []string{`"ab"`},
		},
		{
			input:    `"a" "b"  L"c" x "d"`,
			expected: []string{`L"abc"`, "x", `"d"`},
		},
		{
			input:    `u8"a""b"`,
			expected: []string{`u8"ab"`},
		},
		{
			input:    "\"a\"\n\"b\"",
			expected: []string{`"ab"`},
		},
		{
			input:    "const char *s = \"abc\"\n  \"def\";",
			expected: []string{"const", "char", "*", "s", "=", `"abcdef"`, ";"},
		},
		{
			input:    `R"(a)" "b"`,
			expected: []string{`R"(a)"`, `"b"`},
		},
		{
			input:    `'a' 'b'`,
			expected: []string{`'a'`, `'b'`},
		},
	}

	for _, tc := range testCases {
		merged := MergeStringLiterals(Tokenize([]byte(tc.input), 1).Tokens())
		assert.Equal(t, tc.expected, Contents(Significant(merged)), "input: %q", tc.input)
	}
}

func TestMergeStringLiteralsStopsAtIncludeMarkers(t *testing.T) {
	tokens := []Token{
		{Type: TokenType_LiteralString, Content: `"a"`},
		{Type: TokenType_Newline, Content: "\n"},
		{Type: TokenType_IncludeBegin, Content: "/inc/b.h"},
		{Type: TokenType_LiteralString, Content: `"b"`},
		{Type: TokenType_IncludeEnd, Content: "/inc/b.h"},
		{Type: TokenType_LiteralString, Content: `"c"`},
	}
	assert.Equal(t, []string{`"a"`, `"b"`, `"c"`}, Contents(Significant(MergeStringLiterals(tokens))))
}
