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
	"testing"

	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse feeds the tokens following "#define" to ParseDefinition.
func parse(t *testing.T, definition string) (*Macro, error) {
	t.Helper()
	tokens := lexer.Tokenize([]byte("#define "+definition), 1).Tokens()
	require.Equal(t, lexer.TokenType_PreprocessorDefine, tokens[0].Type)
	return ParseDefinition(tokens[1:])
}

func bodyTypes(m *Macro) []lexer.TokenType {
	var types []lexer.TokenType
	for _, token := range m.Body {
		types = append(types, token.Type)
	}
	return types
}

func TestParseDefinition(t *testing.T) {
	testCases := []struct {
		definition string
		name       string
		isFunction bool
		isVariadic bool
		parameters []string
		body       string
	}{
		{definition: "A", name: "A"},
		{definition: "A A+1", name: "A", body: "A+1"},
		{definition: "A  1   +  2 ", name: "A", body: "1 + 2"},
		{definition: "A /* comment */ 1", name: "A", body: "1"},
		{definition: "F(x) x*2", name: "F", isFunction: true, parameters: []string{"x"}, body: "x*2"},
		{definition: "F (x) x", name: "F", body: "(x) x"},
		{definition: "F() 1", name: "F", isFunction: true, body: "1"},
		{definition: "F( a ,b ) a", name: "F", isFunction: true, parameters: []string{"a", "b"}, body: "a"},
		{
			definition: "LOG(fmt, ...) fmt __VA_ARGS__",
			name:       "LOG", isFunction: true, isVariadic: true,
			parameters: []string{"fmt", "__VA_ARGS__"},
			body:       "fmt __VA_ARGS__",
		},
		{
			definition: "LOG(fmt, args...) fmt args",
			name:       "LOG", isFunction: true, isVariadic: true,
			parameters: []string{"fmt", "args"},
			body:       "fmt args",
		},
		{definition: "STR(x) # x", name: "STR", isFunction: true, parameters: []string{"x"}, body: "#x"},
		{definition: "CAT(a, b) a ## b", name: "CAT", isFunction: true, parameters: []string{"a", "b"}, body: "a##b"},
		{definition: "int long", name: "int", body: "long"},
	}

	for _, tc := range testCases {
		m, err := parse(t, tc.definition)
		require.NoError(t, err, "definition: %q", tc.definition)
		require.NotNil(t, m)
		assert.Equal(t, tc.name, m.Name, "definition: %q", tc.definition)
		assert.Equal(t, tc.isFunction, m.IsFunction, "definition: %q", tc.definition)
		assert.Equal(t, tc.isVariadic, m.IsVariadic, "definition: %q", tc.definition)
		assert.Equal(t, tc.parameters, m.Parameters, "definition: %q", tc.definition)
		assert.Equal(t, tc.body, lexer.Join(m.Body), "definition: %q", tc.definition)
	}
}

func TestParseDefinitionOperators(t *testing.T) {
	m, err := parse(t, "STR(x) # x")
	require.NoError(t, err)
	assert.Equal(t, []lexer.TokenType{lexer.TokenType_PreprocessorStringize, lexer.TokenType_Identifier}, bodyTypes(m))

	m, err = parse(t, "CAT(a, b) a ## b")
	require.NoError(t, err)
	assert.Equal(t, []lexer.TokenType{lexer.TokenType_Identifier, lexer.TokenType_PreprocessorPaste, lexer.TokenType_Identifier}, bodyTypes(m))

	// '#' has no operand in an object-like macro
	m, err = parse(t, "HASH #x")
	require.NoError(t, err)
	assert.Equal(t, []lexer.TokenType{lexer.TokenType_Hash, lexer.TokenType_Identifier}, bodyTypes(m))
}

func TestParseDefinitionFatal(t *testing.T) {
	testCases := []struct {
		definition string
		expected   error
	}{
		{definition: "", expected: ErrMissingName},
		{definition: "123", expected: ErrMissingName},
		{definition: "defined 1", expected: ErrInvalidName},
		{definition: "F(x, x) x", expected: ErrDuplicateParameter},
		{definition: "F(..., x) x", expected: ErrMisplacedEllipsis},
		{definition: "F(args..., x) x", expected: ErrMisplacedEllipsis},
		{definition: "F(x", expected: ErrMalformedParameters},
		{definition: "F(1) x", expected: ErrMalformedParameters},
		{definition: "F(x y) x", expected: ErrMalformedParameters},
	}

	for _, tc := range testCases {
		m, err := parse(t, tc.definition)
		assert.Nil(t, m, "definition: %q", tc.definition)
		assert.ErrorIs(t, err, tc.expected, "definition: %q", tc.definition)
	}
}

func TestParseDefinitionRecoverable(t *testing.T) {
	testCases := []struct {
		definition string
		expected   error
		body       string
	}{
		{definition: "A ## x", expected: ErrPasteAtEdge, body: "x"},
		{definition: "F(x) x ##", expected: ErrPasteAtEdge, body: "x"},
		{definition: "F(x) #y", expected: ErrStringizeWithoutParameter, body: "#y"},
		{definition: "F(x) # 1", expected: ErrStringizeWithoutParameter, body: "# 1"},
	}

	for _, tc := range testCases {
		m, err := parse(t, tc.definition)
		assert.ErrorIs(t, err, tc.expected, "definition: %q", tc.definition)
		require.NotNil(t, m, "definition: %q", tc.definition)
		assert.Equal(t, tc.body, lexer.Join(m.Body), "definition: %q", tc.definition)
	}
}

func TestDefinition(t *testing.T) {
	for _, definition := range []string{
		"#define A",
		"#define A 1 + 2",
		"#define F() x",
		"#define F(a, b) a##b",
		"#define LOG(fmt, ...) fmt __VA_ARGS__",
		"#define LOG(fmt, args...) fmt args",
	} {
		tokens := lexer.Tokenize([]byte(definition), 1).Tokens()
		m, err := ParseDefinition(tokens[1:])
		require.NoError(t, err)
		assert.Equal(t, definition, m.Definition())
	}
}

func TestTable(t *testing.T) {
	table := NewTable()
	assert.False(t, table.IsDefined("A"))

	first := &Macro{Name: "A"}
	table.Define(first)
	table.Define(&Macro{Name: "B"})
	m, ok := table.Lookup("A")
	require.True(t, ok)
	assert.Same(t, first, m)

	second := &Macro{Name: "A", Body: []lexer.Token{{Type: lexer.TokenType_LiteralInteger, Content: "2"}}}
	table.Define(second)
	m, _ = table.Lookup("A")
	assert.Same(t, second, m, "redefinition replaces the macro")

	clone := table.Clone()
	table.Undef("A")
	table.Undef("UNKNOWN")
	assert.False(t, table.IsDefined("A"))
	assert.Equal(t, []string{"B"}, table.Names())
	assert.Equal(t, []string{"A", "B"}, clone.Names())
	assert.Equal(t, 2, clone.Len())
}

func TestParseDefines(t *testing.T) {
	testCases := []struct {
		definition string
		name       string
		isFunction bool
		body       string
	}{
		{definition: "FOO", name: "FOO", body: "1"},
		{definition: "-DFOO", name: "FOO", body: "1"},
		{definition: "HEX=0x2A", name: "HEX", body: "0x2A"},
		{definition: "EMPTY=", name: "EMPTY", body: ""},
		{definition: "STR=\"abc\"", name: "STR", body: `"abc"`},
		{definition: "FLT=3.14", name: "FLT", body: "3.14"},
		{definition: "EXPR=a = b", name: "EXPR", body: "a = b"},
		{definition: "SQ(x)=((x)*(x))", name: "SQ", isFunction: true, body: "((x)*(x))"},
	}

	for _, tc := range testCases {
		m, err := ParseDefine(tc.definition)
		require.NoError(t, err, "definition: %q", tc.definition)
		assert.Equal(t, tc.name, m.Name)
		assert.Equal(t, tc.isFunction, m.IsFunction)
		assert.Equal(t, tc.body, lexer.Join(m.Body))
		assert.Equal(t, lexer.CursorEOF, m.Location)
	}

	macros, err := ParseDefines([]string{"A=1", "-DBAD-NAME=1", "1X", "F(x=1", "B"})
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, err, ErrMalformedParameters)
	require.Len(t, macros, 2)
	assert.Equal(t, "A", macros[0].Name)
	assert.Equal(t, "B", macros[1].Name)
}
