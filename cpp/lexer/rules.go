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
	"github.com/EngFlow/ccpp/internal/collections"
)

// charClass groups bytes that start the same kind of token. The scanner
// dispatches on the class of the first byte and then runs the state machine
// specific to that kind.
type charClass uint8

const (
	// Bytes that cannot start any token. They are skipped.
	classInvalid charClass = iota
	classNewline
	classSpace
	classLetter
	classDigit
	classDot
	classDoubleQuote
	classSingleQuote
	classSlash
	classPunctuator
)

var charClasses = func() (table [256]charClass) {
	for _, char := range []byte("\t\v\f\r ") {
		table[char] = classSpace
	}
	for char := 'a'; char <= 'z'; char++ {
		table[char] = classLetter
		table[char-'a'+'A'] = classLetter
	}
	table['_'] = classLetter
	for char := '0'; char <= '9'; char++ {
		table[char] = classDigit
	}
	for _, char := range []byte("()[]{},;:?+-*%=<>!&|^~#") {
		table[char] = classPunctuator
	}
	table['\n'] = classNewline
	table['.'] = classDot
	table['"'] = classDoubleQuote
	table['\''] = classSingleQuote
	table['/'] = classSlash
	return
}()

func isIdentifierChar(char byte) bool {
	class := charClasses[char]
	return class == classLetter || class == classDigit
}

func isHexDigit(char byte) bool {
	return charClasses[char] == classDigit || (char|0x20 >= 'a' && char|0x20 <= 'f')
}

// Punctuators ordered so that the longest spelling is tried first (maximal munch).
var punctuators = []struct {
	spelling  string
	tokenType TokenType
}{
	{"<<=", TokenType_OperatorShiftLeftAssign},
	{">>=", TokenType_OperatorShiftRightAssign},
	{"<=>", TokenType_OperatorSpaceship},
	{"...", TokenType_Ellipsis},
	{"->*", TokenType_ArrowStar},
	{"##", TokenType_HashHash},
	{"::", TokenType_ScopeResolution},
	{"->", TokenType_Arrow},
	{".*", TokenType_DotStar},
	{"++", TokenType_OperatorIncrement},
	{"--", TokenType_OperatorDecrement},
	{"+=", TokenType_OperatorPlusAssign},
	{"-=", TokenType_OperatorMinusAssign},
	{"*=", TokenType_OperatorStarAssign},
	{"/=", TokenType_OperatorSlashAssign},
	{"%=", TokenType_OperatorPercentAssign},
	{"==", TokenType_OperatorEqual},
	{"!=", TokenType_OperatorNotEqual},
	{"<=", TokenType_OperatorLessOrEqual},
	{">=", TokenType_OperatorGreaterOrEqual},
	{"&&", TokenType_OperatorLogicalAnd},
	{"||", TokenType_OperatorLogicalOr},
	{"<<", TokenType_OperatorShiftLeft},
	{">>", TokenType_OperatorShiftRight},
	{"&=", TokenType_OperatorBitAndAssign},
	{"|=", TokenType_OperatorBitOrAssign},
	{"^=", TokenType_OperatorBitXorAssign},
	{"(", TokenType_ParenthesisLeft},
	{")", TokenType_ParenthesisRight},
	{"[", TokenType_BracketLeft},
	{"]", TokenType_BracketRight},
	{"{", TokenType_BraceLeft},
	{"}", TokenType_BraceRight},
	{",", TokenType_Comma},
	{";", TokenType_Semicolon},
	{":", TokenType_Colon},
	{"?", TokenType_Question},
	{".", TokenType_Dot},
	{"#", TokenType_Hash},
	{"+", TokenType_OperatorPlus},
	{"-", TokenType_OperatorMinus},
	{"*", TokenType_OperatorStar},
	{"/", TokenType_OperatorSlash},
	{"%", TokenType_OperatorPercent},
	{"=", TokenType_OperatorAssign},
	{"<", TokenType_OperatorLess},
	{">", TokenType_OperatorGreater},
	{"!", TokenType_OperatorLogicalNot},
	{"&", TokenType_OperatorBitAnd},
	{"|", TokenType_OperatorBitOr},
	{"^", TokenType_OperatorBitXor},
	{"~", TokenType_OperatorBitNot},
}

var punctuatorSpellings = func() map[TokenType]string {
	spellings := make(map[TokenType]string, len(punctuators))
	for _, p := range punctuators {
		spellings[p.tokenType] = p.spelling
	}
	return spellings
}()

var directives = map[string]TokenType{
	"define":       TokenType_PreprocessorDefine,
	"elif":         TokenType_PreprocessorElif,
	"elifdef":      TokenType_PreprocessorElifdef,
	"elifndef":     TokenType_PreprocessorElifndef,
	"else":         TokenType_PreprocessorElse,
	"endif":        TokenType_PreprocessorEndif,
	"error":        TokenType_PreprocessorError,
	"if":           TokenType_PreprocessorIf,
	"ifdef":        TokenType_PreprocessorIfdef,
	"ifndef":       TokenType_PreprocessorIfndef,
	"include":      TokenType_PreprocessorInclude,
	"include_next": TokenType_PreprocessorIncludeNext,
	"line":         TokenType_PreprocessorLine,
	"pragma":       TokenType_PreprocessorPragma,
	"undef":        TokenType_PreprocessorUndef,
	"warning":      TokenType_PreprocessorWarning,
}

var keywords = collections.SetOf(
	"alignas", "alignof", "asm", "auto", "bool", "break", "case", "catch", "char", "char8_t", "char16_t",
	"char32_t", "class", "concept", "const", "consteval", "constexpr", "constinit", "const_cast", "continue",
	"co_await", "co_return", "co_yield", "decltype", "default", "delete", "do", "double", "dynamic_cast",
	"else", "enum", "explicit", "export", "extern", "false", "float", "for", "friend", "goto", "if", "inline",
	"int", "long", "mutable", "namespace", "new", "noexcept", "nullptr", "operator", "private", "protected",
	"public", "register", "reinterpret_cast", "requires", "restrict", "return", "short", "signed", "sizeof",
	"static", "static_assert", "static_cast", "struct", "switch", "template", "this", "thread_local", "throw",
	"true", "try", "typedef", "typeid", "typename", "union", "unsigned", "using", "virtual", "void",
	"volatile", "wchar_t", "while", "_Alignas", "_Alignof", "_Atomic", "_Bool", "_Complex", "_Generic",
	"_Imaginary", "_Noreturn", "_Static_assert", "_Thread_local",
)

// Identifiers that turn an immediately following quote into the prefix of a
// string or character literal.
var encodingPrefixes = collections.SetOf("L", "u", "U", "u8")

// Identifiers that turn an immediately following double quote into the prefix
// of a raw string literal.
var rawStringPrefixes = collections.SetOf("R", "LR", "uR", "UR", "u8R")
