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

type TokenType int

const (
	// Special token type terminating every token stream.
	TokenType_EOF TokenType = iota

	// Single newline character '\n'. Newlines require special handling because
	// they mark the end of a preprocessor directive.
	TokenType_Newline

	// One or more whitespace characters, other than newlines. A multi-line
	// comment collapses to a single whitespace token.
	TokenType_Whitespace

	// Identifier, a letter or underscore followed by letters, digits or
	// underscores.
	TokenType_Identifier

	// Reserved C/C++ keyword, e.g. int, return, constexpr.
	TokenType_Keyword

	// Integer literal in base decimal, hexadecimal, octal or binary, e.g. 123,
	// 0x1A3F, 0755, 0b1101.
	TokenType_LiteralInteger

	// Floating literal, e.g. 1.5, 1e10, .5f.
	TokenType_LiteralFloat

	// Character literal, enclosed in single quotes, e.g. 'a', L'\n'.
	TokenType_LiteralChar

	// String literal, enclosed in double quotes, e.g. "example", u8"x", R"(raw)".
	TokenType_LiteralString

	// Punctuators.

	TokenType_ParenthesisLeft
	TokenType_ParenthesisRight
	TokenType_BracketLeft
	TokenType_BracketRight
	TokenType_BraceLeft
	TokenType_BraceRight
	TokenType_Comma
	TokenType_Semicolon
	TokenType_Colon
	TokenType_ScopeResolution
	TokenType_Question
	TokenType_Dot
	TokenType_Ellipsis
	TokenType_Arrow
	TokenType_ArrowStar
	TokenType_DotStar
	TokenType_Hash
	TokenType_HashHash

	// Operators.

	TokenType_OperatorPlus
	TokenType_OperatorMinus
	TokenType_OperatorStar
	TokenType_OperatorSlash
	TokenType_OperatorPercent
	TokenType_OperatorIncrement
	TokenType_OperatorDecrement
	TokenType_OperatorAssign
	TokenType_OperatorPlusAssign
	TokenType_OperatorMinusAssign
	TokenType_OperatorStarAssign
	TokenType_OperatorSlashAssign
	TokenType_OperatorPercentAssign
	TokenType_OperatorEqual
	TokenType_OperatorNotEqual
	TokenType_OperatorLess
	TokenType_OperatorGreater
	TokenType_OperatorLessOrEqual
	TokenType_OperatorGreaterOrEqual
	TokenType_OperatorSpaceship
	TokenType_OperatorLogicalAnd
	TokenType_OperatorLogicalOr
	TokenType_OperatorLogicalNot
	TokenType_OperatorBitAnd
	TokenType_OperatorBitOr
	TokenType_OperatorBitXor
	TokenType_OperatorBitNot
	TokenType_OperatorShiftLeft
	TokenType_OperatorShiftRight
	TokenType_OperatorBitAndAssign
	TokenType_OperatorBitOrAssign
	TokenType_OperatorBitXorAssign
	TokenType_OperatorShiftLeftAssign
	TokenType_OperatorShiftRightAssign

	// Preprocessor directives, a hash '#' at the beginning of a line followed by
	// the directive name (with optional whitespace characters between). Every
	// token after the directive name up to the newline is produced in directive
	// mode.

	TokenType_PreprocessorDefine
	TokenType_PreprocessorElif
	TokenType_PreprocessorElifdef
	TokenType_PreprocessorElifndef
	TokenType_PreprocessorElse
	TokenType_PreprocessorEndif
	TokenType_PreprocessorError
	TokenType_PreprocessorIf
	TokenType_PreprocessorIfdef
	TokenType_PreprocessorIfndef
	TokenType_PreprocessorInclude
	TokenType_PreprocessorIncludeNext
	TokenType_PreprocessorLine
	TokenType_PreprocessorPragma
	TokenType_PreprocessorUndef
	TokenType_PreprocessorWarning
	// A lone '#' on a line.
	TokenType_PreprocessorNull
	// '#' followed by a word that is not a known directive, or by something
	// that is not a word at all (e.g. line markers "# 1 file.c").
	TokenType_PreprocessorUnknown

	// Directive-mode tokens.

	// Identifier or keyword inside a directive line.
	TokenType_PreprocessorIdentifier
	// The special keyword "defined", used in preprocessor conditional
	// expressions.
	TokenType_PreprocessorDefined
	// Preprocessor system include path, enclosed in angle brackets, e.g.
	// <stdio.h>.
	TokenType_PreprocessorSystemPath
	// Stringize operator '#' inside a directive line.
	TokenType_PreprocessorStringize
	// Token paste operator '##' inside a directive line.
	TokenType_PreprocessorPaste

	// Markers emitted by the preprocessor around the content of an included
	// file. Content holds the resolved path.

	TokenType_IncludeBegin
	TokenType_IncludeEnd
)

var tokenTypeNames = map[TokenType]string{
	TokenType_EOF:                     "end of file",
	TokenType_Newline:                 "newline",
	TokenType_Whitespace:              "whitespace",
	TokenType_Identifier:              "identifier",
	TokenType_Keyword:                 "keyword",
	TokenType_LiteralInteger:          "integer literal",
	TokenType_LiteralFloat:            "floating literal",
	TokenType_LiteralChar:             "'character literal'",
	TokenType_LiteralString:           `"string literal"`,
	TokenType_PreprocessorDefine:      "directive '#define'",
	TokenType_PreprocessorElif:        "directive '#elif'",
	TokenType_PreprocessorElifdef:     "directive '#elifdef'",
	TokenType_PreprocessorElifndef:    "directive '#elifndef'",
	TokenType_PreprocessorElse:        "directive '#else'",
	TokenType_PreprocessorEndif:       "directive '#endif'",
	TokenType_PreprocessorError:       "directive '#error'",
	TokenType_PreprocessorIf:          "directive '#if'",
	TokenType_PreprocessorIfdef:       "directive '#ifdef'",
	TokenType_PreprocessorIfndef:      "directive '#ifndef'",
	TokenType_PreprocessorInclude:     "directive '#include'",
	TokenType_PreprocessorIncludeNext: "directive '#include_next'",
	TokenType_PreprocessorLine:        "directive '#line'",
	TokenType_PreprocessorPragma:      "directive '#pragma'",
	TokenType_PreprocessorUndef:       "directive '#undef'",
	TokenType_PreprocessorWarning:     "directive '#warning'",
	TokenType_PreprocessorNull:        "null directive '#'",
	TokenType_PreprocessorUnknown:     "unknown directive",
	TokenType_PreprocessorIdentifier:  "directive identifier",
	TokenType_PreprocessorDefined:     "keyword 'defined'",
	TokenType_PreprocessorSystemPath:  "<system_include_path>",
	TokenType_PreprocessorStringize:   "stringize operator '#'",
	TokenType_PreprocessorPaste:       "paste operator '##'",
	TokenType_IncludeBegin:            "begin of included file",
	TokenType_IncludeEnd:              "end of included file",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	if spelling, ok := punctuatorSpellings[t]; ok {
		return "symbol '" + spelling + "'"
	}
	return "unknown token"
}

func (t TokenType) IsPreprocessorDirective() bool {
	return t >= TokenType_PreprocessorDefine && t <= TokenType_PreprocessorUnknown
}

// IsPunctuator reports whether t is a punctuator or an operator.
func (t TokenType) IsPunctuator() bool {
	return t >= TokenType_ParenthesisLeft && t <= TokenType_OperatorShiftRightAssign
}

// IsIdentifierLike reports whether tokens of this type may name a macro.
func (t TokenType) IsIdentifierLike() bool {
	switch t {
	case TokenType_Identifier, TokenType_Keyword, TokenType_PreprocessorIdentifier, TokenType_PreprocessorDefined:
		return true
	default:
		return false
	}
}

// IsSpace reports whether the token carries no meaning apart from separating
// other tokens.
func (t TokenType) IsSpace() bool {
	return t == TokenType_Whitespace || t == TokenType_Newline
}

type Token struct {
	Type     TokenType
	Location Cursor
	Content  string
	// Set during macro expansion on an identifier naming a macro that was
	// being expanded where the identifier appeared. It is never expanded again.
	NoExpand bool
}

var TokenEOF = Token{Type: TokenType_EOF}

func (t Token) String() string {
	return t.Type.String() + " " + `"` + t.Content + `" at ` + t.Location.String()
}

// Ordinary converts a token produced in directive mode into the equivalent
// token of the ordinary text, e.g. when the body of a macro definition is
// substituted into a source line. The stringize and paste operators are kept,
// the macro expander consumes them.
func (t Token) Ordinary() Token {
	switch t.Type {
	case TokenType_PreprocessorIdentifier, TokenType_PreprocessorDefined:
		if keywords.Contains(t.Content) {
			t.Type = TokenType_Keyword
		} else {
			t.Type = TokenType_Identifier
		}
	case TokenType_PreprocessorSystemPath:
		// Only reachable for malformed input, e.g. '#define X <a.h>' never
		// produces it. Keep the text, classification is lost.
		t.Type = TokenType_Identifier
	}
	return t
}

// Operator converts leftover stringize and paste operators into plain
// punctuators.
func (t Token) Operator() Token {
	switch t.Type {
	case TokenType_PreprocessorStringize:
		t.Type = TokenType_Hash
	case TokenType_PreprocessorPaste:
		t.Type = TokenType_HashHash
	}
	return t
}
