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

package cpp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/ccpp/cpp/cond"
	"github.com/EngFlow/ccpp/cpp/diag"
	"github.com/EngFlow/ccpp/cpp/expand"
	"github.com/EngFlow/ccpp/cpp/expr"
	"github.com/EngFlow/ccpp/cpp/include"
	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/EngFlow/ccpp/cpp/platform"
)

const mainPath = "/src/main.c"

func newResolver(files map[string]string, dirs ...string) *include.MapResolver {
	data := make(map[string][]byte, len(files))
	for name, content := range files {
		data[name] = []byte(content)
	}
	return &include.MapResolver{Files: data, Dirs: dirs}
}

// run preprocesses mainPath, which is expected to succeed.
func run(t *testing.T, options Options) ([]lexer.Token, *Preprocessor) {
	t.Helper()
	p, err := New(options)
	require.NoError(t, err)
	stream, err := p.Preprocess(mainPath)
	require.NoError(t, err)
	return stream.Tokens(), p
}

func words(tokens []lexer.Token) []string {
	return lexer.Contents(lexer.Significant(tokens))
}

func diagnosticErrors(p *Preprocessor) []error {
	var errs []error
	for _, d := range p.Diagnostics() {
		errs = append(errs, d.Err)
	}
	return errs
}

func TestPreprocessSource(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected []string
	}{
		{
			name:     "plain text",
			source:   "int main() { return 0; }\n",
			expected: []string{"int", "main", "(", ")", "{", "return", "0", ";", "}"},
		},
		{
			name:     "conditional nesting",
			source:   "#if 0\n#if 1\nA\n#endif\nB\n#endif\nC",
			expected: []string{"C"},
		},
		{
			name:     "defined operator",
			source:   "#define X 1\n#if defined(X) && !defined(Y)\nok\n#endif",
			expected: []string{"ok"},
		},
		{
			name:     "defined without parentheses",
			source:   "#define X\n#if defined X\nok\n#endif",
			expected: []string{"ok"},
		},
		{
			name:     "defined produced by a macro",
			source:   "#define X\n#define HAS_X defined(X)\n#if HAS_X\nok\n#endif",
			expected: []string{"ok"},
		},
		{
			name:     "self reference",
			source:   "#define A A+1\nA",
			expected: []string{"A", "+", "1"},
		},
		{
			name:     "self reference passed as argument",
			source:   "#define A A+1\n#define F(x) x\nF(A)\n",
			expected: []string{"A", "+", "1"},
		},
		{
			name:     "function-like macro without arguments",
			source:   "#define F(x) x*2\nint F;",
			expected: []string{"int", "F", ";"},
		},
		{
			name:     "variadic",
			source:   "#define LOG(fmt, ...) fmt __VA_ARGS__\nLOG(\"x\", a, b, c)",
			expected: []string{`"x"`, "a", ",", "b", ",", "c"},
		},
		{
			name:     "stringize",
			source:   "#define STR(x) #x\nSTR(hello world)",
			expected: []string{`"hello world"`},
		},
		{
			name:     "paste",
			source:   "#define CAT(a,b) a##b\nCAT(foo,bar)",
			expected: []string{"foobar"},
		},
		{
			name:     "invocation spanning lines",
			source:   "#define ADD(a, b) a + b\nADD(1,\n2) end",
			expected: []string{"1", "+", "2", "end"},
		},
		{
			name:     "undef",
			source:   "#define X 1\nX\n#undef X\nX",
			expected: []string{"1", "X"},
		},
		{
			name:     "redefinition",
			source:   "#define X 1\n#define X 2\nX",
			expected: []string{"2"},
		},
		{
			name:     "ifdef and ifndef",
			source:   "#define X\n#ifdef X\na\n#endif\n#ifndef X\nb\n#endif\n#ifndef Y\nc\n#endif",
			expected: []string{"a", "c"},
		},
		{
			name:     "elif chain",
			source:   "#define V 2\n#if V == 1\none\n#elif V == 2\ntwo\n#elif V == 2\nagain\n#else\nother\n#endif",
			expected: []string{"two"},
		},
		{
			name:     "else",
			source:   "#if 0\na\n#else\nb\n#endif",
			expected: []string{"b"},
		},
		{
			name:     "elifdef and elifndef",
			source:   "#ifdef A\na\n#elifdef B\nb\n#elifndef C\nc\n#endif",
			expected: []string{"c"},
		},
		{
			name:     "nested active",
			source:   "#if 1\n#if 0\na\n#else\nb\n#endif\nc\n#endif",
			expected: []string{"b", "c"},
		},
		{
			name:     "undefined identifier is zero",
			source:   "#if UNDEFINED\na\n#elif !UNDEFINED\nb\n#endif",
			expected: []string{"b"},
		},
		{
			name:     "unknown function in condition",
			source:   "#if __has_feature(modules)\na\n#else\nb\n#endif",
			expected: []string{"b"},
		},
		{
			name:     "true and false",
			source:   "#if true && !false\nok\n#endif",
			expected: []string{"ok"},
		},
		{
			name:     "null and line directives",
			source:   "#\n#line 10\nok",
			expected: []string{"ok"},
		},
		{
			name:     "adjacent string literals",
			source:   "#define GREETING \"hello\" \" \"\nGREETING \"world\"",
			expected: []string{`"hello world"`},
		},
		{
			name:     "adjacent string literals on separate lines",
			source:   "const char *s = \"abc\"\n  \"def\";\n",
			expected: []string{"const", "char", "*", "s", "=", `"abcdef"`, ";"},
		},
		{
			name:     "comments",
			source:   "a /* b */ c // d\n#define X /* comment */ 1\nX",
			expected: []string{"a", "c", "1"},
		},
		{
			name:     "line continuation in directive",
			source:   "#define LONG 1 + \\\n 2\nLONG",
			expected: []string{"1", "+", "2"},
		},
		{
			name:     "directives in inactive region are not processed",
			source:   "#define Y\n#if 0\n#define X 1\n#undef Y\n#endif\n#ifdef X\nx\n#endif\n#ifdef Y\ny\n#endif",
			expected: []string{"y"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(Options{Resolver: newResolver(nil)})
			require.NoError(t, err)
			stream, err := p.PreprocessSource("main.c", []byte(tc.source))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, words(stream.Tokens()))
		})
	}
}

func TestPreprocessDiagnostics(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected []string
		severity diag.Severity
		err      error
	}{
		{
			name:     "division by zero",
			source:   "#if 1/0\nA\n#endif\nB",
			expected: []string{"B"},
			severity: diag.Error,
			err:      expr.ErrDivisionByZero,
		},
		{
			name:     "syntax error in condition",
			source:   "#if 1 +\nA\n#endif\nB",
			expected: []string{"B"},
			severity: diag.Error,
			err:      expr.ErrSyntax,
		},
		{
			name:     "missing condition",
			source:   "#if\nA\n#endif\nB",
			expected: []string{"B"},
			severity: diag.Error,
			err:      expr.ErrMissingExpression,
		},
		{
			name:     "unknown directive",
			source:   "#foo bar\nok",
			expected: []string{"ok"},
			severity: diag.Warning,
			err:      ErrUnknownDirective,
		},
		{
			name:     "endif without if",
			source:   "#endif\nok",
			expected: []string{"ok"},
			severity: diag.Error,
			err:      cond.ErrUnmatchedDirective,
		},
		{
			name:     "else without if",
			source:   "#else\nok",
			expected: []string{"ok"},
			severity: diag.Error,
			err:      cond.ErrUnmatchedDirective,
		},
		{
			name:     "elif without if",
			source:   "#elif 1\nok",
			expected: []string{"ok"},
			severity: diag.Error,
			err:      cond.ErrUnmatchedDirective,
		},
		{
			name:     "else after else",
			source:   "#if 0\n#else\nx\n#else\ny\n#endif",
			expected: []string{"x"},
			severity: diag.Error,
			err:      cond.ErrElseAfterElse,
		},
		{
			name:     "unterminated if",
			source:   "#if 1\nok",
			expected: []string{"ok"},
			severity: diag.Error,
			err:      cond.ErrUnterminatedCondition,
		},
		{
			name:     "error directive",
			source:   "#error stop here\nok",
			expected: []string{"ok"},
			severity: diag.Error,
			err:      ErrErrorDirective,
		},
		{
			name:     "warning directive",
			source:   "#warning careful\nok",
			expected: []string{"ok"},
			severity: diag.Warning,
			err:      ErrWarningDirective,
		},
		{
			name:     "missing include",
			source:   "#include \"missing.h\"\nok",
			expected: []string{"ok"},
			severity: diag.Error,
			err:      include.ErrNotFound,
		},
		{
			name:     "malformed include",
			source:   "#include 42\nok",
			expected: []string{"ok"},
			severity: diag.Error,
			err:      ErrMalformedInclude,
		},
		{
			name:     "ifdef without name",
			source:   "#ifdef\nx\n#endif\nok",
			expected: []string{"ok"},
			severity: diag.Error,
			err:      ErrMacroNameMissing,
		},
		{
			name:     "unterminated invocation",
			source:   "#define F(x) x\nF(1, 2\n",
			expected: []string{"F", "(", "1", ",", "2"},
			severity: diag.Error,
			err:      expand.ErrUnterminatedInvocation,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(Options{Resolver: newResolver(nil)})
			require.NoError(t, err)
			stream, err := p.PreprocessSource("main.c", []byte(tc.source))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, words(stream.Tokens()))

			diagnostics := p.Diagnostics()
			require.Len(t, diagnostics, 1, "diagnostics: %v", diagnostics)
			assert.Equal(t, tc.severity, diagnostics[0].Severity)
			assert.ErrorIs(t, diagnostics[0], tc.err)
			assert.Equal(t, "main.c", diagnostics[0].Path)
		})
	}
}

func TestInactiveRegionIsNotDiagnosed(t *testing.T) {
	p, err := New(Options{Resolver: newResolver(nil)})
	require.NoError(t, err)
	_, err = p.PreprocessSource("main.c", []byte("#if 0\n#error no\n#foo\n#include \"missing.h\"\n#if 1/0\n#endif\n#endif\n"))
	require.NoError(t, err)
	assert.Empty(t, p.Diagnostics())
	assert.NoError(t, p.Err())
}

func TestIncludeGuardDedup(t *testing.T) {
	tokens, p := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:   "#include \"a.h\"\n#include \"a.h\"\n#include <a.h>\nmain\n",
		"/src/a.h": "A\n",
		"/inc/a.h": "system\n",
	}, "/inc")})
	assert.Equal(t, []string{"A", "system", "main"}, words(tokens))
	assert.Empty(t, p.Diagnostics())

	var markers []lexer.Token
	for _, token := range tokens {
		if token.Type == lexer.TokenType_IncludeBegin || token.Type == lexer.TokenType_IncludeEnd {
			markers = append(markers, token)
		}
	}
	assert.Equal(t, []lexer.Token{
		{Type: lexer.TokenType_IncludeBegin, Location: lexer.Cursor{Line: 1, Column: 1}, Content: "/src/a.h"},
		{Type: lexer.TokenType_IncludeEnd, Location: lexer.Cursor{Line: 1, Column: 1}, Content: "/src/a.h"},
		{Type: lexer.TokenType_IncludeBegin, Location: lexer.Cursor{Line: 3, Column: 1}, Content: "/inc/a.h"},
		{Type: lexer.TokenType_IncludeEnd, Location: lexer.Cursor{Line: 3, Column: 1}, Content: "/inc/a.h"},
	}, markers)
}

func TestIncludedContentLocations(t *testing.T) {
	tokens, _ := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:   "first\n#include \"a.h\"\nlast\n",
		"/src/a.h": "\n\nheader\n",
	})})
	significant := lexer.Significant(tokens)
	require.Len(t, significant, 3)
	assert.Equal(t, lexer.Cursor{Line: 1, Column: 1}, significant[0].Location)
	assert.Equal(t, lexer.Cursor{Line: 3, Column: 1}, significant[1].Location)
	assert.Equal(t, lexer.Cursor{Line: 3, Column: 1}, significant[2].Location)
}

func TestIncludeSharesMacros(t *testing.T) {
	tokens, _ := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:        "#define PREFIX pre\n#include <config.h>\nVALUE\n",
		"/inc/config.h": "#define VALUE PREFIX value\nPREFIX\n",
	}, "/inc")})
	assert.Equal(t, []string{"pre", "pre", "value"}, words(tokens))
}

func TestComputedInclude(t *testing.T) {
	tokens, p := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:            "#define LOCAL \"local.h\"\n#define SYSTEM <sys/system.h>\n#include LOCAL\n#include SYSTEM\n",
		"/src/local.h":      "local\n",
		"/inc/sys/system.h": "system\n",
	}, "/inc")})
	assert.Equal(t, []string{"local", "system"}, words(tokens))
	assert.Empty(t, p.Diagnostics())
}

func TestIncludeNext(t *testing.T) {
	tokens, p := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:         "#include <limits.h>\n",
		"/wrap/limits.h": "#include_next <limits.h>\nwrapped\n",
		"/sys/limits.h":  "system\n",
	}, "/wrap", "/sys")})
	assert.Equal(t, []string{"system", "wrapped"}, words(tokens))
	assert.Empty(t, p.Diagnostics())
}

func TestHasInclude(t *testing.T) {
	tokens, p := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:       "#if __has_include(\"a.h\") && !__has_include(<missing.h>)\nyes\n#endif\n#if __has_include(<stdio.h>)\nstdio\n#endif\n#ifdef __has_include\nhas\n#endif\n",
		"/src/a.h":     "",
		"/inc/stdio.h": "",
	}, "/inc")})
	assert.Equal(t, []string{"yes", "stdio", "has"}, words(tokens))
	assert.Empty(t, p.Diagnostics())
}

func TestRecursiveInclude(t *testing.T) {
	tokens, p := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:   "#include \"a.h\"\n",
		"/src/a.h": "#include \"a.h\"\nA\n",
	})})
	assert.Equal(t, []string{"A"}, words(tokens))
	require.Len(t, p.Diagnostics(), 1)
	assert.ErrorIs(t, p.Diagnostics()[0], ErrRecursiveInclude)
	assert.Equal(t, "/src/a.h", p.Diagnostics()[0].Path)
}

func TestPragmaOnce(t *testing.T) {
	tokens, p := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:   "#include \"a.h\"\n",
		"/src/a.h": "#pragma once\n#include \"a.h\"\nA\n",
	})})
	assert.Equal(t, []string{"A"}, words(tokens))
	assert.Empty(t, p.Diagnostics())
}

func TestHeaders(t *testing.T) {
	_, p := run(t, Options{Resolver: newResolver(map[string]string{
		mainPath:   "#pragma once\n#include \"b.h\"\n#include <a.h>\n#include \"missing.h\"\n",
		"/src/b.h": "#include \"a.h\"\n",
		"/src/a.h": "a\n",
		"/inc/a.h": "system\n",
	}, "/inc")})
	assert.Equal(t, []string{"/inc/a.h", "/src/a.h", "/src/b.h"}, p.Headers())
}

func TestIncludeDepthExceeded(t *testing.T) {
	resolver := newResolver(map[string]string{
		mainPath:   "#include \"a.h\"\n",
		"/src/a.h": "#include \"b.h\"\n",
		"/src/b.h": "#include \"c.h\"\n",
		"/src/c.h": "c\n",
	})
	p, err := New(Options{Resolver: resolver, MaxIncludeDepth: 2})
	require.NoError(t, err)
	_, err = p.Preprocess(mainPath)
	assert.ErrorIs(t, err, ErrIncludeDepthExceeded)

	p, err = New(Options{Resolver: resolver, MaxIncludeDepth: 3})
	require.NoError(t, err)
	stream, err := p.Preprocess(mainPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, words(stream.Tokens()))
}

func TestExpansionDepthExceeded(t *testing.T) {
	p, err := New(Options{Resolver: newResolver(nil), MaxExpansionDepth: 3})
	require.NoError(t, err)
	_, err = p.PreprocessSource("main.c", []byte("#define A B\n#define B C\n#define C D\n#define D E\nA\n"))
	assert.ErrorIs(t, err, expand.ErrExpansionTooDeep)

	_, err = p.PreprocessSource("main.c", []byte("#define A B\n#define B C\nA\n"))
	assert.NoError(t, err)
}

func TestMissingMainFile(t *testing.T) {
	p, err := New(Options{Resolver: newResolver(nil)})
	require.NoError(t, err)
	_, err = p.Preprocess("/nope.c")
	assert.ErrorIs(t, err, include.ErrNotFound)
}

func TestBuiltinMacros(t *testing.T) {
	p, err := New(Options{Resolver: newResolver(nil)})
	require.NoError(t, err)
	stream, err := p.PreprocessSource("dir/main.c", []byte("__FILE__\n__LINE__\n\n__LINE__ __COUNTER__ __COUNTER__\n#define HERE __LINE__\nHERE\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{`"dir/main.c"`, "2", "4", "0", "1", "6"}, words(stream.Tokens()))
}

func TestOptions(t *testing.T) {
	p, err := New(Options{
		Resolver:  newResolver(nil),
		Defines:   []string{"FOO=42", "BAR", "MAX(a,b)=((a)>(b)?(a):(b))"},
		Undefines: []string{"BAR"},
		Platform:  platform.Platform{OS: platform.Linux, Arch: platform.X86_64},
	})
	require.NoError(t, err)
	stream, err := p.PreprocessSource("main.c", []byte("FOO BAR MAX(1,2)\n#if defined(__linux__) && defined(__x86_64__) && !defined(_WIN32)\non_linux\n#endif\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "BAR", "(", "(", "1", ")", ">", "(", "2", ")", "?", "(", "1", ")", ":", "(", "2", ")", ")", "on_linux"}, words(stream.Tokens()))
}

type closingResolver struct {
	*include.MapResolver
	closed int
}

func (r *closingResolver) Close() error {
	r.closed++
	return nil
}

func TestCloseReleasesResolver(t *testing.T) {
	resolver := &closingResolver{MapResolver: newResolver(map[string]string{mainPath: "#include <a.h>\n", "/inc/a.h": "a\n"}, "/inc")}
	p, err := New(Options{Resolver: include.Chain{resolver}})
	require.NoError(t, err)
	stream, err := p.Preprocess(mainPath)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.Equal(t, 1, resolver.closed)
	assert.Equal(t, []string{"a"}, words(stream.Tokens()))

	p, err = New(Options{IncludePaths: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(Options{Resolver: newResolver(nil), Defines: []string{"1BAD"}})
	assert.Error(t, err)

	_, err = New(Options{Resolver: newResolver(nil), Undefines: []string{"not a name"}})
	assert.Error(t, err)

	_, err = New(Options{IncludePaths: []string{"include/[a"}})
	assert.Error(t, err)
}

func TestStartLine(t *testing.T) {
	p, err := New(Options{Resolver: newResolver(nil), StartLine: 10})
	require.NoError(t, err)
	stream, err := p.PreprocessSource("main.c", []byte("a\nb\n"))
	require.NoError(t, err)
	significant := lexer.Significant(stream.Tokens())
	require.Len(t, significant, 2)
	assert.Equal(t, 10, significant[0].Location.Line)
	assert.Equal(t, 11, significant[1].Location.Line)
}

func TestRunsAreIndependent(t *testing.T) {
	p, err := New(Options{Resolver: newResolver(nil)})
	require.NoError(t, err)

	stream, err := p.PreprocessSource("a.c", []byte("#define X 1\n__COUNTER__ X\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, words(stream.Tokens()))

	stream, err = p.PreprocessSource("b.c", []byte("__COUNTER__ X\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "X"}, words(stream.Tokens()))
}

func TestMacros(t *testing.T) {
	p, err := New(Options{Resolver: newResolver(nil)})
	require.NoError(t, err)
	_, err = p.PreprocessSource("main.c", []byte("#define X 1\n#define Y 2\n#undef Y\n"))
	require.NoError(t, err)

	macros := p.Macros()
	assert.True(t, macros.IsDefined("X"))
	assert.False(t, macros.IsDefined("Y"))
	assert.True(t, macros.IsDefined("__FILE__"))

	macros.Undef("X")
	assert.True(t, p.Macros().IsDefined("X"))
}

func TestPreprocessFromDisk(t *testing.T) {
	root := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("src/main.c", "#include \"local.h\"\n#include <lib/api.h>\nmain\n")
	write("src/local.h", "local\n")
	write("third_party/lib/include/lib/api.h", "api\n")

	p, err := New(Options{IncludePaths: []string{filepath.Join(root, "third_party", "*", "include")}})
	require.NoError(t, err)
	stream, err := p.Preprocess(filepath.Join(root, "src", "main.c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "api", "main"}, words(stream.Tokens()))
	assert.Empty(t, p.Diagnostics())
}
