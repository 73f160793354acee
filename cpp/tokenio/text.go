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

package tokenio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/EngFlow/ccpp/cpp/lexer"
)

// WriteText writes the tokens as source text. Include markers become GCC
// style line markers ('# 1 "a.h" 1' on entry, '# 12 "main.c" 2' on return),
// mainPath names the file the stream was produced from.
func WriteText(w io.Writer, mainPath string, tokens []lexer.Token) error {
	bw := bufio.NewWriter(w)
	files := []string{mainPath}
	atLineStart := true
	lineMarker := func(line int, path string, flag int) {
		if !atLineStart {
			bw.WriteByte('\n')
		}
		fmt.Fprintf(bw, "# %d %s %d\n", line, strconv.Quote(path), flag)
		atLineStart = true
	}
	for i, token := range tokens {
		switch token.Type {
		case lexer.TokenType_IncludeBegin:
			files = append(files, token.Content)
			lineMarker(1, token.Content, 1)
		case lexer.TokenType_IncludeEnd:
			if len(files) > 1 {
				files = files[:len(files)-1]
			}
			if line := nextLine(tokens[i+1:]); line > 0 {
				lineMarker(line, files[len(files)-1], 2)
			}
		case lexer.TokenType_EOF:
		default:
			bw.WriteString(token.Content)
			atLineStart = token.Type == lexer.TokenType_Newline
		}
	}
	if !atLineStart {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// nextLine returns the line of the first token following an include, or 0
// if there is none in the current file.
func nextLine(tokens []lexer.Token) int {
	for _, token := range tokens {
		switch token.Type {
		case lexer.TokenType_IncludeBegin, lexer.TokenType_IncludeEnd:
			return 0
		case lexer.TokenType_EOF:
			return 0
		}
		if token.Location != lexer.CursorEOF {
			return token.Location.Line
		}
	}
	return 0
}

// WriteTokens writes one token per line as "line:column<TAB>type<TAB>content",
// with the content quoted.
func WriteTokens(w io.Writer, tokens []lexer.Token) error {
	bw := bufio.NewWriter(w)
	for _, token := range tokens {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", token.Location, token.Type, strconv.Quote(token.Content))
	}
	return bw.Flush()
}
