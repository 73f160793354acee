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
	"fmt"
	"sort"
)

// Position in the source code. Line and Column are 1-based, which is natural for humans.
type Cursor struct {
	Line, Column int
}

var (
	// Initial cursor position, at the beginning of the file or string.
	CursorInit = Cursor{Line: 1, Column: 1}
	// Special cursor value indicating the end of the file or string.
	CursorEOF = Cursor{}
)

func (c Cursor) String() string {
	if c == CursorEOF {
		return "EOF"
	}
	return fmt.Sprintf("%d:%d", c.Line, c.Column)
}

// lineTable maps byte offsets of the spliced input (line continuations
// removed) back to physical source positions.
type lineTable struct {
	// Offsets in the spliced input where a physical line begins. A physical
	// line begins after every real newline and at every removed line
	// continuation.
	starts    []int
	firstLine int
}

func (lt lineTable) cursorAt(offset int) Cursor {
	// index of the last line start <= offset
	index := sort.Search(len(lt.starts), func(i int) bool { return lt.starts[i] > offset }) - 1
	return Cursor{Line: lt.firstLine + index, Column: offset - lt.starts[index] + 1}
}

// splice removes line continuations (a backslash followed by a newline,
// optionally with a carriage return between) and records where physical lines
// begin, so that token positions still refer to the original source.
func splice(data []byte, firstLine int) ([]byte, lineTable) {
	table := lineTable{starts: []int{0}, firstLine: firstLine}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		char := data[i]
		if char == '\\' {
			switch {
			case i+1 < len(data) && data[i+1] == '\n':
				i++
				table.starts = append(table.starts, len(out))
				continue
			case i+2 < len(data) && data[i+1] == '\r' && data[i+2] == '\n':
				i += 2
				table.starts = append(table.starts, len(out))
				continue
			}
		}
		out = append(out, char)
		if char == '\n' {
			table.starts = append(table.starts, len(out))
		}
	}
	return out, table
}
