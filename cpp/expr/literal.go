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

package expr

import (
	"errors"
	"strconv"
	"strings"
)

// parseIntLiteral parses an integer literal in decimal, octal, hex or binary
// form, ignoring C suffixes. Values above the int64 range wrap around, as if
// the literal was unsigned.
func parseIntLiteral(literal string) (int64, error) {
	digits := strings.TrimRightFunc(literal, func(r rune) bool {
		return r == 'u' || r == 'U' || r == 'l' || r == 'L' || r == 'z' || r == 'Z'
	})
	// 0o17 and 1_000 are not C literals, so the prefix is never left to strconv
	base := 10
	switch {
	case len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X'):
		base, digits = 16, digits[2:]
	case len(digits) > 1 && digits[0] == '0' && (digits[1] == 'b' || digits[1] == 'B'):
		base, digits = 2, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base, digits = 8, digits[1:]
	}
	value, err := strconv.ParseUint(digits, base, 64)
	return int64(value), err
}

var errInvalidCharLiteral = errors.New("invalid character literal")

// parseCharLiteral returns the value of a character literal. Multi-character
// literals combine their characters, 8 bits each, as GCC does.
func parseCharLiteral(literal string) (int64, error) {
	start := strings.IndexByte(literal, '\'')
	if start < 0 || len(literal) < start+3 || literal[len(literal)-1] != '\'' {
		return 0, errInvalidCharLiteral
	}
	body := literal[start+1 : len(literal)-1]

	var value int64
	for body != "" {
		var char int64
		switch {
		case len(body) > 1 && body[0] == '\\' && body[1] >= '0' && body[1] <= '7':
			// octal escapes have one to three digits
			end := 1
			for end < len(body) && end < 4 && body[end] >= '0' && body[end] <= '7' {
				char = char*8 + int64(body[end]-'0')
				end++
			}
			body = body[end:]
		default:
			r, _, tail, err := strconv.UnquoteChar(body, '\'')
			if err != nil {
				return 0, err
			}
			char = int64(r)
			body = tail
		}
		value = value<<8 | char
	}
	return value, nil
}
