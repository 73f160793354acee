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
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/EngFlow/ccpp/cpp/lexer"
)

// A valid macro identifier must follow these rules:
// * First character must be ‘_’ or a letter.
// * Subsequent characters may be ‘_’, letters, or decimal digits.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether name can be used as a macro name.
func IsIdentifier(name string) bool {
	return identifierRegex.MatchString(name)
}

// ParseDefine converts a -D style command line definition into a macro. Accepted
// forms are NAME (defined as 1), NAME=VALUE, NAME= (defined as empty) and
// NAME(PARAMS)=BODY. The "-D" prefix is tolerated.
func ParseDefine(definition string) (*Macro, error) {
	definition = strings.TrimPrefix(definition, "-D") // tolerate gcc/clang style
	head, body, hasBody := strings.Cut(definition, "=")
	if !hasBody {
		body = "1"
	}

	name := head
	if paren := strings.IndexByte(head, '('); paren >= 0 {
		name = head[:paren]
	}
	if !IsIdentifier(name) {
		return nil, fmt.Errorf("%w %q", ErrInvalidName, name)
	}

	line := lexer.Tokenize([]byte("#define "+head+" "+body), 1).Tokens()
	m, err := ParseDefinition(line[1:])
	if err != nil {
		return nil, err
	}
	m.Location = lexer.CursorEOF
	return m, nil
}

// ParseDefines converts a slice of -D style definitions into macros. Returns
// error if at least one definition failed to parse, the macros parsed
// successfully are returned regardless.
func ParseDefines(definitions []string) ([]*Macro, error) {
	var macros []*Macro
	var parsingErrors []error
	for _, d := range definitions {
		m, err := ParseDefine(d)
		if err != nil {
			parsingErrors = append(parsingErrors, fmt.Errorf("failed to parse: %v: %w", d, err))
			continue
		}
		macros = append(macros, m)
	}
	return macros, errors.Join(parsingErrors...)
}
