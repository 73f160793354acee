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

// Package macro holds macro definitions and the table they live in during a
// preprocessing run.
package macro

import (
	"maps"
	"slices"
	"strings"

	"github.com/EngFlow/ccpp/cpp/lexer"
)

// Name of the parameter collecting the variable arguments of a macro declared
// with a bare '...'.
const VariadicParameter = "__VA_ARGS__"

// Macro is a single macro definition.
type Macro struct {
	Name string
	// Defined with a parameter list, possibly empty: F() or F(a, b).
	IsFunction bool
	// The last parameter absorbs all remaining arguments.
	IsVariadic bool
	Parameters []string
	// Replacement list without surrounding whitespace. Whitespace inside is
	// collapsed to single tokens, and removed around '##' and after '#'.
	Body []lexer.Token
	// Computed on every use by the expander (__FILE__, __LINE__, ...).
	Builtin bool
	// Where the macro was defined. CursorEOF for command line and builtin macros.
	Location lexer.Cursor
}

// ParameterIndex returns the position of the named parameter or -1 if the
// macro has no such parameter.
func (m *Macro) ParameterIndex(name string) int {
	if !m.IsFunction {
		return -1
	}
	return slices.Index(m.Parameters, name)
}

// Definition renders the macro as the #define directive that would produce it.
func (m *Macro) Definition() string {
	var sb strings.Builder
	sb.WriteString("#define ")
	sb.WriteString(m.Name)
	if m.IsFunction {
		sb.WriteByte('(')
		for i, param := range m.Parameters {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch {
			case m.IsVariadic && i == len(m.Parameters)-1 && param == VariadicParameter:
				sb.WriteString("...")
			case m.IsVariadic && i == len(m.Parameters)-1:
				sb.WriteString(param + "...")
			default:
				sb.WriteString(param)
			}
		}
		sb.WriteByte(')')
	}
	if len(m.Body) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(lexer.Join(m.Body))
	}
	return sb.String()
}

// Table maps macro names to their definitions. A Table belongs to a single
// preprocessing run and is not safe for concurrent use.
type Table struct {
	macros map[string]*Macro
}

func NewTable() *Table {
	return &Table{macros: make(map[string]*Macro)}
}

// Define installs the macro, replacing any previous definition of the same name.
func (t *Table) Define(m *Macro) {
	t.macros[m.Name] = m
}

// Undef removes the definition of name. Undefining an unknown name does nothing.
func (t *Table) Undef(name string) {
	delete(t.macros, name)
}

func (t *Table) Lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

func (t *Table) IsDefined(name string) bool {
	_, ok := t.macros[name]
	return ok
}

func (t *Table) Len() int { return len(t.macros) }

// Names returns the names of all defined macros in lexicographic order.
func (t *Table) Names() []string {
	return slices.Sorted(maps.Keys(t.macros))
}

// Clone returns a copy of the table. Definitions are shared, they are never
// modified once installed.
func (t *Table) Clone() *Table {
	return &Table{macros: maps.Clone(t.macros)}
}
