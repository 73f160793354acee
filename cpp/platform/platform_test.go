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

package platform

import (
	"slices"
	"testing"

	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/EngFlow/ccpp/cpp/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input   string
		want    Platform
		wantErr bool
	}{
		{input: "linux/x86_64", want: Platform{Linux, X86_64}},
		{input: "macos/arm64", want: Platform{OSX, Aarch64}},
		{input: "Windows/amd64", want: Platform{Windows, X86_64}},
		{input: "linux", want: Platform{OS: Linux}},
		{input: "/riscv64", want: Platform{Arch: RiscV64}},
		{input: "plan9/x86_64", wantErr: true},
		{input: "linux/z80", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValues(t *testing.T) {
	testCases := []struct {
		platform Platform
		defined  []string
		absent   []string
	}{
		{
			platform: Platform{Linux, X86_64},
			defined:  []string{"__linux__", "unix", "__x86_64__", "__amd64__", "__LP64__"},
			absent:   []string{"__aarch64__", "_WIN32", "__APPLE__"},
		},
		{
			platform: Platform{Linux, Aarch64},
			defined:  []string{"__linux__", "__aarch64__"},
			absent:   []string{"__x86_64__"},
		},
		{
			platform: Platform{OSX, Arm64e},
			defined:  []string{"__APPLE__", "__MACH__", "TARGET_OS_OSX", "__arm64e__", "__aarch64__"},
			absent:   []string{"unix", "__linux__"},
		},
		{
			platform: Platform{Windows, X86_64},
			defined:  []string{"_WIN32", "_WIN64", "_M_X64"},
			absent:   []string{"__LP64__", "unix"},
		},
		{
			platform: Platform{Windows, I386},
			defined:  []string{"_WIN32", "_M_IX86", "__i386__"},
			absent:   []string{"_WIN64"},
		},
		{
			platform: Platform{OS: Android},
			defined:  []string{"__ANDROID__", "__linux__"},
			absent:   []string{"__SIZEOF_POINTER__"},
		},
		{
			platform: Platform{Arch: Wasm32},
			defined:  []string{"__wasm__", "__wasm32__"},
			absent:   []string{"__EMSCRIPTEN__"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.platform.String(), func(t *testing.T) {
			values := tc.platform.Values()
			for _, name := range tc.defined {
				assert.Contains(t, values, name)
			}
			for _, name := range tc.absent {
				assert.NotContains(t, values, name)
			}
		})
	}
}

func TestDataModel(t *testing.T) {
	assert.Equal(t, "8", Platform{Linux, X86_64}.Values()["__SIZEOF_LONG__"])
	assert.Equal(t, "4", Platform{Windows, X86_64}.Values()["__SIZEOF_LONG__"])
	assert.Equal(t, "8", Platform{Windows, X86_64}.Values()["__SIZEOF_POINTER__"])
	assert.Equal(t, "4", Platform{Linux, Armv7}.Values()["__SIZEOF_POINTER__"])
}

func TestMacros(t *testing.T) {
	macros := Platform{Linux, X86_64}.Macros()
	require.NotEmpty(t, macros)
	assert.True(t, slices.IsSortedFunc(macros, func(a, b *macro.Macro) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	}))

	table := macro.NewTable()
	Platform{Linux, X86_64}.Define(table)
	m, ok := table.Lookup("__x86_64__")
	require.True(t, ok)
	assert.False(t, m.IsFunction)
	assert.Equal(t, "1", lexer.Join(m.Body))
	assert.Equal(t, len(macros), table.Len())
}

func TestCompare(t *testing.T) {
	platforms := []Platform{{Windows, X86_64}, {Linux, X86_64}, {Linux, Aarch64}}
	slices.SortFunc(platforms, Compare)
	assert.Equal(t, []Platform{{Linux, Aarch64}, {Linux, X86_64}, {Windows, X86_64}}, platforms)
}
