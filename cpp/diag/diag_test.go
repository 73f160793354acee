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

package diag

import (
	"errors"
	"testing"

	"github.com/EngFlow/ccpp/cpp/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSample = errors.New("sample problem")

func TestDiagnosticError(t *testing.T) {
	testCases := []struct {
		diagnostic Diagnostic
		expected   string
	}{
		{
			diagnostic: Diagnostic{Severity: Error, Path: "a.h", Location: lexer.Cursor{Line: 3, Column: 7}, Err: errSample},
			expected:   "a.h:3:7: error: sample problem",
		},
		{
			diagnostic: Diagnostic{Severity: Warning, Location: lexer.CursorInit, Err: errSample},
			expected:   "<input>:1:1: warning: sample problem",
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.diagnostic.Error())
		assert.ErrorIs(t, tc.diagnostic, errSample)
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	assert.False(t, c.HasErrors())
	assert.NoError(t, c.Err())

	c.Report(Diagnostic{Severity: Warning, Err: errors.New("ignored")})
	assert.False(t, c.HasErrors())
	assert.NoError(t, c.Err())

	c.Report(Diagnostic{Severity: Error, Err: errSample})
	require.Len(t, c.All(), 2)
	assert.True(t, c.HasErrors())
	assert.ErrorIs(t, c.Err(), errSample)
}
