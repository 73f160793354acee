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

package include

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter hides the headers matching any of the Exclude patterns
// (doublestar syntax, matched against the include spec as written).
type Filter struct {
	Resolver Resolver
	Exclude  []string
}

// NewFilter validates the patterns upfront so that matching can't fail later.
func NewFilter(r Resolver, exclude ...string) (*Filter, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return &Filter{Resolver: r, Exclude: exclude}, nil
}

func (f *Filter) excluded(spec string) bool {
	for _, pattern := range f.Exclude {
		if doublestar.MatchUnvalidated(pattern, spec) {
			return true
		}
	}
	return false
}

func (f *Filter) Resolve(spec string, quoted bool, relativeTo string) (string, bool) {
	if f.excluded(spec) {
		return "", false
	}
	return f.Resolver.Resolve(spec, quoted, relativeTo)
}

func (f *Filter) ResolveNext(spec string, current string) (string, bool) {
	if f.excluded(spec) {
		return "", false
	}
	if next, ok := f.Resolver.(NextResolver); ok {
		return next.ResolveNext(spec, current)
	}
	return "", false
}

func (f *Filter) Read(path string) ([]byte, error) {
	return f.Resolver.Read(path)
}

func (f *Filter) Close() error {
	return Close(f.Resolver)
}
