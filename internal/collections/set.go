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

package collections

import (
	"iter"
	"maps"
	"slices"
)

// Set of comparable values. The zero value is an empty set that must not be
// added to; use SetOf or a composite literal.
type Set[T comparable] map[T]struct{}

func SetOf[T comparable](elems ...T) Set[T] {
	s := make(Set[T], len(elems))
	for _, elem := range elems {
		s.Add(elem)
	}
	return s
}

// Add inserts elem and returns the set to allow chaining.
func (s Set[T]) Add(elem T) Set[T] {
	s[elem] = struct{}{}
	return s
}

func (s Set[T]) Contains(elem T) bool {
	_, ok := s[elem]
	return ok
}

// With returns a copy of the set that also contains elem. The receiver is left
// unchanged, so sets derived from a common parent never see each other's
// additions. A nil receiver is treated as empty.
func (s Set[T]) With(elem T) Set[T] {
	result := make(Set[T], len(s)+1)
	maps.Copy(result, s)
	return result.Add(elem)
}

// Diff returns the elements of s that are not in other.
func (s Set[T]) Diff(other Set[T]) Set[T] {
	diff := make(Set[T])
	for elem := range s {
		if !other.Contains(elem) {
			diff.Add(elem)
		}
	}
	return diff
}

// All yields the elements in no particular order.
func (s Set[T]) All() iter.Seq[T] {
	return maps.Keys(s)
}

func (s Set[T]) SortedValues(cmp func(l, r T) int) []T {
	return slices.SortedFunc(s.All(), cmp)
}
