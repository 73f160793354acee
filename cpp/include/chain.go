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
	"errors"
	"fmt"
)

// Chain consults its members in order. The first member that resolves a spec
// wins; Read returns the first successful read.
type Chain []Resolver

func (c Chain) Resolve(spec string, quoted bool, relativeTo string) (string, bool) {
	for _, r := range c {
		if p, ok := r.Resolve(spec, quoted, relativeTo); ok {
			return p, true
		}
	}
	return "", false
}

// ResolveNext asks the members that support #include_next, falling back to a
// plain angle-bracket search of the others.
func (c Chain) ResolveNext(spec string, current string) (string, bool) {
	for _, r := range c {
		if next, ok := r.(NextResolver); ok {
			if p, ok := next.ResolveNext(spec, current); ok && p != current {
				return p, true
			}
		} else if p, ok := r.Resolve(spec, false, ""); ok && p != current {
			return p, true
		}
	}
	return "", false
}

func (c Chain) Read(path string) ([]byte, error) {
	var errs []error
	for _, r := range c {
		data, err := r.Read(path)
		if err == nil {
			return data, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return nil, errors.Join(errs...)
}

// Close closes every member, see the package level Close.
func (c Chain) Close() error {
	var errs []error
	for _, r := range c {
		errs = append(errs, Close(r))
	}
	return errors.Join(errs...)
}
