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
	"path"
)

// MapResolver serves includes from an in-memory tree. Keys of Files are
// slash-separated paths, Dirs lists the search directories within that tree.
type MapResolver struct {
	Files map[string][]byte
	Dirs  []string
}

func (m *MapResolver) Resolve(spec string, quoted bool, relativeTo string) (string, bool) {
	if path.IsAbs(spec) {
		return m.lookup(spec)
	}
	if quoted && relativeTo != "" {
		if p, ok := m.lookup(path.Join(path.Dir(relativeTo), spec)); ok {
			return p, true
		}
	}
	return m.search(m.Dirs, spec)
}

func (m *MapResolver) ResolveNext(spec string, current string) (string, bool) {
	currentDir := path.Dir(current)
	for i, dir := range m.Dirs {
		if path.Clean(dir) == currentDir {
			return m.search(m.Dirs[i+1:], spec)
		}
	}
	return m.search(m.Dirs, spec)
}

func (m *MapResolver) search(dirs []string, spec string) (string, bool) {
	for _, dir := range dirs {
		if p, ok := m.lookup(path.Join(dir, spec)); ok {
			return p, true
		}
	}
	return "", false
}

func (m *MapResolver) lookup(p string) (string, bool) {
	p = path.Clean(p)
	_, ok := m.Files[p]
	return p, ok
}

func (m *MapResolver) Read(p string) ([]byte, error) {
	data, ok := m.Files[path.Clean(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return data, nil
}
