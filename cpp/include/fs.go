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
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Files at least this large are memory-mapped instead of read, where supported.
const mmapThreshold = 64 * 1024

// FileSystem resolves includes against directories on disk.
type FileSystem struct {
	// Searched for quoted includes only, after the directory of the including file.
	QuoteDirs []string
	// Searched for all includes.
	Dirs []string
	// Searched for Name/Header.h as Name.framework/Headers/Header.h, after Dirs.
	FrameworkDirs []string

	mapped []func() error
}

// NewFileSystem creates a FileSystem. Directory entries may be doublestar glob
// patterns (e.g. third_party/**/include), they are expanded to all matching
// directories in lexicographic order.
func NewFileSystem(quoteDirs, dirs, frameworkDirs []string) (*FileSystem, error) {
	var err error
	fs := &FileSystem{}
	if fs.QuoteDirs, err = expandDirs(quoteDirs); err != nil {
		return nil, err
	}
	if fs.Dirs, err = expandDirs(dirs); err != nil {
		return nil, err
	}
	if fs.FrameworkDirs, err = expandDirs(frameworkDirs); err != nil {
		return nil, err
	}
	return fs, nil
}

func expandDirs(entries []string) ([]string, error) {
	var dirs []string
	for _, entry := range entries {
		if !strings.ContainsAny(entry, "*?[{") {
			dirs = append(dirs, filepath.Clean(entry))
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(entry)) {
			return nil, fmt.Errorf("invalid include directory pattern %q", entry)
		}
		matches, err := doublestar.FilepathGlob(entry, doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("expanding include directory pattern %q: %w", entry, err)
		}
		slices.Sort(matches)
		for _, match := range matches {
			if isDir(match) {
				dirs = append(dirs, match)
			}
		}
	}
	return dirs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (fs *FileSystem) Resolve(spec string, quoted bool, relativeTo string) (string, bool) {
	if filepath.IsAbs(spec) {
		return found(spec)
	}
	if quoted && relativeTo != "" {
		if path, ok := found(filepath.Join(filepath.Dir(relativeTo), spec)); ok {
			return path, true
		}
	}
	var dirs []string
	if quoted {
		dirs = append(dirs, fs.QuoteDirs...)
	}
	dirs = append(dirs, fs.Dirs...)
	if path, ok := searchDirs(dirs, spec); ok {
		return path, true
	}
	return fs.searchFrameworks(fs.FrameworkDirs, spec)
}

// ResolveNext continues the search after the directory the current file was
// found in. If it wasn't found in any search directory, all of them are searched.
func (fs *FileSystem) ResolveNext(spec string, current string) (string, bool) {
	dirs := slices.Concat(fs.QuoteDirs, fs.Dirs)
	currentDir := filepath.Dir(current)
	for i, dir := range dirs {
		if abs, err := filepath.Abs(dir); err == nil && abs == currentDir {
			if path, ok := searchDirs(dirs[i+1:], spec); ok {
				return path, true
			}
			return fs.searchFrameworks(fs.FrameworkDirs, spec)
		}
	}
	return fs.Resolve(spec, false, "")
}

func searchDirs(dirs []string, spec string) (string, bool) {
	for _, dir := range dirs {
		if path, ok := found(filepath.Join(dir, spec)); ok {
			return path, true
		}
	}
	return "", false
}

// searchFrameworks looks up Name/Header.h as Name.framework/Headers/Header.h.
func (fs *FileSystem) searchFrameworks(dirs []string, spec string) (string, bool) {
	name, header, ok := strings.Cut(filepath.ToSlash(spec), "/")
	if !ok || name == "" || header == "" {
		return "", false
	}
	for _, dir := range dirs {
		if path, ok := found(filepath.Join(dir, name+".framework", "Headers", filepath.FromSlash(header))); ok {
			return path, true
		}
	}
	return "", false
}

func found(path string) (string, bool) {
	if !isFile(path) {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return abs, true
}

// Read returns the contents of the file. Large files are memory-mapped where
// supported; the mappings stay valid until Close.
func (fs *FileSystem) Read(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if info.Size() < mmapThreshold {
		return os.ReadFile(path)
	}
	data, unmap, err := mapFile(path, info.Size())
	if err != nil {
		return nil, err
	}
	fs.mapped = append(fs.mapped, unmap)
	return data, nil
}

// Close releases the memory mappings of files returned by Read. The FileSystem
// remains usable, and closing it again is a no-op.
func (fs *FileSystem) Close() error {
	var errs []error
	for _, unmap := range fs.mapped {
		if err := unmap(); err != nil {
			errs = append(errs, err)
		}
	}
	fs.mapped = nil
	return errors.Join(errs...)
}
