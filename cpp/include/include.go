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

// Package include locates and reads the files named by #include directives.
//
// The preprocessor only talks to the Resolver interface. Implementations
// search directories on disk (FileSystem), in-memory trees (MapResolver, also
// used for .tar.xz sysroots), Bazel virtual include paths (VirtualInclude),
// and combinations of them (Chain, Filter).
package include

import (
	"errors"
	"io"
)

var ErrNotFound = errors.New("include file not found")

// Resolver maps the path written in an include directive to a file and
// supplies its contents.
type Resolver interface {
	// Resolve returns the path of the file included as spec. Quoted includes
	// ("x.h") are looked up next to the including file first, relativeTo is
	// empty when there is no including file.
	Resolve(spec string, quoted bool, relativeTo string) (string, bool)
	// Read returns the whole contents of a path returned by Resolve.
	Read(path string) ([]byte, error)
}

// NextResolver is implemented by resolvers supporting #include_next: the
// search continues after the directory the current file was found in.
type NextResolver interface {
	ResolveNext(spec string, current string) (string, bool)
}

// Close releases the resources held by r if it implements io.Closer.
// Resolvers wrapping others (Chain, Filter, VirtualInclude) forward Close to
// the wrapped resolvers.
func Close(r Resolver) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
