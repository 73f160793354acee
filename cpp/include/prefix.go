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
	"path"

	"github.com/bazelbuild/bazel-gazelle/pathtools"
)

// VirtualInclude serves the headers of a Bazel cc_library that are made
// visible under a different path by its include_prefix and
// strip_include_prefix attributes. Specs using the virtual path are mapped
// back to repo-root-relative source paths and looked up in Target, which
// should search the repository root.
type VirtualInclude struct {
	// Slash-separated, repo-root-relative directory of the library's package.
	Package            string
	StripIncludePrefix string
	IncludePrefix      string
	Target             Resolver
}

// SourcePath maps an include spec to the repo-root-relative header path. It
// reports false for specs outside the library's virtual include directory.
func (v *VirtualInclude) SourcePath(spec string) (string, bool) {
	var effectiveStripIncludePrefix string
	if path.IsAbs(v.StripIncludePrefix) {
		effectiveStripIncludePrefix = v.StripIncludePrefix[len("/"):]
	} else if v.StripIncludePrefix != "" {
		effectiveStripIncludePrefix = path.Join(v.Package, v.StripIncludePrefix)
	} else if v.IncludePrefix != "" {
		effectiveStripIncludePrefix = v.Package
	} else {
		return "", false
	}

	spec = path.Clean(spec)
	if v.IncludePrefix != "" {
		prefix := path.Clean(v.IncludePrefix)
		if spec == prefix || !pathtools.HasPrefix(spec, prefix) {
			return "", false
		}
		spec = pathtools.TrimPrefix(spec, prefix)
	}
	return path.Join(effectiveStripIncludePrefix, spec), true
}

func (v *VirtualInclude) Resolve(spec string, _ bool, _ string) (string, bool) {
	rel, ok := v.SourcePath(spec)
	if !ok {
		return "", false
	}
	return v.Target.Resolve(rel, false, "")
}

func (v *VirtualInclude) Read(p string) ([]byte, error) {
	return v.Target.Read(p)
}

// Close closes Target. Several virtual includes may share a Target, which
// must then tolerate repeated Close calls as FileSystem does.
func (v *VirtualInclude) Close() error {
	return Close(v.Target)
}
