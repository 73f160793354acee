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
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/ulikunitz/xz"
)

// LoadArchive decodes a .tar.xz sysroot into memory. Regular files are stored
// under their archive paths rooted at "/", dirs are the search directories
// inside the archive (e.g. "/usr/include").
func LoadArchive(r io.Reader, dirs ...string) (*MapResolver, error) {
	xzReader, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	files := make(map[string][]byte)
	tarReader := tar.NewReader(xzReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		files[path.Join("/", header.Name)] = data
	}
	return &MapResolver{Files: files, Dirs: dirs}, nil
}
