// Copyright 2024-2025 The COWEL Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cowel

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/eval"
)

// RelativeFileLoader loads files from the filesystem, resolving
// relative-generic paths against the directory of the referencing file.
// The main document resolves against the loader's base directory.
//
// Every distinct file is assigned a FileID on first load; loads are
// cached, so including the same file twice yields the same entry.
type RelativeFileLoader struct {
	base string

	entries []loadedFile
	byPath  map[string]int
}

type loadedFile struct {
	path   string
	source string
}

// NewRelativeFileLoader creates a loader resolving against base.
func NewRelativeFileLoader(base string) *RelativeFileLoader {
	return &RelativeFileLoader{base: base, byPath: make(map[string]int)}
}

// Load implements eval.FileLoader.
func (l *RelativeFileLoader) Load(name string, relativeTo ast.FileID) (eval.FileEntry, error) {
	dir := "."
	if relativeTo != ast.FileMain && int(relativeTo) < len(l.entries) {
		dir = path.Dir(l.entries[relativeTo].path)
	}
	resolved := path.Join(dir, name)

	if index, ok := l.byPath[resolved]; ok {
		return l.entry(index), nil
	}

	data, err := os.ReadFile(filepath.Join(l.base, filepath.FromSlash(resolved)))
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return eval.FileEntry{}, eval.ErrFileNotFound
		case errors.Is(err, fs.ErrPermission):
			return eval.FileEntry{}, eval.ErrFilePermissions
		default:
			return eval.FileEntry{}, eval.ErrFileRead
		}
	}

	index := len(l.entries)
	l.entries = append(l.entries, loadedFile{path: resolved, source: string(data)})
	l.byPath[resolved] = index
	return l.entry(index), nil
}

func (l *RelativeFileLoader) entry(index int) eval.FileEntry {
	return eval.FileEntry{
		ID:     ast.FileID(index),
		Name:   l.entries[index].path,
		Source: l.entries[index].source,
	}
}

// FileName returns the relative path of a loaded file, or "" for the main
// document and unknown ids.
func (l *RelativeFileLoader) FileName(id ast.FileID) string {
	if id == ast.FileMain || int(id) >= len(l.entries) || id < 0 {
		return ""
	}
	return l.entries[id].path
}
