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

package ast

import "fmt"

// FileID identifies a loaded source file within a single generation run.
// The main document, whose source is provided directly rather than loaded
// through a FileLoader, has the sentinel id FileMain.
type FileID int32

// FileMain is the FileID of the primary source document.
const FileMain FileID = -1

// SourcePosition is a location in a source file. Line and Column are
// zero-based; Begin is the byte offset from the start of the file.
type SourcePosition struct {
	Line   int
	Column int
	Begin  int
}

func (p SourcePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Advance returns the position after consuming text, tracking line breaks.
// A lone CR is treated as ordinary text; only LF terminates a line.
func (p SourcePosition) Advance(text string) SourcePosition {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			p.Line++
			p.Column = 0
		} else {
			p.Column++
		}
		p.Begin++
	}
	return p
}

// SourceSpan is a contiguous range of source text starting at a position.
type SourceSpan struct {
	SourcePosition
	Length int
}

func (s SourceSpan) End() int {
	return s.Begin + s.Length
}

func (s SourceSpan) Empty() bool {
	return s.Length == 0
}

// ToRight returns the subspan with the first n bytes removed.
// The line/column information of the result is an approximation that assumes
// no line breaks within the removed prefix.
func (s SourceSpan) ToRight(n int) SourceSpan {
	return SourceSpan{
		SourcePosition: SourcePosition{
			Line:   s.Line,
			Column: s.Column + n,
			Begin:  s.Begin + n,
		},
		Length: s.Length - n,
	}
}

// WithLength returns a copy of the span with its length replaced.
func (s SourceSpan) WithLength(length int) SourceSpan {
	s.Length = length
	return s
}

// FileSourceSpan is a SourceSpan qualified with the file it refers to.
type FileSourceSpan struct {
	SourceSpan
	File FileID
}

func (s FileSourceSpan) String() string {
	return fmt.Sprintf("%d:%s", s.File, s.SourcePosition)
}
