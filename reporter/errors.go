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

package reporter

import (
	"errors"
	"fmt"

	"github.com/eisenwave/cowel/ast"
)

// ErrInvalidSource is a sentinel error reported to callers (e.g. by the
// CLI) when generation failed because errors were emitted for the source
// document. The individual problems have already been delivered through
// the Logger; this error only signals the overall outcome.
var ErrInvalidSource = errors.New("generation failed: invalid COWEL source")

// PositionedError wraps an error with the source span responsible for it,
// so that failures crossing non-diagnostic boundaries (such as a
// FileLoader's sentinel errors surfacing inside a directive) keep their
// location when they are finally rendered.
//
// It unwraps to the underlying error, so errors.Is against sentinels like
// the file loading errors keeps working on the wrapped value.
type PositionedError struct {
	span ast.FileSourceSpan
	err  error
}

// WithPosition wraps err with the span responsible for it.
func WithPosition(span ast.FileSourceSpan, err error) *PositionedError {
	return &PositionedError{span: span, err: err}
}

// Error formats the one-based line and column followed by the underlying
// error.
func (e *PositionedError) Error() string {
	return fmt.Sprintf("%s: %v", e.span.SourcePosition, e.err)
}

// Unwrap returns the underlying error.
func (e *PositionedError) Unwrap() error {
	return e.err
}

// Position returns the source span responsible for the error.
func (e *PositionedError) Position() ast.FileSourceSpan {
	return e.span
}
