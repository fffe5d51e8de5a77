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

// Package reporter contains the diagnostics machinery of the COWEL engine:
// severities, diagnostics with source locations, the Logger interface that
// external renderers implement, and a Handler that filters by minimum
// severity before forwarding.
package reporter

import "github.com/eisenwave/cowel/ast"

// Severity is the level of a diagnostic. The numeric spacing leaves room
// for intermediate levels, matching the external interface.
type Severity uint8

const (
	SeverityMin         Severity = 0
	SeverityTrace       Severity = 10
	SeverityDebug       Severity = 20
	SeverityInfo        Severity = 30
	SeveritySoftWarning Severity = 40
	SeverityWarning     Severity = 50
	SeverityError       Severity = 70
	SeverityFatal       Severity = 90
	SeverityMax         Severity = 90
	// SeverityNone is greater than every emittable severity. Using it as a
	// minimum level silences all diagnostics, even errors.
	SeverityNone Severity = 100
)

func (s Severity) String() string {
	switch s {
	case SeverityTrace:
		return "trace"
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeveritySoftWarning:
		return "soft_warning"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	case SeverityNone:
		return "none"
	}
	return "invalid"
}

// IsEmittable reports whether diagnostics of this severity may be emitted.
func (s Severity) IsEmittable() bool {
	return s >= SeverityMin && s <= SeverityMax
}

// Diagnostic is a single message about the document being processed.
type Diagnostic struct {
	// Severity of the diagnostic; IsEmittable must hold.
	Severity Severity
	// ID is a non-empty dot-separated identifier for the diagnostic, such
	// as "parse.block.unclosed". IDs are stable and matched by external
	// tooling; the catalogue lives in ids.go.
	ID string
	// Location is the span of code responsible for the diagnostic.
	Location ast.FileSourceSpan
	// FileName optionally overrides the name of the file; it is usually
	// empty since Location.File already identifies the file.
	FileName string
	// Message is the human-readable diagnostic text.
	Message string
}

// Logger receives diagnostics that passed the minimum-severity filter.
// Rendering is the caller's concern; the engine only builds diagnostics.
type Logger interface {
	Log(d Diagnostic)
}

// LoggerFunc adapts a function to the Logger interface.
type LoggerFunc func(d Diagnostic)

func (f LoggerFunc) Log(d Diagnostic) { f(d) }

// Handler filters diagnostics by minimum severity and forwards the rest to
// a Logger. A nil Handler or a Handler with a nil logger discards
// everything, so callers never need to check.
type Handler struct {
	logger      Logger
	minSeverity Severity
}

// NewHandler creates a handler forwarding to logger. A nil logger discards
// all diagnostics.
func NewHandler(logger Logger, minSeverity Severity) *Handler {
	return &Handler{logger: logger, minSeverity: minSeverity}
}

// MinSeverity returns the handler's minimum severity.
func (h *Handler) MinSeverity() Severity {
	if h == nil {
		return SeverityNone
	}
	return h.minSeverity
}

// Emits reports whether a diagnostic of the given severity would be
// forwarded.
func (h *Handler) Emits(severity Severity) bool {
	return h != nil && h.logger != nil && severity >= h.minSeverity
}

// Handle forwards d if its severity passes the filter.
func (h *Handler) Handle(d Diagnostic) {
	if h.Emits(d.Severity) {
		h.logger.Log(d)
	}
}

// Error emits an error diagnostic.
func (h *Handler) Error(id string, location ast.FileSourceSpan, message string) {
	h.Handle(Diagnostic{Severity: SeverityError, ID: id, Location: location, Message: message})
}

// Warning emits a warning diagnostic.
func (h *Handler) Warning(id string, location ast.FileSourceSpan, message string) {
	h.Handle(Diagnostic{Severity: SeverityWarning, ID: id, Location: location, Message: message})
}

// SoftWarning emits a soft warning diagnostic.
func (h *Handler) SoftWarning(id string, location ast.FileSourceSpan, message string) {
	h.Handle(Diagnostic{Severity: SeveritySoftWarning, ID: id, Location: location, Message: message})
}

// Fatal emits a fatal diagnostic.
func (h *Handler) Fatal(id string, location ast.FileSourceSpan, message string) {
	h.Handle(Diagnostic{Severity: SeverityFatal, ID: id, Location: location, Message: message})
}
