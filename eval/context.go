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

package eval

import (
	"errors"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/policy"
	"github.com/eisenwave/cowel/reporter"
	"github.com/eisenwave/cowel/sections"
)

// File loading errors, as distinguished by the external interface.
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrFileRead        = errors.New("read error")
	ErrFilePermissions = errors.New("permission denied")
	ErrFileLoad        = errors.New("i/o error")
)

// FileEntry is a successfully loaded file.
type FileEntry struct {
	ID     ast.FileID
	Name   string
	Source string
}

// FileLoader loads files referenced by the document. Paths are
// relative-generic (separated by `/`); relativeTo identifies the file the
// path is relative to, with ast.FileMain naming the primary source.
type FileLoader interface {
	Load(path string, relativeTo ast.FileID) (FileEntry, error)
}

// DirectiveResolver looks up builtin directive behaviors by name.
type DirectiveResolver interface {
	FindDirective(name string) DirectiveBehavior
}

// maxCallDepth bounds the call stack so that runaway macro recursion is a
// fatal error instead of memory exhaustion.
const maxCallDepth = 1024

// Context holds everything an evaluation step needs: the call stack, the
// section store, diagnostics, collaborating services, and the directive
// tables. Each generation run owns one Context; a Context must not be
// shared between concurrent generations.
type Context struct {
	Stack       *CallStack
	Sections    *sections.Sections
	Handler     *reporter.Handler
	Loader      FileLoader
	Highlighter policy.Highlighter

	// Variables is the macro-defined variable store, captured by the
	// preserved-variable hooks at the end of generation.
	Variables map[string]string

	builtins      DirectiveResolver
	macros        map[string]DirectiveBehavior
	aliases       map[string]DirectiveBehavior
	errorBehavior DirectiveBehavior
}

// NewContext creates a context with an empty call stack and section store.
func NewContext(builtins DirectiveResolver, handler *reporter.Handler) *Context {
	return &Context{
		Stack:     &CallStack{},
		Sections:  sections.New(),
		Handler:   handler,
		Variables: make(map[string]string),
		builtins:  builtins,
		macros:    make(map[string]DirectiveBehavior),
		aliases:   make(map[string]DirectiveBehavior),
	}
}

// TryError logs an error diagnostic if the severity filter admits it.
func (c *Context) TryError(id string, location ast.FileSourceSpan, message string) {
	c.Handler.Error(id, location, message)
}

// TryWarning logs a warning diagnostic.
func (c *Context) TryWarning(id string, location ast.FileSourceSpan, message string) {
	c.Handler.Warning(id, location, message)
}

// TrySoftWarning logs a soft warning diagnostic.
func (c *Context) TrySoftWarning(id string, location ast.FileSourceSpan, message string) {
	c.Handler.SoftWarning(id, location, message)
}

// TryFatal logs a fatal diagnostic.
func (c *Context) TryFatal(id string, location ast.FileSourceSpan, message string) {
	c.Handler.Fatal(id, location, message)
}

// FindDirective resolves a directive name. User-registered macros and
// aliases are checked before the builtin table.
func (c *Context) FindDirective(name string) DirectiveBehavior {
	if b := c.macros[name]; b != nil {
		return b
	}
	if b := c.aliases[name]; b != nil {
		return b
	}
	if c.builtins != nil {
		return c.builtins.FindDirective(name)
	}
	return nil
}

// FindMacro returns the macro registered under name, or nil.
func (c *Context) FindMacro(name string) DirectiveBehavior {
	return c.macros[name]
}

// FindAlias returns the alias registered under name, or nil.
func (c *Context) FindAlias(name string) DirectiveBehavior {
	return c.aliases[name]
}

// EmplaceMacro registers a macro, reporting false on duplicates.
func (c *Context) EmplaceMacro(name string, behavior DirectiveBehavior) bool {
	if _, exists := c.macros[name]; exists {
		return false
	}
	c.macros[name] = behavior
	return true
}

// EmplaceAlias registers an alias, reporting false on duplicates.
func (c *Context) EmplaceAlias(name string, behavior DirectiveBehavior) bool {
	if _, exists := c.aliases[name]; exists {
		return false
	}
	c.aliases[name] = behavior
	return true
}

// ErrorBehavior returns the behavior used for visible error placeholders,
// or nil.
func (c *Context) ErrorBehavior() DirectiveBehavior {
	return c.errorBehavior
}

// SetErrorBehavior installs the behavior used for visible error
// placeholders.
func (c *Context) SetErrorBehavior(behavior DirectiveBehavior) {
	c.errorBehavior = behavior
}
