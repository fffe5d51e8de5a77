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

// Package cowel compiles COWEL markup into HTML documents.
//
// The compilation process involves three steps for each document:
//  1. Lexing and parsing the source into an AST.
//  2. Evaluating the AST, resolving directive calls and streaming output
//     through a stack of content policies into the section store.
//  3. Assembling the final document from the sections.
//
// GenerateHTML is the all-in-one entry point; RunGeneration and the
// document writers expose the individual pieces for callers that need
// custom orchestration.
package cowel

import (
	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/eval"
	"github.com/eisenwave/cowel/parser"
	"github.com/eisenwave/cowel/policy"
	"github.com/eisenwave/cowel/reporter"
	"github.com/eisenwave/cowel/sections"
)

// Mode selects the overall document shape.
type Mode uint8

const (
	// ModeDocument produces a full `<!DOCTYPE html>` document with head
	// and body.
	ModeDocument Mode = iota
	// ModeMinimal emits the head-less body only.
	ModeMinimal
)

// Status re-exports the evaluation status for the external interface.
type Status = eval.Status

// The processing status codes of the external interface.
const (
	ProcessingOK         = eval.StatusOK
	ProcessingBreak      = eval.StatusBreak
	ProcessingError      = eval.StatusError
	ProcessingErrorBreak = eval.StatusErrorBreak
	ProcessingFatal      = eval.StatusFatal
)

// FileLoader re-exports the file loader interface implemented by
// collaborators.
type FileLoader = eval.FileLoader

// Logger re-exports the diagnostic logger interface implemented by
// collaborators.
type Logger = reporter.Logger

// Highlighter re-exports the syntax highlighter interface implemented by
// collaborators.
type Highlighter = policy.Highlighter

// ThemeConfigurable is implemented by highlighters that accept a highlight
// theme in JSON form.
type ThemeConfigurable interface {
	SetTheme(source []byte) error
}

// Options configures a single generation run.
type Options struct {
	// Source is the UTF-8 COWEL source of the main document.
	Source string
	// Mode selects full-document or minimal output.
	Mode Mode
	// MinLogSeverity filters diagnostics before they reach the logger.
	MinLogSeverity reporter.Severity
	// Logger receives diagnostics; nil discards them.
	Logger Logger
	// Loader loads files referenced by the document; nil makes every load
	// fail.
	Loader FileLoader
	// Highlighter computes syntax highlight spans; nil disables
	// highlighting.
	Highlighter Highlighter
	// HighlightThemeSource is the JSON highlight theme; empty selects the
	// highlighter's builtin theme. It is forwarded to highlighters that
	// implement ThemeConfigurable.
	HighlightThemeSource []byte
	// Builtins resolves builtin directive names; nil uses eval.Kernel.
	Builtins eval.DirectiveResolver
	// ErrorBehavior renders visible error placeholders; nil uses
	// eval.ErrorPlaceholder. Setting it to a behavior that emits nothing
	// suppresses placeholders.
	ErrorBehavior eval.DirectiveBehavior
	// PreservedVariables names macro-defined variables whose values are
	// captured at the end of generation and passed to ConsumeVariables.
	PreservedVariables []string
	// ConsumeVariables receives the values of PreservedVariables, in the
	// same order, after generation finishes.
	ConsumeVariables func(values []string)
}

// Result is the outcome of GenerateHTML.
type Result struct {
	Status Status
	Output []byte
}

// GenerateHTML compiles a COWEL document to HTML. On a fatal status the
// partial output is discarded and Output is nil; diagnostics emitted
// before the fatal are preserved.
func GenerateHTML(options Options) Result {
	var output []byte
	status := RunGeneration(func(ctx *eval.Context) eval.Status {
		handler := ctx.Handler
		elements, ok := parser.Parse(options.Source, ast.FileMain,
			func(id string, span ast.SourceSpan, message string) {
				handler.Error(id,
					ast.FileSourceSpan{SourceSpan: span, File: ast.FileMain}, message)
			})
		parseStatus := eval.StatusOK
		if !ok {
			parseStatus = eval.StatusError
		}

		var status eval.Status
		if options.Mode == ModeMinimal {
			status = WriteMinimalDocument(ctx.Sections.Current().Policy(), elements, ctx)
		} else {
			status = WriteHeadBodyDocument(
				ctx.Sections.Current().Policy(), elements, ctx,
				writeEmptyHead, writeDefaultBody,
			)
		}
		status = eval.StatusMax(parseStatus, status)
		if status == eval.StatusFatal {
			return status
		}

		output = ctx.Sections.Flatten(func(kind sections.RefErrorKind, name string) {
			id := reporter.IDSectionRefNotFound
			message := "The referenced section \"" + name + "\" does not exist."
			if kind == sections.RefCircular {
				id = reporter.IDSectionRefCircular
				message = "The reference to section \"" + name + "\" is circular."
			}
			handler.Error(id, ast.FileSourceSpan{File: ast.FileMain}, message)
		})
		return status
	}, options)

	if status == eval.StatusFatal {
		return Result{Status: status}
	}
	return Result{Status: status, Output: output}
}

// RunGeneration creates a fresh context from the options and invokes
// write with it. Afterwards, preserved variables are captured and passed
// to the consumer hook.
func RunGeneration(write func(ctx *eval.Context) eval.Status, options Options) eval.Status {
	builtins := options.Builtins
	if builtins == nil {
		builtins = eval.Kernel()
	}
	handler := reporter.NewHandler(options.Logger, options.MinLogSeverity)

	ctx := eval.NewContext(builtins, handler)
	ctx.Loader = options.Loader
	ctx.Highlighter = options.Highlighter
	if options.ErrorBehavior != nil {
		ctx.SetErrorBehavior(options.ErrorBehavior)
	} else {
		ctx.SetErrorBehavior(eval.ErrorPlaceholder{})
	}

	if len(options.HighlightThemeSource) != 0 {
		if themed, ok := options.Highlighter.(ThemeConfigurable); ok {
			if err := themed.SetTheme(options.HighlightThemeSource); err != nil {
				handler.Warning(reporter.IDThemeConversion,
					ast.FileSourceSpan{File: ast.FileMain},
					"Failed to apply the highlight theme: "+err.Error()+".")
			}
		}
	}

	status := write(ctx)

	if options.ConsumeVariables != nil && len(options.PreservedVariables) != 0 {
		values := make([]string, len(options.PreservedVariables))
		for i, name := range options.PreservedVariables {
			values[i] = ctx.Variables[name]
		}
		options.ConsumeVariables(values)
	}
	return status
}

// HeadBodyWriter generates one part of a head/body document.
type HeadBodyWriter func(out policy.ContentPolicy, content []ast.Element, ctx *eval.Context) eval.Status

func writeEmptyHead(policy.ContentPolicy, []ast.Element, *eval.Context) eval.Status {
	return eval.StatusOK
}

func writeDefaultBody(out policy.ContentPolicy, content []ast.Element, ctx *eval.Context) eval.Status {
	splitter := policy.NewParagraphSplitPolicy(out, policy.ParagraphsOutside)
	status := eval.SpliceAll(splitter, content, eval.FrameRoot, ctx)
	// Every paragraph opened during root content must be closed before the
	// document ends.
	splitter.LeaveParagraph()
	return status
}

// WriteHeadBodyDocument produces a complete `<!DOCTYPE html>` document,
// delegating the head and body contents to the given writers.
func WriteHeadBodyDocument(
	out policy.ContentPolicy, content []ast.Element, ctx *eval.Context,
	writeHead, writeBody HeadBodyWriter,
) eval.Status {
	out.Write("<!DOCTYPE html>\n<html>\n<head>\n", policy.LanguageHTML)
	status := writeHead(out, content, ctx)
	if status == eval.StatusFatal {
		return status
	}
	out.Write("</head>\n<body>\n", policy.LanguageHTML)
	bodyStatus := writeBody(out, content, ctx)
	status = eval.StatusMax(status, bodyStatus)
	if status == eval.StatusFatal {
		return status
	}
	out.Write("</body>\n</html>\n", policy.LanguageHTML)
	return status
}

// WriteMinimalDocument emits the head-less body only.
func WriteMinimalDocument(
	out policy.ContentPolicy, content []ast.Element, ctx *eval.Context,
) eval.Status {
	return writeDefaultBody(out, content, ctx)
}

// The section names the WG21 document layout pre-creates, so that
// cross-writes into them need no forward declarations.
var wg21Sections = []string{"abstract", "contents", "bibliography"}

// WriteWG21Document is the WG21-styled variant of WriteHeadBodyDocument:
// it layers a fixed preamble into the head and pre-creates the standard
// section set before generating the body.
func WriteWG21Document(
	out policy.ContentPolicy, content []ast.Element, ctx *eval.Context,
) eval.Status {
	writeHead := func(out policy.ContentPolicy, _ []ast.Element, _ *eval.Context) eval.Status {
		out.Write("<meta charset=\"UTF-8\">\n", policy.LanguageHTML)
		out.Write("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n",
			policy.LanguageHTML)
		return eval.StatusOK
	}
	writeBody := func(out policy.ContentPolicy, content []ast.Element, ctx *eval.Context) eval.Status {
		for _, name := range wg21Sections {
			ctx.Sections.Make(name)
		}
		out.Write("<main>\n", policy.LanguageHTML)
		status := writeDefaultBody(out, content, ctx)
		out.Write("</main>\n", policy.LanguageHTML)
		return status
	}
	return WriteHeadBodyDocument(out, content, ctx, writeHead, writeBody)
}
