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
	"unicode/utf16"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/parser"
	"github.com/eisenwave/cowel/policy"
	"github.com/eisenwave/cowel/reporter"
	"github.com/eisenwave/cowel/sections"
)

// Kernel returns the builtin directive kernel: macro and alias definition,
// programmatic invocation, error placeholders, section writing and
// referencing, file inclusion, and a handful of small generative
// directives. The full directive library of a document dialect builds on
// top of this table.
func Kernel() BehaviorTable {
	return BehaviorTable{
		"cowel_macro":      Evaluator{F: macroDefine},
		"cowel_alias":      Evaluator{F: aliasDefine},
		"cowel_invoke":     Generative{F: invokeSplice},
		"cowel_put":        Generative{F: putSplice},
		"cowel_error":      Generative{F: errorSplice},
		"cowel_here":       Generative{F: hereSplice},
		"cowel_there":      Generative{F: thereSplice},
		"cowel_include":    Generative{F: includeSplice},
		"cowel_char":       Generative{F: charSplice},
		"cowel_var_let":    Evaluator{F: varLet},
		"cowel_var":        Generative{F: varSplice},
		"cowel_paragraphs": Generative{F: paragraphsSplice},
		"cowel_code":       Generative{F: codeSplice},

		"cowel_as_text": Evaluator{F: asTextEvaluate},
		"cowel_to_html": Evaluator{F: toHTMLEvaluate},

		"cowel_plus":  Evaluator{F: plusEvaluate},
		"cowel_minus": Evaluator{F: minusEvaluate},
		"cowel_times": Evaluator{F: timesEvaluate},
		"cowel_div":   Evaluator{F: divisionEvaluate(false)},
		"cowel_rem":   Evaluator{F: divisionEvaluate(true)},
		"cowel_pow":   Evaluator{F: powEvaluate},

		"cowel_regex_replace": Generative{F: regexReplaceSplice},
		"cowel_regex_test":    Evaluator{F: regexTestEvaluate},
	}
}

// ErrorPlaceholder is the default error behavior: it renders the failing
// directive's source inside an `<error->` element.
type ErrorPlaceholder struct{}

func (ErrorPlaceholder) Splice(out policy.ContentPolicy, call *Invocation, _ *Context) Status {
	w := policy.NewHTMLWriter(out)
	w.OpenTag("error-")
	w.WriteInnerText(call.Directive.Source())
	w.CloseTag("error-")
	return StatusOK
}

func (e ErrorPlaceholder) Evaluate(call *Invocation, ctx *Context) (Value, Status) {
	return Generative{F: e.Splice}.Evaluate(call, ctx)
}

// macroBehavior substitutes the body of a user-defined macro. The body is
// spliced in the frame of the new invocation, so that `\cowel_put` and
// ellipsis arguments inside it resolve against the call.
type macroBehavior struct {
	definition *ast.Directive
}

func (m *macroBehavior) Splice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	return SpliceAll(out, m.definition.ContentElements(), call.CallFrame, ctx)
}

func (m *macroBehavior) Evaluate(call *Invocation, ctx *Context) (Value, Status) {
	return Generative{F: m.Splice}.Evaluate(call, ctx)
}

func macroDefine(call *Invocation, ctx *Context) (Value, Status) {
	var name SpliceableToStringMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "pattern", Optionality: Mandatory, Value: &name},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDMacroNoPattern), StatusFatal)
	if status != StatusOK {
		return Null, status
	}
	if !parser.IsIdentifier(name.Get()) {
		ctx.TryError(reporter.IDMacroPatternNoDirective, name.Location(),
			"The name \""+name.Get()+"\" is not a valid directive name.")
		return Null, StatusError
	}
	if !ctx.EmplaceMacro(name.Get(), &macroBehavior{definition: call.Directive}) {
		ctx.TryFatal(reporter.IDMacroRedefinition, name.Location(),
			"The macro \""+name.Get()+"\" is already defined. "+
				"Redefinitions or duplicate definitions are not allowed.")
		return Null, StatusFatal
	}
	return Unit, StatusOK
}

func aliasDefine(call *Invocation, ctx *Context) (Value, Status) {
	var names GroupPackValueMatcher
	matcher := CallMatcher{Pack: &names}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDAliasNameInvalid), StatusFatal)
	if status != StatusOK {
		return Null, status
	}

	targetName, targetStatus := SpliceToPlaintext(call.ContentElements(), call.ContentFrame, ctx)
	if targetStatus != StatusOK {
		return Null, targetStatus
	}
	if targetName == "" {
		ctx.TryFatal(reporter.IDAliasNameMissing, call.Directive.Span(),
			"The target name must not be empty.")
		return Null, StatusFatal
	}
	if !parser.IsIdentifier(targetName) {
		ctx.TryFatal(reporter.IDAliasNameInvalid, call.ContentSourceSpan(),
			"The target name \""+targetName+"\" is not a valid directive name.")
		return Null, StatusFatal
	}
	target := ctx.FindDirective(targetName)
	if target == nil {
		ctx.TryFatal(reporter.IDAliasNameInvalid, call.ContentSourceSpan(),
			"No existing directive with the name \""+targetName+"\" was found. "+
				"A directive must be defined before an alias for it can be defined.")
		return Null, StatusFatal
	}

	values := names.Values()
	locations := names.Locations()
	for i, value := range values {
		if !value.IsStr() {
			ctx.TryError(reporter.IDTypeMismatch, locations[i],
				"Alias names must be of type str, but the argument is of type "+
					value.Type().String()+".")
			return Null, StatusError
		}
		aliasName := value.AsString()
		if aliasName == "" {
			ctx.TryFatal(reporter.IDAliasNameMissing, locations[i],
				"The alias name must not be empty.")
			return Null, StatusFatal
		}
		if !parser.IsIdentifier(aliasName) {
			ctx.TryFatal(reporter.IDAliasNameInvalid, locations[i],
				"The alias name \""+aliasName+"\" is not a valid directive name.")
			return Null, StatusFatal
		}
		if ctx.FindMacro(aliasName) != nil || ctx.FindAlias(aliasName) != nil {
			ctx.TryFatal(reporter.IDAliasDuplicate, locations[i],
				"The alias name \""+aliasName+"\" is already defined as a macro or alias. "+
					"Redefinitions or duplicate definitions are not allowed.")
			return Null, StatusFatal
		}
		ctx.EmplaceAlias(aliasName, target)
	}
	return Unit, StatusOK
}

// invokeSplice implements `\cowel_invoke(name, args...)`: it invokes the
// named directive programmatically, forwarding the remaining arguments and
// its own content.
func invokeSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	members := call.ArgumentMembers()
	if len(members) == 0 || members[0].Kind() != ast.MemberPositional {
		ctx.TryError(reporter.IDInvokeNameInvalid, call.ArgumentsSourceSpan(),
			"A directive name must be provided as the first argument.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	name, status := EvaluateToPlaintext(members[0].Value(), call.ContentFrame, ctx)
	if status != StatusOK {
		return status
	}
	if !parser.IsIdentifier(name) {
		ctx.TryError(reporter.IDInvokeNameInvalid, members[0].Span(),
			"The name \""+name+"\" is not a valid directive name.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	behavior := ctx.FindDirective(name)
	if behavior == nil {
		ctx.TryError(reporter.IDInvokeLookupFailed, members[0].Span(),
			"No directive with the name \""+name+"\" was found.")
		return TryGenerateError(out, call, ctx, StatusError)
	}

	// The remaining arguments become the invoked directive's arguments;
	// ellipsis members among them still resolve against the frame the
	// invoke call was written in.
	var forwarded *ast.Primary
	if call.Arguments != nil {
		forwarded = ast.NewGroup(
			call.Arguments.Span(), call.Arguments.Source(), members[1:])
	}

	if ctx.Stack.Size() >= maxCallDepth {
		ctx.TryFatal(reporter.IDInvokeLookupFailed, call.Directive.Span(),
			"Maximum directive nesting depth exceeded.")
		return StatusFatal
	}
	inner := Invocation{
		Name:         name,
		Directive:    call.Directive,
		Arguments:    forwarded,
		Content:      call.Content,
		ContentFrame: call.ContentFrame,
		CallFrame:    FrameIndex(ctx.Stack.Size()),
	}
	ctx.Stack.Push(StackFrame{Behavior: behavior, Invocation: inner})
	defer ctx.Stack.Pop()
	return behavior.Splice(out, &inner, ctx)
}

// putSplice implements `\cowel_put`: inside a macro body, it splices the
// content block the macro was invoked with.
func putSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	enclosing := enclosingInvocation(ctx, call.ContentFrame)
	if enclosing == nil {
		ctx.TryError(reporter.IDMacroPutInvalid, call.Directive.Span(),
			"\\cowel_put is only valid inside a macro.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	return SpliceAll(out, enclosing.ContentElements(), enclosing.ContentFrame, ctx)
}

func errorSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	w := policy.NewHTMLWriter(out)
	w.OpenTag("error-")
	status := SpliceAll(out, call.ContentElements(), call.ContentFrame, ctx)
	w.CloseTag("error-")
	return status
}

func matchSectionName(call *Invocation, ctx *Context, missingID string) (string, Status) {
	var name SpliceableToStringMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "section", Optionality: Mandatory, Value: &name},
	)}
	status := matcher.MatchCall(call, ctx, ErrorFailCallback(missingID), StatusError)
	if status != StatusOK {
		return "", status
	}
	return name.Get(), StatusOK
}

// hereSplice implements `\cowel_here(section)`: it emits a reference that
// final assembly substitutes with the section's accumulated output.
func hereSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	name, status := matchSectionName(call, ctx, reporter.IDHereNoSection)
	if status != StatusOK {
		return TryGenerateError(out, call, ctx, status)
	}
	ctx.Sections.Make(name)
	if !sections.WriteReference(out, name) {
		ctx.TryError(reporter.IDHereNoSection, call.ArgumentsSourceSpan(),
			"The section name is too long to be referenced.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	return StatusOK
}

// thereSplice implements `\cowel_there(section){content}`: the content is
// generated into the named section instead of the current output.
func thereSplice(_ policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	name, status := matchSectionName(call, ctx, reporter.IDThereNoSection)
	if status != StatusOK {
		return status
	}
	section, restore := ctx.Sections.GoToScoped(name)
	defer restore()
	return SpliceAll(section.Policy(), call.ContentElements(), call.ContentFrame, ctx)
}

// includeSplice implements `\cowel_include(path)`: the referenced file is
// loaded, parsed, and spliced in place. Paragraph splitting from the
// surroundings applies to the included content.
func includeSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	var path SpliceableToStringMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "path", Optionality: Mandatory, Value: &path},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDIncludePathMissing), StatusError)
	if status != StatusOK {
		return TryGenerateError(out, call, ctx, status)
	}
	if path.Get() == "" {
		ctx.TryError(reporter.IDIncludePathMissing, path.Location(),
			"The file path must not be empty.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	if ctx.Loader == nil {
		ctx.TryError(reporter.IDIncludeIO, path.Location(), "No file loader is available.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	entry, err := ctx.Loader.Load(path.Get(), call.Directive.Span().File)
	if err != nil {
		// The loader only knows sentinel errors; attach the span of the
		// path argument so the rendered message cites the include site.
		posErr := reporter.WithPosition(path.Location(), err)
		ctx.TryError(reporter.IDIncludeIO, path.Location(),
			"Failed to load \""+path.Get()+"\": "+posErr.Error()+".")
		return TryGenerateError(out, call, ctx, StatusError)
	}

	elements, ok := parser.Parse(entry.Source, entry.ID,
		func(id string, span ast.SourceSpan, message string) {
			ctx.TryError(id, ast.FileSourceSpan{SourceSpan: span, File: entry.ID}, message)
		})
	result := StatusOK
	if !ok {
		result = StatusError
	}
	if splitter, isSplit := out.(*policy.ParagraphSplitPolicy); isSplit {
		splitter.InheritParagraph()
	}
	return StatusMax(result, SpliceAll(out, elements, call.ContentFrame, ctx))
}

// charSplice implements `\cowel_char(num)`: it writes the Unicode scalar
// value with the given code point.
func charSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	var value IntegerMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "value", Optionality: Mandatory, Value: &value},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDCharBlank), StatusError)
	if status != StatusOK {
		return TryGenerateError(out, call, ctx, status)
	}
	point, fits := value.Get().Int64()
	if !fits || point < 0 || point > 0x10FFFF {
		ctx.TryError(reporter.IDCharDigits, value.Location(),
			"The value "+value.Get().String()+" is not a valid code point.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	if utf16.IsSurrogate(rune(point)) {
		ctx.TryError(reporter.IDCharNonscalar, value.Location(),
			"The code point "+value.Get().String()+" is not a Unicode scalar value.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	out.Write(string(rune(point)), policy.LanguageText)
	return StatusOK
}

func varLet(call *Invocation, ctx *Context) (Value, Status) {
	var name, value SpliceableToStringMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "name", Optionality: Mandatory, Value: &name},
		GroupMemberMatcher{Name: "value", Optionality: Mandatory, Value: &value},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDVarName), StatusError)
	if status != StatusOK {
		return Null, status
	}
	if name.Get() == "" {
		ctx.TryError(reporter.IDVarName, name.Location(),
			"The variable name must not be empty.")
		return Null, StatusError
	}
	ctx.Variables[name.Get()] = value.Get()
	return Unit, StatusOK
}

func varSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	var name SpliceableToStringMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "name", Optionality: Mandatory, Value: &name},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDVarName), StatusError)
	if status != StatusOK {
		return TryGenerateError(out, call, ctx, status)
	}
	if stored, ok := ctx.Variables[name.Get()]; ok {
		out.Write(stored, policy.LanguageText)
	}
	return StatusOK
}

// paragraphsSplice implements `\cowel_paragraphs{content}`: the content is
// spliced with paragraph splitting from the surroundings applying to it.
func paragraphsSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	if splitter, ok := out.(*policy.ParagraphSplitPolicy); ok {
		splitter.InheritParagraph()
	}
	return SpliceAll(out, call.ContentElements(), call.ContentFrame, ctx)
}

// codeSplice implements `\cowel_code(lang){content}`: the content is
// captured through a syntax highlight policy and written out with
// highlight elements.
func codeSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	var lang SpliceableToStringMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "lang", Optionality: Optional, Value: &lang},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDHighlightLanguage), StatusError)
	if status != StatusOK {
		return TryGenerateError(out, call, ctx, status)
	}

	capture := policy.NewSyntaxHighlightPolicy()
	spliceStatus := SpliceAll(capture, call.ContentElements(), call.ContentFrame, ctx)
	if spliceStatus == StatusFatal {
		return spliceStatus
	}
	if err := capture.WriteHighlighted(out, ctx.Highlighter, lang.GetOrDefault("")); err != nil {
		ctx.TryWarning(reporter.IDHighlightLanguage, call.ArgumentsSourceSpan(),
			"Syntax highlighting failed: "+err.Error()+".")
	}
	return spliceStatus
}
