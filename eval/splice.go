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
	"math"
	"strconv"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/policy"
	"github.com/eisenwave/cowel/reporter"
	"github.com/eisenwave/cowel/types"
)

// SpliceAll splices a sequence of markup elements into out, evaluating in
// the given frame. Directives are evaluated in document order; a fatal or
// break status ends the sequence early, recoverable errors accumulate.
func SpliceAll(out policy.ContentPolicy, elements []ast.Element, frame FrameIndex, ctx *Context) Status {
	result := StatusOK
	for _, e := range elements {
		status := SpliceElement(out, e, frame, ctx)
		result = StatusMax(result, status)
		if status == StatusFatal || status.IsBreak() {
			break
		}
	}
	return result
}

// SpliceElement splices a single markup element into out.
func SpliceElement(out policy.ContentPolicy, e ast.Element, frame FrameIndex, ctx *Context) Status {
	switch n := e.(type) {
	case *ast.Primary:
		switch n.Kind() {
		case ast.PrimaryText:
			out.ConsumeText(n.Source())
			return StatusOK
		case ast.PrimaryEscape:
			out.ConsumeEscape(n.EscapedText())
			return StatusOK
		case ast.PrimaryComment:
			out.ConsumeComment()
			return StatusOK
		case ast.PrimaryBlock, ast.PrimaryQuotedString:
			return SpliceAll(out, n.Elements(), frame, ctx)
		default:
			value, status := EvaluateElement(n, frame, ctx)
			if status.IsError() {
				return status
			}
			return StatusMax(status, SpliceValue(out, value, ctx))
		}
	case *ast.Directive:
		out.EnterDirective()
		status := InvokeDirective(out, n, frame, ctx)
		out.LeaveDirective()
		return status
	}
	return StatusOK
}

// InvokeDirective resolves and invokes a directive, writing its output
// into out. An unresolved name is a recoverable error that emits a visible
// placeholder.
func InvokeDirective(out policy.ContentPolicy, d *ast.Directive, frame FrameIndex, ctx *Context) Status {
	behavior := ctx.FindDirective(d.Name())
	if behavior == nil {
		ctx.TryError(reporter.IDDirectiveLookupUnresolved, d.NameSpan(),
			"No directive with the name \""+d.Name()+"\" was found.")
		call := MakeInvocation(d, frame, ctx.Stack.TopIndex())
		return TryGenerateError(out, &call, ctx, StatusError)
	}
	return SpliceInvocation(out, behavior, d, frame, ctx)
}

// SpliceInvocation performs the invocation protocol for a direct call:
// push a frame, run the behavior, pop.
func SpliceInvocation(
	out policy.ContentPolicy, behavior DirectiveBehavior,
	d *ast.Directive, frame FrameIndex, ctx *Context,
) Status {
	if ctx.Stack.Size() >= maxCallDepth {
		ctx.TryFatal(reporter.IDDirectiveLookupUnresolved, d.Span(),
			"Maximum directive nesting depth exceeded.")
		return StatusFatal
	}
	callFrame := FrameIndex(ctx.Stack.Size())
	call := MakeInvocation(d, frame, callFrame)
	ctx.Stack.Push(StackFrame{Behavior: behavior, Invocation: call})
	defer ctx.Stack.Pop()
	return behavior.Splice(out, &call, ctx)
}

// EvaluateDirective resolves and evaluates a directive to a value.
func EvaluateDirective(d *ast.Directive, frame FrameIndex, ctx *Context) (Value, Status) {
	behavior := ctx.FindDirective(d.Name())
	if behavior == nil {
		ctx.TryError(reporter.IDDirectiveLookupUnresolved, d.NameSpan(),
			"No directive with the name \""+d.Name()+"\" was found.")
		return Null, StatusError
	}
	if ctx.Stack.Size() >= maxCallDepth {
		ctx.TryFatal(reporter.IDDirectiveLookupUnresolved, d.Span(),
			"Maximum directive nesting depth exceeded.")
		return Null, StatusFatal
	}
	callFrame := FrameIndex(ctx.Stack.Size())
	call := MakeInvocation(d, frame, callFrame)
	ctx.Stack.Push(StackFrame{Behavior: behavior, Invocation: call})
	defer ctx.Stack.Pop()
	return behavior.Evaluate(&call, ctx)
}

// EvaluateElement evaluates a member value to a Value. Blocks become lazy
// thunks; directives are invoked.
func EvaluateElement(e ast.Element, frame FrameIndex, ctx *Context) (Value, Status) {
	switch n := e.(type) {
	case *ast.Directive:
		return EvaluateDirective(n, frame, ctx)
	case *ast.Primary:
		switch n.Kind() {
		case ast.PrimaryUnit:
			return Unit, StatusOK
		case ast.PrimaryNull:
			return Null, StatusOK
		case ast.PrimaryBool:
			return Boolean(n.BoolValue()), StatusOK
		case ast.PrimaryInt:
			return Integer(n.IntValue().Value), StatusOK
		case ast.PrimaryFloat:
			return Float(n.FloatValue().Value), StatusOK
		case ast.PrimaryInfinity:
			if n.Source()[0] == '-' {
				return Float(math.Inf(-1)), StatusOK
			}
			return Float(math.Inf(1)), StatusOK
		case ast.PrimaryUnquotedString:
			return String(n.Source(), ast.StringUnknown), StatusOK
		case ast.PrimaryQuotedString:
			text, status := SpliceToPlaintext(n.Elements(), frame, ctx)
			if status.IsError() {
				return Null, status
			}
			return String(text, ast.StringUnknown), status
		case ast.PrimaryBlock:
			return BlockValue(n, frame), StatusOK
		case ast.PrimaryGroup:
			ctx.TryError(reporter.IDTypeMismatch, n.Span(),
				"A group cannot be evaluated as a single value.")
			return Null, StatusError
		}
	}
	ctx.TryError(reporter.IDTypeMismatch, e.Span(),
		"This element is not a value.")
	return Null, StatusError
}

// SpliceValue converts a value of spliceable kind to text or HTML and
// feeds it into the current content policy. Unit splices nothing; blocks
// and directives are evaluated in their captured frame.
func SpliceValue(out policy.ContentPolicy, v Value, ctx *Context) Status {
	switch v.Kind() {
	case types.Unit:
		return StatusOK
	case types.Null:
		out.Write("null", policy.LanguageText)
		return StatusOK
	case types.Bool:
		if v.AsBool() {
			out.Write("true", policy.LanguageText)
		} else {
			out.Write("false", policy.LanguageText)
		}
		return StatusOK
	case types.Int:
		out.Write(v.AsInt().String(), policy.LanguageText)
		return StatusOK
	case types.Float:
		out.Write(formatFloat(v.AsFloat()), policy.LanguageText)
		return StatusOK
	case types.Str:
		out.Write(v.AsString(), policy.LanguageText)
		return StatusOK
	case types.Block:
		if d := v.Directive(); d != nil {
			out.EnterDirective()
			status := InvokeDirective(out, d, v.Frame(), ctx)
			out.LeaveDirective()
			return status
		}
		return SpliceAll(out, v.Block().Elements(), v.Frame(), ctx)
	}
	return StatusError
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "infinity"
	case math.IsInf(f, -1):
		return "-infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// plainPolicy collects raw text without HTML escaping.
type plainPolicy struct {
	out *[]byte
}

func (p *plainPolicy) Write(chars string, _ policy.OutputLanguage) bool {
	*p.out = append(*p.out, chars...)
	return true
}

func (p *plainPolicy) ConsumeText(text string) { p.Write(text, policy.LanguageText) }

func (p *plainPolicy) ConsumeEscape(expanded string) { p.Write(expanded, policy.LanguageText) }

func (p *plainPolicy) ConsumeComment() {}

func (p *plainPolicy) EnterDirective() {}

func (p *plainPolicy) LeaveDirective() {}

// SpliceToPlaintext splices elements into a plain text buffer, without
// HTML escaping.
func SpliceToPlaintext(elements []ast.Element, frame FrameIndex, ctx *Context) (string, Status) {
	var buf []byte
	out := &plainPolicy{out: &buf}
	status := SpliceAll(out, elements, frame, ctx)
	return string(buf), status
}

// EvaluateToPlaintext evaluates a member value lazily to plain text.
func EvaluateToPlaintext(e ast.Element, frame FrameIndex, ctx *Context) (string, Status) {
	var buf []byte
	out := &plainPolicy{out: &buf}
	status := SpliceElement(out, e, frame, ctx)
	return string(buf), status
}

// StaticType computes the analyzable type of a member value without
// evaluating it. Directive results are unknown until evaluated, so a
// directive has type any.
func StaticType(e ast.Element) types.Type {
	switch n := e.(type) {
	case *ast.Directive:
		return types.AnyType
	case *ast.Primary:
		switch n.Kind() {
		case ast.PrimaryUnit:
			return types.UnitType
		case ast.PrimaryNull:
			return types.NullType
		case ast.PrimaryBool:
			return types.BoolType
		case ast.PrimaryInt:
			return types.IntType
		case ast.PrimaryFloat, ast.PrimaryInfinity:
			return types.FloatType
		case ast.PrimaryUnquotedString, ast.PrimaryQuotedString, ast.PrimaryText:
			return types.StrType
		case ast.PrimaryBlock:
			return types.BlockType
		case ast.PrimaryGroup:
			return types.DynamicGroupType
		}
	}
	return types.AnyType
}

// TryGenerateError emits a visible error placeholder for a failed
// invocation if an error behavior is installed, then returns status.
func TryGenerateError(out policy.ContentPolicy, call *Invocation, ctx *Context, status Status) Status {
	behavior := ctx.ErrorBehavior()
	if behavior == nil {
		return status
	}
	if errStatus := behavior.Splice(out, call, ctx); errStatus == StatusFatal {
		ctx.TryError(reporter.IDErrorError, call.Directive.Span(),
			"Failed to generate an error placeholder.")
		return StatusFatal
	}
	return status
}
