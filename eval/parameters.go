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
	"sort"
	"strings"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/bigint"
	"github.com/eisenwave/cowel/types"
)

// FailCallback emits a matching failure diagnostic.
type FailCallback func(location ast.FileSourceSpan, message string, ctx *Context)

// MatchFailOptions configures how matching failures are reported: the
// callback building the diagnostic, the status to return for failures, and
// the fallback location for failures not tied to a specific argument.
type MatchFailOptions struct {
	Emit     FailCallback
	Status   Status
	Location ast.FileSourceSpan
}

// ErrorFailCallback builds the standard type-mismatch error callback.
func ErrorFailCallback(id string) FailCallback {
	return func(location ast.FileSourceSpan, message string, ctx *Context) {
		ctx.TryError(id, location, message)
	}
}

// ValueMatcher matches a single argument value against a parameter's
// expectations.
type ValueMatcher interface {
	MatchValue(argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions) Status
	WasMatched() bool
}

// LazyMarkupMatcher captures a content sequence together with its frame,
// without evaluating it.
type LazyMarkupMatcher struct {
	markup ast.Element
	frame  FrameIndex
}

func (m *LazyMarkupMatcher) WasMatched() bool { return m.markup != nil }

// Get returns the captured element; valid only after a successful match.
func (m *LazyMarkupMatcher) Get() ast.Element { return m.markup }

// Frame returns the frame the markup was captured in.
func (m *LazyMarkupMatcher) Frame() FrameIndex { return m.frame }

func (m *LazyMarkupMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, _ *Context, _ *MatchFailOptions,
) Status {
	m.markup = argument
	m.frame = frame
	return StatusOK
}

// matchedValue is a matched payload together with the argument location.
type matchedValue[T any] struct {
	value    T
	location ast.FileSourceSpan
}

type valueHolder[T any] struct {
	value *matchedValue[T]
}

func (h *valueHolder[T]) WasMatched() bool { return h.value != nil }

// Get returns the matched value; valid only after a successful match.
func (h *valueHolder[T]) Get() T { return h.value.value }

// Location returns the location of the matched argument.
func (h *valueHolder[T]) Location() ast.FileSourceSpan { return h.value.location }

// GetOrDefault returns the matched value or a fallback.
func (h *valueHolder[T]) GetOrDefault(fallback T) T {
	if h.value == nil {
		return fallback
	}
	return h.value.value
}

func (h *valueHolder[T]) set(value T, location ast.FileSourceSpan) {
	h.value = &matchedValue[T]{value: value, location: location}
}

// StringMatcher enforces type str and stores the string.
type StringMatcher struct {
	valueHolder[string]
	kind ast.StringKind
}

// Kind returns the string kind of the matched value.
func (m *StringMatcher) Kind() ast.StringKind { return m.kind }

func (m *StringMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	value, status := EvaluateElement(argument, frame, ctx)
	if status.IsError() {
		return StatusMax(status, onFail.Status)
	}
	if !value.IsStr() {
		onFail.Emit(argument.Span(),
			"Expected a string, but got "+value.Type().String()+".", ctx)
		return onFail.Status
	}
	m.set(value.AsString(), argument.Span())
	m.kind = value.StringKind()
	return StatusOK
}

// SpliceableToStringMatcher splices any spliceable value to plain text and
// stores the result.
type SpliceableToStringMatcher struct {
	valueHolder[string]
}

func (m *SpliceableToStringMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	if !ast.IsSpliceableValue(argument) {
		onFail.Emit(argument.Span(),
			"Expected a spliceable value, but got "+StaticType(argument).String()+".", ctx)
		return onFail.Status
	}
	text, status := EvaluateToPlaintext(argument, frame, ctx)
	if status != StatusOK {
		return status
	}
	m.set(text, argument.Span())
	return StatusOK
}

// BooleanMatcher enforces type bool.
type BooleanMatcher struct {
	valueHolder[bool]
}

func (m *BooleanMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	value, status := EvaluateElement(argument, frame, ctx)
	if status.IsError() {
		return StatusMax(status, onFail.Status)
	}
	if !value.IsBool() {
		onFail.Emit(argument.Span(), "Expected a boolean (true or false).", ctx)
		return onFail.Status
	}
	m.set(value.AsBool(), argument.Span())
	return StatusOK
}

// IntegerMatcher enforces type int.
type IntegerMatcher struct {
	valueHolder[bigint.BigInt]
}

func (m *IntegerMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	value, status := EvaluateElement(argument, frame, ctx)
	if status.IsError() {
		return StatusMax(status, onFail.Status)
	}
	if !value.IsInt() {
		onFail.Emit(argument.Span(), "Expected an integer.", ctx)
		return onFail.Status
	}
	m.set(value.AsInt(), argument.Span())
	return StatusOK
}

// FloatMatcher enforces type float.
type FloatMatcher struct {
	valueHolder[float64]
}

func (m *FloatMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	value, status := EvaluateElement(argument, frame, ctx)
	if status.IsError() {
		return StatusMax(status, onFail.Status)
	}
	if !value.IsFloat() {
		onFail.Emit(argument.Span(), "Expected a float.", ctx)
		return onFail.Status
	}
	m.set(value.AsFloat(), argument.Span())
	return StatusOK
}

// SortedOptionsMatcher validates that the spliced string is one of a
// sorted list of options; on mismatch the error lists all valid options.
type SortedOptionsMatcher struct {
	options []string
	index   int
}

// NewSortedOptionsMatcher creates a matcher over the given options, which
// must be sorted.
func NewSortedOptionsMatcher(options []string) *SortedOptionsMatcher {
	if !sort.StringsAreSorted(options) {
		panic("eval: options must be sorted")
	}
	return &SortedOptionsMatcher{options: options, index: -1}
}

func (m *SortedOptionsMatcher) WasMatched() bool { return m.index >= 0 }

// GetOrDefault returns the matched option or a fallback.
func (m *SortedOptionsMatcher) GetOrDefault(fallback string) string {
	if m.index < 0 {
		return fallback
	}
	return m.options[m.index]
}

// IndexOrDefault returns the matched option index or a fallback.
func (m *SortedOptionsMatcher) IndexOrDefault(fallback int) int {
	if m.index < 0 {
		return fallback
	}
	return m.index
}

func (m *SortedOptionsMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	if !ast.IsSpliceableValue(argument) {
		onFail.Emit(argument.Span(),
			"Expected a spliceable value, but got "+StaticType(argument).String()+".", ctx)
		return onFail.Status
	}
	text, status := EvaluateToPlaintext(argument, frame, ctx)
	if status != StatusOK {
		return status
	}
	i := sort.SearchStrings(m.options, text)
	if i == len(m.options) || m.options[i] != text {
		var sb strings.Builder
		sb.WriteString("\"" + text + "\" does not match any of the valid options (")
		for j, o := range m.options {
			if j != 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("\"" + o + "\"")
		}
		sb.WriteString(").")
		onFail.Emit(argument.Span(), sb.String(), ctx)
		return onFail.Status
	}
	m.index = i
	return StatusOK
}

// expectedTypeIsSatisfiable reports whether some runtime value could be
// convertible to an expected type: `any` accepts everything, a union or
// lazy wrapper is satisfiable if a component is, and otherwise a Value
// must be able to hold the kind at all.
func expectedTypeIsSatisfiable(t types.Type) bool {
	switch t.Kind() {
	case types.Any:
		return true
	case types.Union, types.Lazy:
		for _, m := range t.Members() {
			if expectedTypeIsSatisfiable(m) {
				return true
			}
		}
		return false
	}
	return t.Kind().IsValueHoldable()
}

func validateExpectedType(expected types.Type) {
	// A matcher for a type no value can have (nothing, a bare pack or
	// named wrapper) would reject every argument; that is a defect in the
	// directive's parameter declaration, not in the document.
	if !expectedTypeIsSatisfiable(expected) {
		panic("eval: no value can satisfy the expected type " + expected.String())
	}
}

// ValueOfTypeMatcher accepts any value analytically convertible to a
// declared target type.
type ValueOfTypeMatcher struct {
	valueHolder[Value]
	expected types.Type
}

// NewValueOfTypeMatcher creates a matcher for the expected type, which
// must be satisfiable by some value.
func NewValueOfTypeMatcher(expected types.Type) *ValueOfTypeMatcher {
	validateExpectedType(expected)
	return &ValueOfTypeMatcher{expected: expected}
}

func (m *ValueOfTypeMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	value, status := EvaluateElement(argument, frame, ctx)
	if status.IsError() {
		return StatusMax(status, onFail.Status)
	}
	if !value.Type().ConvertibleTo(m.expected) {
		onFail.Emit(argument.Span(),
			"Expected a value of type "+m.expected.String()+
				", but got "+value.Type().String()+".", ctx)
		return onFail.Status
	}
	m.set(value, argument.Span())
	return StatusOK
}

// LazyValueOfTypeMatcher is the lazy counterpart of ValueOfTypeMatcher:
// the argument is captured unevaluated, with only its static type checked.
type LazyValueOfTypeMatcher struct {
	expected types.Type
	markup   ast.Element
	frame    FrameIndex
}

// NewLazyValueOfTypeMatcher creates a matcher for the expected type,
// which must be satisfiable by some value.
func NewLazyValueOfTypeMatcher(expected types.Type) *LazyValueOfTypeMatcher {
	validateExpectedType(expected)
	return &LazyValueOfTypeMatcher{expected: expected}
}

func (m *LazyValueOfTypeMatcher) WasMatched() bool { return m.markup != nil }

// Get returns the captured element.
func (m *LazyValueOfTypeMatcher) Get() ast.Element { return m.markup }

// Frame returns the frame the element was captured in.
func (m *LazyValueOfTypeMatcher) Frame() FrameIndex { return m.frame }

func (m *LazyValueOfTypeMatcher) MatchValue(
	argument ast.Element, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	actual := StaticType(argument)
	if !actual.Equal(types.AnyType) && !actual.ConvertibleTo(m.expected) {
		onFail.Emit(argument.Span(),
			"Expected a value of type "+m.expected.String()+
				", but got "+actual.String()+".", ctx)
		return onFail.Status
	}
	m.markup = argument
	m.frame = frame
	return StatusOK
}

// Optionality marks a parameter as mandatory or optional.
type Optionality uint8

const (
	Mandatory Optionality = iota
	Optional
)

// GroupMemberMatcher pairs a parameter name, its optionality, and a value
// matcher.
type GroupMemberMatcher struct {
	Name        string
	Optionality Optionality
	Value       ValueMatcher
}

// PackMatcher binds a list of group members to parameters.
type PackMatcher interface {
	MatchPack(members []ast.GroupMember, frame FrameIndex, ctx *Context, onFail *MatchFailOptions) Status
}

// PackUsualMatcher binds members to parameters by name and position, with
// ellipsis members recursively expanding the enclosing call's arguments.
type PackUsualMatcher struct {
	Members []GroupMemberMatcher
}

// NewPackUsualMatcher creates a matcher over the given parameters.
func NewPackUsualMatcher(members ...GroupMemberMatcher) *PackUsualMatcher {
	return &PackUsualMatcher{Members: members}
}

func (m *PackUsualMatcher) MatchPack(
	members []ast.GroupMember, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	indices := make([]int, len(m.Members))
	for i := range indices {
		indices[i] = -1
	}
	status := m.doMatch(members, frame, ctx, onFail, indices, 0)
	if status != StatusOK {
		return status
	}

	for i := range m.Members {
		parameter := &m.Members[i]
		if parameter.Optionality == Mandatory && !parameter.Value.WasMatched() {
			onFail.Emit(onFail.Location,
				"No argument for parameter \""+parameter.Name+"\" was provided.", ctx)
			return onFail.Status
		}
	}
	return StatusOK
}

func (m *PackUsualMatcher) doMatch(
	members []ast.GroupMember, frame FrameIndex, ctx *Context,
	onFail *MatchFailOptions, argumentIndexByParameter []int, cumulativeArgIndex int,
) Status {
	encounteredNamed := false

	for argIndex := range members {
		member := &members[argIndex]
		switch member.Kind() {
		case ast.MemberPositional:
			if encounteredNamed {
				onFail.Emit(member.Span(),
					"Providing a positional argument after a named argument is not valid.", ctx)
				return onFail.Status
			}
			parameter := argIndex + cumulativeArgIndex
			if parameter >= len(argumentIndexByParameter) {
				onFail.Emit(member.Span(), "Too many arguments.", ctx)
				return onFail.Status
			}
			argumentIndexByParameter[parameter] = argIndex
			status := m.Members[parameter].Value.MatchValue(member.Value(), frame, ctx, onFail)
			if status != StatusOK {
				return status
			}

		case ast.MemberEllipsis:
			// Forwarding: match the enclosing frame's own arguments, in the
			// enclosing frame's content frame, continuing at the same
			// cumulative parameter position.
			enclosing := enclosingInvocation(ctx, frame)
			if enclosing == nil {
				onFail.Emit(member.Span(),
					"An ellipsis argument is only valid inside a macro.", ctx)
				return onFail.Status
			}
			status := m.doMatch(
				enclosing.ArgumentMembers(),
				enclosing.ContentFrame,
				ctx, onFail, argumentIndexByParameter, cumulativeArgIndex+argIndex,
			)
			if status != StatusOK {
				return status
			}

		case ast.MemberNamed:
			encounteredNamed = true
			name := member.NameText()
			found := false
			for i := range m.Members {
				if m.Members[i].Name != name {
					continue
				}
				if argumentIndexByParameter[i] != -1 {
					onFail.Emit(member.NameSpan(),
						"The named argument \""+name+"\" cannot be provided more than once.", ctx)
					return onFail.Status
				}
				argumentIndexByParameter[i] = argIndex
				status := m.Members[i].Value.MatchValue(member.Value(), frame, ctx, onFail)
				if status != StatusOK {
					return status
				}
				found = true
				break
			}
			if !found {
				onFail.Emit(member.NameSpan(),
					"The named argument \""+name+"\" does not correspond to any parameter.", ctx)
				return onFail.Status
			}
		}
	}
	return StatusOK
}

// EmptyPackMatcher accepts no arguments at all; every non-ellipsis member
// is an error.
type EmptyPackMatcher struct{}

func (EmptyPackMatcher) MatchPack(
	members []ast.GroupMember, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	result := StatusOK
	for i := range members {
		member := &members[i]
		if member.Kind() == ast.MemberEllipsis {
			enclosing := enclosingInvocation(ctx, frame)
			if enclosing == nil {
				onFail.Emit(member.Span(),
					"An ellipsis argument is only valid inside a macro.", ctx)
				return onFail.Status
			}
			status := EmptyPackMatcher{}.MatchPack(
				enclosing.ArgumentMembers(), enclosing.ContentFrame, ctx, onFail,
			)
			if status != StatusOK {
				return status
			}
			continue
		}
		onFail.Emit(member.Span(),
			"This argument does not match any parameter (no parameters are accepted).", ctx)
		if onFail.Status == StatusFatal {
			return onFail.Status
		}
		result = onFail.Status
	}
	return result
}

// GroupPackValueMatcher collects a pack of positional values, evaluating
// each. Named members are rejected; ellipsis members forward.
type GroupPackValueMatcher struct {
	values []matchedValue[Value]
}

// Values returns the collected values in order.
func (m *GroupPackValueMatcher) Values() []Value {
	out := make([]Value, len(m.values))
	for i := range m.values {
		out[i] = m.values[i].value
	}
	return out
}

// Locations returns the argument location of each collected value.
func (m *GroupPackValueMatcher) Locations() []ast.FileSourceSpan {
	out := make([]ast.FileSourceSpan, len(m.values))
	for i := range m.values {
		out[i] = m.values[i].location
	}
	return out
}

func (m *GroupPackValueMatcher) MatchPack(
	members []ast.GroupMember, frame FrameIndex, ctx *Context, onFail *MatchFailOptions,
) Status {
	for i := range members {
		member := &members[i]
		switch member.Kind() {
		case ast.MemberPositional:
			value, status := EvaluateElement(member.Value(), frame, ctx)
			if status.IsError() {
				return StatusMax(status, onFail.Status)
			}
			m.values = append(m.values, matchedValue[Value]{value, member.Span()})

		case ast.MemberNamed:
			onFail.Emit(member.NameSpan(),
				"A pack of values was expected here. Named arguments cannot be provided.", ctx)
			return onFail.Status

		case ast.MemberEllipsis:
			enclosing := enclosingInvocation(ctx, frame)
			if enclosing == nil {
				onFail.Emit(member.Span(),
					"An ellipsis argument is only valid inside a macro.", ctx)
				return onFail.Status
			}
			status := m.MatchPack(
				enclosing.ArgumentMembers(), enclosing.ContentFrame, ctx, onFail,
			)
			if status != StatusOK {
				return status
			}
		}
	}
	return StatusOK
}

// enclosingInvocation returns the invocation owning the given content
// frame, or nil for root content.
func enclosingInvocation(ctx *Context, frame FrameIndex) *Invocation {
	if frame < 0 || int(frame) >= ctx.Stack.Size() {
		return nil
	}
	return &ctx.Stack.At(frame).Invocation
}

// CallMatcher binds an invocation's argument group to a pack matcher.
type CallMatcher struct {
	Pack PackMatcher
}

// MatchCall matches the call's arguments, using the call's content frame
// for evaluation and ellipsis resolution.
func (m CallMatcher) MatchCall(
	call *Invocation, ctx *Context, emit FailCallback, onFailStatus Status,
) Status {
	onFail := MatchFailOptions{
		Emit:     emit,
		Status:   onFailStatus,
		Location: call.ArgumentsSourceSpan(),
	}
	return m.Pack.MatchPack(call.ArgumentMembers(), call.ContentFrame, ctx, &onFail)
}
