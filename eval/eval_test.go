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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/parser"
	"github.com/eisenwave/cowel/policy"
	"github.com/eisenwave/cowel/reporter"
	"github.com/eisenwave/cowel/types"
)

func TestStatusMax(t *testing.T) {
	assert.Equal(t, StatusOK, StatusMax(StatusOK, StatusOK))
	assert.Equal(t, StatusError, StatusMax(StatusOK, StatusError))
	assert.Equal(t, StatusErrorBreak, StatusMax(StatusError, StatusBreak))
	assert.Equal(t, StatusErrorBreak, StatusMax(StatusBreak, StatusError))
	assert.Equal(t, StatusFatal, StatusMax(StatusError, StatusFatal))
	assert.Equal(t, StatusBreak, StatusMax(StatusBreak, StatusOK))
}

func TestStatusPredicates(t *testing.T) {
	assert.False(t, StatusOK.IsError())
	assert.False(t, StatusBreak.IsError())
	assert.True(t, StatusError.IsError())
	assert.True(t, StatusErrorBreak.IsError())
	assert.True(t, StatusFatal.IsError())

	assert.True(t, StatusBreak.IsBreak())
	assert.True(t, StatusErrorBreak.IsBreak())
	assert.False(t, StatusFatal.IsBreak())
}

func TestValueBasics(t *testing.T) {
	assert.True(t, Unit.IsUnit())
	assert.True(t, Null.IsNull())
	assert.True(t, True.AsBool())
	assert.False(t, False.AsBool())

	s := String("hi", ast.StringASCII)
	assert.True(t, s.IsStr())
	assert.Equal(t, "hi", s.AsString())
	assert.Equal(t, ast.StringASCII, s.StringKind())

	assert.True(t, Unit.Equal(Unit))
	assert.False(t, Unit.Equal(Null))
	assert.True(t, String("a", ast.StringUnknown).Equal(String("a", ast.StringASCII)))
	assert.False(t, True.Equal(False))
}

// testDirective parses source and returns its single directive element.
func testDirective(t *testing.T, source string) *ast.Directive {
	t.Helper()
	elements, ok := parser.Parse(source, ast.FileMain, nil)
	require.True(t, ok)
	require.Len(t, elements, 1)
	d := ast.AsDirective(elements[0])
	require.NotNil(t, d)
	return d
}

func testContext() *Context {
	return NewContext(Kernel(), reporter.NewHandler(nil, reporter.SeverityNone))
}

type failRecorder struct {
	messages []string
}

func (r *failRecorder) callback() FailCallback {
	return func(_ ast.FileSourceSpan, message string, _ *Context) {
		r.messages = append(r.messages, message)
	}
}

func matchCall(t *testing.T, source string, pack PackMatcher) (Status, *failRecorder) {
	t.Helper()
	ctx := testContext()
	d := testDirective(t, source)
	call := MakeInvocation(d, FrameRoot, 0)
	recorder := &failRecorder{}
	status := CallMatcher{Pack: pack}.MatchCall(&call, ctx, recorder.callback(), StatusError)
	return status, recorder
}

func TestPackMatcherPositionalAndNamed(t *testing.T) {
	var first, second SpliceableToStringMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "first", Optionality: Mandatory, Value: &first},
		GroupMemberMatcher{Name: "second", Optionality: Optional, Value: &second},
	)
	status, recorder := matchCall(t, `\d(a, second = b)`, pack)
	assert.Equal(t, StatusOK, status)
	assert.Empty(t, recorder.messages)
	assert.Equal(t, "a", first.Get())
	assert.Equal(t, "b", second.Get())
}

func TestPackMatcherPositionalAfterNamed(t *testing.T) {
	var first, second SpliceableToStringMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "first", Optionality: Optional, Value: &first},
		GroupMemberMatcher{Name: "second", Optionality: Optional, Value: &second},
	)
	status, recorder := matchCall(t, `\d(first = a, b)`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], "positional argument after a named argument")
}

func TestPackMatcherUnknownNamed(t *testing.T) {
	var first SpliceableToStringMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "first", Optionality: Optional, Value: &first},
	)
	status, recorder := matchCall(t, `\d(nosuch = a)`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], "does not correspond to any parameter")
}

func TestPackMatcherDuplicateNamed(t *testing.T) {
	var first SpliceableToStringMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "first", Optionality: Optional, Value: &first},
	)
	status, recorder := matchCall(t, `\d(first = a, first = b)`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], "more than once")
}

func TestPackMatcherMissingMandatory(t *testing.T) {
	var first SpliceableToStringMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "first", Optionality: Mandatory, Value: &first},
	)
	status, recorder := matchCall(t, `\d()`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], `parameter "first"`)
}

func TestPackMatcherTooManyPositional(t *testing.T) {
	var first SpliceableToStringMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "first", Optionality: Optional, Value: &first},
	)
	status, recorder := matchCall(t, `\d(a, b)`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], "Too many arguments")
}

func TestTypedMatchers(t *testing.T) {
	var b BooleanMatcher
	var i IntegerMatcher
	var f FloatMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "b", Optionality: Mandatory, Value: &b},
		GroupMemberMatcher{Name: "i", Optionality: Mandatory, Value: &i},
		GroupMemberMatcher{Name: "f", Optionality: Mandatory, Value: &f},
	)
	status, recorder := matchCall(t, `\d(true, 42, 1.5)`, pack)
	assert.Equal(t, StatusOK, status)
	assert.Empty(t, recorder.messages)
	assert.True(t, b.Get())
	got, ok := i.Get().Int64()
	require.True(t, ok)
	assert.Equal(t, int64(42), got)
	assert.Equal(t, 1.5, f.Get())
}

func TestTypedMatcherMismatch(t *testing.T) {
	var i IntegerMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "i", Optionality: Mandatory, Value: &i},
	)
	status, recorder := matchCall(t, `\d(true)`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], "Expected an integer")
}

func TestSortedOptionsMatcher(t *testing.T) {
	m := NewSortedOptionsMatcher([]string{"left", "middle", "right"})
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "side", Optionality: Mandatory, Value: m},
	)
	status, _ := matchCall(t, `\d(middle)`, pack)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "middle", m.GetOrDefault("left"))
	assert.Equal(t, 1, m.IndexOrDefault(0))

	bad := NewSortedOptionsMatcher([]string{"left", "right"})
	pack = NewPackUsualMatcher(
		GroupMemberMatcher{Name: "side", Optionality: Mandatory, Value: bad},
	)
	status, recorder := matchCall(t, `\d(up)`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], `"left"`)
	assert.Contains(t, recorder.messages[0], `"right"`)
}

func TestLazyMarkupMatcher(t *testing.T) {
	var lazy LazyMarkupMatcher
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "body", Optionality: Mandatory, Value: &lazy},
	)
	status, _ := matchCall(t, `\d({never evaluated \nosuch})`, pack)
	assert.Equal(t, StatusOK, status)
	require.True(t, lazy.WasMatched())
	block := ast.AsPrimary(lazy.Get())
	require.NotNil(t, block)
	assert.Equal(t, ast.PrimaryBlock, block.Kind())
	assert.Equal(t, FrameRoot, lazy.Frame())
}

func TestSpliceAllText(t *testing.T) {
	ctx := testContext()
	elements, ok := parser.Parse(`a\{b\}c`, ast.FileMain, nil)
	require.True(t, ok)

	sink := policy.NewVectorSink(policy.LanguageHTML)
	out := policy.NewHTMLPolicy(sink)
	status := SpliceAll(out, elements, FrameRoot, ctx)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "a{b}c", sink.String())
}

func TestSpliceValueFormats(t *testing.T) {
	ctx := testContext()
	cases := []struct {
		value Value
		want  string
	}{
		{Unit, ""},
		{Null, "null"},
		{True, "true"},
		{False, "false"},
		{String("x < y", ast.StringUnknown), "x &lt; y"},
		{Float(1.5), "1.5"},
	}
	for _, c := range cases {
		sink := policy.NewVectorSink(policy.LanguageHTML)
		out := policy.NewHTMLPolicy(sink)
		assert.Equal(t, StatusOK, SpliceValue(out, c.value, ctx))
		assert.Equal(t, c.want, sink.String())
	}
}

func TestUnknownDirectiveEmitsPlaceholder(t *testing.T) {
	logger := &collectingLogger{}
	ctx := NewContext(Kernel(), reporter.NewHandler(logger, reporter.SeverityMin))
	ctx.SetErrorBehavior(ErrorPlaceholder{})

	elements, ok := parser.Parse(`\nosuch`, ast.FileMain, nil)
	require.True(t, ok)

	sink := policy.NewVectorSink(policy.LanguageHTML)
	out := policy.NewHTMLPolicy(sink)
	status := SpliceAll(out, elements, FrameRoot, ctx)
	assert.Equal(t, StatusError, status)
	assert.Equal(t, `<error->\nosuch</error->`, sink.String())
	require.Len(t, logger.diagnostics, 1)
	assert.Equal(t, reporter.IDDirectiveLookupUnresolved, logger.diagnostics[0].ID)
}

type collectingLogger struct {
	diagnostics []reporter.Diagnostic
}

func (l *collectingLogger) Log(d reporter.Diagnostic) {
	l.diagnostics = append(l.diagnostics, d)
}

func TestValueOfTypeMatcher(t *testing.T) {
	m := NewValueOfTypeMatcher(types.UnionOf(types.IntType, types.NullType))
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "v", Optionality: Mandatory, Value: m},
	)
	status, _ := matchCall(t, `\d(42)`, pack)
	assert.Equal(t, StatusOK, status)
	assert.True(t, m.Get().IsInt())

	bad := NewValueOfTypeMatcher(types.IntType)
	pack = NewPackUsualMatcher(
		GroupMemberMatcher{Name: "v", Optionality: Mandatory, Value: bad},
	)
	status, recorder := matchCall(t, `\d(true)`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], "Expected a value of type int")
}

func TestValueOfTypeMatcherRejectsUnsatisfiableTypes(t *testing.T) {
	// Declaring a parameter of a type no value can have is a defect in the
	// directive, caught at matcher construction.
	assert.Panics(t, func() { NewValueOfTypeMatcher(types.NothingType) })
	assert.Panics(t, func() { NewValueOfTypeMatcher(types.PackOf(types.IntType)) })
	assert.Panics(t, func() { NewValueOfTypeMatcher(types.NamedOf(types.StrType)) })
	assert.Panics(t, func() { NewLazyValueOfTypeMatcher(types.PackOf(types.IntType)) })

	assert.NotPanics(t, func() { NewValueOfTypeMatcher(types.AnyType) })
	assert.NotPanics(t, func() { NewValueOfTypeMatcher(types.LazyOf(types.IntType)) })
	assert.NotPanics(t, func() {
		NewValueOfTypeMatcher(types.UnionOf(types.IntType, types.NullType))
	})
}

func TestLazyValueOfTypeMatcher(t *testing.T) {
	// The argument is captured without evaluation; only its static type is
	// checked, and directives have static type any.
	m := NewLazyValueOfTypeMatcher(types.IntType)
	pack := NewPackUsualMatcher(
		GroupMemberMatcher{Name: "v", Optionality: Mandatory, Value: m},
	)
	status, _ := matchCall(t, `\d(\nosuch)`, pack)
	assert.Equal(t, StatusOK, status)
	require.True(t, m.WasMatched())
	assert.NotNil(t, ast.AsDirective(m.Get()))

	bad := NewLazyValueOfTypeMatcher(types.IntType)
	pack = NewPackUsualMatcher(
		GroupMemberMatcher{Name: "v", Optionality: Mandatory, Value: bad},
	)
	status, recorder := matchCall(t, `\d(true)`, pack)
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], "but got bool")
}

func TestEmptyPackMatcher(t *testing.T) {
	status, recorder := matchCall(t, `\d()`, EmptyPackMatcher{})
	assert.Equal(t, StatusOK, status)
	assert.Empty(t, recorder.messages)

	status, recorder = matchCall(t, `\d(extra)`, EmptyPackMatcher{})
	assert.Equal(t, StatusError, status)
	require.Len(t, recorder.messages, 1)
	assert.Contains(t, recorder.messages[0], "no parameters are accepted")
}

func TestLazyThunkSplicing(t *testing.T) {
	ctx := testContext()
	elements, ok := parser.Parse(`\d({lazy text})`, ast.FileMain, nil)
	require.True(t, ok)
	d := ast.AsDirective(elements[0])
	block := ast.AsPrimary(d.ArgumentMembers()[0].Value())
	require.Equal(t, ast.PrimaryBlock, block.Kind())

	sink := policy.NewVectorSink(policy.LanguageHTML)
	out := policy.NewHTMLPolicy(sink)
	status := SpliceValue(out, BlockValue(block, FrameRoot), ctx)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "lazy text", sink.String())
}

func TestDirectiveThunkSplicing(t *testing.T) {
	builtins := BehaviorTable{
		"emit": Generative{F: func(out policy.ContentPolicy, _ *Invocation, _ *Context) Status {
			out.Write("emitted", policy.LanguageText)
			return StatusOK
		}},
	}
	ctx := NewContext(builtins, reporter.NewHandler(nil, reporter.SeverityNone))
	elements, ok := parser.Parse(`\emit`, ast.FileMain, nil)
	require.True(t, ok)
	d := ast.AsDirective(elements[0])

	sink := policy.NewVectorSink(policy.LanguageHTML)
	out := policy.NewHTMLPolicy(sink)
	status := SpliceValue(out, DirectiveValue(d, FrameRoot), ctx)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "emitted", sink.String())
}
