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

package parser

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/reporter"
)

// shape is a comparable summary of an AST for use with cmp.Diff.
type shape struct {
	Kind     string
	Source   string
	Name     string
	Children []shape
}

func shapeOf(e ast.Element) shape {
	switch n := e.(type) {
	case *ast.Primary:
		s := shape{Kind: n.Kind().String(), Source: n.Source()}
		for _, child := range n.Elements() {
			s.Children = append(s.Children, shapeOf(child))
		}
		for i := range n.Members() {
			s.Children = append(s.Children, memberShapeOf(&n.Members()[i]))
		}
		return s
	case *ast.Directive:
		s := shape{Kind: "directive", Source: n.Source(), Name: n.Name()}
		if n.Arguments() != nil {
			s.Children = append(s.Children, shapeOf(n.Arguments()))
		}
		if n.Content() != nil {
			s.Children = append(s.Children, shapeOf(n.Content()))
		}
		return s
	}
	return shape{}
}

func memberShapeOf(m *ast.GroupMember) shape {
	switch m.Kind() {
	case ast.MemberEllipsis:
		return shape{Kind: "ellipsis", Source: m.Source()}
	case ast.MemberNamed:
		return shape{
			Kind:     "named",
			Source:   m.Source(),
			Name:     m.NameText(),
			Children: []shape{shapeOf(m.Value())},
		}
	}
	return shape{
		Kind:     "positional",
		Source:   m.Source(),
		Children: []shape{shapeOf(m.Value())},
	}
}

func parseNoError(t *testing.T, source string) []ast.Element {
	t.Helper()
	elements, ok := Parse(source, ast.FileMain,
		func(id string, _ ast.SourceSpan, message string) {
			t.Errorf("unexpected error %s: %s", id, message)
		})
	require.True(t, ok)
	return elements
}

func TestParserSourceReconstruction(t *testing.T) {
	sources := []string{
		"hello",
		`a\b{c}d`,
		`\d(x = 1, "s"){body}`,
		"\\: comment\nrest",
		`\m(a, b = 2, ...)`,
		`\outer{\inner(1){two}}`,
	}
	for _, source := range sources {
		elements := parseNoError(t, source)
		var sb strings.Builder
		for _, e := range elements {
			sb.WriteString(e.Source())
		}
		assert.Equal(t, source, sb.String(), "reconstruction of %q", source)
	}
}

func TestParserDirectiveNames(t *testing.T) {
	elements := parseNoError(t, `\outer{\inner(1){two}}\solo`)
	var names []string
	ast.Walk(elements, &nameCollector{names: &names})
	assert.Equal(t, []string{"outer", "inner", "solo"}, names)
	for _, name := range names {
		assert.True(t, IsIdentifier(name))
	}
}

type nameCollector struct {
	names *[]string
}

func (c *nameCollector) VisitPrimary(*ast.Primary) bool { return true }

func (c *nameCollector) VisitDirective(d *ast.Directive) bool {
	*c.names = append(*c.names, d.Name())
	return true
}

func TestParserStructure(t *testing.T) {
	elements := parseNoError(t, `\d(x = 1, "s", ...){in \e}`)
	require.Len(t, elements, 1)

	got := shapeOf(elements[0])
	want := shape{
		Kind:   "directive",
		Source: `\d(x = 1, "s", ...){in \e}`,
		Name:   "d",
		Children: []shape{
			{
				Kind:   "group",
				Source: `(x = 1, "s", ...)`,
				Children: []shape{
					{
						Kind:   "named",
						Source: "x = 1",
						Name:   "x",
						Children: []shape{
							{Kind: "integer literal", Source: "1"},
						},
					},
					{
						Kind:   "positional",
						Source: `"s"`,
						Children: []shape{
							{
								Kind:   "quoted string",
								Source: `"s"`,
								Children: []shape{
									{Kind: "text", Source: "s"},
								},
							},
						},
					},
					{Kind: "ellipsis", Source: "..."},
				},
			},
			{
				Kind:   "block",
				Source: `{in \e}`,
				Children: []shape{
					{Kind: "text", Source: "in "},
					{Kind: "directive", Source: `\e`, Name: "e"},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AST shape mismatch (-want +got):\n%s", diff)
	}
}

func TestParserLiterals(t *testing.T) {
	elements := parseNoError(t, `\d(42, -7, 0x10, 1.5, -infinity, true, null, unit)`)
	require.Len(t, elements, 1)
	d := ast.AsDirective(elements[0])
	require.NotNil(t, d)
	members := d.ArgumentMembers()
	require.Len(t, members, 8)

	intValue := ast.AsPrimary(members[0].Value())
	require.NotNil(t, intValue)
	assert.Equal(t, ast.PrimaryInt, intValue.Kind())
	assert.True(t, intValue.IntValue().InRange)
	got, ok := intValue.IntValue().Value.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(42), got)

	negValue := ast.AsPrimary(members[1].Value())
	got, ok = negValue.IntValue().Value.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(-7), got)

	hexValue := ast.AsPrimary(members[2].Value())
	got, ok = hexValue.IntValue().Value.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(16), got)

	floatValue := ast.AsPrimary(members[3].Value())
	assert.Equal(t, ast.PrimaryFloat, floatValue.Kind())
	assert.Equal(t, 1.5, floatValue.FloatValue().Value)
	assert.Equal(t, ast.FloatOK, floatValue.FloatValue().Status)

	infValue := ast.AsPrimary(members[4].Value())
	assert.Equal(t, ast.PrimaryInfinity, infValue.Kind())
	assert.Equal(t, "-infinity", infValue.Source())

	boolValue := ast.AsPrimary(members[5].Value())
	assert.Equal(t, ast.PrimaryBool, boolValue.Kind())
	assert.True(t, boolValue.BoolValue())

	assert.Equal(t, ast.PrimaryNull, ast.AsPrimary(members[6].Value()).Kind())
	assert.Equal(t, ast.PrimaryUnit, ast.AsPrimary(members[7].Value()).Kind())
}

func TestParserIntRange(t *testing.T) {
	// 2^127 does not fit the signed 128-bit fast path.
	elements := parseNoError(t, `\d(170141183460469231731687303715884105728)`)
	d := ast.AsDirective(elements[0])
	value := ast.AsPrimary(d.ArgumentMembers()[0].Value())
	assert.Equal(t, ast.PrimaryInt, value.Kind())
	assert.False(t, value.IntValue().InRange)

	// 2^127 - 1 does.
	elements = parseNoError(t, `\d(170141183460469231731687303715884105727)`)
	d = ast.AsDirective(elements[0])
	value = ast.AsPrimary(d.ArgumentMembers()[0].Value())
	assert.True(t, value.IntValue().InRange)
}

func TestParserFloatStatus(t *testing.T) {
	elements := parseNoError(t, `\d(1e999, -1e999, 1e-999)`)
	d := ast.AsDirective(elements[0])
	members := d.ArgumentMembers()
	require.Len(t, members, 3)

	over := ast.AsPrimary(members[0].Value()).FloatValue()
	assert.Equal(t, ast.FloatOverflow, over.Status)
	assert.True(t, math.IsInf(over.Value, 1))

	negOver := ast.AsPrimary(members[1].Value()).FloatValue()
	assert.Equal(t, ast.FloatOverflow, negOver.Status)
	assert.True(t, math.IsInf(negOver.Value, -1))

	under := ast.AsPrimary(members[2].Value()).FloatValue()
	assert.Equal(t, ast.FloatUnderflow, under.Status)
	assert.Equal(t, 0.0, under.Value)
}

func TestParserComments(t *testing.T) {
	elements := parseNoError(t, "\\: note\nrest")
	require.Len(t, elements, 2)
	comment := ast.AsPrimary(elements[0])
	require.NotNil(t, comment)
	assert.Equal(t, ast.PrimaryComment, comment.Kind())
	assert.Equal(t, " note", comment.CommentText())
	assert.Equal(t, 1, comment.CommentSuffixLength())

	// A comment ended by EOF has an empty suffix.
	elements = parseNoError(t, "\\: note")
	comment = ast.AsPrimary(elements[0])
	assert.Equal(t, 0, comment.CommentSuffixLength())
	assert.Equal(t, " note", comment.CommentText())
}

func TestParserBlockUnclosed(t *testing.T) {
	var ids []string
	_, ok := Parse(`\b{abc`, ast.FileMain,
		func(id string, _ ast.SourceSpan, _ string) {
			ids = append(ids, id)
		})
	assert.False(t, ok)
	assert.Contains(t, ids, reporter.IDParseBlockUnclosed)
}

func TestParserPositionalAfterNamedIsSyntacticallyValid(t *testing.T) {
	// The parser accepts positional members after named ones; rejecting
	// them is the parameter matcher's concern.
	elements := parseNoError(t, `\d(a = 1, b)`)
	d := ast.AsDirective(elements[0])
	members := d.ArgumentMembers()
	require.Len(t, members, 2)
	assert.Equal(t, ast.MemberNamed, members[0].Kind())
	assert.Equal(t, ast.MemberPositional, members[1].Kind())
}

func TestParserEllipsisDetection(t *testing.T) {
	elements := parseNoError(t, `\d(a, ...)`)
	assert.True(t, ast.AsDirective(elements[0]).HasEllipsis())

	elements = parseNoError(t, `\d(a)`)
	assert.False(t, ast.AsDirective(elements[0]).HasEllipsis())
}
