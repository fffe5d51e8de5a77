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

// Package ast defines the abstract syntax tree for COWEL documents.
//
// The tree has exactly two element types: Primary, which covers every node
// that is not a directive invocation (literals, text, escapes, comments,
// quoted strings, blocks, and groups), and Directive. A document is a flat
// sequence of markup elements; blocks nest recursively.
//
// Nodes are constructed by the parser and never mutated afterwards. Every
// node retains its original source text, so diagnostics and as-text
// operations can always cite the input verbatim.
package ast

import "github.com/eisenwave/cowel/bigint"

// PrimaryKind is the kind of a Primary node.
type PrimaryKind uint8

const (
	PrimaryUnit PrimaryKind = iota
	PrimaryNull
	PrimaryBool
	PrimaryInt
	PrimaryFloat
	PrimaryInfinity
	PrimaryUnquotedString
	PrimaryQuotedString
	PrimaryBlock
	PrimaryGroup
	PrimaryText
	PrimaryEscape
	PrimaryComment
)

// IsValue reports whether a primary of this kind is a value, i.e. something
// that can be passed around within the value sublanguage and bound to
// directive parameters. Markup elements like text or comments are not values.
func (k PrimaryKind) IsValue() bool {
	switch k {
	case PrimaryText, PrimaryEscape, PrimaryComment:
		return false
	}
	return true
}

// IsSpliceable reports whether a primary of this kind can be spliced into
// markup. Groups are values but cannot be spliced.
func (k PrimaryKind) IsSpliceable() bool {
	return k != PrimaryGroup
}

// IsSpliceableValue reports whether the kind is both a value and spliceable.
func (k PrimaryKind) IsSpliceableValue() bool {
	return k.IsValue() && k.IsSpliceable()
}

func (k PrimaryKind) String() string {
	switch k {
	case PrimaryUnit:
		return "unit"
	case PrimaryNull:
		return "null"
	case PrimaryBool:
		return "boolean literal"
	case PrimaryInt:
		return "integer literal"
	case PrimaryFloat:
		return "floating-point literal"
	case PrimaryInfinity:
		return "infinity"
	case PrimaryUnquotedString:
		return "unquoted string"
	case PrimaryQuotedString:
		return "quoted string"
	case PrimaryBlock:
		return "block"
	case PrimaryGroup:
		return "group"
	case PrimaryText:
		return "text"
	case PrimaryEscape:
		return "escape"
	case PrimaryComment:
		return "comment"
	}
	return "invalid"
}

// StringKind is a hint about the contents of a string value.
type StringKind uint8

const (
	StringUnknown StringKind = iota
	StringASCII
	StringUnicode
)

// ParsedInt is the result of parsing an integer literal. Value holds the
// parsed integer; InRange is false when the literal exceeds the signed
// 128-bit fast-path range, in which case consumers promote as needed.
type ParsedInt struct {
	Value   bigint.BigInt
	InRange bool
}

// FloatStatus describes the outcome of parsing a float literal.
type FloatStatus uint8

const (
	// FloatOK means Value holds the (possibly rounded) literal value.
	FloatOK FloatStatus = iota
	// FloatOverflow means the literal overflowed; Value holds correctly
	// signed infinity.
	FloatOverflow
	// FloatUnderflow means the literal underflowed; Value holds correctly
	// signed zero.
	FloatUnderflow
)

// ParsedFloat is the result of parsing a floating-point literal.
type ParsedFloat struct {
	Value  float64
	Status FloatStatus
}

// Element is an AST node that can appear as a markup element inside a block
// or the document root, or as the value of a group member. The dynamic type
// is always *Primary or *Directive.
type Element interface {
	Span() FileSourceSpan
	// Source returns the original source text of the node.
	Source() string

	isElement()
}

// AsPrimary returns the element as a *Primary, or nil.
func AsPrimary(e Element) *Primary {
	p, _ := e.(*Primary)
	return p
}

// AsDirective returns the element as a *Directive, or nil.
func AsDirective(e Element) *Directive {
	d, _ := e.(*Directive)
	return d
}

// IsValue reports whether the element can act as a value. Directives are
// values (their result is produced at evaluation time).
func IsValue(e Element) bool {
	if p := AsPrimary(e); p != nil {
		return p.Kind().IsValue()
	}
	return true
}

// IsSpliceableValue reports whether the element can be spliced into markup
// as a value. The spliceability of a directive depends on the type of value
// it evaluates to, which is unknown until evaluated; it is therefore treated
// as spliceable here and decided at splice time.
func IsSpliceableValue(e Element) bool {
	if p := AsPrimary(e); p != nil {
		return p.Kind().IsSpliceableValue()
	}
	return true
}

// Primary is any AST node that is not a directive.
//
// Which accessors are valid depends on the kind: escapes carry an escape
// length, integer and float literals carry their parsed value, blocks and
// quoted strings carry child elements, and groups carry members.
type Primary struct {
	kind       PrimaryKind
	stringKind StringKind
	span       FileSourceSpan
	source     string

	escapeLength  int
	intValue      ParsedInt
	floatValue    ParsedFloat
	commentSuffix int
	elements      []Element
	members       []GroupMember
}

// NewPrimary creates a node of a kind that carries no extra data:
// unit, null, bool, infinity, unquoted strings, and text.
func NewPrimary(kind PrimaryKind, span FileSourceSpan, source string) *Primary {
	return &Primary{kind: kind, span: span, source: source}
}

// NewEscape creates an escape node. The source must begin with a backslash.
func NewEscape(span FileSourceSpan, source string) *Primary {
	return &Primary{
		kind:         PrimaryEscape,
		span:         span,
		source:       source,
		escapeLength: len(source) - 1,
	}
}

// NewComment creates a comment node. suffixLength is the length of the
// terminating LF or CRLF of a line comment, the length of the closing `*\`
// of a terminated block comment, or zero if the comment ends at EOF.
func NewComment(span FileSourceSpan, source string, suffixLength int) *Primary {
	return &Primary{
		kind:          PrimaryComment,
		span:          span,
		source:        source,
		commentSuffix: suffixLength,
	}
}

// NewInt creates an integer literal node.
func NewInt(span FileSourceSpan, source string, value ParsedInt) *Primary {
	return &Primary{kind: PrimaryInt, span: span, source: source, intValue: value}
}

// NewFloat creates a float literal node.
func NewFloat(span FileSourceSpan, source string, value ParsedFloat) *Primary {
	return &Primary{kind: PrimaryFloat, span: span, source: source, floatValue: value}
}

// NewQuotedString creates a quoted string node from its markup elements.
func NewQuotedString(span FileSourceSpan, source string, elements []Element) *Primary {
	return &Primary{kind: PrimaryQuotedString, span: span, source: source, elements: elements}
}

// NewBlock creates a block node from its markup elements.
func NewBlock(span FileSourceSpan, source string, elements []Element) *Primary {
	return &Primary{kind: PrimaryBlock, span: span, source: source, elements: elements}
}

// NewGroup creates a group node from its members.
func NewGroup(span FileSourceSpan, source string, members []GroupMember) *Primary {
	return &Primary{kind: PrimaryGroup, span: span, source: source, members: members}
}

func (p *Primary) isElement() {}

func (p *Primary) Kind() PrimaryKind { return p.kind }

func (p *Primary) StringKind() StringKind { return p.stringKind }

func (p *Primary) Span() FileSourceSpan { return p.span }

func (p *Primary) Source() string { return p.source }

// BoolValue returns the value of a bool literal.
func (p *Primary) BoolValue() bool {
	return p.source == "true"
}

// IntValue returns the parsed value of an integer literal.
func (p *Primary) IntValue() ParsedInt { return p.intValue }

// FloatValue returns the parsed value of a float literal.
func (p *Primary) FloatValue() ParsedFloat { return p.floatValue }

// EscapedText returns the escaped characters of an escape node, i.e. the
// source with the leading backslash removed.
func (p *Primary) EscapedText() string {
	return p.source[1:]
}

// EscapedSpan returns the span covering the escaped characters.
func (p *Primary) EscapedSpan() FileSourceSpan {
	s := p.span
	s.SourceSpan = s.ToRight(1)
	return s
}

// CommentSuffixLength returns the length of the terminating LF/CRLF of a
// line comment or of the closing `*\` of a terminated block comment, or zero
// for comments that end at EOF.
func (p *Primary) CommentSuffixLength() int { return p.commentSuffix }

// CommentText returns the text of a line comment, excluding the leading
// `\:` and any terminating line break.
func (p *Primary) CommentText() string {
	const prefixLength = 2
	return p.source[prefixLength : len(p.source)-p.commentSuffix]
}

// Elements returns the markup elements of a block or quoted string.
func (p *Primary) Elements() []Element { return p.elements }

// Members returns the members of a group.
func (p *Primary) Members() []GroupMember { return p.members }

// IsValue reports whether the node is a value.
func (p *Primary) IsValue() bool { return p.kind.IsValue() }

// IsSpliceable reports whether the node can be spliced into markup.
func (p *Primary) IsSpliceable() bool { return p.kind.IsSpliceable() }

// Directive is a `\name(arguments){content}` invocation.
type Directive struct {
	span        FileSourceSpan
	source      string
	name        string
	arguments   *Primary // group, or nil
	content     *Primary // block, or nil
	hasEllipsis bool
}

// NewDirective creates a directive node. arguments must be a group node or
// nil; content must be a block node or nil.
func NewDirective(span FileSourceSpan, source, name string, arguments, content *Primary) *Directive {
	hasEllipsis := false
	if arguments != nil {
		for i := range arguments.members {
			if arguments.members[i].Kind() == MemberEllipsis {
				hasEllipsis = true
				break
			}
		}
	}
	return &Directive{
		span:        span,
		source:      source,
		name:        name,
		arguments:   arguments,
		content:     content,
		hasEllipsis: hasEllipsis,
	}
}

func (d *Directive) isElement() {}

func (d *Directive) Span() FileSourceSpan { return d.span }

func (d *Directive) Source() string { return d.source }

// Name returns the name of the directive, without the leading backslash.
func (d *Directive) Name() string { return d.name }

// NameSpan returns the span covering the directive name.
func (d *Directive) NameSpan() FileSourceSpan {
	s := d.span
	s.SourceSpan = s.WithLength(len(d.name))
	return s
}

// HasEllipsis reports whether the argument group contains an ellipsis member.
func (d *Directive) HasEllipsis() bool { return d.hasEllipsis }

// Arguments returns the argument group, or nil if none was written.
func (d *Directive) Arguments() *Primary { return d.arguments }

// ArgumentMembers returns the members of the argument group, or nil.
func (d *Directive) ArgumentMembers() []GroupMember {
	if d.arguments == nil {
		return nil
	}
	return d.arguments.Members()
}

// Content returns the content block, or nil if none was written.
func (d *Directive) Content() *Primary { return d.content }

// ContentElements returns the markup elements of the content block, or nil.
func (d *Directive) ContentElements() []Element {
	if d.content == nil {
		return nil
	}
	return d.content.Elements()
}

// MemberKind is the kind of a group member.
type MemberKind uint8

const (
	MemberPositional MemberKind = iota
	MemberNamed
	MemberEllipsis
)

// GroupMember is a single member of a group: positional, `name = value`,
// or `...` (which forwards the enclosing call's arguments at evaluation
// time and carries neither name nor value).
type GroupMember struct {
	kind   MemberKind
	span   FileSourceSpan
	source string
	name   *Primary
	value  Element
}

// PositionalMember creates a positional group member.
func PositionalMember(value Element) GroupMember {
	return GroupMember{
		kind:   MemberPositional,
		span:   value.Span(),
		source: value.Source(),
		value:  value,
	}
}

// NamedMember creates a `name = value` group member. span covers the whole
// member, from the start of the name to the end of the value.
func NamedMember(span FileSourceSpan, source string, name *Primary, value Element) GroupMember {
	return GroupMember{
		kind:   MemberNamed,
		span:   span,
		source: source,
		name:   name,
		value:  value,
	}
}

// EllipsisMember creates an `...` group member.
func EllipsisMember(span FileSourceSpan, source string) GroupMember {
	return GroupMember{kind: MemberEllipsis, span: span, source: source}
}

func (m *GroupMember) Kind() MemberKind { return m.kind }

func (m *GroupMember) Span() FileSourceSpan { return m.span }

func (m *GroupMember) Source() string { return m.source }

// Name returns the name node of a named member, or nil.
func (m *GroupMember) Name() *Primary { return m.name }

// NameText returns the name of a named member as text.
func (m *GroupMember) NameText() string {
	if m.name == nil {
		return ""
	}
	return m.name.Source()
}

// NameSpan returns the span of the name of a named member.
func (m *GroupMember) NameSpan() FileSourceSpan {
	return m.name.Span()
}

// Value returns the member value, or nil for ellipsis members.
func (m *GroupMember) Value() Element { return m.value }
