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

package ast

import "strings"

// FormattingOptions controls Dump output.
type FormattingOptions struct {
	// IndentWidth is the number of spaces per nesting level.
	IndentWidth int
	// MaxNodeTextLength truncates cited node text beyond this length.
	MaxNodeTextLength int
}

// DefaultFormattingOptions are the options used when none are given.
var DefaultFormattingOptions = FormattingOptions{
	IndentWidth:       2,
	MaxNodeTextLength: 30,
}

// Dump renders a human-readable tree of the given elements, mainly for
// debugging and the `cowel parse` command.
func Dump(elements []Element, options FormattingOptions) string {
	if options.IndentWidth <= 0 {
		options.IndentWidth = DefaultFormattingOptions.IndentWidth
	}
	if options.MaxNodeTextLength <= 0 {
		options.MaxNodeTextLength = DefaultFormattingOptions.MaxNodeTextLength
	}
	p := &printer{options: options}
	p.elements(elements)
	return p.sb.String()
}

type printer struct {
	sb      strings.Builder
	options FormattingOptions
	level   int
}

func (p *printer) indent() {
	p.sb.WriteString(strings.Repeat(" ", p.options.IndentWidth*p.level))
}

func (p *printer) line(text string) {
	p.indent()
	p.sb.WriteString(text)
	p.sb.WriteByte('\n')
}

func (p *printer) cutOff(text string) string {
	var sb strings.Builder
	length := 0
	for i := 0; i < len(text); i++ {
		if length >= p.options.MaxNodeTextLength {
			sb.WriteString("...")
			break
		}
		switch text[i] {
		case '\n':
			sb.WriteString(`\n`)
			length += 2
		case '\r':
			sb.WriteString(`\r`)
			length += 2
		case '\t':
			sb.WriteString(`\t`)
			length += 2
		default:
			sb.WriteByte(text[i])
			length++
		}
	}
	return sb.String()
}

func (p *printer) elements(elements []Element) {
	for _, e := range elements {
		p.element(e)
	}
}

func (p *printer) element(e Element) {
	switch n := e.(type) {
	case *Primary:
		p.primary(n)
	case *Directive:
		p.directive(n)
	}
}

func (p *printer) primary(n *Primary) {
	switch n.Kind() {
	case PrimaryBlock, PrimaryQuotedString:
		p.line(n.Kind().String() + "{")
		p.level++
		p.elements(n.Elements())
		p.level--
		p.line("}")
	case PrimaryGroup:
		p.line("group(")
		p.level++
		for i := range n.Members() {
			p.member(&n.Members()[i])
		}
		p.level--
		p.line(")")
	default:
		p.line(n.Kind().String() + "(" + p.cutOff(n.Source()) + ")")
	}
}

func (p *printer) directive(n *Directive) {
	p.line(`\` + n.Name())
	p.level++
	if n.Arguments() != nil {
		p.primary(n.Arguments())
	}
	if n.Content() != nil {
		p.primary(n.Content())
	}
	p.level--
}

func (p *printer) member(m *GroupMember) {
	switch m.Kind() {
	case MemberEllipsis:
		p.line("ellipsis")
	case MemberNamed:
		p.line("named(" + m.NameText() + ")")
		p.level++
		p.element(m.Value())
		p.level--
	default:
		p.line("positional")
		p.level++
		p.element(m.Value())
		p.level--
	}
}
