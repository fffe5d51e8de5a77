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

package policy

// ParagraphsState is the paragraph position of a split policy.
type ParagraphsState uint8

const (
	// ParagraphsOutside means no paragraph is currently open.
	ParagraphsOutside ParagraphsState = iota
	// ParagraphsInside means a `<p>` is open.
	ParagraphsInside
)

const (
	paragraphOpeningTag = "<p>"
	paragraphClosingTag = "</p>"
)

// lineState tracks whether the next text node starts in the middle of a
// line or right after a line terminator that the preceding element (a
// comment) already consumed.
type lineState uint8

const (
	lineMiddle lineState = iota
	lineAfterTerminator
)

// ParagraphSplitPolicy wraps an HTML content policy and toggles `<p>`
// boundaries on blank-line sequences in text writes.
//
// Writes originating inside a directive are forwarded without splitting;
// the depth counter prevents malformed output such as `<i><p>…</i>`. A
// directive can opt into splitting of its contents with InheritParagraph.
type ParagraphSplitPolicy struct {
	parent ContentPolicy
	state  ParagraphsState
	line   lineState

	// directiveDepth counts nested directive evaluations. The release
	// stack remembers, per open directive, whether its depth contribution
	// was already released by InheritParagraph, so that LeaveDirective
	// doesn't decrement twice and repeated InheritParagraph calls are safe.
	directiveDepth int
	released       []bool
}

// NewParagraphSplitPolicy wraps parent, starting in the given state.
func NewParagraphSplitPolicy(parent ContentPolicy, initial ParagraphsState) *ParagraphSplitPolicy {
	return &ParagraphSplitPolicy{parent: parent, state: initial}
}

func (p *ParagraphSplitPolicy) Write(chars string, language OutputLanguage) bool {
	if p.directiveDepth != 0 || language != LanguageText {
		return p.parent.Write(chars, language)
	}
	if chars == "" {
		return true
	}
	p.splitIntoParagraphs(chars)
	return true
}

func (p *ParagraphSplitPolicy) ConsumeText(text string) {
	if p.directiveDepth != 0 {
		p.parent.Write(text, LanguageText)
		return
	}
	p.splitIntoParagraphs(text)
}

func (p *ParagraphSplitPolicy) ConsumeComment() {
	// Comments syntactically include their terminating newline, so a
	// single leading newline in the following text node completes a blank
	// line and must split.
	p.line = lineAfterTerminator
}

func (p *ParagraphSplitPolicy) ConsumeEscape(expanded string) {
	p.line = lineMiddle
	if expanded == "" {
		return
	}
	p.EnterParagraph()
	p.parent.Write(expanded, LanguageText)
}

func (p *ParagraphSplitPolicy) EnterDirective() {
	p.line = lineMiddle
	p.directiveDepth++
	p.released = append(p.released, false)
}

func (p *ParagraphSplitPolicy) LeaveDirective() {
	top := len(p.released) - 1
	if top < 0 {
		return
	}
	if !p.released[top] {
		p.directiveDepth--
	}
	p.released = p.released[:top]
}

// InheritParagraph enables paragraph splitting inside the directive
// currently being evaluated. By default directives are treated as black
// boxes and their contents are not split, since that could corrupt HTML;
// directives that relay surrounding content opt in through this.
func (p *ParagraphSplitPolicy) InheritParagraph() {
	top := len(p.released) - 1
	if top >= 0 && !p.released[top] {
		p.released[top] = true
		p.directiveDepth--
	}
}

// EnterParagraph opens a paragraph if none is open. Idempotent at directive
// depth ≤ 1, so a directive at the top level relative to this policy can
// call it directly.
func (p *ParagraphSplitPolicy) EnterParagraph() {
	if p.directiveDepth <= 1 && p.state == ParagraphsOutside {
		p.parent.Write(paragraphOpeningTag, LanguageHTML)
		p.state = ParagraphsInside
	}
}

// LeaveParagraph closes the open paragraph, if any. Idempotent at directive
// depth ≤ 1.
func (p *ParagraphSplitPolicy) LeaveParagraph() {
	if p.directiveDepth <= 1 && p.state == ParagraphsInside {
		p.parent.Write(paragraphClosingTag, LanguageHTML)
		p.state = ParagraphsOutside
	}
}

// Transition enters or leaves a paragraph to reach the given state.
func (p *ParagraphSplitPolicy) Transition(state ParagraphsState) {
	if state == ParagraphsInside {
		p.EnterParagraph()
	} else {
		p.LeaveParagraph()
	}
}

type blankLine struct {
	begin    int
	length   int
	newlines int
	found    bool
}

// findBlankLineSequence finds the first blank-line sequence in text: a
// contiguous whitespace run containing at least two line terminators, or at
// least one when the run starts the text (the terminator then belongs to
// the preceding element). The run ends with its final LF; trailing
// horizontal whitespace belongs to the following paragraph.
func findBlankLineSequence(text string) blankLine {
	i := 0
	for i < len(text) {
		for i < len(text) && !isBlankSpace(text[i]) {
			i++
		}
		if i == len(text) {
			break
		}
		runBegin := i
		newlines := 0
		lastNewline := -1
		for i < len(text) && isBlankSpace(text[i]) {
			if text[i] == '\n' {
				newlines++
				lastNewline = i
			}
			i++
		}
		if newlines >= 2 || (runBegin == 0 && newlines >= 1) {
			return blankLine{
				begin:    runBegin,
				length:   lastNewline + 1 - runBegin,
				newlines: newlines,
				found:    true,
			}
		}
	}
	return blankLine{}
}

func isBlankSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\v', '\n':
		return true
	}
	return false
}

func (p *ParagraphSplitPolicy) splitIntoParagraphs(text string) {
	// A single line terminator at the start of a text node is usually the
	// tail of the preceding element's line and doesn't split paragraphs;
	// two `\b{}` directives separated by one newline are on the same
	// paragraph even though the text node technically starts with a blank
	// line. After a comment, which consumed a terminator of its own, it
	// does complete a blank line.
	if blank := findBlankLineSequence(text); blank.found &&
		blank.begin == 0 && blank.newlines == 1 {
		if p.line == lineAfterTerminator {
			p.LeaveParagraph()
		} else {
			p.parent.Write(text[:blank.length], LanguageHTML)
		}
		text = text[blank.length:]
	}
	p.line = lineMiddle

	for text != "" {
		blank := findBlankLineSequence(text)
		if !blank.found {
			p.EnterParagraph()
			p.parent.Write(text, LanguageText)
			break
		}
		if blank.begin != 0 {
			p.EnterParagraph()
			p.parent.Write(text[:blank.begin], LanguageText)
			text = text[blank.begin:]
			blank.begin = 0
		}
		p.LeaveParagraph()
		text = text[blank.length:]
	}
}
