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

import (
	"errors"
	"sort"
)

const (
	highlightingTag       = "h-"
	highlightingAttribute = "data-h"
)

// HighlightSpan is one highlighted run within a piece of code. Short is the
// highlighter's short identifier for the highlight type, e.g. "kw" or
// "str"; it becomes the data-h attribute value.
type HighlightSpan struct {
	Begin  int
	Length int
	Short  string
}

// ErrUnsupportedLanguage is returned by highlighters for unknown languages.
var ErrUnsupportedLanguage = errors.New("policy: unsupported highlight language")

// Highlighter computes highlight spans over source code.
type Highlighter interface {
	// Highlight returns the highlight spans for code in the given language,
	// sorted by Begin.
	Highlight(code, language string) ([]HighlightSpan, error)
	// Languages returns the supported language names.
	Languages() []string
}

type highlightSpanType uint8

const (
	spanHighlight highlightSpanType = iota
	spanHTML
)

type outputSpan struct {
	typ    highlightSpanType
	begin  int
	length int
}

// SyntaxHighlightPolicy accumulates both plain highlighted text and
// injected raw HTML, tagged by span type. On flush it asks the highlighter
// for spans over the text portion and interleaves the HTML spans with the
// highlighted runs, wrapping each run in an `<h- data-h="…">` element.
type SyntaxHighlightPolicy struct {
	text  []byte
	html  []byte
	spans []outputSpan
}

// NewSyntaxHighlightPolicy creates an empty highlight capture policy.
func NewSyntaxHighlightPolicy() *SyntaxHighlightPolicy {
	return &SyntaxHighlightPolicy{}
}

func (p *SyntaxHighlightPolicy) Write(chars string, language OutputLanguage) bool {
	if chars == "" {
		return true
	}
	switch language {
	case LanguageText:
		p.spans = append(p.spans, outputSpan{spanHighlight, len(p.text), len(chars)})
		p.text = append(p.text, chars...)
		return true
	case LanguageHTML:
		p.spans = append(p.spans, outputSpan{spanHTML, len(p.html), len(chars)})
		p.html = append(p.html, chars...)
		return true
	}
	return false
}

func (p *SyntaxHighlightPolicy) ConsumeText(text string) {
	p.Write(text, LanguageText)
}

func (p *SyntaxHighlightPolicy) ConsumeEscape(expanded string) {
	p.Write(expanded, LanguageText)
}

func (p *SyntaxHighlightPolicy) ConsumeComment() {}

func (p *SyntaxHighlightPolicy) EnterDirective() {}

func (p *SyntaxHighlightPolicy) LeaveDirective() {}

// WriteHighlighted flushes the accumulated content into out. Even if
// highlighting fails, the content is written without highlight spans and
// the error is returned for diagnostic purposes.
func (p *SyntaxHighlightPolicy) WriteHighlighted(
	out TextSink, highlighter Highlighter, language string,
) error {
	code := string(p.text)

	var highlights []HighlightSpan
	var hlErr error
	if highlighter != nil {
		highlights, hlErr = highlighter.Highlight(code, language)
	}

	writer := NewHTMLWriter(out)
	for _, span := range p.spans {
		switch span.typ {
		case spanHTML:
			writer.WriteInnerHTML(string(p.html[span.begin : span.begin+span.length]))
		case spanHighlight:
			writeHighlightedRange(writer, code, span.begin, span.length, highlights)
		}
	}
	return hlErr
}

func indexRangesIntersect(beginA, lengthA, beginB, lengthB int) bool {
	return beginA < beginB+lengthB && beginB < beginA+lengthA
}

// writeHighlightedRange writes code[begin:begin+length], wrapping the parts
// covered by highlights in highlight elements.
func writeHighlightedRange(
	out *HTMLWriter, code string, begin, length int, highlights []HighlightSpan,
) {
	if length == 0 {
		return
	}
	// Skip highlights that end at or before the range start.
	first := sort.Search(len(highlights), func(i int) bool {
		return highlights[i].Begin+highlights[i].Length > begin
	})

	index := begin
	for _, h := range highlights[first:] {
		if !indexRangesIntersect(begin, length, h.Begin, h.Length) {
			break
		}
		if h.Begin > index {
			out.WriteInnerText(code[index:h.Begin])
			index = h.Begin
		}
		// The range may end in the middle of a highlight, e.g. when a
		// directive reference covers only part of a keyword.
		actualEnd := min(begin+length, h.Begin+h.Length)
		if index >= actualEnd {
			break
		}
		out.OpenTagWithAttributes(highlightingTag).
			WriteAttribute(highlightingAttribute, h.Short, AttributeDoubleIfNeeded).
			End()
		out.WriteInnerText(code[index:actualEnd])
		out.CloseTag(highlightingTag)
		index = actualEnd
	}

	if index < begin+length {
		out.WriteInnerText(code[index : begin+length])
	}
}
