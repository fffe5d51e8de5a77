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

import "strings"

var innerTextEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var attributeEscaper = strings.NewReplacer(
	"&", "&amp;",
	"\"", "&quot;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeInnerText escapes text for use inside an HTML element.
func EscapeInnerText(text string) string {
	return innerTextEscaper.Replace(text)
}

// EscapeAttribute escapes text for use inside a double-quoted attribute.
func EscapeAttribute(text string) string {
	return attributeEscaper.Replace(text)
}

// HTMLPolicy is the base content policy producing HTML. Plain text writes
// are escaped; HTML writes pass through verbatim.
type HTMLPolicy struct {
	parent TextSink
}

// NewHTMLPolicy creates an HTML policy over parent.
func NewHTMLPolicy(parent TextSink) *HTMLPolicy {
	return &HTMLPolicy{parent: parent}
}

func (p *HTMLPolicy) Write(chars string, language OutputLanguage) bool {
	switch language {
	case LanguageText:
		return p.parent.Write(EscapeInnerText(chars), LanguageHTML)
	case LanguageHTML:
		return p.parent.Write(chars, LanguageHTML)
	}
	return false
}

func (p *HTMLPolicy) ConsumeText(text string) {
	p.Write(text, LanguageText)
}

func (p *HTMLPolicy) ConsumeEscape(expanded string) {
	p.Write(expanded, LanguageText)
}

func (p *HTMLPolicy) ConsumeComment() {}

func (p *HTMLPolicy) EnterDirective() {}

func (p *HTMLPolicy) LeaveDirective() {}

// AttributeStyle controls how attribute values are quoted.
type AttributeStyle uint8

const (
	// AttributeDoubleQuoted always writes double-quoted values.
	AttributeDoubleQuoted AttributeStyle = iota
	// AttributeDoubleIfNeeded omits quotes for values that need none.
	AttributeDoubleIfNeeded
)

// HTMLWriter emits tags, attributes, and escaped inner text into a sink.
type HTMLWriter struct {
	out TextSink
}

// NewHTMLWriter creates a writer emitting into out.
func NewHTMLWriter(out TextSink) *HTMLWriter {
	return &HTMLWriter{out: out}
}

// OpenTag writes `<name>`.
func (w *HTMLWriter) OpenTag(name string) *HTMLWriter {
	w.out.Write("<"+name+">", LanguageHTML)
	return w
}

// CloseTag writes `</name>`.
func (w *HTMLWriter) CloseTag(name string) *HTMLWriter {
	w.out.Write("</"+name+">", LanguageHTML)
	return w
}

// AttributeWriter continues a tag opened by OpenTagWithAttributes.
type AttributeWriter struct {
	w *HTMLWriter
}

// OpenTagWithAttributes writes `<name` and returns a writer for its
// attributes; End or EndEmpty completes the tag.
func (w *HTMLWriter) OpenTagWithAttributes(name string) AttributeWriter {
	w.out.Write("<"+name, LanguageHTML)
	return AttributeWriter{w: w}
}

// WriteAttribute writes a single attribute.
func (a AttributeWriter) WriteAttribute(key, value string, style AttributeStyle) AttributeWriter {
	if style == AttributeDoubleIfNeeded && isUnquotedAttributeValue(value) {
		a.w.out.Write(" "+key+"="+value, LanguageHTML)
		return a
	}
	a.w.out.Write(" "+key+`="`+EscapeAttribute(value)+`"`, LanguageHTML)
	return a
}

// WriteEmptyAttribute writes an attribute with no value.
func (a AttributeWriter) WriteEmptyAttribute(key string) AttributeWriter {
	a.w.out.Write(" "+key, LanguageHTML)
	return a
}

// End completes the opening tag.
func (a AttributeWriter) End() *HTMLWriter {
	a.w.out.Write(">", LanguageHTML)
	return a.w
}

// EndEmpty completes the tag as self-closing.
func (a AttributeWriter) EndEmpty() *HTMLWriter {
	a.w.out.Write("/>", LanguageHTML)
	return a.w
}

// WriteInnerText writes escaped element content.
func (w *HTMLWriter) WriteInnerText(text string) *HTMLWriter {
	w.out.Write(EscapeInnerText(text), LanguageHTML)
	return w
}

// WriteInnerHTML writes raw element content.
func (w *HTMLWriter) WriteInnerHTML(html string) *HTMLWriter {
	w.out.Write(html, LanguageHTML)
	return w
}

func isUnquotedAttributeValue(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case ' ', '\t', '\n', '\r', '\f', '"', '\'', '=', '<', '>', '`', '&':
			return false
		}
	}
	return true
}
