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
	"strconv"
	"strings"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/bigint"
	"github.com/eisenwave/cowel/reporter"
)

// Parse lexes and parses source into a sequence of markup elements. The
// returned flag is false if any error was reported. Parsing is recoverable:
// a best-effort AST is produced even for malformed input.
func Parse(source string, fileID ast.FileID, onError ErrorConsumer) ([]ast.Element, bool) {
	tokens, ok := Lex(source, onError)
	p := &parser{
		source:  source,
		fileID:  fileID,
		tokens:  tokens,
		onError: onError,
		success: ok,
	}
	elements := p.parseMarkupSequence(nil)
	return elements, p.success
}

type parser struct {
	source  string
	fileID  ast.FileID
	tokens  []ast.Token
	pos     int
	onError ErrorConsumer
	success bool
}

func (p *parser) error(id string, span ast.SourceSpan, message string) {
	if p.onError != nil {
		p.onError(id, span, message)
	}
	p.success = false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() ast.Token {
	return p.tokens[p.pos]
}

func (p *parser) peekKind() ast.TokenKind {
	if p.eof() {
		return ast.TokenError
	}
	return p.tokens[p.pos].Kind
}

func (p *parser) next() ast.Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) text(t ast.Token) string {
	return p.source[t.Span.Begin:t.Span.End()]
}

func (p *parser) spanFromTo(begin, end ast.SourceSpan) ast.FileSourceSpan {
	return ast.FileSourceSpan{
		SourceSpan: begin.WithLength(end.End() - begin.Begin),
		File:       p.fileID,
	}
}

func (p *parser) tokenSpan(t ast.Token) ast.FileSourceSpan {
	return ast.FileSourceSpan{SourceSpan: t.Span, File: p.fileID}
}

// parseMarkupSequence consumes markup elements until EOF or a token the
// stop predicate accepts; the stop token is not consumed.
func (p *parser) parseMarkupSequence(stop func(ast.TokenKind) bool) []ast.Element {
	var elements []ast.Element
	for !p.eof() {
		t := p.peek()
		if stop != nil && stop(t.Kind) {
			break
		}
		switch t.Kind {
		case ast.TokenDocumentText, ast.TokenBlockText, ast.TokenQuotedStringText:
			p.next()
			elements = append(elements,
				ast.NewPrimary(ast.PrimaryText, p.tokenSpan(t), p.text(t)))
		case ast.TokenEscape, ast.TokenReservedEscape:
			p.next()
			elements = append(elements, ast.NewEscape(p.tokenSpan(t), p.text(t)))
		case ast.TokenLineComment:
			p.next()
			text := p.text(t)
			elements = append(elements,
				ast.NewComment(p.tokenSpan(t), text, lineCommentSuffixLength(text)))
		case ast.TokenBlockComment:
			p.next()
			text := p.text(t)
			suffix := 0
			if strings.HasSuffix(text, `*\`) && len(text) >= 4 {
				suffix = 2
			}
			elements = append(elements,
				ast.NewComment(p.tokenSpan(t), text, suffix))
		case ast.TokenDirectiveSpliceName:
			elements = append(elements, p.parseDirective())
		default:
			// Tokens like stray closers at the document level; report and
			// skip so that parsing can continue.
			p.next()
			p.error("parse", t.Span, "Unexpected "+t.Kind.String()+".")
		}
	}
	return elements
}

// lineCommentSuffixLength computes the length of the terminating LF or
// CRLF of a line comment. A comment ended by EOF has an empty suffix.
func lineCommentSuffixLength(text string) int {
	switch {
	case strings.HasSuffix(text, "\r\n"):
		return 2
	case strings.HasSuffix(text, "\n"):
		return 1
	}
	return 0
}

func (p *parser) parseDirective() *ast.Directive {
	nameToken := p.next()
	name := p.text(nameToken)[1:]

	var arguments *ast.Primary
	if p.peekKind() == ast.TokenParenthesisLeft {
		arguments = p.parseGroup()
	}
	var content *ast.Primary
	if p.peekKind() == ast.TokenBraceLeft {
		content = p.parseBlock()
	}

	end := nameToken.Span
	if content != nil {
		end = content.Span().SourceSpan
	} else if arguments != nil {
		end = arguments.Span().SourceSpan
	}
	span := p.spanFromTo(nameToken.Span, end)
	return ast.NewDirective(span,
		p.source[span.Begin:span.End()], name, arguments, content)
}

func (p *parser) skipGroupFiller() {
	for !p.eof() {
		switch p.peekKind() {
		case ast.TokenWhitespace, ast.TokenLineComment, ast.TokenBlockComment:
			p.next()
		default:
			return
		}
	}
}

func (p *parser) parseGroup() *ast.Primary {
	open := p.next()
	var members []ast.GroupMember

	closed := false
	expectMember := true
	for !p.eof() {
		p.skipGroupFiller()
		if p.eof() {
			break
		}
		t := p.peek()
		if t.Kind == ast.TokenParenthesisRight {
			p.next()
			closed = true
			break
		}
		if t.Kind == ast.TokenComma {
			p.next()
			expectMember = true
			continue
		}
		if !expectMember {
			p.error("parse", t.Span,
				"Expected ',' or ')' after a group member.")
			expectMember = true
			continue
		}
		if member, ok := p.parseGroupMember(); ok {
			members = append(members, member)
		}
		expectMember = false
	}
	if !closed {
		p.error("parse", open.Span, "No matching ')'. This group is unclosed.")
	}

	end := open.Span
	if p.pos > 0 {
		end = p.tokens[p.pos-1].Span
	}
	span := p.spanFromTo(open.Span, end)
	return ast.NewGroup(span, p.source[span.Begin:span.End()], members)
}

func (p *parser) parseGroupMember() (ast.GroupMember, bool) {
	t := p.peek()
	if t.Kind == ast.TokenEllipsis {
		p.next()
		return ast.EllipsisMember(p.tokenSpan(t), p.text(t)), true
	}

	// An identifier followed by '=' forms a named member.
	if t.Kind == ast.TokenIdentifier {
		lookahead := p.pos + 1
		for lookahead < len(p.tokens) && p.tokens[lookahead].Kind == ast.TokenWhitespace {
			lookahead++
		}
		if lookahead < len(p.tokens) && p.tokens[lookahead].Kind == ast.TokenEquals {
			nameToken := p.next()
			name := ast.NewPrimary(ast.PrimaryUnquotedString,
				p.tokenSpan(nameToken), p.text(nameToken))
			p.skipGroupFiller()
			p.next() // '='
			p.skipGroupFiller()
			value := p.parseMemberValue()
			if value == nil {
				return ast.GroupMember{}, false
			}
			span := p.spanFromTo(nameToken.Span, value.Span().SourceSpan)
			return ast.NamedMember(span,
				p.source[span.Begin:span.End()], name, value), true
		}
	}

	value := p.parseMemberValue()
	if value == nil {
		return ast.GroupMember{}, false
	}
	return ast.PositionalMember(value), true
}

func (p *parser) parseMemberValue() ast.Element {
	if p.eof() {
		last := p.tokens[len(p.tokens)-1]
		p.error("parse", last.Span, "Expected a value.")
		return nil
	}
	t := p.peek()
	switch t.Kind {
	case ast.TokenUnit:
		p.next()
		return ast.NewPrimary(ast.PrimaryUnit, p.tokenSpan(t), p.text(t))
	case ast.TokenNull:
		p.next()
		return ast.NewPrimary(ast.PrimaryNull, p.tokenSpan(t), p.text(t))
	case ast.TokenTrue, ast.TokenFalse:
		p.next()
		return ast.NewPrimary(ast.PrimaryBool, p.tokenSpan(t), p.text(t))
	case ast.TokenInfinity:
		p.next()
		return ast.NewPrimary(ast.PrimaryInfinity, p.tokenSpan(t), p.text(t))
	case ast.TokenMinus, ast.TokenPlus:
		return p.parseSignedLiteral()
	case ast.TokenBinaryInt, ast.TokenOctalInt, ast.TokenDecimalInt, ast.TokenHexadecimalInt:
		p.next()
		return p.makeIntLiteral(p.tokenSpan(t), p.text(t), t.Kind, false)
	case ast.TokenDecimalFloat:
		p.next()
		return p.makeFloatLiteral(p.tokenSpan(t), p.text(t))
	case ast.TokenIdentifier:
		p.next()
		return ast.NewPrimary(ast.PrimaryUnquotedString, p.tokenSpan(t), p.text(t))
	case ast.TokenStringQuote:
		return p.parseQuotedString()
	case ast.TokenBraceLeft:
		return p.parseBlock()
	case ast.TokenParenthesisLeft:
		return p.parseGroup()
	case ast.TokenDirectiveSpliceName:
		return p.parseDirective()
	}
	p.next()
	p.error("parse", t.Span,
		"Unexpected "+t.Kind.String()+" in group; expected a value.")
	return nil
}

func (p *parser) parseSignedLiteral() ast.Element {
	sign := p.next()
	// The literal must follow its sign directly; otherwise the node's
	// source text would not reproduce the input.
	if p.eof() || p.peek().Span.Begin != sign.Span.End() {
		p.error("parse", sign.Span, "Expected a numeric literal directly after the sign.")
		return nil
	}
	t := p.peek()
	signText := p.text(sign)
	switch t.Kind {
	case ast.TokenBinaryInt, ast.TokenOctalInt, ast.TokenDecimalInt, ast.TokenHexadecimalInt:
		p.next()
		span := p.spanFromTo(sign.Span, t.Span)
		node := p.makeIntLiteral(span, signText+p.text(t), t.Kind, signText == "-")
		return node
	case ast.TokenDecimalFloat:
		p.next()
		span := p.spanFromTo(sign.Span, t.Span)
		return p.makeFloatLiteral(span, signText+p.text(t))
	case ast.TokenInfinity:
		p.next()
		span := p.spanFromTo(sign.Span, t.Span)
		return ast.NewPrimary(ast.PrimaryInfinity, span, signText+p.text(t))
	}
	p.next()
	p.error("parse", t.Span, "Expected a numeric literal after sign.")
	return nil
}

func (p *parser) makeIntLiteral(
	span ast.FileSourceSpan, source string, kind ast.TokenKind, negative bool,
) *ast.Primary {
	digits := source
	if negative || strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	base := 10
	switch kind {
	case ast.TokenBinaryInt:
		base, digits = 2, digits[2:]
	case ast.TokenOctalInt:
		base, digits = 8, digits[2:]
	case ast.TokenHexadecimalInt:
		base, digits = 16, digits[2:]
	}
	if negative {
		digits = "-" + digits
	}
	value, err := bigint.FromString(digits, base)
	if err != nil {
		p.error("parse", span.SourceSpan, "Invalid integer literal.")
		return ast.NewInt(span, source, ast.ParsedInt{})
	}
	return ast.NewInt(span, source, ast.ParsedInt{
		Value: value,
		// Values beyond the signed 128-bit fast path are kept and promoted
		// by consumers as needed.
		InRange: value.IsSmall(),
	})
}

func (p *parser) makeFloatLiteral(span ast.FileSourceSpan, source string) *ast.Primary {
	value, err := strconv.ParseFloat(source, 64)
	status := ast.FloatOK
	if err != nil {
		if math.IsInf(value, 0) {
			// Overflow stores correctly signed infinity.
			status = ast.FloatOverflow
		} else {
			// Underflow stores correctly signed zero.
			status = ast.FloatUnderflow
			value = 0
			if strings.HasPrefix(source, "-") {
				value = math.Copysign(0, -1)
			}
		}
	} else if value == 0 {
		// ParseFloat reports no error when a nonzero literal rounds to
		// (signed) zero; a nonzero digit before the exponent reveals it.
		mantissa := source
		if i := strings.IndexAny(source, "eE"); i >= 0 {
			mantissa = source[:i]
		}
		if strings.ContainsAny(mantissa, "123456789") {
			status = ast.FloatUnderflow
		}
	}
	return ast.NewFloat(span, source, ast.ParsedFloat{Value: value, Status: status})
}

func (p *parser) parseQuotedString() *ast.Primary {
	open := p.next()
	elements := p.parseMarkupSequence(func(k ast.TokenKind) bool {
		return k == ast.TokenStringQuote
	})
	end := open.Span
	if p.peekKind() == ast.TokenStringQuote {
		end = p.next().Span
	} else if p.pos > 0 {
		end = p.tokens[p.pos-1].Span
	}
	span := p.spanFromTo(open.Span, end)
	return ast.NewQuotedString(span, p.source[span.Begin:span.End()], elements)
}

func (p *parser) parseBlock() *ast.Primary {
	open := p.next()
	elements := p.parseMarkupSequence(func(k ast.TokenKind) bool {
		return k == ast.TokenBraceRight
	})
	end := open.Span
	if p.peekKind() == ast.TokenBraceRight {
		end = p.next().Span
	} else {
		if p.pos > 0 {
			end = p.tokens[p.pos-1].Span
		}
		p.error(reporter.IDParseBlockUnclosed, open.Span,
			"No matching '}'. This block is unclosed.")
	}
	span := p.spanFromTo(open.Span, end)
	return ast.NewBlock(span, p.source[span.Begin:span.End()], elements)
}
