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

// Package parser turns COWEL source text into tokens and builds the AST.
//
// Lexing is recoverable: malformed input is marked with error, reserved
// escape, or reserved number tokens and lexing continues, so the token
// sequence always covers the entire source. Concatenating the text of all
// tokens reproduces the source byte for byte.
package parser

import (
	"strings"

	"github.com/eisenwave/cowel/ast"
)

// ErrorConsumer receives lexing and parsing errors. id is a diagnostic ID
// from the reporter catalogue.
type ErrorConsumer func(id string, span ast.SourceSpan, message string)

// Lex turns source into a flat token stream. The returned flag is false if
// any error was reported; the token sequence is complete regardless.
func Lex(source string, onError ErrorConsumer) ([]ast.Token, bool) {
	l := &lexer{source: source, onError: onError, success: true}
	l.consumeMarkupSequence(contextDocument)
	return l.out, l.success
}

// contentContext determines which characters terminate a text run.
type contentContext uint8

const (
	// contextDocument takes braces, commas, and quotes literally.
	contextDocument contentContext = iota
	// contextBlock tracks brace depth; an unmatched '}' ends the block.
	contextBlock
	// contextQuotedString ends at an unescaped '"'.
	contextQuotedString
)

type lexer struct {
	source  string
	pos     ast.SourcePosition
	out     []ast.Token
	onError ErrorConsumer
	success bool
}

func (l *lexer) emit(kind ast.TokenKind, length int) {
	l.out = append(l.out, ast.Token{
		Kind: kind,
		Span: ast.SourceSpan{SourcePosition: l.pos, Length: length},
	})
}

func (l *lexer) error(span ast.SourceSpan, message string) {
	if l.onError != nil {
		l.onError("parse", span, message)
	}
	l.success = false
}

func (l *lexer) advanceBy(n int) {
	l.pos = l.pos.Advance(l.source[l.pos.Begin : l.pos.Begin+n])
}

func (l *lexer) eof() bool {
	return l.pos.Begin == len(l.source)
}

func (l *lexer) peekAll() string {
	return l.source[l.pos.Begin:]
}

func (l *lexer) peek() byte {
	return l.source[l.pos.Begin]
}

func (l *lexer) peekIs(c byte) bool {
	return !l.eof() && l.source[l.pos.Begin] == c
}

func (l *lexer) expectAndEmit(c byte, kind ast.TokenKind) bool {
	if !l.peekIs(c) {
		return false
	}
	l.emit(kind, 1)
	l.advanceBy(1)
	return true
}

func (l *lexer) consumeMarkupSequence(context contentContext) {
	braceLevel := 0
	for l.expectMarkupElement(context, &braceLevel) {
	}
}

func (l *lexer) expectMarkupElement(context contentContext, braceLevel *int) bool {
	if l.eof() {
		return false
	}
	if l.peekIs('\\') {
		if !l.expectLineComment() && !l.expectBlockComment() && !l.expectDirectiveSplice() {
			l.consumeEscape()
		}
		return true
	}

	remainder := l.peekAll()
	textLength := 0
scan:
	for ; textLength < len(remainder); textLength++ {
		c := remainder[textLength]
		if c == '\\' {
			break
		}
		switch context {
		case contextDocument:
			// At the document level, brace mismatches and commas don't
			// matter.
		case contextQuotedString:
			// Within strings, braces have no special meaning, but an
			// unescaped quote ends the string.
			if c == '"' {
				break scan
			}
		case contextBlock:
			if c == '{' {
				*braceLevel++
			} else if c == '}' {
				if *braceLevel == 0 {
					break scan
				}
				*braceLevel--
			}
		}
	}

	if textLength == 0 {
		return false
	}

	textKind := ast.TokenDocumentText
	switch context {
	case contextBlock:
		textKind = ast.TokenBlockText
	case contextQuotedString:
		textKind = ast.TokenQuotedStringText
	}
	l.emit(textKind, textLength)
	l.advanceBy(textLength)
	return true
}

func (l *lexer) consumeEscape() {
	remainder := l.peekAll()

	length, reserved := matchEscape(remainder)
	if length == 1 {
		l.error(ast.SourceSpan{SourcePosition: l.pos, Length: 1},
			"Backslash at the end of the file is not valid.")
	}
	if reserved {
		l.error(ast.SourceSpan{SourcePosition: l.pos, Length: length},
			"Expected comment or escape sequence, but got '"+
				remainder[:length]+"' following a backslash.")
	}

	kind := ast.TokenEscape
	if reserved {
		kind = ast.TokenReservedEscape
	}
	l.emit(kind, length)
	l.advanceBy(length)
}

func (l *lexer) expectWhitespace() bool {
	if space := matchWhitespace(l.peekAll()); space != 0 {
		l.emit(ast.TokenWhitespace, space)
		l.advanceBy(space)
		return true
	}
	return false
}

func (l *lexer) expectLineComment() bool {
	remainder := l.peekAll()
	length := matchLineComment(remainder)
	if length == 0 {
		return false
	}
	suffix := remainder[length:]
	suffixLength := 0
	if strings.HasPrefix(suffix, "\r\n") {
		suffixLength = 2
	} else if strings.HasPrefix(suffix, "\n") {
		suffixLength = 1
	}
	l.emit(ast.TokenLineComment, length+suffixLength)
	l.advanceBy(length + suffixLength)
	return true
}

func (l *lexer) expectBlockComment() bool {
	remainder := l.peekAll()
	length, terminated, ok := matchBlockComment(remainder)
	if !ok {
		return false
	}
	if !terminated {
		l.error(ast.SourceSpan{SourcePosition: l.pos, Length: 2},
			"Unterminated block comment.")
		l.emit(ast.TokenBlockComment, length)
		l.advanceBy(length)
		return true
	}
	l.emit(ast.TokenBlockComment, length)
	l.advanceBy(length)
	return true
}

func (l *lexer) expectDirectiveSplice() bool {
	if !l.peekIs('\\') {
		return false
	}
	nameLength := matchIdentifier(l.peekAll()[1:])
	if nameLength == 0 {
		return false
	}
	l.emit(ast.TokenDirectiveSpliceName, 1+nameLength)
	l.advanceBy(1 + nameLength)

	if l.peekIs('(') {
		l.consumeGroup()
	}
	if l.peekIs('{') {
		l.consumeBlock()
	}
	return true
}

func (l *lexer) consumeGroup() {
	if !l.expectAndEmit('(', ast.TokenParenthesisLeft) {
		panic("consumeGroup called without '('")
	}

	depth := 1
	for !l.eof() {
		switch l.peek() {
		case '(':
			l.emit(ast.TokenParenthesisLeft, 1)
			l.advanceBy(1)
			depth++
		case ')':
			l.emit(ast.TokenParenthesisRight, 1)
			l.advanceBy(1)
			depth--
			if depth == 0 {
				return
			}
		case '{':
			l.consumeBlock()
		case '=':
			l.emit(ast.TokenEquals, 1)
			l.advanceBy(1)
		case '.':
			if strings.HasPrefix(l.peekAll(), "...") {
				l.emit(ast.TokenEllipsis, 3)
				l.advanceBy(3)
			} else {
				l.consumeNumericLiteral()
			}
		case ',':
			l.emit(ast.TokenComma, 1)
			l.advanceBy(1)
		case '"':
			l.consumeQuotedString()
		case '~':
			l.emit(ast.TokenBitwiseNot, 1)
			l.advanceBy(1)
		case '!':
			l.emit(ast.TokenLogicalNot, 1)
			l.advanceBy(1)
		case '-':
			l.emit(ast.TokenMinus, 1)
			l.advanceBy(1)
		case '+':
			l.emit(ast.TokenPlus, 1)
			l.advanceBy(1)
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			l.consumeNumericLiteral()
		case '\\':
			if !l.expectLineComment() && !l.expectBlockComment() && !l.expectDirectiveSplice() {
				l.consumeEscape()
			}
		case ' ', '\t', '\r', '\v', '\n':
			l.expectWhitespace()
		default:
			if !l.expectIdentifierOrLiteral() {
				l.error(ast.SourceSpan{SourcePosition: l.pos, Length: 1},
					"Unable to form a token.")
				l.emit(ast.TokenError, 1)
				l.advanceBy(1)
			}
		}
	}
}

func (l *lexer) consumeNumericLiteral() {
	remainder := l.peekAll()

	// Numeric literals are a subset of the reserved number form, so the
	// reserved number is matched first and then validated against the
	// stricter literal grammar. This resembles how the C++ preprocessor
	// forms pp-numbers.
	reservedLength := matchReservedNumber(remainder)
	kind, length := matchNumber(remainder[:reservedLength])
	if kind == ast.TokenError || length != reservedLength {
		l.error(ast.SourceSpan{SourcePosition: l.pos, Length: reservedLength},
			"Invalid numeric literal.")
		l.emit(ast.TokenReservedNumber, reservedLength)
		l.advanceBy(reservedLength)
		return
	}
	l.emit(kind, length)
	l.advanceBy(length)
}

func (l *lexer) expectIdentifierOrLiteral() bool {
	remainder := l.peekAll()
	length := matchIdentifier(remainder)
	if length == 0 {
		return false
	}
	kind := ast.TokenIdentifier
	switch remainder[:length] {
	case "unit":
		kind = ast.TokenUnit
	case "null":
		kind = ast.TokenNull
	case "true":
		kind = ast.TokenTrue
	case "false":
		kind = ast.TokenFalse
	case "infinity":
		kind = ast.TokenInfinity
	}
	l.emit(kind, length)
	l.advanceBy(length)
	return true
}

func (l *lexer) consumeQuotedString() {
	initialPos := l.pos
	if !l.expectAndEmit('"', ast.TokenStringQuote) {
		panic(`consumeQuotedString called without '"'`)
	}

	l.consumeMarkupSequence(contextQuotedString)

	if !l.expectAndEmit('"', ast.TokenStringQuote) {
		l.error(ast.SourceSpan{SourcePosition: initialPos, Length: 1},
			`No matching '"'. This string is unterminated.`)
	}
}

func (l *lexer) consumeBlock() {
	initialPos := l.pos
	if !l.expectAndEmit('{', ast.TokenBraceLeft) {
		panic("consumeBlock called without '{'")
	}

	l.consumeMarkupSequence(contextBlock)

	if !l.expectAndEmit('}', ast.TokenBraceRight) {
		l.error(ast.SourceSpan{SourcePosition: initialPos, Length: 1},
			"No matching '}'. This block is unclosed.")
	}
}
