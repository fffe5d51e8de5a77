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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eisenwave/cowel/ast"
)

type textToken struct {
	kind ast.TokenKind
	text string
}

func lexToTextTokens(t *testing.T, source string) ([]textToken, bool, int) {
	t.Helper()
	errorCount := 0
	tokens, ok := Lex(source, func(_ string, _ ast.SourceSpan, _ string) {
		errorCount++
	})
	result := make([]textToken, len(tokens))
	for i, tok := range tokens {
		result[i] = textToken{tok.Kind, source[tok.Span.Begin:tok.Span.End()]}
	}
	return result, ok, errorCount
}

func TestLexerRoundtrip(t *testing.T) {
	sources := []string{
		"",
		"hello",
		"hello, world { } ( ) , = \"text\"",
		`\{x\}`,
		`\b{bold}`,
		`\d(x = 1, "s", ...)`,
		`\d(0b101, 0o17, 0x1F, 1.5, 1e9, -3, +4)`,
		`\d(unit null true false infinity name)`,
		"\\: comment\nrest",
		`\*block comment*\after`,
		`\d(~ ! 0x1G)`,
		"text with \r carriage",
		`\outer{\inner(a){b}}`,
		`\d("quoted \" escape")`,
	}
	for _, source := range sources {
		tokens, _, _ := lexToTextTokens(t, source)
		var sb strings.Builder
		for _, tok := range tokens {
			sb.WriteString(tok.text)
		}
		assert.Equal(t, source, sb.String(), "roundtrip of %q", source)
	}
}

func TestLexerKinds(t *testing.T) {
	cases := []struct {
		source  string
		tokens  []textToken
		success bool
	}{
		{
			source:  "hello",
			tokens:  []textToken{{ast.TokenDocumentText, "hello"}},
			success: true,
		},
		{
			source: `\{x\}`,
			tokens: []textToken{
				{ast.TokenEscape, `\{`},
				{ast.TokenDocumentText, "x"},
				{ast.TokenEscape, `\}`},
			},
			success: true,
		},
		{
			source: `\b{bold}`,
			tokens: []textToken{
				{ast.TokenDirectiveSpliceName, `\b`},
				{ast.TokenBraceLeft, "{"},
				{ast.TokenBlockText, "bold"},
				{ast.TokenBraceRight, "}"},
			},
			success: true,
		},
		{
			source: `\d(x = 1)`,
			tokens: []textToken{
				{ast.TokenDirectiveSpliceName, `\d`},
				{ast.TokenParenthesisLeft, "("},
				{ast.TokenIdentifier, "x"},
				{ast.TokenWhitespace, " "},
				{ast.TokenEquals, "="},
				{ast.TokenWhitespace, " "},
				{ast.TokenDecimalInt, "1"},
				{ast.TokenParenthesisRight, ")"},
			},
			success: true,
		},
		{
			source: `\d(...)`,
			tokens: []textToken{
				{ast.TokenDirectiveSpliceName, `\d`},
				{ast.TokenParenthesisLeft, "("},
				{ast.TokenEllipsis, "..."},
				{ast.TokenParenthesisRight, ")"},
			},
			success: true,
		},
		{
			source: `\d(0b101,0o17,0x1F,1.5,2e9)`,
			tokens: []textToken{
				{ast.TokenDirectiveSpliceName, `\d`},
				{ast.TokenParenthesisLeft, "("},
				{ast.TokenBinaryInt, "0b101"},
				{ast.TokenComma, ","},
				{ast.TokenOctalInt, "0o17"},
				{ast.TokenComma, ","},
				{ast.TokenHexadecimalInt, "0x1F"},
				{ast.TokenComma, ","},
				{ast.TokenDecimalFloat, "1.5"},
				{ast.TokenComma, ","},
				{ast.TokenDecimalFloat, "2e9"},
				{ast.TokenParenthesisRight, ")"},
			},
			success: true,
		},
		{
			source: `\d(unit null true false infinity other)`,
			tokens: []textToken{
				{ast.TokenDirectiveSpliceName, `\d`},
				{ast.TokenParenthesisLeft, "("},
				{ast.TokenUnit, "unit"},
				{ast.TokenWhitespace, " "},
				{ast.TokenNull, "null"},
				{ast.TokenWhitespace, " "},
				{ast.TokenTrue, "true"},
				{ast.TokenWhitespace, " "},
				{ast.TokenFalse, "false"},
				{ast.TokenWhitespace, " "},
				{ast.TokenInfinity, "infinity"},
				{ast.TokenWhitespace, " "},
				{ast.TokenIdentifier, "other"},
				{ast.TokenParenthesisRight, ")"},
			},
			success: true,
		},
		{
			source: "\\: note\nrest",
			tokens: []textToken{
				{ast.TokenLineComment, "\\: note\n"},
				{ast.TokenDocumentText, "rest"},
			},
			success: true,
		},
		{
			source: "\\: note\r\nrest",
			tokens: []textToken{
				{ast.TokenLineComment, "\\: note\r\n"},
				{ast.TokenDocumentText, "rest"},
			},
			success: true,
		},
		{
			source: `\*note*\rest`,
			tokens: []textToken{
				{ast.TokenBlockComment, `\*note*\`},
				{ast.TokenDocumentText, "rest"},
			},
			success: true,
		},
		{
			// Nested braces inside a block are part of the text run.
			source: `\b{a{b}c}`,
			tokens: []textToken{
				{ast.TokenDirectiveSpliceName, `\b`},
				{ast.TokenBraceLeft, "{"},
				{ast.TokenBlockText, "a{b}c"},
				{ast.TokenBraceRight, "}"},
			},
			success: true,
		},
		{
			source: `\d("a\{b")`,
			tokens: []textToken{
				{ast.TokenDirectiveSpliceName, `\d`},
				{ast.TokenParenthesisLeft, "("},
				{ast.TokenStringQuote, `"`},
				{ast.TokenQuotedStringText, "a"},
				{ast.TokenEscape, `\{`},
				{ast.TokenQuotedStringText, "b"},
				{ast.TokenStringQuote, `"`},
				{ast.TokenParenthesisRight, ")"},
			},
			success: true,
		},
	}

	for _, c := range cases {
		tokens, ok, _ := lexToTextTokens(t, c.source)
		assert.Equal(t, c.tokens, tokens, "tokens of %q", c.source)
		assert.Equal(t, c.success, ok, "success of %q", c.source)
	}
}

func TestLexerErrors(t *testing.T) {
	// A bare backslash at EOF is reported but kept as an escape token.
	tokens, ok, errorCount := lexToTextTokens(t, `\`)
	assert.False(t, ok)
	assert.Equal(t, 1, errorCount)
	require.Len(t, tokens, 1)
	assert.Equal(t, ast.TokenEscape, tokens[0].kind)

	// An escape of a disallowed character is a reserved escape.
	tokens, ok, _ = lexToTextTokens(t, `\1`)
	assert.False(t, ok)
	require.Len(t, tokens, 1)
	assert.Equal(t, ast.TokenReservedEscape, tokens[0].kind)

	// An unterminated block comment is reported.
	_, ok, errorCount = lexToTextTokens(t, `\*never closed`)
	assert.False(t, ok)
	assert.Equal(t, 1, errorCount)

	// A malformed numeric literal is kept as a reserved number.
	tokens, ok, _ = lexToTextTokens(t, `\d(0x1G)`)
	assert.False(t, ok)
	var kinds []ast.TokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.kind)
	}
	assert.Contains(t, kinds, ast.TokenReservedNumber)

	// An unterminated string is reported.
	_, ok, errorCount = lexToTextTokens(t, `\d("abc)`)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, errorCount, 1)

	// An unclosed block is reported.
	_, ok, _ = lexToTextTokens(t, `\b{abc`)
	assert.False(t, ok)
}

func TestLexerPositions(t *testing.T) {
	source := "ab\ncd"
	tokens, ok, _ := lexToTextTokens(t, source)
	assert.True(t, ok)
	require.Len(t, tokens, 1)

	raw, _ := Lex(source, nil)
	require.Len(t, raw, 1)
	assert.Equal(t, 0, raw[0].Span.Begin)
	assert.Equal(t, 5, raw[0].Span.Length)
	assert.Equal(t, 0, raw[0].Span.Line)
}
