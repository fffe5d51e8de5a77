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

// TokenKind classifies the tokens produced by the lexer.
type TokenKind uint8

const (
	// TokenError marks source text that could not form any token.
	TokenError TokenKind = iota

	// Markup-context tokens.

	TokenDocumentText
	TokenBlockText
	TokenQuotedStringText
	TokenEscape
	TokenReservedEscape
	TokenLineComment
	TokenBlockComment
	TokenDirectiveSpliceName

	// Structural tokens.

	TokenBraceLeft
	TokenBraceRight
	TokenParenthesisLeft
	TokenParenthesisRight
	TokenComma
	TokenEquals
	TokenEllipsis
	TokenStringQuote

	// Group-context value tokens.

	TokenUnit
	TokenNull
	TokenTrue
	TokenFalse
	TokenInfinity
	TokenBinaryInt
	TokenOctalInt
	TokenDecimalInt
	TokenHexadecimalInt
	TokenDecimalFloat
	TokenReservedNumber
	TokenIdentifier
	TokenWhitespace

	// Group-context operator tokens.

	TokenPlus
	TokenMinus
	TokenBitwiseNot
	TokenLogicalNot
)

var tokenKindNames = [...]string{
	TokenError:               "error",
	TokenDocumentText:        "document text",
	TokenBlockText:           "block text",
	TokenQuotedStringText:    "quoted string text",
	TokenEscape:              "escape",
	TokenReservedEscape:      "reserved escape",
	TokenLineComment:         "line comment",
	TokenBlockComment:        "block comment",
	TokenDirectiveSpliceName: "directive name",
	TokenBraceLeft:           "'{'",
	TokenBraceRight:          "'}'",
	TokenParenthesisLeft:     "'('",
	TokenParenthesisRight:    "')'",
	TokenComma:               "','",
	TokenEquals:              "'='",
	TokenEllipsis:            "'...'",
	TokenStringQuote:         `'"'`,
	TokenUnit:                "unit",
	TokenNull:                "null",
	TokenTrue:                "true",
	TokenFalse:               "false",
	TokenInfinity:            "infinity",
	TokenBinaryInt:           "binary integer literal",
	TokenOctalInt:            "octal integer literal",
	TokenDecimalInt:          "decimal integer literal",
	TokenHexadecimalInt:      "hexadecimal integer literal",
	TokenDecimalFloat:        "floating-point literal",
	TokenReservedNumber:      "reserved number",
	TokenIdentifier:          "identifier",
	TokenWhitespace:          "whitespace",
	TokenPlus:                "'+'",
	TokenMinus:               "'-'",
	TokenBitwiseNot:          "'~'",
	TokenLogicalNot:          "'!'",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "invalid"
}

// IsMarkup reports whether the token kind can appear in markup context,
// i.e. at the document level or inside a block or quoted string.
func (k TokenKind) IsMarkup() bool {
	switch k {
	case TokenDocumentText, TokenBlockText, TokenQuotedStringText,
		TokenEscape, TokenReservedEscape,
		TokenLineComment, TokenBlockComment,
		TokenDirectiveSpliceName:
		return true
	}
	return false
}

// Token is a single lexed token. The span locates its text within the source;
// a token's text is always source[span.Begin:span.End()].
type Token struct {
	Kind TokenKind
	Span SourceSpan
}
