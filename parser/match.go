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
	"unicode/utf8"

	"github.com/eisenwave/cowel/ast"
)

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentifierStart(c byte) bool {
	return isASCIILetter(c) || c == '_'
}

func isIdentifierContinue(c byte) bool {
	return isASCIILetter(c) || isASCIIDigit(c) || c == '_' || c == '-'
}

// IsIdentifier reports whether s is a valid directive or parameter name.
func IsIdentifier(s string) bool {
	return len(s) != 0 && matchIdentifier(s) == len(s)
}

// matchIdentifier returns the length of the identifier at the start of s,
// or zero.
func matchIdentifier(s string) int {
	if len(s) == 0 || !isIdentifierStart(s[0]) {
		return 0
	}
	length := 1
	for length < len(s) && isIdentifierContinue(s[length]) {
		length++
	}
	return length
}

// matchWhitespace returns the length of the whitespace run at the start
// of s.
func matchWhitespace(s string) int {
	length := 0
	for length < len(s) {
		switch s[length] {
		case ' ', '\t', '\r', '\v', '\n':
			length++
		default:
			return length
		}
	}
	return length
}

// matchEscape matches a backslash escape at the start of s, which must
// begin with a backslash. It returns the total length including the
// backslash and whether the escape is reserved, i.e. the follower is not in
// the permitted escape set. A bare backslash at EOF has length 1.
func matchEscape(s string) (length int, reserved bool) {
	if len(s) == 1 {
		return 1, false
	}
	r, size := utf8.DecodeRuneInString(s[1:])
	// Only ASCII punctuation may be escaped; everything else following a
	// backslash is reserved for future use.
	if r < utf8.RuneSelf && isASCIIPunctuation(byte(r)) {
		return 1 + size, false
	}
	return 1 + size, true
}

func isASCIIPunctuation(c byte) bool {
	return c >= '!' && c <= '/' ||
		c >= ':' && c <= '@' ||
		c >= '[' && c <= '`' ||
		c >= '{' && c <= '~'
}

// matchLineComment returns the length of a `\:` line comment at the start
// of s, excluding the terminating line break, or zero.
func matchLineComment(s string) int {
	if !strings.HasPrefix(s, `\:`) {
		return 0
	}
	length := 2
	for length < len(s) {
		c := s[length]
		if c == '\n' || c == '\r' {
			break
		}
		length++
	}
	return length
}

// matchBlockComment matches a `\*…*\` block comment at the start of s.
// ok is false if s does not start a block comment; terminated is false if
// the comment runs to EOF without `*\`, in which case length extends to the
// end of s.
func matchBlockComment(s string) (length int, terminated, ok bool) {
	if !strings.HasPrefix(s, `\*`) {
		return 0, false, false
	}
	end := strings.Index(s[2:], `*\`)
	if end < 0 {
		return len(s), false, true
	}
	return 2 + end + 2, true, true
}

// matchReservedNumber greedily matches the reserved number form: a leading
// dot or digit, followed by alphanumerics, dots, and signed exponent
// markers.
func matchReservedNumber(s string) int {
	if len(s) == 0 || (s[0] != '.' && !isASCIIDigit(s[0])) {
		return 0
	}
	length := 1
	for length < len(s) {
		remainder := s[length:]
		if strings.HasPrefix(remainder, "e+") || strings.HasPrefix(remainder, "E+") ||
			strings.HasPrefix(remainder, "e-") || strings.HasPrefix(remainder, "E-") {
			length += 2
		} else if isASCIIDigit(remainder[0]) || isASCIILetter(remainder[0]) ||
			remainder[0] == '_' || remainder[0] == '.' {
			length++
		} else {
			break
		}
	}
	return length
}

// matchNumber validates a numeric literal and classifies it, returning the
// token kind and matched length. A malformed literal yields TokenError.
// Supported forms are decimal integers and floats (with optional fraction
// and exponent) and prefixed integers in bases 2, 8, and 16.
func matchNumber(s string) (ast.TokenKind, int) {
	if len(s) == 0 {
		return ast.TokenError, 0
	}

	if strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B") {
		n := matchDigits(s[2:], 2)
		if n == 0 || 2+n != len(s) {
			return ast.TokenError, 0
		}
		return ast.TokenBinaryInt, len(s)
	}
	if strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O") {
		n := matchDigits(s[2:], 8)
		if n == 0 || 2+n != len(s) {
			return ast.TokenError, 0
		}
		return ast.TokenOctalInt, len(s)
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n := matchDigits(s[2:], 16)
		if n == 0 || 2+n != len(s) {
			return ast.TokenError, 0
		}
		return ast.TokenHexadecimalInt, len(s)
	}

	i := 0
	intDigits := matchDigits(s, 10)
	i += intDigits

	isFloat := false
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		isFloat = true
		i++
		fracDigits = matchDigits(s[i:], 10)
		i += fracDigits
	}
	if intDigits == 0 && fracDigits == 0 {
		return ast.TokenError, 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		isFloat = true
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := matchDigits(s[i:], 10)
		if expDigits == 0 {
			return ast.TokenError, 0
		}
		i += expDigits
	}
	if i != len(s) {
		return ast.TokenError, 0
	}
	if isFloat {
		return ast.TokenDecimalFloat, i
	}
	return ast.TokenDecimalInt, i
}

func matchDigits(s string, base int) int {
	length := 0
	for length < len(s) {
		c := s[length]
		var ok bool
		switch {
		case base <= 10:
			ok = c >= '0' && c < '0'+byte(base)
		default:
			ok = isASCIIDigit(c) ||
				c >= 'a' && c < 'a'+byte(base-10) ||
				c >= 'A' && c < 'A'+byte(base-10)
		}
		if !ok {
			return length
		}
		length++
	}
	return length
}
