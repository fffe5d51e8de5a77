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

// Package regex provides the ECMAScript-flavor regular expressions of the
// COWEL value sublanguage, backed by the regexp2 engine.
//
// A RegExp has shared ownership of the underlying compiled expression, so
// copying one is inexpensive. Offsets reported by Search are byte offsets
// into the UTF-8 input.
package regex

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Flags are the ECMAScript regular expression flags. Each may appear at most
// once in a flags string.
type Flags uint8

const (
	// FlagIndices is `d`.
	FlagIndices Flags = 1 << iota
	// FlagGlobal is `g`.
	FlagGlobal
	// FlagIgnoreCase is `i`.
	FlagIgnoreCase
	// FlagMultiline is `m`.
	FlagMultiline
	// FlagDotAll is `s`.
	FlagDotAll
	// FlagUnicode is `u`.
	FlagUnicode
	// FlagUnicodeSets is `v`.
	FlagUnicodeSets
	// FlagSticky is `y`.
	FlagSticky
)

const flagsString = "dgimsuvy"

// String returns the flags in canonical `dgimsuvy` order.
func (f Flags) String() string {
	var sb strings.Builder
	for i := 0; i < len(flagsString); i++ {
		if f&(1<<i) != 0 {
			sb.WriteByte(flagsString[i])
		}
	}
	return sb.String()
}

// FlagsErrorKind distinguishes the ways a flags string can be malformed.
type FlagsErrorKind uint8

const (
	// FlagsErrorInvalid means the letter is not a known flag.
	FlagsErrorInvalid FlagsErrorKind = iota
	// FlagsErrorDuplicate means the flag appeared more than once.
	FlagsErrorDuplicate
)

// FlagsError describes an offending letter in a flags string. Index and
// Length identify the bad code point in bytes.
type FlagsError struct {
	Kind   FlagsErrorKind
	Index  int
	Length int
}

func (e *FlagsError) Error() string {
	if e.Kind == FlagsErrorDuplicate {
		return fmt.Sprintf("duplicate regular expression flag at index %d", e.Index)
	}
	return fmt.Sprintf("invalid regular expression flag at index %d", e.Index)
}

// ParseFlags parses an ECMAScript flags string.
func ParseFlags(s string) (Flags, error) {
	var result Flags
	for i := 0; i < len(s); i++ {
		// The flags string is pure ASCII, so searching for a single code
		// unit yields no false positives. For diagnostics, the length of the
		// whole offending code point is reported.
		index := strings.IndexByte(flagsString, s[i])
		if index < 0 {
			_, size := utf8.DecodeRuneInString(s[i:])
			return 0, &FlagsError{Kind: FlagsErrorInvalid, Index: i, Length: size}
		}
		flag := Flags(1 << index)
		if result&flag != 0 {
			return 0, &FlagsError{Kind: FlagsErrorDuplicate, Index: i, Length: 1}
		}
		result |= flag
	}
	return result, nil
}

// ErrBadPattern is returned by Make when the pattern does not compile.
var ErrBadPattern = errors.New("regex: bad pattern")

// Status is the outcome of executing a regular expression.
type Status uint8

const (
	// StatusUnmatched means execution completed and found no match.
	StatusUnmatched Status = iota
	// StatusMatched means execution completed and found a match.
	StatusMatched
	// StatusExecutionError means execution failed, e.g. by exceeding the
	// engine's time limits.
	StatusExecutionError
)

// Match locates a match as byte offsets into the UTF-8 input.
type Match struct {
	Index  int
	Length int
}

// SearchResult is the result of RegExp.Search.
type SearchResult struct {
	Status Status
	Match  Match
}

// RegExp is a compiled ECMAScript-flavor regular expression with shared
// ownership of the compiled payload.
type RegExp struct {
	search   *regexp2.Regexp
	anchored *regexp2.Regexp
	flags    Flags
}

// Make compiles the pattern under the given flags, returning ErrBadPattern
// if it is not a valid expression.
func Make(pattern string, flags Flags) (RegExp, error) {
	// The engine's ECMAScript compatibility mode disables `\p{…}` category
	// escapes, which ECMAScript's Unicode mode requires; the default mode
	// supports the full escape repertoire, and the divergent `\u` handling
	// is fixed up by normalizePattern.
	var opts regexp2.RegexOptions
	if flags&FlagIgnoreCase != 0 {
		opts |= regexp2.IgnoreCase
	}
	if flags&FlagMultiline != 0 {
		opts |= regexp2.Multiline
	}
	if flags&FlagDotAll != 0 {
		opts |= regexp2.Singleline
	}

	normalized := normalizePattern(pattern)
	search, err := regexp2.Compile(normalized, opts)
	if err != nil {
		return RegExp{}, ErrBadPattern
	}
	anchored, err := regexp2.Compile(`\A(?:`+normalized+`)\z`, opts)
	if err != nil {
		return RegExp{}, ErrBadPattern
	}
	return RegExp{search: search, anchored: anchored, flags: flags}, nil
}

// Flags returns the flags the expression was compiled with.
func (r RegExp) Flags() Flags {
	return r.flags
}

// Match reports whether the string matches the expression in its entirety.
func (r RegExp) Match(s string) Status {
	m, err := r.anchored.MatchString(s)
	if err != nil {
		return StatusExecutionError
	}
	if m {
		return StatusMatched
	}
	return StatusUnmatched
}

// Search finds the first occurrence of the expression within the string.
func (r RegExp) Search(s string) SearchResult {
	m, err := r.search.FindStringMatch(s)
	if err != nil {
		return SearchResult{Status: StatusExecutionError}
	}
	if m == nil {
		return SearchResult{Status: StatusUnmatched}
	}
	// The engine reports rune offsets; translate to byte offsets.
	runes := []rune(s)
	index := len(string(runes[:m.Index]))
	length := len(string(runes[m.Index : m.Index+m.Length]))
	return SearchResult{
		Status: StatusMatched,
		Match:  Match{Index: index, Length: length},
	}
}

// ReplaceAll replaces every occurrence of the expression within the string
// by the replacement and returns the result.
func (r RegExp) ReplaceAll(s, replacement string) (string, Status) {
	result, err := r.search.Replace(s, replacement, -1, -1)
	if err != nil {
		return "", StatusExecutionError
	}
	if result == s {
		if res := r.Search(s); res.Status != StatusMatched {
			return result, StatusUnmatched
		}
	}
	return result, StatusMatched
}

// normalizePattern rewrites `\uHHHH` escapes into the form the engine
// understands, without decoding them to raw code points; decoding could give
// regex-special characters special meaning. A `\u` not followed by four hex
// digits denotes a literal `u` in ECMAScript and is rewritten accordingly.
func normalizePattern(pattern string) string {
	if !strings.Contains(pattern, `\u`) {
		return pattern
	}
	var sb strings.Builder
	sb.Grow(len(pattern) + 8)
	escape := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if escape {
			if c == 'u' {
				if isHexQuad(pattern[i+1:]) {
					// The engine's own \uHHHH escape is ECMAScript-compatible;
					// pass it through verbatim.
					sb.WriteString(`\u`)
					sb.WriteString(pattern[i+1 : i+5])
					i += 4
				} else {
					sb.WriteByte('u')
				}
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(c)
			}
			escape = false
		} else if c == '\\' {
			escape = true
		} else {
			sb.WriteByte(c)
		}
	}
	if escape {
		sb.WriteByte('\\')
	}
	return sb.String()
}

func isHexQuad(s string) bool {
	if len(s) < 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
