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

package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMake(t *testing.T, pattern string) RegExp {
	t.Helper()
	re, err := Make(pattern, 0)
	require.NoError(t, err)
	return re
}

func TestMatch(t *testing.T) {
	assert.Equal(t, StatusMatched, mustMake(t, "awoo").Match("awoo"))
	assert.Equal(t, StatusMatched, mustMake(t, ".*").Match("awoo"))
	assert.Equal(t, StatusUnmatched, mustMake(t, "awoo").Match("awoo!"))

	assert.Equal(t, StatusMatched, mustMake(t, `\p{Ll}+`).Match("abc"))
	assert.Equal(t, StatusMatched, mustMake(t, `\p{Ll}+`).Match("αβγ"))
	assert.Equal(t, StatusUnmatched, mustMake(t, `\p{Ll}+`).Match("ABC"))
}

func TestMatchUnicodeEscapes(t *testing.T) {
	// A `\u` not followed by four hex digits denotes a literal `u`.
	assert.Equal(t, StatusMatched, mustMake(t, `\u`).Match("u"))
	assert.Equal(t, StatusMatched, mustMake(t, `\u003`).Match("u003"))
	// The `\uHHHH` escape denotes a code point, without the `0030` digits
	// gaining any regex-special meaning.
	assert.Equal(t, StatusMatched, mustMake(t, `\u0030`).Match("0"))
	assert.Equal(t, StatusMatched, mustMake(t, `\u00303`).Match("03"))
	// An escaped backslash keeps the following `u0030` literal.
	assert.Equal(t, StatusMatched, mustMake(t, `\\u0030`).Match(`\u0030`))
}

func TestSearch(t *testing.T) {
	assert.Equal(t, StatusMatched, mustMake(t, "w").Search("awoo").Status)
	assert.Equal(t, StatusUnmatched, mustMake(t, "z").Search("awoo").Status)

	// Offsets are byte offsets into the UTF-8 input.
	w := mustMake(t, "w").Search("ßw")
	require.Equal(t, StatusMatched, w.Status)
	assert.Equal(t, 2, w.Match.Index)
	assert.Equal(t, 1, w.Match.Length)

	sz := mustMake(t, "ß").Search("wß")
	require.Equal(t, StatusMatched, sz.Status)
	assert.Equal(t, 1, sz.Match.Index)
	assert.Equal(t, 2, sz.Match.Length)
}

func TestReplaceAll(t *testing.T) {
	result, status := mustMake(t, "o").ReplaceAll("foo", "0")
	assert.Equal(t, StatusMatched, status)
	assert.Equal(t, "f00", result)

	result, status = mustMake(t, "z").ReplaceAll("foo", "0")
	assert.Equal(t, StatusUnmatched, status)
	assert.Equal(t, "foo", result)
}

func TestBadPattern(t *testing.T) {
	_, err := Make("(", 0)
	assert.ErrorIs(t, err, ErrBadPattern)
}

func TestParseFlags(t *testing.T) {
	flags, err := ParseFlags("gi")
	require.NoError(t, err)
	assert.Equal(t, FlagGlobal|FlagIgnoreCase, flags)
	assert.Equal(t, "gi", flags.String())

	all, err := ParseFlags("dgimsuvy")
	require.NoError(t, err)
	assert.Equal(t, "dgimsuvy", all.String())

	flags, err = ParseFlags("")
	require.NoError(t, err)
	assert.Equal(t, Flags(0), flags)
}

func TestParseFlagsErrors(t *testing.T) {
	_, err := ParseFlags("gg")
	var flagsErr *FlagsError
	require.ErrorAs(t, err, &flagsErr)
	assert.Equal(t, FlagsErrorDuplicate, flagsErr.Kind)
	assert.Equal(t, 1, flagsErr.Index)
	assert.Equal(t, 1, flagsErr.Length)

	_, err = ParseFlags("gz")
	require.ErrorAs(t, err, &flagsErr)
	assert.Equal(t, FlagsErrorInvalid, flagsErr.Kind)
	assert.Equal(t, 1, flagsErr.Index)
	assert.Equal(t, 1, flagsErr.Length)

	// The whole offending code point is identified.
	_, err = ParseFlags("gß")
	require.ErrorAs(t, err, &flagsErr)
	assert.Equal(t, FlagsErrorInvalid, flagsErr.Kind)
	assert.Equal(t, 1, flagsErr.Index)
	assert.Equal(t, 2, flagsErr.Length)
}

func TestIgnoreCaseFlag(t *testing.T) {
	re, err := Make("abc", FlagIgnoreCase)
	require.NoError(t, err)
	assert.Equal(t, StatusMatched, re.Match("ABC"))
	assert.True(t, re.Flags()&FlagIgnoreCase != 0)
}
