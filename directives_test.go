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

package cowel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eisenwave/cowel/reporter"
)

func TestArithmeticDirectives(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`\cowel_plus(1, 2, 3)`, "6"},
		{`\cowel_plus()`, "0"},
		{`\cowel_minus(10, 4)`, "6"},
		{`\cowel_minus(5)`, "-5"},
		{`\cowel_times(2, 3, 4)`, "24"},
		{`\cowel_div(7, 2)`, "3"},
		{`\cowel_div(-7, 2)`, "-3"},
		{`\cowel_div(-7, 2, rounding = floor)`, "-4"},
		{`\cowel_div(-7, 2, rounding = ceil)`, "-3"},
		{`\cowel_div(7, 2, rounding = ceil)`, "4"},
		{`\cowel_rem(7, 2)`, "1"},
		{`\cowel_rem(-7, 2, rounding = floor)`, "1"},
		{`\cowel_pow(2, 100)`, "1267650600228229401496703205376"},
	}
	for _, c := range cases {
		result, logger := generateMinimal(t, c.source)
		require.Equal(t, ProcessingOK, result.Status,
			"%s diagnostics: %v", c.source, logger.Diagnostics)
		assert.Equal(t, c.want, string(result.Output), "source %s", c.source)
	}
}

func TestArithmeticDivisionByZero(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_div(1, 0)`)
	assert.Equal(t, ProcessingError, result.Status)
	assert.True(t, logger.Has(reporter.IDArithmeticDivByZero))
}

func TestArithmeticTypeError(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_plus(1, true)`)
	assert.Equal(t, ProcessingError, result.Status)
	assert.True(t, logger.Has(reporter.IDArithmeticParse))
}

func TestArithmeticNesting(t *testing.T) {
	// Directive values nest; the inner result feeds the outer operands.
	result, logger := generateMinimal(t, `\cowel_plus(\cowel_times(2, 3), 4)`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "10", string(result.Output))
}

func TestAsTextAndToHTML(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_as_text{a \cowel_plus(1, 1) b}`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "a 2 b", string(result.Output))

	// The HTML produced by \cowel_to_html is a plain string value; splicing
	// it into HTML output escapes it again.
	result, logger = generateMinimal(t, `\cowel_as_text{\cowel_to_html{x < y}}`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "x &amp;lt; y", string(result.Output))
}

func TestRegexReplaceDirective(t *testing.T) {
	result, logger := generateMinimal(t,
		`\cowel_regex_replace(o, "0"){foo}`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "f00", string(result.Output))
}

func TestRegexTestDirective(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_regex_test(abc){abc}`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "true", string(result.Output))

	result, _ = generateMinimal(t, `\cowel_regex_test(abc){xyz}`)
	require.Equal(t, ProcessingOK, result.Status)
	assert.Equal(t, "false", string(result.Output))
}

func TestRegexBadPatternDirective(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_regex_test("("){x}`)
	assert.Equal(t, ProcessingError, result.Status)
	assert.True(t, logger.Has(reporter.IDRegexPattern))
}

func TestRegexBadFlagsDirective(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_regex_test(a, flags = gg){x}`)
	assert.Equal(t, ProcessingError, result.Status)
	assert.True(t, logger.Has(reporter.IDRegexFlags))
}
