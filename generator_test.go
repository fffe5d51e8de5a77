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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/eval"
	"github.com/eisenwave/cowel/parser"
	"github.com/eisenwave/cowel/policy"
	"github.com/eisenwave/cowel/reporter"
)

func generateMinimal(t *testing.T, source string) (Result, *CollectingLogger) {
	t.Helper()
	logger := &CollectingLogger{}
	result := GenerateHTML(Options{
		Source:         source,
		Mode:           ModeMinimal,
		MinLogSeverity: reporter.SeverityMin,
		Logger:         logger,
	})
	return result, logger
}

func TestEmptyDocument(t *testing.T) {
	result := GenerateHTML(Options{Source: "", Mode: ModeDocument})
	require.Equal(t, ProcessingOK, result.Status)
	assert.Equal(t, `<!DOCTYPE html>
<html>
<head>
</head>
<body>
</body>
</html>
`, string(result.Output))
}

func TestTextOnlyMinimal(t *testing.T) {
	result, logger := generateMinimal(t, "hello")
	require.Equal(t, ProcessingOK, result.Status)
	assert.Equal(t, "<p>hello</p>", string(result.Output))
	assert.Empty(t, logger.Diagnostics)
}

func TestEscapeMinimal(t *testing.T) {
	result, _ := generateMinimal(t, `\{x\}`)
	require.Equal(t, ProcessingOK, result.Status)
	assert.Equal(t, "<p>{x}</p>", string(result.Output))
}

func TestCommentMinimal(t *testing.T) {
	result, _ := generateMinimal(t, "\\: this is ignored\nrest")
	require.Equal(t, ProcessingOK, result.Status)
	assert.Equal(t, "<p>rest</p>", string(result.Output))
}

func TestParagraphSplitMinimal(t *testing.T) {
	result, _ := generateMinimal(t, "a\n\nb")
	require.Equal(t, ProcessingOK, result.Status)
	assert.Equal(t, "<p>a</p><p>b</p>", string(result.Output))
}

func TestUnknownDirective(t *testing.T) {
	result, logger := generateMinimal(t, `\nosuch`)
	assert.Equal(t, ProcessingError, result.Status)
	assert.True(t, logger.Has(reporter.IDDirectiveLookupUnresolved))
	assert.Contains(t, string(result.Output), "<error->")
}

func TestMacroForwarding(t *testing.T) {
	// The ellipsis inside \cowel_invoke's arguments forwards the macro
	// call's own arguments, so `inner` receives positional `a` and named
	// `b = 2`.
	var gotFirst, gotB string
	builtins := eval.Kernel()
	builtins["inner"] = eval.Generative{
		F: func(out policy.ContentPolicy, call *eval.Invocation, ctx *eval.Context) eval.Status {
			var first, b eval.SpliceableToStringMatcher
			matcher := eval.CallMatcher{Pack: eval.NewPackUsualMatcher(
				eval.GroupMemberMatcher{Name: "first", Optionality: eval.Mandatory, Value: &first},
				eval.GroupMemberMatcher{Name: "b", Optionality: eval.Mandatory, Value: &b},
			)}
			status := matcher.MatchCall(call, ctx,
				eval.ErrorFailCallback(reporter.IDTypeMismatch), eval.StatusError)
			if status != eval.StatusOK {
				return status
			}
			gotFirst, gotB = first.Get(), b.Get()
			return eval.StatusOK
		},
	}

	logger := &CollectingLogger{}
	result := GenerateHTML(Options{
		Source:         `\cowel_macro(outer){\cowel_invoke(inner, ...)}\outer(a, b = 2)`,
		Mode:           ModeMinimal,
		Logger:         logger,
		MinLogSeverity: reporter.SeverityMin,
		Builtins:       builtins,
	})
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "a", gotFirst)
	assert.Equal(t, "2", gotB)
}

func TestMacroSubstitution(t *testing.T) {
	result, logger := generateMinimal(t,
		`\cowel_macro(shout){loud \cowel_put!}\shout{noise}`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "loud noise!", string(result.Output))
}

func TestMacroRedefinitionIsFatal(t *testing.T) {
	result, logger := generateMinimal(t,
		`\cowel_macro(m){a}\cowel_macro(m){b}`)
	assert.Equal(t, ProcessingFatal, result.Status)
	assert.True(t, logger.Has(reporter.IDMacroRedefinition))
	assert.Nil(t, result.Output)
}

func TestAlias(t *testing.T) {
	result, logger := generateMinimal(t,
		`\cowel_macro(m){x}\cowel_alias(m2){m}\m2`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "x", string(result.Output))
}

func TestAliasToUnknownDirectiveIsFatal(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_alias(a){nosuch}`)
	assert.Equal(t, ProcessingFatal, result.Status)
	assert.True(t, logger.Has(reporter.IDAliasNameInvalid))
}

func TestSections(t *testing.T) {
	result, logger := generateMinimal(t,
		`\cowel_there(x){ONE}before\cowel_here(x)after`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "<p>beforeONEafter</p>", string(result.Output))
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub.cow"), []byte("world"), 0o644))

	logger := &CollectingLogger{}
	result := GenerateHTML(Options{
		Source:         `\cowel_include("sub.cow")`,
		Mode:           ModeMinimal,
		MinLogSeverity: reporter.SeverityMin,
		Logger:         logger,
		Loader:         NewRelativeFileLoader(dir),
	})
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "<p>world</p>", string(result.Output))
}

func TestIncludeMissingFile(t *testing.T) {
	logger := &CollectingLogger{}
	result := GenerateHTML(Options{
		Source:         `\cowel_include("nope.cow")`,
		Mode:           ModeMinimal,
		MinLogSeverity: reporter.SeverityMin,
		Logger:         logger,
		Loader:         NewRelativeFileLoader(t.TempDir()),
	})
	assert.Equal(t, ProcessingError, result.Status)
	assert.True(t, logger.Has(reporter.IDIncludeIO))
	// The diagnostic message carries the loader's sentinel wrapped with the
	// include site's position.
	require.Len(t, logger.Diagnostics, 1)
	assert.Contains(t, logger.Diagnostics[0].Message, "file not found")
}

func TestChar(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_char(65)\cowel_char(0x1F600)`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "A\U0001F600", string(result.Output))
}

func TestCharNonscalar(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_char(0xD800)`)
	assert.Equal(t, ProcessingError, result.Status)
	assert.True(t, logger.Has(reporter.IDCharNonscalar))
}

func TestPreservedVariables(t *testing.T) {
	var captured []string
	result := GenerateHTML(Options{
		Source:             `\cowel_var_let(x, hello)\cowel_var_let(y, world)`,
		Mode:               ModeMinimal,
		PreservedVariables: []string{"x", "y", "unset"},
		ConsumeVariables: func(values []string) {
			captured = values
		},
	})
	require.Equal(t, ProcessingOK, result.Status)
	assert.Equal(t, []string{"hello", "world", ""}, captured)
}

func TestVarSplice(t *testing.T) {
	result, logger := generateMinimal(t, `\cowel_var_let(x, hi)\cowel_var(x)`)
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "hi", string(result.Output))
}

func TestCodeHighlighting(t *testing.T) {
	logger := &CollectingLogger{}
	result := GenerateHTML(Options{
		Source:         `\cowel_code(c){int x;}`,
		Mode:           ModeMinimal,
		MinLogSeverity: reporter.SeverityMin,
		Logger:         logger,
		Highlighter:    keywordHighlighter{},
	})
	require.Equal(t, ProcessingOK, result.Status, "diagnostics: %v", logger.Diagnostics)
	assert.Equal(t, "<h- data-h=kw>int</h-> x;", string(result.Output))
}

// keywordHighlighter highlights the keyword "int".
type keywordHighlighter struct{}

func (keywordHighlighter) Highlight(code, _ string) ([]policy.HighlightSpan, error) {
	var spans []policy.HighlightSpan
	for i := 0; i+3 <= len(code); i++ {
		if code[i:i+3] == "int" {
			spans = append(spans, policy.HighlightSpan{Begin: i, Length: 3, Short: "kw"})
		}
	}
	return spans, nil
}

func (keywordHighlighter) Languages() []string { return []string{"c"} }

func TestWG21Document(t *testing.T) {
	var output []byte
	status := RunGeneration(func(ctx *eval.Context) eval.Status {
		elements, ok := parser.Parse("hello", ast.FileMain, nil)
		require.True(t, ok)
		status := WriteWG21Document(ctx.Sections.Current().Policy(), elements, ctx)
		output = ctx.Sections.Flatten(nil)
		return status
	}, Options{})
	require.Equal(t, ProcessingOK, status)
	assert.Contains(t, string(output), "<!DOCTYPE html>")
	assert.Contains(t, string(output), `<meta charset="UTF-8">`)
	assert.Contains(t, string(output), "<main>\n<p>hello</p></main>")
}

func TestBatchGenerateAll(t *testing.T) {
	batch := &Batch{
		Options:        Options{Mode: ModeMinimal},
		MaxParallelism: 2,
	}
	results, err := batch.GenerateAll(context.Background(), "one", "two", "three")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "<p>one</p>", string(results[0].Output))
	assert.Equal(t, "<p>two</p>", string(results[1].Output))
	assert.Equal(t, "<p>three</p>", string(results[2].Output))
}
