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

package reporter

// The diagnostic ID catalogue. IDs are hierarchical dot-separated
// identifiers; directive-specific families use a `name:` prefix. External
// tests match these exact strings, so they must not change.
const (
	// IDParse is the generic family for lexing and parsing errors.
	IDParse = "parse"
	// IDParseBlockUnclosed: a block was not terminated by a closing brace.
	IDParseBlockUnclosed = "parse.block.unclosed"

	// IDErrorError: a (non-fatal) error could not be produced.
	IDErrorError = "error.error"
	// IDDeprecated: a deprecated feature was used.
	IDDeprecated = "deprecated"
	// IDDuplicateID: a duplicate `id` attribute would have been generated.
	IDDuplicateID = "id.duplicate"

	// IDSectionRefNotFound: a reference to an unknown section was found
	// during document post-processing.
	IDSectionRefNotFound = "section-ref.not-found"
	// IDSectionRefCircular: section references form a cycle.
	IDSectionRefCircular = "section-ref.circular"

	// IDDirectiveLookupUnresolved: directive lookup failed.
	IDDirectiveLookupUnresolved = "directive-lookup.unresolved"
	// IDDuplicateArgs: duplicate arguments to a directive were provided.
	IDDuplicateArgs = "duplicate.args"
	// IDIgnoredArgs: arguments to a directive were ignored.
	IDIgnoredArgs = "ignored.args"
	// IDIgnoredContent: the content of a directive was ignored.
	IDIgnoredContent = "ignored.content"
	// IDTypeMismatch: an argument had the wrong type.
	IDTypeMismatch = "type.mismatch"

	// IDHighlightLanguage: the given language is not supported.
	IDHighlightLanguage = "highlight.language"
	// IDHighlightMalformed: the code could not be highlighted.
	IDHighlightMalformed = "highlight.malformed"
	// IDHighlightError: something else went wrong in highlighting.
	IDHighlightError = "highlight.error"

	// IDArithmeticParse: arithmetic failed due to a parse error.
	IDArithmeticParse = "arithmetic.parse"
	// IDArithmeticDivByZero: division by zero.
	IDArithmeticDivByZero = "arithmetic.div-by-zero"

	// IDThemeConversion: a highlight theme could not be converted.
	IDThemeConversion = "theme.conversion"

	// Macro directive family.
	IDMacroNoPattern          = "macro:pattern.none"
	IDMacroPatternNoDirective = "macro:pattern.no-directive"
	IDMacroRedefinition       = "macro:redefinition"
	IDMacroPutInvalid         = "macro:put.invalid"
	IDMacroPutOutOfRange      = "macro:put.out-of-range"

	// Alias directive family.
	IDAliasNameMissing = "alias:name.missing"
	IDAliasNameInvalid = "alias:name.invalid"
	IDAliasDuplicate   = "alias:duplicate"

	// Invoke directive family.
	IDInvokeNameInvalid  = "invoke:name.invalid"
	IDInvokeLookupFailed = "invoke:lookup.failed"

	// Section directive families.
	IDThereNoSection = "there:no-section"
	IDHereNoSection  = "here:no-section"

	// Include directive family.
	IDIncludePathMissing = "include:path.empty"
	IDIncludeIO          = "include:io"

	// Reference directive family.
	IDRefToMissing    = "ref:to.missing"
	IDRefToEmpty      = "ref:to.empty"
	IDRefToUnresolved = "ref:to.unresolved"

	// Code point directive family.
	IDCharBlank     = "c:blank"
	IDCharName      = "c:name"
	IDCharDigits    = "c:digits"
	IDCharNonscalar = "c:nonscalar"

	// Variable directive family.
	IDVarName = "var:name"

	// Regular expression directive family.
	IDRegexPattern   = "regex:pattern"
	IDRegexFlags     = "regex:flags"
	IDRegexExecution = "regex:execution"
)
