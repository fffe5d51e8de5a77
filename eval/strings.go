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

package eval

import (
	"github.com/eisenwave/cowel/ast"
	"github.com/eisenwave/cowel/policy"
	"github.com/eisenwave/cowel/regex"
	"github.com/eisenwave/cowel/reporter"
)

// asTextEvaluate implements `\cowel_as_text{content}`: the content is
// evaluated and converted to plain text, yielding a string value.
func asTextEvaluate(call *Invocation, ctx *Context) (Value, Status) {
	text, status := SpliceToPlaintext(call.ContentElements(), call.ContentFrame, ctx)
	if status.IsError() {
		return Null, status
	}
	return String(text, ast.StringUnknown), status
}

// toHTMLEvaluate implements `\cowel_to_html{content}`: the content is
// evaluated through an HTML policy and the generated HTML is yielded as a
// string value.
func toHTMLEvaluate(call *Invocation, ctx *Context) (Value, Status) {
	var buf []byte
	sink := policy.NewCapturingSink(&buf, policy.LanguageHTML)
	out := policy.NewHTMLPolicy(sink)
	status := SpliceAll(out, call.ContentElements(), call.ContentFrame, ctx)
	if status.IsError() {
		return Null, status
	}
	return String(string(buf), ast.StringUnknown), status
}

// compileRegexArguments matches the common (pattern, flags?) prefix of the
// regex directives.
func compileRegexArguments(
	pattern, flags *SpliceableToStringMatcher, ctx *Context,
) (regex.RegExp, Status) {
	flagsText := ""
	flagsLocation := pattern.Location()
	if flags.WasMatched() {
		flagsText = flags.Get()
		flagsLocation = flags.Location()
	}
	parsedFlags, err := regex.ParseFlags(flagsText)
	if err != nil {
		ctx.TryError(reporter.IDRegexFlags, flagsLocation,
			"Invalid regular expression flags: "+err.Error()+".")
		return regex.RegExp{}, StatusError
	}
	re, err := regex.Make(pattern.Get(), parsedFlags)
	if err != nil {
		ctx.TryError(reporter.IDRegexPattern, pattern.Location(),
			"Invalid regular expression pattern.")
		return regex.RegExp{}, StatusError
	}
	return re, StatusOK
}

// regexReplaceSplice implements
// `\cowel_regex_replace(pattern, replacement, flags?){input}`.
func regexReplaceSplice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	var pattern, replacement, flags SpliceableToStringMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "pattern", Optionality: Mandatory, Value: &pattern},
		GroupMemberMatcher{Name: "replacement", Optionality: Mandatory, Value: &replacement},
		GroupMemberMatcher{Name: "flags", Optionality: Optional, Value: &flags},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDTypeMismatch), StatusError)
	if status != StatusOK {
		return TryGenerateError(out, call, ctx, status)
	}
	re, status := compileRegexArguments(&pattern, &flags, ctx)
	if status != StatusOK {
		return TryGenerateError(out, call, ctx, status)
	}

	input, status := SpliceToPlaintext(call.ContentElements(), call.ContentFrame, ctx)
	if status.IsError() {
		return status
	}
	result, execStatus := re.ReplaceAll(input, replacement.Get())
	if execStatus == regex.StatusExecutionError {
		ctx.TryError(reporter.IDRegexExecution, pattern.Location(),
			"Regular expression execution failed.")
		return TryGenerateError(out, call, ctx, StatusError)
	}
	out.Write(result, policy.LanguageText)
	return status
}

// regexTestEvaluate implements
// `\cowel_regex_test(pattern, flags?){input}`, yielding a bool.
func regexTestEvaluate(call *Invocation, ctx *Context) (Value, Status) {
	var pattern, flags SpliceableToStringMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "pattern", Optionality: Mandatory, Value: &pattern},
		GroupMemberMatcher{Name: "flags", Optionality: Optional, Value: &flags},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDTypeMismatch), StatusError)
	if status != StatusOK {
		return Null, status
	}
	re, status := compileRegexArguments(&pattern, &flags, ctx)
	if status != StatusOK {
		return Null, status
	}

	input, status := SpliceToPlaintext(call.ContentElements(), call.ContentFrame, ctx)
	if status.IsError() {
		return Null, status
	}
	switch re.Match(input) {
	case regex.StatusMatched:
		return True, status
	case regex.StatusUnmatched:
		return False, status
	}
	ctx.TryError(reporter.IDRegexExecution, pattern.Location(),
		"Regular expression execution failed.")
	return Null, StatusError
}
