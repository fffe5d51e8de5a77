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
)

// DirectiveBehavior is the effect of a directive. Generative behaviors
// write into the current content policy; evaluator behaviors produce a
// Value; alias and macro behaviors register or substitute.
//
// Both entry points are always available: splicing an evaluator behavior
// splices its result, and evaluating a generative behavior captures its
// output as a string value.
type DirectiveBehavior interface {
	Splice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status
	Evaluate(call *Invocation, ctx *Context) (Value, Status)
}

// Generative adapts a splice function to DirectiveBehavior. Evaluating it
// captures the generated output as a string value.
type Generative struct {
	F func(out policy.ContentPolicy, call *Invocation, ctx *Context) Status
}

func (g Generative) Splice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	return g.F(out, call, ctx)
}

func (g Generative) Evaluate(call *Invocation, ctx *Context) (Value, Status) {
	var buf []byte
	sink := policy.NewCapturingSink(&buf, policy.LanguageHTML)
	out := policy.NewHTMLPolicy(sink)
	status := g.F(out, call, ctx)
	if status.IsError() {
		return Null, status
	}
	return String(string(buf), ast.StringUnknown), status
}

// Evaluator adapts an evaluate function to DirectiveBehavior. Splicing it
// splices the produced value into the policy.
type Evaluator struct {
	F func(call *Invocation, ctx *Context) (Value, Status)
}

func (e Evaluator) Evaluate(call *Invocation, ctx *Context) (Value, Status) {
	return e.F(call, ctx)
}

func (e Evaluator) Splice(out policy.ContentPolicy, call *Invocation, ctx *Context) Status {
	value, status := e.F(call, ctx)
	if status.IsError() {
		return status
	}
	return StatusMax(status, SpliceValue(out, value, ctx))
}

// BehaviorTable is a simple name-to-behavior map implementing
// DirectiveResolver.
type BehaviorTable map[string]DirectiveBehavior

func (t BehaviorTable) FindDirective(name string) DirectiveBehavior {
	return t[name]
}
