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
	"github.com/eisenwave/cowel/bigint"
	"github.com/eisenwave/cowel/reporter"
)

// The arithmetic directive family. All operands are arbitrary-precision
// integers; results never overflow.

func arithmeticOperands(call *Invocation, ctx *Context) ([]Value, Status) {
	var pack GroupPackValueMatcher
	matcher := CallMatcher{Pack: &pack}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDArithmeticParse), StatusError)
	if status != StatusOK {
		return nil, status
	}
	values := pack.Values()
	locations := pack.Locations()
	for i, v := range values {
		if !v.IsInt() {
			ctx.TryError(reporter.IDArithmeticParse, locations[i],
				"Expected an integer operand, but got "+v.Type().String()+".")
			return nil, StatusError
		}
	}
	return values, StatusOK
}

func plusEvaluate(call *Invocation, ctx *Context) (Value, Status) {
	values, status := arithmeticOperands(call, ctx)
	if status != StatusOK {
		return Null, status
	}
	var sum bigint.BigInt
	for _, v := range values {
		sum = sum.Add(v.AsInt())
	}
	return Integer(sum), StatusOK
}

func timesEvaluate(call *Invocation, ctx *Context) (Value, Status) {
	values, status := arithmeticOperands(call, ctx)
	if status != StatusOK {
		return Null, status
	}
	product := bigint.FromInt64(1)
	for _, v := range values {
		product = product.Mul(v.AsInt())
	}
	return Integer(product), StatusOK
}

func minusEvaluate(call *Invocation, ctx *Context) (Value, Status) {
	values, status := arithmeticOperands(call, ctx)
	if status != StatusOK {
		return Null, status
	}
	switch len(values) {
	case 1:
		return Integer(values[0].AsInt().Neg()), StatusOK
	case 2:
		return Integer(values[0].AsInt().Sub(values[1].AsInt())), StatusOK
	}
	ctx.TryError(reporter.IDArithmeticParse, call.ArgumentsSourceSpan(),
		"Subtraction takes one or two operands.")
	return Null, StatusError
}

var divRoundingOptions = []string{"ceil", "floor", "trunc"}

func divRoundingOf(name string) bigint.DivRounding {
	switch name {
	case "ceil":
		return bigint.ToPosInf
	case "floor":
		return bigint.ToNegInf
	}
	return bigint.ToZero
}

func divisionEvaluate(rem bool) func(call *Invocation, ctx *Context) (Value, Status) {
	return func(call *Invocation, ctx *Context) (Value, Status) {
		var x, y IntegerMatcher
		rounding := NewSortedOptionsMatcher(divRoundingOptions)
		matcher := CallMatcher{Pack: NewPackUsualMatcher(
			GroupMemberMatcher{Name: "x", Optionality: Mandatory, Value: &x},
			GroupMemberMatcher{Name: "y", Optionality: Mandatory, Value: &y},
			GroupMemberMatcher{Name: "rounding", Optionality: Optional, Value: rounding},
		)}
		status := matcher.MatchCall(call, ctx,
			ErrorFailCallback(reporter.IDArithmeticParse), StatusError)
		if status != StatusOK {
			return Null, status
		}
		if y.Get().IsZero() {
			ctx.TryError(reporter.IDArithmeticDivByZero, y.Location(),
				"Division by zero.")
			return Null, StatusError
		}
		mode := divRoundingOf(rounding.GetOrDefault("trunc"))
		q, r := x.Get().DivRem(y.Get(), mode)
		if rem {
			return Integer(r), StatusOK
		}
		return Integer(q), StatusOK
	}
}

func powEvaluate(call *Invocation, ctx *Context) (Value, Status) {
	var x, y IntegerMatcher
	matcher := CallMatcher{Pack: NewPackUsualMatcher(
		GroupMemberMatcher{Name: "x", Optionality: Mandatory, Value: &x},
		GroupMemberMatcher{Name: "y", Optionality: Mandatory, Value: &y},
	)}
	status := matcher.MatchCall(call, ctx,
		ErrorFailCallback(reporter.IDArithmeticParse), StatusError)
	if status != StatusOK {
		return Null, status
	}
	exponent, fits := y.Get().Int64()
	if !fits || exponent < 0 {
		ctx.TryError(reporter.IDArithmeticParse, y.Location(),
			"The exponent must be a small non-negative integer.")
		return Null, StatusError
	}
	if x.Get().IsZero() && exponent == 0 {
		// pow(0, 0) is undefined; the sentinel result is 0.
		ctx.TryWarning(reporter.IDArithmeticParse, call.ArgumentsSourceSpan(),
			"pow(0, 0) is undefined.")
		return Integer(bigint.BigInt{}), StatusOK
	}
	return Integer(x.Get().Pow(int(exponent))), StatusOK
}
