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
	"github.com/eisenwave/cowel/bigint"
	"github.com/eisenwave/cowel/types"
)

// Value is a value in the COWEL language: a tagged union of unit, null,
// bool, int, float, string, and the lazy block and directive thunks.
//
// The block and directive variants carry the frame index at which they
// must be evaluated, so that captured arguments and ellipsis members
// resolve correctly after repeated macro expansion.
//
// The zero Value is not unit: its type is the zero types.Type, of kind
// types.Any. The unit value is Unit.
type Value struct {
	typ        types.Type
	boolean    bool
	integer    bigint.BigInt
	floating   float64
	str        string
	stringKind ast.StringKind
	block      *ast.Primary
	directive  *ast.Directive
	frame      FrameIndex
}

// Unit is the only value of the unit type.
var Unit = Value{typ: types.UnitType}

// Null is the only value of the null type.
var Null = Value{typ: types.NullType}

// True and False are the boolean values.
var (
	True  = Boolean(true)
	False = Boolean(false)
)

// Boolean returns a bool value.
func Boolean(v bool) Value {
	return Value{typ: types.BoolType, boolean: v}
}

// Integer returns an int value.
func Integer(v bigint.BigInt) Value {
	return Value{typ: types.IntType, integer: v}
}

// Float returns a float value.
func Float(v float64) Value {
	return Value{typ: types.FloatType, floating: v}
}

// String returns a str value.
func String(v string, kind ast.StringKind) Value {
	return Value{typ: types.StrType, str: v, stringKind: kind}
}

// BlockValue returns a lazy thunk over a block node, to be evaluated in
// the given frame.
func BlockValue(block *ast.Primary, frame FrameIndex) Value {
	return Value{typ: types.BlockType, block: block, frame: frame}
}

// DirectiveValue returns a lazy thunk over a directive node, to be
// evaluated in the given frame.
func DirectiveValue(directive *ast.Directive, frame FrameIndex) Value {
	return Value{typ: types.BlockType, directive: directive, frame: frame}
}

// Type returns the type of the value.
func (v Value) Type() types.Type { return v.typ }

// Kind returns the kind of the value's type.
func (v Value) Kind() types.Kind { return v.typ.Kind() }

func (v Value) IsUnit() bool { return v.Kind() == types.Unit }
func (v Value) IsNull() bool { return v.Kind() == types.Null }
func (v Value) IsBool() bool { return v.Kind() == types.Bool }
func (v Value) IsInt() bool { return v.Kind() == types.Int }
func (v Value) IsFloat() bool { return v.Kind() == types.Float }
func (v Value) IsStr() bool { return v.Kind() == types.Str }
func (v Value) IsBlock() bool { return v.Kind() == types.Block }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.boolean }

// AsInt returns the integer payload.
func (v Value) AsInt() bigint.BigInt { return v.integer }

// AsFloat returns the float payload.
func (v Value) AsFloat() float64 { return v.floating }

// AsString returns the string payload.
func (v Value) AsString() string { return v.str }

// StringKind returns the string kind hint of a str value.
func (v Value) StringKind() ast.StringKind { return v.stringKind }

// Frame returns the frame index a block or directive thunk is evaluated in.
func (v Value) Frame() FrameIndex { return v.frame }

// Block returns the block node of a block thunk, or nil.
func (v Value) Block() *ast.Primary { return v.block }

// Directive returns the directive node of a directive thunk, or nil.
func (v Value) Directive() *ast.Directive { return v.directive }

// Equal compares two values. Blocks are not equality-comparable and always
// compare unequal.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case types.Unit, types.Null:
		return true
	case types.Bool:
		return v.boolean == other.boolean
	case types.Int:
		return v.integer.Eq(other.integer)
	case types.Float:
		return v.floating == other.floating
	case types.Str:
		return v.str == other.str
	}
	return false
}
