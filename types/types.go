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

// Package types implements the structural type system of the COWEL value
// sublanguage.
//
// Types are immutable. The canonical constructors (UnionOf, GroupOf, PackOf,
// NamedOf) apply the canonicalization rules: unions are flattened, sorted,
// and deduplicated, a union containing `any` is `any`, an empty union is
// `nothing`, a singleton union is its member, and a pack, named, or group
// containing `nothing` collapses to `nothing`.
package types

import (
	"sort"
	"strings"
)

// Kind is the kind of a type.
type Kind uint8

const (
	// Any is the top type, i.e. the union of all types.
	Any Kind = iota
	// Nothing is the bottom type, i.e. an empty type set.
	Nothing
	// Unit is the type of directives that don't return anything.
	// It produces nothing when spliced and does not indicate an error.
	Unit
	// Null is a unit type indicating errors or absence of values.
	// It produces `null` when spliced.
	Null
	// Bool holds `true` or `false`.
	Bool
	// Int holds arbitrary-precision integers.
	Int
	// Float holds binary64 floating-point numbers.
	Float
	// Str holds UTF-8 strings.
	Str
	// Regex holds regular expressions.
	Regex
	// Block is a lazily evaluated block of markup.
	Block
	// Group is a product type of named and unnamed members and packs.
	Group
	// Pack is a pack of other types; it may only appear within a group.
	Pack
	// Named is a named member; it may only appear within a group.
	Named
	// Lazy is a lazily evaluated value.
	Lazy
	// Union is a sum of other types.
	Union
)

// IsBasic reports whether the kind has no member types.
func (k Kind) IsBasic() bool {
	return k <= Block
}

// IsSpliceable reports whether values of this kind can be spliced into
// markup.
func (k Kind) IsSpliceable() bool {
	switch k {
	case Unit, Null, Bool, Int, Float, Str, Block:
		return true
	}
	return false
}

// IsValueHoldable reports whether a Value can hold values of this kind.
func (k Kind) IsValueHoldable() bool {
	switch k {
	case Any, Nothing, Union, Pack, Named:
		return false
	}
	return true
}

func (k Kind) String() string {
	switch k {
	case Any:
		return "any"
	case Nothing:
		return "nothing"
	case Unit:
		return "unit"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case Regex:
		return "regex"
	case Block:
		return "block"
	case Group:
		return "group"
	case Pack:
		return "pack"
	case Named:
		return "named"
	case Lazy:
		return "lazy"
	case Union:
		return "union"
	}
	return "invalid"
}

// Type is a type in the COWEL type system. Types constructed through this
// package are always canonical.
type Type struct {
	kind Kind
	// dynamic marks types like `any` and the dynamic group whose member
	// list carries no information for analysis.
	dynamic bool
	members []Type
}

// The basic types.
var (
	AnyType     = Type{kind: Any, dynamic: true}
	NothingType = Type{kind: Nothing}
	UnitType    = Type{kind: Unit}
	NullType    = Type{kind: Null}
	BoolType    = Type{kind: Bool}
	IntType     = Type{kind: Int}
	FloatType   = Type{kind: Float}
	StrType     = Type{kind: Str}
	RegexType   = Type{kind: Regex}
	BlockType   = Type{kind: Block}

	// EmptyGroupType is the type of `()`.
	EmptyGroupType = Type{kind: Group}
	// DynamicGroupType is the group of anything. No value has this exact
	// type, but all group values are considered to have it for analysis.
	DynamicGroupType = Type{kind: Group, dynamic: true}
)

// Basic returns the basic type of the given kind.
func Basic(kind Kind) Type {
	if !kind.IsBasic() {
		panic("types: not a basic kind")
	}
	if kind == Any {
		return AnyType
	}
	return Type{kind: kind}
}

// PackOf returns the canonical pack of element. A pack of a pack flattens;
// a pack of nothing is nothing.
func PackOf(element Type) Type {
	if element.kind == Nothing {
		return NothingType
	}
	if element.kind == Pack {
		return element
	}
	return Type{kind: Pack, members: []Type{element}}
}

// NamedOf returns the canonical named wrapper of element. A named nothing
// is nothing.
func NamedOf(element Type) Type {
	if element.kind == Nothing {
		return NothingType
	}
	if element.kind == Named {
		return element
	}
	return Type{kind: Named, members: []Type{element}}
}

// LazyOf returns the lazy wrapper of element.
func LazyOf(element Type) Type {
	return Type{kind: Lazy, members: []Type{element}}
}

// GroupOf returns the canonical group of members. A group containing
// nothing collapses to nothing.
func GroupOf(members ...Type) Type {
	for _, m := range members {
		if m.kind == Nothing {
			return NothingType
		}
	}
	out := make([]Type, len(members))
	copy(out, members)
	return Type{kind: Group, members: out}
}

// UnionOf returns the canonical union of alternatives: nested unions are
// flattened, `any` absorbs, `nothing` alternatives are dropped, the rest is
// sorted and deduplicated. An empty union is nothing; a singleton union is
// its member.
func UnionOf(alternatives ...Type) Type {
	var flat []Type
	var flatten func(ts []Type)
	flatten = func(ts []Type) {
		for _, t := range ts {
			if t.kind == Union {
				flatten(t.members)
			} else {
				flat = append(flat, t)
			}
		}
	}
	flatten(alternatives)

	for _, t := range flat {
		if t.kind == Any {
			return AnyType
		}
	}
	n := 0
	for _, t := range flat {
		if t.kind != Nothing {
			flat[n] = t
			n++
		}
	}
	flat = flat[:n]

	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].compare(flat[j]) < 0
	})
	n = 0
	for i, t := range flat {
		if i == 0 || t.compare(flat[i-1]) != 0 {
			flat[n] = t
			n++
		}
	}
	flat = flat[:n]

	switch len(flat) {
	case 0:
		return NothingType
	case 1:
		return flat[0]
	}
	return Type{kind: Union, members: flat}
}

// Kind returns the kind of the type.
func (t Type) Kind() Kind { return t.kind }

// IsDynamic reports whether the type is dynamic, like `any` or the dynamic
// group.
func (t Type) IsDynamic() bool { return t.dynamic }

// Members returns the member types of a compound type.
func (t Type) Members() []Type { return t.members }

// Equal reports whether two canonical types are equivalent.
func (t Type) Equal(other Type) bool {
	return t.compare(other) == 0 && t.dynamic == other.dynamic
}

func (t Type) compare(other Type) int {
	if t.kind != other.kind {
		if t.kind < other.kind {
			return -1
		}
		return 1
	}
	for i := 0; i < len(t.members) && i < len(other.members); i++ {
		if c := t.members[i].compare(other.members[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(t.members) < len(other.members):
		return -1
	case len(t.members) > len(other.members):
		return 1
	}
	return 0
}

// ConvertibleTo reports whether the type is analytically convertible to
// other: equivalent to it, or storable in a variable of that type without
// any change to the value. For example, int is convertible to int | null,
// and nothing is convertible to everything.
func (t Type) ConvertibleTo(other Type) bool {
	if other.kind == Any || t.Equal(other) {
		return true
	}

	switch t.kind {
	case Nothing:
		return true
	case Pack:
		if other.kind == Pack {
			return t.members[0].ConvertibleTo(other.members[0])
		}
	case Named:
		if other.kind == Named {
			return t.members[0].ConvertibleTo(other.members[0])
		}
	case Union:
		all := true
		for _, m := range t.members {
			if !m.ConvertibleTo(other) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	case Group:
		if other.kind == Group {
			if t.dynamic || other.dynamic {
				return true
			}
			if len(t.members) == len(other.members) {
				all := true
				for i := range t.members {
					if !t.members[i].ConvertibleTo(other.members[i]) {
						all = false
						break
					}
				}
				if all {
					return true
				}
			}
		}
	}

	switch other.kind {
	case Lazy:
		return t.ConvertibleTo(other.members[0])
	case Union:
		for _, m := range other.members {
			if t.ConvertibleTo(m) {
				return true
			}
		}
	}

	return false
}

// String returns the display name of the type, e.g. `int | null` or
// `group(str, pack(int))`.
func (t Type) String() string {
	switch t.kind {
	case Union:
		var sb strings.Builder
		for i, m := range t.members {
			if i != 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(m.String())
		}
		return sb.String()
	case Pack, Named, Lazy:
		return t.kind.String() + "(" + t.members[0].String() + ")"
	case Group:
		if t.dynamic {
			return "group"
		}
		var sb strings.Builder
		sb.WriteString("group(")
		for i, m := range t.members {
			if i != 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.String())
		}
		sb.WriteString(")")
		return sb.String()
	}
	return t.kind.String()
}
