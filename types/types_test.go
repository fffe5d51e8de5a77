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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionCanonicalization(t *testing.T) {
	// An empty union is nothing; a singleton union is its member.
	assert.True(t, UnionOf().Equal(NothingType))
	assert.True(t, UnionOf(IntType).Equal(IntType))

	// Nested unions flatten; duplicates collapse.
	u := UnionOf(IntType, UnionOf(StrType, IntType))
	assert.Equal(t, Union, u.Kind())
	assert.Len(t, u.Members(), 2)

	// Order does not matter after canonicalization.
	assert.True(t, UnionOf(StrType, IntType).Equal(UnionOf(IntType, StrType)))

	// any absorbs; nothing disappears.
	assert.True(t, UnionOf(IntType, AnyType).Equal(AnyType))
	assert.True(t, UnionOf(IntType, NothingType).Equal(IntType))
	assert.True(t, UnionOf(NothingType, NothingType).Equal(NothingType))
}

func TestPackAndNamedCanonicalization(t *testing.T) {
	assert.True(t, PackOf(NothingType).Equal(NothingType))
	assert.True(t, NamedOf(NothingType).Equal(NothingType))

	// A pack of a pack flattens.
	assert.True(t, PackOf(PackOf(IntType)).Equal(PackOf(IntType)))

	assert.Equal(t, Pack, PackOf(IntType).Kind())
	assert.Equal(t, Named, NamedOf(StrType).Kind())
}

func TestGroupCanonicalization(t *testing.T) {
	assert.True(t, GroupOf().Equal(EmptyGroupType))
	assert.True(t, GroupOf(IntType, NothingType).Equal(NothingType))

	g := GroupOf(IntType, StrType)
	assert.Equal(t, Group, g.Kind())
	assert.Len(t, g.Members(), 2)
}

func TestConvertibility(t *testing.T) {
	intOrNull := UnionOf(IntType, NullType)

	// Everything converts to any; nothing converts to everything.
	assert.True(t, IntType.ConvertibleTo(AnyType))
	assert.True(t, NothingType.ConvertibleTo(IntType))
	assert.True(t, NothingType.ConvertibleTo(intOrNull))

	// A type converts to a union containing it.
	assert.True(t, IntType.ConvertibleTo(intOrNull))
	assert.True(t, NullType.ConvertibleTo(intOrNull))
	assert.False(t, StrType.ConvertibleTo(intOrNull))

	// A union converts when all alternatives do.
	assert.True(t, intOrNull.ConvertibleTo(UnionOf(IntType, NullType, StrType)))
	assert.False(t, intOrNull.ConvertibleTo(IntType))

	// Lazy targets accept the underlying type.
	assert.True(t, IntType.ConvertibleTo(LazyOf(IntType)))
	assert.False(t, StrType.ConvertibleTo(LazyOf(IntType)))

	// Packs and named wrappers convert member-wise.
	assert.True(t, PackOf(IntType).ConvertibleTo(PackOf(intOrNull)))
	assert.False(t, PackOf(StrType).ConvertibleTo(PackOf(IntType)))
	assert.True(t, NamedOf(IntType).ConvertibleTo(NamedOf(intOrNull)))
}

func TestGroupConvertibility(t *testing.T) {
	intOrNull := UnionOf(IntType, NullType)

	// The dynamic group accepts and converts to any group.
	assert.True(t, GroupOf(IntType).ConvertibleTo(DynamicGroupType))
	assert.True(t, DynamicGroupType.ConvertibleTo(GroupOf(IntType)))

	assert.True(t, GroupOf(IntType, StrType).ConvertibleTo(GroupOf(intOrNull, StrType)))
	assert.False(t, GroupOf(IntType, StrType).ConvertibleTo(GroupOf(IntType)))
	assert.False(t, GroupOf(IntType).ConvertibleTo(IntType))
}

func TestSpliceability(t *testing.T) {
	for _, k := range []Kind{Unit, Null, Bool, Int, Float, Str, Block} {
		assert.True(t, k.IsSpliceable(), "%s", k)
	}
	for _, k := range []Kind{Any, Nothing, Regex, Group, Pack, Named, Lazy, Union} {
		assert.False(t, k.IsSpliceable(), "%s", k)
	}
}

func TestValueHoldability(t *testing.T) {
	for _, k := range []Kind{Unit, Null, Bool, Int, Float, Str, Regex, Block, Group, Lazy} {
		assert.True(t, k.IsValueHoldable(), "%s", k)
	}
	for _, k := range []Kind{Any, Nothing, Union, Pack, Named} {
		assert.False(t, k.IsValueHoldable(), "%s", k)
	}
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "int", IntType.String())
	assert.Equal(t, "group", DynamicGroupType.String())
	assert.Equal(t, "group()", EmptyGroupType.String())
	assert.Equal(t, "group(str, pack(int))", GroupOf(StrType, PackOf(IntType)).String())
	assert.Equal(t, "int | str", UnionOf(StrType, IntType).String())
	assert.Equal(t, "lazy(bool)", LazyOf(BoolType).String())
}
