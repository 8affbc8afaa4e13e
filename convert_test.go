// Copyright 2019-2024 Xu Ruibo (hustxurb@163.com) and Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package refcnt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaf struct {
	Base
	freed *int
}

func newLeaf(freed *int) *leaf {
	l := &leaf{freed: freed}
	l.SetFree(func() { *l.freed++ })
	return l
}

func TestConvert_ToInterface(t *testing.T) {
	freed := 0
	r := NewRef(newNode(1, &freed))

	i := Convert[RefCounted](r)
	require.False(t, i.Empty())
	assert.Equal(t, int32(2), r.Get().Refs())
	assert.True(t, Same(r, i))

	r.Release()
	assert.Equal(t, 0, freed)
	i.Release()
	assert.Equal(t, 1, freed)
}

func TestConvert_ToConcrete(t *testing.T) {
	freed := 0
	obj := newNode(7, &freed)
	i := NewRef[RefCounted](obj)

	r := Convert[*node](i)
	require.False(t, r.Empty())
	assert.Equal(t, 7, r.Get().id)
	assert.Equal(t, int32(2), obj.Refs())

	i.Release()
	r.Release()
	assert.Equal(t, 1, freed)
}

func TestConvert_Null(t *testing.T) {
	var r Ref[*node]
	i := Convert[RefCounted](r)
	assert.True(t, i.Empty())

	var j Ref[RefCounted]
	assert.True(t, Convert[*node](j).Empty())
}

func TestConvert_Unrelated(t *testing.T) {
	freed := 0
	i := NewRef[RefCounted](newNode(1, &freed))
	defer i.Release()

	assert.Panics(t, func() { Convert[*leaf](i) })
}

func TestMoveConvert(t *testing.T) {
	freed := 0
	r := NewRef(newNode(1, &freed))
	obj := r.Get()

	i := MoveConvert[RefCounted](&r)
	assert.True(t, r.Empty())
	assert.Equal(t, int32(1), obj.Refs())
	assert.True(t, i.Is(obj))

	i.Release()
	assert.Equal(t, 1, freed)
}

func TestMoveConvert_Null(t *testing.T) {
	var r Ref[*node]
	i := MoveConvert[RefCounted](&r)
	assert.True(t, i.Empty())
}

func TestSame(t *testing.T) {
	freedN, freedL := 0, 0
	n := NewRef(newNode(1, &freedN))
	l := NewRef(newLeaf(&freedL))
	i := Convert[RefCounted](n)

	assert.True(t, Same(n, i))
	assert.True(t, Same(i, n))
	assert.False(t, Same(n, l))
	assert.False(t, Same(i, l))

	var nullN Ref[*node]
	var nullI Ref[RefCounted]
	assert.True(t, Same(nullN, nullI))
	assert.False(t, Same(n, nullI))
	assert.False(t, Same(nullN, i))

	n.Release()
	i.Release()
	l.Release()
	assert.Equal(t, 1, freedN)
	assert.Equal(t, 1, freedL)
}
