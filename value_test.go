package melodium

/*
   Copyright 2018 Bruno Moura <brunotm@gmail.com>

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brunotm/melodium/types"
)

func TestValueTypedUnwrapPanicsOnMismatch(t *testing.T) {
	v := I32(42)
	assert.Equal(t, int32(42), v.I32Value())
	assert.Panics(t, func() { v.StringValue() })
}

func TestValueEqualPanicsOnMixedTypes(t *testing.T) {
	assert.Panics(t, func() { I32(1).Equal(I64(1)) })
}

func TestValueEqualTyped(t *testing.T) {
	assert.True(t, I32(7).Equal(I32(7)))
	assert.False(t, I32(7).Equal(I32(8)))
	assert.True(t, String("a").Equal(String("a")))
}

func TestValueWrappingAddU8(t *testing.T) {
	// S1: U8 wrapping add of 3, matching [0,1,2,255] -> [3,4,5,2].
	inputs := []uint8{0, 1, 2, 255}
	want := []uint8{3, 4, 5, 2}
	for i, in := range inputs {
		got := U8(in).WrappingAdd(U8(3))
		assert.Equal(t, want[i], got.U8Value())
	}
}

func TestValueCheckedAddOverflow(t *testing.T) {
	_, ok := U8(255).CheckedAdd(U8(1))
	assert.False(t, ok)

	v, ok := U8(254).CheckedAdd(U8(1))
	assert.True(t, ok)
	assert.Equal(t, uint8(255), v.U8Value())
}

func TestValueSaturatingAdd(t *testing.T) {
	got := U8(255).SaturatingAdd(U8(10))
	assert.Equal(t, uint8(255), got.U8Value())
}

func TestValueEuclidDivRem(t *testing.T) {
	q := I32(-7).EuclidDiv(I32(3))
	r := I32(-7).EuclidRem(I32(3))
	assert.Equal(t, int32(-3), q.I32Value())
	assert.Equal(t, int32(2), r.I32Value())
}

func TestValueI128RoundTrip(t *testing.T) {
	big128 := new(big.Int).Lsh(big.NewInt(1), 100)
	v := I128(big128)
	assert.Equal(t, 0, big128.Cmp(v.I128Value()))
}

func TestValueVecConsistentTypes(t *testing.T) {
	assert.Panics(t, func() { Vec(I8(1), I16(2)) })
	v := VecI32([]int32{1, 2, 3})
	assert.Equal(t, []int32{1, 2, 3}, v.VecI32Value())
}

func TestValueOption(t *testing.T) {
	some := Some(I32(5))
	assert.True(t, some.IsSome())
	assert.Equal(t, int32(5), some.OptionValue().I32Value())

	none := None(types.I32)
	assert.False(t, none.IsSome())
	assert.Panics(t, func() { none.OptionValue() })
}

func TestValueStringDisplay(t *testing.T) {
	assert.Equal(t, `"hello"`, String("hello").String())
	assert.Equal(t, "'a'", Char('a').String())
	assert.Equal(t, "[1, 2, 3]", VecI32([]int32{1, 2, 3}).String())
	assert.Equal(t, "_", None(types.I32).String())
}

func TestValueHashStableAndDistinct(t *testing.T) {
	a := I32(7)
	b := I32(7)
	c := I32(8)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestValueEncodeByteIsOneByte(t *testing.T) {
	enc, err := Byte(0xAB).Encode()
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xAB}, enc)
}
