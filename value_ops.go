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
	"math"
	"math/big"

	"github.com/brunotm/melodium/types"
)

// ---- bitwise ops (Bool, Byte) ----

func (v Value) mustBitwise(other Value) {
	if v.prim != other.prim || v.vec || v.opt || (v.prim != types.Bool && v.prim != types.Byte) {
		wrongVariant("bool or byte")
	}
}

// And, Or, Xor perform bitwise logic on Bool or Byte values.
func (v Value) And(other Value) Value {
	v.mustBitwise(other)
	if v.prim == types.Bool {
		return Bool(v.b && other.b)
	}
	return Byte(byte(v.u) & byte(other.u))
}

func (v Value) Or(other Value) Value {
	v.mustBitwise(other)
	if v.prim == types.Bool {
		return Bool(v.b || other.b)
	}
	return Byte(byte(v.u) | byte(other.u))
}

func (v Value) Xor(other Value) Value {
	v.mustBitwise(other)
	if v.prim == types.Bool {
		return Bool(v.b != other.b)
	}
	return Byte(byte(v.u) ^ byte(other.u))
}

// Not inverts a Bool or flips every bit of a Byte.
func (v Value) Not() Value {
	switch v.prim {
	case types.Bool:
		return Bool(!v.b)
	case types.Byte:
		return Byte(^byte(v.u))
	}
	wrongVariant("bool or byte")
	return Value{}
}

// ---- transcendentals (F32/F64) ----

func (v Value) mustFloat() float64 {
	if v.vec || v.opt || (v.prim != types.F32 && v.prim != types.F64) {
		wrongVariant("f32 or f64")
	}
	return v.f64
}

func (v Value) transcendental(fn func(float64) float64) Value {
	r := fn(v.mustFloat())
	if v.prim == types.F32 {
		return F32(float32(r))
	}
	return F64(r)
}

func (v Value) Sqrt() Value  { return v.transcendental(math.Sqrt) }
func (v Value) Sin() Value   { return v.transcendental(math.Sin) }
func (v Value) Cos() Value   { return v.transcendental(math.Cos) }
func (v Value) Tan() Value   { return v.transcendental(math.Tan) }
func (v Value) Exp() Value   { return v.transcendental(math.Exp) }
func (v Value) Ln() Value    { return v.transcendental(math.Log) }
func (v Value) Log10() Value { return v.transcendental(math.Log10) }

// ---- signed abs/sign/neg ----

// Abs returns the absolute value of a signed integer or float scalar.
func (v Value) Abs() Value {
	if !isSigned(v.prim) || v.vec || v.opt {
		wrongVariant("signed numeric")
	}
	if isFloat(v.prim) {
		return v.transcendental(math.Abs)
	}
	return fromBig(v.prim, new(big.Float).Abs(v.asBig()))
}

// Sign returns -1, 0 or 1 for a signed integer or float scalar.
func (v Value) Sign() Value {
	if !isSigned(v.prim) || v.vec || v.opt {
		wrongVariant("signed numeric")
	}
	return fromBig(v.prim, big.NewFloat(float64(v.asBig().Sign())))
}

// Neg negates a signed integer or float scalar.
func (v Value) Neg() Value {
	if !isSigned(v.prim) || v.vec || v.opt {
		wrongVariant("signed numeric")
	}
	if isFloat(v.prim) {
		return v.transcendental(func(f float64) float64 { return -f })
	}
	return fromBig(v.prim, new(big.Float).Neg(v.asBig()))
}

// ---- equality / ordering ----

// Equal performs typed equality: comparing two different DataTypes panics,
// mirroring the design language's typed equality (the type checker in the
// design layer is responsible for never allowing mixed-type comparisons).
func (v Value) Equal(other Value) bool {
	if v.prim != other.prim || v.vec != other.vec || v.opt != other.opt {
		panic("value: mixed-type equality comparison")
	}

	switch {
	case v.opt:
		if (v.opv == nil) != (other.opv == nil) {
			return false
		}
		if v.opv == nil {
			return true
		}
		return v.opv.Equal(*other.opv)
	case v.vec:
		return v.equalVec(other)
	default:
		return v.equalScalar(other)
	}
}

func (v Value) equalScalar(other Value) bool {
	switch v.prim {
	case types.Void:
		return true
	case types.Bool:
		return v.b == other.b
	case types.Byte:
		return v.u == other.u
	case types.Char:
		return v.c == other.c
	case types.String:
		return v.s == other.s
	case types.F32, types.F64:
		return v.f64 == other.f64
	case types.I128, types.U128:
		return v.big128.Cmp(other.big128) == 0
	case types.Data:
		return v.data == other.data
	}
	if isSigned(v.prim) {
		return v.i == other.i
	}
	return v.u == other.u
}

func (v Value) equalVec(other Value) bool {
	switch v.prim {
	case types.I8:
		return i8sEqual(v.vi8, other.vi8)
	case types.I16:
		return i16sEqual(v.vi16, other.vi16)
	case types.I32:
		return i32sEqual(v.vi32, other.vi32)
	case types.I64:
		return i64sEqual(v.vi64, other.vi64)
	case types.U8, types.Byte:
		return u8sEqual(v.vu8, other.vu8)
	case types.U16:
		return u16sEqual(v.vu16, other.vu16)
	case types.U32:
		return u32sEqual(v.vu32, other.vu32)
	case types.U64:
		return u64sEqual(v.vu64, other.vu64)
	case types.F32:
		return f32sEqual(v.vf32, other.vf32)
	case types.F64:
		return f64sEqual(v.vf64, other.vf64)
	case types.Bool:
		return boolsEqual(v.vb, other.vb)
	case types.Char:
		return charsEqual(v.vc, other.vc)
	case types.String:
		return stringsEqual(v.vs, other.vs)
	}
	return len(v.vi8) == 0 && len(other.vi8) == 0
}

// Less orders two scalar values of the same DataType; panics on mixed
// types or on variants with no natural order (Void, Bool, Data, vectors,
// options).
func (v Value) Less(other Value) bool {
	if v.prim != other.prim || v.vec || other.vec || v.opt || other.opt {
		panic("value: mixed-type or unordered comparison")
	}
	switch v.prim {
	case types.String:
		return v.s < other.s
	case types.Char:
		return v.c < other.c
	case types.F32, types.F64:
		return v.f64 < other.f64
	case types.I128, types.U128:
		return v.big128.Cmp(other.big128) < 0
	case types.Bool, types.Void, types.Data:
		panic("value: no natural order for this variant")
	}
	if isSigned(v.prim) {
		return v.i < other.i
	}
	return v.u < other.u
}

// Max returns whichever of v, other is greater per Less.
func (v Value) Max(other Value) Value {
	if v.Less(other) {
		return other
	}
	return v
}

// Min returns whichever of v, other is lesser per Less.
func (v Value) Min(other Value) Value {
	if other.Less(v) {
		return other
	}
	return v
}

// Clamp restricts v to the [lo, hi] range.
func (v Value) Clamp(lo, hi Value) Value {
	if v.Less(lo) {
		return lo
	}
	if hi.Less(v) {
		return hi
	}
	return v
}

func i8sEqual(a, b []int8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func i16sEqual(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func i32sEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func i64sEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func u8sEqual(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func u16sEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func u32sEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func u64sEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func f32sEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func f64sEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func boolsEqual(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func charsEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
