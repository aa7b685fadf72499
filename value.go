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
	"fmt"
	"math/big"

	"github.com/brunotm/melodium/types"
)

// Value is the polymorphic runtime value flowing through channels and
// resolved by parameter expressions. A Value variant is immutable once
// constructed; unwrap methods panic when called against the wrong variant,
// which the design-layer type checker is responsible for never allowing at
// runtime.
type Value struct {
	prim types.Primitive
	vec  bool
	opt  bool

	i    int64
	u    uint64
	f64  float64
	b    bool
	c    rune
	s    string
	vi8  []int8
	vi16 []int16
	vi32 []int32
	vi64 []int64
	vu8  []uint8
	vu16 []uint16
	vu32 []uint32
	vu64 []uint64
	vf32 []float32
	vf64 []float64
	vb   []bool
	vc   []rune
	vs   []string
	opv  *Value
	data Data

	// big128 backs I128/U128 scalars; see value_numeric.go.
	big128 *big.Int
}

// Data is the open escape hatch for user-defined opaque values. A concrete
// Data implementation must report the descriptor name it is routed against.
type Data interface {
	// DataName is the name of the Data descriptor this value satisfies.
	DataName() (name string)
}

// DataType describes the runtime shape of a Value: a structural tag
// (Scalar/Vector/Option) combined with a primitive (or Data descriptor name,
// or generic name+traits), plus a Flow tag (Block/Stream) for port binding.
type DataType struct {
	Structure types.Structure
	Primitive types.Primitive
	// DataName is set only when Primitive == types.Data.
	DataName string
	// GenericName/Traits are set only when Primitive == types.Generic.
	GenericName string
	Traits      []string
	// Inner is set only when Structure == types.Option, describing the
	// wrapped type.
	Inner *DataType
	Flow  types.Flow
}

// Matches reports whether a concrete Value satisfies this described type
// exactly; Mélodium never implicitly widens.
func (dt DataType) Matches(v Value) (ok bool) {
	switch dt.Structure {
	case types.Scalar:
		return !v.vec && !v.opt && v.prim == dt.Primitive &&
			(dt.Primitive != types.Data || v.data != nil && v.data.DataName() == dt.DataName)
	case types.Vector:
		return v.vec && v.prim == dt.Primitive
	case types.Option:
		if !v.opt {
			return false
		}
		if v.opv == nil {
			return true
		}
		if dt.Inner == nil {
			return false
		}
		return dt.Inner.Matches(*v.opv)
	}
	return false
}

// DataType reports the runtime DataType of this Value (Flow is always
// types.Block since a Value itself carries no flow information).
func (v Value) DataType() (dt DataType) {
	dt.Primitive = v.prim
	switch {
	case v.vec:
		dt.Structure = types.Vector
	case v.opt:
		dt.Structure = types.Option
		if v.opv != nil {
			inner := v.opv.DataType()
			dt.Inner = &inner
		}
	default:
		dt.Structure = types.Scalar
	}
	if v.prim == types.Data && v.data != nil {
		dt.DataName = v.data.DataName()
	}
	return dt
}

func wrongVariant(want string) {
	panic(fmt.Sprintf("value: %s value expected", want))
}

// ---- constructors ----

// Void constructs the void value.
func Void() Value { return Value{prim: types.Void} }

func I8(v int8) Value   { return Value{prim: types.I8, i: int64(v)} }
func I16(v int16) Value { return Value{prim: types.I16, i: int64(v)} }
func I32(v int32) Value { return Value{prim: types.I32, i: int64(v)} }
func I64(v int64) Value { return Value{prim: types.I64, i: v} }

func U8(v uint8) Value   { return Value{prim: types.U8, u: uint64(v)} }
func U16(v uint16) Value { return Value{prim: types.U16, u: uint64(v)} }
func U32(v uint32) Value { return Value{prim: types.U32, u: uint64(v)} }
func U64(v uint64) Value { return Value{prim: types.U64, u: v} }

func F32(v float32) Value { return Value{prim: types.F32, f64: float64(v)} }
func F64(v float64) Value { return Value{prim: types.F64, f64: v} }

func Bool(v bool) Value     { return Value{prim: types.Bool, b: v} }
func Byte(v byte) Value     { return Value{prim: types.Byte, u: uint64(v)} }
func Char(v rune) Value     { return Value{prim: types.Char, c: v} }
func String(v string) Value { return Value{prim: types.String, s: v} }

// NewData wraps a Data trait-object implementation as a Value.
func NewData(d Data) Value { return Value{prim: types.Data, data: d} }

// VecI8 and siblings construct vector values over a primitive element type.
func VecI8(v []int8) Value   { return Value{prim: types.I8, vec: true, vi8: v} }
func VecI16(v []int16) Value { return Value{prim: types.I16, vec: true, vi16: v} }
func VecI32(v []int32) Value { return Value{prim: types.I32, vec: true, vi32: v} }
func VecI64(v []int64) Value { return Value{prim: types.I64, vec: true, vi64: v} }

func VecU8(v []uint8) Value   { return Value{prim: types.U8, vec: true, vu8: v} }
func VecU16(v []uint16) Value { return Value{prim: types.U16, vec: true, vu16: v} }
func VecU32(v []uint32) Value { return Value{prim: types.U32, vec: true, vu32: v} }
func VecU64(v []uint64) Value { return Value{prim: types.U64, vec: true, vu64: v} }

func VecF32(v []float32) Value { return Value{prim: types.F32, vec: true, vf32: v} }
func VecF64(v []float64) Value { return Value{prim: types.F64, vec: true, vf64: v} }

func VecBool(v []bool) Value     { return Value{prim: types.Bool, vec: true, vb: v} }
func VecByte(v []byte) Value     { return Value{prim: types.Byte, vec: true, vu8: v} }
func VecChar(v []rune) Value     { return Value{prim: types.Char, vec: true, vc: v} }
func VecString(v []string) Value { return Value{prim: types.String, vec: true, vs: v} }

// Vec constructs a vector value from a list of already-typed elements that
// must all share the same DataType (panics otherwise, same failure contract
// as the rest of Value).
func Vec(elems ...Value) (v Value) {
	if len(elems) == 0 {
		return Value{vec: true}
	}
	prim := elems[0].prim
	for _, e := range elems {
		if e.prim != prim || e.vec || e.opt {
			panic("value: inconsistent vector element types")
		}
	}
	v.vec = true
	v.prim = prim
	return v
}

// Some wraps a value as a present Option.
func Some(inner Value) (v Value) {
	v.opt = true
	v.prim = inner.prim
	cp := inner
	v.opv = &cp
	return v
}

// None constructs an absent Option of the given primitive.
func None(prim types.Primitive) (v Value) {
	v.opt = true
	v.prim = prim
	return v
}

// ---- typed unwraps ----

func (v Value) mustScalar(prim types.Primitive, name string) {
	if v.vec || v.opt || v.prim != prim {
		wrongVariant(name)
	}
}

func (v Value) VoidValue() {
	v.mustScalar(types.Void, "void")
}

func (v Value) I8Value() int8 {
	v.mustScalar(types.I8, "i8")
	return int8(v.i)
}
func (v Value) I16Value() int16 {
	v.mustScalar(types.I16, "i16")
	return int16(v.i)
}
func (v Value) I32Value() int32 {
	v.mustScalar(types.I32, "i32")
	return int32(v.i)
}
func (v Value) I64Value() int64 {
	v.mustScalar(types.I64, "i64")
	return v.i
}

func (v Value) U8Value() uint8 {
	v.mustScalar(types.U8, "u8")
	return uint8(v.u)
}
func (v Value) U16Value() uint16 {
	v.mustScalar(types.U16, "u16")
	return uint16(v.u)
}
func (v Value) U32Value() uint32 {
	v.mustScalar(types.U32, "u32")
	return uint32(v.u)
}
func (v Value) U64Value() uint64 {
	v.mustScalar(types.U64, "u64")
	return v.u
}

func (v Value) F32Value() float32 {
	v.mustScalar(types.F32, "f32")
	return float32(v.f64)
}
func (v Value) F64Value() float64 {
	v.mustScalar(types.F64, "f64")
	return v.f64
}

func (v Value) BoolValue() bool {
	v.mustScalar(types.Bool, "bool")
	return v.b
}
func (v Value) ByteValue() byte {
	v.mustScalar(types.Byte, "byte")
	return byte(v.u)
}
func (v Value) CharValue() rune {
	v.mustScalar(types.Char, "char")
	return v.c
}
func (v Value) StringValue() string {
	v.mustScalar(types.String, "string")
	return v.s
}

// DataValue returns the wrapped Data trait-object.
func (v Value) DataValue() Data {
	if v.vec || v.opt || v.prim != types.Data {
		wrongVariant("data")
	}
	return v.data
}

func (v Value) mustVec(prim types.Primitive, name string) {
	if !v.vec || v.prim != prim {
		wrongVariant("vec<" + name + ">")
	}
}

func (v Value) VecI8Value() []int8   { v.mustVec(types.I8, "i8"); return v.vi8 }
func (v Value) VecI16Value() []int16 { v.mustVec(types.I16, "i16"); return v.vi16 }
func (v Value) VecI32Value() []int32 { v.mustVec(types.I32, "i32"); return v.vi32 }
func (v Value) VecI64Value() []int64 { v.mustVec(types.I64, "i64"); return v.vi64 }

func (v Value) VecU8Value() []uint8   { v.mustVec(types.U8, "u8"); return v.vu8 }
func (v Value) VecU16Value() []uint16 { v.mustVec(types.U16, "u16"); return v.vu16 }
func (v Value) VecU32Value() []uint32 { v.mustVec(types.U32, "u32"); return v.vu32 }
func (v Value) VecU64Value() []uint64 { v.mustVec(types.U64, "u64"); return v.vu64 }

func (v Value) VecF32Value() []float32 { v.mustVec(types.F32, "f32"); return v.vf32 }
func (v Value) VecF64Value() []float64 { v.mustVec(types.F64, "f64"); return v.vf64 }

func (v Value) VecBoolValue() []bool     { v.mustVec(types.Bool, "bool"); return v.vb }
func (v Value) VecByteValue() []byte     { v.mustVec(types.Byte, "byte"); return v.vu8 }
func (v Value) VecCharValue() []rune     { v.mustVec(types.Char, "char"); return v.vc }
func (v Value) VecStringValue() []string { v.mustVec(types.String, "string"); return v.vs }

// IsSome reports whether an Option value is present.
func (v Value) IsSome() bool {
	if !v.opt {
		wrongVariant("option")
	}
	return v.opv != nil
}

// OptionValue returns the wrapped value of a present Option, panicking if
// the Option is None.
func (v Value) OptionValue() Value {
	if !v.opt {
		wrongVariant("option")
	}
	if v.opv == nil {
		panic("value: option value expected present, found None")
	}
	return *v.opv
}
