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

// I128/U128 have no native Go representation; they are backed by math/big,
// the standard library's arbitrary precision integer — no third-party
// library in the retrieval pack offers a fixed-width 128 bit integer type,
// so this is the one place Value leans on stdlib instead of a pack
// dependency (see DESIGN.md).

// I128 constructs a 128 bit signed scalar value.
func I128(v *big.Int) Value { return Value{prim: types.I128, big128: new(big.Int).Set(v)} }

// U128 constructs a 128 bit unsigned scalar value.
func U128(v *big.Int) Value { return Value{prim: types.U128, big128: new(big.Int).Set(v)} }

// I128Value unwraps a 128 bit signed value.
func (v Value) I128Value() *big.Int {
	v.mustScalar(types.I128, "i128")
	return new(big.Int).Set(v.big128)
}

// U128Value unwraps a 128 bit unsigned value.
func (v Value) U128Value() *big.Int {
	v.mustScalar(types.U128, "u128")
	return new(big.Int).Set(v.big128)
}

func isInteger(p types.Primitive) bool {
	switch p {
	case types.I8, types.I16, types.I32, types.I64, types.I128,
		types.U8, types.U16, types.U32, types.U64, types.U128, types.Byte:
		return true
	}
	return false
}

func isSigned(p types.Primitive) bool {
	switch p {
	case types.I8, types.I16, types.I32, types.I64, types.I128, types.F32, types.F64:
		return true
	}
	return false
}

func isFloat(p types.Primitive) bool {
	return p == types.F32 || p == types.F64
}

func bitWidth(p types.Primitive) int {
	switch p {
	case types.I8, types.U8, types.Byte:
		return 8
	case types.I16, types.U16:
		return 16
	case types.I32, types.U32, types.F32:
		return 32
	case types.I64, types.U64, types.F64:
		return 64
	case types.I128, types.U128:
		return 128
	}
	return 0
}

// asBig returns the scalar numeric payload as a big.Float, regardless of
// which of the internal fields actually carries it.
func (v Value) asBig() *big.Float {
	switch v.prim {
	case types.I128, types.U128:
		return new(big.Float).SetInt(v.big128)
	case types.F32, types.F64:
		return big.NewFloat(v.f64)
	}
	if isSigned(v.prim) {
		return new(big.Float).SetInt64(v.i)
	}
	return new(big.Float).SetUint64(v.u)
}

func bigRange(p types.Primitive) (lo, hi *big.Float) {
	switch p {
	case types.I8:
		return big.NewFloat(math.MinInt8), big.NewFloat(math.MaxInt8)
	case types.I16:
		return big.NewFloat(math.MinInt16), big.NewFloat(math.MaxInt16)
	case types.I32:
		return big.NewFloat(math.MinInt32), big.NewFloat(math.MaxInt32)
	case types.I64:
		return big.NewFloat(math.MinInt64), big.NewFloat(math.MaxInt64)
	case types.U8, types.Byte:
		return big.NewFloat(0), big.NewFloat(math.MaxUint8)
	case types.U16:
		return big.NewFloat(0), big.NewFloat(math.MaxUint16)
	case types.U32:
		return big.NewFloat(0), big.NewFloat(math.MaxUint32)
	case types.U64:
		return big.NewFloat(0), new(big.Float).SetUint64(math.MaxUint64)
	case types.F32:
		return big.NewFloat(-math.MaxFloat32), big.NewFloat(math.MaxFloat32)
	case types.F64:
		return big.NewFloat(-math.MaxFloat64), big.NewFloat(math.MaxFloat64)
	case types.I128:
		lo := new(big.Int).Lsh(big.NewInt(-1), 127)
		hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
		return new(big.Float).SetInt(lo), new(big.Float).SetInt(hi)
	case types.U128:
		hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
		return big.NewFloat(0), new(big.Float).SetInt(hi)
	}
	return nil, nil
}

func fromBig(prim types.Primitive, b *big.Float) (v Value) {
	switch prim {
	case types.I128, types.U128:
		i, _ := b.Int(nil)
		v.big128 = i
	case types.F32, types.F64:
		f, _ := b.Float64()
		v.f64 = f
	default:
		if isSigned(prim) {
			i, _ := b.Int64()
			v.i = i
		} else {
			u, _ := b.Uint64()
			v.u = u
		}
	}
	v.prim = prim
	return v
}

// inRange reports whether b lies within the representable range of prim.
func inRange(prim types.Primitive, b *big.Float) bool {
	lo, hi := bigRange(prim)
	if lo == nil {
		return false
	}
	return b.Cmp(lo) >= 0 && b.Cmp(hi) <= 0
}

// ConvertInfallible converts a scalar numeric Value to a provably wider
// type (same signedness, width(to) >= width(from), or int->float of equal
// or greater width). Panics if the target cannot represent every value of
// the source type — the static type checker is responsible for only ever
// requesting conversions that hold.
func (v Value) ConvertInfallible(to types.Primitive) Value {
	if !isInteger(v.prim) && !isFloat(v.prim) {
		wrongVariant("numeric")
	}

	widening := (isInteger(v.prim) && isInteger(to) &&
		((isSigned(to) == isSigned(v.prim) && bitWidth(to) >= bitWidth(v.prim)) ||
			(isSigned(to) && !isSigned(v.prim) && bitWidth(to) > bitWidth(v.prim)))) ||
		(isFloat(to) && bitWidth(to) >= bitWidth(v.prim))

	if !widening {
		panic("value: not an infallible (widening) conversion")
	}

	return fromBig(to, v.asBig())
}

// ConvertTry converts a scalar numeric Value to the given type, returning
// ok=false when the value overflows the target range or (for float targets)
// is not finite.
func (v Value) ConvertTry(to types.Primitive) (result Value, ok bool) {
	if !isInteger(v.prim) && !isFloat(v.prim) {
		wrongVariant("numeric")
	}
	if isFloat(v.prim) && math.IsNaN(v.f64) {
		return Value{}, false
	}

	b := v.asBig()
	if !inRange(to, b) {
		return Value{}, false
	}

	return fromBig(to, b), true
}

// ConvertSaturating converts a scalar numeric Value to the given type,
// clamping to the target's representable range instead of failing.
func (v Value) ConvertSaturating(to types.Primitive) Value {
	if !isInteger(v.prim) && !isFloat(v.prim) {
		wrongVariant("numeric")
	}

	b := v.asBig()
	lo, hi := bigRange(to)
	if lo == nil {
		panic("value: not a numeric target type")
	}
	if b.Cmp(lo) < 0 {
		b = lo
	} else if b.Cmp(hi) > 0 {
		b = hi
	}
	return fromBig(to, b)
}

// ---- checked / saturating / wrapping arithmetic ----

type arithOp uint8

const (
	opAdd arithOp = iota
	opSub
	opMul
	opDiv
	opRem
)

func (v Value) sameNumericKind(other Value) {
	if v.prim != other.prim || v.vec || v.opt || other.vec || other.opt {
		panic("value: arithmetic requires matching scalar numeric variants")
	}
	if !isInteger(v.prim) && !isFloat(v.prim) {
		wrongVariant("numeric")
	}
}

func (v Value) arith(op arithOp, other Value) (result *big.Float, exact bool) {
	v.sameNumericKind(other)

	a, b := v.asBig(), other.asBig()
	r := new(big.Float).SetPrec(256)

	switch op {
	case opAdd:
		r.Add(a, b)
	case opSub:
		r.Sub(a, b)
	case opMul:
		r.Mul(a, b)
	case opDiv:
		if b.Sign() == 0 {
			return nil, false
		}
		r.Quo(a, b)
		if isInteger(v.prim) {
			i, _ := r.Int(nil)
			r.SetInt(i)
		}
	case opRem:
		if !isInteger(v.prim) {
			panic("value: Rem only defined for integer variants")
		}
		if b.Sign() == 0 {
			return nil, false
		}
		ai, _ := a.Int(nil)
		bi, _ := b.Int(nil)
		r.SetInt(new(big.Int).Rem(ai, bi))
	}

	return r, true
}

// CheckedAdd, CheckedSub, CheckedMul, CheckedDiv, CheckedRem return ok=false
// on overflow, division by zero, or (for Div/Rem) a zero divisor.
func (v Value) CheckedAdd(other Value) (Value, bool) { return v.checked(opAdd, other) }
func (v Value) CheckedSub(other Value) (Value, bool) { return v.checked(opSub, other) }
func (v Value) CheckedMul(other Value) (Value, bool) { return v.checked(opMul, other) }
func (v Value) CheckedDiv(other Value) (Value, bool) { return v.checked(opDiv, other) }
func (v Value) CheckedRem(other Value) (Value, bool) { return v.checked(opRem, other) }

func (v Value) checked(op arithOp, other Value) (Value, bool) {
	r, ok := v.arith(op, other)
	if !ok {
		return Value{}, false
	}
	if !inRange(v.prim, r) {
		return Value{}, false
	}
	return fromBig(v.prim, r), true
}

// SaturatingAdd, SaturatingSub, SaturatingMul clamp to the variant's range
// instead of overflowing.
func (v Value) SaturatingAdd(other Value) Value { return v.saturating(opAdd, other) }
func (v Value) SaturatingSub(other Value) Value { return v.saturating(opSub, other) }
func (v Value) SaturatingMul(other Value) Value { return v.saturating(opMul, other) }

func (v Value) saturating(op arithOp, other Value) Value {
	r, ok := v.arith(op, other)
	if !ok {
		panic("value: division by zero")
	}
	lo, hi := bigRange(v.prim)
	if r.Cmp(lo) < 0 {
		r = lo
	} else if r.Cmp(hi) > 0 {
		r = hi
	}
	return fromBig(v.prim, r)
}

// WrappingAdd, WrappingSub, WrappingMul wrap around the variant's range on
// overflow (two's complement semantics for signed integers), matching the
// design language's wrapping arithmetic family. Defined only for integer
// variants narrower than 128 bits (I128/U128 arithmetic is arbitrary
// precision under the hood and has no natural wrap point here).
func (v Value) WrappingAdd(other Value) Value { return v.wrapping(opAdd, other) }
func (v Value) WrappingSub(other Value) Value { return v.wrapping(opSub, other) }
func (v Value) WrappingMul(other Value) Value { return v.wrapping(opMul, other) }

func (v Value) wrapping(op arithOp, other Value) Value {
	v.sameNumericKind(other)
	if !isInteger(v.prim) || v.prim == types.I128 || v.prim == types.U128 {
		panic("value: wrapping arithmetic requires a fixed-width integer variant")
	}

	width := uint(bitWidth(v.prim))
	mod := new(big.Int).Lsh(big.NewInt(1), width)

	av, bv := big.NewInt(0), big.NewInt(0)
	if isSigned(v.prim) {
		av.SetInt64(v.i)
		bv.SetInt64(other.i)
	} else {
		av.SetUint64(v.u)
		bv.SetUint64(other.u)
	}

	r := new(big.Int)
	switch op {
	case opAdd:
		r.Add(av, bv)
	case opSub:
		r.Sub(av, bv)
	case opMul:
		r.Mul(av, bv)
	}

	r.Mod(r, mod)
	if r.Sign() < 0 {
		r.Add(r, mod)
	}

	if isSigned(v.prim) {
		half := new(big.Int).Lsh(big.NewInt(1), width-1)
		if r.Cmp(half) >= 0 {
			r.Sub(r, mod)
		}
		return fromBig(v.prim, new(big.Float).SetInt(r))
	}

	return fromBig(v.prim, new(big.Float).SetInt(r))
}

// EuclidDiv and EuclidRem implement Euclidean division: the remainder is
// always non-negative (0 <= r < |divisor|), unlike the truncating Rem above.
func (v Value) EuclidDiv(other Value) Value {
	q, _ := v.euclid(other)
	return q
}

func (v Value) EuclidRem(other Value) Value {
	_, r := v.euclid(other)
	return r
}

func (v Value) euclid(other Value) (q, r Value) {
	v.sameNumericKind(other)
	if !isInteger(v.prim) {
		panic("value: Euclidean division only defined for integer variants")
	}

	af, _ := v.asBig().Int(nil)
	bf, _ := other.asBig().Int(nil)
	if bf.Sign() == 0 {
		panic("value: division by zero")
	}

	quo, rem := new(big.Int), new(big.Int)
	quo.QuoRem(af, bf, rem)
	if rem.Sign() < 0 {
		if bf.Sign() > 0 {
			quo.Sub(quo, big.NewInt(1))
			rem.Add(rem, bf)
		} else {
			quo.Add(quo, big.NewInt(1))
			rem.Sub(rem, bf)
		}
	}

	return fromBig(v.prim, new(big.Float).SetInt(quo)), fromBig(v.prim, new(big.Float).SetInt(rem))
}

// Pow raises an integer or float scalar to a non-negative integer exponent,
// checked the same way CheckedMul is (ok=false on overflow).
func (v Value) Pow(exp uint32) (Value, bool) {
	if !isInteger(v.prim) && !isFloat(v.prim) {
		wrongVariant("numeric")
	}

	if isFloat(v.prim) {
		r := math.Pow(v.f64, float64(exp))
		if math.IsNaN(r) || !inRange(v.prim, new(big.Float).SetFloat64(r)) {
			return Value{}, false
		}
		return fromBig(v.prim, big.NewFloat(r)), true
	}

	base, _ := v.asBig().Int(nil)
	acc := new(big.Int).Exp(base, new(big.Int).SetUint64(uint64(exp)), nil)

	bf := new(big.Float).SetInt(acc)
	if !inRange(v.prim, bf) {
		return Value{}, false
	}
	return fromBig(v.prim, bf), true
}
