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
	"encoding/binary"
	"math"
	"math/big"

	"github.com/brunotm/melodium/types"
	"github.com/cespare/xxhash"
)

// Encoder is satisfied by a Data implementation that wants control over its
// own wire representation; Value.Encode() delegates to it for the Data
// variant rather than attempting to introspect an opaque value.
type Encoder interface {
	Encode() ([]byte, error)
}

// Encode renders v to its structured, self-delimiting byte encoding:
// primitives use their native little-endian width (I128/U128 as 16-byte
// two's complement), Byte is a single byte, vectors are a uvarint element
// count followed by each element as a uvarint byte length and then its
// encoding, Options are
// a one-byte present/absent tag followed by the inner value when present,
// and Data delegates to its own Encoder.
func (v Value) Encode() ([]byte, error) {
	switch {
	case v.opt:
		if v.opv == nil {
			return []byte{0}, nil
		}
		inner, err := v.opv.Encode()
		if err != nil {
			return nil, err
		}
		return append([]byte{1}, inner...), nil
	case v.vec:
		return v.encodeVec()
	default:
		return v.encodeScalar()
	}
}

func (v Value) encodeScalar() ([]byte, error) {
	switch v.prim {
	case types.Void:
		return []byte{}, nil
	case types.Bool:
		if v.b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case types.Byte:
		return []byte{byte(v.u)}, nil
	case types.Char:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(v.c))
		return buf, nil
	case types.String:
		return []byte(v.s), nil
	case types.I128, types.U128:
		// 16-byte two's complement, little-endian.
		x := new(big.Int).Mod(v.big128, new(big.Int).Lsh(big.NewInt(1), 128))
		buf := x.FillBytes(make([]byte, 16))
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
		return buf, nil
	case types.Data:
		if v.data == nil {
			return nil, nil
		}
		enc, ok := v.data.(Encoder)
		if !ok {
			return nil, wrongVariantErr("data value does not implement Encoder")
		}
		return enc.Encode()
	}
	return encodeNumeric(v.prim, v)
}

func encodeNumeric(prim types.Primitive, v Value) ([]byte, error) {
	switch prim {
	case types.I8:
		return []byte{byte(int8(v.i))}, nil
	case types.I16:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(int16(v.i)))
		return buf, nil
	case types.I32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(int32(v.i)))
		return buf, nil
	case types.I64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v.i))
		return buf, nil
	case types.U8:
		return []byte{byte(v.u)}, nil
	case types.U16:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(v.u))
		return buf, nil
	case types.U32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(v.u))
		return buf, nil
	case types.U64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, v.u)
		return buf, nil
	case types.F32:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v.f64)))
		return buf, nil
	case types.F64:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.f64))
		return buf, nil
	}
	return nil, wrongVariantErr("value: unsupported primitive in encoding")
}

func (v Value) encodeVec() ([]byte, error) {
	n := v.vecLen()
	buf := make([]byte, binary.MaxVarintLen64)
	ln := binary.PutUvarint(buf, uint64(n))
	out := append([]byte(nil), buf[:ln]...)

	for i := 0; i < n; i++ {
		elem, err := v.vecElem(i).Encode()
		if err != nil {
			return nil, err
		}
		elemLen := make([]byte, binary.MaxVarintLen64)
		elemLn := binary.PutUvarint(elemLen, uint64(len(elem)))
		out = append(out, elemLen[:elemLn]...)
		out = append(out, elem...)
	}
	return out, nil
}

func (v Value) vecElem(i int) Value {
	switch v.prim {
	case types.I8:
		return I8(v.vi8[i])
	case types.I16:
		return I16(v.vi16[i])
	case types.I32:
		return I32(v.vi32[i])
	case types.I64:
		return I64(v.vi64[i])
	case types.U8:
		return U8(v.vu8[i])
	case types.Byte:
		return Byte(v.vu8[i])
	case types.U16:
		return U16(v.vu16[i])
	case types.U32:
		return U32(v.vu32[i])
	case types.U64:
		return U64(v.vu64[i])
	case types.F32:
		return F32(v.vf32[i])
	case types.F64:
		return F64(v.vf64[i])
	case types.Bool:
		return Bool(v.vb[i])
	case types.Char:
		return Char(v.vc[i])
	case types.String:
		return String(v.vs[i])
	}
	return Void()
}

type encodingError string

func (e encodingError) Error() string { return string(e) }

func wrongVariantErr(msg string) error { return encodingError(msg) }

// Hash returns a stable digest of v's structured encoding, prefixed by its
// primitive tag and vector/option flags. Panics if Encode fails, which
// only happens for a Data value that does not implement Encoder.
func (v Value) Hash() uint64 {
	enc, err := v.Encode()
	if err != nil {
		panic("value: " + err.Error())
	}
	digest := xxhash.New()
	digest.Write([]byte{byte(v.prim)})
	if v.vec {
		digest.Write([]byte{1})
	} else {
		digest.Write([]byte{0})
	}
	if v.opt {
		digest.Write([]byte{1})
	} else {
		digest.Write([]byte{0})
	}
	digest.Write(enc)
	return digest.Sum64()
}
