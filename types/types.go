package types

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

// Kind of descriptor a design graph node carries.
type Kind uint8

func (k Kind) String() (name string) {
	switch k {
	case Model:
		return "model"
	case Treatment:
		return "treatment"
	case Function:
		return "function"
	case Context:
		return "context"
	}
	return "unknown"
}

const (
	// Model descriptor kind
	Model = Kind(0)
	// Treatment descriptor kind
	Treatment = Kind(1)
	// Function descriptor kind
	Function = Kind(2)
	// Context descriptor kind
	Context = Kind(3)
)

// Variability of a parameter: Const values resolve purely from the genesis
// environment, Var values may additionally depend on per-track context.
type Variability uint8

func (v Variability) String() (name string) {
	switch v {
	case Const:
		return "const"
	case Var:
		return "var"
	}
	return "unknown"
}

const (
	// Const parameters are fixed at genesis time.
	Const = Variability(0)
	// Var parameters may vary per track.
	Var = Variability(1)
)

// Flow of a port: a Block carries a single value per firing, a Stream carries
// a sequence of values until its feeding channel closes.
type Flow uint8

func (f Flow) String() (name string) {
	switch f {
	case Block:
		return "block"
	case Stream:
		return "stream"
	}
	return "unknown"
}

const (
	// Block ports carry a single value per firing.
	Block = Flow(0)
	// Stream ports carry a sequence of values until close.
	Stream = Flow(1)
)

// Structural tag of a described type.
type Structure uint8

func (s Structure) String() (name string) {
	switch s {
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	case Option:
		return "option"
	}
	return "unknown"
}

const (
	// Scalar is a single value.
	Scalar = Structure(0)
	// Vector is a sequence of values of the same described type.
	Vector = Structure(1)
	// Option is an optional value of the same described type.
	Option = Structure(2)
)

// Primitive is the set of primitive payload types a Value variant can carry.
// Data and Generic described types do not use this tag.
type Primitive uint8

func (p Primitive) String() (name string) {
	switch p {
	case Void:
		return "void"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case Byte:
		return "byte"
	case Char:
		return "char"
	case String:
		return "string"
	case Data:
		return "data"
	case Generic:
		return "generic"
	}
	return "unknown"
}

const (
	Void = Primitive(iota)
	I8
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	Bool
	Byte
	Char
	String
	// Data is the open escape hatch: an opaque trait-object value tagged by
	// a data descriptor name.
	Data
	// Generic is an unresolved type bound by a trait-set, only valid inside
	// a treatment/function descriptor prior to instantiation.
	Generic
)
