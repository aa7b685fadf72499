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
	"strconv"
	"strings"
	"unicode"

	"github.com/brunotm/melodium/types"
)

// String renders a Value following the design-language literal syntax:
// strings quoted with "..." when printable or ${...} when they contain
// control characters, chars in single quotes, vectors as [a, b, c],
// absent Options as _, Data as /* name */.
func (v Value) String() (s string) {
	switch {
	case v.opt:
		if v.opv == nil {
			return "_"
		}
		return v.opv.String()
	case v.vec:
		return v.vecString()
	default:
		return v.scalarString()
	}
}

func (v Value) scalarString() string {
	switch v.prim {
	case types.Void:
		return "()"
	case types.Bool:
		return strconv.FormatBool(v.b)
	case types.Byte:
		return strconv.FormatUint(v.u, 10)
	case types.Char:
		return "'" + escapeChar(v.c) + "'"
	case types.String:
		return quoteString(v.s)
	case types.F32:
		return strconv.FormatFloat(v.f64, 'g', -1, 32)
	case types.F64:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case types.I128, types.U128:
		return v.big128.String()
	case types.Data:
		name := "?"
		if v.data != nil {
			name = v.data.DataName()
		}
		return fmt.Sprintf("/* %s */", name)
	}
	if isSigned(v.prim) {
		return strconv.FormatInt(v.i, 10)
	}
	return strconv.FormatUint(v.u, 10)
}

func (v Value) vecString() string {
	n := v.vecLen()
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, v.vecElemString(i))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v Value) vecLen() int {
	switch v.prim {
	case types.I8:
		return len(v.vi8)
	case types.I16:
		return len(v.vi16)
	case types.I32:
		return len(v.vi32)
	case types.I64:
		return len(v.vi64)
	case types.U8, types.Byte:
		return len(v.vu8)
	case types.U16:
		return len(v.vu16)
	case types.U32:
		return len(v.vu32)
	case types.U64:
		return len(v.vu64)
	case types.F32:
		return len(v.vf32)
	case types.F64:
		return len(v.vf64)
	case types.Bool:
		return len(v.vb)
	case types.Char:
		return len(v.vc)
	case types.String:
		return len(v.vs)
	}
	return 0
}

func (v Value) vecElemString(i int) string {
	switch v.prim {
	case types.I8:
		return strconv.FormatInt(int64(v.vi8[i]), 10)
	case types.I16:
		return strconv.FormatInt(int64(v.vi16[i]), 10)
	case types.I32:
		return strconv.FormatInt(int64(v.vi32[i]), 10)
	case types.I64:
		return strconv.FormatInt(v.vi64[i], 10)
	case types.U8, types.Byte:
		return strconv.FormatUint(uint64(v.vu8[i]), 10)
	case types.U16:
		return strconv.FormatUint(uint64(v.vu16[i]), 10)
	case types.U32:
		return strconv.FormatUint(uint64(v.vu32[i]), 10)
	case types.U64:
		return strconv.FormatUint(v.vu64[i], 10)
	case types.F32:
		return strconv.FormatFloat(float64(v.vf32[i]), 'g', -1, 32)
	case types.F64:
		return strconv.FormatFloat(v.vf64[i], 'g', -1, 64)
	case types.Bool:
		return strconv.FormatBool(v.vb[i])
	case types.Char:
		return "'" + escapeChar(v.vc[i]) + "'"
	case types.String:
		return quoteString(v.vs[i])
	}
	return ""
}

// quoteString renders s as "..." if every rune is printable, else as ${...}
// with the standard escape set.
func quoteString(s string) string {
	printable := true
	for _, r := range s {
		if !unicode.IsPrint(r) {
			printable = false
			break
		}
	}

	if printable {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}

	sb := &strings.Builder{}
	sb.WriteString("${")
	for _, r := range s {
		sb.WriteString(escapeRune(r))
	}
	sb.WriteString("}")
	return sb.String()
}

func escapeChar(r rune) string {
	switch r {
	case '\'':
		return `\'`
	case '\\':
		return `\\`
	}
	return escapeRune(r)
}

func escapeRune(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\\':
		return `\\`
	}
	if unicode.IsPrint(r) {
		return string(r)
	}
	return fmt.Sprintf(`\u{%x}`, r)
}
