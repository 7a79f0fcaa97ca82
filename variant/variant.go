// Package variant defines the dynamically typed, string keyed table
// which holds the Lua state of a save file, and its binary codec.
//
// A Table keeps insertion order of its keys. The order is part of the
// serialized form, so Decode followed by Encode reproduces the input bytes.
package variant

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind is a type tag of Variant. Its value is the tag byte on the wire.
type Kind uint8

const (
	KindInvalid Kind = 0x00
	KindFloat   Kind = 0x01
	KindBool    Kind = 0x02
	KindString  Kind = 0x03
	KindTable   Kind = 0x04
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("kind(0x%02x)", uint8(k))
	}
}

var (
	ErrFieldNotPresent = errors.New("variant: field not present")
	ErrTypeMismatch    = errors.New("variant: type mismatch")
)

// Variant is a tagged union over float, bool, string and nested Table.
// zero value is invalid and never produced by Decode.
type Variant struct {
	kind Kind
	num  float64
	str  string
	tbl  *Table
}

func Float(f float64) Variant { return Variant{kind: KindFloat, num: f} }

func Bool(b bool) Variant {
	v := Variant{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

func String(s string) Variant { return Variant{kind: KindString, str: s} }

// TableValue wraps t. nil is replaced with an empty Table.
func TableValue(t *Table) Variant {
	if t == nil {
		t = NewTable()
	}
	return Variant{kind: KindTable, tbl: t}
}

func (v Variant) Kind() Kind { return v.kind }

func (v Variant) AsFloat() (float64, bool) { return v.num, v.kind == KindFloat }

func (v Variant) AsBool() (bool, bool) { return v.num != 0, v.kind == KindBool }

func (v Variant) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsTable returns the nested table. It shares memory with v.
func (v Variant) AsTable() (*Table, bool) { return v.tbl, v.kind == KindTable }

// Equal reports structural equality. floats are compared by bit pattern
// so that NaN payloads round trip as equal.
func (v Variant) Equal(o Variant) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindFloat:
		return math.Float64bits(v.num) == math.Float64bits(o.num)
	case KindBool:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindTable:
		return v.tbl.Equal(o.tbl)
	default:
		return true
	}
}

// Clone returns a deep copy.
func (v Variant) Clone() Variant {
	if v.kind == KindTable {
		return Variant{kind: KindTable, tbl: v.tbl.Clone()}
	}
	return v
}

// String renders scalars as text and tables by entry count.
func (v Variant) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindString:
		return v.str
	case KindTable:
		return fmt.Sprintf("table(%d)", v.tbl.Len())
	default:
		return "<invalid>"
	}
}
