package variant

import (
	"errors"
	"fmt"

	"github.com/mzki/pluto/binio"
)

// MaxDepth limits nesting of tables, counting the root table as 1.
// Decode rejects deeper input and Encode refuses to write it.
const MaxDepth = 64

var (
	ErrUnknownVariantType = errors.New("variant: unknown variant type")
	ErrTooDeep            = errors.New("variant: table nesting too deep")
)

// smallest entry on the wire: empty key, tag and a bool payload.
const minEntrySize = 4 + 1 + 1

// Decode reads a table from c: uint32 entry count followed by entries of
// key string, tag byte and payload.
func Decode(c *binio.Cursor) (*Table, error) {
	return decodeTable(c, 0)
}

func decodeTable(c *binio.Cursor, depth int) (*Table, error) {
	if depth >= MaxDepth {
		return nil, fmt.Errorf("%w: at offset %d", ErrTooDeep, c.Pos())
	}
	countAt := c.Pos()
	count, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if uint64(count)*minEntrySize > uint64(c.Remaining()) {
		return nil, fmt.Errorf("%w: %d entries declared at offset %d, %d bytes left",
			binio.ErrUnexpectedEndOfData, count, countAt, c.Remaining())
	}

	t := &Table{
		keys:   make([]string, 0, count),
		values: make([]Variant, 0, count),
		index:  make(map[string]int, count),
	}
	for i := uint32(0); i < count; i++ {
		key, err := c.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(c, depth)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}
		if _, dup := t.index[key]; dup {
			// a repeated key can not be reproduced by Encode.
			return nil, fmt.Errorf("variant: duplicate key %q in table at offset %d", key, countAt)
		}
		t.index[key] = len(t.keys)
		t.keys = append(t.keys, key)
		t.values = append(t.values, v)
	}
	return t, nil
}

func decodeValue(c *binio.Cursor, depth int) (Variant, error) {
	tagAt := c.Pos()
	tag, err := c.ReadU8()
	if err != nil {
		return Variant{}, err
	}
	switch Kind(tag) {
	case KindFloat:
		f, err := c.ReadF64()
		return Float(f), err
	case KindBool:
		b, err := c.ReadBool()
		return Bool(b), err
	case KindString:
		s, err := c.ReadString()
		return String(s), err
	case KindTable:
		sub, err := decodeTable(c, depth+1)
		if err != nil {
			return Variant{}, err
		}
		return TableValue(sub), nil
	default:
		return Variant{}, fmt.Errorf("%w: tag 0x%02x at offset %d", ErrUnknownVariantType, tag, tagAt)
	}
}

// CheckDepth returns ErrTooDeep when t nests more than MaxDepth tables.
// A table containing itself is reported the same way.
func CheckDepth(t *Table) error {
	if exceedsDepth(t, 1) {
		return fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxDepth)
	}
	return nil
}

func exceedsDepth(t *Table, level int) bool {
	if level > MaxDepth {
		return true
	}
	for _, v := range t.values {
		if v.kind == KindTable && exceedsDepth(v.tbl, level+1) {
			return true
		}
	}
	return false
}

// Encode writes t to c in the form Decode reads.
// Nothing is written when t fails CheckDepth.
func Encode(t *Table, c *binio.Cursor) error {
	if err := CheckDepth(t); err != nil {
		return err
	}
	encodeTable(t, c)
	return nil
}

func encodeTable(t *Table, c *binio.Cursor) {
	c.WriteU32(uint32(len(t.keys)))
	for i, key := range t.keys {
		c.WriteString(key)
		encodeValue(t.values[i], c)
	}
}

func encodeValue(v Variant, c *binio.Cursor) {
	c.WriteU8(uint8(v.kind))
	switch v.kind {
	case KindFloat:
		c.WriteF64(v.num)
	case KindBool:
		c.WriteBool(v.num != 0)
	case KindString:
		c.WriteString(v.str)
	case KindTable:
		encodeTable(v.tbl, c)
	default:
		// Set and Replace never store an invalid variant.
		panic(fmt.Sprintf("variant: encode %v", v.kind))
	}
}

// EncodedSize returns the number of bytes Encode writes for t.
// t must pass CheckDepth.
func EncodedSize(t *Table) int {
	n := 4
	for i, key := range t.keys {
		n += 4 + len(key) + 1
		switch v := t.values[i]; v.kind {
		case KindFloat:
			n += 8
		case KindBool:
			n++
		case KindString:
			n += 4 + len(v.str)
		case KindTable:
			n += EncodedSize(v.tbl)
		}
	}
	return n
}
