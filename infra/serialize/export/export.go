// Package export converts the Lua state of a save file to and from
// JSON or MessagePack documents which a user can edit by other tools.
//
// A table is written as a list of entries so that key order survives,
// and every entry names its type so that 1 and true and "1" stay distinct.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/ugorji/go/codec"

	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/variant"
)

// FormatID identifies documents written by this package.
const FormatID = "pluto-export/1"

type Format int

const (
	JSON Format = iota
	MsgPack
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case MsgPack:
		return "msgpack"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat accepts a format name or a file name with .json, .msgpack or .mp extension.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(s)
	if ext := filepath.Ext(name); ext != "" {
		name = ext[1:]
	}
	switch name {
	case "json":
		return JSON, nil
	case "msgpack", "mp":
		return MsgPack, nil
	default:
		return JSON, fmt.Errorf("export: unknown format %q", s)
	}
}

var (
	ErrNotRepresentable = errors.New("export: value not representable")
	ErrBadDocument      = errors.New("export: bad document")
)

// Document is the exported form of a save file. Only LuaState is read back
// by Import, the others are informational.
type Document struct {
	Format   string  `codec:"format"`
	Version  uint32  `codec:"version"`
	Location string  `codec:"location"`
	Runs     uint32  `codec:"runs"`
	LuaState []Entry `codec:"lua_state"`
}

// Entry is one key of a table. Exactly one of the value fields
// matching Type is set.
type Entry struct {
	Key    string   `codec:"key"`
	Type   string   `codec:"type"`
	Float  *float64 `codec:"float,omitempty"`
	Bool   *bool    `codec:"bool,omitempty"`
	String *string  `codec:"string,omitempty"`
	Table  []Entry  `codec:"table,omitempty"`
}

var (
	jsonHandle    = &codec.JsonHandle{Indent: 2}
	msgpackHandle = newMsgpackHandle()
)

func newMsgpackHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.RawToString = true
	return h
}

func handle(f Format) codec.Handle {
	if f == MsgPack {
		return msgpackHandle
	}
	return jsonHandle
}

// NewDocument builds the Document of sf.
func NewDocument(sf *savefile.SaveFile, f Format) (*Document, error) {
	if err := variant.CheckDepth(sf.LuaState); err != nil {
		return nil, err
	}
	entries, err := fromTable(sf.LuaState, f)
	if err != nil {
		return nil, err
	}
	return &Document{
		Format:   FormatID,
		Version:  sf.Version,
		Location: sf.Location,
		Runs:     sf.Runs,
		LuaState: entries,
	}, nil
}

// Export writes the Lua state of sf into w.
func Export(w io.Writer, sf *savefile.SaveFile, f Format) error {
	doc, err := NewDocument(sf, f)
	if err != nil {
		return err
	}
	return codec.NewEncoder(w, handle(f)).Encode(doc)
}

// Import reads a document written by Export and returns its Lua state.
func Import(r io.Reader, f Format) (*variant.Table, error) {
	var doc Document
	if err := codec.NewDecoder(r, handle(f)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if doc.Format != FormatID {
		return nil, fmt.Errorf("%w: format %q, want %q", ErrBadDocument, doc.Format, FormatID)
	}
	return toTable(doc.LuaState, 1)
}

func fromTable(t *variant.Table, f Format) ([]Entry, error) {
	entries := make([]Entry, 0, t.Len())
	var err error
	t.Range(func(key string, v variant.Variant) bool {
		var e Entry
		if e, err = fromVariant(key, v, f); err != nil {
			return false
		}
		entries = append(entries, e)
		return true
	})
	return entries, err
}

func fromVariant(key string, v variant.Variant, f Format) (Entry, error) {
	e := Entry{Key: key, Type: v.Kind().String()}
	switch v.Kind() {
	case variant.KindFloat:
		n, _ := v.AsFloat()
		if f == JSON && (math.IsNaN(n) || math.IsInf(n, 0)) {
			return e, fmt.Errorf("%w: %q is %v in json", ErrNotRepresentable, key, n)
		}
		e.Float = &n
	case variant.KindBool:
		b, _ := v.AsBool()
		e.Bool = &b
	case variant.KindString:
		s, _ := v.AsString()
		e.String = &s
	case variant.KindTable:
		sub, _ := v.AsTable()
		children, err := fromTable(sub, f)
		if err != nil {
			return e, fmt.Errorf("%q: %w", key, err)
		}
		e.Table = children
	default:
		return e, fmt.Errorf("%w: %q has %v", ErrNotRepresentable, key, v.Kind())
	}
	return e, nil
}

// toTable builds the table of entries at nesting level, the root being 1.
func toTable(entries []Entry, level int) (*variant.Table, error) {
	if level > variant.MaxDepth {
		return nil, fmt.Errorf("%w: %w: tables nested deeper than %d", ErrBadDocument, variant.ErrTooDeep, variant.MaxDepth)
	}
	t := variant.NewTable()
	for _, e := range entries {
		if t.Has(e.Key) {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrBadDocument, e.Key)
		}
		v, err := e.variant(level)
		if err != nil {
			return nil, err
		}
		t.Replace(e.Key, v)
	}
	return t, nil
}

func (e Entry) variant(level int) (variant.Variant, error) {
	missing := func() (variant.Variant, error) {
		return variant.Variant{}, fmt.Errorf("%w: %q of type %s has no value", ErrBadDocument, e.Key, e.Type)
	}
	switch e.Type {
	case variant.KindFloat.String():
		if e.Float == nil {
			return missing()
		}
		return variant.Float(*e.Float), nil
	case variant.KindBool.String():
		if e.Bool == nil {
			return missing()
		}
		return variant.Bool(*e.Bool), nil
	case variant.KindString.String():
		if e.String == nil {
			return missing()
		}
		return variant.String(*e.String), nil
	case variant.KindTable.String():
		sub, err := toTable(e.Table, level+1)
		if err != nil {
			return variant.Variant{}, fmt.Errorf("%q: %w", e.Key, err)
		}
		return variant.TableValue(sub), nil
	default:
		return variant.Variant{}, fmt.Errorf("%w: %q has unknown type %q", ErrBadDocument, e.Key, e.Type)
	}
}
