package binio

import (
	"bytes"
	"errors"
	"testing"
)

func TestCursorWriteRead(t *testing.T) {
	w := NewWriter(0)
	w.WriteU8(7)
	w.WriteU32(0xdeadbeef)
	w.WriteU64(1 << 40)
	w.WriteF64(120.5)
	w.WriteBool(true)
	w.WriteString("Tartarus")
	w.WriteBytes([]byte{1, 2, 3})

	r := NewReader(w.Bytes())
	if v, err := r.ReadU8(); err != nil || v != 7 {
		t.Fatalf("ReadU8() = %v, %v", v, err)
	}
	if v, err := r.ReadU32(); err != nil || v != 0xdeadbeef {
		t.Fatalf("ReadU32() = %x, %v", v, err)
	}
	if v, err := r.ReadU64(); err != nil || v != 1<<40 {
		t.Fatalf("ReadU64() = %v, %v", v, err)
	}
	if v, err := r.ReadF64(); err != nil || v != 120.5 {
		t.Fatalf("ReadF64() = %v, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("ReadBool() = %v, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "Tartarus" {
		t.Fatalf("ReadString() = %q, %v", v, err)
	}
	if rest := r.Rest(); !bytes.Equal(rest, []byte{1, 2, 3}) {
		t.Fatalf("Rest() = %v", rest)
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining %d after Rest()", r.Remaining())
	}
}

func TestCursorLittleEndian(t *testing.T) {
	w := NewWriter(4)
	w.WriteU32(1)
	if got := w.Bytes(); !bytes.Equal(got, []byte{1, 0, 0, 0}) {
		t.Errorf("WriteU32(1) = %v, want little endian", got)
	}
}

func TestCursorReadPastEnd(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadU32(); !errors.Is(err, ErrUnexpectedEndOfData) {
		t.Fatalf("ReadU32 over 2 bytes: got %v, expect %v", err, ErrUnexpectedEndOfData)
	}
	if r.Pos() != 0 {
		t.Errorf("position moved on failed read: %d", r.Pos())
	}

	// declared length longer than the data.
	w := NewWriter(0)
	w.WriteU32(10)
	w.WriteBytes([]byte("abc"))
	r = NewReader(w.Bytes())
	if _, err := r.ReadString(); !errors.Is(err, ErrUnexpectedEndOfData) {
		t.Fatalf("ReadString with short payload: got %v", err)
	}
	if r.Pos() != 0 {
		t.Errorf("position moved on failed string read: %d", r.Pos())
	}
}

func TestCursorOverwriteAndGrow(t *testing.T) {
	w := NewWriter(0)
	w.WriteU32(0)
	w.WriteString("x")
	if err := w.Seek(0); err != nil {
		t.Fatal(err)
	}
	w.WriteU32(42)
	if w.Len() != 9 {
		t.Fatalf("overwrite changed length: %d", w.Len())
	}
	r := NewReader(w.Bytes())
	if v, _ := r.ReadU32(); v != 42 {
		t.Errorf("patched value = %d, want 42", v)
	}
	if err := w.Seek(100); !errors.Is(err, ErrUnexpectedEndOfData) {
		t.Errorf("Seek past end: got %v", err)
	}
}

func TestCursorMultiByteString(t *testing.T) {
	const s = "冥界"
	w := NewWriter(0)
	w.WriteString(s)
	if w.Len() != 4+len(s) {
		t.Fatalf("string length unit is not bytes: total %d", w.Len())
	}
	got, err := NewReader(w.Bytes()).ReadString()
	if err != nil || got != s {
		t.Errorf("ReadString() = %q, %v", got, err)
	}
}
