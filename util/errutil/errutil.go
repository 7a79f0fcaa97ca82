// Package errutil provides utilty of errors.
package errutil

import (
	"fmt"
	"io"
	"strings"
)

// Writer writes into an underlying io.Writer until the first failure.
// The failure is kept and the rest of writes are dropped, so that a
// sequence of prints can be checked once by Err at the end.
type Writer struct {
	w   io.Writer
	err error
}

// NewErrWriter wraps w.
func NewErrWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Err returns the first write error, or nil.
func (ew *Writer) Err() error { return ew.err }

// Write never reports an error to the caller, see Err instead.
func (ew *Writer) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, nil
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, nil
}

// Printf is fmt.Fprintf into the Writer.
func (ew *Writer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(ew, format, args...)
}

// MultiError collects errors of independent steps, e.g. one per file,
// so that a failure of one does not hide the others.
type MultiError struct {
	errs []error
}

func NewMultiError() *MultiError {
	return &MultiError{errs: make([]error, 0, 4)}
}

// Add appends err. nil is ignored.
func (me *MultiError) Add(err error) {
	if err != nil {
		me.errs = append(me.errs, err)
	}
}

// Len returns number of added errors.
func (me *MultiError) Len() int { return len(me.errs) }

// Err returns the MultiError itself as an error, or nil when nothing
// was added. errors.Is and errors.As see every added error.
func (me *MultiError) Err() error {
	if me.Len() == 0 {
		return nil
	}
	return me
}

func (me *MultiError) Error() string {
	if me.Len() == 1 {
		return me.errs[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", me.Len())
	for _, err := range me.errs {
		sb.WriteString("\n\t")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func (me *MultiError) Unwrap() []error { return me.errs }
