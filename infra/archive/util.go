package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/mzki/pluto/filesystem"
)

// MaxSaveSize is the largest file accepted into or out of an archive.
const MaxSaveSize = filesystem.DefaultMaxFileSize

// ErrTooLargeBytes indicates a file exceeds the size limit.
var ErrTooLargeBytes = errors.New("archive: too large bytes")

// readLimited reads src up to limit bytes. It returns ErrTooLargeBytes
// when src holds more than limit bytes.
func readLimited(src io.Reader, name string, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	// one byte more than limit tells an oversized src from a fitting one.
	if _, err := io.CopyN(&buf, src, limit+1); err == nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fmt.Errorf("exceed limit (%v): %w", limit, ErrTooLargeBytes)}
	} else if !errors.Is(err, io.EOF) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return buf.Bytes(), nil
}
