package savefile

import (
	"fmt"

	"github.com/mzki/pluto/binio"
	"github.com/mzki/pluto/integrity"
)

// Signature is the first 4 bytes of every save file.
const Signature = "SGB1"

// size of signature, version, body length and checksum.
const HeaderSize = 4 + 4 + 4 + 4

const (
	Version16 uint32 = 16
	// Version17 appends the map to start next run after the current map.
	Version17 uint32 = 17

	LatestVersion = Version17
)

// IsRecognizedVersion reports whether the body layout of v is known.
func IsRecognizedVersion(v uint32) bool {
	return v == Version16 || v == Version17
}

// Header is the fixed part in front of the body.
type Header struct {
	Version uint32
	Stamp   integrity.Stamp
}

// readHeader reads and validates signature and version.
// body length and checksum are checked later against the body.
func readHeader(c *binio.Cursor) (Header, error) {
	var h Header
	sig, err := c.ReadBytes(len(Signature))
	if err != nil {
		return h, err
	}
	if string(sig) != Signature {
		return h, fmt.Errorf("%w: got %q", ErrBadSignature, sig)
	}
	if h.Version, err = c.ReadU32(); err != nil {
		return h, err
	}
	if !IsRecognizedVersion(h.Version) {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Stamp.Length, err = c.ReadU32(); err != nil {
		return h, err
	}
	if h.Stamp.Checksum, err = c.ReadU32(); err != nil {
		return h, err
	}
	return h, nil
}

func (h Header) write(c *binio.Cursor) {
	c.WriteBytes([]byte(Signature))
	c.WriteU32(h.Version)
	c.WriteU32(h.Stamp.Length)
	c.WriteU32(h.Stamp.Checksum)
}

// ReadHeader parses the header of a save file image without verifying the body.
func ReadHeader(p []byte) (Header, error) {
	return readHeader(binio.NewReader(p))
}
