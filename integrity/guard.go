// Package integrity computes and verifies the length and checksum
// which guard the body of a save file.
package integrity

import (
	"errors"
	"fmt"
	"hash/adler32"
	"hash/crc32"
)

// ErrIntegrityCheckFailed indicates stored length or checksum does not match the body.
var ErrIntegrityCheckFailed = errors.New("integrity: check failed")

// Algorithm is a checksum strategy over a serialized body.
type Algorithm interface {
	Name() string
	Sum(body []byte) uint32
}

type adler32Algorithm struct{}

func (adler32Algorithm) Name() string           { return "adler32" }
func (adler32Algorithm) Sum(body []byte) uint32 { return adler32.Checksum(body) }

type crc32Algorithm struct{}

func (crc32Algorithm) Name() string           { return "crc32" }
func (crc32Algorithm) Sum(body []byte) uint32 { return crc32.ChecksumIEEE(body) }

var (
	// Adler32 is the checksum the game stamps into its save files.
	Adler32 Algorithm = adler32Algorithm{}
	// CRC32 uses the IEEE polynomial.
	CRC32 Algorithm = crc32Algorithm{}
)

// ByName returns the built-in Algorithm named name.
func ByName(name string) (Algorithm, error) {
	for _, a := range []Algorithm{Adler32, CRC32} {
		if a.Name() == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("integrity: unknown checksum algorithm %q", name)
}

// Stamp is the pair of fields stored in the header.
type Stamp struct {
	Length   uint32
	Checksum uint32
}

// Guard verifies and stamps bodies using Algorithm.
// zero value uses Adler32.
type Guard struct {
	Algorithm Algorithm
}

func (g Guard) algorithm() Algorithm {
	if g.Algorithm == nil {
		return Adler32
	}
	return g.Algorithm
}

// Stamp computes the header fields for body.
func (g Guard) Stamp(body []byte) Stamp {
	return Stamp{
		Length:   uint32(len(body)),
		Checksum: g.algorithm().Sum(body),
	}
}

// Verify checks body against the stored stamp.
func (g Guard) Verify(stored Stamp, body []byte) error {
	if int64(stored.Length) != int64(len(body)) {
		return fmt.Errorf("%w: stored body length %d, observed %d",
			ErrIntegrityCheckFailed, stored.Length, len(body))
	}
	if sum := g.algorithm().Sum(body); sum != stored.Checksum {
		return fmt.Errorf("%w: stored %s %08x, computed %08x",
			ErrIntegrityCheckFailed, g.algorithm().Name(), stored.Checksum, sum)
	}
	return nil
}
