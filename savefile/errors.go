package savefile

import (
	"errors"

	"github.com/mzki/pluto/binio"
	"github.com/mzki/pluto/integrity"
	"github.com/mzki/pluto/variant"
)

var (
	ErrBadSignature       = errors.New("savefile: signature is not " + Signature)
	ErrUnsupportedVersion = errors.New("savefile: unsupported version")
	ErrFileNotFound       = errors.New("savefile: file not found")
	ErrIoWrite            = errors.New("savefile: write failed")
)

// Errors raised by the underlying codec, re-exported so that callers
// need to import this package only.
var (
	ErrIntegrityCheckFailed = integrity.ErrIntegrityCheckFailed
	ErrUnknownVariantType   = variant.ErrUnknownVariantType
	ErrUnexpectedEndOfData  = binio.ErrUnexpectedEndOfData
	ErrFieldNotPresent      = variant.ErrFieldNotPresent
	ErrTypeMismatch         = variant.ErrTypeMismatch
)
