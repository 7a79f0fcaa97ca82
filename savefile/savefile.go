// Package savefile loads and stores the game's save file.
//
// A save file is a header (signature, format version, body length and
// checksum) followed by a body of fixed fields and the Lua state table.
// Bytes after the Lua state are kept verbatim, so that a file edited and
// saved by this package differs from the original only in what was changed.
//
// typical usage:
//
//	sf, err := savefile.Load(path)
//	...
//	sf.SetDarkness(5000)
//	err = savefile.Save(sf, path)
package savefile

import (
	"bytes"
	"fmt"

	"github.com/mzki/pluto/binio"
	"github.com/mzki/pluto/integrity"
	"github.com/mzki/pluto/util/log"
	"github.com/mzki/pluto/variant"
)

// SaveFile is an in-memory save file. It is constructed by Decode or Load.
type SaveFile struct {
	Version      uint32
	Timestamp    uint64 // in the game's own clock unit, kept as is.
	Location     string
	Runs         uint32
	MetaPoints   uint32
	ShrinePoints uint32
	GodMode      bool
	LuaKeys      []string
	CurrentMap   string
	StartNextMap string // Version17 only.

	LuaState *variant.Table

	// bytes after the Lua state in the body.
	Trailing []byte

	hellMode    bool
	hellModeSet bool
}

// HellModeEnabled returns the top-level hell mode flag of the body.
func (sf *SaveFile) HellModeEnabled() bool { return sf.hellMode }

// Clone returns a deep copy.
func (sf *SaveFile) Clone() *SaveFile {
	c := *sf
	c.LuaKeys = append([]string(nil), sf.LuaKeys...)
	c.LuaState = sf.LuaState.Clone()
	c.Trailing = append([]byte(nil), sf.Trailing...)
	return &c
}

// Equal reports whether every persisted field of sf and o is equal,
// including key order of the Lua state.
func (sf *SaveFile) Equal(o *SaveFile) bool {
	if sf.Version != o.Version ||
		sf.Timestamp != o.Timestamp ||
		sf.Location != o.Location ||
		sf.Runs != o.Runs ||
		sf.MetaPoints != o.MetaPoints ||
		sf.ShrinePoints != o.ShrinePoints ||
		sf.GodMode != o.GodMode ||
		sf.hellMode != o.hellMode ||
		sf.CurrentMap != o.CurrentMap ||
		sf.StartNextMap != o.StartNextMap ||
		len(sf.LuaKeys) != len(o.LuaKeys) ||
		!bytes.Equal(sf.Trailing, o.Trailing) {
		return false
	}
	for i := range sf.LuaKeys {
		if sf.LuaKeys[i] != o.LuaKeys[i] {
			return false
		}
	}
	return sf.LuaState.Equal(o.LuaState)
}

// Codec converts between SaveFile and its file image.
// zero value verifies and stamps with Adler32.
type Codec struct {
	Guard integrity.Guard
}

// defaultCodec is used by the package level functions. It stamps Adler32.
var defaultCodec = Codec{}

func Decode(p []byte) (*SaveFile, error) { return defaultCodec.Decode(p) }

func Encode(sf *SaveFile) ([]byte, error) { return defaultCodec.Encode(sf) }

// Decode parses a whole file image. It returns nil SaveFile on any error.
func (cd Codec) Decode(p []byte) (*SaveFile, error) {
	c := binio.NewReader(p)
	h, err := readHeader(c)
	if err != nil {
		return nil, err
	}
	body := p[c.Pos():]
	if err := cd.Guard.Verify(h.Stamp, body); err != nil {
		return nil, err
	}

	sf, err := decodeBody(h.Version, binio.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("savefile: body at offset %d: %w", HeaderSize, err)
	}
	if lua, err := sf.LuaState.Bool(KeyHellMode); err == nil && lua != sf.hellMode {
		log.Debugf("savefile: hell mode flag %v differs from lua state %v", sf.hellMode, lua)
	}
	return sf, nil
}

func decodeBody(version uint32, c *binio.Cursor) (*SaveFile, error) {
	sf := &SaveFile{Version: version}
	var err error
	if sf.Timestamp, err = c.ReadU64(); err != nil {
		return nil, err
	}
	if sf.Location, err = c.ReadString(); err != nil {
		return nil, err
	}
	if sf.Runs, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if sf.MetaPoints, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if sf.ShrinePoints, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if sf.GodMode, err = c.ReadBool(); err != nil {
		return nil, err
	}
	if sf.hellMode, err = c.ReadBool(); err != nil {
		return nil, err
	}

	nkeys, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if uint64(nkeys)*4 > uint64(c.Remaining()) {
		return nil, fmt.Errorf("%w: %d lua keys declared, %d bytes left",
			ErrUnexpectedEndOfData, nkeys, c.Remaining())
	}
	sf.LuaKeys = make([]string, nkeys)
	for i := range sf.LuaKeys {
		if sf.LuaKeys[i], err = c.ReadString(); err != nil {
			return nil, err
		}
	}

	if sf.CurrentMap, err = c.ReadString(); err != nil {
		return nil, err
	}
	if version >= Version17 {
		if sf.StartNextMap, err = c.ReadString(); err != nil {
			return nil, err
		}
	}

	if sf.LuaState, err = variant.Decode(c); err != nil {
		return nil, fmt.Errorf("lua state: %w", err)
	}
	sf.Trailing = c.Rest()
	return sf, nil
}

// Encode serializes sf into a file image. The hell mode flags are made
// consistent before encoding, which may modify sf.LuaState.
func (cd Codec) Encode(sf *SaveFile) ([]byte, error) {
	if !IsRecognizedVersion(sf.Version) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, sf.Version)
	}
	if sf.LuaState == nil {
		sf.LuaState = variant.NewTable()
	}
	sf.syncHellMode()
	if err := variant.CheckDepth(sf.LuaState); err != nil {
		return nil, fmt.Errorf("lua state: %w", err)
	}

	body := binio.NewWriter(64 + len(sf.Location) + variant.EncodedSize(sf.LuaState) + len(sf.Trailing))
	body.WriteU64(sf.Timestamp)
	body.WriteString(sf.Location)
	body.WriteU32(sf.Runs)
	body.WriteU32(sf.MetaPoints)
	body.WriteU32(sf.ShrinePoints)
	body.WriteBool(sf.GodMode)
	body.WriteBool(sf.hellMode)
	body.WriteU32(uint32(len(sf.LuaKeys)))
	for _, k := range sf.LuaKeys {
		body.WriteString(k)
	}
	body.WriteString(sf.CurrentMap)
	if sf.Version >= Version17 {
		body.WriteString(sf.StartNextMap)
	}
	if err := variant.Encode(sf.LuaState, body); err != nil {
		return nil, fmt.Errorf("lua state: %w", err)
	}
	body.WriteBytes(sf.Trailing)

	h := Header{Version: sf.Version, Stamp: cd.Guard.Stamp(body.Bytes())}
	out := binio.NewWriter(HeaderSize + body.Len())
	h.write(out)
	out.WriteBytes(body.Bytes())
	return out.Bytes(), nil
}
