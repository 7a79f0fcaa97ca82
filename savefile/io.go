package savefile

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/util/log"
)

// Load reads save file at path from filesystem.Default.
func Load(path string) (*SaveFile, error) {
	return defaultCodec.LoadFS(filesystem.Default, path)
}

// LoadFS reads save file at path from fsys.
func LoadFS(fsys filesystem.Loader, path string) (*SaveFile, error) {
	return defaultCodec.LoadFS(fsys, path)
}

// Save writes sf to path on filesystem.Default.
func Save(sf *SaveFile, path string) error {
	return defaultCodec.SaveFS(filesystem.Default, sf, path)
}

// SaveFS writes sf to path on fsys.
func SaveFS(fsys filesystem.FileSystem, sf *SaveFile, path string) error {
	return defaultCodec.SaveFS(fsys, sf, path)
}

func (cd Codec) LoadFS(fsys filesystem.Loader, path string) (*SaveFile, error) {
	p, err := filesystem.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("savefile: load %s: %w", path, err)
	}
	log.Debugf("savefile: loaded %s (%d bytes)", path, len(p))

	sf, err := cd.Decode(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sf, nil
}

// SaveFS encodes sf and replaces path on fsys with it. The file at path is
// left as it was when any error is returned.
func (cd Codec) SaveFS(fsys filesystem.FileSystem, sf *SaveFile, path string) error {
	p, err := cd.Encode(sf)
	if err != nil {
		return err
	}
	if err := filesystem.WriteFile(fsys, path, p); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIoWrite, path, err)
	}
	log.Debugf("savefile: wrote %s (%d bytes, version %d)", path, len(p), sf.Version)
	return nil
}
