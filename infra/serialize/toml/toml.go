// Package toml reads and writes TOML documents through the filesystem package.
package toml

import (
	"bytes"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/util/log"
)

// encode data to Writer.
func Encode(w io.Writer, data interface{}) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(data)
}

// encode data to file. The file is replaced only when encoding succeeded.
func EncodeFile(file string, data interface{}) error {
	return EncodeFileFS(filesystem.Default, file, data)
}

func EncodeFileFS(fsys filesystem.FileSystem, file string, data interface{}) error {
	var buf bytes.Buffer
	if err := Encode(&buf, data); err != nil {
		return err
	}
	return filesystem.WriteFile(fsys, file, buf.Bytes())
}

// decode from reader and store it to data.
func Decode(r io.Reader, data interface{}) error {
	meta, err := toml.NewDecoder(r).Decode(data)
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warnf("toml.Decode: undecoded keys exist, %v", undecoded)
	}
	return err
}

// decode from file and store it to data.
func DecodeFile(file string, data interface{}) error {
	return DecodeFileFS(filesystem.Default, file, data)
}

func DecodeFileFS(fsys filesystem.Loader, file string, data interface{}) error {
	fp, err := fsys.Load(file)
	if err != nil {
		return err
	}
	defer fp.Close()
	return Decode(fp, data)
}
