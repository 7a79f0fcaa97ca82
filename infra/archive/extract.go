package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/mzki/pluto/savefile"
)

// Entry is a save read from an archive. Name is the base name of the
// file, directories in the archive are dropped.
type Entry struct {
	Name string
	Save *savefile.SaveFile
}

// Open reads saves in zip archive of srcZipPath, which is searched with
// respect to srcFsys. To be better memory efficiency, the fs.File returned
// by srcFsys.Open() should implement io.ReaderAt interface.
func Open(srcFsys fs.FS, srcZipPath string, cd savefile.Codec) ([]Entry, error) {
	file, err := srcFsys.Open(srcZipPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	finfo, err := file.Stat()
	if err != nil {
		return nil, err
	}

	var readerAt io.ReaderAt
	if r, ok := file.(io.ReaderAt); ok {
		readerAt = r
	} else {
		// fallback method: put all content in memory.
		bs, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read content failed for: %v", srcZipPath)
		}
		readerAt = bytes.NewReader(bs)
	}
	return Read(readerAt, finfo.Size(), cd)
}

// Read is alternative API with io.ReaderAt for Open. See Open
// documentation for the details.
// Files other than saves are skipped. Any save cd can not decode, or two
// saves of the same name, fails the whole archive.
func Read(r io.ReaderAt, rSize int64, cd savefile.Codec) ([]Entry, error) {
	zReader, err := zip.NewReader(r, rSize)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	seen := make(map[string]string)
	for _, file := range zReader.File {
		if file.NonUTF8 {
			return nil, fmt.Errorf("zip archive containing non-UTF8 file name, is now allowed: file name: %v", file.FileInfo().Name())
		}
		if file.FileInfo().IsDir() {
			continue
		}
		// the base name only, so that nothing is written outside the save directory.
		name := path.Base(file.Name)
		if path.Ext(name) != SaveExt {
			continue
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate save %v in zip: %v and %v", name, prev, file.Name)
		}
		seen[name] = file.Name

		sf, err := readEntry(file, cd)
		if err != nil {
			return nil, fmt.Errorf("failed to read zip file entry: %w", err)
		}
		entries = append(entries, Entry{Name: name, Save: sf})
	}
	return entries, nil
}

func readEntry(srcFile *zip.File, cd savefile.Codec) (*savefile.SaveFile, error) {
	src, err := srcFile.Open()
	if err != nil {
		return nil, fmt.Errorf("zip file entry(%v) open failed: %w", srcFile.Name, err)
	}
	defer src.Close()

	p, err := readLimited(src, srcFile.Name, MaxSaveSize)
	if err != nil {
		return nil, err
	}
	sf, err := cd.Decode(p)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", srcFile.Name, err)
	}
	return sf, nil
}
