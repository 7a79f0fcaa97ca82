package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	DefaultMaxFileSize = 16 * 1024 * 1024 // 16MByte
)

var (
	// Desktop is a FileSystem for the desktop environment
	Desktop = &OSFileSystem{MaxFileSize: DefaultMaxFileSize}
)

// OSFileSystem is a adaptation of the os package with FileSystem interface.
// Store is atomic: content is written into a temporary file in the same
// directory and renamed over the target on Close.
//
// OSFileSystem implements FileSystem, Remover, Stater and fs.FS interface.
type OSFileSystem struct {
	MaxFileSize int64 // in bytes
}

func (osfs *OSFileSystem) ResolvePath(fpath string) (string, error) {
	return filepath.Clean(fpath), nil
}

func (osfs *OSFileSystem) Load(filepath string) (reader io.ReadCloser, err error) {
	finfo, err := os.Stat(filepath)
	if err != nil {
		return nil, fmt.Errorf("can not fetch file info: %w", err)
	}

	if maxSize := osfs.MaxFileSize; maxSize > 0 && finfo.Size() > maxSize {
		return nil, fmt.Errorf("file(%s) is too large size(>%v) to load", filepath, maxSize)
	}

	return os.Open(filepath)
	// Close() is responsible for the caller.
}

func (osfs *OSFileSystem) Exist(filepath string) bool {
	_, err := os.Stat(filepath)
	return err == nil
}

func (osfs *OSFileSystem) Store(fpath string) (writer io.WriteCloser, err error) {
	// make directory of given path. if exist do nothing.
	dir := filepath.Dir(fpath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("can not create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fpath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("can not create store file: %w", err)
	}
	// replacing file keeps permission of the original.
	if finfo, err := os.Stat(fpath); err == nil {
		_ = tmp.Chmod(finfo.Mode().Perm())
	} else {
		_ = tmp.Chmod(0644)
	}
	return &atomicFile{tmp: tmp, target: fpath}, nil
}

func (osfs *OSFileSystem) Remove(fpath string) error {
	return os.Remove(fpath)
}

func (osfs *OSFileSystem) Stat(fpath string) (fs.FileInfo, error) {
	return os.Stat(fpath)
}

// Implement fs.FS interface
func (osfs *OSFileSystem) Open(fpath string) (fs.File, error) {
	ospath := filepath.FromSlash(fpath)
	r, err := osfs.Load(ospath)
	if err != nil {
		return nil, err
	}

	if file, ok := r.(fs.File); ok {
		return file, nil
	} else {
		// This case should not be happened but handle it as safety.
		r.Close()
		return nil, &fs.PathError{Op: "open", Path: ospath, Err: fmt.Errorf("not supported")}
	}
}

// atomicFile writes into tmp and renames it to target on Close.
// The first write error sticks; Close then discards tmp and reports it.
type atomicFile struct {
	tmp    *os.File
	target string
	err    error
	done   bool
}

func (af *atomicFile) Write(p []byte) (int, error) {
	if af.err != nil {
		return 0, af.err
	}
	if af.done {
		return 0, fs.ErrClosed
	}
	n, err := af.tmp.Write(p)
	af.err = err
	return n, err
}

func (af *atomicFile) Close() error {
	if af.done {
		return af.err
	}
	af.done = true

	name := af.tmp.Name()
	if af.err == nil {
		af.err = af.tmp.Sync()
	}
	if err := af.tmp.Close(); af.err == nil {
		af.err = err
	}
	if af.err == nil {
		af.err = os.Rename(name, af.target)
	}
	if af.err != nil {
		os.Remove(name)
		return fmt.Errorf("can not replace %s: %w", af.target, af.err)
	}
	return nil
}
