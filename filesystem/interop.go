package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
)

// ErrReadOnly is returned by Store of a FileSystem made from a read only fs.FS.
var ErrReadOnly = errors.New("filesystem: read only")

// InteropFileSystem adapts fs.FS, such as embed.FS or fstest.MapFS,
// to FileSystem. Store is supported only when Backend is also a FileSystem.
type InteropFileSystem struct {
	Backend fs.FS
}

// FromFS converts fs.FS interface into FileSystem interface.
func FromFS(fsys fs.FS) FileSystem {
	return &InteropFileSystem{Backend: fsys}
}

func fsPath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

func (ifs *InteropFileSystem) Load(path string) (io.ReadCloser, error) {
	return ifs.Backend.Open(fsPath(path))
}

func (ifs *InteropFileSystem) Store(path string) (io.WriteCloser, error) {
	if fsystem, ok := ifs.Backend.(FileSystem); ok {
		return fsystem.Store(fsPath(path))
	}
	return nil, &fs.PathError{Op: "store", Path: path, Err: ErrReadOnly}
}

func (ifs *InteropFileSystem) Exist(path string) bool {
	_, err := fs.Stat(ifs.Backend, fsPath(path))
	return err == nil
}

// Implement fs.FS interface
func (ifs *InteropFileSystem) Open(path string) (fs.File, error) {
	return ifs.Backend.Open(fsPath(path))
}
