package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/mzki/pluto/util/log"
)

//go:generate mockgen -destination=./mock/mock_filesystem.go . FileSystem

// abstraction for the filesystem.
type FileSystem interface {
	Loader

	// Store creates data store entry. Written content replaces the entry
	// at filepath only when Close returns nil.
	Store(filepath string) (io.WriteCloser, error)
}

// path resolver resolves file path on the filesystem.
type PathResolver interface {
	ResolvePath(path string) (string, error)
}

// NopPathResolver implements PathResolver interface.
type NopPathResolver struct{}

// ResolvePath returns path as is and no error.
func (NopPathResolver) ResolvePath(path string) (string, error) { return path, nil }

// Remover is implemented by FileSystem which can delete entries.
type Remover interface {
	Remove(filepath string) error
}

// Stater is implemented by FileSystem which reports file information.
type Stater interface {
	Stat(filepath string) (fs.FileInfo, error)
}

// Loader is a file loader which searches file path and
// return its content as io.Reader.
type Loader interface {
	// Load loads content specified by the path.
	// It returns io.Reader for the loaded content with no error,
	// or returns nil with file loading error. Missing file error
	// satisfies errors.Is(err, fs.ErrNotExist).
	Load(filepath string) (reader io.ReadCloser, err error)

	// Exist checks whether given filepath exist.
	// It returns true when the filepath exists, otherwise return false.
	Exist(filepath string) bool
}

var (
	// Default is a default FileSystem to be used by exported functions.
	Default FileSystem = Desktop
)

func Load(filepath string) (reader io.ReadCloser, err error) {
	log.Debugf("FileSystem.Load: %s", filepath)
	return Default.Load(filepath)
}

func Exist(filepath string) bool {
	return Default.Exist(filepath)
}

func Store(filepath string) (io.WriteCloser, error) {
	log.Debugf("FileSystem.Store: %s", filepath)
	return Default.Store(filepath)
}

// Remove deletes filepath using Default.
func Remove(filepath string) error {
	log.Debugf("FileSystem.Remove: %s", filepath)
	return RemoveFS(Default, filepath)
}

// RemoveFS deletes filepath when fs implements Remover.
func RemoveFS(fsys FileSystem, filepath string) error {
	if rm, ok := fsys.(Remover); ok {
		return rm.Remove(filepath)
	}
	return fmt.Errorf("filesystem: %T can not remove %s", fsys, filepath)
}

// StatFS returns file information of filepath when fs implements Stater.
func StatFS(fsys FileSystem, filepath string) (fs.FileInfo, error) {
	if st, ok := fsys.(Stater); ok {
		return st.Stat(filepath)
	}
	return nil, fmt.Errorf("filesystem: %T can not stat %s", fsys, filepath)
}

// ReadFile loads whole content of filepath from fs.
func ReadFile(fs Loader, filepath string) ([]byte, error) {
	r, err := fs.Load(filepath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// WriteFile stores p into filepath on fs.
func WriteFile(fs FileSystem, filepath string, p []byte) error {
	w, err := fs.Store(filepath)
	if err != nil {
		return err
	}
	if _, err := w.Write(p); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Glob is wrap function for filepath.Glob with use filesystem.Default
func Glob(pattern string) ([]string, error) {
	log.Debugf("FileSystem.Glob: %s", pattern)
	return GlobFS(Default, pattern)
}

// Glob is wrap function for filepath.Glob with use filesystem.FileSystem
// if FileSystem also implements PathResolver, use it to resolve path.
func GlobFS(fs FileSystem, pattern string) ([]string, error) {
	var err error
	pattern, err = ResolvePathFS(fs, pattern)
	if err != nil {
		return nil, err
	}
	return filepath.Glob(pattern)
}

// ResolvePath resolve file path under filesystem.Default.
func ResolvePath(path string) (string, error) {
	return ResolvePathFS(Default, path)
}

// ResolvePathFS resolve file path under given FileSystem.
// if FileSystem also implements PathResolver, use it to resolve path,
// otherwise returns path itself.
func ResolvePathFS(fs FileSystem, path string) (string, error) {
	if pr, ok := fs.(PathResolver); ok {
		return pr.ResolvePath(path)
	}
	return path, nil
}

// OpenWatcherPR creates Watcher interface from given PathResolver.
func OpenWatcherPR(pr PathResolver) (Watcher, error) {
	return newWatcher(pr)
}
