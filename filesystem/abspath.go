package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AbsPathFileSystem completes absolute path for every file access.
// Relative paths are joined to CurrentDir, or made absolute by filepath.Abs
// when CurrentDir is empty. A leading "~" in CurrentDir or in the accessed
// path is expanded to the user home directory, so that a configured save
// directory such as "~/Documents/Saved Games/Hades" works as is.
// The Backend is used to access File API, and Desktop is used as Backend when
// it is nil.
type AbsPathFileSystem struct {
	CurrentDir string
	Backend    FileSystem
}

// SaveDir returns an AbsPathFileSystem rooted at dir.
func SaveDir(dir string) *AbsPathFileSystem {
	return &AbsPathFileSystem{CurrentDir: dir}
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}

// ResolvePath complete parent directory path to fpath when fpath is a relative path.
// It returns fpath itself when fpath is already absolute path.
func (absfs *AbsPathFileSystem) ResolvePath(fpath string) (string, error) {
	fpath, err := expandHome(fpath)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(fpath) {
		return filepath.Clean(fpath), nil
	}

	cur, err := expandHome(absfs.CurrentDir)
	if err != nil {
		return "", err
	}
	if cur == "" {
		return filepath.Abs(fpath)
	} else if filepath.IsAbs(cur) {
		return filepath.Clean(filepath.Join(cur, fpath)), nil
	} else {
		return "", fmt.Errorf("AbsPathFileSystem: CurrentDir is not absolute path: %s", absfs.CurrentDir)
	}
}

func (absfs *AbsPathFileSystem) mustBackend() FileSystem {
	if absfs.Backend == nil {
		absfs.Backend = Desktop
	}
	return absfs.Backend
}

func (absfs *AbsPathFileSystem) Load(fpath string) (reader io.ReadCloser, err error) {
	fpath, err = absfs.ResolvePath(fpath)
	if err != nil {
		return nil, fmt.Errorf("AbsPathFileSystem.Load() error: %w", err)
	}
	return absfs.mustBackend().Load(fpath)
}

func (absfs *AbsPathFileSystem) Exist(fpath string) bool {
	fpath, err := absfs.ResolvePath(fpath)
	if err != nil {
		return false
	}
	return absfs.mustBackend().Exist(fpath)
}

func (absfs *AbsPathFileSystem) Store(fpath string) (writer io.WriteCloser, err error) {
	fpath, err = absfs.ResolvePath(fpath)
	if err != nil {
		return nil, fmt.Errorf("AbsPathFileSystem.Store() error: %w", err)
	}
	return absfs.mustBackend().Store(fpath)
}

func (absfs *AbsPathFileSystem) Remove(fpath string) error {
	fpath, err := absfs.ResolvePath(fpath)
	if err != nil {
		return fmt.Errorf("AbsPathFileSystem.Remove() error: %w", err)
	}
	return RemoveFS(absfs.mustBackend(), fpath)
}

func (absfs *AbsPathFileSystem) Stat(fpath string) (fs.FileInfo, error) {
	fpath, err := absfs.ResolvePath(fpath)
	if err != nil {
		return nil, fmt.Errorf("AbsPathFileSystem.Stat() error: %w", err)
	}
	return StatFS(absfs.mustBackend(), fpath)
}
