package savefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/mzki/pluto/filesystem"
	mock_filesystem "github.com/mzki/pluto/filesystem/mock"
	"github.com/mzki/pluto/variant"
)

type failingWriter struct {
	written int
	limit   int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.limit {
		n := w.limit - w.written
		w.written = w.limit
		return n, errDiskFull
	}
	w.written += len(p)
	return len(p), nil
}

func (w *failingWriter) Close() error { return nil }

func TestSaveIoWriteLeavesOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Profile1.sav")
	if err := Save(newTestSave(t, Version17), path); err != nil {
		t.Fatal(err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name  string
		setup func(m *mock_filesystem.MockFileSystem)
	}{
		{"store fails", func(m *mock_filesystem.MockFileSystem) {
			m.EXPECT().Store(path).Return(nil, errors.New("permission denied"))
		}},
		{"write fails", func(m *mock_filesystem.MockFileSystem) {
			m.EXPECT().Store(path).Return(&failingWriter{limit: 10}, nil)
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			m := mock_filesystem.NewMockFileSystem(ctrl)
			tc.setup(m)

			sf, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := sf.SetDarkness(1); err != nil {
				t.Fatal(err)
			}
			if err := SaveFS(m, sf, path); !errors.Is(err, ErrIoWrite) {
				t.Errorf("got %v", err)
			}

			after, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(after, original) {
				t.Error("original file modified")
			}
		})
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Profile2.sav")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := SaveFS(filesystem.Desktop, newTestSave(t, Version16), path); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary file left: %v", entries)
	}
	finfo, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if finfo.Mode().Perm() != 0600 {
		t.Errorf("permission: got %v", finfo.Mode().Perm())
	}
	if _, err := LoadFS(filesystem.Desktop, path); err != nil {
		t.Errorf("reload: %v", err)
	}
}

func TestLoadFSReportsCorruptPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Profile3.sav")
	if err := os.WriteFile(path, []byte("SGB1\x10\x00\x00\x00"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFS(filesystem.Desktop, path)
	if !errors.Is(err, ErrUnexpectedEndOfData) {
		t.Errorf("got %v", err)
	}
}

func TestSaveRejectsTooDeepLuaState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Profile1.sav")
	if err := Save(newTestSave(t, Version17), path); err != nil {
		t.Fatal(err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	sf := newTestSave(t, Version17)
	cur := sf.LuaState
	for i := 0; i < variant.MaxDepth+1; i++ {
		sub := variant.NewTable()
		cur.Replace("deeper", variant.TableValue(sub))
		cur = sub
	}
	if err := Save(sf, path); !errors.Is(err, variant.ErrTooDeep) {
		t.Fatalf("Save() = %v, want %v", err, variant.ErrTooDeep)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(original, after) {
		t.Error("unloadable save replaced the original")
	}
}
