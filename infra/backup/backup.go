// Package backup keeps zstd compressed copies of save files.
//
// A backup of Profile1.sav is named Profile1.sav.<UTC time>.zst in the
// backup directory, so that names sort in the order they were taken.
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/util/log"
)

const (
	Ext = ".zst"

	// timeLayout sorts lexically in time order.
	timeLayout = "20060102T150405.000000000Z"

	DefaultKeep = 5
)

// ErrNoSource is returned when the file to back up does not exist.
var ErrNoSource = errors.New("backup: source not found")

// Config is a backup setting.
type Config struct {
	Dir   string `toml:"dir"`   // empty means "backup" next to the save.
	Keep  int    `toml:"keep"`  // number of backups per save, 0 or less means DefaultKeep.
	Level int    `toml:"level"` // zstd level, 1 fastest to 4 best.
}

// Entry is a backup found in the backup directory.
type Entry struct {
	Path   string
	Source string // base name of the backed up save.
	Time   time.Time
}

// Store takes, lists, prunes and restores backups.
type Store struct {
	Config
	FS filesystem.FileSystem
	// Codec validates a backup before it is restored.
	Codec savefile.Codec

	// Now is used to name backups. time.Now when nil.
	Now func() time.Time
}

func NewStore(conf Config) *Store {
	return &Store{Config: conf, FS: filesystem.Default}
}

func (s *Store) dirOf(savePath string) string {
	if s.Dir != "" {
		return s.Dir
	}
	return filepath.Join(filepath.Dir(savePath), "backup")
}

func (s *Store) keep() int {
	if s.Keep <= 0 {
		return DefaultKeep
	}
	return s.Keep
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) level() zstd.EncoderLevel {
	if s.Level <= 0 {
		return zstd.SpeedDefault
	}
	return zstd.EncoderLevelFromZstd(s.Level)
}

// Take compresses savePath into the backup directory and prunes old
// backups of the same save. It returns the path of the new backup.
func (s *Store) Take(savePath string) (string, error) {
	p, err := filesystem.ReadFile(s.FS, savePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNoSource, savePath)
	} else if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(s.level()))
	if err != nil {
		return "", fmt.Errorf("failed to create zstd writer: %w", err)
	}
	compressed := enc.EncodeAll(p, make([]byte, 0, len(p)/2))
	enc.Close()

	name := filepath.Base(savePath) + "." + s.now().UTC().Format(timeLayout) + Ext
	dst := filepath.Join(s.dirOf(savePath), name)
	if err := filesystem.WriteFile(s.FS, dst, compressed); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	log.Debugf("backup: %s -> %s (%d -> %d bytes)", savePath, dst, len(p), len(compressed))

	if _, err := s.Prune(savePath); err != nil {
		log.Warnf("backup: prune failed: %v", err)
	}
	return dst, nil
}

// List returns backups of savePath, newest first.
func (s *Store) List(savePath string) ([]Entry, error) {
	base := filepath.Base(savePath)
	pattern := filepath.Join(s.dirOf(savePath), globEscape(base)+".*"+Ext)
	matches, err := filesystem.GlobFS(s.FS, pattern)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), base+"."), Ext)
		t, err := time.Parse(timeLayout, stamp)
		if err != nil {
			log.Debugf("backup: skip %s, %v", m, err)
			continue
		}
		entries = append(entries, Entry{Path: m, Source: base, Time: t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Time.After(entries[j].Time) })
	return entries, nil
}

// Prune removes backups of savePath beyond Keep, oldest first.
// It returns the removed paths.
func (s *Store) Prune(savePath string) ([]string, error) {
	entries, err := s.List(savePath)
	if err != nil {
		return nil, err
	}
	if len(entries) <= s.keep() {
		return nil, nil
	}
	var removed []string
	for _, e := range entries[s.keep():] {
		if err := filesystem.RemoveFS(s.FS, e.Path); err != nil {
			return removed, err
		}
		removed = append(removed, e.Path)
	}
	return removed, nil
}

// Read decompresses a backup.
func (s *Store) Read(backupPath string) ([]byte, error) {
	compressed, err := filesystem.ReadFile(s.FS, backupPath)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()
	p, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("backup: %s: %w", backupPath, err)
	}
	return p, nil
}

// Restore replaces savePath with the content of backupPath.
// The backup must decode as a save file. The current savePath, if any,
// is backed up first so that a restore can be undone.
func (s *Store) Restore(backupPath, savePath string) error {
	p, err := s.Read(backupPath)
	if err != nil {
		return err
	}
	if _, err := s.Codec.Decode(p); err != nil {
		return fmt.Errorf("backup: %s is not a valid save: %w", backupPath, err)
	}
	if s.FS.Exist(savePath) {
		if _, err := s.Take(savePath); err != nil {
			return err
		}
	}
	if err := filesystem.WriteFile(s.FS, savePath, p); err != nil {
		return fmt.Errorf("%w: %s: %v", savefile.ErrIoWrite, savePath, err)
	}
	log.Debugf("backup: restored %s from %s", savePath, backupPath)
	return nil
}

func globEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)
	return r.Replace(s)
}
