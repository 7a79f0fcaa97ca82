// Package repo manages the save files of a save directory: the game keeps
// one file per profile slot, named Profile1.sav to Profile4.sav.
package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/infra/backup"
	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/util/errutil"
	"github.com/mzki/pluto/util/log"
)

const (
	defaultSavePrefix = "Profile"
	defaultSaveExt    = ".sav"

	DefaultCacheSize = 16
)

func defaultFileOf(No int) string {
	return defaultSavePrefix + strconv.Itoa(No) + defaultSaveExt
}

var slotPattern = regexp.MustCompile(`^` + defaultSavePrefix + `(\d+)` + regexp.QuoteMeta(defaultSaveExt) + `$`)

// slotOf returns the slot number of a profile file name, or 0.
func slotOf(path string) int {
	m := slotPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// Config for FileRepository.
type Config struct {
	SaveFileDir string `toml:"savefile_dir"`
	CacheSize   int    `toml:"cache_size"` // 0 or less means DefaultCacheSize.
}

func (c Config) savePath(file string) string {
	return filepath.Join(c.SaveFileDir, file)
}

// Summary is a short description of a save file.
type Summary struct {
	Path     string
	Slot     int // 0 if the file name is not a profile slot.
	Version  uint32
	Runs     uint32
	Location string
	HellMode bool
	Darkness float64 // 0 when the field is absent.
	ModTime  time.Time
	Size     int64
}

// FileRepository loads and saves profile slots. Saving takes a backup of
// the replaced file when Backup is set. Summaries are cached by path,
// modification time and size.
// concurrent use is OK.
type FileRepository struct {
	config Config
	fs     filesystem.FileSystem
	Backup *backup.Store
	// Codec reads and writes the saves. The zero value stamps Adler32.
	Codec savefile.Codec

	mu    sync.Mutex
	cache *lru.Cache // under mutex because cache is not safe for concurrently.
}

func NewFileRepository(config Config, fsys filesystem.FileSystem) *FileRepository {
	size := config.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &FileRepository{
		config: config,
		fs:     fsys,
		cache:  lru.New(size),
	}
}

// Dir returns the save directory.
func (repo *FileRepository) Dir() string {
	return repo.config.SaveFileDir
}

// Path returns file path of the slot id.
func (repo *FileRepository) Path(id int) string {
	return repo.config.savePath(defaultFileOf(id))
}

func (repo *FileRepository) Exist(ctx context.Context, id int) bool {
	// context is not used.
	return repo.fs.Exist(repo.Path(id))
}

// Load loads save file of the slot id.
func (repo *FileRepository) Load(ctx context.Context, id int) (*savefile.SaveFile, error) {
	// context is not used.
	return repo.Codec.LoadFS(repo.fs, repo.Path(id))
}

// Save writes sf into the slot id.
func (repo *FileRepository) Save(ctx context.Context, id int, sf *savefile.SaveFile) error {
	return repo.SavePath(ctx, repo.Path(id), sf)
}

// SavePath writes sf into path, taking a backup of the current file first.
// A failed backup aborts the save.
func (repo *FileRepository) SavePath(ctx context.Context, path string, sf *savefile.SaveFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if repo.Backup != nil && repo.fs.Exist(path) {
		dst, err := repo.Backup.Take(path)
		if err != nil {
			return fmt.Errorf("repo: backup before save: %w", err)
		}
		log.Debugf("repo: backup %s", dst)
	}
	return repo.Codec.SaveFS(repo.fs, sf, path)
}

// LoadMetaList returns summaries of the slots ids in the order.
func (repo *FileRepository) LoadMetaList(ctx context.Context, ids ...int) ([]*Summary, error) {
	metalist := make([]*Summary, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := repo.Path(id)
		sum, err := repo.Summarize(path)
		if err != nil {
			return nil, fmt.Errorf("repo: failed to fetch meta data for %s, err: %w", path, err)
		}
		metalist = append(metalist, sum)
	}
	return metalist, nil
}

// List summarizes every *.sav file in the save directory sorted by path.
// Files which fail to load are skipped and reported in the returned error,
// together with the summaries of the others.
func (repo *FileRepository) List(ctx context.Context) ([]*Summary, error) {
	matches, err := filesystem.GlobFS(repo.fs, repo.config.savePath("*"+defaultSaveExt))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	merr := errutil.NewMultiError()
	list := make([]*Summary, 0, len(matches))
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			merr.Add(err)
			break
		}
		sum, err := repo.Summarize(path)
		if err != nil {
			merr.Add(err)
			continue
		}
		list = append(list, sum)
	}
	return list, merr.Err()
}

type cacheKey struct {
	path    string
	modTime int64
	size    int64
}

// Summarize loads path and summarizes it. The result is cached while
// the file keeps its modification time and size.
func (repo *FileRepository) Summarize(path string) (*Summary, error) {
	var key cacheKey
	cacheable := false
	if finfo, err := filesystem.StatFS(repo.fs, path); err == nil {
		key = cacheKey{path, finfo.ModTime().UnixNano(), finfo.Size()}
		cacheable = true
		if sum, ok := repo.cached(key); ok {
			return sum, nil
		}
	}

	sf, err := repo.Codec.LoadFS(repo.fs, path)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		Path:     path,
		Slot:     slotOf(path),
		Version:  sf.Version,
		Runs:     sf.Runs,
		Location: sf.Location,
		HellMode: sf.HellModeEnabled(),
	}
	if d, err := sf.Darkness(); err == nil {
		sum.Darkness = d
	}
	if cacheable {
		sum.ModTime = time.Unix(0, key.modTime)
		sum.Size = key.size
		repo.mu.Lock()
		repo.cache.Add(key, sum)
		repo.mu.Unlock()
	}
	return sum, nil
}

func (repo *FileRepository) cached(key cacheKey) (*Summary, bool) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	v, ok := repo.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Summary), true
}
