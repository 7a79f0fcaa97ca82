package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/infra/backup"
	"github.com/mzki/pluto/infra/repo"
	"github.com/mzki/pluto/infra/script"
	"github.com/mzki/pluto/infra/serialize/toml"
	"github.com/mzki/pluto/integrity"
	"github.com/mzki/pluto/util/log"
)

const (
	// default configuration file.
	ConfigFile = "pluto.conf"

	// where the game keeps its saves on Windows, under the user home.
	DefaultSaveDir = "~/Documents/Saved Games/Hades"

	LogFileStdOut  = "stdout" // specify log outputs to stdout
	LogFileStdErr  = "stderr" // specify log outputs to stderr
	DefaultLogFile = LogFileStdErr

	LogLevelWarn            = "warn"  // logging only warnings.
	LogLevelInfo            = "info"  // logging warnings and information.
	LogLevelDebug           = "debug" // logging all levels.
	DefaultLogLevel         = LogLevelInfo
	DefaultLogLimitMegaByte = 10 // 10 * 1000 * 1000 Bytes

	DefaultChecksum = "adler32"
)

// Configure for the Applicaltion.
// To build this, use NewConfig instead of struct constructor, Config{}.
type Config struct {
	LogFile          string `toml:"logfile"`
	LogLevel         string `toml:"loglevel"`
	LogLimitMegaByte int64  `toml:"loglimit_megabytes"`

	SaveDir string `toml:"savedir"` // directory of the game's save files. "~" is expanded.

	// checksum algorithm of the save files, adler32 or crc32.
	Checksum string `toml:"checksum"`

	// number of save summaries cached by list and watch.
	// 0 or negative value can be set and treated as default value.
	SummaryCacheSize int `toml:"summary_cache_size"`

	// take a backup before a save is overwritten.
	BackupEnabled bool          `toml:"backup_enabled"`
	Backup        backup.Config `toml:"backup"`

	Script script.Config `toml:"script"`
}

// return default App config. if saveDir is empty
// use default insteadly.
func NewConfig(saveDir string) *Config {
	if saveDir == "" {
		saveDir = DefaultSaveDir
	}
	return &Config{
		LogFile:          DefaultLogFile,
		LogLevel:         DefaultLogLevel,
		LogLimitMegaByte: DefaultLogLimitMegaByte,
		SaveDir:          saveDir,
		Checksum:         DefaultChecksum,
		SummaryCacheSize: repo.DefaultCacheSize,
		BackupEnabled:    true,
		Backup: backup.Config{
			Keep: backup.DefaultKeep,
		},
		Script: script.NewConfig(),
	}
}

// ChecksumAlgorithm returns integrity.Algorithm named by Checksum.
func (c *Config) ChecksumAlgorithm() (integrity.Algorithm, error) {
	if c.Checksum == "" {
		return integrity.Adler32, nil
	}
	return integrity.ByName(c.Checksum)
}

// ErrDefaultConfigGenerated implies that the specified config file is not found,
// and intead of that default config is generated and used.
var ErrDefaultConfigGenerated error = errors.New("default config generated")

// if config file exists load it and return.
// if not exists return default config and write it.
func LoadConfigOrDefault(file string) (*Config, error) {
	if !filesystem.Exist(file) {
		appConf := NewConfig(DefaultSaveDir)
		// write default config
		if err := toml.EncodeFile(file, appConf); err != nil {
			return nil, err
		}
		return appConf, ErrDefaultConfigGenerated
	}

	appConf := NewConfig(DefaultSaveDir) // default value will be remain when missing at decoded config.
	if err := toml.DecodeFile(file, appConf); err != nil {
		return nil, err
	}
	if _, err := appConf.ChecksumAlgorithm(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return appConf, nil
}

// set up log configuration and return finalize function with internal error.
// when returned error, the finalize function is nil and need not be called.
func SetupLogConfig(appConf *Config) (func(), error) {
	// set log level.
	level, err := log.ParseLevel(appConf.LogLevel)
	if err != nil {
		log.Warnf("unknown log level(%s). use 'info' level insteadly.", appConf.LogLevel)
	}
	log.SetLevel(level)

	// set log distination
	var (
		dstString string
		writer    io.Writer
		closeFunc func()
	)
	switch logfile := appConf.LogFile; logfile {
	case LogFileStdOut:
		dstString = "Stdout"
		writer = os.Stdout
		closeFunc = func() {}
	case LogFileStdErr, "":
		dstString = "Stderr"
		writer = os.Stderr
		closeFunc = func() {}
	default:
		dstString = logfile
		// a log file is appended to, unlike save files which are replaced.
		fp, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		writer = fp
		closeFunc = func() { fp.Close() }
	}
	logLimit := appConf.LogLimitMegaByte * 1000 * 1000
	if logLimit < 0 {
		logLimit = 0
	}
	log.SetOutput(log.LimitWriter(writer, logLimit))
	if err := testingLogOutput("log output sanity check..."); err != nil {
		closeFunc()
		return nil, err
	}
	log.Debugf("Output log to %s", dstString)

	return closeFunc, nil
}

func testingLogOutput(msg string) error {
	log.Debug(msg)
	err := log.Err()
	switch {
	case errors.Is(err, log.ErrOutputDiscardedByLevel):
	case errors.Is(err, io.EOF):
	case err == nil:
	default:
		return fmt.Errorf("log output error: %w", err)
	}
	return nil // normal operation
}
