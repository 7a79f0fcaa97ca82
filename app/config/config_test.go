package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mzki/pluto/infra/backup"
	"github.com/mzki/pluto/infra/script"
	"github.com/mzki/pluto/integrity"
	"github.com/mzki/pluto/util/log"
)

func TestLoadConfigOrDefault(t *testing.T) {
	confGolden := &Config{
		LogFile:          "pluto.log",
		LogLevel:         LogLevelDebug,
		LogLimitMegaByte: 5,
		SaveDir:          "/games/hades",
		Checksum:         "crc32",
		SummaryCacheSize: 4,
		BackupEnabled:    false,
		Backup:           backup.Config{Dir: "/games/hades/bk", Keep: 9, Level: 3},
		Script: script.Config{
			LoadDir:             "/games/scripts",
			CallStackSize:       128,
			RegistrySize:        4096,
			IncludeGoStackTrace: true,
			TimeoutSecond:       2,
		},
	}

	confGoldenLack := NewConfig("/games/hades")
	confGoldenLack.LogLevel = LogLevelWarn
	confGoldenLack.Script.LoadDir = "/games/scripts"

	tempDir := t.TempDir()

	type args struct {
		file string
	}
	tests := []struct {
		name    string
		args    args
		want    *Config
		wantErr bool
		err     error
	}{
		{"exist config", args{filepath.Join("./testdata", ConfigFile)}, confGolden, false, nil},
		{"exist config but lack of some value", args{filepath.Join("./testdata", ConfigFile+".lack")}, confGoldenLack, false, nil},
		{"not exist config", args{filepath.Join(tempDir, ConfigFile)}, NewConfig(DefaultSaveDir), true, ErrDefaultConfigGenerated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadConfigOrDefault(tt.args.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfigOrDefault() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("LoadConfigOrDefault() error = %v, want %v", err, tt.err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadConfigOrDefault() = %+v, want %+v", got, tt.want)
			}
		})
	}

	// generated default is loaded back as is.
	got, err := LoadConfigOrDefault(filepath.Join(tempDir, ConfigFile))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, NewConfig(DefaultSaveDir)) {
		t.Errorf("reloaded default = %+v", got)
	}
}

func TestLoadConfigBadChecksum(t *testing.T) {
	_, err := LoadConfigOrDefault(filepath.Join("./testdata", ConfigFile+".badsum"))
	if err == nil || !strings.Contains(err.Error(), "md5") {
		t.Errorf("got %v", err)
	}
}

func TestChecksumAlgorithm(t *testing.T) {
	c := NewConfig("")
	if a, err := c.ChecksumAlgorithm(); err != nil || a != integrity.Adler32 {
		t.Errorf("default: got %v, %v", a, err)
	}
	c.Checksum = "crc32"
	if a, err := c.ChecksumAlgorithm(); err != nil || a != integrity.CRC32 {
		t.Errorf("crc32: got %v, %v", a, err)
	}
}

func TestSetupLogConfig(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	defer log.SetLevel(log.Level())

	logfile := filepath.Join(t.TempDir(), "pluto.log")
	c := NewConfig("")
	c.LogFile = logfile
	c.LogLevel = LogLevelDebug
	closeFunc, err := SetupLogConfig(c)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hello log file")
	closeFunc()

	content, err := os.ReadFile(logfile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "hello log file") {
		t.Errorf("log file content: %q", content)
	}
	if log.Level() != log.DebugLevel {
		t.Errorf("level: got %d", log.Level())
	}
}
