package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/mzki/pluto/app/config"
)

var testFlagSet *flag.FlagSet

func init() {
	clearAllFlag()
}

func clearAllFlag() {
	testFlagSet = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
}

func setFlag(name, value string) error {
	return testFlagSet.Set(name, value)
}

func TestOverwriteFlag(t *testing.T) {
	testcases := []struct {
		FlagName  string
		FlagValue string
		Equals    func(*config.Config, interface{}) bool
	}{
		{flagNameLogFile, "<nolog>", func(conf *config.Config, v interface{}) bool {
			return conf.LogFile == v.(string)
		}},
		{flagNameLogLevel, "<nolevel>", func(conf *config.Config, v interface{}) bool {
			return conf.LogLevel == v.(string)
		}},
		{flagNameLogLimit, "1024", func(conf *config.Config, v interface{}) bool {
			i, err := strconv.ParseInt(v.(string), 10, 64)
			if err != nil {
				return false
			}
			return conf.LogLimitMegaByte == i
		}},
		{flagNameSaveDir, "/saves", func(conf *config.Config, v interface{}) bool {
			return conf.SaveDir == v.(string)
		}},
		{flagNameChecksum, "crc32", func(conf *config.Config, v interface{}) bool {
			return conf.Checksum == v.(string)
		}},
		{flagNameNoBackup, "true", func(conf *config.Config, v interface{}) bool {
			return !conf.BackupEnabled
		}},
	}
	for _, test := range testcases {
		clearAllFlag()

		if err := parseFlags(testFlagSet, []string{}); err != nil {
			t.Fatal(err)
		}
		// set flag should be after flag.Parse()
		if err := setFlag(test.FlagName, test.FlagValue); err != nil {
			t.Fatal(err)
		}

		conf, err := loadConfigOrDefault(filepath.Join(t.TempDir(), config.ConfigFile))
		if err != nil {
			t.Fatal(err)
		}
		if err := overwriteConfigByFlag(conf, testFlagSet); err != nil {
			t.Fatal(err)
		}

		if ok := test.Equals(conf, test.FlagValue); !ok {
			t.Errorf("flag %v: not overwritten by flag value, expect: %v, got: %v", test.FlagName, test.FlagValue, conf)
		}
	}
}

func TestUnsetFlagKeepsConfig(t *testing.T) {
	clearAllFlag()
	if err := parseFlags(testFlagSet, []string{}); err != nil {
		t.Fatal(err)
	}
	conf := config.NewConfig("/from/file")
	if err := overwriteConfigByFlag(conf, testFlagSet); err != nil {
		t.Fatal(err)
	}
	if conf.SaveDir != "/from/file" {
		t.Errorf("savedir overwritten by default flag value: %v", conf.SaveDir)
	}
}

func TestOverwriteBadChecksum(t *testing.T) {
	clearAllFlag()
	if err := parseFlags(testFlagSet, []string{"-" + flagNameChecksum, "md5"}); err != nil {
		t.Fatal(err)
	}
	conf := config.NewConfig("")
	if err := overwriteConfigByFlag(conf, testFlagSet); err == nil {
		t.Error("unknown checksum accepted")
	}
	if conf.Checksum != config.DefaultChecksum {
		t.Errorf("checksum changed: %v", conf.Checksum)
	}
}

func TestLoadConfigOrDefaultWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), config.ConfigFile)
	if _, err := loadConfigOrDefault(file); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		t.Error("default config is not written")
	}
}

func TestMainApp(t *testing.T) {
	t.Skip("It is for debug purpose")
	main()
}
