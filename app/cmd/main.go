package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/mzki/pluto/app"
	"github.com/mzki/pluto/app/config"
	"github.com/mzki/pluto/infra/buildinfo"
)

const Title = "pluto"

const (
	flagNameConfig   = "config"
	flagNameLogFile  = "logfile"
	flagNameLogLevel = "loglevel"
	flagNameLogLimit = "loglimit"
	flagNameSaveDir  = "savedir"
	flagNameChecksum = "checksum"
	flagNameNoBackup = "nobackup"
	flagNameVersion  = "version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	parseFlags(flagSet, args)

	if showVersion, _ := strconv.ParseBool(flagSet.Lookup(flagNameVersion).Value.String()); showVersion {
		fmt.Println(Title, buildinfo.Get())
		return app.ExitOK
	}

	appConf, err := loadConfigOrDefault(flagSet.Lookup(flagNameConfig).Value.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return app.ExitError
	}
	if err := overwriteConfigByFlag(appConf, flagSet); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return app.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return app.Main(ctx, appConf, flagSet.Args())
}

func loadConfigOrDefault(file string) (*config.Config, error) {
	appConf, err := config.LoadConfigOrDefault(file)
	switch {
	case errors.Is(err, config.ErrDefaultConfigGenerated):
		fmt.Fprintf(os.Stderr, "Config file (%v) does not exist. Use default config and write it to file.\n", file)
		return appConf, nil
	case err != nil:
		return nil, fmt.Errorf("config file (%v): %w", file, err)
	default:
		return appConf, nil
	}
}

// parseFlags defines flags on flagSet and parses args.
// the flag values are applied to a config by overwriteConfigByFlag.
func parseFlags(flagSet *flag.FlagSet, args []string) error {
	flagSet.Usage = func() { printHelp(flagSet) }

	flagSet.String(flagNameConfig, config.ConfigFile, "`config-file` to load. default config is written to it when it does not exist.")
	flagSet.String(flagNameLogFile, config.DefaultLogFile, "`output-file` to write log. { stdout | stderr } is OK.")
	flagSet.String(flagNameLogLevel, config.DefaultLogLevel, "`level` = { warn | info | debug }.\n\t"+
		"info outputs information level log too, and debug also outputs debug level log.")
	flagSet.Int64(flagNameLogLimit, config.DefaultLogLimitMegaByte, "`megabytes` of log output at most. 0 is no limit.")
	flagSet.String(flagNameSaveDir, config.DefaultSaveDir, "`directory` of the game's save files.")
	flagSet.String(flagNameChecksum, config.DefaultChecksum, "checksum `algorithm` of save files, { adler32 | crc32 }.")
	flagSet.Bool(flagNameNoBackup, false, "do not take a backup before a save file is overwritten.")
	flagSet.Bool(flagNameVersion, false, "show version info and quit.")

	return flagSet.Parse(args)
}

// overwriteConfigByFlag applies flags explicitly set in the command line
// to conf. the others keep the values loaded from the config file.
func overwriteConfigByFlag(conf *config.Config, flagSet *flag.FlagSet) error {
	var err error
	flagSet.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case flagNameLogFile:
			conf.LogFile = v
		case flagNameLogLevel:
			conf.LogLevel = v
		case flagNameLogLimit:
			var limit int64
			if limit, err = strconv.ParseInt(v, 10, 64); err == nil {
				conf.LogLimitMegaByte = limit
			}
		case flagNameSaveDir:
			conf.SaveDir = v
		case flagNameChecksum:
			if _, err = (&config.Config{Checksum: v}).ChecksumAlgorithm(); err == nil {
				conf.Checksum = v
			}
		case flagNameNoBackup:
			var noBackup bool
			if noBackup, err = strconv.ParseBool(v); err == nil && noBackup {
				conf.BackupEnabled = false
			}
		}
	})
	if err != nil {
		return fmt.Errorf("flag: %w", err)
	}
	return nil
}

func printHelp(flagSet *flag.FlagSet) {
	progName := flagSet.Name()
	fmt.Fprintf(flagSet.Output(), `Usage: %s [options] <command> [arguments]

  %s reads and edits Hades save files. Run '%s help' for the commands.

  any flag values same as '%s' file overwrites the values
  loaded from the file.

`, progName, progName, progName, config.ConfigFile)
	flagSet.PrintDefaults()
}
