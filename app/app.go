// Package app is a headless shell over the save file codec: it resolves
// save files from the configured save directory, turns command-line text
// into typed values and renders results as aligned text.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/mzki/pluto/app/config"
	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/infra/backup"
	"github.com/mzki/pluto/infra/repo"
	"github.com/mzki/pluto/integrity"
	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/util/log"
)

// ErrUsage is returned for a wrong command line. The usage of the
// command has been printed when it is returned.
var ErrUsage = errors.New("usage error")

// App runs shell commands against the save files of a configuration.
// Construct it by New.
type App struct {
	conf    *config.Config
	fs      *filesystem.AbsPathFileSystem
	repo    *repo.FileRepository
	backups *backup.Store
	codec   savefile.Codec

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New builds App from appConf. appConf nil is OK, use default if it is.
func New(appConf *config.Config) (*App, error) {
	if appConf == nil {
		appConf = config.NewConfig(config.DefaultSaveDir)
	}
	alg, err := appConf.ChecksumAlgorithm()
	if err != nil {
		return nil, err
	}
	cd := savefile.Codec{Guard: integrity.Guard{Algorithm: alg}}

	// resolve "~" and a relative directory against the working directory.
	saveDir, err := (&filesystem.AbsPathFileSystem{}).ResolvePath(appConf.SaveDir)
	if err != nil {
		return nil, fmt.Errorf("save directory %s: %w", appConf.SaveDir, err)
	}
	fsys := filesystem.SaveDir(saveDir)

	store := backup.NewStore(appConf.Backup)
	store.FS = fsys
	store.Codec = cd

	r := repo.NewFileRepository(repo.Config{
		SaveFileDir: saveDir,
		CacheSize:   appConf.SummaryCacheSize,
	}, fsys)
	r.Codec = cd
	if appConf.BackupEnabled {
		r.Backup = store
	}
	log.Debugf("app: save directory %s, checksum %s", saveDir, alg.Name())

	return &App{
		conf:    appConf,
		fs:      fsys,
		repo:    r,
		backups: store,
		codec:   cd,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}, nil
}

type command struct {
	name    string
	args    string // argument synopsis shown in usage.
	summary string
	run     func(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error
	flags   func(fset *flag.FlagSet) // defines command flags, may be nil.
	nargs   [2]int                   // minimum and maximum number of arguments, -1 for no maximum.
}

var commands = map[string]*command{}

func register(cmd *command) {
	if _, dup := commands[cmd.name]; dup {
		panic("app: duplicate command " + cmd.name)
	}
	commands[cmd.name] = cmd
}

// Run executes a command line args, whose first element is the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return ErrUsage
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		a.printUsage()
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		names := make([]string, 0, len(commands))
		for n := range commands {
			names = append(names, n)
		}
		if cands := suggest(name, names); len(cands) > 0 {
			fmt.Fprintf(a.Stderr, "unknown command %q, did you mean %s?\n", name, quoteJoin(cands))
		} else {
			fmt.Fprintf(a.Stderr, "unknown command %q\n", name)
		}
		return ErrUsage
	}

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(a.Stderr)
	fset.Usage = func() {
		fmt.Fprintf(a.Stderr, "Usage: pluto %s %s\n\n  %s\n\n", cmd.name, cmd.args, cmd.summary)
		fset.PrintDefaults()
	}
	if cmd.flags != nil {
		cmd.flags(fset)
	}
	if err := fset.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return ErrUsage
	}
	if n := fset.NArg(); n < cmd.nargs[0] || (cmd.nargs[1] >= 0 && n > cmd.nargs[1]) {
		fset.Usage()
		return ErrUsage
	}

	log.Debugf("app: run %s %v", name, fset.Args())
	return cmd.run(a, ctx, fset, fset.Args())
}

func (a *App) printUsage() {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintf(a.Stderr, "Usage: pluto [options] <command> [arguments]\n\nCommands:\n")
	for _, n := range names {
		cmd := commands[n]
		fmt.Fprintf(a.Stderr, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(a.Stderr, "\n<save> is a profile slot number or a path to a save file.\n")
}

// savePath resolves a save argument: digits are a profile slot in the save
// directory, anything else is a file path.
func (a *App) savePath(arg string) (string, error) {
	if isSlot(arg) {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid profile slot: %s", arg)
		}
		return a.repo.Path(n), nil
	}
	return localPath(arg)
}

func isSlot(arg string) bool {
	if arg == "" {
		return false
	}
	for _, r := range arg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// localPath resolves a path given on the command line against the
// working directory, expanding "~".
func localPath(arg string) (string, error) {
	return (&filesystem.AbsPathFileSystem{}).ResolvePath(arg)
}

// load resolves arg and loads the save file.
func (a *App) load(arg string) (string, *savefile.SaveFile, error) {
	path, err := a.savePath(arg)
	if err != nil {
		return "", nil, err
	}
	sf, err := a.codec.LoadFS(a.fs, path)
	if err != nil {
		return path, nil, err
	}
	return path, sf, nil
}

// commit writes sf into path unless dryRun.
func (a *App) commit(ctx context.Context, path string, sf *savefile.SaveFile, dryRun bool) error {
	if dryRun {
		log.Infof("dry run, %s is not written", path)
		return nil
	}
	if err := a.repo.SavePath(ctx, path, sf); err != nil {
		return err
	}
	log.Infof("saved %s", path)
	return nil
}
