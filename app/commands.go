package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/infra/archive"
	"github.com/mzki/pluto/infra/buildinfo"
	"github.com/mzki/pluto/infra/script"
	"github.com/mzki/pluto/infra/serialize/export"
	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/util/errutil"
	"github.com/mzki/pluto/util/log"
	"github.com/mzki/pluto/variant"
)

const flagDryRun = "n"

func dryRunFlag(fset *flag.FlagSet) {
	fset.Bool(flagDryRun, false, "do not write the save file.")
}

func isDryRun(fset *flag.FlagSet) bool {
	f := fset.Lookup(flagDryRun)
	if f == nil {
		return false
	}
	b, _ := strconv.ParseBool(f.Value.String())
	return b
}

func init() {
	register(&command{
		name: "show", args: "<save>", summary: "show header fields and currencies of a save.",
		nargs: [2]int{1, 1}, run: runShow,
	})
	register(&command{
		name: "get", args: "<save> <key.path>", summary: "print a value of the lua state.",
		nargs: [2]int{2, 2}, run: runGet,
	})
	register(&command{
		name: "set", args: "[-n] <save> <key.path> <value>", summary: "set a value of the lua state and save.",
		nargs: [2]int{3, 3}, run: runSet, flags: dryRunFlag,
	})
	register(&command{
		name: "reset", args: "[-n] <save>", summary: "clear gift and interaction records and save.",
		nargs: [2]int{1, 1}, run: runReset, flags: dryRunFlag,
	})
	register(&command{
		name: "export", args: "[-format json|msgpack] <save> [output]", summary: "write the lua state to a file, or stdout.",
		nargs: [2]int{1, 2}, run: runExport, flags: formatFlag,
	})
	register(&command{
		name: "import", args: "[-n] [-format json|msgpack] <save> <input>", summary: "replace the lua state by an exported file and save.",
		nargs: [2]int{2, 2}, run: runImport, flags: func(fset *flag.FlagSet) { formatFlag(fset); dryRunFlag(fset) },
	})
	register(&command{
		name: "script", args: "[-n] [-e source] <save> [script.lua]", summary: "run a lua script against the save and save.",
		nargs: [2]int{1, 2}, run: runScript, flags: func(fset *flag.FlagSet) {
			fset.String("e", "", "run `source` instead of a script file.")
			dryRunFlag(fset)
		},
	})
	register(&command{
		name: "list", args: "", summary: "list save files in the save directory.",
		nargs: [2]int{0, 0}, run: runList,
	})
	register(&command{
		name: "watch", args: "[save]", summary: "print a summary whenever a save file changes.",
		nargs: [2]int{0, 1}, run: runWatch,
	})
	register(&command{
		name: "backups", args: "<save>", summary: "list backups of a save, newest first.",
		nargs: [2]int{1, 1}, run: runBackups,
	})
	register(&command{
		name: "restore", args: "<save> <index|backup-file>", summary: "restore a save from a backup.",
		nargs: [2]int{2, 2}, run: runRestore,
	})
	register(&command{
		name: "archive", args: "<output.zip>", summary: "pack the saves of the save directory into a zip file.",
		nargs: [2]int{1, 1}, run: runArchive,
	})
	register(&command{
		name: "unarchive", args: "[-n] <input.zip>", summary: "write the saves of a zip file into the save directory.",
		nargs: [2]int{1, 1}, run: runUnarchive, flags: dryRunFlag,
	})
	register(&command{
		name: "version", args: "", summary: "print version.",
		nargs: [2]int{0, 0}, run: runVersion,
	})
}

func runShow(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	path, sf, err := a.load(args[0])
	if err != nil {
		return err
	}
	return writeSaveFile(a.Stdout, path, sf)
}

func runGet(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	_, sf, err := a.load(args[0])
	if err != nil {
		return err
	}
	v, err := lookupPath(sf.LuaState, args[1])
	if err != nil {
		return err
	}
	return writeVariant(a.Stdout, v)
}

func runSet(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	path, sf, err := a.load(args[0])
	if err != nil {
		return err
	}
	v, err := setPath(sf, args[1], args[2])
	if err != nil {
		return err
	}
	log.Infof("%s = %v (%v)", args[1], v, v.Kind())
	return a.commit(ctx, path, sf, isDryRun(fset))
}

func runReset(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	path, sf, err := a.load(args[0])
	if err != nil {
		return err
	}
	sf.ResetGiftRecord()
	log.Infof("records cleared: %s", strings.Join(savefile.RecordKeys, ", "))
	return a.commit(ctx, path, sf, isDryRun(fset))
}

func formatFlag(fset *flag.FlagSet) {
	fset.String("format", "", "`format` of the file, json or msgpack. guessed from the file extension when empty.")
}

// formatOf returns the format given by the flag, or guessed from file.
func formatOf(fset *flag.FlagSet, file string) (export.Format, error) {
	if name := fset.Lookup("format").Value.String(); name != "" {
		return export.ParseFormat(name)
	}
	if ext := strings.TrimPrefix(filepath.Ext(file), "."); ext != "" {
		if f, err := export.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return export.JSON, nil
}

func runExport(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	_, sf, err := a.load(args[0])
	if err != nil {
		return err
	}
	out := "-"
	if len(args) > 1 {
		out = args[1]
	}
	format, err := formatOf(fset, out)
	if err != nil {
		return err
	}

	if out == "-" {
		return export.Export(a.Stdout, sf, format)
	}
	out, err = localPath(out)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.Export(&buf, sf, format); err != nil {
		return err
	}
	if err := filesystem.WriteFile(a.fs, out, buf.Bytes()); err != nil {
		return err
	}
	log.Infof("exported %s (%v, %d bytes)", out, format, buf.Len())
	return nil
}

func runImport(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	path, sf, err := a.load(args[0])
	if err != nil {
		return err
	}
	in := args[1]
	format, err := formatOf(fset, in)
	if err != nil {
		return err
	}

	var r io.Reader
	if in == "-" {
		r = a.Stdin
	} else {
		if in, err = localPath(in); err != nil {
			return err
		}
		rc, err := a.fs.Load(in)
		if err != nil {
			return err
		}
		defer rc.Close()
		r = rc
	}
	tbl, err := export.Import(r, format)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	if v, ok := tbl.Get(savefile.KeyHellMode); ok && v.Kind() != variant.KindBool {
		return fmt.Errorf("%s: %w: %s is %v, want bool", in, savefile.ErrTypeMismatch, savefile.KeyHellMode, v.Kind())
	}
	sf.LuaState = tbl
	if on, err := sf.HellMode(); err == nil {
		if err := sf.SetHellMode(on); err != nil {
			return err
		}
	}
	log.Infof("imported %d keys from %s", tbl.Len(), in)
	return a.commit(ctx, path, sf, isDryRun(fset))
}

func runScript(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	src := fset.Lookup("e").Value.String()
	if (src == "") == (len(args) < 2) {
		fset.Usage()
		return ErrUsage
	}
	path, sf, err := a.load(args[0])
	if err != nil {
		return err
	}

	ip := script.NewInterpreter(a.conf.Script)
	defer ip.Quit()
	ip.SetContext(ctx)
	if src != "" {
		err = ip.RunString(sf, src)
	} else {
		err = ip.RunFile(sf, args[1])
	}
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return a.commit(ctx, path, sf, isDryRun(fset))
}

func runList(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	list, err := a.repo.List(ctx)
	if werr := writeSummaries(a.Stdout, list); werr != nil {
		return werr
	}
	return err
}

func runWatch(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	dir, target := a.repo.Dir(), ""
	if len(args) > 0 {
		p, err := a.savePath(args[0])
		if err != nil {
			return err
		}
		dir, target = filepath.Dir(p), p
	}

	w, err := filesystem.OpenWatcherPR(a.fs)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Watch(dir); err != nil {
		return err
	}
	log.Infof("watching %s", dir)

	ew := errutil.NewErrWriter(a.Stdout)
	for {
		select {
		case <-ctx.Done():
			return ew.Err()
		case err, ok := <-w.Errors():
			if !ok {
				return ew.Err()
			}
			log.Warnf("watch: %v", err)
		case ev, ok := <-w.Events():
			if !ok {
				return ew.Err()
			}
			path := filepath.Clean(ev.Name)
			if filepath.Ext(path) != ".sav" || (target != "" && path != target) {
				continue
			}
			if ev.Op&(filesystem.WatchOpCreate|filesystem.WatchOpWrite|filesystem.WatchOpRemove|filesystem.WatchOpRename) == 0 {
				continue
			}
			sum, err := a.repo.Summarize(path)
			switch {
			case errors.Is(err, savefile.ErrFileNotFound):
				ew.Printf("%s: removed\n", path)
			case err != nil:
				ew.Printf("%s: %v\n", path, err)
			default:
				writeSummaryLine(ew, sum)
			}
			if ew.Err() != nil {
				return ew.Err()
			}
		}
	}
}

func runBackups(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	path, err := a.savePath(args[0])
	if err != nil {
		return err
	}
	entries, err := a.backups.List(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Infof("no backups of %s", path)
		return nil
	}
	return writeBackups(a.Stdout, entries)
}

func runRestore(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	path, err := a.savePath(args[0])
	if err != nil {
		return err
	}
	src := args[1]
	if i, err := strconv.Atoi(src); err == nil {
		entries, err := a.backups.List(path)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(entries) {
			return fmt.Errorf("backup index %d out of range, %d backups of %s", i, len(entries), path)
		}
		src = entries[i].Path
	} else if src, err = localPath(src); err != nil {
		return err
	}
	if err := a.backups.Restore(src, path); err != nil {
		return err
	}
	log.Infof("restored %s from %s", path, src)
	return nil
}

func runArchive(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	out, err := localPath(args[0])
	if err != nil {
		return err
	}
	srcFS := os.DirFS(a.repo.Dir())
	files, err := archive.CollectSaves(srcFS, ".")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no save files in %s", a.repo.Dir())
	}
	out, err = archive.Pack(a.fs, out, srcFS, files, a.codec)
	if err != nil {
		return err
	}
	log.Infof("archived %d saves into %s", len(files), out)
	return nil
}

func runUnarchive(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	in, err := localPath(args[0])
	if err != nil {
		return err
	}
	p, err := filesystem.ReadFile(a.fs, in)
	if err != nil {
		return err
	}
	// every save is decoded before any of them is written.
	entries, err := archive.Read(bytes.NewReader(p), int64(len(p)), a.codec)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	for _, e := range entries {
		if err := a.commit(ctx, filepath.Join(a.repo.Dir(), e.Name), e.Save, isDryRun(fset)); err != nil {
			return err
		}
	}
	log.Infof("unarchived %d saves from %s", len(entries), in)
	return nil
}

func runVersion(a *App, ctx context.Context, fset *flag.FlagSet, args []string) error {
	_, err := fmt.Fprintf(a.Stdout, "pluto %v\n", buildinfo.Get())
	return err
}
