package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/mzki/pluto/app/config"
	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/util/log"
)

// exit codes of Main.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// entry point of main application. appconf nil is OK,
// use default if it is.
// its internal errors are handled by itself and reported as exit code.
func Main(ctx context.Context, appConf *config.Config, args []string) (code int) {
	if appConf == nil {
		appConf = config.NewConfig(config.DefaultSaveDir)
	}

	// returned value must be called once.
	reset, err := config.SetupLogConfig(appConf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log configuration failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Hint: try to change config logfile from %v\n", appConf.LogFile)
		// stderr may be lost when pluto is run by another tool.
		// try to create "fatal file" to record error.
		w, fsyserr := filesystem.Store("fatal")
		if fsyserr != nil {
			fmt.Fprintf(os.Stderr, "failed to create fatal file by %v: previous fail %v\n", fsyserr, err)
			return ExitError
		}
		defer w.Close()
		fmt.Fprintf(w, "log configuration failed: %v\n", err)
		fmt.Fprintf(w, "Hint: try to change config logfile from %v\n", appConf.LogFile)
		return ExitError
	}
	defer reset()

	// capture panic as error.
	defer func() {
		if rec := recover(); rec != nil {
			buf := make([]byte, 4096)
			bufEnd := runtime.Stack(buf, false)
			log.Infof("PANIC: %v\n%s", rec, buf[:bufEnd])
			code = ExitError
		}
	}()

	a, err := New(appConf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pluto: %v\n", err)
		return ExitError
	}
	return a.exitCode(a.Run(ctx, args))
}

func (a *App) exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, context.Canceled):
		log.Debug("canceled")
		return ExitOK
	default:
		fmt.Fprintf(a.Stderr, "pluto: %v\n", err)
		return ExitError
	}
}
