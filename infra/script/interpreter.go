// Package script runs Lua scripts which edit the Lua state of a save file.
//
// A script sees the Lua state as the global table "save", and header
// fields of the save as the read-only table "info":
//
//	save.darkness = save.darkness + 1000
//	for k in pairs(save.gift_record) do save.gift_record[k] = nil end
//	if info.runs > 10 then save.hell_mode = true end
//
// The script runs in a sandbox without file system or OS access.
package script

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/mzki/pluto/savefile"
	"github.com/mzki/pluto/util/log"
	"github.com/mzki/pluto/variant"
)

const (
	SaveGlobalName = "save"
	InfoGlobalName = "info"
)

// Interpreter runs scripts against a save file.
//
// typical usage:
//
//	ip := NewInterpreter(config)
//	defer ip.Quit()
//	err := ip.RunFile(sf, "edit.lua")
type Interpreter struct {
	vm     *lua.LState
	ctx    context.Context
	config Config
}

// construct interpreter.
// must be call Interpreter.Quit after use this.
func NewInterpreter(config Config) *Interpreter {
	vm := lua.NewState(lua.Options{
		CallStackSize:       config.CallStackSize,
		RegistrySize:        config.RegistrySize,
		IncludeGoStackTrace: config.IncludeGoStackTrace,
		SkipOpenLibs:        true,
	})

	ip := &Interpreter{
		vm:     vm,
		ctx:    context.Background(),
		config: config,
	}
	ip.init()
	return ip
}

// initialize sandbox environment.
func (ip *Interpreter) init() {
	L := ip.vm
	// register bultin libraries which do not contain
	// the modules to access file system and OS.
	for _, pair := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage}, // Must be first
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(pair.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.name)); err != nil {
			panic(err)
		}
	}
	knockoutUnsafeLibs(L)

	L.PreloadModule(loggerModuleName, loggerLoader)

	// register load path which is limited under config.LoadDir only.
	// NOTE: bultin path is cleared. ( /usr/local/share/lua5.1  etc. are not available)
	reg_path := filepath.Join(ip.config.LoadDir, "?.lua")
	L.SetField(L.GetGlobal("package"), "path", lua.LString(reg_path))

	ip.config.register(L)
}

// SetContext sets parent context of the following runs.
// context must not be nil.
func (ip *Interpreter) SetContext(ctx context.Context) {
	ip.ctx = ctx
}

// Quit quits virtual machine in Interpreter.
// use it for releasing resources.
func (ip *Interpreter) Quit() {
	ip.vm.Close()
}

// RunString runs src against sf. The Lua state of sf is replaced only when
// the script succeeds and leaves values a save file can hold.
func (ip *Interpreter) RunString(sf *savefile.SaveFile, src string) error {
	return ip.run(sf, func(L *lua.LState) (*lua.LFunction, error) {
		return L.LoadString(src)
	})
}

// RunFile runs the script file under the configured script directory.
func (ip *Interpreter) RunFile(sf *savefile.SaveFile, file string) error {
	path, err := scriptPath(file, ip.config.LoadDir)
	if err != nil {
		return err
	}
	return ip.run(sf, func(L *lua.LState) (*lua.LFunction, error) {
		return L.LoadFile(path)
	})
}

func (ip *Interpreter) run(sf *savefile.SaveFile, load func(*lua.LState) (*lua.LFunction, error)) error {
	L := ip.vm
	lfunc, err := load(L)
	if err != nil {
		return classifyError(err)
	}

	ctx := ip.ctx
	if sec := ip.config.TimeoutSecond; sec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(sec)*time.Second)
		defer cancel()
	}
	L.SetContext(ctx)
	defer L.RemoveContext()

	lsave := tableToLua(L, sf.LuaState)
	L.SetGlobal(SaveGlobalName, lsave)
	L.SetGlobal(InfoGlobalName, newInfoTable(L, sf))
	defer func() {
		L.SetGlobal(SaveGlobalName, lua.LNil)
		L.SetGlobal(InfoGlobalName, lua.LNil)
	}()

	start := time.Now()
	if err := L.CallByParam(lua.P{Fn: lfunc, NRet: 0, Protect: true}); err != nil {
		return classifyError(err)
	}
	log.Debugf("script: finished in %v", time.Since(start))

	// the script may have replaced the global.
	ltbl, ok := L.GetGlobal(SaveGlobalName).(*lua.LTable)
	if !ok {
		return fmt.Errorf("%w: global %s is not a table", ErrUnsupportedValue, SaveGlobalName)
	}
	edited, err := luaToTable(ltbl, sf.LuaState, 0)
	if err != nil {
		return err
	}

	if v, ok := edited.Get(savefile.KeyHellMode); ok && v.Kind() != variant.KindBool {
		if prev, had := sf.LuaState.Get(savefile.KeyHellMode); !had || !prev.Equal(v) {
			return fmt.Errorf("%w: %s must be a boolean, got %v", ErrUnsupportedValue, savefile.KeyHellMode, v.Kind())
		}
	}

	hellBefore, errBefore := sf.HellMode()
	sf.LuaState = edited
	if hellAfter, err := sf.HellMode(); err == nil && (errBefore != nil || hellAfter != hellBefore) {
		return sf.SetHellMode(hellAfter)
	}
	return nil
}

func newInfoTable(L *lua.LState, sf *savefile.SaveFile) *lua.LTable {
	return newReadonlyTable(L, map[string]lua.LValue{
		"version":        lua.LNumber(sf.Version),
		"location":       lua.LString(sf.Location),
		"runs":           lua.LNumber(sf.Runs),
		"meta_points":    lua.LNumber(sf.MetaPoints),
		"shrine_points":  lua.LNumber(sf.ShrinePoints),
		"god_mode":       lua.LBool(sf.GodMode),
		"hell_mode":      lua.LBool(sf.HellModeEnabled()),
		"current_map":    lua.LString(sf.CurrentMap),
		"start_next_map": lua.LString(sf.StartNextMap),
	})
}
