package script

import (
	"fmt"

	"github.com/mzki/pluto/util/log"
	lua "github.com/yuin/gopher-lua"
)

// Builtin module "log" writes script progress into the log output.
//
// log.info and log.warn always output. log.debug outputs only when the
// interpreter is configured with debug enabled, and prefixes the script
// position.
//
// Example:
//
//	local log = require "log"
//	log.info("darkness is", save.darkness)
//	log.infof("darkness is %d", save.darkness)
const loggerModuleName = "log"

func loggerLoader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), loggerExports)
	L.Push(mod)
	return 1
}

var loggerExports = map[string]lua.LGFunction{
	"debug":  logDebug,
	"debugf": logDebugf,
	"info":   logInfo,
	"infof":  logInfof,
	"warn":   logWarn,
	"warnf":  logWarnf,
}

const scriptLogPrefix = "script:"

// If Registry table has registryDebugEnableKey and stored value is true
// then logDebugXXX funtions do, otherwise do nothing.
func debugEnable(L *lua.LState) bool {
	lv := L.CheckTable(lua.RegistryIndex).RawGetString(registryDebugEnableKey)
	return lua.LVAsBool(lv)
}

// log.debug(any...) outputs space separated values at debug level.
func logDebug(L *lua.LState) int {
	if !debugEnable(L) {
		return 0
	}
	log.Debugln(append([]interface{}{scriptPosition(L)}, logValues(L, 1)...)...)
	return 0
}

// log.debugf(fmt_string, [any...]) formats by the fmt package rules.
func logDebugf(L *lua.LState) int {
	if !debugEnable(L) {
		return 0
	}
	format := L.CheckString(1)
	log.Debugf("%s "+format, append([]interface{}{scriptPosition(L)}, logValues(L, 2)...)...)
	return 0
}

func logInfo(L *lua.LState) int {
	log.Infoln(append([]interface{}{scriptLogPrefix}, logValues(L, 1)...)...)
	return 0
}

func logInfof(L *lua.LState) int {
	format := L.CheckString(1)
	log.Infof(scriptLogPrefix+" "+format, logValues(L, 2)...)
	return 0
}

func logWarn(L *lua.LState) int {
	log.Warnln(append([]interface{}{scriptLogPrefix}, logValues(L, 1)...)...)
	return 0
}

func logWarnf(L *lua.LState) int {
	format := L.CheckString(1)
	log.Warnf(scriptLogPrefix+" "+format, logValues(L, 2)...)
	return 0
}

// logValues converts arguments from start into Go values, so that
// numeric verbs such as %d and %.1f work on Lua numbers.
func logValues(L *lua.LState, start int) []interface{} {
	n := L.GetTop()
	if start < 1 || start > n {
		return nil
	}
	vs := make([]interface{}, 0, n-start+1)
	for i := start; i <= n; i++ {
		vs = append(vs, logValue(L.Get(i)))
	}
	return vs
}

func logValue(lv lua.LValue) interface{} {
	switch lv := lv.(type) {
	case lua.LNumber:
		f := float64(lv)
		// integral numbers print without a fraction and match %d.
		if i := int64(f); float64(i) == f {
			return i
		}
		return f
	case lua.LBool:
		return bool(lv)
	case lua.LString:
		return string(lv)
	case *lua.LTable:
		n := 0
		lv.ForEach(func(lua.LValue, lua.LValue) { n++ })
		return fmt.Sprintf("table(%d)", n)
	case *lua.LFunction:
		if lv.Proto == nil {
			return "function: builtin"
		}
		return fmt.Sprintf("function: %s:%d", lv.Proto.SourceName, lv.Proto.LineDefined)
	default:
		return lv.String()
	}
}

// scriptPosition returns "script:<source>:<line>:" of the calling Lua code.
func scriptPosition(L *lua.LState) string {
	dbg, ok := L.GetStack(1)
	if !ok {
		return scriptLogPrefix
	}
	if _, err := L.GetInfo("Sl", dbg, lua.LNil); err != nil {
		return scriptLogPrefix
	}
	return fmt.Sprintf("%s%s:%d:", scriptLogPrefix, dbg.Source, dbg.CurrentLine)
}
