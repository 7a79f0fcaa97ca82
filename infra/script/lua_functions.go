package script

import (
	lua "github.com/yuin/gopher-lua"
)

// references to [ lua-users wiki: Sand Boxes ] http://lua-users.org/wiki/SandBoxes
var unsafeLibs = []string{
	"print", // write stdout is not allowed
	"dofile",
	"dostring",
	"load",
	"loadfile",
	// "loadstring" // it is usable and not accessing filesystem.
}

func knockoutUnsafeLibs(L *lua.LState) {
	for _, func_name := range unsafeLibs {
		L.SetGlobal(func_name, lua.LNil)
	}
}

const readonlyMetaName = "readonly"

// newReadonlyTable returns a proxy of fields which raises error on assignment.
func newReadonlyTable(L *lua.LState, fields map[string]lua.LValue) *lua.LTable {
	data := L.NewTable()
	for k, v := range fields {
		data.RawSetString(k, v)
	}
	mt := L.NewTable()
	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("attempt to modify read-only field %s", L.CheckString(2))
		return 0
	}))
	mt.RawSetString("__metatable", lua.LString(readonlyMetaName))

	proxy := L.NewTable()
	mt.RawSetString("__index", data)
	L.SetMetatable(proxy, mt)
	return proxy
}
