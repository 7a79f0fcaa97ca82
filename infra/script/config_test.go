package script

import (
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestScriptPath(t *testing.T) {
	const base = "scripts"
	for _, tt := range []struct {
		name    string
		p       string
		want    string
		wantErr bool
	}{
		{"plain file", "fix_darkness.lua", filepath.Join(base, "fix_darkness.lua"), false},
		{"sub directory", "lib/util.lua", filepath.Join(base, "lib", "util.lua"), false},
		{"dot dot inside", "lib/../run.lua", filepath.Join(base, "run.lua"), false},
		{"escape base", "../run.lua", "", true},
		{"escape from child", "lib/../../../run.lua", "", true},
		{"sibling with same prefix", "../" + base + "2/run.lua", "", true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scriptPath(tt.p, base)
			if (err != nil) != tt.wantErr {
				t.Fatalf("scriptPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("scriptPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateScriptPathBaseEndsSep(t *testing.T) {
	if err := validateScriptPath("scripts/../scripts2/a.lua", "scripts/"); err == nil {
		t.Error("path outside of base accepted")
	}
	if err := validateScriptPath("scripts/a.lua", "scripts/"); err != nil {
		t.Errorf("path under base rejected: %v", err)
	}
}

func TestConfigRegister(t *testing.T) {
	conf := NewConfig()
	conf.LoadDir = "scripts/./mods/"
	conf.IncludeGoStackTrace = true

	L := lua.NewState()
	defer L.Close()
	conf.register(L)

	reg := L.CheckTable(lua.RegistryIndex)
	if got := reg.RawGetString(registryBaseDirKey); got.String() != filepath.Join("scripts", "mods") {
		t.Errorf("base dir = %v", got)
	}
	if got := reg.RawGetString(registryDebugEnableKey); got != lua.LTrue {
		t.Errorf("debug = %v", got)
	}
	if conf.TimeoutSecond != DefaultTimeoutSecond {
		t.Errorf("timeout = %v", conf.TimeoutSecond)
	}
}
