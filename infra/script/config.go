package script

import (
	"fmt"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Config holds Script parameters.
type Config struct {
	LoadDir string `toml:"dir"` // scripts and required modules are searched under it.

	CallStackSize       int  `toml:"call_stack_size"`
	RegistrySize        int  `toml:"registry_size"`
	IncludeGoStackTrace bool `toml:"debug"`

	// scripts running longer than this are canceled. 0 or less means no limit.
	TimeoutSecond int `toml:"timeout_sec"`
}

var (
	// default paramters for script VM.
	DefaultLoadDir       = "scripts"
	CallStackSize        = lua.CallStackSize
	RegistrySize         = lua.RegistrySize
	DefaultTimeoutSecond = 10
)

func NewConfig() Config {
	return Config{
		LoadDir:       DefaultLoadDir,
		CallStackSize: CallStackSize,
		RegistrySize:  RegistrySize,
		TimeoutSecond: DefaultTimeoutSecond,
	}
}

const (
	registryBaseDirKey     = "_BASE_DIRECTORY"
	registryDebugEnableKey = "_DEBUG_ENABLE"
)

func (conf Config) register(L *lua.LState) {
	reg := L.CheckTable(lua.RegistryIndex)
	for _, set := range []struct {
		key string
		val lua.LValue
	}{
		{registryDebugEnableKey, lua.LBool(conf.IncludeGoStackTrace)},
		{registryBaseDirKey, lua.LString(filepath.Clean(conf.LoadDir))},
	} {
		reg.RawSetString(set.key, set.val)
	}
}

// scriptPath returns path of p under base directory.
// for example, base dir is "/dir" and p is "sub/file" then
// return "/dir/sub/file".
// if resulted path indicates above base directory, e.g. including  "../",
// it will return error.
func scriptPath(p, baseDir string) (string, error) {
	joined := filepath.Join(baseDir, p)
	if err := validateScriptPath(joined, baseDir); err != nil {
		return "", err
	}
	return joined, nil
}

func validateScriptPath(p, baseDir string) error {
	base := filepath.Clean(baseDir)
	cleaned := filepath.Clean(p)
	rel, err := filepath.Rel(base, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("given path %s must be under %s", p, base)
	}
	return nil
}
