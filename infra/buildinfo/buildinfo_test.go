package buildinfo

import (
	"os"
	"reflect"
	"runtime/debug"
	"testing"
)

func withoutModuleInfo(t *testing.T) {
	t.Helper()
	prev := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
	t.Cleanup(func() { readBuildInfo = prev })
}

func TestGetWithoutCompileTimeInfo(t *testing.T) {
	if os.Getenv("GOTEST_BUILDINFO_COMPILE_TIME_INFO") == "true" {
		t.Skip("Without compile time information test is skipped")
	}
	withoutModuleInfo(t)
	want := BuildInfo{Version: "dev", CommitHash: "none"}
	if got := Get(); !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %v, want %v", got, want)
	}
}

func TestGetWithCompileTimeInfo(t *testing.T) {
	if os.Getenv("GOTEST_BUILDINFO_COMPILE_TIME_INFO") != "true" {
		t.Skip("With compile time information test is skipped")
	}
	want := BuildInfo{Version: "v1.0.0", CommitHash: "34567#"}
	if got := Get(); !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %v, want %v", got, want)
	}
}

func TestGetFromModuleInfo(t *testing.T) {
	if os.Getenv("GOTEST_BUILDINFO_COMPILE_TIME_INFO") == "true" {
		t.Skip("compile time information wins over module information")
	}
	tests := []struct {
		name string
		info *debug.BuildInfo
		want BuildInfo
	}{
		{"go install", &debug.BuildInfo{
			Main:     debug.Module{Version: "v0.3.0"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
		}, BuildInfo{Version: "v0.3.0", CommitHash: "abc123"}},
		{"devel", &debug.BuildInfo{
			Main: debug.Module{Version: "(devel)"},
		}, BuildInfo{Version: "dev", CommitHash: "none"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := readBuildInfo
			readBuildInfo = func() (*debug.BuildInfo, bool) { return tt.info, true }
			defer func() { readBuildInfo = prev }()

			if got := Get(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := (BuildInfo{Version: "v1.2.3", CommitHash: "ff"}).String(); got != "v1.2.3-ff" {
		t.Errorf("String() = %v", got)
	}
}
