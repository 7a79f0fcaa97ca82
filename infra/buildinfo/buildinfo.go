package buildinfo

import "runtime/debug"

// BuildInfo cotains build information supplied at compile time.
type BuildInfo struct {
	Version    string // build version. e.g. v0.10.0
	CommitHash string // commit hash in vcs. e.g. git commit hash
}

// String returns "version-commit".
func (bi BuildInfo) String() string {
	return bi.Version + "-" + bi.CommitHash
}

const (
	defaultVersion    = "dev"
	defaultCommitHash = "none"
)

var (
	// Those parameter can be supplied from compiler.
	// go build -ldflags "-X github.com/mzki/pluto/infra/buildinfo.version=v0.1.2 -X github.com/mzki/pluto/infra/buildinfo.commitHash=###"
	version    string = defaultVersion
	commitHash string = defaultCommitHash

	readBuildInfo = debug.ReadBuildInfo
)

// Get returns BuildInfo filling with information supplied at compile time.
// Without -ldflags, the module version and vcs revision recorded by the go
// command are used when available, e.g. for "go install ...@v0.1.2".
func Get() BuildInfo {
	bi := BuildInfo{
		Version:    version,
		CommitHash: commitHash,
	}
	info, ok := readBuildInfo()
	if !ok {
		return bi
	}
	if bi.Version == defaultVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		bi.Version = info.Main.Version
	}
	if bi.CommitHash == defaultCommitHash {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				bi.CommitHash = s.Value
			}
		}
	}
	return bi
}
