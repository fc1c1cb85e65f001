package cmd

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const DenseCliVersion = "0.3.0"

// Set with -ldflags "-X github.com/fzft/go-dense/cmd.gitSHA1=...".
var (
	gitSHA1   = "00000000"
	gitDirty  = "0"
	buildID   = "unknown"
	buildDate = "unknown"
)

// Version returns the version line, with the git commit when it is known.
func Version() string {
	version := "dense-cli " + DenseCliVersion
	if sha1Int, err := strconv.ParseUint(gitSHA1, 16, 64); err == nil && sha1Int != 0 {
		version = fmt.Sprintf("%s (git:%s", version, gitSHA1)
		if dirtyInt, err := strconv.ParseInt(gitDirty, 10, 64); err == nil && dirtyInt != 0 {
			version += "-dirty"
		}
		version += ")"
	}
	return version
}

func buildIDRaw() string {
	return DenseCliVersion + buildID + buildDate + gitSHA1 + gitDirty
}

// buildIDHash identifies the exact build in INFO.
func buildIDHash() string {
	return strconv.FormatUint(xxhash.Sum64String(buildIDRaw()), 16)
}
