// Package version provides the build version, set by the linker:
//
//	go build -ldflags "-X github.com/effective-security/atecc/internal/version.Build=v0.1.0 -X github.com/effective-security/atecc/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// Build is the semantic version of the build
	Build = "v0.0.0"
	// Commit is the git commit of the build
	Commit = ""
)

// Info describes the build
type Info struct {
	Build   string `json:"build"`
	Commit  string `json:"commit,omitempty"`
	Runtime string `json:"runtime"`
}

// Current returns the version of the running binary
func Current() *Info {
	return &Info{
		Build:   Build,
		Commit:  Commit,
		Runtime: runtime.Version(),
	}
}

// String returns the version, with the commit when known
func (v *Info) String() string {
	if v.Commit == "" {
		return strings.TrimPrefix(v.Build, "v")
	}
	return fmt.Sprintf("%s-%s", strings.TrimPrefix(v.Build, "v"), v.Commit)
}
