// Package version exposes the build version stamped in via ldflags:
//
//	go build -ldflags "-X github.com/stubdex/stubdex/internal/version.Version=x.y.z"
package version

import "strings"

// Version is set at build time. Development builds leave it empty.
var Version = ""

// Get returns the stamped version, or "0.0.1-dev" for development builds.
func Get() string {
	if Version == "" {
		return "0.0.1-dev"
	}
	return strings.TrimPrefix(Version, "v")
}
