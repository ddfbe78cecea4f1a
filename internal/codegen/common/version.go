package common

import (
	"fmt"
	"strings"

	"github.com/stubdex/stubdex/internal/version"
)

// GetVersion returns the version string stamped into generated
// artifacts. Development builds report "0.0.1-dev"; release builds must
// carry an x.y.z version set via ldflags on internal/version.Version.
func GetVersion() (string, error) {
	v := version.Get()

	baseVersion := strings.SplitN(v, "-", 2)[0]
	if !strings.Contains(baseVersion, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", v)
	}

	return v, nil
}
