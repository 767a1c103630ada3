package cli

import (
	"fmt"
	"runtime"
)

// Version, Commit and BuildDate are set via LDFLAGS at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, go: %s)", Version, Commit, BuildDate, runtime.Version())
}
