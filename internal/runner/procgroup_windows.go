//go:build windows

package runner

import "os/exec"

// setupProcessGroup is a no-op on Windows where Setpgid is unavailable.
// A timed-out fixture is stopped by the default CommandContext cancel, which
// kills the process itself.
func setupProcessGroup(cmd *exec.Cmd) {}
