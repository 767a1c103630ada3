//go:build !windows

package runner

import (
	"context"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestSetupProcessGroup_KillsForkedHelpers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// interpreter that forks a helper and then hangs
	cmd := exec.CommandContext(ctx, "sh", "-c", "sleep 60 & sleep 60")
	setupProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid

	cancel()
	_ = cmd.Wait()
	time.Sleep(50 * time.Millisecond)

	if err := syscall.Kill(-pid, 0); err == nil {
		t.Errorf("process group %d still alive after cancel", pid)
	}
}

func TestSetupProcessGroup_Attributes(t *testing.T) {
	cmd := exec.Command("true")
	setupProcessGroup(cmd)

	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Fatal("Setpgid not set")
	}
	if cmd.Cancel == nil {
		t.Fatal("Cancel not set")
	}
	// never started: Cancel must not fail
	if err := cmd.Cancel(); err != nil {
		t.Errorf("cancel before start: got %v, want nil", err)
	}
}
