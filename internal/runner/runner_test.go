//go:build !windows

package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/langbench/internal/fixture"
)

// writeFixture creates <name>.lang/.in/.out in dir. With sh as the binary
// under test, the .lang file is a shell script.
func writeFixture(t *testing.T, dir, name, program, input, output string) fixture.Fixture {
	t.Helper()
	files := map[string]string{
		name + fixture.SourceExt: program,
		name + fixture.InputExt:  input,
		name + fixture.OutputExt: output,
	}
	for fname, content := range files {
		if err := os.WriteFile(filepath.Join(dir, fname), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fixture.New(dir, name)
}

func newShRunner(t *testing.T, timeout time.Duration) *Runner {
	t.Helper()
	r, err := New(Config{Command: []string{"sh"}, Timeout: timeout})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRun_Verdicts(t *testing.T) {
	tests := []struct {
		name    string
		program string
		input   string
		output  string
		want    Verdict
		exit    int
	}{
		{
			name:    "add",
			program: "read a b\necho $((a + b))\n",
			input:   "2 3\n",
			output:  "5\n",
			want:    VerdictPassed,
		},
		{
			name:    "wrong",
			program: "echo 6\n",
			output:  "5\n",
			want:    VerdictWrongAnswer,
		},
		{
			name:    "trailing_newline",
			program: "printf 5\n",
			output:  "5\n",
			want:    VerdictWrongAnswer,
		},
		{
			name:    "crlf",
			program: "printf '5\\r\\n'\n",
			output:  "5\n",
			want:    VerdictWrongAnswer,
		},
		{
			name:    "nonzero",
			program: "echo 5\nexit 3\n",
			output:  "5\n",
			want:    VerdictNonZeroExit,
			exit:    3,
		},
		{
			name:    "wrong_wins_over_exit",
			program: "echo 6\nexit 1\n",
			output:  "5\n",
			want:    VerdictWrongAnswer,
			exit:    1,
		},
		{
			name:    "empty",
			program: "true\n",
			want:    VerdictPassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			fx := writeFixture(t, dir, tt.name, tt.program, tt.input, tt.output)

			res, err := newShRunner(t, 5*time.Second).Run(context.Background(), fx)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if res.Verdict != tt.want {
				t.Errorf("verdict: got %s, want %s (output %q)", res.Verdict, tt.want, res.Output)
			}
			if res.ExitCode != tt.exit {
				t.Errorf("exit code: got %d, want %d", res.ExitCode, tt.exit)
			}
			if res.Name != tt.name {
				t.Errorf("name: got %q, want %q", res.Name, tt.name)
			}
		})
	}
}

func TestRun_TimeLimitExceeded(t *testing.T) {
	dir := t.TempDir()
	fx := writeFixture(t, dir, "slow", "echo 5\nsleep 10\n", "", "5\n")

	start := time.Now()
	res, err := newShRunner(t, 200*time.Millisecond).Run(context.Background(), fx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Verdict != VerdictTimeLimitExceeded {
		t.Fatalf("verdict: got %s, want %s", res.Verdict, VerdictTimeLimitExceeded)
	}
	if res.Output != nil {
		t.Errorf("partial output should not be kept, got %q", res.Output)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took too long: %s", elapsed)
	}
}

func TestRun_ExitWithinLimitDespiteOpenPipe(t *testing.T) {
	dir := t.TempDir()
	// the child exits after 300ms, but a background sleep keeps stdout open
	// until WaitDelay, so Wait only returns after the 600ms limit
	fx := writeFixture(t, dir, "bg", "sleep 0.3\necho 5\nsleep 3 &\n", "", "5\n")

	res, err := newShRunner(t, 600*time.Millisecond).Run(context.Background(), fx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Verdict != VerdictPassed {
		t.Errorf("verdict: got %s, want %s (exit %d, output %q)", res.Verdict, VerdictPassed, res.ExitCode, res.Output)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code: got %d, want 0", res.ExitCode)
	}
}

func TestRun_StdinFromInputFile(t *testing.T) {
	dir := t.TempDir()
	fx := writeFixture(t, dir, "cat", "cat\n", "line one\nline two\n", "line one\nline two\n")

	res, err := newShRunner(t, 5*time.Second).Run(context.Background(), fx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed() {
		t.Errorf("expected pass, got %s with output %q", res.Verdict, res.Output)
	}
}

func TestRun_SourcePathIsLastArgument(t *testing.T) {
	dir := t.TempDir()
	fx := writeFixture(t, dir, "args", "echo \"$0\"\n", "", "")
	if err := os.WriteFile(fx.OutputPath(), []byte(fx.SourcePath()+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := newShRunner(t, 5*time.Second).Run(context.Background(), fx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed() {
		t.Errorf("expected source path as argument, got %q", res.Output)
	}
}

func TestRun_StderrCaptured(t *testing.T) {
	dir := t.TempDir()
	fx := writeFixture(t, dir, "warn", "echo oops >&2\n", "", "")

	res, err := newShRunner(t, 5*time.Second).Run(context.Background(), fx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed() {
		t.Errorf("stderr must not affect the verdict, got %s", res.Verdict)
	}
	if res.Stderr != "oops\n" {
		t.Errorf("stderr: got %q, want %q", res.Stderr, "oops\n")
	}
}

func TestRun_MissingFixtureFile(t *testing.T) {
	dir := t.TempDir()
	fx := writeFixture(t, dir, "add", "true\n", "", "")
	if err := os.Remove(fx.InputPath()); err != nil {
		t.Fatal(err)
	}

	_, err := newShRunner(t, time.Second).Run(context.Background(), fx)
	if !errors.Is(err, fixture.ErrMissing) {
		t.Fatalf("got %v, want ErrMissing", err)
	}
}

func TestRun_BinaryNotFound(t *testing.T) {
	dir := t.TempDir()
	fx := writeFixture(t, dir, "add", "true\n", "", "")

	r, err := New(Config{Command: []string{filepath.Join(dir, "no-such-lang")}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background(), fx); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRun_ParentCancelled(t *testing.T) {
	dir := t.TempDir()
	fx := writeFixture(t, dir, "slow", "sleep 10\n", "", "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := newShRunner(t, 5*time.Second).Run(ctx, fx)
	if err == nil {
		t.Fatal("expected error when the parent context is cancelled")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty command")
	}
	r, err := New(Config{Command: []string{"./lang"}})
	if err != nil {
		t.Fatal(err)
	}
	if r.Timeout() != DefaultTimeout {
		t.Errorf("timeout: got %s, want %s", r.Timeout(), DefaultTimeout)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		out, exp string
		code     int
		want     Verdict
	}{
		{"5\n", "5\n", 0, VerdictPassed},
		{"5\n", "5", 0, VerdictWrongAnswer},
		{"5\n", "5\n", 2, VerdictNonZeroExit},
		{"4\n", "5\n", 2, VerdictWrongAnswer},
		{"", "", 0, VerdictPassed},
	}
	for _, tt := range tests {
		if got := classify([]byte(tt.out), []byte(tt.exp), tt.code); got != tt.want {
			t.Errorf("classify(%q, %q, %d): got %s, want %s", tt.out, tt.exp, tt.code, got, tt.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	got, err := ParseCommand(`node "build/lang runner.js" --quiet`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"node", "build/lang runner.js", "--quiet"}
	if len(got) != len(want) {
		t.Fatalf("fields: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := ParseCommand("   "); err == nil {
		t.Error("expected error for blank command")
	}
}
