//go:build !windows

package runner

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ppiankov/langbench/internal/fixture"
)

type recordingObserver struct {
	finished []string
	summary  *Summary
}

func (o *recordingObserver) FixtureFinished(res *Result) { o.finished = append(o.finished, res.Name) }
func (o *recordingObserver) SuiteFinished(sum *Summary) { o.summary = sum }

func TestSuite_RunAll(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a_pass", "echo ok\n", "", "ok\n")
	writeFixture(t, dir, "b_fail", "echo no\n", "", "ok\n")
	writeFixture(t, dir, "c_pass", "cat\n", "x\n", "x\n")

	fixtures, err := fixture.Discover(dir)
	if err != nil {
		t.Fatal(err)
	}

	obs := &recordingObserver{}
	sum, err := NewSuite(newShRunner(t, 5*time.Second), obs).RunAll(context.Background(), fixtures)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Total != 3 || sum.Passed != 2 {
		t.Errorf("summary: got %d/%d, want 2/3", sum.Passed, sum.Total)
	}
	if sum.AllPassed() {
		t.Error("AllPassed: got true with a failing fixture")
	}
	if sum.Failed() != 1 {
		t.Errorf("failed: got %d, want 1", sum.Failed())
	}

	want := []string{"a_pass", "b_fail", "c_pass"}
	if len(obs.finished) != len(want) {
		t.Fatalf("observed: got %v, want %v", obs.finished, want)
	}
	for i := range want {
		if obs.finished[i] != want[i] {
			t.Errorf("order %d: got %q, want %q", i, obs.finished[i], want[i])
		}
	}
	if obs.summary != sum {
		t.Error("observer did not receive the summary")
	}
}

func TestSuite_RunAllEmpty(t *testing.T) {
	sum, err := NewSuite(newShRunner(t, time.Second), nil).RunAll(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Total != 0 || !sum.AllPassed() {
		t.Errorf("empty suite: got %d/%d", sum.Passed, sum.Total)
	}
}

func TestSuite_MissingFileAborts(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a", "echo ok\n", "", "ok\n")
	broken := writeFixture(t, dir, "b", "echo ok\n", "", "ok\n")
	writeFixture(t, dir, "c", "echo ok\n", "", "ok\n")
	if err := os.Remove(broken.OutputPath()); err != nil {
		t.Fatal(err)
	}

	fixtures, err := fixture.Discover(dir)
	if err != nil {
		t.Fatal(err)
	}

	obs := &recordingObserver{}
	_, err = NewSuite(newShRunner(t, time.Second), obs).RunAll(context.Background(), fixtures)
	if !errors.Is(err, fixture.ErrMissing) {
		t.Fatalf("got %v, want ErrMissing", err)
	}
	if len(obs.finished) != 1 {
		t.Errorf("fixtures after the broken one must not run, observed %v", obs.finished)
	}
	if obs.summary != nil {
		t.Error("aborted run must not report a summary")
	}
}

func TestSuite_RunOne(t *testing.T) {
	dir := t.TempDir()
	fx := writeFixture(t, dir, "add", "read a b\necho $((a + b))\n", "2 3\n", "5\n")

	obs := &recordingObserver{}
	res, err := NewSuite(newShRunner(t, 5*time.Second), obs).RunOne(context.Background(), fx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed() {
		t.Errorf("expected pass, got %s", res.Verdict)
	}
	if len(obs.finished) != 1 || obs.finished[0] != "add" {
		t.Errorf("observed: %v", obs.finished)
	}
}
