package reporter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/langbench/internal/runner"
)

// Options controls text reporter output.
type Options struct {
	Color         bool // enable terminal styling
	PreviewLength int  // characters of output shown on a wrong answer
	Diff          bool // print a line diff after the previews
}

// TextReporter prints fixture diagnostics and the run summary.
// It implements runner.Observer.
type TextReporter struct {
	w    io.Writer
	opts Options

	fail lipgloss.Style
	pass lipgloss.Style
	dim  lipgloss.Style
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
func NewTextReporter(w io.Writer, opts Options) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	if opts.PreviewLength == 0 {
		opts.PreviewLength = DefaultPreviewLength
	}
	re := lipgloss.NewRenderer(w)
	return &TextReporter{
		w:    w,
		opts: opts,
		fail: re.NewStyle().Foreground(lipgloss.Color("9")),
		pass: re.NewStyle().Foreground(lipgloss.Color("10")),
		dim:  re.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// FixtureFinished prints the diagnostic of a failed fixture. Passing
// fixtures print nothing.
func (r *TextReporter) FixtureFinished(res *runner.Result) {
	if res.Passed() {
		return
	}
	r.printFailure(res.Name, verdictText(res.Verdict))
	if res.Verdict == runner.VerdictWrongAnswer {
		fmt.Fprintf(r.w, "[RUNNER]   Output:   \"%s\"\n", Preview(res.Output, r.opts.PreviewLength))
		fmt.Fprintf(r.w, "[RUNNER]   Expected: \"%s\"\n", Preview(res.Expected, r.opts.PreviewLength))
		if r.opts.Diff {
			r.printDiff(res)
		}
	}
}

// SuiteFinished prints the aggregate line of a full run.
func (r *TextReporter) SuiteFinished(sum *runner.Summary) {
	if sum.AllPassed() {
		fmt.Fprintln(r.w, r.style(r.pass, "All tests passed!"))
		return
	}
	fmt.Fprintln(r.w, r.style(r.fail, fmt.Sprintf("Passed %d out of %d tests.", sum.Passed, sum.Total)))
}

// PrintSinglePass confirms a fixture run on its own.
func (r *TextReporter) PrintSinglePass(name string) {
	fmt.Fprintln(r.w, r.style(r.pass, fmt.Sprintf("Test \"%s\" passed!", name)))
}

// PrintRerun writes the separator shown before each watch-mode run.
func (r *TextReporter) PrintRerun(n int, trigger string) {
	line := fmt.Sprintf("--- run #%d at %s", n, time.Now().Format(time.TimeOnly))
	if trigger != "" {
		line += " (changed: " + trigger + ")"
	}
	fmt.Fprintln(r.w, r.style(r.dim, line+" ---"))
}

func (r *TextReporter) printFailure(name, reason string) {
	fmt.Fprintf(r.w, "[RUNNER] Test \"%s\" %s %s\n", name, r.style(r.fail, "Failed!"), reason)
}

func (r *TextReporter) printDiff(res *runner.Result) {
	for _, line := range LineDiff(string(res.Expected), string(res.Output)) {
		text := line.String()
		switch line.Op {
		case DiffDelete:
			text = r.style(r.fail, text)
		case DiffInsert:
			text = r.style(r.pass, text)
		default:
			text = r.style(r.dim, text)
		}
		fmt.Fprintf(r.w, "[RUNNER]     %s\n", text)
	}
}

func (r *TextReporter) style(s lipgloss.Style, text string) string {
	if !r.opts.Color {
		return text
	}
	return s.Render(text)
}
