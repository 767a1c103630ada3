package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/langbench/internal/reporter"
	"github.com/ppiankov/langbench/internal/runner"
	"github.com/ppiankov/langbench/internal/watch"
)

// runWatch runs the selected fixtures once, then again after every change
// until ctx is cancelled. Rounds never overlap: the watcher and the 'r' key
// only queue a request, and a single loop drains the queue.
func runWatch(ctx context.Context, out io.Writer, opts testOptions, r *runner.Runner, sel fixtureSelector, binary string) error {
	w, err := watch.New(watch.Config{Dir: sel.dir, Binary: binary, Poll: opts.poll})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	requests := make(chan string, 1)
	request := func(trigger string) {
		select {
		case requests <- trigger:
		default: // a round is already queued
		}
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Run(ctx, request)
	}()

	var display watchDisplay
	if useDashboard(opts.tuiMode) {
		display = newDashboardDisplay(out, sel, opts.preview, func() { request("manual") }, cancel)
	} else {
		display = newTextDisplay(out, opts)
	}
	defer display.close()

	request("")
	for {
		select {
		case <-ctx.Done():
			return <-watchErr
		case err := <-watchErr:
			return err
		case trigger := <-requests:
			display.begin(trigger)
			sum, err := runRound(ctx, runner.NewSuite(r, display.observer()), sel, display.passPrinter())
			if ctx.Err() != nil {
				continue
			}
			display.end(sum, err)
			if err == nil {
				if err := writeReports(sum, opts); err != nil {
					slog.Warn("failed to write report", "error", err)
				}
			}
		}
	}
}

func useDashboard(mode string) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal()
}

// watchDisplay renders watch-mode rounds.
type watchDisplay interface {
	begin(trigger string)
	observer() runner.Observer
	passPrinter() singlePassPrinter
	end(sum *runner.Summary, err error)
	close()
}

type textDisplay struct {
	out  io.Writer
	rep  *reporter.TextReporter
	runs int
}

func newTextDisplay(out io.Writer, opts testOptions) *textDisplay {
	return &textDisplay{out: out, rep: reporter.NewTextReporter(out, reporterOptions(out, opts))}
}

func (d *textDisplay) begin(trigger string) {
	d.runs++
	d.rep.PrintRerun(d.runs, trigger)
}

func (d *textDisplay) observer() runner.Observer { return d.rep }
func (d *textDisplay) passPrinter() singlePassPrinter { return d.rep }

func (d *textDisplay) end(_ *runner.Summary, err error) {
	if err != nil {
		fmt.Fprintf(d.out, "[RUNNER] run aborted: %v\n", err)
	}
}

func (d *textDisplay) close() {}

type dashboardDisplay struct {
	program *tea.Program
	obs     *reporter.ProgramObserver
	done    chan struct{}
}

func newDashboardDisplay(out io.Writer, sel fixtureSelector, preview int, rerun, quit func()) *dashboardDisplay {
	title := sel.dir
	if sel.single() {
		title = sel.name
	}
	model := reporter.NewDashboardModel(title, preview, rerun, quit)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(out))

	d := &dashboardDisplay{program: p, obs: reporter.NewProgramObserver(p), done: make(chan struct{})}
	go func() {
		defer close(d.done)
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			slog.Warn("TUI error", "error", err)
		}
		quit()
	}()
	return d
}

func (d *dashboardDisplay) begin(trigger string) {
	d.program.Send(reporter.RunStartedMsg{Trigger: trigger})
}

func (d *dashboardDisplay) observer() runner.Observer { return d.obs }
func (d *dashboardDisplay) passPrinter() singlePassPrinter { return nil }

func (d *dashboardDisplay) end(sum *runner.Summary, err error) {
	d.program.Send(reporter.RunFinishedMsg{Summary: sum, Err: err})
}

func (d *dashboardDisplay) close() {
	d.program.Quit()
	select {
	case <-d.done:
	case <-time.After(time.Second):
	}
}
