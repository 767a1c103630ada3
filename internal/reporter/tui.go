package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/langbench/internal/runner"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TUI styles
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	runStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type tickMsg time.Time

// RunStartedMsg tells the dashboard a new suite run began.
type RunStartedMsg struct {
	Trigger string // file that caused the run, empty for the first run
}

// FixtureDoneMsg carries one finished fixture of the current run.
type FixtureDoneMsg struct {
	Result *runner.Result
}

// RunFinishedMsg ends the current run. Err is set when the run aborted.
type RunFinishedMsg struct {
	Summary *runner.Summary
	Err     error
}

// DashboardModel is the Bubbletea model for watch mode.
type DashboardModel struct {
	title      string
	previewLen int
	rerun      func() // called on 'r'
	quit       func() // called on 'q' to cancel the watch context

	results []*runner.Result
	summary *runner.Summary
	err     error
	running bool
	runs    int
	trigger string

	scrollOffset int
	frame        int
	width        int
	height       int
}

// NewDashboardModel creates the watch-mode dashboard.
func NewDashboardModel(title string, previewLen int, rerun, quit func()) DashboardModel {
	if previewLen == 0 {
		previewLen = DefaultPreviewLength
	}
	return DashboardModel{
		title:      title,
		previewLen: previewLen,
		rerun:      rerun,
		quit:       quit,
	}
}

// Init implements tea.Model.
func (m DashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.quit != nil {
				m.quit()
			}
			return m, tea.Quit
		case "r":
			if m.rerun != nil && !m.running {
				m.rerun()
			}
		case "j", "down":
			m.scrollDown(1)
		case "k", "up":
			m.scrollUp(1)
		case "g", "home":
			m.scrollOffset = 0
		case "G", "end":
			m.scrollOffset = m.maxScroll()
		}

	case RunStartedMsg:
		m.running = true
		m.runs++
		m.trigger = msg.Trigger
		m.results = nil
		m.err = nil
		m.scrollOffset = 0

	case FixtureDoneMsg:
		m.results = append(m.results, msg.Result)

	case RunFinishedMsg:
		m.running = false
		m.summary = msg.Summary
		m.err = msg.Err

	case tickMsg:
		m.frame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m *DashboardModel) scrollDown(n int) {
	m.scrollOffset += n
	if max := m.maxScroll(); m.scrollOffset > max {
		m.scrollOffset = max
	}
}

func (m *DashboardModel) scrollUp(n int) {
	m.scrollOffset -= n
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m DashboardModel) visibleLines() int {
	// header(1) + status(1) + blank(1) + help(1)
	avail := m.height - 4
	if avail < 3 {
		return 3
	}
	return avail
}

func (m DashboardModel) maxScroll() int {
	total := len(m.buildLines())
	if vis := m.visibleLines(); total > vis {
		return total - vis
	}
	return 0
}

// View implements tea.Model.
func (m DashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	header := fmt.Sprintf("langtest — %s  run #%d", m.title, m.runs)
	if m.trigger != "" {
		header += "  (changed: " + m.trigger + ")"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	lines := m.buildLines()
	start := m.scrollOffset
	if start > len(lines) {
		start = len(lines)
	}
	end := start + m.visibleLines()
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for i := 3 + (end - start); i < m.height-1; i++ {
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("  r: re-run  ↑↓/jk: scroll  g/G: top/bottom  q: quit"))
	return b.String()
}

func (m DashboardModel) statusLine() string {
	switch {
	case m.running:
		spinner := spinnerChars[m.frame%len(spinnerChars)]
		return runStyle.Render(fmt.Sprintf("  %s running — %d finished", spinner, len(m.results)))
	case m.err != nil:
		return failedStyle.Render("  run aborted: " + m.err.Error())
	case m.summary == nil:
		return dimStyle.Render("  waiting for first run")
	case m.summary.AllPassed():
		return doneStyle.Render("  All tests passed!")
	default:
		return failedStyle.Render(fmt.Sprintf("  Passed %d out of %d tests.", m.summary.Passed, m.summary.Total))
	}
}

// buildLines lists failures first, then passes, each in run order.
func (m DashboardModel) buildLines() []string {
	var failed, passed []string
	for _, res := range m.results {
		if res.Passed() {
			passed = append(passed, doneStyle.Render(fmt.Sprintf("  ✓ %-30s %s", res.Name, res.Duration.Truncate(time.Millisecond))))
			continue
		}
		line := fmt.Sprintf("  ✗ %-30s %s", res.Name, verdictLabel(res.Verdict))
		if res.Verdict == runner.VerdictWrongAnswer {
			line += fmt.Sprintf("  got %q want %q", Preview(res.Output, m.previewLen), Preview(res.Expected, m.previewLen))
		}
		failed = append(failed, failedStyle.Render(line))
	}
	return append(failed, passed...)
}

func verdictLabel(v runner.Verdict) string {
	switch v {
	case runner.VerdictTimeLimitExceeded:
		return "TLE"
	case runner.VerdictWrongAnswer:
		return "WA"
	case runner.VerdictNonZeroExit:
		return "exit≠0"
	}
	return string(v)
}

// ProgramObserver forwards suite progress to a running Bubbletea program.
type ProgramObserver struct {
	p *tea.Program
}

// NewProgramObserver wraps p as a runner.Observer.
func NewProgramObserver(p *tea.Program) *ProgramObserver {
	return &ProgramObserver{p: p}
}

// FixtureFinished implements runner.Observer.
func (o *ProgramObserver) FixtureFinished(res *runner.Result) {
	o.p.Send(FixtureDoneMsg{Result: res})
}

// SuiteFinished implements runner.Observer. The watch loop sends
// RunFinishedMsg itself so aborted runs are reported too.
func (o *ProgramObserver) SuiteFinished(*runner.Summary) {}
