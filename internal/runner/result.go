package runner

import "time"

// Verdict is the outcome category of one fixture.
type Verdict string

const (
	VerdictPassed            Verdict = "PASSED"
	VerdictTimeLimitExceeded Verdict = "TIME_LIMIT_EXCEEDED"
	VerdictWrongAnswer       Verdict = "WRONG_ANSWER"
	VerdictNonZeroExit       Verdict = "NON_ZERO_EXIT"
)

// Result holds the outcome of running a single fixture.
type Result struct {
	Name     string        `json:"name"`
	Source   string        `json:"source"`
	Verdict  Verdict       `json:"verdict"`
	Output   []byte        `json:"-"`
	Expected []byte        `json:"-"`
	Stderr   string        `json:"stderr,omitempty"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Passed reports whether the fixture passed.
func (r *Result) Passed() bool { return r.Verdict == VerdictPassed }

// Summary aggregates the results of one suite run in execution order.
type Summary struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Results   []*Result     `json:"results"`
}

// AllPassed reports whether every fixture passed.
func (s *Summary) AllPassed() bool { return s.Passed == s.Total }

// Failed returns the number of fixtures that did not pass.
func (s *Summary) Failed() int { return s.Total - s.Passed }

func (s *Summary) add(res *Result) {
	s.Results = append(s.Results, res)
	s.Total++
	if res.Passed() {
		s.Passed++
	}
}

// NewSummary builds a summary from results that already finished.
func NewSummary(startedAt time.Time, results ...*Result) *Summary {
	sum := &Summary{StartedAt: startedAt}
	for _, res := range results {
		sum.add(res)
	}
	sum.Duration = time.Since(startedAt)
	return sum
}
