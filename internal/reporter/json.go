package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/langbench/internal/runner"
)

type jsonResult struct {
	Name     string         `json:"name"`
	Verdict  runner.Verdict `json:"verdict"`
	ExitCode int            `json:"exit_code"`
	Duration string         `json:"duration"`
	Output   string         `json:"output,omitempty"`
	Expected string         `json:"expected,omitempty"`
	Stderr   string         `json:"stderr,omitempty"`
}

type jsonReport struct {
	StartedAt time.Time    `json:"started_at"`
	Duration  string       `json:"duration"`
	Total     int          `json:"total"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
	Results   []jsonResult `json:"results"`
}

// WriteJSONReport writes the run summary as JSON to the given path.
// Output and expected text are only included for failed fixtures.
func WriteJSONReport(sum *runner.Summary, path string) error {
	report := jsonReport{
		StartedAt: sum.StartedAt,
		Duration:  sum.Duration.String(),
		Total:     sum.Total,
		Passed:    sum.Passed,
		Failed:    sum.Failed(),
		Results:   make([]jsonResult, 0, len(sum.Results)),
	}
	for _, res := range sum.Results {
		jr := jsonResult{
			Name:     res.Name,
			Verdict:  res.Verdict,
			ExitCode: res.ExitCode,
			Duration: res.Duration.String(),
			Stderr:   res.Stderr,
		}
		if !res.Passed() {
			jr.Output = string(res.Output)
			jr.Expected = string(res.Expected)
		}
		report.Results = append(report.Results, jr)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
