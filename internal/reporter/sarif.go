package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/langbench/internal/runner"
)

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// one rule per failing verdict
var sarifRules = []sarifRule{
	{ID: "time-limit-exceeded", ShortDescription: sarifMessage{Text: "Time Limit Exceeded"}},
	{ID: "wrong-answer", ShortDescription: sarifMessage{Text: "Wrong Answer"}},
	{ID: "non-zero-exit", ShortDescription: sarifMessage{Text: "Got non-zero return code"}},
}

func sarifRuleID(v runner.Verdict) string {
	switch v {
	case runner.VerdictTimeLimitExceeded:
		return "time-limit-exceeded"
	case runner.VerdictWrongAnswer:
		return "wrong-answer"
	case runner.VerdictNonZeroExit:
		return "non-zero-exit"
	}
	return ""
}

// WriteSARIFReport writes a SARIF v2.1.0 report with one result per failed
// fixture, located at the fixture's source file.
func WriteSARIFReport(sum *runner.Summary, toolVersion string, previewLen int, path string) error {
	results := make([]sarifResult, 0, sum.Failed())
	for _, res := range sum.Results {
		ruleID := sarifRuleID(res.Verdict)
		if ruleID == "" {
			continue
		}

		msg := fmt.Sprintf("Test \"%s\" failed: %s", res.Name, verdictText(res.Verdict))
		if res.Verdict == runner.VerdictWrongAnswer {
			msg += fmt.Sprintf(" (output %q, expected %q)", Preview(res.Output, previewLen), Preview(res.Expected, previewLen))
		}

		sr := sarifResult{
			RuleID:  ruleID,
			Level:   "error",
			Message: sarifMessage{Text: msg},
		}
		if res.Source != "" {
			sr.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(res.Source)},
				},
			}}
		}
		results = append(results, sr)
	}

	sarif := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{Name: "langtest", Version: toolVersion, Rules: sarifRules},
			},
			Results: results,
		}},
	}

	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}

	return nil
}

// verdictText is the wording used in the text diagnostics.
func verdictText(v runner.Verdict) string {
	switch v {
	case runner.VerdictTimeLimitExceeded:
		return "Time Limit Exceeded!"
	case runner.VerdictWrongAnswer:
		return "Wrong Answer!"
	case runner.VerdictNonZeroExit:
		return "Got non-zero return code!"
	}
	return string(v)
}
