package reporter

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp marks a diff line as shared, expected-only or actual-only.
type DiffOp byte

const (
	DiffEqual  DiffOp = ' '
	DiffDelete DiffOp = '-' // present only in the expected output
	DiffInsert DiffOp = '+' // present only in the actual output
)

// DiffLine is one line of a line-oriented diff.
type DiffLine struct {
	Op    DiffOp
	Text  string // without the trailing newline
	NoEOL bool   // line was not newline-terminated
}

// String renders the line the way `diff -u` would.
func (l DiffLine) String() string {
	s := string(l.Op) + " " + l.Text
	if l.NoEOL {
		s += "  (no newline at end)"
	}
	return s
}

// LineDiff compares expected and actual output line by line.
func LineDiff(expected, actual string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		op := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			text, terminated := strings.CutSuffix(line, "\n")
			out = append(out, DiffLine{Op: op, Text: text, NoEOL: !terminated})
		}
	}
	return out
}
