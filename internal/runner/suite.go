package runner

import (
	"context"
	"time"

	"github.com/ppiankov/langbench/internal/fixture"
)

// Observer receives suite progress. The text reporter and the watch-mode
// dashboard both implement it.
type Observer interface {
	FixtureFinished(res *Result)
	SuiteFinished(sum *Summary)
}

// Suite runs fixtures strictly one after another.
type Suite struct {
	runner   *Runner
	observer Observer
}

// NewSuite creates a suite. observer may be nil.
func NewSuite(r *Runner, observer Observer) *Suite {
	return &Suite{runner: r, observer: observer}
}

// RunAll runs every fixture once, in order. A failing fixture does not stop
// the run; an error (missing file, unstartable binary, interrupt) does.
func (s *Suite) RunAll(ctx context.Context, fixtures []fixture.Fixture) (*Summary, error) {
	sum := &Summary{StartedAt: time.Now()}
	for _, fx := range fixtures {
		res, err := s.runner.Run(ctx, fx)
		if err != nil {
			return nil, err
		}
		sum.add(res)
		if s.observer != nil {
			s.observer.FixtureFinished(res)
		}
	}
	sum.Duration = time.Since(sum.StartedAt)
	if s.observer != nil {
		s.observer.SuiteFinished(sum)
	}
	return sum, nil
}

// RunOne runs a single named fixture.
func (s *Suite) RunOne(ctx context.Context, fx fixture.Fixture) (*Result, error) {
	res, err := s.runner.Run(ctx, fx)
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.FixtureFinished(res)
	}
	return res, nil
}
