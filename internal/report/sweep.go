// Package report exercises a mode graph across every (from, to) pair and prints
// one line per request in the classic transition-table trace format.
package report

import (
	"fmt"
	"io"

	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/fsm"
	"github.com/turtacn/mcgclock/pkg/graph"
)

// Failure records a pair that did not reach its target.
type Failure struct {
	From, To consts.ClockMode
	Err      error
}

// Summary is the outcome of a full sweep.
type Summary struct {
	Pairs       int
	Failures    []Failure
	LongestPath int
}

// OK reports whether every pair converged.
func (s Summary) OK() bool { return len(s.Failures) == 0 }

// Sweep resets a fresh machine to each operating mode, requests each operating
// mode from it, and writes the trace to w.
func Sweep(w io.Writer, g graph.Stepper, bound int) (Summary, error) {
	var s Summary
	for _, from := range consts.OperatingModes() {
		for _, to := range consts.OperatingModes() {
			m, err := fsm.New(g, from, fsm.WithStepBound(bound))
			if err != nil {
				return s, err
			}
			visited, err := m.TransitionTo(to)
			if werr := writeLine(w, s.Pairs, from, to, visited, err); werr != nil {
				return s, werr
			}
			s.Pairs++
			if err != nil {
				s.Failures = append(s.Failures, Failure{From: from, To: to, Err: err})
				continue
			}
			if steps := len(visited) - 1; steps > s.LongestPath {
				s.LongestPath = steps
			}
		}
	}
	return s, nil
}

func writeLine(w io.Writer, n int, from, to consts.ClockMode, visited []consts.ClockMode, failed error) error {
	line := fmt.Sprintf("%3d: (%5s=>%5s): ", n, from, to)
	for i, m := range visited {
		if i > 0 {
			line += ", "
		}
		line += fmt.Sprintf("%5s", m)
	}
	if failed != nil {
		line += " ==> Failed"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// Personal.AI order the ending
