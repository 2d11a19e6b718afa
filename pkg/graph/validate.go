package graph

import (
	stderrors "errors"
	"fmt"

	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/errors"
)

// Report summarizes a table check.
type Report struct {
	Pairs       int
	LongestPath int
	Violations  []error
}

// Check walks all 64 pairs and collects every construction-invariant violation:
// a diagonal entry that is not a fixed point, or a pair that does not reach its
// target within bound steps.
func (g *ModeGraph) Check(bound int) Report {
	var r Report
	for _, from := range consts.OperatingModes() {
		if next, _ := g.NextStep(from, from); next != from {
			r.Violations = append(r.Violations, fmt.Errorf("(%s, %s) must be a fixed point, got %s", from, from, next))
		}
		for _, to := range consts.OperatingModes() {
			r.Pairs++
			path, err := g.Path(from, to, bound)
			if err != nil {
				r.Violations = append(r.Violations, err)
				continue
			}
			if steps := len(path) - 1; steps > r.LongestPath {
				r.LongestPath = steps
			}
		}
	}
	return r
}

// Validate returns a TableInvalid error wrapping every violation Check finds.
func (g *ModeGraph) Validate(bound int) error {
	r := g.Check(bound)
	if len(r.Violations) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeTableInvalid, "Validate",
		fmt.Sprintf("%d violation(s) in mode graph", len(r.Violations)), stderrors.Join(r.Violations...))
}

// Personal.AI order the ending
