// Package fsm drives an MCG clock mode to a requested target one legal step at a time.
//
// A Machine is not safe for concurrent use. Callers that share one across
// goroutines must serialize TransitionTo themselves.
package fsm

import (
	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/errors"
	"github.com/turtacn/mcgclock/pkg/graph"
)

// StepHook is invoked before each step is committed. Returning an error leaves
// the machine at from.
type StepHook func(from, to consts.ClockMode) error

// Option configures a Machine.
type Option func(*Machine)

// WithStepBound overrides the default bound of consts.MaxTransitionSteps.
func WithStepBound(bound int) Option {
	return func(m *Machine) { m.bound = bound }
}

// WithRollback makes a failed request restore the mode held before the call.
// Without it the machine stays wherever the failed request left it.
func WithRollback() Option {
	return func(m *Machine) { m.rollback = true }
}

// WithStepHook registers a per-step observer. A hook error aborts the request.
func WithStepHook(h StepHook) Option {
	return func(m *Machine) { m.hook = h }
}

// Machine tracks the logical current clock mode.
type Machine struct {
	graph    graph.Stepper
	current  consts.ClockMode
	bound    int
	rollback bool
	hook     StepHook
	lookups  int
}

// New creates a Machine in the given initial mode.
func New(g graph.Stepper, initial consts.ClockMode, opts ...Option) (*Machine, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeTableInvalid, "fsm.New", "mode graph is nil", nil)
	}
	if !initial.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMode, "fsm.New", "initial mode %s is not an operating mode", initial)
	}
	m := &Machine{
		graph:   g,
		current: initial,
		bound:   consts.MaxTransitionSteps,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.bound < 0 {
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "fsm.New", "step bound must not be negative, got %d", m.bound)
	}
	return m, nil
}

// NewDefault creates a Machine over the reference graph in the power-on-reset mode.
func NewDefault(opts ...Option) *Machine {
	m, _ := New(graph.Reference(), consts.DefaultResetMode, opts...)
	return m
}

func (m *Machine) Current() consts.ClockMode {
	return m.current
}

// Bound returns the per-request step bound.
func (m *Machine) Bound() int {
	return m.bound
}

// Lookups returns the total number of graph queries made so far.
func (m *Machine) Lookups() int {
	return m.lookups
}

// TransitionTo moves the machine to target and returns every mode visited,
// starting with the mode held at call time and ending with target.
//
// It fails with InvalidMode, before touching any state, if target is not an
// operating mode, and with UnreachableOrDivergent once more than Bound steps
// would be needed.
func (m *Machine) TransitionTo(target consts.ClockMode) ([]consts.ClockMode, error) {
	if !target.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMode, "TransitionTo", "target %s (%d) is not an operating mode", target, uint8(target))
	}

	start := m.current
	visited := make([]consts.ClockMode, 1, m.bound+1)
	visited[0] = start

	steps := 0
	for m.current != target {
		steps++
		if steps > m.bound {
			return visited, m.fail(start, errors.Newf(errors.ErrCodeUnreachable, "TransitionTo",
				"%s=>%s not reached within %d steps (stuck at %s)", start, target, m.bound, m.current))
		}

		m.lookups++
		next, err := m.graph.NextStep(m.current, target)
		if err != nil {
			return visited, m.fail(start, err)
		}
		if !next.Valid() {
			return visited, m.fail(start, errors.Newf(errors.ErrCodeTableInvalid, "TransitionTo",
				"graph returned %s (%d) for %s=>%s", next, uint8(next), m.current, target))
		}

		if m.hook != nil {
			if err := m.hook(m.current, next); err != nil {
				return visited, m.fail(start, errors.New(errors.ErrCodeHookFailed, "TransitionTo",
					"step "+m.current.String()+"=>"+next.String()+" rejected", err))
			}
		}

		m.current = next
		visited = append(visited, next)
	}
	return visited, nil
}

func (m *Machine) fail(start consts.ClockMode, err error) error {
	if m.rollback {
		m.current = start
	}
	return err
}

// Personal.AI order the ending
