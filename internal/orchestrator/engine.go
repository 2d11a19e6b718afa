package orchestrator

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/turtacn/mcgclock/internal/monitor"
	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/errors"
	"github.com/turtacn/mcgclock/pkg/fsm"
	"github.com/turtacn/mcgclock/pkg/logger"
	"github.com/turtacn/mcgclock/pkg/protocol"
)

// ModeApplier is the register layer: it writes the peripheral-control bits of
// one clock mode. The controller calls it once per step, before the machine
// commits that step.
type ModeApplier interface {
	Apply(from, to consts.ClockMode) error
}

// RecordingApplier keeps the modes it was asked to apply, for dry runs and tests.
type RecordingApplier struct {
	mu      sync.Mutex
	applied []consts.ClockMode
}

func (r *RecordingApplier) Apply(from, to consts.ClockMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, to)
	return nil
}

// Applied returns a copy of every mode applied so far.
func (r *RecordingApplier) Applied() []consts.ClockMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]consts.ClockMode(nil), r.applied...)
}

// Result describes one transition request.
type Result struct {
	RequestID string
	From      consts.ClockMode
	Target    consts.ClockMode
	Visited   []consts.ClockMode
}

// Steps is the number of single-mode moves taken.
func (r Result) Steps() int {
	if len(r.Visited) == 0 {
		return 0
	}
	return len(r.Visited) - 1
}

// PathString renders the visited modes as "FEI -> FBE -> PBE".
func (r Result) PathString() string {
	names := make([]string, len(r.Visited))
	for i, m := range r.Visited {
		names[i] = m.String()
	}
	return strings.Join(names, " -> ")
}

// Controller owns one machine, serializes requests on it and narrates them.
type Controller struct {
	mu      sync.Mutex
	machine *fsm.Machine
	applier ModeApplier
	metrics *monitor.Metrics
	log     logger.Logger
}

// NewController builds a controller from cfg. applier and metrics may be nil.
func NewController(cfg *protocol.Config, applier ModeApplier, metrics *monitor.Metrics) (*Controller, error) {
	g, err := cfg.BuildGraph()
	if err != nil {
		return nil, err
	}
	// A divergent table is refused here as TableInvalid (wrapping the
	// UnreachableOrDivergent pairs); Transition never sees one.
	if err := g.Validate(cfg.Engine.StepBound); err != nil {
		return nil, err
	}

	c := &Controller{
		applier: applier,
		metrics: metrics,
		log:     logger.Log.With("component", "mcg"),
	}

	opts := []fsm.Option{fsm.WithStepBound(cfg.Engine.StepBound)}
	if cfg.Engine.RollbackOnFailure {
		opts = append(opts, fsm.WithRollback())
	}
	if applier != nil {
		opts = append(opts, fsm.WithStepHook(c.apply))
	}
	c.machine, err = fsm.New(g, cfg.Engine.InitialMode, opts...)
	if err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.SetMode(c.machine.Current())
	}
	return c, nil
}

// WithLogger replaces the controller's logger.
func (c *Controller) WithLogger(l logger.Logger) *Controller {
	c.log = l
	return c
}

// Current returns the logical current mode.
func (c *Controller) Current() consts.ClockMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Transition drives the machine to target.
func (c *Controller) Transition(target consts.ClockMode) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := Result{
		RequestID: uuid.NewString(),
		From:      c.machine.Current(),
		Target:    target,
	}
	log := c.log.With("request_id", res.RequestID, "from", res.From.String(), "to", target.String())

	visited, err := c.machine.TransitionTo(target)
	res.Visited = visited
	if err != nil {
		log.Error("Transition failed", "path", res.PathString(), "stuck_at", c.machine.Current().String(), "err", err)
		c.record(errors.CodeOf(err).String(), res)
		return res, err
	}

	log.Info("Transition complete", "path", res.PathString(), "steps", res.Steps())
	c.record("ok", res)
	return res, nil
}

func (c *Controller) apply(from, to consts.ClockMode) error {
	c.log.Debug("Applying mode", "from", from.String(), "to", to.String())
	return c.applier.Apply(from, to)
}

func (c *Controller) record(result string, res Result) {
	if c.metrics == nil {
		return
	}
	c.metrics.TransitionsTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		c.metrics.TransitionSteps.Observe(float64(res.Steps()))
	}
	c.metrics.SetMode(c.machine.Current())
}

// Personal.AI order the ending
