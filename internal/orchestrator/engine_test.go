package orchestrator

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mcgclock/internal/monitor"
	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/errors"
	"github.com/turtacn/mcgclock/pkg/graph"
	"github.com/turtacn/mcgclock/pkg/logger"
	"github.com/turtacn/mcgclock/pkg/protocol"
)

type failingApplier struct {
	reject consts.ClockMode
}

func (f failingApplier) Apply(from, to consts.ClockMode) error {
	if to == f.reject {
		return fmt.Errorf("register write to %s timed out", to)
	}
	return nil
}

func newController(t *testing.T, cfg *protocol.Config, applier ModeApplier) (*Controller, *monitor.Metrics) {
	t.Helper()
	m := monitor.NewMetrics(prometheus.NewRegistry())
	c, err := NewController(cfg, applier, m)
	require.NoError(t, err)
	return c.WithLogger(logger.NewNop()), m
}

func TestNewController(t *testing.T) {
	c, m := newController(t, protocol.Default(), nil)
	assert.Equal(t, consts.ClockModeFEI, c.Current())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CurrentMode))
}

func TestController_TransitionAppliesEachStep(t *testing.T) {
	rec := &RecordingApplier{}
	c, m := newController(t, protocol.Default(), rec)

	res, err := c.Transition(consts.ClockModePEE)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, consts.ClockModeFEI, res.From)
	assert.Equal(t, 3, res.Steps())
	assert.Equal(t, "FEI -> FBE -> PBE -> PEE", res.PathString())
	assert.Equal(t, []consts.ClockMode{consts.ClockModeFBE, consts.ClockModePBE, consts.ClockModePEE}, rec.Applied())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.CurrentMode))
}

func TestController_SameModeAppliesNothing(t *testing.T) {
	rec := &RecordingApplier{}
	c, _ := newController(t, protocol.Default(), rec)

	res, err := c.Transition(consts.ClockModeFEI)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Steps())
	assert.Empty(t, rec.Applied())
}

func TestController_InvalidTarget(t *testing.T) {
	c, m := newController(t, protocol.Default(), nil)

	_, err := c.Transition(consts.ClockModeNone)
	assert.ErrorIs(t, err, errors.ErrInvalidMode)
	assert.Equal(t, consts.ClockModeFEI, c.Current())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("InvalidMode")))
}

func TestController_ApplierFailureStopsBeforeCommit(t *testing.T) {
	c, m := newController(t, protocol.Default(), failingApplier{reject: consts.ClockModePEE})

	res, err := c.Transition(consts.ClockModePEE)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookFailed)
	assert.Equal(t, consts.ClockModePBE, c.Current())
	assert.Equal(t, "FEI -> FBE -> PBE", res.PathString())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("HookFailed")))
}

func TestController_RejectsDivergentTable(t *testing.T) {
	rows := graph.Reference().Rows()
	pbe, _ := consts.ClockModePBE.Index()
	pee, _ := consts.ClockModePEE.Index()
	rows[pbe][pee] = consts.ClockModeFBE
	g, err := graph.FromRows(rows)
	require.NoError(t, err)

	cfg := protocol.Default()
	cfg.Table = protocol.TableFromGraph(g)
	_, err = NewController(cfg, nil, nil)
	assert.ErrorIs(t, err, errors.ErrTableInvalid)
	assert.ErrorIs(t, err, errors.ErrUnreachable)
	assert.Contains(t, err.Error(), "PBE=>PEE")
}

func TestController_BoundFromConfig(t *testing.T) {
	cfg := protocol.Default()
	cfg.Engine.InitialMode = consts.ClockModePEE
	cfg.Engine.StepBound = 4
	c, _ := newController(t, cfg, nil)

	_, err := c.Transition(consts.ClockModeBLPI)
	require.NoError(t, err)

	cfg.Engine.StepBound = 3
	_, err = NewController(cfg, nil, nil)
	assert.ErrorIs(t, err, errors.ErrTableInvalid)
}

func TestController_SerializesConcurrentRequests(t *testing.T) {
	rec := &RecordingApplier{}
	c, m := newController(t, protocol.Default(), rec)

	targets := consts.OperatingModes()
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(target consts.ClockMode) {
			defer wg.Done()
			_, err := c.Transition(target)
			assert.NoError(t, err)
		}(targets[i%len(targets)])
	}
	wg.Wait()

	assert.Equal(t, float64(40), testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("ok")))
	assert.True(t, c.Current().Valid())
}
