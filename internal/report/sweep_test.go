package report

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/errors"
	"github.com/turtacn/mcgclock/pkg/graph"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// To regenerate: go test ./internal/report -run TestSweep -update
func TestSweep_Reference(t *testing.T) {
	var buf bytes.Buffer
	s, err := Sweep(&buf, graph.Reference(), consts.MaxTransitionSteps)
	require.NoError(t, err)

	assert.True(t, s.OK())
	assert.Equal(t, 64, s.Pairs)
	assert.Equal(t, 4, s.LongestPath)
	newGoldie(t).Assert(t, "reference_sweep", buf.Bytes())
}

func TestSweep_DivergentTable(t *testing.T) {
	rows := graph.Reference().Rows()
	pbe, _ := consts.ClockModePBE.Index()
	pee, _ := consts.ClockModePEE.Index()
	rows[pbe][pee] = consts.ClockModeFBE
	g, err := graph.FromRows(rows)
	require.NoError(t, err)

	var buf bytes.Buffer
	s, err := Sweep(&buf, g, consts.MaxTransitionSteps)
	require.NoError(t, err)

	assert.False(t, s.OK())
	require.Len(t, s.Failures, 7)
	for _, f := range s.Failures {
		assert.Equal(t, consts.ClockModePEE, f.To)
		assert.ErrorIs(t, f.Err, errors.ErrUnreachable)
	}
	newGoldie(t).Assert(t, "divergent_sweep", buf.Bytes())
}
