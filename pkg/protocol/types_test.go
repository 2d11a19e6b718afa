package protocol

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/errors"
	"github.com/turtacn/mcgclock/pkg/graph"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, consts.ClockModeFEI, cfg.Engine.InitialMode)
	assert.Equal(t, 6, cfg.Engine.StepBound)

	g, err := cfg.BuildGraph()
	require.NoError(t, err)
	assert.Equal(t, graph.Reference().Rows(), g.Rows())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcg.yaml")
	doc := `version: "1"
engine:
  initial_mode: blpi
  rollback_on_failure: true
observability:
  log_level: debug
  metrics_addr: "127.0.0.1:9102"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, consts.ClockModeBLPI, cfg.Engine.InitialMode)
	assert.Equal(t, consts.MaxTransitionSteps, cfg.Engine.StepBound)
	assert.True(t, cfg.Engine.RollbackOnFailure)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	assert.Equal(t, "127.0.0.1:9102", cfg.Observability.MetricsAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad mode":  "engine:\n  initial_mode: MCG\n",
		"bad bound": "engine:\n  step_bound: 0\n",
		"bad row":   "table:\n  XYZ: [FEI]\n",
		"not yaml":  "engine: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, errors.ErrConfig)
		})
	}
}

func TestTableRoundTrip(t *testing.T) {
	out, err := MarshalTable(graph.Reference())
	require.NoError(t, err)
	assert.Contains(t, string(out), "FEI: [FEI, FEE, FBI, FBI, FBE, FBE, FBE, FBE]")
	assert.Contains(t, string(out), "BLPI: [FBI, FBI, FBI, FBI, FBI, FBI, FBI, FBI]")

	cfg, err := Parse(out)
	require.NoError(t, err)
	g, err := cfg.BuildGraph()
	require.NoError(t, err)
	assert.Equal(t, graph.Reference().Rows(), g.Rows())
}

func TestBuildGraph_MissingRow(t *testing.T) {
	cfg := Default()
	cfg.Table = TableFromGraph(graph.Reference())
	delete(cfg.Table, "PEE")

	_, err := cfg.BuildGraph()
	assert.ErrorIs(t, err, errors.ErrTableInvalid)
}

func TestParse_RejectsDuplicateRowSpellings(t *testing.T) {
	out, err := MarshalTable(graph.Reference())
	require.NoError(t, err)
	doc := string(out) + "    fei: [FEE, FEE, FBI, FBI, FBE, FBE, FBE, FBE]\n"

	for i := 0; i < 20; i++ {
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrConfig)
		assert.Contains(t, err.Error(), `"FEI" and "fei" both name FEI`)
	}
}

func TestBuildGraph_RejectsDuplicateRowSpellings(t *testing.T) {
	cfg := Default()
	cfg.Table = TableFromGraph(graph.Reference())
	cfg.Table["Fei"] = cfg.Table["FEE"]

	_, err := cfg.BuildGraph()
	assert.ErrorIs(t, err, errors.ErrConfig)
}
