package protocol

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/errors"
	"github.com/turtacn/mcgclock/pkg/graph"
)

// Config represents the root configuration file.
type Config struct {
	Version       string              `yaml:"version"`
	Engine        EngineConfig        `yaml:"engine"`
	Table         TableConfig         `yaml:"table,omitempty"` // Empty means the reference table
	Observability ObservabilityConfig `yaml:"observability"`
}

type EngineConfig struct {
	InitialMode       consts.ClockMode `yaml:"initial_mode"`
	StepBound         int              `yaml:"step_bound"`
	RollbackOnFailure bool             `yaml:"rollback_on_failure"`
}

// TableConfig maps each current mode to its row of next modes, in target order
// FEI, FEE, FBI, BLPI, FBE, BLPE, PBE, PEE.
type TableConfig map[string][]consts.ClockMode

type ObservabilityConfig struct {
	MetricsAddr string `yaml:"metrics_addr"` // Empty disables the endpoint
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Engine: EngineConfig{
			InitialMode: consts.DefaultResetMode,
			StepBound:   consts.MaxTransitionSteps,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Load reads a YAML config file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "Load", "cannot read "+path, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "Parse", "invalid YAML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges. The table itself is checked by BuildGraph.
func (c *Config) Validate() error {
	if !c.Engine.InitialMode.Valid() {
		return errors.Newf(errors.ErrCodeConfigInvalid, "Validate", "engine.initial_mode %s is not an operating mode", c.Engine.InitialMode)
	}
	if c.Engine.StepBound < 1 {
		return errors.Newf(errors.ErrCodeConfigInvalid, "Validate", "engine.step_bound must be positive, got %d", c.Engine.StepBound)
	}
	keys := make(map[consts.ClockMode]string, len(c.Table))
	for name := range c.Table {
		m, err := consts.ParseClockMode(name)
		if err != nil {
			return errors.New(errors.ErrCodeConfigInvalid, "Validate", "table", err)
		}
		if prev, dup := keys[m]; dup {
			first, second := prev, name
			if second < first {
				first, second = second, first
			}
			return errors.Newf(errors.ErrCodeConfigInvalid, "Validate", "table rows %q and %q both name %s", first, second, m)
		}
		keys[m] = name
	}
	return nil
}

// BuildGraph returns the configured mode graph, or the reference one when no
// table is given. A custom table must have a row for every operating mode.
func (c *Config) BuildGraph() (*graph.ModeGraph, error) {
	if len(c.Table) == 0 {
		return graph.Reference(), nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rows := make([][]consts.ClockMode, 0, consts.NumOperatingModes)
	byMode := make(map[consts.ClockMode][]consts.ClockMode, len(c.Table))
	for name, row := range c.Table {
		m, err := consts.ParseClockMode(name)
		if err != nil {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "BuildGraph", "table", err)
		}
		byMode[m] = row
	}
	for _, m := range consts.OperatingModes() {
		row, ok := byMode[m]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeTableInvalid, "BuildGraph", "table has no row for %s", m)
		}
		rows = append(rows, row)
	}
	return graph.FromRows(rows)
}

// TableFromGraph converts a graph back to its YAML form.
func TableFromGraph(g *graph.ModeGraph) TableConfig {
	t := make(TableConfig, consts.NumOperatingModes)
	for i, row := range g.Rows() {
		m, _ := consts.ModeAt(i)
		t[m.String()] = row
	}
	return t
}

// MarshalTable renders a graph as the `table:` YAML section.
func MarshalTable(g *graph.ModeGraph) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	t := TableFromGraph(g)
	for _, m := range consts.OperatingModes() {
		row := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, next := range t[m.String()] {
			row.Content = append(row.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: next.String()})
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: m.String()}, row)
	}
	out, err := yaml.Marshal(map[string]*yaml.Node{"table": node})
	if err != nil {
		return nil, fmt.Errorf("marshal table: %w", err)
	}
	return out, nil
}

// Personal.AI order the ending
