package graph

import (
	"fmt"
	"strings"

	"github.com/turtacn/mcgclock/pkg/consts"
)

// DOT renders the direct edges as a Graphviz digraph. The reset mode gets an
// entry arrow from an invisible start point.
func (g *ModeGraph) DOT() string {
	var sb strings.Builder
	sb.WriteString("digraph MCG {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=circle];\n")
	sb.WriteString("  start [shape=point];\n")
	sb.WriteString(fmt.Sprintf("  start -> %q [label=\"reset\"];\n", consts.DefaultResetMode.String()))
	for _, m := range consts.OperatingModes() {
		sb.WriteString(fmt.Sprintf("  %q;\n", m.String()))
	}
	for _, e := range g.Edges() {
		sb.WriteString(fmt.Sprintf("  %q -> %q;\n", e.From.String(), e.To.String()))
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Mermaid renders the direct edges as a Mermaid flowchart, highlighting the
// given current mode if it is an operating mode.
func (g *ModeGraph) Mermaid(current consts.ClockMode) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	for _, m := range consts.OperatingModes() {
		if m == consts.DefaultResetMode {
			sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", m, m))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", m, m))
	}
	for _, e := range g.Edges() {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", e.From, e.To))
	}
	if current.Valid() {
		sb.WriteString("    classDef current fill:#f96,stroke:#333,stroke-width:2px\n")
		sb.WriteString(fmt.Sprintf("    class %s current\n", current))
	}
	return sb.String()
}

// Personal.AI order the ending
