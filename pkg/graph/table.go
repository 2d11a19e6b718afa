// Package graph holds the MCG mode graph: a fixed lookup table giving, for every
// (current, target) pair of operating modes, the next legal mode to move to.
package graph

import (
	"fmt"

	"github.com/turtacn/mcgclock/pkg/consts"
	"github.com/turtacn/mcgclock/pkg/errors"
)

const n = consts.NumOperatingModes

// Stepper is the lookup contract the transition engine depends on.
type Stepper interface {
	NextStep(current, target consts.ClockMode) (consts.ClockMode, error)
}

// ModeGraph is an immutable next-step table. The zero value is not usable; build
// one with Reference or FromRows.
type ModeGraph struct {
	next [n][n]consts.ClockMode
}

const (
	fei  = consts.ClockModeFEI
	fee  = consts.ClockModeFEE
	fbi  = consts.ClockModeFBI
	blpi = consts.ClockModeBLPI
	fbe  = consts.ClockModeFBE
	blpe = consts.ClockModeBLPE
	pbe  = consts.ClockModePBE
	pee  = consts.ClockModePEE
)

// reference is the transition table of the Kinetis MCG family.
// Rows are the current mode, columns the target mode.
var reference = [n][n]consts.ClockMode{
	/*          FEI  FEE  FBI  BLPI  FBE  BLPE  PBE  PEE */
	/* FEI  */ {fei, fee, fbi, fbi, fbe, fbe, fbe, fbe},
	/* FEE  */ {fei, fee, fbi, fbi, fbe, fbe, fbe, fbe},
	/* FBI  */ {fei, fee, fbi, blpi, fbe, fbe, fbe, fbe},
	/* BLPI */ {fbi, fbi, fbi, fbi, fbi, fbi, fbi, fbi},
	/* FBE  */ {fei, fee, fbi, fbi, fbe, blpe, pbe, pbe},
	/* BLPE */ {fbe, fbe, fbe, fbe, fbe, blpe, pbe, pbe},
	/* PBE  */ {fbe, fbe, fbe, fbe, fbe, blpe, pbe, pee},
	/* PEE  */ {pbe, pbe, pbe, pbe, pbe, pbe, pbe, pee},
}

// Reference returns the reference MCG mode graph.
func Reference() *ModeGraph {
	return &ModeGraph{next: reference}
}

// FromRows builds a graph from an 8x8 table in operating-mode order. Every entry
// must be an operating mode; convergence is checked separately by Validate.
func FromRows(rows [][]consts.ClockMode) (*ModeGraph, error) {
	if len(rows) != n {
		return nil, errors.Newf(errors.ErrCodeTableInvalid, "FromRows", "expected %d rows, got %d", n, len(rows))
	}
	g := &ModeGraph{}
	for i, row := range rows {
		from, _ := consts.ModeAt(i)
		if len(row) != n {
			return nil, errors.Newf(errors.ErrCodeTableInvalid, "FromRows", "row %s: expected %d entries, got %d", from, n, len(row))
		}
		for j, next := range row {
			if !next.Valid() {
				to, _ := consts.ModeAt(j)
				return nil, errors.Newf(errors.ErrCodeTableInvalid, "FromRows", "entry (%s, %s) is not an operating mode", from, to)
			}
			g.next[i][j] = next
		}
	}
	return g, nil
}

// NextStep returns the table entry for (current, target). Both arguments must be
// operating modes.
func (g *ModeGraph) NextStep(current, target consts.ClockMode) (consts.ClockMode, error) {
	i, ok := current.Index()
	if !ok {
		return consts.ClockModeNone, errors.Newf(errors.ErrCodeInvalidMode, "NextStep", "current mode %s (%d) is not an operating mode", current, uint8(current))
	}
	j, ok := target.Index()
	if !ok {
		return consts.ClockModeNone, errors.Newf(errors.ErrCodeInvalidMode, "NextStep", "target mode %s (%d) is not an operating mode", target, uint8(target))
	}
	next := g.next[i][j]
	if !next.Valid() {
		return consts.ClockModeNone, errors.Newf(errors.ErrCodeTableInvalid, "NextStep", "entry (%s, %s) is not an operating mode", current, target)
	}
	return next, nil
}

// Rows returns a copy of the table in operating-mode order.
func (g *ModeGraph) Rows() [][]consts.ClockMode {
	rows := make([][]consts.ClockMode, n)
	for i := range g.next {
		rows[i] = append([]consts.ClockMode(nil), g.next[i][:]...)
	}
	return rows
}

// Edge is a direct single-step move between two distinct modes.
type Edge struct {
	From consts.ClockMode
	To   consts.ClockMode
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

// Edges lists the distinct direct moves the table ever takes, ordered by
// source then destination.
func (g *ModeGraph) Edges() []Edge {
	var seen [n][n]bool
	for i := range g.next {
		for _, next := range g.next[i] {
			j, ok := next.Index()
			if ok && i != j {
				seen[i][j] = true
			}
		}
	}
	var edges []Edge
	for i := range seen {
		for j := range seen[i] {
			if seen[i][j] {
				from, _ := consts.ModeAt(i)
				to, _ := consts.ModeAt(j)
				edges = append(edges, Edge{From: from, To: to})
			}
		}
	}
	return edges
}

// Path follows next-step links from one mode to another without mutating any
// engine. It fails with UnreachableOrDivergent once more than bound steps are
// needed.
func (g *ModeGraph) Path(from, to consts.ClockMode, bound int) ([]consts.ClockMode, error) {
	if !from.Valid() || !to.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidMode, "Path", "%s=>%s: both ends must be operating modes", from, to)
	}
	path := []consts.ClockMode{from}
	cur := from
	for steps := 0; cur != to; {
		steps++
		if steps > bound {
			return path, errors.Newf(errors.ErrCodeUnreachable, "Path", "%s=>%s did not converge within %d steps", from, to, bound)
		}
		next, err := g.NextStep(cur, to)
		if err != nil {
			return path, err
		}
		cur = next
		path = append(path, cur)
	}
	return path, nil
}

// Personal.AI order the ending
