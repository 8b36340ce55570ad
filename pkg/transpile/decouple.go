package transpile

import (
	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/dag"
)

// DefaultIdleThreshold is the gap used when IdleDecouplePass.Threshold is unset.
const DefaultIdleThreshold = 2

// IdleDecouplePass fills idle stretches of a wire with X, ID, X. A gap is the
// distance in topological positions between two consecutive ops on the same
// qubit; when it reaches Threshold the sequence is inserted right after the
// earlier op. The inserted ops compose to the identity.
type IdleDecouplePass struct {
	Threshold int
}

func (IdleDecouplePass) Name() string { return "idle_decouple" }

func (p IdleDecouplePass) Run(d *dag.DAG) error {
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultIdleThreshold
	}

	pos := make(map[string]int)
	for i, node := range d.OpNodes() {
		pos[node.ID] = i
	}

	type gap struct {
		after string
		qubit int
	}
	var gaps []gap
	for q := range d.NumQubits {
		wire := d.Wire(q)
		for i := 0; i+1 < len(wire); i++ {
			if pos[wire[i+1].ID]-pos[wire[i].ID] >= threshold {
				gaps = append(gaps, gap{after: wire[i].ID, qubit: q})
			}
		}
	}

	for _, g := range gaps {
		if err := d.InsertAfter(g.after, circuit.X(g.qubit), circuit.ID(g.qubit), circuit.X(g.qubit)); err != nil {
			return err
		}
	}
	return nil
}
