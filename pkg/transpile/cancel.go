package transpile

import (
	"slices"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/dag"
)

var selfInverse = map[string]bool{
	circuit.GateX:    true,
	circuit.GateY:    true,
	circuit.GateZ:    true,
	circuit.GateH:    true,
	circuit.GateCX:   true,
	circuit.GateCZ:   true,
	circuit.GateSWAP: true,
}

// symmetric gates act the same with their qubits swapped.
var symmetric = map[string]bool{
	circuit.GateCZ:   true,
	circuit.GateSWAP: true,
}

// CancelPass removes pairs of identical self-inverse gates that follow each
// other directly on every qubit they touch. It repeats until no pair is left,
// so X H H X collapses completely.
type CancelPass struct{}

func (CancelPass) Name() string { return "cancel" }

func (CancelPass) Run(d *dag.DAG) error {
	Cancel(d)
	return nil
}

// Cancel applies the cancellation to a fixed point and returns the number of
// pairs removed.
func Cancel(d *dag.DAG) int {
	total := 0
	for {
		removed := cancelSweep(d)
		if removed == 0 {
			return total
		}
		total += removed
	}
}

func cancelSweep(d *dag.DAG) int {
	removed := 0
	for _, node := range d.OpNodes() {
		if _, ok := d.Node(node.ID); !ok {
			continue
		}
		if !selfInverse[node.Op.Gate] {
			continue
		}
		next, ok := d.Next(node.ID, node.Op.Qubits[0])
		if !ok || !cancels(node.Op, next.Op) {
			continue
		}
		if !adjacentOnAll(d, node, next) {
			continue
		}
		// Both IDs are known to exist.
		_ = d.RemoveNode(node.ID)
		_ = d.RemoveNode(next.ID)
		removed++
	}
	return removed
}

func cancels(a, b circuit.Op) bool {
	if a.Gate != b.Gate || len(a.Qubits) != len(b.Qubits) {
		return false
	}
	if slices.Equal(a.Qubits, b.Qubits) {
		return true
	}
	if symmetric[a.Gate] && len(a.Qubits) == 2 {
		return a.Qubits[0] == b.Qubits[1] && a.Qubits[1] == b.Qubits[0]
	}
	return false
}

func adjacentOnAll(d *dag.DAG, a, b *dag.Node) bool {
	for _, q := range a.Op.Qubits {
		next, ok := d.Next(a.ID, q)
		if !ok || next.ID != b.ID {
			return false
		}
	}
	return true
}
