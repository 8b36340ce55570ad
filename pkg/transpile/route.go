package transpile

import (
	"errors"
	"fmt"
	"slices"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/coupling"
	"github.com/HershLalwani/qtrim/pkg/dag"
)

// ErrUnroutable is returned when two qubits of a gate have no path between
// them in the coupling graph.
var ErrUnroutable = errors.New("no coupling path between qubits")

// RoutePass makes every two-qubit gate act on coupled qubits. Slots start
// mapped onto the physical qubit with the same index. Before a gate whose
// qubits are not coupled, SWAPs walk the first qubit along a shortest path
// until it sits next to the second, and the layout follows the swaps for
// the rest of the circuit. The final layout is left permuted.
//
// Paths only use physical qubits below the DAG's width. Ops on three or
// more qubits are relabelled but not routed.
type RoutePass struct {
	Coupling *coupling.Graph
}

func (RoutePass) Name() string { return "route" }

func (p RoutePass) Run(d *dag.DAG) error {
	if p.Coupling == nil {
		return nil
	}
	n := d.NumQubits
	phys := make([]int, n) // slot -> physical qubit
	slot := make([]int, n) // physical qubit -> slot
	for q := range n {
		phys[q] = q
		slot[q] = q
	}

	for _, node := range d.OpNodes() {
		op := node.Op.Clone()
		if len(op.Qubits) == 2 {
			a, b := phys[op.Qubits[0]], phys[op.Qubits[1]]
			if !p.Coupling.Adjacent(a, b) {
				path, err := shortestPath(p.Coupling, a, b, n)
				if err != nil {
					return fmt.Errorf("%s: %w", node.ID, err)
				}
				swaps := make([]circuit.Op, 0, len(path)-2)
				for i := 0; i+2 < len(path); i++ {
					x, y := path[i], path[i+1]
					swaps = append(swaps, circuit.SWAP(x, y))
					slot[x], slot[y] = slot[y], slot[x]
					phys[slot[x]], phys[slot[y]] = x, y
				}
				if err := d.InsertBefore(node.ID, swaps...); err != nil {
					return err
				}
			}
		}
		for i, q := range op.Qubits {
			op.Qubits[i] = phys[q]
		}
		if err := d.SetOp(node.ID, op); err != nil {
			return err
		}
	}
	return nil
}

// shortestPath returns a breadth-first path from a to b over qubits below
// limit, both ends included.
func shortestPath(g *coupling.Graph, a, b, limit int) ([]int, error) {
	prev := map[int]int{a: a}
	queue := []int{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == b {
			var path []int
			for q := b; q != a; q = prev[q] {
				path = append(path, q)
			}
			path = append(path, a)
			slices.Reverse(path)
			return path, nil
		}
		for _, nb := range g.Neighbors(cur) {
			if _, seen := prev[nb]; seen || nb >= limit {
				continue
			}
			prev[nb] = cur
			queue = append(queue, nb)
		}
	}
	return nil, fmt.Errorf("%w: %d and %d", ErrUnroutable, a, b)
}
