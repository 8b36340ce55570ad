package transpile

import (
	"math"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/dag"
)

// mergeTolerance is how close to a multiple of 2π a merged angle must be
// before the rotation is dropped.
const mergeTolerance = 1e-9

var mergeable = map[string]bool{
	circuit.GateRX: true,
	circuit.GateRY: true,
	circuit.GateRZ: true,
	circuit.GateP:  true,
}

// MergePass folds runs of the same single-qubit rotation on a wire into one
// rotation by the summed angle. A rotation whose angle reduces to zero
// modulo 2π is removed; for RX, RY and RZ this drops at most a global phase.
type MergePass struct{}

func (MergePass) Name() string { return "merge" }

func (MergePass) Run(d *dag.DAG) error {
	Merge(d)
	return nil
}

// Merge applies the merge and returns the number of ops removed.
func Merge(d *dag.DAG) int {
	removed := 0
	for _, node := range d.OpNodes() {
		if _, ok := d.Node(node.ID); !ok || !mergeable[node.Op.Gate] {
			continue
		}
		op := node.Op.Clone()
		q := op.Qubits[0]
		for {
			next, ok := d.Next(node.ID, q)
			if !ok || next.Op.Gate != op.Gate {
				break
			}
			op.Params[0] += next.Op.Params[0]
			// next is on the wire, so it exists.
			_ = d.RemoveNode(next.ID)
			removed++
		}
		if isZeroAngle(op.Params[0]) {
			_ = d.RemoveNode(node.ID)
			removed++
			continue
		}
		_ = d.SetOp(node.ID, op)
	}
	return removed
}

func isZeroAngle(theta float64) bool {
	r := math.Mod(math.Abs(theta), 2*math.Pi)
	return r < mergeTolerance || 2*math.Pi-r < mergeTolerance
}
