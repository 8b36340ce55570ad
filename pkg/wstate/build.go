package wstate

import (
	"fmt"
	"math"

	"github.com/HershLalwani/qtrim/pkg/circuit"
)

// Linear builds the exact chain template over n qubits. Qubit 0 is set, then
// for k = 0..n-2 qubit k hands all but 1/(n-k) of its excitation to k+1:
// a rotation of k+1 (controlled by k once k is no longer certainly set)
// followed by CX(k+1, k). The rotation is the complement of Angle(n-k), so
// the branch left on qubit k carries exactly 1/(n-k).
func Linear(n int) (*circuit.Circuit, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQubitCount, n)
	}
	c := circuit.New(fmt.Sprintf("w_linear_%d", n), n)
	c.Append(circuit.X(0))
	for k := 0; k < n-1; k++ {
		theta := math.Pi - Angle(n-k)
		if k == 0 {
			c.Append(circuit.RY(theta, 1))
		} else {
			c.Append(circuit.CRY(theta, k, k+1))
		}
		c.Append(circuit.CX(k+1, k))
	}
	return c, nil
}

// ScheduleTree emits plan as X on the root, then one layer per tree depth
// from deepest to shallowest, each pair as RY on the parent followed by
// CX(parent, child), with a full-width barrier after every layer. Angles are
// drawn from the chain schedule Angle(n), Angle(n-1), ..., Angle(2), one per
// emitted pair. The result is only exact for n = 1.
func ScheduleTree(plan Plan) (*circuit.Circuit, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	c := circuit.New(treeName(plan), plan.N)
	c.Append(circuit.X(0))

	angles := scheduleAngles(plan.N)
	next := 0
	for d := len(plan.Layers) - 1; d >= 0; d-- {
		for _, pr := range plan.Layers[d] {
			c.Append(circuit.RY(angles[next], pr.Parent), circuit.CX(pr.Parent, pr.Child))
			next++
		}
		c.BarrierAll()
	}
	return c, nil
}

// ExactTree emits plan from the root outwards. A parent holding the
// excitation for its whole subtree hands each child that child's subtree
// share: CRY(SplitAngle(size(child), remaining(parent))) from parent onto
// child, then CX(child, parent). After its last child the parent keeps 1/n.
// The root's first transfer uses a plain RY since the root is certainly set.
func ExactTree(plan Plan) (*circuit.Circuit, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	c := circuit.New(treeName(plan)+"_exact", plan.N)
	c.Append(circuit.X(0))

	sizes := plan.SubtreeSizes()
	remaining := make([]int, plan.N)
	copy(remaining, sizes)

	for _, layer := range plan.Layers {
		for _, pr := range layer {
			theta := SplitAngle(sizes[pr.Child], remaining[pr.Parent])
			if pr.Parent == 0 && remaining[0] == sizes[0] {
				c.Append(circuit.RY(theta, pr.Child))
			} else {
				c.Append(circuit.CRY(theta, pr.Parent, pr.Child))
			}
			c.Append(circuit.CX(pr.Child, pr.Parent))
			remaining[pr.Parent] -= sizes[pr.Child]
		}
		c.BarrierAll()
	}
	return c, nil
}

// AgnosticTree is ScheduleTree over PlanAgnostic(n).
func AgnosticTree(n int) (*circuit.Circuit, error) {
	plan, err := PlanAgnostic(n)
	if err != nil {
		return nil, err
	}
	return ScheduleTree(plan)
}

func treeName(plan Plan) string {
	if plan.Agnostic() {
		return fmt.Sprintf("w_bal_%d_agnostic", plan.N)
	}
	return fmt.Sprintf("w_bal_%d", plan.N)
}

// Expand replaces every W-state placeholder in c with the linear template
// over the placeholder's qubits. Other ops are copied unchanged.
func Expand(c *circuit.Circuit) (*circuit.Circuit, error) {
	out := circuit.New(c.Name, c.NumQubits)
	for _, op := range c.Ops {
		if op.Kind != circuit.KindWState {
			out.Append(op.Clone())
			continue
		}
		if err := op.Validate(c.NumQubits); err != nil {
			return nil, err
		}
		def, err := Linear(op.Width)
		if err != nil {
			return nil, err
		}
		for _, inner := range def.Ops {
			mapped := inner.Clone()
			for i, q := range mapped.Qubits {
				mapped.Qubits[i] = op.Qubits[q]
			}
			out.Append(mapped)
		}
	}
	return out, nil
}
