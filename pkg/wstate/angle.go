// Package wstate synthesises W-state preparation circuits and replaces
// W-state placeholders in a circuit DAG with them.
//
// Three constructions are available:
//
//   - Linear: an exact chain of n-1 rotate/entangle pairs, depth 2(n-1).
//   - ScheduleTree: a logarithmic-depth tree that reuses the chain's angle
//     schedule. It is cheap but not exact; pair it with verification.
//   - ExactTree: the same tree topology with subtree-weighted controlled
//     rotations, exact for every n.
//
// Tree topologies come from a Plan, either a binary heap over 0..n-1
// (PlanAgnostic) or a breadth-first spanning tree over a coupling graph
// (PlanCoupled). The Synthesizer ties planning, construction, optional
// fidelity verification and DAG substitution together as a pass.
package wstate

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidQubitCount is returned by every construction entry point for
// fewer than one qubit.
var ErrInvalidQubitCount = errors.New("w-state needs at least one qubit")

// Angle returns θ = 2·asin(√(1/r)), the rotation whose |1⟩ branch carries
// probability 1/r. r = 1 gives π. Angle panics for r < 1.
func Angle(r int) float64 {
	if r < 1 {
		panic(fmt.Sprintf("wstate: Angle called with remaining count %d", r))
	}
	return SplitAngle(1, r)
}

// SplitAngle returns 2·asin(√(part/whole)), the rotation that moves
// part/whole of a qubit's probability into its |1⟩ branch.
// It panics unless 0 <= part <= whole and whole >= 1.
func SplitAngle(part, whole int) float64 {
	if whole < 1 || part < 0 || part > whole {
		panic(fmt.Sprintf("wstate: SplitAngle(%d, %d) out of domain", part, whole))
	}
	return 2 * math.Asin(math.Sqrt(float64(part)/float64(whole)))
}

// scheduleAngles returns Angle(k) for k = n, n-1, ..., 2.
func scheduleAngles(n int) []float64 {
	angles := make([]float64, 0, max(n-1, 0))
	for k := n; k > 1; k-- {
		angles = append(angles, Angle(k))
	}
	return angles
}
