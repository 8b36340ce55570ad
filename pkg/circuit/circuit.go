// Package circuit holds the operation model shared by the DAG, the simulator
// and the synthesis passes.
//
// A Circuit is an ordered list of operations over a fixed number of qubit
// slots. Every operation belongs to one of a closed set of kinds:
//
//   - KindRotation: single-qubit gates (X, H, RY, ...)
//   - KindEntangle: two-qubit gates (CX, CZ, CRY, SWAP)
//   - KindBarrier:  a synchronisation point over its qubits
//   - KindWState:   the W-state placeholder, carrying its width as data
package circuit

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrQubitOutOfRange is returned when an operation references a slot
	// outside [0, NumQubits).
	ErrQubitOutOfRange = errors.New("qubit index out of range")
	// ErrMalformedOp is returned for operations whose shape does not match
	// their kind.
	ErrMalformedOp = errors.New("malformed operation")
)

// Kind tags an operation.
type Kind uint8

const (
	KindRotation Kind = iota
	KindEntangle
	KindBarrier
	KindWState
)

func (k Kind) String() string {
	switch k {
	case KindRotation:
		return "rotation"
	case KindEntangle:
		return "entangle"
	case KindBarrier:
		return "barrier"
	case KindWState:
		return "w_state"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Gate names. Two-qubit gates list the control first in Op.Qubits.
const (
	GateX       = "X"
	GateY       = "Y"
	GateZ       = "Z"
	GateH       = "H"
	GateS       = "S"
	GateSDG     = "SDG"
	GateT       = "T"
	GateTDG     = "TDG"
	GateID      = "ID"
	GateRX      = "RX"
	GateRY      = "RY"
	GateRZ      = "RZ"
	GateP       = "P"
	GateCX      = "CX"
	GateCZ      = "CZ"
	GateCRY     = "CRY"
	GateSWAP    = "SWAP"
	GateBarrier = "BARRIER"
	GateWState  = "W_STATE"
)

// paramCount is the number of angles each parameterised gate takes.
var paramCount = map[string]int{
	GateRX:  1,
	GateRY:  1,
	GateRZ:  1,
	GateP:   1,
	GateCRY: 1,
}

// Op is a single operation placed on the circuit.
type Op struct {
	Kind   Kind
	Gate   string    // Gate name, one of the Gate* constants
	Qubits []int     // Ordered qubit slots; control first for two-qubit gates
	Params []float64 // Rotation angles
	Width  int       // Placeholder width, only set for KindWState
}

// Single-qubit gates.
func X(q int) Op  { return Op{Kind: KindRotation, Gate: GateX, Qubits: []int{q}} }
func Y(q int) Op  { return Op{Kind: KindRotation, Gate: GateY, Qubits: []int{q}} }
func Z(q int) Op  { return Op{Kind: KindRotation, Gate: GateZ, Qubits: []int{q}} }
func H(q int) Op  { return Op{Kind: KindRotation, Gate: GateH, Qubits: []int{q}} }
func ID(q int) Op { return Op{Kind: KindRotation, Gate: GateID, Qubits: []int{q}} }

// RY rotates qubit q about the Y axis by theta.
func RY(theta float64, q int) Op {
	return Op{Kind: KindRotation, Gate: GateRY, Qubits: []int{q}, Params: []float64{theta}}
}

// RX rotates qubit q about the X axis by theta.
func RX(theta float64, q int) Op {
	return Op{Kind: KindRotation, Gate: GateRX, Qubits: []int{q}, Params: []float64{theta}}
}

// RZ rotates qubit q about the Z axis by theta.
func RZ(theta float64, q int) Op {
	return Op{Kind: KindRotation, Gate: GateRZ, Qubits: []int{q}, Params: []float64{theta}}
}

// CX is a controlled bit flip from control onto target.
func CX(control, target int) Op {
	return Op{Kind: KindEntangle, Gate: GateCX, Qubits: []int{control, target}}
}

// CZ flips the phase when both qubits are set.
func CZ(control, target int) Op {
	return Op{Kind: KindEntangle, Gate: GateCZ, Qubits: []int{control, target}}
}

// CRY applies RY(theta) to target when control is set.
func CRY(theta float64, control, target int) Op {
	return Op{Kind: KindEntangle, Gate: GateCRY, Qubits: []int{control, target}, Params: []float64{theta}}
}

// SWAP exchanges the states of a and b.
func SWAP(a, b int) Op {
	return Op{Kind: KindEntangle, Gate: GateSWAP, Qubits: []int{a, b}}
}

// Barrier synchronises the given qubits.
func Barrier(qubits ...int) Op {
	return Op{Kind: KindBarrier, Gate: GateBarrier, Qubits: slices.Clone(qubits)}
}

// WState is the placeholder for an n-qubit W-state preparation over qubits.
func WState(qubits ...int) Op {
	return Op{Kind: KindWState, Gate: GateWState, Qubits: slices.Clone(qubits), Width: len(qubits)}
}

// Clone returns a deep copy of the op.
func (o Op) Clone() Op {
	o.Qubits = slices.Clone(o.Qubits)
	o.Params = slices.Clone(o.Params)
	return o
}

// Equal reports whether two ops have the same gate, qubits and parameters.
func (o Op) Equal(other Op) bool {
	return o.Kind == other.Kind &&
		o.Gate == other.Gate &&
		o.Width == other.Width &&
		slices.Equal(o.Qubits, other.Qubits) &&
		slices.Equal(o.Params, other.Params)
}

// References reports whether the op acts on qubit.
func (o Op) References(qubit int) bool {
	return slices.Contains(o.Qubits, qubit)
}

// Validate checks that the op's shape matches its kind and that every qubit
// lies in [0, numQubits).
func (o Op) Validate(numQubits int) error {
	switch o.Kind {
	case KindRotation:
		if len(o.Qubits) != 1 {
			return fmt.Errorf("%w: %s wants 1 qubit, has %d", ErrMalformedOp, o.Gate, len(o.Qubits))
		}
	case KindEntangle:
		if len(o.Qubits) != 2 || o.Qubits[0] == o.Qubits[1] {
			return fmt.Errorf("%w: %s wants 2 distinct qubits, has %v", ErrMalformedOp, o.Gate, o.Qubits)
		}
	case KindBarrier:
	case KindWState:
		if o.Width < 1 || o.Width != len(o.Qubits) {
			return fmt.Errorf("%w: w_state width %d over %d qubits", ErrMalformedOp, o.Width, len(o.Qubits))
		}
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrMalformedOp, o.Kind)
	}
	if want := paramCount[o.Gate]; len(o.Params) != want {
		return fmt.Errorf("%w: %s wants %d params, has %d", ErrMalformedOp, o.Gate, want, len(o.Params))
	}
	seen := make(map[int]bool, len(o.Qubits))
	for _, q := range o.Qubits {
		if q < 0 || q >= numQubits {
			return fmt.Errorf("%w: %s on q[%d] with %d qubits", ErrQubitOutOfRange, o.Gate, q, numQubits)
		}
		if seen[q] {
			return fmt.Errorf("%w: %s repeats q[%d]", ErrMalformedOp, o.Gate, q)
		}
		seen[q] = true
	}
	return nil
}

// Circuit holds an ordered list of operations over NumQubits slots.
type Circuit struct {
	Name      string
	NumQubits int
	Ops       []Op
}

// New creates an empty circuit over n qubits.
func New(name string, n int) *Circuit {
	return &Circuit{Name: name, NumQubits: n}
}

// Append adds ops to the end of the circuit.
func (c *Circuit) Append(ops ...Op) *Circuit {
	c.Ops = append(c.Ops, ops...)
	return c
}

// BarrierAll appends a barrier spanning every qubit.
func (c *Circuit) BarrierAll() *Circuit {
	qubits := make([]int, c.NumQubits)
	for q := range qubits {
		qubits[q] = q
	}
	return c.Append(Barrier(qubits...))
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{Name: c.Name, NumQubits: c.NumQubits, Ops: make([]Op, len(c.Ops))}
	for i, op := range c.Ops {
		out.Ops[i] = op.Clone()
	}
	return out
}

// Validate checks every op against the circuit width.
func (c *Circuit) Validate() error {
	for i, op := range c.Ops {
		if err := op.Validate(c.NumQubits); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

// Size returns the number of operations, excluding barriers.
func (c *Circuit) Size() int {
	n := 0
	for _, op := range c.Ops {
		if op.Kind != KindBarrier {
			n++
		}
	}
	return n
}

// Depth returns the number of time steps needed with maximal parallelism.
// Barriers align their qubits but do not add a step.
func (c *Circuit) Depth() int {
	level := make([]int, c.NumQubits)
	depth := 0
	for _, op := range c.Ops {
		top := 0
		for _, q := range op.Qubits {
			top = max(top, level[q])
		}
		if op.Kind != KindBarrier {
			top++
		}
		for _, q := range op.Qubits {
			level[q] = top
		}
		depth = max(depth, top)
	}
	return depth
}

// CountOps tallies operations by gate name, excluding barriers.
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, op := range c.Ops {
		if op.Kind == KindBarrier {
			continue
		}
		counts[op.Gate]++
	}
	return counts
}

// Qubits returns the sorted set of qubit slots touched by non-barrier ops.
func (c *Circuit) Qubits() []int {
	seen := make(map[int]bool)
	for _, op := range c.Ops {
		if op.Kind == KindBarrier {
			continue
		}
		for _, q := range op.Qubits {
			seen[q] = true
		}
	}
	out := make([]int, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	slices.Sort(out)
	return out
}

// HasKind reports whether any op has the given kind.
func (c *Circuit) HasKind(k Kind) bool {
	return slices.ContainsFunc(c.Ops, func(op Op) bool { return op.Kind == k })
}
