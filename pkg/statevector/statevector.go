// Package statevector simulates circuits on a dense complex amplitude vector.
//
// Qubit q corresponds to bit 1<<q of the basis index. Cost is exponential in
// the qubit count; Simulate refuses circuits wider than MaxQubits.
package statevector

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/HershLalwani/qtrim/pkg/circuit"
)

// MaxQubits bounds the width Simulate accepts (2^24 amplitudes, 256 MiB).
const MaxQubits = 24

var (
	// ErrOpaqueOp is returned for operations without a gate-level definition,
	// such as the W-state placeholder.
	ErrOpaqueOp = errors.New("opaque operation")
	// ErrUnknownGate is returned for gate names the simulator does not know.
	ErrUnknownGate = errors.New("unknown gate")
	// ErrTooManyQubits is returned when a circuit exceeds MaxQubits.
	ErrTooManyQubits = errors.New("too many qubits to simulate")
)

type Complex = complex128

type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

// New returns |0...0> over numQubits qubits.
func New(numQubits int) *StateVector {
	n := 1 << numQubits
	amps := make([]Complex, n)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]Complex, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Apply applies a single operation. Barriers are no-ops.
func (s *StateVector) Apply(op circuit.Op) error {
	switch op.Kind {
	case circuit.KindBarrier:
		return nil
	case circuit.KindWState:
		return fmt.Errorf("%w: %s over %d qubits", ErrOpaqueOp, op.Gate, op.Width)
	}
	if err := op.Validate(s.NumQubits); err != nil {
		return err
	}

	q := op.Qubits[0]
	switch op.Gate {
	case circuit.GateID:
	case circuit.GateH:
		s.applyH(q)
	case circuit.GateX:
		s.applyX(q)
	case circuit.GateY:
		s.applyY(q)
	case circuit.GateZ:
		s.applyPhase(q, -1)
	case circuit.GateS:
		s.applyPhase(q, 1i)
	case circuit.GateSDG:
		s.applyPhase(q, -1i)
	case circuit.GateT:
		s.applyPhase(q, cmplx.Exp(complex(0, math.Pi/4)))
	case circuit.GateTDG:
		s.applyPhase(q, cmplx.Exp(complex(0, -math.Pi/4)))
	case circuit.GateP:
		s.applyPhase(q, cmplx.Exp(complex(0, op.Params[0])))
	case circuit.GateRX:
		s.applyRX(q, op.Params[0])
	case circuit.GateRY:
		s.applyRY(q, op.Params[0], -1)
	case circuit.GateRZ:
		s.applyRZ(q, op.Params[0])
	case circuit.GateCX:
		s.applyCX(q, op.Qubits[1])
	case circuit.GateCZ:
		s.applyCZ(q, op.Qubits[1])
	case circuit.GateCRY:
		s.applyRY(op.Qubits[1], op.Params[0], q)
	case circuit.GateSWAP:
		s.applySWAP(q, op.Qubits[1])
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGate, op.Gate)
	}
	return nil
}

func (s *StateVector) applyH(q int) {
	hFactor := complex(1.0/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = hFactor * (a + b)
			s.Amplitudes[j] = hFactor * (a - b)
		}
	}
}

func (s *StateVector) applyX(q int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyY(q int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = -1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

// applyPhase multiplies every amplitude with qubit q set by factor.
func (s *StateVector) applyPhase(q int, factor Complex) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= factor
		}
	}
}

func (s *StateVector) applyRX(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a + js*b
			s.Amplitudes[j] = js*a + c*b
		}
	}
}

// applyRY rotates q about Y. A non-negative control restricts the rotation
// to basis states where the control qubit is set.
func (s *StateVector) applyRY(q int, theta float64, control int) {
	bit := 1 << q
	cBit := 0
	if control >= 0 {
		cBit = 1 << control
	}
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := range s.Amplitudes {
		if i&bit == 0 && i&cBit == cBit {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a - sn*b
			s.Amplitudes[j] = sn*a + c*b
		}
	}
}

func (s *StateVector) applyRZ(q int, theta float64) {
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta/2))
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= phase
		} else {
			s.Amplitudes[i] *= cmplx.Conj(phase)
		}
	}
}

func (s *StateVector) applyCX(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit != 0 {
			s.Amplitudes[i] *= -1
		}
	}
}

func (s *StateVector) applySWAP(q1, q2 int) {
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := range s.Amplitudes {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// Norm returns the squared norm of the state.
func (s *StateVector) Norm() float64 {
	total := 0.0
	for _, amp := range s.Amplitudes {
		total += real(amp * cmplx.Conj(amp))
	}
	return total
}

// Probability returns the probability of the given basis state.
func (s *StateVector) Probability(basis int) float64 {
	amp := s.Amplitudes[basis]
	return real(amp * cmplx.Conj(amp))
}

// Simulate runs c from |0...0> and returns the final state.
func Simulate(c *circuit.Circuit) (*StateVector, error) {
	if c.NumQubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyQubits, c.NumQubits, MaxQubits)
	}
	state := New(max(c.NumQubits, 1))
	for i, op := range c.Ops {
		if err := state.Apply(op); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return state, nil
}

// WState returns the ideal n-qubit W-state: amplitude 1/sqrt(n) on every
// basis state with exactly one set bit.
func WState(n int) *StateVector {
	s := &StateVector{Amplitudes: make([]Complex, 1<<n), NumQubits: n}
	amp := complex(1/math.Sqrt(float64(n)), 0)
	for q := range n {
		s.Amplitudes[1<<q] = amp
	}
	return s
}

// Fidelity returns |<a|b>|^2 for two pure states of the same width.
func Fidelity(a, b *StateVector) (float64, error) {
	if a.NumQubits != b.NumQubits {
		return 0, fmt.Errorf("fidelity between %d and %d qubit states", a.NumQubits, b.NumQubits)
	}
	var overlap Complex
	for i, amp := range a.Amplitudes {
		overlap += cmplx.Conj(amp) * b.Amplitudes[i]
	}
	return real(overlap * cmplx.Conj(overlap)), nil
}

// Probabilities returns the per-qubit probability of measuring 1.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, s.NumQubits)
	for i, amp := range s.Amplitudes {
		p := real(amp * cmplx.Conj(amp))
		for q := range s.NumQubits {
			if i&(1<<q) != 0 {
				probs[q] += p
			}
		}
	}
	return probs
}
