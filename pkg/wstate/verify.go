package wstate

import (
	"fmt"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/statevector"
)

// Fidelity simulates c, with placeholders expanded to the linear template,
// and returns its fidelity against the ideal n-qubit W-state.
func Fidelity(c *circuit.Circuit, n int) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQubitCount, n)
	}
	if c.NumQubits != n {
		return 0, fmt.Errorf("candidate has %d qubits, want %d", c.NumQubits, n)
	}
	expanded, err := Expand(c)
	if err != nil {
		return 0, err
	}
	state, err := statevector.Simulate(expanded)
	if err != nil {
		return 0, fmt.Errorf("simulate %s: %w", c.Name, err)
	}
	return statevector.Fidelity(statevector.WState(n), state)
}
