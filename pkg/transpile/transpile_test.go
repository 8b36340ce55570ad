package transpile

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/coupling"
	"github.com/HershLalwani/qtrim/pkg/dag"
	"github.com/HershLalwani/qtrim/pkg/statevector"
	"github.com/HershLalwani/qtrim/pkg/wstate"
)

func mustDAG(t *testing.T, n int, ops ...circuit.Op) *dag.DAG {
	t.Helper()
	c := circuit.New("t", n)
	c.Append(ops...)
	d, err := dag.FromCircuit(c)
	require.NoError(t, err)
	return d
}

func gates(d *dag.DAG) []string {
	var out []string
	for _, n := range d.OpNodes() {
		out = append(out, n.Op.Gate)
	}
	return out
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name    string
		ops     []circuit.Op
		removed int
		want    []string
	}{
		{
			name:    "x pair",
			ops:     []circuit.Op{circuit.X(0), circuit.X(0)},
			removed: 1,
		},
		{
			name:    "nested pairs collapse",
			ops:     []circuit.Op{circuit.X(0), circuit.H(0), circuit.H(0), circuit.X(0)},
			removed: 2,
		},
		{
			name:    "rotations are kept",
			ops:     []circuit.Op{circuit.RY(0.3, 0), circuit.RY(0.3, 0)},
			removed: 0,
			want:    []string{circuit.GateRY, circuit.GateRY},
		},
		{
			name:    "different qubits",
			ops:     []circuit.Op{circuit.X(0), circuit.X(1)},
			removed: 0,
			want:    []string{circuit.GateX, circuit.GateX},
		},
		{
			name:    "cx pair",
			ops:     []circuit.Op{circuit.CX(0, 1), circuit.CX(0, 1)},
			removed: 1,
		},
		{
			name:    "reversed cx is not an inverse",
			ops:     []circuit.Op{circuit.CX(0, 1), circuit.CX(1, 0)},
			removed: 0,
			want:    []string{circuit.GateCX, circuit.GateCX},
		},
		{
			name:    "reversed cz cancels",
			ops:     []circuit.Op{circuit.CZ(0, 1), circuit.CZ(1, 0)},
			removed: 1,
		},
		{
			name:    "reversed swap cancels",
			ops:     []circuit.Op{circuit.SWAP(0, 1), circuit.SWAP(1, 0)},
			removed: 1,
		},
		{
			name:    "interleaved op on one wire",
			ops:     []circuit.Op{circuit.CX(0, 1), circuit.X(1), circuit.CX(0, 1)},
			removed: 0,
			want:    []string{circuit.GateCX, circuit.GateX, circuit.GateCX},
		},
		{
			name:    "barrier blocks",
			ops:     []circuit.Op{circuit.X(0), circuit.Barrier(0), circuit.X(0)},
			removed: 0,
			want:    []string{circuit.GateX, circuit.GateBarrier, circuit.GateX},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustDAG(t, 2, tt.ops...)
			assert.Equal(t, tt.removed, Cancel(d))
			assert.Equal(t, tt.want, gates(d))
		})
	}
}

func TestIdleDecouple(t *testing.T) {
	c := circuit.New("idle", 3)
	c.Append(circuit.H(0), circuit.X(1), circuit.X(2), circuit.Z(1), circuit.H(0))
	d, err := dag.FromCircuit(c)
	require.NoError(t, err)

	require.NoError(t, IdleDecouplePass{Threshold: 2}.Run(d))
	assert.Equal(t, 11, d.Size())

	wire := d.Wire(0)
	require.Len(t, wire, 5)
	assert.Equal(t, []string{circuit.GateH, circuit.GateX, circuit.GateID, circuit.GateX, circuit.GateH},
		[]string{wire[0].Op.Gate, wire[1].Op.Gate, wire[2].Op.Gate, wire[3].Op.Gate, wire[4].Op.Gate})
	assert.Len(t, d.Wire(1), 5)
	assert.Len(t, d.Wire(2), 1)

	before, err := statevector.Simulate(c)
	require.NoError(t, err)
	after, err := statevector.Simulate(d.ToCircuit())
	require.NoError(t, err)
	f, err := statevector.Fidelity(before, after)
	require.NoError(t, err)
	assert.InDelta(t, 1, f, 1e-9)
}

func TestIdleDecoupleBelowThreshold(t *testing.T) {
	d := mustDAG(t, 2, circuit.H(0), circuit.X(1), circuit.H(0))
	require.NoError(t, IdleDecouplePass{Threshold: 3}.Run(d))
	assert.Equal(t, 3, d.Size())
}

type failingPass struct{}

func (failingPass) Name() string      { return "failing" }
func (failingPass) Run(*dag.DAG) error { return errors.New("boom") }

func TestManagerRun(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	c := circuit.New("m", 2)
	c.Append(circuit.H(0), circuit.H(0), circuit.CX(0, 1))

	m := NewManager(logger, CancelPass{})
	m.Add(IdleDecouplePass{Threshold: 10})
	assert.Equal(t, []string{"cancel", "idle_decouple"}, m.Passes())

	out, err := m.Run(c)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Size())
	assert.Len(t, c.Ops, 3)

	logs := buf.String()
	assert.Contains(t, logs, "pipeline started")
	assert.Contains(t, logs, "pipeline completed")
	assert.Contains(t, logs, "run=")
}

func TestManagerStopsOnError(t *testing.T) {
	c := circuit.New("m", 1)
	c.Append(circuit.X(0))

	_, err := NewManager(nil, failingPass{}, CancelPass{}).Run(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass failing")

	bad := circuit.New("bad", 1)
	bad.Append(circuit.CX(0, 1))
	_, err = NewManager(nil).Run(bad)
	assert.ErrorIs(t, err, circuit.ErrQubitOutOfRange)
}

func TestManagerWithSynthesizer(t *testing.T) {
	c := circuit.New("w", 8)
	c.Append(circuit.WState(0, 1, 2, 3, 4, 5, 6, 7))

	synth := wstate.New(wstate.Options{Strategy: wstate.StrategyExact, Verify: true})
	out, err := NewManager(nil, synth, CancelPass{}).Run(c)
	require.NoError(t, err)
	assert.False(t, out.HasKind(circuit.KindWState))

	f, err := wstate.Fidelity(out, 8)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, f, 0.999)
}

func sameState(t *testing.T, a, b *circuit.Circuit) {
	t.Helper()
	sa, err := statevector.Simulate(a)
	require.NoError(t, err)
	sb, err := statevector.Simulate(b)
	require.NoError(t, err)
	f, err := statevector.Fidelity(sa, sb)
	require.NoError(t, err)
	assert.InDelta(t, 1, f, 1e-9)
}

func TestRouteInsertsSwaps(t *testing.T) {
	d := mustDAG(t, 3, circuit.H(0), circuit.CX(0, 2), circuit.X(0))
	require.NoError(t, RoutePass{Coupling: coupling.Linear(3)}.Run(d))

	out := d.ToCircuit()
	require.Len(t, out.Ops, 4)
	assert.True(t, out.Ops[0].Equal(circuit.H(0)))
	assert.True(t, out.Ops[1].Equal(circuit.SWAP(0, 1)))
	assert.True(t, out.Ops[2].Equal(circuit.CX(1, 2)))
	// Slot 0 now lives on physical qubit 1.
	assert.True(t, out.Ops[3].Equal(circuit.X(1)))

	want := circuit.New("want", 3)
	want.Append(circuit.H(1), circuit.CX(1, 2), circuit.X(1))
	sameState(t, want, out)
}

func TestRouteKeepsEveryPairCoupled(t *testing.T) {
	g := coupling.Grid(3, 3)
	c := circuit.New("grid", 9)
	c.Append(circuit.H(0), circuit.CX(0, 8), circuit.CZ(2, 6), circuit.CX(8, 0), circuit.CRY(0.4, 4, 0))
	d, err := dag.FromCircuit(c)
	require.NoError(t, err)

	require.NoError(t, RoutePass{Coupling: g}.Run(d))
	swaps := 0
	for _, n := range d.OpNodes() {
		if len(n.Op.Qubits) == 2 {
			assert.True(t, g.Adjacent(n.Op.Qubits[0], n.Op.Qubits[1]), "%s on %v", n.Op.Gate, n.Op.Qubits)
		}
		if n.Op.Gate == circuit.GateSWAP {
			swaps++
		}
	}
	assert.Positive(t, swaps)
	assert.Equal(t, c.Size()+swaps, d.Size())
}

func TestRouteErrors(t *testing.T) {
	g, err := coupling.NewGraph([][2]int{{0, 1}, {2, 3}})
	require.NoError(t, err)
	d := mustDAG(t, 4, circuit.CX(0, 3))
	assert.ErrorIs(t, RoutePass{Coupling: g}.Run(d), ErrUnroutable)

	// Paths may not leave the register.
	d = mustDAG(t, 2, circuit.CX(0, 1))
	wide, err := coupling.NewGraph([][2]int{{0, 2}, {2, 1}})
	require.NoError(t, err)
	assert.ErrorIs(t, RoutePass{Coupling: wide}.Run(d), ErrUnroutable)

	d = mustDAG(t, 2, circuit.CX(0, 1))
	require.NoError(t, RoutePass{}.Run(d))
	assert.Equal(t, 1, d.Size())
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		ops     []circuit.Op
		removed int
		want    []circuit.Op
	}{
		{
			name:    "same axis",
			ops:     []circuit.Op{circuit.RZ(0.25, 0), circuit.RZ(0.5, 0), circuit.RZ(0.25, 0)},
			removed: 2,
			want:    []circuit.Op{circuit.RZ(1, 0)},
		},
		{
			name:    "full turn vanishes",
			ops:     []circuit.Op{circuit.RY(math.Pi, 0), circuit.RY(math.Pi, 0), circuit.X(1)},
			removed: 2,
			want:    []circuit.Op{circuit.X(1)},
		},
		{
			name:    "different axes",
			ops:     []circuit.Op{circuit.RX(0.3, 0), circuit.RY(0.3, 0)},
			removed: 0,
			want:    []circuit.Op{circuit.RX(0.3, 0), circuit.RY(0.3, 0)},
		},
		{
			name:    "blocked by entangler",
			ops:     []circuit.Op{circuit.RZ(0.3, 0), circuit.CX(1, 0), circuit.RZ(0.3, 0)},
			removed: 0,
			want:    []circuit.Op{circuit.RZ(0.3, 0), circuit.CX(1, 0), circuit.RZ(0.3, 0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustDAG(t, 2, tt.ops...)
			before := d.ToCircuit()
			assert.Equal(t, tt.removed, Merge(d))

			out := d.ToCircuit()
			require.Len(t, out.Ops, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Gate, out.Ops[i].Gate)
				assert.Equal(t, tt.want[i].Qubits, out.Ops[i].Qubits)
				if len(tt.want[i].Params) > 0 {
					assert.InDeltaSlice(t, tt.want[i].Params, out.Ops[i].Params, 1e-12)
				}
			}
			sameState(t, before, out)
		})
	}
}
