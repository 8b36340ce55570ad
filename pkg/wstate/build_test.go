package wstate

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/coupling"
)

func mustTree(t *testing.T, build func(Plan) (*circuit.Circuit, error), p Plan) *circuit.Circuit {
	t.Helper()
	c, err := build(p)
	require.NoError(t, err)
	return c
}

func TestAngle(t *testing.T) {
	assert.InDelta(t, math.Pi, Angle(1), 1e-12)
	assert.InDelta(t, math.Pi/2, Angle(2), 1e-12)

	// sin²(θ/2) = 1/r
	for r := 1; r <= 20; r++ {
		s := math.Sin(Angle(r) / 2)
		assert.InDelta(t, 1/float64(r), s*s, 1e-12, "r=%d", r)
	}

	assert.Panics(t, func() { Angle(0) })
	assert.Panics(t, func() { SplitAngle(3, 2) })
	assert.InDelta(t, 0, SplitAngle(0, 5), 1e-12)
}

func TestLinearIsExact(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 8, 16} {
		c, err := Linear(n)
		require.NoError(t, err)
		f, err := Fidelity(c, n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f, 0.999, "n=%d", n)
	}
}

func TestLinearShape(t *testing.T) {
	c, err := Linear(8)
	require.NoError(t, err)
	assert.Equal(t, 14, c.Depth())
	assert.Equal(t, 15, c.Size())
	assert.Equal(t, 7, c.CountOps()[circuit.GateCX])

	one, err := Linear(1)
	require.NoError(t, err)
	require.Len(t, one.Ops, 1)
	assert.True(t, one.Ops[0].Equal(circuit.X(0)))
	f, err := Fidelity(one, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1, f, 1e-12)
}

func TestZeroQubitsIsRejectedEverywhere(t *testing.T) {
	_, err := Linear(0)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
	_, err = AgnosticTree(0)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
	_, err = PlanAgnostic(0)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
	_, err = PlanCoupled(nil, coupling.Linear(3))
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
	_, err = Fidelity(circuit.New("empty", 0), 0)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
	_, err = New(Options{}).Synthesize(nil)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
	_, err = ScheduleTree(Plan{})
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
	_, err = ExactTree(Plan{})
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
}

func TestTreesRejectMalformedPlans(t *testing.T) {
	good, err := PlanAgnostic(4)
	require.NoError(t, err)
	require.NoError(t, good.Validate())

	extra := good
	extra.Layers = [][]Pair{good.Layers[0], append(slices.Clone(good.Layers[1]), Pair{Parent: 1, Child: 3})}

	tests := []struct {
		name string
		plan Plan
	}{
		{"short parents", Plan{N: 3, Parent: []int{-1}}},
		{"missing pairs", Plan{N: 3, Parent: []int{-1, 0, 0}, Layers: [][]Pair{{{0, 1}}}}},
		{"extra pair", extra},
		{"child out of range", Plan{N: 2, Parent: []int{-1, 0}, Layers: [][]Pair{{{0, 5}}}}},
		{"root as child", Plan{N: 2, Parent: []int{-1, 0}, Layers: [][]Pair{{{1, 0}}}}},
		{"parent not yet reached", Plan{N: 3, Parent: []int{-1, 2, 0}, Layers: [][]Pair{{{2, 1}, {0, 2}}}}},
		{"physical width", Plan{N: 2, Physical: []int{4}, Parent: []int{-1, 0}, Layers: [][]Pair{{{0, 1}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScheduleTree(tt.plan)
			assert.ErrorIs(t, err, ErrInvalidPlan)
			_, err = ExactTree(tt.plan)
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestAgnosticTreeStaysInRange(t *testing.T) {
	for n := 1; n <= 64; n++ {
		c, err := AgnosticTree(n)
		require.NoError(t, err)
		require.NoError(t, c.Validate(), "n=%d", n)
		for _, op := range c.Ops {
			for _, q := range op.Qubits {
				assert.Less(t, q, n, "n=%d op=%s", n, op.Gate)
			}
		}
	}
}

func TestAgnosticTreeN18(t *testing.T) {
	c, err := AgnosticTree(18)
	require.NoError(t, err)
	assert.Equal(t, 18, c.NumQubits)
	assert.Len(t, c.Qubits(), 18)
	assert.Equal(t, 17, c.CountOps()[circuit.GateCX])
}

func TestPlanLayerCount(t *testing.T) {
	tests := []struct{ n, maxLayers int }{
		{1, 0}, {2, 1}, {8, 3}, {16, 4}, {32, 5}, {33, 5},
	}
	for _, tt := range tests {
		p, err := PlanAgnostic(tt.n)
		require.NoError(t, err)
		assert.LessOrEqual(t, p.NumLayers(), tt.maxLayers, "n=%d", tt.n)
	}

	p, err := PlanAgnostic(16)
	require.NoError(t, err)
	assert.Equal(t, 4, p.NumLayers())
	assert.Equal(t, []Pair{{0, 1}, {0, 2}}, p.Layers[0])
	assert.Equal(t, []Pair{{7, 15}}, p.Layers[3])
	assert.Equal(t, 4, p.Depth[15])
	assert.Equal(t, 7, p.Parent[15])
	assert.Equal(t, -1, p.Parent[0])
}

func TestPlanIsDeterministic(t *testing.T) {
	a, err := PlanAgnostic(21)
	require.NoError(t, err)
	b, err := PlanAgnostic(21)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	g := coupling.Grid(4, 4)
	phys := []int{5, 1, 4, 6, 9, 10, 2, 0}
	c, err := PlanCoupled(phys, g)
	require.NoError(t, err)
	d, err := PlanCoupled(phys, g)
	require.NoError(t, err)
	assert.Equal(t, c, d)
}

func TestSubtreeSizes(t *testing.T) {
	p, err := PlanAgnostic(7)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3, 3, 1, 1, 1, 1}, p.SubtreeSizes())
}

func TestPlanCoupledFollowsAdjacency(t *testing.T) {
	g := coupling.Grid(3, 3)
	phys := []int{4, 1, 3, 5, 7, 0, 2, 6, 8}

	p, err := PlanCoupled(phys, g)
	require.NoError(t, err)
	assert.False(t, p.Agnostic())
	assert.Equal(t, 2, p.NumLayers())

	for _, layer := range p.Layers {
		for _, pr := range layer {
			assert.True(t, g.Adjacent(phys[pr.Parent], phys[pr.Child]),
				"pair %d-%d not adjacent", phys[pr.Parent], phys[pr.Child])
		}
	}

	for _, c := range []*circuit.Circuit{mustTree(t, ScheduleTree, p), mustTree(t, ExactTree, p)} {
		for _, op := range c.Ops {
			if op.Kind == circuit.KindEntangle {
				assert.True(t, g.Adjacent(phys[op.Qubits[0]], phys[op.Qubits[1]]))
			}
		}
	}
}

func TestPlanCoupledDisconnected(t *testing.T) {
	_, err := PlanCoupled([]int{0, 1, 4, 5}, coupling.Linear(6))
	assert.ErrorIs(t, err, ErrDisconnected)

	_, err = PlanCoupled([]int{0, 1, 1}, coupling.Linear(3))
	assert.Error(t, err)
}

func TestExactTreeIsExact(t *testing.T) {
	for n := 1; n <= 16; n++ {
		p, err := PlanAgnostic(n)
		require.NoError(t, err)
		f, err := Fidelity(mustTree(t, ExactTree, p), n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f, 0.999, "heap n=%d", n)
	}

	g := coupling.Grid(3, 4)
	for _, phys := range [][]int{
		{5, 1, 4, 6, 9, 2, 8, 10},
		{0, 1, 2, 3, 7, 11, 10, 9, 8, 4, 5, 6},
		{6, 2, 7},
	} {
		p, err := PlanCoupled(phys, g)
		require.NoError(t, err)
		f, err := Fidelity(mustTree(t, ExactTree, p), len(phys))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f, 0.999, "coupled %v", phys)
	}
}

func TestScheduleTreeShape(t *testing.T) {
	p, err := PlanAgnostic(8)
	require.NoError(t, err)
	c := mustTree(t, ScheduleTree, p)

	assert.Equal(t, "w_bal_8_agnostic", c.Name)
	assert.True(t, c.Ops[0].Equal(circuit.X(0)))
	assert.Equal(t, 7, c.CountOps()[circuit.GateRY])
	assert.Equal(t, 7, c.CountOps()[circuit.GateCX])

	barriers := 0
	for _, op := range c.Ops {
		if op.Kind == circuit.KindBarrier {
			barriers++
			assert.Len(t, op.Qubits, 8)
		}
	}
	assert.Equal(t, p.NumLayers(), barriers)

	// Deepest layer first, with the first schedule angle.
	assert.True(t, c.Ops[1].Equal(circuit.RY(Angle(8), 3)))
	assert.True(t, c.Ops[2].Equal(circuit.CX(3, 7)))

	// The chain schedule does not carry over to trees.
	f, err := Fidelity(c, 8)
	require.NoError(t, err)
	assert.Less(t, f, 0.99)
}

func TestSingleQubitTrees(t *testing.T) {
	c, err := AgnosticTree(1)
	require.NoError(t, err)
	require.Len(t, c.Ops, 1)
	assert.True(t, c.Ops[0].Equal(circuit.X(0)))

	p, err := PlanCoupled([]int{3}, coupling.Linear(5))
	require.NoError(t, err)
	assert.Len(t, mustTree(t, ExactTree, p).Ops, 1)
}

func TestExpand(t *testing.T) {
	c := circuit.New("t", 4)
	c.Append(circuit.H(0), circuit.WState(3, 1, 2))

	out, err := Expand(c)
	require.NoError(t, err)
	assert.False(t, out.HasKind(circuit.KindWState))
	assert.True(t, out.Ops[0].Equal(circuit.H(0)))
	assert.True(t, out.Ops[1].Equal(circuit.X(3)))
	assert.Equal(t, []int{2, 1}, out.Ops[len(out.Ops)-1].Qubits)

	bad := circuit.New("t", 2)
	bad.Append(circuit.Op{Kind: circuit.KindWState, Gate: circuit.GateWState, Qubits: []int{0}, Width: 3})
	_, err = Expand(bad)
	assert.ErrorIs(t, err, circuit.ErrMalformedOp)
}
