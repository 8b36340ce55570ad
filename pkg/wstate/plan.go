package wstate

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"

	"github.com/HershLalwani/qtrim/pkg/coupling"
)

// ErrDisconnected is returned by PlanCoupled when the requested qubits do not
// form a connected subgraph of the coupling graph.
var ErrDisconnected = errors.New("qubit subset is disconnected")

// ErrInvalidPlan is returned by Plan.Validate for plans that are not a
// layered spanning tree rooted at index 0.
var ErrInvalidPlan = errors.New("invalid plan")

// Pair is one parent/child amplitude transfer, in internal qubit indices.
type Pair struct {
	Parent, Child int
}

// Plan is a spanning tree over n internal qubits rooted at index 0.
type Plan struct {
	N        int
	Physical []int    // physical qubit per internal index; nil when agnostic
	Parent   []int    // parent per internal index, -1 for the root
	Depth    []int    // tree depth per internal index, 0 for the root
	Layers   [][]Pair // Layers[d-1] holds the pairs whose child sits at depth d
}

// NumLayers returns the number of parallel layers, which is the tree height.
func (p Plan) NumLayers() int {
	return len(p.Layers)
}

// Agnostic reports whether the plan ignores physical connectivity.
func (p Plan) Agnostic() bool {
	return p.Physical == nil
}

// Validate checks that p is a spanning tree over 0..N-1 rooted at 0 whose
// layer d holds exactly the pairs with a child at depth d+1.
func (p Plan) Validate() error {
	if p.N < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQubitCount, p.N)
	}
	if len(p.Parent) != p.N {
		return fmt.Errorf("%w: %d parents for %d qubits", ErrInvalidPlan, len(p.Parent), p.N)
	}
	if p.Physical != nil && len(p.Physical) != p.N {
		return fmt.Errorf("%w: %d physical qubits for %d qubits", ErrInvalidPlan, len(p.Physical), p.N)
	}

	depth := make([]int, p.N)
	for i := range depth {
		depth[i] = -1
	}
	depth[0] = 0
	pairs := 0
	for d, layer := range p.Layers {
		for _, pr := range layer {
			if pr.Parent < 0 || pr.Parent >= p.N || pr.Child < 1 || pr.Child >= p.N {
				return fmt.Errorf("%w: pair %d-%d out of range", ErrInvalidPlan, pr.Parent, pr.Child)
			}
			if depth[pr.Parent] != d || depth[pr.Child] != -1 || p.Parent[pr.Child] != pr.Parent {
				return fmt.Errorf("%w: pair %d-%d misplaced in layer %d", ErrInvalidPlan, pr.Parent, pr.Child, d)
			}
			depth[pr.Child] = d + 1
			pairs++
		}
	}
	if pairs != p.N-1 {
		return fmt.Errorf("%w: %d pairs for %d qubits", ErrInvalidPlan, pairs, p.N)
	}
	return nil
}

// SubtreeSizes returns the number of nodes in the subtree of each index.
func (p Plan) SubtreeSizes() []int {
	sizes := make([]int, p.N)
	for i := range sizes {
		sizes[i] = 1
	}
	for d := len(p.Layers) - 1; d >= 0; d-- {
		for _, pr := range p.Layers[d] {
			sizes[pr.Parent] += sizes[pr.Child]
		}
	}
	return sizes
}

// PlanAgnostic lays the tree out as an implicit binary heap over 0..n-1:
// parent(c) = (c-1)/2, depth(c) = floor(log2(c+1)). Every index stays below n.
func PlanAgnostic(n int) (Plan, error) {
	if n < 1 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidQubitCount, n)
	}
	p := Plan{
		N:      n,
		Parent: make([]int, n),
		Depth:  make([]int, n),
	}
	p.Parent[0] = -1
	for child := 1; child < n; child++ {
		parent := (child - 1) / 2
		depth := bits.Len(uint(child+1)) - 1
		p.Parent[child] = parent
		p.Depth[child] = depth
		for len(p.Layers) < depth {
			p.Layers = append(p.Layers, nil)
		}
		p.Layers[depth-1] = append(p.Layers[depth-1], Pair{Parent: parent, Child: child})
	}
	return p, nil
}

// PlanCoupled spans phys with a breadth-first search over g starting at
// phys[0], following only edges between requested qubits. Pairs are layered
// by BFS depth in discovery order, so every pair is physically adjacent.
// It returns ErrDisconnected when the search cannot reach every qubit.
func PlanCoupled(phys []int, g *coupling.Graph) (Plan, error) {
	n := len(phys)
	if n < 1 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidQubitCount, n)
	}

	index := make(map[int]int, n)
	for i, q := range phys {
		if _, dup := index[q]; dup {
			return Plan{}, fmt.Errorf("physical qubit %d requested twice", q)
		}
		index[q] = i
	}

	p := Plan{
		N:        n,
		Physical: slices.Clone(phys),
		Parent:   make([]int, n),
		Depth:    make([]int, n),
	}
	for i := range p.Parent {
		p.Parent[i] = -1
	}

	reached := map[int]bool{phys[0]: true}
	frontier := []int{phys[0]}
	for len(frontier) > 0 && len(reached) < n {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, nb := range g.Neighbors(cur) {
			child, requested := index[nb]
			if !requested || reached[nb] {
				continue
			}
			reached[nb] = true
			parent := index[cur]
			p.Parent[child] = parent
			p.Depth[child] = p.Depth[parent] + 1
			depth := p.Depth[child]
			for len(p.Layers) < depth {
				p.Layers = append(p.Layers, nil)
			}
			p.Layers[depth-1] = append(p.Layers[depth-1], Pair{Parent: parent, Child: child})
			frontier = append(frontier, nb)
			if len(reached) == n {
				break
			}
		}
	}

	if len(reached) < n {
		return Plan{}, fmt.Errorf("%w: reached %d of %d qubits from %d", ErrDisconnected, len(reached), n, phys[0])
	}
	return p, nil
}
