// Package coupling describes which physical qubit pairs a backend can couple
// directly.
package coupling

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidEdge is returned for self loops and negative qubit indices.
var ErrInvalidEdge = errors.New("invalid coupling edge")

// Graph is an undirected connectivity graph over physical qubit indices.
// It is immutable after construction.
type Graph struct {
	adj       map[int][]int
	numQubits int
}

// NewGraph builds a graph from edges. Direction is ignored and duplicate
// edges are merged.
func NewGraph(edges [][2]int) (*Graph, error) {
	g := &Graph{adj: make(map[int][]int)}
	for _, e := range edges {
		a, b := e[0], e[1]
		if a < 0 || b < 0 || a == b {
			return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidEdge, a, b)
		}
		if !slices.Contains(g.adj[a], b) {
			g.adj[a] = append(g.adj[a], b)
			g.adj[b] = append(g.adj[b], a)
		}
		g.numQubits = max(g.numQubits, a+1, b+1)
	}
	for q := range g.adj {
		slices.Sort(g.adj[q])
	}
	return g, nil
}

// Linear returns a path graph 0-1-...-(n-1).
func Linear(n int) *Graph {
	edges := make([][2]int, 0, max(n-1, 0))
	for q := 0; q+1 < n; q++ {
		edges = append(edges, [2]int{q, q + 1})
	}
	g, _ := NewGraph(edges)
	return g
}

// Grid returns a rows x cols lattice with row-major qubit numbering.
func Grid(rows, cols int) *Graph {
	var edges [][2]int
	for r := range rows {
		for c := range cols {
			q := r*cols + c
			if c+1 < cols {
				edges = append(edges, [2]int{q, q + 1})
			}
			if r+1 < rows {
				edges = append(edges, [2]int{q, q + cols})
			}
		}
	}
	g, _ := NewGraph(edges)
	return g
}

// NumQubits returns one more than the largest qubit index on any edge.
func (g *Graph) NumQubits() int {
	return g.numQubits
}

// Neighbors returns the qubits coupled to q, sorted ascending.
func (g *Graph) Neighbors(q int) []int {
	return slices.Clone(g.adj[q])
}

// Adjacent reports whether a and b are directly coupled.
func (g *Graph) Adjacent(a, b int) bool {
	return slices.Contains(g.adj[a], b)
}

// Edges returns every edge once, with the smaller index first, sorted.
func (g *Graph) Edges() [][2]int {
	var out [][2]int
	for a, nbs := range g.adj {
		for _, b := range nbs {
			if a < b {
				out = append(out, [2]int{a, b})
			}
		}
	}
	slices.SortFunc(out, func(x, y [2]int) int {
		if x[0] != y[0] {
			return x[0] - y[0]
		}
		return x[1] - y[1]
	})
	return out
}
