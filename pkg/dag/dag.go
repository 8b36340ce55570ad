// Package dag represents a circuit as a directed acyclic graph of operation
// nodes over qubit wires.
//
// The DAG keeps one canonical linear order of its nodes, which is always a
// valid topological order, and derives per-qubit wires and node dependencies
// from it. Passes mutate the graph in place through RemoveNode,
// SubstituteNode and InsertAfter. A DAG is not safe for concurrent use.
package dag

import (
	"errors"
	"fmt"
	"slices"

	"github.com/HershLalwani/qtrim/pkg/circuit"
)

var (
	// ErrNodeNotFound is returned when a node ID is not in the DAG.
	ErrNodeNotFound = errors.New("node not found")
	// ErrQubitMismatch is returned when a replacement does not touch exactly
	// the qubit slots of the node it replaces.
	ErrQubitMismatch = errors.New("replacement qubit mismatch")
)

// Node is a single operation in the DAG.
type Node struct {
	ID           string
	Op           circuit.Op
	Dependencies []string // IDs of nodes that must execute before this one
}

// DAG represents a quantum circuit as a Directed Acyclic Graph.
type DAG struct {
	Name      string
	NumQubits int
	Nodes     map[string]*Node // All nodes by ID

	order     []string   // canonical topological order
	wires     [][]string // node IDs per qubit, in order
	rootNodes []string   // node IDs with no dependencies
	seq       int
}

// New creates an empty DAG over numQubits wires.
func New(name string, numQubits int) *DAG {
	return &DAG{
		Name:      name,
		NumQubits: numQubits,
		Nodes:     make(map[string]*Node),
		wires:     make([][]string, numQubits),
	}
}

// FromCircuit creates a DAG from a circuit, preserving op order.
func FromCircuit(c *circuit.Circuit) (*DAG, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	dag := New(c.Name, c.NumQubits)
	for _, op := range c.Ops {
		dag.order = append(dag.order, dag.newNode(op).ID)
	}
	dag.relink()
	return dag, nil
}

// generateNodeID creates a unique ID for a node based on its properties.
func generateNodeID(gate string, target, seq int) string {
	return fmt.Sprintf("%s_q%d_n%d", gate, target, seq)
}

// newNode registers a node for op without placing it in the order.
func (dag *DAG) newNode(op circuit.Op) *Node {
	target := -1
	if len(op.Qubits) > 0 {
		target = op.Qubits[len(op.Qubits)-1]
	}
	node := &Node{
		ID: generateNodeID(op.Gate, target, dag.seq),
		Op: op.Clone(),
	}
	dag.seq++
	dag.Nodes[node.ID] = node
	return node
}

// AddOp appends an operation after every existing node.
func (dag *DAG) AddOp(op circuit.Op) (*Node, error) {
	if err := op.Validate(dag.NumQubits); err != nil {
		return nil, err
	}
	node := dag.newNode(op)
	dag.order = append(dag.order, node.ID)
	dag.relink()
	return node, nil
}

// Node returns the node with the given ID.
func (dag *DAG) Node(id string) (*Node, bool) {
	node, ok := dag.Nodes[id]
	return node, ok
}

// Roots returns the nodes with no dependencies, in topological order.
func (dag *DAG) Roots() []*Node {
	out := make([]*Node, len(dag.rootNodes))
	for i, id := range dag.rootNodes {
		out[i] = dag.Nodes[id]
	}
	return out
}

// OpNodes returns every node in topological order. The returned slice is a
// snapshot; mutating the DAG while ranging over it is safe.
func (dag *DAG) OpNodes() []*Node {
	out := make([]*Node, len(dag.order))
	for i, id := range dag.order {
		out[i] = dag.Nodes[id]
	}
	return out
}

// Wire returns the nodes acting on qubit, in order.
func (dag *DAG) Wire(qubit int) []*Node {
	if qubit < 0 || qubit >= dag.NumQubits {
		return nil
	}
	out := make([]*Node, len(dag.wires[qubit]))
	for i, id := range dag.wires[qubit] {
		out[i] = dag.Nodes[id]
	}
	return out
}

// Next returns the node following id on the given qubit's wire.
func (dag *DAG) Next(id string, qubit int) (*Node, bool) {
	if qubit < 0 || qubit >= dag.NumQubits {
		return nil, false
	}
	wire := dag.wires[qubit]
	i := slices.Index(wire, id)
	if i < 0 || i+1 >= len(wire) {
		return nil, false
	}
	return dag.Nodes[wire[i+1]], true
}

// RemoveNode removes a node from the DAG and updates dependencies.
func (dag *DAG) RemoveNode(id string) error {
	if _, ok := dag.Nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	delete(dag.Nodes, id)
	dag.order = slices.DeleteFunc(dag.order, func(other string) bool { return other == id })
	dag.relink()
	return nil
}

// SubstituteNode replaces node id with the operations of repl. Qubit i of
// repl is mapped onto the node's i-th qubit slot. The replacement must span
// exactly the node's qubits; otherwise the DAG is left untouched.
func (dag *DAG) SubstituteNode(id string, repl *circuit.Circuit) error {
	node, ok := dag.Nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	slots := node.Op.Qubits
	if repl.NumQubits != len(slots) {
		return fmt.Errorf("%w: replacement has %d qubits, node %s spans %d",
			ErrQubitMismatch, repl.NumQubits, id, len(slots))
	}
	if err := repl.Validate(); err != nil {
		return fmt.Errorf("replacement for %s: %w", id, err)
	}
	if touched := repl.Qubits(); len(touched) != len(slots) {
		return fmt.Errorf("%w: replacement touches %v, node %s spans %d qubits",
			ErrQubitMismatch, touched, id, len(slots))
	}

	ids := make([]string, 0, len(repl.Ops))
	for _, op := range repl.Ops {
		mapped := op.Clone()
		for i, q := range mapped.Qubits {
			mapped.Qubits[i] = slots[q]
		}
		ids = append(ids, dag.newNode(mapped).ID)
	}

	at := slices.Index(dag.order, id)
	dag.order = slices.Replace(dag.order, at, at+1, ids...)
	delete(dag.Nodes, id)
	dag.relink()
	return nil
}

// InsertAfter places ops directly after node id in the DAG order.
func (dag *DAG) InsertAfter(id string, ops ...circuit.Op) error {
	at := slices.Index(dag.order, id)
	if at < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	for _, op := range ops {
		if err := op.Validate(dag.NumQubits); err != nil {
			return err
		}
	}
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = dag.newNode(op).ID
	}
	dag.order = slices.Insert(dag.order, at+1, ids...)
	dag.relink()
	return nil
}

// InsertBefore places ops directly before node id in the DAG order.
func (dag *DAG) InsertBefore(id string, ops ...circuit.Op) error {
	at := slices.Index(dag.order, id)
	if at < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	for _, op := range ops {
		if err := op.Validate(dag.NumQubits); err != nil {
			return err
		}
	}
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = dag.newNode(op).ID
	}
	dag.order = slices.Insert(dag.order, at, ids...)
	dag.relink()
	return nil
}

// SetOp replaces the operation of node id in place. The node keeps its ID
// and position; wires follow the new op's qubits.
func (dag *DAG) SetOp(id string, op circuit.Op) error {
	node, ok := dag.Nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if err := op.Validate(dag.NumQubits); err != nil {
		return err
	}
	node.Op = op.Clone()
	dag.relink()
	return nil
}

// relink rebuilds wires, dependencies and root nodes from the order.
func (dag *DAG) relink() {
	dag.wires = make([][]string, dag.NumQubits)
	dag.rootNodes = dag.rootNodes[:0]

	for _, id := range dag.order {
		node := dag.Nodes[id]
		node.Dependencies = node.Dependencies[:0]
		for _, q := range node.Op.Qubits {
			if wire := dag.wires[q]; len(wire) > 0 {
				if prev := wire[len(wire)-1]; !slices.Contains(node.Dependencies, prev) {
					node.Dependencies = append(node.Dependencies, prev)
				}
			}
			dag.wires[q] = append(dag.wires[q], id)
		}
		if len(node.Dependencies) == 0 {
			dag.rootNodes = append(dag.rootNodes, id)
		}
	}
}

// ToCircuit converts the DAG to a circuit in topological order.
func (dag *DAG) ToCircuit() *circuit.Circuit {
	c := circuit.New(dag.Name, dag.NumQubits)
	c.Ops = make([]circuit.Op, 0, len(dag.order))
	for _, id := range dag.order {
		c.Ops = append(c.Ops, dag.Nodes[id].Op.Clone())
	}
	return c
}

// Size returns the number of non-barrier operations.
func (dag *DAG) Size() int {
	return dag.ToCircuit().Size()
}

// Depth returns the circuit depth of the DAG.
func (dag *DAG) Depth() int {
	return dag.ToCircuit().Depth()
}
