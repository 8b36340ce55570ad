package coupling

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Backend is a physical target description loaded from TOML:
//
//	name = "falcon-5"
//	num_qubits = 5
//	coupling = [[0, 1], [1, 2], [1, 3], [3, 4]]
type Backend struct {
	Name      string   `toml:"name"`
	NumQubits int      `toml:"num_qubits"`
	Coupling  [][2]int `toml:"coupling"`
}

// Graph builds the backend's connectivity graph, checking that every edge
// fits within NumQubits.
func (b Backend) Graph() (*Graph, error) {
	g, err := NewGraph(b.Coupling)
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", b.Name, err)
	}
	if b.NumQubits > 0 && g.NumQubits() > b.NumQubits {
		return nil, fmt.Errorf("backend %q: %w: edge on qubit %d with %d qubits",
			b.Name, ErrInvalidEdge, g.NumQubits()-1, b.NumQubits)
	}
	return g, nil
}

// ParseBackend decodes a backend description.
func ParseBackend(data []byte) (Backend, error) {
	var b Backend
	if err := toml.Unmarshal(data, &b); err != nil {
		return Backend{}, fmt.Errorf("parse backend: %w", err)
	}
	if _, err := b.Graph(); err != nil {
		return Backend{}, err
	}
	return b, nil
}

// LoadBackend reads and decodes a backend description file.
func LoadBackend(path string) (Backend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Backend{}, fmt.Errorf("read backend: %w", err)
	}
	return ParseBackend(data)
}
