// Package transpile runs ordered rewrite passes over a circuit DAG.
package transpile

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/dag"
)

// Pass rewrites a DAG in place.
type Pass interface {
	Name() string
	Run(d *dag.DAG) error
}

// Manager runs passes in order over a circuit.
type Manager struct {
	passes []Pass
	logger *log.Logger
}

// NewManager creates a manager. A nil logger discards output.
func NewManager(logger *log.Logger, passes ...Pass) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{passes: passes, logger: logger}
}

// Add appends a pass to the pipeline.
func (m *Manager) Add(p Pass) *Manager {
	m.passes = append(m.passes, p)
	return m
}

// Passes returns the names of the configured passes, in run order.
func (m *Manager) Passes() []string {
	names := make([]string, len(m.passes))
	for i, p := range m.passes {
		names[i] = p.Name()
	}
	return names
}

// Run converts c to a DAG, applies every pass in order and returns the
// rewritten circuit. It stops at the first pass error; c itself is never
// modified.
func (m *Manager) Run(c *circuit.Circuit) (*circuit.Circuit, error) {
	d, err := dag.FromCircuit(c)
	if err != nil {
		return nil, fmt.Errorf("build dag for %s: %w", c.Name, err)
	}

	runID := uuid.NewString()[:12]
	logger := m.logger.With("run", runID)
	start := time.Now()
	logger.Info("pipeline started",
		"circuit", c.Name,
		"passes", len(m.passes),
		"size", d.Size(),
		"depth", d.Depth())

	for _, p := range m.passes {
		size, depth := d.Size(), d.Depth()
		passStart := time.Now()
		if err := p.Run(d); err != nil {
			logger.Error("pass failed", "pass", p.Name(), "err", err)
			return nil, fmt.Errorf("pass %s: %w", p.Name(), err)
		}
		logger.Debug("pass completed",
			"pass", p.Name(),
			"size_before", size,
			"size_after", d.Size(),
			"depth_before", depth,
			"depth_after", d.Depth(),
			"duration", time.Since(passStart))
	}

	out := d.ToCircuit()
	logger.Info("pipeline completed",
		"size", out.Size(),
		"depth", out.Depth(),
		"duration", time.Since(start))
	return out, nil
}
