package wstate

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/coupling"
	"github.com/HershLalwani/qtrim/pkg/dag"
)

// Strategy selects how a tree plan is turned into gates.
type Strategy string

const (
	// StrategySchedule emits ScheduleTree.
	StrategySchedule Strategy = "schedule"
	// StrategyExact emits ExactTree.
	StrategyExact Strategy = "exact"
)

// ErrUnknownStrategy is returned for strategies other than schedule and exact.
var ErrUnknownStrategy = errors.New("unknown synthesis strategy")

// ParseStrategy converts a configuration string to a Strategy. The empty
// string selects StrategySchedule.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategySchedule:
		return StrategySchedule, nil
	case StrategyExact:
		return StrategyExact, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

const (
	DefaultMinSize           = 8
	DefaultFidelityThreshold = 0.99
	DefaultMaxVerifyQubits   = 20
)

// Options configures a Synthesizer. Zero values select the defaults.
type Options struct {
	// MinSize is the smallest placeholder width that gets a tree; narrower
	// placeholders keep the linear template.
	MinSize  int
	Strategy Strategy

	// Verify gates every candidate on its simulated fidelity.
	Verify            bool
	FidelityThreshold float64
	// MaxVerifyQubits bounds verification cost. Wider candidates cannot be
	// verified and are rejected while Verify is on.
	MaxVerifyQubits int

	// Coupling is the physical connectivity. Nil selects heap trees.
	Coupling *coupling.Graph
	Logger   *log.Logger
}

// Result counts what one pass did.
type Result struct {
	Matched     int // placeholder nodes seen
	Substituted int
	Skipped     int // below MinSize
	Rejected    int // failed verification
	Failed      int // planning or substitution errors
}

// Synthesizer replaces W-state placeholders with tree constructions.
type Synthesizer struct {
	opts   Options
	logger *log.Logger

	// build produces the candidate for a placeholder's qubits.
	build func(qubits []int) (*circuit.Circuit, error)
}

// New returns a Synthesizer with defaults filled in.
func New(opts Options) *Synthesizer {
	if opts.MinSize <= 0 {
		opts.MinSize = DefaultMinSize
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategySchedule
	}
	if opts.FidelityThreshold <= 0 {
		opts.FidelityThreshold = DefaultFidelityThreshold
	}
	if opts.MaxVerifyQubits <= 0 {
		opts.MaxVerifyQubits = DefaultMaxVerifyQubits
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Synthesizer{opts: opts, logger: logger.WithPrefix("w_state_synth")}
	s.build = s.Synthesize
	return s
}

// Options returns the effective options.
func (s *Synthesizer) Options() Options {
	return s.opts
}

// Name identifies the pass.
func (s *Synthesizer) Name() string {
	return "w_state_synth"
}

// Run implements the pass interface. Per-node failures are logged and
// skipped, so Run itself never fails.
func (s *Synthesizer) Run(d *dag.DAG) error {
	res := s.Apply(d)
	s.logger.Info("pass complete",
		"matched", res.Matched,
		"substituted", res.Substituted,
		"skipped", res.Skipped,
		"rejected", res.Rejected,
		"failed", res.Failed)
	return nil
}

// Apply scans d for placeholders and substitutes each one at or above
// MinSize whose candidate builds, verifies (when enabled) and splices
// cleanly. Every other node is left untouched.
func (s *Synthesizer) Apply(d *dag.DAG) Result {
	var res Result
	for _, node := range d.OpNodes() {
		if node.Op.Kind != circuit.KindWState {
			continue
		}
		res.Matched++
		n := node.Op.Width
		logger := s.logger.With("node", node.ID, "n", n)

		if n < s.opts.MinSize {
			logger.Debug("keeping linear template", "min_size", s.opts.MinSize)
			res.Skipped++
			continue
		}

		repl, err := s.build(node.Op.Qubits)
		if err != nil {
			logger.Warn("synthesis failed, node left unchanged", "err", err)
			res.Failed++
			continue
		}

		if s.opts.Verify {
			ok, err := s.accept(repl, n)
			if err != nil {
				logger.Warn("verification failed, node left unchanged", "err", err)
				res.Rejected++
				continue
			}
			if !ok {
				res.Rejected++
				continue
			}
		}

		if err := d.SubstituteNode(node.ID, repl); err != nil {
			logger.Warn("substitution failed, node left unchanged", "err", err)
			res.Failed++
			continue
		}
		logger.Debug("substituted", "circuit", repl.Name, "depth", repl.Depth(), "size", repl.Size())
		res.Substituted++
	}
	return res
}

// accept reports whether repl reaches the fidelity threshold.
func (s *Synthesizer) accept(repl *circuit.Circuit, n int) (bool, error) {
	if n > s.opts.MaxVerifyQubits {
		return false, fmt.Errorf("%d qubits exceeds verification limit %d", n, s.opts.MaxVerifyQubits)
	}
	fidelity, err := Fidelity(repl, n)
	if err != nil {
		return false, err
	}
	if fidelity < s.opts.FidelityThreshold {
		s.logger.Warn("fidelity below threshold, keeping linear template",
			"circuit", repl.Name,
			"fidelity", fidelity,
			"threshold", s.opts.FidelityThreshold)
		return false, nil
	}
	return true, nil
}

// Synthesize builds the tree candidate for a placeholder over the given
// physical qubits. With a coupling graph it tries a connectivity-aware plan
// and falls back to the heap layout when the qubits are disconnected.
func (s *Synthesizer) Synthesize(qubits []int) (*circuit.Circuit, error) {
	plan, err := s.plan(qubits)
	if err != nil {
		return nil, err
	}
	switch s.opts.Strategy {
	case StrategySchedule:
		return ScheduleTree(plan)
	case StrategyExact:
		return ExactTree(plan)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, s.opts.Strategy)
	}
}

func (s *Synthesizer) plan(qubits []int) (Plan, error) {
	if s.opts.Coupling == nil {
		return PlanAgnostic(len(qubits))
	}
	plan, err := PlanCoupled(qubits, s.opts.Coupling)
	if errors.Is(err, ErrDisconnected) {
		s.logger.Debug("falling back to agnostic tree", "qubits", qubits, "err", err)
		return PlanAgnostic(len(qubits))
	}
	return plan, err
}
