// Package config loads the TOML configuration that wires the synthesizer,
// the rewrite passes and logging together.
//
// A complete file looks like:
//
//	[synth]
//	min_size = 8
//	strategy = "exact"
//	verify = true
//	fidelity_threshold = 0.99
//	max_verify_qubits = 20
//
//	[backend]
//	name = "grid-3x3"
//	num_qubits = 9
//	coupling = [[0, 1], [1, 2], [0, 3]]
//	# or: file = "backends/grid.toml"
//
//	[passes]
//	route = true
//	cancel = true
//	merge = true
//	idle_threshold = 0
//
//	[log]
//	level = "info"
//
// Every key is optional; missing keys keep the values from Default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/HershLalwani/qtrim/pkg/coupling"
	"github.com/HershLalwani/qtrim/pkg/statevector"
	"github.com/HershLalwani/qtrim/pkg/transpile"
	"github.com/HershLalwani/qtrim/pkg/wstate"
)

var (
	// ErrUnknownKey is returned when the file sets keys this package does not read.
	ErrUnknownKey = errors.New("unknown configuration key")
	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("invalid configuration")
)

type Config struct {
	Synth   Synth   `toml:"synth"`
	Backend Backend `toml:"backend"`
	Passes  Passes  `toml:"passes"`
	Log     Log     `toml:"log"`

	dir string // directory of the loaded file, for relative paths
}

type Synth struct {
	MinSize           int     `toml:"min_size"`
	Strategy          string  `toml:"strategy"`
	Verify            bool    `toml:"verify"`
	FidelityThreshold float64 `toml:"fidelity_threshold"`
	MaxVerifyQubits   int     `toml:"max_verify_qubits"`
}

// Backend is either an inline coupling description or a path to one.
type Backend struct {
	File string `toml:"file"`
	coupling.Backend
}

type Passes struct {
	// Route inserts SWAPs for gates on uncoupled qubits; needs a backend.
	Route  bool `toml:"route"`
	Cancel bool `toml:"cancel"`
	Merge  bool `toml:"merge"`
	// IdleThreshold enables idle-qubit decoupling when positive.
	IdleThreshold int `toml:"idle_threshold"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Synth: Synth{
			MinSize:           wstate.DefaultMinSize,
			Strategy:          string(wstate.StrategySchedule),
			FidelityThreshold: wstate.DefaultFidelityThreshold,
			MaxVerifyQubits:   wstate.DefaultMaxVerifyQubits,
		},
		Passes: Passes{Cancel: true},
		Log:    Log{Level: "info"},
	}
}

// Parse decodes data over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path. A relative backend file is
// resolved against the config file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Synth.MinSize < 1 {
		return fmt.Errorf("%w: synth.min_size %d < 1", ErrInvalid, c.Synth.MinSize)
	}
	if _, err := wstate.ParseStrategy(c.Synth.Strategy); err != nil {
		return fmt.Errorf("%w: synth.strategy: %w", ErrInvalid, err)
	}
	if t := c.Synth.FidelityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("%w: synth.fidelity_threshold %g outside (0, 1]", ErrInvalid, t)
	}
	if m := c.Synth.MaxVerifyQubits; m < 1 || m > statevector.MaxQubits {
		return fmt.Errorf("%w: synth.max_verify_qubits %d outside [1, %d]", ErrInvalid, m, statevector.MaxQubits)
	}
	if c.Passes.IdleThreshold < 0 {
		return fmt.Errorf("%w: passes.idle_threshold %d < 0", ErrInvalid, c.Passes.IdleThreshold)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	if c.Passes.Route && c.Backend.File == "" && len(c.Backend.Coupling) == 0 {
		return fmt.Errorf("%w: passes.route needs a backend", ErrInvalid)
	}
	if c.Backend.File != "" && len(c.Backend.Coupling) > 0 {
		return fmt.Errorf("%w: backend sets both file and coupling", ErrInvalid)
	}
	if len(c.Backend.Coupling) > 0 {
		if _, err := c.Backend.Graph(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return nil
}

// Coupling returns the configured connectivity graph, or nil when no backend
// is configured.
func (c Config) Coupling() (*coupling.Graph, error) {
	if c.Backend.File != "" {
		path := c.Backend.File
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		b, err := coupling.LoadBackend(path)
		if err != nil {
			return nil, err
		}
		return b.Graph()
	}
	if len(c.Backend.Coupling) == 0 {
		return nil, nil
	}
	return c.Backend.Graph()
}

// Logger creates a logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Synthesizer builds the W-state synthesizer described by the [synth] and
// [backend] sections.
func (c Config) Synthesizer(logger *log.Logger) (*wstate.Synthesizer, error) {
	strategy, err := wstate.ParseStrategy(c.Synth.Strategy)
	if err != nil {
		return nil, err
	}
	g, err := c.Coupling()
	if err != nil {
		return nil, err
	}
	return wstate.New(wstate.Options{
		MinSize:           c.Synth.MinSize,
		Strategy:          strategy,
		Verify:            c.Synth.Verify,
		FidelityThreshold: c.Synth.FidelityThreshold,
		MaxVerifyQubits:   c.Synth.MaxVerifyQubits,
		Coupling:          g,
		Logger:            logger,
	}), nil
}

// Manager builds the pass pipeline: synthesis, then routing, cancellation,
// rotation merging and idle decoupling when enabled.
func (c Config) Manager(logger *log.Logger) (*transpile.Manager, error) {
	synth, err := c.Synthesizer(logger)
	if err != nil {
		return nil, err
	}
	m := transpile.NewManager(logger, synth)
	if c.Passes.Route {
		m.Add(transpile.RoutePass{Coupling: synth.Options().Coupling})
	}
	if c.Passes.Cancel {
		m.Add(transpile.CancelPass{})
	}
	if c.Passes.Merge {
		m.Add(transpile.MergePass{})
	}
	if c.Passes.IdleThreshold > 0 {
		m.Add(transpile.IdleDecouplePass{Threshold: c.Passes.IdleThreshold})
	}
	return m, nil
}
