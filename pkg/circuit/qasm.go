package circuit

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnsupportedQASM is returned for QASM statements outside the supported subset.
var ErrUnsupportedQASM = errors.New("unsupported qasm statement")

// MaxRegisterSize bounds the qreg size ParseQASM accepts.
const MaxRegisterSize = 1 << 16

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];?$`)
	gateRegex    = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+(.+?);?$`)
	qubitRegex   = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)
	barrierRegex = regexp.MustCompile(`^barrier\s+(.+?);?$`)
)

// qasmNames maps lower-case QASM gate names to gate constants.
var qasmNames = map[string]string{
	"x":       GateX,
	"y":       GateY,
	"z":       GateZ,
	"h":       GateH,
	"s":       GateS,
	"sdg":     GateSDG,
	"t":       GateT,
	"tdg":     GateTDG,
	"id":      GateID,
	"rx":      GateRX,
	"ry":      GateRY,
	"rz":      GateRZ,
	"p":       GateP,
	"u1":      GateP,
	"cx":      GateCX,
	"cz":      GateCZ,
	"cry":     GateCRY,
	"swap":    GateSWAP,
	"w_state": GateWState,
}

// ToQASM generates OpenQASM 2.0 output. The W-state placeholder is written
// as a w_state gate over its qubits.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", max(c.NumQubits, 1))

	for _, op := range c.Ops {
		writeOpQASM(&sb, op)
	}
	return sb.String()
}

// writeOpQASM writes a single op's QASM representation.
func writeOpQASM(sb *strings.Builder, op Op) {
	qubits := make([]string, len(op.Qubits))
	for i, q := range op.Qubits {
		qubits[i] = fmt.Sprintf("q[%d]", q)
	}
	args := strings.Join(qubits, ", ")

	switch op.Kind {
	case KindBarrier:
		fmt.Fprintf(sb, "barrier %s;\n", args)
	case KindWState:
		fmt.Fprintf(sb, "w_state %s;\n", args)
	default:
		name := strings.ToLower(op.Gate)
		if len(op.Params) == 0 {
			fmt.Fprintf(sb, "%s %s;\n", name, args)
			return
		}
		params := make([]string, len(op.Params))
		for i, p := range op.Params {
			params[i] = FormatParam(p)
		}
		fmt.Fprintf(sb, "%s(%s) %s;\n", name, strings.Join(params, ", "), args)
	}
}

// ParseQASM parses the supported OpenQASM 2.0 subset into a circuit.
// Only a single quantum register is supported; classical registers are
// ignored, and measurement or reset statements are rejected.
func ParseQASM(qasm string) (*Circuit, error) {
	c := &Circuit{}
	reg := ""

	for lineNo, raw := range strings.Split(qasm, "\n") {
		line := strings.TrimSpace(raw)
		if i := strings.Index(line, "//"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") || strings.HasPrefix(line, "creg") {
			continue
		}

		if strings.HasPrefix(line, "qreg") {
			matches := qregRegex.FindStringSubmatch(line)
			if matches == nil {
				return nil, fmt.Errorf("line %d: invalid qreg %q", lineNo+1, line)
			}
			if reg != "" {
				return nil, fmt.Errorf("line %d: %w: multiple quantum registers", lineNo+1, ErrUnsupportedQASM)
			}
			n, err := strconv.Atoi(matches[2])
			if err != nil || n > MaxRegisterSize {
				return nil, fmt.Errorf("line %d: register size %s exceeds %d", lineNo+1, matches[2], MaxRegisterSize)
			}
			reg = matches[1]
			c.NumQubits = n
			continue
		}

		op, err := parseOpLine(line, reg)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		if err := op.Validate(c.NumQubits); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		c.Ops = append(c.Ops, op)
	}

	return c, nil
}

// parseOpLine parses a single gate, barrier or placeholder statement.
func parseOpLine(line, reg string) (Op, error) {
	if matches := barrierRegex.FindStringSubmatch(line); matches != nil {
		qubits, err := parseQubitList(matches[1], reg)
		if err != nil {
			return Op{}, err
		}
		return Barrier(qubits...), nil
	}

	matches := gateRegex.FindStringSubmatch(line)
	if matches == nil {
		return Op{}, fmt.Errorf("%w: %q", ErrUnsupportedQASM, line)
	}

	gate, ok := qasmNames[strings.ToLower(matches[1])]
	if !ok {
		return Op{}, fmt.Errorf("%w: gate %q", ErrUnsupportedQASM, matches[1])
	}

	var params []float64
	if strings.TrimSpace(matches[2]) != "" {
		for _, part := range strings.Split(matches[2], ",") {
			val, err := ParseParam(part)
			if err != nil {
				return Op{}, err
			}
			params = append(params, val)
		}
	}

	qubits, err := parseQubitList(matches[3], reg)
	if err != nil {
		return Op{}, err
	}

	switch gate {
	case GateWState:
		return WState(qubits...), nil
	case GateCX, GateCZ, GateCRY, GateSWAP:
		return Op{Kind: KindEntangle, Gate: gate, Qubits: qubits, Params: params}, nil
	default:
		return Op{Kind: KindRotation, Gate: gate, Qubits: qubits, Params: params}, nil
	}
}

// parseQubitList parses "q[0], q[1]" into slot indices.
func parseQubitList(s, reg string) ([]int, error) {
	var qubits []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		matches := qubitRegex.FindStringSubmatch(part)
		if matches == nil {
			return nil, fmt.Errorf("invalid qubit reference %q", part)
		}
		if reg != "" && matches[1] != reg {
			return nil, fmt.Errorf("unknown register %q", matches[1])
		}
		q, err := strconv.Atoi(matches[2])
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%s]", ErrQubitOutOfRange, matches[1], matches[2])
		}
		qubits = append(qubits, q)
	}
	return qubits, nil
}
