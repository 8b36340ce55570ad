package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/HershLalwani/qtrim/pkg/circuit"
)

// ──────────────────────────── Layout ────────────────────────────

type cellRole int

const (
	roleEmpty cellRole = iota
	roleBox
	roleControl
	roleTarget
	roleBarrier
	rolePassThrough
)

type cellInfo struct {
	role        cellRole
	gate        string
	label       string
	placeholder bool
	vertAbove   bool
	vertBelow   bool
}

// layout places every op in the first column where its whole qubit span is
// free. Columns are returned as [column][qubit].
func layout(c *circuit.Circuit) [][]cellInfo {
	var cols [][]cellInfo
	next := make([]int, c.NumQubits)

	for _, op := range c.Ops {
		if len(op.Qubits) == 0 {
			continue
		}
		lo, hi := slices.Min(op.Qubits), slices.Max(op.Qubits)
		col := 0
		for q := lo; q <= hi; q++ {
			col = max(col, next[q])
		}
		for len(cols) <= col {
			cols = append(cols, make([]cellInfo, c.NumQubits))
		}

		for q := lo; q <= hi; q++ {
			info := cellInfo{role: rolePassThrough, gate: op.Gate}
			if i := slices.Index(op.Qubits, q); i >= 0 {
				info = memberCell(op, i)
			}
			if op.Kind != circuit.KindBarrier {
				info.vertAbove = q > lo
				info.vertBelow = q < hi
			} else if info.role == rolePassThrough {
				info.role = roleEmpty
			}
			cols[col][q] = info
			next[q] = col + 1
		}
	}
	return cols
}

// memberCell returns the cell for the op's i-th qubit.
func memberCell(op circuit.Op, i int) cellInfo {
	info := cellInfo{gate: op.Gate}
	switch op.Kind {
	case circuit.KindBarrier:
		info.role = roleBarrier
	case circuit.KindWState:
		info.role = roleBox
		info.label = "W"
		info.placeholder = true
	case circuit.KindEntangle:
		switch {
		case i == 0 && op.Gate != circuit.GateSWAP && op.Gate != circuit.GateCZ:
			info.role = roleControl
		case op.Gate == circuit.GateCRY:
			info.role = roleBox
			info.label = "RY"
		default:
			info.role = roleTarget
		}
	default:
		info.role = roleBox
		info.label = gateDisplayName(op.Gate)
	}
	return info
}

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate type.
func gateDisplayName(gateType string) string {
	switch gateType {
	case circuit.GateID:
		return "I"
	default:
		return gateType
	}
}

// controlSymbol returns the wire symbol for the control qubit of a two-qubit gate.
func controlSymbol(gateType string) string {
	if gateType == circuit.GateSWAP {
		return "×"
	}
	return "●"
}

// targetSymbol returns the wire symbol for the target qubit of a two-qubit gate.
func targetSymbol(gateType string) string {
	switch gateType {
	case circuit.GateCZ:
		return "●"
	case circuit.GateSWAP:
		return "×"
	default:
		return "⊕"
	}
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch info.role {
	case roleBarrier:
		top = vertRow
		mid = strings.Repeat("─", dashL) + dimStyle.Render("│") + strings.Repeat("─", dashR)
		bot = vertRow

	case roleControl:
		mid = strings.Repeat("─", dashL) + gateStyle.Render(controlSymbol(info.gate)) + strings.Repeat("─", dashR)

	case roleTarget:
		mid = strings.Repeat("─", dashL) + gateStyle.Render(targetSymbol(info.gate)) + strings.Repeat("─", dashR)

	case roleBox:
		style := gateStyle
		if info.placeholder {
			style = placeholderStyle
		}
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		edgeL := (gateNameW - 1) / 2
		edgeR := gateNameW - edgeL - 1

		boxTop := "┌" + strings.Repeat("─", gateNameW) + "┐"
		if info.vertAbove {
			boxTop = "┌" + strings.Repeat("─", edgeL) + "┴" + strings.Repeat("─", edgeR) + "┐"
		}
		boxBot := "└" + strings.Repeat("─", gateNameW) + "┘"
		if info.vertBelow {
			boxBot = "└" + strings.Repeat("─", edgeL) + "┬" + strings.Repeat("─", edgeR) + "┘"
		}

		top = strings.Repeat(" ", margin) + style.Render(boxTop) + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + style.Render("┤"+padCenter(info.label, gateNameW)+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + style.Render(boxBot) + strings.Repeat(" ", rightMargin)

	case rolePassThrough:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)

	default:
		mid = strings.Repeat("─", cellW)
	}
	return
}

// ──────────────────────────── Diagram ────────────────────────────

// Diagram draws c as text: three lines per qubit and one column per layer.
// Ops share a column when their qubit spans do not overlap.
func Diagram(c *circuit.Circuit) string {
	var sb strings.Builder

	if c.Name != "" {
		sb.WriteString(titleStyle.Render(c.Name))
		sb.WriteString("\n\n")
	}

	cols := layout(c)

	header := strings.Repeat(" ", labelVisualW)
	for step := range cols {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(strings.TrimRight(header, " ") + "\n")

	for qubit := range c.NumQubits {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for _, col := range cols {
			top, mid, bot := renderCell(col[qubit])
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}
	return sb.String()
}
