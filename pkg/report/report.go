// Package report measures circuits and renders before/after comparisons and
// text diagrams for terminals.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/HershLalwani/qtrim/pkg/circuit"
)

// Metrics summarises the cost of a circuit.
type Metrics struct {
	Depth     int
	Size      int
	CX        int
	Rotations int // parameterised gates, controlled rotations included
	TwoQubit  int
}

// Measure computes the metrics of c.
func Measure(c *circuit.Circuit) Metrics {
	m := Metrics{Depth: c.Depth(), Size: c.Size()}
	for _, op := range c.Ops {
		if op.Gate == circuit.GateCX {
			m.CX++
		}
		if len(op.Params) > 0 {
			m.Rotations++
		}
		if op.Kind == circuit.KindEntangle {
			m.TwoQubit++
		}
	}
	return m
}

// Comparison pairs the metrics of a circuit before and after rewriting.
type Comparison struct {
	Name          string
	Before, After Metrics
}

// Compare measures both circuits.
func Compare(before, after *circuit.Circuit) Comparison {
	return Comparison{
		Name:   after.Name,
		Before: Measure(before),
		After:  Measure(after),
	}
}

// Improvement returns the relative reduction from before to after in percent.
// A zero baseline yields 0. Growth is negative.
func Improvement(before, after int) float64 {
	if before == 0 {
		return 0
	}
	return float64(before-after) / float64(before) * 100
}

type row struct {
	label         string
	before, after int
}

func (c Comparison) rows() []row {
	return []row{
		{"depth", c.Before.Depth, c.After.Depth},
		{"size", c.Before.Size, c.After.Size},
		{"cx", c.Before.CX, c.After.CX},
		{"rotations", c.Before.Rotations, c.After.Rotations},
		{"two-qubit", c.Before.TwoQubit, c.After.TwoQubit},
	}
}

// Rows returns the table cells: metric, before, after and change.
func (c Comparison) Rows() [][]string {
	rows := c.rows()
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			r.label,
			fmt.Sprintf("%d", r.before),
			fmt.Sprintf("%d", r.after),
			fmt.Sprintf("%+.1f%%", Improvement(r.before, r.after)),
		}
	}
	return out
}

// Render draws the comparison as a bordered table with an optional title.
func (c Comparison) Render() string {
	rows := c.rows()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("metric", "before", "after", "change").
		Rows(c.Rows()...).
		StyleFunc(func(r, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if r == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col != 3 || r < 0 || r >= len(rows) {
				return base
			}
			switch delta := rows[r].before - rows[r].after; {
			case delta > 0:
				return betterStyle.Padding(0, 1)
			case delta < 0:
				return worseStyle.Padding(0, 1)
			}
			return base
		})

	var sb strings.Builder
	if c.Name != "" {
		sb.WriteString(titleStyle.Render(c.Name))
		sb.WriteString("\n")
	}
	sb.WriteString(t.Render())
	return sb.String()
}
