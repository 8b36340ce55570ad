package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/HershLalwani/qtrim/pkg/circuit"
	"github.com/HershLalwani/qtrim/pkg/dag"
)

// DOT converts a circuit DAG to Graphviz DOT. Nodes are listed in
// topological order and edges follow node dependencies. W-state
// placeholders are drawn dashed so unexpanded markers stand out.
func DOT(d *dag.DAG) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	nodes := d.OpNodes()
	for _, n := range nodes {
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n.Op))}
		switch n.Op.Kind {
		case circuit.KindWState:
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=\"#bb9af7\"")
		case circuit.KindBarrier:
			attrs = append(attrs, "shape=point")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, dep := range n.Dependencies {
			fmt.Fprintf(&buf, "  %q -> %q;\n", dep, n.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(op circuit.Op) string {
	name := op.Gate
	if op.Kind == circuit.KindWState {
		name = fmt.Sprintf("W%d", op.Width)
	}
	if len(op.Params) > 0 {
		params := make([]string, len(op.Params))
		for i, p := range op.Params {
			params[i] = circuit.FormatParam(p)
		}
		name += "(" + strings.Join(params, ",") + ")"
	}
	qubits := make([]string, len(op.Qubits))
	for i, q := range op.Qubits {
		qubits[i] = fmt.Sprintf("q[%d]", q)
	}
	return name + "\n" + strings.Join(qubits, " ")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
