package depgraph

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lablink-dev/figgen/pkg/fonts"
)

// labelThreshold is the minimum degree at which a node shows its name.
// Hubs stay readable while the long tail renders as anonymous dots.
const labelThreshold = 5

// netPreset sizes the network figure for one output context.
type netPreset struct {
	titlePt, nodePt int
	minIn, spanIn   float64
	edgeColor       string
}

var netPresets = map[string]netPreset{
	"paper":  {32, 14, 0.25, 0.65, "#888888"},
	"poster": {48, 20, 0.30, 0.80, "#666666"},
}

// netPresetFor falls back to paper sizing; the network figure only
// ships paper and poster variants.
func netPresetFor(name string) netPreset {
	if p, ok := netPresets[name]; ok {
		return p
	}
	return netPresets["paper"]
}

// ToDOT renders the network as Graphviz source. Node area tracks
// degree, names appear on hubs and on the root, and colors follow
// CategoryColors with a legend cluster.
func ToDOT(g *Graph, preset string) string {
	p := netPresetFor(preset)
	stats := g.Stats()

	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	title := fmt.Sprintf("%s Dependency Network\n%d packages, %d dependency links",
		strings.ToUpper(g.Root), stats.Packages, stats.Links)
	fmt.Fprintf(&buf, "  label=%q;\n", title)
	buf.WriteString("  labelloc=\"t\";\n")
	fmt.Fprintf(&buf, "  fontsize=%d;\n", p.titlePt)
	fmt.Fprintf(&buf, "  fontname=%q;\n", fonts.Diagram)
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, fontsize=%d, fontname=%q];\n", p.nodePt, fonts.Diagram)
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.5];\n", p.edgeColor)
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		frac := 0.0
		if stats.MaxDegree > 0 {
			frac = float64(n.Degree) / float64(stats.MaxDegree)
		}
		width := p.minIn + p.spanIn*frac

		label := ""
		if n.Root || n.Degree >= labelThreshold {
			label = n.Name
		}
		border, penwidth := "#333333", 1
		if n.Root {
			border, penwidth = "#000000", 3
		}
		fmt.Fprintf(&buf, "  %q [label=%q, width=%.2f, fillcolor=%q, color=%q, penwidth=%d];\n",
			n.Name, label, width, CategoryColors[n.Category], border, penwidth)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("\n")
	buf.WriteString("  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Categories\";\n")
	fmt.Fprintf(&buf, "    fontsize=%d;\n", p.nodePt)
	buf.WriteString("    style=\"rounded\";\n")
	buf.WriteString("    color=\"#999999\";\n")
	for i, cat := range categoryOrder {
		fmt.Fprintf(&buf, "    legend_%d [label=%q, shape=box, fixedsize=false, fillcolor=%q, fontcolor=\"#ffffff\"];\n",
			i, cat, CategoryColors[cat])
	}
	buf.WriteString("  }\n")

	buf.WriteString("}\n")
	return buf.String()
}
