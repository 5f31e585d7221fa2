// Package diagram generates LabLink architecture diagrams from parsed
// Terraform configurations.
//
// Each diagram kind assembles Graphviz DOT in a buffer and lays it out
// with the dot engine. Known resource types map to fixed shape and
// color templates; unknown types fall back to a gray box so new
// infrastructure never breaks a render. Conditional resources draw
// dashed green, runtime-provisioned ones dotted orange.
package diagram

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lablink-dev/figgen/pkg/errors"
	"github.com/lablink-dev/figgen/pkg/fonts"
)

// Kind selects one diagram topology.
type Kind string

const (
	KindMain           Kind = "main"
	KindDetailed       Kind = "detailed"
	KindNetworkFlow    Kind = "network-flow"
	KindVMProvisioning Kind = "vm-provisioning"

	// KindAll is an alias that expands to every concrete kind.
	KindAll Kind = "all"
)

// Kinds lists every accepted diagram type, the "all" alias included.
func Kinds() []Kind {
	return []Kind{KindMain, KindDetailed, KindNetworkFlow, KindVMProvisioning, KindAll}
}

// ParseKind validates a user-supplied diagram type.
func ParseKind(s string) (Kind, error) {
	valid := Kinds()
	for _, k := range valid {
		if s == string(k) {
			return k, nil
		}
	}
	names := make([]string, len(valid))
	for i, k := range valid {
		names[i] = string(k)
	}
	return "", errors.New(errors.ErrCodeInvalidDiagram,
		"unknown diagram type %q (valid: %s)", s, strings.Join(names, ", "))
}

// Expand resolves the "all" alias into the concrete kinds.
func Expand(kind Kind) []Kind {
	if kind == KindAll {
		return []Kind{KindMain, KindDetailed, KindNetworkFlow, KindVMProvisioning}
	}
	return []Kind{kind}
}

// Name returns the output file stem for a kind.
func Name(kind Kind) string {
	switch kind {
	case KindDetailed:
		return "lablink-architecture-detailed"
	case KindNetworkFlow:
		return "lablink-network-flow"
	case KindVMProvisioning:
		return "lablink-vm-provisioning"
	default:
		return "lablink-architecture"
	}
}

// fontPreset carries the Graphviz font sizes and rank spacing for one
// output context. In LR layouts nodesep is vertical and ranksep
// horizontal, the opposite of TB.
type fontPreset struct {
	title, node, edge int
	nodeSep, rankSep  string
}

var fontPresets = map[string]fontPreset{
	"paper":        {32, 14, 14, "1.0", "1.5"},
	"poster":       {48, 20, 20, "1.8", "2.5"},
	"presentation": {40, 16, 16, "1.2", "1.7"},
}

// fontsFor falls back to paper sizing for unknown preset names.
func fontsFor(preset string) fontPreset {
	if f, ok := fontPresets[preset]; ok {
		return f
	}
	return fontPresets["paper"]
}

const (
	computeColor  = "#ed7100"
	networkColor  = "#8c4fff"
	securityColor = "#dd344c"
	monitorColor  = "#e7157b"
	databaseColor = "#c925d1"
	storageColor  = "#7aa116"
	actorColor    = "#232f3e"
	genericColor  = "#879196"

	conditionalColor = "#28a745"
	provisionedColor = "#fd7e14"
)

// template fixes the visual identity of one resource family.
type template struct {
	shape string
	color string
}

var templates = map[string]template{
	"aws_instance":                           {"box3d", computeColor},
	"aws_lambda_function":                    {"component", computeColor},
	"aws_lb":                                 {"hexagon", networkColor},
	"aws_lb_target_group":                    {"cds", networkColor},
	"aws_eip":                                {"ellipse", networkColor},
	"aws_route53_record":                     {"ellipse", networkColor},
	"aws_subnet":                             {"box", networkColor},
	"aws_vpc":                                {"box", networkColor},
	"aws_security_group":                     {"diamond", securityColor},
	"aws_iam_role":                           {"note", securityColor},
	"aws_iam_policy":                         {"note", securityColor},
	"aws_cloudwatch_log_group":               {"folder", monitorColor},
	"aws_cloudwatch_log_subscription_filter": {"cds", monitorColor},
	"aws_db_instance":                        {"cylinder", databaseColor},
	"aws_s3_bucket":                          {"tab", storageColor},
}

var (
	generic   = template{"box", genericColor}
	actor     = template{"oval", actorColor}
	database  = template{"cylinder", databaseColor}
	container = template{"component", storageColor}
	process   = template{"box", genericColor}
)

// templateFor picks the node template for a resource type, gray box
// when unknown.
func templateFor(typ string) template {
	if t, ok := templates[typ]; ok {
		return t
	}
	return generic
}

type nodeStyle int

const (
	styleSolid nodeStyle = iota
	styleConditional
	styleProvisioned
)

// dot accumulates one Graphviz document.
type dot struct {
	buf      bytes.Buffer
	clusters int
	in       string
}

func newDot(title string, f fontPreset, rankdir string) *dot {
	d := &dot{in: "  "}
	fmt.Fprintf(&d.buf, "digraph G {\n")
	fmt.Fprintf(&d.buf, "  label=%q;\n", title)
	fmt.Fprintf(&d.buf, "  labelloc=\"t\";\n")
	fmt.Fprintf(&d.buf, "  rankdir=%s;\n", rankdir)
	fmt.Fprintf(&d.buf, "  fontsize=%d;\n", f.title)
	fmt.Fprintf(&d.buf, "  fontname=%q;\n", fonts.Diagram)
	fmt.Fprintf(&d.buf, "  bgcolor=\"white\";\n")
	fmt.Fprintf(&d.buf, "  pad=0.5;\n")
	fmt.Fprintf(&d.buf, "  nodesep=%s;\n", f.nodeSep)
	fmt.Fprintf(&d.buf, "  ranksep=%s;\n", f.rankSep)
	fmt.Fprintf(&d.buf, "  sep=\"+25,25\";\n")
	fmt.Fprintf(&d.buf, "  splines=ortho;\n")
	fmt.Fprintf(&d.buf, "  node [fontsize=%d, fontname=%q];\n", f.node, fonts.Diagram)
	fmt.Fprintf(&d.buf, "  edge [fontsize=%d, fontname=%q, labeldistance=2.0, labelfloat=true];\n", f.edge, fonts.Diagram)
	d.buf.WriteString("\n")
	return d
}

// cluster emits a labeled subgraph around the nodes body declares.
func (d *dot) cluster(label string, body func()) {
	fmt.Fprintf(&d.buf, "%ssubgraph cluster_%d {\n", d.in, d.clusters)
	d.clusters++
	prev := d.in
	d.in += "  "
	fmt.Fprintf(&d.buf, "%slabel=%q;\n", d.in, label)
	fmt.Fprintf(&d.buf, "%sstyle=\"rounded\";\n", d.in)
	fmt.Fprintf(&d.buf, "%scolor=\"#999999\";\n", d.in)
	body()
	d.in = prev
	fmt.Fprintf(&d.buf, "%s}\n", d.in)
}

func (d *dot) node(id, label string, t template, s nodeStyle) {
	style, color := "filled", t.color
	switch s {
	case styleConditional:
		style, color = "filled,dashed", conditionalColor
	case styleProvisioned:
		style, color = "filled,dotted", provisionedColor
	}
	fmt.Fprintf(&d.buf, "%s%q [label=%q, shape=%s, style=%q, fillcolor=\"white\", color=%q, penwidth=2];\n",
		d.in, id, label, t.shape, style, color)
}

type edgeOpts struct {
	label string
	color string
	style string
}

func (d *dot) edge(from, to string, o edgeOpts) {
	var attrs []string
	if o.label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", o.label))
	}
	if o.color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", o.color))
	}
	if o.style != "" {
		attrs = append(attrs, fmt.Sprintf("style=%s", o.style))
	}
	if len(attrs) == 0 {
		fmt.Fprintf(&d.buf, "%s%q -> %q;\n", d.in, from, to)
		return
	}
	fmt.Fprintf(&d.buf, "%s%q -> %q [%s];\n", d.in, from, to, strings.Join(attrs, ", "))
}

func (d *dot) blank() {
	d.buf.WriteString("\n")
}

func (d *dot) String() string {
	return d.buf.String() + "}\n"
}
