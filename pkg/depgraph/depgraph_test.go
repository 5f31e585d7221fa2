package depgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/lablink-dev/figgen/pkg/registry"
	"github.com/lablink-dev/figgen/pkg/registry/pypi"
)

// indexFetcher serves requires_dist lists from a fixed map and reports
// anything else as missing.
type indexFetcher map[string][]string

func (f indexFetcher) FetchPackage(_ context.Context, pkg string, _ bool) (*pypi.PackageInfo, error) {
	reqs, ok := f[pkg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrNotFound, pkg)
	}
	return &pypi.PackageInfo{Name: pkg, RequiresDist: reqs}, nil
}

type failFetcher struct{}

func (failFetcher) FetchPackage(context.Context, string, bool) (*pypi.PackageInfo, error) {
	return nil, fmt.Errorf("connection reset")
}

func testIndex() indexFetcher {
	return indexFetcher{
		"sleap":        {"numpy>=1.19", "attrs>=21.0", "scikit-image", "rich>=10 ; extra == 'dev'"},
		"numpy":        nil,
		"attrs":        nil,
		"scikit-image": {"numpy>=1.21"},
	}
}

func TestBuild(t *testing.T) {
	g, err := Build(context.Background(), testIndex(), "sleap", 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Root != "sleap" {
		t.Errorf("root = %q", g.Root)
	}

	wantNodes := []string{"attrs", "numpy", "scikit-image", "sleap"}
	if len(g.Nodes) != len(wantNodes) {
		t.Fatalf("nodes = %d, want %d", len(g.Nodes), len(wantNodes))
	}
	for i, want := range wantNodes {
		if g.Nodes[i].Name != want {
			t.Errorf("node[%d] = %q, want %q", i, g.Nodes[i].Name, want)
		}
	}

	wantEdges := []Edge{
		{"scikit-image", "numpy"},
		{"sleap", "attrs"},
		{"sleap", "numpy"},
		{"sleap", "scikit-image"},
	}
	if len(g.Edges) != len(wantEdges) {
		t.Fatalf("edges = %v", g.Edges)
	}
	for i, want := range wantEdges {
		if g.Edges[i] != want {
			t.Errorf("edge[%d] = %v, want %v", i, g.Edges[i], want)
		}
	}

	degrees := map[string]int{"attrs": 1, "numpy": 2, "scikit-image": 2, "sleap": 3}
	for _, n := range g.Nodes {
		if n.Degree != degrees[n.Name] {
			t.Errorf("%s degree = %d, want %d", n.Name, n.Degree, degrees[n.Name])
		}
		if n.Root != (n.Name == "sleap") {
			t.Errorf("%s root flag = %v", n.Name, n.Root)
		}
	}
}

func TestBuildSkipsMarkers(t *testing.T) {
	g, err := Build(context.Background(), testIndex(), "sleap", 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, n := range g.Nodes {
		if n.Name == "rich" {
			t.Fatal("marker-guarded dependency should be skipped")
		}
	}
}

func TestBuildMissingPackageBecomesLeaf(t *testing.T) {
	idx := indexFetcher{"sleap": {"ghostlib>=1.0"}}
	g, err := Build(context.Background(), idx, "sleap", 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("nodes = %v", g.Nodes)
	}
	if len(g.Edges) != 1 || g.Edges[0] != (Edge{"sleap", "ghostlib"}) {
		t.Fatalf("edges = %v", g.Edges)
	}
}

func TestBuildFetchErrorAborts(t *testing.T) {
	_, err := Build(context.Background(), failFetcher{}, "sleap", 0)
	if err == nil || !strings.Contains(err.Error(), "sleap") {
		t.Fatalf("err = %v, want resolve failure naming the package", err)
	}
}

func TestBuildMaxDepth(t *testing.T) {
	g, err := Build(context.Background(), testIndex(), "sleap", 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Nodes) != 1 || g.Nodes[0].Name != "sleap" {
		t.Fatalf("nodes = %v, want root only", g.Nodes)
	}
	if len(g.Edges) != 0 {
		t.Fatalf("edges = %v, want none at depth 1", g.Edges)
	}
}

func TestBuildCycle(t *testing.T) {
	idx := indexFetcher{"a": {"b"}, "b": {"a"}}
	g, err := Build(context.Background(), idx, "a", 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 2 {
		t.Fatalf("nodes = %v, edges = %v", g.Nodes, g.Edges)
	}
}

func TestCategorize(t *testing.T) {
	cases := map[string]string{
		"torch":         "ml",
		"torchvision":   "ml",
		"sleap-io":      "ml",
		"numpy":         "scientific",
		"scikit-image":  "scientific",
		"h5py":          "data",
		"opencv-python": "data",
		"seaborn":       "visualization",
		"attrs":         "utilities",
		"rich":          "utilities",
	}
	for pkg, want := range cases {
		if got := Categorize(pkg); got != want {
			t.Errorf("Categorize(%q) = %q, want %q", pkg, got, want)
		}
	}
}

func TestStats(t *testing.T) {
	g, err := Build(context.Background(), testIndex(), "sleap", 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := g.Stats()
	if s.Packages != 4 || s.Links != 4 || s.MaxDegree != 3 {
		t.Fatalf("stats = %+v", s)
	}
	if s.AvgDegree != 2.0 {
		t.Errorf("avg degree = %v, want 2.0", s.AvgDegree)
	}
}

func TestWriteJSON(t *testing.T) {
	g, err := Build(context.Background(), testIndex(), "sleap", 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var a, b bytes.Buffer
	if err := WriteJSON(&a, g); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if err := WriteJSON(&b, g); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("JSON output should be byte-stable")
	}

	var back Graph
	if err := json.Unmarshal(a.Bytes(), &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if back.Root != "sleap" || len(back.Nodes) != 4 || len(back.Edges) != 4 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestToDOT(t *testing.T) {
	g, err := Build(context.Background(), testIndex(), "sleap", 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dot := ToDOT(g, "paper")
	for _, want := range []string{
		`label="SLEAP Dependency Network\n4 packages, 4 dependency links"`,
		"fontsize=32",
		`"sleap" [label="sleap"`,
		"penwidth=3",
		`"numpy" [label=""`,
		`"#1f77b4"`,
		`"sleap" -> "numpy";`,
		`legend_0 [label="ml"`,
		`"#d62728"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("missing %q", want)
		}
	}

	poster := ToDOT(g, "poster")
	if !strings.Contains(poster, "fontsize=48") || !strings.Contains(poster, `color="#666666"`) {
		t.Error("poster preset should change fonts and edge color")
	}
}
