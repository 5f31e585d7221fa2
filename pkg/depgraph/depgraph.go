// Package depgraph builds the transitive dependency network for a root
// package by walking PyPI requires_dist metadata breadth first. The
// resulting graph feeds the dependency network figure and a JSON export
// for inspection.
package depgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lablink-dev/figgen/pkg/registry"
	"github.com/lablink-dev/figgen/pkg/registry/pypi"
)

// Fetcher supplies package metadata for the walk. *pypi.Client
// satisfies it.
type Fetcher interface {
	FetchPackage(ctx context.Context, pkg string, refresh bool) (*pypi.PackageInfo, error)
}

// Node is one package in the network. Degree counts in plus out edges
// and drives node sizing and label visibility in the rendered figure.
type Node struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Degree   int    `json:"degree"`
	Root     bool   `json:"root,omitempty"`
}

// Edge records that From depends on To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a dependency network with nodes and edges in sorted order,
// so serialized forms are stable across runs.
type Graph struct {
	Root  string `json:"root"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Stats summarizes the network for figure titles and metadata.
type Stats struct {
	Packages  int
	Links     int
	MaxDegree int
	AvgDegree float64
}

func (g *Graph) Stats() Stats {
	s := Stats{Packages: len(g.Nodes), Links: len(g.Edges)}
	for _, n := range g.Nodes {
		if n.Degree > s.MaxDegree {
			s.MaxDegree = n.Degree
		}
	}
	if len(g.Nodes) > 0 {
		s.AvgDegree = float64(2*len(g.Edges)) / float64(len(g.Nodes))
	}
	return s
}

// categoryOrder fixes match precedence: ml keywords win over broader
// families, and categorization stays deterministic.
var categoryOrder = []string{"ml", "scientific", "data", "visualization", "utilities"}

var categories = map[string][]string{
	"ml":            {"torch", "pytorch", "tensorflow", "keras", "scikit-learn", "sklearn", "sleap", "sleap-nn", "sleap-io"},
	"scientific":    {"numpy", "scipy", "pandas", "sympy", "statsmodels", "scikit-image", "skimage"},
	"data":          {"pillow", "pil", "h5py", "opencv-python", "cv2", "imageio", "tifffile", "zarr"},
	"visualization": {"matplotlib", "seaborn", "plotly", "bokeh", "altair", "pyqtgraph"},
	"utilities":     {"packaging", "typing-extensions", "importlib-metadata", "setuptools", "wheel", "pip"},
}

// CategoryColors is the colorblind-friendly palette the network figure
// and its legend share.
var CategoryColors = map[string]string{
	"ml":            "#d62728",
	"scientific":    "#1f77b4",
	"data":          "#2ca02c",
	"visualization": "#9467bd",
	"utilities":     "#7f7f7f",
}

// Categorize assigns a package to its visual category, defaulting to
// utilities. Substring matching keeps torch variants and scikit forks
// in their families.
func Categorize(pkg string) string {
	p := strings.ToLower(pkg)
	for _, cat := range categoryOrder {
		for _, keyword := range categories[cat] {
			if strings.Contains(p, keyword) {
				return cat
			}
		}
	}
	return "utilities"
}

// Build walks the dependency tree breadth first from root, visiting
// each package once. maxDepth limits traversal depth, zero means
// unlimited. Packages missing from the registry become leaf nodes so a
// yanked dependency cannot sink the whole figure; other fetch failures
// abort the walk.
func Build(ctx context.Context, fetcher Fetcher, root string, maxDepth int) (*Graph, error) {
	root = registry.NormalizePkgName(root)

	type item struct {
		name  string
		depth int
	}
	adj := make(map[string][]string)
	visited := make(map[string]bool)
	queue := []item{{root, 0}}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if visited[it.name] {
			continue
		}
		if maxDepth > 0 && it.depth >= maxDepth {
			continue
		}
		visited[it.name] = true

		info, err := fetcher.FetchPackage(ctx, it.name, false)
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				adj[it.name] = nil
				continue
			}
			return nil, fmt.Errorf("resolve %s: %w", it.name, err)
		}

		var deps []string
		seen := make(map[string]bool)
		for _, req := range info.RequiresDist {
			// Environment markers cover platform-specific and extras
			// requirements; both stay out of the core network.
			if strings.Contains(req, ";") {
				continue
			}
			name := registry.NormalizePkgName(pypi.DepName(req))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			deps = append(deps, name)
			if !visited[name] {
				queue = append(queue, item{name, it.depth + 1})
			}
		}
		adj[it.name] = deps
	}

	return assemble(root, adj), nil
}

// assemble freezes the adjacency map into sorted nodes and edges.
// Edges only connect packages the walk actually visited, matching how
// a depth limit prunes the frontier.
func assemble(root string, adj map[string][]string) *Graph {
	names := make([]string, 0, len(adj))
	for name := range adj {
		names = append(names, name)
	}
	sort.Strings(names)

	degree := make(map[string]int)
	var edges []Edge
	for _, from := range names {
		for _, to := range adj[from] {
			if _, ok := adj[to]; !ok {
				continue
			}
			edges = append(edges, Edge{From: from, To: to})
			degree[from]++
			degree[to]++
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	nodes := make([]Node, len(names))
	for i, name := range names {
		nodes[i] = Node{
			Name:     name,
			Category: Categorize(name),
			Degree:   degree[name],
			Root:     name == root,
		}
	}
	return &Graph{Root: root, Nodes: nodes, Edges: edges}
}

// WriteJSON writes the graph as indented JSON. Output is byte-stable
// for a given graph.
func WriteJSON(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
