package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lablink-dev/figgen/pkg/depgraph"
	"github.com/lablink-dev/figgen/pkg/diagram"
	"github.com/lablink-dev/figgen/pkg/errors"
	"github.com/lablink-dev/figgen/pkg/figure"
	"github.com/lablink-dev/figgen/pkg/registry/pypi"
	"github.com/lablink-dev/figgen/pkg/render"
)

// depgraphOpts holds the command-line flags for the depgraph command.
type depgraphOpts struct {
	depth     int
	format    string
	outputDir string
	jsonPath  string
	noCache   bool
	redisURL  string
}

// depgraphCommand creates the depgraph command.
func (c *CLI) depgraphCommand() *cobra.Command {
	var opts depgraphOpts

	cmd := &cobra.Command{
		Use:   "depgraph PACKAGE",
		Short: "Render the dependency network of a PyPI package",
		Long: `Walk the requires_dist entries of a PyPI package breadth-first and
render the resulting network as a Graphviz figure. Nodes are sized by
degree and only hub packages are labeled; packages the index does not
know become leaf nodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDepgraph(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 2, "maximum walk depth from the root package")
	cmd.Flags().StringVarP(&opts.format, "format", "f", figure.Default().Name, "format preset: paper, poster, presentation")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", defaultFiguresDir, "directory for generated files")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "also write the graph as JSON to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the HTTP response cache")
	cmd.Flags().StringVar(&opts.redisURL, "cache-redis", "", "redis URL to use as the HTTP response cache")

	return cmd
}

func (c *CLI) runDepgraph(ctx context.Context, pkg string, opts *depgraphOpts) error {
	if err := errors.ValidatePythonPackageName(pkg); err != nil {
		return err
	}
	preset, err := figure.ByName(opts.format)
	if err != nil {
		return err
	}

	backend, err := newCache(ctx, opts.noCache, opts.redisURL)
	if err != nil {
		return err
	}
	defer backend.Close()

	sp := newSpinnerWithContext(ctx, fmt.Sprintf("Walking %s dependencies (depth %d)", pkg, opts.depth))
	sp.Start()
	g, err := depgraph.Build(ctx, pypi.NewClient(backend, pypi.DefaultTTL), pkg, opts.depth)
	if err != nil {
		sp.Stop()
		return err
	}
	stats := g.Stats()
	sp.StopWithSuccess(fmt.Sprintf("Resolved %d packages with %d links", stats.Packages, stats.Links))
	printStatsLine(stats)

	if opts.jsonPath != "" {
		if err := writeGraphJSON(opts.jsonPath, g); err != nil {
			return err
		}
		printFile(opts.jsonPath)
	}

	svg, err := diagram.RenderSVG(depgraph.ToDOT(g, preset.Name))
	if err != nil {
		return err
	}
	name := pkg + "_dependency_graph"
	files, err := render.WriteAll(opts.outputDir, figure.Stem(name, preset.Name), svg, preset.DPI)
	if err != nil {
		return err
	}

	meta := figure.NewMetadata(name, preset, "pypi:"+pkg)
	meta.Set("depth", strconv.Itoa(opts.depth))
	meta.Set("packages", strconv.Itoa(stats.Packages))
	meta.Set("links", strconv.Itoa(stats.Links))
	mp := figure.MetadataPath(opts.outputDir, name, preset.Name)
	if err := meta.Export(mp); err != nil {
		return err
	}

	for _, f := range files {
		printFile(f)
	}
	printFile(mp)
	return nil
}

// printStatsLine shows the network shape underneath the success line.
func printStatsLine(s depgraph.Stats) {
	printDetail("max degree %d · avg degree %.1f", s.MaxDegree, s.AvgDegree)
}

// writeGraphJSON writes the graph's JSON form to path.
func writeGraphJSON(path string, g *depgraph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := depgraph.WriteJSON(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
