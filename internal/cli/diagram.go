package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lablink-dev/figgen/pkg/diagram"
	"github.com/lablink-dev/figgen/pkg/figure"
	"github.com/lablink-dev/figgen/pkg/render"
	"github.com/lablink-dev/figgen/pkg/terraform"
)

// diagramOpts holds the command-line flags for the diagram command.
type diagramOpts struct {
	terraformDir string
	typ          string
	format       string
	outputDir    string
	timestamped  bool
}

// diagramCommand creates the diagram command.
func (c *CLI) diagramCommand() *cobra.Command {
	var opts diagramOpts

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Generate architecture diagrams from Terraform configuration",
		Long: `Parse a Terraform directory and render the LabLink architecture
diagrams with Graphviz. The detailed diagram annotates nodes with the
counts and conditionals found in the configuration; the other types are
static topologies whose fonts scale with the preset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiagram(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.terraformDir, "terraform-dir", "", "Terraform directory to parse")
	cmd.Flags().StringVarP(&opts.typ, "type", "t", string(diagram.KindAll), "diagram type: main, detailed, network-flow, vm-provisioning, all")
	cmd.Flags().StringVarP(&opts.format, "format", "f", figure.Default().Name, "format preset: paper, poster, presentation")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", defaultFiguresDir, "directory for generated files")
	cmd.Flags().BoolVar(&opts.timestamped, "timestamped", false, "nest outputs under a run_<timestamp> directory")
	_ = cmd.MarkFlagRequired("terraform-dir")

	return cmd
}

func (c *CLI) runDiagram(ctx context.Context, opts *diagramOpts) error {
	kind, err := diagram.ParseKind(opts.typ)
	if err != nil {
		return err
	}
	preset, err := figure.ByName(opts.format)
	if err != nil {
		return err
	}

	cfg, err := terraform.ParseDirectory(opts.terraformDir)
	if err != nil {
		return err
	}
	c.Logger.Info("parsed terraform", "dir", opts.terraformDir, "resources", len(cfg.Resources))

	outDir := figure.RunDir(opts.outputDir, opts.timestamped, time.Now())
	prog := newProgress(c.Logger)
	written, err := generateDiagrams(withLogger(ctx, c.Logger), kind, cfg,
		plotOpts{preset: preset, outDir: outDir}, opts.terraformDir)
	if err != nil {
		return err
	}
	prog.done("Diagrams rendered")

	printSuccess("Generated %d diagram(s)", len(diagram.Expand(kind)))
	for _, f := range written {
		printFile(f)
	}
	return nil
}

// generateDiagrams renders every kind the requested type expands to,
// returning the written paths. sourceDir lands in each metadata sidecar.
func generateDiagrams(ctx context.Context, kind diagram.Kind, cfg *terraform.Config, o plotOpts, sourceDir string) ([]string, error) {
	logger := loggerFromContext(ctx)
	var written []string
	for _, k := range diagram.Expand(kind) {
		name := diagram.Name(k)
		dotSrc, err := diagram.DOT(k, cfg, o.preset.Name)
		if err != nil {
			return nil, err
		}
		svg, err := diagram.RenderSVG(dotSrc)
		if err != nil {
			return nil, err
		}
		files, err := render.WriteAll(o.outDir, figure.Stem(name, o.preset.Name), svg, o.preset.DPI)
		if err != nil {
			return nil, err
		}

		meta := figure.NewMetadata(name, o.preset, sourceDir)
		if o.runID != uuid.Nil {
			meta.RunID = o.runID
		}
		meta.Set("diagram_type", string(k))
		meta.Set("resources", strconv.Itoa(len(cfg.Resources)))
		mp := figure.MetadataPath(o.outDir, name, o.preset.Name)
		if err := meta.Export(mp); err != nil {
			return nil, err
		}

		written = append(written, files...)
		written = append(written, mp)
		logger.Info("diagram rendered", "type", string(k), "name", name)
	}
	return written, nil
}
