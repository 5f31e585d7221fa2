package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lablink-dev/figgen/pkg/errors"
	"github.com/lablink-dev/figgen/pkg/figure"
)

// plotFlags holds the command-line flags for the plot command.
type plotFlags struct {
	input       string // input CSV override
	format      string // preset name
	outputDir   string
	timestamped bool // nest outputs under run_<timestamp>
	performance bool // performance panel on gpu-costs
}

// plotCommand creates the plot command.
func (c *CLI) plotCommand() *cobra.Command {
	var opts plotFlags

	cmd := &cobra.Command{
		Use:       "plot [figure]",
		Short:     "Render a publication figure from processed data",
		Long:      plotLong(),
		ValidArgs: figureNames(),
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.runPlot(cmd.Context(), name, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "input CSV (default: the figure's processed data file)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", figure.Default().Name, "format preset: paper, poster, presentation")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", defaultFiguresDir, "directory for generated files")
	cmd.Flags().BoolVar(&opts.timestamped, "timestamped", false, "nest outputs under a run_<timestamp> directory")
	cmd.Flags().BoolVar(&opts.performance, "performance", false, "add the performance panel to gpu-costs")

	return cmd
}

// plotLong builds the plot command's long help from the figure registry.
func plotLong() string {
	var b strings.Builder
	b.WriteString("Render one of the paper's figures from its processed data file.\n\nFigures:\n")
	for _, s := range figureSpecs {
		fmt.Fprintf(&b, "  %-12s %s\n", s.name, s.title)
	}
	b.WriteString("\nWithout a figure argument an interactive picker opens on a terminal.")
	return b.String()
}

func (c *CLI) runPlot(ctx context.Context, name string, opts *plotFlags) error {
	if name == "" {
		if !stdoutIsTerminal() {
			return errors.New(errors.ErrCodeInvalidInput,
				"no figure named, valid figures: %s", strings.Join(figureNames(), ", "))
		}
		picked, err := pickFigure()
		if err != nil {
			return err
		}
		if picked == "" {
			printInfo("No figure selected")
			return nil
		}
		name = picked
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	preset, err := figure.ByName(opts.format)
	if err != nil {
		return err
	}
	outDir := figure.RunDir(opts.outputDir, opts.timestamped, time.Now())

	prog := newProgress(c.Logger)
	files, err := generateFigure(withLogger(ctx, c.Logger), name, plotOpts{
		cfg:         cfg,
		preset:      preset,
		input:       opts.input,
		outDir:      outDir,
		performance: opts.performance,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %s", name))

	printSuccess("Figure %s ready (%s)", StyleHighlight.Render(name), preset.SizeLabel())
	for _, f := range files {
		printFile(f)
	}
	return nil
}

// stdoutIsTerminal reports whether stdout is attached to a terminal, so
// bare `figgen plot` only opens the picker interactively.
func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
