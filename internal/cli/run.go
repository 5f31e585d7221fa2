package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lablink-dev/figgen/pkg/config"
	"github.com/lablink-dev/figgen/pkg/diagram"
	"github.com/lablink-dev/figgen/pkg/figure"
	"github.com/lablink-dev/figgen/pkg/pipeline"
	"github.com/lablink-dev/figgen/pkg/process"
	"github.com/lablink-dev/figgen/pkg/terraform"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	dataDir      string
	outputDir    string
	terraformDir string
	format       string
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process data and render every figure in one run",
		Long: `Execute the full pipeline: process raw data into CSVs, render every
figure whose input data is present, and generate the architecture
diagrams when a Terraform directory is supplied. Outputs nest under a
run_<timestamp> directory and every figure's metadata records the
shared run ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPipeline(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataDir, "data-dir", defaultDataDir, "repository data directory")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", defaultFiguresDir, "base directory for run outputs")
	cmd.Flags().StringVar(&opts.terraformDir, "terraform-dir", "", "Terraform directory for the diagrams stage")
	cmd.Flags().StringVarP(&opts.format, "format", "f", figure.Default().Name, "format preset: paper, poster, presentation")

	return cmd
}

func (c *CLI) runPipeline(ctx context.Context, opts *runOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	preset, err := figure.ByName(opts.format)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(c.Logger)
	runDir := figure.RunDir(opts.outputDir, true, time.Now())

	var written []string
	stages := c.assembleStages(cfg, preset, opts, runner.RunID, runDir, &written)

	runner.Hooks = pipeline.Hooks{
		OnStageStart: func(name string) {
			printInfo("Stage %s", name)
		},
		OnStageDone: func(name string, d time.Duration) {
			printSuccess("Stage %s done (%s)", name, d.Round(time.Millisecond))
		},
		OnStageError: func(name string, err error) {
			printError("Stage %s failed: %v", name, err)
		},
	}

	if err := runner.Run(ctx, stages); err != nil {
		return err
	}

	printNewline()
	printSuccess("Run complete, %d files", len(written))
	printKeyValue("Run ID", StyleNumber.Render(runner.RunID.String()))
	printKeyValue("Output", runDir)
	for _, f := range written {
		printFile(f)
	}
	printNextStep("Browse the figures", "figgen serve --dir "+runDir)
	return nil
}

// assembleStages builds the stage list for one pipeline run. Stages
// append their outputs to written as they execute.
func (c *CLI) assembleStages(cfg *config.Config, preset figure.Preset, opts *runOpts, runID uuid.UUID, runDir string, written *[]string) []pipeline.Stage {
	stages := []pipeline.Stage{
		{Name: "process", Run: func(ctx context.Context) error {
			return c.processStage(cfg, opts.dataDir)
		}},
		{Name: "plots", Run: func(ctx context.Context) error {
			return c.plotsStage(ctx, cfg, preset, opts.dataDir, runDir, runID, written)
		}},
	}
	if opts.terraformDir != "" {
		stages = append(stages, pipeline.Stage{Name: "diagrams", Run: func(ctx context.Context) error {
			return c.diagramsStage(ctx, preset, opts.terraformDir, runDir, runID, written)
		}})
	}
	return stages
}

// processStage rebuilds the processed CSVs from whatever raw data is
// present. A missing raw directory skips that processor so plots can
// still run from previously processed CSVs.
func (c *CLI) processStage(cfg *config.Config, dataDir string) error {
	ran := false
	if dirExists(rawGPUDir(dataDir)) {
		proc := process.NewGPUProcessor(cfg.Processing.MinDataPoints, cfg.Processing.Variants, c.Logger)
		if _, err := proc.Run(rawGPUDir(dataDir), processedGPUDir(dataDir)); err != nil {
			return err
		}
		ran = true
	} else {
		c.Logger.Warn("no raw GPU data, skipping", "dir", rawGPUDir(dataDir))
	}
	if dirExists(rawDepsDir(dataDir)) {
		proc := process.NewDependencyProcessor(cfg.Processing.MinDataPoints, c.Logger)
		if _, err := proc.Run(rawDepsDir(dataDir), processedDepsDir(dataDir)); err != nil {
			return err
		}
		ran = true
	} else {
		c.Logger.Warn("no raw dependency data, skipping", "dir", rawDepsDir(dataDir))
	}
	if !ran {
		c.Logger.Warn("no raw data found, plotting from existing CSVs")
	}
	return nil
}

// plotsStage renders every figure whose input file exists.
func (c *CLI) plotsStage(ctx context.Context, cfg *config.Config, preset figure.Preset, dataDir, runDir string, runID uuid.UUID, written *[]string) error {
	ctx = withLogger(ctx, c.Logger)
	for _, name := range figureNames() {
		input := figureInput(name, dataDir)
		if _, err := os.Stat(input); os.IsNotExist(err) {
			c.Logger.Warn("skipping figure, input missing", "figure", name, "input", input)
			continue
		}
		files, err := generateFigure(ctx, name, plotOpts{
			cfg:    cfg,
			preset: preset,
			input:  input,
			outDir: runDir,
			runID:  runID,
		})
		if err != nil {
			return fmt.Errorf("figure %s: %w", name, err)
		}
		*written = append(*written, files...)
	}
	return nil
}

// diagramsStage renders the full diagram set from the Terraform dir.
func (c *CLI) diagramsStage(ctx context.Context, preset figure.Preset, terraformDir, runDir string, runID uuid.UUID, written *[]string) error {
	cfg, err := terraform.ParseDirectory(terraformDir)
	if err != nil {
		return err
	}
	files, err := generateDiagrams(withLogger(ctx, c.Logger), diagram.KindAll, cfg,
		plotOpts{preset: preset, outDir: runDir, runID: runID}, terraformDir)
	if err != nil {
		return err
	}
	*written = append(*written, files...)
	return nil
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
