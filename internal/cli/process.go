package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lablink-dev/figgen/pkg/process"
)

// processOpts holds the flags shared by the process subcommands.
type processOpts struct {
	inputDir  string
	outputDir string
	minPoints int
}

// addProcessFlags registers the shared processing flags on cmd.
func addProcessFlags(cmd *cobra.Command, opts *processOpts, defaultIn, defaultOut string) {
	cmd.Flags().StringVar(&opts.inputDir, "input-dir", defaultIn, "directory holding raw JSON files")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", defaultOut, "directory for processed CSVs")
	cmd.Flags().IntVar(&opts.minPoints, "min-points", 0, "minimum data points per package (0 = configured value)")
}

// processCommand creates the process command group.
func (c *CLI) processCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Turn raw metadata into analysis-ready CSVs",
	}

	cmd.AddCommand(c.processGPUCommand())
	cmd.AddCommand(c.processDepsCommand())

	return cmd
}

// processGPUCommand creates the "process gpu" subcommand.
func (c *CLI) processGPUCommand() *cobra.Command {
	var opts processOpts

	cmd := &cobra.Command{
		Use:   "gpu",
		Short: "Build the GPU reliance timeseries from raw PyPI data",
		Long: `Flatten the raw per-package JSON into a scored timeseries CSV.
Variant packages (cupy-cuda112 and friends) aggregate under their base
name, versions without a parseable date are dropped, and packages with
fewer than --min-points records are excluded and reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProcessGPU(&opts)
		},
	}

	addProcessFlags(cmd, &opts, rawGPUDir(defaultDataDir), processedGPUDir(defaultDataDir))

	return cmd
}

func (c *CLI) runProcessGPU(opts *processOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	minPoints := opts.minPoints
	if minPoints <= 0 {
		minPoints = cfg.Processing.MinDataPoints
	}

	prog := newProgress(c.Logger)
	proc := process.NewGPUProcessor(minPoints, cfg.Processing.Variants, c.Logger)
	res, err := proc.Run(opts.inputDir, opts.outputDir)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Processed %d records", res.Records))

	showResult(res)
	printNextStep("Next", "figgen plot reliance")
	return nil
}

// processDepsCommand creates the "process deps" subcommand.
func (c *CLI) processDepsCommand() *cobra.Command {
	var opts processOpts

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Build the dependency count timeseries from raw data",
		Long: `Flatten raw PyPI and conda-forge JSON into a dependency count CSV.
When both sources carry the same package version the conda-forge record
wins. Packages with fewer than --min-points records per source are
excluded and reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProcessDeps(&opts)
		},
	}

	addProcessFlags(cmd, &opts, rawDepsDir(defaultDataDir), processedDepsDir(defaultDataDir))

	return cmd
}

func (c *CLI) runProcessDeps(opts *processOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	minPoints := opts.minPoints
	if minPoints <= 0 {
		minPoints = cfg.Processing.MinDataPoints
	}

	prog := newProgress(c.Logger)
	proc := process.NewDependencyProcessor(minPoints, c.Logger)
	res, err := proc.Run(opts.inputDir, opts.outputDir)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Processed %d records", res.Records))

	showResult(res)
	printNextStep("Next", "figgen plot complexity")
	return nil
}

// showResult prints a processing result with its quality table.
func showResult(res *process.Result) {
	printSuccess("Processed %d records from %d packages", res.Records, res.Packages)
	if excluded := res.Quality.Excluded(); len(excluded) > 0 {
		printWarning("%d package(s) excluded, see quality report", len(excluded))
	}
	fmt.Println(qualityTable(res.Quality.Entries))
	printFile(res.TimeseriesPath)
	printFile(res.ReportPath)
	printFile(res.AttributionPath)
}
