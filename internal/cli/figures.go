package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lablink-dev/figgen/pkg/chart"
	"github.com/lablink-dev/figgen/pkg/config"
	"github.com/lablink-dev/figgen/pkg/dataset"
	"github.com/lablink-dev/figgen/pkg/errors"
	"github.com/lablink-dev/figgen/pkg/figure"
	"github.com/lablink-dev/figgen/pkg/hardware"
	"github.com/lablink-dev/figgen/pkg/render"
)

// =============================================================================
// Figure Registry
// =============================================================================

// Figure names accepted by `figgen plot`.
const (
	figureReliance   = "reliance"
	figureComplexity = "complexity"
	figureOS         = "os"
	figureWorkshops  = "workshops"
	figureGPUCosts   = "gpu-costs"
)

// figureSpec describes one plottable figure for help text and the picker.
type figureSpec struct {
	name  string
	title string
}

var figureSpecs = []figureSpec{
	{figureReliance, "GPU package adoption across release history"},
	{figureComplexity, "Dependency count growth of ML packages"},
	{figureOS, "Operating system distribution of SLEAP users"},
	{figureWorkshops, "Workshop and deployment timeline"},
	{figureGPUCosts, "GPU price and performance trends"},
}

// figureNames returns the valid figure names in display order.
func figureNames() []string {
	names := make([]string, len(figureSpecs))
	for i, s := range figureSpecs {
		names[i] = s.name
	}
	return names
}

// =============================================================================
// Data Layout
// =============================================================================

// Raw and processed data nest under per-figure directories so collection
// runs for different figures never collide on file names.

func rawGPUDir(dataDir string) string {
	return filepath.Join(dataDir, "raw", "gpu_reliance")
}

func rawDepsDir(dataDir string) string {
	return filepath.Join(dataDir, "raw", "software_complexity")
}

func processedGPUDir(dataDir string) string {
	return filepath.Join(dataDir, "processed", "gpu_reliance")
}

func processedDepsDir(dataDir string) string {
	return filepath.Join(dataDir, "processed", "software_complexity")
}

// figureInput returns the default input file of a figure under dataDir.
func figureInput(name, dataDir string) string {
	switch name {
	case figureReliance:
		return filepath.Join(processedGPUDir(dataDir), dataset.GPUTimeseriesFile)
	case figureComplexity:
		return filepath.Join(processedDepsDir(dataDir), dataset.DependencyTimeseriesFile)
	case figureOS:
		return filepath.Join(dataDir, "processed", "os_distribution", "os_stats.csv")
	case figureWorkshops:
		return filepath.Join(dataDir, "processed", "deployment_impact", "workshops.csv")
	case figureGPUCosts:
		return filepath.Join(dataDir, "raw", "gpu_prices", "ml_hardware.csv")
	}
	return ""
}

// =============================================================================
// Figure Generation
// =============================================================================

// plotOpts carries everything one figure generation needs.
type plotOpts struct {
	cfg         *config.Config
	preset      figure.Preset
	input       string    // empty means the figure's default input
	outDir      string
	runID       uuid.UUID // uuid.Nil keeps each figure's own fresh ID
	performance bool      // add the performance panel to gpu-costs
}

// generateFigure renders one named figure as SVG, PNG, and PDF with a
// metadata sidecar, returning the written paths.
func generateFigure(ctx context.Context, name string, o plotOpts) ([]string, error) {
	switch name {
	case figureReliance:
		return plotReliance(ctx, o)
	case figureComplexity:
		return plotComplexity(ctx, o)
	case figureOS:
		return plotOS(ctx, o)
	case figureWorkshops:
		return plotWorkshops(ctx, o)
	case figureGPUCosts:
		return plotGPUCosts(ctx, o)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"unknown figure %q, valid figures: %s", name, strings.Join(figureNames(), ", "))
}

// plotReliance renders the GPU reliance scatter plus its per-category
// facet companion.
func plotReliance(ctx context.Context, o plotOpts) ([]string, error) {
	input := o.input
	if input == "" {
		input = figureInput(figureReliance, defaultDataDir)
	}
	records, err := dataset.ImportGPUCSV(input)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("plotting GPU reliance", "records", len(records), "input", input)

	extra := map[string]string{
		"packages": strconv.Itoa(distinct(records, func(r dataset.VersionRecord) string { return r.Package })),
	}
	files, err := writeChart(o, chart.TimeseriesName, input,
		chart.Timeseries(records, chart.WithPreset(o.preset)), extra)
	if err != nil {
		return nil, err
	}

	facets := chart.TimeseriesFacets(records, chartCategories(o.cfg.Charts.GPUCategories),
		chart.WithPreset(o.preset))
	more, err := writeChart(o, chart.TimeseriesFacetsName, input, facets, nil)
	if err != nil {
		return nil, err
	}
	return append(files, more...), nil
}

// plotComplexity renders the dependency growth lines plus the
// per-category facet companion.
func plotComplexity(ctx context.Context, o plotOpts) ([]string, error) {
	input := o.input
	if input == "" {
		input = figureInput(figureComplexity, defaultDataDir)
	}
	records, err := dataset.ImportDependencyCSV(input)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("plotting software complexity", "records", len(records), "input", input)

	extra := map[string]string{
		"packages": strconv.Itoa(distinct(records, func(r dataset.DependencyRecord) string { return r.Package })),
	}
	files, err := writeChart(o, chart.ComplexityName, input,
		chart.Complexity(records, chart.WithPreset(o.preset)), extra)
	if err != nil {
		return nil, err
	}

	facets := chart.ComplexityFacets(records, chartCategories(o.cfg.Charts.DependencyCategories),
		chart.WithPreset(o.preset))
	more, err := writeChart(o, chart.ComplexityFacetsName, input, facets, nil)
	if err != nil {
		return nil, err
	}
	return append(files, more...), nil
}

// plotOS renders the operating system distribution pie.
func plotOS(ctx context.Context, o plotOpts) ([]string, error) {
	input := o.input
	if input == "" {
		input = figureInput(figureOS, defaultDataDir)
	}
	shares, err := dataset.ImportOSCSV(input)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("plotting OS distribution", "systems", len(shares), "input", input)

	svg := chart.Pie(shares, chart.WithPreset(o.preset))
	return writeChart(o, chart.PieName, input, svg, map[string]string{
		"systems": strconv.Itoa(len(shares)),
	})
}

// plotWorkshops renders the deployment impact timeline.
func plotWorkshops(ctx context.Context, o plotOpts) ([]string, error) {
	input := o.input
	if input == "" {
		input = figureInput(figureWorkshops, defaultDataDir)
	}
	workshops, err := dataset.ImportWorkshopCSV(input)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("plotting deployment impact", "workshops", len(workshops), "input", input)

	svg := chart.Timeline(workshops, chart.WithPreset(o.preset))
	return writeChart(o, chart.TimelineName, input, svg, map[string]string{
		"workshops": strconv.Itoa(len(workshops)),
	})
}

// plotGPUCosts renders the hardware cost trend. Its sidecar carries
// dataset statistics instead of the generic figure metadata.
func plotGPUCosts(ctx context.Context, o plotOpts) ([]string, error) {
	input := o.input
	if input == "" {
		input = figureInput(figureGPUCosts, defaultDataDir)
	}
	logger := loggerFromContext(ctx)
	gpus, err := hardware.Load(input)
	if err != nil {
		return nil, err
	}
	gpus = hardware.Filter(gpus)
	warnings, err := hardware.Validate(gpus)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}
	logger.Info("plotting GPU cost trends", "gpus", len(gpus), "input", input)

	opts := []chart.Option{chart.WithPreset(o.preset)}
	if o.performance {
		opts = append(opts, chart.WithPerformancePanel())
	}
	svg := chart.CostTrend(gpus, opts...)
	files, err := render.WriteAll(o.outDir, figure.Stem(chart.CostTrendName, o.preset.Name), svg, o.preset.DPI)
	if err != nil {
		return nil, err
	}
	mp := figure.MetadataPath(o.outDir, chart.CostTrendName, o.preset.Name)
	if err := hardware.ExportMetadata(mp, hardware.ComputeStats(gpus), o.preset.Name, time.Now()); err != nil {
		return nil, err
	}
	return append(files, mp), nil
}

// writeChart writes a rendered chart with its metadata sidecar and
// returns the written paths.
func writeChart(o plotOpts, name, source string, svg []byte, extra map[string]string) ([]string, error) {
	files, err := render.WriteAll(o.outDir, figure.Stem(name, o.preset.Name), svg, o.preset.DPI)
	if err != nil {
		return nil, err
	}
	meta := figure.NewMetadata(name, o.preset, source)
	if o.runID != uuid.Nil {
		meta.RunID = o.runID
	}
	for k, v := range extra {
		meta.Set(k, v)
	}
	mp := figure.MetadataPath(o.outDir, name, o.preset.Name)
	if err := meta.Export(mp); err != nil {
		return nil, err
	}
	return append(files, mp), nil
}

// chartCategories converts configured category groupings into the chart
// package's type.
func chartCategories(cs []config.Category) []chart.Category {
	out := make([]chart.Category, len(cs))
	for i, c := range cs {
		out[i] = chart.Category{Name: c.Name, Packages: c.Packages}
	}
	return out
}

// distinct counts the unique keys across records.
func distinct[T any](records []T, key func(T) string) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[key(r)] = struct{}{}
	}
	return len(seen)
}
