package collect

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lablink-dev/figgen/pkg/dataset"
	"github.com/lablink-dev/figgen/pkg/gpuscore"
	"github.com/lablink-dev/figgen/pkg/registry/pypi"
)

// GPUCollector walks the PyPI release history of GPU-relevant packages and
// scores every version for GPU reliance.
type GPUCollector struct {
	Client PyPIClient
	Scorer *gpuscore.Scorer

	// Limit caps versions per package; longer histories are sampled evenly
	// so the date range survives. Zero means no cap.
	Limit int

	Logger *log.Logger
}

// NewGPUCollector creates a collector. A nil scorer uses the default
// keyword lists, a nil logger uses the package default.
func NewGPUCollector(client PyPIClient, scorer *gpuscore.Scorer, logger *log.Logger) *GPUCollector {
	if scorer == nil {
		scorer = gpuscore.NewScorer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &GPUCollector{Client: client, Scorer: scorer, Logger: logger}
}

// CollectPackage fetches and scores every release of one package. Versions
// whose per-version metadata cannot be fetched are skipped individually.
func (c *GPUCollector) CollectPackage(ctx context.Context, pkg string, refresh bool) (dataset.GPURaw, error) {
	raw := dataset.GPURaw{
		Package:        pkg,
		Source:         SourcePyPI,
		CollectionDate: time.Now().Format(time.RFC3339),
		Versions:       []dataset.GPURawVersion{},
	}

	info, err := c.Client.FetchPackage(ctx, pkg, refresh)
	if err != nil {
		return raw, err
	}

	for _, version := range sampleVersions(info.SortedVersions(), c.Limit) {
		date := pypi.ReleaseDate(info.Releases[version])

		vi, err := c.Client.FetchVersion(ctx, pkg, version, refresh)
		if err != nil {
			c.Logger.Debug("skipping version", "package", pkg, "version", version, "err", err)
			continue
		}

		res := c.Scorer.Score(pkg, version, vi.RequiresDist)
		deps := res.GPUDeps
		if deps == nil {
			deps = []string{}
		}

		var dateStr string
		if !date.IsZero() {
			dateStr = date.Format("2006-01-02T15:04:05")
		}

		raw.Versions = append(raw.Versions, dataset.GPURawVersion{
			Version:              version,
			Date:                 dateStr,
			GPUScore:             res.Score,
			CUDAVersion:          res.CUDAVersion,
			GPUDependencies:      deps,
			GPUDepsCount:         len(deps),
			RequiresExternalCUDA: res.RequiresExternalCUDA,
		})
	}

	c.Logger.Info("collected package", "package", pkg, "versions", len(raw.Versions))
	return raw, nil
}

// Run collects all packages, writing one raw JSON file each under
// outputDir. A failing package is recorded in its raw file and in the
// summary, then the batch continues.
func (c *GPUCollector) Run(ctx context.Context, packages []string, outputDir string, refresh bool) (*Summary, error) {
	sum := &Summary{Kind: "gpu", StartedAt: time.Now()}

	for _, pkg := range packages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := c.CollectPackage(ctx, pkg, refresh)
		result := PackageResult{Name: pkg, Versions: len(raw.Versions)}
		if err != nil {
			c.Logger.Warn("collection failed", "package", pkg, "err", err)
			raw.Error = err.Error()
			result.Error = err.Error()
		}

		if err := writeRaw(dataset.GPURawPath(outputDir, pkg), raw); err != nil {
			return nil, err
		}
		sum.Packages = append(sum.Packages, result)
	}

	sum.FinishedAt = time.Now()
	return sum, nil
}
