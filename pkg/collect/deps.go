package collect

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lablink-dev/figgen/pkg/dataset"
	"github.com/lablink-dev/figgen/pkg/registry/feedstock"
	"github.com/lablink-dev/figgen/pkg/registry/pypi"
)

// DependencyCollector tracks how the declared dependency count of a package
// evolved across its release history. PyPI and conda-forge are alternate
// sources for the same measurement; conda-forge feedstock tags cover the
// versions PyPI metadata misses.
type DependencyCollector struct {
	PyPI      PyPIClient
	Feedstock FeedstockClient

	// FeedstockOverrides maps a package to its feedstock name when that
	// differs from the package name.
	FeedstockOverrides map[string]string

	// MaxTags caps feedstock tags per package; longer tag lists are
	// sampled evenly. Zero means no cap.
	MaxTags int

	// Limit caps PyPI versions per package the same way. Zero means no cap.
	Limit int

	Logger *log.Logger
}

// NewDependencyCollector creates a collector over both sources. A nil
// logger uses the package default.
func NewDependencyCollector(pypiClient PyPIClient, feedstockClient FeedstockClient, logger *log.Logger) *DependencyCollector {
	if logger == nil {
		logger = log.Default()
	}
	return &DependencyCollector{
		PyPI:      pypiClient,
		Feedstock: feedstockClient,
		MaxTags:   50,
		Logger:    logger,
	}
}

// CollectPyPI walks a package's PyPI release history counting unique
// declared dependencies per version. Extras-only requirements are excluded
// from the count.
func (c *DependencyCollector) CollectPyPI(ctx context.Context, pkg string, refresh bool) (dataset.DepsRaw, error) {
	raw := dataset.DepsRaw{
		Package:        pkg,
		Source:         SourcePyPI,
		CollectionDate: time.Now().Format(time.RFC3339),
		Versions:       []dataset.DepsRawVersion{},
	}

	info, err := c.PyPI.FetchPackage(ctx, pkg, refresh)
	if err != nil {
		return raw, err
	}

	for _, version := range sampleVersions(info.SortedVersions(), c.Limit) {
		date := pypi.ReleaseDate(info.Releases[version])

		vi, err := c.PyPI.FetchVersion(ctx, pkg, version, refresh)
		if err != nil {
			c.Logger.Debug("skipping version", "package", pkg, "version", version, "err", err)
			continue
		}

		deps := uniqueDeps(vi.RequiresDist)

		var dateStr string
		if !date.IsZero() {
			dateStr = date.Format("2006-01-02T15:04:05")
		}

		raw.Versions = append(raw.Versions, dataset.DepsRawVersion{
			Version:           version,
			Date:              dateStr,
			TotalDependencies: len(deps),
			Dependencies:      deps,
		})
	}

	c.Logger.Info("collected package", "package", pkg, "source", SourcePyPI, "versions", len(raw.Versions))
	return raw, nil
}

// CollectFeedstock walks a package's conda-forge feedstock tags, parsing
// run requirements out of each tagged recipe. Tags whose recipe or commit
// cannot be fetched are skipped individually.
func (c *DependencyCollector) CollectFeedstock(ctx context.Context, pkg string, refresh bool) (dataset.DepsRaw, error) {
	repo := feedstock.RepoName(pkg, c.FeedstockOverrides)
	raw := dataset.DepsRaw{
		Package:        pkg,
		Source:         SourceConda,
		Feedstock:      repo,
		CollectionDate: time.Now().Format(time.RFC3339),
		Versions:       []dataset.DepsRawVersion{},
	}

	tags, err := c.Feedstock.ListTags(ctx, repo, refresh)
	if err != nil {
		return raw, err
	}
	sampled := feedstock.SampleTags(tags, c.MaxTags)
	c.Logger.Debug("sampled tags", "package", pkg, "total", len(tags), "sampled", len(sampled))

	for _, tag := range sampled {
		content, err := c.Feedstock.FetchRecipe(ctx, repo, tag.Commit.SHA, refresh)
		if err != nil {
			c.Logger.Debug("skipping tag", "package", pkg, "tag", tag.Name, "err", err)
			continue
		}
		recipe := feedstock.ParseRecipe(content)

		date, err := c.Feedstock.CommitDate(ctx, repo, tag.Commit.SHA, refresh)
		if err != nil {
			c.Logger.Debug("skipping tag", "package", pkg, "tag", tag.Name, "err", err)
			continue
		}

		deps := recipe.RunRequirements
		if deps == nil {
			deps = []string{}
		}

		raw.Versions = append(raw.Versions, dataset.DepsRawVersion{
			Version:           tag.Name,
			Date:              date.UTC().Format(time.RFC3339),
			CommitSHA:         tag.Commit.SHA,
			TotalDependencies: len(deps),
			Dependencies:      deps,
		})
	}

	c.Logger.Info("collected package", "package", pkg, "source", SourceConda, "versions", len(raw.Versions))
	return raw, nil
}

// Run collects all packages from one source, writing one raw JSON file
// each under outputDir. Like the GPU run, failures are per-package.
func (c *DependencyCollector) Run(ctx context.Context, packages []string, source, outputDir string, refresh bool) (*Summary, error) {
	sum := &Summary{Kind: "deps", StartedAt: time.Now()}

	for _, pkg := range packages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			raw  dataset.DepsRaw
			path string
			err  error
		)
		switch source {
		case SourceConda:
			raw, err = c.CollectFeedstock(ctx, pkg, refresh)
			path = dataset.DepsRawPathConda(outputDir, pkg)
		default:
			raw, err = c.CollectPyPI(ctx, pkg, refresh)
			path = dataset.DepsRawPathPyPI(outputDir, pkg)
		}

		result := PackageResult{Name: pkg, Versions: len(raw.Versions)}
		if err != nil {
			c.Logger.Warn("collection failed", "package", pkg, "err", err)
			raw.Error = err.Error()
			result.Error = err.Error()
		}

		if err := writeRaw(path, raw); err != nil {
			return nil, err
		}
		sum.Packages = append(sum.Packages, result)
	}

	sum.FinishedAt = time.Now()
	return sum, nil
}

// uniqueDeps extracts unique dependency names from requires_dist entries,
// skipping extras-only requirements, in first-seen order.
func uniqueDeps(requiresDist []string) []string {
	seen := make(map[string]bool)
	deps := []string{}
	for _, req := range requiresDist {
		if req == "" || strings.HasPrefix(req, "extra ==") {
			continue
		}
		name := pypi.DepName(req)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		deps = append(deps, name)
	}
	return deps
}
