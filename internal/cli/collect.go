package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lablink-dev/figgen/pkg/archive"
	"github.com/lablink-dev/figgen/pkg/collect"
	"github.com/lablink-dev/figgen/pkg/config"
	"github.com/lablink-dev/figgen/pkg/errors"
	"github.com/lablink-dev/figgen/pkg/registry/feedstock"
	"github.com/lablink-dev/figgen/pkg/registry/pypi"
)

// collectOpts holds the flags shared by the collect subcommands.
type collectOpts struct {
	packages   string // comma-separated override of the configured list
	outputDir  string
	limit      int
	noCache    bool
	redisURL   string
	archiveURI string
}

// addCollectFlags registers the shared collection flags on cmd.
func addCollectFlags(cmd *cobra.Command, opts *collectOpts, defaultOut string) {
	cmd.Flags().StringVar(&opts.packages, "packages", "", "comma-separated package list (default: configured list)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", defaultOut, "directory for raw JSON files")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "cap versions per package, sampled evenly (0 = no cap)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the HTTP response cache")
	cmd.Flags().StringVar(&opts.redisURL, "cache-redis", "", "redis URL to use as the HTTP response cache")
	cmd.Flags().StringVar(&opts.archiveURI, "archive-uri", "", "MongoDB URI to archive the collection run")
}

// collectCommand creates the collect command group.
func (c *CLI) collectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect raw package metadata from registries",
	}

	cmd.AddCommand(c.collectGPUCommand())
	cmd.AddCommand(c.collectDepsCommand())

	return cmd
}

// collectGPUCommand creates the "collect gpu" subcommand.
func (c *CLI) collectGPUCommand() *cobra.Command {
	var opts collectOpts

	cmd := &cobra.Command{
		Use:   "gpu",
		Short: "Collect GPU package release metadata from PyPI",
		Long: `Fetch the release history of every configured GPU package from PyPI,
score each version's GPU reliance, and write one raw JSON file per
package for later processing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCollectGPU(cmd.Context(), &opts)
		},
	}

	addCollectFlags(cmd, &opts, rawGPUDir(defaultDataDir))

	return cmd
}

func (c *CLI) runCollectGPU(ctx context.Context, opts *collectOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	packages := cfg.Collection.GPUPackages
	if override := splitPackages(opts.packages); override != nil {
		packages = override
	}
	if err := validatePackages(packages); err != nil {
		return err
	}

	backend, err := newCache(ctx, opts.noCache, opts.redisURL)
	if err != nil {
		return err
	}
	defer backend.Close()

	collector := collect.NewGPUCollector(pypi.NewClient(backend, pypi.DefaultTTL), cfg.Scorer(), c.Logger)
	collector.Limit = opts.limit

	prog := newProgress(c.Logger)
	summary, err := collector.Run(ctx, packages, opts.outputDir, opts.noCache)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Collected %d packages", len(summary.Packages)))

	showSummary(summary, opts.outputDir, !opts.noCache)
	printNextStep("Next", "figgen process gpu")
	return c.archiveSummary(ctx, opts.archiveURI, summary)
}

// collectDepsCommand creates the "collect deps" subcommand.
func (c *CLI) collectDepsCommand() *cobra.Command {
	var opts collectOpts
	var source, token string

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Collect dependency counts from PyPI or conda-forge",
		Long: `Walk the release history of every configured package and record how
many runtime dependencies each version declares. The pypi source walks
the release index; the conda-forge source walks feedstock tags and
parses each tag's meta.yaml recipe (a GitHub token raises the API rate
limit, via --token, GITHUB_TOKEN, or a .env file).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCollectDeps(cmd.Context(), &opts, source, token)
		},
	}

	addCollectFlags(cmd, &opts, rawDepsDir(defaultDataDir))
	cmd.Flags().StringVar(&source, "source", collect.SourcePyPI, "registry to walk: pypi or conda-forge")
	cmd.Flags().StringVar(&token, "token", "", "GitHub API token for feedstock requests")

	return cmd
}

func (c *CLI) runCollectDeps(ctx context.Context, opts *collectOpts, source, token string) error {
	if source != collect.SourcePyPI && source != collect.SourceConda {
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown source %q, valid sources: %s, %s", source, collect.SourcePyPI, collect.SourceConda)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	packages := cfg.Collection.DependencyPackages
	if override := splitPackages(opts.packages); override != nil {
		packages = override
	}
	if err := validatePackages(packages); err != nil {
		return err
	}

	if token == "" {
		config.LoadEnv()
		token = config.GitHubToken()
	}
	if source == collect.SourceConda && token == "" {
		printWarning("No GitHub token configured, conda-forge collection may hit rate limits")
	}

	backend, err := newCache(ctx, opts.noCache, opts.redisURL)
	if err != nil {
		return err
	}
	defer backend.Close()

	collector := collect.NewDependencyCollector(
		pypi.NewClient(backend, pypi.DefaultTTL),
		feedstock.NewClient(backend, feedstock.DefaultTTL, token),
		c.Logger,
	)
	collector.FeedstockOverrides = cfg.Collection.FeedstockOverrides
	collector.MaxTags = cfg.Collection.MaxFeedstockTags
	collector.Limit = opts.limit

	prog := newProgress(c.Logger)
	summary, err := collector.Run(ctx, packages, source, opts.outputDir, opts.noCache)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Collected %d packages from %s", len(summary.Packages), source))

	showSummary(summary, opts.outputDir, !opts.noCache)
	printNextStep("Next", "figgen process deps")
	return c.archiveSummary(ctx, opts.archiveURI, summary)
}

// validatePackages rejects malformed package names before any fetch runs.
func validatePackages(names []string) error {
	for _, name := range names {
		if err := errors.ValidatePythonPackageName(name); err != nil {
			return err
		}
	}
	return nil
}

// showSummary prints the outcome of a collection run.
func showSummary(s *collect.Summary, outputDir string, cached bool) {
	printSuccess("Collected %d of %d packages", len(s.Packages)-s.Failed(), len(s.Packages))
	for _, p := range s.Packages {
		if p.Error != "" {
			printWarning("%s: %s", p.Name, p.Error)
		}
	}
	printStats(s.Collected(), s.Failed(), cached)
	printDetail("Output: %s", outputDir)
}

// archiveSummary stores the run in MongoDB when --archive-uri is set.
// Without the flag no connection is attempted.
func (c *CLI) archiveSummary(ctx context.Context, uri string, s *collect.Summary) error {
	if uri == "" {
		return nil
	}
	store, err := archive.Open(ctx, uri)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	run := archiveRun(s)
	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}
	printDetail("Archived run %s", run.ID)
	return nil
}

// archiveRun converts a collection summary into its archive document.
func archiveRun(s *collect.Summary) archive.Run {
	run := archive.Run{
		ID:         uuid.New(),
		Kind:       s.Kind,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
	for _, p := range s.Packages {
		run.Packages = append(run.Packages, archive.PackageResult{
			Name:     p.Name,
			Versions: p.Versions,
			Error:    p.Error,
		})
	}
	return run
}
