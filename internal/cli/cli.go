// Package cli implements the figgen command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lablink-dev/figgen/pkg/buildinfo"
	"github.com/lablink-dev/figgen/pkg/cache"
	"github.com/lablink-dev/figgen/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "figgen"

	// defaultDataDir and defaultFiguresDir anchor the data layout the
	// commands assume when no explicit paths are given.
	defaultDataDir    = "data"
	defaultFiguresDir = "figures"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "figgen",
		Short:        "Figgen generates the figures for the LabLink paper",
		Long:         `Figgen collects package metadata from PyPI and conda-forge, processes it into analysis-ready CSVs, and renders the charts and architecture diagrams of the LabLink paper as publication-quality SVG, PNG, and PDF files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to figgen.toml (default: ./figgen.toml when present)")

	// Register all subcommands
	root.AddCommand(c.collectCommand())
	root.AddCommand(c.processCommand())
	root.AddCommand(c.plotCommand())
	root.AddCommand(c.diagramCommand())
	root.AddCommand(c.depgraphCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration the root --config flag points at.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache picks the HTTP response cache backend for one command
// invocation. --no-cache disables caching entirely, --cache-redis selects
// Redis, and the default is a file cache under cacheDir.
func newCache(ctx context.Context, noCache bool, redisURL string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		return cache.NewRedisCache(ctx, redisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/figgen/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// splitPackages parses a comma-separated --packages value. Empty input
// yields nil so callers can fall back to the configured package list.
func splitPackages(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
