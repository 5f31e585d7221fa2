// Package collect implements the collection runs that gather package
// metadata from PyPI and conda-forge and write raw per-package JSON files
// for later processing.
//
// The batch contract is skip-and-continue: a failing package is logged and
// recorded, never fatal to the run. Failed packages still produce a raw
// file carrying the error, so a processing step can see what is missing.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lablink-dev/figgen/pkg/registry/feedstock"
	"github.com/lablink-dev/figgen/pkg/registry/pypi"
)

// Source names recorded in raw files and carried through to the CSVs.
const (
	SourcePyPI  = "pypi"
	SourceConda = "conda-forge"
)

// PyPIClient is the slice of the PyPI registry client the collectors use.
type PyPIClient interface {
	FetchPackage(ctx context.Context, pkg string, refresh bool) (*pypi.PackageInfo, error)
	FetchVersion(ctx context.Context, pkg, version string, refresh bool) (*pypi.VersionInfo, error)
}

// FeedstockClient is the slice of the feedstock client the dependency
// collector uses.
type FeedstockClient interface {
	ListTags(ctx context.Context, repo string, refresh bool) ([]feedstock.Tag, error)
	CommitDate(ctx context.Context, repo, sha string, refresh bool) (time.Time, error)
	FetchRecipe(ctx context.Context, repo, ref string, refresh bool) (string, error)
}

// Summary describes one finished collection run.
type Summary struct {
	Kind       string
	StartedAt  time.Time
	FinishedAt time.Time
	Packages   []PackageResult
}

// PackageResult is the outcome for a single package.
type PackageResult struct {
	Name     string
	Versions int
	Error    string
}

// Failed returns how many packages ended in an error.
func (s *Summary) Failed() int {
	n := 0
	for _, p := range s.Packages {
		if p.Error != "" {
			n++
		}
	}
	return n
}

// Collected returns the total number of versions gathered across packages.
func (s *Summary) Collected() int {
	n := 0
	for _, p := range s.Packages {
		n += p.Versions
	}
	return n
}

// writeRaw writes v as indented JSON at path, creating parent directories.
func writeRaw(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sampleVersions thins a version list to at most max entries by keeping
// every Nth element, preserving the first and the overall date range.
func sampleVersions(versions []string, max int) []string {
	if max <= 0 || len(versions) <= max {
		return versions
	}
	interval := len(versions) / max
	if interval < 1 {
		interval = 1
	}
	var out []string
	for i := 0; i < len(versions); i += interval {
		out = append(out, versions[i])
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}
