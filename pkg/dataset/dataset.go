// Package dataset defines the fixed data schemas shared by the collectors,
// processors, and plotters: the raw per-package JSON the collectors write,
// the cleaned time-series CSVs the processors produce, and the hand-entered
// reference CSVs the plotters read.
//
// All CSV writers sort rows before writing so re-running a processor on
// unchanged input produces byte-identical output.
package dataset

import (
	"fmt"
	"path/filepath"
	"time"
)

// DateFormat is how dates serialize in the processed CSVs.
const DateFormat = "2006-01-02"

// Raw output directories under the collector's --output-dir.
const (
	PyPIMetadataDir       = "pypi_metadata"
	CondaForgeMetadataDir = "conda_forge_metadata"
)

// Processed output file names under the processor's --output-dir.
const (
	GPUTimeseriesFile        = "gpu_timeseries.csv"
	DependencyTimeseriesFile = "dependency_timeseries.csv"
	QualityReportFile        = "quality_report.txt"
	AttributionFile          = "source_attribution.csv"
)

// VersionRecord is one row of gpu_timeseries.csv.
type VersionRecord struct {
	Package              string
	Version              string
	Date                 time.Time
	GPUScore             int
	CUDAVersion          string // Empty when no CUDA requirement was declared
	GPUDepsCount         int
	RequiresExternalCUDA bool
	Source               string
}

// DependencyRecord is one row of dependency_timeseries.csv.
type DependencyRecord struct {
	Package   string
	Date      time.Time
	Version   string
	TotalDeps int
	Source    string
}

// SourceCount is one row of source_attribution.csv.
type SourceCount struct {
	Package string
	Source  string
	Count   int
}

// OSShare is one row of the hand-entered OS distribution reference CSV.
type OSShare struct {
	Name    string
	Percent float64
}

// Workshop is one row of the hand-entered workshop reference CSV.
type Workshop struct {
	Date         time.Time
	EventName    string
	Location     string
	Participants int
	Audience     string
}

// GPURaw is the raw JSON a GPU collection run writes, one file per package.
type GPURaw struct {
	Package        string          `json:"package"`
	Source         string          `json:"source"`
	CollectionDate string          `json:"collection_date"`
	Error          string          `json:"error,omitempty"`
	Versions       []GPURawVersion `json:"versions"`
}

// GPURawVersion is one collected version entry with its GPU classification.
type GPURawVersion struct {
	Version              string   `json:"version"`
	Date                 string   `json:"date"`
	GPUScore             int      `json:"gpu_score"`
	CUDAVersion          string   `json:"cuda_version,omitempty"`
	GPUDependencies      []string `json:"gpu_dependencies"`
	GPUDepsCount         int      `json:"gpu_deps_count"`
	RequiresExternalCUDA bool     `json:"requires_external_cuda"`
}

// DepsRaw is the raw JSON a dependency collection run writes.
type DepsRaw struct {
	Package        string           `json:"package"`
	Source         string           `json:"source"`
	Feedstock      string           `json:"feedstock,omitempty"`
	CollectionDate string           `json:"collection_date"`
	Error          string           `json:"error,omitempty"`
	Versions       []DepsRawVersion `json:"versions"`
}

// DepsRawVersion is one collected version entry with its dependency count.
type DepsRawVersion struct {
	Version           string   `json:"version"`
	Date              string   `json:"date"`
	CommitSHA         string   `json:"commit_sha,omitempty"`
	TotalDependencies int      `json:"total_dependencies"`
	Dependencies      []string `json:"dependencies"`
}

// GPURawPath returns where a package's raw GPU JSON lives.
func GPURawPath(outputDir, pkg string) string {
	return filepath.Join(outputDir, PyPIMetadataDir, pkg+"_versions.json")
}

// DepsRawPathPyPI returns where a package's raw PyPI dependency JSON lives.
func DepsRawPathPyPI(outputDir, pkg string) string {
	return filepath.Join(outputDir, PyPIMetadataDir, pkg+"_versions.json")
}

// DepsRawPathConda returns where a package's raw conda-forge JSON lives.
func DepsRawPathConda(outputDir, pkg string) string {
	return filepath.Join(outputDir, CondaForgeMetadataDir, pkg+"_meta.json")
}

// ParseDate parses the date formats raw data carries: bare PyPI upload
// times, RFC 3339 commit dates, and plain dates.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339, DateFormat} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}
