package process

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lablink-dev/figgen/pkg/dataset"
	"github.com/lablink-dev/figgen/pkg/errors"
)

const depsReportTitle = "Data Quality Report"

// DependencyProcessor turns raw dependency collection files into the
// cleaned dependency_timeseries.csv dataset. Conda-forge files load
// before PyPI files, so when both sources carry the same
// (package, version) the conda-forge record survives the dedup.
type DependencyProcessor struct {
	// MinPoints is the minimum number of records a package needs to stay
	// in the dataset.
	MinPoints int

	Logger *log.Logger
}

// NewDependencyProcessor creates a processor. A nil logger uses the
// package default.
func NewDependencyProcessor(minPoints int, logger *log.Logger) *DependencyProcessor {
	if logger == nil {
		logger = log.Default()
	}
	return &DependencyProcessor{MinPoints: minPoints, Logger: logger}
}

// LoadRaw reads raw JSON files from rawDir, conda_forge_metadata first
// and then pypi_metadata. Files that cannot be read or parsed are logged
// and skipped.
func (p *DependencyProcessor) LoadRaw(rawDir string) []dataset.DepsRaw {
	var raw []dataset.DepsRaw
	for _, sub := range []string{dataset.CondaForgeMetadataDir, dataset.PyPIMetadataDir} {
		raw = append(raw, readRawDir[dataset.DepsRaw](filepath.Join(rawDir, sub), p.Logger)...)
	}
	p.Logger.Info("loaded raw data", "files", len(raw))
	return raw
}

// BuildTimeseries flattens raw files into dependency records. After each
// raw file the package's cumulative record count is checked against
// MinPoints; a package that falls short at that point is reported and
// its records dropped, and a package covered by both sources is checked
// once per source. Surviving records sort by package and date, and
// duplicate (package, version) rows keep their first occurrence.
func (p *DependencyProcessor) BuildTimeseries(raw []dataset.DepsRaw) ([]dataset.DependencyRecord, []QualityEntry) {
	var records []dataset.DependencyRecord
	var entries []QualityEntry

	for _, pkg := range raw {
		for _, v := range pkg.Versions {
			if v.Date == "" {
				continue
			}
			date, err := dataset.ParseDate(v.Date)
			if err != nil {
				p.Logger.Debug("skipping version", "package", pkg.Package, "version", v.Version, "err", err)
				continue
			}
			records = append(records, dataset.DependencyRecord{
				Package:   pkg.Package,
				Date:      date,
				Version:   v.Version,
				TotalDeps: v.TotalDependencies,
				Source:    pkg.Source,
			})
		}

		count := 0
		var dates span
		for _, r := range records {
			if r.Package == pkg.Package {
				count++
				dates.add(r.Date)
			}
		}
		e := qualityEntry(pkg.Package, count, p.MinPoints, dates)
		if e.Status == StatusExcluded {
			kept := records[:0]
			for _, r := range records {
				if r.Package != pkg.Package {
					kept = append(kept, r)
				}
			}
			records = kept
			p.Logger.Warn("excluding package", "package", pkg.Package, "points", count)
		}
		entries = append(entries, e)
	}

	if len(records) == 0 {
		p.Logger.Warn("no valid data points found")
		return nil, entries
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Package != records[j].Package {
			return records[i].Package < records[j].Package
		}
		return records[i].Date.Before(records[j].Date)
	})
	records = dedup(records, func(r dataset.DependencyRecord) (string, string) {
		return r.Package, r.Version
	})

	p.Logger.Info("processed records", "records", len(records))
	return records, entries
}

// Run loads raw data from rawDir and writes dependency_timeseries.csv,
// the quality report, and the source attribution under outputDir.
func (p *DependencyProcessor) Run(rawDir, outputDir string) (*Result, error) {
	raw := p.LoadRaw(rawDir)
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no raw data under %s, run 'figgen collect deps' first", rawDir)
	}

	records, entries := p.BuildTimeseries(raw)
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no valid data points in %s", rawDir)
	}

	packages := make(map[string]struct{})
	for _, r := range records {
		packages[r.Package] = struct{}{}
	}

	res := &Result{
		Records:  len(records),
		Packages: len(packages),
		Quality: &QualityReport{
			Title:       depsReportTitle,
			MinPoints:   p.MinPoints,
			GeneratedAt: time.Now(),
			Entries:     entries,
		},
		TimeseriesPath:  filepath.Join(outputDir, dataset.DependencyTimeseriesFile),
		ReportPath:      filepath.Join(outputDir, dataset.QualityReportFile),
		AttributionPath: filepath.Join(outputDir, dataset.AttributionFile),
	}

	if err := dataset.ExportDependencyCSV(records, res.TimeseriesPath); err != nil {
		return nil, err
	}
	if err := res.Quality.Export(res.ReportPath); err != nil {
		return nil, err
	}
	counts := attribution(records, func(r dataset.DependencyRecord) (string, string) {
		return r.Package, r.Source
	})
	if err := dataset.ExportAttributionCSV(counts, res.AttributionPath); err != nil {
		return nil, err
	}

	p.Logger.Info("processing complete", "records", res.Records, "packages", res.Packages, "output", outputDir)
	return res, nil
}
