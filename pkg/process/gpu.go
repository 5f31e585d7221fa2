package process

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lablink-dev/figgen/pkg/dataset"
	"github.com/lablink-dev/figgen/pkg/errors"
)

const gpuReportTitle = "GPU Data Quality Report"

// GPUProcessor turns raw GPU collection files into the cleaned
// gpu_timeseries.csv dataset.
type GPUProcessor struct {
	// MinPoints is the minimum number of records a package needs to stay
	// in the dataset.
	MinPoints int

	// Variants maps suffixed package names onto their base package, so
	// cupy-cuda11x releases count as cupy.
	Variants map[string]string

	Logger *log.Logger
}

// NewGPUProcessor creates a processor. A nil logger uses the package
// default.
func NewGPUProcessor(minPoints int, variants map[string]string, logger *log.Logger) *GPUProcessor {
	if logger == nil {
		logger = log.Default()
	}
	return &GPUProcessor{MinPoints: minPoints, Variants: variants, Logger: logger}
}

// LoadRaw reads every raw JSON file under rawDir's pypi_metadata
// directory. Files that cannot be read or parsed are logged and skipped.
func (p *GPUProcessor) LoadRaw(rawDir string) []dataset.GPURaw {
	raw := readRawDir[dataset.GPURaw](filepath.Join(rawDir, dataset.PyPIMetadataDir), p.Logger)
	p.Logger.Info("loaded raw data", "files", len(raw))
	return raw
}

// BuildTimeseries flattens raw files into version records. Variant names
// normalize onto their base package, versions without a parseable date
// are dropped, packages with fewer than MinPoints records are excluded,
// and duplicate (package, version) rows keep their first occurrence.
// Records come back sorted by package and date; entries come back with
// the largest packages first.
func (p *GPUProcessor) BuildTimeseries(raw []dataset.GPURaw) ([]dataset.VersionRecord, []QualityEntry) {
	var records []dataset.VersionRecord
	for _, pkg := range raw {
		name := pkg.Package
		if base, ok := p.Variants[name]; ok {
			name = base
		}
		for _, v := range pkg.Versions {
			if v.Date == "" {
				continue
			}
			date, err := dataset.ParseDate(v.Date)
			if err != nil {
				p.Logger.Debug("skipping version", "package", name, "version", v.Version, "err", err)
				continue
			}
			records = append(records, dataset.VersionRecord{
				Package:              name,
				Version:              v.Version,
				Date:                 date,
				GPUScore:             v.GPUScore,
				CUDAVersion:          v.CUDAVersion,
				GPUDepsCount:         v.GPUDepsCount,
				RequiresExternalCUDA: v.RequiresExternalCUDA,
				Source:               pkg.Source,
			})
		}
	}
	if len(records) == 0 {
		p.Logger.Warn("no valid data points found")
		return nil, nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Package != records[j].Package {
			return records[i].Package < records[j].Package
		}
		return records[i].Date.Before(records[j].Date)
	})

	counts := make(map[string]int, len(raw))
	spans := make(map[string]span, len(raw))
	for _, r := range records {
		counts[r.Package]++
		s := spans[r.Package]
		s.add(r.Date)
		spans[r.Package] = s
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	excluded := make(map[string]bool)
	entries := make([]QualityEntry, 0, len(names))
	for _, name := range names {
		e := qualityEntry(name, counts[name], p.MinPoints, spans[name])
		if e.Status == StatusExcluded {
			excluded[name] = true
			p.Logger.Warn("excluding package", "package", name, "points", e.Count)
		}
		entries = append(entries, e)
	}

	kept := records[:0]
	for _, r := range records {
		if !excluded[r.Package] {
			kept = append(kept, r)
		}
	}
	records = dedup(kept, func(r dataset.VersionRecord) (string, string) {
		return r.Package, r.Version
	})

	p.Logger.Info("processed records", "records", len(records), "packages", len(counts)-len(excluded))
	return records, entries
}

// Run loads raw data from rawDir and writes gpu_timeseries.csv, the
// quality report, and the source attribution under outputDir.
func (p *GPUProcessor) Run(rawDir, outputDir string) (*Result, error) {
	raw := p.LoadRaw(rawDir)
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no raw data under %s, run 'figgen collect gpu' first", rawDir)
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
			Title:       gpuReportTitle,
			MinPoints:   p.MinPoints,
			GeneratedAt: time.Now(),
			Entries:     entries,
		},
		TimeseriesPath:  filepath.Join(outputDir, dataset.GPUTimeseriesFile),
		ReportPath:      filepath.Join(outputDir, dataset.QualityReportFile),
		AttributionPath: filepath.Join(outputDir, dataset.AttributionFile),
	}

	if err := dataset.ExportGPUCSV(records, res.TimeseriesPath); err != nil {
		return nil, err
	}
	if err := res.Quality.Export(res.ReportPath); err != nil {
		return nil, err
	}
	counts := attribution(records, func(r dataset.VersionRecord) (string, string) {
		return r.Package, r.Source
	})
	if err := dataset.ExportAttributionCSV(counts, res.AttributionPath); err != nil {
		return nil, err
	}

	p.Logger.Info("processing complete", "records", res.Records, "packages", res.Packages, "output", outputDir)
	return res, nil
}
