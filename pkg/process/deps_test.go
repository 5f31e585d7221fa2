package process

import (
	"os"
	"strings"
	"testing"

	"github.com/lablink-dev/figgen/pkg/dataset"
	"github.com/lablink-dev/figgen/pkg/errors"
)

func TestDepsBuildTimeseriesCondaWins(t *testing.T) {
	p := NewDependencyProcessor(2, silentLogger())

	// Conda-forge files load first, so its record for the shared version
	// survives the dedup.
	raw := []dataset.DepsRaw{
		{Package: "numpy", Source: "conda-forge", Versions: []dataset.DepsRawVersion{
			depsVer("1.21.0", "2021-06-22T10:00:00Z", 4),
			depsVer("1.23.0", "2022-06-22T10:00:00Z", 5),
		}},
		{Package: "numpy", Source: "pypi", Versions: []dataset.DepsRawVersion{
			depsVer("1.23.0", "2022-06-23T10:00:00", 6),
			depsVer("1.24.0", "2023-01-01T10:00:00", 6),
		}},
	}

	records, entries := p.BuildTimeseries(raw)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 after dedup", len(records))
	}
	for _, r := range records {
		if r.Version == "1.23.0" && r.Source != "conda-forge" {
			t.Errorf("1.23.0 kept from %q, want conda-forge", r.Source)
		}
	}

	// One quality check per source file.
	if len(entries) != 2 {
		t.Fatalf("got %d quality entries, want 2", len(entries))
	}
	if entries[0].Count != 2 || entries[1].Count != 4 {
		t.Errorf("cumulative counts = %d, %d, want 2, 4", entries[0].Count, entries[1].Count)
	}
	for i, e := range entries {
		if e.Status != StatusIncluded {
			t.Errorf("entries[%d] status = %q, want INCLUDED", i, e.Status)
		}
	}
}

func TestDepsBuildTimeseriesPerSourceQuality(t *testing.T) {
	p := NewDependencyProcessor(3, silentLogger())

	// Sparse conda-forge coverage is dropped on its own, then the PyPI
	// file passes the threshold without it.
	raw := []dataset.DepsRaw{
		{Package: "pandas", Source: "conda-forge", Versions: []dataset.DepsRawVersion{
			depsVer("1.0.0", "2020-01-29T10:00:00Z", 3),
		}},
		{Package: "pandas", Source: "pypi", Versions: []dataset.DepsRawVersion{
			depsVer("1.1.0", "2020-07-28T10:00:00", 4),
			depsVer("1.2.0", "2020-12-26T10:00:00", 4),
			depsVer("1.3.0", "2021-07-02T10:00:00", 5),
		}},
	}

	records, entries := p.BuildTimeseries(raw)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for _, r := range records {
		if r.Source != "pypi" {
			t.Errorf("record %+v survived, want conda-forge rows dropped", r)
		}
	}

	if len(entries) != 2 {
		t.Fatalf("got %d quality entries, want 2", len(entries))
	}
	if entries[0].Status != StatusExcluded || entries[0].Count != 1 {
		t.Errorf("entries[0] = %+v, want EXCLUDED with 1 point", entries[0])
	}
	if entries[1].Status != StatusIncluded || entries[1].Count != 3 {
		t.Errorf("entries[1] = %+v, want INCLUDED with 3 points", entries[1])
	}
}

func TestDepsBuildTimeseriesSkipsBadDates(t *testing.T) {
	p := NewDependencyProcessor(1, silentLogger())

	raw := []dataset.DepsRaw{
		{Package: "scipy", Source: "pypi", Versions: []dataset.DepsRawVersion{
			depsVer("1.7.0", "2021-06-20T10:00:00", 8),
			depsVer("1.8.0", "", 8),
			depsVer("1.9.0", "garbage", 9),
		}},
	}

	records, entries := p.BuildTimeseries(raw)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Version != "1.7.0" || records[0].TotalDeps != 8 {
		t.Errorf("record = %+v", records[0])
	}
	if entries[0].Count != 1 {
		t.Errorf("quality count = %d, want 1", entries[0].Count)
	}
}

func TestDepsRun(t *testing.T) {
	rawDir := t.TempDir()
	outDir := t.TempDir()

	writeRawJSON(t, dataset.DepsRawPathConda(rawDir, "numpy"), dataset.DepsRaw{
		Package:   "numpy",
		Source:    "conda-forge",
		Feedstock: "numpy-feedstock",
		Versions: []dataset.DepsRawVersion{
			depsVer("1.21.0", "2021-06-22T10:00:00Z", 4),
			depsVer("1.23.0", "2022-06-22T10:00:00Z", 5),
		},
	})
	writeRawJSON(t, dataset.DepsRawPathPyPI(rawDir, "numpy"), dataset.DepsRaw{
		Package: "numpy",
		Source:  "pypi",
		Versions: []dataset.DepsRawVersion{
			depsVer("1.23.0", "2022-06-23T10:00:00", 6),
			depsVer("1.24.0", "2023-01-01T10:00:00", 6),
		},
	})
	writeRawJSON(t, dataset.DepsRawPathPyPI(rawDir, "scipy"), dataset.DepsRaw{
		Package: "scipy",
		Source:  "pypi",
		Versions: []dataset.DepsRawVersion{
			depsVer("1.9.0", "2022-07-29T10:00:00", 9),
		},
	})

	p := NewDependencyProcessor(2, silentLogger())
	res, err := p.Run(rawDir, outDir)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Records != 3 || res.Packages != 1 {
		t.Errorf("Run() = %d records / %d packages, want 3 / 1", res.Records, res.Packages)
	}

	records, err := dataset.ImportDependencyCSV(res.TimeseriesPath)
	if err != nil {
		t.Fatalf("import timeseries: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("timeseries has %d rows, want 3", len(records))
	}
	if records[1].Version != "1.23.0" || records[1].Source != "conda-forge" {
		t.Errorf("shared version kept from %q, want conda-forge", records[1].Source)
	}

	report, err := os.ReadFile(res.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(report), "Data Quality Report\n") {
		t.Errorf("report starts with %q", strings.SplitN(string(report), "\n", 2)[0])
	}
	if !strings.Contains(string(report), "scipy                | EXCLUDED   | 1 points        | Insufficient data points (< 2)") {
		t.Errorf("report missing scipy exclusion:\n%s", report)
	}

	attribution, err := os.ReadFile(res.AttributionPath)
	if err != nil {
		t.Fatalf("read attribution: %v", err)
	}
	want := "package,source,count\nnumpy,conda-forge,2\nnumpy,pypi,1\n"
	if string(attribution) != want {
		t.Errorf("attribution = %q, want %q", attribution, want)
	}
}

func TestDepsRunNoData(t *testing.T) {
	p := NewDependencyProcessor(2, silentLogger())
	_, err := p.Run(t.TempDir(), t.TempDir())
	if err == nil {
		t.Fatal("Run() succeeded on empty raw dir")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}
