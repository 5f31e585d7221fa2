package process

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestQualityReportWrite(t *testing.T) {
	report := &QualityReport{
		Title:       "GPU Data Quality Report",
		MinPoints:   5,
		GeneratedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Entries: []QualityEntry{
			{Package: "tensorflow", Status: StatusIncluded, Count: 42, Reason: "Sufficient data"},
			{Package: "alphafold", Status: StatusExcluded, Count: 3, Reason: "Insufficient data points (< 5)"},
		},
	}

	var sb strings.Builder
	if err := report.Write(&sb); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	want := strings.Join([]string{
		"GPU Data Quality Report",
		strings.Repeat("=", 50),
		"",
		"Processing date: 2026-01-15T10:30:00",
		"Minimum data points required: 5",
		"",
		"Package Status:",
		strings.Repeat("-", 50),
		"tensorflow           | INCLUDED   | 42 points       | Sufficient data",
		"alphafold            | EXCLUDED   | 3 points        | Insufficient data points (< 5)",
		"",
	}, "\n")
	if got := sb.String(); got != want {
		t.Errorf("Write() = %q, want %q", got, want)
	}
}

func TestQualityReportExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed", "quality_report.txt")

	report := &QualityReport{
		Title:       "Data Quality Report",
		MinPoints:   5,
		GeneratedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Entries: []QualityEntry{
			{Package: "numpy", Status: StatusIncluded, Count: 12, Reason: "Sufficient data"},
		},
	}
	if err := report.Export(path); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "Data Quality Report\n") {
		t.Errorf("report starts with %q, want title line", strings.SplitN(string(data), "\n", 2)[0])
	}
	if !strings.Contains(string(data), "numpy                | INCLUDED   | 12 points       | Sufficient data") {
		t.Errorf("report missing numpy row:\n%s", data)
	}
}

func TestQualityReportExcluded(t *testing.T) {
	report := &QualityReport{
		Entries: []QualityEntry{
			{Package: "numpy", Status: StatusIncluded, Count: 12},
			{Package: "scipy", Status: StatusExcluded, Count: 2},
			{Package: "jax", Status: StatusExcluded, Count: 0},
		},
	}

	excluded := report.Excluded()
	if len(excluded) != 2 {
		t.Fatalf("Excluded() returned %d entries, want 2", len(excluded))
	}
	if excluded[0].Package != "scipy" || excluded[1].Package != "jax" {
		t.Errorf("Excluded() = %v, want scipy then jax", excluded)
	}
}
