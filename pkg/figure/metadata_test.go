package figure

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMetadataWrite(t *testing.T) {
	m := &Metadata{
		Figure:      "gpu_reliance_over_time",
		Preset:      "paper",
		RunID:       uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		GeneratedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Sources:     []string{"data/processed/gpu_reliance/gpu_timeseries.csv"},
		DPI:         300,
		Size:        "6.5x5.0in",
		Extra: map[string]string{
			"packages_included": "cupy, torch",
			"date_range":        "2018-2025",
		},
	}

	var sb strings.Builder
	if err := m.Write(&sb); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	want := strings.Join([]string{
		"Figure Metadata",
		strings.Repeat("=", 50),
		"",
		"figure: gpu_reliance_over_time",
		"preset: paper",
		"run_id: 123e4567-e89b-12d3-a456-426614174000",
		"generated_at: 2026-01-15T10:30:00",
		"sources: data/processed/gpu_reliance/gpu_timeseries.csv",
		"dpi: 300",
		"size: 6.5x5.0in",
		"date_range: 2018-2025",
		"packages_included: cupy, torch",
		"",
	}, "\n")
	if got := sb.String(); got != want {
		t.Errorf("Write() = %q, want %q", got, want)
	}
}

func TestNewMetadata(t *testing.T) {
	preset, _ := ByName("poster")
	m := NewMetadata("os_distribution", preset, "data/reference/os_distribution.csv")

	if m.Preset != "poster" || m.DPI != 300 || m.Size != "12.0x9.0in" {
		t.Errorf("NewMetadata() = %+v", m)
	}
	if m.RunID == uuid.Nil {
		t.Error("NewMetadata() did not assign a run ID")
	}
	if m.GeneratedAt.IsZero() {
		t.Error("NewMetadata() did not stamp a generation time")
	}
}

func TestMetadataExport(t *testing.T) {
	preset, _ := ByName("presentation")
	m := NewMetadata("workshop_timeline", preset)
	m.Set("workshops", "12").Set("participants", "406")

	path := MetadataPath(t.TempDir(), "workshop_timeline", "presentation")
	if err := m.Export(path); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	for _, want := range []string{"preset: presentation", "dpi: 150", "workshops: 12", "participants: 406"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metadata missing %q:\n%s", want, data)
		}
	}
}
