package figure

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lablink-dev/figgen/pkg/errors"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name   string
		fontPt int
		dpi    int
		width  float64
		height float64
		linePt float64
	}{
		{"paper", 14, 300, 6.5, 5, 2},
		{"poster", 20, 300, 12, 9, 3},
		{"presentation", 16, 150, 10, 7.5, 2.5},
	}
	for _, tt := range tests {
		p, err := ByName(tt.name)
		if err != nil {
			t.Fatalf("ByName(%q) error: %v", tt.name, err)
		}
		if p.FontPt != tt.fontPt || p.DPI != tt.dpi || p.WidthIn != tt.width || p.HeightIn != tt.height {
			t.Errorf("ByName(%q) = %+v, want font %d, dpi %d, %gx%g", tt.name, p, tt.fontPt, tt.dpi, tt.width, tt.height)
		}
		if p.TitlePt != p.FontPt+2 {
			t.Errorf("%s title size = %d, want font+2", tt.name, p.TitlePt)
		}
		if p.LinePt != tt.linePt {
			t.Errorf("%s line width = %g, want %g", tt.name, p.LinePt, tt.linePt)
		}
	}
}

func TestDefault(t *testing.T) {
	if got := Default(); got.Name != "paper" {
		t.Errorf("Default() = %q, want paper", got.Name)
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("billboard")
	if err == nil {
		t.Fatal("ByName(billboard) succeeded")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPreset) {
		t.Errorf("error code = %v, want INVALID_PRESET", errors.GetCode(err))
	}
	for _, name := range Names() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not list preset %q", err, name)
		}
	}
}

func TestNames(t *testing.T) {
	want := []string{"paper", "poster", "presentation"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestSizeLabel(t *testing.T) {
	p, _ := ByName("paper")
	if got := p.SizeLabel(); got != "6.5x5.0in" {
		t.Errorf("SizeLabel() = %q, want 6.5x5.0in", got)
	}
	p, _ = ByName("poster")
	if got := p.SizeLabel(); got != "12.0x9.0in" {
		t.Errorf("SizeLabel() = %q, want 12.0x9.0in", got)
	}
}

func TestNaming(t *testing.T) {
	if got := FileName("gpu_reliance_over_time", "paper", "png"); got != "gpu_reliance_over_time_paper.png" {
		t.Errorf("FileName() = %q", got)
	}
	want := filepath.Join("out", "os_distribution_poster_metadata.txt")
	if got := MetadataPath("out", "os_distribution", "poster"); got != want {
		t.Errorf("MetadataPath() = %q, want %q", got, want)
	}
}

func TestRunDir(t *testing.T) {
	now := time.Date(2026, 3, 9, 14, 5, 30, 0, time.UTC)
	if got := RunDir("figures", false, now); got != "figures" {
		t.Errorf("RunDir(untimestamped) = %q", got)
	}
	want := filepath.Join("figures", "run_20260309_140530")
	if got := RunDir("figures", true, now); got != want {
		t.Errorf("RunDir(timestamped) = %q, want %q", got, want)
	}
}
