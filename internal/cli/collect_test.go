package cli

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lablink-dev/figgen/pkg/collect"
)

func TestArchiveRun(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)

	summary := &collect.Summary{
		Kind:       "gpu_reliance",
		StartedAt:  started,
		FinishedAt: finished,
		Packages: []collect.PackageResult{
			{Name: "torch", Versions: 42},
			{Name: "cupy", Versions: 0, Error: "not found"},
		},
	}

	run := archiveRun(summary)

	if run.ID == uuid.Nil {
		t.Error("archiveRun should assign a fresh run ID")
	}
	if run.Kind != "gpu_reliance" {
		t.Errorf("Kind = %q, want %q", run.Kind, "gpu_reliance")
	}
	if !run.StartedAt.Equal(started) || !run.FinishedAt.Equal(finished) {
		t.Errorf("timestamps = %v/%v, want %v/%v", run.StartedAt, run.FinishedAt, started, finished)
	}
	if len(run.Packages) != 2 {
		t.Fatalf("len(Packages) = %d, want 2", len(run.Packages))
	}
	if run.Packages[0].Name != "torch" || run.Packages[0].Versions != 42 {
		t.Errorf("Packages[0] = %+v, want torch with 42 versions", run.Packages[0])
	}
	if run.Packages[1].Error != "not found" {
		t.Errorf("Packages[1].Error = %q, want %q", run.Packages[1].Error, "not found")
	}
}

func TestArchiveRunUniqueIDs(t *testing.T) {
	summary := &collect.Summary{Kind: "software_complexity"}

	a := archiveRun(summary)
	b := archiveRun(summary)

	if a.ID == b.ID {
		t.Error("each archived run should carry its own ID")
	}
}

func TestValidatePackages(t *testing.T) {
	tests := []struct {
		name     string
		packages []string
		wantErr  bool
	}{
		{"valid names", []string{"torch", "scikit-learn", "zope.interface"}, false},
		{"empty list", nil, false},
		{"empty name", []string{"torch", ""}, true},
		{"path separator", []string{"../etc/passwd"}, true},
		{"trailing hyphen", []string{"torch-"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePackages(tt.packages)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePackages(%v) error = %v, wantErr %v", tt.packages, err, tt.wantErr)
			}
		})
	}
}
