package dataset

import (
	"path/filepath"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"pypi upload time", "2020-03-15T10:30:00", time.Date(2020, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"rfc3339 commit date", "2021-06-01T08:00:00Z", time.Date(2021, 6, 1, 8, 0, 0, 0, time.UTC)},
		{"plain date", "2019-12-31", time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "15/03/2020"} {
		if _, err := ParseDate(input); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", input)
		}
	}
}

func TestRawPaths(t *testing.T) {
	if got, want := GPURawPath("data", "cupy"), filepath.Join("data", "pypi_metadata", "cupy_versions.json"); got != want {
		t.Errorf("GPURawPath = %q, want %q", got, want)
	}
	if got, want := DepsRawPathConda("data", "numpy"), filepath.Join("data", "conda_forge_metadata", "numpy_meta.json"); got != want {
		t.Errorf("DepsRawPathConda = %q, want %q", got, want)
	}
	if got, want := DepsRawPathPyPI("data", "jupyter"), filepath.Join("data", "pypi_metadata", "jupyter_versions.json"); got != want {
		t.Errorf("DepsRawPathPyPI = %q, want %q", got, want)
	}
}
