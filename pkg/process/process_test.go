package process

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lablink-dev/figgen/pkg/dataset"
)

func silentLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeRawJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func gpuVer(version, date string, score int) dataset.GPURawVersion {
	return dataset.GPURawVersion{
		Version:         version,
		Date:            date,
		GPUScore:        score,
		GPUDependencies: []string{},
	}
}

func depsVer(version, date string, total int) dataset.DepsRawVersion {
	return dataset.DepsRawVersion{
		Version:           version,
		Date:              date,
		TotalDependencies: total,
		Dependencies:      []string{},
	}
}
