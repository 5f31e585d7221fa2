package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/lablink-dev/figgen/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !slices.Contains(cfg.Collection.GPUPackages, "cupy-cuda12x") {
		t.Error("default GPU packages missing cupy-cuda12x variant")
	}
	if !slices.Contains(cfg.Collection.DependencyPackages, "numpy") {
		t.Error("default dependency packages missing numpy")
	}
	if cfg.Processing.MinDataPoints != 5 {
		t.Errorf("MinDataPoints = %d, want 5", cfg.Processing.MinDataPoints)
	}
	if got := cfg.Processing.Variants["tensorflow-gpu"]; got != "tensorflow" {
		t.Errorf("variant tensorflow-gpu = %q, want tensorflow", got)
	}
	if cfg.Processing.SourcePriority[0] != "conda-forge" {
		t.Errorf("source priority starts with %q, want conda-forge", cfg.Processing.SourcePriority[0])
	}
	if len(cfg.Charts.GPUCategories) != 3 {
		t.Errorf("got %d GPU categories, want 3", len(cfg.Charts.GPUCategories))
	}
	if cfg.Charts.GPUCategories[2].Name != "Biology/Molecular Dynamics" {
		t.Errorf("third category = %q", cfg.Charts.GPUCategories[2].Name)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Processing.MinDataPoints != 5 {
		t.Errorf("MinDataPoints = %d, want default 5", cfg.Processing.MinDataPoints)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load() succeeded on missing explicit path")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figgen.toml")
	content := `
[collection]
gpu_packages = ["cupy"]

[processing]
min_data_points = 2

[[charts.gpu_categories]]
name = "Only One"
packages = ["cupy"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Collection.GPUPackages) != 1 || cfg.Collection.GPUPackages[0] != "cupy" {
		t.Errorf("GPUPackages = %v, want [cupy]", cfg.Collection.GPUPackages)
	}
	if cfg.Processing.MinDataPoints != 2 {
		t.Errorf("MinDataPoints = %d, want 2", cfg.Processing.MinDataPoints)
	}
	if len(cfg.Charts.GPUCategories) != 1 || cfg.Charts.GPUCategories[0].Name != "Only One" {
		t.Errorf("GPUCategories = %+v", cfg.Charts.GPUCategories)
	}

	// Untouched sections keep defaults.
	if len(cfg.Collection.DependencyPackages) != 9 {
		t.Errorf("DependencyPackages overridden unexpectedly: %v", cfg.Collection.DependencyPackages)
	}
	if cfg.Processing.Variants["cupy-cuda110"] != "cupy" {
		t.Error("variant map lost its defaults")
	}
	if len(cfg.Charts.DependencyCategories) != 3 {
		t.Errorf("DependencyCategories = %+v", cfg.Charts.DependencyCategories)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figgen.toml")
	if err := os.WriteFile(path, []byte("[collection\ngpu_packages = ?"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() accepted malformed TOML")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("error code = %v, want PARSE_ERROR", errors.GetCode(err))
	}
}

func TestLoadInvalidMinPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figgen.toml")
	if err := os.WriteFile(path, []byte("[processing]\nmin_data_points = -3\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	// Negative values cannot lower the default below 1.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Processing.MinDataPoints != 5 {
		t.Errorf("MinDataPoints = %d, want default 5", cfg.Processing.MinDataPoints)
	}
}

func TestScorerUsesConfiguredLists(t *testing.T) {
	cfg := Default()
	cfg.Scoring.GPUFirst = []string{"mypkg"}

	s := cfg.Scorer()
	r := s.Score("mypkg", "1.0.0", nil)
	if r.Score != 5 {
		t.Errorf("Score = %d, want 5 for configured GPU-first package", r.Score)
	}
}

func TestGitHubToken(t *testing.T) {
	old, had := os.LookupEnv("GITHUB_TOKEN")
	defer func() {
		if had {
			os.Setenv("GITHUB_TOKEN", old)
		} else {
			os.Unsetenv("GITHUB_TOKEN")
		}
	}()

	os.Setenv("GITHUB_TOKEN", "ghp_test")
	if got := GitHubToken(); got != "ghp_test" {
		t.Errorf("GitHubToken() = %q", got)
	}
	os.Unsetenv("GITHUB_TOKEN")
	if got := GitHubToken(); got != "" {
		t.Errorf("GitHubToken() = %q, want empty", got)
	}
}

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	return func() { os.Chdir(old) }
}
