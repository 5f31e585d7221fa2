package chart

import (
	"strings"
	"testing"

	"github.com/lablink-dev/figgen/pkg/dataset"
)

func depFixtureWide() []dataset.DependencyRecord {
	return []dataset.DependencyRecord{
		{Package: "numpy", Version: "1.15", Date: date(2018, 7, 1), TotalDeps: 2},
		{Package: "numpy", Version: "1.20", Date: date(2021, 1, 1), TotalDeps: 3},
		{Package: "numpy", Version: "1.24", Date: date(2023, 1, 1), TotalDeps: 5},
		{Package: "torch", Version: "1.0", Date: date(2018, 12, 1), TotalDeps: 150},
		{Package: "torch", Version: "1.4", Date: date(2020, 1, 1), TotalDeps: 300},
		{Package: "torch", Version: "1.8", Date: date(2021, 3, 1), TotalDeps: 450},
		{Package: "torch", Version: "1.12", Date: date(2022, 6, 1), TotalDeps: 600},
		{Package: "torch", Version: "2.0", Date: date(2023, 3, 1), TotalDeps: 800},
	}
}

func depFixtureNarrow() []dataset.DependencyRecord {
	return []dataset.DependencyRecord{
		{Package: "astropy", Version: "4.0", Date: date(2019, 12, 1), TotalDeps: 5},
		{Package: "astropy", Version: "5.0", Date: date(2021, 11, 1), TotalDeps: 8},
		{Package: "scipy", Version: "1.5", Date: date(2020, 6, 1), TotalDeps: 12},
		{Package: "scipy", Version: "1.10", Date: date(2023, 1, 1), TotalDeps: 30},
	}
}

func TestComplexityLogRule(t *testing.T) {
	// 800 / (2+1) is well past two orders of magnitude.
	svg := string(Complexity(depFixtureWide()))
	if !strings.Contains(svg, "Direct Dependencies (log scale)") {
		t.Error("wide spread should flip the y axis to log")
	}
	if !strings.Contains(svg, "Scientific Software Complexity Growth Over Time") {
		t.Error("missing title")
	}

	// 30 / (5+1) stays linear.
	svg = string(Complexity(depFixtureNarrow()))
	if strings.Contains(svg, "(log scale)") {
		t.Error("narrow spread should keep a linear axis")
	}
	if !strings.Contains(svg, ">Direct Dependencies</text>") {
		t.Error("missing y label")
	}
}

func TestComplexityTrend(t *testing.T) {
	svg := string(Complexity(depFixtureWide()))
	// Only torch has five releases, so exactly one rolling-mean trend.
	const trendStyle = `stroke-opacity="0.5" stroke-width="2" stroke-dasharray="6 4"`
	if got := strings.Count(svg, trendStyle); got != 1 {
		t.Errorf("got %d trend lines, want 1", got)
	}
}

func TestComplexitySkipsSingleRelease(t *testing.T) {
	records := append(depFixtureNarrow(), dataset.DependencyRecord{
		Package: "jupyter", Version: "1.0", Date: date(2022, 1, 1), TotalDeps: 40,
	})
	svg := string(Complexity(records))
	if strings.Contains(svg, ">jupyter</text>") {
		t.Error("single-release package should not appear in legend")
	}
	for _, want := range []string{">astropy</text>", ">scipy</text>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestComplexityFacets(t *testing.T) {
	categories := []Category{
		{Name: "Core Scientific", Packages: []string{"numpy"}},
		{Name: "Machine Learning", Packages: []string{"torch"}},
	}
	svg := string(ComplexityFacets(depFixtureWide(), categories))

	for _, want := range []string{
		"Dependency Growth by Category",
		">Core Scientific</text>",
		">Machine Learning</text>",
		">Dependencies</text>",
		`viewBox="0 0 624.0 480.0"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %q", want)
		}
	}
}
