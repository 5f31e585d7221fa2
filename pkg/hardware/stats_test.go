package hardware

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lablink-dev/figgen/pkg/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStats(t *testing.T) {
	gpus := []GPU{
		{Name: "Tesla V100", ReleaseDate: day(2017, 6, 21), Price: 10664, FP32TFLOPS: 14.1, Category: CategoryProfessional},
		{Name: "A100", ReleaseDate: day(2020, 5, 14), Price: 32000, FP32TFLOPS: 19.5, Category: CategoryProfessional},
		{Name: "GeForce RTX 3090", ReleaseDate: day(2020, 9, 24), Price: 1499, FP32TFLOPS: 35.6, Category: CategoryConsumer},
		{Name: "GeForce RTX 2080 Ti", ReleaseDate: day(2018, 9, 27), Price: 999, FP32TFLOPS: 13.4, Category: CategoryConsumer},
		{Name: "H100 PCIe", ReleaseDate: day(2022, 3, 22), Category: CategoryProfessional}, // unpriced
	}

	s := ComputeStats(gpus)
	if s.TotalGPUs != 5 {
		t.Errorf("TotalGPUs = %d, want 5", s.TotalGPUs)
	}
	if !s.FirstRelease.Equal(day(2017, 6, 21)) || !s.LastRelease.Equal(day(2022, 3, 22)) {
		t.Errorf("date range = %v to %v", s.FirstRelease, s.LastRelease)
	}
	if s.PriceCompleteness != 0.8 {
		t.Errorf("PriceCompleteness = %v, want 0.8", s.PriceCompleteness)
	}
	if s.PerformanceCompleteness != 0.8 {
		t.Errorf("PerformanceCompleteness = %v, want 0.8", s.PerformanceCompleteness)
	}

	// Four priced cards: 999, 1499, 10664, 32000. Even count, so the
	// median interpolates.
	if s.Overall.Count != 4 || s.Overall.Min != 999 || s.Overall.Max != 32000 {
		t.Errorf("Overall = %+v", s.Overall)
	}
	if want := (1499.0 + 10664.0) / 2; s.Overall.Median != want {
		t.Errorf("Overall.Median = %v, want %v", s.Overall.Median, want)
	}

	prof := s.ByCategory[CategoryProfessional]
	if prof.Count != 2 || prof.Min != 10664 || prof.Max != 32000 {
		t.Errorf("professional = %+v", prof)
	}
	cons := s.ByCategory[CategoryConsumer]
	if cons.Count != 2 || cons.Median != (999.0+1499.0)/2 {
		t.Errorf("consumer = %+v", cons)
	}
}

func TestTimeSeries(t *testing.T) {
	gpus := []GPU{
		{Name: "A100", ReleaseDate: day(2020, 5, 14), Price: 32000, Category: CategoryProfessional},
		{Name: "Tesla V100", ReleaseDate: day(2017, 6, 21), Price: 10664, Category: CategoryProfessional},
		{Name: "GeForce RTX 3090", ReleaseDate: day(2020, 9, 24), Price: 1499, Category: CategoryConsumer},
		{Name: "H100 PCIe", ReleaseDate: day(2022, 3, 22), Category: CategoryProfessional}, // unpriced
		{Name: "Undated", Price: 500, Category: CategoryConsumer},
	}

	all := TimeSeries(gpus, "")
	if len(all) != 3 {
		t.Fatalf("TimeSeries(all) kept %d records, want 3", len(all))
	}
	if all[0].Name != "Tesla V100" || all[2].Name != "GeForce RTX 3090" {
		t.Errorf("TimeSeries not sorted by date: %v, %v, %v", all[0].Name, all[1].Name, all[2].Name)
	}

	prof := TimeSeries(gpus, CategoryProfessional)
	if len(prof) != 2 {
		t.Fatalf("TimeSeries(professional) kept %d records, want 2", len(prof))
	}
	for _, g := range prof {
		if g.Category != CategoryProfessional {
			t.Errorf("unexpected category %q in professional series", g.Category)
		}
	}
}

func validationSet(n int, firstYear, lastYear int, pricedFrac float64) []GPU {
	gpus := make([]GPU, n)
	span := lastYear - firstYear
	for i := range gpus {
		year := firstYear
		if n > 1 {
			year = firstYear + i*span/(n-1)
		}
		gpus[i] = GPU{
			Name:        fmt.Sprintf("GPU %d", i),
			ReleaseDate: day(year, 6, 1),
			Category:    CategoryConsumer,
		}
		if float64(i) < pricedFrac*float64(n) {
			gpus[i].Price = 999
		}
	}
	return gpus
}

func TestValidate(t *testing.T) {
	if _, err := Validate(validationSet(10, 2006, 2024, 1.0)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Validate(10 GPUs) error = %v, want INVALID_INPUT", err)
	}

	warnings, err := Validate(validationSet(60, 2006, 2024, 1.0))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("healthy dataset produced warnings: %v", warnings)
	}

	warnings, err = Validate(validationSet(60, 2015, 2020, 1.0))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("narrow range should warn twice, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "2015") || !strings.Contains(warnings[1], "2020") {
		t.Errorf("warnings should name the boundary years: %v", warnings)
	}

	warnings, err = Validate(validationSet(60, 2006, 2024, 0.5))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "completeness") {
		t.Errorf("half-priced dataset should warn about completeness, got %v", warnings)
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999, "$999"},
		{1234, "$1,234"},
		{32000, "$32,000"},
		{1234567, "$1,234,567"},
		{1499.5, "$1,500"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
