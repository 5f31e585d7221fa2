package hardware

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/lablink-dev/figgen/pkg/errors"
)

// PriceStats summarizes launch prices for one slice of the dataset.
type PriceStats struct {
	Count  int
	Min    float64
	Max    float64
	Median float64
}

// Stats carries the dataset summary the metadata report prints.
// Completeness values are fractions of TotalGPUs. ByCategory counts only
// priced cards, so its counts can undershoot the filtered set.
type Stats struct {
	TotalGPUs               int
	FirstRelease            time.Time
	LastRelease             time.Time
	PriceCompleteness       float64
	PerformanceCompleteness float64
	Overall                 PriceStats
	ByCategory              map[string]PriceStats
}

// ComputeStats summarizes a filtered dataset.
func ComputeStats(gpus []GPU) Stats {
	s := Stats{
		TotalGPUs:  len(gpus),
		ByCategory: make(map[string]PriceStats),
	}
	for _, g := range gpus {
		if g.ReleaseDate.IsZero() {
			continue
		}
		if s.FirstRelease.IsZero() || g.ReleaseDate.Before(s.FirstRelease) {
			s.FirstRelease = g.ReleaseDate
		}
		if g.ReleaseDate.After(s.LastRelease) {
			s.LastRelease = g.ReleaseDate
		}
	}

	priced := make([]float64, 0, len(gpus))
	byCategory := make(map[string][]float64)
	performed := 0
	for _, g := range gpus {
		if g.Price > 0 {
			priced = append(priced, g.Price)
			byCategory[g.Category] = append(byCategory[g.Category], g.Price)
		}
		if g.FP32TFLOPS > 0 {
			performed++
		}
	}
	if len(gpus) > 0 {
		s.PriceCompleteness = float64(len(priced)) / float64(len(gpus))
		s.PerformanceCompleteness = float64(performed) / float64(len(gpus))
	}

	s.Overall = priceStats(priced)
	for _, category := range []string{CategoryProfessional, CategoryConsumer} {
		s.ByCategory[category] = priceStats(byCategory[category])
	}
	return s
}

func priceStats(prices []float64) PriceStats {
	if len(prices) == 0 {
		return PriceStats{}
	}
	ps := PriceStats{Count: len(prices), Min: prices[0], Max: prices[0]}
	for _, p := range prices[1:] {
		ps.Min = math.Min(ps.Min, p)
		ps.Max = math.Max(ps.Max, p)
	}
	ps.Median = median(prices)
	return ps
}

// median interpolates between the two middle values for even counts.
func median(vals []float64) float64 {
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

// TimeSeries returns priced, dated records sorted by release date,
// restricted to one category when category is non-empty. The result is a
// fresh slice ready for plotting.
func TimeSeries(gpus []GPU, category string) []GPU {
	out := make([]GPU, 0, len(gpus))
	for _, g := range gpus {
		if category != "" && g.Category != category {
			continue
		}
		if g.Price <= 0 || g.ReleaseDate.IsZero() {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReleaseDate.Before(out[j].ReleaseDate)
	})
	return out
}

// Validate checks that a filtered dataset is substantial enough to plot.
// Too few cards is an error; thin coverage comes back as warnings for the
// caller to log.
func Validate(gpus []GPU) ([]string, error) {
	if len(gpus) < 50 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"insufficient data: only %d GPUs after filtering, expected at least 50 for meaningful visualization", len(gpus))
	}

	var warnings []string
	minYear, maxYear := yearRange(gpus)
	if minYear > 2010 {
		warnings = append(warnings, fmt.Sprintf("limited historical coverage: earliest GPU is from %d (expected 2010 or earlier)", minYear))
	}
	if maxYear < 2023 {
		warnings = append(warnings, fmt.Sprintf("potentially outdated data: latest GPU is from %d (expected 2023 or later)", maxYear))
	}

	priced := 0
	for _, g := range gpus {
		if g.Price > 0 {
			priced++
		}
	}
	if completeness := float64(priced) / float64(len(gpus)); completeness < 0.7 {
		warnings = append(warnings, fmt.Sprintf("low price data completeness: %.1f%%, some GPUs will be excluded from visualization", completeness*100))
	}
	return warnings, nil
}

// FormatUSD renders a price as whole dollars with thousands separators,
// e.g. 32000 as "$32,000".
func FormatUSD(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return "$" + s
}
