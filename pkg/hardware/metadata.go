package hardware

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dataset attribution, required by the CC BY 4.0 license.
const (
	datasetName = "Epoch AI Machine Learning Hardware Database"
	datasetURL  = "https://epoch.ai/data/machine-learning-hardware"
)

// WriteMetadata writes the cost-trend figure's provenance report: data
// source and license, generation info, dataset and price statistics, and
// completeness figures.
func WriteMetadata(w io.Writer, s Stats, preset string, generatedAt time.Time) error {
	rule := strings.Repeat("=", 70)
	dash := strings.Repeat("-", 70)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\nGPU COST TRENDS METADATA\n%s\n\n", rule, rule)

	fmt.Fprintf(bw, "DATA SOURCE\n%s\n", dash)
	fmt.Fprintf(bw, "Dataset: %s\n", datasetName)
	fmt.Fprintf(bw, "URL: %s\n", datasetURL)
	fmt.Fprintf(bw, "License: CC BY 4.0 (Creative Commons Attribution)\n")
	fmt.Fprintf(bw, "Citation: Epoch AI (2024), 'Data on Machine Learning Hardware',\n")
	fmt.Fprintf(bw, "          Available at: %s\n\n", datasetURL)

	fmt.Fprintf(bw, "GENERATION INFO\n%s\n", dash)
	fmt.Fprintf(bw, "Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Preset: %s\n", preset)
	fmt.Fprintf(bw, "Output Format: svg+png+pdf\n\n")

	fmt.Fprintf(bw, "DATASET STATISTICS\n%s\n", dash)
	fmt.Fprintf(bw, "Total GPUs Analyzed: %d\n", s.TotalGPUs)
	if !s.FirstRelease.IsZero() {
		fmt.Fprintf(bw, "Date Range: %d-%02d to %d-%02d\n",
			s.FirstRelease.Year(), int(s.FirstRelease.Month()),
			s.LastRelease.Year(), int(s.LastRelease.Month()))
	}
	fmt.Fprintf(bw, "Professional GPUs: %d\n", s.ByCategory[CategoryProfessional].Count)
	fmt.Fprintf(bw, "Consumer GPUs: %d\n\n", s.ByCategory[CategoryConsumer].Count)

	fmt.Fprintf(bw, "PRICE STATISTICS\n%s\n", dash)
	if s.Overall.Count > 0 {
		fmt.Fprintf(bw, "Overall Price Range: %s - %s\n", FormatUSD(s.Overall.Min), FormatUSD(s.Overall.Max))
		fmt.Fprintf(bw, "Overall Median: %s\n\n", FormatUSD(s.Overall.Median))
	}
	if prof := s.ByCategory[CategoryProfessional]; prof.Count > 0 {
		fmt.Fprintf(bw, "Professional - Range: %s - %s\n", FormatUSD(prof.Min), FormatUSD(prof.Max))
		fmt.Fprintf(bw, "Professional - Median: %s\n", FormatUSD(prof.Median))
		fmt.Fprintf(bw, "Professional - Count: %d\n\n", prof.Count)
	}
	if cons := s.ByCategory[CategoryConsumer]; cons.Count > 0 {
		fmt.Fprintf(bw, "Consumer - Range: %s - %s\n", FormatUSD(cons.Min), FormatUSD(cons.Max))
		fmt.Fprintf(bw, "Consumer - Median: %s\n", FormatUSD(cons.Median))
		fmt.Fprintf(bw, "Consumer - Count: %d\n\n", cons.Count)
	}

	fmt.Fprintf(bw, "DATA QUALITY\n%s\n", dash)
	fmt.Fprintf(bw, "Price Data Completeness: %.1f%%\n", s.PriceCompleteness*100)
	fmt.Fprintf(bw, "Performance Data Completeness: %.1f%%\n", s.PerformanceCompleteness*100)

	fmt.Fprintf(bw, "\n%s\n", rule)
	return bw.Flush()
}

// ExportMetadata writes the provenance report to path, creating parent
// directories as needed.
func ExportMetadata(path string, s Stats, preset string, generatedAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteMetadata(f, s, preset, generatedAt); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
