package process

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Quality report status labels.
const (
	StatusIncluded = "INCLUDED"
	StatusExcluded = "EXCLUDED"
)

// QualityEntry records the include or exclude decision for one package.
type QualityEntry struct {
	Package string
	Status  string
	Count   int
	Reason  string

	// First and Last bound the package's record dates at decision time.
	// Both are zero when the package had no records at all.
	First time.Time
	Last  time.Time
}

// QualityReport is the human-readable companion to a processed CSV.
type QualityReport struct {
	Title       string
	MinPoints   int
	GeneratedAt time.Time
	Entries     []QualityEntry
}

// Write writes the report as plain text to w.
func (r *QualityReport) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, r.Title)
	fmt.Fprintln(bw, strings.Repeat("=", 50))
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Processing date: %s\n", r.GeneratedAt.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(bw, "Minimum data points required: %d\n", r.MinPoints)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Package Status:")
	fmt.Fprintln(bw, strings.Repeat("-", 50))
	for _, e := range r.Entries {
		points := fmt.Sprintf("%d points", e.Count)
		fmt.Fprintf(bw, "%-20s | %-10s | %-15s | %s\n", e.Package, e.Status, points, e.Reason)
	}
	return bw.Flush()
}

// Export writes the report to path, creating parent directories as needed.
func (r *QualityReport) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := r.Write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Excluded returns the entries for packages that were dropped.
func (r *QualityReport) Excluded() []QualityEntry {
	var out []QualityEntry
	for _, e := range r.Entries {
		if e.Status == StatusExcluded {
			out = append(out, e)
		}
	}
	return out
}
