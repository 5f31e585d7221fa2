// Package process turns the raw JSON files a collection run writes into
// the cleaned CSV datasets the plotters read.
//
// Both processors share one shape: load raw files, flatten them into
// records, drop packages with too few data points, then sort and dedup so
// re-running on unchanged input produces byte-identical CSVs. Every
// include or exclude decision lands in a quality report written next to
// the CSV.
package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lablink-dev/figgen/pkg/dataset"
)

// Result summarizes one processing run.
type Result struct {
	Records  int
	Packages int
	Quality  *QualityReport

	TimeseriesPath  string
	ReportPath      string
	AttributionPath string
}

// readRawDir decodes every *.json file in dir. Files that cannot be read
// or parsed are logged and skipped, and a missing directory yields
// nothing. Entries come back in file name order.
func readRawDir[T any](dir string, logger *log.Logger) []T {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("read raw directory", "dir", dir, "err", err)
		}
		return nil
	}

	var out []T
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read raw file", "file", path, "err", err)
			continue
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			logger.Error("parse raw file", "file", path, "err", err)
			continue
		}
		logger.Debug("loaded raw file", "file", e.Name())
		out = append(out, v)
	}
	return out
}

// dedup keeps the first record for every (package, version) pair. Callers
// sort records first, so which record survives is deterministic.
func dedup[T any](records []T, key func(T) (string, string)) []T {
	type pv struct {
		pkg, version string
	}
	seen := make(map[pv]struct{}, len(records))
	kept := make([]T, 0, len(records))
	for _, r := range records {
		pkg, version := key(r)
		k := pv{pkg, version}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	return kept
}

// attribution counts records per (package, source) pair, ordered as first
// seen.
func attribution[T any](records []T, key func(T) (string, string)) []dataset.SourceCount {
	type ps struct {
		pkg, source string
	}
	counts := make(map[ps]int)
	var order []ps
	for _, r := range records {
		pkg, source := key(r)
		k := ps{pkg, source}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	out := make([]dataset.SourceCount, 0, len(order))
	for _, k := range order {
		out = append(out, dataset.SourceCount{Package: k.pkg, Source: k.source, Count: counts[k]})
	}
	return out
}

// span tracks the date range of one package's records.
type span struct {
	first, last time.Time
}

func (s *span) add(d time.Time) {
	if s.first.IsZero() || d.Before(s.first) {
		s.first = d
	}
	if d.After(s.last) {
		s.last = d
	}
}

// qualityEntry builds the include or exclude decision for one package.
func qualityEntry(pkg string, count, minPoints int, dates span) QualityEntry {
	e := QualityEntry{
		Package: pkg,
		Count:   count,
		First:   dates.first,
		Last:    dates.last,
	}
	if count < minPoints {
		e.Status = StatusExcluded
		e.Reason = fmt.Sprintf("Insufficient data points (< %d)", minPoints)
	} else {
		e.Status = StatusIncluded
		e.Reason = "Sufficient data"
	}
	return e
}
