package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// CSV headers, in column order. Readers reject files whose header differs.
var (
	gpuHeader         = []string{"package", "version", "date", "gpu_score", "cuda_version", "gpu_deps_count", "requires_external_cuda", "source"}
	depsHeader        = []string{"package", "date", "version", "total_dependencies", "source"}
	attributionHeader = []string{"package", "source", "count"}
	osHeader          = []string{"os_name", "percentage"}
	workshopHeader    = []string{"date", "event_name", "location", "participants", "audience_type"}
)

// WriteGPUCSV writes GPU score records as CSV to w. Rows are sorted by
// package, date, then version before writing, so identical inputs always
// produce identical bytes.
func WriteGPUCSV(records []VersionRecord, w io.Writer) error {
	rows := make([]VersionRecord, len(records))
	copy(rows, records)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Package != rows[j].Package {
			return rows[i].Package < rows[j].Package
		}
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Version < rows[j].Version
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(gpuHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			r.Package,
			r.Version,
			r.Date.Format(DateFormat),
			strconv.Itoa(r.GPUScore),
			r.CUDAVersion,
			strconv.Itoa(r.GPUDepsCount),
			strconv.FormatBool(r.RequiresExternalCUDA),
			r.Source,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportGPUCSV writes GPU score records to a CSV file at path, creating
// parent directories as needed.
func ExportGPUCSV(records []VersionRecord, path string) error {
	return exportCSV(path, func(w io.Writer) error { return WriteGPUCSV(records, w) })
}

// ReadGPUCSV decodes GPU score records from CSV data in r.
func ReadGPUCSV(r io.Reader) ([]VersionRecord, error) {
	rows, err := readRows(r, gpuHeader)
	if err != nil {
		return nil, err
	}
	records := make([]VersionRecord, 0, len(rows))
	for i, row := range rows {
		date, err := ParseDate(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		score, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: gpu_score: %w", i+2, err)
		}
		count, err := strconv.Atoi(row[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: gpu_deps_count: %w", i+2, err)
		}
		external, err := strconv.ParseBool(row[6])
		if err != nil {
			return nil, fmt.Errorf("row %d: requires_external_cuda: %w", i+2, err)
		}
		records = append(records, VersionRecord{
			Package:              row[0],
			Version:              row[1],
			Date:                 date,
			GPUScore:             score,
			CUDAVersion:          row[4],
			GPUDepsCount:         count,
			RequiresExternalCUDA: external,
			Source:               row[7],
		})
	}
	return records, nil
}

// ImportGPUCSV reads GPU score records from the CSV file at path.
func ImportGPUCSV(path string) ([]VersionRecord, error) {
	return importCSV(path, ReadGPUCSV)
}

// WriteDependencyCSV writes dependency count records as CSV to w, sorted by
// package, date, then version.
func WriteDependencyCSV(records []DependencyRecord, w io.Writer) error {
	rows := make([]DependencyRecord, len(records))
	copy(rows, records)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Package != rows[j].Package {
			return rows[i].Package < rows[j].Package
		}
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Version < rows[j].Version
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(depsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			r.Package,
			r.Date.Format(DateFormat),
			r.Version,
			strconv.Itoa(r.TotalDeps),
			r.Source,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportDependencyCSV writes dependency records to a CSV file at path.
func ExportDependencyCSV(records []DependencyRecord, path string) error {
	return exportCSV(path, func(w io.Writer) error { return WriteDependencyCSV(records, w) })
}

// ReadDependencyCSV decodes dependency count records from CSV data in r.
func ReadDependencyCSV(r io.Reader) ([]DependencyRecord, error) {
	rows, err := readRows(r, depsHeader)
	if err != nil {
		return nil, err
	}
	records := make([]DependencyRecord, 0, len(rows))
	for i, row := range rows {
		date, err := ParseDate(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		total, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: total_dependencies: %w", i+2, err)
		}
		records = append(records, DependencyRecord{
			Package:   row[0],
			Date:      date,
			Version:   row[2],
			TotalDeps: total,
			Source:    row[4],
		})
	}
	return records, nil
}

// ImportDependencyCSV reads dependency records from the CSV file at path.
func ImportDependencyCSV(path string) ([]DependencyRecord, error) {
	return importCSV(path, ReadDependencyCSV)
}

// WriteAttributionCSV writes per-source record counts as CSV to w, sorted by
// package then source.
func WriteAttributionCSV(counts []SourceCount, w io.Writer) error {
	rows := make([]SourceCount, len(counts))
	copy(rows, counts)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Package != rows[j].Package {
			return rows[i].Package < rows[j].Package
		}
		return rows[i].Source < rows[j].Source
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(attributionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Package, r.Source, strconv.Itoa(r.Count)}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportAttributionCSV writes source counts to a CSV file at path.
func ExportAttributionCSV(counts []SourceCount, path string) error {
	return exportCSV(path, func(w io.Writer) error { return WriteAttributionCSV(counts, w) })
}

// ReadOSCSV decodes operating system share rows from CSV data in r.
func ReadOSCSV(r io.Reader) ([]OSShare, error) {
	rows, err := readRows(r, osHeader)
	if err != nil {
		return nil, err
	}
	shares := make([]OSShare, 0, len(rows))
	for i, row := range rows {
		pct, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: percentage: %w", i+2, err)
		}
		shares = append(shares, OSShare{Name: row[0], Percent: pct})
	}
	return shares, nil
}

// ImportOSCSV reads OS share rows from the CSV file at path.
func ImportOSCSV(path string) ([]OSShare, error) {
	return importCSV(path, ReadOSCSV)
}

// ReadWorkshopCSV decodes workshop rows from CSV data in r.
func ReadWorkshopCSV(r io.Reader) ([]Workshop, error) {
	rows, err := readRows(r, workshopHeader)
	if err != nil {
		return nil, err
	}
	workshops := make([]Workshop, 0, len(rows))
	for i, row := range rows {
		date, err := ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		participants, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: participants: %w", i+2, err)
		}
		workshops = append(workshops, Workshop{
			Date:         date,
			EventName:    row[1],
			Location:     row[2],
			Participants: participants,
			Audience:     row[4],
		})
	}
	return workshops, nil
}

// ImportWorkshopCSV reads workshop rows from the CSV file at path.
func ImportWorkshopCSV(path string) ([]Workshop, error) {
	return importCSV(path, ReadWorkshopCSV)
}

// readRows reads all CSV records from r, validates the header, and returns
// the data rows.
func readRows(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file, expected header %v", header)
	}
	for i, name := range header {
		if all[0][i] != name {
			return nil, fmt.Errorf("unexpected header %v, expected %v", all[0], header)
		}
	}
	return all[1:], nil
}

func exportCSV(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func importCSV[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
