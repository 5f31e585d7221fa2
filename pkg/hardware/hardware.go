// Package hardware loads the Epoch AI Machine Learning Hardware dataset
// and prepares GPU launch-price records for the cost-trend figures.
//
// The dataset ships as a wide CSV; only four columns matter here: hardware
// name, release date, launch price, and FP32 throughput. Relevance and
// category rules track the hardware SLEAP users actually run: datacenter
// cards, plus consumer RTX/GTX cards fast enough for ML workloads.
package hardware

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lablink-dev/figgen/pkg/dataset"
	"github.com/lablink-dev/figgen/pkg/errors"
)

// GPU categories assigned by Filter. Cards matching neither are dropped.
const (
	CategoryProfessional = "professional"
	CategoryConsumer     = "consumer"
)

// Required ml_hardware.csv columns, by exact header name. The export
// carries dozens more; everything else is ignored.
const (
	colName  = "Hardware name"
	colDate  = "Release date"
	colPrice = "Release price (USD)"
	colFP32  = "FP32 (single precision) performance (FLOP/s)"
)

// Consumer cards need this much FP32 throughput to count as ML-capable.
const minConsumerTFLOPS = 5.0

// GPU is one hardware record. Price and FP32TFLOPS are zero when the
// dataset leaves them blank. Category is empty until Filter runs.
type GPU struct {
	Name        string
	ReleaseDate time.Time
	Price       float64
	FP32TFLOPS  float64
	Category    string
}

// Load reads an Epoch AI ml_hardware.csv export from disk. A missing file
// comes back as FILE_NOT_FOUND with download guidance, malformed content
// as PARSE_ERROR, and an implausible release-year range as INVALID_INPUT.
func Load(path string) ([]GPU, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound,
				"GPU dataset not found at %s. Download the Epoch AI Machine Learning Hardware Database from https://epoch.ai/data/machine-learning-hardware and place ml_hardware.csv there", path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()

	gpus, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse %s", path)
	}

	// Rough integrity check: the real dataset spans roughly 2006-2025, so
	// a narrow range means a truncated or wrong file.
	minYear, maxYear := yearRange(gpus)
	if minYear != 0 && (minYear > 2015 || maxYear < 2020) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unexpected date range %d-%d in %s, expected data from roughly 2006-2025", minYear, maxYear, path)
	}
	return gpus, nil
}

// Read decodes GPU records from CSV data in r. The header row locates the
// required columns; rows may carry values for any subset of them.
func Read(r io.Reader) ([]GPU, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range []string{colName, colDate, colPrice, colFP32} {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %s, is this the Epoch AI export?", strings.Join(missing, ", "))
	}

	var gpus []GPU
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		g := GPU{Name: field(row, idx[colName])}
		if s := field(row, idx[colDate]); s != "" {
			t, err := dataset.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			g.ReleaseDate = t
		}
		if s := field(row, idx[colPrice]); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: price %q: %w", line, s, err)
			}
			g.Price = v
		}
		if s := field(row, idx[colFP32]); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: fp32 %q: %w", line, s, err)
			}
			g.FP32TFLOPS = v / 1e12
		}
		gpus = append(gpus, g)
	}
	return gpus, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// MLRelevant reports whether a card belongs in the analysis. Mobile parts
// are out; datacenter parts are in; consumer RTX/GTX parts are in when
// they clear the FP32 floor.
func MLRelevant(g GPU) bool {
	name := strings.ToLower(g.Name)
	for _, x := range []string{"mobile", "laptop", "max-q", "maxq"} {
		if strings.Contains(name, x) {
			return false
		}
	}
	for _, x := range []string{"tesla", "a100", "h100", "v100", "p100", "a6000", "rtx 6000"} {
		if strings.Contains(name, x) {
			return true
		}
	}
	if strings.Contains(name, "rtx") || strings.Contains(name, "gtx") {
		return g.FP32TFLOPS >= minConsumerTFLOPS
	}
	return false
}

// Categorize assigns professional, consumer, or "" for anything else.
// Workstation RTX x000 parts count as professional.
func Categorize(g GPU) string {
	name := strings.ToLower(g.Name)
	for _, x := range []string{
		"tesla", "a100", "h100", "v100", "p100",
		"a6000", "a5000", "a4000",
		"rtx 6000", "rtx 5000", "rtx 4000",
	} {
		if strings.Contains(name, x) {
			return CategoryProfessional
		}
	}
	if strings.Contains(name, "rtx") || strings.Contains(name, "gtx") {
		if !strings.Contains(name, "6000") && !strings.Contains(name, "5000") {
			return CategoryConsumer
		}
	}
	return ""
}

// Filter returns the ML-relevant subset with Category set, dropping cards
// that match neither category.
func Filter(gpus []GPU) []GPU {
	out := make([]GPU, 0, len(gpus))
	for _, g := range gpus {
		if !MLRelevant(g) {
			continue
		}
		g.Category = Categorize(g)
		if g.Category == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}

// yearRange reports the earliest and latest release years, ignoring
// undated records. Both are zero when nothing is dated.
func yearRange(gpus []GPU) (minYear, maxYear int) {
	for _, g := range gpus {
		if g.ReleaseDate.IsZero() {
			continue
		}
		y := g.ReleaseDate.Year()
		if minYear == 0 || y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	return minYear, maxYear
}
