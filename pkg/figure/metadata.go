package figure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata documents how one figure was generated. A sidecar file with
// this content lands next to every figure so published plots stay
// traceable to their inputs.
type Metadata struct {
	Figure      string
	Preset      string
	RunID       uuid.UUID
	GeneratedAt time.Time
	Sources     []string
	DPI         int
	Size        string

	// Extra holds figure-specific fields such as package lists or date
	// ranges. Keys write in sorted order.
	Extra map[string]string
}

// NewMetadata starts a metadata record for one figure with a fresh run ID.
func NewMetadata(name string, preset Preset, sources ...string) *Metadata {
	return &Metadata{
		Figure:      name,
		Preset:      preset.Name,
		RunID:       uuid.New(),
		GeneratedAt: time.Now(),
		Sources:     sources,
		DPI:         preset.DPI,
		Size:        preset.SizeLabel(),
	}
}

// Write writes the metadata as plain key: value text to w.
func (m *Metadata) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Figure Metadata")
	fmt.Fprintln(bw, strings.Repeat("=", 50))
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "figure: %s\n", m.Figure)
	fmt.Fprintf(bw, "preset: %s\n", m.Preset)
	fmt.Fprintf(bw, "run_id: %s\n", m.RunID)
	fmt.Fprintf(bw, "generated_at: %s\n", m.GeneratedAt.Format("2006-01-02T15:04:05"))
	if len(m.Sources) > 0 {
		fmt.Fprintf(bw, "sources: %s\n", strings.Join(m.Sources, ", "))
	}
	fmt.Fprintf(bw, "dpi: %d\n", m.DPI)
	fmt.Fprintf(bw, "size: %s\n", m.Size)

	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(bw, "%s: %s\n", k, m.Extra[k])
	}
	return bw.Flush()
}

// Export writes the metadata file at path, creating parent directories
// as needed.
func (m *Metadata) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := m.Write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Set records one extra metadata field.
func (m *Metadata) Set(key, value string) *Metadata {
	if m.Extra == nil {
		m.Extra = make(map[string]string)
	}
	m.Extra[key] = value
	return m
}
