// Package figure defines the output conventions every generated figure
// shares: format presets, file naming, and the metadata sidecar written
// next to each figure.
package figure

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lablink-dev/figgen/pkg/errors"
)

// Preset fixes the formatting of a figure for one publication context.
// LinePt and MarkerPt size plotted lines and markers in points.
type Preset struct {
	Name        string
	FontPt      int
	TitlePt     int
	DPI         int
	WidthIn     float64
	HeightIn    float64
	LinePt      float64
	MarkerPt    float64
	Description string
}

var presets = []Preset{
	{Name: "paper", FontPt: 14, TitlePt: 16, DPI: 300, WidthIn: 6.5, HeightIn: 5, LinePt: 2, MarkerPt: 6, Description: "Two-column journal layout"},
	{Name: "poster", FontPt: 20, TitlePt: 22, DPI: 300, WidthIn: 12, HeightIn: 9, LinePt: 3, MarkerPt: 10, Description: "Conference poster (readable at distance)"},
	{Name: "presentation", FontPt: 16, TitlePt: 18, DPI: 150, WidthIn: 10, HeightIn: 7.5, LinePt: 2.5, MarkerPt: 8, Description: "Slide deck (16:9 aspect ratio)"},
}

// Presets returns all presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Default returns the preset figures use when none is requested.
func Default() Preset {
	return presets[0]
}

// Names returns the valid preset names in display order.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// ByName looks up a preset by name.
func ByName(name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, errors.New(errors.ErrCodeInvalidPreset,
		"unknown preset %q, valid presets: %s", name, strings.Join(Names(), ", "))
}

// SizeLabel renders the figure dimensions the way metadata records them,
// like "6.5x5.0in".
func (p Preset) SizeLabel() string {
	return fmt.Sprintf("%.1fx%.1fin", p.WidthIn, p.HeightIn)
}

// Stem is the shared file name stem of one figure's outputs, without
// extension.
func Stem(name, preset string) string {
	return name + "_" + preset
}

// FileName names one output file of a figure.
func FileName(name, preset, ext string) string {
	return Stem(name, preset) + "." + ext
}

// MetadataPath returns where a figure's metadata sidecar lives.
func MetadataPath(dir, name, preset string) string {
	return filepath.Join(dir, Stem(name, preset)+"_metadata.txt")
}

// RunDir returns the directory one generation run writes into. With
// timestamping the run nests under a run_20060102_150405 folder, so
// repeated runs never overwrite each other.
func RunDir(base string, timestamped bool, now time.Time) string {
	if !timestamped {
		return base
	}
	return filepath.Join(base, "run_"+now.Format("20060102_150405"))
}
