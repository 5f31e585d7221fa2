// Package render converts generated SVG figures into the PNG and PDF
// outputs a paper build consumes, shelling out to rsvg-convert.
package render

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/lablink-dev/figgen/pkg/errors"
)

// screenDPI is the resolution rsvg-convert assumes for unitless SVG
// dimensions, so a preset DPI maps to a zoom factor of dpi/96.
const screenDPI = 96.0

// ToPDF converts SVG bytes to PDF. PDF output is vector, so no DPI
// applies.
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

// ToPNG converts SVG bytes to a PNG rasterized at the given DPI.
func ToPNG(svg []byte, dpi int) ([]byte, error) {
	zoom := float64(dpi) / screenDPI
	return rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.4f", zoom))
}

// WriteAll writes a figure's SVG alongside its PNG and PDF conversions
// under dir, named {stem}.{svg,png,pdf}. It returns the written paths in
// that order.
func WriteAll(dir, stem string, svg []byte, dpi int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	svgPath := filepath.Join(dir, stem+".svg")
	if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", svgPath, err)
	}
	paths := []string{svgPath}

	png, err := ToPNG(svg, dpi)
	if err != nil {
		return nil, err
	}
	pngPath := filepath.Join(dir, stem+".png")
	if err := os.WriteFile(pngPath, png, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", pngPath, err)
	}
	paths = append(paths, pngPath)

	pdf, err := ToPDF(svg)
	if err != nil {
		return nil, err
	}
	pdfPath := filepath.Join(dir, stem+".pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", pdfPath, err)
	}
	return append(paths, pdfPath), nil
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeRender,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "rsvg-convert: %s", errBuf.String())
	}
	return out.Bytes(), nil
}
