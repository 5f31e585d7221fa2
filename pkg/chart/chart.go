// Package chart renders the paper's figures as SVG.
//
// Each renderer computes its geometry from a format preset, writes SVG
// elements into a bytes.Buffer, and returns the bytes for conversion.
// Layout is deterministic; identical inputs produce identical output.
//
// Coordinates are CSS pixels at 96 per inch, so a preset's physical size
// carries through PNG and PDF conversion unchanged.
package chart

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lablink-dev/figgen/pkg/figure"
	"github.com/lablink-dev/figgen/pkg/fonts"
)

// Figure stems under the output directory, shared with the CLI.
const (
	TimeseriesName       = "gpu_reliance_over_time"
	TimeseriesFacetsName = "gpu_reliance_by_category"
	ComplexityName       = "software_complexity_over_time"
	ComplexityFacetsName = "software_complexity_by_category"
	PieName              = "os_distribution"
	TimelineName         = "deployment_impact"
	CostTrendName        = "gpu_cost_trends"
)

const (
	pxPerInch = 96.0
	pxPerPt   = 96.0 / 72.0

	// Approximate glyph width as a fraction of font size, for box sizing.
	charWidth = 0.58
)

// Palette is the colorblind-safe series palette.
var Palette = []string{
	"#0173b2", "#de8f05", "#029e73", "#d55e00", "#cc78bc",
	"#ca9161", "#fbafe4", "#949494", "#ece133", "#56b4e9",
}

// Category is one legend group of packages.
type Category struct {
	Name     string
	Packages []string
}

// Option configures a chart before rendering.
type Option func(*chart)

type chart struct {
	preset  figure.Preset
	title   string
	palette []string
	rubric  bool
	perf    bool
}

// WithPreset selects the format preset. Charts default to the paper
// preset.
func WithPreset(p figure.Preset) Option { return func(c *chart) { c.preset = p } }

// WithTitle overrides the chart's default title.
func WithTitle(title string) Option { return func(c *chart) { c.title = title } }

// WithPalette overrides the series palette.
func WithPalette(colors []string) Option { return func(c *chart) { c.palette = colors } }

// WithoutRubric drops the score rubric box under reliance charts.
func WithoutRubric() Option { return func(c *chart) { c.rubric = false } }

// WithPerformancePanel adds the price-performance panel beside the cost
// trend chart, doubling its width.
func WithPerformancePanel() Option { return func(c *chart) { c.perf = true } }

func newChart(opts ...Option) chart {
	c := chart{preset: figure.Default(), palette: Palette, rubric: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c chart) color(i int) string {
	return c.palette[i%len(c.palette)]
}

// frame is the plot box of one panel: left/top/right/bottom are the box
// edges in canvas coordinates, with top above bottom. x0 shifts the
// panel right when several sit side by side.
type frame struct {
	w, h    float64
	x0      float64
	left    float64
	top     float64
	right   float64
	bottom  float64
	fontPx  float64
	titlePx float64
}

func newFrame(p figure.Preset) frame {
	fontPx := pxPerPt * float64(p.FontPt)
	titlePx := pxPerPt * float64(p.TitlePt)
	w := p.WidthIn * pxPerInch
	h := p.HeightIn * pxPerInch
	return frame{
		w: w, h: h,
		left:   4.6 * fontPx,
		top:    2.2 * titlePx,
		right:  w - 1.4*fontPx,
		bottom: h - 3.2*fontPx,
		fontPx: fontPx, titlePx: titlePx,
	}
}

// scale maps data values onto one canvas axis.
type scale interface {
	pos(v float64) float64
}

// linscale maps [min, max] linearly onto [lo, hi]. For the y axis lo is
// the bottom edge and hi the top, which flips SVG's downward axis.
type linscale struct{ min, max, lo, hi float64 }

func (s linscale) pos(v float64) float64 {
	if s.max == s.min {
		return (s.lo + s.hi) / 2
	}
	return s.lo + (v-s.min)*(s.hi-s.lo)/(s.max-s.min)
}

// logscale maps [min, max] onto [lo, hi] in log10 space. min must be
// positive.
type logscale struct{ min, max, lo, hi float64 }

func (s logscale) pos(v float64) float64 {
	lmin, lmax := math.Log10(s.min), math.Log10(s.max)
	if lmax == lmin {
		return (s.lo + s.hi) / 2
	}
	return s.lo + (math.Log10(v)-lmin)*(s.hi-s.lo)/(lmax-lmin)
}

// paddedScale maps the data span onto the frame with a 5% margin each
// side, matching autoscaled axes.
func paddedScale(min, max, lo, hi float64) linscale {
	if max <= min {
		min, max = min-0.5, min+0.5
	}
	m := 0.05 * (max - min)
	return linscale{min - m, max + m, lo, hi}
}

// paddedLogScale pads in log space instead.
func paddedLogScale(min, max, lo, hi float64) logscale {
	if min <= 0 {
		min = 1
	}
	if max <= min {
		max = 10 * min
	}
	lmin, lmax := math.Log10(min), math.Log10(max)
	m := 0.05 * (lmax - lmin)
	return logscale{math.Pow(10, lmin-m), math.Pow(10, lmax+m), lo, hi}
}

func timeValue(t time.Time) float64 { return float64(t.Unix()) }

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }

// ftoa trims trailing zeros so tick labels read "5" and "2.5" rather
// than "5.0".
func ftoa(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func openSVG(buf *bytes.Buffer, w, h float64) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		w, h, w, h, fonts.Family)
	fmt.Fprintf(buf, `  <rect width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n", w, h)
}

func closeSVG(buf *bytes.Buffer) {
	buf.WriteString("</svg>\n")
}

// drawBox outlines the plot area with light spines.
func (f frame) drawBox(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#cccccc"/>`+"\n",
		f.left, f.top, f.right-f.left, f.bottom-f.top)
}

// drawTitle centers a bold title above the plot box. Multi-line titles
// split on newlines.
func (f frame) drawTitle(buf *bytes.Buffer, title string) {
	lines := strings.Split(title, "\n")
	lineH := 1.2 * f.titlePx
	y := f.top - 0.7*f.titlePx - float64(len(lines)-1)*lineH
	for i, line := range lines {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
			(f.left+f.right)/2, y+float64(i)*lineH, f.titlePx, escape(line))
	}
}

func (f frame) drawXLabel(buf *bytes.Buffer, label string) {
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
		(f.left+f.right)/2, f.bottom+2.5*f.fontPx, f.fontPx, escape(label))
}

func (f frame) drawYLabel(buf *bytes.Buffer, label string, size float64) {
	x := f.x0 + 1.1*f.fontPx
	y := (f.top + f.bottom) / 2
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" transform="rotate(-90 %.1f %.1f)">%s</text>`+"\n",
		x, y, size, x, y, escape(label))
}

func (f frame) xTick(buf *bytes.Buffer, x float64, label string, size float64) {
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333333"/>`+"\n",
		x, f.bottom, x, f.bottom+0.3*f.fontPx)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
		x, f.bottom+1.3*f.fontPx, size, escape(label))
}

func (f frame) yTick(buf *bytes.Buffer, y float64, label string, size float64) {
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333333"/>`+"\n",
		f.left-0.3*f.fontPx, y, f.left, y)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
		f.left-0.5*f.fontPx, y, size, escape(label))
}

func (f frame) gridV(buf *bytes.Buffer, x float64) {
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#b0b0b0" stroke-opacity="0.3"/>`+"\n",
		x, f.top, x, f.bottom)
}

func (f frame) gridH(buf *bytes.Buffer, y float64) {
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#b0b0b0" stroke-opacity="0.3"/>`+"\n",
		f.left, y, f.right, y)
}

// drawYearTicks grids the year positions inside the box, labeling them
// when asked. Shared-axis panels grid every panel but label only the
// last.
func (f frame) drawYearTicks(buf *bytes.Buffer, xs scale, first, last time.Time, size float64, labels bool) {
	for _, year := range yearTicks(first, last) {
		t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		x := xs.pos(timeValue(t))
		if x < f.left-0.5 || x > f.right+0.5 {
			continue
		}
		f.gridV(buf, x)
		if labels {
			f.xTick(buf, x, strconv.Itoa(year), size)
		}
	}
}

// legendEntry is one row of a legend: a swatch plus its label.
type legendEntry struct {
	label  string
	color  string
	marker string // "circle", "square", "swatch", or "" for a plain line
	dashed bool
}

// drawLegend places a boxed legend inside the plot area. corner is
// "upper left" or "upper right"; title is optional.
func (f frame) drawLegend(buf *bytes.Buffer, entries []legendEntry, corner, title string, size float64) {
	if len(entries) == 0 {
		return
	}
	longest := len(title)
	for _, e := range entries {
		if len(e.label) > longest {
			longest = len(e.label)
		}
	}
	lineH := 1.5 * size
	pad := 0.6 * size
	w := 2*pad + 2.2*size + float64(longest)*charWidth*size
	rows := len(entries)
	if title != "" {
		rows++
	}
	h := 2*pad + float64(rows)*lineH - 0.5*size

	var x float64
	if corner == "upper right" {
		x = f.right - w - 0.5*size
	} else {
		x = f.left + 0.5*size
	}
	y := f.top + 0.5*size

	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ffffff" fill-opacity="0.9" stroke="#cccccc"/>`+"\n",
		x, y, w, h)

	cy := y + pad + 0.5*lineH
	if title != "" {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold">%s</text>`+"\n",
			x+pad, cy+0.35*size, size, escape(title))
		cy += lineH
	}
	for _, e := range entries {
		if e.marker != "swatch" {
			dash := ""
			if e.dashed {
				dash = ` stroke-dasharray="6 4"`
			}
			fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"%s/>`+"\n",
				x+pad, cy, x+pad+1.4*size, cy, e.color, dash)
		}
		switch e.marker {
		case "circle":
			fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
				x+pad+0.7*size, cy, 0.32*size, e.color)
		case "square":
			s := 0.6 * size
			fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
				x+pad+0.7*size-s/2, cy-s/2, s, s, e.color)
		case "swatch":
			fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.8" stroke="#ffffff"/>`+"\n",
				x+pad, cy-0.45*size, 1.4*size, 0.9*size, e.color)
		}
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
			x+pad+2.0*size, cy+0.35*size, size, escape(e.label))
		cy += lineH
	}
}

// niceTicks returns rounded tick positions covering [lo, hi] with steps
// of 1, 2, or 5 times a power of ten.
func niceTicks(lo, hi float64, target int) []float64 {
	if hi <= lo || target < 2 {
		return []float64{lo}
	}
	raw := (hi - lo) / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	var step float64
	switch norm := raw / mag; {
	case norm <= 1:
		step = mag
	case norm <= 2:
		step = 2 * mag
	case norm <= 5:
		step = 5 * mag
	default:
		step = 10 * mag
	}
	var ticks []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// yearTicks returns evenly stepped years covering the span, keeping
// the label count near eight.
func yearTicks(first, last time.Time) []int {
	lo, hi := first.Year(), last.Year()
	span := hi - lo
	step := 1
	for _, s := range []int{1, 2, 5, 10, 20} {
		step = s
		if span/s <= 8 {
			break
		}
	}
	var years []int
	start := (lo + step - 1) / step * step
	for y := start; y <= hi; y += step {
		years = append(years, y)
	}
	if len(years) == 0 {
		years = []int{lo}
	}
	return years
}

// logTicks returns decade tick values inside [lo, hi], plus the 2..9
// minor positions between them.
func logTicks(lo, hi float64) (major, minor []float64) {
	if lo <= 0 || hi <= lo {
		return []float64{lo}, nil
	}
	for e := math.Floor(math.Log10(lo)); e <= math.Ceil(math.Log10(hi)); e++ {
		d := math.Pow(10, e)
		if d >= lo && d <= hi {
			major = append(major, d)
		}
		for m := 2.0; m <= 9; m++ {
			if v := m * d; v >= lo && v <= hi {
				minor = append(minor, v)
			}
		}
	}
	return major, minor
}
