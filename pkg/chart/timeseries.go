package chart

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lablink-dev/figgen/pkg/dataset"
)

// Scale rubric shown under the reliance charts. The poster copy spells
// each level out; the smaller formats keep to one line.
var rubrics = map[string]struct {
	text string
	pt   float64
}{
	"paper": {
		"GPU Dependency Scale: 0=No GPU support  |  1=Optional (extras)  |  2=Recommended  |  3=Practical required  |  4=Hard required  |  5=GPU-first",
		8,
	},
	"poster": {
		"GPU Dependency Scale:\n" +
			"0 = No GPU support  |  1 = Optional (in extras only)  |  2 = Recommended (slow without)  |  3 = Practical required (bundled CUDA)\n" +
			"4 = Hard required (install fails without CUDA)  |  5 = GPU-first (designed exclusively for GPU, no CPU fallback)",
		14,
	},
	"presentation": {
		"GPU Dependency Scale: 0=No support  |  1=Optional  |  2=Recommended  |  3=Practical required  |  4=Hard required  |  5=GPU-first",
		11,
	},
}

func rubricFor(preset string) (string, float64) {
	r, ok := rubrics[preset]
	if !ok {
		r = rubrics["paper"]
	}
	return r.text, r.pt * pxPerPt
}

// drawRubric draws the italic wheat box centered at the canvas bottom
// and returns the vertical space it claims, so the plot box above can
// shrink to make room.
func drawRubric(buf *bytes.Buffer, w, h float64, text string, fontPx float64) float64 {
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		if len(l) > longest {
			longest = len(l)
		}
	}
	pad := 0.8 * fontPx
	lineH := 1.4 * fontPx
	bw := math.Min(float64(longest)*charWidth*fontPx+2*pad, 0.96*w)
	bh := 2*pad + float64(len(lines))*lineH - 0.4*fontPx
	bx := (w - bw) / 2
	by := h - 0.6*fontPx - bh
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="#f5deb3" fill-opacity="0.3"/>`+"\n",
		bx, by, bw, bh, 0.5*fontPx)
	ty := by + pad + fontPx
	for i, line := range lines {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-style="italic" text-anchor="middle">%s</text>`+"\n",
			w/2, ty+float64(i)*lineH, fontPx, escape(line))
	}
	return bh + 1.4*fontPx
}

func datedVersions(records []dataset.VersionRecord) []dataset.VersionRecord {
	out := make([]dataset.VersionRecord, 0, len(records))
	for _, r := range records {
		if !r.Date.IsZero() {
			out = append(out, r)
		}
	}
	return out
}

// Timeseries renders GPU reliance scores over release dates, one
// colored series per package. Packages with a single dated release are
// left out. A rubric box under the chart explains the 0-5 scale unless
// disabled.
func Timeseries(records []dataset.VersionRecord, opts ...Option) []byte {
	c := newChart(opts...)
	f := newFrame(c.preset)

	var buf bytes.Buffer
	openSVG(&buf, f.w, f.h)

	if c.rubric {
		text, px := rubricFor(c.preset.Name)
		f.bottom -= drawRubric(&buf, f.w, f.h, text, px)
	}

	title := c.title
	if title == "" {
		title = "GPU Hardware Reliance in Scientific Software Over Time"
	}
	f.drawTitle(&buf, title)
	f.drawBox(&buf)
	f.drawXLabel(&buf, "Year")
	f.drawYLabel(&buf, "GPU Dependency Level (0=None, 5=GPU-First)", f.fontPx)

	ys := linscale{min: -0.5, max: 5.5, lo: f.bottom, hi: f.top}
	for v := 0; v <= 5; v++ {
		y := ys.pos(float64(v))
		f.gridH(&buf, y)
		f.yTick(&buf, y, strconv.Itoa(v), 0.9*f.fontPx)
	}

	rows := datedVersions(records)
	first, last := timeRange(rows, func(r dataset.VersionRecord) time.Time { return r.Date })
	if !first.IsZero() {
		xs := paddedScale(timeValue(first), timeValue(last), f.left, f.right)
		for _, t := range []time.Time{first, last} {
			x := xs.pos(timeValue(t))
			f.gridV(&buf, x)
			f.xTick(&buf, x, strconv.Itoa(t.Year()), 0.9*f.fontPx)
		}

		all := collectSeries(rows,
			func(r dataset.VersionRecord) string { return r.Package },
			func(r dataset.VersionRecord) (float64, float64) {
				return timeValue(r.Date), float64(r.GPUScore)
			})
		var entries []legendEntry
		for i, s := range all {
			if len(s.points) < 2 {
				continue
			}
			color := c.color(i)
			drawSeries(&buf, xs, ys, s, color, scatterRadius(30), false)
			entries = append(entries, legendEntry{label: s.name, color: color, marker: "circle"})
		}
		f.drawLegend(&buf, entries, "upper left", "", f.fontPx-2*pxPerPt)
	}

	closeSVG(&buf)
	return buf.Bytes()
}

// TimeseriesFacets renders one reliance panel per category, stacked on
// a shared time axis. Categories without data are dropped and the
// canvas height scales with the panel count. Unlike Timeseries,
// single-release packages stay in.
func TimeseriesFacets(records []dataset.VersionRecord, categories []Category, opts ...Option) []byte {
	c := newChart(opts...)
	fontPx := pxPerPt * float64(c.preset.FontPt)
	titlePx := pxPerPt * float64(c.preset.TitlePt)
	w := c.preset.WidthIn * pxPerInch

	rows := datedVersions(records)
	panels := buildFacets(rows, categories,
		func(r dataset.VersionRecord) string { return r.Package },
		func(r dataset.VersionRecord) (float64, float64) {
			return timeValue(r.Date), float64(r.GPUScore)
		})

	h := c.preset.HeightIn * pxPerInch * float64(len(panels)) / 2
	if len(panels) == 0 {
		h = c.preset.HeightIn * pxPerInch
	}

	var buf bytes.Buffer
	openSVG(&buf, w, h)

	title := c.title
	if title == "" {
		title = "GPU Dependency Growth by Scientific Domain"
	}
	fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
		w/2, 1.4*titlePx, titlePx, escape(title))

	if len(panels) == 0 {
		closeSVG(&buf)
		return buf.Bytes()
	}

	rubricH := 0.0
	if c.rubric {
		text, px := rubricFor(c.preset.Name)
		rubricH = drawRubric(&buf, w, h, text, px)
	}

	top := 2.2 * titlePx
	panelH := (h - top - 3.2*fontPx - rubricH) / float64(len(panels))
	first, last := timeRange(rows, func(r dataset.VersionRecord) time.Time { return r.Date })

	for i, p := range panels {
		f := frame{
			w: w, h: h,
			left:   4.6 * fontPx,
			top:    top + float64(i)*panelH + 1.7*fontPx,
			right:  w - 1.4*fontPx,
			bottom: top + float64(i+1)*panelH - 0.7*fontPx,
			fontPx: fontPx, titlePx: titlePx,
		}
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
			(f.left+f.right)/2, f.top-0.6*fontPx, fontPx, escape(p.name))
		f.drawBox(&buf)
		f.drawYLabel(&buf, "GPU Level", fontPx-2*pxPerPt)

		ys := linscale{min: -0.5, max: 5.5, lo: f.bottom, hi: f.top}
		for v := 0; v <= 5; v++ {
			y := ys.pos(float64(v))
			f.gridH(&buf, y)
			f.yTick(&buf, y, strconv.Itoa(v), 0.8*fontPx)
		}

		xs := paddedScale(timeValue(first), timeValue(last), f.left, f.right)
		var entries []legendEntry
		for j, s := range p.series {
			color := c.color(j)
			drawSeries(&buf, xs, ys, s, color, scatterRadius(25), false)
			entries = append(entries, legendEntry{label: s.name, color: color, marker: "circle"})
		}
		f.drawLegend(&buf, entries, "upper left", "", fontPx-4*pxPerPt)

		isLast := i == len(panels)-1
		f.drawYearTicks(&buf, xs, first, last, 0.8*fontPx, isLast)
		if isLast {
			f.drawXLabel(&buf, "Year")
		}
	}

	closeSVG(&buf)
	return buf.Bytes()
}
