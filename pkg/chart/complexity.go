package chart

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lablink-dev/figgen/pkg/dataset"
)

func datedDeps(records []dataset.DependencyRecord) []dataset.DependencyRecord {
	out := make([]dataset.DependencyRecord, 0, len(records))
	for _, r := range records {
		if !r.Date.IsZero() {
			out = append(out, r)
		}
	}
	return out
}

// depsExtent returns the smallest and largest dependency counts plus
// the smallest positive one, which floors the log axis.
func depsExtent(records []dataset.DependencyRecord) (min, max, minPos float64) {
	for i, r := range records {
		v := float64(r.TotalDeps)
		if i == 0 || v < min {
			min = v
		}
		if v > max {
			max = v
		}
		if v > 0 && (minPos == 0 || v < minPos) {
			minPos = v
		}
	}
	return min, max, minPos
}

// drawTrend overlays the dashed centered rolling mean of a series. The
// window is five points, halved for short series.
func drawTrend(buf *bytes.Buffer, xs, ys scale, pts []point, color string, logY bool) {
	window := 5
	if half := len(pts) / 2; half < window {
		window = half
	}
	trend := rollingMean(pts, window)
	coords := make([]string, 0, len(trend))
	for _, p := range trend {
		if logY && p.v <= 0 {
			continue
		}
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", xs.pos(p.t), ys.pos(p.v)))
	}
	if len(coords) < 2 {
		return
	}
	fmt.Fprintf(buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-opacity="0.5" stroke-width="2" stroke-dasharray="6 4"/>`+"\n",
		strings.Join(coords, " "), color)
}

// Complexity renders direct dependency counts over release dates, one
// series per package with a dashed rolling-mean trend for longer ones.
// When counts spread over two orders of magnitude the y axis flips to
// log scale. Packages with a single dated release are left out.
func Complexity(records []dataset.DependencyRecord, opts ...Option) []byte {
	c := newChart(opts...)
	f := newFrame(c.preset)

	var buf bytes.Buffer
	openSVG(&buf, f.w, f.h)

	title := c.title
	if title == "" {
		title = "Scientific Software Complexity Growth Over Time"
	}
	f.drawTitle(&buf, title)
	f.drawBox(&buf)
	f.drawXLabel(&buf, "Year")

	rows := datedDeps(records)
	minDeps, maxDeps, minPos := depsExtent(rows)
	logY := len(rows) > 0 && maxDeps/(minDeps+1) > 100
	ylabel := "Direct Dependencies"
	if logY {
		ylabel += " (log scale)"
	}
	f.drawYLabel(&buf, ylabel, f.fontPx)

	if len(rows) == 0 {
		closeSVG(&buf)
		return buf.Bytes()
	}

	var ys scale
	if logY {
		s := paddedLogScale(minPos, maxDeps, f.bottom, f.top)
		major, _ := logTicks(s.min, s.max)
		for _, v := range major {
			y := s.pos(v)
			f.gridH(&buf, y)
			f.yTick(&buf, y, ftoa(v), 0.9*f.fontPx)
		}
		ys = s
	} else {
		s := paddedScale(minDeps, maxDeps, f.bottom, f.top)
		for _, v := range niceTicks(s.min, s.max, 5) {
			y := s.pos(v)
			f.gridH(&buf, y)
			f.yTick(&buf, y, ftoa(v), 0.9*f.fontPx)
		}
		ys = s
	}

	first, last := timeRange(rows, func(r dataset.DependencyRecord) time.Time { return r.Date })
	xs := paddedScale(timeValue(first), timeValue(last), f.left, f.right)
	for _, t := range []time.Time{first, last} {
		x := xs.pos(timeValue(t))
		f.gridV(&buf, x)
		f.xTick(&buf, x, strconv.Itoa(t.Year()), 0.9*f.fontPx)
	}

	all := collectSeries(rows,
		func(r dataset.DependencyRecord) string { return r.Package },
		func(r dataset.DependencyRecord) (float64, float64) {
			return timeValue(r.Date), float64(r.TotalDeps)
		})
	var entries []legendEntry
	for i, s := range all {
		if len(s.points) < 2 {
			continue
		}
		color := c.color(i)
		drawSeries(&buf, xs, ys, s, color, scatterRadius(30), logY)
		if len(s.points) >= 5 {
			drawTrend(&buf, xs, ys, s.points, color, logY)
		}
		entries = append(entries, legendEntry{label: s.name, color: color, marker: "circle"})
	}
	f.drawLegend(&buf, entries, "upper left", "", f.fontPx-2*pxPerPt)

	closeSVG(&buf)
	return buf.Bytes()
}

// ComplexityFacets renders one dependency panel per category, stacked
// on a shared time axis, each autoscaled to its own counts.
func ComplexityFacets(records []dataset.DependencyRecord, categories []Category, opts ...Option) []byte {
	c := newChart(opts...)
	fontPx := pxPerPt * float64(c.preset.FontPt)
	titlePx := pxPerPt * float64(c.preset.TitlePt)
	w := c.preset.WidthIn * pxPerInch

	rows := datedDeps(records)
	panels := buildFacets(rows, categories,
		func(r dataset.DependencyRecord) string { return r.Package },
		func(r dataset.DependencyRecord) (float64, float64) {
			return timeValue(r.Date), float64(r.TotalDeps)
		})

	h := c.preset.HeightIn * pxPerInch * float64(len(panels)) / 2
	if len(panels) == 0 {
		h = c.preset.HeightIn * pxPerInch
	}

	var buf bytes.Buffer
	openSVG(&buf, w, h)

	title := c.title
	if title == "" {
		title = "Dependency Growth by Category"
	}
	fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
		w/2, 1.4*titlePx, titlePx, escape(title))

	if len(panels) == 0 {
		closeSVG(&buf)
		return buf.Bytes()
	}

	top := 2.2 * titlePx
	panelH := (h - top - 3.2*fontPx) / float64(len(panels))
	first, last := timeRange(rows, func(r dataset.DependencyRecord) time.Time { return r.Date })

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
		f.drawYLabel(&buf, "Dependencies", fontPx-2*pxPerPt)

		lo, hi := seriesExtent(p.series)
		ys := paddedScale(lo, hi, f.bottom, f.top)
		for _, v := range niceTicks(ys.min, ys.max, 4) {
			y := ys.pos(v)
			f.gridH(&buf, y)
			f.yTick(&buf, y, ftoa(v), 0.8*fontPx)
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

func seriesExtent(ser []series) (min, max float64) {
	n := 0
	for _, s := range ser {
		for _, p := range s.points {
			if n == 0 || p.v < min {
				min = p.v
			}
			if p.v > max {
				max = p.v
			}
			n++
		}
	}
	return min, max
}
