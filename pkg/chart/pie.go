package chart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/lablink-dev/figgen/pkg/dataset"
)

// Pie renders the OS share breakdown. Wedges start at twelve o'clock
// and run counterclockwise; labels sit outside the rim at each wedge's
// midpoint and print the shares as given, so slices of a partial total
// keep their survey percentages.
func Pie(shares []dataset.OSShare, opts ...Option) []byte {
	c := newChart(opts...)
	fontPx := pxPerPt * float64(c.preset.FontPt)
	titlePx := pxPerPt * float64(c.preset.TitlePt)
	w := c.preset.WidthIn * pxPerInch
	h := c.preset.HeightIn * pxPerInch

	var buf bytes.Buffer
	openSVG(&buf, w, h)

	title := c.title
	if title == "" {
		title = "Operating System Distribution of SLEAP Users"
	}
	fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" text-anchor="middle">%s</text>`+"\n",
		w/2, 1.4*titlePx, titlePx, escape(title))

	total := 0.0
	for _, s := range shares {
		if s.Percent > 0 {
			total += s.Percent
		}
	}
	if total <= 0 {
		closeSVG(&buf)
		return buf.Bytes()
	}

	top := 2.2 * titlePx
	cx := w / 2
	cy := top + (h-top)/2
	r := 0.31 * math.Min(w, h-top)

	angle := 90.0
	for i, s := range shares {
		if s.Percent <= 0 {
			continue
		}
		sweep := 360 * s.Percent / total
		drawWedge(&buf, cx, cy, r, angle, angle+sweep, c.color(i))

		mid := (angle + sweep/2) * math.Pi / 180
		lx := cx + 1.15*r*math.Cos(mid)
		ly := cy - 1.15*r*math.Sin(mid)
		anchor := "middle"
		switch {
		case math.Cos(mid) > 0.2:
			anchor = "start"
		case math.Cos(mid) < -0.2:
			anchor = "end"
		}
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" text-anchor="%s">%s</text>`+"\n",
			lx, ly-0.2*fontPx, fontPx, anchor, escape(s.Name))
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" text-anchor="%s">%.1f%%</text>`+"\n",
			lx, ly+1.0*fontPx, fontPx, anchor, s.Percent)

		angle += sweep
	}

	closeSVG(&buf)
	return buf.Bytes()
}

// drawWedge fills one sector spanning [a1, a2] degrees, measured
// counterclockwise from three o'clock. A full sweep degenerates to a
// circle since a single arc cannot close on itself.
func drawWedge(buf *bytes.Buffer, cx, cy, r, a1, a2 float64, color string) {
	if a2-a1 >= 360-1e-6 {
		fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="#ffffff" stroke-width="2"/>`+"\n",
			cx, cy, r, color)
		return
	}
	rad := func(a float64) float64 { return a * math.Pi / 180 }
	x1 := cx + r*math.Cos(rad(a1))
	y1 := cy - r*math.Sin(rad(a1))
	x2 := cx + r*math.Cos(rad(a2))
	y2 := cy - r*math.Sin(rad(a2))
	large := 0
	if a2-a1 > 180 {
		large = 1
	}
	fmt.Fprintf(buf, `  <path d="M %.1f %.1f L %.1f %.1f A %.1f %.1f 0 %d 0 %.1f %.1f Z" fill="%s" stroke="#ffffff" stroke-width="2"/>`+"\n",
		cx, cy, x1, y1, r, r, large, x2, y2, color)
}
