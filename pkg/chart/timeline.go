package chart

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/lablink-dev/figgen/pkg/dataset"
)

// audienceColors keys workshop audiences to fixed bar colors so the
// same audience reads identically across regenerated figures.
var audienceColors = map[string]string{
	"K-12":                   "#1f77b4",
	"K-12 Educators":         "#ff7f0e",
	"Undergraduate/Graduate": "#2ca02c",
	"Undergraduate":          "#2ca02c",
	"Graduate/Faculty":       "#d62728",
	"RSE":                    "#8c564b",
	"Graduate":               "#e377c2",
}

const audienceFallback = "#7f7f7f"

func audienceColor(audience string) string {
	if c, ok := audienceColors[audience]; ok {
		return c
	}
	return audienceFallback
}

// Timeline renders workshops as horizontal bars, earliest at the
// bottom, sized by participant count and colored by audience. The
// title's second line reports the covered date span.
func Timeline(workshops []dataset.Workshop, opts ...Option) []byte {
	c := newChart(opts...)
	fontPx := pxPerPt * float64(c.preset.FontPt)
	titlePx := pxPerPt * float64(c.preset.TitlePt)
	w := c.preset.WidthIn * pxPerInch
	h := c.preset.HeightIn * pxPerInch

	rows := make([]dataset.Workshop, len(workshops))
	copy(rows, workshops)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	var buf bytes.Buffer
	openSVG(&buf, w, h)

	if len(rows) == 0 {
		closeSVG(&buf)
		return buf.Bytes()
	}

	labelPx := fontPx - 3*pxPerPt
	labels := make([]string, len(rows))
	longest := 0
	total := 0
	maxP := 0
	for i, r := range rows {
		name := r.EventName
		if len(name) > 45 {
			name = name[:42] + "..."
		}
		labels[i] = r.Date.Format("Jan 2006") + ": " + name
		if len(labels[i]) > longest {
			longest = len(labels[i])
		}
		total += r.Participants
		if r.Participants > maxP {
			maxP = r.Participants
		}
	}

	f := frame{
		w: w, h: h,
		left:   math.Min(float64(longest)*charWidth*labelPx+1.2*fontPx, 0.55*w),
		top:    3.4 * titlePx,
		right:  w - 1.4*fontPx,
		bottom: h - 3.2*fontPx,
		fontPx: fontPx, titlePx: titlePx,
	}

	title := c.title
	if title == "" {
		title = fmt.Sprintf("LabLink Deployment Impact: %d Workshops, %d Participants\n%s - %s",
			len(rows), total,
			rows[0].Date.Format("January 2006"), rows[len(rows)-1].Date.Format("January 2006"))
	}
	f.drawTitle(&buf, title)
	f.drawBox(&buf)
	f.drawXLabel(&buf, "Number of Participants")

	xs := linscale{min: 0, max: float64(maxP) * 1.15, lo: f.left, hi: f.right}
	for _, v := range niceTicks(0, xs.max, 6) {
		x := xs.pos(v)
		f.gridV(&buf, x)
		f.xTick(&buf, x, ftoa(v), 0.9*fontPx)
	}

	rowH := (f.bottom - f.top) / float64(len(rows))
	barH := 0.8 * rowH
	countPx := fontPx - 2*pxPerPt
	var entries []legendEntry
	seen := map[string]bool{}
	for i, r := range rows {
		yc := f.bottom - (float64(i)+0.5)*rowH
		color := audienceColor(r.Audience)
		if !seen[r.Audience] {
			seen[r.Audience] = true
			entries = append(entries, legendEntry{label: r.Audience, color: color, marker: "swatch"})
		}

		val := float64(r.Participants)
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.8" stroke="#ffffff" stroke-width="1.5"/>`+"\n",
			xs.pos(0), yc-barH/2, xs.pos(val)-xs.pos(0), barH, color)

		if r.Participants > 30 {
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" fill="#ffffff" text-anchor="middle" dominant-baseline="middle">%d</text>`+"\n",
				xs.pos(val/2), yc, countPx, r.Participants)
		} else {
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="bold" dominant-baseline="middle">%d</text>`+"\n",
				xs.pos(val+5), yc, countPx, r.Participants)
		}

		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
			f.left-0.5*fontPx, yc, labelPx, escape(labels[i]))
	}

	f.drawLegend(&buf, entries, "upper right", "Audience Type", fontPx-3*pxPerPt)

	closeSVG(&buf)
	return buf.Bytes()
}
