package chart

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

type point struct {
	t float64
	v float64
}

// series holds one package's points in chronological order.
type series struct {
	name   string
	points []point
}

// collectSeries groups records by key, preserving first-seen key order
// and sorting each group's points by time.
func collectSeries[T any](records []T, key func(T) string, value func(T) (float64, float64)) []series {
	byName := make(map[string]*series)
	var order []string
	for _, r := range records {
		name := key(r)
		s, ok := byName[name]
		if !ok {
			s = &series{name: name}
			byName[name] = s
			order = append(order, name)
		}
		t, v := value(r)
		s.points = append(s.points, point{t, v})
	}
	out := make([]series, 0, len(order))
	for _, name := range order {
		s := byName[name]
		sort.SliceStable(s.points, func(i, j int) bool { return s.points[i].t < s.points[j].t })
		out = append(out, *s)
	}
	return out
}

// facet is one stacked panel: a category and the series inside it.
type facet struct {
	name   string
	series []series
}

// buildFacets splits records into one facet per category that has data.
// Categories without matching records are dropped rather than rendered
// empty.
func buildFacets[T any](records []T, categories []Category, key func(T) string, value func(T) (float64, float64)) []facet {
	var out []facet
	for _, cat := range categories {
		members := make(map[string]struct{}, len(cat.Packages))
		for _, p := range cat.Packages {
			members[p] = struct{}{}
		}
		var subset []T
		for _, r := range records {
			if _, ok := members[key(r)]; ok {
				subset = append(subset, r)
			}
		}
		if len(subset) == 0 {
			continue
		}
		ser := collectSeries(subset, key, value)
		sort.Slice(ser, func(i, j int) bool { return ser[i].name < ser[j].name })
		out = append(out, facet{name: cat.Name, series: ser})
	}
	return out
}

// timeRange returns the earliest and latest timestamps, skipping zero
// dates.
func timeRange[T any](records []T, at func(T) time.Time) (first, last time.Time) {
	for _, r := range records {
		t := at(r)
		if t.IsZero() {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	return first, last
}

// scatterRadius converts a marker area in points squared to a radius in
// pixels.
func scatterRadius(area float64) float64 {
	return math.Sqrt(area/math.Pi) * pxPerPt
}

// drawSeries draws the faint connecting line under a series, then its
// scatter dots. Points outside the positive domain of a log scale are
// dropped.
func drawSeries(buf *bytes.Buffer, xs, ys scale, s series, color string, r float64, logY bool) {
	pts := s.points
	if logY {
		kept := make([]point, 0, len(pts))
		for _, p := range pts {
			if p.v > 0 {
				kept = append(kept, p)
			}
		}
		pts = kept
	}
	if len(pts) > 1 {
		var b strings.Builder
		for i, p := range pts {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.1f,%.1f", xs.pos(p.t), ys.pos(p.v))
		}
		fmt.Fprintf(buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-opacity="0.3" stroke-width="1"/>`+"\n",
			b.String(), color)
	}
	for _, p := range pts {
		fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.6"/>`+"\n",
			xs.pos(p.t), ys.pos(p.v), r, color)
	}
}

// rollingMean returns the centered moving average, trimmed to the
// indexes where the full window fits. Even windows lean one slot to the
// right of center.
func rollingMean(pts []point, window int) []point {
	if window < 1 || len(pts) < window {
		return nil
	}
	lead := (window - 1) / 2
	tail := window / 2
	out := make([]point, 0, len(pts)-window+1)
	for i := lead; i <= len(pts)-1-tail; i++ {
		sum := 0.0
		for j := i - lead; j <= i+tail; j++ {
			sum += pts[j].v
		}
		out = append(out, point{pts[i].t, sum / float64(window)})
	}
	return out
}

// linreg fits y = intercept + slope*x by least squares.
func linreg(x, y []float64) (intercept, slope float64) {
	n := float64(len(x))
	if n == 0 {
		return 0, 0
	}
	var sx, sy, sxx, sxy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxx += x[i] * x[i]
		sxy += x[i] * y[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return sy / n, 0
	}
	slope = (n*sxy - sx*sy) / den
	intercept = (sy - slope*sx) / n
	return intercept, slope
}
