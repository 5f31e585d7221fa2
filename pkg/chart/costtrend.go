package chart

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lablink-dev/figgen/pkg/hardware"
)

const (
	professionalColor = "#1f77b4"
	consumerColor     = "#89CFF0"
)

// Landmark GPUs called out on the price panel. The year pins each name
// to a launch, since families like the RTX A100 reuse model strings.
var keyModels = []struct {
	name string
	year int
}{
	{"V100", 2017},
	{"2080 Ti", 2018},
	{"A100", 2020},
	{"H100", 2022},
}

const arrowDefs = `  <defs>
    <marker id="arrowhead" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="#333333"/>
    </marker>
  </defs>
`

// CostTrend renders GPU launch prices over their release dates as
// professional and consumer series. WithPerformancePanel doubles the
// canvas width and adds a log-scale price-performance panel with a
// fitted exponential trend.
func CostTrend(gpus []hardware.GPU, opts ...Option) []byte {
	c := newChart(opts...)
	panelW := c.preset.WidthIn * pxPerInch
	w := panelW
	if c.perf {
		w *= 2
	}
	h := c.preset.HeightIn * pxPerInch

	var buf bytes.Buffer
	openSVG(&buf, w, h)
	buf.WriteString(arrowDefs)

	f := newFrame(c.preset)
	f.w, f.h = w, h
	drawPricePanel(&buf, c, f, gpus)
	if c.perf {
		g := f
		g.x0 = panelW
		g.left += panelW
		g.right += panelW
		drawPerformancePanel(&buf, c, g, gpus)
	}

	closeSVG(&buf)
	return buf.Bytes()
}

func drawPricePanel(buf *bytes.Buffer, c chart, f frame, gpus []hardware.GPU) {
	title := c.title
	if title == "" {
		title = "GPU Cost Trends for Scientific Computing"
	}
	f.drawTitle(buf, title)
	f.drawBox(buf)
	f.drawXLabel(buf, "Year")
	f.drawYLabel(buf, "Launch Price (USD)", f.fontPx)

	prof := hardware.TimeSeries(gpus, hardware.CategoryProfessional)
	cons := hardware.TimeSeries(gpus, hardware.CategoryConsumer)
	if len(prof)+len(cons) == 0 {
		return
	}

	var first, last time.Time
	minPrice, maxPrice := math.MaxFloat64, 0.0
	for _, set := range [][]hardware.GPU{prof, cons} {
		for _, g := range set {
			if first.IsZero() || g.ReleaseDate.Before(first) {
				first = g.ReleaseDate
			}
			if g.ReleaseDate.After(last) {
				last = g.ReleaseDate
			}
			if g.Price < minPrice {
				minPrice = g.Price
			}
			if g.Price > maxPrice {
				maxPrice = g.Price
			}
		}
	}

	xs := paddedScale(timeValue(first), timeValue(last), f.left, f.right)
	ys := paddedScale(minPrice, maxPrice, f.bottom, f.top)
	for _, v := range niceTicks(ys.min, ys.max, 6) {
		y := ys.pos(v)
		f.gridH(buf, y)
		f.yTick(buf, y, hardware.FormatUSD(v), 0.9*f.fontPx)
	}
	f.drawYearTicks(buf, xs, first, last, 0.9*f.fontPx, true)

	lw := c.preset.LinePt * pxPerPt
	diam := c.preset.MarkerPt * pxPerPt
	var entries []legendEntry
	if len(prof) > 0 {
		drawPriceSeries(buf, xs, ys, prof, professionalColor, "circle", false, lw, diam)
		entries = append(entries, legendEntry{
			label: "Professional (Tesla, A100, H100)", color: professionalColor, marker: "circle",
		})
	}
	if len(cons) > 0 {
		drawPriceSeries(buf, xs, ys, cons, consumerColor, "square", true, lw, diam)
		entries = append(entries, legendEntry{
			label: "Consumer (RTX/GTX ≥5 TFLOPS)", color: consumerColor, marker: "square", dashed: true,
		})
	}
	f.drawLegend(buf, entries, "upper left", "", 0.9*f.fontPx)

	annotateModels(buf, f, xs, ys, gpus)
}

func drawPriceSeries(buf *bytes.Buffer, xs, ys scale, gpus []hardware.GPU, color, marker string, dashed bool, lw, diam float64) {
	if len(gpus) > 1 {
		coords := make([]string, len(gpus))
		for i, g := range gpus {
			coords[i] = fmt.Sprintf("%.1f,%.1f", xs.pos(timeValue(g.ReleaseDate)), ys.pos(g.Price))
		}
		dash := ""
		if dashed {
			dash = ` stroke-dasharray="8 5"`
		}
		fmt.Fprintf(buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="%.1f" stroke-opacity="0.8"%s/>`+"\n",
			strings.Join(coords, " "), color, lw, dash)
	}
	r := diam / 2
	for _, g := range gpus {
		x, y := xs.pos(timeValue(g.ReleaseDate)), ys.pos(g.Price)
		if marker == "square" {
			fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.8"/>`+"\n",
				x-r, y-r, diam, diam, color)
		} else {
			fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.8"/>`+"\n",
				x, y, r, color)
		}
	}
}

// annotateModels boxes the landmark model names above their points,
// matching on name substring, launch year, and a known price.
func annotateModels(buf *bytes.Buffer, f frame, xs, ys scale, gpus []hardware.GPU) {
	size := f.fontPx - 2*pxPerPt
	for _, m := range keyModels {
		g, ok := findModel(gpus, m.name, m.year)
		if !ok {
			continue
		}
		x := xs.pos(timeValue(g.ReleaseDate))
		y := ys.pos(g.Price)
		tx := x + 13
		ty := y - 13
		bw := float64(len(m.name))*charWidth*size + 0.6*size
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="#ffff00" fill-opacity="0.7"/>`+"\n",
			tx-0.3*size, ty-size, bw, 1.4*size, 0.3*size)
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
			tx, ty, size, escape(m.name))
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333333" marker-end="url(#arrowhead)"/>`+"\n",
			tx, ty+0.4*size, x+1.5, y-1.5)
	}
}

func findModel(gpus []hardware.GPU, name string, year int) (hardware.GPU, bool) {
	needle := strings.ToLower(name)
	for _, g := range gpus {
		if g.Price > 0 && g.ReleaseDate.Year() == year &&
			strings.Contains(strings.ToLower(g.Name), needle) {
			return g, true
		}
	}
	return hardware.GPU{}, false
}

func drawPerformancePanel(buf *bytes.Buffer, c chart, f frame, gpus []hardware.GPU) {
	f.drawTitle(buf, "GPU Price-Performance Evolution")
	f.drawBox(buf)
	f.drawXLabel(buf, "Year")
	f.drawYLabel(buf, "GFLOP/s per USD", f.fontPx)

	type perfPoint struct {
		g    hardware.GPU
		perf float64
	}
	var pts []perfPoint
	var first, last time.Time
	minPerf, maxPerf := math.MaxFloat64, 0.0
	for _, g := range gpus {
		if g.Price <= 0 || g.FP32TFLOPS <= 0 || g.ReleaseDate.IsZero() {
			continue
		}
		p := g.FP32TFLOPS * 1000 / g.Price
		pts = append(pts, perfPoint{g, p})
		if first.IsZero() || g.ReleaseDate.Before(first) {
			first = g.ReleaseDate
		}
		if g.ReleaseDate.After(last) {
			last = g.ReleaseDate
		}
		if p < minPerf {
			minPerf = p
		}
		if p > maxPerf {
			maxPerf = p
		}
	}
	if len(pts) == 0 {
		return
	}

	xs := paddedScale(timeValue(first), timeValue(last), f.left, f.right)
	ys := paddedLogScale(minPerf, maxPerf, f.bottom, f.top)
	major, minor := logTicks(ys.min, ys.max)
	for _, v := range minor {
		f.gridH(buf, ys.pos(v))
	}
	for _, v := range major {
		y := ys.pos(v)
		f.gridH(buf, y)
		f.yTick(buf, y, ftoa(v), 0.9*f.fontPx)
	}
	f.drawYearTicks(buf, xs, first, last, 0.9*f.fontPx, true)

	r := c.preset.MarkerPt * 0.564 * pxPerPt
	var haveProf, haveCons bool
	for _, p := range pts {
		x, y := xs.pos(timeValue(p.g.ReleaseDate)), ys.pos(p.perf)
		switch p.g.Category {
		case hardware.CategoryProfessional:
			haveProf = true
			fmt.Fprintf(buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.7"/>`+"\n",
				x, y, r, professionalColor)
		case hardware.CategoryConsumer:
			haveCons = true
			fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.7"/>`+"\n",
				x-r, y-r, 2*r, 2*r, consumerColor)
		}
	}

	var entries []legendEntry
	if haveProf {
		entries = append(entries, legendEntry{label: "Professional", color: professionalColor, marker: "circle"})
	}
	if haveCons {
		entries = append(entries, legendEntry{label: "Consumer", color: consumerColor, marker: "square"})
	}

	if len(pts) > 5 {
		years := make([]float64, len(pts))
		logs := make([]float64, len(pts))
		for i, p := range pts {
			years[i] = p.g.ReleaseDate.Sub(first).Hours() / 24 / 365.25
			logs[i] = math.Log(p.perf)
		}
		intercept, slope := linreg(years, logs)
		if slope != 0 {
			span := last.Sub(first).Hours() / 24 / 365.25
			lw := c.preset.LinePt * pxPerPt
			fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ff0000" stroke-width="%.1f" stroke-opacity="0.6" stroke-dasharray="8 5"/>`+"\n",
				xs.pos(timeValue(first)), ys.pos(math.Exp(intercept)),
				xs.pos(timeValue(last)), ys.pos(math.Exp(intercept+slope*span)), lw)
			entries = append(entries, legendEntry{
				label:  fmt.Sprintf("Trend (doubles ~%.1f years)", math.Ln2/slope),
				color:  "#ff0000",
				dashed: true,
			})
		}
	}

	f.drawLegend(buf, entries, "upper left", "", 0.9*f.fontPx)
}
