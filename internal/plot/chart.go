// Package plot renders line charts of grid results as PNG images.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"
)

const (
	DefaultWidth  = 900
	DefaultHeight = 600

	marginLeft   = 80
	marginRight  = 140
	marginTop    = 50
	marginBottom = 60
)

// ErrEmptyChart is returned when no series has a finite point to draw
var ErrEmptyChart = errors.New("chart has no data")

// Series is one labelled curve. NaN values leave a gap.
type Series struct {
	Label string
	X     []float64
	Y     []float64
}

// Chart describes a line chart
type Chart struct {
	Title   string
	XLabel  string
	YLabel  string
	InvertY bool // brighter magnitudes on top
	LogY    bool
	Width   int
	Height  int
	Series  []Series
}

var palette = []color.RGBA{
	{31, 119, 180, 255},
	{255, 127, 14, 255},
	{44, 160, 44, 255},
	{214, 39, 40, 255},
	{148, 103, 189, 255},
	{140, 86, 75, 255},
	{227, 119, 194, 255},
	{127, 127, 127, 255},
	{188, 189, 34, 255},
	{23, 190, 207, 255},
}

// RenderPNG draws the chart and returns the encoded image
func (c Chart) RenderPNG() ([]byte, error) {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}

	xmin, xmax, ymin, ymax, ok := c.bounds()
	if !ok {
		return nil, ErrEmptyChart
	}
	if c.LogY {
		ymin, ymax = math.Log10(ymin), math.Log10(ymax)
	}
	xmin, xmax = pad(xmin, xmax, 0)
	ymin, ymax = pad(ymin, ymax, 0.05)

	left, right := float64(marginLeft), float64(w-marginRight)
	top, bottom := float64(marginTop), float64(h-marginBottom)

	px := func(x float64) float64 { return left + (x-xmin)/(xmax-xmin)*(right-left) }
	py := func(y float64) float64 {
		if c.LogY {
			y = math.Log10(y)
		}
		f := (y - ymin) / (ymax - ymin)
		if c.InvertY {
			return top + f*(bottom-top)
		}
		return bottom - f*(bottom-top)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// grid and tick labels
	dc.SetLineWidth(1)
	for _, t := range ticks(xmin, xmax, 8) {
		x := px(t)
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawLine(x, top, x, bottom)
		dc.Stroke()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(formatTick(t), x, bottom+14, 0.5, 0.5)
	}
	yticks := ticks(ymin, ymax, 6)
	if c.LogY {
		yticks = logTicks(ymin, ymax)
	}
	for _, t := range yticks {
		v := t
		if c.LogY {
			v = math.Pow(10, t)
		}
		y := py(v)
		dc.SetRGB(0.9, 0.9, 0.9)
		dc.DrawLine(left, y, right, y)
		dc.Stroke()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(formatTick(v), left-8, y, 1, 0.5)
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(left, top, right-left, bottom-top)
	dc.Stroke()

	dc.DrawStringAnchored(c.Title, float64(w)/2, top/2, 0.5, 0.5)
	dc.DrawStringAnchored(c.XLabel, (left+right)/2, float64(h)-marginBottom/3, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, 20, (top+bottom)/2)
	dc.DrawStringAnchored(c.YLabel, 20, (top+bottom)/2, 0.5, 0.5)
	dc.Pop()

	for i, s := range c.Series {
		col := palette[i%len(palette)]
		dc.SetColor(col)
		dc.SetLineWidth(2)

		n := min(len(s.X), len(s.Y))
		pen := false
		for j := range n {
			if !c.finite(s.Y[j]) || math.IsNaN(s.X[j]) {
				pen = false
				continue
			}
			x, y := px(s.X[j]), py(s.Y[j])
			if pen {
				dc.LineTo(x, y)
			} else {
				dc.MoveTo(x, y)
				pen = true
			}
		}
		dc.Stroke()

		for j := range n {
			if c.finite(s.Y[j]) && !math.IsNaN(s.X[j]) {
				dc.DrawCircle(px(s.X[j]), py(s.Y[j]), 3)
			}
		}
		dc.Fill()

		// legend
		ly := top + 10 + float64(i)*18
		dc.DrawLine(right+12, ly, right+32, ly)
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(s.Label, right+38, ly, 0, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func (c Chart) finite(y float64) bool {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return false
	}
	return !c.LogY || y > 0
}

func (c Chart) bounds() (xmin, xmax, ymin, ymax float64, ok bool) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, s := range c.Series {
		for j := range min(len(s.X), len(s.Y)) {
			if !c.finite(s.Y[j]) || math.IsNaN(s.X[j]) {
				continue
			}
			xmin, xmax = math.Min(xmin, s.X[j]), math.Max(xmax, s.X[j])
			ymin, ymax = math.Min(ymin, s.Y[j]), math.Max(ymax, s.Y[j])
			ok = true
		}
	}
	return xmin, xmax, ymin, ymax, ok
}

// pad widens [lo, hi] by frac of its span, or by one unit when the span is
// negligible against its magnitude.
func pad(lo, hi, frac float64) (float64, float64) {
	if hi-lo <= 1e-9*max(math.Abs(lo), math.Abs(hi), 1) {
		mid := lo + (hi-lo)/2
		return mid - 1, mid + 1
	}
	d := (hi - lo) * frac
	return lo - d, hi + d
}

// ticks returns round values spanning [lo, hi], about n of them
func ticks(lo, hi float64, n int) []float64 {
	raw := (hi - lo) / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{2, 5, 10} {
		if raw/mag > m/1.5 {
			step = m * mag
		}
	}
	var out []float64
	start := math.Ceil(lo/step) * step
	for i := 0; i <= 4*n; i++ {
		t := start + float64(i)*step
		if t > hi+step*1e-9 || (i > 0 && t == out[len(out)-1]) {
			break
		}
		out = append(out, t)
	}
	return out
}

// logTicks returns the integer decades within [lo, hi] (log10 space)
func logTicks(lo, hi float64) []float64 {
	var out []float64
	for d := math.Ceil(lo); d <= hi; d++ {
		out = append(out, d)
	}
	if len(out) == 0 {
		return ticks(lo, hi, 4)
	}
	return out
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
