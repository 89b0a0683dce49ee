package dashboard

import (
	"fmt"
	"strings"
)

// Chart geometry for the server-rendered SVG charts.
const (
	chartWidth   = 640
	chartHeight  = 240
	chartPadding = 32
)

type Bar struct {
	X, Y, W, H float64
	Label      string
	Value      string
}

type BarChart struct {
	Width, Height int
	Baseline      float64
	Bars          []Bar
	Max           string
}

// NewBarChart lays out one bar per value, scaled to the largest value.
func NewBarChart(labels []string, values []float64, format func(float64) string) BarChart {
	c := BarChart{Width: chartWidth, Height: chartHeight, Baseline: chartHeight - chartPadding}
	if len(values) == 0 {
		return c
	}
	maxV := 0.0
	for _, v := range values {
		maxV = max(maxV, v)
	}
	c.Max = format(maxV)

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	slot := plotW / float64(len(values))
	gap := min(slot*0.15, 4)
	for i, v := range values {
		h := 0.0
		if maxV > 0 {
			h = v / maxV * plotH
		}
		c.Bars = append(c.Bars, Bar{
			X:     chartPadding + float64(i)*slot + gap/2,
			Y:     c.Baseline - h,
			W:     slot - gap,
			H:     h,
			Label: labels[i],
			Value: format(v),
		})
	}
	return c
}

type Point struct {
	X, Y  float64
	Label string
	Value string
}

type LineChart struct {
	Width, Height int
	Baseline      float64
	Points        []Point
	Polyline      string
	Max           string
}

// NewLineChart spreads values evenly on the x axis, scaled from zero.
func NewLineChart(labels []string, values []float64, format func(float64) string) LineChart {
	c := LineChart{Width: chartWidth, Height: chartHeight, Baseline: chartHeight - chartPadding}
	if len(values) == 0 {
		return c
	}
	maxV := 0.0
	for _, v := range values {
		maxV = max(maxV, v)
	}
	c.Max = format(maxV)

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	step := 0.0
	if len(values) > 1 {
		step = plotW / float64(len(values)-1)
	}
	coords := make([]string, len(values))
	for i, v := range values {
		y := c.Baseline
		if maxV > 0 {
			y -= v / maxV * plotH
		}
		p := Point{X: chartPadding + float64(i)*step, Y: y, Label: labels[i], Value: format(v)}
		if len(values) == 1 {
			p.X = chartWidth / 2
		}
		c.Points = append(c.Points, p)
		coords[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	c.Polyline = strings.Join(coords, " ")
	return c
}
