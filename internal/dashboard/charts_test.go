package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBarChart(t *testing.T) {
	c := NewBarChart([]string{"a", "b"}, []float64{5, 10}, formatCount)

	require.Len(t, c.Bars, 2)
	assert.Equal(t, "10", c.Max)
	assert.InDelta(t, c.Bars[1].H, 2*c.Bars[0].H, 1e-9)
	assert.InDelta(t, c.Baseline, c.Bars[1].Y+c.Bars[1].H, 1e-9)
	assert.Less(t, c.Bars[0].X, c.Bars[1].X)
	assert.Equal(t, "5", c.Bars[0].Value)
}

func TestNewBarChart_Empty(t *testing.T) {
	c := NewBarChart(nil, nil, formatCount)
	assert.Empty(t, c.Bars)
	assert.Equal(t, chartWidth, c.Width)
}

func TestNewLineChart(t *testing.T) {
	c := NewLineChart([]string{"2018", "2019", "2020"}, []float64{0, 50, 100}, formatCount)

	require.Len(t, c.Points, 3)
	assert.Equal(t, c.Baseline, c.Points[0].Y)
	assert.Equal(t, float64(chartPadding), c.Points[2].Y)
	assert.Equal(t, "32.0,208.0 320.0,120.0 608.0,32.0", c.Polyline)
}

func TestNewLineChart_SinglePoint(t *testing.T) {
	c := NewLineChart([]string{"2025"}, []float64{10}, formatCount)

	require.Len(t, c.Points, 1)
	assert.Equal(t, float64(chartWidth/2), c.Points[0].X)
}
