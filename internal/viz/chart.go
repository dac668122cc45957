package viz

import (
	"github.com/guptarohit/asciigraph"
)

const (
	ChartWidth  = 80
	ChartHeight = 10
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

// Chart plots one series; width and height fall back to the chart defaults
// when not positive.
func Chart(series []float64, width, height int, caption string) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(series, options(width, height, caption)...)
}

// Overlay plots several series on shared axes, each in its own color.
func Overlay(series [][]float64, width, height int, caption string) string {
	if len(series) == 0 {
		return ""
	}
	colors := make([]asciigraph.AnsiColor, len(series))
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	opts := append(options(width, height, caption), asciigraph.SeriesColors(colors...))
	return asciigraph.PlotMany(series, opts...)
}

// ColorName is the name of the color Overlay uses for series i.
func ColorName(i int) string {
	return [...]string{"blue", "red", "green", "yellow", "magenta", "cyan"}[i%len(seriesColors)]
}

func options(width, height int, caption string) []asciigraph.Option {
	if width <= 0 {
		width = ChartWidth
	}
	if height <= 0 {
		height = ChartHeight
	}
	opts := []asciigraph.Option{asciigraph.Height(height), asciigraph.Width(width)}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	return opts
}
