// Package export renders stored runs into standalone documents.
package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/carbonbox/internal/dynamo"
)

// Palette cycles through series strokes.
var Palette = []string{"#00d7ff", "#ffaf00", "#5fff87", "#ff5f87", "#af87ff", "#d7d7d7"}

// SeriesToSVG draws each series against times as a polyline on shared axes,
// with a legend line per label in the top left corner.
func SeriesToSVG(times []float64, series [][]float64, labels []string, width, height int) (string, error) {
	if len(times) < 2 {
		return "", dynamo.Shapef("svg", "need at least 2 samples, got %d", len(times))
	}
	if len(series) == 0 {
		return "", dynamo.Shapef("svg", "no series to draw")
	}
	for i, s := range series {
		if len(s) != len(times) {
			return "", dynamo.Shapef("svg", "series %d has %d samples, want %d", i, len(s), len(times))
		}
	}
	if width <= 0 || height <= 0 {
		return "", dynamo.Configf("svg", "size must be positive, got %dx%d", width, height)
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := series[0][0], series[0][0]
	for _, s := range series {
		for _, v := range s {
			minY, maxY = min(minY, v), max(maxY, v)
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, s := range series {
		color := Palette[i%len(Palette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
		for j, v := range s {
			x := (times[j] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	for i, label := range labels {
		if i >= len(series) {
			break
		}
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*i, Palette[i%len(Palette)], html.EscapeString(label))
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}
