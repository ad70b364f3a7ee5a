// Package export renders recorded runs as standalone SVG charts.
package export

import (
	"fmt"
	"strings"

	"github.com/rcjetpilot/rotors-simulator/internal/storage"
)

const (
	chartWidth  = 800.0
	chartHeight = 240.0
	chartPad    = 30.0
)

// RunSVG renders the angle and effort traces of a run as two stacked
// line charts in one SVG document.
func RunSVG(meta *storage.RunMetadata, samples []storage.Sample) string {
	var sb strings.Builder

	totalHeight := chartHeight*2 + chartPad*3
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="%.0f" y="20" fill="#00ff00" font-family="monospace" font-size="14">%s  %s</text>
`, chartWidth, totalHeight, chartWidth, totalHeight, chartPad, meta.ID, meta.MotorModel))

	angle := make([]float64, len(samples))
	effort := make([]float64, len(samples))
	for i, s := range samples {
		angle[i] = s.Angle
		effort[i] = s.Effort
	}

	writeTrace(&sb, angle, chartPad, "#00ff00", "angle (rad)")
	writeTrace(&sb, effort, chartPad*2+chartHeight, "#ffaa00", "effort (N·m)")

	sb.WriteString("</svg>\n")
	return sb.String()
}

func writeTrace(sb *strings.Builder, data []float64, top float64, color, label string) {
	if len(data) < 2 {
		return
	}

	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span == 0 {
		span = 1
	}

	plotW := chartWidth - 2*chartPad
	fmt.Fprintf(sb, `<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="none" stroke="#333"/>
`, chartPad, top, plotW, chartHeight)
	fmt.Fprintf(sb, `<text x="%.0f" y="%.0f" fill="%s" font-family="monospace" font-size="12">%s  [%.3f, %.3f]</text>
`, chartPad, top-5, color, label, min, max)

	var points strings.Builder
	for i, v := range data {
		x := chartPad + plotW*float64(i)/float64(len(data)-1)
		y := top + chartHeight - chartHeight*(v-min)/span
		if i > 0 {
			points.WriteByte(' ')
		}
		fmt.Fprintf(&points, "%.1f,%.1f", x, y)
	}
	fmt.Fprintf(sb, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1.5"/>
`, points.String(), color)
}
