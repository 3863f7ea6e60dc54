package trace

import (
	"github.com/guptarohit/asciigraph"
)

const (
	DefaultPlotWidth  = 70
	DefaultPlotHeight = 12
)

// Plot renders series as an ASCII chart. Empty series render as "".
func Plot(series []float64, caption string, width, height int) string {
	if len(series) == 0 {
		return ""
	}
	if width <= 0 {
		width = DefaultPlotWidth
	}
	if height <= 0 {
		height = DefaultPlotHeight
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

func (t *Trace) PlotVelocity(width, height int) string {
	return Plot(t.Velocity, "velocity (m/s)", width, height)
}

func (t *Trace) PlotRotation(width, height int) string {
	return Plot(t.Rotation, "rotation (deg)", width, height)
}
