package trace

import (
	"fmt"
	"io"
	"strings"
)

const (
	svgWidth  = 800
	svgHeight = 240
)

// WriteSVG draws the velocity profile as a single path over time.
func (t *Trace) WriteSVG(w io.Writer) error {
	if len(t.Velocity) < 2 {
		return fmt.Errorf("trace: need at least 2 samples to draw, have %d", len(t.Velocity))
	}

	peak := 0.0
	for _, v := range t.Velocity {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}
	// headroom above the peak
	top := peak * 1.1
	last := float64(len(t.Velocity) - 1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="#00ccff" stroke-width="1.5" d="M`,
		svgWidth, svgHeight, svgWidth, svgHeight)

	for i, v := range t.Velocity {
		x := float64(i) / last * svgWidth
		y := svgHeight - v/top*svgHeight
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	fmt.Fprintf(&sb, `"/>
<text x="8" y="16" fill="#888899" font-family="monospace" font-size="12">%s %.3f m -> %.3f m, peak %.3f m/s, %.3f s</text>
</svg>
`, t.Shape, t.Start, t.Target, t.Peak, float64(len(t.Velocity))*t.Interval)

	_, err := io.WriteString(w, sb.String())
	return err
}
