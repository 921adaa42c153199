package plots

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/rocketsim/internal/telemetry"
)

var phaseStroke = map[string]string{
	telemetry.PhaseRail:      "#ffffff",
	telemetry.PhasePowered:   "#ff7f0e",
	telemetry.PhaseCoast:     "#1f77b4",
	telemetry.PhaseParachute: "#2ca02c",
}

// TrajectorySVG draws altitude against downrange distance, one path per
// flight phase, with a marker at apogee.
func TrajectorySVG(samples []telemetry.Sample, width, height int) string {
	if len(samples) < 2 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	top := 0
	for i := range samples {
		d := math.Hypot(samples[i].X, samples[i].Y)
		minX, maxX = math.Min(minX, d), math.Max(maxX, d)
		minY, maxY = math.Min(minY, samples[i].Z), math.Max(maxY, samples[i].Z)
		if samples[i].Z > samples[top].Z {
			top = i
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
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	project := func(s *telemetry.Sample) (float64, float64) {
		x := (math.Hypot(s.X, s.Y) - minX) / rangeX * float64(width)
		y := float64(height) - (s.Z-minY)/rangeY*float64(height)
		return x, y
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	start := 0
	for i := 1; i <= len(samples); i++ {
		if i < len(samples) && samples[i].Phase == samples[start].Phase {
			continue
		}
		// segments share their boundary sample so the path stays connected
		end := min(i, len(samples)-1)
		stroke, ok := phaseStroke[samples[start].Phase]
		if !ok {
			stroke = "#00ff00"
		}
		fmt.Fprintf(&sb, `<path class="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, samples[start].Phase, stroke)
		for k := start; k <= end; k++ {
			x, y := project(&samples[k])
			if k == start {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
		start = i
	}

	ax, ay := project(&samples[top])
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="#d62728"/>
<text x="%.1f" y="%.1f" fill="#d62728" font-family="monospace" font-size="11">apogee %.0f m</text>
`, ax, ay, ax+6, ay-6, samples[top].Z)

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG writes <dir>/trajectory.svg.
func WriteSVG(dir string, samples []telemetry.Sample) (string, error) {
	svg := TrajectorySVG(samples, 800, 600)
	if svg == "" {
		return "", fmt.Errorf("%w for trajectory svg: %d", ErrNoSamples, len(samples))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create plot directory: %w", err)
	}
	path := filepath.Join(dir, "trajectory.svg")
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
