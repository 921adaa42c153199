package plots

import (
	"fmt"
	"io"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rocketsim/internal/telemetry"
)

var palette = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Orange,
}

// Terminal writes one asciigraph chart per panel of the named group. The
// horizontal axis is the sample sequence resampled to width columns.
func Terminal(w io.Writer, samples []telemetry.Sample, name string, width, height int) error {
	g, err := lookup(name)
	if err != nil {
		return err
	}
	s, err := g.samples(samples)
	if err != nil {
		return err
	}
	if width <= 0 {
		width = 70
	}
	if height <= 0 {
		height = 12
	}

	if _, err := fmt.Fprintf(w, "%s\n\n", g.title); err != nil {
		return err
	}
	for _, p := range g.panels {
		chart, err := terminalPanel(s, p, width, height)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", chart); err != nil {
			return err
		}
	}
	return nil
}

func terminalPanel(s []telemetry.Sample, p panel, width, height int) (string, error) {
	xs, err := series(s, p.x)
	if err != nil {
		return "", err
	}
	data := make([][]float64, 0, len(p.ys))
	for _, y := range p.ys {
		ys, err := series(s, y)
		if err != nil {
			return "", err
		}
		data = append(data, resample(ys, width))
	}

	labels := make([]string, len(p.ys))
	for i, y := range p.ys {
		labels[i] = label(y)
	}
	caption := fmt.Sprintf("%s: %s over %s %.4g..%.4g",
		p.title, strings.Join(labels, ", "), label(p.x), xs[0], xs[len(xs)-1])

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if len(data) > 1 {
		opts = append(opts,
			asciigraph.SeriesColors(palette[:len(data)]...),
			asciigraph.SeriesLegends(p.ys...),
		)
	}
	return asciigraph.PlotMany(data, opts...), nil
}

// resample picks n evenly spaced values so long flights fit the terminal.
func resample(v []float64, n int) []float64 {
	if len(v) <= n || n < 2 {
		return v
	}
	out := make([]float64, n)
	step := float64(len(v)-1) / float64(n-1)
	for i := range out {
		out[i] = v[int(float64(i)*step+0.5)]
	}
	return out
}
