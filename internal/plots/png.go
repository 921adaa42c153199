package plots

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/rocketsim/internal/telemetry"
)

const (
	figureWidth = 10 * vg.Inch
	panelHeight = 3.5 * vg.Inch
	figureDPI   = 150
)

// WritePNG renders the named group into <dir>/<name>.png and returns the
// file path.
func WritePNG(dir string, samples []telemetry.Sample, name string) (string, error) {
	g, err := lookup(name)
	if err != nil {
		return "", err
	}
	s, err := g.samples(samples)
	if err != nil {
		return "", err
	}

	rows := make([][]*plot.Plot, len(g.panels))
	for i, p := range g.panels {
		pl, err := figurePanel(s, p)
		if err != nil {
			return "", fmt.Errorf("%s: %w", g.name, err)
		}
		rows[i] = []*plot.Plot{pl}
	}
	rows[0][0].Title.Text = g.title + "\n" + g.panels[0].title

	c := vgimg.NewWith(
		vgimg.UseWH(figureWidth, panelHeight*vg.Length(len(rows))),
		vgimg.UseDPI(figureDPI),
	)
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: len(rows),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 4 * vg.Millimeter,
	}
	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create plot directory: %w", err)
	}
	path := filepath.Join(dir, g.name+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return "", fmt.Errorf("cannot write png: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAll renders every group and the SVG trajectory into dir.
func WriteAll(dir string, samples []telemetry.Sample) ([]string, error) {
	var paths []string
	for _, g := range groups {
		path, err := WritePNG(dir, samples, g.name)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	path, err := WriteSVG(dir, samples)
	if err != nil {
		return paths, err
	}
	return append(paths, path), nil
}

func figurePanel(s []telemetry.Sample, p panel) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = p.title
	pl.X.Label.Text = label(p.x)
	if len(p.ys) == 1 {
		pl.Y.Label.Text = label(p.ys[0])
	} else if u := telemetry.Unit(p.ys[0]); u != "" {
		pl.Y.Label.Text = u
	}
	pl.Add(plotter.NewGrid())

	xs, err := series(s, p.x)
	if err != nil {
		return nil, err
	}
	for i, y := range p.ys {
		ys, err := series(s, y)
		if err != nil {
			return nil, err
		}
		pts := make(plotter.XYs, len(xs))
		for k := range xs {
			pts[k].X = xs[k]
			pts[k].Y = ys[k]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		pl.Add(line)
		if len(p.ys) > 1 {
			pl.Legend.Add(y, line)
		}
	}
	pl.Legend.Top = true
	return pl, nil
}
