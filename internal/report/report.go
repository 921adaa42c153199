// Package report prints the human-readable summaries of an environment, a
// motor, a rocket and a finished flight.
package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))
)

// printer keeps the first write error so report bodies read as plain prints.
type printer struct {
	w   io.Writer
	err error
}

func newPrinter(w io.Writer) *printer { return &printer{w: w} }

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) title(s string) { p.printf("\n%s\n", titleStyle.Render(s)) }

func (p *printer) header(s string) { p.printf("\n%s\n", headerStyle.Render(s)) }

func (p *printer) note(s string) { p.printf("%s\n", mutedStyle.Render(s)) }

func (p *printer) line(format string, args ...any) { p.printf(format+"\n", args...) }

// table writes tab-separated rows aligned in columns.
func (p *printer) table(header string, rows []string) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, r)
	}
	p.err = tw.Flush()
}

func deg(rad float64) float64 { return rad * 180 / math.Pi }

// or prints "n/a" for values that were never reached.
func or(ok bool, format string, v float64) string {
	if !ok || math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}
