package viz

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/flight"
	"github.com/san-kum/rocketsim/internal/telemetry"
)

const (
	canvasWidth  = 60
	canvasHeight = 18
	stripWidth   = 60
	stripHeight  = 6
	frameRate    = 30
)

// speeds are the playback multipliers reachable with +/-.
var speeds = []float64{0.25, 0.5, 1, 2, 5, 10, 20, 50, 100}

var ErrEmptyFlight = errors.New("viz: flight has no telemetry")

type TickMsg time.Time

// Replay is the bubbletea model that plays back a stored flight.
type Replay struct {
	name    string
	samples []telemetry.Sample
	events  []flight.Event

	canvas *Canvas
	view   viewport

	clock   float64 // flight time shown
	idx     int     // last sample at or before clock
	speed   int     // index into speeds
	running bool
}

// NewReplay prepares a replay. The starting speed plays the whole flight in
// roughly thirty seconds.
func NewReplay(name string, samples []telemetry.Sample, events []flight.Event) (Replay, error) {
	if len(samples) == 0 {
		return Replay{}, ErrEmptyFlight
	}

	minX, maxX, maxY := math.Inf(1), math.Inf(-1), 0.0
	for i := range samples {
		d := downrange(&samples[i])
		minX, maxX = math.Min(minX, d), math.Max(maxX, d)
		maxY = math.Max(maxY, samples[i].Z)
	}
	c := NewCanvas(canvasWidth, canvasHeight)

	duration := samples[len(samples)-1].Time - samples[0].Time
	speed := 0
	for speed < len(speeds)-1 && duration/speeds[speed] > 30 {
		speed++
	}

	return Replay{
		name:    name,
		samples: samples,
		events:  events,
		canvas:  c,
		view:    newViewport(c, minX, maxX, maxY),
		clock:   samples[0].Time,
		speed:   speed,
		running: true,
	}, nil
}

// Play runs the replay until the user quits.
func Play(r Replay) error {
	_, err := tea.NewProgram(r).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd { return tick() }

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if m.finished() {
				m.restart()
			} else {
				m.running = !m.running
			}
		case "r":
			m.restart()
		case "+", "=":
			m.speed = min(m.speed+1, len(speeds)-1)
		case "-", "_":
			m.speed = max(m.speed-1, 0)
		}
	case TickMsg:
		if m.running {
			m.advance(speeds[m.speed] / frameRate)
		}
		return m, tick()
	}
	return m, nil
}

// advance moves the playback clock by dt seconds of flight time.
func (m *Replay) advance(dt float64) {
	end := m.samples[len(m.samples)-1].Time
	m.clock = math.Min(m.clock+dt, end)
	m.idx = sort.Search(len(m.samples), func(i int) bool { return m.samples[i].Time > m.clock }) - 1
	m.idx = max(m.idx, 0)
	if m.clock >= end {
		m.running = false
	}
}

func (m *Replay) restart() {
	m.clock = m.samples[0].Time
	m.idx = 0
	m.running = true
}

func (m Replay) finished() bool {
	return m.idx == len(m.samples)-1
}

func (m Replay) current() *telemetry.Sample { return &m.samples[m.idx] }

// lastEvent is the most recent event at or before the playback clock.
func (m Replay) lastEvent() (flight.Event, bool) {
	var last flight.Event
	found := false
	for _, e := range m.events {
		if e.Time > m.clock {
			break
		}
		last, found = e, true
	}
	return last, found
}

func downrange(s *telemetry.Sample) float64 { return math.Hypot(s.X, s.Y) }

// position is the rocket's downrange distance and altitude at the playback
// clock, interpolated between the surrounding samples.
func (m Replay) position() (float64, float64) {
	a := &m.samples[m.idx]
	at := dynamo.State{downrange(a), a.Z}
	if m.finished() {
		return at[0], at[1]
	}
	b := &m.samples[m.idx+1]
	alpha := 0.0
	if b.Time > a.Time {
		alpha = (m.clock - a.Time) / (b.Time - a.Time)
	}
	p := at.Lerp(dynamo.State{downrange(b), b.Z}, alpha)
	return p[0], p[1]
}

// draw renders the ground, the trail up to the current sample and the
// rocket marker.
func (m Replay) draw() {
	m.canvas.Clear()
	gy := m.canvas.Height*4 - 1
	for x := 0; x < m.canvas.Width*2; x += 2 {
		m.canvas.Set(x, gy)
	}

	px, py := m.view.project(downrange(&m.samples[0]), m.samples[0].Z)
	for i := 1; i <= m.idx; i++ {
		x, y := m.view.project(downrange(&m.samples[i]), m.samples[i].Z)
		if x == px && y == py {
			continue
		}
		m.canvas.DrawLine(px, py, x, y)
		px, py = x, y
	}
	x, y := m.view.project(m.position())
	m.canvas.DrawLine(px, py, x, y)
	px, py = x, y
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			m.canvas.Set(px+dx, py+dy)
		}
	}
}

func (m Replay) View() string {
	m.draw()
	s := m.current()

	var status string
	switch {
	case m.finished():
		status = statusDone.Render("LANDED")
		if s.Z > 1 {
			status = statusDone.Render("ENDED")
		}
	case m.running:
		status = statusRunning.Render("PLAYING")
	default:
		status = statusPaused.Render("PAUSED")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	fmt.Fprintf(&b, "%s  x%g\n", status, speeds[m.speed])

	phase, ok := phaseStyle[s.Phase]
	if !ok {
		phase = valueStyle
	}
	var stats strings.Builder
	row := func(label, value string) {
		stats.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("Time", valueStyle.Render(fmt.Sprintf("%.2f s", s.Time)))
	row("Phase", phase.Render(s.Phase))
	row("Altitude", valueStyle.Render(fmt.Sprintf("%.1f m AGL", s.Z)))
	row("Downrange", valueStyle.Render(fmt.Sprintf("%.1f m", downrange(s))))
	row("Speed", valueStyle.Render(fmt.Sprintf("%.1f m/s", s.Speed)))
	row("Vz", valueStyle.Render(fmt.Sprintf("%.1f m/s", s.Vz)))
	row("Mach", valueStyle.Render(fmt.Sprintf("%.3f", s.Mach)))
	row("Thrust", valueStyle.Render(fmt.Sprintf("%.0f N", s.Thrust)))
	if e, ok := m.lastEvent(); ok {
		row("Event", valueStyle.Render(fmt.Sprintf("%s @ %.2f s", e.Name, e.Time)))
	}
	end := m.samples[len(m.samples)-1].Time
	progress := 1.0
	if end > m.samples[0].Time {
		progress = (m.clock - m.samples[0].Time) / (end - m.samples[0].Time)
	}
	stats.WriteString("\n" + ProgressBar(progress, 28))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(stats.String()),
	))
	b.WriteString("\n")

	if m.idx > 0 {
		alt := make([]float64, m.idx+1)
		for i := range alt {
			alt[i] = m.samples[i].Z
		}
		strip := asciigraph.Plot(resample(alt, stripWidth),
			asciigraph.Height(stripHeight),
			asciigraph.Width(stripWidth),
			asciigraph.Caption("altitude (m)"),
		)
		b.WriteString(graphStyle.Render(strip) + "\n")
	}

	b.WriteString(helpStyle.Render("space pause  r restart  +/- speed  q quit"))
	return b.String()
}

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
