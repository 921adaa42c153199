package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rocketsim/internal/flight"
	"github.com/san-kum/rocketsim/internal/telemetry"
)

type ExportData struct {
	Run     *Run                 `json:"run"`
	Events  []flight.Event       `json:"events"`
	Columns []string             `json:"columns"`
	Units   []string             `json:"units"`
	Times   []float64            `json:"times"`
	Phases  []string             `json:"phases"`
	Series  map[string][]float64 `json:"series"`
}

// ExportJSON writes a run, its events and its telemetry as one JSON document
// with one array per telemetry column.
func (c *Catalog) ExportJSON(w io.Writer, ref string) error {
	run, events, err := c.Load(ref)
	if err != nil {
		return err
	}
	samples, err := c.LoadTelemetry(ref)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:     run,
		Events:  events,
		Columns: telemetry.Columns(),
		Series:  make(map[string][]float64),
		Phases:  make([]string, len(samples)),
	}
	for i := range samples {
		data.Phases[i] = samples[i].Phase
	}
	for _, name := range data.Columns {
		data.Units = append(data.Units, telemetry.Unit(name))
		data.Series[name] = telemetry.MustSeries(samples, name)
	}
	data.Times = data.Series["time"]

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
