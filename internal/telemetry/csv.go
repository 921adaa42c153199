package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes a header row followed by one row per sample. The phase is
// the last column.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	header := append(Columns(), "phase")
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(columns)+1)
	for k := range samples {
		s := &samples[k]
		for i, c := range columns {
			row[i] = strconv.FormatFloat(*c.get(s), 'g', -1, 64)
		}
		row[len(columns)] = s.Phase
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads samples written by WriteCSV. Columns are matched by header
// name, so files missing newer columns still load.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("telemetry header: %w", err)
	}

	index := make([]int, len(header))
	phaseCol := -1
	for i, name := range header {
		index[i] = -1
		if name == "phase" {
			phaseCol = i
			continue
		}
		if j, ok := byName[name]; ok {
			index[i] = j
		}
	}

	var samples []Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var s Sample
		for i, field := range rec {
			if i == phaseCol {
				s.Phase = field
				continue
			}
			if i >= len(index) || index[i] < 0 {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("telemetry line %d, column %s: %w", line, header[i], err)
			}
			*columns[index[i]].get(&s) = v
		}
		samples = append(samples, s)
	}
	return samples, nil
}
