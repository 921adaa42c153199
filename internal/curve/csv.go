package curve

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadCSV parses a two-column numeric table. A leading non-numeric row is
// treated as a header, blank lines and lines starting with '#' are skipped,
// and extra columns are ignored.
func ReadCSV(r io.Reader) (*Table, error) {
	rows, err := ReadColumns(r, 2)
	if err != nil {
		return nil, err
	}
	pairs := make([][2]float64, len(rows))
	for i, row := range rows {
		pairs[i] = [2]float64{row[0], row[1]}
	}
	return FromPairs(pairs)
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadColumns parses numeric rows with at least minCols columns.
func ReadColumns(r io.Reader, minCols int) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var rows [][]float64
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < minCols {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, minCols, len(record))
		}

		row, ok := parseRow(record)
		if !ok {
			// a header is only allowed before the first data row
			if first {
				first = false
				continue
			}
			return nil, fmt.Errorf("line %d: non-numeric value in %q", line, strings.Join(record, ","))
		}
		first = false
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string) ([]float64, bool) {
	row := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}
