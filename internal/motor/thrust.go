package motor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/rocketsim/internal/curve"
)

var ErrEmptyThrust = errors.New("motor: thrust curve has no data points")

// ThrustCurve is a thrust-time table plus whatever the source file says about
// the motor. Header fields are zero for plain CSV curves.
type ThrustCurve struct {
	Name      string
	Diameter  float64 // m
	Length    float64 // m
	Delays    string
	PropMass  float64 // kg
	TotalMass float64 // kg
	Maker     string
	Source    string

	Table *curve.Table
}

// LoadThrust reads a .eng file or a two-column CSV depending on the extension.
func LoadThrust(path string) (*ThrustCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadThrust(f, path)
}

// ReadThrust picks the format from name's extension. name is kept as the
// curve's source.
func ReadThrust(r io.Reader, name string) (*ThrustCurve, error) {
	var tc *ThrustCurve
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".eng", ".rse":
		tc, err = ReadEng(r)
	default:
		tc, err = ReadThrustCSV(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tc.Source = name
	return tc, nil
}

// ReadEng parses a RASP engine file: ';' comments, one header line
// "name diameter(mm) length(mm) delays prop-mass(kg) total-mass(kg) maker",
// then "time thrust" rows.
func ReadEng(r io.Reader) (*ThrustCurve, error) {
	sc := bufio.NewScanner(r)
	tc := &ThrustCurve{}
	var ts, fs []float64
	header := false

	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if i := strings.IndexByte(text, ';'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		if !header {
			if len(fields) < 7 {
				return nil, fmt.Errorf("line %d: header needs 7 fields, got %d", line, len(fields))
			}
			nums, err := parseFloats(fields[1:3], fields[4:6])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			tc.Name = fields[0]
			tc.Diameter = nums[0] / 1000
			tc.Length = nums[1] / 1000
			tc.Delays = fields[3]
			tc.PropMass = nums[2]
			tc.TotalMass = nums[3]
			tc.Maker = strings.Join(fields[6:], " ")
			header = true
			continue
		}

		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected time and thrust", line)
		}
		nums, err := parseFloats(fields[:2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ts = append(ts, nums[0])
		fs = append(fs, nums[1])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !header || len(ts) == 0 {
		return nil, ErrEmptyThrust
	}

	table, err := thrustTable(ts, fs)
	if err != nil {
		return nil, err
	}
	tc.Table = table
	return tc, nil
}

func ReadThrustCSV(r io.Reader) (*ThrustCurve, error) {
	rows, err := curve.ReadColumns(r, 2)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyThrust
	}
	ts := make([]float64, len(rows))
	fs := make([]float64, len(rows))
	for i, row := range rows {
		ts[i], fs[i] = row[0], row[1]
	}
	table, err := thrustTable(ts, fs)
	if err != nil {
		return nil, err
	}
	return &ThrustCurve{Table: table}, nil
}

// thrustTable prefixes the curve with (0, 0) when it starts later.
func thrustTable(ts, fs []float64) (*curve.Table, error) {
	if ts[0] > 0 {
		ts = append([]float64{0}, ts...)
		fs = append([]float64{0}, fs...)
	}
	for i, f := range fs {
		if f < 0 {
			return nil, fmt.Errorf("motor: negative thrust %g at t=%g", f, ts[i])
		}
	}
	return curve.New(ts, fs)
}

func parseFloats(groups ...[]string) ([]float64, error) {
	var out []float64
	for _, g := range groups {
		for _, s := range g {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", s)
			}
			out = append(out, v)
		}
	}
	return out, nil
}
