package atmosphere

import (
	"fmt"
	"io"
	"os"

	"github.com/san-kum/rocketsim/internal/curve"
)

// Profile is a tabulated atmosphere by height above sea level.
type Profile struct {
	Pressure    *curve.Table
	Temperature *curve.Table
	WindU       *curve.Table
	WindV       *curve.Table
}

// ReadSounding parses rows of height,pressure,temperature[,wind_u,wind_v].
func ReadSounding(r io.Reader) (*Profile, error) {
	rows, err := curve.ReadColumns(r, 3)
	if err != nil {
		return nil, fmt.Errorf("sounding: %w", err)
	}

	var h, p, t, u, v []float64
	for _, row := range rows {
		h = append(h, row[0])
		p = append(p, row[1])
		t = append(t, row[2])
		if len(row) >= 5 {
			u = append(u, row[3])
			v = append(v, row[4])
		}
	}

	prof := &Profile{}
	if prof.Pressure, err = curve.New(h, p); err != nil {
		return nil, fmt.Errorf("sounding pressure: %w", err)
	}
	if prof.Temperature, err = curve.New(h, t); err != nil {
		return nil, fmt.Errorf("sounding temperature: %w", err)
	}
	if len(u) == len(h) {
		if prof.WindU, err = curve.New(h, u); err != nil {
			return nil, fmt.Errorf("sounding wind u: %w", err)
		}
		if prof.WindV, err = curve.New(h, v); err != nil {
			return nil, fmt.Errorf("sounding wind v: %w", err)
		}
	}
	return prof, nil
}

func ReadSoundingFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ReadSounding(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
