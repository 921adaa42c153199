package config

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

//go:embed data
var presetData embed.FS

func presetFS() fs.FS {
	sub, err := fs.Sub(presetData, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Presets are the built-in missions. Each call returns a fresh copy.
var Presets = map[string]func() *Mission{
	"o5500x":          o5500x,
	"o5500x-vertical": o5500xVertical,
}

// o5500x is a 98 mm airframe on an AeroTech O5500X from Cape Canaveral's
// latitude, launched tomorrow at noon UTC.
func o5500x() *Mission {
	noise := [3]float64{0, 8.3, 0.5}
	return &Mission{
		Name: "o5500x",
		Environment: EnvironmentConfig{
			Latitude:   28.562106,
			Longitude:  80.577180,
			Elevation:  3,
			Date:       "tomorrow",
			Hour:       12,
			Atmosphere: AtmosphereConfig{Type: "standard"},
		},
		Motor: MotorConfig{
			ThrustSource:            "AeroTech_O5500X-PS.eng",
			DryMass:                 7.001,
			DryInertia:              [3]float64{1.31, 1.31, 0.0084},
			NozzleRadius:            0.025,
			ThroatRadius:            0.012,
			GrainNumber:             1,
			GrainDensity:            1815,
			GrainOuterRadius:        0.049,
			GrainInitialInnerRadius: 0.020,
			GrainInitialHeight:      1.466,
			GrainSeparation:         0,
			GrainsCenterOfMass:      0.733,
			CenterOfDryMass:         0.75,
			NozzlePosition:          0,
			BurnTime:                [2]float64{0, 3.997},
			Orientation:             "nozzle_to_combustion_chamber",
		},
		Rocket: RocketConfig{
			Radius:                   0.049,
			Mass:                     4.0,
			Inertia:                  [3]float64{5.3, 5.3, 0.005},
			PowerOffDrag:             "drag_off.csv",
			PowerOnDrag:              "drag_on.csv",
			CenterOfMassWithoutMotor: 1.0,
			Orientation:              "tail_to_nose",
			MotorPosition:            -1,
			RailButtons:              &RailButtonsConfig{Upper: 0.90, Lower: 0.20, AngularPosition: 45},
			Nose:                     &NoseConfig{Length: 0.55, Kind: "von karman", Position: 1.50},
			Fins: []FinsConfig{{
				N: 4, RootChord: 0.18, TipChord: 0.08, Span: 0.12, Position: 0.20,
				Airfoil: &AirfoilConfig{File: "NACA0012_clean.csv", Unit: "radians"},
			}},
			Tails: []TailConfig{{TopRadius: 0.049, BottomRadius: 0.035, Length: 0.08, Position: 0.10}},
			Parachutes: []ParachuteConfig{
				{Name: "main", CdS: 10, Trigger: "300", SamplingRate: 105, Lag: 1.5, Noise: noise},
				{Name: "drogue", CdS: 1, Trigger: "apogee", SamplingRate: 105, Lag: 1.5, Noise: noise},
			},
		},
		Flight: FlightConfig{
			RailLength:  5.2,
			Inclination: 85,
			Heading:     0,
			// drogue descent from apogee outlasts the default
			MaxTime: 1500,
		},
		fsys: presetFS(),
	}
}

func o5500xVertical() *Mission {
	m := o5500x()
	m.Name = "o5500x-vertical"
	m.Flight.Inclination = 90
	return m
}

func GetPreset(name string) *Mission {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WritePreset writes a preset as <dir>/<name>.yaml next to copies of its
// data files, so it can be edited and run as a mission file.
func WritePreset(name, dir string) (string, error) {
	m := GetPreset(name)
	if m == nil {
		return "", fmt.Errorf("unknown preset: %s (available: %v)", name, ListPresets())
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	err := fs.WalkDir(m.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(m.fsys, path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, path), data, 0644)
	})
	if err != nil {
		return "", fmt.Errorf("writing preset data: %w", err)
	}
	path := filepath.Join(dir, name+".yaml")
	return path, Save(path, m)
}
