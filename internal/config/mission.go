// Package config reads and writes mission files: the launch site, motor,
// airframe, recovery and launch rail of one flight.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRailLength  = 5.2
	DefaultInclination = 85.0
	DefaultMaxTime     = 600.0
	DefaultHour        = 12
)

var ErrInvalidMission = errors.New("config: invalid mission")

type Mission struct {
	Name        string            `yaml:"name"`
	Environment EnvironmentConfig `yaml:"environment"`
	Motor       MotorConfig       `yaml:"motor"`
	Rocket      RocketConfig      `yaml:"rocket"`
	Flight      FlightConfig      `yaml:"flight"`

	// data files resolve here first when set (presets)
	fsys    fs.FS
	baseDir string
}

type EnvironmentConfig struct {
	Latitude   float64          `yaml:"latitude"`
	Longitude  float64          `yaml:"longitude"`
	Elevation  float64          `yaml:"elevation"`
	Date       string           `yaml:"date"` // "today", "tomorrow", YYYY-MM-DD or empty
	Hour       int              `yaml:"hour"`
	Atmosphere AtmosphereConfig `yaml:"atmosphere"`
}

// AtmosphereConfig rows are indexed by height above sea level.
type AtmosphereConfig struct {
	Type        string       `yaml:"type"`
	File        string       `yaml:"file,omitempty"`
	Pressure    [][2]float64 `yaml:"pressure,omitempty"`
	Temperature [][2]float64 `yaml:"temperature,omitempty"`
	Wind        [][3]float64 `yaml:"wind,omitempty"` // height, u (east), v (north)
}

type MotorConfig struct {
	ThrustSource            string     `yaml:"thrust_source"`
	DryMass                 float64    `yaml:"dry_mass"`
	DryInertia              [3]float64 `yaml:"dry_inertia"`
	NozzleRadius            float64    `yaml:"nozzle_radius"`
	ThroatRadius            float64    `yaml:"throat_radius"`
	GrainNumber             int        `yaml:"grain_number"`
	GrainDensity            float64    `yaml:"grain_density"`
	GrainOuterRadius        float64    `yaml:"grain_outer_radius"`
	GrainInitialInnerRadius float64    `yaml:"grain_initial_inner_radius"`
	GrainInitialHeight      float64    `yaml:"grain_initial_height"`
	GrainSeparation         float64    `yaml:"grain_separation"`
	GrainsCenterOfMass      float64    `yaml:"grains_center_of_mass_position"`
	CenterOfDryMass         float64    `yaml:"center_of_dry_mass_position"`
	NozzlePosition          float64    `yaml:"nozzle_position"`
	BurnTime                [2]float64 `yaml:"burn_time"`
	Orientation             string     `yaml:"coordinate_system_orientation"`
}

type RocketConfig struct {
	Radius                   float64            `yaml:"radius"`
	Mass                     float64            `yaml:"mass"`
	Inertia                  [3]float64         `yaml:"inertia"`
	PowerOffDrag             string             `yaml:"power_off_drag"`
	PowerOnDrag              string             `yaml:"power_on_drag"`
	CenterOfMassWithoutMotor float64            `yaml:"center_of_mass_without_motor"`
	Orientation              string             `yaml:"coordinate_system_orientation"`
	MotorPosition            float64            `yaml:"motor_position"`
	RailButtons              *RailButtonsConfig `yaml:"rail_buttons,omitempty"`
	Nose                     *NoseConfig        `yaml:"nose,omitempty"`
	Fins                     []FinsConfig       `yaml:"fins,omitempty"`
	Tails                    []TailConfig       `yaml:"tails,omitempty"`
	Parachutes               []ParachuteConfig  `yaml:"parachutes,omitempty"`
}

type RailButtonsConfig struct {
	Upper           float64 `yaml:"upper_button_position"`
	Lower           float64 `yaml:"lower_button_position"`
	AngularPosition float64 `yaml:"angular_position"`
}

type NoseConfig struct {
	Length   float64 `yaml:"length"`
	Kind     string  `yaml:"kind"`
	Position float64 `yaml:"position"`
}

type FinsConfig struct {
	N         int            `yaml:"n"`
	RootChord float64        `yaml:"root_chord"`
	TipChord  float64        `yaml:"tip_chord"`
	Span      float64        `yaml:"span"`
	Position  float64        `yaml:"position"`
	CantAngle float64        `yaml:"cant_angle"`
	Sweep     float64        `yaml:"sweep_length,omitempty"`
	Airfoil   *AirfoilConfig `yaml:"airfoil,omitempty"`
}

type AirfoilConfig struct {
	File string `yaml:"file"`
	Unit string `yaml:"unit"`
}

type TailConfig struct {
	TopRadius    float64 `yaml:"top_radius"`
	BottomRadius float64 `yaml:"bottom_radius"`
	Length       float64 `yaml:"length"`
	Position     float64 `yaml:"position"`
}

type ParachuteConfig struct {
	Name         string        `yaml:"name"`
	CdS          float64       `yaml:"cd_s"`
	Trigger      DeployTrigger `yaml:"trigger"`
	SamplingRate float64       `yaml:"sampling_rate"`
	Lag          float64       `yaml:"lag"`
	Noise        [3]float64    `yaml:"noise"` // mean, std, correlation
}

// DeployTrigger is "apogee" or a deployment height in m AGL, written either
// as a number or a string.
type DeployTrigger string

func (t *DeployTrigger) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: trigger must be a scalar (line %d)", ErrInvalidMission, value.Line)
	}
	*t = DeployTrigger(value.Value)
	return nil
}

func (t DeployTrigger) MarshalYAML() (any, error) {
	if h, err := strconv.ParseFloat(string(t), 64); err == nil {
		return h, nil
	}
	return string(t), nil
}

type FlightConfig struct {
	RailLength  float64 `yaml:"rail_length"`
	Inclination float64 `yaml:"inclination"`
	Heading     float64 `yaml:"heading"`
	MaxTime     float64 `yaml:"max_time,omitempty"`
	Dt          float64 `yaml:"dt,omitempty"`
	Integrator  string  `yaml:"integrator,omitempty"`
	Seed        uint64  `yaml:"seed,omitempty"`
}

func DefaultMission() *Mission {
	return &Mission{
		Environment: EnvironmentConfig{
			Hour:       DefaultHour,
			Atmosphere: AtmosphereConfig{Type: "standard"},
		},
		Motor: MotorConfig{
			GrainNumber: 1,
			Orientation: "nozzle_to_combustion_chamber",
		},
		Rocket: RocketConfig{
			Orientation: "tail_to_nose",
		},
		Flight: FlightConfig{
			RailLength:  DefaultRailLength,
			Inclination: DefaultInclination,
			MaxTime:     DefaultMaxTime,
		},
	}
}

// Load reads a mission file over the defaults. Relative data paths resolve
// against the file's directory.
func Load(path string) (*Mission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.baseDir = filepath.Dir(path)
	return m, nil
}

// Parse decodes mission YAML over the defaults. Relative data paths resolve
// against the working directory.
func Parse(data []byte) (*Mission, error) {
	m := DefaultMission()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = "mission"
	}
	return m, nil
}

func Marshal(m *Mission) ([]byte, error) {
	return yaml.Marshal(m)
}

func Save(path string, m *Mission) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// open resolves a data file: the preset's files first, then the disk, then
// the bundled preset data for bare file names.
func (m *Mission) open(name string) (io.ReadCloser, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty data file name", ErrInvalidMission)
	}
	if m.fsys != nil {
		return m.fsys.Open(name)
	}
	path := name
	if !filepath.IsAbs(path) && m.baseDir != "" {
		path = filepath.Join(m.baseDir, path)
	}
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) && filepath.Base(name) == name {
		if bundled, berr := presetFS().Open(name); berr == nil {
			return bundled, nil
		}
	}
	return nil, err
}
