package atmosphere

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/san-kum/rocketsim/internal/curve"
)

var (
	ErrUnsupportedModel = errors.New("atmosphere: unsupported atmospheric model")
	ErrInvalidSite      = errors.New("atmosphere: invalid launch site")
	ErrMissingProfile   = errors.New("atmosphere: model needs a profile")
)

const (
	Standard   = "standard"
	Custom     = "custom_atmosphere"
	Sounding   = "sounding"
	Forecast   = "Forecast"
	Reanalysis = "Reanalysis"
	Ensemble   = "Ensemble"
)

// Model selects and parameterises the atmosphere. Tables are indexed by
// height above sea level. Any nil pressure or temperature table falls back to
// the standard atmosphere; nil wind tables mean calm air.
type Model struct {
	Type        string
	File        string
	Pressure    *curve.Table
	Temperature *curve.Table
	WindU       *curve.Table
	WindV       *curve.Table
}

type Environment struct {
	Latitude  float64
	Longitude float64
	Elevation float64
	Date      time.Time

	model       string
	source      string
	pressure    *curve.Table
	temperature *curve.Table
	windU       *curve.Table
	windV       *curve.Table

	gSurface float64
	radius   float64
}

// New creates a launch site with the standard atmosphere and no wind.
func New(latitude, longitude, elevation float64) (*Environment, error) {
	if latitude < -90 || latitude > 90 {
		return nil, fmt.Errorf("%w: latitude %g out of range", ErrInvalidSite, latitude)
	}
	if longitude < -180 || longitude > 360 {
		return nil, fmt.Errorf("%w: longitude %g out of range", ErrInvalidSite, longitude)
	}
	e := &Environment{
		Latitude:  latitude,
		Longitude: longitude,
		Elevation: elevation,
		model:     Standard,
	}
	e.gSurface, e.radius = somigliana(latitude)
	return e, nil
}

// SetDate sets the launch date and hour in UTC.
func (e *Environment) SetDate(year, month, day, hour int) {
	e.Date = time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
}

// JulianDate returns the launch date as a Julian date. It is zero when no date
// has been set.
func (e *Environment) JulianDate() float64 {
	if e.Date.IsZero() {
		return 0
	}
	return julian.TimeToJD(e.Date)
}

func (e *Environment) Model() string { return e.model }

func (e *Environment) SetAtmosphericModel(m Model) error {
	switch m.Type {
	case "", Standard:
		e.model = Standard
		e.source = ""
		e.pressure, e.temperature = nil, nil
		e.windU, e.windV = m.WindU, m.WindV
	case Custom:
		e.model = Custom
		e.source = ""
		e.pressure, e.temperature = m.Pressure, m.Temperature
		e.windU, e.windV = m.WindU, m.WindV
	case Sounding:
		// tables already read by the caller take precedence over File
		p := &Profile{Pressure: m.Pressure, Temperature: m.Temperature, WindU: m.WindU, WindV: m.WindV}
		if p.Pressure == nil || p.Temperature == nil {
			if m.File == "" {
				return fmt.Errorf("%w: sounding needs a file", ErrMissingProfile)
			}
			var err error
			if p, err = ReadSoundingFile(m.File); err != nil {
				return err
			}
		}
		e.model = Sounding
		e.source = m.File
		e.pressure, e.temperature = p.Pressure, p.Temperature
		e.windU, e.windV = p.WindU, p.WindV
	default:
		if strings.EqualFold(m.Type, Forecast) || strings.EqualFold(m.Type, Reanalysis) || strings.EqualFold(m.Type, Ensemble) {
			return fmt.Errorf("%w: %s (%s): weather data ingestion is not available, use %q, %q or %q",
				ErrUnsupportedModel, m.Type, m.File, Standard, Custom, Sounding)
		}
		return fmt.Errorf("%w: %q", ErrUnsupportedModel, m.Type)
	}
	return nil
}

func (e *Environment) Pressure(h float64) float64 {
	if e.pressure != nil {
		return e.pressure.At(h)
	}
	return standardPressure(h)
}

func (e *Environment) Temperature(h float64) float64 {
	if e.temperature != nil {
		return e.temperature.At(h)
	}
	return standardTemperature(h)
}

func (e *Environment) Density(h float64) float64 {
	return e.Pressure(h) / (gasConst * e.Temperature(h))
}

func (e *Environment) SpeedOfSound(h float64) float64 {
	return math.Sqrt(gamma * gasConst * e.Temperature(h))
}

// DynamicViscosity uses Sutherland's law.
func (e *Environment) DynamicViscosity(h float64) float64 {
	t := e.Temperature(h)
	return sutherlandB * math.Pow(t, 1.5) / (t + sutherlandS)
}

// Wind returns the east (u) and north (v) wind components.
func (e *Environment) Wind(h float64) (u, v float64) {
	if e.windU != nil {
		u = e.windU.At(h)
	}
	if e.windV != nil {
		v = e.windV.At(h)
	}
	return u, v
}

func (e *Environment) WindSpeed(h float64) float64 {
	u, v := e.Wind(h)
	return math.Hypot(u, v)
}

// WindHeading is the direction the wind blows towards, degrees clockwise
// from north.
func (e *Environment) WindHeading(h float64) float64 {
	u, v := e.Wind(h)
	deg := math.Atan2(u, v) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// WindDirection is the direction the wind blows from, degrees clockwise from
// north.
func (e *Environment) WindDirection(h float64) float64 {
	return math.Mod(e.WindHeading(h)+180, 360)
}

// BarometricHeight finds the height above sea level whose pressure equals p.
// Pressures above the surface value give heights below sea level, clamped to
// the search bracket.
func (e *Environment) BarometricHeight(p float64) float64 {
	lo, hi := -2000.0, 86000.0
	if p >= e.Pressure(lo) {
		return lo
	}
	if p <= e.Pressure(hi) {
		return hi
	}
	for i := 0; i < 80 && hi-lo > 1e-4; i++ {
		mid := 0.5 * (lo + hi)
		if e.Pressure(mid) > p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// Gravity is WGS84 normal gravity at the launch latitude with the free-air
// correction for height.
func (e *Environment) Gravity(h float64) float64 {
	r := e.radius / (e.radius + h)
	return e.gSurface * r * r
}

// somigliana returns normal gravity on the ellipsoid and the geocentric
// radius at the given geodetic latitude.
func somigliana(latDeg float64) (float64, float64) {
	const (
		a  = 6378137.0
		b  = 6356752.314245
		ge = 9.7803253359
		k  = 0.00193185265241
		e2 = 0.00669437999013
	)
	phi := latDeg * math.Pi / 180
	s2 := math.Sin(phi) * math.Sin(phi)
	g := ge * (1 + k*s2) / math.Sqrt(1-e2*s2)

	c := math.Cos(phi)
	s := math.Sin(phi)
	num := (a*a*c)*(a*a*c) + (b*b*s)*(b*b*s)
	den := (a*c)*(a*c) + (b*s)*(b*s)
	return g, math.Sqrt(num / den)
}
