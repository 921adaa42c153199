package atmosphere

import "time"

type Conditions struct {
	Height       float64
	Pressure     float64
	Temperature  float64
	Density      float64
	SpeedOfSound float64
	WindSpeed    float64
	WindHeading  float64
}

type Info struct {
	Latitude       float64
	Longitude      float64
	Elevation      float64
	Date           time.Time
	JulianDate     float64
	Model          string
	Source         string
	SurfaceGravity float64
	Surface        Conditions
	Profile        []Conditions
}

func (e *Environment) At(h float64) Conditions {
	return Conditions{
		Height:       h,
		Pressure:     e.Pressure(h),
		Temperature:  e.Temperature(h),
		Density:      e.Density(h),
		SpeedOfSound: e.SpeedOfSound(h),
		WindSpeed:    e.WindSpeed(h),
		WindHeading:  e.WindHeading(h),
	}
}

// Info samples the atmosphere from the launch site up to maxHeight above it.
func (e *Environment) Info(maxHeight float64, samples int) Info {
	info := Info{
		Latitude:       e.Latitude,
		Longitude:      e.Longitude,
		Elevation:      e.Elevation,
		Date:           e.Date,
		JulianDate:     e.JulianDate(),
		Model:          e.model,
		Source:         e.source,
		SurfaceGravity: e.Gravity(e.Elevation),
		Surface:        e.At(e.Elevation),
	}
	if samples < 2 {
		samples = 2
	}
	for i := 0; i < samples; i++ {
		h := e.Elevation + maxHeight*float64(i)/float64(samples-1)
		info.Profile = append(info.Profile, e.At(h))
	}
	return info
}
