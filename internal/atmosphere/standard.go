package atmosphere

import "math"

const (
	g0          = 9.80665
	gasConst    = 287.05287
	gamma       = 1.4
	earthR0     = 6356766.0
	sutherlandB = 1.458e-6
	sutherlandS = 110.4
)

// US Standard Atmosphere 1976 layers by geopotential base height.
var layers = []struct {
	h, lapse, temp, pressure float64
}{
	{0, -0.0065, 288.15, 101325.0},
	{11000, 0, 216.65, 22632.06},
	{20000, 0.001, 216.65, 5474.889},
	{32000, 0.0028, 228.65, 868.0187},
	{47000, 0, 270.65, 110.9063},
	{51000, -0.0028, 270.65, 66.93887},
	{71000, -0.002, 214.65, 3.956420},
	{84852, 0, 186.946, 0.3733836},
}

func geopotential(z float64) float64 {
	return earthR0 * z / (earthR0 + z)
}

func layerFor(h float64) int {
	i := 0
	for j := range layers {
		if h >= layers[j].h {
			i = j
		}
	}
	return i
}

func standardTemperature(z float64) float64 {
	h := geopotential(z)
	l := layers[layerFor(h)]
	return l.temp + l.lapse*(h-l.h)
}

func standardPressure(z float64) float64 {
	h := geopotential(z)
	l := layers[layerFor(h)]
	if l.lapse == 0 {
		return l.pressure * math.Exp(-g0*(h-l.h)/(gasConst*l.temp))
	}
	t := l.temp + l.lapse*(h-l.h)
	return l.pressure * math.Pow(t/l.temp, -g0/(gasConst*l.lapse))
}
