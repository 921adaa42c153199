package flight

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/rocketsim/internal/atmosphere"
	"github.com/san-kum/rocketsim/internal/rocket"
)

// barometer is one parachute's pressure sensor. Its noise is AR(1):
// n[k] = c*n[k-1] + sqrt(1-c^2)*N(mean, std).
type barometer struct {
	chute    *rocket.Parachute
	env      *atmosphere.Environment
	period   float64
	next     float64
	noise    float64
	gaussian distuv.Normal
	fired    bool
}

func newBarometer(chute *rocket.Parachute, env *atmosphere.Environment, seed uint64, index int) *barometer {
	return &barometer{
		chute:  chute,
		env:    env,
		period: 1 / chute.SamplingRate,
		gaussian: distuv.Normal{
			Mu:    chute.Noise.Mean,
			Sigma: chute.Noise.Std,
			Src:   rand.NewPCG(seed, uint64(index)+1),
		},
	}
}

// arm starts sampling at t.
func (b *barometer) arm(t float64) { b.next = t }

// read draws the next noise value and returns the noisy pressure and the
// height above ground it implies.
func (b *barometer) read(z float64) (pressure, height float64) {
	c := b.chute.Noise.Correlation
	b.noise = c*b.noise + math.Sqrt(1-c*c)*b.gaussian.Rand()

	pressure = b.env.Pressure(z+b.env.Elevation) + b.noise
	height = b.env.BarometricHeight(pressure) - b.env.Elevation
	return pressure, height
}

// poll takes every sample due by t and reports whether the trigger fired.
func (b *barometer) poll(z, vz, t float64) bool {
	if b.fired {
		return false
	}
	for b.next <= t {
		b.next += b.period
		p, h := b.read(z)
		if b.chute.Trigger.Fire(p, h, vz) {
			b.fired = true
			return true
		}
	}
	return false
}
