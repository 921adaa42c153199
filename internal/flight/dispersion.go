package flight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

var ErrNoRuns = errors.New("flight: dispersion needs at least one successful run")

type DispersionConfig struct {
	Runs      int
	Workers   int
	WindSigma float64 // standard deviation of the surface wind offset per axis, m/s
}

type DispersionRun struct {
	Seed       uint64
	WindOffset [2]float64
	Apogee     float64
	ApogeeTime float64
	ImpactX    float64
	ImpactY    float64
	ImpactTime float64
	MaxMach    float64
	Landed     bool // false when the flight stopped before impact
	Err        error
}

type DispersionResult struct {
	Runs     []DispersionRun
	Failed   int
	Unlanded int // successful runs that never reached impact

	ApogeeMean, ApogeeStd       float64
	ImpactMean                  [2]float64
	ImpactStd                   [2]float64
	SemiMajor, SemiMinor        float64 // 1-sigma landing ellipse, m
	EllipseAzimuth              float64 // major axis, degrees clockwise from north
	FlightTimeMean, MaxMachMean float64
}

// Dispersion flies base cfg.Runs times with seeds base.Seed..base.Seed+Runs-1.
// Each run owns its own integrator, dynamics and sensors; the rocket and
// environment are only read.
func Dispersion(ctx context.Context, base Flight, cfg DispersionConfig) (*DispersionResult, error) {
	if cfg.Runs < 1 {
		return nil, fmt.Errorf("%w: runs %d", ErrInvalidFlight, cfg.Runs)
	}
	if err := base.validate(); err != nil {
		return nil, err
	}
	log := base.withDefaults().Logger

	runs := make([]DispersionRun, cfg.Runs)
	var mu sync.Mutex
	done := 0

	dynamo.ParallelFor(cfg.Runs, cfg.Workers, func(i int) {
		seed := base.Seed + uint64(i)
		f := base
		f.Seed = seed
		f.Logger = nil
		if cfg.WindSigma > 0 {
			wind := distuv.Normal{Mu: 0, Sigma: cfg.WindSigma, Src: rand.NewPCG(seed, 0x77696e64)}
			f.WindOffset[0] += wind.Rand()
			f.WindOffset[1] += wind.Rand()
		}

		run := DispersionRun{Seed: seed, WindOffset: f.WindOffset}
		if err := ctx.Err(); err != nil {
			run.Err = err
			runs[i] = run
			return
		}

		res, err := f.Run(ctx)
		if err != nil {
			run.Err = err
		} else {
			s := res.Summary
			run.Apogee = s.Apogee.Z
			run.ApogeeTime = s.Apogee.Time
			run.MaxMach = s.Max["mach"].Value
			if s.Impact.Reached {
				run.Landed = true
				run.ImpactX = s.Impact.X
				run.ImpactY = s.Impact.Y
				run.ImpactTime = s.FlightTime
			}
		}
		runs[i] = run

		mu.Lock()
		done++
		log.Debug("dispersion run finished", "run", i, "seed", seed, "done", done, "of", cfg.Runs, "err", run.Err)
		mu.Unlock()
	})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)
	}
	return reduce(runs)
}

func reduce(runs []DispersionRun) (*DispersionResult, error) {
	out := &DispersionResult{Runs: runs}

	var apogee, mach, xs, ys, times []float64
	for _, r := range runs {
		if r.Err != nil {
			out.Failed++
			continue
		}
		apogee = append(apogee, r.Apogee)
		mach = append(mach, r.MaxMach)
		if !r.Landed {
			out.Unlanded++
			continue
		}
		xs = append(xs, r.ImpactX)
		ys = append(ys, r.ImpactY)
		times = append(times, r.ImpactTime)
	}
	if len(apogee) == 0 {
		return out, ErrNoRuns
	}

	out.ApogeeMean, out.ApogeeStd = stat.MeanStdDev(apogee, nil)
	out.MaxMachMean = stat.Mean(mach, nil)
	if len(apogee) < 2 {
		out.ApogeeStd = 0
	}

	// landing statistics only cover runs that reached the ground
	n := len(xs)
	if n == 0 {
		return out, nil
	}
	out.ImpactMean[0], out.ImpactStd[0] = stat.MeanStdDev(xs, nil)
	out.ImpactMean[1], out.ImpactStd[1] = stat.MeanStdDev(ys, nil)
	out.FlightTimeMean = stat.Mean(times, nil)
	if n < 2 {
		out.ImpactStd = [2]float64{}
		return out, nil
	}

	data := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		data.Set(i, 0, xs[i])
		data.Set(i, 1, ys[i])
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if !eig.Factorize(&cov, true) {
		return out, nil
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// eigenvalues come back in ascending order
	out.SemiMajor = math.Sqrt(math.Max(vals[1], 0))
	out.SemiMinor = math.Sqrt(math.Max(vals[0], 0))
	east, north := vecs.At(0, 1), vecs.At(1, 1)
	out.EllipseAzimuth = math.Mod(math.Atan2(east, north)*180/math.Pi+180, 180)
	return out, nil
}
