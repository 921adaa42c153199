// Package aero implements Barrowman static aerodynamics for the external
// surfaces of a rocket: nose cones, trapezoidal fin sets and conical tails.
//
// Positions are given in rocket coordinates. Dir is +1 when rocket
// coordinates grow towards the nose (tail_to_nose) and -1 otherwise. Every
// surface reports its normal-force slope per radian, referenced to the body
// cross-section of radius refRadius, and its centre of pressure in rocket
// coordinates.
package aero

import (
	"errors"
	"math"
)

var (
	ErrUnknownNose   = errors.New("aero: unknown nose cone kind")
	ErrInvalidSize   = errors.New("aero: dimensions must be positive")
	ErrUnknownAngles = errors.New("aero: airfoil angle unit must be radians or degrees")
)

type Surface interface {
	Name() string
	CNalpha(mach, refRadius float64) float64
	CP() float64
}

// compressibility is the Prandtl-Glauert factor 1/sqrt(|1-M^2|). Between
// M=0.9 and M=1.1 it is held at its M=0.9 value.
func compressibility(mach float64) float64 {
	m := math.Abs(mach)
	switch {
	case m < 0.9:
		return 1 / math.Sqrt(1-m*m)
	case m <= 1.1:
		return 1 / math.Sqrt(1-0.81)
	default:
		return 1 / math.Sqrt(m*m-1)
	}
}
