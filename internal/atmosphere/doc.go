// Package atmosphere models the launch site: position, launch date, gravity,
// and the air the rocket flies through.
//
// All height arguments are geometric heights above mean sea level in metres.
// The flight package converts from its above-ground-level state by adding the
// site elevation.
package atmosphere
