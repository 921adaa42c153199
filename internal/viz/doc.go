// Package viz replays a stored flight in the terminal.
//
// The replay draws the trajectory side view (downrange distance against
// altitude) on a braille [Canvas] with a trail, shows phase, altitude, speed
// and Mach readouts and an altitude strip chart.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from lift-off
//	+/-   - Faster/slower playback
//	Q     - Quit
package viz
