// Package dynamo provides the integration core used by the flight model.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations with discrete events:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Event]: zero-crossing detector with an optional state action
//   - [Simulator]: orchestrates a run, locating events and timed actions
//
// # Example
//
//	sim := dynamo.New(sys, integrators.NewRK4())
//	sim.AddEvent(&dynamo.Event{Name: "ground", Func: height, Direction: -1, Terminal: true})
//	result, _ := sim.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Independent runs may be executed
// concurrently with [ParallelFor] as long as each owns its Simulator and System.
package dynamo
