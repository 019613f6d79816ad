// Package hybrid simulates hybrid dynamical systems: continuous flow
// under an ODE interleaved with instantaneous discrete jumps triggered
// by guard zero crossings.
//
// The package defines the contracts between the simulation loop and
// its collaborators:
//
//   - [State], [Discrete], [Params], [Input]: the four vectors of a run
//   - [Model]: flow map, guard (event) vector, and jump map
//   - [Excitation]: optional external input plugin
//   - [Recorder]: optional output sink, fed continuous and event samples
//   - [Integrator]: adaptive ODE stepping with event localization
//   - [Simulator]: orchestrates the flow/jump loop
//
// # Example
//
//	m := models.NewSLIP()
//	sim := hybrid.New(m, integrators.NewRK45(), nil)
//	res, _ := sim.Run(ctx, y0, z0, p0, hybrid.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. One run exclusively owns its
// state vectors and closures; run concurrent simulations on separate
// Simulator values.
package hybrid
