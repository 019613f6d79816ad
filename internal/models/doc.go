// Package models provides hybrid system models for simulation.
//
// Each model implements the [hybrid.Model] interface: a flow map for
// the continuous phases, a guard vector whose positive-going zero
// crossings trigger jumps, and a jump map for the discrete transitions:
//
//   - [SLIP]: spring-loaded inverted pendulum hopper with
//     flight/stance phases and touchdown/liftoff/apex/fall events
//   - [Bouncer]: bouncing point mass with restitution
//
// State, discrete-state, and parameter vectors are indexed through the
// named constants each model exports; the constants are fixed layout,
// never recomputed.
package models
