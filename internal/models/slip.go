package models

import (
	"math"

	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
)

// Continuous state layout of the SLIP hopper.
const (
	SlipX    = iota // horizontal hip position
	SlipY           // vertical hip position
	SlipVX          // horizontal velocity
	SlipVY          // vertical velocity
	SlipTime        // elapsed run time carried in-state

	SlipStateDim
)

// Discrete state layout.
const (
	SlipPhase = iota // PhaseFlight or PhaseStance
	SlipFootX        // stance foot position, meaningful in stance only
	SlipSteps        // completed stance phases
	SlipApexY        // hip height at the last apex passage

	SlipDiscreteDim
)

// Phase values stored in z[SlipPhase].
const (
	PhaseFlight = 0
	PhaseStance = 1
)

// Parameter layout.
const (
	SlipMass = iota
	SlipStiffness
	SlipRestLength
	SlipAttackAngle // leg angle from vertical during flight, rad
	SlipGravity
	SlipApexStop // > 0 terminates the run at the next apex

	SlipParamDim
)

// Guard indices. The guard vector has a fixed length of three in both
// phases; index 0 changes meaning with the phase.
const (
	SlipEvContact = iota // touchdown in flight, liftoff in stance
	SlipEvApex           // vertical velocity sign change, flight only
	SlipEvFall           // hip at ground level, fatal
)

// SLIP is a spring-loaded inverted pendulum hopper in the sagittal
// plane: ballistic flight phases alternate with stance phases where a
// massless leg spring connects the hip to a fixed foot point. The
// excitation input, when present, offsets the flight attack angle.
type SLIP struct{}

func NewSLIP() *SLIP { return &SLIP{} }

// DefaultParams returns a parameter vector that hops stably from the
// state produced by InitialState(1.0, 1.0).
func (s *SLIP) DefaultParams() hybrid.Params {
	p := make(hybrid.Params, SlipParamDim)
	p[SlipMass] = 80.0
	p[SlipStiffness] = 20000.0
	p[SlipRestLength] = 1.0
	p[SlipAttackAngle] = 0.3
	p[SlipGravity] = 9.81
	return p
}

// InitialState places the hopper at apex height h with forward speed vx.
func (s *SLIP) InitialState(h, vx float64) hybrid.State {
	y := make(hybrid.State, SlipStateDim)
	y[SlipX] = 0
	y[SlipY] = h
	y[SlipVX] = vx
	y[SlipVY] = 0
	return y
}

// InitialDiscrete starts the hopper in flight.
func (s *SLIP) InitialDiscrete() hybrid.Discrete {
	z := make(hybrid.Discrete, SlipDiscreteDim)
	z[SlipPhase] = PhaseFlight
	return z
}

func attackAngle(p hybrid.Params, u hybrid.Input) float64 {
	a := p[SlipAttackAngle]
	if len(u) > 0 {
		a += u[0]
	}
	return a
}

func legLength(y hybrid.State, z hybrid.Discrete) float64 {
	dx := y[SlipX] - z[SlipFootX]
	return math.Hypot(dx, y[SlipY])
}

func (s *SLIP) Flow(t float64, y hybrid.State, z hybrid.Discrete, p hybrid.Params, u hybrid.Input) (hybrid.State, hybrid.Params, error) {
	dy := make(hybrid.State, SlipStateDim)
	dy[SlipX] = y[SlipVX]
	dy[SlipY] = y[SlipVY]
	dy[SlipTime] = 1

	g := p[SlipGravity]
	if z[SlipPhase] == PhaseFlight {
		dy[SlipVX] = 0
		dy[SlipVY] = -g
		return dy, nil, nil
	}

	l := legLength(y, z)
	force := p[SlipStiffness] * (p[SlipRestLength] - l)
	m := p[SlipMass]
	dy[SlipVX] = force * (y[SlipX] - z[SlipFootX]) / l / m
	dy[SlipVY] = force*y[SlipY]/l/m - g
	return dy, nil, nil
}

func (s *SLIP) Events(t float64, y hybrid.State, z hybrid.Discrete, p hybrid.Params, u hybrid.Input) ([]float64, error) {
	e := make([]float64, 3)
	e[SlipEvFall] = -y[SlipY]

	if z[SlipPhase] == PhaseFlight {
		// Touchdown: leg tip reaches the ground while descending. The
		// guard rises through zero as the hip sinks below the landing
		// height; ascending through it crosses the other way and is
		// ignored by the positive-direction rule.
		landing := p[SlipRestLength] * math.Cos(attackAngle(p, u))
		e[SlipEvContact] = landing - y[SlipY]
		e[SlipEvApex] = -y[SlipVY]
		return e, nil
	}

	// Liftoff: spring back at rest length while extending.
	e[SlipEvContact] = legLength(y, z) - p[SlipRestLength]
	e[SlipEvApex] = -1
	return e, nil
}

func (s *SLIP) Jump(t float64, y hybrid.State, z hybrid.Discrete, p hybrid.Params, u hybrid.Input, fired []int) (hybrid.State, hybrid.Discrete, bool, error) {
	yPlus := y.Clone()
	zPlus := z.Clone()

	// Fatal fall dominates anything that fires with it.
	for _, i := range fired {
		if i == SlipEvFall {
			return yPlus, zPlus, true, nil
		}
	}

	terminal := false
	for _, i := range fired {
		switch i {
		case SlipEvContact:
			if z[SlipPhase] == PhaseFlight {
				zPlus[SlipPhase] = PhaseStance
				zPlus[SlipFootX] = y[SlipX] + p[SlipRestLength]*math.Sin(attackAngle(p, u))
			} else {
				zPlus[SlipPhase] = PhaseFlight
				zPlus[SlipSteps]++
			}
		case SlipEvApex:
			zPlus[SlipApexY] = y[SlipY]
			if p[SlipApexStop] > 0 {
				terminal = true
			}
		}
	}
	return yPlus, zPlus, terminal, nil
}

// Energy returns the total mechanical energy, for drift checks.
func (s *SLIP) Energy(y hybrid.State, z hybrid.Discrete, p hybrid.Params) float64 {
	m := p[SlipMass]
	ke := 0.5 * m * (y[SlipVX]*y[SlipVX] + y[SlipVY]*y[SlipVY])
	pe := m * p[SlipGravity] * y[SlipY]
	if z[SlipPhase] == PhaseStance {
		stretch := p[SlipRestLength] - legLength(y, z)
		pe += 0.5 * p[SlipStiffness] * stretch * stretch
	}
	return ke + pe
}
